package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pulumi/pulumi/sdk/v3/go/common/util/logging"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	envPrefix         = "CBOM_TOOLS"
	defaultConfigName = ".cbom-tools.yaml"
)

// Config keys. Each one is also the name of the flag it backs.
const (
	keyFormat     = "format"
	keyDetails    = "details"
	keyWorkers    = "workers"
	keyPath       = "path"
	keyRef        = "ref"
	keyMaxChanges = "max-changes"
	keyCacheSize  = "cache-size"
	keyFailOn     = "fail-on"
)

// config layers flags over environment variables over the config file. Flags left at their
// default lose to the other two.
type config struct {
	v    *viper.Viper
	file string
}

func newConfig() *config {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	return &config{v: v}
}

// load reads the config file named by --config, or $HOME/.cbom-tools.yaml if present.
func (c *config) load() error {
	file := c.file
	if file == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			logging.V(5).Infof("no home directory, skipping default config: %v", err)
			return nil
		}
		file = filepath.Join(home, defaultConfigName)
		if _, err := os.Stat(file); errors.Is(err, fs.ErrNotExist) {
			return nil
		}
	}

	c.v.SetConfigFile(file)
	c.v.SetConfigType("yaml")
	if err := c.v.ReadInConfig(); err != nil {
		return fmt.Errorf("read config %s: %w", file, err)
	}
	logging.V(5).Infof("using config file %s", c.v.ConfigFileUsed())
	return nil
}

// bind makes the given flags visible through the config under their own names.
func (c *config) bind(flags *pflag.FlagSet, keys ...string) error {
	for _, key := range keys {
		flag := flags.Lookup(key)
		if flag == nil {
			return fmt.Errorf("no flag named %q", key)
		}
		if err := c.v.BindPFlag(key, flag); err != nil {
			return fmt.Errorf("bind flag %q: %w", key, err)
		}
	}
	return nil
}

func (c *config) String(key string) string { return c.v.GetString(key) }
func (c *config) Bool(key string) bool { return c.v.GetBool(key) }
func (c *config) Int(key string) int { return c.v.GetInt(key) }
