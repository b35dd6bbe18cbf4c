package cmd

import (
	"fmt"
	"os"

	"github.com/pulumi/pulumi/sdk/v3/go/common/util/logging"
	"github.com/spf13/cobra"
)

func rootCmd() *cobra.Command {
	cfg := newConfig()
	var verbose int
	var logToStderr bool

	command := &cobra.Command{
		Use:   "cbom-tools",
		Short: "cbom-tools is a CLI utility to analyze Cryptographic Bills of Materials",
		Long: "cbom-tools reads CBOM documents, either in the native cryptoAssets shape or as\n" +
			"CycloneDX components, and reports how their crypto assets break down by\n" +
			"quantum safety, primitive and function.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			logging.InitLogging(logToStderr, verbose, false)
			return cfg.load()
		},
	}

	command.PersistentFlags().StringVar(&cfg.file, "config", "",
		"config file (defaults to $HOME/.cbom-tools.yaml when it exists)")
	command.PersistentFlags().IntVarP(&verbose, "verbose", "v", 0,
		"enable verbose logging (e.g., v=3); anything >3 is very verbose")
	command.PersistentFlags().BoolVar(&logToStderr, "logtostderr", false,
		"log to stderr instead of to files")

	command.AddCommand(summarizeCmd(cfg))
	command.AddCommand(compareCmd(cfg))
	command.AddCommand(versionCmd())

	return command
}

func Execute() {
	if err := rootCmd().Execute(); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
