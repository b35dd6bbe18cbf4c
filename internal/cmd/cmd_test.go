package cmd

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pulumi/cbom-tools/pkg/cbom"
	"github.com/pulumi/cbom-tools/version"
)

const (
	nativeDocument = `{
		"cbomVersion": "1.0",
		"component": "payments",
		"cryptoAssets": [
			{"algorithm": "RSA", "assetType": "ASYMMETRIC", "api": "generateKeyPairSync"},
			{"algorithm": "KYBER", "assetType": "ASYMMETRIC", "api": "tls.connect"}
		]
	}`
	cyclonedxDocument = `{
		"bomFormat": "CycloneDX",
		"specVersion": "1.6",
		"components": [
			{"properties": [
				{"name": "cbom:algorithm", "value": "RSA"},
				{"name": "cbom:assetType", "value": "SIGNATURE"},
				{"name": "cbom:api", "value": "crypto.sign"}
			]},
			{"properties": [
				{"name": "cbom:algorithm", "value": "ECDSA"},
				{"name": "cbom:assetType", "value": "SIGNATURE"},
				{"name": "cbom:api", "value": "crypto.sign"}
			]}
		]
	}`
	// Component properties without the cbom: namespace are not crypto asset fields.
	unprefixedDocument = `{
		"bomFormat": "CycloneDX",
		"components": [
			{"properties": [{"name": "algorithm", "value": "RSA"}, {"name": "assetType", "value": "SIGNATURE"}]},
			{"properties": [{"name": "algorithm", "value": "ECDSA"}, {"name": "api", "value": "crypto.sign"}]}
		]
	}`
)

func writeDocument(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

// run executes the CLI with an empty home directory, so no user config is picked up.
func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("HOME", t.TempDir())

	command := rootCmd()
	var out bytes.Buffer
	command.SetOut(&out)
	command.SetErr(io.Discard)
	command.SetArgs(args)
	err := command.Execute()
	return out.String(), err
}

func TestSummarizeJSON(t *testing.T) {
	path := writeDocument(t, t.TempDir(), "cbom.json", nativeDocument)

	out, err := run(t, "summarize", "--format", "json", path)
	require.NoError(t, err)

	assert.Equal(t, `{
  "totalAssets": 2,
  "totalPrimitives": 1,
  "totalFunctions": 2,
  "quantumSafety": {
    "quantumSafe": 1,
    "notQuantumSafe": 1,
    "unknown": 0
  },
  "primitives": {
    "hash": 0,
    "mac": 0,
    "block-cipher": 0,
    "pke": 2,
    "signature": 0,
    "ae": 0,
    "other": 0
  },
  "functions": {
    "keygen": 1,
    "encrypt": 0,
    "decrypt": 0,
    "sign": 0,
    "verify": 0,
    "kdf": 0,
    "tls": 1,
    "rng": 0
  }
}
`, out)
}

func TestStatsAlias(t *testing.T) {
	path := writeDocument(t, t.TempDir(), "cbom.json", nativeDocument)

	out, err := run(t, "stats", path)
	require.NoError(t, err)

	assert.Contains(t, out, "Found 2 crypto assets")
}

func TestSummarizeRepositoryDirectory(t *testing.T) {
	root := t.TempDir()
	writeDocument(t, root, "reports/bom.json", cyclonedxDocument)

	out, err := run(t, "summarize", "--details", "--path", "reports/bom.json", root)
	require.NoError(t, err)

	assert.Contains(t, out, "Found 2 crypto assets")
	assert.Contains(t, out, "ECDSA")
}

func TestSummarizeIgnoresUnprefixedProperties(t *testing.T) {
	path := writeDocument(t, t.TempDir(), "bom.json", unprefixedDocument)

	out, err := run(t, "summarize", "--format", "json", path)
	require.NoError(t, err)

	var data struct {
		TotalAssets    int                      `json:"totalAssets"`
		TotalFunctions int                      `json:"totalFunctions"`
		QuantumSafety  cbom.QuantumSafetyCounts `json:"quantumSafety"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &data))
	assert.Equal(t, 2, data.TotalAssets)
	assert.Equal(t, 0, data.TotalFunctions)
	assert.Equal(t, cbom.QuantumSafetyCounts{Unknown: 2}, data.QuantumSafety)
}

func TestSummarizeSeveralDocuments(t *testing.T) {
	dir := t.TempDir()
	native := writeDocument(t, dir, "native.json", nativeDocument)
	cyclonedx := writeDocument(t, dir, "cyclonedx.json", cyclonedxDocument)

	out, err := run(t, "summarize", "--format", "json", native, cyclonedx)
	require.NoError(t, err)

	var reports []cbom.Report
	require.NoError(t, json.Unmarshal([]byte(out), &reports))
	require.Len(t, reports, 3)
	assert.Equal(t, native, reports[0].Source)
	assert.Equal(t, cbom.FormatCycloneDX, reports[1].Document.Format)
	assert.Equal(t, "", reports[2].Source)
	assert.Equal(t, 4, reports[2].Summary.TotalAssets)
	assert.Equal(t, 2, reports[2].Summary.Primitives.Get("signature"))

	text, err := run(t, "summarize", native, cyclonedx)
	require.NoError(t, err)
	assert.Contains(t, text, "Aggregate of all documents")
}

func TestSummarizeConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := writeDocument(t, dir, "cbom.json", nativeDocument)
	config := writeDocument(t, dir, "config.yaml", "format: yaml\nworkers: 4\n")

	out, err := run(t, "summarize", "--config", config, path)
	require.NoError(t, err)
	assert.Contains(t, out, "totalAssets: 2\n")

	// Flags win over the config file.
	out, err = run(t, "summarize", "--config", config, "--format", "json", path)
	require.NoError(t, err)
	assert.Contains(t, out, `"totalAssets": 2`)
}

func TestSummarizeEnvironment(t *testing.T) {
	path := writeDocument(t, t.TempDir(), "cbom.json", nativeDocument)
	t.Setenv("CBOM_TOOLS_FORMAT", "yaml")

	out, err := run(t, "summarize", path)
	require.NoError(t, err)
	assert.Contains(t, out, "totalAssets: 2\n")
}

func TestSummarizeErrors(t *testing.T) {
	dir := t.TempDir()
	invalid := writeDocument(t, dir, "invalid.json", "not json")
	valid := writeDocument(t, dir, "cbom.json", nativeDocument)

	_, err := run(t, "summarize", invalid)
	assert.True(t, errors.Is(err, cbom.ErrInvalidDocument))
	assert.Contains(t, err.Error(), invalid)

	_, err = run(t, "summarize", "--format", "xml", valid)
	assert.EqualError(t, err, `unknown format "xml", expected one of [text json yaml]`)

	_, err = run(t, "summarize", filepath.Join(dir, "missing.json"), valid)
	assert.ErrorContains(t, err, "missing.json")

	_, err = run(t, "summarize", "--config", filepath.Join(dir, "missing.yaml"), valid)
	assert.ErrorContains(t, err, "read config")
}

func TestCompareText(t *testing.T) {
	dir := t.TempDir()
	oldPath := writeDocument(t, dir, "old.json", nativeDocument)
	newPath := writeDocument(t, dir, "new.json", cyclonedxDocument)

	out, err := run(t, "compare", "--old", oldPath, "--new", newPath)
	require.NoError(t, err)

	assert.Contains(t, out, "### Did the crypto posture change?")
	assert.Contains(t, out, `"notQuantumSafe" increased from 1 to 2`)
	assert.Contains(t, out, "#### New algorithms:")
	assert.Contains(t, out, "- `ECDSA`")
	assert.Contains(t, out, "#### Removed algorithms:")
	assert.Contains(t, out, "- `KYBER`")
}

func TestCompareFailOn(t *testing.T) {
	dir := t.TempDir()
	oldPath := writeDocument(t, dir, "old.json", nativeDocument)
	newPath := writeDocument(t, dir, "new.json", cyclonedxDocument)

	_, err := run(t, "compare", "-o", oldPath, "-n", newPath, "--fail-on", "danger", "--format", "summary")
	assert.True(t, errors.Is(err, errPostureRegressed))

	// Going the other way only removes vulnerable assets.
	out, err := run(t, "compare", "-o", newPath, "-n", oldPath, "--fail-on", "warn", "--format", "summary")
	require.NoError(t, err)
	assert.Contains(t, out, "Summary by category (most severe: info):")

	_, err = run(t, "compare", "-o", oldPath, "-n", newPath, "--fail-on", "fatal")
	assert.ErrorContains(t, err, `unknown severity "fatal"`)
}

func TestCompareJSON(t *testing.T) {
	dir := t.TempDir()
	path := writeDocument(t, dir, "cbom.json", nativeDocument)

	out, err := run(t, "compare", "-o", path, "-n", path, "--format", "json")
	require.NoError(t, err)

	var result struct {
		Severity string   `json:"severity"`
		Changes  []string `json:"changes"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	assert.Equal(t, "none", result.Severity)
	assert.Empty(t, result.Changes)

	_, err = run(t, "compare", "-o", path, "-n", path, "--format", "yaml")
	assert.ErrorContains(t, err, `unknown format "yaml"`)
}

func TestCompareRequiresBothSources(t *testing.T) {
	_, err := run(t, "compare", "--old", "old.json")
	assert.ErrorContains(t, err, `required flag(s) "new" not set`)
}

func TestVersion(t *testing.T) {
	out, err := run(t, "version")
	require.NoError(t, err)
	assert.Equal(t, version.Version+"\n", out)
}
