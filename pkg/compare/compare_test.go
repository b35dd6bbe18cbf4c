package compare

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	internalcompare "github.com/pulumi/cbom-tools/internal/compare"
	"github.com/pulumi/cbom-tools/internal/util/diagtree"
	"github.com/pulumi/cbom-tools/pkg/cbom"
)

func analyzed(t *testing.T, document string) cbom.Report {
	t.Helper()
	doc, err := cbom.Decode([]byte(document))
	require.NoError(t, err)
	return cbom.NewReport("test", doc, cbom.ReportOptions{Details: true})
}

const (
	oldDocument = `{"cryptoAssets":[
		{"algorithm":"KYBER","assetType":"ASYMMETRIC","api":"tls.connect"},
		{"algorithm":"SHA-256","assetType":"HASH"}
	]}`
	newDocument = `{"components":[
		{"properties":[{"name":"cbom:algorithm","value":"RSA"},{"name":"cbom:assetType","value":"ASYMMETRIC"},{"name":"cbom:api","value":"crypto.sign"}]},
		{"properties":[{"name":"cbom:algorithm","value":"SHA-256"},{"name":"cbom:assetType","value":"HASH"}]}
	]}`
)

func TestCompareBuildsSummaryWithEntries(t *testing.T) {
	result := Compare(analyzed(t, oldDocument), analyzed(t, newDocument), CompareOptions{MaxChanges: -1})

	assert.Equal(t, "danger", result.Severity)
	assert.Equal(t, []SummaryItem{
		{
			Category: categoryNotQuantumSafeIncreased,
			Count:    1,
			Entries:  []string{`Quantum safety: "notQuantumSafe" increased from 1 to 2`},
		},
		{
			Category: categoryQuantumSafeDecreased,
			Count:    1,
			Entries:  []string{`Quantum safety: "quantumSafe" decreased from 1 to 0`},
		},
		{
			Category: categoryFunctionAdded,
			Count:    1,
			Entries:  []string{`Functions: "sign" now in use`},
		},
		{
			Category: categoryFunctionRemoved,
			Count:    1,
			Entries:  []string{`Functions: "tls" no longer in use`},
		},
		{
			Category: categoryVulnerableAlgorithm,
			Count:    1,
			Entries:  []string{`Algorithms: newly used: "RSA" is not quantum safe`},
		},
	}, result.Summary)
	assert.Equal(t, []string{"RSA"}, result.NewAlgorithms)
	assert.Equal(t, []string{"KYBER"}, result.RemovedAlgorithms)
	assert.NotEmpty(t, result.Changes)

	assert.True(t, result.Exceeds(diagtree.Danger))
	assert.True(t, result.Exceeds(diagtree.Info))
	assert.False(t, result.Exceeds(diagtree.None))
}

func TestCategorize(t *testing.T) {
	root := &diagtree.Node{}
	tests := []struct {
		node     *diagtree.Node
		expected string
	}{
		{root.Label(internalcompare.QuantumSafetyCategory).Value(cbom.QuantumUnknown.String()), categoryUnknownIncreased},
		{root.Label(internalcompare.PrimitivesCategory).Value("mac"), categoryPrimitiveRemoved},
		{root.Label(internalcompare.FunctionsCategory).Value("rng"), categoryFunctionAdded},
		{root.Label(internalcompare.AlgorithmsCategory).Label(internalcompare.NewlyUsed).Value("MD5"), categoryVulnerableAlgorithm},
		{root.Label("Elsewhere").Value("x"), categoryOther},
	}
	tests[1].node.SetDescription(diagtree.Info, internalcompare.NoLongerInUse)
	tests[2].node.SetDescription(diagtree.Info, internalcompare.NowInUse)

	for _, tt := range tests {
		assert.Equal(t, tt.expected, categorize(tt.node), tt.node.PathTitles())
	}
}

func TestCompareIdenticalDocuments(t *testing.T) {
	r := analyzed(t, oldDocument)

	result := Compare(r, r, CompareOptions{MaxChanges: -1})

	assert.Equal(t, "none", result.Severity)
	assert.Empty(t, result.Summary)
	assert.Equal(t, []string{}, result.Changes)
	assert.Equal(t, []string{}, result.NewAlgorithms)
	assert.False(t, result.Exceeds(diagtree.Info))

	var out bytes.Buffer
	require.NoError(t, RenderText(&out, result))
	assert.Contains(t, out.String(), "Looking good! No posture changes found.")
}

func TestCompareCapsChanges(t *testing.T) {
	result := Compare(analyzed(t, oldDocument), analyzed(t, newDocument), CompareOptions{MaxChanges: 2})

	assert.Len(t, result.Changes, 2)
	// The summary is never capped.
	assert.Len(t, result.Summary, 5)
}

func TestRenderSummaryIncludesCountsOnly(t *testing.T) {
	result := CompareResult{
		Summary: []SummaryItem{{
			Category: categoryPrimitiveAdded,
			Count:    2,
			Entries:  []string{"e1", "e2"},
		}},
	}

	var out bytes.Buffer
	require.NoError(t, RenderSummary(&out, result))

	text := out.String()
	assert.Equal(t, "Summary by category (most severe: none):\n- primitive-added: 2\n", text)
	assert.NotContains(t, text, "e1")

	out.Reset()
	require.NoError(t, RenderSummary(&out, CompareResult{}))
	assert.Equal(t, "No posture changes found.\n", out.String())
}
