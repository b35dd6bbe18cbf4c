package compare

import (
	"io"
	"sort"
	"strconv"
	"strings"

	internalcompare "github.com/pulumi/cbom-tools/internal/compare"
	"github.com/pulumi/cbom-tools/internal/util/diagtree"
	"github.com/pulumi/cbom-tools/pkg/cbom"
)

// Compare computes a structured comparison result for two analyzed documents.
func Compare(oldReport, newReport cbom.Report, opts CompareOptions) CompareResult {
	report := internalcompare.Analyze(oldReport, newReport)
	return CompareResult{
		Summary:           summarize(report.Changes),
		Changes:           splitChanges(report, opts.MaxChanges),
		NewAlgorithms:     sortedOrEmpty(report.NewAlgorithms),
		RemovedAlgorithms: sortedOrEmpty(report.RemovedAlgorithms),
		Severity:          report.Changes.Worst().Name(),
		report:            report,
		maxChanges:        opts.MaxChanges,
	}
}

// RenderText writes the human-readable compare output.
func RenderText(out io.Writer, result CompareResult) error {
	return internalcompare.RenderText(out, result.report, result.maxChanges)
}

// Exceeds reports whether the result holds a change at least as severe as threshold. A None
// threshold never fails.
func (r CompareResult) Exceeds(threshold diagtree.Severity) bool {
	if threshold == diagtree.None || r.report.Changes == nil {
		return false
	}
	return r.report.Changes.Worst().AtLeast(threshold)
}

func summarize(changes *diagtree.Node) []SummaryItem {
	byCategory := map[string]*SummaryItem{}
	var order []string
	changes.WalkDisplayed(func(n *diagtree.Node) {
		if n.Description == "" {
			return
		}
		category := categorize(n)
		item, ok := byCategory[category]
		if !ok {
			item = &SummaryItem{Category: category}
			byCategory[category] = item
			order = append(order, category)
		}
		item.Count++
		item.Entries = append(item.Entries, internalcompare.NodeEntry(n))
	})

	summary := make([]SummaryItem, 0, len(order))
	for _, category := range order {
		summary = append(summary, *byCategory[category])
	}
	return summary
}

func categorize(n *diagtree.Node) string {
	path := n.PathTitles()
	if len(path) < 2 {
		return categoryOther
	}
	added := n.Description == internalcompare.NowInUse
	switch path[0] {
	case internalcompare.QuantumSafetyCategory:
		switch path[1] {
		case strconv.Quote(cbom.NotQuantumSafe.String()):
			return categoryNotQuantumSafeIncreased
		case strconv.Quote(cbom.QuantumSafe.String()):
			return categoryQuantumSafeDecreased
		case strconv.Quote(cbom.QuantumUnknown.String()):
			return categoryUnknownIncreased
		}
	case internalcompare.PrimitivesCategory:
		if added {
			return categoryPrimitiveAdded
		}
		return categoryPrimitiveRemoved
	case internalcompare.FunctionsCategory:
		if added {
			return categoryFunctionAdded
		}
		return categoryFunctionRemoved
	case internalcompare.AlgorithmsCategory:
		return categoryVulnerableAlgorithm
	}
	return categoryOther
}

func splitChanges(report internalcompare.Report, maxChanges int) []string {
	out := &strings.Builder{}
	report.Changes.Display(out, maxChanges)
	displayed := strings.TrimSpace(out.String())
	if displayed == "" {
		return []string{}
	}
	return strings.Split(displayed, "\n")
}

func sortedOrEmpty(xs []string) []string {
	clone := cloneOrEmpty(xs)
	sort.Strings(clone)
	return clone
}

func cloneOrEmpty(xs []string) []string {
	if len(xs) == 0 {
		return []string{}
	}
	clone := make([]string, len(xs))
	copy(clone, xs)
	return clone
}
