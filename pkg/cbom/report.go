package cbom

import (
	"maps"
	"slices"

	"github.com/pulumi/pulumi/pkg/v3/codegen"
)

// Report is everything the CLI knows about one analyzed document.
type Report struct {
	// Source is where the document was loaded from. Empty for an aggregate of several documents.
	Source    string        `json:"source,omitempty" yaml:"source,omitempty"`
	Document  DocumentInfo  `json:"document" yaml:"document"`
	Summary   DashboardData `json:"summary" yaml:"summary"`
	Inventory Inventory     `json:"inventory,omitempty" yaml:"inventory,omitempty"`
}

// ReportOptions configures NewReport.
type ReportOptions struct {
	// Details adds the algorithm inventory.
	Details bool
	// Workers > 1 classifies assets concurrently.
	Workers int
}

// NewReport analyzes a decoded document.
func NewReport(source string, doc any, opts ReportOptions) Report {
	assets := ExtractAssets(doc)
	report := Report{
		Source:   source,
		Document: Describe(doc),
	}
	if opts.Workers > 1 {
		report.Summary = SummarizeConcurrent(assets, opts.Workers)
	} else {
		report.Summary = Summarize(assets)
	}
	if opts.Details {
		report.Inventory = BuildInventory(assets)
	}
	return report
}

// Aggregate merges the summaries and inventories of several reports.
func Aggregate(reports []Report) Report {
	agg := Report{
		Document: DocumentInfo{Format: FormatUnknown},
		Summary:  Summarize(nil),
	}
	entries := map[string]*InventoryEntry{}
	types := map[string]codegen.StringSet{}
	for _, r := range reports {
		agg.Summary = Merge(agg.Summary, r.Summary)
		for _, e := range r.Inventory {
			merged, ok := entries[e.Algorithm]
			if !ok {
				merged = &InventoryEntry{Algorithm: e.Algorithm, QuantumSafety: e.QuantumSafety}
				entries[e.Algorithm] = merged
				types[e.Algorithm] = codegen.NewStringSet()
			}
			merged.Count += e.Count
			for _, t := range e.AssetTypes {
				types[e.Algorithm].Add(t)
			}
		}
	}
	if len(entries) == 0 {
		return agg
	}
	for _, algorithm := range slices.Sorted(maps.Keys(entries)) {
		e := entries[algorithm]
		e.AssetTypes = types[algorithm].SortedValues()
		agg.Inventory = append(agg.Inventory, *e)
	}
	return agg
}
