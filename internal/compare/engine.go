package compare

import (
	"maps"
	"slices"

	"github.com/pulumi/cbom-tools/internal/util/diagtree"
	"github.com/pulumi/cbom-tools/pkg/cbom"
)

// Analyze computes how the crypto posture moved from oldReport to newReport.
func Analyze(oldReport, newReport cbom.Report) Report {
	report := Report{
		Changes: PostureChanges(oldReport.Summary, newReport.Summary),
	}
	if oldReport.Inventory == nil || newReport.Inventory == nil {
		return report
	}

	oldAlgorithms := inventoryByAlgorithm(oldReport.Inventory)
	newAlgorithms := inventoryByAlgorithm(newReport.Inventory)
	for _, algorithm := range slices.Sorted(maps.Keys(newAlgorithms)) {
		if _, ok := oldAlgorithms[algorithm]; ok {
			continue
		}
		report.NewAlgorithms = append(report.NewAlgorithms, algorithm)
		if newAlgorithms[algorithm].QuantumSafety == cbom.NotQuantumSafe.String() {
			report.Changes.Label(AlgorithmsCategory).Label(NewlyUsed).Value(algorithm).
				SetDescription(diagtree.Warn, "is not quantum safe")
		}
	}
	for _, algorithm := range slices.Sorted(maps.Keys(oldAlgorithms)) {
		if _, ok := newAlgorithms[algorithm]; !ok {
			report.RemovedAlgorithms = append(report.RemovedAlgorithms, algorithm)
		}
	}
	return report
}

// PostureChanges builds the diagnostics tree between two dashboards:
//
//   - more not quantum safe assets is Danger,
//   - fewer quantum safe assets is Warn,
//   - more assets of unknown safety is Warn,
//   - a primitive or function bucket going from or to zero is Info.
func PostureChanges(oldData, newData cbom.DashboardData) *diagtree.Node {
	root := &diagtree.Node{Title: ""}

	safety := root.Label(QuantumSafetyCategory)
	if o, n := oldData.QuantumSafety.NotQuantumSafe, newData.QuantumSafety.NotQuantumSafe; n > o {
		safety.Value(cbom.NotQuantumSafe.String()).SetDescription(diagtree.Danger, increasedFormat, o, n)
	}
	if o, n := oldData.QuantumSafety.QuantumSafe, newData.QuantumSafety.QuantumSafe; n < o {
		safety.Value(cbom.QuantumSafe.String()).SetDescription(diagtree.Warn, decreasedFormat, o, n)
	}
	if o, n := oldData.QuantumSafety.Unknown, newData.QuantumSafety.Unknown; n > o {
		safety.Value(cbom.QuantumUnknown.String()).SetDescription(diagtree.Warn, increasedFormat, o, n)
	}

	bucketChanges(root.Label(PrimitivesCategory), oldData.Primitives, newData.Primitives)
	bucketChanges(root.Label(FunctionsCategory), oldData.Functions, newData.Functions)
	return root
}

func bucketChanges(section *diagtree.Node, oldBuckets, newBuckets cbom.Breakdown) {
	for _, bucket := range newBuckets {
		before := oldBuckets.Get(bucket.Name)
		switch {
		case before == 0 && bucket.Count > 0:
			section.Value(bucket.Name).SetDescription(diagtree.Info, NowInUse)
		case before > 0 && bucket.Count == 0:
			section.Value(bucket.Name).SetDescription(diagtree.Info, NoLongerInUse)
		}
	}
}

func inventoryByAlgorithm(inv cbom.Inventory) map[string]cbom.InventoryEntry {
	m := make(map[string]cbom.InventoryEntry, len(inv))
	for _, e := range inv {
		m[e.Algorithm] = e
	}
	return m
}
