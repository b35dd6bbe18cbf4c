package cbom

import (
	"runtime"

	"github.com/pulumi/pulumi/sdk/v3/go/common/util/logging"
	"golang.org/x/sync/errgroup"
)

// tally is the accumulator behind a DashboardData. Partial tallies merge by elementwise addition.
type tally struct {
	assets     int
	quantum    [numQuantumSafety]int
	primitives [numPrimitives]int
	functions  [numFunctions]int
}

func (t *tally) add(asset RawAsset) {
	t.assets++
	t.quantum[ClassifyQuantumSafety(NormalizeValue(asset.Algorithm))]++
	t.primitives[ClassifyPrimitive(asset)]++
	for _, f := range ClassifyFunction(asset).Functions() {
		t.functions[f]++
	}
}

func (t *tally) merge(other tally) {
	t.assets += other.assets
	for i := range t.quantum {
		t.quantum[i] += other.quantum[i]
	}
	for i := range t.primitives {
		t.primitives[i] += other.primitives[i]
	}
	for i := range t.functions {
		t.functions[i] += other.functions[i]
	}
}

func (t tally) data() DashboardData {
	primitives := make(Breakdown, numPrimitives)
	for _, p := range Primitives() {
		primitives[p] = BucketCount{Name: p.String(), Count: t.primitives[p]}
	}
	functions := make(Breakdown, numFunctions)
	for _, f := range Functions() {
		functions[f] = BucketCount{Name: f.String(), Count: t.functions[f]}
	}

	return DashboardData{
		TotalAssets:     t.assets,
		TotalPrimitives: primitives.Hits(),
		TotalFunctions:  functions.Hits(),
		QuantumSafety: QuantumSafetyCounts{
			QuantumSafe:    t.quantum[QuantumSafe],
			NotQuantumSafe: t.quantum[NotQuantumSafe],
			Unknown:        t.quantum[QuantumUnknown],
		},
		Primitives: primitives,
		Functions:  functions,
	}
}

// tallyOf reads a DashboardData back into an accumulator. Buckets are matched by name, so data
// that went through JSON merges the same as data built in process.
func tallyOf(d DashboardData) tally {
	t := tally{assets: d.TotalAssets}
	for q := QuantumSafety(0); q < numQuantumSafety; q++ {
		t.quantum[q] = d.QuantumSafety.Get(q)
	}
	for _, p := range Primitives() {
		t.primitives[p] = d.Primitives.Get(p.String())
	}
	for _, f := range Functions() {
		t.functions[f] = d.Functions.Get(f.String())
	}
	return t
}

// Summarize classifies every asset and aggregates the counts. Every bucket is present in the
// result, with 0 when nothing hit it.
func Summarize(assets []RawAsset) DashboardData {
	var t tally
	for _, asset := range assets {
		t.add(asset)
	}
	return t.data()
}

// SummarizeConcurrent produces the same result as Summarize, classifying contiguous partitions
// of the assets on up to workers goroutines. workers <= 0 means GOMAXPROCS.
func SummarizeConcurrent(assets []RawAsset, workers int) DashboardData {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	if workers > len(assets) {
		workers = len(assets)
	}
	if workers <= 1 {
		return Summarize(assets)
	}

	partials := make([]tally, workers)
	size := (len(assets) + workers - 1) / workers
	var g errgroup.Group
	for w := 0; w < workers; w++ {
		lo := w * size
		hi := min(lo+size, len(assets))
		if lo >= hi {
			continue
		}
		g.Go(func() error {
			for _, asset := range assets[lo:hi] {
				partials[w].add(asset)
			}
			return nil
		})
	}
	// Partitions never fail.
	_ = g.Wait()

	var total tally
	for _, p := range partials {
		total.merge(p)
	}
	logging.V(7).Infof("summarized %d assets across %d partitions", total.assets, workers)
	return total.data()
}

// Merge adds two summaries bucket by bucket. The distinct-bucket totals are recomputed from the
// merged counters rather than added.
func Merge(a, b DashboardData) DashboardData {
	t := tallyOf(a)
	t.merge(tallyOf(b))
	return t.data()
}

// Analyze extracts and summarizes the assets of a decoded document.
func Analyze(doc any) DashboardData {
	assets := ExtractAssets(doc)
	logging.V(7).Infof("extracted %d assets from %s document", len(assets), DetectFormat(doc))
	return Summarize(assets)
}

// Parse decodes a JSON document and summarizes it. Only the decoding can fail.
func Parse(data []byte) (DashboardData, error) {
	doc, err := Decode(data)
	if err != nil {
		return DashboardData{}, err
	}
	return Analyze(doc), nil
}
