package cbom

import (
	"maps"
	"slices"

	"github.com/pulumi/pulumi/pkg/v3/codegen"
)

// InventoryEntry describes every asset that uses one algorithm.
type InventoryEntry struct {
	Algorithm     string   `json:"algorithm" yaml:"algorithm"`
	Count         int      `json:"count" yaml:"count"`
	QuantumSafety string   `json:"quantumSafety" yaml:"quantumSafety"`
	AssetTypes    []string `json:"assetTypes" yaml:"assetTypes"`
}

// Inventory lists the algorithms of a document, sorted by normalized name.
type Inventory []InventoryEntry

// BuildInventory groups assets by normalized algorithm. Assets without an algorithm are listed
// under Unknown.
func BuildInventory(assets []RawAsset) Inventory {
	counts := map[string]int{}
	types := map[string]codegen.StringSet{}
	for _, asset := range assets {
		algorithm := NormalizeValue(asset.Algorithm)
		counts[algorithm]++
		if _, ok := types[algorithm]; !ok {
			types[algorithm] = codegen.NewStringSet()
		}
		types[algorithm].Add(NormalizeValue(asset.AssetType))
	}

	inventory := make(Inventory, 0, len(counts))
	for _, algorithm := range slices.Sorted(maps.Keys(counts)) {
		inventory = append(inventory, InventoryEntry{
			Algorithm:     algorithm,
			Count:         counts[algorithm],
			QuantumSafety: ClassifyQuantumSafety(algorithm).String(),
			AssetTypes:    types[algorithm].SortedValues(),
		})
	}
	return inventory
}

// NotQuantumSafe returns the entries whose algorithm is classified as not quantum safe.
func (inv Inventory) NotQuantumSafe() Inventory {
	out := Inventory{}
	for _, e := range inv {
		if e.QuantumSafety == NotQuantumSafe.String() {
			out = append(out, e)
		}
	}
	return out
}
