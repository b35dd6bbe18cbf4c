package compare

// Top-level sections of the changes tree.
const (
	QuantumSafetyCategory = "Quantum safety"
	PrimitivesCategory    = "Primitives"
	FunctionsCategory     = "Functions"
	AlgorithmsCategory    = "Algorithms"
)

// Descriptions of bucket changes.
const (
	NowInUse      = "now in use"
	NoLongerInUse = "no longer in use"
	NewlyUsed     = "newly used"
)

const (
	increasedFormat = "increased from %d to %d"
	decreasedFormat = "decreased from %d to %d"
)
