package compare

import internalcompare "github.com/pulumi/cbom-tools/internal/compare"

const (
	categoryNotQuantumSafeIncreased = "not-quantum-safe-increased"
	categoryQuantumSafeDecreased    = "quantum-safe-decreased"
	categoryUnknownIncreased        = "unknown-increased"
	categoryPrimitiveAdded          = "primitive-added"
	categoryPrimitiveRemoved        = "primitive-removed"
	categoryFunctionAdded           = "function-added"
	categoryFunctionRemoved         = "function-removed"
	categoryVulnerableAlgorithm     = "vulnerable-algorithm-added"
	categoryOther                   = "other"
)

// CompareOptions configures compare behavior.
type CompareOptions struct {
	// MaxChanges caps the number of change lines; -1 means no cap.
	MaxChanges int
}

// SummaryItem is one summary category/count entry for compare output.
type SummaryItem struct {
	Category string `json:"category"`
	Count    int    `json:"count"`
	// Entries are concrete diagnostics in "path + message" form.
	Entries []string `json:"entries,omitempty"`
}

// CompareResult is the structured output of comparing two CBOM reports.
type CompareResult struct {
	Summary           []SummaryItem `json:"summary"`
	Changes           []string      `json:"changes"`
	NewAlgorithms     []string      `json:"new_algorithms"`
	RemovedAlgorithms []string      `json:"removed_algorithms"`
	// Severity is the name of the most severe change, "none" when nothing changed.
	Severity string `json:"severity"`

	report     internalcompare.Report
	maxChanges int
}
