package compare

import "github.com/pulumi/cbom-tools/internal/util/diagtree"

// Report captures the compare engine output used by the text and JSON renderers.
type Report struct {
	Changes *diagtree.Node
	// NewAlgorithms are used by the new document only. Empty unless both documents carry
	// an inventory.
	NewAlgorithms []string
	// RemovedAlgorithms are used by the old document only.
	RemovedAlgorithms []string
}
