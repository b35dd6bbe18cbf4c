package compare

import (
	"strings"

	"github.com/pulumi/cbom-tools/internal/util/diagtree"
)

// NodePath joins the titles leading to node, e.g. `Primitives: "pke"`.
func NodePath(node *diagtree.Node) string {
	if node == nil {
		return ""
	}
	return strings.Join(node.PathTitles(), ": ")
}

// NodeEntry is NodePath followed by the description of node.
func NodeEntry(node *diagtree.Node) string {
	if node == nil {
		return ""
	}
	path := NodePath(node)
	if node.Description == "" {
		return path
	}
	if path == "" {
		return node.Description
	}
	return path + " " + node.Description
}
