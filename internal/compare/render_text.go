package compare

import (
	"bytes"
	"fmt"
	"io"
	"sort"

	"github.com/pulumi/cbom-tools/pkg/cbom"
)

// RenderText writes the human-readable compare report as markdown.
func RenderText(out io.Writer, report Report, maxChanges int) error {
	displayed := new(bytes.Buffer)
	n := report.Changes.Display(displayed, maxChanges)

	text := new(bytes.Buffer)
	fmt.Fprintf(text, "### Did the crypto posture change?\n\n")
	if n == 0 {
		fmt.Fprintln(text, "Looking good! No posture changes found.")
	} else {
		fmt.Fprintf(text, "Found %s:\n", cbom.Pluralize(n, "posture change"))
	}
	text.Write(displayed.Bytes())

	writeAlgorithms(text, "New algorithms", report.NewAlgorithms)
	writeAlgorithms(text, "Removed algorithms", report.RemovedAlgorithms)

	_, err := out.Write(text.Bytes())
	return err
}

func writeAlgorithms(out io.Writer, heading string, algorithms []string) {
	if len(algorithms) == 0 {
		return
	}
	sorted := make([]string, len(algorithms))
	copy(sorted, algorithms)
	sort.Strings(sorted)

	fmt.Fprintf(out, "\n#### %s:\n\n", heading)
	for _, a := range sorted {
		fmt.Fprintf(out, "- `%s`\n", a)
	}
}
