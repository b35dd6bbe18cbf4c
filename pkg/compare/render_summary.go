package compare

import (
	"fmt"
	"io"
	"strings"
)

// RenderSummary writes one line per change category, without the individual entries.
func RenderSummary(out io.Writer, result CompareResult) error {
	var b strings.Builder
	if len(result.Summary) == 0 {
		b.WriteString("No posture changes found.\n")
	} else {
		severity := result.Severity
		if severity == "" {
			severity = "none"
		}
		fmt.Fprintf(&b, "Summary by category (most severe: %s):\n", severity)
		for _, item := range normalizeSummary(result.Summary) {
			fmt.Fprintf(&b, "- %s: %d\n", item.Category, item.Count)
		}
	}

	if _, err := io.WriteString(out, b.String()); err != nil {
		return fmt.Errorf("write summary output: %w", err)
	}
	return nil
}
