package cbom

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/pulumi/inflector"
)

const barWidth = 30

// Legend colors, shared with the web dashboard so both views read the same.
var bucketColors = map[string]lipgloss.Color{
	"quantumSafe":    "#34d399",
	"notQuantumSafe": "#f97316",
	"unknown":        "#64748b",
	"hash":           "#38bdf8",
	"mac":            "#f472b6",
	"block-cipher":   "#60a5fa",
	"pke":            "#c084fc",
	"signature":      "#fb7185",
	"ae":             "#fbbf24",
	"other":          "#94a3b8",
}

var functionColors = []lipgloss.Color{
	"#60a5fa", "#34d399", "#f97316", "#f472b6", "#fbbf24", "#c084fc", "#38bdf8", "#94a3b8",
}

// Pluralize formats a count with its noun, e.g. "1 asset", "3 assets".
func Pluralize(n int, noun string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, noun)
	}
	return fmt.Sprintf("%d %s", n, inflector.Pluralize(noun))
}

type textRenderer struct {
	sb       strings.Builder
	title    lipgloss.Style
	subtle   lipgloss.Style
	renderer *lipgloss.Renderer
}

// RenderText writes a human-readable report. Colors are only emitted when out is a terminal.
func RenderText(out io.Writer, report Report) error {
	r := lipgloss.NewRenderer(out)
	t := &textRenderer{
		renderer: r,
		title:    r.NewStyle().Bold(true),
		subtle:   r.NewStyle().Faint(true),
	}
	t.render(report)

	if _, err := io.WriteString(out, t.sb.String()); err != nil {
		return fmt.Errorf("write text report: %w", err)
	}
	return nil
}

func (t *textRenderer) render(report Report) {
	data := report.Summary

	heading := "Aggregate of all documents"
	if report.Source != "" {
		heading = report.Source
	}
	t.line(t.title.Render(heading))
	if doc := report.Document; doc.Format != FormatUnknown {
		desc := string(doc.Format)
		if doc.SpecVersion != "" {
			desc += " " + doc.SpecVersion
		}
		if doc.Component != "" {
			desc = doc.Component + " (" + desc + ")"
		}
		if doc.ToolName != "" {
			desc += ", generated by " + strings.TrimSpace(doc.ToolName+" "+doc.ToolVersion)
		}
		t.line(t.subtle.Render(desc))
	}
	t.line("")

	t.line(fmt.Sprintf("Found %s", Pluralize(data.TotalAssets, "crypto asset")))
	t.line(fmt.Sprintf("%d of %d primitives in use", data.TotalPrimitives, numPrimitives))
	t.line(fmt.Sprintf("%d of %d functions in use", data.TotalFunctions, numFunctions))

	safety := make(Breakdown, 0, numQuantumSafety)
	for q := QuantumSafety(0); q < numQuantumSafety; q++ {
		safety = append(safety, BucketCount{Name: q.String(), Count: data.QuantumSafety.Get(q)})
	}
	t.section("Quantum safety", safety, nil)
	t.section("Primitives", data.Primitives, nil)
	t.section("Functions", data.Functions, functionColors)

	if len(report.Inventory) > 0 {
		t.line("")
		t.line(t.title.Render("Algorithms"))
		for _, e := range report.Inventory {
			t.line(fmt.Sprintf("  %-18s %5d  %-15s %s",
				e.Algorithm, e.Count, e.QuantumSafety, strings.Join(e.AssetTypes, ", ")))
		}
	}
}

func (t *textRenderer) section(title string, b Breakdown, colors []lipgloss.Color) {
	t.line("")
	t.line(t.title.Render(title))
	largest := b.Max()
	for i, bc := range b {
		color, ok := bucketColors[bc.Name]
		if colors != nil {
			color, ok = colors[i%len(colors)], true
		}
		bar := strings.Repeat("█", barLength(bc.Count, largest))
		if ok {
			bar = t.renderer.NewStyle().Foreground(color).Render(bar)
		}
		t.line(strings.TrimRight(fmt.Sprintf("  %-15s %5d  %s", bc.Name, bc.Count, bar), " "))
	}
}

// barLength scales count against the largest bucket. Any nonzero count gets at least one cell.
func barLength(count, largest int) int {
	if count <= 0 || largest <= 0 {
		return 0
	}
	return max(1, count*barWidth/largest)
}

func (t *textRenderer) line(s string) {
	t.sb.WriteString(s)
	t.sb.WriteByte('\n')
}
