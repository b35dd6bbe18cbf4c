package compare

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
)

type summaryOnlyJSON struct {
	Summary  []SummaryItem `json:"summary"`
	Severity string        `json:"severity"`
}

type fullJSON struct {
	Summary           []SummaryItem `json:"summary"`
	Severity          string        `json:"severity"`
	Changes           []string      `json:"changes"`
	NewAlgorithms     []string      `json:"new_algorithms"`
	RemovedAlgorithms []string      `json:"removed_algorithms"`
}

// RenderJSON writes a deterministic JSON payload for compare results.
func RenderJSON(out io.Writer, result CompareResult, summaryOnly bool) error {
	summary := normalizeSummary(result.Summary)
	severity := result.Severity
	if severity == "" {
		severity = "none"
	}

	var payload any
	if summaryOnly {
		payload = summaryOnlyJSON{Summary: summary, Severity: severity}
	} else {
		payload = fullJSON{
			Summary:           summaryWithoutEntries(summary),
			Severity:          severity,
			Changes:           cloneOrEmpty(result.Changes),
			NewAlgorithms:     sortedOrEmpty(result.NewAlgorithms),
			RemovedAlgorithms: sortedOrEmpty(result.RemovedAlgorithms),
		}
	}

	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal compare JSON: %w", err)
	}
	if _, err := out.Write(data); err != nil {
		return fmt.Errorf("write compare JSON: %w", err)
	}
	return nil
}

func normalizeSummary(items []SummaryItem) []SummaryItem {
	normalized := make([]SummaryItem, len(items))
	for i, item := range items {
		normalized[i] = SummaryItem{
			Category: item.Category,
			Count:    item.Count,
			Entries:  sortedOrEmpty(item.Entries),
		}
	}
	sort.Slice(normalized, func(i, j int) bool {
		if normalized[i].Category != normalized[j].Category {
			return normalized[i].Category < normalized[j].Category
		}
		return normalized[i].Count < normalized[j].Count
	})
	return normalized
}

func summaryWithoutEntries(items []SummaryItem) []SummaryItem {
	stripped := make([]SummaryItem, len(items))
	for i, item := range items {
		stripped[i] = SummaryItem{Category: item.Category, Count: item.Count}
	}
	return stripped
}
