package cbom

import (
	"encoding/json"
	"fmt"
	"io"
)

// RenderJSON writes the report as indented JSON. With summaryOnly, only the DashboardData is
// written, which is the shape dashboards consume.
func RenderJSON(out io.Writer, report Report, summaryOnly bool) error {
	var payload any = report
	if summaryOnly {
		payload = report.Summary
	}

	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal report JSON: %w", err)
	}
	data = append(data, '\n')
	if _, err := out.Write(data); err != nil {
		return fmt.Errorf("write report JSON: %w", err)
	}
	return nil
}

// RenderJSONReports writes several full reports as one indented JSON array.
func RenderJSONReports(out io.Writer, reports []Report) error {
	if reports == nil {
		reports = []Report{}
	}
	data, err := json.MarshalIndent(reports, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal reports JSON: %w", err)
	}
	data = append(data, '\n')
	if _, err := out.Write(data); err != nil {
		return fmt.Errorf("write reports JSON: %w", err)
	}
	return nil
}
