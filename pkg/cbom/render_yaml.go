package cbom

import (
	"fmt"
	"io"

	"gopkg.in/yaml.v2"
)

// RenderYAML writes the report as YAML, with the same structure and key order as RenderJSON.
func RenderYAML(out io.Writer, report Report, summaryOnly bool) error {
	var payload any = report
	if summaryOnly {
		payload = report.Summary
	}

	data, err := yaml.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal report YAML: %w", err)
	}
	if _, err := out.Write(data); err != nil {
		return fmt.Errorf("write report YAML: %w", err)
	}
	return nil
}

// RenderYAMLReports writes several full reports as one YAML sequence.
func RenderYAMLReports(out io.Writer, reports []Report) error {
	if reports == nil {
		reports = []Report{}
	}
	data, err := yaml.Marshal(reports)
	if err != nil {
		return fmt.Errorf("marshal reports YAML: %w", err)
	}
	if _, err := out.Write(data); err != nil {
		return fmt.Errorf("write reports YAML: %w", err)
	}
	return nil
}
