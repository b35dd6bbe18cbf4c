package cbom

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

// ErrInvalidDocument is returned when a payload is not a single well-formed JSON value.
var ErrInvalidDocument = errors.New("unable to parse file, ensure it is valid CBOM or CycloneDX JSON")

// Decode parses a JSON payload into the untyped value ExtractAssets consumes. Numbers are kept
// as json.Number so they are never mistaken for strings.
func Decode(data []byte) (any, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, fmt.Errorf("%w: empty payload", ErrInvalidDocument)
	}

	var doc any
	decoder := json.NewDecoder(bytes.NewReader(data))
	decoder.UseNumber()
	if err := decoder.Decode(&doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDocument, err)
	}
	if err := decoder.Decode(&struct{}{}); err != io.EOF {
		return nil, fmt.Errorf("%w: trailing content", ErrInvalidDocument)
	}
	return doc, nil
}

// Format is the document shape assets are extracted from.
type Format string

const (
	FormatNative    Format = "cbom"
	FormatCycloneDX Format = "cyclonedx"
	FormatUnknown   Format = "unknown"
)

// DetectFormat reports which shape ExtractAssets will read, using the same precedence.
func DetectFormat(doc any) Format {
	root, ok := doc.(map[string]any)
	if !ok {
		return FormatUnknown
	}
	if _, ok := root["cryptoAssets"].([]any); ok {
		return FormatNative
	}
	if _, ok := root["components"].([]any); ok {
		return FormatCycloneDX
	}
	return FormatUnknown
}

// DocumentInfo is the descriptive metadata of a CBOM document. Fields the document does not
// carry are left empty.
type DocumentInfo struct {
	Format      Format `json:"format" yaml:"format"`
	SpecVersion string `json:"specVersion,omitempty" yaml:"specVersion,omitempty"`
	Component   string `json:"component,omitempty" yaml:"component,omitempty"`
	ToolName    string `json:"toolName,omitempty" yaml:"toolName,omitempty"`
	ToolVersion string `json:"toolVersion,omitempty" yaml:"toolVersion,omitempty"`
}

// Describe extracts the document metadata written by CBOM producers: `cbomVersion`,
// `component` and `tool` for native documents, `specVersion` and `metadata` for CycloneDX.
func Describe(doc any) DocumentInfo {
	info := DocumentInfo{Format: DetectFormat(doc)}
	root, _ := doc.(map[string]any)

	switch info.Format {
	case FormatNative:
		info.SpecVersion = asString(root["cbomVersion"])
		info.Component = asString(root["component"])
		tool, _ := root["tool"].(map[string]any)
		info.ToolName = asString(tool["name"])
		info.ToolVersion = asString(tool["version"])
	case FormatCycloneDX:
		info.SpecVersion = asString(root["specVersion"])
		metadata, _ := root["metadata"].(map[string]any)
		component, _ := metadata["component"].(map[string]any)
		info.Component = asString(component["name"])
		// CycloneDX 1.4 lists tools as an array, 1.5 allows {components: [...]}.
		var tool map[string]any
		switch tools := metadata["tools"].(type) {
		case []any:
			if len(tools) > 0 {
				tool, _ = tools[0].(map[string]any)
			}
		case map[string]any:
			if comps, ok := tools["components"].([]any); ok && len(comps) > 0 {
				tool, _ = comps[0].(map[string]any)
			}
		}
		info.ToolName = asString(tool["name"])
		info.ToolVersion = asString(tool["version"])
	}
	return info
}

func asString(v any) string {
	switch v := v.(type) {
	case string:
		return v
	case json.Number:
		return v.String()
	}
	return ""
}
