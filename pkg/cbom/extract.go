package cbom

import "strings"

// Property names carried by CycloneDX components produced by CBOM scanners.
const (
	propertyAlgorithm = "cbom:algorithm"
	propertyMode      = "cbom:mode"
	propertyAssetType = "cbom:assetType"
	propertyAPI       = "cbom:api"
)

// ExtractAssets pulls the asset records out of a decoded JSON document.
//
// Two shapes are recognized, in order: a native CBOM with a `cryptoAssets` array, and a
// CycloneDX BOM whose `components` carry `cbom:*` properties. Anything else yields no assets.
// ExtractAssets never fails: malformed parts of the document read as absent data.
func ExtractAssets(doc any) []RawAsset {
	root, ok := doc.(map[string]any)
	if !ok {
		return []RawAsset{}
	}
	if items, ok := root["cryptoAssets"].([]any); ok {
		return extractNative(items)
	}
	if items, ok := root["components"].([]any); ok {
		return extractComponents(items)
	}
	return []RawAsset{}
}

func extractNative(items []any) []RawAsset {
	assets := make([]RawAsset, len(items))
	for i, item := range items {
		fields, _ := item.(map[string]any)
		assets[i] = RawAsset{
			Algorithm: stringField(fields, "algorithm"),
			Mode:      stringField(fields, "mode"),
			AssetType: stringField(fields, "assetType"),
			API:       stringField(fields, "api"),
		}
	}
	return assets
}

func extractComponents(items []any) []RawAsset {
	assets := make([]RawAsset, len(items))
	for i, item := range items {
		lookup := componentProperties(item)
		assets[i] = RawAsset{
			Algorithm: lookupField(lookup, propertyAlgorithm),
			Mode:      lookupField(lookup, propertyMode),
			AssetType: lookupField(lookup, propertyAssetType),
			API:       lookupField(lookup, propertyAPI),
		}
	}
	return assets
}

// componentProperties builds the name -> value lookup of a component. Entries whose name or
// value is not a string are skipped; a repeated name keeps its last value.
func componentProperties(component any) map[string]string {
	fields, _ := component.(map[string]any)
	props, _ := fields["properties"].([]any)
	lookup := make(map[string]string, len(props))
	for _, p := range props {
		entry, _ := p.(map[string]any)
		name, ok := entry["name"].(string)
		if !ok {
			continue
		}
		value, ok := entry["value"].(string)
		if !ok {
			continue
		}
		lookup[name] = value
	}
	return lookup
}

func stringField(fields map[string]any, key string) *string {
	v, ok := fields[key].(string)
	if !ok {
		return nil
	}
	return &v
}

func lookupField(lookup map[string]string, key string) *string {
	v, ok := lookup[key]
	if !ok {
		return nil
	}
	return &v
}

// NormalizeValue upper-cases a value, mapping an absent one to Unknown.
func NormalizeValue(v *string) string {
	if v == nil {
		return Unknown
	}
	return strings.ToUpper(*v)
}

// normalizeAPI lower-cases an API name; an absent one becomes empty rather than Unknown so
// that it matches no substring test.
func normalizeAPI(v *string) string {
	if v == nil {
		return ""
	}
	return strings.ToLower(*v)
}
