// Package jsonschema converts JSON Schema 2020-12 documents, written as JSON
// or YAML, to and from the flat node arrays handled by schemamodel.
package jsonschema

// Detect reports whether the raw payload appears to be a JSON Schema document
// rather than an OpenAPI description or arbitrary data.
func Detect(raw []byte) bool {
	obj, err := Decode(raw)
	if err != nil {
		return false
	}
	if obj.Has("openapi") || obj.Has("swagger") {
		return false
	}
	for _, key := range []string{"$schema", "$id", "$defs", "properties", "type", "items", "$ref", "allOf", "anyOf", "oneOf"} {
		if obj.Has(key) {
			return true
		}
	}
	return false
}
