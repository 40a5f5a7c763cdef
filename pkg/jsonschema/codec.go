package jsonschema

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/goccy/go-json"
	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-schemamodel/pkg/schema"
)

// Format is the serialization of a document.
type Format = schema.Format

const (
	FormatJSON = schema.FormatJSON
	FormatYAML = schema.FormatYAML
)

// DetectFormat sniffs whether raw is JSON or YAML.
func DetectFormat(raw []byte) Format {
	return schema.DetectFormat(raw)
}

// Decode parses a JSON or YAML document into an ordered Object. JSON is read
// through the YAML parser, which accepts it and keeps key order.
func Decode(raw []byte) (*Object, error) {
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil, errors.New("jsonschema: raw schema is empty")
	}
	var root yaml.Node
	if err := yaml.Unmarshal(raw, &root); err != nil {
		return nil, fmt.Errorf("jsonschema: parse schema: %w", err)
	}
	value, err := fromYAMLNode(&root)
	if err != nil {
		return nil, err
	}
	obj, ok := value.(*Object)
	if !ok {
		return nil, errors.New("jsonschema: schema must be an object")
	}
	return obj, nil
}

func fromYAMLNode(node *yaml.Node) (any, error) {
	switch node.Kind {
	case yaml.DocumentNode:
		if len(node.Content) == 0 {
			return nil, errors.New("jsonschema: empty document")
		}
		return fromYAMLNode(node.Content[0])
	case yaml.MappingNode:
		obj := NewObject()
		for idx := 0; idx+1 < len(node.Content); idx += 2 {
			keyNode, valueNode := node.Content[idx], node.Content[idx+1]
			if keyNode.Kind != yaml.ScalarNode {
				return nil, fmt.Errorf("jsonschema: line %d: keys must be strings", keyNode.Line)
			}
			value, err := fromYAMLNode(valueNode)
			if err != nil {
				return nil, err
			}
			obj.Set(keyNode.Value, value)
		}
		return obj, nil
	case yaml.SequenceNode:
		out := make([]any, 0, len(node.Content))
		for _, item := range node.Content {
			value, err := fromYAMLNode(item)
			if err != nil {
				return nil, err
			}
			out = append(out, value)
		}
		return out, nil
	case yaml.AliasNode:
		return fromYAMLNode(node.Alias)
	case yaml.ScalarNode:
		var value any
		if err := node.Decode(&value); err != nil {
			return nil, fmt.Errorf("jsonschema: line %d: %w", node.Line, err)
		}
		return value, nil
	default:
		return nil, fmt.Errorf("jsonschema: line %d: unsupported node", node.Line)
	}
}

// EncodeJSON renders obj as JSON. A non-empty indent pretty prints.
func EncodeJSON(obj *Object, indent string) ([]byte, error) {
	if indent == "" {
		return json.Marshal(obj)
	}
	return json.MarshalIndent(obj, "", indent)
}

// EncodeYAML renders obj as YAML with two space indentation.
func EncodeYAML(obj *Object) ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(obj); err != nil {
		return nil, fmt.Errorf("jsonschema: encode yaml: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("jsonschema: encode yaml: %w", err)
	}
	return buf.Bytes(), nil
}

// Encode renders obj in the requested format. JSON output is indented and
// ends with a newline.
func Encode(obj *Object, format Format) ([]byte, error) {
	switch format {
	case FormatYAML:
		return EncodeYAML(obj)
	case FormatJSON, "":
		out, err := EncodeJSON(obj, "  ")
		if err != nil {
			return nil, fmt.Errorf("jsonschema: encode json: %w", err)
		}
		return append(out, '\n'), nil
	default:
		return nil, fmt.Errorf("jsonschema: unsupported format %q", format)
	}
}
