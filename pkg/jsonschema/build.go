package jsonschema

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/goliatone/go-schemamodel/pkg/pointer"
	"github.com/goliatone/go-schemamodel/pkg/uischema"
)

// BuildSchema renders a node array back into a document. Keys are written in
// a canonical order: "$" prefixed custom keys, then $ref, title, description,
// type, items, the variant keywords, restrictions, default, the remaining
// custom keys sorted by name and finally $defs on the root.
func BuildSchema(nodes []uischema.Node) (*Object, error) {
	index := make(map[string]uischema.Node, len(nodes))
	for _, node := range nodes {
		if node == nil {
			continue
		}
		index[node.Base().Pointer] = node
	}
	root, ok := index[pointer.Root]
	if !ok {
		return nil, errors.New("jsonschema: root node is missing")
	}
	w := &schemaWriter{index: index, visiting: map[string]bool{}}
	return w.write(root)
}

type schemaWriter struct {
	index    map[string]uischema.Node
	visiting map[string]bool
}

func (w *schemaWriter) write(node uischema.Node) (*Object, error) {
	base := node.Base()
	if w.visiting[base.Pointer] {
		return nil, fmt.Errorf("jsonschema: cycle at %s", base.Pointer)
	}
	w.visiting[base.Pointer] = true
	defer delete(w.visiting, base.Pointer)

	custom := sortedCustom(base.Custom)
	out := NewObject()
	for _, key := range custom.meta {
		out.Set(key, uischema.CloneValue(base.Custom[key]))
	}

	value := NewObject()
	defs := NewObject()
	if err := w.writeShape(node, value, defs); err != nil {
		return nil, err
	}

	if base.IsArray {
		if base.Title != "" {
			out.Set(keywordTitle, base.Title)
		}
		if base.Description != "" {
			out.Set(keywordDesc, base.Description)
		}
		if base.IsNillable {
			out.Set(keywordType, []any{"array", string(uischema.FieldTypeNull)})
		} else {
			out.Set(keywordType, "array")
		}
		writeRestrictions(value, base.Restrictions, false)
		out.Set(pointer.KeywordItems, value)
		writeRestrictions(out, base.Restrictions, true)
	} else {
		if ref, ok := value.Get(keywordRef); ok {
			out.Set(keywordRef, ref)
			value.Delete(keywordRef)
		}
		if base.Title != "" {
			out.Set(keywordTitle, base.Title)
		}
		if base.Description != "" {
			out.Set(keywordDesc, base.Description)
		}
		for _, key := range value.Keys() {
			item, _ := value.Get(key)
			out.Set(key, item)
		}
		writeRestrictions(out, base.Restrictions, false)
		writeRestrictions(out, base.Restrictions, true)
	}
	if base.Default != nil {
		out.Set(keywordDefault, uischema.CloneValue(base.Default))
	}
	for _, key := range custom.rest {
		out.Set(key, uischema.CloneValue(base.Custom[key]))
	}
	if defs.Len() > 0 {
		out.Set(pointer.KeywordDefs, defs)
	}
	return out, nil
}

// writeShape writes the variant keywords of node into value. Definitions
// hanging off the root are collected into defs.
func (w *schemaWriter) writeShape(node uischema.Node, value, defs *Object) error {
	base := node.Base()
	switch typed := node.(type) {
	case *uischema.ReferenceNode:
		value.Set(keywordRef, typed.Reference)
	case *uischema.CombinationNode:
		members := make([]any, 0, len(typed.Children))
		for _, childPtr := range typed.Children {
			if base.Pointer == pointer.Root && pointer.IsDirectDefinition(childPtr) {
				if err := w.writeDefinition(childPtr, defs); err != nil {
					return err
				}
				continue
			}
			child, err := w.child(base.Pointer, childPtr)
			if err != nil {
				return err
			}
			member, err := w.write(child)
			if err != nil {
				return err
			}
			members = append(members, member)
		}
		value.Set(string(typed.CombinationType), members)
	case *uischema.FieldNode:
		if !typed.ImplicitType || typed.FieldType != uischema.FieldTypeObject {
			if typed.IsNillable && !base.IsArray && typed.FieldType != uischema.FieldTypeNull {
				value.Set(keywordType, []any{string(typed.FieldType), string(uischema.FieldTypeNull)})
			} else {
				value.Set(keywordType, string(typed.FieldType))
			}
		}
		props := NewObject()
		required := []any{}
		for _, childPtr := range typed.Children {
			if base.Pointer == pointer.Root && pointer.IsDirectDefinition(childPtr) {
				if err := w.writeDefinition(childPtr, defs); err != nil {
					return err
				}
				continue
			}
			child, err := w.child(base.Pointer, childPtr)
			if err != nil {
				return err
			}
			schema, err := w.write(child)
			if err != nil {
				return err
			}
			name := pointer.ExtractName(childPtr)
			props.Set(name, schema)
			if child.Base().IsRequired {
				required = append(required, name)
			}
		}
		if props.Len() > 0 {
			value.Set(pointer.KeywordProperties, props)
		}
		if len(required) > 0 {
			value.Set(keywordRequired, required)
		}
	default:
		return fmt.Errorf("jsonschema: unknown node type %T at %s", node, base.Pointer)
	}
	return nil
}

func (w *schemaWriter) writeDefinition(ptr string, defs *Object) error {
	def, err := w.child(pointer.Root, ptr)
	if err != nil {
		return err
	}
	schema, err := w.write(def)
	if err != nil {
		return err
	}
	defs.Set(pointer.ExtractName(ptr), schema)
	return nil
}

func (w *schemaWriter) child(parent, ptr string) (uischema.Node, error) {
	node, ok := w.index[ptr]
	if !ok {
		return nil, fmt.Errorf("jsonschema: %s lists missing child %s", parent, ptr)
	}
	return node, nil
}

// writeRestrictions copies either the array level keywords or the value level
// keywords, in the canonical restriction order.
func writeRestrictions(out *Object, restrictions uischema.Restrictions, arrayLevel bool) {
	for _, key := range restrictionKeywords {
		value, ok := restrictions[key]
		if !ok || arrayKeywords[key] != arrayLevel {
			continue
		}
		out.Set(key, uischema.CloneValue(value))
	}
	// Unknown keys end up in restrictions when callers set them directly.
	var extra []string
	for key := range restrictions {
		if !isRestriction(key) && !arrayLevel {
			extra = append(extra, key)
		}
	}
	sort.Strings(extra)
	for _, key := range extra {
		out.Set(key, uischema.CloneValue(restrictions[key]))
	}
}

type customKeys struct {
	meta []string
	rest []string
}

func sortedCustom(custom map[string]any) customKeys {
	out := customKeys{}
	for key := range custom {
		if strings.HasPrefix(key, "$") {
			out.meta = append(out.meta, key)
		} else {
			out.rest = append(out.rest, key)
		}
	}
	sort.Strings(out.meta)
	sort.Strings(out.rest)
	return out
}
