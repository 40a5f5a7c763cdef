package schemamodel

import (
	"fmt"
	"strings"

	"github.com/goliatone/go-schemamodel/pkg/pointer"
	"github.com/goliatone/go-schemamodel/pkg/uischema"
)

// UniquePointerPrefix marks pointers that identify a node by its path through
// the rendered tree rather than by its schema location. A definition shown
// below two references has one schema pointer but two unique pointers.
const UniquePointerPrefix = "uniquePointer-"

// UniquePointer returns the tree identity of the node at schemaPointer when it
// is displayed below the node identified by uniqueParent. Nodes outside $defs,
// or without a parent, map onto their schema pointer.
func UniquePointer(schemaPointer, uniqueParent string) string {
	if uniqueParent == "" || !pointer.IsDefinition(schemaPointer) {
		return UniquePointerPrefix + schemaPointer
	}
	parent := strings.TrimPrefix(uniqueParent, UniquePointerPrefix)
	return UniquePointerPrefix + pointer.Join(parent, pointer.ExtractCategory(schemaPointer), pointer.ExtractName(schemaPointer))
}

// ParentUniquePointer drops the name and category segments, plus an "items"
// segment when the parent is an array.
func ParentUniquePointer(unique string) string {
	return UniquePointerPrefix + pointer.Parent(strings.TrimPrefix(unique, UniquePointerPrefix))
}

// SchemaPointerByUniquePointer maps a tree identity back onto the schema
// pointer of the node it displays.
func (m *SchemaModel) SchemaPointerByUniquePointer(unique string) (string, error) {
	ptr, err := m.schemaPointerByUnique(unique)
	return ptr, opError("resolve unique", unique, err)
}

func (m *SchemaModel) schemaPointerByUnique(unique string) (string, error) {
	ptr := strings.TrimPrefix(unique, UniquePointerPrefix)
	if m.nodes.Has(ptr) {
		return ptr, nil
	}
	if ptr == pointer.Root || !strings.HasPrefix(ptr, pointer.Root+"/") {
		return "", fmt.Errorf("%w: %q", ErrNotFound, ptr)
	}
	parentSchema, err := m.schemaPointerByUnique(ParentUniquePointer(unique))
	if err != nil {
		return "", err
	}
	parent, err := m.finalNode(parentSchema)
	if err != nil {
		return "", err
	}
	resolved := uischema.ChildPointer(parent, pointer.ExtractName(ptr))
	if !m.nodes.Has(resolved) {
		return "", fmt.Errorf("%w: %q", ErrNotFound, unique)
	}
	return resolved, nil
}

// NodeByUniquePointer is Node over a tree identity.
func (m *SchemaModel) NodeByUniquePointer(unique string) (uischema.Node, error) {
	ptr, err := m.SchemaPointerByUniquePointer(unique)
	if err != nil {
		return nil, err
	}
	return m.Node(ptr)
}

// WillResultInCircularReferences reports whether placing the node at child
// (or a reference to it, when child is a definition) below parent would let a
// definition reach itself through references.
func (m *SchemaModel) WillResultInCircularReferences(child, parent string) bool {
	host := m.hostDefinition(parent)
	if host == "" {
		return false
	}
	reached := make(map[string]struct{})
	m.collectReachable(child, reached)
	_, cyclic := reached[host]
	return cyclic
}

// hostDefinition returns the definition whose subtree contains ptr once
// references are followed, or "" for plain properties.
func (m *SchemaModel) hostDefinition(ptr string) string {
	if node, ok := m.nodes.Get(ptr); ok {
		if ref, isRef := node.(*uischema.ReferenceNode); isRef {
			ptr = ref.Reference
		}
	}
	if !pointer.IsDefinition(ptr) {
		return ""
	}
	tokens, err := pointer.Parse(ptr)
	if err != nil || len(tokens) < 2 {
		return ""
	}
	return pointer.Definition(tokens[1])
}

// collectReachable marks every definition reachable from the subtree at ptr.
func (m *SchemaModel) collectReachable(ptr string, reached map[string]struct{}) {
	if pointer.IsDirectDefinition(ptr) {
		if _, done := reached[ptr]; done {
			return
		}
		reached[ptr] = struct{}{}
	}
	for _, member := range m.subtree(ptr) {
		node, ok := m.nodes.Get(member)
		if !ok {
			continue
		}
		if ref, isRef := node.(*uischema.ReferenceNode); isRef {
			if _, done := reached[ref.Reference]; !done {
				m.collectReachable(ref.Reference, reached)
			}
		}
	}
}
