package uischema

import "github.com/goliatone/go-schemamodel/pkg/pointer"

// NewRoot returns the empty object node stored at the root pointer.
func NewRoot() *FieldNode {
	node := NewFieldNode(FieldTypeObject)
	node.Pointer = pointer.Root
	return node
}

// NewFieldNode returns a field with default attributes and no pointer.
func NewFieldNode(fieldType FieldType) *FieldNode {
	if fieldType == "" {
		fieldType = FieldTypeObject
	}
	return &FieldNode{
		FieldType: fieldType,
		Children:  []string{},
	}
}

// NewCombinationNode returns a combination with default attributes and no
// pointer.
func NewCombinationNode(kind CombinationKind) *CombinationNode {
	if kind == "" {
		kind = CombinationAllOf
	}
	return &CombinationNode{
		CombinationType: kind,
		Children:        []string{},
	}
}

// NewReferenceNode returns a reference to the definition at target.
func NewReferenceNode(target string) *ReferenceNode {
	return &ReferenceNode{Reference: target}
}

// IsNil reports whether node is nil, including a typed nil pointer held in
// the interface.
func IsNil(node Node) bool {
	switch typed := node.(type) {
	case nil:
		return true
	case *FieldNode:
		return typed == nil
	case *CombinationNode:
		return typed == nil
	case *ReferenceNode:
		return typed == nil
	default:
		return false
	}
}

func IsField(node Node) bool {
	_, ok := node.(*FieldNode)
	return ok
}

func IsCombination(node Node) bool {
	_, ok := node.(*CombinationNode)
	return ok
}

func IsReference(node Node) bool {
	_, ok := node.(*ReferenceNode)
	return ok
}

func IsFieldOrCombination(node Node) bool {
	return IsField(node) || IsCombination(node)
}

// IsDefinition reports whether the node lives under $defs.
func IsDefinition(node Node) bool {
	return pointer.IsDefinition(node.Base().Pointer)
}

// IsProperty reports whether the node is neither the root nor inside $defs.
func IsProperty(node Node) bool {
	ptr := node.Base().Pointer
	return ptr != pointer.Root && !pointer.IsDefinition(ptr)
}

// IsValidParent reports whether the node may own children: object fields and
// combinations.
func IsValidParent(node Node) bool {
	switch typed := node.(type) {
	case *FieldNode:
		return typed.FieldType == FieldTypeObject
	case *CombinationNode:
		return true
	case *ReferenceNode:
		return false
	default:
		return false
	}
}

func IsArray(node Node) bool {
	return node.Base().IsArray
}

// Children returns the child pointers of node, or nil for references.
func Children(node Node) []string {
	if parent, ok := node.(Parent); ok {
		return parent.ChildPointers()
	}
	return nil
}

// ChildPointer builds the pointer a child named name would have under parent.
// Object fields place children under "properties" and combinations under their
// keyword; array parents add an "items" segment first.
func ChildPointer(parent Node, name string) string {
	base := parent.Base()
	tokens := make([]string, 0, 3)
	if base.IsArray {
		tokens = append(tokens, pointer.KeywordItems)
	}
	switch typed := parent.(type) {
	case *CombinationNode:
		tokens = append(tokens, string(typed.CombinationType))
	default:
		tokens = append(tokens, pointer.KeywordProperties)
	}
	tokens = append(tokens, name)
	return pointer.Join(base.Pointer, tokens...)
}

// ExpectedChildPointer returns the pointer child should have under parent.
// Definitions hanging off the root keep their $defs pointer.
func ExpectedChildPointer(parent Node, child string) string {
	if parent.Base().Pointer == pointer.Root && pointer.IsDirectDefinition(child) {
		return child
	}
	return ChildPointer(parent, pointer.ExtractName(child))
}
