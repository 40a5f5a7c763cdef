package uischema

// ObjectKind discriminates the node variants.
type ObjectKind string

const (
	ObjectKindField       ObjectKind = "field"
	ObjectKindCombination ObjectKind = "combination"
	ObjectKindReference   ObjectKind = "reference"
)

// FieldType enumerates the JSON Schema primitive types a field node may carry.
type FieldType string

const (
	FieldTypeObject  FieldType = "object"
	FieldTypeString  FieldType = "string"
	FieldTypeNumber  FieldType = "number"
	FieldTypeInteger FieldType = "integer"
	FieldTypeBoolean FieldType = "boolean"
	FieldTypeNull    FieldType = "null"
)

// Valid reports whether t is one of the supported field types.
func (t FieldType) Valid() bool {
	switch t {
	case FieldTypeObject, FieldTypeString, FieldTypeNumber, FieldTypeInteger, FieldTypeBoolean, FieldTypeNull:
		return true
	default:
		return false
	}
}

// CombinationKind enumerates the JSON Schema composition keywords.
type CombinationKind string

const (
	CombinationAllOf CombinationKind = "allOf"
	CombinationAnyOf CombinationKind = "anyOf"
	CombinationOneOf CombinationKind = "oneOf"
)

// Valid reports whether k is allOf, anyOf or oneOf.
func (k CombinationKind) Valid() bool {
	switch k {
	case CombinationAllOf, CombinationAnyOf, CombinationOneOf:
		return true
	default:
		return false
	}
}

// Restrictions maps validation keywords (minLength, pattern, minItems, enum,
// ...) to their values.
type Restrictions map[string]any

// Clone returns a deep copy of the restrictions.
func (r Restrictions) Clone() Restrictions {
	if r == nil {
		return nil
	}
	out := make(Restrictions, len(r))
	for key, value := range r {
		out[key] = CloneValue(value)
	}
	return out
}

// Common holds the attributes shared by every node variant.
type Common struct {
	Pointer      string         `json:"pointer"`
	Title        string         `json:"title,omitempty"`
	Description  string         `json:"description,omitempty"`
	Default      any            `json:"default,omitempty"`
	IsRequired   bool           `json:"isRequired"`
	IsArray      bool           `json:"isArray"`
	IsNillable   bool           `json:"isNillable"`
	ImplicitType bool           `json:"implicitType,omitempty"`
	Restrictions Restrictions   `json:"restrictions,omitempty"`
	Custom       map[string]any `json:"custom,omitempty"`
}

func (c Common) clone() Common {
	out := c
	out.Default = CloneValue(c.Default)
	out.Restrictions = c.Restrictions.Clone()
	if c.Custom != nil {
		out.Custom = make(map[string]any, len(c.Custom))
		for key, value := range c.Custom {
			out.Custom[key] = CloneValue(value)
		}
	}
	return out
}

// Node is the sealed sum type over FieldNode, CombinationNode and
// ReferenceNode. Consumers switch on the concrete type.
type Node interface {
	Kind() ObjectKind
	// Base exposes the shared attributes for reading and in-place updates.
	Base() *Common
	// Clone returns a fully independent copy.
	Clone() Node
	sealed()
}

// Parent is implemented by the variants that own child pointers.
type Parent interface {
	Node
	ChildPointers() []string
	SetChildPointers(children []string)
}

// FieldNode is a typed schema node. Object fields own their properties.
type FieldNode struct {
	Common
	FieldType FieldType `json:"fieldType"`
	Children  []string  `json:"children"`
}

// CombinationNode composes its members with allOf, anyOf or oneOf.
type CombinationNode struct {
	Common
	CombinationType CombinationKind `json:"combinationType"`
	Children        []string        `json:"children"`
}

// ReferenceNode points at a definition under $defs.
type ReferenceNode struct {
	Common
	Reference string `json:"reference"`
}

var (
	_ Parent = (*FieldNode)(nil)
	_ Parent = (*CombinationNode)(nil)
	_ Node   = (*ReferenceNode)(nil)
)

func (n *FieldNode) Kind() ObjectKind { return ObjectKindField }
func (n *FieldNode) Base() *Common    { return &n.Common }
func (n *FieldNode) sealed()          {}

func (n *FieldNode) Clone() Node {
	out := *n
	out.Common = n.Common.clone()
	out.Children = cloneStrings(n.Children)
	return &out
}

func (n *FieldNode) ChildPointers() []string { return n.Children }

func (n *FieldNode) SetChildPointers(children []string) { n.Children = children }

func (n *CombinationNode) Kind() ObjectKind { return ObjectKindCombination }
func (n *CombinationNode) Base() *Common    { return &n.Common }
func (n *CombinationNode) sealed()          {}

func (n *CombinationNode) Clone() Node {
	out := *n
	out.Common = n.Common.clone()
	out.Children = cloneStrings(n.Children)
	return &out
}

func (n *CombinationNode) ChildPointers() []string { return n.Children }

func (n *CombinationNode) SetChildPointers(children []string) { n.Children = children }

func (n *ReferenceNode) Kind() ObjectKind { return ObjectKindReference }
func (n *ReferenceNode) Base() *Common    { return &n.Common }
func (n *ReferenceNode) sealed()          {}

func (n *ReferenceNode) Clone() Node {
	out := *n
	out.Common = n.Common.clone()
	return &out
}

func cloneStrings(in []string) []string {
	if in == nil {
		return []string{}
	}
	out := make([]string, len(in))
	copy(out, in)
	return out
}

// CloneNodes deep copies a node list.
func CloneNodes(nodes []Node) []Node {
	out := make([]Node, len(nodes))
	for idx, node := range nodes {
		out[idx] = node.Clone()
	}
	return out
}

// ValueCloner is implemented by ordered document values that carry their own
// deep copy logic.
type ValueCloner interface {
	CloneValue() any
}

// CloneValue deep copies JSON-like values stored in defaults, restrictions and
// custom keywords.
func CloneValue(value any) any {
	switch typed := value.(type) {
	case ValueCloner:
		return typed.CloneValue()
	case map[string]any:
		out := make(map[string]any, len(typed))
		for key, val := range typed {
			out[key] = CloneValue(val)
		}
		return out
	case []any:
		out := make([]any, len(typed))
		for idx, val := range typed {
			out[idx] = CloneValue(val)
		}
		return out
	default:
		return typed
	}
}
