package schemamodel

import (
	"fmt"

	"github.com/goliatone/go-schemamodel/pkg/pointer"
	"github.com/goliatone/go-schemamodel/pkg/uischema"
)

// NodePosition addresses a slot among the children of a parent. An Index that
// is negative or not below the child count means "append".
type NodePosition struct {
	ParentPointer string `json:"parentPointer"`
	Index         int    `json:"index"`
}

// RootPosition appends to the children of the root node.
func RootPosition() NodePosition {
	return NodePosition{ParentPointer: pointer.Root, Index: -1}
}

// At is shorthand for a NodePosition literal.
func At(parent string, index int) NodePosition {
	return NodePosition{ParentPointer: parent, Index: index}
}

// SchemaModel is a pointer indexed JSON Schema document. It is not safe for
// concurrent use; DeepClone yields an independent copy.
type SchemaModel struct {
	nodes *NodeMap
}

// New wraps an existing node map. The model mutates nodes in place.
func New(nodes *NodeMap) *SchemaModel {
	if nodes == nil {
		nodes = NewNodeMap()
	}
	return &SchemaModel{nodes: nodes}
}

// FromNodes builds a model from a flat node list whose first entry is usually
// the root. Nodes are stored as given, not copied.
func FromNodes(nodes []uischema.Node) *SchemaModel {
	return New(NewNodeMap(nodes...))
}

// NodeMap exposes the backing map.
func (m *SchemaModel) NodeMap() *NodeMap { return m.nodes }

// Nodes returns the nodes in map order; FromNodes(list).Nodes() equals list.
func (m *SchemaModel) Nodes() []uischema.Node { return m.nodes.Values() }

// DeepClone copies the map and every node.
func (m *SchemaModel) DeepClone() *SchemaModel {
	return New(m.nodes.Clone())
}

// IsEmpty reports whether the root is missing or has no children.
func (m *SchemaModel) IsEmpty() bool {
	root, ok := m.nodes.Get(pointer.Root)
	if !ok {
		return true
	}
	return len(uischema.Children(root)) == 0
}

// Validate runs the structural checks of uischema.Validate over the model.
func (m *SchemaModel) Validate() error {
	return uischema.Validate(m.Nodes())
}

func (m *SchemaModel) HasNode(ptr string) bool {
	return m.nodes.Has(ptr)
}

// Node returns the node at ptr or an error wrapping ErrNotFound.
func (m *SchemaModel) Node(ptr string) (uischema.Node, error) {
	node, err := m.lookup(ptr)
	return node, opError("get", ptr, err)
}

func (m *SchemaModel) lookup(ptr string) (uischema.Node, error) {
	node, ok := m.nodes.Get(ptr)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrNotFound, ptr)
	}
	return node, nil
}

func (m *SchemaModel) RootNode() (uischema.Node, error) {
	return m.Node(pointer.Root)
}

func (m *SchemaModel) HasDefinition(name string) bool {
	return m.nodes.Has(pointer.Definition(name))
}

func (m *SchemaModel) Definition(name string) (uischema.Node, error) {
	ptr := pointer.Definition(name)
	node, err := m.lookup(ptr)
	return node, opError("definition", ptr, err)
}

// Definitions returns the $defs nodes in root child order.
func (m *SchemaModel) Definitions() []uischema.Node {
	children, err := m.RootChildren()
	if err != nil {
		return nil
	}
	var out []uischema.Node
	for _, child := range children {
		if pointer.IsDirectDefinition(child.Base().Pointer) {
			out = append(out, child)
		}
	}
	return out
}

// RootChildren returns properties and definitions hanging off the root.
func (m *SchemaModel) RootChildren() ([]uischema.Node, error) {
	root, err := m.lookup(pointer.Root)
	if err != nil {
		return nil, opError("children", pointer.Root, err)
	}
	children, err := m.childrenOf(root)
	return children, opError("children", pointer.Root, err)
}

// RootProperties is RootChildren without definitions.
func (m *SchemaModel) RootProperties() ([]uischema.Node, error) {
	children, err := m.RootChildren()
	if err != nil {
		return nil, err
	}
	out := make([]uischema.Node, 0, len(children))
	for _, child := range children {
		if !pointer.IsDirectDefinition(child.Base().Pointer) {
			out = append(out, child)
		}
	}
	return out, nil
}

// ChildNodes returns the children of the node at ptr, following references to
// the definition they point at.
func (m *SchemaModel) ChildNodes(ptr string) ([]uischema.Node, error) {
	node, err := m.finalNode(ptr)
	if err != nil {
		return nil, opError("children", ptr, err)
	}
	children, err := m.childrenOf(node)
	return children, opError("children", ptr, err)
}

func (m *SchemaModel) childrenOf(node uischema.Node) ([]uischema.Node, error) {
	pointers := uischema.Children(node)
	out := make([]uischema.Node, 0, len(pointers))
	for _, child := range pointers {
		childNode, ok := m.nodes.Get(child)
		if !ok {
			return nil, fmt.Errorf("%w: dangling child %q", ErrCorrupted, child)
		}
		out = append(out, childNode)
	}
	return out, nil
}

// ReferredNode resolves a reference one step.
func (m *SchemaModel) ReferredNode(ref *uischema.ReferenceNode) (uischema.Node, error) {
	node, err := m.lookup(ref.Reference)
	return node, opError("resolve", ref.Pointer, err)
}

// FinalNode follows references from ptr until it reaches a field or a
// combination.
func (m *SchemaModel) FinalNode(ptr string) (uischema.Node, error) {
	node, err := m.finalNode(ptr)
	return node, opError("resolve", ptr, err)
}

func (m *SchemaModel) finalNode(ptr string) (uischema.Node, error) {
	seen := make(map[string]struct{})
	current := ptr
	for {
		node, err := m.lookup(current)
		if err != nil {
			return nil, err
		}
		ref, ok := node.(*uischema.ReferenceNode)
		if !ok {
			return node, nil
		}
		if _, loop := seen[current]; loop {
			return nil, fmt.Errorf("%w: reference loop at %q", ErrCorrupted, current)
		}
		seen[current] = struct{}{}
		current = ref.Reference
	}
}

// ParentNode returns the node whose children list ptr. The root has no parent.
func (m *SchemaModel) ParentNode(ptr string) (uischema.Node, error) {
	parent, err := m.parentNode(ptr)
	if err != nil {
		return nil, opError("parent", ptr, err)
	}
	return parent, nil
}

func (m *SchemaModel) parentNode(ptr string) (uischema.Parent, error) {
	if ptr == pointer.Root {
		return nil, fmt.Errorf("%w: the root has no parent", ErrNotFound)
	}
	node, err := m.lookup(pointer.Parent(ptr))
	if err != nil {
		return nil, err
	}
	parent, ok := node.(uischema.Parent)
	if !ok {
		return nil, fmt.Errorf("%w: parent of %q cannot own children", ErrCorrupted, ptr)
	}
	return parent, nil
}

// IndexOfChild returns the position of ptr within its parent's children.
func (m *SchemaModel) IndexOfChild(ptr string) (int, error) {
	parent, err := m.parentNode(ptr)
	if err != nil {
		return -1, opError("index", ptr, err)
	}
	idx := indexOf(parent.ChildPointers(), ptr)
	if idx < 0 {
		return -1, opError("index", ptr, fmt.Errorf("%w: %q is not listed by its parent", ErrCorrupted, ptr))
	}
	return idx, nil
}

// HasChildWithName reports whether the parent, resolved through references,
// already has a child named name.
func (m *SchemaModel) HasChildWithName(parentPtr, name string) bool {
	parent, err := m.finalNode(parentPtr)
	if err != nil {
		return false
	}
	return hasChildNamed(parent, name)
}

// ChildPointer returns the pointer a child named name would get under the
// parent at parentPtr, resolved through references.
func (m *SchemaModel) ChildPointer(parentPtr, name string) (string, error) {
	parent, err := m.finalNode(parentPtr)
	if err != nil {
		return "", opError("pointer", parentPtr, err)
	}
	return uischema.ChildPointer(parent, name), nil
}

// IsChildOfCombination reports whether the parent of ptr is a combination.
func (m *SchemaModel) IsChildOfCombination(ptr string) bool {
	if ptr == pointer.Root || pointer.IsDirectDefinition(ptr) {
		return false
	}
	parent, err := m.parentNode(ptr)
	if err != nil {
		return false
	}
	return uischema.IsCombination(parent)
}

// ReferringNodes lists the references whose target is ptr.
func (m *SchemaModel) ReferringNodes(ptr string) []*uischema.ReferenceNode {
	var out []*uischema.ReferenceNode
	for _, node := range m.nodes.Values() {
		if ref, ok := node.(*uischema.ReferenceNode); ok && ref.Reference == ptr {
			out = append(out, ref)
		}
	}
	return out
}

func (m *SchemaModel) HasReferringNodes(ptr string) bool {
	for _, node := range m.nodes.Values() {
		if ref, ok := node.(*uischema.ReferenceNode); ok && ref.Reference == ptr {
			return true
		}
	}
	return false
}

// GenerateUniqueChildName returns base followed by the smallest non-negative
// integer that no child of the parent uses yet: "name0", "name1", ...
func (m *SchemaModel) GenerateUniqueChildName(parentPtr, base string) (string, error) {
	parent, err := m.finalNode(parentPtr)
	if err != nil {
		return "", opError("unique name", parentPtr, err)
	}
	return uniqueString(childNames(parent), base), nil
}

// GenerateUniqueDefinitionName is GenerateUniqueChildName over $defs.
func (m *SchemaModel) GenerateUniqueDefinitionName(base string) string {
	defs := m.Definitions()
	names := make([]string, len(defs))
	for idx, def := range defs {
		names[idx] = pointer.ExtractName(def.Base().Pointer)
	}
	return uniqueString(names, base)
}

// subtree lists ptr followed by all of its descendants, depth first. It does
// not follow references.
func (m *SchemaModel) subtree(ptr string) []string {
	out := []string{ptr}
	node, ok := m.nodes.Get(ptr)
	if !ok {
		return out
	}
	for _, child := range uischema.Children(node) {
		out = append(out, m.subtree(child)...)
	}
	return out
}

// referrersOutside returns the references into the subtree rooted at ptr that
// live outside of it.
func (m *SchemaModel) referrersOutside(ptr string) []*uischema.ReferenceNode {
	var out []*uischema.ReferenceNode
	for _, node := range m.nodes.Values() {
		ref, ok := node.(*uischema.ReferenceNode)
		if !ok {
			continue
		}
		if inSubtree(ptr, ref.Reference) && !inSubtree(ptr, ref.Pointer) {
			out = append(out, ref)
		}
	}
	return out
}

// hasReferrersInto reports whether any reference targets the subtree at ptr.
func (m *SchemaModel) hasReferrersInto(ptr string) bool {
	for _, node := range m.nodes.Values() {
		if ref, ok := node.(*uischema.ReferenceNode); ok && inSubtree(ptr, ref.Reference) {
			return true
		}
	}
	return false
}

func inSubtree(root, ptr string) bool {
	return ptr == root || pointer.IsAncestor(root, ptr)
}

func hasChildNamed(parent uischema.Node, name string) bool {
	for _, existing := range childNames(parent) {
		if existing == name {
			return true
		}
	}
	return false
}

func childNames(parent uischema.Node) []string {
	children := uischema.Children(parent)
	names := make([]string, len(children))
	for idx, child := range children {
		names[idx] = pointer.ExtractName(child)
	}
	return names
}

func uniqueString(existing []string, prefix string) string {
	taken := make(map[string]struct{}, len(existing))
	for _, value := range existing {
		taken[value] = struct{}{}
	}
	for i := 0; ; i++ {
		candidate := fmt.Sprintf("%s%d", prefix, i)
		if _, used := taken[candidate]; !used {
			return candidate
		}
	}
}

func indexOf(list []string, value string) int {
	for idx, item := range list {
		if item == value {
			return idx
		}
	}
	return -1
}

// insertAt inserts value before index, or appends when index is negative or
// not below len(list).
func insertAt(list []string, index int, value string) []string {
	if index < 0 || index >= len(list) {
		return append(list, value)
	}
	out := make([]string, 0, len(list)+1)
	out = append(out, list[:index]...)
	out = append(out, value)
	return append(out, list[index:]...)
}

func removeValue(list []string, value string) []string {
	out := make([]string, 0, len(list))
	for _, item := range list {
		if item != value {
			out = append(out, item)
		}
	}
	return out
}

// moveItem relocates list[from] to position to. An out of range target moves
// the item last.
func moveItem(list []string, from, to int) []string {
	if to < 0 || to >= len(list) {
		to = len(list) - 1
	}
	item := list[from]
	rest := make([]string, 0, len(list))
	rest = append(rest, list[:from]...)
	rest = append(rest, list[from+1:]...)
	out := make([]string, 0, len(list))
	out = append(out, rest[:to]...)
	out = append(out, item)
	return append(out, rest[to:]...)
}
