package schemamodel

import (
	"fmt"

	"github.com/goliatone/go-schemamodel/pkg/uischema"
)

// NodeMap indexes nodes by pointer while remembering insertion order, so that
// Values reproduces the list a model was built from. Renaming a node keeps its
// position. The zero value is not usable; call NewNodeMap.
type NodeMap struct {
	order []string
	nodes map[string]uischema.Node
}

// NewNodeMap indexes nodes in the given order. Later nodes replace earlier
// ones with the same pointer.
func NewNodeMap(nodes ...uischema.Node) *NodeMap {
	m := &NodeMap{
		order: make([]string, 0, len(nodes)),
		nodes: make(map[string]uischema.Node, len(nodes)),
	}
	for _, node := range nodes {
		m.Set(node)
	}
	return m
}

func (m *NodeMap) Len() int { return len(m.order) }

func (m *NodeMap) Get(ptr string) (uischema.Node, bool) {
	node, ok := m.nodes[ptr]
	return node, ok
}

func (m *NodeMap) Has(ptr string) bool {
	_, ok := m.nodes[ptr]
	return ok
}

// Set stores node under its pointer. Existing entries keep their position
// and nil nodes are ignored.
func (m *NodeMap) Set(node uischema.Node) {
	if uischema.IsNil(node) {
		return
	}
	ptr := node.Base().Pointer
	if _, exists := m.nodes[ptr]; !exists {
		m.order = append(m.order, ptr)
	}
	m.nodes[ptr] = node
}

// Delete removes the node at ptr and reports whether it was present.
func (m *NodeMap) Delete(ptr string) bool {
	if _, exists := m.nodes[ptr]; !exists {
		return false
	}
	delete(m.nodes, ptr)
	for idx, key := range m.order {
		if key == ptr {
			m.order = append(m.order[:idx], m.order[idx+1:]...)
			break
		}
	}
	return true
}

// Keys returns the pointers in insertion order.
func (m *NodeMap) Keys() []string {
	out := make([]string, len(m.order))
	copy(out, m.order)
	return out
}

// Values returns the nodes in insertion order.
func (m *NodeMap) Values() []uischema.Node {
	out := make([]uischema.Node, len(m.order))
	for idx, key := range m.order {
		out[idx] = m.nodes[key]
	}
	return out
}

// Clone returns an independent copy with deep copied nodes.
func (m *NodeMap) Clone() *NodeMap {
	out := &NodeMap{
		order: make([]string, len(m.order)),
		nodes: make(map[string]uischema.Node, len(m.nodes)),
	}
	copy(out.order, m.order)
	for key, node := range m.nodes {
		out.nodes[key] = node.Clone()
	}
	return out
}

// rekey renames every node whose pointer changes under fn in a single pass,
// updating both the index and the node's own pointer. It fails without
// touching the map when two nodes would end up at the same pointer.
func (m *NodeMap) rekey(fn func(string) string) error {
	order := make([]string, len(m.order))
	nodes := make(map[string]uischema.Node, len(m.nodes))
	for idx, key := range m.order {
		next := fn(key)
		if _, exists := nodes[next]; exists {
			return fmt.Errorf("%w: pointer %q would be used twice", ErrCorrupted, next)
		}
		order[idx] = next
		nodes[next] = m.nodes[key]
	}
	for key, node := range nodes {
		node.Base().Pointer = key
	}
	m.order = order
	m.nodes = nodes
	return nil
}

// replace adopts the contents of other. Callers that share m observe the
// change.
func (m *NodeMap) replace(other *NodeMap) {
	m.order = other.order
	m.nodes = other.nodes
}
