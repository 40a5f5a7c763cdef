// Package uischema defines the node graph that represents a JSON Schema
// document in memory. A document is a flat list of nodes keyed by pointer:
// field nodes carry a primitive type, combination nodes compose their members
// with allOf, anyOf or oneOf, and reference nodes point at a definition under
// $defs. Parent nodes list their children by pointer, so the list forms a tree
// plus reference edges into $defs.
//
// Node is a sealed interface. Code that needs variant specific behaviour
// switches on *FieldNode, *CombinationNode and *ReferenceNode.
package uischema
