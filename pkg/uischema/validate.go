package uischema

import (
	"errors"
	"fmt"
	"strings"

	"github.com/goliatone/go-schemamodel/pkg/pointer"
)

// Issue codes reported by Validate.
const (
	CodeMissingRoot        = "missing_root"
	CodeInvalidRoot        = "invalid_root"
	CodeMalformedPointer   = "malformed_pointer"
	CodeDuplicatePointer   = "duplicate_pointer"
	CodeDanglingChild      = "dangling_child"
	CodeInvalidParent      = "invalid_parent"
	CodeUnexpectedPointer  = "unexpected_pointer"
	CodeMultipleParents    = "multiple_parents"
	CodeOrphan             = "orphan"
	CodeDuplicateName      = "duplicate_name"
	CodeDanglingReference  = "dangling_reference"
	CodeInvalidReference   = "invalid_reference"
	CodeInvalidFieldType   = "invalid_field_type"
	CodeInvalidCombination = "invalid_combination"
	CodeNilNode            = "nil_node"
)

// Issue is a single structural problem found in a node list.
type Issue struct {
	Pointer string
	Code    string
	Message string
}

// Issues collects structural problems and implements error.
type Issues []Issue

func (iss Issues) Error() string {
	if len(iss) == 0 {
		return ""
	}
	const maxShown = 3
	b := &strings.Builder{}
	b.WriteString("uischema: ")
	lim := min(len(iss), maxShown)
	for i := 0; i < lim; i++ {
		if i > 0 {
			b.WriteString("; ")
		}
		fmt.Fprintf(b, "%s at %s", iss[i].Code, iss[i].Pointer)
	}
	if len(iss) > lim {
		fmt.Fprintf(b, "; ... (total %d)", len(iss))
	}
	return b.String()
}

// Codes lists the issue codes in order.
func (iss Issues) Codes() []string {
	out := make([]string, len(iss))
	for idx, issue := range iss {
		out[idx] = issue.Code
	}
	return out
}

// AsIssues extracts Issues from err.
func AsIssues(err error) (Issues, bool) {
	if err == nil {
		return nil, false
	}
	var iss Issues
	if errors.As(err, &iss) {
		return iss, true
	}
	return nil, false
}

// Validate checks that nodes form a well formed document: a root object at
// "#", unique pointers, children that exist and sit at the pointer their
// parent implies, exactly one parent per node, distinct sibling names, and
// references that resolve to definitions. It returns nil or Issues.
func Validate(nodes []Node) error {
	var issues Issues
	add := func(ptr, code, format string, args ...any) {
		issues = append(issues, Issue{Pointer: ptr, Code: code, Message: fmt.Sprintf(format, args...)})
	}

	live := make([]Node, 0, len(nodes))
	for idx, node := range nodes {
		if IsNil(node) {
			add("", CodeNilNode, "node at position %d is nil", idx)
			continue
		}
		live = append(live, node)
	}

	index := make(map[string]Node, len(live))
	for _, node := range live {
		ptr := node.Base().Pointer
		if err := pointer.Validate(ptr); err != nil {
			add(ptr, CodeMalformedPointer, "%v", err)
			continue
		}
		if _, exists := index[ptr]; exists {
			add(ptr, CodeDuplicatePointer, "pointer %q appears more than once", ptr)
			continue
		}
		index[ptr] = node
	}

	root, ok := index[pointer.Root]
	if !ok {
		add(pointer.Root, CodeMissingRoot, "no node at the root pointer")
	} else if !IsFieldOrCombination(root) {
		add(pointer.Root, CodeInvalidRoot, "root must be a field or a combination")
	}

	parents := make(map[string]int, len(index))
	for _, node := range live {
		ptr := node.Base().Pointer
		if index[ptr] != node {
			continue
		}
		switch typed := node.(type) {
		case *FieldNode:
			if !typed.FieldType.Valid() {
				add(ptr, CodeInvalidFieldType, "unknown field type %q", typed.FieldType)
			}
		case *CombinationNode:
			if !typed.CombinationType.Valid() {
				add(ptr, CodeInvalidCombination, "unknown combination type %q", typed.CombinationType)
			}
		case *ReferenceNode:
			target, exists := index[typed.Reference]
			switch {
			case !exists:
				add(ptr, CodeDanglingReference, "reference %q does not resolve", typed.Reference)
			case !pointer.IsDirectDefinition(typed.Reference):
				add(ptr, CodeInvalidReference, "reference %q is not a definition", typed.Reference)
			case target == node:
				add(ptr, CodeInvalidReference, "reference points at itself")
			}
		}

		children := Children(node)
		if len(children) > 0 && !IsValidParent(node) {
			add(ptr, CodeInvalidParent, "node cannot own children")
		}
		names := make(map[string]struct{}, len(children))
		for _, child := range children {
			if _, exists := index[child]; !exists {
				add(ptr, CodeDanglingChild, "child %q does not exist", child)
				continue
			}
			parents[child]++
			if want := ExpectedChildPointer(node, child); want != child {
				add(child, CodeUnexpectedPointer, "expected pointer %q under parent %q", want, ptr)
			}
			name := pointer.ExtractName(child)
			if _, dup := names[name]; dup {
				add(child, CodeDuplicateName, "sibling name %q is used more than once", name)
			}
			names[name] = struct{}{}
		}
	}

	for _, node := range live {
		ptr := node.Base().Pointer
		if ptr == pointer.Root || index[ptr] != node {
			continue
		}
		switch parents[ptr] {
		case 0:
			add(ptr, CodeOrphan, "node is not listed as a child of any parent")
		case 1:
		default:
			add(ptr, CodeMultipleParents, "node is listed under %d parents", parents[ptr])
		}
	}

	if len(issues) == 0 {
		return nil
	}
	return issues
}
