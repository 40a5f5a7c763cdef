package schemamodel

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound reports a lookup by a pointer that is not in the model.
	ErrNotFound = errors.New("schemamodel: node not found")
	// ErrNameCollision reports an insertion whose name duplicates a sibling.
	ErrNameCollision = errors.New("schemamodel: name already used by a sibling")
	// ErrInvalidReferenceTarget reports a reference to a missing definition.
	ErrInvalidReferenceTarget = errors.New("schemamodel: unknown definition")
	// ErrIllegalMove reports a move into the node's own subtree, of the root,
	// or of a referenced definition out of $defs.
	ErrIllegalMove = errors.New("schemamodel: illegal move")
	// ErrReferencedDefinitionDeletion reports a delete of a definition that is
	// still referenced.
	ErrReferencedDefinitionDeletion = errors.New("schemamodel: definition is in use")
	ErrInvalidParent                = errors.New("schemamodel: node cannot have children")
	ErrNameRequired                 = errors.New("schemamodel: name is required")
	ErrRootDeletion                 = errors.New("schemamodel: root cannot be deleted")
	ErrVariantChange                = errors.New("schemamodel: node kind cannot change")
	ErrInvalidOperation             = errors.New("schemamodel: invalid operation")
	// ErrCorrupted reports a broken internal invariant, such as a dangling child.
	ErrCorrupted = errors.New("schemamodel: model is corrupted")
)

// OpError records the operation and pointer a failure belongs to.
type OpError struct {
	Op      string
	Pointer string
	Err     error
}

func (e *OpError) Error() string {
	return fmt.Sprintf("%s %q: %v", e.Op, e.Pointer, e.Err)
}

func (e *OpError) Unwrap() error { return e.Err }

func opError(op, ptr string, err error) error {
	if err == nil {
		return nil
	}
	var existing *OpError
	if errors.As(err, &existing) && existing.Op == op {
		return err
	}
	return &OpError{Op: op, Pointer: ptr, Err: err}
}
