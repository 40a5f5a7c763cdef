package editor

import "errors"

var (
	// ErrAborted signals the user aborted input (e.g., Ctrl+C).
	ErrAborted = errors.New("editor: aborted")
	// ErrNoSelection is returned by actions on the selection when nothing is
	// selected.
	ErrNoSelection = errors.New("editor: no node selected")
	// ErrCircularReference is returned when an edit would let a definition
	// reach itself through references.
	ErrCircularReference = errors.New("editor: circular reference")
)
