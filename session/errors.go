package session

import (
	"errors"
	"fmt"
)

// Sentinel errors reported by Session implementations.
var (
	// ErrNoActiveDocument indicates that no source document is in focus;
	// the host reported the console pseudo-context instead.
	ErrNoActiveDocument = errors.New("no active document")

	// ErrDocumentNotFound indicates that a document path did not resolve
	// on the host filesystem, or a document ID is no longer open.
	ErrDocumentNotFound = errors.New("document not found")

	// ErrPathConflict indicates that a document could not be created at
	// the requested path (already exists or is unwritable).
	ErrPathConflict = errors.New("path conflict")

	// ErrNoPlot indicates that the graphics device is empty and has
	// nothing to render.
	ErrNoPlot = errors.New("no plot available")

	// ErrViewerEmpty indicates that the viewer pane has no content.
	ErrViewerEmpty = errors.New("viewer is empty")

	// ErrEvaluation classifies R evaluation failures; use errors.Is to
	// detect them and errors.As with *EvalError to read the diagnostic.
	ErrEvaluation = errors.New("evaluation error")
)

// EvalError is an error raised by the host while evaluating R code. Message
// carries the R condition text verbatim; clients match on substrings of it,
// so it must never be rewritten or localized.
type EvalError struct {
	// Message is the host's own diagnostic text, unmodified.
	Message string

	// Output is any console output produced before the condition was
	// raised. May be empty.
	Output string
}

// Error returns the host diagnostic text.
func (e *EvalError) Error() string {
	return fmt.Sprintf("R evaluation failed: %s", e.Message)
}

// Is reports whether this error matches the target.
// EvalError matches ErrEvaluation to allow sentinel-style error checking.
func (e *EvalError) Is(target error) bool {
	return target == ErrEvaluation
}
