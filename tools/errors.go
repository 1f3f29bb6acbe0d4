package tools

import "errors"

// Sentinel errors for dispatch and pre-flight validation failures. All of
// them are raised before the session is mutated; a call that fails with one
// of these leaves no partial state behind.
var (
	// ErrUnknownTool indicates that the requested tool name is not in
	// the registry.
	ErrUnknownTool = errors.New("unknown tool")

	// ErrInvalidArgument indicates a missing required argument or an
	// argument of the wrong primitive kind.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrConflictingArguments indicates that mutually exclusive
	// arguments were supplied together.
	ErrConflictingArguments = errors.New("conflicting arguments")

	// ErrReassignmentDenied indicates that evaluating the code would
	// overwrite an existing variable and allow_reassign was not set.
	// The code is never executed.
	ErrReassignmentDenied = errors.New("reassignment denied")

	// ErrInvalidRange indicates a line range outside the document, or
	// with start > end.
	ErrInvalidRange = errors.New("invalid line range")

	// ErrTimeout indicates that the caller stopped waiting for a result.
	// The underlying host execution is NOT cancelled — the session has
	// no cancellation primitive — so the work may still complete and
	// mutate session state after this error is returned.
	ErrTimeout = errors.New("timed out waiting for session")

	// ErrClosed indicates that the service has been shut down.
	ErrClosed = errors.New("service closed")
)
