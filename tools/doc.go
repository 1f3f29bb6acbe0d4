// Package tools implements the tool-dispatch and session-mediation core of
// the server: it turns named, argument-bearing tool calls into serialized
// operations against one live RStudio session and normalizes the host's
// heterogeneous outputs into a fixed result union.
//
// # Architecture
//
// One call flows through four layers, in one direction:
//
//	Registry/Dispatch → validation → Lane (serializer) → session.Session → Result
//
//   - [Registry]: maps a tool name to its handler; unknown names and
//     malformed argument bags fail here, before anything else runs.
//   - validation: pre-flight safety checks. Pure argument properties
//     (mutually exclusive arguments, range shape) are checked before the
//     serializer is entered; checks that must probe session state (existing
//     variable names, document length) run as the first step inside the
//     critical section, strictly before any mutation.
//   - [Lane]: the concurrency core. The transport may accept calls
//     concurrently, but the host session tolerates exactly one interaction
//     at a time; the lane runs session-touching work one job at a time in
//     FIFO arrival order.
//   - [Result]: a tagged union over text, inline image, and ordered listing.
//     Host text is preserved exactly apart from one trimmed trailing
//     newline; listing order is never changed.
//
// # Errors
//
// Validation failures (ErrUnknownTool, ErrInvalidArgument,
// ErrConflictingArguments, ErrReassignmentDenied, ErrInvalidRange) surface
// before the session is mutated. Host evaluation failures pass through as
// session.EvalError with the R diagnostic text intact — clients match on
// substrings of it. Nothing is retried: host errors are deterministic given
// the input.
//
// # Timeouts
//
// Config.CallTimeout bounds the wait, not the work. The host has no way to
// interrupt running R code, so an expired call returns ErrTimeout while the
// evaluation may still complete and mutate the session afterwards. The lane
// stays busy until the host returns.
package tools
