// Package session defines the capability surface of a live RStudio session.
//
// The rest of the server talks to the host session exclusively through the
// [Session] interface: evaluating R code, enumerating the search path and
// global environment, reading and writing source documents, capturing the
// graphics device, and reading console history. The interface is a thin,
// side-effecting capability set — it carries no retry, validation, or
// serialization logic. Those concerns belong to the tools package, which is
// the only caller.
//
// # Ownership
//
// The session owns the actual object store, document buffers, and graphics
// device. Values returned from Session methods are transient snapshots taken
// at call time; the host may change state between calls, so callers must not
// cache them beyond a single tool call.
//
// # Documents
//
// Documents are identified by opaque host-assigned IDs. The console is a
// pseudo-context reported with [ConsoleID]; it is never a valid target for
// document edits.
package session
