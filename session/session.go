package session

import "context"

// Session is the capability set a live RStudio session exposes to the server.
//
// Contract:
// - Concurrency: implementations need NOT be safe for concurrent use; the
//   caller serializes all access (the host session is single-threaded).
// - Context: methods must honor cancellation/deadlines for the wait, but the
//   host has no cancellation primitive — work already submitted may run to
//   completion even after ctx expires.
// - Errors: use the package sentinels where applicable; evaluation failures
//   return *EvalError with the host condition text preserved verbatim.
// - Ownership: returned values are caller-owned snapshots of host state at
//   call time.
type Session interface {
	// Evaluate runs R code at the console and returns the printed output.
	Evaluate(ctx context.Context, code string) (string, error)

	// SearchPath returns the environment names currently chained in the
	// session's search path, in search order.
	SearchPath(ctx context.Context) ([]string, error)

	// ListObjects enumerates the objects in the global environment, in
	// the order the host reports them.
	ListObjects(ctx context.Context) ([]ObjectInfo, error)

	// DescribeObject returns the host's structural summary of one object.
	DescribeObject(ctx context.Context, name string) (string, error)

	// ConsoleHistory returns up to maxLines recent console input lines,
	// oldest first. maxLines <= 0 means no limit.
	ConsoleHistory(ctx context.Context, maxLines int) ([]string, error)

	// ActiveDocument reports the document the host currently treats as
	// in-focus. When the console has focus the returned Document carries
	// ConsoleID.
	ActiveDocument(ctx context.Context) (Document, error)

	// OpenDocuments lists all open documents in the host's order.
	OpenDocuments(ctx context.Context) ([]Document, error)

	// DocumentContents returns the full buffer contents of a document.
	DocumentContents(ctx context.Context, id string) (string, error)

	// CreateUntitled opens a new untitled buffer containing text and
	// makes it active.
	CreateUntitled(ctx context.Context, text string) (Document, error)

	// CreateFile creates a file at path with the given text, opens it,
	// and makes it active. Returns ErrPathConflict if the path cannot
	// be written.
	CreateFile(ctx context.Context, path, text string) (Document, error)

	// OpenFile opens an existing file and makes it active. Returns
	// ErrDocumentNotFound if the path does not resolve on the host
	// filesystem.
	OpenFile(ctx context.Context, path string) (Document, error)

	// InsertText inserts text into a document at loc, or at the current
	// cursor position when loc is nil.
	InsertText(ctx context.Context, id, text string, loc *Location) error

	// ReplaceText replaces every occurrence of old with new in a
	// document and returns the number of replacements made.
	ReplaceText(ctx context.Context, id, old, new string) (int, error)

	// SetSelection sets the document's visible selection to the given
	// line range.
	SetSelection(ctx context.Context, id string, rng Range) error

	// CapturePlot renders the current graphics device at the requested
	// size and format. Returns ErrNoPlot when the device is empty.
	CapturePlot(ctx context.Context, req PlotRequest) (PlotData, error)

	// ViewerContent returns what the viewer pane currently shows.
	// Returns ErrViewerEmpty when there is nothing to show.
	ViewerContent(ctx context.Context) (ViewerContent, error)

	// Ping verifies that the session is reachable and responsive.
	Ping(ctx context.Context) error
}
