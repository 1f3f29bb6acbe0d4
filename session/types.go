package session

// ConsoleID is the pseudo-document ID the host reports when the console,
// rather than a source document, has focus.
const ConsoleID = "#console"

// Document describes one open source document as reported by the host.
type Document struct {
	// ID is the opaque host-assigned document identifier.
	ID string `json:"id"`

	// Path is the file path backing the document. Empty for untitled
	// in-memory buffers.
	Path string `json:"path,omitempty"`

	// Active reports whether the host currently treats this document
	// as in-focus.
	Active bool `json:"active,omitempty"`
}

// Untitled reports whether the document is an in-memory buffer with no
// backing file.
func (d Document) Untitled() bool {
	return d.Path == ""
}

// ObjectInfo describes one object in an environment. Summary is produced by
// the host (str()-style) and its format depends on the object kind; tabular
// objects report observation and variable counts.
type ObjectInfo struct {
	Name    string `json:"name"`
	Summary string `json:"summary"`
}

// Range is a 1-based inclusive line range within a document.
type Range struct {
	StartLine int `json:"start_line"`
	EndLine   int `json:"end_line"`
}

// Location is a 1-based cursor position within a document.
type Location struct {
	Line   int `json:"line"`
	Column int `json:"column"`
}

// PlotRequest describes a graphics device capture.
type PlotRequest struct {
	// Width and Height are device dimensions in pixels. They are passed
	// through to the host device unchanged.
	Width  int `json:"width"`
	Height int `json:"height"`

	// Format is the raster format, e.g. "png" or "jpeg".
	Format string `json:"format"`
}

// PlotData is a fresh capture of the current graphics device. It is never
// cached; the device is mutable and may change between calls.
type PlotData struct {
	Data   []byte `json:"data"`
	Format string `json:"format"`
}

// ViewerContent is whatever the host viewer pane currently shows: a URL or
// HTML fragment (Text), or rendered raster bytes (Data). At most one of the
// two is populated.
type ViewerContent struct {
	Text string `json:"text,omitempty"`
	Data []byte `json:"data,omitempty"`

	// MIMEType describes Data when present, e.g. "image/png".
	MIMEType string `json:"mime_type,omitempty"`
}
