package tools

import "strings"

// ResultKind discriminates the variants of a Result.
type ResultKind int

const (
	// KindText is plain console or status text.
	KindText ResultKind = iota

	// KindImage is an inline raster image.
	KindImage

	// KindList is an ordered listing, one string per item.
	KindList
)

// String returns the kind name for logs and tests.
func (k ResultKind) String() string {
	switch k {
	case KindText:
		return "text"
	case KindImage:
		return "image"
	case KindList:
		return "list"
	default:
		return "unknown"
	}
}

// Result is the normalized outcome of one tool call: a tagged union over
// text, image, and structured-list content. Exactly one variant is populated.
type Result struct {
	Kind ResultKind

	// Text is populated for KindText.
	Text string

	// Data and MIMEType are populated for KindImage.
	Data     []byte
	MIMEType string

	// Items is populated for KindList, in the order the host reported
	// them. The order is part of the client contract; it is never
	// re-sorted here.
	Items []string
}

// TextResult normalizes host text output: exactly one trailing newline is
// trimmed, nothing else is reformatted. Row and column markers in printed
// R output must survive untouched.
func TextResult(text string) Result {
	return Result{Kind: KindText, Text: strings.TrimSuffix(text, "\n")}
}

// ImageResult wraps raster bytes produced by the graphics device.
func ImageResult(data []byte, mimeType string) Result {
	return Result{Kind: KindImage, Data: data, MIMEType: mimeType}
}

// ListResult wraps an ordered listing. The items slice is used as-is;
// callers must not reorder it afterwards.
func ListResult(items []string) Result {
	return Result{Kind: KindList, Items: items}
}
