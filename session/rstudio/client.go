// Package rstudio provides the concrete session adapter speaking
// JSON-over-HTTP to the companion addin running inside the RStudio process.
package rstudio

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/statkit/rsessiond/session"
)

// Errors for adapter transport failures. Host-side failures are mapped to the
// session package's sentinels instead.
var (
	// ErrUnavailable is returned when the addin endpoint cannot be reached
	// or answers outside the protocol.
	ErrUnavailable = errors.New("rstudio session not reachable")

	// ErrProtocol is returned when the addin answers with a body the
	// adapter cannot decode.
	ErrProtocol = errors.New("malformed addin response")
)

// Logger is the interface for logging.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Errors: logging must be best-effort and must not panic.
type Logger interface {
	Logf(format string, args ...any)
}

// Config configures a Client.
type Config struct {
	// BaseURL is the addin's HTTP endpoint, e.g. "http://127.0.0.1:16732".
	// Required.
	BaseURL string

	// HTTPClient issues the requests.
	// Default: a plain http.Client with no client-side timeout; callers
	// bound waits through the request context.
	HTTPClient *http.Client

	// Logger is an optional logger for request events.
	Logger Logger
}

// Validate checks the configuration for missing required fields.
func (c *Config) Validate() error {
	if c.BaseURL == "" {
		return errors.New("rstudio: BaseURL is required")
	}
	return nil
}

func (c *Config) applyDefaults() {
	if c.HTTPClient == nil {
		c.HTTPClient = &http.Client{}
	}
}

// Client talks to one live RStudio session through the companion addin. It
// implements session.Session and holds no session state of its own: every
// method is a single round trip.
//
// Contract:
// - Concurrency: safe for concurrent use; the dispatch layer serializes
//   calls anyway because the host tolerates one interaction at a time.
// - Context: every method honors cancellation for the round trip. The host
//   does not interrupt R code already running.
// - Errors: transport failures wrap ErrUnavailable; host-side conditions map
//   to the session sentinels; R evaluation failures come back as
//   *session.EvalError with the condition text verbatim.
type Client struct {
	cfg Config
}

// New creates a Client for the addin at cfg.BaseURL.
func New(cfg Config) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cfg.applyDefaults()
	return &Client{cfg: cfg}, nil
}

var _ session.Session = (*Client)(nil)

// rpcRequest is the wire request envelope.
type rpcRequest struct {
	ID     string `json:"id"`
	Params any    `json:"params,omitempty"`
}

// rpcResponse is the wire response envelope.
type rpcResponse struct {
	Result json.RawMessage `json:"result,omitempty"`
	Error  *rpcError       `json:"error,omitempty"`
}

// rpcError describes a host-side failure.
type rpcError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Output  string `json:"output,omitempty"`
}

// Host error codes the addin emits.
const (
	codeEvalError        = "eval_error"
	codeNoActiveDocument = "no_active_document"
	codeDocumentNotFound = "document_not_found"
	codePathConflict     = "path_conflict"
	codeNoPlot           = "no_plot"
	codeViewerEmpty      = "viewer_empty"
)

func mapHostError(e *rpcError) error {
	switch e.Code {
	case codeEvalError:
		return &session.EvalError{Message: e.Message, Output: e.Output}
	case codeNoActiveDocument:
		return session.ErrNoActiveDocument
	case codeDocumentNotFound:
		return session.ErrDocumentNotFound
	case codePathConflict:
		return session.ErrPathConflict
	case codeNoPlot:
		return session.ErrNoPlot
	case codeViewerEmpty:
		return session.ErrViewerEmpty
	default:
		return fmt.Errorf("addin error %q: %s", e.Code, e.Message)
	}
}

// call performs one round trip: POST {BaseURL}/rpc/{method} with the request
// envelope, decode the response envelope into result (nil when the method
// returns nothing).
func (c *Client) call(ctx context.Context, method string, params, result any) error {
	id := uuid.NewString()
	body, err := json.Marshal(rpcRequest{ID: id, Params: params})
	if err != nil {
		return fmt.Errorf("rstudio: encode %s request: %w", method, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+"/rpc/"+method, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("rstudio: build %s request: %w", method, err)
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.cfg.HTTPClient.Do(req)
	if err != nil {
		// Context errors pass through so deadline handling upstream
		// sees them undisguised.
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		return fmt.Errorf("%w: %s: %v", ErrUnavailable, method, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrUnavailable, method, err)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: %s returned HTTP %d", ErrUnavailable, method, resp.StatusCode)
	}

	var envelope rpcResponse
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrProtocol, method, err)
	}
	if envelope.Error != nil {
		return mapHostError(envelope.Error)
	}
	if result != nil {
		if len(envelope.Result) == 0 {
			return fmt.Errorf("%w: %s: missing result", ErrProtocol, method)
		}
		if err := json.Unmarshal(envelope.Result, result); err != nil {
			return fmt.Errorf("%w: %s: %v", ErrProtocol, method, err)
		}
	}

	c.logf("rstudio %s completed in %s (request %s)", method, time.Since(start).Round(time.Millisecond), id)
	return nil
}

func (c *Client) logf(format string, args ...any) {
	if c.cfg.Logger != nil {
		c.cfg.Logger.Logf(format, args...)
	}
}

// documentPayload is the wire form of one open document.
type documentPayload struct {
	ID     string `json:"id"`
	Path   string `json:"path,omitempty"`
	Active bool   `json:"active,omitempty"`
}

func (p documentPayload) document() session.Document {
	return session.Document{ID: p.ID, Path: p.Path, Active: p.Active}
}

// Evaluate runs R code at the console and returns the printed output.
func (c *Client) Evaluate(ctx context.Context, code string) (string, error) {
	params := struct {
		Code string `json:"code"`
	}{Code: code}
	var result struct {
		Output string `json:"output"`
	}
	if err := c.call(ctx, "eval", params, &result); err != nil {
		return "", err
	}
	return result.Output, nil
}

// SearchPath returns the environments on the search path, in search order.
func (c *Client) SearchPath(ctx context.Context) ([]string, error) {
	var result struct {
		Environments []string `json:"environments"`
	}
	if err := c.call(ctx, "search_path", nil, &result); err != nil {
		return nil, err
	}
	return result.Environments, nil
}

// ListObjects returns the global-environment bindings in host order.
func (c *Client) ListObjects(ctx context.Context) ([]session.ObjectInfo, error) {
	var result struct {
		Objects []struct {
			Name    string `json:"name"`
			Summary string `json:"summary,omitempty"`
		} `json:"objects"`
	}
	if err := c.call(ctx, "list_objects", nil, &result); err != nil {
		return nil, err
	}
	out := make([]session.ObjectInfo, len(result.Objects))
	for i, o := range result.Objects {
		out[i] = session.ObjectInfo{Name: o.Name, Summary: o.Summary}
	}
	return out, nil
}

// DescribeObject returns the host's str()-style summary of one object.
func (c *Client) DescribeObject(ctx context.Context, name string) (string, error) {
	params := struct {
		Name string `json:"name"`
	}{Name: name}
	var result struct {
		Summary string `json:"summary"`
	}
	if err := c.call(ctx, "describe_object", params, &result); err != nil {
		return "", err
	}
	return result.Summary, nil
}

// ConsoleHistory returns recent console input lines, oldest first. A
// maxLines of zero means all available history.
func (c *Client) ConsoleHistory(ctx context.Context, maxLines int) ([]string, error) {
	params := struct {
		MaxLines int `json:"max_lines,omitempty"`
	}{MaxLines: maxLines}
	var result struct {
		Lines []string `json:"lines"`
	}
	if err := c.call(ctx, "console_history", params, &result); err != nil {
		return nil, err
	}
	return result.Lines, nil
}

// ActiveDocument returns the document currently holding editor focus. The
// console pseudo-context comes back with the reserved console ID.
func (c *Client) ActiveDocument(ctx context.Context) (session.Document, error) {
	var result documentPayload
	if err := c.call(ctx, "active_document", nil, &result); err != nil {
		return session.Document{}, err
	}
	return result.document(), nil
}

// OpenDocuments returns all open documents in host order.
func (c *Client) OpenDocuments(ctx context.Context) ([]session.Document, error) {
	var result struct {
		Documents []documentPayload `json:"documents"`
	}
	if err := c.call(ctx, "open_documents", nil, &result); err != nil {
		return nil, err
	}
	out := make([]session.Document, len(result.Documents))
	for i, d := range result.Documents {
		out[i] = d.document()
	}
	return out, nil
}

// DocumentContents returns the full buffer contents of one document.
func (c *Client) DocumentContents(ctx context.Context, id string) (string, error) {
	params := struct {
		ID string `json:"id"`
	}{ID: id}
	var result struct {
		Contents string `json:"contents"`
	}
	if err := c.call(ctx, "document_contents", params, &result); err != nil {
		return "", err
	}
	return result.Contents, nil
}

// CreateUntitled creates an untitled in-memory buffer and makes it active.
func (c *Client) CreateUntitled(ctx context.Context, text string) (session.Document, error) {
	params := struct {
		Text string `json:"text"`
	}{Text: text}
	var result documentPayload
	if err := c.call(ctx, "create_untitled", params, &result); err != nil {
		return session.Document{}, err
	}
	return result.document(), nil
}

// CreateFile creates a file-backed document at path and makes it active.
func (c *Client) CreateFile(ctx context.Context, path, text string) (session.Document, error) {
	params := struct {
		Path string `json:"path"`
		Text string `json:"text"`
	}{Path: path, Text: text}
	var result documentPayload
	if err := c.call(ctx, "create_file", params, &result); err != nil {
		return session.Document{}, err
	}
	return result.document(), nil
}

// OpenFile opens an existing file in the editor and makes it active.
func (c *Client) OpenFile(ctx context.Context, path string) (session.Document, error) {
	params := struct {
		Path string `json:"path"`
	}{Path: path}
	var result documentPayload
	if err := c.call(ctx, "open_file", params, &result); err != nil {
		return session.Document{}, err
	}
	return result.document(), nil
}

// InsertText inserts text into a document, at loc or at the cursor when loc
// is nil.
func (c *Client) InsertText(ctx context.Context, id, text string, loc *session.Location) error {
	params := struct {
		ID     string `json:"id"`
		Text   string `json:"text"`
		Line   int    `json:"line,omitempty"`
		Column int    `json:"column,omitempty"`
	}{ID: id, Text: text}
	if loc != nil {
		params.Line = loc.Line
		params.Column = loc.Column
	}
	return c.call(ctx, "insert_text", params, nil)
}

// ReplaceText replaces every occurrence of old with new in a document and
// returns the occurrence count.
func (c *Client) ReplaceText(ctx context.Context, id, old, new string) (int, error) {
	params := struct {
		ID  string `json:"id"`
		Old string `json:"old"`
		New string `json:"new"`
	}{ID: id, Old: old, New: new}
	var result struct {
		Count int `json:"count"`
	}
	if err := c.call(ctx, "replace_text", params, &result); err != nil {
		return 0, err
	}
	return result.Count, nil
}

// SetSelection sets a document's visible selection to a line range.
func (c *Client) SetSelection(ctx context.Context, id string, rng session.Range) error {
	params := struct {
		ID        string `json:"id"`
		StartLine int    `json:"start_line"`
		EndLine   int    `json:"end_line"`
	}{ID: id, StartLine: rng.StartLine, EndLine: rng.EndLine}
	return c.call(ctx, "set_selection", params, nil)
}

// CapturePlot renders the current graphics device at the requested size.
func (c *Client) CapturePlot(ctx context.Context, req session.PlotRequest) (session.PlotData, error) {
	params := struct {
		Width  int    `json:"width"`
		Height int    `json:"height"`
		Format string `json:"format"`
	}{Width: req.Width, Height: req.Height, Format: req.Format}
	var result struct {
		Data   []byte `json:"data"`
		Format string `json:"format"`
	}
	if err := c.call(ctx, "capture_plot", params, &result); err != nil {
		return session.PlotData{}, err
	}
	return session.PlotData{Data: result.Data, Format: result.Format}, nil
}

// ViewerContent returns what the viewer pane currently shows.
func (c *Client) ViewerContent(ctx context.Context) (session.ViewerContent, error) {
	var result struct {
		Text     string `json:"text,omitempty"`
		Data     []byte `json:"data,omitempty"`
		MIMEType string `json:"mime_type,omitempty"`
	}
	if err := c.call(ctx, "viewer_content", nil, &result); err != nil {
		return session.ViewerContent{}, err
	}
	return session.ViewerContent{Text: result.Text, Data: result.Data, MIMEType: result.MIMEType}, nil
}

// Ping verifies the addin answers at all.
func (c *Client) Ping(ctx context.Context) error {
	return c.call(ctx, "ping", nil, nil)
}
