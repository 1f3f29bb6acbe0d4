package tools

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"sync"
	"testing"

	"github.com/statkit/rsessiond/session"
)

// fakeSession implements session.Session for testing. It keeps a small
// in-memory model of a host session: an ordered global environment, open
// documents, console history, and a graphics device. Evaluate understands
// just enough R (`name <- value` lines) to let conformance tests observe
// state changes.
type fakeSession struct {
	mu sync.Mutex

	// Configurable returns
	evalOut   string
	evalErr   error
	plotData  []byte
	plotErr   error
	viewer    session.ViewerContent
	viewerErr error
	pingErr   error

	// files on the fake host filesystem, openable via OpenFile
	files map[string]string

	// blockEval, when non-nil, makes Evaluate wait until the channel is
	// closed. Used to exercise queueing and timeouts.
	blockEval chan struct{}

	// Session state
	objOrder []string
	objects  map[string]string
	history  []string
	docs     []session.Document
	contents map[string]string
	selects  map[string]session.Range
	activeID string
	nextID   int

	// Call tracking
	evalCalls []string
	plotCalls []session.PlotRequest
	pingCalls int
}

var fakeAssign = regexp.MustCompile(`^([a-zA-Z.][a-zA-Z0-9._]*)\s*(<-|=)\s*(.+)$`)

func newFakeSession() *fakeSession {
	return &fakeSession{
		objects:  make(map[string]string),
		contents: make(map[string]string),
		selects:  make(map[string]session.Range),
		files:    make(map[string]string),
		activeID: session.ConsoleID,
	}
}

func (f *fakeSession) setObject(name, summary string) {
	if _, ok := f.objects[name]; !ok {
		f.objOrder = append(f.objOrder, name)
	}
	f.objects[name] = summary
}

func (f *fakeSession) object(name string) (string, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	v, ok := f.objects[name]
	return v, ok
}

func (f *fakeSession) Evaluate(ctx context.Context, code string) (string, error) {
	f.mu.Lock()
	block := f.blockEval
	f.mu.Unlock()
	if block != nil {
		select {
		case <-block:
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.evalCalls = append(f.evalCalls, code)
	f.history = append(f.history, strings.Split(code, "\n")...)
	if f.evalErr != nil {
		return "", f.evalErr
	}
	for _, line := range strings.Split(code, "\n") {
		if m := fakeAssign.FindStringSubmatch(strings.TrimSpace(line)); m != nil {
			f.setObject(m[1], m[3])
		}
	}
	return f.evalOut, nil
}

func (f *fakeSession) SearchPath(context.Context) ([]string, error) {
	return []string{".GlobalEnv", "package:stats", "package:graphics", "package:base"}, nil
}

func (f *fakeSession) ListObjects(context.Context) ([]session.ObjectInfo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]session.ObjectInfo, 0, len(f.objOrder))
	for _, name := range f.objOrder {
		out = append(out, session.ObjectInfo{Name: name, Summary: f.objects[name]})
	}
	return out, nil
}

func (f *fakeSession) DescribeObject(_ context.Context, name string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	summary, ok := f.objects[name]
	if !ok {
		return "", &session.EvalError{Message: fmt.Sprintf("object '%s' not found", name)}
	}
	return summary, nil
}

func (f *fakeSession) ConsoleHistory(_ context.Context, maxLines int) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	lines := f.history
	if maxLines > 0 && len(lines) > maxLines {
		lines = lines[len(lines)-maxLines:]
	}
	return append([]string(nil), lines...), nil
}

func (f *fakeSession) ActiveDocument(context.Context) (session.Document, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.activeID == session.ConsoleID {
		return session.Document{ID: session.ConsoleID}, nil
	}
	for _, d := range f.docs {
		if d.ID == f.activeID {
			d.Active = true
			return d, nil
		}
	}
	return session.Document{ID: session.ConsoleID}, nil
}

func (f *fakeSession) OpenDocuments(context.Context) ([]session.Document, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]session.Document, len(f.docs))
	for i, d := range f.docs {
		d.Active = d.ID == f.activeID
		out[i] = d
	}
	return out, nil
}

func (f *fakeSession) DocumentContents(_ context.Context, id string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	text, ok := f.contents[id]
	if !ok {
		return "", session.ErrDocumentNotFound
	}
	return text, nil
}

func (f *fakeSession) newDocument(path, text string) session.Document {
	f.nextID++
	doc := session.Document{ID: fmt.Sprintf("DOC%d", f.nextID), Path: path}
	f.docs = append(f.docs, doc)
	f.contents[doc.ID] = text
	f.activeID = doc.ID
	return doc
}

func (f *fakeSession) CreateUntitled(_ context.Context, text string) (session.Document, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.newDocument("", text), nil
}

func (f *fakeSession) CreateFile(_ context.Context, path, text string) (session.Document, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, exists := f.files[path]; exists {
		return session.Document{}, session.ErrPathConflict
	}
	f.files[path] = text
	return f.newDocument(path, text), nil
}

func (f *fakeSession) OpenFile(_ context.Context, path string) (session.Document, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	text, ok := f.files[path]
	if !ok {
		return session.Document{}, session.ErrDocumentNotFound
	}
	return f.newDocument(path, text), nil
}

func (f *fakeSession) InsertText(_ context.Context, id, text string, loc *session.Location) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	current, ok := f.contents[id]
	if !ok {
		return session.ErrDocumentNotFound
	}
	if loc == nil {
		f.contents[id] = current + text
		return nil
	}
	lines := strings.Split(current, "\n")
	if loc.Line-1 > len(lines) {
		return session.ErrDocumentNotFound
	}
	rest := append([]string{text}, lines[loc.Line-1:]...)
	f.contents[id] = strings.Join(append(lines[:loc.Line-1:loc.Line-1], rest...), "\n")
	return nil
}

func (f *fakeSession) ReplaceText(_ context.Context, id, old, new string) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	current, ok := f.contents[id]
	if !ok {
		return 0, session.ErrDocumentNotFound
	}
	n := strings.Count(current, old)
	f.contents[id] = strings.ReplaceAll(current, old, new)
	return n, nil
}

func (f *fakeSession) SetSelection(_ context.Context, id string, rng session.Range) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.contents[id]; !ok {
		return session.ErrDocumentNotFound
	}
	f.selects[id] = rng
	return nil
}

func (f *fakeSession) CapturePlot(_ context.Context, req session.PlotRequest) (session.PlotData, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.plotCalls = append(f.plotCalls, req)
	if f.plotErr != nil {
		return session.PlotData{}, f.plotErr
	}
	if len(f.plotData) == 0 {
		return session.PlotData{}, session.ErrNoPlot
	}
	return session.PlotData{Data: f.plotData, Format: req.Format}, nil
}

func (f *fakeSession) ViewerContent(context.Context) (session.ViewerContent, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.viewerErr != nil {
		return session.ViewerContent{}, f.viewerErr
	}
	return f.viewer, nil
}

func (f *fakeSession) Ping(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pingCalls++
	return f.pingErr
}

var _ session.Session = (*fakeSession)(nil)

// newTestService builds a Service over a fresh fakeSession and ties its
// lifetime to the test.
func newTestService(t *testing.T, cfg Config) (*Service, *fakeSession) {
	t.Helper()
	sess := newFakeSession()
	cfg.Session = sess
	svc, err := New(cfg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(svc.Close)
	return svc, sess
}
