package tools

import (
	"context"
	"fmt"
	"sync"

	"github.com/statkit/rsessiond/session"
)

// Tracker maintains the server's view of open documents: which one is
// active, and the set of IDs learned from prior create/open calls.
//
// The tracker is a best-effort cache, never an authority. Documents can be
// closed or switched from inside the IDE at any time, so staleness-sensitive
// questions — which document is active, whether an ID is still open — are
// always re-confirmed against the session before being trusted. What the
// tracker does own is ordering: IDs are remembered in the order the server
// first learned of them, and listings preserve that order.
type Tracker struct {
	mu    sync.Mutex
	order []string
	seen  map[string]bool
}

// NewTracker creates an empty tracker.
func NewTracker() *Tracker {
	return &Tracker{seen: make(map[string]bool)}
}

// Remember records a document ID the server has learned about. Re-learning
// an ID keeps its original position.
func (t *Tracker) Remember(id string) {
	if id == "" || id == session.ConsoleID {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.seen[id] {
		t.seen[id] = true
		t.order = append(t.order, id)
	}
}

// Known returns the remembered IDs in first-learned order.
func (t *Tracker) Known() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]string(nil), t.order...)
}

// ResolveActive queries the session for the in-focus document. The console
// pseudo-context and an empty ID both resolve to ErrNoActiveDocument; a real
// document is remembered before being returned.
func (t *Tracker) ResolveActive(ctx context.Context, sess session.Session) (session.Document, error) {
	doc, err := sess.ActiveDocument(ctx)
	if err != nil {
		return session.Document{}, err
	}
	if doc.ID == "" || doc.ID == session.ConsoleID {
		return session.Document{}, session.ErrNoActiveDocument
	}
	t.Remember(doc.ID)
	return doc, nil
}

// OrderedOpen lists the currently open documents, re-confirmed against the
// session, ordered first by when this server learned of them and then by
// host order for documents opened elsewhere. Every listed ID is remembered.
func (t *Tracker) OrderedOpen(ctx context.Context, sess session.Session) ([]session.Document, error) {
	open, err := sess.OpenDocuments(ctx)
	if err != nil {
		return nil, err
	}

	byID := make(map[string]session.Document, len(open))
	for _, d := range open {
		byID[d.ID] = d
	}

	out := make([]session.Document, 0, len(open))
	for _, id := range t.Known() {
		if d, ok := byID[id]; ok {
			out = append(out, d)
			delete(byID, id)
		}
	}
	for _, d := range open {
		if _, ok := byID[d.ID]; ok {
			out = append(out, d)
			t.Remember(d.ID)
			delete(byID, d.ID)
		}
	}
	return out, nil
}

// Describe formats one document for a listing entry.
func Describe(d session.Document) string {
	path := d.Path
	if d.Untitled() {
		path = "untitled"
	}
	entry := fmt.Sprintf("%s (%s)", d.ID, path)
	if d.Active {
		entry += " [active]"
	}
	return entry
}
