package rstudio

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"

	"github.com/statkit/rsessiond/session"
)

// addinCall records one request the fake addin received.
type addinCall struct {
	method string
	id     string
	params json.RawMessage
}

// fakeAddin is an httptest-backed stand-in for the companion addin. Each
// method name maps to a canned response body.
type fakeAddin struct {
	t         *testing.T
	responses map[string]string
	calls     []addinCall
}

func (f *fakeAddin) handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			f.t.Errorf("unexpected HTTP method %s", r.Method)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			f.t.Errorf("unexpected content type %q", ct)
		}
		method := r.URL.Path[len("/rpc/"):]

		var env struct {
			ID     string          `json:"id"`
			Params json.RawMessage `json:"params"`
		}
		if err := json.NewDecoder(r.Body).Decode(&env); err != nil {
			f.t.Errorf("decode request: %v", err)
		}
		f.calls = append(f.calls, addinCall{method: method, id: env.ID, params: env.Params})

		body, ok := f.responses[method]
		if !ok {
			body = `{"result":{}}`
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(body))
	})
}

func newTestClient(t *testing.T, responses map[string]string) (*Client, *fakeAddin) {
	t.Helper()
	addin := &fakeAddin{t: t, responses: responses}
	srv := httptest.NewServer(addin.handler())
	t.Cleanup(srv.Close)

	c, err := New(Config{BaseURL: srv.URL})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return c, addin
}

func TestNew_RequiresBaseURL(t *testing.T) {
	if _, err := New(Config{}); err == nil {
		t.Fatal("expected configuration error")
	}
}

func TestClient_Evaluate(t *testing.T) {
	c, addin := newTestClient(t, map[string]string{
		"eval": `{"result":{"output":"[1] 4\n"}}`,
	})

	out, err := c.Evaluate(context.Background(), "2 + 2")
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if out != "[1] 4\n" {
		t.Errorf("output altered in transit: %q", out)
	}

	if len(addin.calls) != 1 || addin.calls[0].method != "eval" {
		t.Fatalf("unexpected calls: %+v", addin.calls)
	}
	if _, err := uuid.Parse(addin.calls[0].id); err != nil {
		t.Errorf("request ID is not a UUID: %q", addin.calls[0].id)
	}
	var params struct {
		Code string `json:"code"`
	}
	if err := json.Unmarshal(addin.calls[0].params, &params); err != nil || params.Code != "2 + 2" {
		t.Errorf("code not forwarded verbatim: %s", addin.calls[0].params)
	}
}

func TestClient_EvalErrorKeepsDiagnosticVerbatim(t *testing.T) {
	c, _ := newTestClient(t, map[string]string{
		"eval": `{"error":{"code":"eval_error","message":"object 'zz' not found","output":"Error: object 'zz' not found"}}`,
	})

	_, err := c.Evaluate(context.Background(), "zz")
	if !errors.Is(err, session.ErrEvaluation) {
		t.Fatalf("expected evaluation error, got %v", err)
	}
	var evalErr *session.EvalError
	if !errors.As(err, &evalErr) {
		t.Fatalf("expected *session.EvalError, got %T", err)
	}
	if evalErr.Message != "object 'zz' not found" {
		t.Errorf("R condition text altered: %q", evalErr.Message)
	}
	if evalErr.Output != "Error: object 'zz' not found" {
		t.Errorf("R output altered: %q", evalErr.Output)
	}
}

func TestClient_HostErrorCodeMapping(t *testing.T) {
	tests := []struct {
		name string
		run  func(c *Client) error
		body string
		want error
	}{
		{
			"no active document",
			func(c *Client) error { _, err := c.ActiveDocument(context.Background()); return err },
			`{"error":{"code":"no_active_document","message":"console has focus"}}`,
			session.ErrNoActiveDocument,
		},
		{
			"document not found",
			func(c *Client) error { _, err := c.DocumentContents(context.Background(), "X"); return err },
			`{"error":{"code":"document_not_found","message":"no such document"}}`,
			session.ErrDocumentNotFound,
		},
		{
			"path conflict",
			func(c *Client) error { _, err := c.CreateFile(context.Background(), "/tmp/a.R", ""); return err },
			`{"error":{"code":"path_conflict","message":"file exists"}}`,
			session.ErrPathConflict,
		},
		{
			"no plot",
			func(c *Client) error {
				_, err := c.CapturePlot(context.Background(), session.PlotRequest{Width: 800, Height: 600, Format: "png"})
				return err
			},
			`{"error":{"code":"no_plot","message":"graphics device is empty"}}`,
			session.ErrNoPlot,
		},
		{
			"viewer empty",
			func(c *Client) error { _, err := c.ViewerContent(context.Background()); return err },
			`{"error":{"code":"viewer_empty","message":"nothing shown"}}`,
			session.ErrViewerEmpty,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			responses := map[string]string{}
			for _, method := range []string{"active_document", "document_contents", "create_file", "capture_plot", "viewer_content"} {
				responses[method] = tt.body
			}
			c, _ := newTestClient(t, responses)
			if err := tt.run(c); !errors.Is(err, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestClient_ReplaceTextWireShape(t *testing.T) {
	c, addin := newTestClient(t, map[string]string{
		"replace_text": `{"result":{"count":3}}`,
	})

	n, err := c.ReplaceText(context.Background(), "DOC1", "foo", "bar")
	if err != nil {
		t.Fatalf("ReplaceText: %v", err)
	}
	if n != 3 {
		t.Errorf("count wrong: %d", n)
	}

	var params struct {
		ID  string `json:"id"`
		Old string `json:"old"`
		New string `json:"new"`
	}
	if err := json.Unmarshal(addin.calls[0].params, &params); err != nil {
		t.Fatalf("decode params: %v", err)
	}
	if params.ID != "DOC1" || params.Old != "foo" || params.New != "bar" {
		t.Errorf("params wrong: %+v", params)
	}
}

func TestClient_InsertTextOmitsLocationWhenCursorRelative(t *testing.T) {
	c, addin := newTestClient(t, nil)

	if err := c.InsertText(context.Background(), "DOC1", "x", nil); err != nil {
		t.Fatalf("InsertText: %v", err)
	}
	if bytes.Contains(addin.calls[0].params, []byte(`"line"`)) {
		t.Errorf("cursor-relative insert must not send a line: %s", addin.calls[0].params)
	}

	if err := c.InsertText(context.Background(), "DOC1", "x", &session.Location{Line: 2, Column: 5}); err != nil {
		t.Fatalf("InsertText: %v", err)
	}
	var params struct {
		Line   int `json:"line"`
		Column int `json:"column"`
	}
	if err := json.Unmarshal(addin.calls[1].params, &params); err != nil {
		t.Fatalf("decode params: %v", err)
	}
	if params.Line != 2 || params.Column != 5 {
		t.Errorf("location wrong: %+v", params)
	}
}

func TestClient_CapturePlotDecodesBytes(t *testing.T) {
	raw := []byte{0x89, 'P', 'N', 'G', 0x00, 0x01, 0x02}
	body, _ := json.Marshal(map[string]any{
		"result": map[string]any{"data": raw, "format": "png"},
	})
	c, addin := newTestClient(t, map[string]string{"capture_plot": string(body)})

	plot, err := c.CapturePlot(context.Background(), session.PlotRequest{Width: 640, Height: 480, Format: "png"})
	if err != nil {
		t.Fatalf("CapturePlot: %v", err)
	}
	if !bytes.Equal(plot.Data, raw) {
		t.Errorf("image bytes corrupted in transit: %v", plot.Data)
	}
	if plot.Format != "png" {
		t.Errorf("format wrong: %q", plot.Format)
	}

	var params struct {
		Width  int    `json:"width"`
		Height int    `json:"height"`
		Format string `json:"format"`
	}
	if err := json.Unmarshal(addin.calls[0].params, &params); err != nil {
		t.Fatalf("decode params: %v", err)
	}
	if params.Width != 640 || params.Height != 480 || params.Format != "png" {
		t.Errorf("dimensions must pass through unchanged: %+v", params)
	}
}

func TestClient_TransportFailures(t *testing.T) {
	t.Run("unreachable endpoint", func(t *testing.T) {
		srv := httptest.NewServer(http.NotFoundHandler())
		url := srv.URL
		srv.Close()

		c, err := New(Config{BaseURL: url})
		if err != nil {
			t.Fatalf("New: %v", err)
		}
		if err := c.Ping(context.Background()); !errors.Is(err, ErrUnavailable) {
			t.Errorf("expected ErrUnavailable, got %v", err)
		}
	})

	t.Run("http error status", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			http.Error(w, "session busy", http.StatusInternalServerError)
		}))
		t.Cleanup(srv.Close)

		c, err := New(Config{BaseURL: srv.URL})
		if err != nil {
			t.Fatalf("New: %v", err)
		}
		if err := c.Ping(context.Background()); !errors.Is(err, ErrUnavailable) {
			t.Errorf("expected ErrUnavailable, got %v", err)
		}
	})

	t.Run("undecodable body", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte("<html>not json</html>"))
		}))
		t.Cleanup(srv.Close)

		c, err := New(Config{BaseURL: srv.URL})
		if err != nil {
			t.Fatalf("New: %v", err)
		}
		if err := c.Ping(context.Background()); !errors.Is(err, ErrProtocol) {
			t.Errorf("expected ErrProtocol, got %v", err)
		}
	})

	t.Run("cancelled context", func(t *testing.T) {
		c, _ := newTestClient(t, nil)
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		if err := c.Ping(ctx); !errors.Is(err, context.Canceled) {
			t.Errorf("expected context.Canceled, got %v", err)
		}
	})
}
