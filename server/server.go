// Package server exposes a tools.Service as an MCP server over stdio or
// streamable HTTP.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/robfig/cron/v3"

	"github.com/statkit/rsessiond/tools"
)

// Logger is the interface for logging.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Errors: logging must be best-effort and must not panic.
type Logger interface {
	Logf(format string, args ...any)
}

// Config configures a Server.
type Config struct {
	// Service executes the tool calls.
	// Required.
	Service *tools.Service

	// Name is the implementation name advertised during the MCP handshake.
	// Default: "rsessiond"
	Name string

	// Version is the implementation version advertised during the MCP
	// handshake.
	// Default: "dev"
	Version string

	// Heartbeat is an optional cron schedule (e.g. "@every 30s") for
	// probing session liveness through the serializer. Empty disables the
	// heartbeat.
	Heartbeat string

	// ShutdownGrace bounds how long ServeHTTP waits for in-flight requests
	// on shutdown.
	// Default: 5s
	ShutdownGrace time.Duration

	// Logger is an optional logger for server events.
	Logger Logger
}

// Validate checks the configuration for missing required fields.
func (c *Config) Validate() error {
	if c.Service == nil {
		return errors.New("server: Service is required")
	}
	return nil
}

func (c *Config) applyDefaults() {
	if c.Name == "" {
		c.Name = "rsessiond"
	}
	if c.Version == "" {
		c.Version = "dev"
	}
	if c.ShutdownGrace == 0 {
		c.ShutdownGrace = 5 * time.Second
	}
}

// Server bridges the tool surface onto the MCP wire protocol. Transports may
// deliver calls concurrently; serialization against the host session happens
// inside the service, not here.
type Server struct {
	cfg  Config
	mcp  *mcp.Server
	cron *cron.Cron
}

// New creates a Server advertising the service's full tool surface.
func New(cfg Config) (*Server, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cfg.applyDefaults()

	s := &Server{
		cfg: cfg,
		mcp: mcp.NewServer(&mcp.Implementation{Name: cfg.Name, Version: cfg.Version}, nil),
	}
	for _, t := range cfg.Service.Tools() {
		s.bridge(t)
	}

	if cfg.Heartbeat != "" {
		c := cron.New()
		if _, err := c.AddFunc(cfg.Heartbeat, s.heartbeat); err != nil {
			return nil, fmt.Errorf("server: invalid heartbeat schedule %q: %w", cfg.Heartbeat, err)
		}
		s.cron = c
	}
	return s, nil
}

// MCP returns the underlying MCP server, for connecting custom transports.
func (s *Server) MCP() *mcp.Server {
	return s.mcp
}

// bridge registers one tool with the MCP server, translating wire arguments
// to a Call and the Result union back to MCP content. Dispatch failures
// become failed tool results, never protocol errors: one bad call must not
// tear down the session.
func (s *Server) bridge(t tools.Tool) {
	s.mcp.AddTool(&mcp.Tool{
		Name:        t.Name,
		Title:       t.Title(),
		Description: t.Description,
		InputSchema: t.InputSchema,
	}, func(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		var args map[string]any
		if len(req.Params.Arguments) > 0 {
			if err := json.Unmarshal(req.Params.Arguments, &args); err != nil {
				return errorResult(fmt.Errorf("%w: arguments are not a JSON object", tools.ErrInvalidArgument)), nil
			}
		}
		res, err := s.cfg.Service.Dispatch(ctx, tools.Call{Name: t.Name, Args: args})
		if err != nil {
			return errorResult(err), nil
		}
		return contentResult(res), nil
	})
}

func errorResult(err error) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		IsError: true,
		Content: []mcp.Content{&mcp.TextContent{Text: err.Error()}},
	}
}

func contentResult(res tools.Result) *mcp.CallToolResult {
	switch res.Kind {
	case tools.KindImage:
		return &mcp.CallToolResult{
			Content: []mcp.Content{&mcp.ImageContent{Data: res.Data, MIMEType: res.MIMEType}},
		}
	case tools.KindList:
		// One content block per entry, order preserved.
		content := make([]mcp.Content, len(res.Items))
		for i, item := range res.Items {
			content[i] = &mcp.TextContent{Text: item}
		}
		return &mcp.CallToolResult{Content: content}
	default:
		return &mcp.CallToolResult{
			Content: []mcp.Content{&mcp.TextContent{Text: res.Text}},
		}
	}
}

// ServeStdio serves MCP over stdin/stdout until ctx is cancelled or the
// client disconnects.
func (s *Server) ServeStdio(ctx context.Context) error {
	stop := s.startHeartbeat()
	defer stop()

	s.logf("serving MCP over stdio")
	return s.mcp.Run(ctx, &mcp.StdioTransport{})
}

// ServeHTTP serves MCP over streamable HTTP on addr until ctx is cancelled,
// then shuts down gracefully.
func (s *Server) ServeHTTP(ctx context.Context, addr string) error {
	handler := mcp.NewStreamableHTTPHandler(func(*http.Request) *mcp.Server { return s.mcp }, nil)
	httpSrv := &http.Server{Addr: addr, Handler: handler}

	stop := s.startHeartbeat()
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		errCh <- httpSrv.ListenAndServe()
	}()
	s.logf("serving MCP over HTTP on %s", addr)

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownGrace)
		defer cancel()
		return httpSrv.Shutdown(shutdownCtx)
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

func (s *Server) startHeartbeat() func() {
	if s.cron == nil {
		return func() {}
	}
	s.cron.Start()
	return func() { <-s.cron.Stop().Done() }
}

// heartbeat probes session liveness through the serializer, so it can never
// interleave with a running tool call.
func (s *Server) heartbeat() {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := s.cfg.Service.Ping(ctx); err != nil {
		s.logf("session heartbeat failed: %v", err)
		return
	}
	s.logf("session heartbeat ok")
}

func (s *Server) logf(format string, args ...any) {
	if s.cfg.Logger != nil {
		s.cfg.Logger.Logf(format, args...)
	}
}
