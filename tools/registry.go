package tools

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Handler executes one tool call. Handlers receive the raw argument bag and
// return a normalized Result; all validation and session access happens
// inside the handler, never in the registry.
type Handler func(ctx context.Context, args map[string]any) (Result, error)

// Tool describes one registered tool: wire name, human metadata, JSON input
// schema, and the handler that executes it.
type Tool struct {
	// Name is the wire name, e.g. "source_active_document".
	Name string

	// Description is the client-facing tool description.
	Description string

	// InputSchema is the JSON schema for the argument bag, in the
	// map-literal form the MCP SDK accepts.
	InputSchema map[string]any

	// Handler executes the tool.
	Handler Handler
}

var titleCaser = cases.Title(language.English)

// Title derives a display title from the wire name: "eval_r" becomes
// "Eval R"-style text.
func (t Tool) Title() string {
	return titleCaser.String(strings.ReplaceAll(t.Name, "_", " "))
}

// Registry maps tool names to handlers and is the single entry point the
// transport layer calls. It is pure routing: beyond resolving the name it
// delegates to the handler and returns its result unchanged.
//
// Registration happens once at construction; Dispatch may then be called
// concurrently.
type Registry struct {
	order []string
	tools map[string]Tool
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{tools: make(map[string]Tool)}
}

// Register adds a tool. Registering a duplicate or unnamed tool is a
// programming error and returns one.
func (r *Registry) Register(t Tool) error {
	if t.Name == "" {
		return fmt.Errorf("tool name is required")
	}
	if t.Handler == nil {
		return fmt.Errorf("tool %q has no handler", t.Name)
	}
	if _, exists := r.tools[t.Name]; exists {
		return fmt.Errorf("tool %q already registered", t.Name)
	}
	r.tools[t.Name] = t
	r.order = append(r.order, t.Name)
	return nil
}

// Tools returns all registered tools in registration order.
func (r *Registry) Tools() []Tool {
	out := make([]Tool, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.tools[name])
	}
	return out
}

// Dispatch routes a call to its handler. Unknown names fail with
// ErrUnknownTool before any session interaction.
func (r *Registry) Dispatch(ctx context.Context, call Call) (Result, error) {
	t, ok := r.tools[call.Name]
	if !ok {
		return Result{}, fmt.Errorf("%w: %q", ErrUnknownTool, call.Name)
	}
	return t.Handler(ctx, call.Args)
}
