package tools

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"

	"github.com/dgallion1/docedit/internal/editor"
)

// Registry holds the tools an agent may call. Middleware given to
// NewRegistry wraps every handler at registration time.
type Registry struct {
	mu         sync.RWMutex
	tools      map[string]*Tool
	middleware []Middleware
}

// NewRegistry creates an empty registry.
func NewRegistry(mw ...Middleware) *Registry {
	return &Registry{
		tools:      make(map[string]*Tool),
		middleware: mw,
	}
}

// Register adds a tool. Its handler is wrapped with panic recovery and the
// registry's middleware.
func (r *Registry) Register(tool Tool) error {
	if err := tool.Validate(); err != nil {
		return fmt.Errorf("invalid tool: %w", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.tools[tool.Name]; exists {
		return fmt.Errorf("%w: %s", ErrToolAlreadyRegistered, tool.Name)
	}
	tool.Handler = Chain(r.middleware...)(tool.Name, recovered(tool.Handler))
	r.tools[tool.Name] = &tool
	return nil
}

// MustRegister registers a tool and panics on error.
func (r *Registry) MustRegister(tool Tool) {
	if err := r.Register(tool); err != nil {
		panic(fmt.Sprintf("failed to register tool %s: %v", tool.Name, err))
	}
}

// Get returns a tool by name, or nil if not found.
func (r *Registry) Get(name string) *Tool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.tools[name]
}

// Names returns all registered tool names, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.tools))
	for name := range r.tools {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// All returns every tool sorted by name.
func (r *Registry) All() []*Tool {
	names := r.Names()
	out := make([]*Tool, 0, len(names))
	for _, name := range names {
		out = append(out, r.Get(name))
	}
	return out
}

// Call runs a tool and returns its result or error.
func (r *Registry) Call(ctx context.Context, ed editor.Editor, name string, args json.RawMessage) (any, error) {
	tool := r.Get(name)
	if tool == nil {
		return nil, fmt.Errorf("%w: %s", ErrToolNotFound, name)
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCanceled, err)
	}
	args = normalizeArgs(args)
	if err := checkRequired(tool.Schema, args); err != nil {
		return nil, err
	}
	return tool.Handler(ctx, ed, args)
}

// Invoke is Call for agent-facing callers: a failure becomes an ErrorResult
// value instead of an error.
func (r *Registry) Invoke(ctx context.Context, ed editor.Editor, name string, args json.RawMessage) any {
	res, err := r.Call(ctx, ed, name, args)
	if err != nil {
		return ErrorResult{Error: err.Error(), Code: ErrorCode(err)}
	}
	return res
}

func normalizeArgs(args json.RawMessage) json.RawMessage {
	trimmed := bytes.TrimSpace(args)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return json.RawMessage("{}")
	}
	return trimmed
}

func checkRequired(schema Schema, args json.RawMessage) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(args, &fields); err != nil {
		return invalidf("arguments must be a JSON object: %v", err)
	}
	for _, name := range schema.Required {
		v, ok := fields[name]
		if !ok || bytes.Equal(v, []byte("null")) {
			return fmt.Errorf("%w: %s", ErrMissingRequiredArg, name)
		}
	}
	return nil
}

// recovered turns a panic inside a handler into an error, so nothing
// escapes to the agent runtime.
func recovered(h Handler) Handler {
	return func(ctx context.Context, ed editor.Editor, args json.RawMessage) (res any, err error) {
		defer func() {
			if p := recover(); p != nil {
				res = nil
				err = fmt.Errorf("%w: panic: %v", ErrInternal, p)
			}
		}()
		return h(ctx, ed, args)
	}
}
