// Package registry maps capability kind and identifier to the descriptor and
// handler that serve it.
//
// Registration happens once, during single-threaded startup, before the
// transport begins accepting requests; a duplicate identifier is a
// programming error surfaced to the caller so startup can halt. After that
// the registry is an effectively frozen snapshot read by concurrent
// invocations. The mutex keeps the type safe even if that contract is
// violated, but nothing mutates on the dispatch path.
package registry

import (
	"context"
	"fmt"
	"sync"

	"github.com/hanq-io/toolbelt/internal/schema"
	"github.com/hanq-io/toolbelt/mcp"
)

// Kind identifies which capability namespace an identifier lives in.
type Kind string

const (
	KindTool     Kind = "tool"
	KindResource Kind = "resource"
	KindPrompt   Kind = "prompt"
)

// DuplicateError reports a second registration of the same (kind, identifier).
type DuplicateError struct {
	Kind Kind
	ID   string
}

func (e *DuplicateError) Error() string {
	return fmt.Sprintf("duplicate %s registration: %s", e.Kind, e.ID)
}

// NotFoundError reports a lookup of an unregistered (kind, identifier).
type NotFoundError struct {
	Kind Kind
	ID   string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("unknown %s: %s", e.Kind, e.ID)
}

// ToolHandler executes a tool invocation with validated arguments.
type ToolHandler func(ctx context.Context, args schema.Args) (*mcp.CallToolResult, error)

// ResourceHandler produces the contents of a resource read.
type ResourceHandler func(ctx context.Context) ([]mcp.ResourceContents, error)

// PromptHandler materializes a prompt with its decoded string arguments.
type PromptHandler func(ctx context.Context, args map[string]string) (*mcp.GetPromptResult, error)

// ToolDef pairs a tool descriptor with its handler.
type ToolDef struct {
	Descriptor mcp.Tool
	Handler    ToolHandler
}

// ResourceDef pairs a resource descriptor with its handler.
type ResourceDef struct {
	Descriptor mcp.Resource
	Handler    ResourceHandler
}

// PromptDef pairs a prompt descriptor with its handler.
type PromptDef struct {
	Descriptor mcp.Prompt
	Handler    PromptHandler
}

// Registry holds every registered capability, keyed by kind and identifier.
// Descriptors list in registration order.
type Registry struct {
	mu sync.RWMutex

	tools        []mcp.Tool
	toolHandlers map[string]ToolHandler

	resources        []mcp.Resource
	resourceHandlers map[string]ResourceHandler

	prompts        []mcp.Prompt
	promptHandlers map[string]PromptHandler

	pageSize int
}

// New constructs an empty Registry.
func New() *Registry {
	return &Registry{
		toolHandlers:     make(map[string]ToolHandler),
		resourceHandlers: make(map[string]ResourceHandler),
		promptHandlers:   make(map[string]PromptHandler),
		pageSize:         50,
	}
}

// SetPageSize sets the page size used when listing descriptors. Values < 1
// are ignored.
func (r *Registry) SetPageSize(n int) {
	if n < 1 {
		return
	}
	r.mu.Lock()
	r.pageSize = n
	r.mu.Unlock()
}

// RegisterTool adds a tool. A duplicate name fails with DuplicateError.
func (r *Registry) RegisterTool(def ToolDef) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	name := def.Descriptor.Name
	if name == "" {
		return fmt.Errorf("tool registration requires a name")
	}
	if _, exists := r.toolHandlers[name]; exists {
		return &DuplicateError{Kind: KindTool, ID: name}
	}
	r.tools = append(r.tools, def.Descriptor)
	r.toolHandlers[name] = def.Handler
	return nil
}

// RegisterResource adds a resource. A duplicate URI fails with DuplicateError.
func (r *Registry) RegisterResource(def ResourceDef) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	uri := def.Descriptor.URI
	if uri == "" {
		return fmt.Errorf("resource registration requires a uri")
	}
	if _, exists := r.resourceHandlers[uri]; exists {
		return &DuplicateError{Kind: KindResource, ID: uri}
	}
	r.resources = append(r.resources, def.Descriptor)
	r.resourceHandlers[uri] = def.Handler
	return nil
}

// RegisterPrompt adds a prompt. A duplicate name fails with DuplicateError.
func (r *Registry) RegisterPrompt(def PromptDef) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	name := def.Descriptor.Name
	if name == "" {
		return fmt.Errorf("prompt registration requires a name")
	}
	if _, exists := r.promptHandlers[name]; exists {
		return &DuplicateError{Kind: KindPrompt, ID: name}
	}
	r.prompts = append(r.prompts, def.Descriptor)
	r.promptHandlers[name] = def.Handler
	return nil
}

// Tool returns the registered tool by name.
func (r *Registry) Tool(name string) (mcp.Tool, ToolHandler, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	h, ok := r.toolHandlers[name]
	if !ok {
		return mcp.Tool{}, nil, &NotFoundError{Kind: KindTool, ID: name}
	}
	for _, t := range r.tools {
		if t.Name == name {
			return t, h, nil
		}
	}
	return mcp.Tool{}, nil, &NotFoundError{Kind: KindTool, ID: name}
}

// Resource returns the registered resource by URI.
func (r *Registry) Resource(uri string) (mcp.Resource, ResourceHandler, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	h, ok := r.resourceHandlers[uri]
	if !ok {
		return mcp.Resource{}, nil, &NotFoundError{Kind: KindResource, ID: uri}
	}
	for _, res := range r.resources {
		if res.URI == uri {
			return res, h, nil
		}
	}
	return mcp.Resource{}, nil, &NotFoundError{Kind: KindResource, ID: uri}
}

// Prompt returns the registered prompt by name.
func (r *Registry) Prompt(name string) (mcp.Prompt, PromptHandler, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	h, ok := r.promptHandlers[name]
	if !ok {
		return mcp.Prompt{}, nil, &NotFoundError{Kind: KindPrompt, ID: name}
	}
	for _, p := range r.prompts {
		if p.Name == name {
			return p, h, nil
		}
	}
	return mcp.Prompt{}, nil, &NotFoundError{Kind: KindPrompt, ID: name}
}

// Tools returns one page of tool descriptors in registration order.
func (r *Registry) Tools(cursor *string) Page[mcp.Tool] {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return paginate(r.tools, cursor, r.pageSize)
}

// Resources returns one page of resource descriptors in registration order.
func (r *Registry) Resources(cursor *string) Page[mcp.Resource] {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return paginate(r.resources, cursor, r.pageSize)
}

// Prompts returns one page of prompt descriptors in registration order.
func (r *Registry) Prompts(cursor *string) Page[mcp.Prompt] {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return paginate(r.prompts, cursor, r.pageSize)
}

// HasTools reports whether any tool is registered.
func (r *Registry) HasTools() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.tools) > 0
}

// HasResources reports whether any resource is registered.
func (r *Registry) HasResources() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.resources) > 0
}

// HasPrompts reports whether any prompt is registered.
func (r *Registry) HasPrompts() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.prompts) > 0
}
