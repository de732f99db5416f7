// Package dispatch routes decoded client requests to registered capability
// handlers and converts every outcome, success or failure, into a well-formed
// response.
//
// The error boundary lives here. Unknown capabilities, invalid arguments,
// handler errors, and handler panics all become envelopes or JSON-RPC errors;
// nothing below this layer may crash the process or leave a request
// unanswered.
package dispatch

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"

	"github.com/google/uuid"

	"github.com/hanq-io/toolbelt/internal/envelope"
	"github.com/hanq-io/toolbelt/internal/jsonrpc"
	"github.com/hanq-io/toolbelt/internal/logctx"
	"github.com/hanq-io/toolbelt/internal/registry"
	"github.com/hanq-io/toolbelt/internal/schema"
	"github.com/hanq-io/toolbelt/mcp"
)

// Dispatcher resolves requests against the capability registry, validates
// arguments, invokes handlers, and builds responses.
type Dispatcher struct {
	reg          *registry.Registry
	info         mcp.ImplementationInfo
	instructions string
	log          *slog.Logger
}

// Option customizes a Dispatcher.
type Option func(*Dispatcher)

// WithServerInfo sets the identity surfaced in initialize results.
func WithServerInfo(info mcp.ImplementationInfo) Option {
	return func(d *Dispatcher) { d.info = info }
}

// WithInstructions sets optional usage instructions surfaced during
// initialization.
func WithInstructions(instructions string) Option {
	return func(d *Dispatcher) { d.instructions = instructions }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(d *Dispatcher) {
		if l != nil {
			d.log = l
		}
	}
}

// New constructs a Dispatcher over a fully-populated registry. Registration
// must be complete before the transport starts feeding requests in.
func New(reg *registry.Registry, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		reg:  reg,
		info: mcp.ImplementationInfo{Name: "toolbelt", Version: "0.0.0"},
		log:  slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Handle serves one decoded request and returns the response to write back,
// or nil for notifications.
func (d *Dispatcher) Handle(ctx context.Context, req *jsonrpc.Request) *jsonrpc.Response {
	ctx = logctx.WithRPCMessage(ctx, &logctx.RPCMessage{
		Method: req.Method,
		ID:     req.ID.String(),
	})

	switch mcp.Method(req.Method) {
	case mcp.InitializeMethod:
		return d.handleInitialize(ctx, req)
	case mcp.InitializedNotificationMethod:
		d.log.DebugContext(ctx, "client initialized")
		return nil
	case mcp.PingMethod:
		return result(req.ID, mcp.EmptyResult{})
	case mcp.ToolsListMethod:
		return d.handleToolsList(ctx, req)
	case mcp.ToolsCallMethod:
		return d.handleToolsCall(ctx, req)
	case mcp.ResourcesListMethod:
		return d.handleResourcesList(ctx, req)
	case mcp.ResourcesReadMethod:
		return d.handleResourcesRead(ctx, req)
	case mcp.PromptsListMethod:
		return d.handlePromptsList(ctx, req)
	case mcp.PromptsGetMethod:
		return d.handlePromptsGet(ctx, req)
	default:
		if req.IsNotification() {
			d.log.DebugContext(ctx, "ignoring unknown notification")
			return nil
		}
		return jsonrpc.NewErrorResponse(req.ID, jsonrpc.ErrorCodeMethodNotFound,
			fmt.Sprintf("method not found: %s", req.Method), nil)
	}
}

func (d *Dispatcher) handleInitialize(ctx context.Context, req *jsonrpc.Request) *jsonrpc.Response {
	var params mcp.InitializeRequest
	if err := unmarshalParams(req.Params, &params); err != nil {
		return jsonrpc.NewErrorResponse(req.ID, jsonrpc.ErrorCodeInvalidParams, err.Error(), nil)
	}

	version := params.ProtocolVersion
	if version == "" {
		version = mcp.LatestProtocolVersion
	}

	caps := mcp.ServerCapabilities{}
	if d.reg.HasTools() {
		caps.Tools = &struct {
			ListChanged bool `json:"listChanged"`
		}{}
	}
	if d.reg.HasResources() {
		caps.Resources = &struct {
			ListChanged bool `json:"listChanged"`
			Subscribe   bool `json:"subscribe"`
		}{}
	}
	if d.reg.HasPrompts() {
		caps.Prompts = &struct {
			ListChanged bool `json:"listChanged"`
		}{}
	}

	d.log.InfoContext(ctx, "initializing session",
		slog.String("client", params.ClientInfo.Name),
		slog.String("client_version", params.ClientInfo.Version),
		slog.String("protocol_version", version))

	return result(req.ID, mcp.InitializeResult{
		ProtocolVersion: version,
		Capabilities:    caps,
		ServerInfo:      d.info,
		Instructions:    d.instructions,
	})
}

func (d *Dispatcher) handleToolsList(ctx context.Context, req *jsonrpc.Request) *jsonrpc.Response {
	var params mcp.ListToolsRequest
	if err := unmarshalParams(req.Params, &params); err != nil {
		return jsonrpc.NewErrorResponse(req.ID, jsonrpc.ErrorCodeInvalidParams, err.Error(), nil)
	}
	page := d.reg.Tools(cursorPtr(params.Cursor))
	res := mcp.ListToolsResult{Tools: page.Items}
	if page.NextCursor != nil {
		res.NextCursor = *page.NextCursor
	}
	return result(req.ID, res)
}

func (d *Dispatcher) handleToolsCall(ctx context.Context, req *jsonrpc.Request) *jsonrpc.Response {
	var params mcp.CallToolRequest
	if err := unmarshalParams(req.Params, &params); err != nil {
		return jsonrpc.NewErrorResponse(req.ID, jsonrpc.ErrorCodeInvalidParams, err.Error(), nil)
	}
	return result(req.ID, d.callTool(ctx, &params))
}

// callTool resolves, validates, and invokes one tool. Every failure mode maps
// to an IsError envelope: the client referenced something unknown, sent bad
// arguments, or the handler itself failed.
func (d *Dispatcher) callTool(ctx context.Context, params *mcp.CallToolRequest) *mcp.CallToolResult {
	ctx = logctx.WithInvocation(ctx, &logctx.Invocation{
		ID:   uuid.NewString(),
		Kind: string(registry.KindTool),
		Name: params.Name,
	})

	tool, handler, err := d.reg.Tool(params.Name)
	if err != nil {
		d.log.WarnContext(ctx, "unknown tool requested")
		return envelope.Errorf("unknown tool: %s", params.Name)
	}

	args, err := schema.Validate(tool.InputSchema, params.Arguments)
	if err != nil {
		d.log.WarnContext(ctx, "tool arguments rejected", slog.String("reason", err.Error()))
		return envelope.Errorf("invalid arguments: %v", err)
	}

	res := d.invokeTool(ctx, params.Name, handler, args)
	d.log.InfoContext(ctx, "tool call completed", slog.Bool("is_error", res.IsError))
	return res
}

// invokeTool runs the handler inside the process's failure boundary. A
// handler error return or panic becomes an IsError envelope; the process
// never terminates because a single invocation failed.
func (d *Dispatcher) invokeTool(ctx context.Context, name string, handler registry.ToolHandler, args schema.Args) (res *mcp.CallToolResult) {
	defer func() {
		if r := recover(); r != nil {
			d.log.ErrorContext(ctx, "tool handler panicked", slog.Any("panic", r))
			res = envelope.Errorf("tool %s failed unexpectedly: %v", name, r)
		}
	}()
	out, err := handler(ctx, args)
	if err != nil {
		d.log.ErrorContext(ctx, "tool handler failed", slog.String("error", err.Error()))
		return envelope.Errorf("tool %s failed: %v", name, err)
	}
	if out == nil {
		return envelope.Errorf("tool %s produced no result", name)
	}
	return out
}

func (d *Dispatcher) handleResourcesList(ctx context.Context, req *jsonrpc.Request) *jsonrpc.Response {
	var params mcp.ListResourcesRequest
	if err := unmarshalParams(req.Params, &params); err != nil {
		return jsonrpc.NewErrorResponse(req.ID, jsonrpc.ErrorCodeInvalidParams, err.Error(), nil)
	}
	page := d.reg.Resources(cursorPtr(params.Cursor))
	res := mcp.ListResourcesResult{Resources: page.Items}
	if page.NextCursor != nil {
		res.NextCursor = *page.NextCursor
	}
	return result(req.ID, res)
}

// handleResourcesRead serves one resource read. Resources have no error
// envelope shape, so an unknown URI or a failing handler comes back as a
// JSON-RPC error while the process keeps serving.
func (d *Dispatcher) handleResourcesRead(ctx context.Context, req *jsonrpc.Request) *jsonrpc.Response {
	var params mcp.ReadResourceRequest
	if err := unmarshalParams(req.Params, &params); err != nil {
		return jsonrpc.NewErrorResponse(req.ID, jsonrpc.ErrorCodeInvalidParams, err.Error(), nil)
	}

	ctx = logctx.WithInvocation(ctx, &logctx.Invocation{
		ID:   uuid.NewString(),
		Kind: string(registry.KindResource),
		Name: params.URI,
	})

	_, handler, err := d.reg.Resource(params.URI)
	if err != nil {
		d.log.WarnContext(ctx, "unknown resource requested")
		return jsonrpc.NewErrorResponse(req.ID, jsonrpc.ErrorCodeInvalidParams, err.Error(), nil)
	}

	contents, err := d.invokeResource(ctx, handler)
	if err != nil {
		d.log.ErrorContext(ctx, "resource handler failed", slog.String("error", err.Error()))
		return jsonrpc.NewErrorResponse(req.ID, jsonrpc.ErrorCodeInternalError,
			fmt.Sprintf("read %s: %v", params.URI, err), nil)
	}
	d.log.InfoContext(ctx, "resource read completed")
	return result(req.ID, mcp.ReadResourceResult{Contents: contents})
}

func (d *Dispatcher) invokeResource(ctx context.Context, handler registry.ResourceHandler) (contents []mcp.ResourceContents, err error) {
	defer func() {
		if r := recover(); r != nil {
			contents, err = nil, fmt.Errorf("resource handler panicked: %v", r)
		}
	}()
	return handler(ctx)
}

func (d *Dispatcher) handlePromptsList(ctx context.Context, req *jsonrpc.Request) *jsonrpc.Response {
	var params mcp.ListPromptsRequest
	if err := unmarshalParams(req.Params, &params); err != nil {
		return jsonrpc.NewErrorResponse(req.ID, jsonrpc.ErrorCodeInvalidParams, err.Error(), nil)
	}
	page := d.reg.Prompts(cursorPtr(params.Cursor))
	res := mcp.ListPromptsResult{Prompts: page.Items}
	if page.NextCursor != nil {
		res.NextCursor = *page.NextCursor
	}
	return result(req.ID, res)
}

func (d *Dispatcher) handlePromptsGet(ctx context.Context, req *jsonrpc.Request) *jsonrpc.Response {
	var params mcp.GetPromptRequest
	if err := unmarshalParams(req.Params, &params); err != nil {
		return jsonrpc.NewErrorResponse(req.ID, jsonrpc.ErrorCodeInvalidParams, err.Error(), nil)
	}

	ctx = logctx.WithInvocation(ctx, &logctx.Invocation{
		ID:   uuid.NewString(),
		Kind: string(registry.KindPrompt),
		Name: params.Name,
	})

	prompt, handler, err := d.reg.Prompt(params.Name)
	if err != nil {
		d.log.WarnContext(ctx, "unknown prompt requested")
		return jsonrpc.NewErrorResponse(req.ID, jsonrpc.ErrorCodeInvalidParams, err.Error(), nil)
	}

	args := decodePromptArgs(params.Arguments)
	for _, arg := range prompt.Arguments {
		if arg.Required && args[arg.Name] == "" {
			missing := &schema.MissingFieldError{Field: arg.Name}
			d.log.WarnContext(ctx, "prompt arguments rejected", slog.String("reason", missing.Error()))
			return jsonrpc.NewErrorResponse(req.ID, jsonrpc.ErrorCodeInvalidParams, missing.Error(), nil)
		}
	}

	res, err := d.invokePrompt(ctx, handler, args)
	if err != nil {
		d.log.ErrorContext(ctx, "prompt handler failed", slog.String("error", err.Error()))
		return jsonrpc.NewErrorResponse(req.ID, jsonrpc.ErrorCodeInternalError,
			fmt.Sprintf("get prompt %s: %v", params.Name, err), nil)
	}
	d.log.InfoContext(ctx, "prompt materialized")
	return result(req.ID, res)
}

func (d *Dispatcher) invokePrompt(ctx context.Context, handler registry.PromptHandler, args map[string]string) (res *mcp.GetPromptResult, err error) {
	defer func() {
		if r := recover(); r != nil {
			res, err = nil, fmt.Errorf("prompt handler panicked: %v", r)
		}
	}()
	return handler(ctx, args)
}

// decodePromptArgs flattens raw prompt arguments into strings. Non-string
// JSON values keep their literal encoding.
func decodePromptArgs(raw map[string]json.RawMessage) map[string]string {
	args := make(map[string]string, len(raw))
	for k, v := range raw {
		var s string
		if err := json.Unmarshal(v, &s); err == nil {
			args[k] = s
			continue
		}
		args[k] = string(v)
	}
	return args
}

func unmarshalParams(raw json.RawMessage, v any) error {
	if len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("invalid params: %v", err)
	}
	return nil
}

func cursorPtr(cursor string) *string {
	if cursor == "" {
		return nil
	}
	return &cursor
}

// result marshals a successful response. A result value that cannot marshal
// is an internal bug surfaced as an internal JSON-RPC error.
func result(id *jsonrpc.RequestID, v any) *jsonrpc.Response {
	resp, err := jsonrpc.NewResultResponse(id, v)
	if err != nil {
		return jsonrpc.NewErrorResponse(id, jsonrpc.ErrorCodeInternalError, err.Error(), nil)
	}
	return resp
}
