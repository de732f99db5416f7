package dispatch

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/hanq-io/toolbelt/internal/envelope"
	"github.com/hanq-io/toolbelt/internal/jsonrpc"
	"github.com/hanq-io/toolbelt/internal/registry"
	"github.com/hanq-io/toolbelt/internal/schema"
	"github.com/hanq-io/toolbelt/mcp"
)

func testRegistry(t *testing.T) *registry.Registry {
	t.Helper()
	reg := registry.New()

	echo := registry.ToolDef{
		Descriptor: mcp.Tool{
			Name:        "echo",
			Description: "Echo a message back",
			InputSchema: mcp.ToolInputSchema{
				Type: "object",
				Properties: map[string]mcp.SchemaProperty{
					"message": {Type: "string"},
				},
				Required: []string{"message"},
			},
		},
		Handler: func(ctx context.Context, args schema.Args) (*mcp.CallToolResult, error) {
			return envelope.Text("you said: " + args.String("message")), nil
		},
	}
	boom := registry.ToolDef{
		Descriptor: mcp.Tool{Name: "boom", InputSchema: mcp.ToolInputSchema{Type: "object"}},
		Handler: func(ctx context.Context, args schema.Args) (*mcp.CallToolResult, error) {
			panic("kaboom")
		},
	}
	grumpy := registry.ToolDef{
		Descriptor: mcp.Tool{Name: "grumpy", InputSchema: mcp.ToolInputSchema{Type: "object"}},
		Handler: func(ctx context.Context, args schema.Args) (*mcp.CallToolResult, error) {
			return envelope.Errorf("business says no"), nil
		},
	}

	status := registry.ResourceDef{
		Descriptor: mcp.Resource{URI: "status://test", Name: "status", MimeType: "application/json"},
		Handler: func(ctx context.Context) ([]mcp.ResourceContents, error) {
			return envelope.JSONResource("status://test", map[string]string{"status": "healthy"})
		},
	}

	review := registry.PromptDef{
		Descriptor: mcp.Prompt{
			Name: "review",
			Arguments: []mcp.PromptArgument{
				{Name: "code", Required: true},
				{Name: "language"},
			},
		},
		Handler: func(ctx context.Context, args map[string]string) (*mcp.GetPromptResult, error) {
			return envelope.PromptResult("review", envelope.UserMessage("review: "+args["code"])), nil
		},
	}

	for _, err := range []error{
		reg.RegisterTool(echo),
		reg.RegisterTool(boom),
		reg.RegisterTool(grumpy),
		reg.RegisterResource(status),
		reg.RegisterPrompt(review),
	} {
		if err != nil {
			t.Fatalf("register: %v", err)
		}
	}
	return reg
}

func mkreq(t *testing.T, method string, params any) *jsonrpc.Request {
	t.Helper()
	req := &jsonrpc.Request{
		JSONRPCVersion: jsonrpc.ProtocolVersion,
		Method:         method,
		ID:             jsonrpc.NewRequestID("t-1"),
	}
	if params != nil {
		b, err := json.Marshal(params)
		if err != nil {
			t.Fatalf("marshal params: %v", err)
		}
		req.Params = b
	}
	return req
}

func callToolResult(t *testing.T, resp *jsonrpc.Response) *mcp.CallToolResult {
	t.Helper()
	if resp == nil {
		t.Fatal("no response")
	}
	if resp.Error != nil {
		t.Fatalf("unexpected JSON-RPC error: %+v", resp.Error)
	}
	var res mcp.CallToolResult
	if err := json.Unmarshal(resp.Result, &res); err != nil {
		t.Fatalf("decode result: %v", err)
	}
	return &res
}

func TestHandle_Initialize(t *testing.T) {
	d := New(testRegistry(t),
		WithServerInfo(mcp.ImplementationInfo{Name: "test-server", Version: "9.9.9"}),
		WithInstructions("use wisely"))

	resp := d.Handle(context.Background(), mkreq(t, "initialize", mcp.InitializeRequest{
		ProtocolVersion: mcp.LatestProtocolVersion,
		ClientInfo:      mcp.ImplementationInfo{Name: "client", Version: "0.0.1"},
	}))

	if resp.Error != nil {
		t.Fatalf("initialize failed: %+v", resp.Error)
	}
	var res mcp.InitializeResult
	if err := json.Unmarshal(resp.Result, &res); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if res.ProtocolVersion != mcp.LatestProtocolVersion {
		t.Errorf("protocol version = %q", res.ProtocolVersion)
	}
	if res.ServerInfo.Name != "test-server" || res.ServerInfo.Version != "9.9.9" {
		t.Errorf("server info = %+v", res.ServerInfo)
	}
	if res.Capabilities.Tools == nil || res.Capabilities.Resources == nil || res.Capabilities.Prompts == nil {
		t.Errorf("capabilities should advertise all registered kinds: %+v", res.Capabilities)
	}
	if res.Instructions != "use wisely" {
		t.Errorf("instructions = %q", res.Instructions)
	}
}

func TestHandle_InitializedNotificationHasNoResponse(t *testing.T) {
	d := New(testRegistry(t))
	req := mkreq(t, "notifications/initialized", nil)
	req.ID = nil
	if resp := d.Handle(context.Background(), req); resp != nil {
		t.Errorf("notification got a response: %+v", resp)
	}
}

func TestHandle_Ping(t *testing.T) {
	d := New(testRegistry(t))
	resp := d.Handle(context.Background(), mkreq(t, "ping", nil))
	if resp.Error != nil {
		t.Fatalf("ping failed: %+v", resp.Error)
	}
	if string(resp.Result) != "{}" {
		t.Errorf("ping result = %s", resp.Result)
	}
}

func TestHandle_ToolsList(t *testing.T) {
	d := New(testRegistry(t))
	resp := d.Handle(context.Background(), mkreq(t, "tools/list", nil))
	if resp.Error != nil {
		t.Fatalf("tools/list failed: %+v", resp.Error)
	}
	var res mcp.ListToolsResult
	if err := json.Unmarshal(resp.Result, &res); err != nil {
		t.Fatalf("decode: %v", err)
	}
	var names []string
	for _, tool := range res.Tools {
		names = append(names, tool.Name)
	}
	if diff := cmp.Diff([]string{"echo", "boom", "grumpy"}, names); diff != "" {
		t.Errorf("tool names mismatch (-want +got):\n%s", diff)
	}
}

func TestHandle_ResourcesList(t *testing.T) {
	d := New(testRegistry(t))
	resp := d.Handle(context.Background(), mkreq(t, "resources/list", nil))
	if resp.Error != nil {
		t.Fatalf("resources/list failed: %+v", resp.Error)
	}
	var res mcp.ListResourcesResult
	if err := json.Unmarshal(resp.Result, &res); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(res.Resources) != 1 || res.Resources[0].URI != "status://test" {
		t.Errorf("resources = %+v", res.Resources)
	}
}

func TestHandle_PromptsList(t *testing.T) {
	d := New(testRegistry(t))
	resp := d.Handle(context.Background(), mkreq(t, "prompts/list", nil))
	if resp.Error != nil {
		t.Fatalf("prompts/list failed: %+v", resp.Error)
	}
	var res mcp.ListPromptsResult
	if err := json.Unmarshal(resp.Result, &res); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(res.Prompts) != 1 || res.Prompts[0].Name != "review" {
		t.Errorf("prompts = %+v", res.Prompts)
	}
}

func TestHandle_ToolsCall(t *testing.T) {
	d := New(testRegistry(t))
	resp := d.Handle(context.Background(), mkreq(t, "tools/call", mcp.CallToolRequest{
		Name:      "echo",
		Arguments: json.RawMessage(`{"message":"hi"}`),
	}))

	res := callToolResult(t, resp)
	if res.IsError {
		t.Fatalf("unexpected IsError: %+v", res.Content)
	}
	if res.Content[0].Text != "you said: hi" {
		t.Errorf("text = %q", res.Content[0].Text)
	}
}

func TestHandle_ToolsCall_UnknownToolIsEnvelopeNotCrash(t *testing.T) {
	d := New(testRegistry(t))
	resp := d.Handle(context.Background(), mkreq(t, "tools/call", mcp.CallToolRequest{Name: "nope"}))

	res := callToolResult(t, resp)
	if !res.IsError {
		t.Fatal("unknown tool must produce an IsError envelope")
	}
	if !strings.Contains(res.Content[0].Text, "unknown tool") {
		t.Errorf("text = %q", res.Content[0].Text)
	}
}

func TestHandle_ToolsCall_ValidationFailureNamesField(t *testing.T) {
	d := New(testRegistry(t))
	resp := d.Handle(context.Background(), mkreq(t, "tools/call", mcp.CallToolRequest{
		Name:      "echo",
		Arguments: json.RawMessage(`{}`),
	}))

	res := callToolResult(t, resp)
	if !res.IsError {
		t.Fatal("validation failure must produce an IsError envelope")
	}
	if !strings.Contains(res.Content[0].Text, `"message"`) {
		t.Errorf("text %q does not name the offending field", res.Content[0].Text)
	}
}

func TestHandle_ToolsCall_PanicIsContained(t *testing.T) {
	d := New(testRegistry(t))
	resp := d.Handle(context.Background(), mkreq(t, "tools/call", mcp.CallToolRequest{Name: "boom"}))

	res := callToolResult(t, resp)
	if !res.IsError {
		t.Fatal("handler panic must surface as an IsError envelope")
	}
	if !strings.Contains(res.Content[0].Text, "kaboom") {
		t.Errorf("text = %q", res.Content[0].Text)
	}

	// The dispatcher still serves subsequent invocations.
	resp = d.Handle(context.Background(), mkreq(t, "tools/call", mcp.CallToolRequest{
		Name:      "echo",
		Arguments: json.RawMessage(`{"message":"still here"}`),
	}))
	if res := callToolResult(t, resp); res.IsError {
		t.Error("dispatcher unusable after a handler panic")
	}
}

func TestHandle_ToolsCall_BusinessErrorPassesThrough(t *testing.T) {
	d := New(testRegistry(t))
	resp := d.Handle(context.Background(), mkreq(t, "tools/call", mcp.CallToolRequest{Name: "grumpy"}))

	res := callToolResult(t, resp)
	if !res.IsError || res.Content[0].Text != "business says no" {
		t.Errorf("business error altered by dispatch: %+v", res)
	}
}

func TestHandle_ResourcesRead(t *testing.T) {
	d := New(testRegistry(t))
	resp := d.Handle(context.Background(), mkreq(t, "resources/read", mcp.ReadResourceRequest{URI: "status://test"}))
	if resp.Error != nil {
		t.Fatalf("resources/read failed: %+v", resp.Error)
	}
	var res mcp.ReadResourceResult
	if err := json.Unmarshal(resp.Result, &res); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(res.Contents) != 1 || res.Contents[0].URI != "status://test" {
		t.Errorf("contents = %+v", res.Contents)
	}
}

func TestHandle_ResourcesRead_UnknownURIIsJSONRPCError(t *testing.T) {
	d := New(testRegistry(t))
	resp := d.Handle(context.Background(), mkreq(t, "resources/read", mcp.ReadResourceRequest{URI: "status://missing"}))
	if resp.Error == nil {
		t.Fatal("unknown resource must produce a JSON-RPC error")
	}
	if resp.Error.Code != jsonrpc.ErrorCodeInvalidParams {
		t.Errorf("code = %d", resp.Error.Code)
	}
	if !strings.Contains(resp.Error.Message, "status://missing") {
		t.Errorf("message %q does not name the URI", resp.Error.Message)
	}
}

func TestHandle_PromptsGet(t *testing.T) {
	d := New(testRegistry(t))
	resp := d.Handle(context.Background(), mkreq(t, "prompts/get", mcp.GetPromptRequest{
		Name:      "review",
		Arguments: map[string]json.RawMessage{"code": json.RawMessage(`"x := 1"`)},
	}))
	if resp.Error != nil {
		t.Fatalf("prompts/get failed: %+v", resp.Error)
	}
	var res mcp.GetPromptResult
	if err := json.Unmarshal(resp.Result, &res); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(res.Messages) != 1 || res.Messages[0].Content.Text != "review: x := 1" {
		t.Errorf("messages = %+v", res.Messages)
	}
}

func TestHandle_PromptsGet_MissingRequiredArgument(t *testing.T) {
	d := New(testRegistry(t))
	resp := d.Handle(context.Background(), mkreq(t, "prompts/get", mcp.GetPromptRequest{Name: "review"}))
	if resp.Error == nil {
		t.Fatal("missing required prompt argument must produce a JSON-RPC error")
	}
	if resp.Error.Code != jsonrpc.ErrorCodeInvalidParams {
		t.Errorf("code = %d", resp.Error.Code)
	}
	if !strings.Contains(resp.Error.Message, `"code"`) {
		t.Errorf("message %q does not name the argument", resp.Error.Message)
	}
}

func TestHandle_UnknownMethod(t *testing.T) {
	d := New(testRegistry(t))
	resp := d.Handle(context.Background(), mkreq(t, "no/such/method", nil))
	if resp.Error == nil || resp.Error.Code != jsonrpc.ErrorCodeMethodNotFound {
		t.Fatalf("expected method-not-found, got %+v", resp)
	}
}
