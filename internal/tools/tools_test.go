package tools

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/hanq-io/toolbelt/internal/registry"
	"github.com/hanq-io/toolbelt/internal/schema"
	"github.com/hanq-io/toolbelt/mcp"
)

// invoke validates a payload against a tool's declared shape and runs its
// handler, the same path dispatch takes.
func invoke(t *testing.T, def registry.ToolDef, payload map[string]any) *mcp.CallToolResult {
	t.Helper()
	raw, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal payload: %v", err)
	}
	args, err := schema.Validate(def.Descriptor.InputSchema, raw)
	if err != nil {
		t.Fatalf("validate payload: %v", err)
	}
	res, err := def.Handler(context.Background(), args)
	if err != nil {
		t.Fatalf("handler error: %v", err)
	}
	return res
}

func textOf(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	if len(res.Content) != 1 {
		t.Fatalf("content parts = %d, want 1", len(res.Content))
	}
	if res.Content[0].Type != mcp.ContentTypeText {
		t.Fatalf("content type = %q, want text", res.Content[0].Type)
	}
	return res.Content[0].Text
}
