// Package envelope builds the uniform wire response shapes. It is the only
// translator between what a handler produces and what the client renders:
// tool results as {content, isError?, annotations?}, resource reads as
// {contents}, prompts as {description, messages}.
//
// Binary payloads arrive here already obtained; the builders base64-encode
// and tag them but never fetch or decode image bytes themselves.
package envelope

import (
	"encoding/base64"
	"encoding/json"
	"fmt"

	"github.com/hanq-io/toolbelt/mcp"
)

// Option applies an optional rendering hint to a tool result.
type Option func(*mcp.CallToolResult)

// WithAudience annotates the result with its intended audience.
func WithAudience(roles ...mcp.Role) Option {
	return func(res *mcp.CallToolResult) {
		if res.Annotations == nil {
			res.Annotations = &mcp.Annotations{}
		}
		res.Annotations.Audience = roles
	}
}

// WithPriority annotates the result with a rendering priority.
func WithPriority(p float64) Option {
	return func(res *mcp.CallToolResult) {
		if res.Annotations == nil {
			res.Annotations = &mcp.Annotations{}
		}
		res.Annotations.Priority = p
	}
}

// Text builds a successful tool result with a single text part.
func Text(s string, opts ...Option) *mcp.CallToolResult {
	res := &mcp.CallToolResult{
		Content: []mcp.ContentBlock{{Type: mcp.ContentTypeText, Text: s}},
	}
	for _, opt := range opts {
		opt(res)
	}
	return res
}

// Textf builds a successful tool result from a format string.
func Textf(format string, a ...any) *mcp.CallToolResult {
	return Text(fmt.Sprintf(format, a...))
}

// Errorf builds a business-failure tool result: a single human-readable text
// part with IsError set. The process keeps serving; only this invocation is
// marked failed.
func Errorf(format string, a ...any) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.ContentBlock{{Type: mcp.ContentTypeText, Text: fmt.Sprintf(format, a...)}},
		IsError: true,
	}
}

// Image builds a successful tool result carrying binary image data as a
// base64-encoded image part.
func Image(data []byte, mimeType string, opts ...Option) *mcp.CallToolResult {
	res := &mcp.CallToolResult{
		Content: []mcp.ContentBlock{{
			Type:     mcp.ContentTypeImage,
			Data:     base64.StdEncoding.EncodeToString(data),
			MimeType: mimeType,
		}},
	}
	for _, opt := range opts {
		opt(res)
	}
	return res
}

// JSONResource serializes v as indented JSON into a single textual resource
// content item. A value that fails to marshal is a programming error in the
// resource handler, surfaced as an error rather than accommodated here.
func JSONResource(uri string, v any) ([]mcp.ResourceContents, error) {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal resource %s: %w", uri, err)
	}
	return []mcp.ResourceContents{{
		URI:      uri,
		MimeType: "application/json",
		Text:     string(b),
	}}, nil
}

// UserMessage builds a single-text prompt message from the user role.
func UserMessage(text string) mcp.PromptMessage {
	return mcp.PromptMessage{
		Role:    mcp.RoleUser,
		Content: mcp.ContentBlock{Type: mcp.ContentTypeText, Text: text},
	}
}

// PromptResult assembles a materialized prompt.
func PromptResult(description string, msgs ...mcp.PromptMessage) *mcp.GetPromptResult {
	return &mcp.GetPromptResult{Description: description, Messages: msgs}
}
