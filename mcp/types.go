package mcp

// Role indicates the author of a message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Content block type discriminators. The content union is closed: a block is
// either text or base64-encoded image data. Anything else on the wire is a
// protocol violation.
const (
	ContentTypeText  = "text"
	ContentTypeImage = "image"
)

// ContentBlock is one part of a multi-part result. Type selects which of the
// remaining fields are meaningful.
type ContentBlock struct {
	Type string `json:"type"`
	// Text carries the payload for text blocks.
	Text string `json:"text,omitzero"`
	// Data and MimeType carry base64 payload and media type for image blocks.
	Data     string `json:"data,omitzero"`
	MimeType string `json:"mimeType,omitzero"`

	Annotations *Annotations `json:"annotations,omitempty"`
}

// Annotations are optional rendering hints attached to results or blocks.
type Annotations struct {
	Audience []Role  `json:"audience,omitempty"`
	Priority float64 `json:"priority,omitzero"`
}

// Tool describes a callable tool and the shape of its input.
type Tool struct {
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	InputSchema ToolInputSchema `json:"inputSchema"`
}

// ToolInputSchema is a declarative, JSON-schema-like description of tool
// input. It doubles as client-facing documentation and as the rule set the
// argument validator enforces.
type ToolInputSchema struct {
	Type                 string                    `json:"type"`
	Properties           map[string]SchemaProperty `json:"properties,omitempty"`
	Required             []string                  `json:"required,omitempty"`
	AdditionalProperties bool                      `json:"additionalProperties,omitzero"`
}

// SchemaProperty is a single field description within a ToolInputSchema.
type SchemaProperty struct {
	Type        string                    `json:"type,omitempty"`
	Description string                    `json:"description,omitzero"`
	Enum        []any                     `json:"enum,omitempty"`
	Items       *SchemaProperty           `json:"items,omitempty"`
	Properties  map[string]SchemaProperty `json:"properties,omitempty"`
}

// Resource represents an addressable resource identified by URI.
type Resource struct {
	URI         string `json:"uri"`
	Name        string `json:"name"`
	Description string `json:"description,omitzero"`
	MimeType    string `json:"mimeType,omitzero"`
}

// ResourceContents is the value of a resource read. Exactly one of Text or
// Blob is populated.
type ResourceContents struct {
	URI      string `json:"uri"`
	MimeType string `json:"mimeType,omitzero"`
	Text     string `json:"text,omitzero"`
	Blob     string `json:"blob,omitzero"`
}

// Prompt describes a named prompt template the server can materialize.
type Prompt struct {
	Name        string           `json:"name"`
	Description string           `json:"description,omitzero"`
	Arguments   []PromptArgument `json:"arguments,omitempty"`
}

// PromptArgument describes a single prompt argument.
type PromptArgument struct {
	Name        string `json:"name"`
	Description string `json:"description,omitzero"`
	Required    bool   `json:"required,omitzero"`
}

// PromptMessage is one message of a materialized prompt.
type PromptMessage struct {
	Role    Role         `json:"role"`
	Content ContentBlock `json:"content"`
}

// ImplementationInfo identifies an implementation by name and version.
type ImplementationInfo struct {
	Name    string `json:"name"`
	Version string `json:"version"`
	Title   string `json:"title,omitzero"`
}

// LatestProtocolVersion is the protocol revision this server speaks.
const LatestProtocolVersion = "2025-06-18"
