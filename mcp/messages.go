package mcp

import "encoding/json"

// Method is an MCP method identifier carried in JSON-RPC messages.
type Method string

const (
	InitializeMethod              Method = "initialize"
	InitializedNotificationMethod Method = "notifications/initialized"

	ToolsListMethod Method = "tools/list"
	ToolsCallMethod Method = "tools/call"

	ResourcesListMethod Method = "resources/list"
	ResourcesReadMethod Method = "resources/read"

	PromptsListMethod Method = "prompts/list"
	PromptsGetMethod  Method = "prompts/get"

	PingMethod Method = "ping"
)

// PaginatedRequest carries a cursor for paginated list requests. An empty
// cursor requests the first page.
type PaginatedRequest struct {
	Cursor string `json:"cursor,omitzero"`
}

// PaginatedResult carries a cursor for continuing pagination, when set.
type PaginatedResult struct {
	NextCursor string `json:"nextCursor,omitzero"`
}

// ClientCapabilities advertises client features during initialize. The server
// does not act on any of them; the structure exists so the handshake decodes
// cleanly.
type ClientCapabilities struct {
	Roots *struct {
		ListChanged bool `json:"listChanged"`
	} `json:"roots,omitempty"`
	Sampling *struct{} `json:"sampling,omitempty"`
}

// ServerCapabilities advertises which capability kinds this server exposes.
// A nil section means the kind is absent entirely.
type ServerCapabilities struct {
	Tools *struct {
		ListChanged bool `json:"listChanged"`
	} `json:"tools,omitempty"`
	Resources *struct {
		ListChanged bool `json:"listChanged"`
		Subscribe   bool `json:"subscribe"`
	} `json:"resources,omitempty"`
	Prompts *struct {
		ListChanged bool `json:"listChanged"`
	} `json:"prompts,omitempty"`
}

// InitializeRequest starts the protocol handshake.
type InitializeRequest struct {
	ProtocolVersion string             `json:"protocolVersion"`
	Capabilities    ClientCapabilities `json:"capabilities"`
	ClientInfo      ImplementationInfo `json:"clientInfo"`
}

// InitializeResult returns the negotiated version and server identity.
type InitializeResult struct {
	ProtocolVersion string             `json:"protocolVersion"`
	Capabilities    ServerCapabilities `json:"capabilities"`
	ServerInfo      ImplementationInfo `json:"serverInfo"`
	Instructions    string             `json:"instructions,omitzero"`
}

// ListToolsRequest requests the set of available tools.
type ListToolsRequest struct {
	PaginatedRequest
}

// ListToolsResult returns one page of tools.
type ListToolsResult struct {
	Tools []Tool `json:"tools"`
	PaginatedResult
}

// CallToolRequest is the server-received representation of a tool call. The
// arguments are untrusted until validated against the tool's input schema.
type CallToolRequest struct {
	Name      string          `json:"name"`
	Arguments json.RawMessage `json:"arguments,omitempty"`
}

// CallToolResult is the envelope for a tool invocation outcome. IsError marks
// a business failure; the content still renders normally on the client.
type CallToolResult struct {
	Content     []ContentBlock `json:"content"`
	IsError     bool           `json:"isError,omitzero"`
	Annotations *Annotations   `json:"annotations,omitempty"`
}

// ListResourcesRequest requests the set of available resources.
type ListResourcesRequest struct {
	PaginatedRequest
}

// ListResourcesResult returns one page of resources.
type ListResourcesResult struct {
	Resources []Resource `json:"resources"`
	PaginatedResult
}

// ReadResourceRequest requests the contents of a resource by URI.
type ReadResourceRequest struct {
	URI string `json:"uri"`
}

// ReadResourceResult returns resource contents.
type ReadResourceResult struct {
	Contents []ResourceContents `json:"contents"`
}

// ListPromptsRequest requests the set of available prompts.
type ListPromptsRequest struct {
	PaginatedRequest
}

// ListPromptsResult returns one page of prompts.
type ListPromptsResult struct {
	Prompts []Prompt `json:"prompts"`
	PaginatedResult
}

// GetPromptRequest asks the server to materialize a prompt by name.
type GetPromptRequest struct {
	Name      string                     `json:"name"`
	Arguments map[string]json.RawMessage `json:"arguments,omitempty"`
}

// GetPromptResult returns the materialized prompt messages.
type GetPromptResult struct {
	Description string          `json:"description,omitzero"`
	Messages    []PromptMessage `json:"messages"`
}

// EmptyResult is returned for operations that carry no data, such as ping.
type EmptyResult struct{}
