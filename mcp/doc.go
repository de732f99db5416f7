// Package mcp holds the wire-level vocabulary shared by the server and its
// client: capability descriptors (tools, resources, prompts), the content
// block union, and the request/result shapes exchanged over JSON-RPC.
//
// The types here are deliberately dumb. They carry data between the transport
// and the dispatch layer and know nothing about validation or handlers; that
// behavior lives under internal/.
package mcp
