// Package logctx enriches slog records with request-scoped attributes carried
// in the context: the JSON-RPC message being served, the tool being invoked,
// and the per-invocation correlation id.
package logctx

import (
	"context"
	"log/slog"
)

// Handler wraps another slog.Handler and adds context-carried groups to every
// record.
type Handler struct {
	slog.Handler
}

func (h Handler) Handle(ctx context.Context, r slog.Record) error {
	if msg, ok := ctx.Value(rpcMsgKey{}).(*RPCMessage); ok {
		r.AddAttrs(slog.Group("rpc",
			slog.String("method", msg.Method),
			slog.String("id", msg.ID),
		))
	}
	if inv, ok := ctx.Value(invocationKey{}).(*Invocation); ok {
		r.AddAttrs(slog.Group("invocation",
			slog.String("id", inv.ID),
			slog.String("kind", inv.Kind),
			slog.String("name", inv.Name),
		))
	}
	return h.Handler.Handle(ctx, r)
}

type rpcMsgKey struct{}

// RPCMessage identifies the JSON-RPC message currently being served.
type RPCMessage struct {
	Method string
	ID     string
}

// WithRPCMessage attaches the in-flight JSON-RPC message to the context.
func WithRPCMessage(ctx context.Context, msg *RPCMessage) context.Context {
	return context.WithValue(ctx, rpcMsgKey{}, msg)
}

type invocationKey struct{}

// Invocation identifies a single capability invocation.
type Invocation struct {
	ID   string // correlation id, unique per invocation
	Kind string // capability kind: tool, resource, prompt
	Name string // capability identifier
}

// WithInvocation attaches the in-flight invocation to the context.
func WithInvocation(ctx context.Context, inv *Invocation) context.Context {
	return context.WithValue(ctx, invocationKey{}, inv)
}
