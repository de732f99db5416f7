// Package stdio is the transport adapter: a single-connection, line-oriented
// JSON-RPC transport over a byte stream, by default os.Stdin and os.Stdout.
//
// The handler owns framing and ordering only; every protocol decision is
// delegated to the dispatcher. Each request is served on its own goroutine so
// an invocation stalled on network I/O never starves the read loop, while a
// write lock keeps responses from interleaving on the stream.
package stdio

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"

	"github.com/hanq-io/toolbelt/internal/dispatch"
	"github.com/hanq-io/toolbelt/internal/jsonrpc"
)

// maxLineBytes bounds a single framed message.
const maxLineBytes = 1 << 20

// Handler reads newline-delimited JSON-RPC requests and writes back whatever
// response the dispatcher returns.
type Handler struct {
	d   *dispatch.Dispatcher
	r   io.Reader
	w   io.Writer
	log *slog.Logger

	writeMu sync.Mutex
}

// Option customizes a Handler.
type Option func(*Handler)

// WithIO sets the reader and writer for the handler.
func WithIO(r io.Reader, w io.Writer) Option {
	return func(h *Handler) {
		if r != nil {
			h.r = r
		}
		if w != nil {
			h.w = w
		}
	}
}

// WithLogger overrides the logger.
func WithLogger(l *slog.Logger) Option {
	return func(h *Handler) {
		if l != nil {
			h.log = l
		}
	}
}

// NewHandler constructs a stdio Handler over the given dispatcher with
// defaults and applies options.
func NewHandler(d *dispatch.Dispatcher, opts ...Option) *Handler {
	h := &Handler{
		d:   d,
		r:   os.Stdin,
		w:   os.Stdout,
		log: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Serve runs the read loop until EOF on the reader or context cancellation.
// It returns after every in-flight request has been answered.
func (h *Handler) Serve(ctx context.Context) error {
	lines := make(chan []byte)
	readErr := make(chan error, 1)

	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(h.r)
		scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)
		for scanner.Scan() {
			line := make([]byte, len(scanner.Bytes()))
			copy(line, scanner.Bytes())
			select {
			case lines <- line:
			case <-ctx.Done():
				return
			}
		}
		readErr <- scanner.Err()
	}()

	var wg sync.WaitGroup
	defer wg.Wait()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case line, ok := <-lines:
			if !ok {
				select {
				case err := <-readErr:
					if err != nil {
						return fmt.Errorf("read transport: %w", err)
					}
				default:
				}
				return nil
			}
			if len(line) == 0 {
				continue
			}
			h.serveLine(ctx, &wg, line)
		}
	}
}

// serveLine decodes one framed message and hands it to the dispatcher on its
// own goroutine. Frames that do not decode are answered inline; they carry no
// work worth suspending.
func (h *Handler) serveLine(ctx context.Context, wg *sync.WaitGroup, line []byte) {
	var req jsonrpc.Request
	if err := json.Unmarshal(line, &req); err != nil {
		h.log.WarnContext(ctx, "dropping unparseable frame", slog.String("error", err.Error()))
		h.write(ctx, jsonrpc.NewErrorResponse(nil, jsonrpc.ErrorCodeParseError,
			fmt.Sprintf("parse error: %v", err), nil))
		return
	}
	if req.JSONRPCVersion != jsonrpc.ProtocolVersion || req.Method == "" {
		if req.IsNotification() {
			return
		}
		h.write(ctx, jsonrpc.NewErrorResponse(req.ID, jsonrpc.ErrorCodeInvalidRequest,
			"invalid request", nil))
		return
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		if resp := h.d.Handle(ctx, &req); resp != nil {
			h.write(ctx, resp)
		}
	}()
}

func (h *Handler) write(ctx context.Context, resp *jsonrpc.Response) {
	b, err := json.Marshal(resp)
	if err != nil {
		h.log.ErrorContext(ctx, "failed to encode response", slog.String("error", err.Error()))
		return
	}
	h.writeMu.Lock()
	defer h.writeMu.Unlock()
	if _, err := h.w.Write(append(b, '\n')); err != nil {
		h.log.ErrorContext(ctx, "failed to write response", slog.String("error", err.Error()))
	}
}
