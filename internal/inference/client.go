// Package inference calls a remote image-generation provider. It is the one
// collaborator in this process that leaves the machine: the rest of the
// server only depends on its contract (prompt in; image bytes and mime type
// out; descriptive error otherwise).
package inference

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
)

// ErrMissingToken indicates the provider credential is not configured. It is
// checked before any network traffic so an unconfigured deployment fails fast
// and cheaply.
var ErrMissingToken = errors.New("inference credential is not configured (set HF_API_TOKEN)")

// maxImageBytes bounds a provider response body. Generated images are a few
// megabytes at most; anything larger is a misbehaving provider.
const maxImageBytes = 32 << 20

// Client is a single-attempt image generation client for a Hugging Face
// style inference endpoint. No retries: callers that need resilience compose
// them outside the envelope path.
type Client struct {
	endpoint string
	token    string
	http     *http.Client
	log      *slog.Logger
}

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient overrides the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithLogger overrides the logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.log = l
		}
	}
}

// WithTimeout bounds a single provider call.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.http.Timeout = d
		}
	}
}

// NewClient constructs a Client for the given endpoint and credential. An
// empty token is permitted here; Generate reports it per call.
func NewClient(endpoint, token string, opts ...Option) *Client {
	c := &Client{
		endpoint: endpoint,
		token:    token,
		http:     &http.Client{Timeout: 60 * time.Second},
		log:      slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Generate turns a text prompt into image bytes and their mime type. Every
// failure mode comes back as an error: missing credential, transport or
// provider failure, and response shapes this client does not recognize.
func (c *Client) Generate(ctx context.Context, prompt string) ([]byte, string, error) {
	if c.token == "" {
		return nil, "", ErrMissingToken
	}

	body, err := json.Marshal(map[string]string{"inputs": prompt})
	if err != nil {
		return nil, "", fmt.Errorf("encode request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, "", fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Content-Type", "application/json")

	started := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("call inference provider: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxImageBytes))
	if err != nil {
		return nil, "", fmt.Errorf("read provider response: %w", err)
	}
	c.log.DebugContext(ctx, "inference call completed",
		slog.Int("status", resp.StatusCode),
		slog.Int("bytes", len(data)),
		slog.Duration("elapsed", time.Since(started)))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, "", fmt.Errorf("inference provider returned %s: %s", resp.Status, truncate(string(data), 200))
	}

	return decodePayload(resp.Header.Get("Content-Type"), data)
}

// decodePayload classifies a successful provider response. The provider may
// answer with raw image bytes, with a JSON string carrying base64 image data,
// or with something this client does not recognize. Unrecognized shapes are
// an error, never a silent mis-encoding; in particular a URL result is
// rejected rather than re-encoded as if it were image bytes.
func decodePayload(contentType string, data []byte) ([]byte, string, error) {
	if len(data) == 0 {
		return nil, "", errors.New("inference provider returned an empty body")
	}

	if mt := imageMimeType(contentType, data); mt != "" {
		return data, mt, nil
	}

	if strings.HasPrefix(strings.TrimSpace(contentType), "application/json") || looksLikeJSON(data) {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return nil, "", fmt.Errorf("unrecognized provider response shape: %s", truncate(string(data), 200))
		}
		if strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://") {
			return nil, "", fmt.Errorf("inference provider returned a URL instead of image data: %s", s)
		}
		raw, err := base64.StdEncoding.DecodeString(s)
		if err != nil {
			return nil, "", fmt.Errorf("provider string result is not base64 image data: %w", err)
		}
		if mt := imageMimeType("", raw); mt != "" {
			return raw, mt, nil
		}
		return nil, "", errors.New("provider string result decoded to non-image data")
	}

	return nil, "", fmt.Errorf("unrecognized provider content type %q", contentType)
}

// imageMimeType resolves the image media type of a payload, trusting an
// explicit image/* header first and falling back to content sniffing.
func imageMimeType(contentType string, data []byte) string {
	if ct := strings.TrimSpace(contentType); strings.HasPrefix(ct, "image/") {
		if i := strings.IndexByte(ct, ';'); i >= 0 {
			ct = strings.TrimSpace(ct[:i])
		}
		return ct
	}
	mt := mimetype.Detect(data)
	if strings.HasPrefix(mt.String(), "image/") {
		return mt.String()
	}
	return ""
}

func looksLikeJSON(data []byte) bool {
	trimmed := bytes.TrimLeft(data, " \t\r\n")
	return len(trimmed) > 0 && (trimmed[0] == '"' || trimmed[0] == '{' || trimmed[0] == '[')
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
