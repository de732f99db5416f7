package inference

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

var pngBytes = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n', 0, 0, 0, 13, 'I', 'H', 'D', 'R'}

func TestGenerate_MissingTokenFailsBeforeAnyNetworkCall(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "")
	_, _, err := c.Generate(context.Background(), "a dog")
	if !errors.Is(err, ErrMissingToken) {
		t.Fatalf("expected ErrMissingToken, got %v", err)
	}
	if calls != 0 {
		t.Errorf("provider was called %d times despite missing credential", calls)
	}
}

func TestGenerate_ImageResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer tok" {
			t.Errorf("authorization header = %q", got)
		}
		var body map[string]string
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body["inputs"] != "a dog" {
			t.Errorf("request body = %v (err=%v)", body, err)
		}
		w.Header().Set("Content-Type", "image/png")
		w.Write(pngBytes)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "tok")
	data, mime, err := c.Generate(context.Background(), "a dog")
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if mime != "image/png" {
		t.Errorf("mime = %q, want image/png", mime)
	}
	if diff := cmp.Diff(pngBytes, data); diff != "" {
		t.Errorf("payload mismatch (-want +got):\n%s", diff)
	}
}

func TestGenerate_SniffsMimeWhenHeaderIsGeneric(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/octet-stream")
		w.Write(pngBytes)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "tok")
	_, mime, err := c.Generate(context.Background(), "a dog")
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if mime != "image/png" {
		t.Errorf("sniffed mime = %q, want image/png", mime)
	}
}

func TestGenerate_Base64StringResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(base64.StdEncoding.EncodeToString(pngBytes))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "tok")
	data, mime, err := c.Generate(context.Background(), "a dog")
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if mime != "image/png" {
		t.Errorf("mime = %q, want image/png", mime)
	}
	if diff := cmp.Diff(pngBytes, data); diff != "" {
		t.Errorf("payload mismatch (-want +got):\n%s", diff)
	}
}

func TestGenerate_URLStringIsRejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode("https://cdn.example.com/result.png")
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "tok")
	_, _, err := c.Generate(context.Background(), "a dog")
	if err == nil || !strings.Contains(err.Error(), "URL") {
		t.Fatalf("URL result should be rejected explicitly, got %v", err)
	}
}

func TestGenerate_ProviderErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"model overloaded"}`, http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "tok")
	_, _, err := c.Generate(context.Background(), "a dog")
	if err == nil || !strings.Contains(err.Error(), "503") {
		t.Fatalf("expected a status error, got %v", err)
	}
}

func TestGenerate_UnrecognizedShape(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"neither":"image nor string"}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "tok")
	_, _, err := c.Generate(context.Background(), "a dog")
	if err == nil || !strings.Contains(err.Error(), "unrecognized") {
		t.Fatalf("expected an unrecognized-shape error, got %v", err)
	}
}
