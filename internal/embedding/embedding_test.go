// ABOUTME: Tests for embedding providers against httptest servers
// ABOUTME: Verifies request shape, auth headers and positional response decoding
package embedding

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/harper/sqlrag/internal/config"
)

func newHFServer(t *testing.T, handler http.HandlerFunc) (*HuggingFace, *httptest.Server) {
	t.Helper()
	ts := httptest.NewServer(handler)
	t.Cleanup(ts.Close)

	hf, err := NewHuggingFace(HuggingFaceConfig{
		BaseURL:    ts.URL,
		Token:      "hf-secret",
		Model:      "sentence-transformers/all-MiniLM-L6-v2",
		HTTPClient: ts.Client(),
		RetryDelay: time.Millisecond,
	}, nil)
	if err != nil {
		t.Fatalf("NewHuggingFace() error = %v", err)
	}
	return hf, ts
}

func TestHuggingFace_Embed(t *testing.T) {
	hf, _ := newHFServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s", r.Method)
		}
		if r.URL.Path != "/pipeline/feature-extraction/sentence-transformers/all-MiniLM-L6-v2" {
			t.Errorf("path = %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer hf-secret" {
			t.Errorf("Authorization = %q", got)
		}

		var req struct {
			Inputs  []string `json:"inputs"`
			Options struct {
				WaitForModel bool `json:"wait_for_model"`
			} `json:"options"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if len(req.Inputs) != 1 || req.Inputs[0] != "table: orders" {
			t.Errorf("inputs = %v", req.Inputs)
		}
		if !req.Options.WaitForModel {
			t.Error("wait_for_model should be true")
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode([][]float32{{0.1, 0.2, 0.3}, {9, 9, 9}})
	})

	vec, err := hf.Embed(context.Background(), "table: orders")
	if err != nil {
		t.Fatalf("Embed() error = %v", err)
	}

	expected := []float32{0.1, 0.2, 0.3}
	if len(vec) != len(expected) {
		t.Fatalf("expected %d dimensions, got %d", len(expected), len(vec))
	}
	for i, v := range vec {
		if v != expected[i] {
			t.Fatalf("expected %f at index %d, got %f", expected[i], i, v)
		}
	}
}

func TestHuggingFace_FlatResponse(t *testing.T) {
	hf, _ := newHFServer(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[0.5, 0.25]`))
	})

	vec, err := hf.Embed(context.Background(), "x")
	if err != nil {
		t.Fatalf("Embed() error = %v", err)
	}
	if len(vec) != 2 || vec[0] != 0.5 {
		t.Errorf("vec = %v", vec)
	}
}

func TestHuggingFace_Errors(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantMsg string
	}{
		{"unauthorized", http.StatusUnauthorized, `{"error":"Invalid token"}`, "status=401"},
		{"loading", http.StatusServiceUnavailable, `{"error":"Model is loading"}`, "status=503"},
		{"empty batch", http.StatusOK, `[]`, "empty"},
		{"not json", http.StatusOK, `<html>`, "decode"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hf, _ := newHFServer(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			})

			_, err := hf.Embed(context.Background(), "x")
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if !strings.Contains(err.Error(), tt.wantMsg) {
				t.Errorf("error = %q, want it to contain %q", err.Error(), tt.wantMsg)
			}
		})
	}
}

func TestHuggingFace_SingleAttemptByDefault(t *testing.T) {
	var calls int32
	hf, _ := newHFServer(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusBadGateway)
	})

	if _, err := hf.Embed(context.Background(), "x"); err == nil {
		t.Fatal("expected error")
	}
	if got := atomic.LoadInt32(&calls); got != 1 {
		t.Errorf("calls = %d, want 1", got)
	}
}

func TestHuggingFace_RetriesWhenConfigured(t *testing.T) {
	var calls int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(`[[1, 0]]`))
	}))
	defer ts.Close()

	hf, err := NewHuggingFace(HuggingFaceConfig{
		BaseURL:    ts.URL,
		Token:      "t",
		Model:      "m",
		HTTPClient: ts.Client(),
		MaxRetries: 2,
		RetryDelay: time.Millisecond,
	}, nil)
	if err != nil {
		t.Fatalf("NewHuggingFace() error = %v", err)
	}

	vec, err := hf.Embed(context.Background(), "x")
	if err != nil {
		t.Fatalf("Embed() error = %v", err)
	}
	if len(vec) != 2 {
		t.Errorf("vec = %v", vec)
	}
	if got := atomic.LoadInt32(&calls); got != 2 {
		t.Errorf("calls = %d, want 2", got)
	}
}

func TestNewHuggingFace_Validation(t *testing.T) {
	tests := []struct {
		name string
		cfg  HuggingFaceConfig
	}{
		{"missing token", HuggingFaceConfig{BaseURL: "http://x", Model: "m"}},
		{"missing model", HuggingFaceConfig{BaseURL: "http://x", Token: "t"}},
		{"missing url", HuggingFaceConfig{Token: "t", Model: "m"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewHuggingFace(tt.cfg, nil); err == nil {
				t.Error("expected error, got nil")
			}
		})
	}
}

func TestOpenAI_Embed(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/embeddings" {
			t.Errorf("path = %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer sk-test" {
			t.Errorf("Authorization = %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"object":"list","data":[{"object":"embedding","index":0,"embedding":[0.25,0.5]}],"model":"text-embedding-3-small"}`))
	}))
	defer ts.Close()

	provider, err := NewOpenAI(OpenAIConfig{APIKey: "sk-test", BaseURL: ts.URL + "/v1"}, nil)
	if err != nil {
		t.Fatalf("NewOpenAI() error = %v", err)
	}

	vec, err := provider.Embed(context.Background(), "hello")
	if err != nil {
		t.Fatalf("Embed() error = %v", err)
	}
	if len(vec) != 2 || vec[1] != 0.5 {
		t.Errorf("vec = %v", vec)
	}
}

func TestNewFromConfig(t *testing.T) {
	cfg := &config.Config{
		EmbeddingProvider: "huggingface",
		HFBaseURL:         "http://localhost",
		EmbeddingModel:    "m",
	}
	if _, err := NewFromConfig(cfg, nil); err != config.ErrMissingHFToken {
		t.Errorf("NewFromConfig() without token = %v, want ErrMissingHFToken", err)
	}

	cfg.HFToken = "t"
	e, err := NewFromConfig(cfg, nil)
	if err != nil {
		t.Fatalf("NewFromConfig() error = %v", err)
	}
	if _, ok := e.(*HuggingFace); !ok {
		t.Errorf("embedder = %T, want *HuggingFace", e)
	}

	cfg.EmbeddingProvider = "openai"
	cfg.OpenAIKey = "sk"
	e, err = NewFromConfig(cfg, nil)
	if err != nil {
		t.Fatalf("NewFromConfig(openai) error = %v", err)
	}
	if _, ok := e.(*OpenAI); !ok {
		t.Errorf("embedder = %T, want *OpenAI", e)
	}
}

func TestFunc(t *testing.T) {
	var e Embedder = Func(func(ctx context.Context, text string) ([]float32, error) {
		return []float32{float32(len(text))}, nil
	})
	vec, err := e.Embed(context.Background(), "abc")
	if err != nil || vec[0] != 3 {
		t.Errorf("Func.Embed() = %v, %v", vec, err)
	}
}
