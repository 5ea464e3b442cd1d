package embedding

import (
	"context"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestCosineSimilarity(t *testing.T) {
	tests := []struct {
		name     string
		a, b     Vector
		expected float64
		delta    float64
	}{
		{"identical", Vector{1, 0, 0}, Vector{1, 0, 0}, 1.0, 0.001},
		{"orthogonal", Vector{1, 0, 0}, Vector{0, 1, 0}, 0.0, 0.001},
		{"opposite", Vector{1, 0, 0}, Vector{-1, 0, 0}, -1.0, 0.001},
		{"similar", Vector{1, 1, 0}, Vector{1, 0, 0}, 0.707, 0.01},
		{"empty", Vector{}, Vector{}, 0.0, 0.001},
		{"different lengths", Vector{1, 0}, Vector{1, 0, 0}, 0.0, 0.001},
		{"zero vector", Vector{0, 0, 0}, Vector{1, 0, 0}, 0.0, 0.001},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CosineSimilarity(tt.a, tt.b)
			if math.Abs(got-tt.expected) > tt.delta {
				t.Errorf("CosineSimilarity(%v, %v) = %f, want %f (±%f)", tt.a, tt.b, got, tt.expected, tt.delta)
			}
		})
	}
}

func TestGeminiEmbedder_Embed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != "POST" {
			t.Errorf("expected POST, got %s", r.Method)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"embedding":{"values":[0.1,0.2,0.3]}}`))
	}))
	defer srv.Close()

	e := NewGeminiEmbedder("test-key", "")
	e.baseURL = srv.URL

	vec, err := e.Embed(context.Background(), "hello world")
	if err != nil {
		t.Fatalf("Embed failed: %v", err)
	}
	if len(vec) != 3 {
		t.Fatalf("expected 3 values, got %d", len(vec))
	}
	if math.Abs(float64(vec[1])-0.2) > 0.001 {
		t.Errorf("vec[1] = %f, want 0.2", vec[1])
	}
}

func TestGeminiEmbedder_APIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":{"message":"invalid key"}}`, http.StatusForbidden)
	}))
	defer srv.Close()

	e := NewGeminiEmbedder("bad-key", "")
	e.baseURL = srv.URL

	if _, err := e.Embed(context.Background(), "hello"); err == nil {
		t.Error("expected error from non-200 response")
	}
}

func TestGeminiEmbedder_Defaults(t *testing.T) {
	e := NewGeminiEmbedder("k", "")
	if e.model != "text-embedding-004" {
		t.Errorf("default model = %q", e.model)
	}
	if e.Dims() != 768 {
		t.Errorf("dims = %d, want 768", e.Dims())
	}
}

func TestNewFromEnv_Disabled(t *testing.T) {
	// With no env vars set, should return nil
	e := NewFromEnv()
	if e != nil {
		t.Error("expected nil embedder when no provider configured")
	}
}

func TestNewFromEnv_Gemini(t *testing.T) {
	t.Setenv("AGENT_CONTEXT_EMBED_PROVIDER", "gemini")
	t.Setenv("GEMINI_API_KEY", "k")
	e := NewFromEnv()
	if _, ok := e.(*GeminiEmbedder); !ok {
		t.Fatalf("expected *GeminiEmbedder, got %T", e)
	}
}
