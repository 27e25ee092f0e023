// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package model

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/legalizeme/counsel/pkg/types"
)

func TestAnthropicGenerate(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("x-api-key"); got != "ak_test" {
			t.Errorf("x-api-key = %q, want ak_test", got)
		}
		var req anthropicRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decoding request: %v", err)
		}
		if len(req.Messages) != 1 || req.Messages[0].Role != "user" {
			t.Errorf("messages = %+v, want one user message", req.Messages)
		}
		json.NewEncoder(w).Encode(map[string]any{
			"content": []map[string]string{{"type": "text", "text": "Section 45 requires notice."}},
		})
	}))
	defer ts.Close()

	b := NewAnthropicBackend(types.BackendConfig{
		Name:    "claude",
		Family:  types.FamilyAnthropic,
		Model:   "claude-sonnet-4-5",
		BaseURL: ts.URL,
		APIKey:  "ak_test",
	}, ts.Client(), 1)

	text, err := b.Generate(context.Background(), "what does section 45 require?")
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if text != "Section 45 requires notice." {
		t.Errorf("Generate() = %q", text)
	}
}

func TestAnthropicGenerateAPIError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error":{"type":"invalid_request_error","message":"max_tokens required"}}`))
	}))
	defer ts.Close()

	b := NewAnthropicBackend(types.BackendConfig{Name: "claude", BaseURL: ts.URL}, ts.Client(), 1)
	_, err := b.Generate(context.Background(), "prompt")
	if err == nil || !strings.Contains(err.Error(), "400") {
		t.Errorf("Generate() error = %v, want 400 status error", err)
	}
}

func TestMistralGenerate(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer mk_test" {
			t.Errorf("Authorization = %q, want bearer token", got)
		}
		var req mistralRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decoding request: %v", err)
		}
		if len(req.Messages) != 1 {
			t.Errorf("messages = %+v, want one message", req.Messages)
		}
		json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{"message": map[string]string{"content": "Dismissal requires a hearing."}},
			},
		})
	}))
	defer ts.Close()

	b := NewMistralBackend(types.BackendConfig{
		Name:    "mistral",
		Family:  types.FamilyMistral,
		Model:   "mistral-large-latest",
		BaseURL: ts.URL,
		APIKey:  "mk_test",
	}, ts.Client(), 1)

	text, err := b.Generate(context.Background(), "is a hearing required?")
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if text != "Dismissal requires a hearing." {
		t.Errorf("Generate() = %q", text)
	}
}

func TestOllamaGenerate(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/generate" {
			t.Errorf("path = %q, want /api/generate", r.URL.Path)
		}
		var req ollamaRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decoding request: %v", err)
		}
		if req.Prompt == "" {
			t.Error("prompt field is empty; Ollama family uses a single prompt field")
		}
		if req.Stream {
			t.Error("stream must be false")
		}
		json.NewEncoder(w).Encode(ollamaResponse{Response: "Local answer."})
	}))
	defer ts.Close()

	b := NewOllamaBackend(types.BackendConfig{
		Name:    "local",
		Family:  types.FamilyOllama,
		Model:   "llama3.2",
		BaseURL: ts.URL,
	}, ts.Client(), 1)

	text, err := b.Generate(context.Background(), "question")
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if text != "Local answer." {
		t.Errorf("Generate() = %q", text)
	}
}

func TestNewBackendFamilies(t *testing.T) {
	tests := []struct {
		family  types.BackendFamily
		wantErr bool
	}{
		{types.FamilyAnthropic, false},
		{types.FamilyMistral, false},
		{types.FamilyOllama, false},
		{"bedrock", true},
	}
	for _, tt := range tests {
		t.Run(string(tt.family), func(t *testing.T) {
			_, err := NewBackend(types.BackendConfig{Name: "b", Family: tt.family}, nil, 0)
			if (err != nil) != tt.wantErr {
				t.Errorf("NewBackend(%s) error = %v, wantErr %v", tt.family, err, tt.wantErr)
			}
		})
	}
}
