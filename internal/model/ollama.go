// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package model

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/legalizeme/counsel/internal/httputil"
	"github.com/legalizeme/counsel/pkg/types"
)

// ollamaDefaultURL is the local Ollama host. Package-level var for test
// substitution.
var ollamaDefaultURL = "http://localhost:11434"

// OllamaBackend calls a local Ollama server. Unlike the chat-message
// families, the payload carries the prompt in a single field.
type OllamaBackend struct {
	cfg        types.BackendConfig
	client     *http.Client
	maxRetries int
}

// NewOllamaBackend builds a backend for the Ollama family.
// A nil client uses http.DefaultClient.
func NewOllamaBackend(cfg types.BackendConfig, client *http.Client, maxRetries int) *OllamaBackend {
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = defaultMaxTokens
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = ollamaDefaultURL
	}
	if client == nil {
		client = http.DefaultClient
	}
	return &OllamaBackend{cfg: cfg, client: client, maxRetries: maxRetries}
}

func (b *OllamaBackend) Name() string   { return b.cfg.Name }
func (b *OllamaBackend) MaxTokens() int { return b.cfg.MaxTokens }

type ollamaRequest struct {
	Model   string         `json:"model"`
	Prompt  string         `json:"prompt"`
	Stream  bool           `json:"stream"`
	Options map[string]int `json:"options,omitempty"`
}

type ollamaResponse struct {
	Response string `json:"response"`
	Error    string `json:"error"`
}

// Generate sends the prompt to /api/generate and returns the response.
func (b *OllamaBackend) Generate(ctx context.Context, prompt string) (string, error) {
	reqBody := ollamaRequest{
		Model:   b.cfg.Model,
		Prompt:  prompt,
		Stream:  false,
		Options: map[string]int{"num_predict": b.cfg.MaxTokens},
	}

	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, b.cfg.BaseURL+"/api/generate", bytes.NewReader(bodyBytes))
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := httputil.DoWithRetry(ctx, b.client, req, b.maxRetries)
	if err != nil {
		return "", fmt.Errorf("calling Ollama (is the server running?): %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		if resp.StatusCode == http.StatusNotFound {
			return "", fmt.Errorf("model %q not found: run 'ollama pull %s'", b.cfg.Model, b.cfg.Model)
		}
		return "", fmt.Errorf("Ollama returned %d: %s", resp.StatusCode, string(body))
	}

	var oResp ollamaResponse
	if err := json.NewDecoder(resp.Body).Decode(&oResp); err != nil {
		return "", fmt.Errorf("decoding Ollama response: %w", err)
	}
	if oResp.Error != "" {
		return "", fmt.Errorf("Ollama error: %s", oResp.Error)
	}
	return oResp.Response, nil
}

// defaultMaxTokens is the output budget when a backend config omits one.
const defaultMaxTokens = 4096

// NewBackend constructs the backend matching cfg.Family.
func NewBackend(cfg types.BackendConfig, client *http.Client, maxRetries int) (Backend, error) {
	switch cfg.Family {
	case types.FamilyAnthropic:
		return NewAnthropicBackend(cfg, client, maxRetries), nil
	case types.FamilyMistral:
		return NewMistralBackend(cfg, client, maxRetries), nil
	case types.FamilyOllama:
		return NewOllamaBackend(cfg, client, maxRetries), nil
	default:
		return nil, fmt.Errorf("unsupported backend family %q", cfg.Family)
	}
}
