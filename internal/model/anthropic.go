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

// anthropicAPIURL is the Anthropic Messages API endpoint. Package-level
// var for test substitution.
var anthropicAPIURL = "https://api.anthropic.com/v1/messages"

// AnthropicBackend calls the Anthropic Messages API. The payload is a
// chat-message list with a separate max_tokens field.
type AnthropicBackend struct {
	cfg        types.BackendConfig
	client     *http.Client
	maxRetries int
}

// NewAnthropicBackend builds a backend for the Anthropic family.
// A nil client uses http.DefaultClient.
func NewAnthropicBackend(cfg types.BackendConfig, client *http.Client, maxRetries int) *AnthropicBackend {
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = defaultMaxTokens
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = anthropicAPIURL
	}
	if client == nil {
		client = http.DefaultClient
	}
	return &AnthropicBackend{cfg: cfg, client: client, maxRetries: maxRetries}
}

func (b *AnthropicBackend) Name() string   { return b.cfg.Name }
func (b *AnthropicBackend) MaxTokens() int { return b.cfg.MaxTokens }

type anthropicRequest struct {
	Model     string             `json:"model"`
	MaxTokens int                `json:"max_tokens"`
	Messages  []anthropicMessage `json:"messages"`
}

type anthropicMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type anthropicResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	Error *struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}

// Generate sends the prompt as a single user message and returns the
// first text content block.
func (b *AnthropicBackend) Generate(ctx context.Context, prompt string) (string, error) {
	reqBody := anthropicRequest{
		Model:     b.cfg.Model,
		MaxTokens: b.cfg.MaxTokens,
		Messages:  []anthropicMessage{{Role: "user", Content: prompt}},
	}

	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, b.cfg.BaseURL, bytes.NewReader(bodyBytes))
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", b.cfg.APIKey)
	req.Header.Set("anthropic-version", "2023-06-01")

	resp, err := httputil.DoWithRetry(ctx, b.client, req, b.maxRetries)
	if err != nil {
		return "", fmt.Errorf("calling Anthropic API: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("Anthropic API returned %d: %s", resp.StatusCode, string(body))
	}

	var aResp anthropicResponse
	if err := json.NewDecoder(resp.Body).Decode(&aResp); err != nil {
		return "", fmt.Errorf("decoding Anthropic response: %w", err)
	}
	if aResp.Error != nil {
		return "", fmt.Errorf("Anthropic API error: %s", aResp.Error.Message)
	}

	for _, block := range aResp.Content {
		if block.Type == "text" {
			return block.Text, nil
		}
	}
	return "", fmt.Errorf("no text content in Anthropic response")
}
