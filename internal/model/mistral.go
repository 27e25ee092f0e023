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

// mistralAPIURL is the Mistral chat-completions endpoint. Package-level
// var for test substitution.
var mistralAPIURL = "https://api.mistral.ai/v1/chat/completions"

// MistralBackend calls the Mistral chat-completions API (OpenAI-style
// message list with a bearer token).
type MistralBackend struct {
	cfg        types.BackendConfig
	client     *http.Client
	maxRetries int
}

// NewMistralBackend builds a backend for the Mistral family.
// A nil client uses http.DefaultClient.
func NewMistralBackend(cfg types.BackendConfig, client *http.Client, maxRetries int) *MistralBackend {
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = defaultMaxTokens
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = mistralAPIURL
	}
	if client == nil {
		client = http.DefaultClient
	}
	return &MistralBackend{cfg: cfg, client: client, maxRetries: maxRetries}
}

func (b *MistralBackend) Name() string   { return b.cfg.Name }
func (b *MistralBackend) MaxTokens() int { return b.cfg.MaxTokens }

type mistralRequest struct {
	Model     string           `json:"model"`
	MaxTokens int              `json:"max_tokens"`
	Messages  []mistralMessage `json:"messages"`
}

type mistralMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type mistralResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

// Generate sends the prompt as a single user message and returns the
// first choice's content.
func (b *MistralBackend) Generate(ctx context.Context, prompt string) (string, error) {
	reqBody := mistralRequest{
		Model:     b.cfg.Model,
		MaxTokens: b.cfg.MaxTokens,
		Messages:  []mistralMessage{{Role: "user", Content: prompt}},
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
	req.Header.Set("Authorization", "Bearer "+b.cfg.APIKey)

	resp, err := httputil.DoWithRetry(ctx, b.client, req, b.maxRetries)
	if err != nil {
		return "", fmt.Errorf("calling Mistral API: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("Mistral API returned %d: %s", resp.StatusCode, string(body))
	}

	var mResp mistralResponse
	if err := json.NewDecoder(resp.Body).Decode(&mResp); err != nil {
		return "", fmt.Errorf("decoding Mistral response: %w", err)
	}
	if mResp.Error != nil {
		return "", fmt.Errorf("Mistral API error: %s", mResp.Error.Message)
	}
	if len(mResp.Choices) == 0 {
		return "", fmt.Errorf("no choices in Mistral response")
	}
	return mResp.Choices[0].Message.Content, nil
}
