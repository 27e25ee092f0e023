// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// HTTPConfig holds shared HTTP settings used by stages that make network
// requests.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "counsel/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent"`
}

// BackendFamily selects the request payload shape for a model backend.
type BackendFamily string

const (
	FamilyAnthropic BackendFamily = "anthropic"
	FamilyMistral   BackendFamily = "mistral"
	FamilyOllama    BackendFamily = "ollama"
)

// BackendConfig describes one generative-model backend in the fallback
// chain. Backends are tried in the order they appear in InvokerConfig.
type BackendConfig struct {
	// Name identifies the backend in results and health reports
	// (e.g. "claude-primary").
	Name string `json:"name" yaml:"name"`

	// Family selects the payload shape.
	Family BackendFamily `json:"family" yaml:"family"`

	// Model is the model identifier (e.g. "claude-sonnet-4-5-20250929",
	// "mistral-large-latest").
	Model string `json:"model" yaml:"model"`

	// BaseURL overrides the default API endpoint. Mainly for tests and
	// local Ollama hosts.
	BaseURL string `json:"base_url,omitempty" yaml:"base_url,omitempty"`

	// APIKey is the authentication key for the backend API.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty"`

	// MaxTokens is the output token budget (default 4096). The
	// truncation heuristic compares response length against it.
	MaxTokens int `json:"max_tokens" yaml:"max_tokens"`
}

// InvokerConfig holds settings for the model invocation layer.
type InvokerConfig struct {
	HTTPConfig `yaml:",inline"`

	// Backends is the ordered fallback chain, highest priority first.
	Backends []BackendConfig `json:"backends" yaml:"backends"`

	// AttemptTimeout is the hard cutoff per backend attempt (default 30s).
	AttemptTimeout time.Duration `json:"attempt_timeout" yaml:"attempt_timeout"`

	// MaxRetries is the retry budget for rate-limited HTTP calls within
	// a single backend attempt (default 3).
	MaxRetries int `json:"max_retries" yaml:"max_retries"`
}

// IndexConfig holds settings for the corpus index.
type IndexConfig struct {
	// CorpusDir is the base directory for the corpus (contains
	// sources/, index/).
	CorpusDir string `json:"corpus_dir" yaml:"corpus_dir"`

	// MaxResults is the default per-method search limit (default 20).
	MaxResults int `json:"max_results" yaml:"max_results"`
}

// ResearchConfig holds orchestrator settings.
type ResearchConfig struct {
	// ConfidenceThreshold gates the broadened re-run (default 0.7).
	ConfidenceThreshold float64 `json:"confidence_threshold" yaml:"confidence_threshold"`

	// MaxRetries bounds full-chain re-runs (default 3).
	MaxRetries int `json:"max_retries" yaml:"max_retries"`
}

// PipelineConfig groups all stage configurations.
type PipelineConfig struct {
	Invoker  InvokerConfig  `json:"invoker" yaml:"invoker"`
	Index    IndexConfig    `json:"index" yaml:"index"`
	Research ResearchConfig `json:"research" yaml:"research"`
}
