// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/viper"

	"github.com/legalizeme/counsel/internal/model"
	"github.com/legalizeme/counsel/pkg/types"
)

// pipelineConfig assembles the full pipeline configuration from viper,
// falling back to defaults for anything the config file omits.
func pipelineConfig() types.PipelineConfig {
	viper.SetDefault("index.corpus_dir", "corpus")
	viper.SetDefault("index.max_results", 20)
	viper.SetDefault("invoker.timeout", "60s")
	viper.SetDefault("invoker.attempt_timeout", "30s")
	viper.SetDefault("invoker.max_retries", 3)
	viper.SetDefault("research.confidence_threshold", 0.7)
	viper.SetDefault("research.max_retries", 3)

	return types.PipelineConfig{
		Invoker: types.InvokerConfig{
			HTTPConfig: types.HTTPConfig{
				Timeout:   viper.GetDuration("invoker.timeout"),
				UserAgent: "counsel/" + version,
			},
			Backends:       backendConfigs(),
			AttemptTimeout: viper.GetDuration("invoker.attempt_timeout"),
			MaxRetries:     viper.GetInt("invoker.max_retries"),
		},
		Index: types.IndexConfig{
			CorpusDir:  viper.GetString("index.corpus_dir"),
			MaxResults: viper.GetInt("index.max_results"),
		},
		Research: types.ResearchConfig{
			ConfidenceThreshold: viper.GetFloat64("research.confidence_threshold"),
			MaxRetries:          viper.GetInt("research.max_retries"),
		},
	}
}

// backendConfigs reads the fallback chain from config, or returns the
// built-in chain when none is configured.
func backendConfigs() []types.BackendConfig {
	var raw []map[string]any
	if err := viper.UnmarshalKey("invoker.backends", &raw); err != nil || len(raw) == 0 {
		return defaultBackends()
	}

	out := make([]types.BackendConfig, 0, len(raw))
	for _, m := range raw {
		out = append(out, types.BackendConfig{
			Name:      stringKey(m, "name"),
			Family:    types.BackendFamily(stringKey(m, "family")),
			Model:     stringKey(m, "model"),
			BaseURL:   stringKey(m, "base_url"),
			APIKey:    stringKey(m, "api_key"),
			MaxTokens: intKey(m, "max_tokens"),
		})
	}
	return out
}

func stringKey(m map[string]any, key string) string {
	if v, ok := m[key].(string); ok {
		return v
	}
	return ""
}

func intKey(m map[string]any, key string) int {
	switch v := m[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	}
	return 0
}

// defaultBackends is the priority order when the config file names no
// backends: Claude first, Mistral second, a local Ollama model last.
func defaultBackends() []types.BackendConfig {
	return []types.BackendConfig{
		{Name: "claude-primary", Family: types.FamilyAnthropic, Model: "claude-sonnet-4-5-20250929", MaxTokens: 4096},
		{Name: "mistral-secondary", Family: types.FamilyMistral, Model: "mistral-large-latest", MaxTokens: 4096},
		{Name: "ollama-local", Family: types.FamilyOllama, Model: "llama3.1", MaxTokens: 4096},
	}
}

// buildInvoker constructs the model invoker from config, filling API
// keys from loaded secrets when the config leaves them blank.
func buildInvoker(cfg types.InvokerConfig) (*model.Invoker, error) {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	client := &http.Client{Timeout: timeout}

	backends := make([]model.Backend, 0, len(cfg.Backends))
	for _, bc := range cfg.Backends {
		if key := secretName(bc.Family); key != "" {
			bc.APIKey = secretDefault(key, bc.APIKey)
		}
		b, err := model.NewBackend(bc, client, cfg.MaxRetries)
		if err != nil {
			return nil, fmt.Errorf("backend %s: %w", bc.Name, err)
		}
		backends = append(backends, b)
	}
	return model.NewInvoker(backends, cfg.AttemptTimeout), nil
}

// secretName maps a backend family to its .secrets/ key file.
func secretName(family types.BackendFamily) string {
	switch family {
	case types.FamilyAnthropic:
		return "anthropic-api-key"
	case types.FamilyMistral:
		return "mistral-api-key"
	default:
		return ""
	}
}
