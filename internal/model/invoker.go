// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package model wraps calls to an ordered list of generative-model
// backends. The invoker tries each backend in priority order until one
// succeeds or all fail, and tracks per-backend health counters.
package model

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"
	"unicode"
)

// Backend generates text for a prompt against a single model API.
// Each implementation builds its own family-specific request payload.
type Backend interface {
	Name() string
	MaxTokens() int
	Generate(ctx context.Context, prompt string) (string, error)
}

// Result is the outcome of a successful invocation.
type Result struct {
	// Text is the generated response.
	Text string

	// Backend names the backend that produced the response.
	Backend string

	// Latency is the duration of the successful attempt.
	Latency time.Duration

	// PossiblyTruncated marks responses that appear cut short at the
	// backend's output-token budget. Callers decide whether to retry
	// with a continuation prompt.
	PossiblyTruncated bool
}

// AttemptError records one failed backend attempt.
type AttemptError struct {
	Backend string
	Err     error
}

// AllBackendsFailedError reports that every backend in the fallback
// chain was exhausted. It aggregates the per-backend error messages.
type AllBackendsFailedError struct {
	Attempts []AttemptError
}

func (e *AllBackendsFailedError) Error() string {
	msgs := make([]string, len(e.Attempts))
	for i, a := range e.Attempts {
		msgs[i] = fmt.Sprintf("%s: %v", a.Backend, a.Err)
	}
	return fmt.Sprintf("all %d backends failed: %s", len(e.Attempts), strings.Join(msgs, "; "))
}

// defaultAttemptTimeout is the hard cutoff per backend attempt.
const defaultAttemptTimeout = 30 * time.Second

// Invoker tries backends in priority order. It is safe for concurrent
// use: health counters are guarded by a mutex since multiple queries
// may invoke the same backend simultaneously.
type Invoker struct {
	backends []Backend
	timeout  time.Duration
	warn     io.Writer

	mu     sync.Mutex
	health map[string]*HealthRecord
}

// NewInvoker builds an invoker over the given backends, highest
// priority first. attemptTimeout zero means the default (30s).
func NewInvoker(backends []Backend, attemptTimeout time.Duration) *Invoker {
	if attemptTimeout <= 0 {
		attemptTimeout = defaultAttemptTimeout
	}
	health := make(map[string]*HealthRecord, len(backends))
	for _, b := range backends {
		health[b.Name()] = &HealthRecord{}
	}
	return &Invoker{
		backends: backends,
		timeout:  attemptTimeout,
		warn:     os.Stderr,
		health:   health,
	}
}

// SetWarnWriter redirects degradation warnings (default os.Stderr).
func (inv *Invoker) SetWarnWriter(w io.Writer) { inv.warn = w }

// Option adjusts a single invocation.
type Option func(*invokeOptions)

type invokeOptions struct {
	preferred string
}

// WithPreferredBackend starts the fallback chain at the named backend
// instead of priority 0. The remaining backends are still tried in
// priority order if the preferred one fails.
func WithPreferredBackend(name string) Option {
	return func(o *invokeOptions) { o.preferred = name }
}

// Invoke sends the prompt to each backend in order until one succeeds.
// A recoverable failure (rate limit, validation error, timeout) records
// a failure for that backend and advances to the next. When every
// backend fails Invoke returns an *AllBackendsFailedError. The parent
// context cancelling stops the chain immediately.
func (inv *Invoker) Invoke(ctx context.Context, prompt string, opts ...Option) (Result, error) {
	if len(inv.backends) == 0 {
		return Result{}, fmt.Errorf("no backends configured")
	}
	if strings.TrimSpace(prompt) == "" {
		return Result{}, fmt.Errorf("prompt is empty")
	}

	var o invokeOptions
	for _, opt := range opts {
		opt(&o)
	}

	var attempts []AttemptError
	for _, b := range inv.order(o.preferred) {
		if err := ctx.Err(); err != nil {
			return Result{}, err
		}

		if status := inv.status(b.Name()); status != Healthy {
			fmt.Fprintf(inv.warn, "warning: backend %s is %s, trying anyway\n", b.Name(), status)
		}

		attemptCtx, cancel := context.WithTimeout(ctx, inv.timeout)
		start := time.Now()
		text, err := b.Generate(attemptCtx, prompt)
		latency := time.Since(start)
		cancel()

		if err != nil {
			inv.recordFailure(b.Name())
			attempts = append(attempts, AttemptError{Backend: b.Name(), Err: err})
			continue
		}

		inv.recordSuccess(b.Name())
		return Result{
			Text:              text,
			Backend:           b.Name(),
			Latency:           latency,
			PossiblyTruncated: looksTruncated(text, b.MaxTokens()),
		}, nil
	}

	return Result{}, &AllBackendsFailedError{Attempts: attempts}
}

// order returns the backends with the preferred one (if any) first,
// followed by the rest in priority order.
func (inv *Invoker) order(preferred string) []Backend {
	if preferred == "" {
		return inv.backends
	}
	ordered := make([]Backend, 0, len(inv.backends))
	for _, b := range inv.backends {
		if b.Name() == preferred {
			ordered = append(ordered, b)
			break
		}
	}
	if len(ordered) == 0 {
		// Unknown preferred backend: fall back to priority order.
		return inv.backends
	}
	for _, b := range inv.backends {
		if b.Name() != preferred {
			ordered = append(ordered, b)
		}
	}
	return ordered
}

// Health returns a snapshot of all backend health records.
func (inv *Invoker) Health() map[string]HealthRecord {
	inv.mu.Lock()
	defer inv.mu.Unlock()
	snapshot := make(map[string]HealthRecord, len(inv.health))
	for name, rec := range inv.health {
		snapshot[name] = *rec
	}
	return snapshot
}

func (inv *Invoker) status(name string) HealthStatus {
	inv.mu.Lock()
	defer inv.mu.Unlock()
	if rec, ok := inv.health[name]; ok {
		return rec.Status()
	}
	return Healthy
}

func (inv *Invoker) recordSuccess(name string) {
	inv.mu.Lock()
	defer inv.mu.Unlock()
	if rec, ok := inv.health[name]; ok {
		rec.recordSuccess()
	}
}

func (inv *Invoker) recordFailure(name string) {
	inv.mu.Lock()
	defer inv.mu.Unlock()
	if rec, ok := inv.health[name]; ok {
		rec.recordFailure()
	}
}

// charsPerToken approximates the character cost of one output token.
const charsPerToken = 4

// looksTruncated applies a heuristic for responses cut short at the
// output-token budget: the text ends mid-sentence (no terminal
// punctuation) and its estimated token count is at or near maxTokens.
func looksTruncated(text string, maxTokens int) bool {
	trimmed := strings.TrimRightFunc(text, unicode.IsSpace)
	if trimmed == "" || maxTokens <= 0 {
		return false
	}

	last := rune(trimmed[len(trimmed)-1])
	switch last {
	case '.', '!', '?', ':', ')', ']', '"', '\'', '`':
		return false
	}

	estTokens := len(trimmed) / charsPerToken
	return float64(estTokens) >= 0.9*float64(maxTokens)
}
