// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package model

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"testing"
	"time"
)

// fakeBackend returns a canned response or error.
type fakeBackend struct {
	name      string
	maxTokens int
	text      string
	err       error

	mu    sync.Mutex
	calls int
}

func (f *fakeBackend) Name() string   { return f.name }
func (f *fakeBackend) MaxTokens() int { return f.maxTokens }

func (f *fakeBackend) Generate(_ context.Context, _ string) (string, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()
	if f.err != nil {
		return "", f.err
	}
	return f.text, nil
}

func (f *fakeBackend) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func newTestInvoker(backends ...Backend) *Invoker {
	inv := NewInvoker(backends, time.Second)
	inv.SetWarnWriter(io.Discard)
	return inv
}

func TestInvokePrimarySucceeds(t *testing.T) {
	primary := &fakeBackend{name: "primary", maxTokens: 4096, text: "The Employment Act applies."}
	secondary := &fakeBackend{name: "secondary", maxTokens: 4096, text: "unused"}
	inv := newTestInvoker(primary, secondary)

	res, err := inv.Invoke(context.Background(), "prompt")
	if err != nil {
		t.Fatalf("Invoke() error = %v", err)
	}
	if res.Backend != "primary" {
		t.Errorf("Backend = %q, want primary", res.Backend)
	}
	if secondary.callCount() != 0 {
		t.Errorf("secondary was called %d times, want 0", secondary.callCount())
	}
}

func TestInvokeFallsBackToSecondary(t *testing.T) {
	primary := &fakeBackend{name: "primary", maxTokens: 4096, err: errors.New("ValidationException: bad payload")}
	secondary := &fakeBackend{name: "secondary", maxTokens: 4096, text: "answer."}
	inv := newTestInvoker(primary, secondary)

	res, err := inv.Invoke(context.Background(), "prompt")
	if err != nil {
		t.Fatalf("Invoke() error = %v", err)
	}
	if res.Backend != "secondary" {
		t.Errorf("Backend = %q, want secondary", res.Backend)
	}

	health := inv.Health()
	if got := health["primary"]; got.Failures != 1 || got.Successes != 0 {
		t.Errorf("primary health = %+v, want exactly 1 failure", got)
	}
	if got := health["secondary"]; got.Successes != 1 || got.Failures != 0 {
		t.Errorf("secondary health = %+v, want exactly 1 success", got)
	}
}

func TestInvokeAllBackendsFail(t *testing.T) {
	backends := []Backend{
		&fakeBackend{name: "primary", maxTokens: 4096, err: errors.New("ValidationException on primary")},
		&fakeBackend{name: "secondary", maxTokens: 4096, err: errors.New("ValidationException on secondary")},
		&fakeBackend{name: "tertiary", maxTokens: 4096, err: errors.New("ValidationException on tertiary")},
	}
	inv := newTestInvoker(backends...)

	_, err := inv.Invoke(context.Background(), "prompt")
	var allFailed *AllBackendsFailedError
	if !errors.As(err, &allFailed) {
		t.Fatalf("Invoke() error = %v, want *AllBackendsFailedError", err)
	}
	if len(allFailed.Attempts) != 3 {
		t.Fatalf("Attempts = %d, want 3", len(allFailed.Attempts))
	}
	msg := allFailed.Error()
	for _, name := range []string{"primary", "secondary", "tertiary"} {
		if !strings.Contains(msg, "ValidationException on "+name) {
			t.Errorf("error message missing %s failure: %s", name, msg)
		}
	}
}

func TestInvokePreferredBackendFirst(t *testing.T) {
	primary := &fakeBackend{name: "primary", maxTokens: 4096, text: "from primary"}
	secondary := &fakeBackend{name: "secondary", maxTokens: 4096, text: "from secondary"}
	inv := newTestInvoker(primary, secondary)

	res, err := inv.Invoke(context.Background(), "prompt", WithPreferredBackend("secondary"))
	if err != nil {
		t.Fatalf("Invoke() error = %v", err)
	}
	if res.Backend != "secondary" {
		t.Errorf("Backend = %q, want secondary", res.Backend)
	}
	if primary.callCount() != 0 {
		t.Errorf("primary was called %d times, want 0", primary.callCount())
	}
}

func TestInvokeUnknownPreferredFallsBackToPriorityOrder(t *testing.T) {
	primary := &fakeBackend{name: "primary", maxTokens: 4096, text: "from primary"}
	inv := newTestInvoker(primary)

	res, err := inv.Invoke(context.Background(), "prompt", WithPreferredBackend("nope"))
	if err != nil {
		t.Fatalf("Invoke() error = %v", err)
	}
	if res.Backend != "primary" {
		t.Errorf("Backend = %q, want primary", res.Backend)
	}
}

func TestInvokeEmptyPrompt(t *testing.T) {
	inv := newTestInvoker(&fakeBackend{name: "primary", maxTokens: 4096, text: "x"})
	if _, err := inv.Invoke(context.Background(), "   "); err == nil {
		t.Error("Invoke() with empty prompt should fail")
	}
}

func TestInvokeCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	inv := newTestInvoker(&fakeBackend{name: "primary", maxTokens: 4096, text: "x"})
	if _, err := inv.Invoke(ctx, "prompt"); !errors.Is(err, context.Canceled) {
		t.Errorf("Invoke() error = %v, want context.Canceled", err)
	}
}

func TestHealthStatusDegradesAfterStreak(t *testing.T) {
	failing := &fakeBackend{name: "primary", maxTokens: 4096, err: errors.New("down")}
	ok := &fakeBackend{name: "secondary", maxTokens: 4096, text: "answer."}
	inv := newTestInvoker(failing, ok)

	for i := 0; i < 3; i++ {
		if _, err := inv.Invoke(context.Background(), "prompt"); err != nil {
			t.Fatalf("Invoke() error = %v", err)
		}
	}

	health := inv.Health()
	if got := health["primary"].Status(); got != Degraded {
		t.Errorf("primary status = %s, want degraded", got)
	}
	if got := health["secondary"].Status(); got != Healthy {
		t.Errorf("secondary status = %s, want healthy", got)
	}

	// A degraded backend is still tried on the next invocation.
	before := failing.callCount()
	if _, err := inv.Invoke(context.Background(), "prompt"); err != nil {
		t.Fatalf("Invoke() error = %v", err)
	}
	if failing.callCount() != before+1 {
		t.Error("degraded backend was skipped; degradation must not exclude it")
	}
}

func TestHealthRecoversOnSuccess(t *testing.T) {
	rec := HealthRecord{}
	for i := 0; i < 5; i++ {
		rec.recordFailure()
	}
	if rec.Status() != Degraded {
		t.Fatalf("Status() = %s, want degraded", rec.Status())
	}
	rec.recordSuccess()
	if rec.Status() != Healthy {
		t.Errorf("Status() after success = %s, want healthy", rec.Status())
	}
	if rec.Failures != 5 || rec.Successes != 1 {
		t.Errorf("counters = %+v, totals must be preserved", rec)
	}
}

func TestLooksTruncated(t *testing.T) {
	// 4096-char response ≈ 1024 tokens.
	long := strings.Repeat("word context employment act section dismissal notice ", 80)

	tests := []struct {
		name      string
		text      string
		maxTokens int
		want      bool
	}{
		{"short complete sentence", "The Act applies.", 4096, false},
		{"short incomplete sentence", "The Act applies to", 4096, false},
		{"long at budget without punctuation", long, len(long) / 4, true},
		{"long at budget with punctuation", long[:len(long)-1] + ".", len(long) / 4, false},
		{"empty", "   ", 4096, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := looksTruncated(tt.text, tt.maxTokens); got != tt.want {
				t.Errorf("looksTruncated() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestConcurrentInvocationsDoNotLoseHealthUpdates(t *testing.T) {
	failing := &fakeBackend{name: "primary", maxTokens: 4096, err: fmt.Errorf("down")}
	ok := &fakeBackend{name: "secondary", maxTokens: 4096, text: "answer."}
	inv := newTestInvoker(failing, ok)

	const n = 50
	done := make(chan struct{}, n)
	for i := 0; i < n; i++ {
		go func() {
			inv.Invoke(context.Background(), "prompt")
			done <- struct{}{}
		}()
	}
	for i := 0; i < n; i++ {
		<-done
	}

	health := inv.Health()
	if got := health["primary"].Failures; got != n {
		t.Errorf("primary failures = %d, want %d", got, n)
	}
	if got := health["secondary"].Successes; got != n {
		t.Errorf("secondary successes = %d, want %d", got, n)
	}
}
