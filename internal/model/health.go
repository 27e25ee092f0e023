// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package model

// HealthStatus is the derived condition of one backend.
type HealthStatus string

const (
	Healthy     HealthStatus = "healthy"
	Degraded    HealthStatus = "degraded"
	Unavailable HealthStatus = "unavailable"
)

// Failure streaks at which a backend's derived status changes. A
// degraded or unavailable backend is still tried on every invocation;
// the status is a monitoring signal, not a circuit breaker, because
// availability can recover at any time.
const (
	degradedStreak    = 3
	unavailableStreak = 10
)

// HealthRecord holds running counters for one backend. Records live for
// the process lifetime and are mutated after every invocation attempt,
// so all access goes through the invoker's mutex.
type HealthRecord struct {
	Successes           int `json:"successes" yaml:"successes"`
	Failures            int `json:"failures" yaml:"failures"`
	ConsecutiveFailures int `json:"consecutive_failures" yaml:"consecutive_failures"`
}

// Status derives the backend condition from the current failure streak.
func (r HealthRecord) Status() HealthStatus {
	switch {
	case r.ConsecutiveFailures >= unavailableStreak:
		return Unavailable
	case r.ConsecutiveFailures >= degradedStreak:
		return Degraded
	default:
		return Healthy
	}
}

func (r *HealthRecord) recordSuccess() {
	r.Successes++
	r.ConsecutiveFailures = 0
}

func (r *HealthRecord) recordFailure() {
	r.Failures++
	r.ConsecutiveFailures++
}
