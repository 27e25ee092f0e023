// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// Status is the outcome of one pipeline stage.
type Status string

const (
	StatusSuccess        Status = "success"
	StatusPartialSuccess Status = "partial_success"
	StatusFailure        Status = "failure"
	StatusTimeout        Status = "timeout"
	StatusSkipped        Status = "skipped"
)

// Meta is the uniform contract every stage result embeds. A success
// carries a confidence in [0,1] and a populated payload on the embedding
// struct; a failure carries an error message and an empty payload.
type Meta struct {
	Status Status `json:"status" yaml:"status"`

	// Confidence is the stage's self-assessed confidence in [0,1].
	Confidence float64 `json:"confidence" yaml:"confidence"`

	// Elapsed is the stage processing time.
	Elapsed time.Duration `json:"elapsed" yaml:"elapsed"`

	// Err holds the failure message when Status is not success.
	Err string `json:"error,omitempty" yaml:"error,omitempty"`

	// Steps records the stage's own reasoning/progress notes.
	Steps []string `json:"steps,omitempty" yaml:"steps,omitempty"`

	// Sources lists identifiers of documents or backends the stage used.
	Sources []string `json:"sources,omitempty" yaml:"sources,omitempty"`
}

// OK reports whether the stage completed successfully.
func (m Meta) OK() bool {
	return m.Status == StatusSuccess
}

// ResearchResponse is the pipeline's final output. It is created once
// per query by the orchestrator and immutable thereafter.
type ResearchResponse struct {
	// Answer is the formatted answer text.
	Answer string `json:"answer" yaml:"answer"`

	// Confidence is the arithmetic mean of the four stage confidences.
	Confidence float64 `json:"confidence" yaml:"confidence"`

	Citations []Citation `json:"citations,omitempty" yaml:"citations,omitempty"`

	// ReasoningChain is the ordered list of reasoning steps.
	ReasoningChain []string `json:"reasoning_chain,omitempty" yaml:"reasoning_chain,omitempty"`

	// RetryCount is the number of full-chain re-runs performed.
	RetryCount int `json:"retry_count" yaml:"retry_count"`

	// FallbackUsed reports whether a low-confidence re-run with a
	// broadened strategy produced this response.
	FallbackUsed bool `json:"fallback_used" yaml:"fallback_used"`

	// Strategy names the retrieval strategy that produced the response.
	Strategy string `json:"strategy" yaml:"strategy"`
}

// Clamp01 bounds v to [0,1]. Stage confidence arithmetic uses it so
// bonuses and penalties cannot push a score out of range.
func Clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
