// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// Level grades complexity and urgency.
type Level string

const (
	LevelLow    Level = "low"
	LevelMedium Level = "medium"
	LevelHigh   Level = "high"
)

// Routing hint names set by query analysis and consumed by stage
// strategy selection.
const (
	HintDocumentProcessing = "document_processing"
	HintCaseLawResearch    = "case_law_research"
	HintStatutoryLookup    = "statutory_lookup"
)

// QueryContext is the per-query analysis bundle produced once before the
// pipeline runs and passed read-only through every stage.
type QueryContext struct {
	// Domains is the ordered set of detected legal domains, most
	// confident first (e.g. "employment", "land").
	Domains []string `json:"domains" yaml:"domains"`

	// Complexity grades how involved the question is.
	Complexity Level `json:"complexity" yaml:"complexity"`

	// Urgency grades how time-sensitive the question is.
	Urgency Level `json:"urgency" yaml:"urgency"`

	// RoutingHints maps hint names to parameters. Stages check for the
	// presence of a hint, not its parameters, when selecting strategies.
	RoutingHints map[string]map[string]string `json:"routing_hints,omitempty" yaml:"routing_hints,omitempty"`

	// Metadata carries arbitrary caller-supplied context (e.g. a
	// response-style preference under "response_preference").
	Metadata map[string]string `json:"metadata,omitempty" yaml:"metadata,omitempty"`
}

// HasHint reports whether a routing hint is present.
func (c QueryContext) HasHint(name string) bool {
	_, ok := c.RoutingHints[name]
	return ok
}

// HasDomain reports whether the context carries the named legal domain.
func (c QueryContext) HasDomain(name string) bool {
	for _, d := range c.Domains {
		if d == name {
			return true
		}
	}
	return false
}

// PrimaryDomain returns the first detected domain, or "general" when
// analysis found none.
func (c QueryContext) PrimaryDomain() string {
	if len(c.Domains) == 0 {
		return "general"
	}
	return c.Domains[0]
}
