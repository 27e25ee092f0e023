// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package reason

import (
	"strings"

	"github.com/legalizeme/counsel/pkg/types"
)

// Strategy bundles the reasoning parameters selected per query.
type Strategy struct {
	Name             string
	MaxSteps         int
	Precedents       bool
	Counterarguments bool
	Implications     bool
}

func defaultStrategies() map[string]Strategy {
	return map[string]Strategy{
		"quick_analysis": {
			Name:     "quick_analysis",
			MaxSteps: 5,
		},
		"statutory_interpretation": {
			Name:         "statutory_interpretation",
			MaxSteps:     10,
			Implications: true,
		},
		"case_comparison": {
			Name:             "case_comparison",
			MaxSteps:         12,
			Precedents:       true,
			Counterarguments: true,
		},
		"practical_guidance": {
			Name:         "practical_guidance",
			MaxSteps:     8,
			Implications: true,
		},
		"comprehensive_analysis": {
			Name:             "comprehensive_analysis",
			MaxSteps:         15,
			Precedents:       true,
			Counterarguments: true,
			Implications:     true,
		},
	}
}

// practicalPhrases signal a question asking for actionable guidance.
var practicalPhrases = []string{
	"how to", "how do i", "next steps", "what should i do",
	"what can i do", "steps to",
}

// selectStrategy picks the reasoning strategy for a query. Rules are
// ordered; the first match wins.
func (r *Reasoner) selectStrategy(explicit, query string, qctx types.QueryContext) Strategy {
	if s, ok := r.strategies[explicit]; ok {
		return s
	}
	if qctx.Urgency == types.LevelHigh {
		return r.strategies["quick_analysis"]
	}
	if qctx.HasHint(types.HintStatutoryLookup) {
		return r.strategies["statutory_interpretation"]
	}
	if qctx.HasHint(types.HintCaseLawResearch) {
		return r.strategies["case_comparison"]
	}
	lower := strings.ToLower(query)
	for _, p := range practicalPhrases {
		if strings.Contains(lower, p) {
			return r.strategies["practical_guidance"]
		}
	}
	return r.strategies["comprehensive_analysis"]
}
