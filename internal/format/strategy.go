// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package format

import (
	"strings"

	"github.com/legalizeme/counsel/pkg/types"
)

// Strategy fixes the section order, character budget, and rendering
// toggles for one response style.
type Strategy struct {
	Name              string
	Sections          []string
	MaxChars          int
	IncludeCitations  bool
	IncludeConfidence bool
	IncludeDisclaimer bool
	UseMarkdown       bool
}

func defaultStrategies() map[string]Strategy {
	return map[string]Strategy{
		"concise": {
			Name: "concise",
			Sections: []string{
				sectionExecutiveSummary, sectionKeyPoints,
				sectionImmediateActions, sectionCitations,
			},
			MaxChars:          800,
			IncludeCitations:  true,
			IncludeDisclaimer: true,
			UseMarkdown:       true,
		},
		"comprehensive": {
			Name: "comprehensive",
			Sections: []string{
				sectionExecutiveSummary, sectionLegalAnalysis,
				sectionReasoningChain, sectionLegalPrinciples,
				sectionCounterarguments, sectionPracticalImplications,
				sectionRelevantLaw, sectionCitations,
				sectionRecommendations, sectionConfidenceAssessment,
			},
			MaxChars:          2500,
			IncludeCitations:  true,
			IncludeConfidence: true,
			IncludeDisclaimer: true,
			UseMarkdown:       true,
		},
		"practical": {
			Name: "practical",
			Sections: []string{
				sectionExecutiveSummary, sectionNextSteps,
				sectionPracticalImplications, sectionRiskAssessment,
				sectionRecommendations, sectionCitations,
			},
			MaxChars:          1500,
			IncludeCitations:  true,
			IncludeDisclaimer: true,
			UseMarkdown:       true,
		},
		"technical": {
			Name: "technical",
			Sections: []string{
				sectionLegalAnalysis, sectionStatutoryProvisions,
				sectionCaseLaw, sectionComplianceRequirements,
				sectionTechnicalRecommendations, sectionCitations,
				sectionConfidenceAssessment,
			},
			MaxChars:          2000,
			IncludeCitations:  true,
			IncludeConfidence: true,
			IncludeDisclaimer: true,
		},
		"standard": {
			Name: "standard",
			Sections: []string{
				sectionExecutiveSummary, sectionLegalAnalysis,
				sectionKeyPoints, sectionCitations,
				sectionRecommendations, sectionConfidenceAssessment,
			},
			MaxChars:          1800,
			IncludeCitations:  true,
			IncludeConfidence: true,
			IncludeDisclaimer: true,
			UseMarkdown:       true,
		},
	}
}

// PreferenceKey is the context metadata key carrying the caller's
// response-style preference.
const PreferenceKey = "response_preference"

// technicalDomains get the technical response style by default.
var technicalDomains = []string{"employment", "contract"}

// selectStrategy picks the response style for a query. Rules are
// ordered; the first match wins.
func (f *Formatter) selectStrategy(explicit, query string, qctx types.QueryContext) Strategy {
	if s, ok := f.strategies[explicit]; ok {
		return s
	}
	if pref, ok := f.strategies[qctx.Metadata[PreferenceKey]]; ok {
		return pref
	}
	if qctx.Urgency == types.LevelHigh {
		return f.strategies["concise"]
	}
	if qctx.Complexity == types.LevelHigh {
		return f.strategies["comprehensive"]
	}
	lower := strings.ToLower(query)
	for _, p := range practicalPhrases {
		if strings.Contains(lower, p) {
			return f.strategies["practical"]
		}
	}
	for _, d := range technicalDomains {
		if qctx.HasDomain(d) {
			return f.strategies["technical"]
		}
	}
	return f.strategies["standard"]
}

// practicalPhrases signal a question asking for actionable guidance.
var practicalPhrases = []string{
	"how to", "how do i", "next steps", "what should i do",
	"what can i do", "steps to",
}
