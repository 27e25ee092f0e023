// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package format

import (
	"fmt"
	"strings"

	"github.com/legalizeme/counsel/pkg/types"
)

// Section names. Each strategy orders a subset of these.
const (
	sectionExecutiveSummary         = "executive_summary"
	sectionLegalAnalysis            = "legal_analysis"
	sectionReasoningChain           = "reasoning_chain"
	sectionLegalPrinciples          = "legal_principles"
	sectionCounterarguments         = "counterarguments"
	sectionPracticalImplications    = "practical_implications"
	sectionRelevantLaw              = "relevant_law"
	sectionCitations                = "citations"
	sectionRecommendations          = "recommendations"
	sectionConfidenceAssessment     = "confidence_assessment"
	sectionKeyPoints                = "key_points"
	sectionImmediateActions         = "immediate_actions"
	sectionComplianceRequirements   = "compliance_requirements"
	sectionRiskAssessment           = "risk_assessment"
	sectionNextSteps                = "next_steps"
	sectionStatutoryProvisions      = "statutory_provisions"
	sectionCaseLaw                  = "case_law"
	sectionTechnicalRecommendations = "technical_recommendations"
)

// sectionTitles maps section names to display headings.
var sectionTitles = map[string]string{
	sectionExecutiveSummary:         "Executive Summary",
	sectionLegalAnalysis:            "Legal Analysis",
	sectionReasoningChain:           "Reasoning",
	sectionLegalPrinciples:          "Legal Principles",
	sectionCounterarguments:         "Counterarguments",
	sectionPracticalImplications:    "Practical Implications",
	sectionRelevantLaw:              "Relevant Law",
	sectionCitations:                "Citations",
	sectionRecommendations:          "Recommendations",
	sectionConfidenceAssessment:     "Confidence Assessment",
	sectionKeyPoints:                "Key Points",
	sectionImmediateActions:         "Immediate Actions",
	sectionComplianceRequirements:   "Compliance Requirements",
	sectionRiskAssessment:           "Risk Assessment",
	sectionNextSteps:                "Next Steps",
	sectionStatutoryProvisions:      "Statutory Provisions",
	sectionCaseLaw:                  "Case Law",
	sectionTechnicalRecommendations: "Technical Recommendations",
}

// buildSection renders one section body from the shared input. Every
// builder is a pure function of the input; an empty body means the
// section is omitted. Assembly is therefore deterministic for a given
// input.
func buildSection(name string, in Input) string {
	switch name {
	case sectionExecutiveSummary:
		return executiveSummary(in.Summary)
	case sectionLegalAnalysis:
		return strings.TrimSpace(in.Summary)
	case sectionReasoningChain:
		return numberedList(in.ReasoningChain)
	case sectionLegalPrinciples:
		return bulletList(in.LegalPrinciples)
	case sectionCounterarguments:
		return bulletList(in.Counterarguments)
	case sectionPracticalImplications:
		return bulletList(in.PracticalImplications)
	case sectionRelevantLaw, sectionStatutoryProvisions:
		return citationList(in.Citations, types.DocLegislation)
	case sectionCaseLaw:
		return citationList(in.Citations, types.DocCaseLaw)
	case sectionCitations:
		return citationList(in.Citations, "")
	case sectionRecommendations, sectionTechnicalRecommendations:
		return bulletList(recommendations(in.PracticalImplications))
	case sectionConfidenceAssessment:
		return confidenceAssessment(in.Confidence, in.ReasoningConfidence)
	case sectionKeyPoints:
		return bulletList(in.KeyInsights)
	case sectionImmediateActions:
		return numberedList(firstN(in.PracticalImplications, 3))
	case sectionComplianceRequirements:
		return bulletList(obligations(in.KeyInsights))
	case sectionRiskAssessment:
		return bulletList(in.Counterarguments)
	case sectionNextSteps:
		return numberedList(in.PracticalImplications)
	default:
		return ""
	}
}

// executiveSummary truncates the summary to at most 3 sentences when
// it runs over 300 characters.
func executiveSummary(summary string) string {
	summary = strings.TrimSpace(summary)
	if len(summary) <= 300 {
		return summary
	}
	sentences := splitSentences(summary)
	if len(sentences) > 3 {
		sentences = sentences[:3]
	}
	return strings.Join(sentences, " ")
}

// recommendations filters implications for modal-obligation language,
// falling back to the first three when none match.
func recommendations(implications []string) []string {
	var out []string
	for _, imp := range implications {
		if containsModal(imp) {
			out = append(out, imp)
		}
	}
	if len(out) == 0 {
		out = firstN(implications, 3)
	}
	return out
}

// obligations keeps insights that state a requirement.
func obligations(insights []string) []string {
	var out []string
	for _, ins := range insights {
		lower := strings.ToLower(ins)
		if strings.Contains(lower, "must") || strings.Contains(lower, "shall") ||
			strings.Contains(lower, "required") {
			out = append(out, ins)
		}
	}
	return out
}

// confidenceAssessment buckets the higher of the two confidence scores
// into High, Medium, or Low at the 0.8 and 0.6 thresholds.
func confidenceAssessment(confidence, reasoningConfidence float64) string {
	top := confidence
	if reasoningConfidence > top {
		top = reasoningConfidence
	}
	return fmt.Sprintf("%s confidence (%.2f) in this analysis based on the sources consulted.", bucket(top), top)
}

func bucket(score float64) string {
	switch {
	case score >= 0.8:
		return "High"
	case score >= 0.6:
		return "Medium"
	default:
		return "Low"
	}
}

func citationList(citations []types.Citation, only types.DocumentType) string {
	var lines []string
	for _, c := range citations {
		if only != "" && c.Type != only {
			continue
		}
		lines = append(lines, c.Text)
	}
	return numberedList(lines)
}

func numberedList(items []string) string {
	var b strings.Builder
	for i, item := range items {
		fmt.Fprintf(&b, "%d. %s\n", i+1, item)
	}
	return strings.TrimRight(b.String(), "\n")
}

func bulletList(items []string) string {
	var b strings.Builder
	for _, item := range items {
		fmt.Fprintf(&b, "- %s\n", item)
	}
	return strings.TrimRight(b.String(), "\n")
}

func firstN(items []string, n int) []string {
	if len(items) > n {
		return items[:n]
	}
	return items
}

var modalWords = []string{
	"should", "must", "need to", "needs to", "ought to", "required to",
	"advisable",
}

func containsModal(line string) bool {
	lower := strings.ToLower(line)
	for _, m := range modalWords {
		if strings.Contains(lower, m) {
			return true
		}
	}
	return false
}

func splitSentences(text string) []string {
	var sentences []string
	var current strings.Builder
	for _, r := range text {
		current.WriteRune(r)
		if r == '.' || r == '!' || r == '?' {
			if s := strings.TrimSpace(current.String()); s != "" {
				sentences = append(sentences, s)
			}
			current.Reset()
		}
	}
	if s := strings.TrimSpace(current.String()); s != "" {
		sentences = append(sentences, s)
	}
	return sentences
}
