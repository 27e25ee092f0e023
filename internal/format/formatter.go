// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package format assembles the final answer text from the earlier
// stages' structured output. Sections are built independently as pure
// functions of the input, concatenated in strategy order, and trimmed
// to the strategy's character budget. The stage is fully deterministic
// and makes no model calls.
package format

import (
	"fmt"
	"strings"
	"time"

	"github.com/legalizeme/counsel/pkg/types"
)

// TruncationNotice is appended when sections were dropped to meet the
// character budget.
const TruncationNotice = "[Response truncated due to length limits]"

// Input carries everything the earlier stages produced.
type Input struct {
	Query                 string
	Summary               string
	ReasoningChain        []string
	LegalPrinciples       []string
	Counterarguments      []string
	PracticalImplications []string
	Citations             []types.Citation
	KeyInsights           []string
	Confidence            float64
	ReasoningConfidence   float64
}

// QualityIndicators describe the assembled answer.
type QualityIndicators struct {
	WordCount    int
	CharCount    int
	SectionCount int

	HasCitations         bool
	HasLegalTerms        bool
	StructurallyAdequate bool
	HasReasoning         bool
	Substantial          bool
	WithinBudget         bool

	// Score is the share of the six boolean factors that hold.
	Score float64

	// Rating buckets Score into High, Medium, or Low.
	Rating string
}

// Result is the formatting stage output.
type Result struct {
	types.Meta

	Answer   string
	Sections []string
	Strategy string
	Quality  QualityIndicators
}

// Options adjust a single formatting pass.
type Options struct {
	// Strategy forces a named strategy, bypassing selection rules.
	Strategy string
}

// Formatter assembles answers per the selected response strategy.
type Formatter struct {
	strategies map[string]Strategy
}

func NewFormatter() *Formatter {
	return &Formatter{strategies: defaultStrategies()}
}

// Format builds the final answer. An empty summary is a validation
// failure; everything else renders, possibly with empty sections
// omitted.
func (f *Formatter) Format(in Input, qctx types.QueryContext, opts Options) Result {
	start := time.Now()

	if strings.TrimSpace(in.Summary) == "" {
		return Result{Meta: types.Meta{
			Status:  types.StatusFailure,
			Elapsed: time.Since(start),
			Err:     "summary is empty",
		}}
	}

	strategy := f.selectStrategy(opts.Strategy, in.Query, qctx)
	steps := []string{fmt.Sprintf("selected strategy %q (budget %d chars)", strategy.Name, strategy.MaxChars)}

	var rendered []string
	var included []string
	for _, name := range strategy.Sections {
		if name == sectionCitations && !strategy.IncludeCitations {
			continue
		}
		if name == sectionConfidenceAssessment && !strategy.IncludeConfidence {
			continue
		}
		body := buildSection(name, in)
		if body == "" {
			continue
		}
		rendered = append(rendered, header(name, strategy.UseMarkdown)+"\n"+body)
		included = append(included, name)
	}
	steps = append(steps, fmt.Sprintf("built %d sections", len(included)))

	var disclaimer string
	if strategy.IncludeDisclaimer {
		disclaimer = selectDisclaimer(qctx)
	}

	answer, truncated := assemble(rendered, disclaimer, strategy.MaxChars)
	if truncated {
		steps = append(steps, "truncated to budget")
	}

	quality := assessQuality(answer, included, in)
	quality.WithinBudget = !truncated
	quality.finalizeScore()

	return Result{
		Meta: types.Meta{
			Status:     types.StatusSuccess,
			Confidence: quality.Score,
			Elapsed:    time.Since(start),
			Steps:      steps,
		},
		Answer:   answer,
		Sections: included,
		Strategy: strategy.Name,
		Quality:  quality,
	}
}

// header renders a section heading, markdown or caps-case plain.
func header(name string, markdown bool) string {
	title := sectionTitles[name]
	if markdown {
		return "## " + title
	}
	return strings.ToUpper(title)
}

// Three fixed disclaimers, selected by urgency then complexity.
const (
	urgentDisclaimer = "This is general legal information, not legal advice. Given the time-sensitive nature of your situation, consult a qualified advocate immediately."

	complexDisclaimer = "This is general legal information, not legal advice. This matter involves multiple legal issues; engage a qualified advocate before acting."

	standardDisclaimer = "This is general legal information, not legal advice. Consult a qualified advocate for advice on your specific circumstances."
)

func selectDisclaimer(qctx types.QueryContext) string {
	switch {
	case qctx.Urgency == types.LevelHigh:
		return urgentDisclaimer
	case qctx.Complexity == types.LevelHigh:
		return complexDisclaimer
	default:
		return standardDisclaimer
	}
}

// assemble joins the rendered sections and disclaimer, enforcing the
// character budget by dropping whole sections from the end. The second
// return value reports whether anything was cut; when it was, the
// output ends with the truncation notice and still fits the budget.
func assemble(sections []string, disclaimer string, budget int) (string, bool) {
	join := func(parts []string) string {
		out := strings.Join(parts, "\n\n")
		if disclaimer != "" {
			out += "\n\n---\n" + disclaimer
		}
		return out
	}

	full := join(sections)
	if len(full) <= budget {
		return full, false
	}

	reserve := len("\n\n" + TruncationNotice)
	kept := sections
	for len(kept) > 0 && len(join(kept))+reserve > budget {
		kept = kept[:len(kept)-1]
	}

	var out string
	if len(kept) == 0 {
		// Even the first section alone is over budget: hard-cut it.
		cut := budget - reserve
		if cut < 0 {
			cut = 0
		}
		if len(sections[0]) < cut {
			cut = len(sections[0])
		}
		out = sections[0][:cut]
	} else {
		out = join(kept)
	}
	return out + "\n\n" + TruncationNotice, true
}

// legalTerms is the signal vocabulary the quality check looks for.
var legalTerms = []string{
	"act", "section", "court", "law", "legal", "statute", "constitution",
}

// assessQuality computes the six-factor quality score for the answer.
// WithinBudget is filled in by the caller.
func assessQuality(answer string, sections []string, in Input) QualityIndicators {
	words := strings.Fields(answer)
	lower := strings.ToLower(answer)

	q := QualityIndicators{
		WordCount:    len(words),
		CharCount:    len(answer),
		SectionCount: len(sections),

		HasCitations:         len(in.Citations) > 0,
		StructurallyAdequate: len(sections) >= 3,
		HasReasoning:         len(in.ReasoningChain) > 0,
		Substantial:          len(words) >= 100,
	}
	for _, term := range legalTerms {
		if strings.Contains(lower, term) {
			q.HasLegalTerms = true
			break
		}
	}
	return q
}

// finalizeScore aggregates the six boolean factors into [0,1] and
// buckets the result.
func (q *QualityIndicators) finalizeScore() {
	factors := []bool{
		q.HasCitations, q.HasLegalTerms, q.StructurallyAdequate,
		q.HasReasoning, q.Substantial, q.WithinBudget,
	}
	hit := 0
	for _, f := range factors {
		if f {
			hit++
		}
	}
	q.Score = float64(hit) / float64(len(factors))
	q.Rating = bucket(q.Score)
}
