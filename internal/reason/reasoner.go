// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package reason turns the summarizer's draft into a structured legal
// analysis: a step-by-step reasoning chain, extracted principles, and,
// strategy permitting, counterarguments and practical implications.
// Every generative call has a fixed fallback, so the stage degrades
// instead of failing when backends are down.
package reason

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/legalizeme/counsel/internal/model"
	"github.com/legalizeme/counsel/pkg/types"
)

// Generator is the model-invoker capability the reasoner needs.
type Generator interface {
	Invoke(ctx context.Context, prompt string, opts ...model.Option) (model.Result, error)
}

// Result is the reasoning stage output.
type Result struct {
	types.Meta

	ReasoningChain        []string
	LegalPrinciples       []string
	Counterarguments      []string
	PracticalImplications []string
	Strategy              string
}

// Options adjust a single reasoning pass.
type Options struct {
	// Strategy forces a named strategy, bypassing selection rules.
	Strategy string
}

// Reasoner produces the reasoning chain through a generative backend.
type Reasoner struct {
	gen        Generator
	strategies map[string]Strategy
}

func NewReasoner(gen Generator) *Reasoner {
	return &Reasoner{
		gen:        gen,
		strategies: defaultStrategies(),
	}
}

// Reason analyzes the question, builds a reasoning chain over the
// summary and citations, and extracts principles, counterarguments,
// and implications per the selected strategy.
func (r *Reasoner) Reason(ctx context.Context, query, summary string, citations []types.Citation, keyInsights []string, qctx types.QueryContext, opts Options) Result {
	start := time.Now()
	strategy := r.selectStrategy(opts.Strategy, query, qctx)
	steps := []string{fmt.Sprintf("selected strategy %q (max %d steps)", strategy.Name, strategy.MaxSteps)}

	analysis, generated := r.analyzeQuestion(ctx, query, qctx)
	if generated {
		steps = append(steps, "analyzed question structure")
	} else {
		steps = append(steps, "question analysis failed, using context domains")
	}

	reasoningCtx := buildReasoningContext(summary, keyInsights, citations, analysis)
	chain, generated := r.reasoningChain(ctx, query, reasoningCtx, strategy)
	if generated {
		steps = append(steps, fmt.Sprintf("built reasoning chain of %d steps", len(chain)))
	} else {
		steps = append(steps, "chain generation failed, using fallback skeleton")
	}

	principles := extractPrinciples(chain)
	if len(principles) > 0 {
		steps = append(steps, fmt.Sprintf("extracted %d legal principles", len(principles)))
	}

	var counters, implications []string
	if strategy.Counterarguments {
		counters = r.counterarguments(ctx, query, reasoningCtx)
	}
	if strategy.Implications {
		implications = r.implications(ctx, query, reasoningCtx)
	}

	return Result{
		Meta: types.Meta{
			Status:     types.StatusSuccess,
			Confidence: confidence(chain, principles),
			Elapsed:    time.Since(start),
			Steps:      steps,
		},
		ReasoningChain:        chain,
		LegalPrinciples:       principles,
		Counterarguments:      counters,
		PracticalImplications: implications,
		Strategy:              strategy.Name,
	}
}

// analyzeQuestion asks the model for an issue/domain/concepts reading
// of the question. The second return value reports whether the model
// produced it; on failure a fixed structure built from the query
// context is used.
func (r *Reasoner) analyzeQuestion(ctx context.Context, query string, qctx types.QueryContext) (QuestionAnalysis, bool) {
	prompt := fmt.Sprintf(
		"Analyze this Kenyan legal question. Respond with exactly four lines:\nIssue: <the central legal issue>\nDomain: <the legal domain>\nConcepts: <comma-separated legal concepts>\nComplexity: <low, medium, or high>\n\nQuestion: %s",
		query)

	res, err := r.gen.Invoke(ctx, prompt)
	if err == nil {
		if a := parseAnalysis(res.Text); !a.empty() {
			return a, true
		}
	}
	return QuestionAnalysis{
		Issue:      query,
		Domain:     qctx.PrimaryDomain(),
		Concepts:   qctx.Domains,
		Complexity: string(qctx.Complexity),
	}, false
}

// buildReasoningContext assembles the text block the chain prompt
// reasons over: summary, key insights, citations, and the primary
// sources for the detected domain.
func buildReasoningContext(summary string, keyInsights []string, citations []types.Citation, analysis QuestionAnalysis) string {
	var b strings.Builder
	b.WriteString("Summary:\n")
	b.WriteString(summary)
	b.WriteString("\n")

	if len(keyInsights) > 0 {
		b.WriteString("\nKey insights:\n")
		for _, ins := range keyInsights {
			fmt.Fprintf(&b, "- %s\n", ins)
		}
	}
	if len(citations) > 0 {
		b.WriteString("\nAuthorities:\n")
		for _, c := range citations {
			fmt.Fprintf(&b, "- %s\n", c.Text)
		}
	}
	if sources := primarySources(analysis.Domain); sources != "" {
		fmt.Fprintf(&b, "\nPrimary sources for %s law: %s\n", analysis.Domain, sources)
	}
	return b.String()
}

// primarySources names the governing statutes per domain.
func primarySources(domain string) string {
	switch domain {
	case "employment":
		return "Employment Act 2007, Labour Relations Act 2007, Work Injury Benefits Act 2007"
	case "land":
		return "Land Act 2012, Land Registration Act 2012, Constitution of Kenya 2010 Chapter 5"
	case "family":
		return "Marriage Act 2014, Matrimonial Property Act 2013, Children Act 2022"
	case "commercial":
		return "Companies Act 2015, Insolvency Act 2015, Law of Contract Act (Cap 23)"
	case "criminal":
		return "Penal Code (Cap 63), Criminal Procedure Code (Cap 75)"
	case "constitutional":
		return "Constitution of Kenya 2010"
	default:
		return ""
	}
}

// reasoningChain asks the model for a step-by-step analysis and parses
// it into discrete steps. On failure the fixed skeleton is returned.
func (r *Reasoner) reasoningChain(ctx context.Context, query, reasoningCtx string, strategy Strategy) ([]string, bool) {
	var precedents string
	if strategy.Precedents {
		precedents = " Reference decided cases where the context provides them."
	}
	prompt := fmt.Sprintf(
		"Reason step by step about this Kenyan legal question in at most %d numbered steps.%s\n\nQuestion: %s\n\nContext:\n%s",
		strategy.MaxSteps, precedents, query, reasoningCtx)

	res, err := r.gen.Invoke(ctx, prompt)
	if err != nil {
		return fallbackChain(), false
	}
	chain := parseSteps(res.Text)
	if len(chain) == 0 {
		return fallbackChain(), false
	}
	if len(chain) > strategy.MaxSteps {
		chain = chain[:strategy.MaxSteps]
	}
	return chain, true
}

// fallbackChain is the generic reasoning skeleton used when chain
// generation fails.
func fallbackChain() []string {
	return []string{
		"Identify the central legal issue raised by the question.",
		"Determine the Kenyan statutes and regulations that govern the issue.",
		"Examine how Kenyan courts have applied those provisions in comparable situations.",
		"Apply the governing provisions to the facts presented in the question.",
		"Consider procedural requirements and limitation periods that affect the claim.",
		"Conclude on the likely legal position, noting where professional advice is needed.",
	}
}

const (
	maxCounterarguments = 5
	maxImplications     = 7
)

func (r *Reasoner) counterarguments(ctx context.Context, query, reasoningCtx string) []string {
	prompt := fmt.Sprintf(
		"List the strongest counterarguments to the analysis below, one per line as dashes.\n\nQuestion: %s\n\n%s",
		query, reasoningCtx)
	res, err := r.gen.Invoke(ctx, prompt)
	if err == nil {
		if out := parseBullets(res.Text, maxCounterarguments, false); len(out) > 0 {
			return out
		}
	}
	return []string{
		"The opposing party may dispute the facts or produce contrary documentary evidence.",
		"A court may interpret the governing provisions differently on these facts.",
	}
}

func (r *Reasoner) implications(ctx context.Context, query, reasoningCtx string) []string {
	prompt := fmt.Sprintf(
		"List the practical implications and recommended actions arising from the analysis below, one per line as dashes.\n\nQuestion: %s\n\n%s",
		query, reasoningCtx)
	res, err := r.gen.Invoke(ctx, prompt)
	if err == nil {
		if out := parseBullets(res.Text, maxImplications, true); len(out) > 0 {
			return out
		}
	}
	return []string{
		"Preserve all relevant documents and correspondence before taking further action.",
		"Consult a qualified advocate to confirm the position on the specific facts.",
	}
}

// legalSignals are words whose density indicates substantive legal
// reasoning.
var legalSignals = []string{
	"section", "act", "held", "court", "therefore", "pursuant",
	"statute", "provision", "precedent", "liable", "shall",
}

// expectedSignalDensity is one legal-signal word per 20 words.
const expectedSignalDensity = 1.0 / 20.0

// confidence scores the reasoning: 0.3 base, up to 0.3 for chain
// length (optimal 5 steps), up to 0.2 for principle count (optimal 3),
// up to 0.2 for legal-signal density in the chain text.
func confidence(chain, principles []string) float64 {
	score := 0.3

	chainFactor := 1 - math.Abs(float64(len(chain))-5)/5
	if chainFactor < 0 {
		chainFactor = 0
	}
	score += 0.3 * chainFactor

	principleFactor := 1 - math.Abs(float64(len(principles))-3)/3
	if principleFactor < 0 {
		principleFactor = 0
	}
	score += 0.2 * principleFactor

	score += 0.2 * lexicalQuality(strings.Join(chain, " "))

	return types.Clamp01(score)
}

// lexicalQuality is the ratio of legal-signal words to total words,
// normalized against the expected density and capped at 1.
func lexicalQuality(text string) float64 {
	words := strings.Fields(strings.ToLower(text))
	if len(words) == 0 {
		return 0
	}
	signals := 0
	for _, w := range words {
		w = strings.Trim(w, ".,;:()\"'")
		for _, s := range legalSignals {
			if w == s {
				signals++
				break
			}
		}
	}
	density := float64(signals) / float64(len(words))
	quality := density / expectedSignalDensity
	if quality > 1 {
		quality = 1
	}
	return quality
}
