// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package summarize condenses retrieved documents into a single answer
// draft. Documents are grouped by legal domain, each group is
// summarized through the model invoker, and the group summaries are
// merged. Every generative call has a templated fallback, so the stage
// degrades instead of failing when backends are down.
package summarize

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/legalizeme/counsel/internal/model"
	"github.com/legalizeme/counsel/pkg/types"
)

// Generator is the model-invoker capability the summarizer needs.
type Generator interface {
	Invoke(ctx context.Context, prompt string, opts ...model.Option) (model.Result, error)
}

// Strategy bundles the summarization parameters selected per query.
type Strategy struct {
	Name             string
	MaxWords         int
	IncludeCitations bool
	PreserveTerms    bool
	ExtractKeyPoints bool
}

func defaultStrategies() map[string]Strategy {
	return map[string]Strategy{
		"concise": {
			Name:             "concise",
			MaxWords:         300,
			IncludeCitations: true,
		},
		"focused": {
			Name:             "focused",
			MaxWords:         500,
			IncludeCitations: true,
			ExtractKeyPoints: true,
		},
		"technical": {
			Name:             "technical",
			MaxWords:         600,
			IncludeCitations: true,
			PreserveTerms:    true,
			ExtractKeyPoints: true,
		},
		"comprehensive": {
			Name:             "comprehensive",
			MaxWords:         800,
			IncludeCitations: true,
			PreserveTerms:    true,
			ExtractKeyPoints: true,
		},
	}
}

// maxDocsPerGroup caps each domain group; the highest-relevance
// documents are kept.
const maxDocsPerGroup = 5

// Result is the summarization stage output.
type Result struct {
	types.Meta

	Summary     string
	Citations   []types.Citation
	KeyInsights []string
	Strategy    string
}

// Options adjust a single summarization.
type Options struct {
	// Strategy forces a named strategy, bypassing selection rules.
	Strategy string
}

// Summarizer condenses document groups through a generative backend.
type Summarizer struct {
	gen        Generator
	strategies map[string]Strategy
}

func NewSummarizer(gen Generator) *Summarizer {
	return &Summarizer{
		gen:        gen,
		strategies: defaultStrategies(),
	}
}

// selectStrategy picks the summarization strategy. Rules are ordered;
// the first match wins.
func (s *Summarizer) selectStrategy(explicit string, qctx types.QueryContext) Strategy {
	if st, ok := s.strategies[explicit]; ok {
		return st
	}
	if qctx.Urgency == types.LevelHigh {
		return s.strategies["concise"]
	}
	if qctx.HasDomain("technical") {
		return s.strategies["technical"]
	}
	if qctx.Complexity == types.LevelHigh {
		return s.strategies["comprehensive"]
	}
	return s.strategies["focused"]
}

// Summarize produces a combined summary of the documents. An empty
// document list is valid and yields a fixed "no documents" summary.
func (s *Summarizer) Summarize(ctx context.Context, docs []types.RetrievedDocument, query string, qctx types.QueryContext, opts Options) Result {
	start := time.Now()
	strategy := s.selectStrategy(opts.Strategy, qctx)
	steps := []string{fmt.Sprintf("selected strategy %q (max %d words)", strategy.Name, strategy.MaxWords)}

	if len(docs) == 0 {
		summary := noDocumentsSummary(query)
		return Result{
			Meta: types.Meta{
				Status:     types.StatusSuccess,
				Confidence: confidence(summary, 0, 0, 0),
				Elapsed:    time.Since(start),
				Steps:      append(steps, "no documents retrieved, using fallback summary"),
			},
			Summary:  summary,
			Strategy: strategy.Name,
		}
	}

	groups, order := groupByDomain(docs)
	steps = append(steps, fmt.Sprintf("grouped %d documents into %d domains", len(docs), len(order)))

	var groupSummaries []string
	var grouped []types.RetrievedDocument
	for _, domain := range order {
		group := groups[domain]
		grouped = append(grouped, group...)

		summary, generated := s.summarizeGroup(ctx, domain, group, query, strategy)
		groupSummaries = append(groupSummaries, summary)
		if generated {
			steps = append(steps, fmt.Sprintf("summarized %d %s documents", len(group), domain))
		} else {
			steps = append(steps, fmt.Sprintf("fallback summary for %s group", domain))
		}
	}

	combined := groupSummaries[0]
	if len(groupSummaries) > 1 {
		var generated bool
		combined, generated = s.merge(ctx, groupSummaries, query, strategy)
		if generated {
			steps = append(steps, "merged group summaries")
		} else {
			steps = append(steps, "merge failed, concatenating group summaries")
		}
	}
	combined = truncateWords(combined, strategy.MaxWords)

	var citations []types.Citation
	if strategy.IncludeCitations {
		citations = extractCitations(grouped)
	}

	var insights []string
	if strategy.ExtractKeyPoints {
		insights = keyInsights(groupSummaries)
	}

	sources := make([]string, len(grouped))
	for i, d := range grouped {
		sources[i] = d.ID
	}

	return Result{
		Meta: types.Meta{
			Status:     types.StatusSuccess,
			Confidence: confidence(combined, len(grouped), len(citations), len(order)),
			Elapsed:    time.Since(start),
			Steps:      steps,
			Sources:    sources,
		},
		Summary:     combined,
		Citations:   citations,
		KeyInsights: insights,
		Strategy:    strategy.Name,
	}
}

// groupByDomain buckets documents by their primary domain, capped at
// maxDocsPerGroup highest-relevance documents each. The returned order
// preserves first appearance so grouping is deterministic.
func groupByDomain(docs []types.RetrievedDocument) (map[string][]types.RetrievedDocument, []string) {
	groups := make(map[string][]types.RetrievedDocument)
	var order []string
	for _, d := range docs {
		primary := classifyDomains(d)[0]
		if _, ok := groups[primary]; !ok {
			order = append(order, primary)
		}
		groups[primary] = append(groups[primary], d)
	}
	for domain, group := range groups {
		sort.SliceStable(group, func(i, j int) bool {
			return group[i].RelevanceScore > group[j].RelevanceScore
		})
		if len(group) > maxDocsPerGroup {
			group = group[:maxDocsPerGroup]
		}
		groups[domain] = group
	}
	return groups, order
}

// summarizeGroup invokes the model for one domain group. The second
// return value reports whether the summary was generated (true) or
// templated after a backend failure (false).
func (s *Summarizer) summarizeGroup(ctx context.Context, domain string, group []types.RetrievedDocument, query string, strategy Strategy) (string, bool) {
	var block strings.Builder
	for _, d := range group {
		fmt.Fprintf(&block, "[%s] %s\n%s\n\n", d.Source, d.Title, d.Excerpt)
	}

	var terms string
	if strategy.PreserveTerms {
		terms = " Preserve statutory section numbers and legal terms of art exactly as they appear."
	}
	prompt := fmt.Sprintf(
		"You are a Kenyan legal research assistant. %s%s\n\nQuestion: %s\n\nDocuments:\n%sWrite a summary of at most %d words.",
		domainPrompt(domain), terms, query, block.String(), strategy.MaxWords)

	res, err := s.gen.Invoke(ctx, prompt)
	if err != nil {
		return templatedGroupSummary(domain, group), false
	}
	return strings.TrimSpace(res.Text), true
}

// templatedGroupSummary is the non-generative substitute used when the
// model call for a group fails.
func templatedGroupSummary(domain string, group []types.RetrievedDocument) string {
	titles := make([]string, len(group))
	for i, d := range group {
		titles[i] = d.Title
	}
	return fmt.Sprintf("On %s law, %d relevant sources were found: %s. Consult these sources directly for the governing provisions.",
		domain, len(group), strings.Join(titles, "; "))
}

// merge combines per-group summaries into one coherent answer, falling
// back to concatenation if the model call fails.
func (s *Summarizer) merge(ctx context.Context, summaries []string, query string, strategy Strategy) (string, bool) {
	prompt := fmt.Sprintf(
		"Merge the following partial summaries into one coherent answer to the question, at most %d words.\n\nQuestion: %s\n\nPartial summaries:\n%s",
		strategy.MaxWords, query, strings.Join(summaries, "\n---\n"))

	res, err := s.gen.Invoke(ctx, prompt)
	if err != nil {
		return strings.Join(summaries, "\n\n"), false
	}
	return strings.TrimSpace(res.Text), true
}

func noDocumentsSummary(query string) string {
	return fmt.Sprintf("No supporting documents were found in the corpus for the question %q. The answer below cannot cite specific Kenyan statutes or case law; consider rephrasing the question or consulting an advocate.", query)
}

// extractCitations synthesizes a formal citation for every grouped
// document. Extraction is deterministic: same documents, same output.
func extractCitations(docs []types.RetrievedDocument) []types.Citation {
	citations := make([]types.Citation, 0, len(docs))
	for _, d := range docs {
		citations = append(citations, types.Citation{
			Title:          d.Title,
			Source:         d.Source,
			URL:            d.URL,
			Type:           d.Type,
			Text:           formalCitation(d),
			RelevanceScore: d.RelevanceScore,
		})
	}
	return citations
}

func formalCitation(d types.RetrievedDocument) string {
	switch d.Type {
	case types.DocLegislation:
		return d.Title + ", Laws of Kenya"
	case types.DocCaseLaw:
		return d.Title + ", eKLR"
	case types.DocGazette:
		return "Kenya Gazette: " + d.Title
	default:
		return fmt.Sprintf("%s (%s)", d.Title, d.Source)
	}
}

// insightKeywords signal legally significant sentences.
var insightKeywords = []string{
	"must", "shall", "required", "liable", "entitled", "prohibited",
	"obligation", "may not", "unlawful",
}

const (
	maxInsightsPerDomain = 3
	maxInsightsTotal     = 10
)

// keyInsights extracts legally significant sentences from the group
// summaries, capped per domain group and overall, deduplicated
// preserving order.
func keyInsights(groupSummaries []string) []string {
	seen := make(map[string]bool)
	var insights []string
	for _, summary := range groupSummaries {
		taken := 0
		for _, sentence := range splitSentences(summary) {
			if taken >= maxInsightsPerDomain || len(insights) >= maxInsightsTotal {
				break
			}
			lower := strings.ToLower(sentence)
			hit := false
			for _, kw := range insightKeywords {
				if strings.Contains(lower, kw) {
					hit = true
					break
				}
			}
			if !hit || seen[lower] {
				continue
			}
			seen[lower] = true
			insights = append(insights, sentence)
			taken++
		}
	}
	return insights
}

// splitSentences is a simple terminator-based splitter; it is enough
// for model output, which is prose.
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

// truncateWords enforces the strategy's word budget.
func truncateWords(text string, maxWords int) string {
	words := strings.Fields(text)
	if maxWords <= 0 || len(words) <= maxWords {
		return text
	}
	return strings.Join(words[:maxWords], " ")
}

// confidence scores the summary: 0.4 base, up to 0.3 for document
// count (cap 5), up to 0.2 for citations (cap 3), up to 0.1 for domain
// diversity (cap 2). A summary under 50 characters scores a flat 0.1.
func confidence(summary string, docCount, citationCount, domainCount int) float64 {
	if len(strings.TrimSpace(summary)) < 50 {
		return 0.1
	}
	score := 0.4
	score += 0.3 * math.Min(float64(docCount), maxDocsPerGroup) / maxDocsPerGroup
	score += 0.2 * math.Min(float64(citationCount), 3) / 3
	score += 0.1 * math.Min(float64(domainCount), 2) / 2
	return types.Clamp01(score)
}
