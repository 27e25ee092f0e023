// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package retrieve selects a retrieval strategy per query, runs the
// enabled search methods against the corpus index, and returns ranked,
// deduplicated documents with a confidence score.
package retrieve

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/legalizeme/counsel/pkg/types"
)

// Searcher is the document index capability every retriever needs.
type Searcher interface {
	SemanticSearch(ctx context.Context, query string, limit int) ([]types.RetrievedDocument, error)
	KeywordSearch(ctx context.Context, query string, limit int) ([]types.RetrievedDocument, error)
}

// HybridSearcher is the optional capability for indexes that support a
// combined method. Indexes that lack it simply skip the hybrid pass.
type HybridSearcher interface {
	HybridSearch(ctx context.Context, query string, limit int) ([]types.RetrievedDocument, error)
}

// Result is the retrieval stage output.
type Result struct {
	types.Meta

	Documents []types.RetrievedDocument
	Strategy  string
}

// Options adjust a single retrieval.
type Options struct {
	// Strategy forces a named strategy, bypassing selection rules.
	Strategy string

	// MaxSources caps the result set below the strategy's own cap.
	MaxSources int
}

// Retriever runs strategy-selected searches against a document index.
type Retriever struct {
	index      Searcher
	hybrid     HybridSearcher // nil when the index lacks the capability
	strategies map[string]Strategy
}

// NewRetriever builds a retriever over the given index. Hybrid support
// is detected once at construction.
func NewRetriever(index Searcher) *Retriever {
	r := &Retriever{
		index:      index,
		strategies: defaultStrategies(),
	}
	if h, ok := index.(HybridSearcher); ok {
		r.hybrid = h
	}
	return r
}

// Retrieve searches the corpus for the query. An empty result is valid
// (success with confidence 0); an index error is a stage failure.
func (r *Retriever) Retrieve(ctx context.Context, query string, qctx types.QueryContext, opts Options) Result {
	start := time.Now()

	if strings.TrimSpace(query) == "" {
		return Result{Meta: types.Meta{
			Status:  types.StatusFailure,
			Elapsed: time.Since(start),
			Err:     "query is empty",
		}}
	}

	strategy := r.selectStrategy(opts.Strategy, qctx)
	maxSources := strategy.MaxSources
	if opts.MaxSources > 0 && opts.MaxSources < maxSources {
		maxSources = opts.MaxSources
	}

	steps := []string{fmt.Sprintf("selected strategy %q (threshold %.2f, max %d)", strategy.Name, strategy.Threshold, maxSources)}

	// Each enabled method is awaited in turn; the fallback order of
	// documents is resolved by dedup and re-ranking below.
	var all []types.RetrievedDocument
	for _, method := range strategy.Methods {
		docs, err := r.runMethod(ctx, method, query, maxSources)
		if err != nil {
			if err == errHybridUnsupported {
				steps = append(steps, "index lacks hybrid search, skipping")
				continue
			}
			return Result{
				Meta: types.Meta{
					Status:  types.StatusFailure,
					Elapsed: time.Since(start),
					Err:     fmt.Sprintf("retrieval failed (%s): %v", method, err),
					Steps:   steps,
				},
				Strategy: strategy.Name,
			}
		}
		steps = append(steps, fmt.Sprintf("%s search returned %d documents", method, len(docs)))
		all = append(all, docs...)
	}

	deduped, removed := deduplicate(all)
	if removed > 0 {
		steps = append(steps, fmt.Sprintf("removed %d duplicates", removed))
	}

	var kept []types.RetrievedDocument
	for _, d := range deduped {
		if d.RelevanceScore >= strategy.Threshold {
			kept = append(kept, d)
		}
	}

	if strategy.Diversify {
		kept = diversify(kept)
	}

	sort.SliceStable(kept, func(i, j int) bool {
		return kept[i].RelevanceScore > kept[j].RelevanceScore
	})
	if len(kept) > maxSources {
		kept = kept[:maxSources]
	}

	sources := make([]string, len(kept))
	for i, d := range kept {
		sources[i] = d.ID
	}

	return Result{
		Meta: types.Meta{
			Status:     types.StatusSuccess,
			Confidence: confidence(kept),
			Elapsed:    time.Since(start),
			Steps:      steps,
			Sources:    sources,
		},
		Documents: kept,
		Strategy:  strategy.Name,
	}
}

var errHybridUnsupported = fmt.Errorf("hybrid search unsupported")

func (r *Retriever) runMethod(ctx context.Context, method Method, query string, limit int) ([]types.RetrievedDocument, error) {
	switch method {
	case MethodSemantic:
		return r.index.SemanticSearch(ctx, query, limit)
	case MethodKeyword:
		return r.index.KeywordSearch(ctx, query, limit)
	case MethodHybrid:
		if r.hybrid == nil {
			return nil, errHybridUnsupported
		}
		return r.hybrid.HybridSearch(ctx, query, limit)
	default:
		return nil, fmt.Errorf("unknown method %q", method)
	}
}

// deduplicate merges documents that share an ID or, failing that, a
// normalized title. The surviving entry keeps the higher score.
func deduplicate(docs []types.RetrievedDocument) ([]types.RetrievedDocument, int) {
	seen := make(map[string]int) // dedup key → index in deduped
	var deduped []types.RetrievedDocument
	removed := 0

	for _, d := range docs {
		key := "id:" + d.ID
		if d.ID == "" {
			key = "title:" + normalizeTitle(d.Title)
		}
		if idx, ok := seen[key]; ok {
			if d.RelevanceScore > deduped[idx].RelevanceScore {
				deduped[idx].RelevanceScore = d.RelevanceScore
			}
			removed++
			continue
		}
		seen[key] = len(deduped)
		deduped = append(deduped, d)
	}
	return deduped, removed
}

// normalizeTitle lowercases and collapses whitespace for title dedup.
func normalizeTitle(title string) string {
	return strings.Join(strings.Fields(strings.ToLower(title)), " ")
}

// diversify caps the number of documents per source at
// max(2, total/numSources) so a single collection cannot dominate.
func diversify(docs []types.RetrievedDocument) []types.RetrievedDocument {
	if len(docs) == 0 {
		return docs
	}

	bySource := make(map[string][]types.RetrievedDocument)
	var order []string
	for _, d := range docs {
		if _, ok := bySource[d.Source]; !ok {
			order = append(order, d.Source)
		}
		bySource[d.Source] = append(bySource[d.Source], d)
	}

	perSource := len(docs) / len(bySource)
	if perSource < 2 {
		perSource = 2
	}

	var out []types.RetrievedDocument
	for _, src := range order {
		group := bySource[src]
		sort.SliceStable(group, func(i, j int) bool {
			return group[i].RelevanceScore > group[j].RelevanceScore
		})
		if len(group) > perSource {
			group = group[:perSource]
		}
		out = append(out, group...)
	}
	return out
}

// confidence scores the retrieval: average relevance, a diversity bonus
// up to 0.2 (unique sources / 3, capped), and a 0.1 penalty when fewer
// than 3 documents survive. Zero documents score 0.
func confidence(docs []types.RetrievedDocument) float64 {
	if len(docs) == 0 {
		return 0
	}

	var sum float64
	sources := make(map[string]bool)
	for _, d := range docs {
		sum += d.RelevanceScore
		sources[d.Source] = true
	}
	score := sum / float64(len(docs))

	diversity := float64(len(sources)) / 3.0
	if diversity > 1 {
		diversity = 1
	}
	score += 0.2 * diversity

	if len(docs) < 3 {
		score -= 0.1
	}
	return types.Clamp01(score)
}
