// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package summarize

import (
	"context"
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/legalizeme/counsel/internal/model"
	"github.com/legalizeme/counsel/pkg/types"
)

type fakeGenerator struct {
	text    string
	err     error
	prompts []string
}

func (f *fakeGenerator) Invoke(_ context.Context, prompt string, _ ...model.Option) (model.Result, error) {
	f.prompts = append(f.prompts, prompt)
	if f.err != nil {
		return model.Result{}, f.err
	}
	return model.Result{Text: f.text, Backend: "fake"}, nil
}

func empDoc(id string, score float64) types.RetrievedDocument {
	return types.RetrievedDocument{
		ID:             id,
		Title:          "Employment Act Section " + id,
		Excerpt:        "An employer shall give notice before termination.",
		Source:         "kenya_law",
		Type:           types.DocLegislation,
		RelevanceScore: score,
		Domains:        []string{"employment"},
	}
}

func landDoc(id string, score float64) types.RetrievedDocument {
	return types.RetrievedDocument{
		ID:             id,
		Title:          "Land Registration Act Section " + id,
		Excerpt:        "The registrar must maintain the register of titles.",
		Source:         "kenya_law",
		Type:           types.DocLegislation,
		RelevanceScore: score,
		Domains:        []string{"land"},
	}
}

func TestSelectStrategy(t *testing.T) {
	s := NewSummarizer(&fakeGenerator{})

	tests := []struct {
		name     string
		explicit string
		qctx     types.QueryContext
		want     string
	}{
		{"explicit wins", "comprehensive", types.QueryContext{Urgency: types.LevelHigh}, "comprehensive"},
		{"urgency high", "", types.QueryContext{Urgency: types.LevelHigh}, "concise"},
		{"technical domain", "", types.QueryContext{Domains: []string{"technical"}}, "technical"},
		{"complexity high", "", types.QueryContext{Complexity: types.LevelHigh}, "comprehensive"},
		{"default", "", types.QueryContext{}, "focused"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := s.selectStrategy(tt.explicit, tt.qctx); got.Name != tt.want {
				t.Errorf("selectStrategy() = %q, want %q", got.Name, tt.want)
			}
		})
	}
}

func TestSummarizeSingleGroup(t *testing.T) {
	gen := &fakeGenerator{text: "An employer must give one month of notice before terminating employment under the Employment Act."}
	s := NewSummarizer(gen)

	res := s.Summarize(context.Background(), []types.RetrievedDocument{empDoc("35", 0.9), empDoc("36", 0.8)},
		"What notice is required before termination?", types.QueryContext{}, Options{})

	if !res.OK() {
		t.Fatalf("status = %s, err = %s", res.Status, res.Err)
	}
	if len(gen.prompts) != 1 {
		t.Fatalf("prompts = %d, want 1 (single group, no merge)", len(gen.prompts))
	}
	if !strings.Contains(gen.prompts[0], "Employment Act Section 35") {
		t.Error("prompt must carry the document text")
	}
	if res.Summary != gen.text {
		t.Errorf("summary = %q", res.Summary)
	}
	if len(res.Citations) != 2 {
		t.Fatalf("citations = %d, want 2", len(res.Citations))
	}
	if want := "Employment Act Section 35, Laws of Kenya"; res.Citations[0].Text != want {
		t.Errorf("citation = %q, want %q", res.Citations[0].Text, want)
	}
	if len(res.KeyInsights) == 0 {
		t.Error("expected a key insight from the modal sentence")
	}
}

func TestSummarizeMergesMultipleGroups(t *testing.T) {
	gen := &fakeGenerator{text: "Both the Employment Act and the Land Registration Act are required reading here."}
	s := NewSummarizer(gen)

	docs := []types.RetrievedDocument{empDoc("35", 0.9), landDoc("7", 0.8)}
	res := s.Summarize(context.Background(), docs, "q", types.QueryContext{}, Options{})

	if !res.OK() {
		t.Fatalf("status = %s", res.Status)
	}
	// Two group calls plus one merge call.
	if len(gen.prompts) != 3 {
		t.Fatalf("prompts = %d, want 3", len(gen.prompts))
	}
	if !strings.Contains(gen.prompts[2], "Merge the following") {
		t.Errorf("last prompt should be the merge: %q", gen.prompts[2])
	}
}

func TestSummarizeBackendFailureFallsBack(t *testing.T) {
	gen := &fakeGenerator{err: errors.New("all 3 backends failed")}
	s := NewSummarizer(gen)

	docs := []types.RetrievedDocument{empDoc("35", 0.9), landDoc("7", 0.8)}
	res := s.Summarize(context.Background(), docs, "q", types.QueryContext{}, Options{})

	if !res.OK() {
		t.Fatalf("status = %s, want success: stage degrades instead of failing", res.Status)
	}
	if !strings.Contains(res.Summary, "Employment Act Section 35") ||
		!strings.Contains(res.Summary, "Land Registration Act Section 7") {
		t.Errorf("templated summary must name the documents: %q", res.Summary)
	}
}

func TestSummarizeEmptyDocuments(t *testing.T) {
	gen := &fakeGenerator{}
	s := NewSummarizer(gen)

	res := s.Summarize(context.Background(), nil, "obscure question", types.QueryContext{Urgency: types.LevelHigh}, Options{})

	if !res.OK() {
		t.Fatalf("status = %s, want success", res.Status)
	}
	if len(gen.prompts) != 0 {
		t.Error("no documents must mean no model calls")
	}
	if !strings.Contains(res.Summary, "No supporting documents") {
		t.Errorf("summary = %q", res.Summary)
	}
	if res.Strategy != "concise" {
		t.Errorf("strategy = %q, want concise for high urgency", res.Strategy)
	}
}

func TestGroupByDomainCapsAtFive(t *testing.T) {
	var docs []types.RetrievedDocument
	for i := 0; i < 8; i++ {
		d := empDoc(string(rune('a'+i)), float64(i)/10)
		docs = append(docs, d)
	}

	groups, order := groupByDomain(docs)
	if len(order) != 1 || order[0] != "employment" {
		t.Fatalf("order = %v", order)
	}
	group := groups["employment"]
	if len(group) != 5 {
		t.Fatalf("group size = %d, want 5", len(group))
	}
	// Highest relevance kept, sorted descending.
	if group[0].RelevanceScore != 0.7 {
		t.Errorf("top score = %f, want 0.7", group[0].RelevanceScore)
	}
}

func TestClassifyDomainsFallsBackToKeywords(t *testing.T) {
	doc := types.RetrievedDocument{
		Title:   "Notice on dismissal and redundancy",
		Excerpt: "Employer obligations on termination.",
	}
	domains := classifyDomains(doc)
	if len(domains) == 0 || domains[0] != "employment" {
		t.Errorf("domains = %v, want employment first", domains)
	}

	blank := classifyDomains(types.RetrievedDocument{Title: "Miscellaneous notes"})
	if len(blank) != 1 || blank[0] != "general" {
		t.Errorf("domains = %v, want [general]", blank)
	}
}

func TestTruncateWords(t *testing.T) {
	text := strings.Repeat("word ", 400)
	out := truncateWords(text, 300)
	if got := len(strings.Fields(out)); got != 300 {
		t.Errorf("words = %d, want 300", got)
	}
}

func TestConfidence(t *testing.T) {
	long := strings.Repeat("The employer shall give notice. ", 5)

	tests := []struct {
		name    string
		summary string
		docs    int
		cites   int
		domains int
		want    float64
	}{
		{"short summary flat", "too short", 5, 3, 2, 0.1},
		{"full marks", long, 5, 3, 2, 1.0},
		{"no documents", long, 0, 0, 0, 0.4},
		{"partial", long, 2, 1, 1, 0.4 + 0.3*2.0/5 + 0.2*1.0/3 + 0.1*0.5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := confidence(tt.summary, tt.docs, tt.cites, tt.domains)
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("confidence() = %f, want %f", got, tt.want)
			}
		})
	}
}
