// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package index

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/legalizeme/counsel/pkg/types"
)

const employmentCorpus = `source: employment_act
documents:
  - id: emp-act-s35
    title: "Employment Act Section 35: Termination notice"
    content: >
      An employer shall give an employee written notice of termination.
      The notice period must be at least twenty-eight days for monthly
      contracts.
    type: legislation
    url: http://kenyalaw.org/employment-act/s35
    domains: [employment]
  - id: emp-act-s45
    title: "Employment Act Section 45: Unfair termination"
    content: >
      A termination is unfair if the employer fails to prove a valid
      reason and a fair procedure. The employee must have completed
      thirteen months of service.
    type: legislation
    domains: [employment]
`

const caseCorpus = `source: klr_reports
documents:
  - id: klr-2013-walter
    title: "Walter Ogal Anuro v Teachers Service Commission"
    content: >
      The court held that for a termination to pass the fairness test,
      both substantive justification and procedural fairness are
      required.
    type: case_law
    domains: [employment]
  - id: klr-2010-land
    title: "Mwangi v Republic land adjudication appeal"
    content: >
      Adjudication of customary land interests requires gazettement and
      a demarcation process under the Land Adjudication Act.
    type: case_law
    domains: [land]
`

func newTestStore(t *testing.T) *Store {
	t.Helper()
	dir := t.TempDir()
	srcDir := filepath.Join(dir, sourcesDir)
	if err := os.MkdirAll(srcDir, 0o755); err != nil {
		t.Fatal(err)
	}
	writeCorpus(t, srcDir, "employment_act.yaml", employmentCorpus)
	writeCorpus(t, srcDir, "klr_reports.yaml", caseCorpus)

	store, err := NewStore(types.IndexConfig{CorpusDir: dir, MaxResults: 20})
	if err != nil {
		t.Fatalf("NewStore() error = %v", err)
	}
	t.Cleanup(func() { store.Close() })

	summary, err := store.Ingest(context.Background(), io.Discard)
	if err != nil {
		t.Fatalf("Ingest() error = %v", err)
	}
	if summary.Indexed != 2 || summary.Failed != 0 {
		t.Fatalf("Ingest() summary = %+v, want 2 indexed", summary)
	}
	return store
}

func writeCorpus(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestIngestIsIncremental(t *testing.T) {
	store := newTestStore(t)

	summary, err := store.Ingest(context.Background(), io.Discard)
	if err != nil {
		t.Fatalf("second Ingest() error = %v", err)
	}
	if summary.Skipped != 2 || summary.Indexed != 0 {
		t.Errorf("second Ingest() summary = %+v, want 2 skipped", summary)
	}

	// Touching a file forces a re-index of that file only.
	path := filepath.Join(store.corpusDir, sourcesDir, "employment_act.yaml")
	future := time.Now().Add(time.Hour)
	if err := os.Chtimes(path, future, future); err != nil {
		t.Fatal(err)
	}
	summary, err = store.Ingest(context.Background(), io.Discard)
	if err != nil {
		t.Fatalf("third Ingest() error = %v", err)
	}
	if summary.Updated != 1 || summary.Skipped != 1 {
		t.Errorf("third Ingest() summary = %+v, want 1 updated, 1 skipped", summary)
	}

	n, err := store.DocumentCount(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if n != 4 {
		t.Errorf("DocumentCount() = %d, want 4 (no duplicates after update)", n)
	}
}

func TestKeywordSearch(t *testing.T) {
	store := newTestStore(t)

	docs, err := store.KeywordSearch(context.Background(), "termination notice period", 10)
	if err != nil {
		t.Fatalf("KeywordSearch() error = %v", err)
	}
	if len(docs) == 0 {
		t.Fatal("KeywordSearch() returned no documents")
	}
	if docs[0].ID != "emp-act-s35" {
		t.Errorf("top result = %s, want emp-act-s35", docs[0].ID)
	}
	for _, d := range docs {
		if d.RelevanceScore <= 0 || d.RelevanceScore > 1 {
			t.Errorf("document %s score %f out of range (0,1]", d.ID, d.RelevanceScore)
		}
	}
}

func TestKeywordSearchSanitizesQuery(t *testing.T) {
	store := newTestStore(t)

	// Quotes and operators in raw user text must not break FTS5 syntax.
	if _, err := store.KeywordSearch(context.Background(), `"unfair" termination AND (notice)`, 10); err != nil {
		t.Errorf("KeywordSearch() with punctuation error = %v", err)
	}
}

func TestSemanticSearchMatchesInflectedForms(t *testing.T) {
	store := newTestStore(t)

	// "terminated" should match "termination" via prefix matching.
	docs, err := store.SemanticSearch(context.Background(), "employee terminated unfairly", 10)
	if err != nil {
		t.Fatalf("SemanticSearch() error = %v", err)
	}
	found := false
	for _, d := range docs {
		if d.ID == "emp-act-s45" {
			found = true
		}
	}
	if !found {
		t.Error("SemanticSearch() missed emp-act-s45 for inflected query")
	}
}

func TestHybridSearchBoostsAgreement(t *testing.T) {
	store := newTestStore(t)

	docs, err := store.HybridSearch(context.Background(), "unfair termination fairness", 10)
	if err != nil {
		t.Fatalf("HybridSearch() error = %v", err)
	}
	if len(docs) == 0 {
		t.Fatal("HybridSearch() returned no documents")
	}
	for i := 1; i < len(docs); i++ {
		if docs[i].RelevanceScore > docs[i-1].RelevanceScore {
			t.Errorf("results not sorted: %f before %f", docs[i-1].RelevanceScore, docs[i].RelevanceScore)
		}
	}
}

func TestSearchEmptyQuery(t *testing.T) {
	store := newTestStore(t)

	docs, err := store.KeywordSearch(context.Background(), "the of and", 10)
	if err != nil {
		t.Fatalf("KeywordSearch() error = %v", err)
	}
	if docs != nil {
		t.Errorf("stopword-only query returned %d documents, want none", len(docs))
	}
}

func TestTokenize(t *testing.T) {
	tests := []struct {
		name  string
		in    string
		want  []string
	}{
		{"drops stopwords and punctuation", "What is the notice period?", []string{"notice", "period"}},
		{"dedupes preserving order", "land land adjudication land", []string{"land", "adjudication"}},
		{"empty", "  ", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tokenize(tt.in)
			if len(got) != len(tt.want) {
				t.Fatalf("tokenize(%q) = %v, want %v", tt.in, got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("tokenize(%q)[%d] = %q, want %q", tt.in, i, got[i], tt.want[i])
				}
			}
		})
	}
}
