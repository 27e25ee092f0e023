// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package index

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"strings"
	"unicode"

	"github.com/legalizeme/counsel/pkg/types"
)

// stopwords are dropped from queries before matching. Legal questions
// are dominated by function words that carry no retrieval signal.
var stopwords = map[string]bool{
	"a": true, "an": true, "and": true, "are": true, "can": true,
	"do": true, "does": true, "for": true, "how": true, "i": true,
	"in": true, "is": true, "it": true, "my": true, "of": true,
	"on": true, "or": true, "the": true, "to": true, "what": true,
	"when": true, "where": true, "which": true, "who": true,
	"with": true,
}

// KeywordSearch runs an FTS5 full-text query and scores candidates by
// query-token overlap. Results are sorted by relevance, best first.
func (s *Store) KeywordSearch(ctx context.Context, query string, limit int) ([]types.RetrievedDocument, error) {
	tokens := tokenize(query)
	if len(tokens) == 0 {
		return nil, nil
	}
	if limit <= 0 {
		limit = s.maxResults
	}

	// OR-join sanitized tokens; raw user text breaks FTS5 query syntax.
	match := strings.Join(tokens, " OR ")

	rows, err := s.db.QueryContext(ctx,
		`SELECT d.id, d.title, d.content, d.source, d.type, d.url, d.domains
		 FROM documents_fts
		 JOIN documents d ON d.rowid = documents_fts.rowid
		 WHERE documents_fts MATCH ?
		 ORDER BY bm25(documents_fts)
		 LIMIT ?`,
		match, limit*2,
	)
	if err != nil {
		return nil, fmt.Errorf("keyword search: %w", err)
	}
	defer rows.Close()

	docs, err := scanDocuments(rows)
	if err != nil {
		return nil, err
	}

	for i := range docs {
		docs[i].RelevanceScore = overlapScore(tokens, docs[i].Title, docs[i].Excerpt, false)
	}
	sortByRelevance(docs)
	if len(docs) > limit {
		docs = docs[:limit]
	}
	return docs, nil
}

// SemanticSearch scores every corpus document against the query using
// token overlap with prefix matching, which catches inflected forms
// ("dismissed" vs "dismissal"). Deterministic and in-process; the
// corpus is small enough for a full scan.
func (s *Store) SemanticSearch(ctx context.Context, query string, limit int) ([]types.RetrievedDocument, error) {
	tokens := tokenize(query)
	if len(tokens) == 0 {
		return nil, nil
	}
	if limit <= 0 {
		limit = s.maxResults
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, title, content, source, type, url, domains FROM documents`)
	if err != nil {
		return nil, fmt.Errorf("semantic search: %w", err)
	}
	defer rows.Close()

	docs, err := scanDocuments(rows)
	if err != nil {
		return nil, err
	}

	var scored []types.RetrievedDocument
	for _, d := range docs {
		score := overlapScore(tokens, d.Title, d.Excerpt, true)
		if score <= 0 {
			continue
		}
		d.RelevanceScore = score
		scored = append(scored, d)
	}
	sortByRelevance(scored)
	if len(scored) > limit {
		scored = scored[:limit]
	}
	return scored, nil
}

// HybridSearch merges keyword and semantic results, keeping the higher
// score per document with a small bonus when both methods agree.
func (s *Store) HybridSearch(ctx context.Context, query string, limit int) ([]types.RetrievedDocument, error) {
	if limit <= 0 {
		limit = s.maxResults
	}

	keyword, err := s.KeywordSearch(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	semantic, err := s.SemanticSearch(ctx, query, limit)
	if err != nil {
		return nil, err
	}

	merged := make(map[string]types.RetrievedDocument, len(keyword)+len(semantic))
	for _, d := range keyword {
		merged[d.ID] = d
	}
	for _, d := range semantic {
		if prev, ok := merged[d.ID]; ok {
			if d.RelevanceScore > prev.RelevanceScore {
				prev.RelevanceScore = d.RelevanceScore
			}
			prev.RelevanceScore = types.Clamp01(prev.RelevanceScore + 0.05)
			merged[d.ID] = prev
			continue
		}
		merged[d.ID] = d
	}

	docs := make([]types.RetrievedDocument, 0, len(merged))
	for _, d := range merged {
		docs = append(docs, d)
	}
	sortByRelevance(docs)
	if len(docs) > limit {
		docs = docs[:limit]
	}
	return docs, nil
}

func scanDocuments(rows *sql.Rows) ([]types.RetrievedDocument, error) {
	var docs []types.RetrievedDocument
	for rows.Next() {
		var (
			d       types.RetrievedDocument
			docType string
			url     sql.NullString
			domains sql.NullString
		)
		if err := rows.Scan(&d.ID, &d.Title, &d.Excerpt, &d.Source, &docType, &url, &domains); err != nil {
			return nil, fmt.Errorf("scanning row: %w", err)
		}
		d.Type = types.DocumentType(docType)
		if url.Valid {
			d.URL = url.String
		}
		if domains.Valid && domains.String != "" {
			d.Domains = strings.Split(domains.String, ",")
		}
		docs = append(docs, d)
	}
	return docs, rows.Err()
}

// tokenize lowercases, strips punctuation, and drops stopwords and
// single-character tokens, preserving first-seen order.
func tokenize(s string) []string {
	var b strings.Builder
	for _, r := range strings.ToLower(s) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsSpace(r) {
			b.WriteRune(r)
		} else {
			b.WriteRune(' ')
		}
	}

	seen := make(map[string]bool)
	var tokens []string
	for _, tok := range strings.Fields(b.String()) {
		if len(tok) < 2 || stopwords[tok] || seen[tok] {
			continue
		}
		seen[tok] = true
		tokens = append(tokens, tok)
	}
	return tokens
}

// prefixLen is the minimum shared prefix for a loose token match.
const prefixLen = 4

// overlapScore returns the fraction of query tokens found in the
// document, weighted toward title hits. With loose matching a token
// also matches document words sharing a 4-character prefix.
func overlapScore(queryTokens []string, title, content string, loose bool) float64 {
	if len(queryTokens) == 0 {
		return 0
	}

	titleTokens := tokenize(title)
	contentTokens := tokenize(content)

	matched := 0
	titleHit := false
	for _, q := range queryTokens {
		if containsToken(titleTokens, q, loose) {
			matched++
			titleHit = true
			continue
		}
		if containsToken(contentTokens, q, loose) {
			matched++
		}
	}
	if matched == 0 {
		return 0
	}

	score := float64(matched) / float64(len(queryTokens))
	if titleHit {
		score += 0.1
	}
	return types.Clamp01(score)
}

func containsToken(tokens []string, q string, loose bool) bool {
	for _, t := range tokens {
		if t == q {
			return true
		}
		if loose && len(q) >= prefixLen && len(t) >= prefixLen && t[:prefixLen] == q[:prefixLen] {
			return true
		}
	}
	return false
}

func sortByRelevance(docs []types.RetrievedDocument) {
	sort.SliceStable(docs, func(i, j int) bool {
		return docs[i].RelevanceScore > docs[j].RelevanceScore
	})
}
