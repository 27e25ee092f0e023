// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for the counsel research
// pipeline: retrieved documents, citations, the per-query context, the
// final research response, and per-stage configuration.
package types

// DocumentType classifies a retrieved legal document.
type DocumentType string

const (
	DocLegislation DocumentType = "legislation"
	DocCaseLaw     DocumentType = "case_law"
	DocGazette     DocumentType = "gazette"
	DocCommentary  DocumentType = "commentary"
	DocUnknown     DocumentType = "unknown"
)

// RetrievedDocument is a single document returned by the corpus index.
// Documents are never mutated after retrieval; a stage that needs to
// enrich one works on a copy.
type RetrievedDocument struct {
	// ID is the corpus identifier (e.g. "cap-49-employment-act-s45").
	ID string `json:"id" yaml:"id"`

	// Title is the document title as stored in the corpus.
	Title string `json:"title" yaml:"title"`

	// Excerpt is the matched content or excerpt.
	Excerpt string `json:"excerpt" yaml:"excerpt"`

	// Source identifies the originating collection (e.g. "kenya_law",
	// "employment_act", "klr_reports").
	Source string `json:"source" yaml:"source"`

	// Type classifies the document.
	Type DocumentType `json:"type" yaml:"type"`

	// RelevanceScore is a value between 0.0 and 1.0 indicating relevance
	// to the query.
	RelevanceScore float64 `json:"relevance_score" yaml:"relevance_score"`

	// URL is an optional canonical link.
	URL string `json:"url,omitempty" yaml:"url,omitempty"`

	// Domains holds optional legal-domain tags (e.g. "employment").
	Domains []string `json:"domains,omitempty" yaml:"domains,omitempty"`
}

// Citation is a formal reference derived from a RetrievedDocument.
type Citation struct {
	Title string `json:"title" yaml:"title"`

	Source string `json:"source" yaml:"source"`

	URL string `json:"url,omitempty" yaml:"url,omitempty"`

	Type DocumentType `json:"type" yaml:"type"`

	// Text is the formal citation string, synthesized from metadata
	// when the corpus does not carry one.
	Text string `json:"text" yaml:"text"`

	RelevanceScore float64 `json:"relevance_score" yaml:"relevance_score"`
}
