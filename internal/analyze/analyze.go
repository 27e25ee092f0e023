// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package analyze builds the per-query context the pipeline stages key
// their strategy selection off: detected legal domains, complexity,
// urgency, and routing hints. Analysis is purely lexical and runs once
// before the pipeline.
package analyze

import (
	"sort"
	"strings"

	"github.com/legalizeme/counsel/pkg/types"
)

// domainKeywords maps each legal domain to its signal terms. A query
// can match several domains; they are ranked by hit count.
var domainKeywords = map[string][]string{
	"employment": {
		"employment", "employee", "employer", "dismissal", "dismissed",
		"termination", "terminated", "salary", "wages", "redundancy",
		"leave", "probation", "contract of service",
	},
	"land": {
		"land", "title deed", "lease", "eviction", "adjudication",
		"succession", "boundary", "parcel", "landlord", "tenant",
	},
	"family": {
		"marriage", "divorce", "custody", "maintenance", "matrimonial",
		"inheritance", "adoption", "dowry",
	},
	"commercial": {
		"company", "business", "partnership", "shares", "director",
		"insolvency", "contract", "breach", "debt", "invoice",
	},
	"criminal": {
		"criminal", "offence", "arrest", "bail", "sentence", "theft",
		"assault", "prosecution", "charge",
	},
	"constitutional": {
		"constitution", "constitutional", "fundamental rights",
		"petition", "bill of rights", "devolution", "judicial review",
	},
	"civil_procedure": {
		"plaint", "pleading", "injunction", "appeal", "limitation",
		"summons", "judgment", "decree",
	},
}

// urgentPhrases signal a time-sensitive question.
var urgentPhrases = []string{
	"urgent", "immediately", "today", "tomorrow", "deadline",
	"right away", "asap", "court date",
}

// complexityMarkers signal an involved, multi-issue question.
var complexityMarkers = []string{
	"whereas", "however", "notwithstanding", "in addition",
	"furthermore", "on the other hand", "multiple", "several",
}

// Hints holds optional caller-supplied overrides for analysis.
type Hints struct {
	// Domains overrides domain detection when non-empty.
	Domains []string

	// Urgency overrides urgency detection when non-empty.
	Urgency types.Level

	// Metadata is carried into the context unchanged.
	Metadata map[string]string
}

// Analyze produces the QueryContext for a raw query.
func Analyze(query string, hints Hints) types.QueryContext {
	lower := strings.ToLower(query)

	domains := hints.Domains
	if len(domains) == 0 {
		domains = detectDomains(lower)
	}

	urgency := hints.Urgency
	if urgency == "" {
		urgency = detectUrgency(lower)
	}

	return types.QueryContext{
		Domains:      domains,
		Complexity:   detectComplexity(lower),
		Urgency:      urgency,
		RoutingHints: detectRoutingHints(lower),
		Metadata:     hints.Metadata,
	}
}

// detectDomains ranks domains by keyword hit count, most hits first.
func detectDomains(lower string) []string {
	type hit struct {
		domain string
		count  int
	}
	var hits []hit
	for domain, keywords := range domainKeywords {
		count := 0
		for _, kw := range keywords {
			if strings.Contains(lower, kw) {
				count++
			}
		}
		if count > 0 {
			hits = append(hits, hit{domain, count})
		}
	}
	sort.SliceStable(hits, func(i, j int) bool {
		if hits[i].count != hits[j].count {
			return hits[i].count > hits[j].count
		}
		return hits[i].domain < hits[j].domain
	})

	domains := make([]string, len(hits))
	for i, h := range hits {
		domains[i] = h.domain
	}
	return domains
}

func detectUrgency(lower string) types.Level {
	for _, p := range urgentPhrases {
		if strings.Contains(lower, p) {
			return types.LevelHigh
		}
	}
	return types.LevelMedium
}

// detectComplexity grades by length and multi-issue markers: short
// single-issue questions are low, long or marker-heavy ones high.
func detectComplexity(lower string) types.Level {
	words := len(strings.Fields(lower))
	markers := 0
	for _, m := range complexityMarkers {
		if strings.Contains(lower, m) {
			markers++
		}
	}
	questions := strings.Count(lower, "?")

	switch {
	case words > 60 || markers >= 2 || questions >= 3:
		return types.LevelHigh
	case words < 12 && markers == 0:
		return types.LevelLow
	default:
		return types.LevelMedium
	}
}

func detectRoutingHints(lower string) map[string]map[string]string {
	hints := make(map[string]map[string]string)

	if strings.Contains(lower, "case law") || strings.Contains(lower, "precedent") ||
		strings.Contains(lower, " v ") || strings.Contains(lower, "court held") {
		hints[types.HintCaseLawResearch] = map[string]string{}
	}
	if strings.Contains(lower, "section ") || strings.Contains(lower, "act ") ||
		strings.Contains(lower, "article ") || strings.Contains(lower, "cap ") {
		hints[types.HintStatutoryLookup] = map[string]string{}
	}
	if strings.Contains(lower, "document") || strings.Contains(lower, "agreement") ||
		strings.Contains(lower, "review my") {
		hints[types.HintDocumentProcessing] = map[string]string{}
	}

	if len(hints) == 0 {
		return nil
	}
	return hints
}
