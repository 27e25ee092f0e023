// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package summarize

import (
	"strings"

	"github.com/legalizeme/counsel/pkg/types"
)

// domainKeywords classifies documents that carry no domain tags of
// their own. A document can match several domains; the first match in
// its list is the primary grouping key.
var domainKeywords = map[string][]string{
	"employment": {
		"employment", "employee", "employer", "dismissal", "termination",
		"redundancy", "wages", "salary", "probation",
	},
	"land": {
		"land", "title deed", "lease", "eviction", "parcel", "landlord",
		"tenant", "succession",
	},
	"family": {
		"marriage", "divorce", "custody", "maintenance", "matrimonial",
		"adoption",
	},
	"commercial": {
		"company", "partnership", "shares", "director", "insolvency",
		"contract", "debt",
	},
	"criminal": {
		"offence", "arrest", "bail", "sentence", "prosecution", "charge",
	},
	"constitutional": {
		"constitution", "fundamental rights", "petition",
		"bill of rights", "judicial review",
	},
}

// classifyDomains returns the domains for a document: its own tags when
// present, otherwise keyword matches against title and excerpt, and
// "general" when nothing matches.
func classifyDomains(doc types.RetrievedDocument) []string {
	if len(doc.Domains) > 0 {
		return doc.Domains
	}

	text := strings.ToLower(doc.Title + " " + doc.Excerpt)
	var matched []string
	for _, domain := range domainOrder {
		for _, kw := range domainKeywords[domain] {
			if strings.Contains(text, kw) {
				matched = append(matched, domain)
				break
			}
		}
	}
	if len(matched) == 0 {
		return []string{"general"}
	}
	return matched
}

// domainOrder fixes the classification order so grouping is
// deterministic across runs.
var domainOrder = []string{
	"employment", "land", "family", "commercial", "criminal",
	"constitutional",
}

// domainPrompt returns the summarization instruction for a domain
// group. Unknown domains get the general instruction.
func domainPrompt(domain string) string {
	switch domain {
	case "employment":
		return "Focus on employer and employee obligations, termination procedures, and statutory entitlements under Kenyan employment law."
	case "land":
		return "Focus on ownership, registration, leases, and dispute resolution under Kenyan land law."
	case "family":
		return "Focus on marriage, divorce, custody, and succession under Kenyan family law."
	case "commercial":
		return "Focus on contractual obligations, company law duties, and commercial remedies under Kenyan law."
	case "criminal":
		return "Focus on offences, procedure, and the rights of accused persons under Kenyan criminal law."
	case "constitutional":
		return "Focus on the Constitution of Kenya 2010, the Bill of Rights, and constitutional remedies."
	default:
		return "Summarize the legal position under Kenyan law as it relates to the question."
	}
}
