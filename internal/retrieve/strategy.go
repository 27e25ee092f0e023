// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package retrieve

import "github.com/legalizeme/counsel/pkg/types"

// Method names one retrieval technique the index offers.
type Method string

const (
	MethodSemantic Method = "semantic"
	MethodKeyword  Method = "keyword"
	MethodHybrid   Method = "hybrid"
)

// Strategy bundles the retrieval parameters selected per query. The
// strategy table is built at construction and never mutated, so each
// retriever can be tested in isolation.
type Strategy struct {
	Name       string
	Methods    []Method
	MaxSources int
	Threshold  float64
	Diversify  bool
}

func defaultStrategies() map[string]Strategy {
	return map[string]Strategy{
		"quick": {
			Name:       "quick",
			Methods:    []Method{MethodSemantic},
			MaxSources: 5,
			Threshold:  0.4,
		},
		"comprehensive": {
			Name:       "comprehensive",
			Methods:    []Method{MethodSemantic, MethodKeyword, MethodHybrid},
			MaxSources: 15,
			Threshold:  0.2,
			Diversify:  true,
		},
		"focused": {
			Name:       "focused",
			Methods:    []Method{MethodSemantic, MethodKeyword},
			MaxSources: 8,
			Threshold:  0.5,
		},
		"exploratory": {
			Name:       "exploratory",
			Methods:    []Method{MethodSemantic, MethodKeyword},
			MaxSources: 20,
			Threshold:  0.1,
			Diversify:  true,
		},
	}
}

// selectStrategy picks the retrieval strategy for a query. Rules are
// ordered; the first match wins.
func (r *Retriever) selectStrategy(explicit string, qctx types.QueryContext) Strategy {
	if s, ok := r.strategies[explicit]; ok {
		return s
	}
	if qctx.Urgency == types.LevelHigh {
		return r.strategies["quick"]
	}
	if qctx.Complexity == types.LevelHigh {
		return r.strategies["comprehensive"]
	}
	if qctx.HasHint(types.HintDocumentProcessing) {
		return r.strategies["focused"]
	}
	if qctx.HasHint(types.HintCaseLawResearch) {
		return r.strategies["comprehensive"]
	}
	if qctx.Complexity == types.LevelLow && qctx.HasDomain("exploratory") {
		return r.strategies["exploratory"]
	}
	return r.strategies["focused"]
}
