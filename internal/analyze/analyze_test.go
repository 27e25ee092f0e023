// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package analyze

import (
	"strings"
	"testing"

	"github.com/legalizeme/counsel/pkg/types"
)

func TestAnalyzeDomainDetection(t *testing.T) {
	tests := []struct {
		name        string
		query       string
		wantPrimary string
	}{
		{"employment", "My employer terminated my employment without notice", "employment"},
		{"land", "The landlord wants to evict me and take the title deed", "land"},
		{"family", "How do I file for divorce and child custody?", "family"},
		{"none", "Tell me something interesting", "general"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := Analyze(tt.query, Hints{})
			if got := ctx.PrimaryDomain(); got != tt.wantPrimary {
				t.Errorf("PrimaryDomain() = %q, want %q (domains %v)", got, tt.wantPrimary, ctx.Domains)
			}
		})
	}
}

func TestAnalyzeUrgency(t *testing.T) {
	ctx := Analyze("I have a court date tomorrow, what do I do?", Hints{})
	if ctx.Urgency != types.LevelHigh {
		t.Errorf("Urgency = %s, want high", ctx.Urgency)
	}

	ctx = Analyze("What is the notice period for resignation?", Hints{})
	if ctx.Urgency != types.LevelMedium {
		t.Errorf("Urgency = %s, want medium", ctx.Urgency)
	}
}

func TestAnalyzeComplexity(t *testing.T) {
	short := Analyze("What is redundancy pay?", Hints{})
	if short.Complexity != types.LevelLow {
		t.Errorf("short query complexity = %s, want low", short.Complexity)
	}

	long := Analyze(strings.Repeat("the dispute involves several parties and claims ", 10)+
		"however the contract is silent, furthermore the lease expired", Hints{})
	if long.Complexity != types.LevelHigh {
		t.Errorf("long query complexity = %s, want high", long.Complexity)
	}
}

func TestAnalyzeRoutingHints(t *testing.T) {
	ctx := Analyze("What did the court held in Anuro v TSC? Any precedent?", Hints{})
	if !ctx.HasHint(types.HintCaseLawResearch) {
		t.Error("expected case_law_research hint")
	}

	ctx = Analyze("What does section 45 of the Employment Act say?", Hints{})
	if !ctx.HasHint(types.HintStatutoryLookup) {
		t.Error("expected statutory_lookup hint")
	}

	ctx = Analyze("Please review my tenancy agreement document", Hints{})
	if !ctx.HasHint(types.HintDocumentProcessing) {
		t.Error("expected document_processing hint")
	}
}

func TestAnalyzeHintOverrides(t *testing.T) {
	ctx := Analyze("anything", Hints{
		Domains: []string{"land"},
		Urgency: types.LevelHigh,
	})
	if ctx.PrimaryDomain() != "land" {
		t.Errorf("PrimaryDomain() = %q, want land", ctx.PrimaryDomain())
	}
	if ctx.Urgency != types.LevelHigh {
		t.Errorf("Urgency = %s, want high", ctx.Urgency)
	}
}
