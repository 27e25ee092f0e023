// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package reason

import (
	"regexp"
	"strings"
	"unicode"
)

// QuestionAnalysis is the structured reading of the question the model
// produces in the first reasoning pass.
type QuestionAnalysis struct {
	Issue      string
	Domain     string
	Concepts   []string
	Complexity string
}

// parseAnalysis reads the model's question analysis by matching section
// keywords at line starts. Missing sections stay empty; the caller
// falls back when nothing was parsed.
func parseAnalysis(text string) QuestionAnalysis {
	var a QuestionAnalysis
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		lower := strings.ToLower(line)
		switch {
		case strings.HasPrefix(lower, "issue:"):
			a.Issue = strings.TrimSpace(line[len("issue:"):])
		case strings.HasPrefix(lower, "domain:"):
			a.Domain = strings.TrimSpace(line[len("domain:"):])
		case strings.HasPrefix(lower, "concepts:"):
			for _, c := range strings.Split(line[len("concepts:"):], ",") {
				if c = strings.TrimSpace(c); c != "" {
					a.Concepts = append(a.Concepts, c)
				}
			}
		case strings.HasPrefix(lower, "complexity:"):
			a.Complexity = strings.ToLower(strings.TrimSpace(line[len("complexity:"):]))
		}
	}
	return a
}

func (a QuestionAnalysis) empty() bool {
	return a.Issue == "" && a.Domain == "" && len(a.Concepts) == 0
}

// stepIndicators mark lines that open a new reasoning step.
var stepIndicators = []string{
	"step", "therefore", "thus", "hence", "first", "second", "third",
	"finally", "next", "consequently",
}

// stepNumbering strips leading step labels, numerals, and bullets.
var stepNumbering = regexp.MustCompile(`^(?i:step\s*\d*\s*[:.)-]?\s*|\d+\s*[.)]\s*|[-*•]\s*)`)

const (
	minStepChars = 20
	maxSteps     = 10
)

// parseSteps splits model output into discrete reasoning steps. A line
// opening with a step indicator starts a new step; other lines are
// merged into the current one. Steps under minStepChars are noise and
// dropped; the chain is capped at maxSteps.
func parseSteps(text string) []string {
	var steps []string
	var current strings.Builder

	flush := func() {
		s := strings.TrimSpace(stepNumbering.ReplaceAllString(strings.TrimSpace(current.String()), ""))
		if len(s) >= minStepChars {
			steps = append(steps, s)
		}
		current.Reset()
	}

	for _, line := range strings.Split(text, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		if startsStep(trimmed) && current.Len() > 0 {
			flush()
		}
		if current.Len() > 0 {
			current.WriteByte(' ')
		}
		current.WriteString(trimmed)
	}
	flush()

	if len(steps) > maxSteps {
		steps = steps[:maxSteps]
	}
	return steps
}

func startsStep(line string) bool {
	lower := strings.ToLower(line)
	if r := rune(lower[0]); unicode.IsDigit(r) || r == '-' || r == '*' {
		return true
	}
	if strings.HasPrefix(lower, "•") {
		return true
	}
	for _, ind := range stepIndicators {
		if strings.HasPrefix(lower, ind) {
			return true
		}
	}
	return false
}

// bulletLine strips list markers for counterargument and implication
// parsing.
var bulletLine = regexp.MustCompile(`^(\d+\s*[.)]\s*|[-*•]\s*)`)

// parseBullets collects dash, bullet, or numbered lines of at least
// minStepChars. When catchModals is set, plain lines containing a
// modal-obligation word qualify too.
func parseBullets(text string, limit int, catchModals bool) []string {
	var out []string
	for _, line := range strings.Split(text, "\n") {
		if len(out) >= limit {
			break
		}
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		stripped := strings.TrimSpace(bulletLine.ReplaceAllString(trimmed, ""))
		isBullet := stripped != trimmed
		if !isBullet && !(catchModals && containsModal(stripped)) {
			continue
		}
		if len(stripped) >= minStepChars {
			out = append(out, stripped)
		}
	}
	return out
}

// modalWords signal obligation or recommended action.
var modalWords = []string{
	"should", "must", "need to", "needs to", "ought to", "required to",
	"advisable",
}

func containsModal(line string) bool {
	lower := strings.ToLower(line)
	for _, m := range modalWords {
		if strings.Contains(lower, m) {
			return true
		}
	}
	return false
}

// principleIndicators mark sentences stating a legal principle.
var principleIndicators = []string{
	"principle", "doctrine", "burden of proof", "presumption",
	"established", "rule that", "precedent",
}

const maxPrinciples = 5

// extractPrinciples scans reasoning steps for principle indicators and
// keeps the containing sentence, deduplicated, capped at maxPrinciples.
func extractPrinciples(steps []string) []string {
	seen := make(map[string]bool)
	var principles []string
	for _, step := range steps {
		for _, sentence := range splitSentences(step) {
			if len(principles) >= maxPrinciples {
				return principles
			}
			lower := strings.ToLower(sentence)
			hit := false
			for _, ind := range principleIndicators {
				if strings.Contains(lower, ind) {
					hit = true
					break
				}
			}
			if !hit || seen[lower] {
				continue
			}
			seen[lower] = true
			principles = append(principles, sentence)
		}
	}
	return principles
}

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
