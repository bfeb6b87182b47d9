// Package relevance scores job postings for AI relevance and classifies them
// for the Danish market. Everything here is pure: no I/O, no shared state.
package relevance

import (
	"strings"

	"golang.org/x/text/cases"
)

// MinScore is the lowest relevance score a posting may have and still be stored.
const MinScore = 0.1

var (
	foldedKeywords   = foldAll(aiKeywords)
	foldedBonusTerms = foldAll(titleBonusTerms)
	foldedLocations  = foldAll(danishLocations)
)

// Score computes the AI relevance of a posting and the reference keywords it
// matched, in reference-list order. Missing fields are passed as "".
// The result is always in [0, 1].
func Score(title, description, requirements string) (float64, []string) {
	text := fold(title + " " + description + " " + requirements)

	matched := make([]string, 0)
	score := 0.0
	for i, kw := range foldedKeywords {
		if !strings.Contains(text, kw) {
			continue
		}
		matched = append(matched, aiKeywords[i])
		score += Weight(aiKeywords[i])
	}

	if containsAny(fold(title), foldedBonusTerms) {
		score += titleBonus
	}

	if score > maxScore {
		score = maxScore
	}
	return score, matched
}

// IsRelevant reports whether score clears the storage threshold.
func IsRelevant(score float64) bool {
	return score >= MinScore
}

func fold(s string) string {
	return cases.Fold().String(s)
}

func foldAll(terms []string) []string {
	out := make([]string, len(terms))
	for i, t := range terms {
		out[i] = fold(t)
	}
	return out
}

func containsAny(text string, terms []string) bool {
	for _, t := range terms {
		if strings.Contains(text, t) {
			return true
		}
	}
	return false
}
