package namematch

import (
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/agnivade/levenshtein"
)

// FuzzyMinScore is the minimum fuzzy score for the probable-match fallback.
// Fixed policy constant, not a tunable.
const FuzzyMinScore = 92.0

// Result describes how a candidate profile name relates to a source name.
type Result struct {
	Exact      bool    `json:"exact"`
	FuzzyScore float64 `json:"fuzzy_score"` // 0-100 token-sort ratio
}

// Compare matches a source identity name against a candidate profile name.
// Exact means the canonical token-sorted forms are equal, so casing,
// punctuation and word order never matter ("Jane A. Doe" vs "doe jane a.").
// The fuzzy score is a Levenshtein ratio over the same token-sorted forms
// scaled to 0-100. Two empty names compare as a degenerate exact match.
func Compare(sourceName, candidateName string) Result {
	src := tokenSortKey(sourceName)
	cand := tokenSortKey(candidateName)

	if src == "" && cand == "" {
		return Result{Exact: true, FuzzyScore: 100}
	}
	if src == "" || cand == "" {
		return Result{Exact: false, FuzzyScore: 0}
	}
	if src == cand {
		return Result{Exact: true, FuzzyScore: 100}
	}

	return Result{Exact: false, FuzzyScore: ratio(src, cand)}
}

// tokenSortKey is the order-insensitive comparison key: canonical tokens
// sorted and rejoined with single spaces.
func tokenSortKey(name string) string {
	toks := Tokens(name)
	sort.Strings(toks)
	return strings.Join(toks, " ")
}

// ratio scales rune-level Levenshtein distance to a 0-100 similarity.
func ratio(a, b string) float64 {
	maxLen := utf8.RuneCountInString(a)
	if l := utf8.RuneCountInString(b); l > maxLen {
		maxLen = l
	}
	if maxLen == 0 {
		return 100
	}

	dist := levenshtein.ComputeDistance(a, b)
	return 100 * (1 - float64(dist)/float64(maxLen))
}
