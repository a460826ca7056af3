package namematch

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// RemoveDiacritics removes diacritical marks from a string (e.g., "Jiří" -> "Jiri").
func RemoveDiacritics(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	result, _, _ := transform.String(t, s)
	return result
}

// Canonical reduces a person name to its comparison form: diacritics removed,
// lowercased, every character outside letters, digits, apostrophes and
// hyphens replaced by a space, whitespace collapsed and trimmed. Apostrophes
// and hyphens stay because they are part of the name ("O'Brien",
// "Smith-Jones"), not separators.
func Canonical(name string) string {
	name = strings.ToLower(RemoveDiacritics(name))

	var b strings.Builder
	b.Grow(len(name))
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '\'', r == '-':
			b.WriteRune(r)
		default:
			b.WriteRune(' ')
		}
	}

	return strings.Join(strings.Fields(b.String()), " ")
}

// Tokens splits a name into its canonical word tokens.
func Tokens(name string) []string {
	return strings.Fields(Canonical(name))
}
