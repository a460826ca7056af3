package casestore

import (
	"strings"

	"github.com/krizmartin/profile-matcher/internal/namematch"
)

// Slugify turns a person name into a store key: diacritics folded, lowered,
// runs of anything but letters and digits collapsed into single dashes.
// Names without any ASCII letters or digits produce "", which callers must
// reject.
func Slugify(name string) string {
	folded := strings.ToLower(namematch.RemoveDiacritics(name))

	var b strings.Builder
	b.Grow(len(folded))
	pendingDash := false
	for _, r := range folded {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			if pendingDash && b.Len() > 0 {
				b.WriteByte('-')
			}
			b.WriteRune(r)
			pendingDash = false
		default:
			pendingDash = true
		}
	}
	return b.String()
}
