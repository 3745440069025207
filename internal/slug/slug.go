// Package slug builds URL slugs from entry titles. Unlike the usual
// ASCII-only slug helpers, Thai letters are kept intact because the portal
// links entries by their Thai names.
package slug

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// From converts a title into a URL-safe slug. Letters, digits and combining
// marks of any script survive, everything else collapses into single
// hyphens. Marks matter here: Thai vowels and tone marks are combining
// characters and dropping them would corrupt every Thai slug.
func From(s string) string {
	s = norm.NFC.String(s)
	s = strings.ToLower(s)

	var b strings.Builder
	lastHyphen := true
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsMark(r) {
			b.WriteRune(r)
			lastHyphen = false
			continue
		}
		if !lastHyphen {
			b.WriteRune('-')
			lastHyphen = true
		}
	}

	return strings.Trim(b.String(), "-")
}
