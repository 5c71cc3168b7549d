package model

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// FoldNickname returns the comparison key for a nickname.
// Accents and case are ignored, surrounding whitespace is trimmed.
func FoldNickname(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	// Transformers and casers are stateful, build them per call
	t := transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	stripped, _, err := transform.String(t, s)
	if err != nil {
		stripped = s
	}
	return cases.Fold().String(stripped)
}

// SameNickname reports whether two nicknames identify the same player
func SameNickname(a, b string) bool {
	fa := FoldNickname(a)
	return fa != "" && fa == FoldNickname(b)
}
