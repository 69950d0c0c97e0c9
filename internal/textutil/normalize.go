package textutil

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// diacriticStripper decomposes characters and drops combining marks, so
// "Amélie" compares equal to "Amelie".
var diacriticStripper = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

var leadingArticles = []string{"the ", "a ", "an "}

// NormalizeTitle prepares a title for comparison: lowercase, diacritics and
// punctuation stripped, whitespace collapsed, and a leading English article
// removed.
func NormalizeTitle(title string) string {
	lowered := strings.ToLower(strings.TrimSpace(title))
	if lowered == "" {
		return ""
	}
	if stripped, _, err := transform.String(diacriticStripper, lowered); err == nil {
		lowered = stripped
	}

	var b strings.Builder
	b.Grow(len(lowered))
	for _, r := range lowered {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
		case unicode.IsSpace(r):
			b.WriteByte(' ')
		default:
			// Punctuation is dropped outright so "Spider-Man" and
			// "Spiderman" normalize identically.
		}
	}
	collapsed := strings.Join(strings.Fields(b.String()), " ")

	for _, article := range leadingArticles {
		if rest, ok := strings.CutPrefix(collapsed, article); ok && rest != "" {
			return rest
		}
	}
	return collapsed
}
