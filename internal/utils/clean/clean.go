package clean

import (
	"regexp"
	"strings"
	"unicode"
)

var (
	newlines     = regexp.MustCompile(`\n+`)
	unprintables = regexp.MustCompile(`[^\p{L}\p{M}\p{N}\p{P}\p{S}\p{Z}]`)
)

// Clean flattens newlines into spaces and drops control characters.
func Clean(text string) string {
	text = newlines.ReplaceAllString(text, " ")

	text = unprintables.ReplaceAllString(text, "")

	text = strings.TrimSpace(text)

	return text
}

// Term strips leading and trailing punctuation and whitespace from a keyword,
// so "realidad virtual." and " realidad virtual" index the same term.
func Term(s string) string {
	return strings.TrimFunc(s, func(r rune) bool {
		return unicode.IsSpace(r) || unicode.IsPunct(r) || unicode.IsSymbol(r)
	})
}
