// Package matcher normalizes text and counts how often vocabulary terms occur
// in an article body.
package matcher

import (
	"errors"
	"fmt"
	"strings"
	"unicode"

	"github.com/kljensen/snowball"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// DefaultMaxGap is how many unrelated body tokens may sit between two
// consecutive words of a phrase.
const DefaultMaxGap = 4

var ErrUnsupportedLanguage = errors.New("unsupported stemming language")

var stemLanguages = map[string]struct{}{
	"english":   {},
	"spanish":   {},
	"french":    {},
	"russian":   {},
	"swedish":   {},
	"norwegian": {},
	"hungarian": {},
}

// SupportedLanguage reports whether the stemmer knows language.
func SupportedLanguage(language string) bool {
	_, ok := stemLanguages[language]
	return ok
}

type Matcher struct {
	maxGap   int
	language string
}

// New builds a matcher. An empty language disables stemming.
func New(maxGap int, language string) (*Matcher, error) {
	const op = "matcher.New"

	if maxGap < 0 {
		return nil, fmt.Errorf("%s: negative max gap %d", op, maxGap)
	}
	if language != "" && !SupportedLanguage(language) {
		return nil, fmt.Errorf("%s: %w: %q", op, ErrUnsupportedLanguage, language)
	}
	return &Matcher{maxGap: maxGap, language: language}, nil
}

func Default() *Matcher {
	return &Matcher{maxGap: DefaultMaxGap}
}

func (m *Matcher) Stemming() bool {
	return m.language != ""
}

func isSeparator(r rune) bool {
	return r == '-' || r == '_' || unicode.IsPunct(r) || (r < unicode.MaxASCII && unicode.IsSymbol(r))
}

// Normalize lower-cases text, strips diacritics, turns punctuation, hyphens
// and underscores into spaces and collapses whitespace.
func Normalize(text string) string {
	lower := strings.ToLower(text)

	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.M)))
	stripped, _, err := transform.String(t, lower)
	if err != nil {
		stripped = lower
	}

	spaced := strings.Map(func(r rune) rune {
		if isSeparator(r) {
			return ' '
		}
		return r
	}, stripped)

	return strings.Join(strings.Fields(spaced), " ")
}

// Tokens splits the normalized text on whitespace.
func Tokens(text string) []string {
	return strings.Fields(Normalize(text))
}

// PhraseFrequency counts ordered occurrences of term in body. Each following
// term word must appear within maxGap+1 tokens of the previous match; matches
// do not overlap and the scan resumes after the last matched token.
func (m *Matcher) PhraseFrequency(body, term string) int {
	tokens := Tokens(body)
	words := Tokens(term)
	if len(tokens) == 0 || len(words) == 0 {
		return 0
	}

	count := 0
	for i := 0; i < len(tokens); i++ {
		if tokens[i] != words[0] {
			continue
		}
		cur := i
		ok := true
		for _, w := range words[1:] {
			found := -1
			limit := min(len(tokens)-1, cur+m.maxGap+1)
			for p := cur + 1; p <= limit; p++ {
				if tokens[p] == w {
					found = p
					break
				}
			}
			if found == -1 {
				ok = false
				break
			}
			cur = found
		}
		if ok {
			count++
			i = cur
		}
	}
	return count
}

// TokenFrequency sums, over every word of term, the body tokens equal to it.
// Words shared by several terms are counted for each of them.
func (m *Matcher) TokenFrequency(body, term string) int {
	return countTokens(Tokens(body), Tokens(term))
}

// StemFrequency works like TokenFrequency on stemmed tokens. It returns zero
// when stemming is disabled.
func (m *Matcher) StemFrequency(body, term string) int {
	if !m.Stemming() {
		return 0
	}
	return countTokens(m.stems(Tokens(body)), m.stems(Tokens(term)))
}

func (m *Matcher) stems(tokens []string) []string {
	out := make([]string, len(tokens))
	for i, token := range tokens {
		stemmed, err := snowball.Stem(token, m.language, true)
		if err != nil {
			stemmed = token
		}
		out[i] = stemmed
	}
	return out
}

func countTokens(tokens, words []string) int {
	if len(tokens) == 0 || len(words) == 0 {
		return 0
	}
	count := 0
	for _, w := range words {
		for _, t := range tokens {
			if t == w {
				count++
			}
		}
	}
	return count
}
