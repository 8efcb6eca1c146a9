package models

// TermFrequency holds the frequency signals of one vocabulary term inside an
// article body.
type TermFrequency struct {
	Term string `json:"term"`
	// Phrase counts ordered, gap-tolerant occurrences of the whole term.
	Phrase int `json:"phrase"`
	// TokensMeta is the additive per-token count plus one when the article
	// is tagged with the term.
	TokensMeta int `json:"tokens_meta"`
	// Stems is the stemmed per-token count, zero when stemming is disabled.
	Stems int `json:"stems,omitempty"`
}

type AnalysisReport struct {
	ArticleID string          `json:"article_id"`
	Title     string          `json:"title"`
	Authors   []string        `json:"authors"`
	Terms     []TermFrequency `json:"terms"`
}

type KeywordOccurrence struct {
	ArticleID  string `json:"article_id"`
	Title      string `json:"title"`
	Phrase     int    `json:"phrase"`
	TokensMeta int    `json:"tokens_meta"`
}

type KeywordReport struct {
	Keyword     string              `json:"keyword"`
	Occurrences []KeywordOccurrence `json:"occurrences"`
	// Total sums phrase occurrences over every tagged article.
	Total  int      `json:"total"`
	Titles []string `json:"titles"`
}

type LoadResult struct {
	Added   int `json:"added"`
	Skipped int `json:"skipped"`
}
