package models

// Postings is one vocabulary term with its article ids in insertion order.
type Postings struct {
	Term string   `json:"term"`
	IDs  []string `json:"ids"`
}

// Snapshot is the whole repository state: every article plus both ordered
// vocabularies and both posting tables.
type Snapshot struct {
	Articles        []Article  `json:"articles"`
	Keywords        []string   `json:"keywords"`
	Authors         []string   `json:"authors"`
	KeywordPostings []Postings `json:"keyword_postings"`
	AuthorPostings  []Postings `json:"author_postings"`
}

func (s Snapshot) Empty() bool {
	return len(s.Articles) == 0 && len(s.Keywords) == 0 && len(s.Authors) == 0
}
