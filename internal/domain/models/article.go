package models

import (
	"slices"

	"github.com/google/uuid"
)

// Article is an indexed research summary. Values are never mutated once built;
// the repository only adds or drops them wholesale.
type Article struct {
	ID       string   `json:"id"`
	Title    string   `json:"title"`
	Authors  []string `json:"authors"`
	Body     string   `json:"body"`
	Keywords []string `json:"keywords"`
}

// NewArticle builds an article with a fresh time-ordered id. The author and
// keyword slices are copied; nil ones become empty slices.
func NewArticle(title string, authors []string, body string, keywords []string) Article {
	return Article{
		ID:       newID(),
		Title:    title,
		Authors:  cloneList(authors),
		Body:     body,
		Keywords: cloneList(keywords),
	}
}

func cloneList(items []string) []string {
	if items == nil {
		return []string{}
	}
	return slices.Clone(items)
}

func newID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}

func (a Article) String() string {
	return a.Title
}
