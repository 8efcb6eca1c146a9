package repository

import (
	"fmt"
	"log/slog"

	"fts-articles/internal/domain/models"
	"fts-articles/internal/lib/collation"
	"fts-articles/internal/services/fts/avl"
	"fts-articles/internal/services/fts/hashindex"
	"fts-articles/internal/services/fts/postings"
)

// Snapshot exports every structure. Vocabularies come out in collation order
// and posting lists in insertion order.
func (r *Repository) Snapshot() models.Snapshot {
	return models.Snapshot{
		Articles:        r.articles.Values(),
		Keywords:        r.keywordsAVL.Keys(),
		Authors:         r.authorsAVL.Keys(),
		KeywordPostings: exportPostings(r.keywordsAVL, r.keywordMap),
		AuthorPostings:  exportPostings(r.authorsAVL, r.authorMap),
	}
}

func exportPostings(tree *avl.Tree, table *hashindex.Table[*postings.List]) []models.Postings {
	out := make([]models.Postings, 0, tree.Len())
	for _, term := range tree.Keys() {
		list, ok := table.Exact(term)
		if !ok {
			continue
		}
		out = append(out, models.Postings{Term: term, IDs: list.IDs()})
	}
	return out
}

// FromSnapshot rebuilds a repository and rejects snapshots that break the
// cross-structure invariants.
func FromSnapshot(log *slog.Logger, compare collation.Compare, capacity int, snap models.Snapshot) (*Repository, error) {
	const op = "repository.FromSnapshot"

	r := New(log, compare, capacity)

	for _, a := range snap.Articles {
		if a.Title == "" {
			return nil, fmt.Errorf("%s: %w", op, ErrEmptyTitle)
		}
		if _, ok := r.articles.Exact(a.Title); ok {
			return nil, fmt.Errorf("%s: %w: %q", op, ErrDuplicateTitle, a.Title)
		}
		r.articles.Put(a.Title, a)
	}

	if err := restoreVocabulary(r.keywordsAVL, r.keywordMap, snap.Keywords, snap.KeywordPostings); err != nil {
		return nil, fmt.Errorf("%s: keywords: %w", op, err)
	}
	if err := restoreVocabulary(r.authorsAVL, r.authorMap, snap.Authors, snap.AuthorPostings); err != nil {
		return nil, fmt.Errorf("%s: authors: %w", op, err)
	}

	if err := r.Check(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return r, nil
}

func restoreVocabulary(tree *avl.Tree, table *hashindex.Table[*postings.List], terms []string, lists []models.Postings) error {
	for _, term := range terms {
		if _, inserted := tree.Insert(term); !inserted {
			return fmt.Errorf("%w: duplicate or blank term %q", ErrInvariantViolation, term)
		}
	}
	for _, p := range lists {
		if _, ok := table.Exact(p.Term); ok {
			return fmt.Errorf("%w: postings for %q listed twice", ErrInvariantViolation, p.Term)
		}
		table.Put(p.Term, postings.FromIDs(p.IDs))
	}
	return nil
}

// Rebuild restores snap with the collation and sizing of r.
func (r *Repository) Rebuild(snap models.Snapshot) (*Repository, error) {
	return FromSnapshot(r.log, r.compare, r.capacity, snap)
}
