package repository

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"fts-articles/internal/domain/models"
	"fts-articles/internal/lib/collation"
	"fts-articles/internal/lib/logger/sl"
	"fts-articles/internal/services/fts/avl"
	"fts-articles/internal/services/fts/hashindex"
	"fts-articles/internal/services/fts/postings"
	"fts-articles/internal/utils"
	"fts-articles/internal/utils/clean"
)

var (
	ErrEmptyTitle         = errors.New("article title is empty")
	ErrDuplicateTitle     = errors.New("article with this title already exists")
	ErrInvariantViolation = errors.New("index invariant violated")
)

// Repository owns the title table, the keyword and author vocabularies and the
// term to article id posting tables. It is not safe for concurrent mutation.
type Repository struct {
	log      *slog.Logger
	compare  collation.Compare
	capacity int

	articles    *hashindex.Table[models.Article]
	keywordsAVL *avl.Tree
	authorsAVL  *avl.Tree
	keywordMap  *hashindex.Table[*postings.List]
	authorMap   *hashindex.Table[*postings.List]
}

func foldTitle(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// New builds an empty repository. capacity sets the initial bucket count of
// every hash table; values below 2 select the default.
func New(log *slog.Logger, compare collation.Compare, capacity int) *Repository {
	return &Repository{
		log:         log,
		compare:     compare,
		capacity:    capacity,
		articles:    hashindex.New[models.Article](hashindex.WithCapacity(capacity), hashindex.WithFallback(foldTitle)),
		keywordsAVL: avl.New(compare),
		authorsAVL:  avl.New(compare),
		keywordMap:  hashindex.New[*postings.List](hashindex.WithCapacity(capacity)),
		authorMap:   hashindex.New[*postings.List](hashindex.WithCapacity(capacity)),
	}
}

// Empty returns a fresh repository with the same collation and sizing.
func (r *Repository) Empty() *Repository {
	return New(r.log, r.compare, r.capacity)
}

// AddArticle stores a and indexes its keywords and authors. Spellings that
// collate equal to an existing vocabulary term share that term's posting list.
func (r *Repository) AddArticle(a models.Article) error {
	const op = "repository.AddArticle"

	if strings.TrimSpace(a.Title) == "" {
		return fmt.Errorf("%s: %w", op, ErrEmptyTitle)
	}
	if _, ok := r.articles.Exact(a.Title); ok {
		return fmt.Errorf("%s: %w: %q", op, ErrDuplicateTitle, a.Title)
	}

	r.articles.Put(a.Title, a)

	for _, k := range a.Keywords {
		term := clean.Term(k)
		if term == "" {
			continue
		}
		index(r.keywordsAVL, r.keywordMap, term, a.ID)
	}
	for _, au := range a.Authors {
		name := strings.TrimSpace(au)
		if name == "" {
			continue
		}
		index(r.authorsAVL, r.authorMap, name, a.ID)
	}
	return nil
}

func index(tree *avl.Tree, table *hashindex.Table[*postings.List], term, id string) {
	stored, _ := tree.Insert(term)
	list, ok := table.Exact(stored)
	if !ok {
		list = postings.New()
		table.Put(stored, list)
	}
	list.Add(id)
}

// FindByTitle looks the title up exactly, then ignoring case and surrounding
// whitespace.
func (r *Repository) FindByTitle(title string) (models.Article, bool) {
	return r.articles.Get(title)
}

// Keyword resolves term to its spelling in the keyword vocabulary.
func (r *Repository) Keyword(term string) (string, bool) {
	return r.keywordsAVL.Find(clean.Term(term))
}

// FindByKeyword returns the ids tagged with term, or an empty slice.
func (r *Repository) FindByKeyword(term string) []string {
	stored, ok := r.Keyword(term)
	if !ok {
		return []string{}
	}
	list, ok := r.keywordMap.Exact(stored)
	if !ok {
		r.log.Error("keyword in vocabulary without postings", "keyword", stored)
		return []string{}
	}
	return list.IDs()
}

// FindByAuthor checks the author vocabulary before fetching the posting list.
// Both structures must agree; a mismatch is reported as ErrInvariantViolation.
func (r *Repository) FindByAuthor(name string) ([]string, error) {
	const op = "repository.FindByAuthor"

	name = strings.TrimSpace(name)
	stored, ok := r.authorsAVL.Find(name)
	if !ok {
		if _, inMap := r.authorMap.Exact(name); inMap {
			err := fmt.Errorf("%s: %w: author %q has postings but is not in the vocabulary", op, ErrInvariantViolation, name)
			r.log.Error("Author lookup mismatch", sl.Err(err))
			return nil, err
		}
		return []string{}, nil
	}

	list, ok := r.authorMap.Exact(stored)
	if !ok || list.Len() == 0 {
		err := fmt.Errorf("%s: %w: author %q is in the vocabulary without postings", op, ErrInvariantViolation, stored)
		r.log.Error("Author lookup mismatch", sl.Err(err))
		return nil, err
	}
	return list.IDs(), nil
}

// KeywordTagged reports whether the article id is in the posting list of the
// vocabulary term.
func (r *Repository) KeywordTagged(term, id string) bool {
	list, ok := r.keywordMap.Exact(term)
	return ok && list.Contains(id)
}

// SortedKeywords is already in collation order; callers must not re-sort.
func (r *Repository) SortedKeywords() []string {
	return r.keywordsAVL.Keys()
}

func (r *Repository) SortedAuthors() []string {
	return r.authorsAVL.Keys()
}

// SortedTitles merge-sorts the title table keys. An empty locale uses the
// repository collation.
func (r *Repository) SortedTitles(locale string) ([]string, error) {
	const op = "repository.SortedTitles"

	cmp := r.compare
	if locale != "" {
		var err error
		cmp, err = collation.New(locale)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
	}
	return collation.Sort(r.articles.Keys(), cmp), nil
}

// ArticlesFor maps ids to stored articles in one pass over the title table,
// skipping ids with no stored article.
func (r *Repository) ArticlesFor(ids []string) []models.Article {
	byID := make(map[string]models.Article, r.articles.Len())
	for _, a := range r.articles.Values() {
		byID[a.ID] = a
	}
	found := make([]models.Article, 0, len(ids))
	for _, id := range ids {
		if a, ok := byID[id]; ok {
			found = append(found, a)
		}
	}
	return found
}

// TitlesFor maps ids to titles, skipping ids with no stored article.
func (r *Repository) TitlesFor(ids []string) []string {
	found := r.ArticlesFor(ids)
	titles := make([]string, 0, len(found))
	for _, a := range found {
		titles = append(titles, a.Title)
	}
	return titles
}

func (r *Repository) Articles() []models.Article {
	return r.articles.Values()
}

func (r *Repository) Len() int {
	return r.articles.Len()
}

// Check verifies that each vocabulary and its posting table hold the same
// terms and that every posted id belongs to a stored article.
func (r *Repository) Check() error {
	const op = "repository.Check"

	ids := make(map[string]struct{}, r.articles.Len())
	for _, a := range r.articles.Values() {
		ids[a.ID] = struct{}{}
	}

	pairs := []struct {
		kind  string
		tree  *avl.Tree
		table *hashindex.Table[*postings.List]
	}{
		{"keyword", r.keywordsAVL, r.keywordMap},
		{"author", r.authorsAVL, r.authorMap},
	}
	for _, p := range pairs {
		for _, term := range p.tree.Keys() {
			list, ok := p.table.Exact(term)
			if !ok || list.Len() == 0 {
				return fmt.Errorf("%s: %w: %s %q has no postings", op, ErrInvariantViolation, p.kind, term)
			}
		}
		for _, term := range p.table.Keys() {
			stored, ok := p.tree.Find(term)
			if !ok || stored != term {
				return fmt.Errorf("%s: %w: %s %q missing from vocabulary", op, ErrInvariantViolation, p.kind, term)
			}
			list, _ := p.table.Exact(term)
			for _, id := range list.IDs() {
				if _, ok := ids[id]; !ok {
					return fmt.Errorf("%s: %w: %s %q posts unknown article %q", op, ErrInvariantViolation, p.kind, term, id)
				}
			}
		}
	}
	return nil
}

// VocabularyStats reports the shape of the keyword and author trees.
func (r *Repository) VocabularyStats() (keywords, authors utils.TreeStats) {
	return r.keywordsAVL.Stats(), r.authorsAVL.Stats()
}
