package fts

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"time"

	"fts-articles/internal/domain/models"
	"fts-articles/internal/lib/logger/sl"
	"fts-articles/internal/services/loader"
	"fts-articles/internal/services/matcher"
	"fts-articles/internal/services/repository"
	"fts-articles/internal/storage"
	"fts-articles/internal/utils"
	"fts-articles/internal/utils/frequency"
	"fts-articles/internal/utils/metrics"
)

var (
	ErrArticleNotFound = errors.New("article not found")
	ErrEmptyQuery      = errors.New("empty query")
)

type SnapshotSaver interface {
	SaveSnapshot(ctx context.Context, snap models.Snapshot) error
	DeleteSnapshot(ctx context.Context) error
}

type SnapshotProvider interface {
	LoadSnapshot(ctx context.Context) (models.Snapshot, error)
}

type ArticleLoader interface {
	ParseFile(ctx context.Context, path string) (models.Article, error)
	LoadDirectory(ctx context.Context, dir string) ([]loader.FileResult, error)
}

// Stats summarizes what the repository holds.
type Stats struct {
	Articles    int
	Keywords    int
	Authors     int
	KeywordTree utils.TreeStats
	AuthorTree  utils.TreeStats
	Stemming    bool
}

// FTS hosts the repository. Mutations take the write lock, queries the read
// lock; the repository itself is never shared outside.
type FTS struct {
	log              *slog.Logger
	mu               sync.RWMutex
	repo             *repository.Repository
	matcher          *matcher.Matcher
	snapshotSaver    SnapshotSaver
	snapshotProvider SnapshotProvider
	articleLoader    ArticleLoader
	metrics          *metrics.Metrics
}

func New(
	log *slog.Logger,
	repo *repository.Repository,
	m *matcher.Matcher,
	snapshotSaver SnapshotSaver,
	snapshotProvider SnapshotProvider,
	articleLoader ArticleLoader,
	metrics *metrics.Metrics,
) *FTS {
	return &FTS{
		log:              log,
		repo:             repo,
		matcher:          m,
		snapshotSaver:    snapshotSaver,
		snapshotProvider: snapshotProvider,
		articleLoader:    articleLoader,
		metrics:          metrics,
	}
}

// Restore replaces the repository with the stored snapshot. A missing
// snapshot leaves the repository empty.
func (f *FTS) Restore(ctx context.Context) error {
	const op = "fts.Restore"

	snap, err := f.snapshotProvider.LoadSnapshot(ctx)
	if err != nil {
		if errors.Is(err, storage.ErrSnapshotNotFound) {
			f.log.Info("No snapshot stored, starting empty")
			return nil
		}
		return fmt.Errorf("%s: %w", op, err)
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	repo, err := f.repo.Rebuild(snap)
	if err != nil {
		f.log.Error("Snapshot rejected", sl.Err(err))
		return fmt.Errorf("%s: %w", op, err)
	}
	f.repo = repo

	f.log.Info("Snapshot restored",
		slog.Int("articles", len(snap.Articles)),
		slog.Int("keywords", len(snap.Keywords)),
		slog.Int("authors", len(snap.Authors)),
	)
	return nil
}

// Persist saves the whole repository as one snapshot.
func (f *FTS) Persist(ctx context.Context) error {
	const op = "fts.Persist"

	f.mu.RLock()
	snap := f.repo.Snapshot()
	f.mu.RUnlock()

	if err := f.snapshotSaver.SaveSnapshot(ctx, snap); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	f.log.Debug("Snapshot saved", slog.Int("articles", len(snap.Articles)))
	return nil
}

// Clear swaps in an empty repository and deletes the stored snapshot.
func (f *FTS) Clear(ctx context.Context) error {
	const op = "fts.Clear"

	f.mu.Lock()
	f.repo = f.repo.Empty()
	f.mu.Unlock()

	if err := f.snapshotSaver.DeleteSnapshot(ctx); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	f.log.Info("Repository cleared")
	return nil
}

func rejectReason(err error) string {
	switch {
	case errors.Is(err, repository.ErrDuplicateTitle):
		return "duplicate"
	case errors.Is(err, repository.ErrEmptyTitle):
		return "empty_title"
	case errors.Is(err, loader.ErrMalformedArticle):
		return "malformed"
	default:
		return "other"
	}
}

// AddArticle indexes a. A title matching a stored one, ignoring case and
// surrounding whitespace, is a duplicate.
func (f *FTS) AddArticle(ctx context.Context, a models.Article) error {
	const op = "fts.AddArticle"

	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.add(a); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// add expects the write lock.
func (f *FTS) add(a models.Article) error {
	if strings.TrimSpace(a.Title) != "" {
		if existing, ok := f.repo.FindByTitle(a.Title); ok {
			err := fmt.Errorf("%w: %q", repository.ErrDuplicateTitle, existing.Title)
			f.metrics.ArticleRejected(rejectReason(err))
			return err
		}
	}

	if err := f.repo.AddArticle(a); err != nil {
		f.metrics.ArticleRejected(rejectReason(err))
		return err
	}

	f.metrics.ArticleIndexed()
	f.log.Debug("Article indexed",
		slog.String("id", a.ID),
		slog.String("title", a.Title),
		slog.Int("keywords", len(a.Keywords)),
		slog.Int("authors", len(a.Authors)),
	)
	return nil
}

// AddFile parses one article file and indexes it.
func (f *FTS) AddFile(ctx context.Context, path string) (models.Article, error) {
	const op = "fts.AddFile"

	a, err := f.articleLoader.ParseFile(ctx, path)
	if err != nil {
		f.metrics.ArticleRejected(rejectReason(err))
		return models.Article{}, fmt.Errorf("%s: %w", op, err)
	}

	if err := f.AddArticle(ctx, a); err != nil {
		return models.Article{}, fmt.Errorf("%s: %w", op, err)
	}
	return a, nil
}

// LoadDirectory parses the directory concurrently and inserts the articles
// one by one in file name order. Malformed files and duplicates are skipped.
func (f *FTS) LoadDirectory(ctx context.Context, dir string) (models.LoadResult, error) {
	const op = "fts.LoadDirectory"

	start := time.Now()

	files, err := f.articleLoader.LoadDirectory(ctx, dir)
	if err != nil {
		return models.LoadResult{}, fmt.Errorf("%s: %w", op, err)
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	rate := frequency.New(time.Second)

	var res models.LoadResult
	for _, file := range files {
		if file.Err != nil {
			f.log.Warn("Skipping article file", slog.String("path", file.Path), sl.Err(file.Err))
			f.metrics.ArticleRejected(rejectReason(file.Err))
			res.Skipped++
			continue
		}
		if err := f.add(file.Article); err != nil {
			f.log.Info("Skipping article", slog.String("path", file.Path), sl.Err(err))
			res.Skipped++
			continue
		}
		res.Added++
		rate.Add(1)
		rate.Check(f.log, "Indexing articles")
	}

	f.log.Info("Directory loaded",
		slog.String("dir", dir),
		slog.Int("added", res.Added),
		slog.Int("skipped", res.Skipped),
		slog.String("took", utils.FormatDuration(time.Since(start))),
	)
	return res, nil
}

func (f *FTS) FindByTitle(title string) (models.Article, error) {
	const op = "fts.FindByTitle"

	f.mu.RLock()
	defer f.mu.RUnlock()

	a, ok := f.repo.FindByTitle(title)
	if !ok {
		return models.Article{}, fmt.Errorf("%s: %w: %q", op, ErrArticleNotFound, title)
	}
	return a, nil
}

// SearchKeyword returns the titles of the articles tagged with term.
func (f *FTS) SearchKeyword(term string) ([]string, error) {
	const op = "fts.SearchKeyword"

	if strings.TrimSpace(term) == "" {
		return nil, fmt.Errorf("%s: %w", op, ErrEmptyQuery)
	}

	f.mu.RLock()
	defer f.mu.RUnlock()

	return f.repo.TitlesFor(f.repo.FindByKeyword(term)), nil
}

// SearchAuthor returns the titles of the articles written by name.
func (f *FTS) SearchAuthor(name string) ([]string, error) {
	const op = "fts.SearchAuthor"

	if strings.TrimSpace(name) == "" {
		return nil, fmt.Errorf("%s: %w", op, ErrEmptyQuery)
	}

	f.mu.RLock()
	defer f.mu.RUnlock()

	ids, err := f.repo.FindByAuthor(name)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return f.repo.TitlesFor(ids), nil
}

func (f *FTS) Keywords() []string {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.repo.SortedKeywords()
}

func (f *FTS) Authors() []string {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.repo.SortedAuthors()
}

// Titles sorts the stored titles; an empty locale keeps the repository
// collation.
func (f *FTS) Titles(locale string) ([]string, error) {
	const op = "fts.Titles"

	f.mu.RLock()
	defer f.mu.RUnlock()

	titles, err := f.repo.SortedTitles(locale)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return titles, nil
}

// Analyze scores every keyword of the vocabulary against the body of the
// article titled title.
func (f *FTS) Analyze(ctx context.Context, title string) (models.AnalysisReport, error) {
	const op = "fts.Analyze"

	start := time.Now()

	f.mu.RLock()
	a, ok := f.repo.FindByTitle(title)
	if !ok {
		f.mu.RUnlock()
		return models.AnalysisReport{}, fmt.Errorf("%s: %w: %q", op, ErrArticleNotFound, title)
	}

	vocabulary := f.repo.SortedKeywords()
	terms := make([]models.TermFrequency, 0, len(vocabulary))
	for _, term := range vocabulary {
		if err := ctx.Err(); err != nil {
			f.mu.RUnlock()
			return models.AnalysisReport{}, fmt.Errorf("%s: %w", op, err)
		}

		tf := models.TermFrequency{
			Term:       term,
			Phrase:     f.matcher.PhraseFrequency(a.Body, term),
			TokensMeta: f.matcher.TokenFrequency(a.Body, term),
		}
		if f.repo.KeywordTagged(term, a.ID) {
			tf.TokensMeta++
		}
		if f.matcher.Stemming() {
			tf.Stems = f.matcher.StemFrequency(a.Body, term)
		}
		terms = append(terms, tf)
	}
	f.mu.RUnlock()

	took := time.Since(start)
	f.metrics.ObserveAnalysis(took)

	f.log.Debug("Article analysed",
		slog.String("title", a.Title),
		slog.Int("terms", len(terms)),
		slog.String("took", utils.FormatDuration(took)),
	)

	return models.AnalysisReport{
		ArticleID: a.ID,
		Title:     a.Title,
		Authors:   slices.Clone(a.Authors),
		Terms:     terms,
	}, nil
}

// KeywordDetail reports, for every article tagged with term, how often the
// term occurs in its body.
func (f *FTS) KeywordDetail(term string) (models.KeywordReport, error) {
	const op = "fts.KeywordDetail"

	if strings.TrimSpace(term) == "" {
		return models.KeywordReport{}, fmt.Errorf("%s: %w", op, ErrEmptyQuery)
	}

	f.mu.RLock()
	defer f.mu.RUnlock()

	report := models.KeywordReport{
		Keyword:     term,
		Occurrences: []models.KeywordOccurrence{},
		Titles:      []string{},
	}

	stored, ok := f.repo.Keyword(term)
	if !ok {
		return report, nil
	}
	report.Keyword = stored

	ids := f.repo.FindByKeyword(stored)
	articles := f.repo.ArticlesFor(ids)
	if len(articles) != len(ids) {
		f.log.Error("Postings for unknown articles",
			slog.String("keyword", stored),
			slog.Int("missing", len(ids)-len(articles)),
		)
	}

	for _, a := range articles {
		occ := models.KeywordOccurrence{
			ArticleID:  a.ID,
			Title:      a.Title,
			Phrase:     f.matcher.PhraseFrequency(a.Body, stored),
			TokensMeta: f.matcher.TokenFrequency(a.Body, stored) + 1,
		}
		report.Occurrences = append(report.Occurrences, occ)
		report.Total += occ.Phrase
		report.Titles = append(report.Titles, a.Title)
	}
	return report, nil
}

func (f *FTS) Stats() Stats {
	f.mu.RLock()
	defer f.mu.RUnlock()

	keywordTree, authorTree := f.repo.VocabularyStats()
	return Stats{
		Articles:    f.repo.Len(),
		Keywords:    keywordTree.Nodes,
		Authors:     authorTree.Nodes,
		KeywordTree: keywordTree,
		AuthorTree:  authorTree,
		Stemming:    f.matcher.Stemming(),
	}
}

// Check verifies the repository invariants.
func (f *FTS) Check() error {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.repo.Check()
}
