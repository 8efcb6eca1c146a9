package loader

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"fts-articles/internal/domain/models"
	"fts-articles/internal/lib/logger/sl"
	"fts-articles/internal/utils/clean"
	"fts-articles/internal/workers"
)

const (
	headingAuthors  = "autores"
	headingAbstract = "resumen"
	headingKeywords = "palabras"

	articleExt = ".txt"
	jobType    = "parse_article"
)

var (
	ErrMalformedArticle = errors.New("malformed article file")

	listSeparator   = regexp.MustCompile(`[,;]\s*`)
	keywordsHeading = regexp.MustCompile(`(?i)^palabras\s*(claves:?)?`)
)

// FileResult is the outcome of parsing one file of a directory.
type FileResult struct {
	Path    string
	Article models.Article
	Err     error
}

type Loader struct {
	log  *slog.Logger
	pool *workers.WorkerPool[string, models.Article]
}

func NewLoader(log *slog.Logger, numWorkers int, recorder workers.Recorder) *Loader {
	return &Loader{
		log:  log,
		pool: workers.New[string, models.Article](log, numWorkers, recorder),
	}
}

// ParseFile reads and parses one article file.
func (l *Loader) ParseFile(ctx context.Context, path string) (article models.Article, err error) {
	const op = "loader.ParseFile"

	if err := ctx.Err(); err != nil {
		return models.Article{}, fmt.Errorf("%s: %w", op, err)
	}

	f, err := os.Open(path)
	if err != nil {
		return models.Article{}, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil {
			l.log.Error("Failed to close file", slog.String("path", path), sl.Err(closeErr))
		}
	}()

	article, err = ParseArticle(f)
	if err != nil {
		return models.Article{}, fmt.Errorf("%s: %s: %w", op, filepath.Base(path), err)
	}
	return article, nil
}

// LoadDirectory parses every .txt file in dir on the worker pool. Results are
// sorted by file name; parse failures are reported per file, not as an error.
func (l *Loader) LoadDirectory(ctx context.Context, dir string) ([]FileResult, error) {
	const op = "loader.LoadDirectory"

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	paths := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || !strings.EqualFold(filepath.Ext(e.Name()), articleExt) {
			continue
		}
		paths = append(paths, filepath.Join(dir, e.Name()))
	}
	sort.Strings(paths)

	jobs := make([]workers.Job[string, models.Article], 0, len(paths))
	for _, path := range paths {
		jobs = append(jobs, workers.Job[string, models.Article]{
			Description: workers.JobDescriptor{
				ID:       workers.JobID(filepath.Base(path)),
				JobType:  jobType,
				Metadata: workers.JobMetadata{"path": path},
			},
			ExecFn: l.ParseFile,
			Args:   path,
		})
	}

	l.log.Info("Parsing article files", slog.String("dir", dir), slog.Int("files", len(jobs)))

	results, err := l.pool.Run(ctx, jobs)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	out := make([]FileResult, 0, len(results))
	for i, r := range results {
		out = append(out, FileResult{Path: paths[i], Article: r.Value, Err: r.Err})
	}
	return out, nil
}

func isHeading(lower string) bool {
	return lower == headingAuthors || lower == headingAbstract || strings.HasPrefix(lower, headingKeywords)
}

func endsAuthors(trimmed string) bool {
	lower := strings.ToLower(trimmed)
	return trimmed == "" || lower == headingAbstract || strings.HasPrefix(lower, headingKeywords)
}

// ParseArticle reads an article in the plain text layout:
//
//	Title
//	Autores
//	Author One
//	Author Two
//	Resumen
//	Body text...
//	Palabras claves: one, two; three
//
// Only the title is required. Without an Autores heading the lines following
// the title are taken as authors; a line holding , or ; is a one-line list.
func ParseArticle(r io.Reader) (models.Article, error) {
	lines, err := readLines(r)
	if err != nil {
		return models.Article{}, err
	}
	if len(lines) == 0 {
		return models.Article{}, fmt.Errorf("%w: empty file", ErrMalformedArticle)
	}

	idxAbstract, idxAuthors, idxKeywords := -1, -1, -1
	for i, line := range lines {
		lower := strings.ToLower(strings.TrimSpace(line))
		if idxAbstract == -1 && lower == headingAbstract {
			idxAbstract = i
		}
		if idxAuthors == -1 && lower == headingAuthors {
			idxAuthors = i
		}
		if idxKeywords == -1 && strings.HasPrefix(lower, headingKeywords) {
			idxKeywords = i
		}
	}

	idxTitle := -1
	for i, line := range lines {
		t := strings.TrimSpace(line)
		if t == "" || isHeading(strings.ToLower(t)) {
			continue
		}
		idxTitle = i
		break
	}
	if idxTitle == -1 {
		return models.Article{}, fmt.Errorf("%w: no title", ErrMalformedArticle)
	}
	title := clean.Clean(lines[idxTitle])

	var authors []string
	if idxAuthors != -1 {
		for _, line := range lines[idxAuthors+1:] {
			t := strings.TrimSpace(line)
			if endsAuthors(t) {
				break
			}
			authors = append(authors, t)
		}
	} else {
		for _, line := range lines[idxTitle+1:] {
			t := strings.TrimSpace(line)
			if endsAuthors(t) {
				break
			}
			if strings.ContainsAny(t, ",;") {
				authors = append(authors, splitList(t)...)
				break
			}
			authors = append(authors, t)
		}
	}

	for i := range authors {
		authors[i] = clean.Clean(authors[i])
	}

	var keywords []string
	if idxKeywords != -1 {
		t := strings.TrimSpace(lines[idxKeywords])
		var part string
		if colon := strings.Index(t, ":"); colon >= 0 {
			part = t[colon+1:]
		} else {
			part = keywordsHeading.ReplaceAllString(t, "")
		}
		keywords = splitList(part)
	}

	var bodyStart int
	switch {
	case idxAbstract != -1:
		bodyStart = idxAbstract + 1
	case idxAuthors != -1:
		bodyStart = idxAuthors + 1 + len(authors)
	default:
		bodyStart = idxTitle + 1 + len(authors)
	}
	bodyEnd := len(lines)
	if idxKeywords != -1 && idxKeywords > bodyStart {
		bodyEnd = idxKeywords
	}

	var body string
	if bodyStart < bodyEnd {
		body = strings.TrimSpace(strings.Join(lines[bodyStart:bodyEnd], "\n"))
	}

	return models.NewArticle(title, authors, body, keywords), nil
}

func splitList(s string) []string {
	parts := listSeparator.Split(strings.TrimSpace(s), -1)
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func readLines(r io.Reader) ([]string, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var lines []string
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return lines, nil
}
