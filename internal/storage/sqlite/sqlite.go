package sqlite

import (
	"context"
	"database/sql"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"fts-articles/internal/domain/models"
	"fts-articles/internal/storage"
)

//go:embed schema.sql
var schema string

const (
	kindKeyword = "keyword"
	kindAuthor  = "author"
)

// Storage keeps one repository snapshot in a single SQLite file.
type Storage struct {
	db   *sql.DB
	path string
}

func New(path string) (*Storage, error) {
	const op = "storage.sqlite.New"

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	db, err := sql.Open("sqlite", path+"?_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("%s: applying schema: %w", op, err)
	}

	return &Storage{db: db, path: path}, nil
}

func (s *Storage) Close() error {
	return s.db.Close()
}

func (s *Storage) Path() string {
	return s.path
}

// SaveSnapshot replaces the stored snapshot inside one transaction.
func (s *Storage) SaveSnapshot(ctx context.Context, snap models.Snapshot) (err error) {
	const op = "storage.sqlite.SaveSnapshot"

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if err = clearTables(ctx, tx); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	for i, a := range snap.Articles {
		data, marshalErr := json.Marshal(a)
		if marshalErr != nil {
			err = marshalErr
			return fmt.Errorf("%s: %w", op, err)
		}
		if _, err = tx.ExecContext(ctx,
			`INSERT INTO articles (position, id, data) VALUES (?, ?, ?)`, i, a.ID, string(data)); err != nil {
			return fmt.Errorf("%s: article %s: %w", op, a.ID, err)
		}
	}

	if err = saveVocabulary(ctx, tx, kindKeyword, snap.Keywords, snap.KeywordPostings); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err = saveVocabulary(ctx, tx, kindAuthor, snap.Authors, snap.AuthorPostings); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if _, err = tx.ExecContext(ctx,
		`INSERT INTO snapshot_meta (id, saved_at) VALUES (1, ?)`, time.Now().UTC().Format(time.RFC3339)); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

func saveVocabulary(ctx context.Context, tx *sql.Tx, kind string, terms []string, lists []models.Postings) error {
	for i, term := range terms {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO vocabulary (kind, position, term) VALUES (?, ?, ?)`, kind, i, term); err != nil {
			return fmt.Errorf("%s %q: %w", kind, term, err)
		}
	}
	for _, p := range lists {
		for i, id := range p.IDs {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO postings (kind, term, position, article_id) VALUES (?, ?, ?, ?)`,
				kind, p.Term, i, id); err != nil {
				return fmt.Errorf("%s %q postings: %w", kind, p.Term, err)
			}
		}
	}
	return nil
}

func clearTables(ctx context.Context, tx *sql.Tx) error {
	for _, table := range []string{"snapshot_meta", "articles", "vocabulary", "postings"} {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("clearing %s: %w", table, err)
		}
	}
	return nil
}

func (s *Storage) LoadSnapshot(ctx context.Context) (models.Snapshot, error) {
	const op = "storage.sqlite.LoadSnapshot"

	var savedAt string
	err := s.db.QueryRowContext(ctx, `SELECT saved_at FROM snapshot_meta WHERE id = 1`).Scan(&savedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Snapshot{}, fmt.Errorf("%s: %w", op, storage.ErrSnapshotNotFound)
	}
	if err != nil {
		return models.Snapshot{}, fmt.Errorf("%s: %w", op, err)
	}

	snap := models.Snapshot{}
	if snap.Articles, err = s.loadArticles(ctx); err != nil {
		return models.Snapshot{}, fmt.Errorf("%s: %w", op, err)
	}
	if snap.Keywords, snap.KeywordPostings, err = s.loadVocabulary(ctx, kindKeyword); err != nil {
		return models.Snapshot{}, fmt.Errorf("%s: %w", op, err)
	}
	if snap.Authors, snap.AuthorPostings, err = s.loadVocabulary(ctx, kindAuthor); err != nil {
		return models.Snapshot{}, fmt.Errorf("%s: %w", op, err)
	}
	return snap, nil
}

func (s *Storage) loadArticles(ctx context.Context) ([]models.Article, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT data FROM articles ORDER BY position`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	articles := make([]models.Article, 0)
	for rows.Next() {
		var data string
		if err := rows.Scan(&data); err != nil {
			return nil, err
		}
		var a models.Article
		if err := json.Unmarshal([]byte(data), &a); err != nil {
			return nil, fmt.Errorf("%w: %w", storage.ErrCorruptSnapshot, err)
		}
		articles = append(articles, a)
	}
	return articles, rows.Err()
}

func (s *Storage) loadVocabulary(ctx context.Context, kind string) ([]string, []models.Postings, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT term FROM vocabulary WHERE kind = ? ORDER BY position`, kind)
	if err != nil {
		return nil, nil, err
	}
	terms := make([]string, 0)
	for rows.Next() {
		var term string
		if err := rows.Scan(&term); err != nil {
			rows.Close()
			return nil, nil, err
		}
		terms = append(terms, term)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, nil, err
	}

	lists := make([]models.Postings, 0, len(terms))
	for _, term := range terms {
		ids, err := s.loadPostings(ctx, kind, term)
		if err != nil {
			return nil, nil, err
		}
		lists = append(lists, models.Postings{Term: term, IDs: ids})
	}
	return terms, lists, nil
}

func (s *Storage) loadPostings(ctx context.Context, kind, term string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT article_id FROM postings WHERE kind = ? AND term = ? ORDER BY position`, kind, term)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ids := make([]string, 0)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (s *Storage) DeleteSnapshot(ctx context.Context) (err error) {
	const op = "storage.sqlite.DeleteSnapshot"

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err = clearTables(ctx, tx); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("%s: %w", op, err)
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}
