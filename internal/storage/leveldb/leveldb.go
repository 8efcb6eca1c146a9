package leveldb

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"fts-articles/internal/domain/models"
	"fts-articles/internal/storage"

	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/util"
)

const (
	articlePrefix = "article:"
	keywordPrefix = "keyword:"
	authorPrefix  = "author:"

	metaArticles = "meta:articles"
	metaKeywords = "meta:keywords"
	metaAuthors  = "meta:authors"
)

// Storage keeps one repository snapshot. Articles and posting lists live under
// their own keys; the meta keys keep article and vocabulary order.
type Storage struct {
	db *leveldb.DB
}

func New(path string) (*Storage, error) {
	const op = "storage.leveldb.New"

	db, err := leveldb.OpenFile(path, nil)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &Storage{db: db}, nil
}

func (s *Storage) Close() error {
	return s.db.Close()
}

// SaveSnapshot replaces whatever was stored with snap in one atomic batch.
func (s *Storage) SaveSnapshot(ctx context.Context, snap models.Snapshot) error {
	const op = "storage.leveldb.SaveSnapshot"

	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	batch := new(leveldb.Batch)
	s.deleteAll(batch)

	articleIDs := make([]string, 0, len(snap.Articles))
	for _, a := range snap.Articles {
		if err := putJSON(batch, articlePrefix+a.ID, a); err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
		articleIDs = append(articleIDs, a.ID)
	}
	for _, p := range snap.KeywordPostings {
		if err := putJSON(batch, keywordPrefix+p.Term, p.IDs); err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
	}
	for _, p := range snap.AuthorPostings {
		if err := putJSON(batch, authorPrefix+p.Term, p.IDs); err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
	}

	meta := map[string][]string{
		metaArticles: articleIDs,
		metaKeywords: orEmpty(snap.Keywords),
		metaAuthors:  orEmpty(snap.Authors),
	}
	for key, list := range meta {
		if err := putJSON(batch, key, list); err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
	}

	if err := s.db.Write(batch, nil); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

func (s *Storage) LoadSnapshot(ctx context.Context) (models.Snapshot, error) {
	const op = "storage.leveldb.LoadSnapshot"

	if err := ctx.Err(); err != nil {
		return models.Snapshot{}, fmt.Errorf("%s: %w", op, err)
	}

	var articleIDs []string
	if err := s.getJSON(metaArticles, &articleIDs); err != nil {
		if errors.Is(err, leveldb.ErrNotFound) {
			return models.Snapshot{}, fmt.Errorf("%s: %w", op, storage.ErrSnapshotNotFound)
		}
		return models.Snapshot{}, fmt.Errorf("%s: %w", op, err)
	}

	snap := models.Snapshot{Articles: make([]models.Article, 0, len(articleIDs))}
	for _, id := range articleIDs {
		var a models.Article
		if err := s.getJSON(articlePrefix+id, &a); err != nil {
			return models.Snapshot{}, fmt.Errorf("%s: article %s: %w", op, id, corrupt(err))
		}
		snap.Articles = append(snap.Articles, a)
	}

	var err error
	if snap.Keywords, snap.KeywordPostings, err = s.loadVocabulary(metaKeywords, keywordPrefix); err != nil {
		return models.Snapshot{}, fmt.Errorf("%s: %w", op, err)
	}
	if snap.Authors, snap.AuthorPostings, err = s.loadVocabulary(metaAuthors, authorPrefix); err != nil {
		return models.Snapshot{}, fmt.Errorf("%s: %w", op, err)
	}

	return snap, nil
}

func (s *Storage) loadVocabulary(metaKey, prefix string) ([]string, []models.Postings, error) {
	var terms []string
	if err := s.getJSON(metaKey, &terms); err != nil {
		return nil, nil, fmt.Errorf("%s: %w", metaKey, corrupt(err))
	}

	lists := make([]models.Postings, 0, len(terms))
	for _, term := range terms {
		var ids []string
		if err := s.getJSON(prefix+term, &ids); err != nil {
			return nil, nil, fmt.Errorf("%s%s: %w", prefix, term, corrupt(err))
		}
		lists = append(lists, models.Postings{Term: term, IDs: ids})
	}
	return terms, lists, nil
}

// DeleteSnapshot drops every stored key.
func (s *Storage) DeleteSnapshot(ctx context.Context) error {
	const op = "storage.leveldb.DeleteSnapshot"

	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	batch := new(leveldb.Batch)
	s.deleteAll(batch)
	if err := s.db.Write(batch, nil); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

func (s *Storage) deleteAll(batch *leveldb.Batch) {
	for _, prefix := range []string{articlePrefix, keywordPrefix, authorPrefix, "meta:"} {
		iter := s.db.NewIterator(util.BytesPrefix([]byte(prefix)), nil)
		for iter.Next() {
			key := make([]byte, len(iter.Key()))
			copy(key, iter.Key())
			batch.Delete(key)
		}
		iter.Release()
	}
}

func putJSON(batch *leveldb.Batch, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	batch.Put([]byte(key), data)
	return nil
}

func (s *Storage) getJSON(key string, v any) error {
	data, err := s.db.Get([]byte(key), nil)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, v)
}

func corrupt(err error) error {
	return fmt.Errorf("%w: %w", storage.ErrCorruptSnapshot, err)
}

func orEmpty(list []string) []string {
	if list == nil {
		return []string{}
	}
	return list
}
