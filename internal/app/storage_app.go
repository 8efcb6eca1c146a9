package app

import (
	"context"
	"fmt"

	"fts-articles/config"
	"fts-articles/internal/domain/models"
	"fts-articles/internal/storage/leveldb"
	"fts-articles/internal/storage/sqlite"
)

// Store is what both storage drivers provide.
type Store interface {
	SaveSnapshot(ctx context.Context, snap models.Snapshot) error
	LoadSnapshot(ctx context.Context) (models.Snapshot, error)
	DeleteSnapshot(ctx context.Context) error
	Close() error
}

type StorageApp struct {
	storage Store
	driver  string
}

func NewStorageApp(driver, storagePath string) (*StorageApp, error) {
	const op = "app.NewStorageApp"

	var (
		storage Store
		err     error
	)
	switch driver {
	case config.DriverLevelDB:
		storage, err = leveldb.New(storagePath)
	case config.DriverSQLite:
		storage, err = sqlite.New(storagePath)
	default:
		return nil, fmt.Errorf("%s: unknown storage driver %q", op, driver)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &StorageApp{storage: storage, driver: driver}, nil
}

func (s *StorageApp) Stop() error {
	return s.storage.Close()
}

func (s *StorageApp) Storage() Store {
	return s.storage
}

func (s *StorageApp) Driver() string {
	return s.driver
}
