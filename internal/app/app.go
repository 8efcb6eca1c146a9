package app

import (
	"fmt"
	"log/slog"

	"fts-articles/config"
	"fts-articles/internal/lib/collation"
	"fts-articles/internal/services/fts"
	"fts-articles/internal/services/loader"
	"fts-articles/internal/services/matcher"
	"fts-articles/internal/services/repository"
	"fts-articles/internal/utils/metrics"
)

type App struct {
	App        *fts.FTS
	StorageApp *StorageApp
	Metrics    *metrics.Metrics
}

func New(log *slog.Logger, cfg *config.Config) (*App, error) {
	const op = "app.New"

	compare, err := collation.New(cfg.Collation.Locale)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	m, err := matcher.New(cfg.Analysis.MaxGap, cfg.Analysis.StemLanguage())
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	storageApp, err := NewStorageApp(cfg.Storage.Driver, cfg.StoragePath)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	appMetrics := metrics.New()
	repo := repository.New(log, compare, cfg.Index.Capacity)
	articleLoader := loader.NewLoader(log, cfg.Workers, appMetrics)

	ftsService := fts.New(log, repo, m, storageApp.Storage(), storageApp.Storage(), articleLoader, appMetrics)

	return &App{
		App:        ftsService,
		StorageApp: storageApp,
		Metrics:    appMetrics,
	}, nil
}
