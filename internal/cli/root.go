package cli

import (
	"context"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"fts-articles/config"
	"fts-articles/internal/app"
	"fts-articles/internal/lib/logger/sl"
)

const (
	envLocal = "local"
	envDev   = "dev"
	envProd  = "prod"
)

var (
	configPath  string
	storagePath string
)

var rootCmd = &cobra.Command{
	Use:   "fts",
	Short: "Index and analyse research article abstracts",
	Long: `fts keeps a repository of article abstracts indexed by title, keyword and
author, and reports how often each known keyword occurs in an abstract.
The repository is restored from storage on every run and saved after
commands that change it.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to the config file (default $CONFIG_PATH or ./config/config_local.yaml)")
	rootCmd.PersistentFlags().StringVar(&storagePath, "storage-path", "", "override storage_path from the config")
}

// Execute runs the command tree.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

type session struct {
	cfg *config.Config
	log *slog.Logger
	app *app.App
}

type runFn func(cmd *cobra.Command, args []string, s *session) (mutated bool, err error)

// withApp loads the config, opens storage and restores the repository around
// fn. The snapshot is saved when fn reports a change, and the metrics recorded
// during the run are logged at debug level.
func withApp(fn runFn) func(cmd *cobra.Command, args []string) error {
	return func(cmd *cobra.Command, args []string) (err error) {
		cfg, err := config.Load(configPath, storagePath)
		if err != nil {
			return err
		}

		log := setupLogger(cfg.Env, cmd.ErrOrStderr())
		log.Debug("fts", slog.String("env", cfg.Env), slog.String("driver", cfg.Storage.Driver))

		application, err := app.New(log, cfg)
		if err != nil {
			return err
		}
		defer func() {
			if stopErr := application.StorageApp.Stop(); stopErr != nil {
				log.Error("Failed to close storage", sl.Err(stopErr))
				if err == nil {
					err = stopErr
				}
			}
		}()

		ctx := cmd.Context()
		if err := application.App.Restore(ctx); err != nil {
			return err
		}

		mutated, err := fn(cmd, args, &session{cfg: cfg, log: log, app: application})
		if err != nil {
			return err
		}

		if mutated {
			if err := application.App.Persist(ctx); err != nil {
				return err
			}
		}

		application.Metrics.PrintMetrics(log)
		return nil
	}
}

func setupLogger(env string, w io.Writer) *slog.Logger {
	var log *slog.Logger

	switch env {
	case envLocal:
		log = slog.New(
			slog.NewTextHandler(w, &slog.HandlerOptions{Level: slog.LevelDebug}),
		)
	case envDev:
		log = slog.New(
			slog.NewJSONHandler(w, &slog.HandlerOptions{Level: slog.LevelDebug}),
		)
	case envProd:
		log = slog.New(
			slog.NewJSONHandler(w, &slog.HandlerOptions{Level: slog.LevelInfo}),
		)
	default:
		log = slog.New(
			slog.NewTextHandler(w, &slog.HandlerOptions{Level: slog.LevelInfo}),
		)
	}

	return log
}
