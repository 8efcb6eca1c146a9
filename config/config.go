package config

import (
	"errors"
	"fmt"
	"os"

	"fts-articles/internal/lib/collation"
	"fts-articles/internal/services/matcher"

	"github.com/ilyakaznacheev/cleanenv"
)

const (
	DriverLevelDB = "leveldb"
	DriverSQLite  = "sqlite"

	defaultConfigPath = "./config/config_local.yaml"
)

var ErrInvalidConfig = errors.New("invalid config")

type Config struct {
	Env          string          `yaml:"env" env-default:"local"`
	StoragePath  string          `yaml:"storage_path" env-required:"true"`
	ResourcesDir string          `yaml:"resources_dir" env-default:"./recursos"`
	Storage      StorageConfig   `yaml:"storage"`
	Collation    CollationConfig `yaml:"collation"`
	Index        IndexConfig     `yaml:"index"`
	Analysis     AnalysisConfig  `yaml:"analysis"`
	Workers      int             `yaml:"workers" env-default:"4"`
}

type StorageConfig struct {
	Driver string `yaml:"driver" env-default:"leveldb"`
}

type CollationConfig struct {
	Locale string `yaml:"locale" env-default:"es"`
}

type IndexConfig struct {
	Capacity int `yaml:"capacity" env-default:"97"`
}

// AnalysisConfig tunes the text matcher. Zero values take the defaults, so a
// max_gap of 0 can not be configured.
type AnalysisConfig struct {
	MaxGap   int    `yaml:"max_gap" env-default:"4"`
	Stemming bool   `yaml:"stemming"`
	Language string `yaml:"language" env-default:"spanish"`
}

// StemLanguage is the stemmer language, empty when stemming is off.
func (a AnalysisConfig) StemLanguage() string {
	if !a.Stemming {
		return ""
	}
	return a.Language
}

// MustLoad panics when the config can not be loaded.
func MustLoad(configPath, storagePath string) *Config {
	cfg, err := Load(configPath, storagePath)
	if err != nil {
		panic(err)
	}
	return cfg
}

// Load reads the YAML config. An empty configPath falls back to CONFIG_PATH,
// then to the default path; a non-empty storagePath overrides the file.
func Load(configPath, storagePath string) (*Config, error) {
	const op = "config.Load"

	if configPath == "" {
		configPath = fetchConfigPath()
	}

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("%s: config file does not exist: %s", op, configPath)
	}

	var cfg Config
	if err := cleanenv.ReadConfig(configPath, &cfg); err != nil {
		return nil, fmt.Errorf("%s: error loading config file: %w", op, err)
	}

	if storagePath != "" {
		cfg.StoragePath = storagePath
	}

	if err := validateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &cfg, nil
}

// fetchConfigPath fetches config path from environment variable or default if it was not set in command line flag.
// Priority: flag > env > default.
func fetchConfigPath() string {
	res := os.Getenv("CONFIG_PATH")
	if res == "" {
		res = defaultConfigPath
	}
	return res
}

func validateConfig(cfg *Config) error {
	switch cfg.Env {
	case "local", "dev", "prod":
	default:
		return fmt.Errorf("%w: unknown env %q", ErrInvalidConfig, cfg.Env)
	}

	switch cfg.Storage.Driver {
	case DriverLevelDB, DriverSQLite:
	default:
		return fmt.Errorf("%w: unknown storage driver %q", ErrInvalidConfig, cfg.Storage.Driver)
	}

	if cfg.Analysis.MaxGap < 0 {
		return fmt.Errorf("%w: negative analysis.max_gap %d", ErrInvalidConfig, cfg.Analysis.MaxGap)
	}
	if cfg.Analysis.Stemming && !matcher.SupportedLanguage(cfg.Analysis.Language) {
		return fmt.Errorf("%w: unsupported stemming language %q", ErrInvalidConfig, cfg.Analysis.Language)
	}

	if _, err := collation.New(cfg.Collation.Locale); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}

	if cfg.Workers < 1 {
		return fmt.Errorf("%w: workers must be positive, got %d", ErrInvalidConfig, cfg.Workers)
	}

	return nil
}
