// Package config holds the resolved application configuration.
//
// The configuration is constructed once in main and passed by reference into
// every component that needs it. There is no global singleton.
package config

import (
	"path/filepath"
	"time"

	qerrors "quotelake/internal/errors"
)

// Config is the complete application configuration.
type Config struct {
	// LogLevel is one of debug, info, warn, error.
	LogLevel string `yaml:"log_level"`

	// LogJSON switches log output to JSON format.
	LogJSON bool `yaml:"log_json"`

	Storage  StorageConfig  `yaml:"storage"`
	Universe UniverseConfig `yaml:"universe"`
	Sources  SourcesConfig  `yaml:"sources"`
}

// StorageConfig defines where raw payloads, partition files and the DuckDB
// database live.
type StorageConfig struct {
	// DataRoot is the root directory for all data.
	DataRoot string `yaml:"data_root"`

	// DuckDBFile is the database filename under DataRoot.
	DuckDBFile string `yaml:"duckdb_file"`

	// Dataset is the dataset name daily partitions are written under.
	Dataset string `yaml:"dataset"`

	// Compression is the Parquet compression algorithm: zstd, snappy, lz4, gzip, none.
	Compression string `yaml:"compression"`
}

// RawDir returns the directory raw source payloads are fetched into.
func (s StorageConfig) RawDir() string {
	return filepath.Join(s.DataRoot, "raw")
}

// ProcessedDir returns the partitioned-parquet storage root.
func (s StorageConfig) ProcessedDir() string {
	return filepath.Join(s.DataRoot, "processed")
}

// DuckDBPath returns the DuckDB database file path.
func (s StorageConfig) DuckDBPath() string {
	return filepath.Join(s.DataRoot, s.DuckDBFile)
}

// UniverseConfig defines the configured symbol universe.
type UniverseConfig struct {
	// Symbols is the default symbol universe.
	Symbols []string `yaml:"symbols"`

	// DefaultStart is the default backfill start date, YYYY-MM-DD.
	DefaultStart string `yaml:"default_start"`
}

// StartDate parses DefaultStart. Falls back to 2020-01-01 on a malformed value.
func (u UniverseConfig) StartDate() time.Time {
	t, err := time.Parse("2006-01-02", u.DefaultStart)
	if err != nil {
		return time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	}
	return t
}

// SourcesConfig holds per-provider settings.
type SourcesConfig struct {
	YFinance     YFinanceConfig     `yaml:"yfinance"`
	AlphaVantage AlphaVantageConfig `yaml:"alpha_vantage"`
	Stooq        StooqConfig        `yaml:"stooq"`
}

// YFinanceConfig configures the Yahoo Finance source.
type YFinanceConfig struct {
	// CallsPerMinute is a self-imposed rate limit.
	CallsPerMinute int `yaml:"calls_per_minute"`

	BaseURL string `yaml:"base_url"`

	// ProvidesAdjusted marks whether the source supplies a true adjusted close.
	ProvidesAdjusted bool `yaml:"provides_adjusted"`
}

// AlphaVantageConfig configures the Alpha Vantage source.
type AlphaVantageConfig struct {
	// APIKey can also be supplied via QUOTELAKE_AV_API_KEY or AV_API_KEY.
	APIKey string `yaml:"api_key" envconfig:"AV_API_KEY"`

	CallsPerMinute int `yaml:"calls_per_minute"`

	// CallsPerDay caps total daily calls. 0 means unlimited.
	CallsPerDay int `yaml:"calls_per_day"`

	BaseURL string `yaml:"base_url"`

	ProvidesAdjusted bool `yaml:"provides_adjusted"`
}

// StooqConfig configures the Stooq source.
type StooqConfig struct {
	CallsPerMinute int `yaml:"calls_per_minute"`

	BaseURL string `yaml:"base_url"`

	// SymbolSuffix is appended to tickers, e.g. ".us" for US equities.
	SymbolSuffix string `yaml:"symbol_suffix"`

	ProvidesAdjusted bool `yaml:"provides_adjusted"`
}

// ProvidesAdjusted reports whether a source supplies a true adjusted close.
// Unknown sources are assumed not to.
func (c *Config) ProvidesAdjusted(source string) bool {
	switch source {
	case "yfinance":
		return c.Sources.YFinance.ProvidesAdjusted
	case "alpha_vantage":
		return c.Sources.AlphaVantage.ProvidesAdjusted
	case "stooq":
		return c.Sources.Stooq.ProvidesAdjusted
	default:
		return false
	}
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		LogLevel: "info",
		Storage: StorageConfig{
			DataRoot:    "data",
			DuckDBFile:  "quotelake.duckdb",
			Dataset:     "daily_ohlcv",
			Compression: "zstd",
		},
		Universe: UniverseConfig{
			Symbols:      []string{"AAPL", "MSFT", "GOOGL", "AMZN", "NVDA"},
			DefaultStart: "2020-01-01",
		},
		Sources: SourcesConfig{
			YFinance: YFinanceConfig{
				CallsPerMinute:   2,
				BaseURL:          "https://query1.finance.yahoo.com/v8/finance/chart",
				ProvidesAdjusted: true,
			},
			AlphaVantage: AlphaVantageConfig{
				CallsPerMinute:   5,
				CallsPerDay:      25,
				BaseURL:          "https://www.alphavantage.co/query",
				ProvidesAdjusted: true,
			},
			Stooq: StooqConfig{
				CallsPerMinute:   10,
				BaseURL:          "https://stooq.com/q/d/l/",
				SymbolSuffix:     ".us",
				ProvidesAdjusted: false,
			},
		},
	}
}

// Validate checks the configuration for obvious mistakes.
func (c *Config) Validate() error {
	if c.Storage.DataRoot == "" {
		return qerrors.NewMissingField("storage.data_root")
	}
	if c.Storage.DuckDBFile == "" {
		return qerrors.NewMissingField("storage.duckdb_file")
	}
	if c.Storage.Dataset == "" {
		return qerrors.NewMissingField("storage.dataset")
	}
	if len(c.Universe.Symbols) == 0 {
		return qerrors.NewValidation("universe.symbols", "at least one symbol required")
	}
	return nil
}
