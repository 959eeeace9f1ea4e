package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	qerrors "quotelake/internal/errors"
)

func TestDefaultValidates(t *testing.T) {
	if err := Default().Validate(); err != nil {
		t.Fatalf("default config must validate: %v", err)
	}
}

func TestValidate_MissingFields(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"data_root", func(c *Config) { c.Storage.DataRoot = "" }},
		{"duckdb_file", func(c *Config) { c.Storage.DuckDBFile = "" }},
		{"dataset", func(c *Config) { c.Storage.Dataset = "" }},
		{"symbols", func(c *Config) { c.Universe.Symbols = nil }},
	}

	for _, tc := range cases {
		cfg := Default()
		tc.mutate(cfg)
		if err := cfg.Validate(); err == nil {
			t.Errorf("%s: expected validation error", tc.name)
		}
	}
}

func TestStoragePaths(t *testing.T) {
	s := StorageConfig{DataRoot: "/var/lib/quotelake", DuckDBFile: "quotelake.duckdb"}

	if got := s.RawDir(); got != filepath.Join("/var/lib/quotelake", "raw") {
		t.Errorf("unexpected raw dir: %s", got)
	}
	if got := s.ProcessedDir(); got != filepath.Join("/var/lib/quotelake", "processed") {
		t.Errorf("unexpected processed dir: %s", got)
	}
	if got := s.DuckDBPath(); got != filepath.Join("/var/lib/quotelake", "quotelake.duckdb") {
		t.Errorf("unexpected duckdb path: %s", got)
	}
}

func TestStartDate(t *testing.T) {
	u := UniverseConfig{DefaultStart: "2021-06-15"}
	want := time.Date(2021, 6, 15, 0, 0, 0, 0, time.UTC)
	if got := u.StartDate(); !got.Equal(want) {
		t.Errorf("expected %v, got %v", want, got)
	}

	// Malformed values fall back instead of failing
	u = UniverseConfig{DefaultStart: "junk"}
	want = time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	if got := u.StartDate(); !got.Equal(want) {
		t.Errorf("expected fallback %v, got %v", want, got)
	}
}

func TestProvidesAdjusted(t *testing.T) {
	cfg := Default()

	if !cfg.ProvidesAdjusted("yfinance") {
		t.Error("yfinance provides adjusted close by default")
	}
	if !cfg.ProvidesAdjusted("alpha_vantage") {
		t.Error("alpha_vantage provides adjusted close by default")
	}
	if cfg.ProvidesAdjusted("stooq") {
		t.Error("stooq does not provide adjusted close")
	}
	if cfg.ProvidesAdjusted("bloomberg") {
		t.Error("unknown sources must default to false")
	}
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Storage.Dataset != "daily_ohlcv" {
		t.Errorf("expected default dataset, got %q", cfg.Storage.Dataset)
	}
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "quotelake.yaml")
	content := `
log_level: debug
storage:
  data_root: /tmp/lake
universe:
  symbols: [TSLA]
  default_start: "2019-01-01"
sources:
  stooq:
    symbol_suffix: ".de"
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("expected log_level debug, got %q", cfg.LogLevel)
	}
	if cfg.Storage.DataRoot != "/tmp/lake" {
		t.Errorf("expected data root /tmp/lake, got %q", cfg.Storage.DataRoot)
	}
	// Unset file keys keep their defaults
	if cfg.Storage.DuckDBFile != "quotelake.duckdb" {
		t.Errorf("default duckdb file lost: %q", cfg.Storage.DuckDBFile)
	}
	if len(cfg.Universe.Symbols) != 1 || cfg.Universe.Symbols[0] != "TSLA" {
		t.Errorf("unexpected symbols: %v", cfg.Universe.Symbols)
	}
	if cfg.Sources.Stooq.SymbolSuffix != ".de" {
		t.Errorf("unexpected stooq suffix: %q", cfg.Sources.Stooq.SymbolSuffix)
	}
}

func TestLoad_MalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "quotelake.yaml")
	if err := os.WriteFile(path, []byte("storage: [not a mapping"), 0644); err != nil {
		t.Fatal(err)
	}

	if _, err := Load(path); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestLoad_InvalidConfigRejected(t *testing.T) {
	path := filepath.Join(t.TempDir(), "quotelake.yaml")
	if err := os.WriteFile(path, []byte("universe:\n  symbols: []\n"), 0644); err != nil {
		t.Fatal(err)
	}

	_, err := Load(path)
	if err == nil {
		t.Fatal("expected validation error for empty universe")
	}
	if !qerrors.Is(err, qerrors.ErrInvalidConfig) {
		t.Errorf("expected ErrInvalidConfig, got %v", err)
	}
}
