// Package ingest fetches raw daily OHLCV payloads from external providers.
//
// Each provider implements Ingestor and registers a constructor under its
// source key. Fetched payloads are written verbatim under the raw data
// directory together with a .meta.json sidecar; normalization happens later
// and separately.
package ingest

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	qerrors "quotelake/internal/errors"
)

// RateLimit is a source's self-imposed or provider-imposed call budget.
type RateLimit struct {
	CallsPerMinute int

	// CallsPerDay caps total daily calls. 0 means unlimited.
	CallsPerDay int
}

// FetchResult describes one completed fetch.
type FetchResult struct {
	RawPath   string
	Rows      int
	StartDate time.Time
	EndDate   time.Time
	Symbol    string
	Source    string
}

// Ingestor fetches daily OHLCV data for single symbols from one provider.
type Ingestor interface {
	// SourceName is the short identifier, e.g. "stooq" or "alpha_vantage".
	SourceName() string

	// RateLimit returns the source's call budget.
	RateLimit() RateLimit

	// FetchDaily fetches daily bars for symbol within [start, end], writes
	// the raw payload under rawDir and returns where it landed.
	FetchDaily(ctx context.Context, symbol string, start, end time.Time, rawDir string) (FetchResult, error)
}

// fetchMeta is the sidecar written next to every raw payload.
type fetchMeta struct {
	Source    string `json:"source"`
	Symbol    string `json:"symbol"`
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
	Rows      int    `json:"rows"`
	FetchedAt string `json:"fetched_at"`
}

// writeRaw persists a raw payload as <rawDir>/<source>/<symbol>/<today>_daily.<ext>
// plus its metadata sidecar, and returns the payload path.
func writeRaw(rawDir, source, symbol, ext string, body []byte, meta fetchMeta) (string, error) {
	dir := filepath.Join(rawDir, source, symbol)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", qerrors.Wrap(err, "create raw directory")
	}

	today := time.Now().UTC().Format("2006-01-02")
	path := filepath.Join(dir, fmt.Sprintf("%s_daily.%s", today, ext))
	if err := os.WriteFile(path, body, 0644); err != nil {
		return "", qerrors.Wrap(err, "write raw payload")
	}

	meta.FetchedAt = time.Now().UTC().Format(time.RFC3339)
	metaBytes, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return "", qerrors.Wrap(err, "encode metadata")
	}
	metaPath := filepath.Join(dir, fmt.Sprintf("%s_daily.meta.json", today))
	if err := os.WriteFile(metaPath, metaBytes, 0644); err != nil {
		return "", qerrors.Wrap(err, "write metadata")
	}

	return path, nil
}
