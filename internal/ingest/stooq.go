package ingest

import (
	"context"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"quotelake/internal/config"
	qerrors "quotelake/internal/errors"
	"quotelake/internal/logging"
)

// stooqIngestor downloads daily CSVs from Stooq. No API key required.
type stooqIngestor struct {
	baseURL string
	suffix  string
	limit   RateLimit
	client  *resty.Client
}

func newStooq(cfg *config.Config) (Ingestor, error) {
	return &stooqIngestor{
		baseURL: cfg.Sources.Stooq.BaseURL,
		suffix:  cfg.Sources.Stooq.SymbolSuffix,
		limit:   RateLimit{CallsPerMinute: cfg.Sources.Stooq.CallsPerMinute},
		client: resty.New().
			SetTimeout(30 * time.Second).
			SetHeader("User-Agent", "Mozilla/5.0 (quotelake stock data collector)"),
	}, nil
}

func (s *stooqIngestor) SourceName() string { return "stooq" }

func (s *stooqIngestor) RateLimit() RateLimit { return s.limit }

func (s *stooqIngestor) FetchDaily(ctx context.Context, symbol string, start, end time.Time, rawDir string) (FetchResult, error) {
	log := logging.Component("ingest")
	log.Info("fetching daily", "source", s.SourceName(), "symbol", symbol)

	stooqSymbol := strings.ToLower(symbol) + s.suffix

	resp, err := s.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"s":  stooqSymbol,
			"d1": start.Format("20060102"),
			"d2": end.Format("20060102"),
			"i":  "d",
		}).
		Get(s.baseURL)
	if err != nil {
		return FetchResult{}, qerrors.Wrapf(qerrors.ErrFetch, "stooq %s: %v", symbol, err)
	}
	if !resp.IsSuccess() {
		return FetchResult{}, qerrors.Wrapf(qerrors.ErrFetch, "stooq %s: HTTP %d", symbol, resp.StatusCode())
	}

	body := strings.TrimSpace(resp.String())

	// Stooq reports errors in the response body, not the status code
	if body == "" || strings.Contains(body, "No data") {
		return FetchResult{}, qerrors.Wrapf(qerrors.ErrNoData,
			"stooq %s (%s to %s)", symbol, start.Format("2006-01-02"), end.Format("2006-01-02"))
	}
	if strings.Contains(body, "Exceeded") {
		return FetchResult{}, qerrors.Wrapf(qerrors.ErrRateLimitExceeded, "stooq daily hit limit for %s", symbol)
	}

	lines := strings.Split(body, "\n")
	if len(lines) < 2 {
		return FetchResult{}, qerrors.Wrapf(qerrors.ErrFetch, "stooq returned empty data for %s", symbol)
	}

	// CSV columns: Date,Open,High,Low,Close,Volume
	actualStart, actualEnd := start, end
	var first, last string
	for _, line := range lines[1:] {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		date, _, _ := strings.Cut(line, ",")
		if first == "" || date < first {
			first = date
		}
		if date > last {
			last = date
		}
	}
	if t, err := time.Parse("2006-01-02", first); err == nil {
		actualStart = t
	}
	if t, err := time.Parse("2006-01-02", last); err == nil {
		actualEnd = t
	}

	rows := len(lines) - 1
	path, err := writeRaw(rawDir, s.SourceName(), symbol, "csv", []byte(body), fetchMeta{
		Source:    s.SourceName(),
		Symbol:    symbol,
		StartDate: actualStart.Format("2006-01-02"),
		EndDate:   actualEnd.Format("2006-01-02"),
		Rows:      rows,
	})
	if err != nil {
		return FetchResult{}, err
	}

	log.Info("fetch complete", "symbol", symbol, "rows", rows, "path", path)

	return FetchResult{
		RawPath:   path,
		Rows:      rows,
		StartDate: actualStart,
		EndDate:   actualEnd,
		Symbol:    symbol,
		Source:    s.SourceName(),
	}, nil
}

var _ Ingestor = (*stooqIngestor)(nil)
