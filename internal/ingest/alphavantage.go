package ingest

import (
	"context"
	"encoding/json"
	"sort"
	"time"

	"github.com/go-resty/resty/v2"

	"quotelake/internal/config"
	qerrors "quotelake/internal/errors"
	"quotelake/internal/logging"
)

// avIngestor fetches daily bars from the Alpha Vantage REST API.
type avIngestor struct {
	apiKey  string
	baseURL string
	limit   RateLimit
	client  *resty.Client
}

func newAlphaVantage(cfg *config.Config) (Ingestor, error) {
	av := cfg.Sources.AlphaVantage
	return &avIngestor{
		apiKey:  av.APIKey,
		baseURL: av.BaseURL,
		limit: RateLimit{
			CallsPerMinute: av.CallsPerMinute,
			CallsPerDay:    av.CallsPerDay,
		},
		client: resty.New().SetTimeout(30 * time.Second),
	}, nil
}

func (a *avIngestor) SourceName() string { return "alpha_vantage" }

func (a *avIngestor) RateLimit() RateLimit { return a.limit }

func (a *avIngestor) FetchDaily(ctx context.Context, symbol string, start, end time.Time, rawDir string) (FetchResult, error) {
	log := logging.Component("ingest")
	log.Info("fetching daily", "source", a.SourceName(), "symbol", symbol)

	if a.apiKey == "" {
		return FetchResult{}, qerrors.Wrap(qerrors.ErrInvalidConfig,
			"Alpha Vantage API key not configured (set AV_API_KEY)")
	}

	resp, err := a.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"function":   "TIME_SERIES_DAILY_ADJUSTED",
			"symbol":     symbol,
			"outputsize": "full",
			"apikey":     a.apiKey,
		}).
		Get(a.baseURL)
	if err != nil {
		return FetchResult{}, qerrors.Wrapf(qerrors.ErrFetch, "alpha vantage %s: %v", symbol, err)
	}
	if !resp.IsSuccess() {
		return FetchResult{}, qerrors.Wrapf(qerrors.ErrFetch, "alpha vantage %s: HTTP %d", symbol, resp.StatusCode())
	}

	var payload struct {
		ErrorMessage string                       `json:"Error Message"`
		Note         string                       `json:"Note"`
		TimeSeries   map[string]map[string]string `json:"Time Series (Daily)"`
	}
	if err := json.Unmarshal(resp.Body(), &payload); err != nil {
		return FetchResult{}, qerrors.Wrapf(qerrors.ErrFetch, "alpha vantage %s: decode: %v", symbol, err)
	}

	// API errors come back as 200s with an error field
	if payload.ErrorMessage != "" {
		return FetchResult{}, qerrors.Wrapf(qerrors.ErrFetch, "alpha vantage API error: %s", payload.ErrorMessage)
	}
	if payload.Note != "" {
		return FetchResult{}, qerrors.Wrapf(qerrors.ErrRateLimitExceeded, "alpha vantage: %s", payload.Note)
	}
	if len(payload.TimeSeries) == 0 {
		return FetchResult{}, qerrors.Wrapf(qerrors.ErrNoData, "alpha vantage %s: no daily data in response", symbol)
	}

	dates := make([]string, 0, len(payload.TimeSeries))
	for d := range payload.TimeSeries {
		dates = append(dates, d)
	}
	sort.Strings(dates)

	startStr, endStr := start.Format("2006-01-02"), end.Format("2006-01-02")
	filtered := 0
	actualStart, actualEnd := start, end
	var firstInRange, lastInRange string
	for _, d := range dates {
		if d >= startStr && d <= endStr {
			if firstInRange == "" {
				firstInRange = d
			}
			lastInRange = d
			filtered++
		}
	}
	if t, err := time.Parse("2006-01-02", firstInRange); err == nil {
		actualStart = t
	}
	if t, err := time.Parse("2006-01-02", lastInRange); err == nil {
		actualEnd = t
	}

	path, err := writeRaw(rawDir, a.SourceName(), symbol, "json", resp.Body(), fetchMeta{
		Source:    a.SourceName(),
		Symbol:    symbol,
		StartDate: actualStart.Format("2006-01-02"),
		EndDate:   actualEnd.Format("2006-01-02"),
		Rows:      filtered,
	})
	if err != nil {
		return FetchResult{}, err
	}

	log.Info("fetch complete", "symbol", symbol, "rows", filtered, "path", path)

	return FetchResult{
		RawPath:   path,
		Rows:      filtered,
		StartDate: actualStart,
		EndDate:   actualEnd,
		Symbol:    symbol,
		Source:    a.SourceName(),
	}, nil
}

var _ Ingestor = (*avIngestor)(nil)
