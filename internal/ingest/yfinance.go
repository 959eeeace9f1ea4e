package ingest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"

	"quotelake/internal/config"
	qerrors "quotelake/internal/errors"
	"quotelake/internal/logging"
)

// yfIngestor fetches daily bars from the Yahoo Finance chart API and stores
// them in the classic yfinance CSV layout
// (Date,Open,High,Low,Close,Adj Close,Volume) so downstream normalization
// has a single yfinance format to care about.
type yfIngestor struct {
	baseURL string
	limit   RateLimit
	client  *resty.Client
}

func newYFinance(cfg *config.Config) (Ingestor, error) {
	return &yfIngestor{
		baseURL: cfg.Sources.YFinance.BaseURL,
		limit:   RateLimit{CallsPerMinute: cfg.Sources.YFinance.CallsPerMinute},
		client: resty.New().
			SetTimeout(30 * time.Second).
			SetHeader("User-Agent", "Mozilla/5.0 (quotelake stock data collector)"),
	}, nil
}

func (y *yfIngestor) SourceName() string { return "yfinance" }

func (y *yfIngestor) RateLimit() RateLimit { return y.limit }

// chartResponse is the subset of the Yahoo v8 chart payload we consume.
// Price arrays use pointers because Yahoo emits nulls for halted days.
type chartResponse struct {
	Chart struct {
		Result []struct {
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Open   []*float64 `json:"open"`
					High   []*float64 `json:"high"`
					Low    []*float64 `json:"low"`
					Close  []*float64 `json:"close"`
					Volume []*int64   `json:"volume"`
				} `json:"quote"`
				AdjClose []struct {
					AdjClose []*float64 `json:"adjclose"`
				} `json:"adjclose"`
			} `json:"indicators"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

func (y *yfIngestor) FetchDaily(ctx context.Context, symbol string, start, end time.Time, rawDir string) (FetchResult, error) {
	log := logging.Component("ingest")
	log.Info("fetching daily", "source", y.SourceName(), "symbol", symbol)

	resp, err := y.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"period1":  fmt.Sprintf("%d", start.Unix()),
			"period2":  fmt.Sprintf("%d", end.AddDate(0, 0, 1).Unix()),
			"interval": "1d",
			"events":   "history",
		}).
		Get(fmt.Sprintf("%s/%s", y.baseURL, symbol))
	if err != nil {
		return FetchResult{}, qerrors.Wrapf(qerrors.ErrFetch, "yahoo %s: %v", symbol, err)
	}
	if !resp.IsSuccess() {
		return FetchResult{}, qerrors.Wrapf(qerrors.ErrFetch, "yahoo %s: HTTP %d", symbol, resp.StatusCode())
	}

	var payload chartResponse
	if err := json.Unmarshal(resp.Body(), &payload); err != nil {
		return FetchResult{}, qerrors.Wrapf(qerrors.ErrFetch, "yahoo %s: decode: %v", symbol, err)
	}
	if payload.Chart.Error != nil {
		return FetchResult{}, qerrors.Wrapf(qerrors.ErrFetch, "yahoo %s: %s: %s",
			symbol, payload.Chart.Error.Code, payload.Chart.Error.Description)
	}
	if len(payload.Chart.Result) == 0 || len(payload.Chart.Result[0].Indicators.Quote) == 0 {
		return FetchResult{}, qerrors.Wrapf(qerrors.ErrNoData, "yahoo %s: empty chart result", symbol)
	}

	result := payload.Chart.Result[0]
	quote := result.Indicators.Quote[0]

	var adj []*float64
	if len(result.Indicators.AdjClose) > 0 {
		adj = result.Indicators.AdjClose[0].AdjClose
	}

	var buf bytes.Buffer
	buf.WriteString("Date,Open,High,Low,Close,Adj Close,Volume\n")

	rows := 0
	actualStart, actualEnd := start, end
	for i, ts := range result.Timestamp {
		if i >= len(quote.Open) || quote.Open[i] == nil || quote.High[i] == nil ||
			quote.Low[i] == nil || quote.Close[i] == nil || quote.Volume[i] == nil {
			continue
		}

		date := time.Unix(ts, 0).UTC()
		adjClose := *quote.Close[i]
		if i < len(adj) && adj[i] != nil {
			adjClose = *adj[i]
		}

		fmt.Fprintf(&buf, "%s,%g,%g,%g,%g,%g,%d\n",
			date.Format("2006-01-02"),
			*quote.Open[i], *quote.High[i], *quote.Low[i], *quote.Close[i],
			adjClose, *quote.Volume[i],
		)

		if rows == 0 {
			actualStart = date
		}
		actualEnd = date
		rows++
	}

	if rows == 0 {
		return FetchResult{}, qerrors.Wrapf(qerrors.ErrNoData, "yahoo %s: no usable bars", symbol)
	}

	path, err := writeRaw(rawDir, y.SourceName(), symbol, "csv", buf.Bytes(), fetchMeta{
		Source:    y.SourceName(),
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
		Source:    y.SourceName(),
	}, nil
}

var _ Ingestor = (*yfIngestor)(nil)
