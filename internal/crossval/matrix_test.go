package crossval

import (
	"context"
	"testing"
	"time"

	"quotelake/internal/market"
)

// fakeLoader serves canned series keyed by symbol/source.
type fakeLoader struct {
	series map[string]map[string][]market.Row
}

func (f *fakeLoader) SourceSeries(_ context.Context, _, symbol, source string) ([]market.Row, bool, error) {
	bySource, ok := f.series[symbol]
	if !ok {
		return nil, false, nil
	}
	rows, ok := bySource[source]
	if !ok {
		return nil, false, nil
	}
	return rows, true, nil
}

func TestMatrix(t *testing.T) {
	shared := seriesRows(market.Date(2024, time.January, 2), 100, 101, 102)
	loader := &fakeLoader{series: map[string]map[string][]market.Row{
		"AAPL": {
			"yfinance": shared,
			"stooq":    shared,
		},
		"MSFT": {
			"yfinance": seriesRows(market.Date(2024, time.January, 2), 370, 371),
		},
	}}

	report, err := Matrix(context.Background(), loader, "daily_ohlcv",
		[]string{"AAPL", "MSFT", "NVDA"}, []string{"yfinance", "stooq"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(report.Rows) != 3 {
		t.Fatalf("expected 3 matrix rows, got %d", len(report.Rows))
	}

	aapl := report.Rows[0]
	if !aapl.Comparable {
		t.Error("AAPL should be comparable with both sources populated")
	}
	if aapl.OverlapPct != 100 {
		t.Errorf("expected 100%% overlap for identical series, got %g", aapl.OverlapPct)
	}
	if aapl.MaxCloseDiffPct != 0 {
		t.Errorf("expected zero close diff, got %g", aapl.MaxCloseDiffPct)
	}
	if len(aapl.RowCounts) != 2 || aapl.RowCounts[0] != 3 || aapl.RowCounts[1] != 3 {
		t.Errorf("unexpected row counts: %v", aapl.RowCounts)
	}

	msft := report.Rows[1]
	if msft.Comparable {
		t.Error("MSFT should not be comparable with one source empty")
	}
	if msft.RowCounts[0] != 2 || msft.RowCounts[1] != 0 {
		t.Errorf("unexpected MSFT row counts: %v", msft.RowCounts)
	}

	nvda := report.Rows[2]
	if nvda.Comparable {
		t.Error("NVDA should not be comparable without any data")
	}
	if nvda.RowCounts[0] != 0 || nvda.RowCounts[1] != 0 {
		t.Errorf("unexpected NVDA row counts: %v", nvda.RowCounts)
	}
}

func TestMatrix_NoSymbols(t *testing.T) {
	report, err := Matrix(context.Background(), &fakeLoader{}, "daily_ohlcv", nil, []string{"yfinance"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(report.Rows) != 0 {
		t.Errorf("expected empty report, got %d rows", len(report.Rows))
	}
	if len(report.Sources) != 1 {
		t.Errorf("sources not carried through: %v", report.Sources)
	}
}
