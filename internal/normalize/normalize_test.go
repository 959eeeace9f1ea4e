package normalize

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	qerrors "quotelake/internal/errors"
	"quotelake/internal/market"
)

const yfinanceCSV = `Date,Open,High,Low,Close,Adj Close,Volume
2024-01-02,185.5,186.2,184.1,185.9,185.4,50000000
2024-01-03,185.0,186.0,184.5,185.2,184.7,48000000
2024-01-04,184.8,185.5,183.9,184.3,183.8,52000000
2024-01-05,184.0,185.8,183.5,185.6,185.1,47000000
2024-01-08,186.0,187.2,185.5,186.9,186.4,55000000
`

const stooqCSV = `Date,Open,High,Low,Close,Volume
2024-01-02,185.52,186.18,184.12,185.92,50100000
2024-01-03,185.02,186.02,184.52,185.22,47900000
2024-01-04,184.82,185.52,183.92,184.32,52100000
2024-01-05,184.02,185.82,183.52,185.62,46900000
2024-01-08,186.02,187.22,185.52,186.92,55100000
`

const avJSON = `{
  "Meta Data": {"2. Symbol": "AAPL"},
  "Time Series (Daily)": {
    "2024-01-03": {"1. open": "185.0", "2. high": "186.0", "3. low": "184.5", "4. close": "185.2", "5. adjusted close": "184.7", "6. volume": "48000000"},
    "2024-01-02": {"1. open": "185.5", "2. high": "186.2", "3. low": "184.1", "4. close": "185.9", "5. adjusted close": "185.4", "6. volume": "50000000"}
  }
}`

func writeFixture(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestNormalizeYFinance(t *testing.T) {
	path := writeFixture(t, "aapl.csv", yfinanceCSV)

	rows, err := Normalize("yfinance", path, "AAPL")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(rows) != 5 {
		t.Fatalf("expected 5 rows, got %d", len(rows))
	}

	first := rows[0]
	if !first.Date.Equal(market.Date(2024, time.January, 2)) {
		t.Errorf("expected date 2024-01-02, got %v", first.Date)
	}
	if first.Open != 185.5 || first.Close != 185.9 {
		t.Errorf("unexpected prices: open=%g close=%g", first.Open, first.Close)
	}
	if first.AdjustedClose != 185.4 {
		t.Errorf("expected adjusted close 185.4, got %g", first.AdjustedClose)
	}
	if first.Volume != 50000000 {
		t.Errorf("expected volume 50000000, got %d", first.Volume)
	}
	if first.Source != "yfinance" {
		t.Errorf("expected source yfinance, got %q", first.Source)
	}
	if first.Symbol != "AAPL" {
		t.Errorf("expected symbol AAPL, got %q", first.Symbol)
	}
	if first.IngestedAt.IsZero() {
		t.Error("ingested_at not stamped")
	}
}

func TestNormalizeYFinance_MissingAdjClose(t *testing.T) {
	csv := `Date,Open,High,Low,Close,Volume
2024-01-02,185.5,186.2,184.1,185.9,50000000
`
	path := writeFixture(t, "aapl.csv", csv)

	rows, err := Normalize("yfinance", path, "AAPL")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rows[0].AdjustedClose != rows[0].Close {
		t.Errorf("expected adjusted close to fall back to close, got %g vs %g",
			rows[0].AdjustedClose, rows[0].Close)
	}
}

func TestNormalizeYFinance_DatetimeWithTimezone(t *testing.T) {
	// Intraday-style exports carry a timezone-aware datetime column. The
	// calendar date as written must survive, not the UTC conversion.
	csv := `Datetime,Open,High,Low,Close,Adj Close,Volume
2024-12-02 00:00:00-05:00,185.5,186.2,184.1,185.9,185.4,50000000
`
	path := writeFixture(t, "aapl.csv", csv)

	rows, err := Normalize("yfinance", path, "AAPL")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := market.Date(2024, time.December, 2)
	if !rows[0].Date.Equal(want) {
		t.Errorf("expected %v, got %v", want, rows[0].Date)
	}
}

func TestNormalizeYFinance_MissingColumn(t *testing.T) {
	csv := `Date,Open,High,Low,Volume
2024-01-02,185.5,186.2,184.1,50000000
`
	path := writeFixture(t, "aapl.csv", csv)

	if _, err := Normalize("yfinance", path, "AAPL"); err == nil {
		t.Fatal("expected error for missing Close column")
	}
}

func TestNormalizeStooq(t *testing.T) {
	path := writeFixture(t, "aapl.csv", stooqCSV)

	rows, err := Normalize("stooq", path, "AAPL")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(rows) != 5 {
		t.Fatalf("expected 5 rows, got %d", len(rows))
	}
	for _, r := range rows {
		if r.AdjustedClose != r.Close {
			t.Errorf("stooq adjusted close must equal close, got %g vs %g", r.AdjustedClose, r.Close)
		}
		if r.Source != "stooq" {
			t.Errorf("expected source stooq, got %q", r.Source)
		}
	}
	for i := 1; i < len(rows); i++ {
		if rows[i].Date.Before(rows[i-1].Date) {
			t.Fatal("rows not sorted ascending")
		}
	}
}

func TestNormalizeAlphaVantage(t *testing.T) {
	path := writeFixture(t, "aapl.json", avJSON)

	rows, err := Normalize("alpha_vantage", path, "AAPL")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}

	// JSON objects are unordered; output must still be ascending
	if !rows[0].Date.Equal(market.Date(2024, time.January, 2)) {
		t.Errorf("expected first row 2024-01-02, got %v", rows[0].Date)
	}
	if rows[0].AdjustedClose != 185.4 {
		t.Errorf("expected adjusted close 185.4, got %g", rows[0].AdjustedClose)
	}
	if rows[0].Source != "alpha_vantage" {
		t.Errorf("expected source alpha_vantage, got %q", rows[0].Source)
	}
}

func TestNormalizeAlphaVantage_MissingSection(t *testing.T) {
	path := writeFixture(t, "aapl.json", `{"Meta Data": {"2. Symbol": "AAPL"}}`)

	_, err := Normalize("alpha_vantage", path, "AAPL")
	if err == nil {
		t.Fatal("expected error for missing daily section")
	}
	if !qerrors.Is(err, qerrors.ErrMissingSection) {
		t.Errorf("expected ErrMissingSection, got %v", err)
	}
}

func TestNormalizeAlphaVantage_WithoutAdjustedClose(t *testing.T) {
	payload := `{"Time Series (Daily)": {
		"2024-01-02": {"1. open": "185.5", "2. high": "186.2", "3. low": "184.1", "4. close": "185.9", "6. volume": "50000000"}
	}}`
	path := writeFixture(t, "aapl.json", payload)

	rows, err := Normalize("alpha_vantage", path, "AAPL")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rows[0].AdjustedClose != rows[0].Close {
		t.Errorf("expected adjusted close fallback, got %g vs %g", rows[0].AdjustedClose, rows[0].Close)
	}
}

func TestNormalize_UnknownSource(t *testing.T) {
	_, err := Normalize("bloomberg", "ignored", "AAPL")
	if err == nil {
		t.Fatal("expected error for unknown source")
	}
	if !qerrors.Is(err, qerrors.ErrUnknownSource) {
		t.Errorf("expected ErrUnknownSource, got %v", err)
	}
}

func TestNormalize_EmptyCSV(t *testing.T) {
	path := writeFixture(t, "empty.csv", "Date,Open,High,Low,Close,Volume\n")

	if _, err := Normalize("stooq", path, "AAPL"); err == nil {
		t.Fatal("expected error for header-only CSV")
	}
}

func TestSources(t *testing.T) {
	sources := Sources()
	if len(sources) != 3 {
		t.Fatalf("expected 3 sources, got %d", len(sources))
	}
	want := []string{"alpha_vantage", "stooq", "yfinance"}
	for i, s := range want {
		if sources[i] != s {
			t.Errorf("expected sources[%d]=%s, got %s", i, s, sources[i])
		}
	}
}
