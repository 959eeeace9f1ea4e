package report

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"quotelake/internal/catalog"
	"quotelake/internal/crossval"
	"quotelake/internal/validation"
)

func TestRenderSummary(t *testing.T) {
	reports := []validation.Report{
		{
			Symbol: "AAPL",
			Results: []validation.Result{
				{CheckName: "trading_day_gaps", Status: validation.StatusPass},
				{CheckName: "price_sanity", Status: validation.StatusFail},
			},
		},
	}

	var buf bytes.Buffer
	RenderSummary(&buf, reports, []string{"NVDA"})
	out := buf.String()

	for _, want := range []string{"AAPL", "FAIL", "1/2", "price_sanity", "NVDA", "NO DATA"} {
		if !strings.Contains(out, want) {
			t.Errorf("summary missing %q:\n%s", want, out)
		}
	}
}

func TestRenderComparison_AdjustedNote(t *testing.T) {
	cmp := crossval.Comparison{
		Symbol: "AAPL", SourceA: "yfinance", SourceB: "stooq",
		Tolerance: 1.0, CommonDates: 10, AdjustedSkipped: true,
		Drift: []crossval.ColumnDrift{{Column: "close", Max: 0.5, Mean: 0.1, P95: 0.3, Compared: 10}},
	}

	var buf bytes.Buffer
	RenderComparison(&buf, cmp)
	out := buf.String()

	if !strings.Contains(out, "adjusted_close comparison skipped") {
		t.Errorf("missing skip note:\n%s", out)
	}
	if !strings.Contains(out, "yfinance vs stooq") {
		t.Errorf("missing pair header:\n%s", out)
	}
}

func TestRenderTable_Truncation(t *testing.T) {
	table := &catalog.Table{
		Columns: []string{"symbol", "close"},
		Rows: [][]any{
			{"AAPL", 185.9},
			{"MSFT", 371.0},
			{"NVDA", 500.1},
		},
	}

	var buf bytes.Buffer
	RenderTable(&buf, table, 2)
	out := buf.String()

	if !strings.Contains(out, "showing 2 of 3 rows") {
		t.Errorf("missing truncation notice:\n%s", out)
	}
	if strings.Contains(out, "NVDA") {
		t.Errorf("truncated row rendered:\n%s", out)
	}
}

func TestFormatValue(t *testing.T) {
	date := time.Date(2024, time.January, 2, 0, 0, 0, 0, time.UTC)
	if got := formatValue(date); got != "2024-01-02" {
		t.Errorf("expected date-only formatting, got %q", got)
	}

	ts := time.Date(2024, time.January, 2, 9, 30, 0, 0, time.UTC)
	if got := formatValue(ts); got != "2024-01-02T09:30:00Z" {
		t.Errorf("expected RFC3339 for timestamps, got %q", got)
	}

	if got := formatValue(nil); got != "" {
		t.Errorf("expected empty string for nil, got %q", got)
	}
	if got := formatValue([]byte("abc")); got != "abc" {
		t.Errorf("expected byte slice as string, got %q", got)
	}
}
