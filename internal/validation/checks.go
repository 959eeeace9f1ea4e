package validation

import (
	"fmt"
	"math"
	"strings"
	"time"

	"quotelake/internal/dates"
	"quotelake/internal/market"
)

// TradingDayGaps detects missing trading days against the weekday-only
// calendar spanned by the data. Consecutive missing dates at most 3 calendar
// days apart merge into one run, absorbing weekend-adjacent gaps. Runs
// longer than 3 fail; any gap warns.
func TradingDayGaps(rows []market.Row, symbol string) Result {
	if len(rows) == 0 {
		return Result{
			CheckName: "trading_day_gaps",
			Status:    StatusFail,
			Message:   fmt.Sprintf("No data for %s", symbol),
		}
	}

	start, end, _ := market.Span(rows)
	actual := market.Dates(rows)

	var missing []time.Time
	for _, d := range dates.TradingDaysBetween(start, end) {
		if _, ok := actual[d.Unix()]; !ok {
			missing = append(missing, d)
		}
	}

	if len(missing) == 0 {
		return Result{
			CheckName: "trading_day_gaps",
			Status:    StatusPass,
			Message:   fmt.Sprintf("No gaps found (%d trading days)", len(actual)),
		}
	}

	maxGap := 1
	currentGap := 1
	for i := 1; i < len(missing); i++ {
		delta := int(missing[i].Sub(missing[i-1]).Hours() / 24)
		if delta <= 3 { // within a long weekend
			currentGap++
			if currentGap > maxGap {
				maxGap = currentGap
			}
		} else {
			currentGap = 1
		}
	}

	status := StatusWarn
	if maxGap > 3 {
		status = StatusFail
	}

	sample := missing
	if len(sample) > 20 {
		sample = sample[:20]
	}
	missingDates := make([]string, len(sample))
	for i, d := range sample {
		missingDates[i] = d.Format("2006-01-02")
	}

	return Result{
		CheckName: "trading_day_gaps",
		Status:    status,
		Message:   fmt.Sprintf("%d missing trading day(s), longest gap: %d", len(missing), maxGap),
		Details:   map[string]any{"missing_dates": missingDates},
	}
}

// PriceSanity validates basic price integrity: no negative prices, high >=
// low, no zero closes, volume >= 0.
func PriceSanity(rows []market.Row, symbol string) Result {
	var negative, highLow, zeroClose, negVolume int
	for _, r := range rows {
		if r.Open < 0 || r.High < 0 || r.Low < 0 || r.Close < 0 {
			negative++
		}
		if r.High < r.Low {
			highLow++
		}
		if r.Close == 0 {
			zeroClose++
		}
		if r.Volume < 0 {
			negVolume++
		}
	}

	var issues []string
	if negative > 0 {
		issues = append(issues, fmt.Sprintf("%d rows with negative prices", negative))
	}
	if highLow > 0 {
		issues = append(issues, fmt.Sprintf("%d rows where high < low", highLow))
	}
	if zeroClose > 0 {
		issues = append(issues, fmt.Sprintf("%d rows with zero close", zeroClose))
	}
	if negVolume > 0 {
		issues = append(issues, fmt.Sprintf("%d rows with negative volume", negVolume))
	}

	if len(issues) == 0 {
		return Result{
			CheckName: "price_sanity",
			Status:    StatusPass,
			Message:   "All price sanity checks passed",
		}
	}

	return Result{
		CheckName: "price_sanity",
		Status:    StatusFail,
		Message:   strings.Join(issues, "; "),
		Details:   map[string]any{"issue_count": len(issues)},
	}
}

// StaleData checks whether the series is current relative to the last
// trading day.
func StaleData(rows []market.Row, symbol string) Result {
	return staleDataAt(rows, symbol, time.Now().UTC())
}

func staleDataAt(rows []market.Row, symbol string, now time.Time) Result {
	if len(rows) == 0 {
		return Result{
			CheckName: "stale_data",
			Status:    StatusFail,
			Message:   fmt.Sprintf("No data for %s", symbol),
		}
	}

	_, maxDate, _ := market.Span(rows)
	lastTD := dates.LastTradingDay(market.DateOf(now))
	daysBehind := len(dates.TradingDaysBetween(maxDate, lastTD)) - 1

	var status Status
	var msg string
	switch {
	case daysBehind <= 1:
		status = StatusPass
		msg = fmt.Sprintf("Data is current (latest: %s)", maxDate.Format("2006-01-02"))
	case daysBehind <= 5:
		status = StatusWarn
		msg = fmt.Sprintf("Data is %d trading day(s) behind (latest: %s)", daysBehind, maxDate.Format("2006-01-02"))
	default:
		status = StatusFail
		msg = fmt.Sprintf("Data is %d trading day(s) behind (latest: %s)", daysBehind, maxDate.Format("2006-01-02"))
	}

	return Result{
		CheckName: "stale_data",
		Status:    status,
		Message:   msg,
		Details: map[string]any{
			"latest_date": maxDate.Format("2006-01-02"),
			"days_behind": daysBehind,
		},
	}
}

// OHLCConsistency flags suspicious bar shapes: all four prices identical
// (placeholder data) or zero volume alongside >1% open-to-close movement.
// Never escalates past a warning.
func OHLCConsistency(rows []market.Row, symbol string) Result {
	var flat, zeroVolMove int
	for _, r := range rows {
		if r.Open == r.High && r.High == r.Low && r.Low == r.Close {
			flat++
		}
		if r.Volume == 0 && math.Abs(r.Close-r.Open)/r.Open > 0.01 {
			zeroVolMove++
		}
	}

	var issues []string
	if flat > 0 {
		issues = append(issues, fmt.Sprintf("%d rows with identical OHLC (possible placeholder)", flat))
	}
	if zeroVolMove > 0 {
		issues = append(issues, fmt.Sprintf("%d rows with zero volume but >1%% price movement", zeroVolMove))
	}

	if len(issues) == 0 {
		return Result{
			CheckName: "ohlc_consistency",
			Status:    StatusPass,
			Message:   "OHLC consistency checks passed",
		}
	}

	return Result{
		CheckName: "ohlc_consistency",
		Status:    StatusWarn,
		Message:   strings.Join(issues, "; "),
	}
}
