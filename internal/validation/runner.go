package validation

import (
	"time"

	"quotelake/internal/market"
)

// AllChecks is the fixed, ordered check list the runner executes.
var AllChecks = []CheckFunc{
	TradingDayGaps,
	PriceSanity,
	StaleData,
	OHLCConsistency,
}

// RunAllChecks executes every check against one symbol's rows and wraps the
// results into a report stamped with the current UTC time.
func RunAllChecks(rows []market.Row, symbol string) Report {
	results := make([]Result, 0, len(AllChecks))
	for _, check := range AllChecks {
		results = append(results, check(rows, symbol))
	}

	return Report{
		Symbol:    symbol,
		Timestamp: time.Now().UTC(),
		Results:   results,
	}
}
