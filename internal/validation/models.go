// Package validation runs data-quality checks over one symbol's canonical
// rows and aggregates them into a report.
package validation

import (
	"time"

	"quotelake/internal/market"
)

// Status is the outcome of a single check.
type Status string

const (
	StatusPass Status = "pass"
	StatusWarn Status = "warn"
	StatusFail Status = "fail"
)

// Result is the immutable outcome of one check invocation.
type Result struct {
	CheckName string
	Status    Status
	Message   string

	// Details carries optional structured context, e.g. missing dates.
	Details map[string]any
}

// Report aggregates the ordered check results for one symbol.
type Report struct {
	Symbol    string
	Timestamp time.Time
	Results   []Result
}

// OverallStatus is fail if any result failed, else warn if any warned,
// else pass.
func (r Report) OverallStatus() Status {
	overall := StatusPass
	for _, res := range r.Results {
		switch res.Status {
		case StatusFail:
			return StatusFail
		case StatusWarn:
			overall = StatusWarn
		}
	}
	return overall
}

// CheckFunc is one data-quality check. Checks never return an error:
// problems with the data are encoded as fail/warn statuses so one bad check
// never aborts the run.
type CheckFunc func(rows []market.Row, symbol string) Result
