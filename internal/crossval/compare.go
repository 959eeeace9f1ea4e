// Package crossval reconciles one symbol's series across independent
// sources: pairwise drift statistics and a multi-symbol overlap matrix.
package crossval

import (
	"github.com/DataDog/sketches-go/ddsketch"

	"quotelake/internal/market"
)

// Series is one source's rows for a symbol, with the source's
// adjusted-close capability flag.
type Series struct {
	Source string

	// ProvidesAdjusted is false for sources whose adjusted_close is just a
	// copy of close. Comparing those against a truly adjusted series only
	// measures the adjustment policy, so the comparison is skipped.
	ProvidesAdjusted bool

	Rows []market.Row
}

// ColumnDrift summarizes percentage differences for one compared column.
type ColumnDrift struct {
	Column   string
	Max      float64
	Mean     float64
	P95      float64
	Compared int
}

// Comparison is the result of reconciling two sources for one symbol.
type Comparison struct {
	Symbol    string
	SourceA   string
	SourceB   string
	Tolerance float64

	CommonDates int
	OnlyA       int
	OnlyB       int

	Drift []ColumnDrift

	// AdjustedSkipped is true when the adjusted_close comparison was
	// dropped because a side lacks a true adjusted price.
	AdjustedSkipped bool

	// DatesOverTolerance counts common dates where any compared column
	// differs by more than Tolerance percent.
	DatesOverTolerance int
}

type column struct {
	name  string
	value func(market.Row) float64
}

var priceColumns = []column{
	{"open", func(r market.Row) float64 { return r.Open }},
	{"high", func(r market.Row) float64 { return r.High }},
	{"low", func(r market.Row) float64 { return r.Low }},
	{"close", func(r market.Row) float64 { return r.Close }},
}

var adjustedColumn = column{"adjusted_close", func(r market.Row) float64 { return r.AdjustedClose }}

// Compare inner-joins two series by date and computes per-column percentage
// differences |a−b|/a×100. Dates where a's value is zero are skipped for
// that column (zero closes are a price_sanity failure already).
func Compare(symbol string, a, b Series, tolerance float64) Comparison {
	byDateA := market.ByDate(a.Rows)
	byDateB := market.ByDate(b.Rows)

	cmp := Comparison{
		Symbol:    symbol,
		SourceA:   a.Source,
		SourceB:   b.Source,
		Tolerance: tolerance,
	}

	var common []int64
	for date := range byDateA {
		if _, ok := byDateB[date]; ok {
			common = append(common, date)
		}
	}
	cmp.CommonDates = len(common)
	cmp.OnlyA = len(byDateA) - len(common)
	cmp.OnlyB = len(byDateB) - len(common)

	columns := priceColumns
	if a.ProvidesAdjusted && b.ProvidesAdjusted {
		columns = append(append([]column{}, priceColumns...), adjustedColumn)
	} else {
		cmp.AdjustedSkipped = true
	}

	type acc struct {
		max, sum float64
		count    int
		sketch   *ddsketch.DDSketch
	}
	accs := make([]acc, len(columns))
	for i := range accs {
		// Relative accuracy of 1% is plenty for drift reporting
		accs[i].sketch, _ = ddsketch.NewDefaultDDSketch(0.01)
	}

	for _, date := range common {
		ra, rb := byDateA[date], byDateB[date]
		exceeds := false

		for i, col := range columns {
			va, vb := col.value(ra), col.value(rb)
			if va == 0 {
				continue
			}
			diff := (va - vb) / va * 100
			if diff < 0 {
				diff = -diff
			}

			accs[i].count++
			accs[i].sum += diff
			if diff > accs[i].max {
				accs[i].max = diff
			}
			if accs[i].sketch != nil {
				_ = accs[i].sketch.Add(diff)
			}
			if diff > tolerance {
				exceeds = true
			}
		}

		if exceeds {
			cmp.DatesOverTolerance++
		}
	}

	for i, col := range columns {
		drift := ColumnDrift{
			Column:   col.name,
			Max:      accs[i].max,
			Compared: accs[i].count,
		}
		if accs[i].count > 0 {
			drift.Mean = accs[i].sum / float64(accs[i].count)
			if accs[i].sketch != nil {
				if p95, err := accs[i].sketch.GetValueAtQuantile(0.95); err == nil {
					drift.P95 = p95
				}
			}
		}
		cmp.Drift = append(cmp.Drift, drift)
	}

	return cmp
}

// Overlap returns the date-set overlap percentage |∩|/|∪|×100 between two
// series. Two empty series overlap 0%.
func Overlap(a, b []market.Row) float64 {
	setA := market.Dates(a)
	setB := market.Dates(b)

	intersection := 0
	for d := range setA {
		if _, ok := setB[d]; ok {
			intersection++
		}
	}
	union := len(setA) + len(setB) - intersection
	if union == 0 {
		return 0
	}
	return float64(intersection) / float64(union) * 100
}

// MaxCloseDiff returns the maximum close percentage difference over common
// dates. ok is false when the series share no dates.
func MaxCloseDiff(a, b []market.Row) (float64, bool) {
	byDateB := market.ByDate(b)

	max := 0.0
	found := false
	for _, ra := range a {
		rb, okB := byDateB[ra.Date.Unix()]
		if !okB || ra.Close == 0 {
			continue
		}
		diff := (ra.Close - rb.Close) / ra.Close * 100
		if diff < 0 {
			diff = -diff
		}
		if !found || diff > max {
			max = diff
			found = true
		}
	}
	return max, found
}
