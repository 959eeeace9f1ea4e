package crossval

import (
	"context"

	"quotelake/internal/logging"
	"quotelake/internal/market"
)

// SeriesLoader supplies one source's series for a symbol. The catalog
// manager implements it; ok is false when the backing relation does not
// exist yet.
type SeriesLoader interface {
	SourceSeries(ctx context.Context, dataset, symbol, source string) (rows []market.Row, ok bool, err error)
}

// MatrixRow is one symbol's line in the overlap matrix.
type MatrixRow struct {
	Symbol string

	// RowCounts holds one count per requested source, in request order.
	RowCounts []int

	// Comparable is false when either of the first two sources has no
	// rows for the symbol; OverlapPct and MaxCloseDiffPct are then
	// meaningless placeholders.
	Comparable      bool
	OverlapPct      float64
	MaxCloseDiffPct float64
}

// MatrixReport is the cross-source overlap summary for a set of symbols.
// Overlap and max close diff cover the first two requested sources only.
type MatrixReport struct {
	Sources []string
	Rows    []MatrixRow
}

// Matrix loads each symbol's series from every source and summarizes
// coverage and drift. A missing source/symbol combination is an empty
// series, never an error.
func Matrix(ctx context.Context, loader SeriesLoader, dataset string, symbols, sources []string) (MatrixReport, error) {
	log := logging.Component("crossval")

	report := MatrixReport{Sources: sources}

	for _, symbol := range symbols {
		row := MatrixRow{Symbol: symbol}

		series := make([][]market.Row, len(sources))
		for i, source := range sources {
			rows, ok, err := loader.SourceSeries(ctx, dataset, symbol, source)
			if err != nil {
				return report, err
			}
			if !ok {
				log.Warn("no relation for source, treating as empty",
					"symbol", symbol, "source", source)
			}
			series[i] = rows
			row.RowCounts = append(row.RowCounts, len(rows))
		}

		if len(series) >= 2 && len(series[0]) > 0 && len(series[1]) > 0 {
			row.Comparable = true
			row.OverlapPct = Overlap(series[0], series[1])
			if diff, ok := MaxCloseDiff(series[0], series[1]); ok {
				row.MaxCloseDiffPct = diff
			}
		}

		report.Rows = append(report.Rows, row)
	}

	return report, nil
}
