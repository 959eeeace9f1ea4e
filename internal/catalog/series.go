package catalog

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	qerrors "quotelake/internal/errors"
	"quotelake/internal/market"
)

// SymbolRows returns every row for a symbol across all sources, ascending
// by date.
func (m *Manager) SymbolRows(ctx context.Context, dataset, symbol string) ([]market.Row, error) {
	if !viewNameRe.MatchString(dataset) {
		return nil, qerrors.NewValidation("dataset", "not a valid relation name")
	}

	query := fmt.Sprintf(`
		SELECT date, open, high, low, close, adjusted_close, volume, source, ingested_at, symbol
		FROM %s
		WHERE symbol = ?
		ORDER BY date`, dataset)

	rows, err := m.Execute(ctx, query, symbol)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanRows(rows)
}

// SourceSeries returns one source's series for a symbol, ascending by date.
// A missing relation yields (nil, false, nil) so callers can treat it as
// "no data" without exception guarding; a symbol/source with zero rows
// yields (nil, true, nil).
func (m *Manager) SourceSeries(ctx context.Context, dataset, symbol, source string) ([]market.Row, bool, error) {
	if !viewNameRe.MatchString(dataset) {
		return nil, false, qerrors.NewValidation("dataset", "not a valid relation name")
	}

	query := fmt.Sprintf(`
		SELECT date, open, high, low, close, adjusted_close, volume, source, ingested_at, symbol
		FROM %s
		WHERE symbol = ? AND source = ?
		ORDER BY date`, dataset)

	rows, err := m.Execute(ctx, query, symbol, source)
	if err != nil {
		if qerrors.Is(err, qerrors.ErrRelationNotFound) {
			return nil, false, nil
		}
		return nil, false, err
	}
	defer rows.Close()

	series, err := scanRows(rows)
	if err != nil {
		return nil, false, err
	}
	return series, true, nil
}

func scanRows(rows *sql.Rows) ([]market.Row, error) {
	var out []market.Row
	for rows.Next() {
		var (
			r          market.Row
			date       time.Time
			ingestedAt time.Time
		)
		err := rows.Scan(
			&date, &r.Open, &r.High, &r.Low, &r.Close,
			&r.AdjustedClose, &r.Volume, &r.Source, &ingestedAt, &r.Symbol,
		)
		if err != nil {
			return nil, wrapQueryErr(err)
		}
		r.Date = market.DateOf(date.UTC())
		r.IngestedAt = ingestedAt.UTC()
		out = append(out, r)
	}
	return out, wrapQueryErr(rows.Err())
}
