// Package normalize converts raw source payloads into canonical market rows.
//
// Each supported source has one transform that renames source-specific
// fields, casts numerics, parses dates, fills adjusted_close for sources
// without a true adjustment policy, and stamps source and ingested_at.
// Transforms are pure beyond reading the raw file: they persist nothing.
package normalize

import (
	"sort"

	qerrors "quotelake/internal/errors"
	"quotelake/internal/market"
)

// TransformFunc converts one raw payload into canonical rows for a symbol.
type TransformFunc func(rawPath, symbol string) ([]market.Row, error)

var transforms = map[string]TransformFunc{
	"yfinance":      normalizeYFinance,
	"alpha_vantage": normalizeAlphaVantage,
	"stooq":         normalizeStooq,
}

// Normalize dispatches to the transform registered for source.
// The returned rows are sorted ascending by date and carry exactly the
// canonical column set.
func Normalize(source, rawPath, symbol string) ([]market.Row, error) {
	fn, ok := transforms[source]
	if !ok {
		return nil, qerrors.NewUnknownSource(source, Sources())
	}
	rows, err := fn(rawPath, symbol)
	if err != nil {
		return nil, qerrors.Wrapf(err, "normalize %s %s", source, symbol)
	}
	return rows, nil
}

// Sources returns the source keys with a registered transform, sorted.
func Sources() []string {
	keys := make([]string, 0, len(transforms))
	for k := range transforms {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
