package normalize

import (
	"time"

	qerrors "quotelake/internal/errors"
	"quotelake/internal/market"
)

// normalizeStooq converts a Stooq daily CSV to canonical rows.
//
// Expected columns: Date, Open, High, Low, Close, Volume. Stooq does not
// provide a true adjusted close, so adjusted_close = close.
func normalizeStooq(rawPath, symbol string) ([]market.Row, error) {
	header, records, err := readCSV(rawPath)
	if err != nil {
		return nil, err
	}
	idx := columnIndex(header)

	for _, col := range []string{"Date", "Open", "High", "Low", "Close", "Volume"} {
		if _, ok := idx[col]; !ok {
			return nil, qerrors.NewMissingSection(rawPath, col)
		}
	}

	parseDate := parseDateColumn(records[0][idx["Date"]])
	now := time.Now().UTC()

	rows := make([]market.Row, 0, len(records))
	for _, rec := range records {
		date, err := parseDate(rec[idx["Date"]])
		if err != nil {
			return nil, qerrors.Wrapf(err, "%s: bad date %q", rawPath, rec[idx["Date"]])
		}

		row := market.Row{
			Date:       date,
			Source:     "stooq",
			IngestedAt: now,
			Symbol:     symbol,
		}
		if row.Open, err = parseFloat(rec[idx["Open"]]); err != nil {
			return nil, qerrors.Wrapf(err, "%s: bad open", rawPath)
		}
		if row.High, err = parseFloat(rec[idx["High"]]); err != nil {
			return nil, qerrors.Wrapf(err, "%s: bad high", rawPath)
		}
		if row.Low, err = parseFloat(rec[idx["Low"]]); err != nil {
			return nil, qerrors.Wrapf(err, "%s: bad low", rawPath)
		}
		if row.Close, err = parseFloat(rec[idx["Close"]]); err != nil {
			return nil, qerrors.Wrapf(err, "%s: bad close", rawPath)
		}
		if row.Volume, err = parseVolume(rec[idx["Volume"]]); err != nil {
			return nil, qerrors.Wrapf(err, "%s: bad volume", rawPath)
		}
		row.AdjustedClose = row.Close

		rows = append(rows, row)
	}

	market.SortByDate(rows)
	return rows, nil
}
