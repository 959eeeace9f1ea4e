package normalize

import (
	"time"

	qerrors "quotelake/internal/errors"
	"quotelake/internal/market"
)

// adjCloseCandidates are the header spellings Yahoo CSVs use for the
// adjusted close column.
var adjCloseCandidates = []string{"Adj Close", "Adj. Close", "Adjusted Close"}

// normalizeYFinance converts a yfinance-style daily CSV to canonical rows.
//
// Expected columns: Date (or Datetime), Open, High, Low, Close, Adj Close,
// Volume. The payload is already ascending by date, so rows are not
// re-sorted.
func normalizeYFinance(rawPath, symbol string) ([]market.Row, error) {
	header, records, err := readCSV(rawPath)
	if err != nil {
		return nil, err
	}
	idx := columnIndex(header)

	dateCol, ok := idx["Date"]
	if !ok {
		if dateCol, ok = idx["Datetime"]; !ok {
			return nil, qerrors.NewMissingSection(rawPath, "Date")
		}
	}
	for _, col := range []string{"Open", "High", "Low", "Close", "Volume"} {
		if _, ok := idx[col]; !ok {
			return nil, qerrors.NewMissingSection(rawPath, col)
		}
	}

	adjCol := -1
	for _, candidate := range adjCloseCandidates {
		if i, ok := idx[candidate]; ok {
			adjCol = i
			break
		}
	}

	parseDate := parseDateColumn(records[0][dateCol])
	now := time.Now().UTC()

	rows := make([]market.Row, 0, len(records))
	for _, rec := range records {
		date, err := parseDate(rec[dateCol])
		if err != nil {
			return nil, qerrors.Wrapf(err, "%s: bad date %q", rawPath, rec[dateCol])
		}

		row := market.Row{
			Date:       date,
			Source:     "yfinance",
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

		if adjCol >= 0 {
			if row.AdjustedClose, err = parseFloat(rec[adjCol]); err != nil {
				return nil, qerrors.Wrapf(err, "%s: bad adjusted close", rawPath)
			}
		} else {
			row.AdjustedClose = row.Close
		}

		rows = append(rows, row)
	}

	return rows, nil
}
