package normalize

import (
	"encoding/json"
	"os"
	"time"

	qerrors "quotelake/internal/errors"
	"quotelake/internal/market"
)

// dailySection is the top-level key Alpha Vantage uses for daily series.
const dailySection = "Time Series (Daily)"

// normalizeAlphaVantage converts an Alpha Vantage daily JSON payload to
// canonical rows.
//
// Payload shape:
//
//	{"Time Series (Daily)": {"2024-01-15": {"1. open": "...", ...}, ...}}
//
// The series is a JSON object, so rows are sorted ascending after decoding.
func normalizeAlphaVantage(rawPath, symbol string) ([]market.Row, error) {
	data, err := os.ReadFile(rawPath)
	if err != nil {
		return nil, err
	}

	var payload struct {
		TimeSeries map[string]map[string]string `json:"Time Series (Daily)"`
	}
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, qerrors.Wrapf(err, "%s: decode", rawPath)
	}
	if len(payload.TimeSeries) == 0 {
		return nil, qerrors.NewMissingSection(rawPath, dailySection)
	}

	now := time.Now().UTC()

	rows := make([]market.Row, 0, len(payload.TimeSeries))
	for dateStr, values := range payload.TimeSeries {
		date, err := time.Parse("2006-01-02", dateStr)
		if err != nil {
			return nil, qerrors.Wrapf(err, "%s: bad date %q", rawPath, dateStr)
		}

		row := market.Row{
			Date:       market.DateOf(date),
			Source:     "alpha_vantage",
			IngestedAt: now,
			Symbol:     symbol,
		}
		if row.Open, err = parseFloat(values["1. open"]); err != nil {
			return nil, qerrors.Wrapf(err, "%s: bad open on %s", rawPath, dateStr)
		}
		if row.High, err = parseFloat(values["2. high"]); err != nil {
			return nil, qerrors.Wrapf(err, "%s: bad high on %s", rawPath, dateStr)
		}
		if row.Low, err = parseFloat(values["3. low"]); err != nil {
			return nil, qerrors.Wrapf(err, "%s: bad low on %s", rawPath, dateStr)
		}
		if row.Close, err = parseFloat(values["4. close"]); err != nil {
			return nil, qerrors.Wrapf(err, "%s: bad close on %s", rawPath, dateStr)
		}
		if row.Volume, err = parseVolume(values["6. volume"]); err != nil {
			return nil, qerrors.Wrapf(err, "%s: bad volume on %s", rawPath, dateStr)
		}

		// Adjusted close is present only on the adjusted endpoint
		if adj, ok := values["5. adjusted close"]; ok {
			if row.AdjustedClose, err = parseFloat(adj); err != nil {
				return nil, qerrors.Wrapf(err, "%s: bad adjusted close on %s", rawPath, dateStr)
			}
		} else {
			row.AdjustedClose = row.Close
		}

		rows = append(rows, row)
	}

	market.SortByDate(rows)
	return rows, nil
}
