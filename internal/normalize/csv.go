package normalize

import (
	"encoding/csv"
	"os"
	"strconv"
	"strings"
	"time"

	qerrors "quotelake/internal/errors"
	"quotelake/internal/market"
)

// readCSV loads a raw CSV file and returns its header and data records.
func readCSV(path string) (header []string, records [][]string, err error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.TrimLeadingSpace = true
	all, err := r.ReadAll()
	if err != nil {
		return nil, nil, err
	}
	if len(all) < 2 {
		return nil, nil, qerrors.Wrapf(qerrors.ErrNormalization, "%s: no data rows", path)
	}
	return all[0], all[1:], nil
}

// columnIndex maps header names to their positions.
func columnIndex(header []string) map[string]int {
	idx := make(map[string]int, len(header))
	for i, name := range header {
		idx[strings.TrimSpace(name)] = i
	}
	return idx
}

// parseDateColumn chooses the date-only or timezone-aware parse path by
// inspecting whether the sample string contains a time separator. Source
// date formats vary: "2024-01-02" or "2024-12-02 00:00:00-05:00". The
// timezone-aware path keeps the date components as written, without
// converting to UTC first.
func parseDateColumn(sample string) func(string) (time.Time, error) {
	if strings.Contains(sample, ":") {
		return func(s string) (time.Time, error) {
			t, err := time.Parse("2006-01-02 15:04:05-07:00", s)
			if err != nil {
				return time.Time{}, err
			}
			return market.DateOf(t), nil
		}
	}
	return func(s string) (time.Time, error) {
		t, err := time.Parse("2006-01-02", s)
		if err != nil {
			return time.Time{}, err
		}
		return market.DateOf(t), nil
	}
}

func parseFloat(s string) (float64, error) {
	return strconv.ParseFloat(strings.TrimSpace(s), 64)
}

// parseVolume accepts integer volumes, tolerating a fractional rendering.
func parseVolume(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if v, err := strconv.ParseInt(s, 10, 64); err == nil {
		return v, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	return int64(f), nil
}
