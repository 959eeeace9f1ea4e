package partition

import (
	"path/filepath"
	"strconv"
	"strings"

	"github.com/parquet-go/parquet-go"

	qerrors "quotelake/internal/errors"
	"quotelake/internal/market"
)

// ParseKey reconstructs the partition key from a partition file path by
// reading its symbol=/source=/year= directory segments.
func ParseKey(path string) (Key, error) {
	var key Key
	var haveSymbol, haveSource, haveYear bool

	for _, seg := range strings.Split(filepath.ToSlash(path), "/") {
		name, value, ok := strings.Cut(seg, "=")
		if !ok {
			continue
		}
		switch name {
		case "symbol":
			key.Symbol = value
			haveSymbol = true
		case "source":
			key.Source = value
			haveSource = true
		case "year":
			year, err := strconv.Atoi(value)
			if err != nil {
				return Key{}, qerrors.Wrapf(qerrors.ErrInvalidPath, "%s: bad year %q", path, value)
			}
			key.Year = year
			haveYear = true
		}
	}

	if !haveSymbol || !haveSource || !haveYear {
		return Key{}, qerrors.Wrapf(qerrors.ErrInvalidPath, "%s: missing partition segments", path)
	}
	return key, nil
}

// ReadFile reads one partition file back into canonical rows, restoring the
// partition columns from the file's path segments.
func ReadFile(path string) ([]market.Row, error) {
	key, err := ParseKey(path)
	if err != nil {
		return nil, err
	}

	fileRows, err := parquet.ReadFile[fileRow](path)
	if err != nil {
		return nil, qerrors.Wrapf(err, "read %s", path)
	}

	rows := make([]market.Row, len(fileRows))
	for i, fr := range fileRows {
		rows[i] = fromFileRow(fr, key)
	}
	return rows, nil
}
