// Package partition writes canonical rows to Hive-partitioned Parquet files
// and reads them back.
//
// The partition key is (symbol, source, year). Partition values live in the
// directory path (symbol=S/source=SRC/year=Y) and are dropped from file
// content; the catalog reconstructs them from path segments at query time,
// so the group keys used here and the path-parsing rules in ParseKey must
// stay consistent.
package partition

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/parquet-go/parquet-go"

	qerrors "quotelake/internal/errors"
	"quotelake/internal/logging"
	"quotelake/internal/market"
)

// FileName is the single data file kept per partition group.
const FileName = "data.parquet"

// Key identifies one partition group.
type Key struct {
	Symbol string
	Source string
	Year   int
}

// fileRow is the on-disk row layout: the canonical schema minus the
// partition columns.
type fileRow struct {
	Date          int32   `parquet:"date,date"`
	Open          float64 `parquet:"open"`
	High          float64 `parquet:"high"`
	Low           float64 `parquet:"low"`
	Close         float64 `parquet:"close"`
	AdjustedClose float64 `parquet:"adjusted_close"`
	Volume        int64   `parquet:"volume"`
	IngestedAt    int64   `parquet:"ingested_at,timestamp(microsecond)"`
}

const secondsPerDay = 86400

func toFileRow(r market.Row) fileRow {
	return fileRow{
		Date:          int32(r.Date.Unix() / secondsPerDay),
		Open:          r.Open,
		High:          r.High,
		Low:           r.Low,
		Close:         r.Close,
		AdjustedClose: r.AdjustedClose,
		Volume:        r.Volume,
		IngestedAt:    r.IngestedAt.UnixMicro(),
	}
}

func fromFileRow(f fileRow, key Key) market.Row {
	return market.Row{
		Date:          time.Unix(int64(f.Date)*secondsPerDay, 0).UTC(),
		Open:          f.Open,
		High:          f.High,
		Low:           f.Low,
		Close:         f.Close,
		AdjustedClose: f.AdjustedClose,
		Volume:        f.Volume,
		Source:        key.Source,
		IngestedAt:    time.UnixMicro(f.IngestedAt).UTC(),
		Symbol:        key.Symbol,
	}
}

// GroupPath returns the partition file path for a key under root/dataset.
func GroupPath(root, dataset string, key Key) string {
	return filepath.Join(
		root,
		dataset,
		fmt.Sprintf("symbol=%s", key.Symbol),
		fmt.Sprintf("source=%s", key.Source),
		fmt.Sprintf("year=%d", key.Year),
		FileName,
	)
}

// Write groups rows by (symbol, source, year) and writes one compressed
// Parquet file per group under root, fully replacing any existing file for
// that group. Returns the paths written, in deterministic key order.
//
// The replace is whole-file: rows previously stored for a group but absent
// from this batch are dropped. Feed full-history batches when reprocessing.
//
// Writing stops at the first failing group; the error identifies it and the
// returned paths cover the groups already written.
func Write(rows []market.Row, root string, opts Options) ([]string, error) {
	log := logging.Component("partition")

	dataset := opts.Dataset
	if dataset == "" {
		dataset = market.DefaultDataset
	}

	groups := make(map[Key][]market.Row)
	for _, r := range rows {
		key := Key{Symbol: r.Symbol, Source: r.Source, Year: r.Year()}
		groups[key] = append(groups[key], r)
	}

	keys := make([]Key, 0, len(groups))
	for k := range groups {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		a, b := keys[i], keys[j]
		if a.Symbol != b.Symbol {
			return a.Symbol < b.Symbol
		}
		if a.Source != b.Source {
			return a.Source < b.Source
		}
		return a.Year < b.Year
	})

	var written []string
	for _, key := range keys {
		path := GroupPath(root, dataset, key)
		if err := writeGroup(path, groups[key], opts); err != nil {
			return written, qerrors.NewPartitionWrite(key.Symbol, key.Source, key.Year, err)
		}
		log.Info("partition written",
			"symbol", key.Symbol,
			"source", key.Source,
			"year", key.Year,
			"rows", len(groups[key]),
			"path", path,
		)
		written = append(written, path)
	}

	return written, nil
}

func writeGroup(path string, rows []market.Row, opts Options) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create directory: %w", err)
	}

	if _, err := os.Stat(path); err == nil {
		logging.Component("partition").Debug("replacing partition file",
			"path", path, "rows", len(rows))
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create file: %w", err)
	}

	w := parquet.NewGenericWriter[fileRow](f,
		parquet.Compression(getCompression(opts.Compression)),
	)

	out := make([]fileRow, len(rows))
	for i, r := range rows {
		out[i] = toFileRow(r)
	}

	if _, err := w.Write(out); err != nil {
		w.Close()
		f.Close()
		return fmt.Errorf("write rows: %w", err)
	}
	if err := w.Close(); err != nil {
		f.Close()
		return fmt.Errorf("close writer: %w", err)
	}
	return f.Close()
}
