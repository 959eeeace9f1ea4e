// quotelake is the command line interface for the daily OHLCV data lake:
// fetch raw payloads, normalize them into Hive-partitioned Parquet, expose
// them through DuckDB views, and run validation and cross-source checks.
package main

import (
	"context"
	"encoding/csv"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"strings"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/term"

	"quotelake/internal/catalog"
	"quotelake/internal/config"
	"quotelake/internal/crossval"
	"quotelake/internal/dates"
	qerrors "quotelake/internal/errors"
	"quotelake/internal/ingest"
	"quotelake/internal/logging"
	"quotelake/internal/market"
	"quotelake/internal/normalize"
	"quotelake/internal/partition"
	"quotelake/internal/report"
	"quotelake/internal/validation"
)

// Version is set at build time via ldflags
var Version = "dev"

const defaultConfigPath = "quotelake.yaml"

func usage() {
	fmt.Fprintf(os.Stderr, `quotelake %s

Usage: quotelake <command> [flags]

Commands:
  ingest         fetch raw daily payloads from the configured sources
  process        normalize raw payloads and write Parquet partitions
  validate       run data quality checks per symbol
  crossvalidate  compare one symbol across sources, pairwise
  matrix         cross-source coverage matrix for many symbols
  query          run SQL against the catalog (interactive without -sql)
  views          rebuild the catalog views from the storage layout
  info           show catalog relations and their shapes
  version        print the version

Run 'quotelake <command> -h' for command flags.
`, Version)
}

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cmd, args := os.Args[1], os.Args[2:]

	var err error
	switch cmd {
	case "ingest":
		err = cmdIngest(ctx, args)
	case "process":
		err = cmdProcess(ctx, args)
	case "validate":
		err = cmdValidate(ctx, args)
	case "crossvalidate":
		err = cmdCrossValidate(ctx, args)
	case "matrix":
		err = cmdMatrix(ctx, args)
	case "query":
		err = cmdQuery(ctx, args)
	case "views":
		err = cmdViews(ctx, args)
	case "info":
		err = cmdInfo(ctx, args)
	case "version":
		fmt.Println(Version)
	case "-h", "--help", "help":
		usage()
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n", cmd)
		usage()
		os.Exit(2)
	}

	if err != nil {
		logging.Error("command failed", "command", cmd, "error", err)
		os.Exit(1)
	}
}

// loadConfig resolves configuration and initializes logging from it.
func loadConfig(path string) (*config.Config, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	logging.Init(logging.ParseLevel(cfg.LogLevel), cfg.LogJSON)
	return cfg, nil
}

// splitList parses a comma-separated flag value, falling back to def when
// the flag was not given.
func splitList(value string, def []string) []string {
	if value == "" {
		return def
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}

func parseDateFlag(value string, def time.Time) (time.Time, error) {
	if value == "" {
		return def, nil
	}
	t, err := time.Parse("2006-01-02", value)
	if err != nil {
		return time.Time{}, qerrors.Wrapf(err, "invalid date %q (want YYYY-MM-DD)", value)
	}
	return t, nil
}

// ---------------------------------------------------------------------------
// ingest
// ---------------------------------------------------------------------------

func cmdIngest(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("ingest", flag.ExitOnError)
	cfgPath := fs.String("config", defaultConfigPath, "config file path")
	sourcesFlag := fs.String("sources", "yfinance,stooq", "comma-separated sources to fetch from")
	symbolsFlag := fs.String("symbols", "", "comma-separated symbols (default: configured universe)")
	startFlag := fs.String("start", "", "start date YYYY-MM-DD (default: configured universe start)")
	endFlag := fs.String("end", "", "end date YYYY-MM-DD (default: last trading day)")
	fs.Parse(args)

	cfg, err := loadConfig(*cfgPath)
	if err != nil {
		return err
	}

	symbols := splitList(*symbolsFlag, cfg.Universe.Symbols)
	sources := splitList(*sourcesFlag, nil)

	start, err := parseDateFlag(*startFlag, cfg.Universe.StartDate())
	if err != nil {
		return err
	}
	end, err := parseDateFlag(*endFlag, dates.LastTradingDay(time.Now().UTC()))
	if err != nil {
		return err
	}

	log := logging.Component("ingest")
	log.Info("ingest starting",
		"sources", strings.Join(sources, ","),
		"symbols", len(symbols),
		"start", start.Format("2006-01-02"),
		"end", end.Format("2006-01-02"),
	)

	// One goroutine per source; within a source, symbols are fetched
	// sequentially under that source's rate limiter.
	g, ctx := errgroup.WithContext(ctx)
	for _, source := range sources {
		source := source
		g.Go(func() error {
			return ingestSource(ctx, cfg, source, symbols, start, end)
		})
	}
	return g.Wait()
}

func ingestSource(ctx context.Context, cfg *config.Config, source string, symbols []string, start, end time.Time) error {
	log := logging.Component("ingest").With("source", source)

	ing, err := ingest.New(source, cfg)
	if err != nil {
		return err
	}
	limiter := ingest.NewLimiter(ing.RateLimit())

	fetched := 0
	for _, symbol := range symbols {
		if err := limiter.Wait(ctx); err != nil {
			// Daily cap or cancellation ends the whole source
			return qerrors.Wrapf(err, "%s after %d symbols", source, fetched)
		}

		res, err := ing.FetchDaily(ctx, symbol, start, end, cfg.Storage.RawDir())
		switch {
		case err == nil:
			fetched++
			log.Info("fetched", "symbol", symbol, "rows", res.Rows, "path", res.RawPath)
		case qerrors.Is(err, qerrors.ErrRateLimitExceeded):
			return qerrors.Wrapf(err, "%s after %d symbols", source, fetched)
		case qerrors.Is(err, qerrors.ErrNoData):
			log.Warn("no data", "symbol", symbol)
		default:
			log.Error("fetch failed", "symbol", symbol, "error", err)
		}
	}

	log.Info("source complete", "fetched", fetched, "requested", len(symbols))
	return nil
}

// ---------------------------------------------------------------------------
// process
// ---------------------------------------------------------------------------

func cmdProcess(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("process", flag.ExitOnError)
	cfgPath := fs.String("config", defaultConfigPath, "config file path")
	sourcesFlag := fs.String("sources", "", "comma-separated sources (default: all with raw data)")
	symbolsFlag := fs.String("symbols", "", "comma-separated symbols (default: configured universe)")
	fs.Parse(args)

	cfg, err := loadConfig(*cfgPath)
	if err != nil {
		return err
	}
	log := logging.Component("process")

	symbols := splitList(*symbolsFlag, cfg.Universe.Symbols)
	sources := splitList(*sourcesFlag, normalize.Sources())

	var rows []market.Row
	processed := 0
	for _, source := range sources {
		for _, symbol := range symbols {
			rawPath, ok := latestRaw(cfg.Storage.RawDir(), source, symbol)
			if !ok {
				log.Debug("no raw payload", "source", source, "symbol", symbol)
				continue
			}

			normalized, err := normalize.Normalize(source, rawPath, symbol)
			if err != nil {
				log.Error("normalize failed", "source", source, "symbol", symbol, "error", err)
				continue
			}
			rows = append(rows, normalized...)
			processed++
			log.Info("normalized", "source", source, "symbol", symbol, "rows", len(normalized))
		}
	}

	if len(rows) == 0 {
		return qerrors.Wrap(qerrors.ErrNoData, "nothing to process")
	}

	opts := partition.Options{
		Dataset:     cfg.Storage.Dataset,
		Compression: partition.ParseCompressionType(cfg.Storage.Compression),
	}
	written, err := partition.Write(rows, cfg.Storage.ProcessedDir(), opts)
	if err != nil {
		return err
	}
	log.Info("process complete", "payloads", processed, "rows", len(rows), "partitions", len(written))

	return catalog.With(cfg.Storage.DuckDBPath(), func(m *catalog.Manager) error {
		views, err := m.CreateViews(ctx, cfg.Storage.ProcessedDir())
		if err != nil {
			return err
		}
		log.Info("views refreshed", "views", strings.Join(views, ","))
		return nil
	})
}

// latestRaw returns the newest raw payload for a source/symbol pair. Payload
// names start with the fetch date, so lexical order is chronological.
func latestRaw(rawDir, source, symbol string) (string, bool) {
	dir := filepath.Join(rawDir, source, symbol)
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", false
	}

	latest := ""
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || strings.HasSuffix(name, ".meta.json") || !strings.Contains(name, "_daily.") {
			continue
		}
		if name > latest {
			latest = name
		}
	}
	if latest == "" {
		return "", false
	}
	return filepath.Join(dir, latest), true
}

// ---------------------------------------------------------------------------
// validate
// ---------------------------------------------------------------------------

func cmdValidate(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("validate", flag.ExitOnError)
	cfgPath := fs.String("config", defaultConfigPath, "config file path")
	symbolsFlag := fs.String("symbols", "", "comma-separated symbols (default: configured universe)")
	summary := fs.Bool("summary", false, "one line per symbol instead of full reports")
	fs.Parse(args)

	cfg, err := loadConfig(*cfgPath)
	if err != nil {
		return err
	}
	symbols := splitList(*symbolsFlag, cfg.Universe.Symbols)

	var reports []validation.Report
	var noData []string

	err = catalog.With(cfg.Storage.DuckDBPath(), func(m *catalog.Manager) error {
		if _, err := m.CreateViews(ctx, cfg.Storage.ProcessedDir()); err != nil {
			return err
		}

		for _, symbol := range symbols {
			rows, err := m.SymbolRows(ctx, cfg.Storage.Dataset, symbol)
			if err != nil {
				if qerrors.Is(err, qerrors.ErrRelationNotFound) {
					noData = append(noData, symbol)
					continue
				}
				return err
			}
			if len(rows) == 0 {
				noData = append(noData, symbol)
				continue
			}
			reports = append(reports, validation.RunAllChecks(rows, symbol))
		}
		return nil
	})
	if err != nil {
		return err
	}

	if *summary {
		report.RenderSummary(os.Stdout, reports, noData)
	} else {
		for _, r := range reports {
			report.RenderReport(os.Stdout, r)
		}
		for _, symbol := range noData {
			fmt.Printf("\n%s: NO DATA\n", symbol)
		}
	}

	failed := 0
	for _, r := range reports {
		if r.OverallStatus() == validation.StatusFail {
			failed++
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d symbols failed validation", failed, len(reports))
	}
	return nil
}

// ---------------------------------------------------------------------------
// crossvalidate
// ---------------------------------------------------------------------------

func cmdCrossValidate(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("crossvalidate", flag.ExitOnError)
	cfgPath := fs.String("config", defaultConfigPath, "config file path")
	symbol := fs.String("symbol", "", "symbol to compare (required)")
	tolerance := fs.Float64("tolerance", 1.0, "percentage difference treated as disagreement")
	startFlag := fs.String("start", "", "restrict comparison to dates >= YYYY-MM-DD")
	endFlag := fs.String("end", "", "restrict comparison to dates <= YYYY-MM-DD")
	fs.Parse(args)

	if *symbol == "" {
		return qerrors.NewMissingField("-symbol")
	}

	cfg, err := loadConfig(*cfgPath)
	if err != nil {
		return err
	}

	start, err := parseDateFlag(*startFlag, time.Time{})
	if err != nil {
		return err
	}
	end, err := parseDateFlag(*endFlag, time.Time{})
	if err != nil {
		return err
	}

	var series []crossval.Series
	err = catalog.With(cfg.Storage.DuckDBPath(), func(m *catalog.Manager) error {
		for _, source := range normalize.Sources() {
			rows, ok, err := m.SourceSeries(ctx, cfg.Storage.Dataset, *symbol, source)
			if err != nil {
				return err
			}
			rows = filterDateRange(rows, start, end)
			if !ok || len(rows) == 0 {
				continue
			}
			series = append(series, crossval.Series{
				Source:           source,
				ProvidesAdjusted: cfg.ProvidesAdjusted(source),
				Rows:             rows,
			})
		}
		return nil
	})
	if err != nil {
		return err
	}

	if len(series) < 2 {
		return qerrors.Wrapf(qerrors.ErrNoData,
			"%s: need at least two sources with data, have %d", *symbol, len(series))
	}

	fmt.Printf("Cross-validation for %s (tolerance %g%%)\n", *symbol, *tolerance)
	for i := 0; i < len(series); i++ {
		for j := i + 1; j < len(series); j++ {
			cmp := crossval.Compare(*symbol, series[i], series[j], *tolerance)
			report.RenderComparison(os.Stdout, cmp)
		}
	}
	return nil
}

func filterDateRange(rows []market.Row, start, end time.Time) []market.Row {
	if start.IsZero() && end.IsZero() {
		return rows
	}
	var out []market.Row
	for _, r := range rows {
		if !start.IsZero() && r.Date.Before(start) {
			continue
		}
		if !end.IsZero() && r.Date.After(end) {
			continue
		}
		out = append(out, r)
	}
	return out
}

// ---------------------------------------------------------------------------
// matrix
// ---------------------------------------------------------------------------

func cmdMatrix(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("matrix", flag.ExitOnError)
	cfgPath := fs.String("config", defaultConfigPath, "config file path")
	symbolsFlag := fs.String("symbols", "", "comma-separated symbols (default: configured universe)")
	sourcesFlag := fs.String("sources", "", "comma-separated sources (default: all known)")
	fs.Parse(args)

	cfg, err := loadConfig(*cfgPath)
	if err != nil {
		return err
	}
	symbols := splitList(*symbolsFlag, cfg.Universe.Symbols)
	sources := splitList(*sourcesFlag, normalize.Sources())

	return catalog.With(cfg.Storage.DuckDBPath(), func(m *catalog.Manager) error {
		matrix, err := crossval.Matrix(ctx, m, cfg.Storage.Dataset, symbols, sources)
		if err != nil {
			return err
		}
		report.RenderMatrix(os.Stdout, matrix)
		return nil
	})
}

// ---------------------------------------------------------------------------
// query
// ---------------------------------------------------------------------------

func cmdQuery(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("query", flag.ExitOnError)
	cfgPath := fs.String("config", defaultConfigPath, "config file path")
	sqlFlag := fs.String("sql", "", "SQL to run; omit on a terminal for an interactive session")
	limit := fs.Int("limit", 50, "max rows to display (0 for all)")
	csvPath := fs.String("csv", "", "write the full result set to this CSV file")
	fs.Parse(args)

	cfg, err := loadConfig(*cfgPath)
	if err != nil {
		return err
	}

	return catalog.With(cfg.Storage.DuckDBPath(), func(m *catalog.Manager) error {
		if *sqlFlag == "" {
			if !term.IsTerminal(int(os.Stdin.Fd())) {
				return qerrors.NewMissingField("-sql")
			}
			return runREPL(ctx, m, *limit)
		}

		table, err := m.QueryTable(ctx, *sqlFlag)
		if err != nil {
			return err
		}
		report.RenderTable(os.Stdout, table, *limit)

		if *csvPath != "" {
			if err := writeCSV(*csvPath, table); err != nil {
				return err
			}
			fmt.Printf("wrote %d rows to %s\n", table.Len(), *csvPath)
		}
		return nil
	})
}

func writeCSV(path string, table *catalog.Table) error {
	f, err := os.Create(path)
	if err != nil {
		return qerrors.Wrap(err, "create csv")
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(table.Columns); err != nil {
		return qerrors.Wrap(err, "write csv header")
	}
	for _, row := range table.Rows {
		record := make([]string, len(row))
		for i, v := range row {
			record[i] = fmt.Sprintf("%v", v)
		}
		if err := w.Write(record); err != nil {
			return qerrors.Wrap(err, "write csv row")
		}
	}
	w.Flush()
	return w.Error()
}

// ---------------------------------------------------------------------------
// views / info
// ---------------------------------------------------------------------------

func cmdViews(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("views", flag.ExitOnError)
	cfgPath := fs.String("config", defaultConfigPath, "config file path")
	fs.Parse(args)

	cfg, err := loadConfig(*cfgPath)
	if err != nil {
		return err
	}

	return catalog.With(cfg.Storage.DuckDBPath(), func(m *catalog.Manager) error {
		views, err := m.CreateViews(ctx, cfg.Storage.ProcessedDir())
		if err != nil {
			return err
		}
		if len(views) == 0 {
			fmt.Println("no datasets with parquet files found")
			return nil
		}
		sort.Strings(views)
		for _, v := range views {
			fmt.Println(v)
		}
		return nil
	})
}

func cmdInfo(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("info", flag.ExitOnError)
	cfgPath := fs.String("config", defaultConfigPath, "config file path")
	fs.Parse(args)

	cfg, err := loadConfig(*cfgPath)
	if err != nil {
		return err
	}

	return catalog.With(cfg.Storage.DuckDBPath(), func(m *catalog.Manager) error {
		if _, err := m.CreateViews(ctx, cfg.Storage.ProcessedDir()); err != nil {
			return err
		}
		info, err := m.TableInfo(ctx)
		if err != nil {
			if qerrors.Is(err, qerrors.ErrRelationNotFound) {
				fmt.Println("catalog is empty")
				return nil
			}
			return err
		}
		if len(info) == 0 {
			fmt.Println("catalog is empty")
			return nil
		}
		report.RenderInfo(os.Stdout, info)
		return nil
	})
}
