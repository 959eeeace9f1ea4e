// Package catalog manages the DuckDB connection and the views exposing
// Hive-partitioned Parquet datasets as queryable relations.
package catalog

import (
	"context"
	"database/sql"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	_ "github.com/marcboeker/go-duckdb"

	qerrors "quotelake/internal/errors"
	"quotelake/internal/logging"
)

// Manager owns one DuckDB connection. Single connection per scope, single
// writer at a time; no cross-process locking is provided.
type Manager struct {
	db  *sql.DB
	log interface {
		Info(msg string, args ...any)
		Warn(msg string, args ...any)
	}
}

// Open opens (creating if necessary) the DuckDB database at dbPath.
// Callers must Close the returned manager; prefer With for scoped use.
func Open(dbPath string) (*Manager, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, qerrors.Wrap(err, "create database directory")
	}

	db, err := sql.Open("duckdb", dbPath)
	if err != nil {
		return nil, qerrors.Wrap(err, "open duckdb")
	}

	return &Manager{
		db:  db,
		log: logging.Component("catalog"),
	}, nil
}

// Close releases the connection.
func (m *Manager) Close() error {
	if m.db != nil {
		return m.db.Close()
	}
	return nil
}

// With opens the database at dbPath, runs fn, and closes the connection on
// every exit path.
func With(dbPath string, fn func(*Manager) error) error {
	m, err := Open(dbPath)
	if err != nil {
		return err
	}
	defer m.Close()
	return fn(m)
}

// viewNameRe restricts dataset directory names usable as relation names.
var viewNameRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// CreateViews scans storageRoot and creates or replaces one view per dataset
// subdirectory that contains at least one Parquet file. Partition columns
// (symbol, source, year) are declared with fixed types so DuckDB
// reconstructs them from the Hive path segments instead of file content.
//
// Subdirectories without Parquet files are skipped with a diagnostic; a
// missing storage root yields an empty list. Returns the created view names.
func (m *Manager) CreateViews(ctx context.Context, storageRoot string) ([]string, error) {
	entries, err := os.ReadDir(storageRoot)
	if err != nil {
		if os.IsNotExist(err) {
			m.log.Warn("storage root missing", "path", storageRoot)
			return nil, nil
		}
		return nil, qerrors.Wrapf(err, "scan %s", storageRoot)
	}

	var created []string
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		name := entry.Name()
		if !viewNameRe.MatchString(name) {
			m.log.Warn("skipping dataset with unusable name", "dataset", name)
			continue
		}

		datasetDir := filepath.Join(storageRoot, name)
		files, err := countParquetFiles(datasetDir)
		if err != nil {
			return created, qerrors.Wrapf(err, "scan dataset %s", name)
		}
		if files == 0 {
			// Legitimate not-yet-ingested state
			m.log.Warn("no parquet files in dataset", "dataset", name)
			continue
		}

		glob := filepath.ToSlash(datasetDir) + "/**/*.parquet"
		stmt := fmt.Sprintf(`
			CREATE OR REPLACE VIEW %s AS
			SELECT *
			FROM read_parquet(
				'%s',
				hive_partitioning = true,
				hive_types = {'symbol': VARCHAR, 'source': VARCHAR, 'year': INTEGER}
			)`, name, strings.ReplaceAll(glob, "'", "''"))

		if _, err := m.db.ExecContext(ctx, stmt); err != nil {
			return created, qerrors.Wrapf(wrapQueryErr(err), "create view %s", name)
		}

		m.log.Info("view created", "view", name, "files", files)
		created = append(created, name)
	}

	return created, nil
}

func countParquetFiles(dir string) (int, error) {
	count := 0
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && strings.HasSuffix(d.Name(), ".parquet") {
			count++
		}
		return nil
	})
	return count, err
}

// Execute runs an ad-hoc query and returns the raw rows. The caller owns
// the returned rows and must close them.
func (m *Manager) Execute(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	rows, err := m.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, wrapQueryErr(err)
	}
	return rows, nil
}

// wrapQueryErr classifies DuckDB errors into the catalog error taxonomy.
func wrapQueryErr(err error) error {
	if err == nil {
		return nil
	}
	msg := err.Error()
	if strings.Contains(msg, "does not exist") || strings.Contains(msg, "Catalog Error") {
		return fmt.Errorf("%v: %w", err, qerrors.ErrRelationNotFound)
	}
	return fmt.Errorf("%v: %w", err, qerrors.ErrQuery)
}
