package catalog

import (
	"context"
	"fmt"
)

// Table is an in-memory query result.
type Table struct {
	Columns []string
	Rows    [][]any
}

// Len returns the number of rows.
func (t *Table) Len() int { return len(t.Rows) }

// RelationInfo is per-view metadata. Err carries the introspection error
// text when a view cannot be described, instead of failing the whole call.
type RelationInfo struct {
	Name        string
	Rows        int64
	Columns     int
	ColumnNames []string
	Err         string
}

// QueryTable runs a query and materializes the full result set.
func (m *Manager) QueryTable(ctx context.Context, query string, args ...any) (*Table, error) {
	rows, err := m.Execute(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, wrapQueryErr(err)
	}

	table := &Table{Columns: columns}
	for rows.Next() {
		values := make([]any, len(columns))
		ptrs := make([]any, len(columns))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, wrapQueryErr(err)
		}
		table.Rows = append(table.Rows, values)
	}

	return table, wrapQueryErr(rows.Err())
}

// TableInfo returns row count, column count and column names for every
// known relation.
func (m *Manager) TableInfo(ctx context.Context) ([]RelationInfo, error) {
	names, err := m.QueryTable(ctx, "SHOW TABLES")
	if err != nil {
		return nil, err
	}

	var info []RelationInfo
	for _, row := range names.Rows {
		name := fmt.Sprintf("%v", row[0])

		ri := RelationInfo{Name: name}

		var count int64
		err := m.db.QueryRowContext(ctx, fmt.Sprintf("SELECT COUNT(*) FROM %s", name)).Scan(&count)
		if err != nil {
			ri.Err = err.Error()
			info = append(info, ri)
			continue
		}

		desc, err := m.QueryTable(ctx, fmt.Sprintf("DESCRIBE %s", name))
		if err != nil {
			ri.Err = err.Error()
			info = append(info, ri)
			continue
		}

		ri.Rows = count
		ri.Columns = desc.Len()
		for _, d := range desc.Rows {
			ri.ColumnNames = append(ri.ColumnNames, fmt.Sprintf("%v", d[0]))
		}
		info = append(info, ri)
	}

	return info, nil
}
