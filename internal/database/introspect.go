// ABOUTME: Schema introspection via sqlite_master and PRAGMA table_info
// ABOUTME: Produces the SchemaDescriptor that is embedded into the vector store
package database

import (
	"context"
	"fmt"
	"strings"

	"github.com/harper/sqlrag/internal/models"
)

const selectTablesQuery = `SELECT name FROM sqlite_master WHERE type='table' AND name NOT LIKE 'sqlite_%' ORDER BY name`

// Schema lists user tables and their columns in declaration order
func (db *DB) Schema(ctx context.Context) (models.SchemaDescriptor, error) {
	names, err := db.tableNames(ctx)
	if err != nil {
		return nil, err
	}

	schema := make(models.SchemaDescriptor, 0, len(names))
	for _, name := range names {
		columns, err := db.tableColumns(ctx, name)
		if err != nil {
			return nil, err
		}
		schema = append(schema, models.TableSchema{Name: name, Columns: columns})
	}

	return schema, nil
}

// tableNames reads all names before returning so the single in-memory
// connection is free for the per-table PRAGMA queries.
func (db *DB) tableNames(ctx context.Context) ([]string, error) {
	rows, err := db.conn.QueryContext(ctx, selectTablesQuery)
	if err != nil {
		return nil, fmt.Errorf("failed to list tables: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("failed to scan table name: %w", err)
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

func (db *DB) tableColumns(ctx context.Context, table string) ([]string, error) {
	rows, err := db.conn.QueryContext(ctx, fmt.Sprintf("PRAGMA table_info(%s)", quoteIdent(table)))
	if err != nil {
		return nil, fmt.Errorf("failed to read columns of %s: %w", table, err)
	}
	defer func() { _ = rows.Close() }()

	var columns []string
	for rows.Next() {
		var (
			cid     int
			name    string
			ctype   string
			notNull int
			dflt    any
			pk      int
		)
		if err := rows.Scan(&cid, &name, &ctype, &notNull, &dflt, &pk); err != nil {
			return nil, fmt.Errorf("failed to scan column of %s: %w", table, err)
		}
		columns = append(columns, name)
	}
	return columns, rows.Err()
}

func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}
