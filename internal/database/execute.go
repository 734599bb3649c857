// ABOUTME: Passthrough execution of caller-supplied SQL
// ABOUTME: Runs statements verbatim and returns every result row with column names
package database

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/harper/sqlrag/internal/models"
)

// Execute runs sqlText verbatim and returns all rows. Statements that produce
// no rows return an empty result. The text is not validated or sanitized.
func (db *DB) Execute(ctx context.Context, sqlText string) (*models.QueryResult, error) {
	db.logger.Debug("executing sql", zap.String("sql", sqlText))

	rows, err := db.conn.QueryContext(ctx, sqlText)
	if err != nil {
		return nil, fmt.Errorf("failed to execute sql: %w", err)
	}
	defer func() { _ = rows.Close() }()

	columns, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("failed to read result columns: %w", err)
	}

	result := &models.QueryResult{
		SQL:     sqlText,
		Columns: columns,
		Rows:    [][]any{},
	}

	for rows.Next() {
		values := make([]any, len(columns))
		ptrs := make([]any, len(columns))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("failed to scan result row: %w", err)
		}
		for i, v := range values {
			if b, ok := v.([]byte); ok {
				values[i] = string(b)
			}
		}
		result.Rows = append(result.Rows, values)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read result rows: %w", err)
	}

	db.logger.Debug("sql executed", zap.Int("rows", len(result.Rows)))
	return result, nil
}
