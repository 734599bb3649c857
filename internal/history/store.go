// ABOUTME: Persistent log of asked questions, generated SQL and outcomes
// ABOUTME: Kept in its own SQLite file so it never appears in schema introspection
package history

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/harper/sqlrag/internal/models"
)

const schema = `
CREATE TABLE IF NOT EXISTS history (
    id TEXT PRIMARY KEY,
    question TEXT NOT NULL,
    context TEXT,
    sql TEXT,
    row_count INTEGER DEFAULT 0,
    error TEXT,
    created_at DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_history_created ON history(created_at);
`

// Store persists history entries
type Store struct {
	conn *sql.DB
}

// Open opens or creates the history database at path
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create history directory: %w", err)
	}
	conn, err := sql.Open("sqlite", path+"?_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("failed to open history database: %w", err)
	}
	return newStore(conn)
}

// OpenInMemory creates an in-memory history store (for testing)
func OpenInMemory() (*Store, error) {
	conn, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		return nil, fmt.Errorf("failed to open in-memory history database: %w", err)
	}
	conn.SetMaxOpenConns(1)
	return newStore(conn)
}

func newStore(conn *sql.DB) (*Store, error) {
	if _, err := conn.Exec(schema); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to initialize history schema: %w", err)
	}
	return &Store{conn: conn}, nil
}

// Record saves entry, assigning an ID and timestamp when missing
func (s *Store) Record(ctx context.Context, entry *models.HistoryEntry) error {
	if entry.ID == "" {
		entry.ID = uuid.New().String()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}

	_, err := s.conn.ExecContext(ctx, `
		INSERT INTO history (id, question, context, sql, row_count, error, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, entry.ID, entry.Question, entry.Context, entry.SQL, entry.RowCount, nullString(entry.Error), entry.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to record history: %w", err)
	}
	return nil
}

// List returns the most recent entries first. limit <= 0 returns everything.
func (s *Store) List(ctx context.Context, limit int) ([]models.HistoryEntry, error) {
	query := `
		SELECT id, question, context, sql, row_count, error, created_at
		FROM history
		ORDER BY created_at DESC, rowid DESC
	`
	args := []any{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list history: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var entries []models.HistoryEntry
	for rows.Next() {
		var (
			e          models.HistoryEntry
			contextStr sql.NullString
			sqlText    sql.NullString
			errText    sql.NullString
		)
		if err := rows.Scan(&e.ID, &e.Question, &contextStr, &sqlText, &e.RowCount, &errText, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan history: %w", err)
		}
		e.Context = contextStr.String
		e.SQL = sqlText.String
		e.Error = errText.String
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Clear deletes every entry and reports how many were removed
func (s *Store) Clear(ctx context.Context) (int64, error) {
	res, err := s.conn.ExecContext(ctx, `DELETE FROM history`)
	if err != nil {
		return 0, fmt.Errorf("failed to clear history: %w", err)
	}
	return res.RowsAffected()
}

// Close closes the database connection
func (s *Store) Close() error {
	if s.conn != nil {
		return s.conn.Close()
	}
	return nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
