// ABOUTME: SQLite-backed vector store
// ABOUTME: Keeps embeddings as float32 BLOBs and ranks them with cosine similarity in Go
package vectorstore

import (
	"context"
	"database/sql"
	"encoding/binary"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"

	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"github.com/harper/sqlrag/internal/logging"
	"github.com/harper/sqlrag/internal/models"
)

const vectorSchema = `
CREATE TABLE IF NOT EXISTS vectors (
    collection TEXT NOT NULL,
    id TEXT NOT NULL,
    document TEXT NOT NULL,
    embedding BLOB NOT NULL,
    created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
    PRIMARY KEY (collection, id)
);
`

// SQLiteStore stores one named collection in a SQLite file
type SQLiteStore struct {
	conn       *sql.DB
	collection string
	logger     *zap.Logger
}

// OpenSQLite opens or creates the vector database at path
func OpenSQLite(path, collection string, logger *zap.Logger) (*SQLiteStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create vector directory: %w", err)
	}

	conn, err := sql.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("failed to open vector database: %w", err)
	}
	return newSQLiteStore(conn, collection, logger)
}

// OpenSQLiteInMemory creates an in-memory vector store (for testing)
func OpenSQLiteInMemory(collection string) (*SQLiteStore, error) {
	conn, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		return nil, fmt.Errorf("failed to open in-memory vector database: %w", err)
	}
	conn.SetMaxOpenConns(1)
	return newSQLiteStore(conn, collection, nil)
}

func newSQLiteStore(conn *sql.DB, collection string, logger *zap.Logger) (*SQLiteStore, error) {
	if collection == "" {
		_ = conn.Close()
		return nil, fmt.Errorf("collection name is required")
	}
	if _, err := conn.Exec(vectorSchema); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to initialize vector schema: %w", err)
	}
	return &SQLiteStore{
		conn:       conn,
		collection: collection,
		logger:     logging.OrNop(logger),
	}, nil
}

// Add inserts entries in one transaction, ignoring IDs already present
func (s *SQLiteStore) Add(ctx context.Context, entries []models.VectorEntry) error {
	if len(entries) == 0 {
		return nil
	}

	tx, err := s.conn.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO vectors (collection, id, document, embedding)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(collection, id) DO NOTHING
	`)
	if err != nil {
		return err
	}
	defer func() { _ = stmt.Close() }()

	added := 0
	for _, e := range entries {
		if e.ID == "" {
			return fmt.Errorf("entry id must not be empty")
		}
		res, err := stmt.ExecContext(ctx, s.collection, e.ID, e.Document, encodeEmbedding(e.Embedding))
		if err != nil {
			return fmt.Errorf("failed to insert %s: %w", e.ID, err)
		}
		if n, err := res.RowsAffected(); err == nil && n == 0 {
			s.logger.Warn("vector entry already exists, skipping", zap.String("id", e.ID))
			continue
		}
		added++
	}

	if err := tx.Commit(); err != nil {
		return err
	}

	s.logger.Debug("stored vectors", zap.String("collection", s.collection), zap.Int("added", added))
	return nil
}

// Query ranks every entry in the collection against embedding
func (s *SQLiteStore) Query(ctx context.Context, embedding []float32, n int) ([]models.VectorMatch, error) {
	if n <= 0 {
		return nil, nil
	}

	rows, err := s.conn.QueryContext(ctx, `
		SELECT id, document, embedding FROM vectors WHERE collection = ?
	`, s.collection)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var matches []models.VectorMatch
	for rows.Next() {
		var (
			m    models.VectorMatch
			blob []byte
		)
		if err := rows.Scan(&m.ID, &m.Document, &blob); err != nil {
			return nil, err
		}
		m.Similarity = CosineSimilarity(embedding, decodeEmbedding(blob))
		matches = append(matches, m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Similarity > matches[j].Similarity
	})

	if len(matches) > n {
		matches = matches[:n]
	}
	return matches, nil
}

// Count returns the number of entries in the collection
func (s *SQLiteStore) Count(ctx context.Context) (int, error) {
	var n int
	err := s.conn.QueryRowContext(ctx, `SELECT COUNT(*) FROM vectors WHERE collection = ?`, s.collection).Scan(&n)
	return n, err
}

// Entries returns every entry in insertion order
func (s *SQLiteStore) Entries(ctx context.Context) ([]models.VectorEntry, error) {
	rows, err := s.conn.QueryContext(ctx, `
		SELECT id, document, embedding FROM vectors WHERE collection = ? ORDER BY rowid
	`, s.collection)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var entries []models.VectorEntry
	for rows.Next() {
		var (
			e    models.VectorEntry
			blob []byte
		)
		if err := rows.Scan(&e.ID, &e.Document, &blob); err != nil {
			return nil, err
		}
		e.Embedding = decodeEmbedding(blob)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Reset deletes the collection's entries
func (s *SQLiteStore) Reset(ctx context.Context) error {
	_, err := s.conn.ExecContext(ctx, `DELETE FROM vectors WHERE collection = ?`, s.collection)
	return err
}

// Close closes the database connection
func (s *SQLiteStore) Close() error {
	if s.conn != nil {
		return s.conn.Close()
	}
	return nil
}

// encodeEmbedding stores float32 values little-endian without a length prefix
func encodeEmbedding(vec []float32) []byte {
	b := make([]byte, len(vec)*4)
	for i, v := range vec {
		binary.LittleEndian.PutUint32(b[i*4:], math.Float32bits(v))
	}
	return b
}

func decodeEmbedding(b []byte) []float32 {
	n := len(b) / 4
	vec := make([]float32, n)
	for i := 0; i < n; i++ {
		vec[i] = math.Float32frombits(binary.LittleEndian.Uint32(b[i*4:]))
	}
	return vec
}

// CosineSimilarity calculates cosine similarity between two vectors.
// Mismatched dimensions and zero vectors score 0.
func CosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0.0
	}

	var dot, normA, normB float64
	for i := range a {
		va, vb := float64(a[i]), float64(b[i])
		dot += va * vb
		normA += va * va
		normB += vb * vb
	}

	if normA == 0 || normB == 0 {
		return 0.0
	}

	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
