// ABOUTME: Vector store interface shared by the SQLite and chromem backends
// ABOUTME: Stores (id, embedding, document) triples and ranks them by cosine similarity
package vectorstore

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/harper/sqlrag/internal/config"
	"github.com/harper/sqlrag/internal/models"
)

var (
	// ErrLengthMismatch is returned when ids and texts differ in length
	ErrLengthMismatch = errors.New("ids and texts must have the same length")
	// ErrEmptyCollection is returned when a read finds nothing to retrieve
	ErrEmptyCollection = errors.New("collection is empty")
)

// Store is a persistent collection of embedded documents
type Store interface {
	// Add inserts entries. Entries whose ID already exists are left unchanged.
	Add(ctx context.Context, entries []models.VectorEntry) error
	// Query returns up to n entries ordered by similarity to embedding
	Query(ctx context.Context, embedding []float32, n int) ([]models.VectorMatch, error)
	Count(ctx context.Context) (int, error)
	// Reset removes every entry from the collection
	Reset(ctx context.Context) error
	Close() error
}

// Lister is implemented by stores that can enumerate their entries
type Lister interface {
	Entries(ctx context.Context) ([]models.VectorEntry, error)
}

// OpenFromConfig opens the backend selected by cfg.VectorBackend
func OpenFromConfig(cfg *config.Config, logger *zap.Logger) (Store, error) {
	switch cfg.VectorBackend {
	case "sqlite":
		return OpenSQLite(cfg.VectorPath(), cfg.Collection, logger)
	case "chromem":
		return OpenChromem(cfg.VectorPath(), cfg.Collection, logger)
	default:
		return nil, fmt.Errorf("unknown vector backend %q", cfg.VectorBackend)
	}
}
