// ABOUTME: chromem-go backed vector store, an embeddable persistent vector database
// ABOUTME: Mirrors a Chroma persistent client: one directory, one named collection
package vectorstore

import (
	"context"
	"errors"
	"fmt"
	"math"

	chromem "github.com/philippgille/chromem-go"
	"go.uber.org/zap"

	"github.com/harper/sqlrag/internal/logging"
	"github.com/harper/sqlrag/internal/models"
)

// errEmbeddingRequired is returned if chromem is ever asked to embed on its own.
// Embeddings are always computed by the caller.
var errEmbeddingRequired = errors.New("chromem store requires precomputed embeddings")

func noEmbed(ctx context.Context, text string) ([]float32, error) {
	return nil, errEmbeddingRequired
}

// ChromemStore keeps one collection in a chromem-go database
type ChromemStore struct {
	db         *chromem.DB
	name       string
	collection *chromem.Collection
	logger     *zap.Logger
}

// OpenChromem opens or creates a persistent chromem database rooted at dir
func OpenChromem(dir, collection string, logger *zap.Logger) (*ChromemStore, error) {
	db, err := chromem.NewPersistentDB(dir, false)
	if err != nil {
		return nil, fmt.Errorf("failed to open chromem database: %w", err)
	}
	return newChromemStore(db, collection, logger)
}

// OpenChromemInMemory creates a non-persistent chromem store (for testing)
func OpenChromemInMemory(collection string) (*ChromemStore, error) {
	return newChromemStore(chromem.NewDB(), collection, nil)
}

func newChromemStore(db *chromem.DB, name string, logger *zap.Logger) (*ChromemStore, error) {
	if name == "" {
		return nil, fmt.Errorf("collection name is required")
	}
	c, err := db.GetOrCreateCollection(name, nil, noEmbed)
	if err != nil {
		return nil, fmt.Errorf("failed to open collection %s: %w", name, err)
	}
	return &ChromemStore{
		db:         db,
		name:       name,
		collection: c,
		logger:     logging.OrNop(logger),
	}, nil
}

// Add writes entries whose IDs are not yet in the collection
func (s *ChromemStore) Add(ctx context.Context, entries []models.VectorEntry) error {
	ids := make([]string, 0, len(entries))
	embeddings := make([][]float32, 0, len(entries))
	contents := make([]string, 0, len(entries))

	for _, e := range entries {
		if e.ID == "" {
			return fmt.Errorf("entry id must not be empty")
		}
		if _, err := s.collection.GetByID(ctx, e.ID); err == nil {
			s.logger.Warn("vector entry already exists, skipping", zap.String("id", e.ID))
			continue
		}
		ids = append(ids, e.ID)
		embeddings = append(embeddings, e.Embedding)
		contents = append(contents, e.Document)
	}

	if len(ids) == 0 {
		return nil
	}
	if err := s.collection.Add(ctx, ids, embeddings, nil, contents); err != nil {
		return fmt.Errorf("failed to add documents: %w", err)
	}

	s.logger.Debug("stored vectors", zap.String("collection", s.name), zap.Int("added", len(ids)))
	return nil
}

// Query returns up to n nearest documents
func (s *ChromemStore) Query(ctx context.Context, embedding []float32, n int) ([]models.VectorMatch, error) {
	if n <= 0 {
		return nil, nil
	}
	// chromem rejects nResults larger than the collection
	if count := s.collection.Count(); n > count {
		n = count
	}
	if n == 0 {
		return nil, nil
	}

	results, err := s.collection.QueryEmbedding(ctx, embedding, n, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to query collection: %w", err)
	}

	matches := make([]models.VectorMatch, len(results))
	for i, r := range results {
		similarity := float64(r.Similarity)
		// a zero-length vector on either side has no direction
		if math.IsNaN(similarity) {
			similarity = 0
		}
		matches[i] = models.VectorMatch{
			ID:         r.ID,
			Document:   r.Content,
			Similarity: similarity,
		}
	}
	return matches, nil
}

// Count returns the number of documents in the collection
func (s *ChromemStore) Count(ctx context.Context) (int, error) {
	return s.collection.Count(), nil
}

// Reset drops and recreates the collection
func (s *ChromemStore) Reset(ctx context.Context) error {
	if err := s.db.DeleteCollection(s.name); err != nil {
		return fmt.Errorf("failed to delete collection %s: %w", s.name, err)
	}
	c, err := s.db.GetOrCreateCollection(s.name, nil, noEmbed)
	if err != nil {
		return fmt.Errorf("failed to recreate collection %s: %w", s.name, err)
	}
	s.collection = c
	return nil
}

// Close is a no-op; chromem persists on every write
func (s *ChromemStore) Close() error {
	return nil
}
