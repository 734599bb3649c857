// ABOUTME: Collection accessor pairing a vector store with an embedder
// ABOUTME: Write embeds texts one at a time; Read returns the best matching document
package vectorstore

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/harper/sqlrag/internal/embedding"
	"github.com/harper/sqlrag/internal/logging"
	"github.com/harper/sqlrag/internal/models"
)

// ReadResults is the number of documents Read retrieves
const ReadResults = 1

// Collection embeds documents on write and queries on read
type Collection struct {
	store    Store
	embedder embedding.Embedder
	logger   *zap.Logger
}

// NewCollection creates a Collection
func NewCollection(store Store, embedder embedding.Embedder, logger *zap.Logger) *Collection {
	return &Collection{
		store:    store,
		embedder: embedder,
		logger:   logging.OrNop(logger),
	}
}

// Store returns the underlying store
func (c *Collection) Store() Store {
	return c.store
}

// Write embeds each text sequentially, one remote call per item, then adds
// the id/embedding/text triples in a single store call
func (c *Collection) Write(ctx context.Context, ids, texts []string) error {
	if len(ids) != len(texts) {
		return fmt.Errorf("%w: %d ids, %d texts", ErrLengthMismatch, len(ids), len(texts))
	}

	entries := make([]models.VectorEntry, 0, len(texts))
	for i, text := range texts {
		vec, err := c.embedder.Embed(ctx, text)
		if err != nil {
			return fmt.Errorf("failed to embed %s: %w", ids[i], err)
		}
		entries = append(entries, models.VectorEntry{
			ID:        ids[i],
			Document:  text,
			Embedding: vec,
		})
	}

	if err := c.store.Add(ctx, entries); err != nil {
		return fmt.Errorf("failed to store embeddings: %w", err)
	}

	c.logger.Info("stored documents", zap.Strings("ids", ids))
	return nil
}

// Search embeds query and returns up to n matches
func (c *Collection) Search(ctx context.Context, query string, n int) ([]models.VectorMatch, error) {
	vec, err := c.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}

	matches, err := c.store.Query(ctx, vec, n)
	if err != nil {
		return nil, fmt.Errorf("failed to query vector store: %w", err)
	}
	return matches, nil
}

// Read returns the documents of the top match for query
func (c *Collection) Read(ctx context.Context, query string) ([]string, error) {
	matches, err := c.Search(ctx, query, ReadResults)
	if err != nil {
		return nil, err
	}
	if len(matches) == 0 {
		return nil, ErrEmptyCollection
	}

	docs := make([]string, len(matches))
	for i, m := range matches {
		docs[i] = m.Document
		c.logger.Debug("retrieved document",
			zap.String("id", m.ID),
			zap.Float64("similarity", m.Similarity))
	}
	return docs, nil
}
