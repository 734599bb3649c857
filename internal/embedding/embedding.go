// ABOUTME: Embedding accessor interface and provider selection
// ABOUTME: Providers forward text to a hosted model and return the vector unmodified
package embedding

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/harper/sqlrag/internal/config"
)

// Embedder turns text into an embedding vector
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// Func adapts a plain function to Embedder
type Func func(ctx context.Context, text string) ([]float32, error)

// Embed calls f
func (f Func) Embed(ctx context.Context, text string) ([]float32, error) {
	return f(ctx, text)
}

// NewFromConfig builds the embedder selected by cfg.EmbeddingProvider
func NewFromConfig(cfg *config.Config, logger *zap.Logger) (Embedder, error) {
	if err := cfg.RequireEmbedding(); err != nil {
		return nil, err
	}

	switch cfg.EmbeddingProvider {
	case "huggingface":
		return NewHuggingFace(HuggingFaceConfig{
			BaseURL:    cfg.HFBaseURL,
			Token:      cfg.HFToken,
			Model:      cfg.EmbeddingModel,
			Timeout:    cfg.Timeout,
			MaxRetries: cfg.MaxRetries,
			RetryDelay: cfg.RetryDelay,
		}, logger)
	case "openai":
		return NewOpenAI(OpenAIConfig{
			APIKey:     cfg.OpenAIKey,
			Timeout:    cfg.Timeout,
			MaxRetries: cfg.MaxRetries,
			RetryDelay: cfg.RetryDelay,
		}, logger)
	default:
		return nil, fmt.Errorf("unknown embedding provider %q", cfg.EmbeddingProvider)
	}
}

func defaultTimeout(d time.Duration) time.Duration {
	if d <= 0 {
		return 60 * time.Second
	}
	return d
}
