// ABOUTME: OpenAI embeddings provider
// ABOUTME: Uses text-embedding-3-small through go-openai
package embedding

import (
	"context"
	"errors"
	"fmt"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/harper/sqlrag/internal/logging"
	"github.com/harper/sqlrag/internal/util"
)

// DefaultOpenAIModel is the default model for OpenAI embeddings
const DefaultOpenAIModel = openai.SmallEmbedding3

// OpenAIConfig configures the OpenAI embeddings provider
type OpenAIConfig struct {
	APIKey     string
	BaseURL    string
	Model      openai.EmbeddingModel
	Timeout    time.Duration
	MaxRetries int
	RetryDelay time.Duration
}

// OpenAI generates embeddings with the OpenAI API
type OpenAI struct {
	client     *openai.Client
	model      openai.EmbeddingModel
	timeout    time.Duration
	maxRetries int
	retryDelay time.Duration
	logger     *zap.Logger
}

// NewOpenAI creates an OpenAI embeddings provider
func NewOpenAI(cfg OpenAIConfig, logger *zap.Logger) (*OpenAI, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("OpenAI API key is required")
	}

	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}

	model := cfg.Model
	if model == "" {
		model = DefaultOpenAIModel
	}

	return &OpenAI{
		client:     openai.NewClientWithConfig(clientCfg),
		model:      model,
		timeout:    defaultTimeout(cfg.Timeout),
		maxRetries: cfg.MaxRetries,
		retryDelay: cfg.RetryDelay,
		logger:     logging.OrNop(logger),
	}, nil
}

// Embed returns the embedding of text
func (o *OpenAI) Embed(ctx context.Context, text string) ([]float32, error) {
	var vector []float32

	err := util.Retry(ctx, o.maxRetries, o.retryDelay, func(ctx context.Context) error {
		callCtx, cancel := context.WithTimeout(ctx, o.timeout)
		defer cancel()

		resp, err := o.client.CreateEmbeddings(callCtx, openai.EmbeddingRequestStrings{
			Input: []string{text},
			Model: o.model,
		})
		if err != nil {
			return fmt.Errorf("create embeddings: %w", err)
		}
		if len(resp.Data) == 0 {
			return errors.New("no embeddings returned")
		}

		vector = resp.Data[0].Embedding
		return nil
	})
	if err != nil {
		return nil, err
	}

	o.logger.Debug("embedding generated", zap.String("model", string(o.model)), zap.Int("vector_dim", len(vector)))
	return vector, nil
}
