// ABOUTME: Generation client for SQL synthesis over an OpenAI-compatible API
// ABOUTME: Defaults to gemini-2.0-flash through Gemini's OpenAI-compatible endpoint
package llm

import (
	"context"
	"errors"
	"fmt"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/harper/sqlrag/internal/config"
	"github.com/harper/sqlrag/internal/logging"
	"github.com/harper/sqlrag/internal/util"
)

// Generator produces SQL text for a question given retrieved schema context
type Generator interface {
	Generate(ctx context.Context, query, context string) (string, error)
}

// ClientConfig holds configuration for the generation client
type ClientConfig struct {
	APIKey     string
	BaseURL    string
	Model      string
	Timeout    time.Duration
	MaxRetries int
	RetryDelay time.Duration
}

// DefaultConfig returns the default client configuration
func DefaultConfig(apiKey string) *ClientConfig {
	return &ClientConfig{
		APIKey:     apiKey,
		BaseURL:    config.DefaultGenBaseURL,
		Model:      config.DefaultGenModel,
		Timeout:    60 * time.Second,
		MaxRetries: 0,
		RetryDelay: 2 * time.Second,
	}
}

// ConfigFrom maps application config onto a client config
func ConfigFrom(cfg *config.Config) *ClientConfig {
	return &ClientConfig{
		APIKey:     cfg.APIKey,
		BaseURL:    cfg.GenBaseURL,
		Model:      cfg.GenModel,
		Timeout:    cfg.Timeout,
		MaxRetries: cfg.MaxRetries,
		RetryDelay: cfg.RetryDelay,
	}
}

// Client wraps the go-openai client
type Client struct {
	client     *openai.Client
	model      string
	timeout    time.Duration
	maxRetries int
	retryDelay time.Duration
	logger     *zap.Logger
}

// NewClient creates a generation client with the given API key using default configuration
func NewClient(apiKey string, logger *zap.Logger) (*Client, error) {
	return NewClientWithConfig(DefaultConfig(apiKey), logger)
}

// NewClientWithConfig creates a generation client with custom configuration
func NewClientWithConfig(cfg *ClientConfig, logger *zap.Logger) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, config.ErrMissingAPIKey
	}
	if cfg.Model == "" {
		return nil, errors.New("generation model is required")
	}

	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}

	return &Client{
		client:     openai.NewClientWithConfig(clientCfg),
		model:      cfg.Model,
		timeout:    timeout,
		maxRetries: cfg.MaxRetries,
		retryDelay: cfg.RetryDelay,
		logger:     logging.OrNop(logger),
	}, nil
}

// Model returns the model identifier requests are sent to
func (c *Client) Model() string {
	return c.model
}

// Generate sends the filled prompt as a single user message and returns the raw completion text
func (c *Client) Generate(ctx context.Context, query, schemaContext string) (string, error) {
	prompt := BuildPrompt(query, schemaContext)
	c.logger.Debug("generating sql",
		zap.String("model", c.model),
		zap.Int("prompt_length", len(prompt)))

	var text string
	err := util.Retry(ctx, c.maxRetries, c.retryDelay, func(ctx context.Context) error {
		callCtx, cancel := context.WithTimeout(ctx, c.timeout)
		defer cancel()

		resp, err := c.client.CreateChatCompletion(callCtx, openai.ChatCompletionRequest{
			Model: c.model,
			Messages: []openai.ChatCompletionMessage{
				{
					Role:    openai.ChatMessageRoleUser,
					Content: prompt,
				},
			},
		})
		if err != nil {
			return fmt.Errorf("create chat completion: %w", err)
		}
		if len(resp.Choices) == 0 {
			return errors.New("no completion choices returned")
		}

		text = resp.Choices[0].Message.Content
		return nil
	})
	if err != nil {
		return "", err
	}

	c.logger.Debug("sql generated", zap.String("text", text))
	return text, nil
}
