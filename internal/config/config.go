// ABOUTME: Centralized configuration for the sqlrag CLI and MCP server
// ABOUTME: Loads from environment variables with validation and defaults
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"
)

var (
	// ErrMissingAPIKey is returned when the generation API key is not set
	ErrMissingAPIKey = errors.New("API_KEY is not set")
	// ErrMissingHFToken is returned when the Hugging Face token is not set
	ErrMissingHFToken = errors.New("HUGGING_FACE_TOKEN is not set")
)

const (
	DefaultDataDir        = "db"
	DefaultGenBaseURL     = "https://generativelanguage.googleapis.com/v1beta/openai/"
	DefaultGenModel       = "gemini-2.0-flash"
	DefaultHFBaseURL      = "https://api-inference.huggingface.co"
	DefaultEmbeddingModel = "sentence-transformers/all-MiniLM-L6-v2"
	DefaultCollection     = "test-vector"
)

// Config holds all configuration for sqlrag
type Config struct {
	// Storage
	DataDir       string
	DBPath        string
	HistoryPath   string
	VectorBackend string
	Collection    string

	// Generation
	APIKey     string
	GenBaseURL string
	GenModel   string

	// Embeddings
	EmbeddingProvider string
	HFToken           string
	HFBaseURL         string
	EmbeddingModel    string
	OpenAIKey         string

	// Remote call behaviour
	Timeout    time.Duration
	MaxRetries int
	RetryDelay time.Duration

	// Logging
	LogLevel  string
	LogFormat string
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	dataDir := getEnv("DATA_DIR", DefaultDataDir)

	cfg := &Config{
		DataDir:           dataDir,
		DBPath:            getEnv("DB_PATH", filepath.Join(dataDir, "test.sqlite3")),
		HistoryPath:       getEnv("HISTORY_PATH", filepath.Join(dataDir, "history.sqlite3")),
		VectorBackend:     getEnv("VECTOR_BACKEND", "sqlite"),
		Collection:        getEnv("COLLECTION", DefaultCollection),
		APIKey:            os.Getenv("API_KEY"),
		GenBaseURL:        getEnv("GEN_BASE_URL", DefaultGenBaseURL),
		GenModel:          getEnv("GEN_MODEL", DefaultGenModel),
		EmbeddingProvider: getEnv("EMBEDDING_PROVIDER", "huggingface"),
		HFToken:           os.Getenv("HUGGING_FACE_TOKEN"),
		HFBaseURL:         getEnv("HF_BASE_URL", DefaultHFBaseURL),
		EmbeddingModel:    getEnv("EMBEDDING_MODEL", DefaultEmbeddingModel),
		OpenAIKey:         os.Getenv("OPENAI_API_KEY"),
		Timeout:           getEnvDuration("REQUEST_TIMEOUT", 60*time.Second),
		MaxRetries:        getEnvInt("MAX_RETRIES", 0),
		RetryDelay:        getEnvDuration("RETRY_DELAY", 2*time.Second),
		LogLevel:          getEnv("LOG_LEVEL", "info"),
		LogFormat:         getEnv("LOG_FORMAT", "console"),
	}

	return cfg, cfg.Validate()
}

func (c *Config) Validate() error {
	switch c.VectorBackend {
	case "sqlite", "chromem":
	default:
		return fmt.Errorf("VECTOR_BACKEND must be sqlite or chromem, got %q", c.VectorBackend)
	}
	switch c.EmbeddingProvider {
	case "huggingface", "openai":
	default:
		return fmt.Errorf("EMBEDDING_PROVIDER must be huggingface or openai, got %q", c.EmbeddingProvider)
	}
	if c.MaxRetries < 0 || c.MaxRetries > 10 {
		return fmt.Errorf("MAX_RETRIES must be 0-10, got %d", c.MaxRetries)
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("REQUEST_TIMEOUT must be positive, got %v", c.Timeout)
	}
	if c.Collection == "" {
		return fmt.Errorf("COLLECTION must not be empty")
	}
	return nil
}

// RequireGeneration checks the credentials needed to call the language model
func (c *Config) RequireGeneration() error {
	if c.APIKey == "" {
		return ErrMissingAPIKey
	}
	return nil
}

// RequireEmbedding checks the credentials needed by the selected embedding provider
func (c *Config) RequireEmbedding() error {
	switch c.EmbeddingProvider {
	case "openai":
		if c.OpenAIKey == "" {
			return errors.New("OPENAI_API_KEY is not set")
		}
	default:
		if c.HFToken == "" {
			return ErrMissingHFToken
		}
	}
	return nil
}

// VectorPath returns the on-disk location of the vector index for the configured backend
func (c *Config) VectorPath() string {
	if c.VectorBackend == "chromem" {
		return filepath.Join(c.DataDir, "chroma")
	}
	return filepath.Join(c.DataDir, "vectors.sqlite3")
}

// Helper functions
func getEnv(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return defaultVal
}

func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return defaultVal
}
