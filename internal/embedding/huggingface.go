// ABOUTME: Hugging Face feature-extraction client
// ABOUTME: POSTs text with a bearer token and wait_for_model, returns the first vector of the response
package embedding

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/harper/sqlrag/internal/logging"
	"github.com/harper/sqlrag/internal/util"
)

// HuggingFaceConfig configures the feature-extraction client
type HuggingFaceConfig struct {
	BaseURL    string
	Token      string
	Model      string
	Timeout    time.Duration
	MaxRetries int
	RetryDelay time.Duration
	HTTPClient *http.Client
}

// HuggingFace calls the hosted feature-extraction pipeline
type HuggingFace struct {
	url        string
	token      string
	model      string
	http       *http.Client
	maxRetries int
	retryDelay time.Duration
	logger     *zap.Logger
}

type hfOptions struct {
	WaitForModel bool `json:"wait_for_model"`
}

type hfRequest struct {
	Inputs  []string  `json:"inputs"`
	Options hfOptions `json:"options"`
}

// NewHuggingFace creates a feature-extraction client
func NewHuggingFace(cfg HuggingFaceConfig, logger *zap.Logger) (*HuggingFace, error) {
	if strings.TrimSpace(cfg.Token) == "" {
		return nil, errors.New("hugging face token is required")
	}
	if strings.TrimSpace(cfg.Model) == "" {
		return nil, errors.New("embedding model is required")
	}
	if strings.TrimSpace(cfg.BaseURL) == "" {
		return nil, errors.New("base URL is required")
	}

	client := cfg.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: defaultTimeout(cfg.Timeout)}
	}

	return &HuggingFace{
		url:        strings.TrimRight(cfg.BaseURL, "/") + "/pipeline/feature-extraction/" + cfg.Model,
		token:      cfg.Token,
		model:      cfg.Model,
		http:       client,
		maxRetries: cfg.MaxRetries,
		retryDelay: cfg.RetryDelay,
		logger:     logging.OrNop(logger),
	}, nil
}

// Embed returns the embedding of text
func (h *HuggingFace) Embed(ctx context.Context, text string) ([]float32, error) {
	var vector []float32
	err := util.Retry(ctx, h.maxRetries, h.retryDelay, func(ctx context.Context) error {
		v, err := h.embedOnce(ctx, text)
		if err != nil {
			return err
		}
		vector = v
		return nil
	})
	if err != nil {
		return nil, err
	}
	return vector, nil
}

func (h *HuggingFace) embedOnce(ctx context.Context, text string) ([]float32, error) {
	h.logger.Debug("generating embedding",
		zap.String("model", h.model),
		zap.Int("text_length", len(text)))

	body, err := json.Marshal(hfRequest{
		Inputs:  []string{text},
		Options: hfOptions{WaitForModel: true},
	})
	if err != nil {
		return nil, fmt.Errorf("marshal embedding request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, h.url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build embedding request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+h.token)

	start := time.Now()
	resp, err := h.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request embedding: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read embedding response: %w", err)
	}
	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("embedding request failed status=%d body=%s", resp.StatusCode, strings.TrimSpace(string(raw)))
	}

	vector, err := firstVector(raw)
	if err != nil {
		return nil, err
	}

	h.logger.Debug("embedding generated",
		zap.Int("vector_dim", len(vector)),
		zap.Duration("duration", time.Since(start)))

	return vector, nil
}

// firstVector consumes the response positionally. A batch of one input
// yields [[...]]; a model that answers a single string yields [...].
func firstVector(raw []byte) ([]float32, error) {
	var batch [][]float32
	if err := json.Unmarshal(raw, &batch); err == nil {
		if len(batch) == 0 {
			return nil, errors.New("embedding response is empty")
		}
		return batch[0], nil
	}

	var single []float32
	if err := json.Unmarshal(raw, &single); err != nil {
		return nil, fmt.Errorf("decode embedding response: %w", err)
	}
	return single, nil
}
