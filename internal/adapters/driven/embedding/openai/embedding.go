// Package openai provides an embedding service adapter for the OpenAI API
// and OpenAI-compatible endpoints such as Ollama.
package openai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/sashabaranov/go-openai"
	"golang.org/x/time/rate"

	"github.com/custodia-labs/ragchat/internal/core/domain"
	"github.com/custodia-labs/ragchat/internal/core/ports/driven"
)

// Ensure EmbeddingService implements the interface.
var _ driven.EmbeddingService = (*EmbeddingService)(nil)

// Default configuration values.
const (
	DefaultModel             = "text-embedding-3-small"
	DefaultTimeout           = 60 * time.Second
	DefaultBatchSize         = 64
	DefaultRequestsPerSecond = 5.0
)

// Model dimensions for OpenAI embedding models.
var modelDimensions = map[string]int{
	"text-embedding-3-small": 1536,
	"text-embedding-3-large": 3072,
	"text-embedding-ada-002": 1536,
	"nomic-embed-text":       768,
	"mxbai-embed-large":      1024,
	"all-minilm":             384,
}

// Config holds configuration for the OpenAI embedding service.
type Config struct {
	// APIKey is the API key. Required unless BaseURL points at a local server.
	APIKey string

	// BaseURL is the API base URL (default: https://api.openai.com/v1).
	BaseURL string

	// Model is the embedding model to use (default: text-embedding-3-small).
	Model string

	// Timeout is the per-request timeout (default: 60s).
	Timeout time.Duration

	// Dimensions overrides the known dimension for the model.
	// Zero with an unknown model means it is learned from the first response.
	Dimensions int

	// BatchSize caps the number of inputs sent per request (default: 64).
	BatchSize int

	// RequestsPerSecond throttles outgoing requests (default: 5).
	RequestsPerSecond float64
}

// EmbeddingService generates embeddings using an OpenAI-compatible API.
type EmbeddingService struct {
	client    *openai.Client
	model     string
	batchSize int
	limiter   *rate.Limiter

	mu         sync.RWMutex
	dimensions int
}

// NewEmbeddingService creates a new OpenAI embedding service.
func NewEmbeddingService(cfg Config) (*EmbeddingService, error) {
	if cfg.APIKey == "" && cfg.BaseURL == "" {
		return nil, fmt.Errorf("openai: API key is required")
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = DefaultBatchSize
	}
	if cfg.RequestsPerSecond <= 0 {
		cfg.RequestsPerSecond = DefaultRequestsPerSecond
	}

	clientConfig := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientConfig.BaseURL = cfg.BaseURL
	}
	clientConfig.HTTPClient = &http.Client{Timeout: cfg.Timeout}

	dimensions := cfg.Dimensions
	if dimensions == 0 {
		dimensions = modelDimensions[cfg.Model]
	}

	return &EmbeddingService{
		client:     openai.NewClientWithConfig(clientConfig),
		model:      cfg.Model,
		batchSize:  cfg.BatchSize,
		limiter:    rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), 1),
		dimensions: dimensions,
	}, nil
}

// Embed generates a vector embedding for the given text.
func (s *EmbeddingService) Embed(ctx context.Context, text string) ([]float32, error) {
	embeddings, err := s.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	if len(embeddings) == 0 {
		return nil, fmt.Errorf("%w: openai: no embedding returned", domain.ErrUpstream)
	}
	return embeddings[0], nil
}

// EmbedBatch generates embeddings for texts, sending at most BatchSize
// inputs per request. Output order follows input order.
func (s *EmbeddingService) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return [][]float32{}, nil
	}

	results := make([][]float32, len(texts))

	for start := 0; start < len(texts); start += s.batchSize {
		end := start + s.batchSize
		if end > len(texts) {
			end = len(texts)
		}

		if err := s.limiter.Wait(ctx); err != nil {
			return nil, err
		}

		resp, err := s.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
			Input: texts[start:end],
			Model: openai.EmbeddingModel(s.model),
		})
		if err != nil {
			return nil, mapError(err)
		}
		if len(resp.Data) != end-start {
			return nil, fmt.Errorf("%w: openai: got %d embeddings for %d inputs",
				domain.ErrUpstream, len(resp.Data), end-start)
		}

		for j, data := range resp.Data {
			pos := data.Index
			if pos < 0 || pos >= end-start {
				pos = j
			}
			if err := s.checkDimensions(len(data.Embedding)); err != nil {
				return nil, err
			}
			results[start+pos] = data.Embedding
		}
	}

	return results, nil
}

// checkDimensions records the dimension on first use and rejects vectors
// that disagree with it afterwards.
func (s *EmbeddingService) checkDimensions(n int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.dimensions == 0 {
		s.dimensions = n
		return nil
	}
	if n != s.dimensions {
		return fmt.Errorf("%w: openai: model %s returned %d dimensions, expected %d",
			domain.ErrConfiguration, s.model, n, s.dimensions)
	}
	return nil
}

// Dimensions returns the embedding vector size.
func (s *EmbeddingService) Dimensions() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.dimensions
}

// ModelName returns the name of the embedding model being used.
func (s *EmbeddingService) ModelName() string {
	return s.model
}

// Ping validates the service is reachable by listing models.
// This is a lightweight check that validates the API key without running inference.
func (s *EmbeddingService) Ping(ctx context.Context) error {
	if _, err := s.client.ListModels(ctx); err != nil {
		return fmt.Errorf("openai: ping failed: %w", mapError(err))
	}
	return nil
}

// Close releases resources.
func (s *EmbeddingService) Close() error {
	// HTTP client doesn't need explicit cleanup
	return nil
}

// mapError classifies API failures. Authentication and unknown-model
// responses are configuration problems; everything else is upstream.
func mapError(err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}

	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.HTTPStatusCode {
		case http.StatusUnauthorized, http.StatusForbidden, http.StatusNotFound:
			return fmt.Errorf("%w: openai: %s", domain.ErrConfiguration, apiErr.Message)
		}
		return fmt.Errorf("%w: openai: %s", domain.ErrUpstream, apiErr.Message)
	}

	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		switch reqErr.HTTPStatusCode {
		case http.StatusUnauthorized, http.StatusForbidden, http.StatusNotFound:
			return fmt.Errorf("%w: openai: %w", domain.ErrConfiguration, err)
		}
	}

	return fmt.Errorf("%w: openai: %w", domain.ErrUpstream, err)
}
