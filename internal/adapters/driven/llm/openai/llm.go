// Package openai provides an LLM service adapter for the OpenAI chat API and
// OpenAI-compatible servers such as Ollama.
package openai

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"

	"github.com/custodia-labs/ragchat/internal/core/domain"
	"github.com/custodia-labs/ragchat/internal/core/ports/driven"
)

// Ensure LLMService implements the interface.
var _ driven.LLMService = (*LLMService)(nil)

// Default configuration values.
const (
	DefaultLLMModel   = domain.DefaultChatModel
	DefaultLLMTimeout = 120 * time.Second
)

// LLMConfig holds configuration for the OpenAI LLM service.
type LLMConfig struct {
	// APIKey is the API key. Required unless BaseURL points at a local server.
	APIKey string

	// BaseURL is the API base URL (default: https://api.openai.com/v1).
	// Can be changed for Azure OpenAI, Ollama or other compatible APIs.
	BaseURL string

	// Model is the default chat model (default: gpt-4-turbo-preview).
	Model string

	// Timeout bounds non-streamed requests (default: 120s). Streams are
	// bounded only by their context.
	Timeout time.Duration
}

// LLMService provides chat completions using an OpenAI-compatible API.
type LLMService struct {
	client  *openai.Client
	model   string
	timeout time.Duration
}

// NewLLMService creates a new OpenAI LLM service.
func NewLLMService(cfg LLMConfig) (*LLMService, error) {
	if cfg.APIKey == "" && cfg.BaseURL == "" {
		return nil, fmt.Errorf("openai: API key is required")
	}
	if cfg.Model == "" {
		cfg.Model = DefaultLLMModel
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultLLMTimeout
	}

	clientConfig := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientConfig.BaseURL = cfg.BaseURL
	}

	return &LLMService{
		client:  openai.NewClientWithConfig(clientConfig),
		model:   cfg.Model,
		timeout: cfg.Timeout,
	}, nil
}

// Complete returns a single completion.
func (s *LLMService) Complete(ctx context.Context, req driven.CompletionRequest) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	resp, err := s.client.CreateChatCompletion(ctx, s.buildRequest(req))
	if err != nil {
		return "", mapError(err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("%w: openai: no response choices returned", domain.ErrUpstream)
	}

	return resp.Choices[0].Message.Content, nil
}

// Stream starts a streamed completion. Cancelling ctx aborts the request
// and makes the next Recv fail.
func (s *LLMService) Stream(ctx context.Context, req driven.CompletionRequest) (driven.ChatStream, error) {
	stream, err := s.client.CreateChatCompletionStream(ctx, s.buildRequest(req))
	if err != nil {
		return nil, mapError(err)
	}
	return &chatStream{stream: stream}, nil
}

func (s *LLMService) buildRequest(req driven.CompletionRequest) openai.ChatCompletionRequest {
	model := req.Model
	if model == "" {
		model = s.model
	}

	messages := make([]openai.ChatCompletionMessage, len(req.Messages))
	for i, msg := range req.Messages {
		messages[i] = openai.ChatCompletionMessage{
			Role:    msg.Role,
			Content: msg.Content,
		}
	}

	out := openai.ChatCompletionRequest{
		Model:       model,
		Messages:    messages,
		Temperature: float32(req.Params.Temperature),
	}
	if req.Params.MaxTokens > 0 {
		out.MaxTokens = req.Params.MaxTokens
	}
	return out
}

// chatStream adapts a go-openai stream to driven.ChatStream.
type chatStream struct {
	stream *openai.ChatCompletionStream
}

// Recv returns the next content delta, or io.EOF when the model is done.
func (c *chatStream) Recv() (string, error) {
	resp, err := c.stream.Recv()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return "", io.EOF
		}
		return "", mapError(err)
	}
	if len(resp.Choices) == 0 {
		return "", nil
	}
	return resp.Choices[0].Delta.Content, nil
}

func (c *chatStream) Close() error {
	return c.stream.Close()
}

// ListModels returns every model ID the provider exposes, sorted.
func (s *LLMService) ListModels(ctx context.Context) ([]string, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	list, err := s.client.ListModels(ctx)
	if err != nil {
		return nil, mapError(err)
	}

	ids := make([]string, 0, len(list.Models))
	for _, m := range list.Models {
		if id := strings.TrimSpace(m.ID); id != "" {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return ids, nil
}

// ModelName returns the name of the default chat model.
func (s *LLMService) ModelName() string {
	return s.model
}

// Ping validates the service is reachable by listing models.
// This is a lightweight check that validates the API key without running inference.
func (s *LLMService) Ping(ctx context.Context) error {
	if _, err := s.client.ListModels(ctx); err != nil {
		return fmt.Errorf("openai: ping failed: %w", mapError(err))
	}
	return nil
}

// Close releases resources.
func (s *LLMService) Close() error {
	// HTTP client doesn't need explicit cleanup
	return nil
}

// mapError classifies API failures. Authentication and unknown-model
// responses are configuration problems; everything else is upstream.
// Context errors pass through unchanged so callers can tell a stop from a failure.
func mapError(err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}

	status := 0
	msg := err.Error()

	var apiErr *openai.APIError
	var reqErr *openai.RequestError
	switch {
	case errors.As(err, &apiErr):
		status = apiErr.HTTPStatusCode
		msg = apiErr.Message
	case errors.As(err, &reqErr):
		status = reqErr.HTTPStatusCode
	}

	switch status {
	case http.StatusUnauthorized, http.StatusForbidden, http.StatusNotFound:
		return fmt.Errorf("%w: openai: %s", domain.ErrConfiguration, msg)
	}
	return fmt.Errorf("%w: openai: %s", domain.ErrUpstream, msg)
}
