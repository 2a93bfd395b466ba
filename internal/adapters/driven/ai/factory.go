// Package ai builds the embedding and chat model clients from settings.
package ai

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/custodia-labs/ragchat/internal/adapters/driven/embedding/hashing"
	openaiembed "github.com/custodia-labs/ragchat/internal/adapters/driven/embedding/openai"
	openaillm "github.com/custodia-labs/ragchat/internal/adapters/driven/llm/openai"
	"github.com/custodia-labs/ragchat/internal/core/domain"
	"github.com/custodia-labs/ragchat/internal/core/ports/driven"
)

const pingTimeout = 5 * time.Second

// DefaultOllamaBaseURL is Ollama's OpenAI-compatible endpoint.
const DefaultOllamaBaseURL = "http://localhost:11434/v1"

// Services holds the clients built from settings. A nil client was either
// not configured or failed to build; failures are listed in Warnings.
type Services struct {
	Embedding driven.EmbeddingService
	LLM       driven.LLMService
	Warnings  []string
}

// Close closes whichever clients were built.
func (s *Services) Close() error {
	var errs []error
	if s.Embedding != nil {
		errs = append(errs, s.Embedding.Close())
	}
	if s.LLM != nil {
		errs = append(errs, s.LLM.Close())
	}
	return errors.Join(errs...)
}

// Initialise builds both clients without contacting either provider, so
// commands that need only one of them still run when the other is broken.
func Initialise(settings *domain.AppSettings) *Services {
	s := &Services{}
	if emb, err := NewEmbedding(&settings.Embedding); err != nil {
		s.Warnings = append(s.Warnings, err.Error())
	} else {
		s.Embedding = emb
	}
	if llm, err := NewLLM(&settings.LLM); err != nil {
		s.Warnings = append(s.Warnings, err.Error())
	} else {
		s.LLM = llm
	}
	return s
}

// NewEmbedding returns the embedder for settings, or nil when the provider is not configured.
func NewEmbedding(settings *domain.EmbeddingSettings) (driven.EmbeddingService, error) {
	if settings == nil || !settings.IsConfigured() {
		return nil, nil
	}
	switch settings.Provider {
	case domain.AIProviderLocal:
		svc, err := hashing.NewEmbeddingService(settings.Model)
		if err != nil {
			return nil, err
		}
		return svc, nil
	case domain.AIProviderOllama, domain.AIProviderOpenAI:
		svc, err := openaiembed.NewEmbeddingService(openaiembed.Config{
			APIKey:     settings.APIKey,
			BaseURL:    baseURL(settings.Provider, settings.BaseURL),
			Model:      settings.Model,
			Dimensions: domain.EmbeddingDimensions()[settings.Model],
		})
		if err != nil {
			return nil, err
		}
		return svc, nil
	}
	return nil, fmt.Errorf("unsupported embedding provider: %s", settings.Provider)
}

// NewLLM returns the chat client for settings, or nil when the provider is not configured.
func NewLLM(settings *domain.LLMSettings) (driven.LLMService, error) {
	if settings == nil || !settings.IsConfigured() {
		return nil, nil
	}
	switch settings.Provider {
	case domain.AIProviderOllama, domain.AIProviderOpenAI:
		svc, err := openaillm.NewLLMService(openaillm.LLMConfig{
			APIKey:  settings.APIKey,
			BaseURL: baseURL(settings.Provider, settings.BaseURL),
			Model:   settings.Model,
		})
		if err != nil {
			return nil, err
		}
		return svc, nil
	}
	return nil, fmt.Errorf("unsupported LLM provider: %s", settings.Provider)
}

// baseURL fills in the Ollama endpoint. OpenAI keeps the client default.
func baseURL(provider domain.AIProvider, configured string) string {
	if configured == "" && provider == domain.AIProviderOllama {
		return DefaultOllamaBaseURL
	}
	return configured
}

type pinger interface {
	Ping(ctx context.Context) error
	Close() error
}

// ping checks svc with a short timeout and closes it.
func ping(svc pinger) error {
	defer svc.Close() //nolint:errcheck

	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()
	return svc.Ping(ctx)
}
