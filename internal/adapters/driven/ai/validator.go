package ai

import (
	"fmt"

	"github.com/custodia-labs/ragchat/internal/core/domain"
	"github.com/custodia-labs/ragchat/internal/core/ports/driven"
)

var _ driven.AIConfigValidator = (*ConfigValidator)(nil)

// ConfigValidator builds a throwaway client from candidate settings and pings it.
// Unconfigured settings pass; there is nothing to check.
type ConfigValidator struct{}

// NewConfigValidator returns a validator.
func NewConfigValidator() *ConfigValidator {
	return &ConfigValidator{}
}

// ValidateEmbedding checks an embedding configuration. Local models only
// need a well-formed name.
func (v *ConfigValidator) ValidateEmbedding(config *domain.EmbeddingSettings) error {
	svc, err := NewEmbedding(config)
	if err != nil {
		return fmt.Errorf("%w: %w", domain.ErrEmbeddingUnavailable, err)
	}
	if svc == nil {
		return nil
	}
	if err := ping(svc); err != nil {
		return fmt.Errorf("%w: %s unreachable: %w", domain.ErrEmbeddingUnavailable, config.Provider, err)
	}
	return nil
}

// ValidateLLM checks a chat model configuration. The local provider has no
// chat model.
func (v *ConfigValidator) ValidateLLM(config *domain.LLMSettings) error {
	if config != nil && config.Provider == domain.AIProviderLocal {
		return fmt.Errorf("%w: the local provider only supports embeddings", domain.ErrConfiguration)
	}
	svc, err := NewLLM(config)
	if err != nil {
		return fmt.Errorf("%w: %w", domain.ErrLLMUnavailable, err)
	}
	if svc == nil {
		return nil
	}
	if err := ping(svc); err != nil {
		return fmt.Errorf("%w: %s unreachable: %w", domain.ErrLLMUnavailable, config.Provider, err)
	}
	return nil
}
