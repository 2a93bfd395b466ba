package driven

import "github.com/custodia-labs/ragchat/internal/core/domain"

// AIConfigValidator checks candidate provider settings before they are saved.
// Settings that are not configured pass.
type AIConfigValidator interface {
	// ValidateEmbedding builds an embedder from config and pings it.
	ValidateEmbedding(config *domain.EmbeddingSettings) error

	// ValidateLLM builds a chat client from config and pings it.
	ValidateLLM(config *domain.LLMSettings) error
}
