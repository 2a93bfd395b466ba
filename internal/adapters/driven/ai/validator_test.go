package ai

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/custodia-labs/ragchat/internal/core/domain"
)

func TestConfigValidator_Unconfigured(t *testing.T) {
	v := NewConfigValidator()

	assert.NoError(t, v.ValidateEmbedding(nil))
	assert.NoError(t, v.ValidateEmbedding(&domain.EmbeddingSettings{Provider: domain.AIProviderOpenAI}))
	assert.NoError(t, v.ValidateLLM(nil))
	assert.NoError(t, v.ValidateLLM(&domain.LLMSettings{Provider: domain.AIProviderOpenAI}))
}

func TestConfigValidator_ValidateEmbedding(t *testing.T) {
	v := NewConfigValidator()

	t.Run("local model needs no network", func(t *testing.T) {
		assert.NoError(t, v.ValidateEmbedding(&domain.EmbeddingSettings{
			Provider: domain.AIProviderLocal, Model: "hashing-128",
		}))
	})

	t.Run("malformed local model", func(t *testing.T) {
		err := v.ValidateEmbedding(&domain.EmbeddingSettings{
			Provider: domain.AIProviderLocal, Model: "not-a-hashing-model",
		})
		assert.ErrorIs(t, err, domain.ErrEmbeddingUnavailable)
		assert.ErrorIs(t, err, domain.ErrConfiguration)
	})

	t.Run("rejected key", func(t *testing.T) {
		err := v.ValidateEmbedding(&domain.EmbeddingSettings{
			Provider: domain.AIProviderOpenAI, APIKey: "k", BaseURL: modelsServer(t, http.StatusUnauthorized),
		})
		assert.ErrorIs(t, err, domain.ErrEmbeddingUnavailable)
		assert.Contains(t, err.Error(), "openai unreachable")
	})
}

func TestConfigValidator_ValidateLLM(t *testing.T) {
	v := NewConfigValidator()

	t.Run("local is rejected", func(t *testing.T) {
		err := v.ValidateLLM(&domain.LLMSettings{Provider: domain.AIProviderLocal})
		assert.ErrorIs(t, err, domain.ErrConfiguration)
	})

	t.Run("reachable endpoint", func(t *testing.T) {
		assert.NoError(t, v.ValidateLLM(&domain.LLMSettings{
			Provider: domain.AIProviderOpenAI, APIKey: "k", BaseURL: modelsServer(t, http.StatusOK),
		}))
	})

	t.Run("rejected key", func(t *testing.T) {
		err := v.ValidateLLM(&domain.LLMSettings{
			Provider: domain.AIProviderOpenAI, APIKey: "k", BaseURL: modelsServer(t, http.StatusUnauthorized),
		})
		assert.ErrorIs(t, err, domain.ErrLLMUnavailable)
		assert.ErrorIs(t, err, domain.ErrConfiguration)
	})
}
