package cli

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/ragchat/internal/core/domain"
)

func TestSettingsCmd_NoService(t *testing.T) {
	defer resetCommandFlags(rootCmd)
	SetServices(nil)

	_, err := execute(t, nil, "settings")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "settings service not configured")
}

func TestSettingsShow_Defaults(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()

	out, err := execute(t, nil, "settings", "show")
	require.NoError(t, err)

	assert.Contains(t, out, "[LLM]")
	assert.Contains(t, out, "Model: "+domain.DefaultChatModel)
	assert.Contains(t, out, "Temperature: 0.20")
	assert.Contains(t, out, "Max Tokens: 3000")
	assert.Contains(t, out, "[Embedding]")
	assert.Contains(t, out, "Local hashing embedder (offline)")
	assert.Contains(t, out, "[Retrieval]")
	assert.Contains(t, out, "Index: reflex")
	assert.Contains(t, out, "Passages (k): 5")
}

func TestSettingsModel(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()

	out, err := execute(t, nil, "settings", "model", " gpt-4o ")
	require.NoError(t, err)
	assert.Contains(t, out, "Chat model set to: gpt-4o")

	s, err := ts.Settings.Get()
	require.NoError(t, err)
	assert.Equal(t, "gpt-4o", s.LLM.Model)
}

func TestSettingsModel_Empty(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()

	_, err := execute(t, nil, "settings", "model", " ")
	assert.ErrorIs(t, err, domain.ErrEmptyInput)
}

func TestSettingsParams_KeepsUnsetValues(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()

	out, err := execute(t, nil, "settings", "params", "--temperature", "0.7")
	require.NoError(t, err)
	assert.Contains(t, out, "Temperature: 0.70, Max Tokens: 3000")

	s, err := ts.Settings.Get()
	require.NoError(t, err)
	assert.InDelta(t, 0.7, s.LLM.Params.Temperature, 1e-9)
	assert.Equal(t, domain.DefaultMaxTokens, s.LLM.Params.MaxTokens)
}

func TestSettingsParams_Invalid(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{name: "temperature above one", args: []string{"--temperature", "1.5"}},
		{name: "negative temperature", args: []string{"--temperature=-0.1"}},
		{name: "zero max tokens", args: []string{"--max-tokens", "0"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts, cleanup := setupTestServices()
			defer cleanup()

			_, err := execute(t, nil, append([]string{"settings", "params"}, tt.args...)...)
			assert.ErrorIs(t, err, domain.ErrInvalidInput)

			s, err := ts.Settings.Get()
			require.NoError(t, err)
			assert.Equal(t, domain.DefaultModelParams(), s.LLM.Params)
		})
	}
}

func TestSettingsRetrieval(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()

	out, err := execute(t, nil, "settings", "retrieval", "--name", "handbook", "--k", "8")
	require.NoError(t, err)
	assert.Contains(t, out, "Retrieval enabled: index handbook, k=8")

	out, err = execute(t, nil, "settings", "retrieval", "--enabled=false")
	require.NoError(t, err)
	assert.Contains(t, out, "Retrieval disabled: index handbook, k=8")

	s, err := ts.Settings.Get()
	require.NoError(t, err)
	assert.False(t, s.Retrieval.Enabled)
}

func TestSettingsLLM_Interactive(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()

	out, err := execute(t, strings.NewReader("1\nllama3\n"), "settings", "llm")
	require.NoError(t, err)
	assert.Contains(t, out, "LLM provider configured: Ollama (local) (llama3)")

	s, err := ts.Settings.Get()
	require.NoError(t, err)
	assert.Equal(t, domain.AIProviderOllama, s.LLM.Provider)
	assert.Equal(t, "llama3", s.LLM.Model)
}

func TestSettingsEmbedding_Interactive(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()

	out, err := execute(t, strings.NewReader("2\n\n"), "settings", "embedding")
	require.NoError(t, err)
	assert.Contains(t, out, "Embedding provider configured: Ollama (local) (all-minilm)")

	s, err := ts.Settings.Get()
	require.NoError(t, err)
	assert.Equal(t, domain.AIProviderOllama, s.Embedding.Provider)
}
