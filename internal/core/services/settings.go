package services

import (
	"fmt"
	"os"
	"slices"
	"strings"

	"github.com/custodia-labs/ragchat/internal/core/domain"
	"github.com/custodia-labs/ragchat/internal/core/ports/driven"
	"github.com/custodia-labs/ragchat/internal/core/ports/driving"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// EnvOpenAIAPIKey is the environment fallback for OpenAI API keys.
//
//nolint:gosec // G101: This is an environment variable name, not a credential.
const EnvOpenAIAPIKey = "OPENAI_API_KEY"

// Config keys for settings storage.
//
//nolint:gosec // G101: These are config key names, not actual credentials.
const (
	keyEmbedProvider     = "embedding.provider"
	keyEmbedModel        = "embedding.model"
	keyEmbedBaseURL      = "embedding.base_url"
	keyEmbedAPIKey       = "embedding.api_key"
	keyLLMProvider       = "llm.provider"
	keyLLMModel          = "llm.model"
	keyLLMBaseURL        = "llm.base_url"
	keyLLMAPIKey         = "llm.api_key"
	keyLLMTemperature    = "llm.temperature"
	keyLLMMaxTokens      = "llm.max_tokens"
	keyRetrievalEnabled  = "retrieval.enabled"
	keyRetrievalDocName  = "retrieval.doc_name"
	keyRetrievalK        = "retrieval.k"
	keyRetrievalQueryMod = "retrieval.query_model"
	keyIndexDocsDir      = "index.docs_dir"
	keyIndexWorkers      = "index.workers"
	keyIndexBatchSize    = "index.batch_size"
)

// SettingsService manages application settings.
type SettingsService struct {
	configStore driven.ConfigStore
	aiValidator driven.AIConfigValidator
	getenv      func(string) string
}

// NewSettingsService creates a new settings service.
func NewSettingsService(configStore driven.ConfigStore, aiValidator driven.AIConfigValidator) *SettingsService {
	return &SettingsService{
		configStore: configStore,
		aiValidator: aiValidator,
		getenv:      os.Getenv,
	}
}

// Get retrieves current application settings.
// OpenAI API keys fall back to OPENAI_API_KEY when the config has none.
func (s *SettingsService) Get() (*domain.AppSettings, error) {
	defaults := domain.DefaultAppSettings()

	settings := &domain.AppSettings{
		Embedding: domain.EmbeddingSettings{
			Provider: s.getProvider(keyEmbedProvider, defaults.Embedding.Provider),
			Model:    s.getString(keyEmbedModel, defaults.Embedding.Model),
			BaseURL:  s.configStore.GetString(keyEmbedBaseURL), // No default - empty means the provider's endpoint
			APIKey:   s.configStore.GetString(keyEmbedAPIKey),
		},
		LLM: domain.LLMSettings{
			Provider: s.getProvider(keyLLMProvider, defaults.LLM.Provider),
			Model:    s.getString(keyLLMModel, defaults.LLM.Model),
			BaseURL:  s.configStore.GetString(keyLLMBaseURL),
			APIKey:   s.configStore.GetString(keyLLMAPIKey),
			Params: domain.ModelParams{
				Temperature: s.getFloat(keyLLMTemperature, defaults.LLM.Params.Temperature),
				MaxTokens:   s.getInt(keyLLMMaxTokens, defaults.LLM.Params.MaxTokens),
			},
		},
		Retrieval: domain.RetrievalSettings{
			Enabled:    s.getBool(keyRetrievalEnabled, defaults.Retrieval.Enabled),
			DocName:    s.getString(keyRetrievalDocName, defaults.Retrieval.DocName),
			K:          s.getInt(keyRetrievalK, defaults.Retrieval.K),
			QueryModel: s.getString(keyRetrievalQueryMod, defaults.Retrieval.QueryModel),
		},
		Index: domain.IndexSettings{
			DocsDir:   s.configStore.GetString(keyIndexDocsDir),
			Workers:   s.getInt(keyIndexWorkers, defaults.Index.Workers),
			BatchSize: s.getInt(keyIndexBatchSize, defaults.Index.BatchSize),
		},
	}

	if settings.LLM.APIKey == "" && settings.LLM.Provider == domain.AIProviderOpenAI {
		settings.LLM.APIKey = s.getenv(EnvOpenAIAPIKey)
	}
	if settings.Embedding.APIKey == "" && settings.Embedding.Provider == domain.AIProviderOpenAI {
		settings.Embedding.APIKey = s.getenv(EnvOpenAIAPIKey)
	}

	return settings, nil
}

// Save persists application settings in one write. API keys that only came
// from the environment are not written to the config file.
func (s *SettingsService) Save(settings *domain.AppSettings) error {
	values := map[string]any{
		keyEmbedProvider:     settings.Embedding.Provider.String(),
		keyEmbedModel:        settings.Embedding.Model,
		keyEmbedBaseURL:      settings.Embedding.BaseURL,
		keyLLMProvider:       settings.LLM.Provider.String(),
		keyLLMModel:          settings.LLM.Model,
		keyLLMBaseURL:        settings.LLM.BaseURL,
		keyLLMTemperature:    settings.LLM.Params.Temperature,
		keyLLMMaxTokens:      settings.LLM.Params.MaxTokens,
		keyRetrievalEnabled:  settings.Retrieval.Enabled,
		keyRetrievalDocName:  settings.Retrieval.DocName,
		keyRetrievalK:        settings.Retrieval.K,
		keyRetrievalQueryMod: settings.Retrieval.QueryModel,
		keyIndexDocsDir:      settings.Index.DocsDir,
		keyIndexWorkers:      settings.Index.Workers,
		keyIndexBatchSize:    settings.Index.BatchSize,
	}
	s.addAPIKey(values, keyEmbedAPIKey, settings.Embedding.APIKey)
	s.addAPIKey(values, keyLLMAPIKey, settings.LLM.APIKey)

	if err := s.configStore.Update(values); err != nil {
		return fmt.Errorf("save settings: %w", err)
	}
	return nil
}

func (s *SettingsService) addAPIKey(values map[string]any, key, value string) {
	if value == "" {
		return
	}
	if s.configStore.GetString(key) == "" && value == s.getenv(EnvOpenAIAPIKey) {
		return
	}
	values[key] = value
}

// SetModel selects the chat model.
func (s *SettingsService) SetModel(model string) error {
	model = strings.TrimSpace(model)
	if model == "" {
		return fmt.Errorf("%w: model", domain.ErrEmptyInput)
	}
	settings, err := s.Get()
	if err != nil {
		return err
	}
	settings.LLM.Model = model
	return s.Save(settings)
}

// SetModelParams updates the generation parameters.
func (s *SettingsService) SetModelParams(params domain.ModelParams) error {
	if err := params.Validate(); err != nil {
		return err
	}
	settings, err := s.Get()
	if err != nil {
		return err
	}
	settings.LLM.Params = params
	return s.Save(settings)
}

// SetRetrieval configures context retrieval.
func (s *SettingsService) SetRetrieval(enabled bool, docName string, k int) error {
	settings, err := s.Get()
	if err != nil {
		return err
	}
	settings.Retrieval.Enabled = enabled
	if docName = strings.TrimSpace(docName); docName != "" {
		settings.Retrieval.DocName = docName
	}
	if k != 0 {
		settings.Retrieval.K = k
	}
	if err := settings.Retrieval.Validate(); err != nil {
		return err
	}
	return s.Save(settings)
}

// SetEmbeddingProvider configures the embedding provider.
func (s *SettingsService) SetEmbeddingProvider(provider domain.AIProvider, model, apiKey string) error {
	if !provider.IsValid() {
		return fmt.Errorf("%w: invalid embedding provider: %s", domain.ErrInvalidInput, provider)
	}
	if !slices.Contains(domain.AllEmbeddingProviders(), provider) {
		return fmt.Errorf("%w: provider %s does not support embeddings", domain.ErrInvalidInput, provider)
	}
	if provider.RequiresAPIKey() && apiKey == "" {
		apiKey = s.getenv(EnvOpenAIAPIKey)
	}
	if provider.RequiresAPIKey() && apiKey == "" {
		return fmt.Errorf("%w: API key required for %s", domain.ErrConfiguration, provider)
	}

	settings, err := s.Get()
	if err != nil {
		return err
	}

	if settings.Embedding.Provider != provider {
		settings.Embedding.BaseURL = ""
	}
	settings.Embedding.Provider = provider
	settings.Embedding.Model = model
	if model == "" {
		settings.Embedding.Model = domain.DefaultEmbeddingModels()[provider]
	}
	settings.Embedding.APIKey = apiKey

	return s.Save(settings)
}

// SetLLMProvider configures the LLM provider.
func (s *SettingsService) SetLLMProvider(provider domain.AIProvider, model, apiKey string) error {
	if !slices.Contains(domain.AllLLMProviders(), provider) {
		return fmt.Errorf("%w: invalid LLM provider: %s", domain.ErrInvalidInput, provider)
	}
	if provider.RequiresAPIKey() && apiKey == "" {
		apiKey = s.getenv(EnvOpenAIAPIKey)
	}
	if provider.RequiresAPIKey() && apiKey == "" {
		return fmt.Errorf("%w: API key required for %s", domain.ErrConfiguration, provider)
	}

	settings, err := s.Get()
	if err != nil {
		return err
	}

	if settings.LLM.Provider != provider {
		settings.LLM.BaseURL = ""
	}
	settings.LLM.Provider = provider
	settings.LLM.Model = model
	if model == "" {
		settings.LLM.Model = domain.DefaultLLMModels()[provider]
	}
	settings.LLM.APIKey = apiKey

	return s.Save(settings)
}

// Validate checks the stored settings and that chat has a provider.
func (s *SettingsService) Validate() error {
	settings, err := s.Get()
	if err != nil {
		return err
	}
	if err := settings.Validate(); err != nil {
		return err
	}
	if !settings.LLM.IsConfigured() {
		return fmt.Errorf("%w: chat requires an LLM provider; set %s or run 'ragchat settings llm'",
			domain.ErrConfiguration, EnvOpenAIAPIKey)
	}
	if settings.Retrieval.Enabled && !settings.Embedding.IsConfigured() {
		return fmt.Errorf("%w: retrieval requires an embedding provider", domain.ErrConfiguration)
	}
	return nil
}

// GetDefaults returns default settings.
func (s *SettingsService) GetDefaults() domain.AppSettings {
	return domain.DefaultAppSettings()
}

// ValidateEmbeddingConfig validates the current embedding configuration by pinging the provider.
func (s *SettingsService) ValidateEmbeddingConfig() error {
	if s.aiValidator == nil {
		return nil
	}
	settings, err := s.Get()
	if err != nil {
		return err
	}
	return s.aiValidator.ValidateEmbedding(&settings.Embedding)
}

// ValidateLLMConfig validates the current LLM configuration by pinging the provider.
func (s *SettingsService) ValidateLLMConfig() error {
	if s.aiValidator == nil {
		return nil
	}
	settings, err := s.Get()
	if err != nil {
		return err
	}
	return s.aiValidator.ValidateLLM(&settings.LLM)
}

// Helper methods for reading config with defaults.

func (s *SettingsService) getString(key, defaultVal string) string {
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getInt(key string, defaultVal int) int {
	val := s.configStore.GetInt(key)
	if val == 0 {
		return defaultVal
	}
	return val
}

// getFloat keeps an explicit zero, which is a valid temperature.
func (s *SettingsService) getFloat(key string, defaultVal float64) float64 {
	if _, exists := s.configStore.Get(key); !exists {
		return defaultVal
	}
	return s.configStore.GetFloat(key)
}

func (s *SettingsService) getBool(key string, defaultVal bool) bool {
	if _, exists := s.configStore.Get(key); !exists {
		return defaultVal
	}
	return s.configStore.GetBool(key)
}

func (s *SettingsService) getProvider(key string, defaultVal domain.AIProvider) domain.AIProvider {
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal
	}
	provider := domain.AIProvider(val)
	if !provider.IsValid() {
		return defaultVal
	}
	return provider
}
