package domain

import "fmt"

const unknownDescription = "Unknown"

// Default values used when no configuration overrides them.
const (
	DefaultChatModel      = "gpt-4-turbo-preview"
	DefaultQueryModel     = "gpt-4-turbo-preview"
	DefaultTemperature    = 0.2
	DefaultMaxTokens      = 3000
	DefaultDocName        = "reflex"
	DefaultRetrievalK     = 5
	DefaultIndexWorkers   = 4
	DefaultEmbedBatchSize = 8
	DefaultLocalEmbedding = "hashing-384"
)

// AIProvider identifies an AI service provider for embeddings or LLM.
type AIProvider string

// Available AI providers.
const (
	// AIProviderOllama is a local Ollama instance, reached via its OpenAI-compatible API.
	AIProviderOllama AIProvider = "ollama"

	// AIProviderOpenAI is OpenAI cloud API.
	AIProviderOpenAI AIProvider = "openai"

	// AIProviderLocal is the in-process hashing embedder. Embeddings only.
	AIProviderLocal AIProvider = "local"
)

// IsValid returns true if the AI provider is recognised.
func (p AIProvider) IsValid() bool {
	switch p {
	case AIProviderOllama, AIProviderOpenAI, AIProviderLocal:
		return true
	default:
		return false
	}
}

// RequiresAPIKey returns true if this provider needs an API key.
func (p AIProvider) RequiresAPIKey() bool {
	return p == AIProviderOpenAI
}

// IsLocal returns true if this provider runs locally.
func (p AIProvider) IsLocal() bool {
	return p == AIProviderOllama || p == AIProviderLocal
}

// String returns the string representation.
func (p AIProvider) String() string {
	return string(p)
}

// Description returns a human-readable description of the provider.
func (p AIProvider) Description() string {
	switch p {
	case AIProviderOllama:
		return "Ollama (local)"
	case AIProviderOpenAI:
		return "OpenAI (cloud)"
	case AIProviderLocal:
		return "Local hashing embedder (offline)"
	default:
		return unknownDescription
	}
}

// ModelParams are the generation parameters sent with every chat completion.
type ModelParams struct {
	// Temperature controls randomness, in [0, 1].
	Temperature float64

	// MaxTokens bounds the completion length. Must be positive.
	MaxTokens int
}

// NewModelParams builds validated generation parameters.
func NewModelParams(temperature float64, maxTokens int) (ModelParams, error) {
	p := ModelParams{Temperature: temperature, MaxTokens: maxTokens}
	if err := p.Validate(); err != nil {
		return ModelParams{}, err
	}
	return p, nil
}

// DefaultModelParams returns the default generation parameters.
func DefaultModelParams() ModelParams {
	return ModelParams{Temperature: DefaultTemperature, MaxTokens: DefaultMaxTokens}
}

// Validate checks the parameters are within their recognised ranges.
func (p ModelParams) Validate() error {
	if p.Temperature < 0 || p.Temperature > 1 {
		return fmt.Errorf("%w: temperature %.2f outside [0, 1]", ErrInvalidInput, p.Temperature)
	}
	if p.MaxTokens <= 0 {
		return fmt.Errorf("%w: max_tokens must be positive, got %d", ErrInvalidInput, p.MaxTokens)
	}
	return nil
}

// EmbeddingSettings holds embedding provider configuration.
type EmbeddingSettings struct {
	// Provider is the embedding service provider.
	Provider AIProvider

	// Model is the embedding model name.
	Model string

	// BaseURL is the API endpoint (for Ollama or OpenAI-compatible servers).
	BaseURL string

	// APIKey is the API key (for OpenAI).
	APIKey string
}

// IsConfigured returns true if the embedding provider is set up.
func (e EmbeddingSettings) IsConfigured() bool {
	if !e.Provider.IsValid() {
		return false
	}
	if e.Provider.RequiresAPIKey() && e.APIKey == "" {
		return false
	}
	return true
}

// LLMSettings holds LLM provider configuration.
type LLMSettings struct {
	// Provider is the LLM service provider.
	Provider AIProvider

	// Model is the chat model name.
	Model string

	// BaseURL is the API endpoint (for Ollama or OpenAI-compatible servers).
	BaseURL string

	// APIKey is the API key (for OpenAI).
	APIKey string

	// Params are the generation parameters.
	Params ModelParams
}

// IsConfigured returns true if the LLM provider is set up.
func (l LLMSettings) IsConfigured() bool {
	if l.Provider == AIProviderLocal || !l.Provider.IsValid() {
		return false
	}
	if l.Provider.RequiresAPIKey() && l.APIKey == "" {
		return false
	}
	return true
}

// RetrievalSettings controls context augmentation of chat turns.
type RetrievalSettings struct {
	// Enabled turns retrieval on for every turn.
	Enabled bool

	// DocName is the index queried for context.
	DocName string

	// K is the number of passages retrieved.
	K int

	// QueryModel is the model used by the query composer.
	QueryModel string
}

// Validate checks the retrieval settings.
func (r RetrievalSettings) Validate() error {
	if r.Enabled && r.DocName == "" {
		return fmt.Errorf("%w: retrieval enabled without a doc_name", ErrInvalidInput)
	}
	if r.K <= 0 {
		return fmt.Errorf("%w: k must be positive, got %d", ErrInvalidInput, r.K)
	}
	return nil
}

// IndexSettings controls corpus index builds.
type IndexSettings struct {
	// DocsDir overrides the corpus folder. Empty means <data>/<doc_name>-docs.
	DocsDir string

	// Workers is the embedding worker pool size.
	Workers int

	// BatchSize is the number of texts per embedding request.
	BatchSize int
}

// AppSettings holds all application settings.
type AppSettings struct {
	// Embedding holds embedding provider settings.
	Embedding EmbeddingSettings

	// LLM holds LLM provider settings.
	LLM LLMSettings

	// Retrieval holds retrieval settings.
	Retrieval RetrievalSettings

	// Index holds index build settings.
	Index IndexSettings
}

// Validate checks every section that has validation rules.
func (s AppSettings) Validate() error {
	if err := s.LLM.Params.Validate(); err != nil {
		return err
	}
	if err := s.Retrieval.Validate(); err != nil {
		return err
	}
	if s.Index.Workers <= 0 || s.Index.BatchSize <= 0 {
		return fmt.Errorf("%w: index workers and batch_size must be positive", ErrInvalidInput)
	}
	return nil
}

// DefaultAppSettings returns settings with sensible defaults.
// Embeddings default to the offline hashing model so index builds work
// without credentials; chat needs an OpenAI key or an Ollama endpoint.
func DefaultAppSettings() AppSettings {
	return AppSettings{
		Embedding: EmbeddingSettings{
			Provider: AIProviderLocal,
			Model:    DefaultLocalEmbedding,
		},
		LLM: LLMSettings{
			Provider: AIProviderOpenAI,
			Model:    DefaultChatModel,
			Params:   DefaultModelParams(),
		},
		Retrieval: RetrievalSettings{
			Enabled:    true,
			DocName:    DefaultDocName,
			K:          DefaultRetrievalK,
			QueryModel: DefaultQueryModel,
		},
		Index: IndexSettings{
			Workers:   DefaultIndexWorkers,
			BatchSize: DefaultEmbedBatchSize,
		},
	}
}

// AllEmbeddingProviders returns providers that support embeddings.
func AllEmbeddingProviders() []AIProvider {
	return []AIProvider{
		AIProviderLocal,
		AIProviderOllama,
		AIProviderOpenAI,
	}
}

// AllLLMProviders returns providers that support chat completions.
func AllLLMProviders() []AIProvider {
	return []AIProvider{
		AIProviderOllama,
		AIProviderOpenAI,
	}
}

// DefaultEmbeddingModels returns default models for each embedding provider.
func DefaultEmbeddingModels() map[AIProvider]string {
	return map[AIProvider]string{
		AIProviderLocal:  DefaultLocalEmbedding,
		AIProviderOllama: "all-minilm",
		AIProviderOpenAI: "text-embedding-3-small",
	}
}

// DefaultLLMModels returns default models for each LLM provider.
func DefaultLLMModels() map[AIProvider]string {
	return map[AIProvider]string{
		AIProviderOllama: "llama3.2",
		AIProviderOpenAI: DefaultChatModel,
	}
}

// EmbeddingDimensions returns the vector dimensions for known models.
func EmbeddingDimensions() map[string]int {
	return map[string]int{
		// Local models
		"hashing-256": 256,
		"hashing-384": 384,
		"hashing-768": 768,
		// Ollama models
		"nomic-embed-text":  768,
		"mxbai-embed-large": 1024,
		"all-minilm":        384,
		// OpenAI models
		"text-embedding-3-small": 1536,
		"text-embedding-3-large": 3072,
		"text-embedding-ada-002": 1536,
	}
}
