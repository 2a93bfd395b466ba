package mcp

import (
	"context"
	"strings"

	"github.com/custodia-labs/ragchat/internal/core/domain"
	"github.com/custodia-labs/ragchat/internal/core/ports/driving"
)

// mockRetriever is a mock implementation of driving.Retriever.
type mockRetriever struct {
	passages []domain.RetrievedPassage
	err      error

	gotQuery   string
	gotDocName string
	gotK       int
}

func (m *mockRetriever) Retrieve(ctx context.Context, query, docName string, k int) (string, error) {
	passages, err := m.Search(ctx, query, docName, k)
	if err != nil {
		return "", err
	}
	texts := make([]string, len(passages))
	for i, p := range passages {
		texts[i] = p.Text
	}
	return strings.Join(texts, "\n\n"), nil
}

func (m *mockRetriever) Search(_ context.Context, query, docName string, k int) ([]domain.RetrievedPassage, error) {
	m.gotQuery, m.gotDocName, m.gotK = query, docName, k
	return m.passages, m.err
}

// mockIndexService is a mock implementation of driving.IndexService.
type mockIndexService struct {
	manifests []domain.IndexManifest
	files     []string
	err       error
}

func (m *mockIndexService) Build(_ context.Context, _ driving.BuildRequest) (*domain.IndexManifest, error) {
	return nil, m.err
}

func (m *mockIndexService) Watch(_ context.Context, _ driving.BuildRequest, _ func(*domain.IndexManifest, error)) error {
	return m.err
}

func (m *mockIndexService) List(_ context.Context) ([]domain.IndexManifest, error) {
	return m.manifests, m.err
}

func (m *mockIndexService) Remove(_ context.Context, _ string) error {
	return m.err
}

func (m *mockIndexService) AddDocuments(_ context.Context, _ string, paths []string) ([]string, error) {
	return paths, m.err
}

func (m *mockIndexService) Files(_ context.Context, _ string) ([]string, error) {
	return m.files, m.err
}

func (m *mockIndexService) CorpusDir(docName string) string {
	return "/data/corpus/" + docName
}

// mockSettingsService is a mock implementation of driving.SettingsService.
type mockSettingsService struct {
	settings domain.AppSettings
	err      error
}

func (m *mockSettingsService) Get() (*domain.AppSettings, error) {
	if m.err != nil {
		return nil, m.err
	}
	s := m.settings
	return &s, nil
}

func (m *mockSettingsService) Save(_ *domain.AppSettings) error           { return nil }
func (m *mockSettingsService) SetModel(_ string) error                    { return nil }
func (m *mockSettingsService) SetModelParams(_ domain.ModelParams) error  { return nil }
func (m *mockSettingsService) SetRetrieval(_ bool, _ string, _ int) error { return nil }
func (m *mockSettingsService) Validate() error                            { return nil }
func (m *mockSettingsService) GetDefaults() domain.AppSettings            { return m.settings }
func (m *mockSettingsService) ValidateEmbeddingConfig() error             { return nil }
func (m *mockSettingsService) ValidateLLMConfig() error                   { return nil }
func (m *mockSettingsService) SetLLMProvider(_ domain.AIProvider, _, _ string) error {
	return nil
}

func (m *mockSettingsService) SetEmbeddingProvider(_ domain.AIProvider, _, _ string) error {
	return nil
}

var (
	_ driving.Retriever       = (*mockRetriever)(nil)
	_ driving.IndexService    = (*mockIndexService)(nil)
	_ driving.SettingsService = (*mockSettingsService)(nil)
)
