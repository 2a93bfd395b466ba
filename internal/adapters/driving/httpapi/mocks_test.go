package httpapi

import (
	"context"
	"sync"

	"github.com/custodia-labs/ragchat/internal/core/domain"
	"github.com/custodia-labs/ragchat/internal/core/ports/driving"
)

type submission struct {
	session  string
	question string
}

// mockChatService is a mock implementation of driving.ChatService.
type mockChatService struct {
	mu         sync.Mutex
	processing map[string]bool
	stopped    []string
	models     []string
	err        error

	submitted chan submission
}

func newMockChatService() *mockChatService {
	return &mockChatService{
		processing: map[string]bool{},
		submitted:  make(chan submission, 4),
	}
}

func (m *mockChatService) Submit(_ context.Context, session, question string) (*domain.Message, error) {
	m.submitted <- submission{session: session, question: question}
	return &domain.Message{Question: question}, m.err
}

func (m *mockChatService) Begin(_ context.Context, session, question string) (driving.Turn, error) {
	if m.Processing(session) {
		return nil, domain.ErrStreamInProgress
	}
	return &mockTurn{chat: m, session: session, msg: domain.Message{Question: question}}, nil
}

// mockTurn reports its Run on the chat service's submitted channel.
type mockTurn struct {
	chat    *mockChatService
	session string
	msg     domain.Message
}

func (t *mockTurn) Message() domain.Message { return t.msg }

func (t *mockTurn) Run() (*domain.Message, error) {
	return t.chat.Submit(context.Background(), t.session, t.msg.Question)
}

func (m *mockChatService) Stop(session string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stopped = append(m.stopped, session)
	return m.processing[session]
}

func (m *mockChatService) Processing(session string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.processing[session]
}

func (m *mockChatService) Models(_ context.Context) ([]string, error) {
	return m.models, m.err
}

// mockIndexService is a mock implementation of driving.IndexService.
type mockIndexService struct {
	manifests []domain.IndexManifest
	built     *domain.IndexManifest
	err       error

	gotBuild driving.BuildRequest
}

func (m *mockIndexService) Build(_ context.Context, req driving.BuildRequest) (*domain.IndexManifest, error) {
	m.gotBuild = req
	return m.built, m.err
}

func (m *mockIndexService) Watch(_ context.Context, _ driving.BuildRequest, _ func(*domain.IndexManifest, error)) error {
	return m.err
}

func (m *mockIndexService) List(_ context.Context) ([]domain.IndexManifest, error) {
	return m.manifests, m.err
}

func (m *mockIndexService) Remove(_ context.Context, _ string) error { return m.err }

func (m *mockIndexService) AddDocuments(_ context.Context, _ string, paths []string) ([]string, error) {
	return paths, m.err
}

func (m *mockIndexService) Files(_ context.Context, _ string) ([]string, error) {
	return nil, m.err
}

func (m *mockIndexService) CorpusDir(docName string) string { return "/corpus/" + docName }

// mockRetriever is a mock implementation of driving.Retriever.
type mockRetriever struct {
	passages []domain.RetrievedPassage
	err      error

	gotDocName string
	gotK       int
}

func (m *mockRetriever) Retrieve(_ context.Context, _, _ string, _ int) (string, error) {
	return "", m.err
}

func (m *mockRetriever) Search(_ context.Context, _, docName string, k int) ([]domain.RetrievedPassage, error) {
	m.gotDocName, m.gotK = docName, k
	return m.passages, m.err
}

// mockSettingsService keeps settings in memory and validates params like the real service.
type mockSettingsService struct {
	settings domain.AppSettings
}

func (m *mockSettingsService) Get() (*domain.AppSettings, error) {
	s := m.settings
	return &s, nil
}

func (m *mockSettingsService) Save(s *domain.AppSettings) error {
	m.settings = *s
	return nil
}

func (m *mockSettingsService) SetModel(model string) error {
	m.settings.LLM.Model = model
	return nil
}

func (m *mockSettingsService) SetModelParams(p domain.ModelParams) error {
	if err := p.Validate(); err != nil {
		return err
	}
	m.settings.LLM.Params = p
	return nil
}

func (m *mockSettingsService) SetRetrieval(_ bool, _ string, _ int) error { return nil }
func (m *mockSettingsService) Validate() error                            { return nil }
func (m *mockSettingsService) GetDefaults() domain.AppSettings            { return m.settings }
func (m *mockSettingsService) ValidateEmbeddingConfig() error             { return nil }
func (m *mockSettingsService) ValidateLLMConfig() error                   { return nil }

func (m *mockSettingsService) SetEmbeddingProvider(_ domain.AIProvider, _, _ string) error {
	return nil
}

func (m *mockSettingsService) SetLLMProvider(_ domain.AIProvider, _, _ string) error {
	return nil
}

var (
	_ driving.ChatService     = (*mockChatService)(nil)
	_ driving.IndexService    = (*mockIndexService)(nil)
	_ driving.Retriever       = (*mockRetriever)(nil)
	_ driving.SettingsService = (*mockSettingsService)(nil)
)
