package cli

import (
	"bytes"
	"context"
	"io"
	"os"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/custodia-labs/ragchat/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/ragchat/internal/core/domain"
	"github.com/custodia-labs/ragchat/internal/core/ports/driving"
	"github.com/custodia-labs/ragchat/internal/core/services"
)

// MockIndexService implements driving.IndexService for CLI tests.
type MockIndexService struct {
	Manifests []domain.IndexManifest
	Built     *domain.IndexManifest
	FilesList []string
	Err       error

	GotBuild   driving.BuildRequest
	GotRemoved string
	GotAdded   []string
	GotDocName string
}

func (m *MockIndexService) Build(_ context.Context, req driving.BuildRequest) (*domain.IndexManifest, error) {
	m.GotBuild = req
	if req.Progress != nil {
		req.Progress(domain.BuildProgress{Phase: domain.BuildPhaseScan})
		req.Progress(domain.BuildProgress{Phase: domain.BuildPhaseEmbed, Done: 2, Total: 2})
		req.Progress(domain.BuildProgress{Phase: domain.BuildPhaseCommit})
	}
	return m.Built, m.Err
}

func (m *MockIndexService) Watch(
	_ context.Context, req driving.BuildRequest, onBuild func(*domain.IndexManifest, error),
) error {
	m.GotBuild = req
	onBuild(m.Built, nil)
	return m.Err
}

func (m *MockIndexService) List(_ context.Context) ([]domain.IndexManifest, error) {
	return m.Manifests, m.Err
}

func (m *MockIndexService) Remove(_ context.Context, docName string) error {
	m.GotRemoved = docName
	return m.Err
}

func (m *MockIndexService) AddDocuments(_ context.Context, docName string, paths []string) ([]string, error) {
	m.GotDocName = docName
	m.GotAdded = paths
	return paths, m.Err
}

func (m *MockIndexService) Files(_ context.Context, docName string) ([]string, error) {
	m.GotDocName = docName
	return m.FilesList, m.Err
}

func (m *MockIndexService) CorpusDir(docName string) string {
	return "/data/" + docName + "-docs"
}

// MockRetriever implements driving.Retriever for CLI tests.
type MockRetriever struct {
	Passages []domain.RetrievedPassage
	Err      error

	GotQuery   string
	GotDocName string
	GotK       int
}

func (m *MockRetriever) Retrieve(ctx context.Context, query, docName string, k int) (string, error) {
	_, err := m.Search(ctx, query, docName, k)
	return "", err
}

func (m *MockRetriever) Search(_ context.Context, query, docName string, k int) ([]domain.RetrievedPassage, error) {
	m.GotQuery, m.GotDocName, m.GotK = query, docName, k
	return m.Passages, m.Err
}

// MockChatService streams Chunks through a real conversation store.
type MockChatService struct {
	Store     *services.ConversationStore
	Chunks    []string
	ModelList []string
	Err       error

	Questions []string
	Stopped   []string
}

func (m *MockChatService) Submit(ctx context.Context, session, question string) (*domain.Message, error) {
	turn, err := m.Begin(ctx, session, question)
	if err != nil {
		return nil, err
	}
	return turn.Run()
}

func (m *MockChatService) Begin(_ context.Context, session, question string) (driving.Turn, error) {
	m.Questions = append(m.Questions, question)
	if m.Err != nil {
		return nil, m.Err
	}
	msg, err := m.Store.BeginTurn(session, question, "llama3")
	if err != nil {
		return nil, err
	}
	return &mockTurn{chat: m, session: session, msg: msg}, nil
}

// mockTurn streams the chat service's Chunks on Run.
type mockTurn struct {
	chat    *MockChatService
	session string
	msg     domain.Message
}

func (t *mockTurn) Message() domain.Message { return t.msg }

func (t *mockTurn) Run() (*domain.Message, error) {
	store := t.chat.Store
	for _, c := range t.chat.Chunks {
		if err := store.AppendAnswer(t.session, t.msg.ID, c); err != nil {
			return nil, err
		}
	}
	final, err := store.EndTurn(t.session, t.msg.ID)
	if err != nil {
		return nil, err
	}
	return &final, nil
}

func (m *MockChatService) Stop(session string) bool {
	m.Stopped = append(m.Stopped, session)
	return false
}

func (m *MockChatService) Processing(session string) bool {
	return m.Store.Processing(session)
}

func (m *MockChatService) Models(_ context.Context) ([]string, error) {
	return m.ModelList, m.Err
}

var (
	_ driving.IndexService = (*MockIndexService)(nil)
	_ driving.Retriever    = (*MockRetriever)(nil)
	_ driving.ChatService  = (*MockChatService)(nil)
)

// testServices holds the fakes installed by setupTestServices.
type testServices struct {
	Index     *MockIndexService
	Retriever *MockRetriever
	Chat      *MockChatService
	Store     *services.ConversationStore
	Settings  *services.SettingsService
}

// setupTestServices installs fresh fakes and returns a cleanup func that
// removes them and resets every flag to its default.
func setupTestServices() (*testServices, func()) {
	store := services.NewConversationStore(memory.NewSessionRepository())
	ts := &testServices{
		Index: &MockIndexService{
			Built: &domain.IndexManifest{DocName: "reflex", Version: "v1", Count: 2, Dimensions: 8, EmbeddingModel: "local"},
		},
		Retriever: &MockRetriever{},
		Chat:      &MockChatService{Store: store},
		Store:     store,
		Settings:  services.NewSettingsService(memory.NewConfigStore(), nil),
	}

	SetServices(&Services{
		Index:        ts.Index,
		Retriever:    ts.Retriever,
		Conversation: ts.Store,
		Chat:         ts.Chat,
		Settings:     ts.Settings,
	})

	return ts, func() {
		SetServices(nil)
		resetCommandFlags(rootCmd)
	}
}

// resetCommandFlags restores every flag of cmd and its children to its default.
func resetCommandFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		if sv, ok := f.Value.(pflag.SliceValue); ok {
			_ = sv.Replace(nil)
		} else {
			_ = f.Value.Set(f.DefValue)
		}
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, c := range cmd.Commands() {
		resetCommandFlags(c)
	}
}

// execute runs the root command with args and returns its output.
func execute(t *testing.T, stdin io.Reader, args ...string) (string, error) {
	t.Helper()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	if stdin != nil {
		rootCmd.SetIn(stdin)
	}
	rootCmd.SetArgs(args)
	defer func() {
		rootCmd.SetArgs(nil)
		rootCmd.SetIn(os.Stdin)
	}()

	err := rootCmd.Execute()
	return buf.String(), err
}
