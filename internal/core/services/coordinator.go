package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"

	"github.com/custodia-labs/ragchat/internal/core/domain"
	"github.com/custodia-labs/ragchat/internal/core/ports/driven"
	"github.com/custodia-labs/ragchat/internal/core/ports/driving"
	"github.com/custodia-labs/ragchat/internal/logger"
)

// Ensure ChatCoordinator implements the interface.
var _ driving.ChatService = (*ChatCoordinator)(nil)

// openAIModelPrefix selects chat models from an OpenAI model list.
const openAIModelPrefix = "gpt"

// activeStream is the stop handle of one in-flight turn.
type activeStream struct {
	mu      sync.Mutex
	stopped bool
	cancel  context.CancelFunc
}

func (a *activeStream) stop() {
	a.mu.Lock()
	a.stopped = true
	a.mu.Unlock()
	a.cancel()
}

func (a *activeStream) isStopped() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.stopped
}

// ChatCoordinator drives streamed, retrieval-augmented turns into the
// conversation store. At most one turn runs per session.
type ChatCoordinator struct {
	store     *ConversationStore
	llm       driven.LLMService
	composer  driving.QueryComposer
	retriever driving.Retriever
	settings  driving.SettingsService

	mu      sync.Mutex
	streams map[string]*activeStream
}

// NewChatCoordinator creates a coordinator. llm may be nil, in which case
// Submit fails with domain.ErrLLMUnavailable. retriever may be nil to
// disable retrieval.
func NewChatCoordinator(
	store *ConversationStore,
	llm driven.LLMService,
	composer driving.QueryComposer,
	retriever driving.Retriever,
	settings driving.SettingsService,
) *ChatCoordinator {
	return &ChatCoordinator{
		store:     store,
		llm:       llm,
		composer:  composer,
		retriever: retriever,
		settings:  settings,
		streams:   make(map[string]*activeStream),
	}
}

// Submit appends the question to the session and streams the answer into it.
// A stopped turn returns the partial message and no error. An upstream
// failure keeps the partial answer and returns domain.ErrUpstream.
func (c *ChatCoordinator) Submit(ctx context.Context, session, question string) (*domain.Message, error) {
	turn, err := c.Begin(ctx, session, question)
	if err != nil {
		return nil, err
	}
	return turn.Run()
}

// Begin stores the question and registers the stop handle, so the session
// is claimed before the caller returns.
func (c *ChatCoordinator) Begin(ctx context.Context, session, question string) (driving.Turn, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return nil, fmt.Errorf("%w: question", domain.ErrEmptyInput)
	}
	if c.llm == nil {
		return nil, domain.ErrLLMUnavailable
	}

	settings, err := c.settings.Get()
	if err != nil {
		return nil, fmt.Errorf("load settings: %w", err)
	}
	if err := settings.LLM.Params.Validate(); err != nil {
		return nil, err
	}

	msg, err := c.store.BeginTurn(session, question, settings.LLM.Model)
	if err != nil {
		return nil, err
	}

	streamCtx, cancel := context.WithCancel(ctx)
	active := &activeStream{cancel: cancel}
	c.mu.Lock()
	c.streams[session] = active
	c.mu.Unlock()

	return &chatTurn{
		c:        c,
		parent:   ctx,
		ctx:      streamCtx,
		active:   active,
		session:  session,
		msg:      msg,
		settings: settings,
	}, nil
}

// chatTurn is a claimed turn waiting for Run.
type chatTurn struct {
	c        *ChatCoordinator
	parent   context.Context
	ctx      context.Context
	active   *activeStream
	session  string
	msg      domain.Message
	settings *domain.AppSettings
}

func (t *chatTurn) Message() domain.Message {
	return t.msg
}

func (t *chatTurn) Run() (*domain.Message, error) {
	c := t.c
	defer t.active.cancel()
	defer c.unregister(t.session, t.active)

	runErr := c.run(t.ctx, t.active, t.session, t.msg, t.settings)

	result := t.msg
	if final, err := c.store.EndTurn(t.session, t.msg.ID); err == nil {
		result = final
	}

	switch {
	case runErr == nil:
	case t.active.isStopped():
		logger.Debug("turn in %q stopped after %d bytes", t.session, len(result.Answer))
		runErr = nil
	case t.parent.Err() != nil:
		runErr = t.parent.Err()
	case !errors.Is(runErr, domain.ErrUpstream) && !errors.Is(runErr, domain.ErrConfiguration):
		runErr = fmt.Errorf("%w: %w", domain.ErrUpstream, runErr)
	}
	return &result, runErr
}

// unregister drops the stop handle unless a newer turn already replaced it.
func (c *ChatCoordinator) unregister(session string, active *activeStream) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.streams[session] == active {
		delete(c.streams, session)
	}
}

// run performs retrieval, opens the stream, and applies chunks until the
// stream ends, fails, or is stopped.
func (c *ChatCoordinator) run(
	ctx context.Context,
	active *activeStream,
	session string,
	msg domain.Message,
	settings *domain.AppSettings,
) error {
	history, err := c.store.Messages(session)
	if err != nil {
		return err
	}

	var contextDocs string
	if settings.Retrieval.Enabled && c.retriever != nil {
		contextDocs = c.retrieve(ctx, history[:len(history)-1], msg.Question, settings.Retrieval)
	}

	prompt, err := c.composer.BuildPrompt(history, contextDocs)
	if err != nil {
		return fmt.Errorf("%w: %w", domain.ErrConfiguration, err)
	}

	logger.Debug("streaming %s with %d prompt messages", settings.LLM.Model, len(prompt))
	stream, err := c.llm.Stream(ctx, driven.CompletionRequest{
		Model:    settings.LLM.Model,
		Messages: prompt,
		Params:   settings.LLM.Params,
	})
	if err != nil {
		return err
	}
	defer stream.Close()

	for {
		chunk, err := stream.Recv()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}

		active.mu.Lock()
		if active.stopped {
			active.mu.Unlock()
			return nil
		}
		appendErr := c.store.AppendAnswer(session, msg.ID, chunk)
		active.mu.Unlock()
		if appendErr != nil {
			return appendErr
		}
	}
}

// retrieve composes a query and fetches context. Any failure skips context
// for this turn.
func (c *ChatCoordinator) retrieve(ctx context.Context, history []domain.Message, question string, rs domain.RetrievalSettings) string {
	query := c.composer.Compose(ctx, history, question)
	if query == "" {
		return ""
	}
	docs, err := c.retriever.Retrieve(ctx, query, rs.DocName, rs.K)
	if err != nil {
		logger.Warn("retrieval skipped: %v", err)
		return ""
	}
	return docs
}

// Stop cancels the session's in-flight turn. No chunk is applied after it returns.
func (c *ChatCoordinator) Stop(session string) bool {
	c.mu.Lock()
	active, ok := c.streams[session]
	c.mu.Unlock()
	if !ok {
		return false
	}
	active.stop()
	return true
}

// Processing reports whether a turn is running for the session.
func (c *ChatCoordinator) Processing(session string) bool {
	return c.store.Processing(session)
}

// Models lists the chat models available from the provider. OpenAI lists
// are narrowed to gpt models, newest names first.
func (c *ChatCoordinator) Models(ctx context.Context) ([]string, error) {
	if c.llm == nil {
		return nil, domain.ErrLLMUnavailable
	}
	ids, err := c.llm.ListModels(ctx)
	if err != nil {
		return nil, err
	}

	settings, err := c.settings.Get()
	if err != nil || settings.LLM.Provider != domain.AIProviderOpenAI {
		return ids, nil
	}

	models := make([]string, 0, len(ids))
	for _, id := range ids {
		if strings.HasPrefix(id, openAIModelPrefix) {
			models = append(models, id)
		}
	}
	sort.Sort(sort.Reverse(sort.StringSlice(models)))
	return models, nil
}
