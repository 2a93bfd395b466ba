package services

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/ragchat/internal/core/domain"
	"github.com/custodia-labs/ragchat/internal/core/ports/driven"
	"github.com/custodia-labs/ragchat/internal/core/ports/driving"
	"github.com/custodia-labs/ragchat/internal/logger"
)

// Ensure ConversationStore implements the interface.
var _ driving.ConversationStore = (*ConversationStore)(nil)

// ConversationStore holds named chat sessions and their messages.
//
// Every mutation runs under one mutex and emits a StoreEvent. Structural
// changes are written through to the session repository before they are
// applied in memory; answer text is persisted when the turn ends.
type ConversationStore struct {
	repo driven.SessionRepository

	mu       sync.Mutex
	order    []string
	sessions map[string][]domain.Message
	current  string
	inflight map[string]string // session -> message ID

	subs    map[int]chan domain.StoreEvent
	nextSub int
}

// NewConversationStore creates a store holding only the default session.
// Call Load to restore persisted sessions. Without Load the default session
// reaches the repository with its first message.
func NewConversationStore(repo driven.SessionRepository) *ConversationStore {
	s := &ConversationStore{
		repo:     repo,
		inflight: make(map[string]string),
		subs:     make(map[int]chan domain.StoreEvent),
	}
	s.resetLocked()
	return s
}

func (s *ConversationStore) resetLocked() {
	s.order = []string{domain.DefaultSessionName}
	s.sessions = map[string][]domain.Message{domain.DefaultSessionName: {}}
	s.current = domain.DefaultSessionName
}

// Load replaces the in-memory state with the repository contents.
// An empty repository yields the persisted default session.
func (s *ConversationStore) Load(ctx context.Context) error {
	stored, err := s.repo.LoadAll(ctx)
	if err != nil {
		return fmt.Errorf("load sessions: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if len(stored) == 0 {
		if err := s.repo.SaveSession(ctx, domain.DefaultSessionName); err != nil {
			return fmt.Errorf("save default session: %w", err)
		}
		s.resetLocked()
	} else {
		s.order = make([]string, 0, len(stored))
		s.sessions = make(map[string][]domain.Message, len(stored))
		for _, cs := range stored {
			s.order = append(s.order, cs.Name)
			s.sessions[cs.Name] = slices.Clone(cs.Messages)
		}
		s.current = s.order[0]
	}
	clear(s.inflight)

	logger.Debug("loaded %d chat sessions", len(s.order))
	s.emitLocked(domain.StoreEvent{Type: domain.EventStoreReset, Session: s.current, Index: -1})
	return nil
}

// CreateSession adds an empty session and selects it.
func (s *ConversationStore) CreateSession(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("%w: session name", domain.ErrEmptyInput)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.sessions[name]; ok {
		return fmt.Errorf("%w: session %q", domain.ErrAlreadyExists, name)
	}
	if err := s.repo.SaveSession(context.Background(), name); err != nil {
		return fmt.Errorf("save session: %w", err)
	}

	s.order = append(s.order, name)
	s.sessions[name] = []domain.Message{}
	s.current = name
	s.emitLocked(domain.StoreEvent{Type: domain.EventSessionCreated, Session: name, Index: -1})
	return nil
}

// SelectSession makes name the current session.
func (s *ConversationStore) SelectSession(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.sessions[name]; !ok {
		return fmt.Errorf("%w: session %q", domain.ErrNotFound, name)
	}
	s.current = name
	s.emitLocked(domain.StoreEvent{Type: domain.EventSessionSelected, Session: name, Index: -1})
	return nil
}

// DeleteSession removes a session. Unknown names are a no-op. Removing the
// last session resets the store to an empty default session.
func (s *ConversationStore) DeleteSession(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.sessions[name]; !ok {
		return nil
	}
	if _, busy := s.inflight[name]; busy {
		return fmt.Errorf("%w: session %q", domain.ErrStreamInProgress, name)
	}

	ctx := context.Background()
	if err := s.repo.DeleteSession(ctx, name); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}

	delete(s.sessions, name)
	s.order = slices.DeleteFunc(s.order, func(n string) bool { return n == name })
	s.emitLocked(domain.StoreEvent{Type: domain.EventSessionDeleted, Session: name, Index: -1})

	if len(s.order) == 0 {
		if err := s.repo.SaveSession(ctx, domain.DefaultSessionName); err != nil {
			logger.Warn("save default session: %v", err)
		}
		s.resetLocked()
		s.emitLocked(domain.StoreEvent{Type: domain.EventStoreReset, Session: s.current, Index: -1})
		return nil
	}

	if s.current == name {
		s.current = s.order[0]
		s.emitLocked(domain.StoreEvent{Type: domain.EventSessionSelected, Session: s.current, Index: -1})
	}
	return nil
}

// AppendMessage adds a message with an empty answer to the session.
func (s *ConversationStore) AppendMessage(session, question, model string) (domain.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, busy := s.inflight[session]; busy {
		return domain.Message{}, fmt.Errorf("%w: session %q", domain.ErrStreamInProgress, session)
	}
	return s.appendLocked(session, question, model)
}

func (s *ConversationStore) appendLocked(session, question, model string) (domain.Message, error) {
	msgs, ok := s.sessions[session]
	if !ok {
		return domain.Message{}, fmt.Errorf("%w: session %q", domain.ErrNotFound, session)
	}
	question = strings.TrimSpace(question)
	if question == "" {
		return domain.Message{}, fmt.Errorf("%w: question", domain.ErrEmptyInput)
	}

	msg := domain.Message{
		ID:        uuid.NewString(),
		Question:  question,
		Model:     model,
		CreatedAt: time.Now().UTC(),
	}
	ctx := context.Background()
	if len(msgs) == 0 {
		if err := s.repo.SaveSession(ctx, session); err != nil {
			return domain.Message{}, fmt.Errorf("save session: %w", err)
		}
	}
	if err := s.repo.SaveMessage(ctx, session, len(msgs), msg); err != nil {
		return domain.Message{}, fmt.Errorf("save message: %w", err)
	}

	s.sessions[session] = append(msgs, msg)
	s.emitLocked(domain.StoreEvent{Type: domain.EventMessageAppended, Session: session, Index: len(msgs), MessageID: msg.ID})
	return msg, nil
}

// DeleteMessage removes the message at index. An unknown session or an
// out-of-range index is a no-op.
func (s *ConversationStore) DeleteMessage(session string, index int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	msgs, ok := s.sessions[session]
	if !ok || index < 0 || index >= len(msgs) {
		return nil
	}
	id := msgs[index].ID
	if s.inflight[session] == id {
		return fmt.Errorf("%w: message %d of %q is streaming", domain.ErrStreamInProgress, index, session)
	}
	if err := s.repo.DeleteMessage(context.Background(), session, id); err != nil {
		return fmt.Errorf("delete message: %w", err)
	}

	s.sessions[session] = slices.Delete(msgs, index, index+1)
	s.emitLocked(domain.StoreEvent{Type: domain.EventMessageDeleted, Session: session, Index: index, MessageID: id})
	return nil
}

// BeginTurn appends a message with an empty answer and marks the session as
// processing. It fails with domain.ErrStreamInProgress if a turn is already
// running for the session.
func (s *ConversationStore) BeginTurn(session, question, model string) (domain.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, busy := s.inflight[session]; busy {
		return domain.Message{}, fmt.Errorf("%w: session %q", domain.ErrStreamInProgress, session)
	}
	msg, err := s.appendLocked(session, question, model)
	if err != nil {
		return domain.Message{}, err
	}
	s.inflight[session] = msg.ID
	s.emitLocked(domain.StoreEvent{
		Type:      domain.EventTurnStarted,
		Session:   session,
		Index:     len(s.sessions[session]) - 1,
		MessageID: msg.ID,
	})
	return msg, nil
}

// AppendAnswer concatenates delta to the in-flight message's answer.
func (s *ConversationStore) AppendAnswer(session, id, delta string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.inflight[session] != id {
		return fmt.Errorf("%w: no in-flight message %s in %q", domain.ErrNotFound, id, session)
	}
	if delta == "" {
		return nil
	}
	msgs := s.sessions[session]
	i := indexOfMessage(msgs, id)
	if i < 0 {
		return fmt.Errorf("%w: message %s", domain.ErrNotFound, id)
	}
	msgs[i].Answer += delta
	s.emitLocked(domain.StoreEvent{Type: domain.EventAnswerAppended, Session: session, Index: i, MessageID: id, Delta: delta})
	return nil
}

// EndTurn freezes the in-flight answer, persists it, and clears processing.
func (s *ConversationStore) EndTurn(session, id string) (domain.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.inflight[session] != id {
		return domain.Message{}, fmt.Errorf("%w: no in-flight message %s in %q", domain.ErrNotFound, id, session)
	}
	delete(s.inflight, session)

	msgs := s.sessions[session]
	i := indexOfMessage(msgs, id)
	if i < 0 {
		return domain.Message{}, fmt.Errorf("%w: message %s", domain.ErrNotFound, id)
	}
	msg := msgs[i]
	if err := s.repo.SaveMessage(context.Background(), session, i, msg); err != nil {
		logger.Warn("persist answer for %q: %v", session, err)
	}
	s.emitLocked(domain.StoreEvent{Type: domain.EventTurnEnded, Session: session, Index: i, MessageID: id})
	return msg, nil
}

// Sessions returns session names in creation order.
func (s *ConversationStore) Sessions() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.order)
}

// Current returns the selected session name.
func (s *ConversationStore) Current() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// Messages returns a copy of the session's messages.
func (s *ConversationStore) Messages(session string) ([]domain.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	msgs, ok := s.sessions[session]
	if !ok {
		return nil, fmt.Errorf("%w: session %q", domain.ErrNotFound, session)
	}
	return slices.Clone(msgs), nil
}

// Processing reports whether a turn is running for the session.
func (s *ConversationStore) Processing(session string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, busy := s.inflight[session]
	return busy
}

// View returns the UI-facing snapshot of the current session.
func (s *ConversationStore) View() domain.ChatView {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, busy := s.inflight[s.current]
	return domain.ChatView{
		Current:    s.current,
		Sessions:   slices.Clone(s.order),
		Messages:   slices.Clone(s.sessions[s.current]),
		Processing: busy,
	}
}

// Subscribe registers for store events. Events are dropped for a
// subscriber whose buffer is full.
func (s *ConversationStore) Subscribe(buffer int) (<-chan domain.StoreEvent, func()) {
	if buffer <= 0 {
		buffer = 64
	}
	ch := make(chan domain.StoreEvent, buffer)

	s.mu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = ch
	s.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.subs, id)
			s.mu.Unlock()
			close(ch)
		})
	}
}

func (s *ConversationStore) emitLocked(ev domain.StoreEvent) {
	for id, ch := range s.subs {
		select {
		case ch <- ev:
		default:
			logger.Warn("store subscriber %d is lagging, dropped %s event", id, ev.Type)
		}
	}
}

func indexOfMessage(msgs []domain.Message, id string) int {
	return slices.IndexFunc(msgs, func(m domain.Message) bool { return m.ID == id })
}
