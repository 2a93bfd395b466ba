package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/custodia-labs/ragchat/internal/core/domain"
	"github.com/custodia-labs/ragchat/internal/core/ports/driven"
)

// Ensure SessionRepository implements the interface.
var _ driven.SessionRepository = (*SessionRepository)(nil)

// SessionRepository is an in-memory implementation of driven.SessionRepository.
type SessionRepository struct {
	mu       sync.RWMutex
	order    []string
	messages map[string][]domain.Message
}

// NewSessionRepository creates a new in-memory session repository.
func NewSessionRepository() *SessionRepository {
	return &SessionRepository{
		messages: make(map[string][]domain.Message),
	}
}

// LoadAll returns copies of every session in creation order.
func (r *SessionRepository) LoadAll(_ context.Context) ([]domain.ChatSession, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	sessions := make([]domain.ChatSession, 0, len(r.order))
	for _, name := range r.order {
		msgs := make([]domain.Message, len(r.messages[name]))
		copy(msgs, r.messages[name])
		sessions = append(sessions, domain.ChatSession{Name: name, Messages: msgs})
	}
	return sessions, nil
}

// SaveSession creates the session if it does not exist.
func (r *SessionRepository) SaveSession(_ context.Context, name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.messages[name]; ok {
		return nil
	}
	r.order = append(r.order, name)
	r.messages[name] = []domain.Message{}
	return nil
}

// DeleteSession removes the session and its messages.
func (r *SessionRepository) DeleteSession(_ context.Context, name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.messages[name]; !ok {
		return nil
	}
	delete(r.messages, name)
	for i, n := range r.order {
		if n == name {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return nil
}

// SaveMessage inserts or updates the message with msg.ID.
// A new message is placed at position, clamped to the end.
func (r *SessionRepository) SaveMessage(_ context.Context, session string, position int, msg domain.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	msgs, ok := r.messages[session]
	if !ok {
		return fmt.Errorf("session %q: %w", session, domain.ErrNotFound)
	}

	for i := range msgs {
		if msgs[i].ID == msg.ID {
			msgs[i] = msg
			return nil
		}
	}

	if position < 0 || position > len(msgs) {
		position = len(msgs)
	}
	msgs = append(msgs, domain.Message{})
	copy(msgs[position+1:], msgs[position:])
	msgs[position] = msg
	r.messages[session] = msgs
	return nil
}

// DeleteMessage removes a message. Missing messages are a no-op.
func (r *SessionRepository) DeleteMessage(_ context.Context, session, messageID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	msgs := r.messages[session]
	for i := range msgs {
		if msgs[i].ID == messageID {
			r.messages[session] = append(msgs[:i], msgs[i+1:]...)
			return nil
		}
	}
	return nil
}

// Close is a no-op.
func (r *SessionRepository) Close() error {
	return nil
}
