package driven

import (
	"context"

	"github.com/custodia-labs/ragchat/internal/core/domain"
)

// SessionRepository persists chat sessions.
type SessionRepository interface {
	// LoadAll returns every session, in creation order, with its messages.
	LoadAll(ctx context.Context) ([]domain.ChatSession, error)

	// SaveSession creates the session if it does not exist.
	SaveSession(ctx context.Context, name string) error

	// DeleteSession removes the session and its messages.
	DeleteSession(ctx context.Context, name string) error

	// SaveMessage inserts or updates a message at the given position.
	SaveMessage(ctx context.Context, session string, position int, msg domain.Message) error

	// DeleteMessage removes a message.
	DeleteMessage(ctx context.Context, session, messageID string) error

	// Close releases resources.
	Close() error
}
