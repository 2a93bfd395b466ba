package driving

import "github.com/custodia-labs/ragchat/internal/core/domain"

// ConversationStore manages named chat sessions.
type ConversationStore interface {
	// CreateSession adds an empty session and selects it.
	CreateSession(name string) error

	// SelectSession makes name the current session.
	SelectSession(name string) error

	// DeleteSession removes a session. The store never ends up empty.
	DeleteSession(name string) error

	// DeleteMessage removes the message at index. Out-of-range is a no-op.
	DeleteMessage(session string, index int) error

	// Sessions returns session names in creation order.
	Sessions() []string

	// Current returns the selected session name.
	Current() string

	// Messages returns a copy of the session's messages.
	Messages(session string) ([]domain.Message, error)

	// Processing reports whether a completion is streaming for the session.
	Processing(session string) bool

	// View returns the UI-facing snapshot.
	View() domain.ChatView

	// Subscribe registers for store events. The returned func unsubscribes.
	Subscribe(buffer int) (<-chan domain.StoreEvent, func())
}
