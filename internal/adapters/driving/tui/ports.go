// Package tui provides an interactive terminal chat interface for ragchat.
// It implements a driving adapter following hexagonal architecture principles.
package tui

import (
	"github.com/custodia-labs/ragchat/internal/core/ports/driving"
)

// Ports aggregates all driving port interfaces required by the TUI.
// This provides a single injection point for dependency injection.
type Ports struct {
	// Chat answers questions with streamed completions.
	Chat driving.ChatService

	// Conversation holds the sessions and emits change events.
	Conversation driving.ConversationStore

	// Settings provides the chat model name. Optional.
	Settings driving.SettingsService
}

// NewPorts creates a new Ports aggregate with the given services.
func NewPorts(
	chat driving.ChatService,
	conversation driving.ConversationStore,
	settings driving.SettingsService,
) *Ports {
	return &Ports{
		Chat:         chat,
		Conversation: conversation,
		Settings:     settings,
	}
}

// Validate ensures all required ports are set.
// Returns an error if any port is nil.
func (p *Ports) Validate() error {
	if p == nil {
		return ErrInvalidPorts
	}
	if p.Chat == nil {
		return ErrMissingChatService
	}
	if p.Conversation == nil {
		return ErrMissingConversationStore
	}
	return nil
}
