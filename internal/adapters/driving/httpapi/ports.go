package httpapi

import (
	"github.com/custodia-labs/ragchat/internal/core/ports/driving"
)

// Ports aggregates the driving ports served over HTTP.
type Ports struct {
	// Chat answers questions.
	Chat driving.ChatService

	// Conversation holds the sessions and emits change events.
	Conversation driving.ConversationStore

	// Index builds and lists indexes. Optional.
	Index driving.IndexService

	// Retriever searches indexes. Optional.
	Retriever driving.Retriever

	// Settings reads and changes settings. Optional.
	Settings driving.SettingsService
}

// Validate ensures the required ports are set.
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
