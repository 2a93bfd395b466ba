// Package httpapi exposes ragchat over HTTP with a server-sent event stream
// of conversation changes. It is a driving adapter like the CLI and TUI.
package httpapi

import "errors"

var (
	// ErrInvalidPorts is returned when ports are nil.
	ErrInvalidPorts = errors.New("httpapi: invalid ports configuration")

	// ErrMissingChatService is returned when the chat service is not provided.
	ErrMissingChatService = errors.New("httpapi: chat service is required")

	// ErrMissingConversationStore is returned when the conversation store is not provided.
	ErrMissingConversationStore = errors.New("httpapi: conversation store is required")

	// ErrMissingIndexService is returned by index routes when no index service is wired.
	ErrMissingIndexService = errors.New("httpapi: index service is not configured")

	// ErrMissingSettingsService is returned by settings routes when no settings service is wired.
	ErrMissingSettingsService = errors.New("httpapi: settings service is not configured")
)
