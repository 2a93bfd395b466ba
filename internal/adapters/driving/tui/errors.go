package tui

import "errors"

// ErrMissingChatService is returned when the chat service is not provided.
var ErrMissingChatService = errors.New("tui: chat service is required")

// ErrMissingConversationStore is returned when the conversation store is not provided.
var ErrMissingConversationStore = errors.New("tui: conversation store is required")

// ErrInvalidPorts is returned when ports validation fails.
var ErrInvalidPorts = errors.New("tui: invalid ports configuration")

// ErrNothingToCopy is returned when there is no answer to copy.
var ErrNothingToCopy = errors.New("tui: no answer to copy")
