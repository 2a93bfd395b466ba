// Package messages defines Bubbletea message types for the TUI.
// Messages represent events and commands that flow through the Elm architecture.
package messages

import (
	"github.com/custodia-labs/ragchat/internal/core/domain"
)

// ViewChanged is sent when navigating between views.
type ViewChanged struct {
	View ViewType
}

// ViewType identifies which view is currently active.
type ViewType int

const (
	// ViewChat is the conversation view with the question input.
	ViewChat ViewType = iota
	// ViewSessions lists sessions for switching, creating and deleting.
	ViewSessions
	// ViewHelp is the help/keybindings view.
	ViewHelp
)

// String returns the string representation of the view type.
func (v ViewType) String() string {
	switch v {
	case ViewChat:
		return "chat"
	case ViewSessions:
		return "sessions"
	case ViewHelp:
		return "help"
	default:
		return "unknown"
	}
}

// QuestionSubmitted is a command to ask a question in a session.
type QuestionSubmitted struct {
	Session  string
	Question string
}

// AnswerCompleted carries the outcome of a finished turn.
type AnswerCompleted struct {
	Session string
	Message *domain.Message
	Err     error
}

// StoreChanged carries one conversation store event.
type StoreChanged struct {
	Event domain.StoreEvent
}

// StoreClosed signals the store event subscription ended.
type StoreClosed struct{}

// StopRequested asks to cancel the session's streaming answer.
type StopRequested struct {
	Session string
}

// SessionSelectRequested asks to make a session current.
type SessionSelectRequested struct {
	Name string
}

// SessionCreateRequested asks to create and select a session.
type SessionCreateRequested struct {
	Name string
}

// SessionDeleteRequested asks to delete a session.
type SessionDeleteRequested struct {
	Name string
}

// AnswerCopied signals the clipboard copy finished.
type AnswerCopied struct {
	Err error
}

// ErrorOccurred signals that an error happened.
type ErrorOccurred struct {
	Err error
}

// Quit signals the application should exit.
type Quit struct{}
