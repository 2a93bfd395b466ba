// Package status provides status bar components for the TUI.
package status

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/ragchat/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/ragchat/internal/adapters/driving/tui/styles"
)

// State represents the current application state for display.
type State string

const (
	StateReady     State = "ready"
	StateStreaming State = "streaming"
	StateError     State = "error"
	StateHelp      State = "help"
	StateSessions  State = "sessions"
)

// Bar displays application status and keybinding hints.
type Bar struct {
	styles  *styles.Styles
	keymap  *keymap.KeyMap
	state   State
	message string
	session string
	model   string
	width   int
}

// NewBar creates a new status bar component.
func NewBar(s *styles.Styles, km *keymap.KeyMap) *Bar {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}

	return &Bar{
		styles: s,
		keymap: km,
		state:  StateReady,
		width:  80,
	}
}

// Init initialises the status bar.
func (s *Bar) Init() tea.Cmd {
	return nil
}

// Update handles status bar messages.
func (s *Bar) Update(msg tea.Msg) (*Bar, tea.Cmd) {
	// Bar is mostly passive, updated via Set methods
	return s, nil
}

// View renders the status bar.
func (s *Bar) View() string {
	left := s.renderLeft()
	right := s.renderRight()

	leftLen := lipgloss.Width(left)
	rightLen := lipgloss.Width(right)
	padding := s.width - leftLen - rightLen
	if padding < 1 {
		padding = 1
	}

	return s.styles.StatusBar.Width(s.width).Render(
		left + strings.Repeat(" ", padding) + right,
	)
}

// renderLeft renders the session, model and state.
func (s *Bar) renderLeft() string {
	var parts []string
	if s.session != "" {
		parts = append(parts, s.styles.Normal.Render(s.session))
	}
	if s.model != "" {
		parts = append(parts, s.styles.Muted.Render(s.model))
	}

	switch s.state {
	case StateStreaming:
		parts = append(parts, s.styles.Warning.Render("Answering..."))
	case StateError:
		if s.message != "" {
			parts = append(parts, s.styles.Error.Render(fmt.Sprintf("Error: %s", s.message)))
		} else {
			parts = append(parts, s.styles.Error.Render("Error"))
		}
	case StateHelp:
		parts = append(parts, s.styles.Normal.Render("Help"))
	case StateReady, StateSessions:
		if s.message != "" {
			parts = append(parts, s.styles.Success.Render(s.message))
		}
	}

	if len(parts) == 0 {
		return s.styles.Muted.Render("Ready")
	}
	return strings.Join(parts, s.styles.Muted.Render(" · "))
}

// renderRight renders keybinding hints.
func (s *Bar) renderRight() string {
	var bindings []key.Binding

	switch s.state {
	case StateStreaming:
		bindings = s.keymap.StreamingHelp()
	case StateSessions:
		bindings = s.keymap.SessionsHelp()
	case StateReady, StateError, StateHelp:
		bindings = s.keymap.ShortHelp()
	}

	hints := make([]string, 0, len(bindings))
	for _, b := range bindings {
		h := b.Help()
		hints = append(hints, fmt.Sprintf("%s: %s", h.Key, h.Desc))
	}
	return s.styles.Muted.Render(strings.Join(hints, " | "))
}

// SetState sets the current state.
func (s *Bar) SetState(state State) {
	s.state = state
}

// State returns the current state.
func (s *Bar) State() State {
	return s.state
}

// SetMessage sets a transient message.
func (s *Bar) SetMessage(message string) {
	s.message = message
}

// Message returns the current message.
func (s *Bar) Message() string {
	return s.message
}

// SetSession sets the displayed session name.
func (s *Bar) SetSession(name string) {
	s.session = name
}

// Session returns the displayed session name.
func (s *Bar) Session() string {
	return s.session
}

// SetModel sets the displayed chat model.
func (s *Bar) SetModel(model string) {
	s.model = model
}

// Model returns the displayed chat model.
func (s *Bar) Model() string {
	return s.model
}

// SetWidth sets the status bar width.
func (s *Bar) SetWidth(width int) {
	s.width = width
}

// Width returns the current width.
func (s *Bar) Width() int {
	return s.width
}

// Clear resets the state and message. Session and model are kept.
func (s *Bar) Clear() {
	s.state = StateReady
	s.message = ""
}
