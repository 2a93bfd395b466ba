// Package input provides text input components for the TUI.
package input

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/ragchat/internal/adapters/driving/tui/styles"
)

// QuestionCharLimit bounds the length of a typed question.
const QuestionCharLimit = 2000

// ChatInput wraps a bubbles textinput with question-specific styling.
type ChatInput struct {
	textinput textinput.Model
	styles    *styles.Styles
	label     string
	width     int
}

// NewChatInput creates a new question input component.
func NewChatInput(s *styles.Styles) *ChatInput {
	if s == nil {
		s = styles.DefaultStyles()
	}

	ti := textinput.New()
	ti.Placeholder = "Ask a question..."
	ti.Focus()
	ti.CharLimit = QuestionCharLimit
	ti.Width = 50

	return &ChatInput{
		textinput: ti,
		styles:    s,
		label:     "You: ",
		width:     50,
	}
}

// Init initialises the input.
func (c *ChatInput) Init() tea.Cmd {
	return textinput.Blink
}

// Update handles input messages.
func (c *ChatInput) Update(msg tea.Msg) (*ChatInput, tea.Cmd) {
	var cmd tea.Cmd
	c.textinput, cmd = c.textinput.Update(msg)
	return c, cmd
}

// View renders the input.
func (c *ChatInput) View() string {
	label := c.styles.Speaker.Render(c.label)
	input := c.styles.InputField.Render(c.textinput.View())
	//nolint:misspell // lipgloss.Center is the correct constant from the library
	return lipgloss.JoinHorizontal(lipgloss.Center, label, input)
}

// Value returns the current input value.
func (c *ChatInput) Value() string {
	return c.textinput.Value()
}

// Question returns the trimmed input value.
func (c *ChatInput) Question() string {
	return strings.TrimSpace(c.textinput.Value())
}

// SetValue sets the input value.
func (c *ChatInput) SetValue(value string) {
	c.textinput.SetValue(value)
}

// SetLabel replaces the prompt label.
func (c *ChatInput) SetLabel(label string) {
	c.label = label
}

// SetPlaceholder replaces the placeholder text.
func (c *ChatInput) SetPlaceholder(p string) {
	c.textinput.Placeholder = p
}

// Focus sets focus on the input.
func (c *ChatInput) Focus() tea.Cmd {
	return c.textinput.Focus()
}

// Blur removes focus from the input.
func (c *ChatInput) Blur() {
	c.textinput.Blur()
}

// Focused returns whether the input is focused.
func (c *ChatInput) Focused() bool {
	return c.textinput.Focused()
}

// SetWidth sets the width of the input.
func (c *ChatInput) SetWidth(width int) {
	c.width = width
	// Account for label and padding
	inputWidth := width - 10
	if inputWidth < 20 {
		inputWidth = 20
	}
	c.textinput.Width = inputWidth
}

// Width returns the current width.
func (c *ChatInput) Width() int {
	return c.width
}

// Reset clears the input.
func (c *ChatInput) Reset() {
	c.textinput.Reset()
}
