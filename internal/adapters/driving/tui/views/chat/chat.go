// Package chat provides the conversation view for the TUI.
package chat

import (
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/ragchat/internal/adapters/driving/tui/components/input"
	"github.com/custodia-labs/ragchat/internal/adapters/driving/tui/components/status"
	"github.com/custodia-labs/ragchat/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/ragchat/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/ragchat/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/ragchat/internal/core/domain"
)

// chromeHeight is the rows taken by the header, input and status bar.
const chromeHeight = 8

// View shows the current session's transcript above the question input.
type View struct {
	styles     *styles.Styles
	keymap     *keymap.KeyMap
	input      *input.ChatInput
	transcript viewport.Model
	statusbar  *status.Bar

	session    string
	messages   []domain.Message
	processing bool

	width  int
	height int
	ready  bool
	err    error
}

// NewView creates a new chat view.
func NewView(s *styles.Styles, km *keymap.KeyMap) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}

	return &View{
		styles:     s,
		keymap:     km,
		input:      input.NewChatInput(s),
		transcript: viewport.New(80, 24-chromeHeight),
		statusbar:  status.NewBar(s, km),
		width:      80,
		height:     24,
	}
}

// Init initialises the view.
func (v *View) Init() tea.Cmd {
	return v.input.Init()
}

// Update handles messages for the chat view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
		return v, nil

	case tea.KeyMsg:
		return v.handleKeyMsg(msg)

	case messages.AnswerCompleted:
		if msg.Err != nil {
			v.SetError(msg.Err)
		} else {
			v.err = nil
			v.statusbar.Clear()
		}
		v.syncState()
		return v, nil

	case messages.ErrorOccurred:
		v.SetError(msg.Err)
		return v, nil
	}

	var cmd tea.Cmd
	v.input, cmd = v.input.Update(msg)
	return v, cmd
}

func (v *View) handleKeyMsg(msg tea.KeyMsg) (*View, tea.Cmd) {
	keyStr := msg.String()

	switch {
	case keymap.Matches(keyStr, v.keymap.Send):
		question := v.input.Question()
		if question == "" {
			return v, nil
		}
		if v.processing {
			v.statusbar.SetMessage("Wait for the answer to finish or press esc to stop it")
			return v, nil
		}
		v.input.Reset()
		v.err = nil
		session := v.session
		return v, func() tea.Msg {
			return messages.QuestionSubmitted{Session: session, Question: question}
		}

	case keymap.Matches(keyStr, v.keymap.Stop):
		if !v.processing {
			return v, nil
		}
		session := v.session
		return v, func() tea.Msg {
			return messages.StopRequested{Session: session}
		}

	case keymap.Matches(keyStr, v.keymap.ScrollUp), keymap.Matches(keyStr, v.keymap.ScrollDown):
		var cmd tea.Cmd
		v.transcript, cmd = v.transcript.Update(msg)
		return v, cmd
	}

	var cmd tea.Cmd
	v.input, cmd = v.input.Update(msg)
	return v, cmd
}

// SetConversation replaces the displayed session state.
// The transcript follows new output unless the user scrolled up.
func (v *View) SetConversation(view domain.ChatView) {
	follow := v.transcript.AtBottom() || v.session != view.Current
	v.session = view.Current
	v.messages = view.Messages
	v.processing = view.Processing
	v.statusbar.SetSession(view.Current)
	v.syncState()

	v.transcript.SetContent(v.renderTranscript())
	if follow {
		v.transcript.GotoBottom()
	}
}

// SetModel sets the model name shown in the status bar.
func (v *View) SetModel(model string) {
	v.statusbar.SetModel(model)
}

// SetMessage shows a transient status message.
func (v *View) SetMessage(message string) {
	v.statusbar.SetMessage(message)
}

// SetError shows err in the status bar.
func (v *View) SetError(err error) {
	if err == nil {
		return
	}
	v.err = err
	v.statusbar.SetState(status.StateError)
	v.statusbar.SetMessage(err.Error())
}

func (v *View) syncState() {
	switch {
	case v.processing:
		v.statusbar.SetState(status.StateStreaming)
	case v.err != nil:
		v.statusbar.SetState(status.StateError)
	default:
		v.statusbar.SetState(status.StateReady)
	}
}

func (v *View) renderTranscript() string {
	if len(v.messages) == 0 {
		return v.styles.Muted.Render("No messages yet. Ask a question about your documents.")
	}

	wrap := lipgloss.NewStyle().Width(v.width - 4)
	blocks := make([]string, 0, len(v.messages))
	for i := range v.messages {
		m := v.messages[i]
		var b strings.Builder
		b.WriteString(v.styles.Speaker.Render("You"))
		b.WriteString("\n")
		b.WriteString(v.styles.Question.Render(wrap.Render(m.Question)))
		b.WriteString("\n\n")

		speaker := "Assistant"
		if m.Model != "" {
			speaker = m.Model
		}
		b.WriteString(v.styles.Speaker.Render(speaker))
		b.WriteString("\n")
		answer := m.Answer
		if answer == "" && v.processing && i == len(v.messages)-1 {
			answer = v.styles.Muted.Render("...")
		}
		b.WriteString(v.styles.Answer.Render(wrap.Render(answer)))
		blocks = append(blocks, b.String())
	}
	return strings.Join(blocks, "\n\n")
}

// View renders the chat view.
func (v *View) View() string {
	if !v.ready {
		return "Initialising..."
	}

	sections := make([]string, 0, 8)

	header := v.styles.Title.Render("ragchat") + v.styles.Muted.Render("  "+v.session)
	sections = append(sections, header, "")

	sections = append(sections, v.transcript.View(), "")

	sections = append(sections, v.input.View())

	sections = append(sections, v.statusbar.View())

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.ready = true

	v.input.SetWidth(width)
	v.statusbar.SetWidth(width)
	v.transcript.Width = width
	v.transcript.Height = max(height-chromeHeight, 1)
	v.transcript.SetContent(v.renderTranscript())
}

// LastAnswer returns the latest non-empty answer in the session.
func (v *View) LastAnswer() string {
	for i := len(v.messages) - 1; i >= 0; i-- {
		if v.messages[i].Answer != "" {
			return v.messages[i].Answer
		}
	}
	return ""
}

// Session returns the displayed session name.
func (v *View) Session() string {
	return v.session
}

// Messages returns the displayed messages.
func (v *View) Messages() []domain.Message {
	return v.messages
}

// Processing reports whether the displayed session is streaming.
func (v *View) Processing() bool {
	return v.processing
}

// Input returns the question input, for focus control.
func (v *View) Input() *input.ChatInput {
	return v.input
}

// StatusBar returns the status bar.
func (v *View) StatusBar() *status.Bar {
	return v.statusbar
}

// Err returns the last error shown.
func (v *View) Err() error {
	return v.err
}

// Ready returns whether the view is ready to render.
func (v *View) Ready() bool {
	return v.ready
}

// Width returns the current width.
func (v *View) Width() int {
	return v.width
}

// Height returns the current height.
func (v *View) Height() int {
	return v.height
}
