// Package sessions provides the session picker view for the TUI.
package sessions

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/ragchat/internal/adapters/driving/tui/components/input"
	"github.com/custodia-labs/ragchat/internal/adapters/driving/tui/components/list"
	"github.com/custodia-labs/ragchat/internal/adapters/driving/tui/components/status"
	"github.com/custodia-labs/ragchat/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/ragchat/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/ragchat/internal/adapters/driving/tui/styles"
)

// View lists sessions and lets the user switch, create or delete them.
type View struct {
	styles    *styles.Styles
	keymap    *keymap.KeyMap
	list      *list.SessionList
	nameInput *input.ChatInput
	statusbar *status.Bar

	// naming is true while a new session name is being typed.
	naming bool

	width  int
	height int
	ready  bool
}

// NewView creates a new sessions view.
func NewView(s *styles.Styles, km *keymap.KeyMap) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}

	nameInput := input.NewChatInput(s)
	nameInput.SetLabel("Name: ")
	nameInput.SetPlaceholder("New session name...")
	nameInput.Blur()

	bar := status.NewBar(s, km)
	bar.SetState(status.StateSessions)

	return &View{
		styles:    s,
		keymap:    km,
		list:      list.NewSessionList(s),
		nameInput: nameInput,
		statusbar: bar,
		width:     80,
		height:    24,
	}
}

// Init initialises the view.
func (v *View) Init() tea.Cmd {
	return nil
}

// Reset leaves naming mode and clears transient messages.
func (v *View) Reset() {
	v.naming = false
	v.nameInput.Reset()
	v.nameInput.Blur()
	v.statusbar.SetMessage("")
}

// SetSessions replaces the listed sessions.
func (v *View) SetSessions(items []list.Item) {
	v.list.SetItems(items)
}

// SetMessage shows a transient status message.
func (v *View) SetMessage(message string) {
	v.statusbar.SetMessage(message)
}

// Update handles messages for the sessions view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
		return v, nil
	case tea.KeyMsg:
		if v.naming {
			return v.handleNamingKey(msg)
		}
		return v.handleListKey(msg)
	}
	return v, nil
}

func (v *View) handleNamingKey(msg tea.KeyMsg) (*View, tea.Cmd) {
	//nolint:exhaustive // handling only relevant key types
	switch msg.Type {
	case tea.KeyEsc:
		v.Reset()
		return v, nil
	case tea.KeyEnter:
		name := v.nameInput.Question()
		if name == "" {
			return v, nil
		}
		v.Reset()
		return v, func() tea.Msg {
			return messages.SessionCreateRequested{Name: name}
		}
	}

	var cmd tea.Cmd
	v.nameInput, cmd = v.nameInput.Update(msg)
	return v, cmd
}

func (v *View) handleListKey(msg tea.KeyMsg) (*View, tea.Cmd) {
	keyStr := msg.String()

	switch {
	case keymap.Matches(keyStr, v.keymap.Back):
		return v, func() tea.Msg {
			return messages.ViewChanged{View: messages.ViewChat}
		}
	case keymap.Matches(keyStr, v.keymap.Select):
		name := v.list.SelectedName()
		if name == "" {
			return v, nil
		}
		return v, func() tea.Msg {
			return messages.SessionSelectRequested{Name: name}
		}
	case keymap.Matches(keyStr, v.keymap.New):
		v.naming = true
		return v, v.nameInput.Focus()
	case keymap.Matches(keyStr, v.keymap.Delete):
		name := v.list.SelectedName()
		if name == "" {
			return v, nil
		}
		return v, func() tea.Msg {
			return messages.SessionDeleteRequested{Name: name}
		}
	}

	var cmd tea.Cmd
	v.list, cmd = v.list.Update(msg)
	return v, cmd
}

// View renders the sessions view.
func (v *View) View() string {
	if !v.ready {
		return "Initialising..."
	}

	sections := make([]string, 0, 8)
	sections = append(sections, v.styles.Title.Render("ragchat"), "")
	sections = append(sections, v.list.View(), "")
	if v.naming {
		sections = append(sections, v.nameInput.View(), "")
	}
	sections = append(sections, v.statusbar.View())

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.ready = true

	v.list.SetDimensions(width, height-8)
	v.nameInput.SetWidth(width)
	v.statusbar.SetWidth(width)
}

// Naming reports whether a new session name is being typed.
func (v *View) Naming() bool {
	return v.naming
}

// List returns the session list component.
func (v *View) List() *list.SessionList {
	return v.list
}

// Ready returns whether the view is ready to render.
func (v *View) Ready() bool {
	return v.ready
}
