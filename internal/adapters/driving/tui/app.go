package tui

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/ragchat/internal/adapters/driving/tui/components/list"
	"github.com/custodia-labs/ragchat/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/ragchat/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/ragchat/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/ragchat/internal/adapters/driving/tui/views/chat"
	"github.com/custodia-labs/ragchat/internal/adapters/driving/tui/views/sessions"
	"github.com/custodia-labs/ragchat/internal/core/domain"
)

// eventBuffer is the store subscription buffer. Answer deltas arrive in bursts.
const eventBuffer = 256

// App is the main TUI application following the Elm architecture.
// It implements tea.Model for use with Bubbletea.
type App struct {
	// ports provides access to core services via driving ports.
	ports *Ports

	// ctx is the context for cancellation.
	ctx context.Context

	// styles holds the TUI styles.
	styles *styles.Styles

	keymap *keymap.KeyMap

	// chatView is the conversation view.
	chatView *chat.View

	// sessionsView is the session picker.
	sessionsView *sessions.View

	// currentView tracks which view is active.
	currentView messages.ViewType

	// events delivers conversation store changes.
	events      <-chan domain.StoreEvent
	unsubscribe func()

	// copy writes text to the clipboard.
	copy func(string) error

	// err holds the last error that occurred.
	err error

	// width and height are terminal dimensions.
	width  int
	height int

	// ready indicates if the app has initialised.
	ready bool
}

// Ensure App implements tea.Model.
var _ tea.Model = (*App)(nil)

// NewApp creates a new TUI application with the given ports.
// The app subscribes to the conversation store; call Close when done.
func NewApp(ports *Ports) (*App, error) {
	if err := ports.Validate(); err != nil {
		return nil, fmt.Errorf("creating app: %w", err)
	}

	s := styles.DefaultStyles()
	km := keymap.DefaultKeyMap()
	events, unsubscribe := ports.Conversation.Subscribe(eventBuffer)

	a := &App{
		ports:        ports,
		ctx:          context.Background(),
		styles:       s,
		keymap:       km,
		chatView:     chat.NewView(s, km),
		sessionsView: sessions.NewView(s, km),
		currentView:  messages.ViewChat,
		events:       events,
		unsubscribe:  unsubscribe,
		copy:         copyToClipboard,
	}
	a.chatView.SetModel(a.modelName())
	a.refresh()
	return a, nil
}

// WithContext sets the context for the app.
func (a *App) WithContext(ctx context.Context) *App {
	a.ctx = ctx
	return a
}

// Close stops any streaming answer in the current session and ends the subscription.
func (a *App) Close() {
	a.ports.Chat.Stop(a.ports.Conversation.Current())
	if a.unsubscribe != nil {
		a.unsubscribe()
		a.unsubscribe = nil
	}
}

// Init implements tea.Model.
// It runs initial commands when the program starts.
func (a *App) Init() tea.Cmd {
	return tea.Batch(
		tea.SetWindowTitle("ragchat"),
		a.chatView.Init(),
		a.waitForEvent(),
	)
}

// waitForEvent reads the next store event.
func (a *App) waitForEvent() tea.Cmd {
	events := a.events
	return func() tea.Msg {
		ev, ok := <-events
		if !ok {
			return messages.StoreClosed{}
		}
		return messages.StoreChanged{Event: ev}
	}
}

// Update implements tea.Model.
// It handles messages and updates the model state.
//
//nolint:gocognit,gocyclo,funlen // central message handler requires complexity
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.SetDimensions(msg.Width, msg.Height)
		return a, nil

	case tea.KeyMsg:
		return a.handleKeyMsg(msg)

	case messages.ViewChanged:
		a.currentView = msg.View
		switch msg.View {
		case messages.ViewSessions:
			a.sessionsView.Reset()
			a.refreshSessions()
			a.chatView.Input().Blur()
		case messages.ViewChat:
			return a, a.chatView.Input().Focus()
		case messages.ViewHelp:
			a.chatView.Input().Blur()
		}
		return a, nil

	case messages.StoreChanged:
		a.refresh()
		if a.currentView == messages.ViewSessions {
			a.refreshSessions()
		}
		return a, a.waitForEvent()

	case messages.StoreClosed:
		return a, nil

	case messages.QuestionSubmitted:
		return a, a.submit(msg.Session, msg.Question)

	case messages.AnswerCompleted:
		if msg.Err != nil {
			a.err = msg.Err
		}
		a.chatView, cmd = a.chatView.Update(msg)
		return a, cmd

	case messages.StopRequested:
		a.ports.Chat.Stop(msg.Session)
		return a, nil

	case messages.SessionSelectRequested:
		if err := a.ports.Conversation.SelectSession(msg.Name); err != nil {
			a.setError(err)
		}
		a.refresh()
		return a.switchTo(messages.ViewChat)

	case messages.SessionCreateRequested:
		if err := a.ports.Conversation.CreateSession(msg.Name); err != nil {
			a.err = err
			a.sessionsView.SetMessage(err.Error())
			return a, nil
		}
		a.refresh()
		return a.switchTo(messages.ViewChat)

	case messages.SessionDeleteRequested:
		if err := a.ports.Conversation.DeleteSession(msg.Name); err != nil {
			a.err = err
			a.sessionsView.SetMessage(err.Error())
		} else {
			a.sessionsView.SetMessage("Deleted " + msg.Name)
		}
		a.refresh()
		a.refreshSessions()
		return a, nil

	case messages.AnswerCopied:
		if msg.Err != nil {
			a.setError(msg.Err)
		} else {
			a.chatView.SetMessage("Copied to clipboard")
		}
		return a, nil

	case messages.ErrorOccurred:
		a.setError(msg.Err)
		return a, nil

	case messages.Quit:
		a.Close()
		return a, tea.Quit
	}

	// Forward other messages to active view
	switch a.currentView {
	case messages.ViewChat:
		a.chatView, cmd = a.chatView.Update(msg)
	case messages.ViewSessions:
		a.sessionsView, cmd = a.sessionsView.Update(msg)
	case messages.ViewHelp:
		// Help view doesn't need to handle other messages
	}

	return a, cmd
}

func (a *App) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	keyStr := msg.String()
	var cmd tea.Cmd

	// Global quit with ctrl+c
	if keymap.Matches(keyStr, a.keymap.Quit) {
		a.Close()
		return a, tea.Quit
	}

	switch a.currentView {
	case messages.ViewChat:
		switch {
		case keymap.Matches(keyStr, a.keymap.Help):
			return a.switchTo(messages.ViewHelp)
		case keymap.Matches(keyStr, a.keymap.Sessions):
			return a.switchTo(messages.ViewSessions)
		case keymap.Matches(keyStr, a.keymap.Copy):
			return a, a.copyAnswer()
		}
		a.chatView, cmd = a.chatView.Update(msg)
		return a, cmd

	case messages.ViewSessions:
		a.sessionsView, cmd = a.sessionsView.Update(msg)
		return a, cmd

	case messages.ViewHelp:
		// Any key closes help
		return a.switchTo(messages.ViewChat)
	}
	return a, nil
}

func (a *App) switchTo(view messages.ViewType) (tea.Model, tea.Cmd) {
	return a.Update(messages.ViewChanged{View: view})
}

// submit streams the answer in the background. Progress arrives as store events.
func (a *App) submit(session, question string) tea.Cmd {
	chatService := a.ports.Chat
	ctx := a.ctx
	return func() tea.Msg {
		m, err := chatService.Submit(ctx, session, question)
		return messages.AnswerCompleted{Session: session, Message: m, Err: err}
	}
}

func (a *App) copyAnswer() tea.Cmd {
	answer := a.chatView.LastAnswer()
	copyFn := a.copy
	return func() tea.Msg {
		if answer == "" {
			return messages.AnswerCopied{Err: ErrNothingToCopy}
		}
		return messages.AnswerCopied{Err: copyFn(answer)}
	}
}

func (a *App) setError(err error) {
	a.err = err
	a.chatView.SetError(err)
}

// refresh pulls the current conversation snapshot into the chat view.
func (a *App) refresh() {
	a.chatView.SetConversation(a.ports.Conversation.View())
}

func (a *App) refreshSessions() {
	conv := a.ports.Conversation
	current := conv.Current()
	names := conv.Sessions()
	items := make([]list.Item, 0, len(names))
	for _, name := range names {
		msgs, err := conv.Messages(name)
		if err != nil {
			continue
		}
		items = append(items, list.Item{Name: name, Messages: len(msgs), Current: name == current})
	}
	a.sessionsView.SetSessions(items)
}

func (a *App) modelName() string {
	if a.ports.Settings == nil {
		return ""
	}
	s, err := a.ports.Settings.Get()
	if err != nil {
		return ""
	}
	return s.LLM.Model
}

// View implements tea.Model.
// It renders the current view as a string.
func (a *App) View() string {
	if !a.ready {
		return "Initialising..."
	}

	switch a.currentView {
	case messages.ViewChat:
		return a.chatView.View()
	case messages.ViewSessions:
		return a.sessionsView.View()
	case messages.ViewHelp:
		return a.viewHelp()
	default:
		return a.chatView.View()
	}
}

// viewHelp renders the help view.
func (a *App) viewHelp() string {
	return a.styles.Title.Render("Help") + `

Chat:
  enter       Send question
  esc         Stop the streaming answer
  pgup/pgdn   Scroll the transcript
  ctrl+y      Copy the latest answer
  ctrl+o      Sessions
  f1          Help
  ctrl+c      Quit

Sessions:
  j/k, ↑/↓    Navigate
  enter       Switch to session
  n           New session
  d           Delete session
  esc         Back to chat

` + a.styles.Muted.Render("[any key] back to chat")
}

// CurrentView returns the current view type.
func (a *App) CurrentView() messages.ViewType {
	return a.currentView
}

// ChatView returns the conversation view.
func (a *App) ChatView() *chat.View {
	return a.chatView
}

// SessionsView returns the session picker view.
func (a *App) SessionsView() *sessions.View {
	return a.sessionsView
}

// Err returns the last error that occurred.
func (a *App) Err() error {
	return a.err
}

// Ready returns whether the app has been initialised.
func (a *App) Ready() bool {
	return a.ready
}

// SetDimensions sets the terminal dimensions.
func (a *App) SetDimensions(width, height int) {
	a.width = width
	a.height = height
	a.ready = true
	a.chatView.SetDimensions(width, height)
	a.sessionsView.SetDimensions(width, height)
}
