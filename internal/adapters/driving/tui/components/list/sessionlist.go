// Package list provides list display components for the TUI.
package list

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/ragchat/internal/adapters/driving/tui/styles"
)

// Item is one session row.
type Item struct {
	Name     string
	Messages int
	Current  bool
}

// SessionList displays chat sessions in a navigable list.
type SessionList struct {
	items    []Item
	selected int
	styles   *styles.Styles
	width    int
	height   int
}

// NewSessionList creates a new session list component.
func NewSessionList(s *styles.Styles) *SessionList {
	if s == nil {
		s = styles.DefaultStyles()
	}

	return &SessionList{
		items:    nil,
		selected: 0,
		styles:   s,
		width:    80,
		height:   10,
	}
}

// Init initialises the session list.
func (l *SessionList) Init() tea.Cmd {
	return nil
}

// Update handles list navigation messages.
func (l *SessionList) Update(msg tea.Msg) (*SessionList, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		//nolint:exhaustive // handling only relevant key types
		switch msg.Type {
		case tea.KeyUp:
			l.MoveUp()
		case tea.KeyDown:
			l.MoveDown()
		default:
			// Handle other keys
		}
		switch msg.String() {
		case "k":
			l.MoveUp()
		case "j":
			l.MoveDown()
		}
	}
	return l, nil
}

// View renders the session list.
func (l *SessionList) View() string {
	if len(l.items) == 0 {
		return l.styles.Muted.Render("No sessions")
	}

	lines := make([]string, 0, len(l.items)+2)

	header := l.styles.Subtitle.Render(fmt.Sprintf("Sessions (%d)", len(l.items)))
	lines = append(lines, header, "")

	visibleCount := l.height - 4
	if visibleCount < 1 {
		visibleCount = 1
	}

	start := 0
	if l.selected >= visibleCount {
		start = l.selected - visibleCount + 1
	}
	end := start + visibleCount
	if end > len(l.items) {
		end = len(l.items)
	}

	for i := start; i < end; i++ {
		lines = append(lines, l.renderItem(i, l.items[i]))
	}

	return strings.Join(lines, "\n")
}

func (l *SessionList) renderItem(index int, item Item) string {
	indicator := "  "
	if index == l.selected {
		indicator = "> "
	}
	marker := " "
	if item.Current {
		marker = "*"
	}

	name := item.Name
	maxNameLen := l.width - 24
	if maxNameLen < 10 {
		maxNameLen = 10
	}
	if r := []rune(name); len(r) > maxNameLen {
		name = string(r[:maxNameLen-3]) + "..."
	}

	count := fmt.Sprintf("%d messages", item.Messages)
	if index == l.selected {
		return l.styles.Selected.Render(fmt.Sprintf("%s%s %-*s  %s", indicator, marker, maxNameLen, name, count))
	}
	return l.styles.Normal.Render(fmt.Sprintf("%s%s %-*s  ", indicator, marker, maxNameLen, name)) +
		l.styles.Muted.Render(count)
}

// SetItems replaces the rows, keeping the selection on the current session.
func (l *SessionList) SetItems(items []Item) {
	l.items = items
	l.selected = 0
	for i, it := range items {
		if it.Current {
			l.selected = i
			break
		}
	}
}

// Items returns the current rows.
func (l *SessionList) Items() []Item {
	return l.items
}

// Selected returns the index of the selected row.
func (l *SessionList) Selected() int {
	return l.selected
}

// SetSelected sets the selected index.
func (l *SessionList) SetSelected(index int) {
	if index >= 0 && index < len(l.items) {
		l.selected = index
	}
}

// SelectedName returns the selected session name, or "" if none.
func (l *SessionList) SelectedName() string {
	if len(l.items) == 0 || l.selected < 0 || l.selected >= len(l.items) {
		return ""
	}
	return l.items[l.selected].Name
}

// MoveUp moves selection up.
func (l *SessionList) MoveUp() {
	if l.selected > 0 {
		l.selected--
	}
}

// MoveDown moves selection down.
func (l *SessionList) MoveDown() {
	if l.selected < len(l.items)-1 {
		l.selected++
	}
}

// SetDimensions sets the component dimensions.
func (l *SessionList) SetDimensions(width, height int) {
	l.width = width
	l.height = height
}

// Width returns the current width.
func (l *SessionList) Width() int {
	return l.width
}

// Height returns the current height.
func (l *SessionList) Height() int {
	return l.height
}

// Count returns the number of rows.
func (l *SessionList) Count() int {
	return len(l.items)
}

// IsEmpty returns whether the list is empty.
func (l *SessionList) IsEmpty() bool {
	return len(l.items) == 0
}
