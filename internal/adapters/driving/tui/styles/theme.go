// Package styles provides the colour palette and lipgloss styles for the chat UI.
package styles

import (
	"github.com/charmbracelet/lipgloss"
)

// Palette names the colours the chat UI is drawn with.
type Palette struct {
	// Accent marks titles, speaker labels and the selection.
	Accent lipgloss.Color

	// User colours the user's questions.
	User lipgloss.Color

	// Text is the answer and body text colour.
	Text lipgloss.Color

	// Muted is for hints, timestamps and the status bar.
	Muted lipgloss.Color

	// Surface is the status bar background.
	Surface lipgloss.Color

	// Border outlines the input box.
	Border lipgloss.Color

	Success lipgloss.Color
	Warning lipgloss.Color
	Error   lipgloss.Color
}

// DefaultPalette returns the dark palette.
func DefaultPalette() Palette {
	return Palette{
		Accent:  lipgloss.Color("#7C3AED"),
		User:    lipgloss.Color("#06B6D4"),
		Text:    lipgloss.Color("#CDD6F4"),
		Muted:   lipgloss.Color("#6C7086"),
		Surface: lipgloss.Color("#181825"),
		Border:  lipgloss.Color("#45475A"),
		Success: lipgloss.Color("#A6E3A1"),
		Warning: lipgloss.Color("#F9E2AF"),
		Error:   lipgloss.Color("#F38BA8"),
	}
}

// Styles are the rendered styles shared by every view.
type Styles struct {
	palette Palette

	Title    lipgloss.Style
	Subtitle lipgloss.Style
	Normal   lipgloss.Style
	Muted    lipgloss.Style
	Selected lipgloss.Style
	Error    lipgloss.Style
	Success  lipgloss.Style
	Warning  lipgloss.Style

	// InputField frames the question input.
	InputField lipgloss.Style

	// StatusBar is the bottom line with model, session and key hints.
	StatusBar lipgloss.Style

	// Question and Answer render the two halves of a turn in the transcript.
	Question lipgloss.Style
	Answer   lipgloss.Style

	// Speaker renders the "You" and model labels above each half.
	Speaker lipgloss.Style
}

// NewStyles builds styles from p.
func NewStyles(p Palette) *Styles {
	return &Styles{
		palette: p,

		Title:    lipgloss.NewStyle().Bold(true).Foreground(p.Accent),
		Subtitle: lipgloss.NewStyle().Bold(true).Foreground(p.User),
		Normal:   lipgloss.NewStyle().Foreground(p.Text),
		Muted:    lipgloss.NewStyle().Foreground(p.Muted),
		Selected: lipgloss.NewStyle().Bold(true).Foreground(p.Text).Background(p.Accent),
		Error:    lipgloss.NewStyle().Foreground(p.Error),
		Success:  lipgloss.NewStyle().Foreground(p.Success),
		Warning:  lipgloss.NewStyle().Foreground(p.Warning),

		InputField: lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(p.Border).
			Padding(0, 1),

		StatusBar: lipgloss.NewStyle().
			Foreground(p.Muted).
			Background(p.Surface).
			Padding(0, 1),

		Question: lipgloss.NewStyle().Foreground(p.User),
		Answer:   lipgloss.NewStyle().Foreground(p.Text).PaddingLeft(2),
		Speaker:  lipgloss.NewStyle().Bold(true).Foreground(p.Accent),
	}
}

// DefaultStyles returns styles for the default palette.
func DefaultStyles() *Styles {
	return NewStyles(DefaultPalette())
}

// Palette returns the colours the styles were built from.
func (s *Styles) Palette() Palette {
	return s.palette
}
