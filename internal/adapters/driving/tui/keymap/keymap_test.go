package keymap

import (
	"testing"

	"github.com/charmbracelet/bubbles/key"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultKeyMap(t *testing.T) {
	km := DefaultKeyMap()

	require.NotNil(t, km)
}

func TestDefaultKeyMap_Bindings(t *testing.T) {
	km := DefaultKeyMap()

	tests := []struct {
		name    string
		binding key.Binding
		keys    []string
	}{
		{"quit", km.Quit, []string{"ctrl+c"}},
		{"help", km.Help, []string{"f1"}},
		{"back", km.Back, []string{"esc"}},
		{"send", km.Send, []string{"enter"}},
		{"stop", km.Stop, []string{"esc"}},
		{"sessions", km.Sessions, []string{"ctrl+o"}},
		{"copy", km.Copy, []string{"ctrl+y"}},
		{"scroll up", km.ScrollUp, []string{"pgup"}},
		{"scroll down", km.ScrollDown, []string{"pgdown"}},
		{"up", km.Up, []string{"up", "k"}},
		{"down", km.Down, []string{"down", "j"}},
		{"select", km.Select, []string{"enter"}},
		{"new", km.New, []string{"n"}},
		{"delete", km.Delete, []string{"d"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.keys, tt.binding.Keys())
			assert.NotEmpty(t, tt.binding.Help().Desc)
		})
	}
}

func TestDefaultKeyMap_TypingKeysFreeInChat(t *testing.T) {
	km := DefaultKeyMap()

	// Printable keys must reach the question input.
	for _, b := range []key.Binding{km.Quit, km.Help, km.Send, km.Stop, km.Sessions, km.Copy} {
		for _, k := range b.Keys() {
			assert.Greater(t, len(k), 1, "binding %q would swallow typed text", k)
		}
	}
}

func TestShortHelp(t *testing.T) {
	km := DefaultKeyMap()

	bindings := km.ShortHelp()

	require.Len(t, bindings, 5)
	assert.Equal(t, km.Send.Keys(), bindings[0].Keys())
	assert.Equal(t, km.Quit.Keys(), bindings[4].Keys())
}

func TestStreamingHelp(t *testing.T) {
	km := DefaultKeyMap()

	bindings := km.StreamingHelp()

	require.NotEmpty(t, bindings)
	assert.Equal(t, km.Stop.Keys(), bindings[0].Keys())
}

func TestSessionsHelp(t *testing.T) {
	km := DefaultKeyMap()

	bindings := km.SessionsHelp()

	require.Len(t, bindings, 4)
	assert.Equal(t, km.Back.Keys(), bindings[3].Keys())
}

func TestFullHelp(t *testing.T) {
	km := DefaultKeyMap()

	groups := km.FullHelp()

	require.Len(t, groups, 4)
	for _, g := range groups {
		assert.NotEmpty(t, g)
	}
}

func TestMatches(t *testing.T) {
	km := DefaultKeyMap()

	assert.True(t, Matches("ctrl+o", km.Sessions))
	assert.True(t, Matches("k", km.Up))
	assert.False(t, Matches("x", km.Up))
	assert.False(t, Matches("", km.Send))
}
