package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"runtime/debug"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/custodia-labs/ragchat/internal/adapters/driving/tui"
	"github.com/custodia-labs/ragchat/internal/logger"
)

// tuiCmd represents the tui command.
var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Launch the interactive chat UI",
	Long: `Launch the full-screen terminal chat interface.

Answers stream into the transcript as they are generated. Retrieval uses
the index configured with 'ragchat settings retrieval'.

Controls:
  Enter      - Send question
  Esc        - Stop the streaming answer / Back
  PgUp/PgDn  - Scroll the transcript
  Ctrl+O     - Sessions
  Ctrl+Y     - Copy the latest answer
  F1         - Help
  Ctrl+C     - Quit`,
	RunE: runTUI,
}

func init() {
	rootCmd.AddCommand(tuiCmd)
}

func runTUI(cmd *cobra.Command, _ []string) (err error) {
	// Add panic recovery to get stack traces
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "Panic in TUI: %v\n", r)
			fmt.Fprintf(os.Stderr, "Stack trace:\n%s\n", debug.Stack())
			err = errors.New("TUI crashed")
		}
	}()

	ports := tui.NewPorts(chatService, conversationStore, settingsService)

	// Create the TUI app
	app, err := tui.NewApp(ports)
	if err != nil {
		return fmt.Errorf("failed to create TUI: %w", err)
	}
	defer app.Close()

	// Set up context from command
	app.WithContext(cmd.Context())

	// Log lines would tear the alternate screen
	logger.SetOutput(io.Discard)
	defer logger.SetOutput(os.Stderr)

	// Create and run the bubbletea program
	p := tea.NewProgram(app, tea.WithAltScreen(), tea.WithContext(cmd.Context()))

	if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return fmt.Errorf("TUI error: %w", err)
	}

	return nil
}
