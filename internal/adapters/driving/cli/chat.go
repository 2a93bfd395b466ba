package cli

import (
	"bufio"
	"errors"
	"os"
	"os/signal"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var chatPlain bool

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Start an interactive chat",
	Long: `Starts an interactive chat with your documents.

On a terminal the full-screen chat UI is launched. When input is piped, or
with --plain, questions are read line by line and answers are streamed to
standard output.

Line mode commands:
  /sessions      List sessions
  /new NAME      Create and select a session
  /select NAME   Select a session
  /quit          Exit`,
	RunE: runChat,
}

func init() {
	chatCmd.Flags().BoolVar(&chatPlain, "plain", false, "use line mode even on a terminal")
	rootCmd.AddCommand(chatCmd)
}

func runChat(cmd *cobra.Command, args []string) error {
	if chatService == nil || conversationStore == nil {
		return errors.New("chat service not configured")
	}

	if !chatPlain && cmd.InOrStdin() == os.Stdin && term.IsTerminal(int(os.Stdin.Fd())) {
		return runTUI(cmd, args)
	}
	return runChatLines(cmd)
}

func runChatLines(cmd *cobra.Command) error {
	out := cmd.OutOrStdout()
	scanner := bufio.NewScanner(cmd.InOrStdin())

	cmd.Printf("Session: %s (type /quit to exit)\n", conversationStore.Current())
	for {
		cmd.Print("> ")
		if !scanner.Scan() {
			cmd.Println()
			return scanner.Err()
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		if strings.HasPrefix(line, "/") {
			quit, err := runChatCommand(cmd, line)
			if err != nil {
				cmd.Printf("Error: %v\n", err)
			}
			if quit {
				return nil
			}
			continue
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
		_, err := streamAnswer(ctx, out, conversationStore.Current(), line)
		stop()
		if err != nil {
			cmd.Printf("Error: %v\n", err)
		}
		if cmd.Context().Err() != nil {
			return nil
		}
	}
}

func runChatCommand(cmd *cobra.Command, line string) (bool, error) {
	name, arg, _ := strings.Cut(strings.TrimPrefix(line, "/"), " ")
	arg = strings.TrimSpace(arg)

	switch name {
	case "quit", "exit":
		return true, nil
	case "sessions":
		current := conversationStore.Current()
		for _, s := range conversationStore.Sessions() {
			marker := " "
			if s == current {
				marker = "*"
			}
			cmd.Printf(" %s %s\n", marker, s)
		}
		return false, nil
	case "new":
		if err := conversationStore.CreateSession(arg); err != nil {
			return false, err
		}
		cmd.Printf("Session: %s\n", arg)
		return false, nil
	case "select":
		if err := conversationStore.SelectSession(arg); err != nil {
			return false, err
		}
		cmd.Printf("Session: %s\n", arg)
		return false, nil
	default:
		return false, errors.New("unknown command: /" + name)
	}
}
