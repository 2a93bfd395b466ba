package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/ragchat/internal/core/domain"
)

const askEventBuffer = 256

var askSession string

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Ask a single question",
	Long: `Submits a question to the current chat session and streams the answer.

Relevant passages are retrieved from the configured index and added to the
model's context. Press Ctrl+C to stop the answer early; the partial answer is
kept in the session.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAsk,
}

func init() {
	askCmd.Flags().StringVarP(&askSession, "session", "s", "", "session name (default current)")
	rootCmd.AddCommand(askCmd)
}

func runAsk(cmd *cobra.Command, args []string) error {
	if chatService == nil || conversationStore == nil {
		return errors.New("chat service not configured")
	}

	session := askSession
	if session == "" {
		session = conversationStore.Current()
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	_, err := streamAnswer(ctx, cmd.OutOrStdout(), session, strings.Join(args, " "))
	return err
}

// streamAnswer submits question and writes answer deltas to w as they arrive.
// Cancelling ctx stops the stream and keeps the partial answer.
func streamAnswer(ctx context.Context, w io.Writer, session, question string) (*domain.Message, error) {
	events, unsubscribe := conversationStore.Subscribe(askEventBuffer)

	var printed strings.Builder
	done := make(chan struct{})
	go func() {
		defer close(done)
		for ev := range events {
			if ev.Type == domain.EventAnswerAppended && ev.Session == session {
				printed.WriteString(ev.Delta)
				fmt.Fprint(w, ev.Delta)
			}
		}
	}()

	stopWatch := context.AfterFunc(ctx, func() {
		chatService.Stop(session)
	})
	defer stopWatch()

	msg, err := chatService.Submit(context.WithoutCancel(ctx), session, question)
	unsubscribe()
	<-done

	// Deltas dropped for a slow reader are caught up from the final answer.
	if msg != nil && strings.HasPrefix(msg.Answer, printed.String()) {
		fmt.Fprint(w, msg.Answer[printed.Len():])
	}
	fmt.Fprintln(w)

	if err != nil {
		return msg, fmt.Errorf("failed to answer: %w", err)
	}
	return msg, nil
}
