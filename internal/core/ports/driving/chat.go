package driving

import (
	"context"

	"github.com/custodia-labs/ragchat/internal/core/domain"
)

// ChatService answers questions with streamed, retrieval-augmented completions.
type ChatService interface {
	// Submit appends the question to the session and streams the answer into it.
	// It blocks until the stream ends, fails, or is stopped.
	Submit(ctx context.Context, session, question string) (*domain.Message, error)

	// Begin claims the session and stores the question without streaming.
	// It fails with domain.ErrStreamInProgress when a turn is already running.
	// The caller must Run the returned turn exactly once.
	Begin(ctx context.Context, session, question string) (Turn, error)

	// Stop cancels the session's in-flight stream. Reports whether one was running.
	Stop(session string) bool

	// Processing reports whether a completion is streaming for the session.
	Processing(session string) bool

	// Models lists the chat models available from the provider.
	Models(ctx context.Context) ([]string, error)
}

// Turn is a question stored in its session whose answer has not streamed yet.
type Turn interface {
	// Message is the stored question with an empty answer.
	Message() domain.Message

	// Run streams the answer and releases the session. It has Submit's results.
	Run() (*domain.Message, error)
}
