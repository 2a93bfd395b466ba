package driving

import (
	"context"

	"github.com/custodia-labs/ragchat/internal/core/domain"
	"github.com/custodia-labs/ragchat/internal/core/ports/driven"
)

// QueryComposer turns a conversation into retrieval queries and completion prompts.
type QueryComposer interface {
	// Compose asks the model for a search query covering history and latest.
	// Any failure yields an empty string.
	Compose(ctx context.Context, history []domain.Message, latest string) string

	// BuildPrompt assembles the completion messages for the session's turns.
	// The answer of the final turn is omitted. contextDocs may be empty.
	BuildPrompt(history []domain.Message, contextDocs string) ([]driven.ChatMessage, error)
}
