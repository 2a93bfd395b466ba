package driven

import (
	"context"

	"github.com/custodia-labs/ragchat/internal/core/domain"
)

// Chat message roles.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// LLMService provides chat completions, optionally streamed.
// This is an optional service - when nil, chat and query composition are disabled.
//
// Implementations may include:
//   - OpenAI (GPT-4, GPT-3.5)
//   - Ollama (local models via the OpenAI-compatible endpoint)
//   - Any other OpenAI-compatible inference server
type LLMService interface {
	// Complete returns a single, non-streamed completion.
	Complete(ctx context.Context, req CompletionRequest) (string, error)

	// Stream starts a streamed completion. Cancelling ctx aborts the
	// underlying request.
	Stream(ctx context.Context, req CompletionRequest) (ChatStream, error)

	// ListModels returns the model identifiers available from the provider.
	ListModels(ctx context.Context) ([]string, error)

	// ModelName returns the default chat model.
	ModelName() string

	// Ping validates the service is reachable by making a lightweight test request.
	Ping(ctx context.Context) error

	// Close releases resources.
	Close() error
}

// ChatStream yields incremental completion text.
type ChatStream interface {
	// Recv returns the next text chunk. It returns io.EOF once the stream
	// has completed normally. Empty chunks may be returned.
	Recv() (string, error)

	// Close releases the stream.
	Close() error
}

// CompletionRequest is a model call.
type CompletionRequest struct {
	// Model is the model identifier. Empty means the service default.
	Model string

	// Messages are the role-tagged prompt messages, in order.
	Messages []ChatMessage

	// Params are the generation parameters.
	Params domain.ModelParams
}

// ChatMessage represents a single message in a conversation.
type ChatMessage struct {
	// Role is one of "system", "user", or "assistant".
	Role string

	// Content is the message text.
	Content string
}
