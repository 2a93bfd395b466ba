package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/custodia-labs/ragchat/internal/core/domain"
	"github.com/custodia-labs/ragchat/internal/core/ports/driven"
	"github.com/custodia-labs/ragchat/internal/core/ports/driving"
	"github.com/custodia-labs/ragchat/internal/logger"
)

// Ensure QueryComposer implements the interface.
var _ driving.QueryComposer = (*QueryComposer)(nil)

// Generation parameters for query composition.
const (
	composeMaxTokens   = 1000
	composeTemperature = 0.3
)

// QueryComposer builds retrieval queries and completion prompts.
type QueryComposer struct {
	llm     driven.LLMService
	prompts driven.PromptStore
	model   string
}

// NewQueryComposer creates a composer. An empty model means domain.DefaultQueryModel.
// llm may be nil, in which case Compose always returns "".
func NewQueryComposer(llm driven.LLMService, prompts driven.PromptStore, model string) *QueryComposer {
	if model == "" {
		model = domain.DefaultQueryModel
	}
	return &QueryComposer{llm: llm, prompts: prompts, model: model}
}

// Compose asks the model for a single-line search query.
func (c *QueryComposer) Compose(ctx context.Context, history []domain.Message, latest string) string {
	if c.llm == nil {
		return ""
	}
	tmpl, err := c.prompts.Load(driven.PromptQueryCompose)
	if err != nil {
		logger.Warn("query compose: %v", err)
		return ""
	}

	prompt := fmt.Sprintf(tmpl, formatHistory(history), latest)
	out, err := c.llm.Complete(ctx, driven.CompletionRequest{
		Model:    c.model,
		Messages: []driven.ChatMessage{{Role: driven.RoleUser, Content: prompt}},
		Params:   domain.ModelParams{Temperature: composeTemperature, MaxTokens: composeMaxTokens},
	})
	if err != nil {
		logger.Warn("query compose: %v", err)
		return ""
	}

	query := strings.Join(strings.Fields(out), " ")
	if query == "" {
		logger.Warn("query compose: model returned an empty query")
		return ""
	}
	logger.Debug("composed query: %s", query)
	return query
}

// BuildPrompt assembles the system instruction, the optional context
// message, and every turn as a user/assistant pair.
func (c *QueryComposer) BuildPrompt(history []domain.Message, contextDocs string) ([]driven.ChatMessage, error) {
	system, err := c.prompts.Load(driven.PromptChatSystem)
	if err != nil {
		return nil, fmt.Errorf("load system prompt: %w", err)
	}

	msgs := make([]driven.ChatMessage, 0, 2+2*len(history))
	msgs = append(msgs, driven.ChatMessage{Role: driven.RoleSystem, Content: system})

	if contextDocs != "" {
		prefix, err := c.prompts.Load(driven.PromptContextPrefix)
		if err != nil {
			return nil, fmt.Errorf("load context prompt: %w", err)
		}
		msgs = append(msgs, driven.ChatMessage{Role: driven.RoleSystem, Content: prefix + "\n\n" + contextDocs})
	}

	for i, m := range history {
		msgs = append(msgs, driven.ChatMessage{Role: driven.RoleUser, Content: m.Question})
		if i == len(history)-1 {
			break
		}
		msgs = append(msgs, driven.ChatMessage{Role: driven.RoleAssistant, Content: m.Answer})
	}
	return msgs, nil
}

// formatHistory renders prior turns for the compose prompt.
func formatHistory(history []domain.Message) string {
	var b strings.Builder
	for _, m := range history {
		fmt.Fprintf(&b, "User: %s\n", m.Question)
		if m.Answer != "" {
			fmt.Fprintf(&b, "Assistant: %s\n", m.Answer)
		}
	}
	return strings.TrimRight(b.String(), "\n")
}
