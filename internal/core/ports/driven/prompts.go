package driven

// PromptStore provides access to LLM prompt templates.
// Implementations may load prompts from files, embed them in the binary,
// or fetch them from a remote configuration service.
type PromptStore interface {
	// Load returns the prompt template for the given name.
	// Returns the prompt content and any error encountered.
	// If the prompt is not found, implementations should return a sensible default
	// or an error, depending on whether the prompt is required.
	Load(name string) (string, error)

	// Reload clears any cached prompts, forcing fresh loads on next access.
	// This is useful when prompts may have been edited on disk.
	Reload()
}

// Well-known prompt names used throughout the application.
// These constants define the contract between prompt consumers and providers.
const (
	// PromptQueryCompose turns conversation history into a retrieval query.
	// The prompt template expects two %s placeholders: history, then latest question.
	PromptQueryCompose = "query_compose"

	// PromptChatSystem is the system instruction sent first on every turn.
	// This prompt has no format placeholders.
	PromptChatSystem = "chat_system"

	// PromptContextPrefix precedes the retrieved documents in the context system message.
	// This prompt has no format placeholders; the documents are appended directly.
	PromptContextPrefix = "context_prefix"
)
