// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
// These must be provided for the application to function:
//
//   - CorpusReader: Scans and watches a corpus folder for documents
//   - TextPreprocessor: Normalises document text before embedding
//   - IndexStore: Atomic persistence of index artifacts (matrix, texts, flat index)
//   - SessionRepository: Conversation persistence
//   - ConfigStore: Application configuration
//   - PromptStore: Prompt templates
//
// # Optional Interfaces
//
// These can be nil - the application degrades gracefully:
//
//   - EmbeddingService: Generates vector embeddings. Without it, index builds and retrieval are disabled.
//   - LLMService: Chat completions. Without it, chat and query composition are disabled.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter, connector, or postprocessor package
package driven
