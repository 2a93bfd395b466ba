// Package services implements the driving port interfaces.
// Services contain the core business logic and orchestrate
// calls to driven ports (adapters).
//
// The RAG pipeline lives here: Indexer builds named indexes, Retriever
// queries them, QueryComposer shapes prompts, and ChatCoordinator streams
// answers into the ConversationStore.
package services
