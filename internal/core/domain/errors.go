package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrAlreadyExists indicates an entity already exists.
	ErrAlreadyExists = errors.New("already exists")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrEmptyInput indicates a blank question, query or name.
	// Operations receiving it short-circuit without calling a model.
	ErrEmptyInput = errors.New("empty input")

	// ErrConfiguration indicates missing credentials, an unavailable model,
	// or an embedding dimension that does not match what was expected.
	// It is fatal for the operation and never retried.
	ErrConfiguration = errors.New("configuration error")

	// ErrIntegrity indicates persisted index artifacts disagree with each other,
	// e.g. the vector count differs from the text manifest length.
	ErrIntegrity = errors.New("index integrity error")

	// ErrUpstream indicates a model or embedding API failure.
	ErrUpstream = errors.New("upstream error")

	// ErrStreamInProgress indicates a completion is already streaming for the session.
	ErrStreamInProgress = errors.New("stream in progress")

	// ErrBuildInProgress indicates the named index is already being rebuilt.
	ErrBuildInProgress = errors.New("index build in progress")

	// ErrLLMUnavailable indicates the LLM service is not configured.
	// Chat and query composition are disabled.
	ErrLLMUnavailable = errors.New("LLM service unavailable")

	// ErrEmbeddingUnavailable indicates the embedding service is not configured.
	// Index builds and retrieval are disabled without embeddings.
	ErrEmbeddingUnavailable = errors.New("embedding service unavailable")
)
