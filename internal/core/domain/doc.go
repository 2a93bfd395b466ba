// Package domain defines the core business entities for ragchat.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - Document: A source file read from the corpus folder
//   - IndexManifest: Metadata describing one built vector index version
//   - ChatSession / Message: Named conversation threads of question/answer pairs
//   - StoreEvent: Change notifications emitted by the conversation store
//   - AppSettings / ModelParams: Validated runtime configuration
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
