package mcp

import (
	"github.com/custodia-labs/ragchat/internal/core/ports/driving"
)

// Ports aggregates all driving port interfaces required by the MCP server.
// This provides a single injection point for dependency injection.
type Ports struct {
	// Retriever finds passages in an index.
	Retriever driving.Retriever

	// Index lists built indexes and their files.
	Index driving.IndexService

	// Settings supplies the default index name and k.
	Settings driving.SettingsService
}

// Validate ensures all required ports are set.
// Returns an error if any required port is nil.
func (p *Ports) Validate() error {
	if p.Retriever == nil {
		return ErrMissingRetriever
	}
	// Index and Settings are optional
	return nil
}
