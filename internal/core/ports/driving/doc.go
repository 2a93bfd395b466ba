// Package driving holds the ports the CLI, TUI, HTTP API and MCP server call:
// indexing, retrieval, conversations, chat turns and settings.
// internal/core/services implements them.
package driving
