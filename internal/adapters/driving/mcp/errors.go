// Package mcp provides an MCP (Model Context Protocol) server adapter for ragchat.
// It lets AI assistants retrieve passages from ragchat's local document indexes.
package mcp

import "errors"

// ErrMissingRetriever is returned when the retriever is not provided.
var ErrMissingRetriever = errors.New("mcp: retriever is required")
