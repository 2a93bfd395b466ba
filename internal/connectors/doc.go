// Package connectors provides readers for document sources that feed
// index builds. Each connector knows how to list and read documents from a
// specific source type and, where the source supports it, report changes.
package connectors
