package mcp

import (
	"context"
	"errors"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/ragchat/internal/core/domain"
)

func TestExtractDocName(t *testing.T) {
	tests := []struct {
		name     string
		uri      string
		expected string
	}{
		{
			name:     "valid index files URI",
			uri:      "ragchat://indexes/reflex/files",
			expected: "reflex",
		},
		{
			name:     "invalid prefix",
			uri:      "file://indexes/reflex/files",
			expected: "",
		},
		{
			name:     "missing files suffix",
			uri:      "ragchat://indexes/reflex",
			expected: "",
		},
		{
			name:     "nested path",
			uri:      "ragchat://indexes/a/b/files",
			expected: "",
		},
		{
			name:     "empty URI",
			uri:      "",
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := extractDocName(tt.uri)
			assert.Equal(t, tt.expected, result)
		})
	}
}

// Helper to create a ReadResourceRequest with the given URI.
func makeReadResourceRequest(uri string) *mcp.ReadResourceRequest {
	return &mcp.ReadResourceRequest{
		Params: &mcp.ReadResourceParams{
			URI: uri,
		},
	}
}

func TestServer_handleIndexesResource(t *testing.T) {
	ctx := context.Background()

	t.Run("nil index service returns empty list", func(t *testing.T) {
		server, err := NewServer(&Ports{Retriever: &mockRetriever{}})
		require.NoError(t, err)

		req := makeReadResourceRequest("ragchat://indexes")
		result, err := server.handleIndexesResource(ctx, req)

		require.NoError(t, err)
		require.Len(t, result.Contents, 1)
		assert.Equal(t, "[]", result.Contents[0].Text)
	})

	t.Run("returns indexes successfully", func(t *testing.T) {
		index := &mockIndexService{manifests: []domain.IndexManifest{
			{DocName: "reflex", EmbeddingModel: "nomic-embed-text", Count: 4, SourceDir: "/home/docs"},
		}}

		server, err := NewServer(&Ports{Retriever: &mockRetriever{}, Index: index})
		require.NoError(t, err)

		req := makeReadResourceRequest("ragchat://indexes")
		result, err := server.handleIndexesResource(ctx, req)

		require.NoError(t, err)
		require.Len(t, result.Contents, 1)
		assert.Equal(t, "application/json", result.Contents[0].MIMEType)
		assert.Contains(t, result.Contents[0].Text, "reflex")
		assert.Contains(t, result.Contents[0].Text, "nomic-embed-text")
		assert.Contains(t, result.Contents[0].Text, "/home/docs")
	})

	t.Run("returns error on list failure", func(t *testing.T) {
		index := &mockIndexService{err: errors.New("disk error")}

		server, err := NewServer(&Ports{Retriever: &mockRetriever{}, Index: index})
		require.NoError(t, err)

		req := makeReadResourceRequest("ragchat://indexes")
		_, err = server.handleIndexesResource(ctx, req)

		require.Error(t, err)
		assert.Contains(t, err.Error(), "listing indexes")
	})
}

func TestServer_handleFilesResource(t *testing.T) {
	ctx := context.Background()

	t.Run("nil index service returns not found", func(t *testing.T) {
		server, err := NewServer(&Ports{Retriever: &mockRetriever{}})
		require.NoError(t, err)

		req := makeReadResourceRequest("ragchat://indexes/reflex/files")
		_, err = server.handleFilesResource(ctx, req)

		require.Error(t, err)
	})

	t.Run("invalid URI returns not found", func(t *testing.T) {
		server, err := NewServer(&Ports{Retriever: &mockRetriever{}, Index: &mockIndexService{}})
		require.NoError(t, err)

		req := makeReadResourceRequest("ragchat://invalid/uri")
		_, err = server.handleFilesResource(ctx, req)

		require.Error(t, err)
	})

	t.Run("returns files successfully", func(t *testing.T) {
		index := &mockIndexService{files: []string{"intro.md", "state.md"}}

		server, err := NewServer(&Ports{Retriever: &mockRetriever{}, Index: index})
		require.NoError(t, err)

		req := makeReadResourceRequest("ragchat://indexes/reflex/files")
		result, err := server.handleFilesResource(ctx, req)

		require.NoError(t, err)
		require.Len(t, result.Contents, 1)
		assert.Contains(t, result.Contents[0].Text, "intro.md")
		assert.Contains(t, result.Contents[0].Text, "state.md")
	})

	t.Run("handles empty file list", func(t *testing.T) {
		server, err := NewServer(&Ports{Retriever: &mockRetriever{}, Index: &mockIndexService{}})
		require.NoError(t, err)

		req := makeReadResourceRequest("ragchat://indexes/reflex/files")
		result, err := server.handleFilesResource(ctx, req)

		require.NoError(t, err)
		assert.Equal(t, "[]", result.Contents[0].Text)
	})

	t.Run("returns error on files failure", func(t *testing.T) {
		index := &mockIndexService{err: domain.ErrNotFound}

		server, err := NewServer(&Ports{Retriever: &mockRetriever{}, Index: index})
		require.NoError(t, err)

		req := makeReadResourceRequest("ragchat://indexes/reflex/files")
		_, err = server.handleFilesResource(ctx, req)

		require.Error(t, err)
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})
}
