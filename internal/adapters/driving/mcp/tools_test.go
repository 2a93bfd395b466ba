package mcp

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/ragchat/internal/core/domain"
)

func TestServer_handleRetrieve(t *testing.T) {
	ctx := context.Background()

	t.Run("returns passages", func(t *testing.T) {
		retriever := &mockRetriever{
			passages: []domain.RetrievedPassage{
				{Position: 3, Distance: 0.25, Text: "state vars hold app state"},
			},
		}

		server, err := NewServer(&Ports{Retriever: retriever})
		require.NoError(t, err)

		input := RetrieveInput{Query: "state", DocName: "docs", K: 2}
		_, output, err := server.handleRetrieve(ctx, nil, input)

		require.NoError(t, err)
		assert.Equal(t, 1, output.Count)
		assert.Equal(t, "docs", output.DocName)
		require.Len(t, output.Passages, 1)
		assert.Equal(t, 3, output.Passages[0].Position)
		assert.InDelta(t, 0.25, output.Passages[0].Distance, 1e-6)
		assert.Equal(t, "state vars hold app state", output.Passages[0].Text)
		assert.Equal(t, "state", retriever.gotQuery)
		assert.Equal(t, 2, retriever.gotK)
	})

	t.Run("defaults come from settings", func(t *testing.T) {
		retriever := &mockRetriever{}
		settings := &mockSettingsService{settings: domain.AppSettings{
			Retrieval: domain.RetrievalSettings{DocName: "handbook", K: 7},
		}}

		server, err := NewServer(&Ports{Retriever: retriever, Settings: settings})
		require.NoError(t, err)

		_, output, err := server.handleRetrieve(ctx, nil, RetrieveInput{Query: "q"})

		require.NoError(t, err)
		assert.Equal(t, "handbook", output.DocName)
		assert.Equal(t, "handbook", retriever.gotDocName)
		assert.Equal(t, 7, retriever.gotK)
	})

	t.Run("falls back to built-in defaults", func(t *testing.T) {
		retriever := &mockRetriever{}
		settings := &mockSettingsService{err: errors.New("unreadable")}

		server, err := NewServer(&Ports{Retriever: retriever, Settings: settings})
		require.NoError(t, err)

		_, _, err = server.handleRetrieve(ctx, nil, RetrieveInput{Query: "q"})

		require.NoError(t, err)
		assert.Equal(t, domain.DefaultDocName, retriever.gotDocName)
		assert.Equal(t, domain.DefaultRetrievalK, retriever.gotK)
	})

	t.Run("returns error on retrieval failure", func(t *testing.T) {
		retriever := &mockRetriever{err: domain.ErrNotFound}

		server, err := NewServer(&Ports{Retriever: retriever})
		require.NoError(t, err)

		_, _, err = server.handleRetrieve(ctx, nil, RetrieveInput{Query: "q"})

		require.Error(t, err)
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})
}

func TestServer_handleListIndexes(t *testing.T) {
	ctx := context.Background()
	built := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	t.Run("returns manifests", func(t *testing.T) {
		index := &mockIndexService{manifests: []domain.IndexManifest{
			{DocName: "reflex", Version: "v1", EmbeddingModel: "nomic-embed-text", Dimensions: 768, Count: 12, BuiltAt: built},
		}}

		server, err := NewServer(&Ports{Retriever: &mockRetriever{}, Index: index})
		require.NoError(t, err)

		_, output, err := server.handleListIndexes(ctx, nil, ListIndexesInput{})

		require.NoError(t, err)
		require.Len(t, output.Indexes, 1)
		assert.Equal(t, "reflex", output.Indexes[0].DocName)
		assert.Equal(t, 768, output.Indexes[0].Dimensions)
		assert.Equal(t, "2026-03-01T12:00:00Z", output.Indexes[0].BuiltAt)
	})

	t.Run("returns error on list failure", func(t *testing.T) {
		index := &mockIndexService{err: errors.New("disk error")}

		server, err := NewServer(&Ports{Retriever: &mockRetriever{}, Index: index})
		require.NoError(t, err)

		_, _, err = server.handleListIndexes(ctx, nil, ListIndexesInput{})

		require.Error(t, err)
		assert.Contains(t, err.Error(), "listing indexes")
	})
}
