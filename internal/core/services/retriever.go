package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/custodia-labs/ragchat/internal/core/domain"
	"github.com/custodia-labs/ragchat/internal/core/ports/driven"
	"github.com/custodia-labs/ragchat/internal/core/ports/driving"
	"github.com/custodia-labs/ragchat/internal/logger"
)

// Ensure Retriever implements the interface.
var _ driving.Retriever = (*Retriever)(nil)

// passageSeparator joins retrieved texts into one context string.
const passageSeparator = ". "

// Retriever answers nearest-neighbour queries against named indexes.
// The index is loaded from the store on every query, so a rebuild is
// picked up by the next call.
type Retriever struct {
	embedder driven.EmbeddingService
	store    driven.IndexStore
}

// NewRetriever creates a retriever. embedder may be nil, in which case
// queries fail with domain.ErrEmbeddingUnavailable.
func NewRetriever(embedder driven.EmbeddingService, store driven.IndexStore) *Retriever {
	return &Retriever{embedder: embedder, store: store}
}

// Retrieve returns the texts of the k nearest passages joined with ". ".
func (r *Retriever) Retrieve(ctx context.Context, query, docName string, k int) (string, error) {
	passages, err := r.Search(ctx, query, docName, k)
	if err != nil {
		return "", err
	}
	texts := make([]string, len(passages))
	for i, p := range passages {
		texts[i] = p.Text
	}
	return strings.Join(texts, passageSeparator), nil
}

// Search returns the k nearest passages with their positions and distances.
// The query is embedded as-is, without preprocessing.
func (r *Retriever) Search(ctx context.Context, query, docName string, k int) ([]domain.RetrievedPassage, error) {
	if strings.TrimSpace(query) == "" {
		return nil, fmt.Errorf("%w: query", domain.ErrEmptyInput)
	}
	if k <= 0 {
		return nil, fmt.Errorf("%w: k must be positive, got %d", domain.ErrInvalidInput, k)
	}
	if r.embedder == nil {
		return nil, domain.ErrEmbeddingUnavailable
	}

	loaded, err := r.store.Load(ctx, docName)
	if err != nil {
		return nil, fmt.Errorf("load index %q: %w", docName, err)
	}
	if loaded.Index.Len() != len(loaded.Texts) {
		return nil, fmt.Errorf("%w: index %q has %d vectors for %d texts",
			domain.ErrIntegrity, docName, loaded.Index.Len(), len(loaded.Texts))
	}
	if m := loaded.Manifest.EmbeddingModel; m != "" && m != r.embedder.ModelName() {
		logger.Warn("index %s was built with %s, querying with %s", docName, m, r.embedder.ModelName())
	}

	vec, err := r.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	if len(vec) != loaded.Index.Dimensions() {
		return nil, fmt.Errorf("%w: query embedded to %d dims, index %q has %d",
			domain.ErrConfiguration, len(vec), docName, loaded.Index.Dimensions())
	}

	hits, err := loaded.Index.Search(ctx, vec, k)
	if err != nil {
		return nil, fmt.Errorf("search index %q: %w", docName, err)
	}

	passages := make([]domain.RetrievedPassage, len(hits))
	for i, h := range hits {
		if h.Position < 0 || h.Position >= len(loaded.Texts) {
			return nil, fmt.Errorf("%w: position %d outside text manifest of %q",
				domain.ErrIntegrity, h.Position, docName)
		}
		passages[i] = domain.RetrievedPassage{
			Position: h.Position,
			Distance: h.Distance,
			Text:     loaded.Texts[h.Position],
		}
	}
	logger.Debug("retrieved %d passages from %s", len(passages), docName)
	return passages, nil
}
