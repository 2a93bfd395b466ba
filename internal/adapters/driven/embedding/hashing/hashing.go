// Package hashing provides a local embedding model built from feature-hashed
// bags of words. It needs no network and always yields the same vector for
// the same text, which makes it the default for offline indexes and tests.
package hashing

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode"

	"github.com/cespare/xxhash/v2"

	"github.com/custodia-labs/ragchat/internal/core/domain"
	"github.com/custodia-labs/ragchat/internal/core/ports/driven"
)

// Ensure EmbeddingService implements the interface.
var _ driven.EmbeddingService = (*EmbeddingService)(nil)

// ModelPrefix starts every hashing model name; the suffix is the dimension.
const ModelPrefix = "hashing-"

// DefaultModel is used when no model is configured.
const DefaultModel = domain.DefaultLocalEmbedding

// EmbeddingService hashes tokens into a fixed-size vector.
type EmbeddingService struct {
	model string
	dim   int
}

// NewEmbeddingService creates a hashing embedder. The model name must be
// "hashing-<dim>"; an empty name selects DefaultModel.
func NewEmbeddingService(model string) (*EmbeddingService, error) {
	if model == "" {
		model = DefaultModel
	}

	dim, err := ParseDimensions(model)
	if err != nil {
		return nil, err
	}

	return &EmbeddingService{model: model, dim: dim}, nil
}

// ParseDimensions extracts the vector size from a hashing model name.
func ParseDimensions(model string) (int, error) {
	if !strings.HasPrefix(model, ModelPrefix) {
		return 0, fmt.Errorf("%w: hashing: unknown model %q", domain.ErrConfiguration, model)
	}
	dim, err := strconv.Atoi(strings.TrimPrefix(model, ModelPrefix))
	if err != nil || dim <= 0 || dim > 65536 {
		return 0, fmt.Errorf("%w: hashing: invalid dimension in model %q", domain.ErrConfiguration, model)
	}
	return dim, nil
}

// Embed returns the L2-normalised hashed vector of text.
// Text without any word characters embeds to the zero vector.
func (s *EmbeddingService) Embed(ctx context.Context, text string) ([]float32, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	vec := make([]float32, s.dim)
	words := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})

	for _, w := range words {
		h := xxhash.Sum64String(w)
		slot := h % uint64(s.dim)
		if h>>63 == 1 {
			vec[slot]--
		} else {
			vec[slot]++
		}
	}

	var norm float64
	for _, v := range vec {
		norm += float64(v) * float64(v)
	}
	if norm == 0 {
		return vec, nil
	}

	scale := float32(1 / math.Sqrt(norm))
	for i := range vec {
		vec[i] *= scale
	}
	return vec, nil
}

// EmbedBatch embeds each text in order.
func (s *EmbeddingService) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, t := range texts {
		v, err := s.Embed(ctx, t)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

// Dimensions returns the vector size.
func (s *EmbeddingService) Dimensions() int {
	return s.dim
}

// ModelName returns the model name.
func (s *EmbeddingService) ModelName() string {
	return s.model
}

// Ping always succeeds.
func (s *EmbeddingService) Ping(context.Context) error {
	return nil
}

// Close releases resources.
func (s *EmbeddingService) Close() error {
	return nil
}
