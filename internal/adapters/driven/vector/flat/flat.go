// Package flat provides an exact nearest-neighbour index using squared
// Euclidean distance. Every query is compared against every stored vector;
// there is no approximate structure.
//
// Vectors are addressed only by insertion position. An index is built once
// and then only read, so Search is safe for concurrent use.
package flat

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/custodia-labs/ragchat/internal/core/ports/driven"
)

// Ensure Index implements the interface.
var _ driven.VectorIndex = (*Index)(nil)

// ErrDimensionMismatch is returned when a vector does not match the index dimension.
var ErrDimensionMismatch = errors.New("flat: dimension mismatch")

// Index is an immutable flat L2 index.
type Index struct {
	dim  int
	data []float32 // row-major, len == dim * count
}

// Build creates an index over vectors. Every vector must have length dim.
// An empty vectors slice builds a valid empty index.
func Build(dim int, vectors [][]float32) (*Index, error) {
	if dim <= 0 {
		return nil, fmt.Errorf("flat: dimension must be positive, got %d", dim)
	}

	data := make([]float32, 0, dim*len(vectors))
	for i, v := range vectors {
		if len(v) != dim {
			return nil, fmt.Errorf("%w: row %d has %d values, want %d", ErrDimensionMismatch, i, len(v), dim)
		}
		data = append(data, v...)
	}

	return &Index{dim: dim, data: data}, nil
}

// Len returns the number of indexed vectors.
func (x *Index) Len() int {
	return len(x.data) / x.dim
}

// Dimensions returns the vector size.
func (x *Index) Dimensions() int {
	return x.dim
}

// Search returns the k nearest vectors by ascending squared distance,
// breaking ties by lower position. k larger than Len returns all entries;
// k <= 0 or an empty index returns no entries.
func (x *Index) Search(ctx context.Context, query []float32, k int) ([]driven.VectorHit, error) {
	if len(query) != x.dim {
		return nil, fmt.Errorf("%w: query has %d values, want %d", ErrDimensionMismatch, len(query), x.dim)
	}

	n := x.Len()
	if k > n {
		k = n
	}
	if k <= 0 {
		return []driven.VectorHit{}, nil
	}

	hits := make([]driven.VectorHit, n)
	for i := 0; i < n; i++ {
		if i%4096 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		hits[i] = driven.VectorHit{
			Position: i,
			Distance: squaredL2(query, x.data[i*x.dim:(i+1)*x.dim]),
		}
	}

	sort.SliceStable(hits, func(a, b int) bool {
		return hits[a].Distance < hits[b].Distance
	})

	return hits[:k], nil
}

func squaredL2(a, b []float32) float32 {
	var sum float32
	for i := range a {
		d := a[i] - b[i]
		sum += d * d
	}
	return sum
}
