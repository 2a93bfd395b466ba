package driven

import "context"

// VectorIndex answers nearest-neighbour queries over a fixed set of vectors.
// Vectors are addressed only by their insertion position.
type VectorIndex interface {
	// Search returns the k nearest vectors ordered by ascending distance.
	// Ties are broken by lower position. k larger than Len returns every entry.
	Search(ctx context.Context, query []float32, k int) ([]VectorHit, error)

	// Len returns the number of indexed vectors.
	Len() int

	// Dimensions returns the vector size.
	Dimensions() int
}

// VectorHit represents a similarity search result.
type VectorHit struct {
	// Position is the row of the matched vector.
	Position int

	// Distance is the squared Euclidean distance to the query.
	Distance float32
}
