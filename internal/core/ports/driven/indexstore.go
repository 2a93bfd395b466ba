package driven

import (
	"context"

	"github.com/custodia-labs/ragchat/internal/core/domain"
)

// IndexArtifacts is everything a build produces for one named index.
type IndexArtifacts struct {
	// Manifest describes the build.
	Manifest domain.IndexManifest

	// Matrix is the embedding matrix, one row per text.
	Matrix [][]float32

	// Texts are the preprocessed document texts, aligned with Matrix rows.
	Texts []string
}

// LoadedIndex is a searchable index with its positional text manifest.
type LoadedIndex struct {
	Manifest domain.IndexManifest
	Index    VectorIndex
	Texts    []string
}

// IndexStore persists named vector indexes.
type IndexStore interface {
	// Commit persists the artifacts and builds the flat index from the
	// persisted matrix. Either every artifact becomes visible or none does;
	// the previously committed version stays readable until the swap.
	Commit(ctx context.Context, artifacts *IndexArtifacts) error

	// Load opens the current version of docName.
	// Returns domain.ErrNotFound if the index or its text manifest is missing,
	// domain.ErrIntegrity if they disagree.
	Load(ctx context.Context, docName string) (*LoadedIndex, error)

	// List returns manifests of all committed indexes.
	List(ctx context.Context) ([]domain.IndexManifest, error)

	// Remove deletes every version of docName. Missing names are a no-op.
	Remove(ctx context.Context, docName string) error
}
