package driving

import (
	"context"

	"github.com/custodia-labs/ragchat/internal/core/domain"
)

// BuildRequest names the corpus folder and index to build.
type BuildRequest struct {
	// Folder is the corpus folder. Empty means the configured corpus folder for DocName.
	Folder string

	// DocName names the index.
	DocName string

	// Progress, if set, is called as the build advances.
	Progress func(domain.BuildProgress)
}

// IndexService builds and manages named vector indexes.
type IndexService interface {
	// Build fully rebuilds the named index from its corpus folder.
	Build(ctx context.Context, req BuildRequest) (*domain.IndexManifest, error)

	// Watch builds once, then rebuilds whenever the corpus folder changes,
	// until ctx is cancelled. onBuild receives every build outcome.
	Watch(ctx context.Context, req BuildRequest, onBuild func(*domain.IndexManifest, error)) error

	// List returns manifests of all built indexes.
	List(ctx context.Context) ([]domain.IndexManifest, error)

	// Remove deletes the named index.
	Remove(ctx context.Context, docName string) error

	// AddDocuments copies recognised files into the corpus folder of docName
	// and returns the names of the copied files.
	AddDocuments(ctx context.Context, docName string, paths []string) ([]string, error)

	// Files lists the recognised files in the corpus folder of docName.
	Files(ctx context.Context, docName string) ([]string, error)

	// CorpusDir returns the corpus folder used for docName.
	CorpusDir(docName string) string
}
