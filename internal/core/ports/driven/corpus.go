package driven

import (
	"context"

	"github.com/custodia-labs/ragchat/internal/core/domain"
)

// CorpusReader reads documents from a corpus folder.
type CorpusReader interface {
	// Scan recursively reads every recognised document under root,
	// in lexical path order. Any unreadable file fails the scan.
	Scan(ctx context.Context, root string) ([]domain.Document, error)

	// Watch reports paths of recognised files that change under root until
	// ctx is cancelled. The channel is closed when watching stops.
	Watch(ctx context.Context, root string) (<-chan string, error)
}

// TextPreprocessor normalises document text before embedding.
type TextPreprocessor interface {
	// Preprocess returns the normalised text. It must be deterministic.
	Preprocess(text string) string
}
