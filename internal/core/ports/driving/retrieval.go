package driving

import (
	"context"

	"github.com/custodia-labs/ragchat/internal/core/domain"
)

// Retriever finds indexed passages relevant to a query.
type Retriever interface {
	// Retrieve returns the texts of the k nearest passages joined with ". ".
	Retrieve(ctx context.Context, query, docName string, k int) (string, error)

	// Search returns the k nearest passages with their positions and distances.
	Search(ctx context.Context, query, docName string, k int) ([]domain.RetrievedPassage, error)
}
