package mcp

import (
	"context"
	"fmt"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/ragchat/internal/core/domain"
)

// RetrieveInput is the input schema for the retrieve tool.
type RetrieveInput struct {
	Query   string `json:"query" jsonschema:"the text to find related passages for"`
	DocName string `json:"doc_name,omitempty" jsonschema:"index to search (default from settings)"`
	K       int    `json:"k,omitempty" jsonschema:"number of passages to return (default 5)"`
}

// RetrieveOutput is the output schema for the retrieve tool.
type RetrieveOutput struct {
	DocName  string          `json:"doc_name"`
	Passages []PassageOutput `json:"passages"`
	Count    int             `json:"count"`
}

// PassageOutput represents a single retrieved passage.
type PassageOutput struct {
	Position int     `json:"position"`
	Distance float32 `json:"distance"`
	Text     string  `json:"text"`
}

// ListIndexesInput is the empty input schema for the list_indexes tool.
type ListIndexesInput struct{}

// ListIndexesOutput is the output schema for the list_indexes tool.
type ListIndexesOutput struct {
	Indexes []IndexOutput `json:"indexes"`
}

// IndexOutput describes one built index.
type IndexOutput struct {
	DocName        string `json:"doc_name"`
	Version        string `json:"version"`
	EmbeddingModel string `json:"embedding_model"`
	Dimensions     int    `json:"dimensions"`
	Count          int    `json:"count"`
	SourceDir      string `json:"source_dir,omitempty"`
	BuiltAt        string `json:"built_at"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "retrieve",
		Description: "Retrieve the passages of an indexed document set nearest to a query",
	}, s.handleRetrieve)

	if s.ports.Index != nil {
		mcp.AddTool(s.server, &mcp.Tool{
			Name:        "list_indexes",
			Description: "List the built document indexes",
		}, s.handleListIndexes)
	}
}

// handleRetrieve handles the retrieve tool invocation.
func (s *Server) handleRetrieve(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input RetrieveInput,
) (*mcp.CallToolResult, RetrieveOutput, error) {
	docName, k := s.defaults(input.DocName, input.K)

	passages, err := s.ports.Retriever.Search(ctx, input.Query, docName, k)
	if err != nil {
		return nil, RetrieveOutput{}, err
	}

	output := RetrieveOutput{
		DocName:  docName,
		Passages: make([]PassageOutput, len(passages)),
		Count:    len(passages),
	}
	for i, p := range passages {
		output.Passages[i] = PassageOutput{
			Position: p.Position,
			Distance: p.Distance,
			Text:     p.Text,
		}
	}

	return nil, output, nil
}

// handleListIndexes handles the list_indexes tool invocation.
func (s *Server) handleListIndexes(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	_ ListIndexesInput,
) (*mcp.CallToolResult, ListIndexesOutput, error) {
	manifests, err := s.ports.Index.List(ctx)
	if err != nil {
		return nil, ListIndexesOutput{}, fmt.Errorf("listing indexes: %w", err)
	}
	return nil, ListIndexesOutput{Indexes: indexOutputs(manifests)}, nil
}

// defaults fills an unset index name and k from settings.
func (s *Server) defaults(docName string, k int) (string, int) {
	if s.ports.Settings != nil && (docName == "" || k <= 0) {
		if settings, err := s.ports.Settings.Get(); err == nil {
			if docName == "" {
				docName = settings.Retrieval.DocName
			}
			if k <= 0 {
				k = settings.Retrieval.K
			}
		}
	}
	if docName == "" {
		docName = domain.DefaultDocName
	}
	if k <= 0 {
		k = domain.DefaultRetrievalK
	}
	return docName, k
}

func indexOutputs(manifests []domain.IndexManifest) []IndexOutput {
	out := make([]IndexOutput, len(manifests))
	for i := range manifests {
		m := manifests[i]
		out[i] = IndexOutput{
			DocName:        m.DocName,
			Version:        m.Version,
			EmbeddingModel: m.EmbeddingModel,
			Dimensions:     m.Dimensions,
			Count:          m.Count,
			SourceDir:      m.SourceDir,
			BuiltAt:        m.BuiltAt.UTC().Format(time.RFC3339),
		}
	}
	return out
}
