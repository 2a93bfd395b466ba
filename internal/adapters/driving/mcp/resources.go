package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const (
	// URIScheme is the custom URI scheme for ragchat resources.
	uriScheme = "ragchat://"
)

// registerResources registers all resource handlers with the MCP server.
func (s *Server) registerResources() {
	// Static resource for listing indexes.
	s.server.AddResource(&mcp.Resource{
		URI:         uriScheme + "indexes",
		Name:        "indexes",
		Description: "Manifests of all built document indexes",
		MIMEType:    "application/json",
	}, s.handleIndexesResource)

	// Template for the corpus files behind an index.
	s.server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: uriScheme + "indexes/{docName}/files",
		Name:        "index-files",
		Description: "Corpus files of a specific index",
		MIMEType:    "application/json",
	}, s.handleFilesResource)
}

// handleIndexesResource returns the manifests of all built indexes.
func (s *Server) handleIndexesResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	if s.ports.Index == nil {
		return jsonResult(req.Params.URI, "[]"), nil
	}

	manifests, err := s.ports.Index.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing indexes: %w", err)
	}

	data, err := json.MarshalIndent(indexOutputs(manifests), "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling indexes: %w", err)
	}
	return jsonResult(req.Params.URI, string(data)), nil
}

// handleFilesResource returns the corpus file names of one index.
func (s *Server) handleFilesResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	if s.ports.Index == nil {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	// Extract docName from URI: ragchat://indexes/{docName}/files
	docName := extractDocName(req.Params.URI)
	if docName == "" {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	files, err := s.ports.Index.Files(ctx, docName)
	if err != nil {
		return nil, fmt.Errorf("listing files: %w", err)
	}
	if files == nil {
		files = []string{}
	}

	data, err := json.MarshalIndent(files, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling files: %w", err)
	}
	return jsonResult(req.Params.URI, string(data)), nil
}

func jsonResult(uri, text string) *mcp.ReadResourceResult {
	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      uri,
			MIMEType: "application/json",
			Text:     text,
		}},
	}
}

// extractDocName extracts the index name from a URI like ragchat://indexes/{docName}/files.
func extractDocName(uri string) string {
	const prefix = uriScheme + "indexes/"
	const suffix = "/files"

	if !strings.HasPrefix(uri, prefix) {
		return ""
	}

	uri = strings.TrimPrefix(uri, prefix)
	if !strings.HasSuffix(uri, suffix) {
		return ""
	}

	name := strings.TrimSuffix(uri, suffix)
	if strings.Contains(name, "/") {
		return ""
	}
	return name
}
