package httpapi

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/custodia-labs/ragchat/internal/core/domain"
	"github.com/custodia-labs/ragchat/internal/core/ports/driving"
)

type buildReq struct {
	Folder string `json:"folder"`
}

// GET /api/indexes
func (s *Server) listIndexes(c *gin.Context) {
	if s.ports.Index == nil {
		respondDomainError(c, ErrMissingIndexService)
		return
	}
	manifests, err := s.ports.Index.List(c.Request.Context())
	if err != nil {
		respondDomainError(c, err)
		return
	}
	if manifests == nil {
		manifests = []domain.IndexManifest{}
	}
	respondOK(c, gin.H{"indexes": manifests})
}

// POST /api/indexes/:name/build
//
// Builds synchronously. An empty body builds from the index's corpus folder.
func (s *Server) buildIndex(c *gin.Context) {
	if s.ports.Index == nil {
		respondDomainError(c, ErrMissingIndexService)
		return
	}
	var req buildReq
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			respondError(c, http.StatusBadRequest, "invalid_request", err)
			return
		}
	}

	manifest, err := s.ports.Index.Build(c.Request.Context(), driving.BuildRequest{
		Folder:  strings.TrimSpace(req.Folder),
		DocName: c.Param("name"),
	})
	if err != nil {
		respondDomainError(c, err)
		return
	}
	c.JSON(http.StatusCreated, manifest)
}

// GET /api/indexes/:name/search?q=...&k=5
func (s *Server) searchIndex(c *gin.Context) {
	if s.ports.Retriever == nil {
		respondDomainError(c, ErrMissingIndexService)
		return
	}

	query := strings.TrimSpace(c.Query("q"))
	if query == "" {
		respondDomainError(c, fmt.Errorf("%w: query", domain.ErrEmptyInput))
		return
	}
	k := domain.DefaultRetrievalK
	if v := strings.TrimSpace(c.Query("k")); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			respondDomainError(c, fmt.Errorf("%w: k must be a positive integer", domain.ErrInvalidInput))
			return
		}
		k = n
	}

	passages, err := s.ports.Retriever.Search(c.Request.Context(), query, c.Param("name"), k)
	if err != nil {
		respondDomainError(c, err)
		return
	}
	if passages == nil {
		passages = []domain.RetrievedPassage{}
	}
	respondOK(c, gin.H{"query": query, "results": passages})
}
