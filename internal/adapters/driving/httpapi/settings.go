package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/custodia-labs/ragchat/internal/core/domain"
)

// settingsView is the JSON form of the settings. API keys are never echoed.
type settingsView struct {
	LLM struct {
		Provider    string  `json:"provider"`
		Model       string  `json:"model"`
		BaseURL     string  `json:"base_url,omitempty"`
		APIKeySet   bool    `json:"api_key_set"`
		Temperature float64 `json:"temperature"`
		MaxTokens   int     `json:"max_tokens"`
	} `json:"llm"`
	Embedding struct {
		Provider  string `json:"provider"`
		Model     string `json:"model"`
		BaseURL   string `json:"base_url,omitempty"`
		APIKeySet bool   `json:"api_key_set"`
	} `json:"embedding"`
	Retrieval struct {
		Enabled    bool   `json:"enabled"`
		DocName    string `json:"doc_name"`
		K          int    `json:"k"`
		QueryModel string `json:"query_model"`
	} `json:"retrieval"`
	Index struct {
		DocsDir   string `json:"docs_dir,omitempty"`
		Workers   int    `json:"workers"`
		BatchSize int    `json:"batch_size"`
	} `json:"index"`
}

func newSettingsView(s *domain.AppSettings) settingsView {
	var v settingsView
	v.LLM.Provider = string(s.LLM.Provider)
	v.LLM.Model = s.LLM.Model
	v.LLM.BaseURL = s.LLM.BaseURL
	v.LLM.APIKeySet = s.LLM.APIKey != ""
	v.LLM.Temperature = s.LLM.Params.Temperature
	v.LLM.MaxTokens = s.LLM.Params.MaxTokens

	v.Embedding.Provider = string(s.Embedding.Provider)
	v.Embedding.Model = s.Embedding.Model
	v.Embedding.BaseURL = s.Embedding.BaseURL
	v.Embedding.APIKeySet = s.Embedding.APIKey != ""

	v.Retrieval.Enabled = s.Retrieval.Enabled
	v.Retrieval.DocName = s.Retrieval.DocName
	v.Retrieval.K = s.Retrieval.K
	v.Retrieval.QueryModel = s.Retrieval.QueryModel

	v.Index.DocsDir = s.Index.DocsDir
	v.Index.Workers = s.Index.Workers
	v.Index.BatchSize = s.Index.BatchSize
	return v
}

type setModelReq struct {
	Model string `json:"model" binding:"required"`
}

type setParamsReq struct {
	Temperature *float64 `json:"temperature"`
	MaxTokens   *int     `json:"max_tokens"`
}

func (s *Server) settings(c *gin.Context) (*domain.AppSettings, bool) {
	if s.ports.Settings == nil {
		respondDomainError(c, ErrMissingSettingsService)
		return nil, false
	}
	settings, err := s.ports.Settings.Get()
	if err != nil {
		respondDomainError(c, err)
		return nil, false
	}
	return settings, true
}

// GET /api/settings
func (s *Server) getSettings(c *gin.Context) {
	settings, ok := s.settings(c)
	if !ok {
		return
	}
	respondOK(c, newSettingsView(settings))
}

// PUT /api/settings/model
func (s *Server) setModel(c *gin.Context) {
	if s.ports.Settings == nil {
		respondDomainError(c, ErrMissingSettingsService)
		return
	}
	var req setModelReq
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	if err := s.ports.Settings.SetModel(req.Model); err != nil {
		respondDomainError(c, err)
		return
	}
	s.getSettings(c)
}

// PUT /api/settings/params
//
// Omitted fields keep their current value.
func (s *Server) setParams(c *gin.Context) {
	settings, ok := s.settings(c)
	if !ok {
		return
	}
	var req setParamsReq
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}

	params := settings.LLM.Params
	if req.Temperature != nil {
		params.Temperature = *req.Temperature
	}
	if req.MaxTokens != nil {
		params.MaxTokens = *req.MaxTokens
	}
	if err := s.ports.Settings.SetModelParams(params); err != nil {
		respondDomainError(c, err)
		return
	}
	s.getSettings(c)
}
