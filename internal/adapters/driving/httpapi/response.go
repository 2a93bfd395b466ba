package httpapi

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/custodia-labs/ragchat/internal/core/domain"
)

// APIError is the body of every error response.
type APIError struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

// ErrorEnvelope wraps an APIError.
type ErrorEnvelope struct {
	Error APIError `json:"error"`
}

func respondError(c *gin.Context, status int, code string, err error) {
	msg := "unknown error"
	if err != nil {
		msg = err.Error()
	}
	c.AbortWithStatusJSON(status, ErrorEnvelope{
		Error: APIError{
			Message: msg,
			Code:    code,
		},
	})
}

// respondDomainError maps a domain error onto its HTTP status.
func respondDomainError(c *gin.Context, err error) {
	status, code := classify(err)
	respondError(c, status, code, err)
}

func respondOK(c *gin.Context, payload any) {
	c.JSON(http.StatusOK, payload)
}

func classify(err error) (int, string) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, domain.ErrAlreadyExists):
		return http.StatusConflict, "already_exists"
	case errors.Is(err, domain.ErrStreamInProgress):
		return http.StatusConflict, "stream_in_progress"
	case errors.Is(err, domain.ErrBuildInProgress):
		return http.StatusConflict, "build_in_progress"
	case errors.Is(err, domain.ErrEmptyInput):
		return http.StatusBadRequest, "empty_input"
	case errors.Is(err, domain.ErrInvalidInput):
		return http.StatusBadRequest, "invalid_input"
	case errors.Is(err, domain.ErrConfiguration):
		return http.StatusUnprocessableEntity, "configuration"
	case errors.Is(err, domain.ErrLLMUnavailable), errors.Is(err, domain.ErrEmbeddingUnavailable),
		errors.Is(err, ErrMissingIndexService), errors.Is(err, ErrMissingSettingsService):
		return http.StatusServiceUnavailable, "unavailable"
	case errors.Is(err, domain.ErrUpstream):
		return http.StatusBadGateway, "upstream"
	case errors.Is(err, domain.ErrIntegrity):
		return http.StatusInternalServerError, "integrity"
	default:
		return http.StatusInternalServerError, "internal"
	}
}
