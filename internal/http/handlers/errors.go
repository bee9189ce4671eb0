package handlers

import (
	"net/http"

	"storefront/internal/domain"
	"storefront/internal/http/middleware"
	"storefront/internal/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ErrorResponse standardizes error payloads.
type ErrorResponse struct {
	Error     string `json:"error"`
	Code      string `json:"code"`
	Message   string `json:"message"`
	RequestID string `json:"request_id,omitempty"`
	Retryable bool   `json:"retryable,omitempty"`
}

func respondError(c *gin.Context, status int, code, message string, retryable bool) {
	if code == "" {
		code = http.StatusText(status)
	}
	c.JSON(status, ErrorResponse{
		Error:     message,
		Code:      code,
		Message:   message,
		RequestID: middleware.GetRequestID(c),
		Retryable: retryable,
	})
}

// RespondDomainError maps domain errors to HTTP responses.
func RespondDomainError(c *gin.Context, err error) {
	switch {
	case domain.IsValidation(err):
		respondError(c, http.StatusBadRequest, "validation_error", err.Error(), false)
	case domain.IsInvalidPromo(err):
		respondError(c, http.StatusUnprocessableEntity, "invalid_promo", err.Error(), false)
	case domain.IsNotFound(err):
		respondError(c, http.StatusNotFound, "not_found", err.Error(), false)
	case domain.IsUnauthorized(err):
		respondError(c, http.StatusUnauthorized, "unauthorized", err.Error(), false)
	case domain.IsConflict(err):
		respondError(c, http.StatusConflict, "conflict", err.Error(), false)
	case domain.IsFetch(err):
		respondError(c, http.StatusBadGateway, "upstream_error", err.Error(), true)
	case domain.IsInternal(err):
		utils.L().Error("internal error",
			zap.String("request_id", middleware.GetRequestID(c)),
			zap.Error(err))
		respondError(c, http.StatusInternalServerError, "internal_error", err.Error(), false)
	default:
		utils.L().Error("unhandled error",
			zap.String("request_id", middleware.GetRequestID(c)),
			zap.String("path", c.Request.URL.Path),
			zap.Error(err))
		respondError(c, http.StatusInternalServerError, "internal_error", "something went wrong", false)
	}
}
