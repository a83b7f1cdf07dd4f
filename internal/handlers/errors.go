// internal/handlers/errors.go
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/craftai/craftai-backend/internal/apperrors"
	"github.com/craftai/craftai-backend/internal/utils"
)

// respondError maps a classified service error onto the HTTP status and
// envelope clients expect.
func respondError(c *gin.Context, err error) {
	code := apperrors.CodeOf(err)
	utils.ErrorResponse(c, statusForCode(code), string(code), apperrors.MessageOf(err), nil)
}

func statusForCode(code apperrors.Code) int {
	switch code {
	case apperrors.CodeNotFound:
		return http.StatusNotFound
	case apperrors.CodeForbidden:
		return http.StatusForbidden
	case apperrors.CodeValidation, apperrors.CodeInvalidFormat:
		return http.StatusBadRequest
	case apperrors.CodeQuotaExceeded:
		return http.StatusRequestEntityTooLarge
	case apperrors.CodeUploadTimeout:
		return http.StatusGatewayTimeout
	case apperrors.CodeUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
