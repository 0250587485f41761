package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"storefront-service/internal/clients"
	"storefront-service/internal/models"
	"storefront-service/internal/repository"
	"storefront-service/internal/services"
)

// respondError maps store errors onto the HTTP status and error code of the
// response envelope
func respondError(c *gin.Context, err error) {
	status, code := http.StatusInternalServerError, "INTERNAL_ERROR"
	switch {
	case errors.Is(err, repository.ErrValidationConflict):
		status, code = http.StatusConflict, "DUPLICATE_ID"
	case errors.Is(err, repository.ErrInvalidProduct):
		status, code = http.StatusBadRequest, "VALIDATION_ERROR"
	case errors.Is(err, repository.ErrInvalidStatus):
		status, code = http.StatusBadRequest, "INVALID_STATUS"
	case errors.Is(err, repository.ErrMalformedImport):
		status, code = http.StatusBadRequest, "MALFORMED_IMPORT"
	case errors.Is(err, repository.ErrNotFound):
		status, code = http.StatusNotFound, "NOT_FOUND"
	case errors.Is(err, repository.ErrRemoteUnavailable):
		status, code = http.StatusServiceUnavailable, "REMOTE_UNAVAILABLE"
	case errors.Is(err, clients.ErrAssetUpload):
		status, code = http.StatusBadGateway, "UPLOAD_FAILED"
	}

	if status >= http.StatusInternalServerError {
		c.Error(err)
	}

	var importErr *services.ImportError
	if errors.As(err, &importErr) && len(importErr.Rows) > 0 {
		c.JSON(status, models.ImportResult{
			Success:   false,
			TotalRows: importErr.TotalRows,
			Errors:    importErr.Rows,
		})
		return
	}

	c.JSON(status, models.ErrorResponse{
		Success: false,
		Error: models.Error{
			Code:    code,
			Message: err.Error(),
		},
	})
}

func badRequest(c *gin.Context, code, message string) {
	c.JSON(http.StatusBadRequest, models.ErrorResponse{
		Success: false,
		Error: models.Error{
			Code:    code,
			Message: message,
		},
	})
}
