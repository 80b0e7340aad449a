package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yigit/studentrecords/internal/app/models/dto"
	"github.com/yigit/studentrecords/internal/pkg/apperrors"
	"github.com/yigit/studentrecords/internal/pkg/logger"
)

// HandleAPIError converts a service error to the JSON error payload with the
// status code matching its kind
func HandleAPIError(c *gin.Context, err error) {
	status, detail := errorDetailFor(err)

	log := logger.FromContext(c.Request.Context())
	if status >= http.StatusInternalServerError {
		log.Error().Err(err).Str("path", c.FullPath()).Msg("Request failed")
	} else {
		log.Debug().Err(err).Int("status", status).Msg("Request rejected")
	}

	AbortWithError(c, status, detail)
}

// AbortWithError writes the error payload tagged with the request id
func AbortWithError(c *gin.Context, status int, detail *dto.ErrorDetail) {
	c.AbortWithStatusJSON(status, dto.NewErrorResponse(detail, GetRequestID(c)))
}

func errorDetailFor(err error) (int, *dto.ErrorDetail) {
	message := apperrors.PublicMessage(err)
	field := apperrors.FieldOf(err)
	orDefault := func(fallback string) string {
		if message != "" {
			return message
		}
		return fallback
	}

	switch {
	case errors.Is(err, apperrors.ErrMissingRequiredField):
		return http.StatusBadRequest, dto.NewErrorDetail(dto.ErrorCodeMissingField, orDefault("Required field is missing")).
			WithField(field)
	case errors.Is(err, apperrors.ErrValidationFailed):
		return http.StatusBadRequest, dto.NewErrorDetail(dto.ErrorCodeValidationFailed, orDefault("Validation failed")).
			WithField(field)
	case errors.Is(err, apperrors.ErrBadRequest):
		return http.StatusBadRequest, dto.NewErrorDetail(dto.ErrorCodeBadRequest, orDefault("Bad request")).
			WithField(field)
	case errors.Is(err, apperrors.ErrResourceNotFound):
		return http.StatusNotFound, dto.NewErrorDetail(dto.ErrorCodeResourceNotFound, orDefault("Resource not found"))
	case errors.Is(err, apperrors.ErrConflict):
		return http.StatusConflict, dto.NewErrorDetail(dto.ErrorCodeResourceAlreadyExists, orDefault("Resource already exists")).
			WithField(field)
	case errors.Is(err, apperrors.ErrStore):
		return http.StatusInternalServerError, dto.NewErrorDetail(dto.ErrorCodeStoreError, "Database error").
			WithSeverity(dto.ErrorSeverityCritical)
	default:
		return http.StatusInternalServerError, dto.NewErrorDetail(dto.ErrorCodeInternalServer, "Internal server error").
			WithSeverity(dto.ErrorSeverityCritical)
	}
}
