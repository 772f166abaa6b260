package handler

import (
	"errors"
	"net/http"

	"ecommerce/catalog-service/internal/app/catalog/entity"
	"ecommerce/catalog-service/internal/app/catalog/service"
	"ecommerce/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// respondError maps a service error to its HTTP status. Anything that is
// not a known business error is logged and reported as a 500.
func respondError(c *gin.Context, err error) {
	var (
		status int
		code   string
	)

	switch {
	case errors.Is(err, service.ErrValidation):
		status, code = http.StatusBadRequest, "validation_error"
	case errors.Is(err, service.ErrNotFound):
		status, code = http.StatusNotFound, "not_found"
	case errors.Is(err, service.ErrForbidden):
		status, code = http.StatusForbidden, "forbidden"
	case errors.Is(err, service.ErrConflict):
		status, code = http.StatusConflict, "conflict"
	default:
		logger.Error().
			Err(err).
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Str(logger.RequestIDKey, c.GetString(logger.RequestIDKey)).
			Msg("Request failed")
		c.JSON(http.StatusInternalServerError, entity.ErrorResponse{
			Error:   "internal_error",
			Code:    http.StatusInternalServerError,
			Message: "Internal server error",
		})
		return
	}

	c.JSON(status, entity.ErrorResponse{Error: code, Code: status, Message: err.Error()})
}

func respondValidation(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, entity.ErrorResponse{
		Error:   "validation_error",
		Code:    http.StatusBadRequest,
		Message: message,
	})
}

func respondUnauthorized(c *gin.Context) {
	c.JSON(http.StatusUnauthorized, entity.ErrorResponse{
		Error:   "unauthorized",
		Code:    http.StatusUnauthorized,
		Message: "Unauthorized",
	})
}

func respondDeactivated(c *gin.Context, message string) {
	c.JSON(http.StatusOK, entity.StatusResponse{Status: "success", Message: message})
}

// bindJSON decodes and validates the body, answering 400 itself on failure.
func bindJSON(c *gin.Context, v *validator.Validate, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		respondValidation(c, "Invalid request body")
		return false
	}
	if err := v.Struct(req); err != nil {
		respondValidation(c, formatValidationError(err))
		return false
	}
	return true
}

func parseUUIDParam(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		respondValidation(c, "Invalid "+name)
		return uuid.Nil, false
	}
	return id, true
}

func formatValidationError(err error) string {
	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) {
		for _, fieldError := range validationErrors {
			if fieldError.Param() != "" {
				return fieldError.Field() + " failed " + fieldError.Tag() + "=" + fieldError.Param()
			}
			return fieldError.Field() + " is " + fieldError.Tag()
		}
	}
	return "Validation failed"
}
