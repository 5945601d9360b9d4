package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"billgen/internal/apperr"
	"billgen/internal/logger"
)

// ExposeInternalErrors controls whether 500 responses carry the failure's
// message or a generic one.
var ExposeInternalErrors = true

func respondData(c *gin.Context, status int, data any) {
	c.JSON(status, gin.H{"success": true, "data": data})
}

func respondError(c *gin.Context, route string, err error) {
	kind := apperr.KindOf(err)
	status := apperr.HTTPStatus(kind)
	log := logger.WithComponent(route)

	body := gin.H{"success": false}
	var appErr *apperr.Error
	if kind == apperr.KindInternal {
		log.Error().Err(err).Msg("request failed")
		_ = c.Error(err)
		if ExposeInternalErrors {
			body["error"] = err.Error()
		} else {
			body["error"] = "internal server error"
		}
	} else if errors.As(err, &appErr) {
		log.Debug().Str("kind", string(kind)).Str("error", appErr.Message).Msg("request rejected")
		body["error"] = appErr.Message
		if len(appErr.Details) > 0 {
			body["details"] = appErr.Details
		}
	}

	c.AbortWithStatusJSON(status, body)
}

func handlePanic(c *gin.Context, route string) {
	if r := recover(); r != nil {
		log := logger.WithComponent(route)
		log.Error().Interface("panic", r).Msg("panic recovered")
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"success": false, "error": "internal server error"})
	}
}

func bindJSON(c *gin.Context, dst any) error {
	if err := c.ShouldBindJSON(dst); err != nil {
		return bindingError(err)
	}
	return nil
}

func bindingError(err error) error {
	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) {
		details := make([]string, 0, len(validationErrors))
		for _, fieldError := range validationErrors {
			field := lowerCamel(fieldError.Field())
			switch fieldError.Tag() {
			case "required":
				details = append(details, fmt.Sprintf("%s is required", field))
			default:
				details = append(details, fmt.Sprintf("%s is invalid", field))
			}
		}
		return apperr.Validation("validation failed", details...)
	}
	return apperr.Validation("invalid body", err.Error())
}

func lowerCamel(field string) string {
	if field == "" {
		return field
	}
	return strings.ToLower(field[:1]) + field[1:]
}
