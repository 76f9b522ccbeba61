package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/gauri-sd/user-document-management/internal/service"
)

// respondError maps service-level errors onto HTTP statuses.
func respondError(c *gin.Context, err error, fallback string) {
	statusCode := http.StatusInternalServerError
	message := fallback

	switch {
	case errors.Is(err, service.ErrInvalidRequest):
		statusCode = http.StatusBadRequest
		message = err.Error()
	case errors.Is(err, service.ErrNotFound):
		statusCode = http.StatusNotFound
		message = err.Error()
	case errors.Is(err, service.ErrAccessDenied):
		statusCode = http.StatusForbidden
		message = err.Error()
	case errors.Is(err, service.ErrUserExists):
		statusCode = http.StatusConflict
		message = "User already exists"
	case errors.Is(err, service.ErrInvalidCredentials):
		statusCode = http.StatusUnauthorized
		message = "Invalid email or password"
	case errors.Is(err, service.ErrAccountDeactivated):
		statusCode = http.StatusForbidden
		message = "Account is deactivated"
	}

	c.JSON(statusCode, gin.H{
		"error": message,
	})
}
