package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Mulandii/Clinic-cms/domain"
	"github.com/Mulandii/Clinic-cms/internal/http/middleware"
)

// statusFor maps a domain error to its HTTP status and client message.
// Authentication failures share one message so callers learn nothing about
// which check failed.
func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, domain.ErrInvalidCredentials):
		return http.StatusUnauthorized, "Invalid credentials"
	case errors.Is(err, domain.ErrUnauthenticated),
		errors.Is(err, domain.ErrTokenInvalid),
		errors.Is(err, domain.ErrTokenExpired),
		errors.Is(err, domain.ErrTokenWrongKind),
		errors.Is(err, domain.ErrTokenRevoked),
		errors.Is(err, domain.ErrCodeExpired),
		errors.Is(err, domain.ErrCodeMismatch),
		errors.Is(err, domain.ErrCodeAlreadyUsed),
		errors.Is(err, domain.ErrCodeNotFound),
		errors.Is(err, domain.ErrCodeMaxAttempts):
		return http.StatusUnauthorized, "Unauthenticated"
	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden, "Forbidden"
	case errors.Is(err, domain.ErrMethodNotAllowed), errors.Is(err, domain.ErrResetUnsupported):
		return http.StatusMethodNotAllowed, "Method not allowed"
	case errors.Is(err, domain.ErrInvalidInput):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, domain.ErrInvalidRole):
		return http.StatusBadRequest, "Invalid role"
	case errors.Is(err, domain.ErrResetTokenInvalid):
		return http.StatusBadRequest, "Invalid or expired reset token"
	case errors.Is(err, domain.ErrIdentityExists):
		return http.StatusConflict, "User already exists"
	case errors.Is(err, domain.ErrResourceNotFound):
		return http.StatusNotFound, "Not found"
	case errors.Is(err, domain.ErrExternalStoreUnavailable), errors.Is(err, domain.ErrDeliveryFailed):
		return http.StatusServiceUnavailable, "Service unavailable"
	default:
		return http.StatusInternalServerError, "Internal server error"
	}
}

// respondError writes the error envelope. Server-side failures are logged
// with the underlying error, which never reaches the client.
func respondError(c *gin.Context, logger *zap.Logger, err error) {
	status, message := statusFor(err)
	if status >= http.StatusInternalServerError {
		logger.Error("request failed",
			zap.String("method", c.Request.Method),
			zap.String("route", c.FullPath()),
			zap.Int("status", status),
			zap.Error(err),
		)
	}
	c.JSON(status, gin.H{"error": message})
}

func badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
}

func methodNotAllowed(c *gin.Context) {
	c.JSON(http.StatusMethodNotAllowed, gin.H{"error": "Method not allowed"})
}

// principal returns the caller set by the gate or answers 401
func principal(c *gin.Context) (domain.Principal, bool) {
	actor, ok := middleware.PrincipalFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthenticated"})
	}
	return actor, ok
}
