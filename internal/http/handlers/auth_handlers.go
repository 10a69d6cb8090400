package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Mulandii/Clinic-cms/domain"
	"github.com/Mulandii/Clinic-cms/internal/http/middleware"
)

// AuthHandlers handles login, second factor, logout and password reset requests
type AuthHandlers struct {
	authSvc domain.AuthService
	logger  *zap.Logger
}

// NewAuthHandlers creates new auth handlers
func NewAuthHandlers(authSvc domain.AuthService, logger *zap.Logger) *AuthHandlers {
	return &AuthHandlers{authSvc: authSvc, logger: logger}
}

// LoginRequest represents login request. Empty fields are rejected by the
// service so they are audited like any other failed login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// VerifyRequest represents a second factor submission
type VerifyRequest struct {
	PendingToken string `json:"pending_token" binding:"required"`
	Code         string `json:"code" binding:"required"`
}

// ResetRequest asks for a reset link to be sent to email
type ResetRequest struct {
	Email string `json:"email" binding:"required"`
}

// ResetConfirmRequest completes a reset
type ResetConfirmRequest struct {
	Token       string `json:"token" binding:"required"`
	NewPassword string `json:"new_password" binding:"required"`
}

// Login handles password login. Identities with a second factor receive a
// pending token and 202 instead of a session token.
func (h *AuthHandlers) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	result, err := h.authSvc.Login(c.Request.Context(), req.Email, req.Password, c.ClientIP())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	if result.IsPending() {
		c.JSON(http.StatusAccepted, gin.H{
			"data": gin.H{
				"pending_token": result.PendingToken,
				"message":       "2FA required",
				"expires_in":    result.ExpiresIn,
			},
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": sessionBody(result)})
}

// VerifySecondFactor exchanges a pending token and code for a session token
func (h *AuthHandlers) VerifySecondFactor(c *gin.Context) {
	var req VerifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	result, err := h.authSvc.VerifySecondFactor(c.Request.Context(), req.PendingToken, req.Code, c.ClientIP())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": sessionBody(result)})
}

func sessionBody(result *domain.LoginResult) gin.H {
	return gin.H{
		"token":      result.Token,
		"token_type": "Bearer",
		"expires_in": result.ExpiresIn,
		"role":       result.Identity.Role,
		"user": gin.H{
			"id":    result.Identity.ID,
			"email": result.Identity.Email,
			"role":  result.Identity.Role,
		},
	}
}

// Logout revokes the presented token
func (h *AuthHandlers) Logout(c *gin.Context) {
	if c.Request.Method != http.MethodPost {
		methodNotAllowed(c)
		return
	}
	claims, ok := middleware.ClaimsFrom(c)
	if !ok {
		respondError(c, h.logger, domain.ErrUnauthenticated)
		return
	}

	if err := h.authSvc.Logout(c.Request.Context(), claims, c.ClientIP()); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": gin.H{"message": "Logged out successfully"}})
}

// Me returns the caller's identity
func (h *AuthHandlers) Me(c *gin.Context) {
	if c.Request.Method != http.MethodGet {
		methodNotAllowed(c)
		return
	}
	identity, ok := middleware.IdentityFrom(c)
	if !ok {
		respondError(c, h.logger, domain.ErrUnauthenticated)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": identity})
}

// RequestPasswordReset sends a reset link. The response is the same whether
// or not the email belongs to an account.
func (h *AuthHandlers) RequestPasswordReset(c *gin.Context) {
	if c.Request.Method != http.MethodPost {
		methodNotAllowed(c)
		return
	}
	actor, ok := principal(c)
	if !ok {
		return
	}
	var req ResetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	if err := h.authSvc.RequestPasswordReset(c.Request.Context(), actor.ID, req.Email, c.ClientIP()); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": gin.H{"message": "If the account exists, a reset link has been sent"}})
}

// ConfirmPasswordReset sets a new password from a reset token
func (h *AuthHandlers) ConfirmPasswordReset(c *gin.Context) {
	var req ResetConfirmRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	if err := h.authSvc.ConfirmPasswordReset(c.Request.Context(), req.Token, req.NewPassword, c.ClientIP()); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": gin.H{"message": "Password updated"}})
}
