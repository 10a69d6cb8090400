package middleware

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Mulandii/Clinic-cms/domain"
	"github.com/Mulandii/Clinic-cms/internal/metrics"
)

// AuthMW wraps the token service, revocation store and role resolver for middleware
type AuthMW struct {
	tokenSvc    domain.TokenService
	revocations domain.RevocationRepository
	roles       domain.RoleResolver
	metrics     *metrics.Metrics
	logger      *zap.Logger
}

// NewAuthMW creates new auth middleware wrapper
func NewAuthMW(tokenSvc domain.TokenService, revocations domain.RevocationRepository, roles domain.RoleResolver, m *metrics.Metrics, logger *zap.Logger) *AuthMW {
	return &AuthMW{
		tokenSvc:    tokenSvc,
		revocations: revocations,
		roles:       roles,
		metrics:     m,
		logger:      logger,
	}
}

// WithJWT returns the JWT middleware function
func (mw *AuthMW) WithJWT() gin.HandlerFunc {
	return AuthMiddleware(mw.tokenSvc, mw.revocations, mw.roles, mw.metrics, mw.logger)
}
