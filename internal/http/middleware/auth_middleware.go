package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Mulandii/Clinic-cms/domain"
	"github.com/Mulandii/Clinic-cms/internal/metrics"
)

// AuthMiddleware admits requests carrying a valid, unrevoked full token and
// attaches the caller's identity, role and claims to the context.
func AuthMiddleware(
	tokenSvc domain.TokenService,
	revocations domain.RevocationRepository,
	roles domain.RoleResolver,
	m *metrics.Metrics,
	logger *zap.Logger,
) gin.HandlerFunc {
	unauthenticated := func(c *gin.Context) {
		m.AuthOutcome(metrics.OutcomeUnauthorized)
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthenticated"})
	}

	return func(c *gin.Context) {
		token, ok := bearerToken(c.GetHeader("Authorization"))
		if !ok {
			unauthenticated(c)
			return
		}

		// pending tokens fail here with ErrTokenWrongKind
		claims, err := tokenSvc.Validate(token, domain.TokenKindFull)
		if err != nil {
			unauthenticated(c)
			return
		}

		revoked, err := revocations.IsRevoked(c.Request.Context(), claims.TokenID)
		if err != nil {
			logger.Error("revocation check failed", zap.String("identity_id", claims.Subject), zap.Error(err))
			c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"error": "Service unavailable"})
			return
		}
		if revoked {
			unauthenticated(c)
			return
		}

		identity, err := roles.Resolve(c.Request.Context(), claims.Subject)
		if err != nil {
			switch {
			case errors.Is(err, domain.ErrExternalStoreUnavailable):
				logger.Error("role lookup failed", zap.String("identity_id", claims.Subject), zap.Error(err))
				c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"error": "Service unavailable"})
			case errors.Is(err, domain.ErrInvalidRole):
				logger.Warn("identity has an unknown role", zap.String("identity_id", claims.Subject))
				c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Forbidden"})
			default:
				// a signed token for a deleted or never-provisioned profile
				logger.Error("token subject has no identity", zap.String("identity_id", claims.Subject), zap.Error(err))
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
			}
			return
		}

		c.Set(ContextIdentityID, identity.ID)
		c.Set(ContextRole, identity.Role)
		c.Set(ContextClaims, claims)
		c.Set(ContextIdentity, identity)

		c.Next()
	}
}

func bearerToken(header string) (string, bool) {
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}
