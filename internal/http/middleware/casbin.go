package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Mulandii/Clinic-cms/domain"
	"github.com/Mulandii/Clinic-cms/internal/metrics"
)

// CasbinMiddleware defines the interface for Casbin authorization middleware
type CasbinMiddleware interface {
	Enforce() gin.HandlerFunc
}

// CasbinMW checks the caller's role against the route's allow-set
type CasbinMW struct {
	policies domain.PolicyService
	audit    domain.AuditSink
	metrics  *metrics.Metrics
	logger   *zap.Logger
}

// NewCasbinMW creates new casbin middleware wrapper
func NewCasbinMW(policies domain.PolicyService, audit domain.AuditSink, m *metrics.Metrics, logger *zap.Logger) *CasbinMW {
	return &CasbinMW{policies: policies, audit: audit, metrics: m, logger: logger}
}

// Enforce returns the casbin authorization middleware. It must run after the
// token gate.
func (mw *CasbinMW) Enforce() gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, ok := PrincipalFrom(c)
		if !ok {
			mw.metrics.AuthOutcome(metrics.OutcomeUnauthorized)
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthenticated"})
			return
		}

		// Use the parameterized path so /users/42 matches the /users/:id policy
		route := c.FullPath()
		if route == "" {
			route = c.Request.URL.Path
		}

		allowed, err := mw.policies.Allowed(actor.Role, route)
		if err != nil {
			mw.logger.Error("authorization check failed", zap.String("route", route), zap.Error(err))
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
			return
		}
		if !allowed {
			mw.audit.Record(c.Request.Context(), actor.ID, domain.ActionAccessDenied, c.ClientIP())
			mw.metrics.AuthOutcome(metrics.OutcomeAccessDenied)
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Forbidden"})
			return
		}

		c.Next()
	}
}
