package httpx

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/Mulandii/Clinic-cms/internal/http/handlers"
	"github.com/Mulandii/Clinic-cms/internal/http/middleware"
	"github.com/Mulandii/Clinic-cms/internal/metrics"
)

// Observability carries the request logger and metrics wiring
type Observability struct {
	Logger   *zap.Logger
	Metrics  *metrics.Metrics
	Gatherer prometheus.Gatherer
}

func BuildRouter(
	ah *handlers.AuthHandlers,
	rh *handlers.ResourceHandlers,
	ph *handlers.PolicyHandlers,
	jwtmw *middleware.AuthMW,
	cb middleware.CasbinMiddleware,
	limiter *middleware.IPRateLimiter,
	obs Observability,
) *gin.Engine {
	r := gin.New()
	// client IPs come from the socket; forwarded headers are not trusted
	_ = r.SetTrustedProxies(nil)
	r.Use(gin.Recovery(), middleware.RequestLogger(obs.Logger), middleware.RequestMetrics(obs.Metrics))

	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"ok": true}) })
	if obs.Gatherer != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(obs.Gatherer, promhttp.HandlerOpts{})))
	}

	public := r.Group("/")
	public.Use(limiter.Middleware())
	public.POST("/login", ah.Login)
	public.POST("/verify-2fa", ah.VerifySecondFactor)
	public.POST("/reset-password/confirm", ah.ConfirmPasswordReset)

	// Every verb is routed so the gate runs before any 405
	v := r.Group("/")
	v.Use(jwtmw.WithJWT(), cb.Enforce())
	v.Any("/me", ah.Me)
	v.Any("/logout", ah.Logout)
	v.Any("/reset-password", ah.RequestPasswordReset)
	v.Any("/users", rh.Users)
	v.Any("/users/:id", rh.UserByID)
	v.Any("/appointments", rh.Appointments)
	v.Any("/records", rh.Records)
	v.Any("/inventory", rh.Inventory)
	v.Any("/inventory/:id", rh.InventoryItem)
	v.Any("/notifications", rh.Notifications)
	v.Any("/admin/policies", ph.List)

	return r
}
