package handlers

import (
	"net/http"

	"github.com/casbin/casbin/v2/util"
	"github.com/gin-gonic/gin"

	"github.com/Mulandii/Clinic-cms/domain"
)

// PolicyHandlers exposes the compiled route allow-sets read-only
type PolicyHandlers struct {
	policies domain.PolicyService
}

func NewPolicyHandlers(policies domain.PolicyService) *PolicyHandlers {
	return &PolicyHandlers{policies: policies}
}

// List returns every policy, or with ?route= only those whose pattern matches that path
func (h *PolicyHandlers) List(c *gin.Context) {
	if c.Request.Method != http.MethodGet {
		methodNotAllowed(c)
		return
	}

	policies := h.policies.GetPolicies()
	route := c.Query("route")

	out := make([]gin.H, 0, len(policies))
	for _, p := range policies {
		if len(p) < 2 {
			continue
		}
		if route != "" && !util.KeyMatch2(route, p[1]) {
			continue
		}
		out = append(out, gin.H{"subject": p[0], "route": p[1]})
	}
	c.JSON(http.StatusOK, gin.H{"data": out})
}
