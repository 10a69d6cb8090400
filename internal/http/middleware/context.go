package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/Mulandii/Clinic-cms/domain"
)

// Keys set on the gin context by the token gate
const (
	ContextIdentityID = "user_id"
	ContextRole       = "user_role"
	ContextClaims     = "token_claims"
	ContextIdentity   = "identity"
)

// PrincipalFrom returns the authorized caller set by the token gate
func PrincipalFrom(c *gin.Context) (domain.Principal, bool) {
	id := c.GetString(ContextIdentityID)
	role, ok := c.Get(ContextRole)
	if id == "" || !ok {
		return domain.Principal{}, false
	}
	r, ok := role.(domain.Role)
	if !ok {
		return domain.Principal{}, false
	}
	return domain.Principal{ID: id, Role: r}, true
}

// ClaimsFrom returns the validated token claims of the request
func ClaimsFrom(c *gin.Context) (*domain.TokenClaims, bool) {
	v, ok := c.Get(ContextClaims)
	if !ok {
		return nil, false
	}
	claims, ok := v.(*domain.TokenClaims)
	return claims, ok
}

// IdentityFrom returns the resolved identity of the request
func IdentityFrom(c *gin.Context) (*domain.Identity, bool) {
	v, ok := c.Get(ContextIdentity)
	if !ok {
		return nil, false
	}
	identity, ok := v.(*domain.Identity)
	return identity, ok
}
