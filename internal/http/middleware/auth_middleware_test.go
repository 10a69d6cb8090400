package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Mulandii/Clinic-cms/domain"
	"github.com/Mulandii/Clinic-cms/internal/mocks"
)

func TestAuthMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	doctor := &domain.Identity{ID: "doc", Email: "doc@clinic.test", Role: domain.RoleDoctor}

	tests := []struct {
		name           string
		header         string
		setupMocks     func(*mocks.MockRevocationRepository, *mocks.MockRoleResolver)
		expectedStatus int
	}{
		{name: "valid full token", header: "Bearer full:doc", expectedStatus: http.StatusOK},
		{name: "scheme is case insensitive", header: "bearer full:doc", expectedStatus: http.StatusOK},
		{name: "missing header", expectedStatus: http.StatusUnauthorized},
		{name: "wrong scheme", header: "Basic full:doc", expectedStatus: http.StatusUnauthorized},
		{name: "empty token", header: "Bearer ", expectedStatus: http.StatusUnauthorized},
		{name: "tampered token", header: "Bearer garbage", expectedStatus: http.StatusUnauthorized},
		{name: "pending token is not a session", header: "Bearer pending_2fa:doc", expectedStatus: http.StatusUnauthorized},
		{
			name:   "revoked token",
			header: "Bearer full:doc",
			setupMocks: func(rev *mocks.MockRevocationRepository, _ *mocks.MockRoleResolver) {
				require.NoError(t, rev.Revoke(context.Background(), "jti-doc", time.Now().Add(time.Hour)))
			},
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:   "revocation store down fails closed",
			header: "Bearer full:doc",
			setupMocks: func(rev *mocks.MockRevocationRepository, _ *mocks.MockRoleResolver) {
				rev.IsRevokedFunc = func(ctx context.Context, tokenID string) (bool, error) {
					return false, domain.ErrExternalStoreUnavailable
				}
			},
			expectedStatus: http.StatusServiceUnavailable,
		},
		{
			name:           "identity row missing",
			header:         "Bearer full:ghost",
			expectedStatus: http.StatusInternalServerError,
		},
		{
			name:   "stored role outside the closed set",
			header: "Bearer full:doc",
			setupMocks: func(_ *mocks.MockRevocationRepository, roles *mocks.MockRoleResolver) {
				roles.ResolveFunc = func(ctx context.Context, identityID string) (*domain.Identity, error) {
					return nil, domain.ErrInvalidRole
				}
			},
			expectedStatus: http.StatusForbidden,
		},
		{
			name:   "profile store down",
			header: "Bearer full:doc",
			setupMocks: func(_ *mocks.MockRevocationRepository, roles *mocks.MockRoleResolver) {
				roles.ResolveFunc = func(ctx context.Context, identityID string) (*domain.Identity, error) {
					return nil, domain.ErrExternalStoreUnavailable
				}
			},
			expectedStatus: http.StatusServiceUnavailable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			revocations := mocks.NewMockRevocationRepository()
			roles := mocks.NewMockRoleResolver(doctor)
			if tt.setupMocks != nil {
				tt.setupMocks(revocations, roles)
			}
			mw := NewAuthMW(mocks.NewMockTokenService(), revocations, roles, nil, zap.NewNop())

			reached := false
			r := gin.New()
			r.GET("/me", mw.WithJWT(), func(c *gin.Context) {
				reached = true
				actor, ok := PrincipalFrom(c)
				require.True(t, ok)
				assert.Equal(t, domain.Principal{ID: "doc", Role: domain.RoleDoctor}, actor)
				claims, ok := ClaimsFrom(c)
				require.True(t, ok)
				assert.Equal(t, "jti-doc", claims.TokenID)
				c.Status(http.StatusOK)
			})

			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.Equal(t, tt.expectedStatus == http.StatusOK, reached, "handler reached")
		})
	}
}

func TestBearerToken(t *testing.T) {
	tok, ok := bearerToken("Bearer abc.def")
	assert.True(t, ok)
	assert.Equal(t, "abc.def", tok)

	for _, h := range []string{"", "Bearer", "Token abc", "Bearer    "} {
		_, ok := bearerToken(h)
		assert.False(t, ok, h)
	}
}
