package e2e

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Mulandii/Clinic-cms/domain"
	"github.com/Mulandii/Clinic-cms/internal/infrastructure/repositories"
)

var (
	userSeq     atomic.Int64
	codePattern = regexp.MustCompile(`\b(\d{6})\b`)
	resetLink   = regexp.MustCompile(`token=([^\s]+)`)
)

// seedUser stores an identity with testPassword
func (s *testServer) seedUser(t *testing.T, role domain.Role, twoFA bool) *domain.Identity {
	t.Helper()

	identity := &domain.Identity{
		Email:        fmt.Sprintf("%s-%d@clinic.test", role, userSeq.Add(1)),
		Phone:        "+15550001111",
		Role:         role,
		TwoFAEnabled: twoFA,
	}
	hash, err := s.container.PasswordSvc.Hash(testPassword)
	require.NoError(t, err)
	require.NoError(t, s.container.UserRepo.Create(context.Background(), identity, hash))
	return identity
}

// login performs a password login that must yield a full session token
func (s *testServer) login(t *testing.T, identity *domain.Identity) string {
	t.Helper()

	w := s.do(http.MethodPost, "/login", "", map[string]string{"email": identity.Email, "password": testPassword})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	token, _ := data(t, w)["token"].(string)
	require.NotEmpty(t, token)
	return token
}

// lastCode extracts the one-time code from the most recent delivered message
func (s *testServer) lastCode(t *testing.T) string {
	t.Helper()

	msg, ok := s.notifier.Last()
	require.True(t, ok, "no message delivered")
	m := codePattern.FindStringSubmatch(msg.Body)
	require.Len(t, m, 2, msg.Body)
	return m[1]
}

// lastResetToken extracts the reset token from the most recent reset email
func (s *testServer) lastResetToken(t *testing.T) string {
	t.Helper()

	msg, ok := s.notifier.Last()
	require.True(t, ok, "no message delivered")
	m := resetLink.FindStringSubmatch(msg.Body)
	require.Len(t, m, 2, msg.Body)
	token, err := url.QueryUnescape(m[1])
	require.NoError(t, err)
	return token
}

// auditRows waits for pending audit writes and returns rows with action
func (s *testServer) auditRows(t *testing.T, action domain.AuditAction) []repositories.DBAuditLog {
	t.Helper()

	s.container.Audit.Wait()
	var out []repositories.DBAuditLog
	require.NoError(t, s.container.DB.Where("action = ?", string(action)).Order("id").Find(&out).Error)
	return out
}
