package services

import (
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/Mulandii/Clinic-cms/domain"
	"github.com/Mulandii/Clinic-cms/internal/config"
	"github.com/Mulandii/Clinic-cms/internal/mocks"
)

const testIP = "203.0.113.7"

// authDeps bundles the mocks behind an AuthServiceImpl
type authDeps struct {
	credentials *mocks.MockCredentialStore
	roles       *mocks.MockRoleResolver
	otp         *mocks.MockOTPService
	tokens      *mocks.MockTokenService
	revocations *mocks.MockRevocationRepository
	audit       *mocks.MockAuditSink
}

func createAuthServiceForTest(t *testing.T, identities ...*domain.Identity) (*AuthServiceImpl, *authDeps) {
	t.Helper()

	deps := &authDeps{
		credentials: mocks.NewMockCredentialStore(),
		roles:       mocks.NewMockRoleResolver(identities...),
		otp:         mocks.NewMockOTPService(),
		tokens:      mocks.NewMockTokenService(),
		revocations: mocks.NewMockRevocationRepository(),
		audit:       mocks.NewMockAuditSink(),
	}
	svc := NewAuthService(deps.credentials, deps.roles, deps.otp, deps.tokens, deps.revocations, deps.audit, nil, zap.NewNop())
	return svc, deps
}

// otpDeps bundles the mocks behind an OTPServiceImpl
type otpDeps struct {
	codes  *mocks.MockCodeRepository
	hasher *mocks.MockPasswordService
	tokens *mocks.MockTokenService
	notify *mocks.MockNotificationService
	clock  *testClock
}

func testOTPConfig() OTPConfig {
	return OTPConfig{
		Length:      6,
		TTL:         5 * time.Minute,
		MaxAttempts: 3,
		Retention:   10 * time.Minute,
		Channel:     config.ChannelEmail,
	}
}

func createOTPServiceForTest(t *testing.T, cfg OTPConfig) (*OTPServiceImpl, *otpDeps) {
	t.Helper()

	deps := &otpDeps{
		codes:  mocks.NewMockCodeRepository(),
		hasher: mocks.NewMockPasswordService(),
		tokens: mocks.NewMockTokenService(),
		notify: mocks.NewMockNotificationService(),
		clock:  newTestClock(),
	}
	svc := NewOTPService(deps.codes, deps.hasher, deps.tokens, deps.notify, cfg, zap.NewNop()).WithClock(deps.clock.Now)
	return svc, deps
}

// testClock is a manually advanced time source
type testClock struct {
	now time.Time
}

func newTestClock() *testClock {
	return &testClock{now: time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)}
}

func (c *testClock) Now() time.Time { return c.now }

func (c *testClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

func createIdentity(t *testing.T, id string, role domain.Role) *domain.Identity {
	t.Helper()

	return &domain.Identity{
		ID:    id,
		Email: id + "@clinic.test",
		Phone: "+15550001111",
		Role:  role,
	}
}

func createTwoFactorIdentity(t *testing.T, id string, role domain.Role) *domain.Identity {
	t.Helper()

	identity := createIdentity(t, id, role)
	identity.TwoFAEnabled = true
	return identity
}

func principal(id string, role domain.Role) domain.Principal {
	return domain.Principal{ID: id, Role: role}
}
