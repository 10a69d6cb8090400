package services

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Mulandii/Clinic-cms/domain"
)

func TestAuthServiceImpl_Login(t *testing.T) {
	tests := []struct {
		name          string
		email         string
		password      string
		identity      *domain.Identity
		setupMocks    func(*authDeps)
		expectedError error
		expectPending bool
		expectedAudit []domain.AuditAction
	}{
		{
			name:     "password only identity gets a full token",
			email:    "doc@clinic.test",
			password: "correct-horse",
			identity: &domain.Identity{ID: "doc", Email: "doc@clinic.test", Role: domain.RoleDoctor},
			setupMocks: func(d *authDeps) {
				d.credentials.AuthenticateFunc = func(ctx context.Context, email, password string) (string, error) {
					return "doc", nil
				}
			},
			expectedAudit: []domain.AuditAction{domain.ActionLogin},
		},
		{
			name:     "two factor identity gets a pending token",
			email:    "admin@clinic.test",
			password: "correct-horse",
			identity: &domain.Identity{ID: "admin", Email: "admin@clinic.test", Role: domain.RoleAdmin, TwoFAEnabled: true},
			setupMocks: func(d *authDeps) {
				d.credentials.AuthenticateFunc = func(ctx context.Context, email, password string) (string, error) {
					return "admin", nil
				}
			},
			expectPending: true,
			expectedAudit: []domain.AuditAction{domain.ActionOTPIssued},
		},
		{
			name:          "wrong password",
			email:         "doc@clinic.test",
			password:      "nope",
			expectedError: domain.ErrInvalidCredentials,
			expectedAudit: []domain.AuditAction{domain.ActionFailedLogin},
		},
		{
			name:          "empty email never reaches the store",
			email:         "   ",
			password:      "pw",
			expectedError: domain.ErrInvalidCredentials,
			setupMocks: func(d *authDeps) {
				d.credentials.AuthenticateFunc = func(ctx context.Context, email, password string) (string, error) {
					t.Fatal("credential store must not be called")
					return "", nil
				}
			},
			expectedAudit: []domain.AuditAction{domain.ActionFailedLogin},
		},
		{
			name:          "empty password",
			email:         "doc@clinic.test",
			expectedError: domain.ErrInvalidCredentials,
			expectedAudit: []domain.AuditAction{domain.ActionFailedLogin},
		},
		{
			name:     "store outage is reported as invalid credentials",
			email:    "doc@clinic.test",
			password: "pw",
			setupMocks: func(d *authDeps) {
				d.credentials.AuthenticateFunc = func(ctx context.Context, email, password string) (string, error) {
					return "", domain.ErrExternalStoreUnavailable
				}
			},
			expectedError: domain.ErrInvalidCredentials,
			expectedAudit: []domain.AuditAction{domain.ActionFailedLogin},
		},
		{
			name:     "authenticated identity without a profile row",
			email:    "ghost@clinic.test",
			password: "pw",
			setupMocks: func(d *authDeps) {
				d.credentials.AuthenticateFunc = func(ctx context.Context, email, password string) (string, error) {
					return "ghost", nil
				}
			},
			expectedError: domain.ErrIdentityNotFound,
		},
		{
			name:     "stored role outside the closed set is a server fault",
			email:    "odd@clinic.test",
			password: "pw",
			setupMocks: func(d *authDeps) {
				d.credentials.AuthenticateFunc = func(ctx context.Context, email, password string) (string, error) {
					return "odd", nil
				}
				d.roles.ResolveFunc = func(ctx context.Context, identityID string) (*domain.Identity, error) {
					return nil, fmt.Errorf("user odd: %w", domain.ErrInvalidRole)
				}
			},
			expectedError: domain.ErrProfileCorrupt,
		},
		{
			name:     "code delivery failure aborts the login",
			email:    "admin@clinic.test",
			password: "pw",
			identity: &domain.Identity{ID: "admin", Role: domain.RoleAdmin, TwoFAEnabled: true},
			setupMocks: func(d *authDeps) {
				d.credentials.AuthenticateFunc = func(ctx context.Context, email, password string) (string, error) {
					return "admin", nil
				}
				d.otp.IssueFunc = func(ctx context.Context, identity *domain.Identity) (string, error) {
					return "", domain.ErrDeliveryFailed
				}
			},
			expectedError: domain.ErrDeliveryFailed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var identities []*domain.Identity
			if tt.identity != nil {
				identities = append(identities, tt.identity)
			}
			svc, deps := createAuthServiceForTest(t, identities...)
			if tt.setupMocks != nil {
				tt.setupMocks(deps)
			}

			result, err := svc.Login(context.Background(), tt.email, tt.password, testIP)

			if tt.expectedError != nil {
				require.ErrorIs(t, err, tt.expectedError)
				assert.Nil(t, result)
			} else {
				require.NoError(t, err)
				require.NotNil(t, result)
				assert.Equal(t, tt.identity.ID, result.Identity.ID)
				if tt.expectPending {
					assert.True(t, result.IsPending())
					assert.Empty(t, result.Token)
					assert.Equal(t, "pending_2fa:"+tt.identity.ID, result.PendingToken)
					assert.Equal(t, int64(300), result.ExpiresIn)
				} else {
					assert.False(t, result.IsPending())
					assert.Equal(t, "full:"+tt.identity.ID, result.Token)
					assert.Equal(t, int64(3600), result.ExpiresIn)
				}
			}
			assert.Equal(t, tt.expectedAudit, deps.audit.Actions())
		})
	}
}

func TestAuthServiceImpl_LoginFailureAuditHasNoActor(t *testing.T) {
	svc, deps := createAuthServiceForTest(t)

	_, err := svc.Login(context.Background(), "someone@clinic.test", "bad", testIP)
	require.ErrorIs(t, err, domain.ErrInvalidCredentials)

	entries := deps.audit.Entries()
	require.Len(t, entries, 1)
	assert.Empty(t, entries[0].IdentityID)
	assert.Equal(t, testIP, entries[0].IPAddress)
}

func TestAuthServiceImpl_VerifySecondFactor(t *testing.T) {
	admin := &domain.Identity{ID: "admin", Role: domain.RoleAdmin, TwoFAEnabled: true}

	tests := []struct {
		name          string
		pending       string
		setupMocks    func(*authDeps)
		expectedError error
		expectedAudit []domain.AuditAction
		expectedActor string
	}{
		{
			name:    "valid code completes the login",
			pending: "pending_2fa:admin",
			setupMocks: func(d *authDeps) {
				d.otp.VerifyFunc = func(ctx context.Context, pendingToken, code string) (string, error) {
					return "admin", nil
				}
			},
			expectedAudit: []domain.AuditAction{domain.ActionOTPVerified, domain.ActionLogin},
			expectedActor: "admin",
		},
		{
			name:          "mismatch is audited against the pending subject",
			pending:       "pending_2fa:admin",
			expectedError: domain.ErrCodeMismatch,
			expectedAudit: []domain.AuditAction{domain.ActionOTPFailed},
			expectedActor: "admin",
		},
		{
			name:    "invalid pending token is audited without an actor",
			pending: "garbage",
			setupMocks: func(d *authDeps) {
				d.otp.VerifyFunc = func(ctx context.Context, pendingToken, code string) (string, error) {
					return "", domain.ErrTokenInvalid
				}
			},
			expectedError: domain.ErrTokenInvalid,
			expectedAudit: []domain.AuditAction{domain.ActionOTPFailed},
		},
		{
			name:    "exhausted attempts",
			pending: "pending_2fa:admin",
			setupMocks: func(d *authDeps) {
				d.otp.VerifyFunc = func(ctx context.Context, pendingToken, code string) (string, error) {
					return "", domain.ErrCodeMaxAttempts
				}
			},
			expectedError: domain.ErrCodeMaxAttempts,
			expectedAudit: []domain.AuditAction{domain.ActionOTPFailed},
			expectedActor: "admin",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, deps := createAuthServiceForTest(t, admin)
			if tt.setupMocks != nil {
				tt.setupMocks(deps)
			}

			result, err := svc.VerifySecondFactor(context.Background(), tt.pending, "123456", testIP)

			if tt.expectedError != nil {
				require.ErrorIs(t, err, tt.expectedError)
				assert.Nil(t, result)
			} else {
				require.NoError(t, err)
				assert.Equal(t, "full:admin", result.Token)
				assert.False(t, result.IsPending())
			}
			assert.Equal(t, tt.expectedAudit, deps.audit.Actions())
			for _, entry := range deps.audit.Entries() {
				assert.Equal(t, tt.expectedActor, entry.IdentityID)
			}
		})
	}
}

func TestAuthServiceImpl_Logout(t *testing.T) {
	t.Run("revokes the token id until expiry", func(t *testing.T) {
		svc, deps := createAuthServiceForTest(t)
		expires := time.Now().Add(time.Hour)
		var until time.Time
		deps.revocations.RevokeFunc = func(ctx context.Context, tokenID string, u time.Time) error {
			assert.Equal(t, "jti-1", tokenID)
			until = u
			return nil
		}

		err := svc.Logout(context.Background(), &domain.TokenClaims{Subject: "doc", TokenID: "jti-1", ExpiresAt: expires}, testIP)

		require.NoError(t, err)
		assert.Equal(t, expires, until)
		assert.Equal(t, []domain.AuditAction{domain.ActionLogout}, deps.audit.Actions())
	})

	t.Run("missing claims", func(t *testing.T) {
		svc, _ := createAuthServiceForTest(t)
		assert.ErrorIs(t, svc.Logout(context.Background(), nil, testIP), domain.ErrUnauthenticated)
		assert.ErrorIs(t, svc.Logout(context.Background(), &domain.TokenClaims{Subject: "doc"}, testIP), domain.ErrUnauthenticated)
	})

	t.Run("revocation store outage is not audited", func(t *testing.T) {
		svc, deps := createAuthServiceForTest(t)
		deps.revocations.RevokeFunc = func(ctx context.Context, tokenID string, until time.Time) error {
			return domain.ErrExternalStoreUnavailable
		}

		err := svc.Logout(context.Background(), &domain.TokenClaims{Subject: "doc", TokenID: "jti-1"}, testIP)

		assert.ErrorIs(t, err, domain.ErrExternalStoreUnavailable)
		assert.Empty(t, deps.audit.Actions())
	})
}

func TestAuthServiceImpl_RequestPasswordReset(t *testing.T) {
	tests := []struct {
		name          string
		email         string
		storeErr      error
		expectedError error
		expectAudit   bool
	}{
		{name: "forwards to the credential store", email: "doc@clinic.test", expectAudit: true},
		{name: "empty email", email: " ", expectedError: domain.ErrInvalidInput},
		{name: "delivery failure", email: "doc@clinic.test", storeErr: domain.ErrDeliveryFailed, expectedError: domain.ErrDeliveryFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, deps := createAuthServiceForTest(t)
			var forwarded string
			deps.credentials.RequestPasswordResetFunc = func(ctx context.Context, email string) error {
				forwarded = email
				return tt.storeErr
			}

			err := svc.RequestPasswordReset(context.Background(), "admin", tt.email, testIP)

			if tt.expectedError != nil {
				assert.ErrorIs(t, err, tt.expectedError)
			} else {
				require.NoError(t, err)
				assert.Equal(t, "doc@clinic.test", forwarded)
			}
			if tt.expectAudit {
				entries := deps.audit.Entries()
				require.Len(t, entries, 1)
				assert.Equal(t, domain.ActionResetRequest, entries[0].Action)
				assert.Equal(t, "admin", entries[0].IdentityID)
			} else {
				assert.Empty(t, deps.audit.Actions())
			}
		})
	}
}

// passwordOnlyStore is a credential store without local reset support
type passwordOnlyStore struct{}

func (passwordOnlyStore) Authenticate(ctx context.Context, email, password string) (string, error) {
	return "", domain.ErrInvalidCredentials
}

func (passwordOnlyStore) RequestPasswordReset(ctx context.Context, email string) error { return nil }

func TestAuthServiceImpl_ConfirmPasswordReset(t *testing.T) {
	t.Run("completes through the resetter", func(t *testing.T) {
		svc, deps := createAuthServiceForTest(t)
		deps.credentials.ConfirmPasswordResetFunc = func(ctx context.Context, token, newPassword string) error {
			assert.Equal(t, "tok", token)
			assert.Equal(t, "new-password", newPassword)
			return nil
		}

		require.NoError(t, svc.ConfirmPasswordReset(context.Background(), "tok", "new-password", testIP))
		assert.Equal(t, []domain.AuditAction{domain.ActionPasswordReset}, deps.audit.Actions())
	})

	t.Run("invalid token", func(t *testing.T) {
		svc, deps := createAuthServiceForTest(t)

		err := svc.ConfirmPasswordReset(context.Background(), "tok", "new-password", testIP)

		assert.ErrorIs(t, err, domain.ErrResetTokenInvalid)
		assert.Empty(t, deps.audit.Actions())
	})

	t.Run("store without local passwords", func(t *testing.T) {
		_, deps := createAuthServiceForTest(t)
		svc := NewAuthService(passwordOnlyStore{}, deps.roles, deps.otp, deps.tokens, deps.revocations, deps.audit, nil, nil)

		err := svc.ConfirmPasswordReset(context.Background(), "tok", "new-password", testIP)

		assert.True(t, errors.Is(err, domain.ErrResetUnsupported))
	})
}
