package mocks

import (
	"context"

	"github.com/Mulandii/Clinic-cms/domain"
)

// MockAuthService implements domain.AuthService interface for testing
type MockAuthService struct {
	LoginFunc                func(ctx context.Context, email, password, ip string) (*domain.LoginResult, error)
	VerifySecondFactorFunc   func(ctx context.Context, pendingToken, code, ip string) (*domain.LoginResult, error)
	LogoutFunc               func(ctx context.Context, claims *domain.TokenClaims, ip string) error
	RequestPasswordResetFunc func(ctx context.Context, actorID, email, ip string) error
	ConfirmPasswordResetFunc func(ctx context.Context, token, newPassword, ip string) error
}

// NewMockAuthService creates a new MockAuthService with default behaviors
func NewMockAuthService() *MockAuthService {
	return &MockAuthService{}
}

func (m *MockAuthService) Login(ctx context.Context, email, password, ip string) (*domain.LoginResult, error) {
	if m.LoginFunc != nil {
		return m.LoginFunc(ctx, email, password, ip)
	}
	return nil, domain.ErrInvalidCredentials
}

func (m *MockAuthService) VerifySecondFactor(ctx context.Context, pendingToken, code, ip string) (*domain.LoginResult, error) {
	if m.VerifySecondFactorFunc != nil {
		return m.VerifySecondFactorFunc(ctx, pendingToken, code, ip)
	}
	return nil, domain.ErrCodeMismatch
}

func (m *MockAuthService) Logout(ctx context.Context, claims *domain.TokenClaims, ip string) error {
	if m.LogoutFunc != nil {
		return m.LogoutFunc(ctx, claims, ip)
	}
	return nil
}

func (m *MockAuthService) RequestPasswordReset(ctx context.Context, actorID, email, ip string) error {
	if m.RequestPasswordResetFunc != nil {
		return m.RequestPasswordResetFunc(ctx, actorID, email, ip)
	}
	return nil
}

func (m *MockAuthService) ConfirmPasswordReset(ctx context.Context, token, newPassword, ip string) error {
	if m.ConfirmPasswordResetFunc != nil {
		return m.ConfirmPasswordResetFunc(ctx, token, newPassword, ip)
	}
	return domain.ErrResetTokenInvalid
}

// Compile-time interface compliance verification
var _ domain.AuthService = (*MockAuthService)(nil)
