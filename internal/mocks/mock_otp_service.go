package mocks

import (
	"context"

	"github.com/Mulandii/Clinic-cms/domain"
)

// MockOTPService implements domain.OTPService interface for testing
type MockOTPService struct {
	IssueFunc  func(ctx context.Context, identity *domain.Identity) (string, error)
	VerifyFunc func(ctx context.Context, pendingToken, code string) (string, error)
}

// NewMockOTPService creates a new MockOTPService with default behaviors
func NewMockOTPService() *MockOTPService {
	return &MockOTPService{}
}

func (m *MockOTPService) Issue(ctx context.Context, identity *domain.Identity) (string, error) {
	if m.IssueFunc != nil {
		return m.IssueFunc(ctx, identity)
	}
	return "pending_2fa:" + identity.ID, nil
}

func (m *MockOTPService) Verify(ctx context.Context, pendingToken, code string) (string, error) {
	if m.VerifyFunc != nil {
		return m.VerifyFunc(ctx, pendingToken, code)
	}
	// Default behavior: mismatch; tests opt in to success
	return "", domain.ErrCodeMismatch
}

// Compile-time interface compliance verification
var _ domain.OTPService = (*MockOTPService)(nil)
