package mocks

import (
	"strings"
	"time"

	"github.com/Mulandii/Clinic-cms/domain"
)

// MockTokenService implements domain.TokenService. By default tokens are
// "<kind>:<identityID>" strings that Validate parses back.
type MockTokenService struct {
	IssueFullFunc    func(identityID string) (string, error)
	IssuePendingFunc func(identityID string) (string, error)
	ValidateFunc     func(token string, kind domain.TokenKind) (*domain.TokenClaims, error)
	TTLFunc          func(kind domain.TokenKind) time.Duration
}

// NewMockTokenService creates a new MockTokenService with default behaviors
func NewMockTokenService() *MockTokenService {
	return &MockTokenService{}
}

func (m *MockTokenService) IssueFull(identityID string) (string, error) {
	if m.IssueFullFunc != nil {
		return m.IssueFullFunc(identityID)
	}
	return string(domain.TokenKindFull) + ":" + identityID, nil
}

func (m *MockTokenService) IssuePending(identityID string) (string, error) {
	if m.IssuePendingFunc != nil {
		return m.IssuePendingFunc(identityID)
	}
	return string(domain.TokenKindPending) + ":" + identityID, nil
}

func (m *MockTokenService) Validate(token string, kind domain.TokenKind) (*domain.TokenClaims, error) {
	if m.ValidateFunc != nil {
		return m.ValidateFunc(token, kind)
	}
	prefix, subject, ok := strings.Cut(token, ":")
	if !ok || subject == "" {
		return nil, domain.ErrTokenInvalid
	}
	if domain.TokenKind(prefix) != kind {
		return nil, domain.ErrTokenWrongKind
	}
	now := time.Now()
	return &domain.TokenClaims{
		Subject:   subject,
		Kind:      kind,
		TokenID:   "jti-" + subject,
		IssuedAt:  now,
		ExpiresAt: now.Add(m.TTL(kind)),
	}, nil
}

func (m *MockTokenService) TTL(kind domain.TokenKind) time.Duration {
	if m.TTLFunc != nil {
		return m.TTLFunc(kind)
	}
	if kind == domain.TokenKindPending {
		return 5 * time.Minute
	}
	return time.Hour
}

// Compile-time interface compliance verification
var _ domain.TokenService = (*MockTokenService)(nil)
