package mocks

import (
	"context"

	"github.com/Mulandii/Clinic-cms/domain"
)

// MockCredentialStore implements domain.CredentialStore and domain.PasswordResetter
type MockCredentialStore struct {
	AuthenticateFunc         func(ctx context.Context, email, password string) (string, error)
	RequestPasswordResetFunc func(ctx context.Context, email string) error
	ConfirmPasswordResetFunc func(ctx context.Context, token, newPassword string) error
}

func NewMockCredentialStore() *MockCredentialStore {
	return &MockCredentialStore{}
}

func (m *MockCredentialStore) Authenticate(ctx context.Context, email, password string) (string, error) {
	if m.AuthenticateFunc != nil {
		return m.AuthenticateFunc(ctx, email, password)
	}
	return "", domain.ErrInvalidCredentials
}

func (m *MockCredentialStore) RequestPasswordReset(ctx context.Context, email string) error {
	if m.RequestPasswordResetFunc != nil {
		return m.RequestPasswordResetFunc(ctx, email)
	}
	return nil
}

func (m *MockCredentialStore) ConfirmPasswordReset(ctx context.Context, token, newPassword string) error {
	if m.ConfirmPasswordResetFunc != nil {
		return m.ConfirmPasswordResetFunc(ctx, token, newPassword)
	}
	return domain.ErrResetTokenInvalid
}

// MockRoleResolver implements domain.RoleResolver
type MockRoleResolver struct {
	ResolveFunc    func(ctx context.Context, identityID string) (*domain.Identity, error)
	InvalidateFunc func(identityID string)

	Identities  map[string]*domain.Identity
	Invalidated []string
}

// NewMockRoleResolver resolves from the given identities, keyed by ID
func NewMockRoleResolver(identities ...*domain.Identity) *MockRoleResolver {
	m := &MockRoleResolver{Identities: make(map[string]*domain.Identity)}
	for _, identity := range identities {
		m.Identities[identity.ID] = identity
	}
	return m
}

func (m *MockRoleResolver) Resolve(ctx context.Context, identityID string) (*domain.Identity, error) {
	if m.ResolveFunc != nil {
		return m.ResolveFunc(ctx, identityID)
	}
	identity, ok := m.Identities[identityID]
	if !ok {
		return nil, domain.ErrIdentityNotFound
	}
	copied := *identity
	return &copied, nil
}

func (m *MockRoleResolver) Invalidate(identityID string) {
	if m.InvalidateFunc != nil {
		m.InvalidateFunc(identityID)
		return
	}
	m.Invalidated = append(m.Invalidated, identityID)
}

// Compile-time interface compliance verification
var (
	_ domain.CredentialStore  = (*MockCredentialStore)(nil)
	_ domain.PasswordResetter = (*MockCredentialStore)(nil)
	_ domain.RoleResolver     = (*MockRoleResolver)(nil)
)
