package mocks

import (
	"context"

	"github.com/Mulandii/Clinic-cms/domain"
)

// MockIdentityRepository implements domain.IdentityRepository interface for testing
type MockIdentityRepository struct {
	FindByIDFunc        func(ctx context.Context, id string) (*domain.Identity, error)
	FindByEmailFunc     func(ctx context.Context, email string) (*domain.Identity, error)
	FindCredentialsFunc func(ctx context.Context, email string) (*domain.Credentials, error)
	ListFunc            func(ctx context.Context) ([]domain.Identity, error)
	CreateFunc          func(ctx context.Context, identity *domain.Identity, passwordHash string) error
	UpdateFunc          func(ctx context.Context, id string, update domain.UserUpdate) (*domain.Identity, error)
	DeleteFunc          func(ctx context.Context, id string) error
	SetPasswordHashFunc func(ctx context.Context, id, passwordHash string) error
}

// NewMockIdentityRepository creates a new MockIdentityRepository with default behaviors
func NewMockIdentityRepository() *MockIdentityRepository {
	return &MockIdentityRepository{}
}

func (m *MockIdentityRepository) FindByID(ctx context.Context, id string) (*domain.Identity, error) {
	if m.FindByIDFunc != nil {
		return m.FindByIDFunc(ctx, id)
	}
	// Default behavior: not found
	return nil, domain.ErrIdentityNotFound
}

func (m *MockIdentityRepository) FindByEmail(ctx context.Context, email string) (*domain.Identity, error) {
	if m.FindByEmailFunc != nil {
		return m.FindByEmailFunc(ctx, email)
	}
	return nil, domain.ErrIdentityNotFound
}

func (m *MockIdentityRepository) FindCredentials(ctx context.Context, email string) (*domain.Credentials, error) {
	if m.FindCredentialsFunc != nil {
		return m.FindCredentialsFunc(ctx, email)
	}
	return nil, domain.ErrIdentityNotFound
}

func (m *MockIdentityRepository) List(ctx context.Context) ([]domain.Identity, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx)
	}
	return []domain.Identity{}, nil
}

func (m *MockIdentityRepository) Create(ctx context.Context, identity *domain.Identity, passwordHash string) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, identity, passwordHash)
	}
	// Default behavior: success with a fixed id
	if identity.ID == "" {
		identity.ID = "generated-id"
	}
	return nil
}

func (m *MockIdentityRepository) Update(ctx context.Context, id string, update domain.UserUpdate) (*domain.Identity, error) {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, id, update)
	}
	return nil, domain.ErrIdentityNotFound
}

func (m *MockIdentityRepository) Delete(ctx context.Context, id string) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, id)
	}
	return nil
}

func (m *MockIdentityRepository) SetPasswordHash(ctx context.Context, id, passwordHash string) error {
	if m.SetPasswordHashFunc != nil {
		return m.SetPasswordHashFunc(ctx, id, passwordHash)
	}
	return nil
}

// Compile-time interface compliance verification
var _ domain.IdentityRepository = (*MockIdentityRepository)(nil)
