package mocks

import (
	"context"
	"sync"
	"time"

	"github.com/Mulandii/Clinic-cms/domain"
)

// MockRevocationRepository is an in-memory domain.RevocationRepository
type MockRevocationRepository struct {
	RevokeFunc    func(ctx context.Context, tokenID string, until time.Time) error
	IsRevokedFunc func(ctx context.Context, tokenID string) (bool, error)

	mu      sync.Mutex
	revoked map[string]time.Time
}

func NewMockRevocationRepository() *MockRevocationRepository {
	return &MockRevocationRepository{revoked: make(map[string]time.Time)}
}

func (m *MockRevocationRepository) Revoke(ctx context.Context, tokenID string, until time.Time) error {
	if m.RevokeFunc != nil {
		return m.RevokeFunc(ctx, tokenID, until)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.revoked[tokenID] = until
	return nil
}

func (m *MockRevocationRepository) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	if m.IsRevokedFunc != nil {
		return m.IsRevokedFunc(ctx, tokenID)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.revoked[tokenID]
	return ok, nil
}

// MockResetTokenRepository is an in-memory domain.ResetTokenRepository
type MockResetTokenRepository struct {
	SaveFunc func(ctx context.Context, digest, identityID string, ttl time.Duration) error
	TakeFunc func(ctx context.Context, digest string) (string, error)

	mu     sync.Mutex
	tokens map[string]string
}

func NewMockResetTokenRepository() *MockResetTokenRepository {
	return &MockResetTokenRepository{tokens: make(map[string]string)}
}

func (m *MockResetTokenRepository) Save(ctx context.Context, digest, identityID string, ttl time.Duration) error {
	if m.SaveFunc != nil {
		return m.SaveFunc(ctx, digest, identityID, ttl)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tokens[digest] = identityID
	return nil
}

func (m *MockResetTokenRepository) Take(ctx context.Context, digest string) (string, error) {
	if m.TakeFunc != nil {
		return m.TakeFunc(ctx, digest)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	id, ok := m.tokens[digest]
	if !ok {
		return "", domain.ErrResetTokenInvalid
	}
	delete(m.tokens, digest)
	return id, nil
}

// Len reports how many reset tokens are outstanding
func (m *MockResetTokenRepository) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.tokens)
}

// Compile-time interface compliance verification
var (
	_ domain.RevocationRepository = (*MockRevocationRepository)(nil)
	_ domain.ResetTokenRepository = (*MockResetTokenRepository)(nil)
)
