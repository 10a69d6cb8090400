package mocks

import (
	"context"
	"sync"
	"time"

	"github.com/Mulandii/Clinic-cms/domain"
)

// MockCodeRepository is an in-memory domain.CodeRepository. Function fields
// override the map-backed defaults.
type MockCodeRepository struct {
	SaveFunc              func(ctx context.Context, code *domain.OneTimeCode, retention time.Duration) error
	FindFunc              func(ctx context.Context, identityID string) (*domain.OneTimeCode, error)
	IncrementAttemptsFunc func(ctx context.Context, identityID string) (int, error)
	ConsumeFunc           func(ctx context.Context, identityID string) (bool, error)
	DeleteFunc            func(ctx context.Context, identityID string) error

	mu    sync.Mutex
	codes map[string]domain.OneTimeCode
}

// NewMockCodeRepository creates an empty in-memory code store
func NewMockCodeRepository() *MockCodeRepository {
	return &MockCodeRepository{codes: make(map[string]domain.OneTimeCode)}
}

func (m *MockCodeRepository) Save(ctx context.Context, code *domain.OneTimeCode, retention time.Duration) error {
	if m.SaveFunc != nil {
		return m.SaveFunc(ctx, code, retention)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.codes[code.IdentityID] = domain.OneTimeCode{
		IdentityID: code.IdentityID,
		CodeHash:   code.CodeHash,
		ExpiresAt:  code.ExpiresAt,
	}
	return nil
}

func (m *MockCodeRepository) Find(ctx context.Context, identityID string) (*domain.OneTimeCode, error) {
	if m.FindFunc != nil {
		return m.FindFunc(ctx, identityID)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	code, ok := m.codes[identityID]
	if !ok {
		return nil, domain.ErrCodeNotFound
	}
	return &code, nil
}

func (m *MockCodeRepository) IncrementAttempts(ctx context.Context, identityID string) (int, error) {
	if m.IncrementAttemptsFunc != nil {
		return m.IncrementAttemptsFunc(ctx, identityID)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	code, ok := m.codes[identityID]
	if !ok {
		return 0, domain.ErrCodeNotFound
	}
	code.Attempts++
	m.codes[identityID] = code
	return code.Attempts, nil
}

func (m *MockCodeRepository) Consume(ctx context.Context, identityID string) (bool, error) {
	if m.ConsumeFunc != nil {
		return m.ConsumeFunc(ctx, identityID)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	code, ok := m.codes[identityID]
	if !ok {
		return false, domain.ErrCodeNotFound
	}
	if code.Consumed {
		return false, nil
	}
	code.Consumed = true
	m.codes[identityID] = code
	return true, nil
}

func (m *MockCodeRepository) Delete(ctx context.Context, identityID string) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, identityID)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.codes, identityID)
	return nil
}

// Stored returns a copy of the stored record, for assertions
func (m *MockCodeRepository) Stored(identityID string) (domain.OneTimeCode, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	code, ok := m.codes[identityID]
	return code, ok
}

// Compile-time interface compliance verification
var _ domain.CodeRepository = (*MockCodeRepository)(nil)
