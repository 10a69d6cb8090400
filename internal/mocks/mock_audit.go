package mocks

import (
	"context"
	"sync"

	"github.com/Mulandii/Clinic-cms/domain"
)

// MockAuditSink records entries synchronously
type MockAuditSink struct {
	mu      sync.Mutex
	entries []domain.AuditEntry
}

func NewMockAuditSink() *MockAuditSink {
	return &MockAuditSink{}
}

func (m *MockAuditSink) Record(ctx context.Context, identityID string, action domain.AuditAction, ip string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = append(m.entries, *domain.NewAuditEntry(identityID, action, ip))
}

func (m *MockAuditSink) Wait() {}

// Entries returns a copy of everything recorded so far
func (m *MockAuditSink) Entries() []domain.AuditEntry {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]domain.AuditEntry(nil), m.entries...)
}

// Actions lists the recorded actions in order
func (m *MockAuditSink) Actions() []domain.AuditAction {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]domain.AuditAction, len(m.entries))
	for i, e := range m.entries {
		out[i] = e.Action
	}
	return out
}

// MockAuditRepository implements domain.AuditRepository and domain.AuditPublisher
type MockAuditRepository struct {
	AppendFunc  func(ctx context.Context, entry *domain.AuditEntry) error
	PublishFunc func(ctx context.Context, entry *domain.AuditEntry) error

	mu       sync.Mutex
	appended []domain.AuditEntry
}

func NewMockAuditRepository() *MockAuditRepository {
	return &MockAuditRepository{}
}

func (m *MockAuditRepository) Append(ctx context.Context, entry *domain.AuditEntry) error {
	if m.AppendFunc != nil {
		if err := m.AppendFunc(ctx, entry); err != nil {
			return err
		}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.appended = append(m.appended, *entry)
	return nil
}

func (m *MockAuditRepository) Publish(ctx context.Context, entry *domain.AuditEntry) error {
	if m.PublishFunc != nil {
		return m.PublishFunc(ctx, entry)
	}
	return m.Append(ctx, entry)
}

// Appended returns a copy of every stored entry
func (m *MockAuditRepository) Appended() []domain.AuditEntry {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]domain.AuditEntry(nil), m.appended...)
}

// Compile-time interface compliance verification
var (
	_ domain.AuditSink       = (*MockAuditSink)(nil)
	_ domain.AuditRepository = (*MockAuditRepository)(nil)
	_ domain.AuditPublisher  = (*MockAuditRepository)(nil)
)
