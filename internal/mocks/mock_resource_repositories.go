package mocks

import (
	"context"
	"sync"

	"github.com/Mulandii/Clinic-cms/domain"
)

// MockAppointmentRepository is an in-memory domain.AppointmentRepository that
// remembers the scopes it was queried with.
type MockAppointmentRepository struct {
	ListFunc   func(ctx context.Context, scope domain.Scope) ([]domain.Appointment, error)
	CreateFunc func(ctx context.Context, appointment *domain.Appointment) error

	mu     sync.Mutex
	Rows   []domain.Appointment
	Scopes []domain.Scope
}

func NewMockAppointmentRepository(rows ...domain.Appointment) *MockAppointmentRepository {
	return &MockAppointmentRepository{Rows: rows}
}

func (m *MockAppointmentRepository) List(ctx context.Context, scope domain.Scope) ([]domain.Appointment, error) {
	m.mu.Lock()
	m.Scopes = append(m.Scopes, scope)
	m.mu.Unlock()
	if m.ListFunc != nil {
		return m.ListFunc(ctx, scope)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.Appointment
	for _, row := range m.Rows {
		if scope.Unscoped() ||
			(scope.Column == domain.OwnerPatient && row.PatientID == scope.OwnerID) ||
			(scope.Column == domain.OwnerDoctor && row.DoctorID == scope.OwnerID) {
			out = append(out, row)
		}
	}
	return out, nil
}

func (m *MockAppointmentRepository) Create(ctx context.Context, appointment *domain.Appointment) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, appointment)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if appointment.ID == "" {
		appointment.ID = "appt-generated"
	}
	m.Rows = append(m.Rows, *appointment)
	return nil
}

// MockRecordRepository is an in-memory domain.RecordRepository
type MockRecordRepository struct {
	ListFunc   func(ctx context.Context, scope domain.Scope) ([]domain.SealedRecord, error)
	CreateFunc func(ctx context.Context, record *domain.SealedRecord) error

	mu     sync.Mutex
	Rows   []domain.SealedRecord
	Scopes []domain.Scope
}

func NewMockRecordRepository(rows ...domain.SealedRecord) *MockRecordRepository {
	return &MockRecordRepository{Rows: rows}
}

func (m *MockRecordRepository) List(ctx context.Context, scope domain.Scope) ([]domain.SealedRecord, error) {
	m.mu.Lock()
	m.Scopes = append(m.Scopes, scope)
	m.mu.Unlock()
	if m.ListFunc != nil {
		return m.ListFunc(ctx, scope)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.SealedRecord
	for _, row := range m.Rows {
		if scope.Unscoped() ||
			(scope.Column == domain.OwnerPatient && row.PatientID == scope.OwnerID) ||
			(scope.Column == domain.OwnerDoctor && row.DoctorID == scope.OwnerID) {
			out = append(out, row)
		}
	}
	return out, nil
}

func (m *MockRecordRepository) Create(ctx context.Context, record *domain.SealedRecord) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, record)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Rows = append(m.Rows, *record)
	return nil
}

// MockInventoryRepository is an in-memory domain.InventoryRepository
type MockInventoryRepository struct {
	ListFunc        func(ctx context.Context) ([]domain.InventoryItem, error)
	CreateFunc      func(ctx context.Context, item *domain.InventoryItem) error
	SetQuantityFunc func(ctx context.Context, id string, quantity int) (*domain.InventoryItem, error)

	mu   sync.Mutex
	Rows []domain.InventoryItem
}

func NewMockInventoryRepository(rows ...domain.InventoryItem) *MockInventoryRepository {
	return &MockInventoryRepository{Rows: rows}
}

func (m *MockInventoryRepository) List(ctx context.Context) ([]domain.InventoryItem, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]domain.InventoryItem(nil), m.Rows...), nil
}

func (m *MockInventoryRepository) Create(ctx context.Context, item *domain.InventoryItem) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, item)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if item.ID == "" {
		item.ID = "item-generated"
	}
	m.Rows = append(m.Rows, *item)
	return nil
}

func (m *MockInventoryRepository) SetQuantity(ctx context.Context, id string, quantity int) (*domain.InventoryItem, error) {
	if m.SetQuantityFunc != nil {
		return m.SetQuantityFunc(ctx, id, quantity)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.Rows {
		if m.Rows[i].ID == id {
			m.Rows[i].Quantity = quantity
			item := m.Rows[i]
			return &item, nil
		}
	}
	return nil, domain.ErrResourceNotFound
}

// MockNotificationRepository is an in-memory domain.NotificationRepository
type MockNotificationRepository struct {
	ListFunc func(ctx context.Context, scope domain.Scope) ([]domain.Notification, error)

	mu     sync.Mutex
	Rows   []domain.Notification
	Scopes []domain.Scope
}

func NewMockNotificationRepository(rows ...domain.Notification) *MockNotificationRepository {
	return &MockNotificationRepository{Rows: rows}
}

func (m *MockNotificationRepository) List(ctx context.Context, scope domain.Scope) ([]domain.Notification, error) {
	m.mu.Lock()
	m.Scopes = append(m.Scopes, scope)
	m.mu.Unlock()
	if m.ListFunc != nil {
		return m.ListFunc(ctx, scope)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.Notification
	for _, row := range m.Rows {
		if scope.Unscoped() || row.UserID == scope.OwnerID {
			out = append(out, row)
		}
	}
	return out, nil
}

// Compile-time interface compliance verification
var (
	_ domain.AppointmentRepository  = (*MockAppointmentRepository)(nil)
	_ domain.RecordRepository       = (*MockRecordRepository)(nil)
	_ domain.InventoryRepository    = (*MockInventoryRepository)(nil)
	_ domain.NotificationRepository = (*MockNotificationRepository)(nil)
)
