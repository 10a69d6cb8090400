package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Mulandii/Clinic-cms/domain"
)

// scoped applies an ownership filter. Scope columns come from a closed set of
// constants, never from request input.
func scoped(q *gorm.DB, scope domain.Scope) *gorm.DB {
	if scope.Unscoped() {
		return q
	}
	return q.Where(map[string]interface{}{string(scope.Column): scope.OwnerID})
}

// AppointmentRepositoryImpl implements domain.AppointmentRepository
type AppointmentRepositoryImpl struct {
	db *gorm.DB
}

func NewAppointmentRepository(db *gorm.DB) *AppointmentRepositoryImpl {
	return &AppointmentRepositoryImpl{db: db}
}

func (r *AppointmentRepositoryImpl) List(ctx context.Context, scope domain.Scope) ([]domain.Appointment, error) {
	var rows []DBAppointment
	if err := scoped(r.db.WithContext(ctx), scope).Order("scheduled_at, id").Find(&rows).Error; err != nil {
		return nil, unavailable("list appointments", err)
	}

	out := make([]domain.Appointment, len(rows))
	for i, row := range rows {
		out[i] = domain.Appointment{
			ID:          row.ID,
			PatientID:   row.PatientID,
			DoctorID:    row.DoctorID,
			ScheduledAt: row.ScheduledAt,
			Reason:      row.Reason,
			Status:      row.Status,
			CreatedAt:   row.CreatedAt,
		}
	}
	return out, nil
}

func (r *AppointmentRepositoryImpl) Create(ctx context.Context, appointment *domain.Appointment) error {
	row := &DBAppointment{
		ID:          appointment.ID,
		PatientID:   appointment.PatientID,
		DoctorID:    appointment.DoctorID,
		ScheduledAt: appointment.ScheduledAt.UTC(),
		Reason:      appointment.Reason,
		Status:      appointment.Status,
	}
	if row.ID == "" {
		row.ID = uuid.NewString()
	}
	if err := r.db.WithContext(ctx).Create(row).Error; err != nil {
		return unavailable("create appointment", err)
	}
	appointment.ID = row.ID
	appointment.ScheduledAt = row.ScheduledAt
	appointment.CreatedAt = row.CreatedAt
	return nil
}

// RecordRepositoryImpl implements domain.RecordRepository over sealed rows
type RecordRepositoryImpl struct {
	db *gorm.DB
}

func NewRecordRepository(db *gorm.DB) *RecordRepositoryImpl {
	return &RecordRepositoryImpl{db: db}
}

func (r *RecordRepositoryImpl) List(ctx context.Context, scope domain.Scope) ([]domain.SealedRecord, error) {
	var rows []DBMedicalRecord
	if err := scoped(r.db.WithContext(ctx), scope).Order("created_at, id").Find(&rows).Error; err != nil {
		return nil, unavailable("list medical records", err)
	}

	out := make([]domain.SealedRecord, len(rows))
	for i, row := range rows {
		out[i] = domain.SealedRecord{
			ID:                  row.ID,
			PatientID:           row.PatientID,
			DoctorID:            row.DoctorID,
			Diagnosis:           row.Diagnosis,
			EncryptedLabResults: row.EncryptedLabResults,
			WrappedKey:          row.WrappedKey,
			KeyID:               row.KeyID,
			CreatedAt:           row.CreatedAt,
		}
	}
	return out, nil
}

// Create stores an already sealed record. The caller assigns the ID because
// it is bound into the ciphertext as associated data.
func (r *RecordRepositoryImpl) Create(ctx context.Context, record *domain.SealedRecord) error {
	if record.ID == "" {
		return domain.ErrInvalidInput
	}
	row := &DBMedicalRecord{
		ID:                  record.ID,
		PatientID:           record.PatientID,
		DoctorID:            record.DoctorID,
		Diagnosis:           record.Diagnosis,
		EncryptedLabResults: record.EncryptedLabResults,
		WrappedKey:          record.WrappedKey,
		KeyID:               record.KeyID,
	}
	if err := r.db.WithContext(ctx).Create(row).Error; err != nil {
		return unavailable("create medical record", err)
	}
	record.CreatedAt = row.CreatedAt
	return nil
}

// InventoryRepositoryImpl implements domain.InventoryRepository
type InventoryRepositoryImpl struct {
	db *gorm.DB
}

func NewInventoryRepository(db *gorm.DB) *InventoryRepositoryImpl {
	return &InventoryRepositoryImpl{db: db}
}

func (r *InventoryRepositoryImpl) List(ctx context.Context) ([]domain.InventoryItem, error) {
	var rows []DBInventoryItem
	if err := r.db.WithContext(ctx).Order("name, id").Find(&rows).Error; err != nil {
		return nil, unavailable("list inventory", err)
	}

	out := make([]domain.InventoryItem, len(rows))
	for i := range rows {
		out[i] = dbToInventoryItem(&rows[i])
	}
	return out, nil
}

func (r *InventoryRepositoryImpl) Create(ctx context.Context, item *domain.InventoryItem) error {
	row := &DBInventoryItem{
		ID:       item.ID,
		Name:     item.Name,
		SKU:      item.SKU,
		Quantity: item.Quantity,
		Unit:     item.Unit,
	}
	if row.ID == "" {
		row.ID = uuid.NewString()
	}
	if err := r.db.WithContext(ctx).Create(row).Error; err != nil {
		return unavailable("create inventory item", err)
	}
	item.ID = row.ID
	item.UpdatedAt = row.UpdatedAt
	return nil
}

func (r *InventoryRepositoryImpl) SetQuantity(ctx context.Context, id string, quantity int) (*domain.InventoryItem, error) {
	res := r.db.WithContext(ctx).Model(&DBInventoryItem{}).Where("id = ?", id).
		Updates(map[string]interface{}{"quantity": quantity, "updated_at": time.Now().UTC()})
	if res.Error != nil {
		return nil, unavailable("update inventory item", res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, domain.ErrResourceNotFound
	}

	var row DBInventoryItem
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrResourceNotFound
		}
		return nil, unavailable("read inventory item", err)
	}
	item := dbToInventoryItem(&row)
	return &item, nil
}

func dbToInventoryItem(row *DBInventoryItem) domain.InventoryItem {
	return domain.InventoryItem{
		ID:        row.ID,
		Name:      row.Name,
		SKU:       row.SKU,
		Quantity:  row.Quantity,
		Unit:      row.Unit,
		UpdatedAt: row.UpdatedAt,
	}
}

// NotificationRepositoryImpl implements domain.NotificationRepository
type NotificationRepositoryImpl struct {
	db *gorm.DB
}

func NewNotificationRepository(db *gorm.DB) *NotificationRepositoryImpl {
	return &NotificationRepositoryImpl{db: db}
}

// List returns newest first with id as a tiebreaker, so repeated reads are stable
func (r *NotificationRepositoryImpl) List(ctx context.Context, scope domain.Scope) ([]domain.Notification, error) {
	var rows []DBNotification
	if err := scoped(r.db.WithContext(ctx), scope).Order("created_at DESC, id").Find(&rows).Error; err != nil {
		return nil, unavailable("list notifications", err)
	}

	out := make([]domain.Notification, len(rows))
	for i, row := range rows {
		out[i] = domain.Notification{
			ID:        row.ID,
			UserID:    row.UserID,
			Message:   row.Message,
			Read:      row.Read,
			CreatedAt: row.CreatedAt,
		}
	}
	return out, nil
}
