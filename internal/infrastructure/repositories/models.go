package repositories

import (
	"fmt"
	"time"

	"github.com/Mulandii/Clinic-cms/domain"
)

// DBUser is the users table. Identities created through the hosted auth
// provider have an empty password hash.
type DBUser struct {
	ID           string `gorm:"primaryKey;size:36"`
	Email        string `gorm:"uniqueIndex;size:255;not null"`
	Phone        string `gorm:"size:32"`
	PasswordHash string `gorm:"column:password_hash"`
	Role         string `gorm:"index;size:32;not null"`
	TwoFAEnabled bool   `gorm:"column:two_fa_enabled"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (DBUser) TableName() string { return "users" }

type DBAppointment struct {
	ID          string    `gorm:"primaryKey;size:36"`
	PatientID   string    `gorm:"index;size:36;not null"`
	DoctorID    string    `gorm:"index;size:36"`
	ScheduledAt time.Time `gorm:"not null"`
	Reason      string
	Status      string `gorm:"size:32"`
	CreatedAt   time.Time
}

func (DBAppointment) TableName() string { return "appointments" }

// DBMedicalRecord stores lab results only in sealed form
type DBMedicalRecord struct {
	ID                  string `gorm:"primaryKey;size:36"`
	PatientID           string `gorm:"index;size:36;not null"`
	DoctorID            string `gorm:"index;size:36;not null"`
	Diagnosis           string
	EncryptedLabResults []byte
	WrappedKey          []byte
	KeyID               string `gorm:"size:32"`
	CreatedAt           time.Time
}

func (DBMedicalRecord) TableName() string { return "medical_records" }

type DBInventoryItem struct {
	ID        string `gorm:"primaryKey;size:36"`
	Name      string `gorm:"size:255;not null"`
	SKU       string `gorm:"uniqueIndex;size:64"`
	Quantity  int
	Unit      string `gorm:"size:32"`
	UpdatedAt time.Time
}

func (DBInventoryItem) TableName() string { return "inventory" }

type DBNotification struct {
	ID        string `gorm:"primaryKey;size:36"`
	UserID    string `gorm:"index;size:36;not null"`
	Message   string
	Read      bool
	CreatedAt time.Time `gorm:"index"`
}

func (DBNotification) TableName() string { return "notifications" }

// DBAuditLog is append-only. UserID is NULL when the actor is unknown.
type DBAuditLog struct {
	ID        string  `gorm:"primaryKey;size:26"`
	UserID    *string `gorm:"index;size:36"`
	Action    string  `gorm:"index;size:64;not null"`
	IPAddress string  `gorm:"size:64"`
	CreatedAt time.Time
}

func (DBAuditLog) TableName() string { return "audit_logs" }

// Models lists every table owned by the gateway, for migrations
func Models() []interface{} {
	return []interface{}{
		&DBUser{},
		&DBAppointment{},
		&DBMedicalRecord{},
		&DBInventoryItem{},
		&DBNotification{},
		&DBAuditLog{},
	}
}

// unavailable wraps a store failure so callers can match ErrExternalStoreUnavailable
func unavailable(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", domain.ErrExternalStoreUnavailable, op, err)
}
