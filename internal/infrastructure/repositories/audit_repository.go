package repositories

import (
	"context"

	"github.com/oklog/ulid/v2"
	"gorm.io/gorm"

	"github.com/Mulandii/Clinic-cms/domain"
)

// AuditRepositoryImpl appends rows to audit_logs. It never updates or deletes.
type AuditRepositoryImpl struct {
	db *gorm.DB
}

func NewAuditRepository(db *gorm.DB) *AuditRepositoryImpl {
	return &AuditRepositoryImpl{db: db}
}

// Append implements domain.AuditRepository. ULID ids keep rows sortable by
// insertion time.
func (r *AuditRepositoryImpl) Append(ctx context.Context, entry *domain.AuditEntry) error {
	if entry.ID == "" {
		entry.ID = ulid.Make().String()
	}

	row := &DBAuditLog{
		ID:        entry.ID,
		Action:    string(entry.Action),
		IPAddress: entry.IPAddress,
		CreatedAt: entry.CreatedAt,
	}
	if entry.IdentityID != "" {
		id := entry.IdentityID
		row.UserID = &id
	}

	if err := r.db.WithContext(ctx).Create(row).Error; err != nil {
		return unavailable("append audit entry", err)
	}
	return nil
}
