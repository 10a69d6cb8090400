package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/Mulandii/Clinic-cms/domain"
)

// RecordServiceImpl implements domain.RecordService. Lab results are sealed
// before they reach the repository and opened per row on the way out, with
// the record id bound as associated data.
type RecordServiceImpl struct {
	records domain.RecordRepository
	cipher  domain.RecordCipher
	audit   domain.AuditSink
}

func NewRecordService(records domain.RecordRepository, cipher domain.RecordCipher, audit domain.AuditSink) *RecordServiceImpl {
	return &RecordServiceImpl{records: records, cipher: cipher, audit: audit}
}

// List returns the caller's records: patients by patient_id, doctors by doctor_id
func (s *RecordServiceImpl) List(ctx context.Context, actor domain.Principal, ip string) ([]domain.MedicalRecord, error) {
	var scope domain.Scope
	switch actor.Role {
	case domain.RolePatient:
		scope = domain.OwnedBy(domain.OwnerPatient, actor.ID)
	case domain.RoleDoctor:
		scope = domain.OwnedBy(domain.OwnerDoctor, actor.ID)
	default:
		return nil, domain.ErrForbidden
	}

	rows, err := s.records.List(ctx, scope)
	if err != nil {
		return nil, err
	}

	out := make([]domain.MedicalRecord, 0, len(rows))
	for _, row := range rows {
		record := domain.MedicalRecord{
			ID:        row.ID,
			PatientID: row.PatientID,
			DoctorID:  row.DoctorID,
			Diagnosis: row.Diagnosis,
			CreatedAt: row.CreatedAt,
		}
		if len(row.EncryptedLabResults) > 0 {
			plain, err := s.cipher.Open(row.EncryptedLabResults, row.WrappedKey, row.KeyID, []byte(row.ID))
			if err != nil {
				return nil, fmt.Errorf("record %s: %w", row.ID, err)
			}
			record.LabResults = string(plain)
		}
		out = append(out, record)
	}

	s.audit.Record(ctx, actor.ID, domain.ActionRecordAccess, ip)
	return out, nil
}

// Create seals and stores a record authored by the calling doctor
func (s *RecordServiceImpl) Create(ctx context.Context, actor domain.Principal, record domain.MedicalRecord, ip string) (*domain.MedicalRecord, error) {
	if err := requireRole(actor, domain.RoleDoctor); err != nil {
		return nil, err
	}
	record.PatientID = strings.TrimSpace(record.PatientID)
	if record.PatientID == "" {
		return nil, fmt.Errorf("%w: patient_id is required", domain.ErrInvalidInput)
	}

	record.ID = uuid.NewString()
	record.DoctorID = actor.ID

	ciphertext, wrapped, keyID, err := s.cipher.Seal([]byte(record.LabResults), []byte(record.ID))
	if err != nil {
		return nil, fmt.Errorf("failed to seal record: %w", err)
	}

	sealed := &domain.SealedRecord{
		ID:                  record.ID,
		PatientID:           record.PatientID,
		DoctorID:            record.DoctorID,
		Diagnosis:           record.Diagnosis,
		EncryptedLabResults: ciphertext,
		WrappedKey:          wrapped,
		KeyID:               keyID,
	}
	if err := s.records.Create(ctx, sealed); err != nil {
		return nil, err
	}
	record.CreatedAt = sealed.CreatedAt

	s.audit.Record(ctx, actor.ID, domain.ActionRecordCreate, ip)
	return &record, nil
}
