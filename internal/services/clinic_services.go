package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/Mulandii/Clinic-cms/domain"
)

const appointmentScheduled = "scheduled"

// AppointmentServiceImpl implements domain.AppointmentService
type AppointmentServiceImpl struct {
	appointments domain.AppointmentRepository
}

func NewAppointmentService(appointments domain.AppointmentRepository) *AppointmentServiceImpl {
	return &AppointmentServiceImpl{appointments: appointments}
}

// List scopes patients to their own appointments; staff see every row
func (s *AppointmentServiceImpl) List(ctx context.Context, actor domain.Principal) ([]domain.Appointment, error) {
	switch actor.Role {
	case domain.RolePatient:
		return s.appointments.List(ctx, domain.OwnedBy(domain.OwnerPatient, actor.ID))
	case domain.RoleAdmin, domain.RoleDoctor, domain.RoleReceptionist:
		return s.appointments.List(ctx, domain.Scope{})
	default:
		return nil, domain.ErrForbidden
	}
}

// Book creates an appointment. Patients always book for themselves.
func (s *AppointmentServiceImpl) Book(ctx context.Context, actor domain.Principal, appointment domain.Appointment) (*domain.Appointment, error) {
	switch actor.Role {
	case domain.RolePatient:
		appointment.PatientID = actor.ID
	case domain.RoleAdmin, domain.RoleDoctor, domain.RoleReceptionist:
		appointment.PatientID = strings.TrimSpace(appointment.PatientID)
		if appointment.PatientID == "" {
			return nil, fmt.Errorf("%w: patient_id is required", domain.ErrInvalidInput)
		}
		if actor.Role == domain.RoleDoctor && appointment.DoctorID == "" {
			appointment.DoctorID = actor.ID
		}
	default:
		return nil, domain.ErrForbidden
	}
	if appointment.ScheduledAt.IsZero() {
		return nil, fmt.Errorf("%w: scheduled_at is required", domain.ErrInvalidInput)
	}

	appointment.ID = ""
	appointment.Status = appointmentScheduled
	if err := s.appointments.Create(ctx, &appointment); err != nil {
		return nil, err
	}
	return &appointment, nil
}

// InventoryServiceImpl implements domain.InventoryService for pharmacists
type InventoryServiceImpl struct {
	items domain.InventoryRepository
}

func NewInventoryService(items domain.InventoryRepository) *InventoryServiceImpl {
	return &InventoryServiceImpl{items: items}
}

func (s *InventoryServiceImpl) List(ctx context.Context, actor domain.Principal) ([]domain.InventoryItem, error) {
	if err := requireRole(actor, domain.RolePharmacist); err != nil {
		return nil, err
	}
	return s.items.List(ctx)
}

func (s *InventoryServiceImpl) Create(ctx context.Context, actor domain.Principal, item domain.InventoryItem) (*domain.InventoryItem, error) {
	if err := requireRole(actor, domain.RolePharmacist); err != nil {
		return nil, err
	}
	item.Name = strings.TrimSpace(item.Name)
	if item.Name == "" {
		return nil, fmt.Errorf("%w: name is required", domain.ErrInvalidInput)
	}
	if item.Quantity < 0 {
		return nil, fmt.Errorf("%w: quantity must not be negative", domain.ErrInvalidInput)
	}

	item.ID = ""
	if err := s.items.Create(ctx, &item); err != nil {
		return nil, err
	}
	return &item, nil
}

func (s *InventoryServiceImpl) SetQuantity(ctx context.Context, actor domain.Principal, id string, quantity int) (*domain.InventoryItem, error) {
	if err := requireRole(actor, domain.RolePharmacist); err != nil {
		return nil, err
	}
	if quantity < 0 {
		return nil, fmt.Errorf("%w: quantity must not be negative", domain.ErrInvalidInput)
	}
	return s.items.SetQuantity(ctx, id, quantity)
}

// InboxServiceImpl implements domain.InboxService
type InboxServiceImpl struct {
	notifications domain.NotificationRepository
}

func NewInboxService(notifications domain.NotificationRepository) *InboxServiceImpl {
	return &InboxServiceImpl{notifications: notifications}
}

// List returns only notifications addressed to the caller
func (s *InboxServiceImpl) List(ctx context.Context, actor domain.Principal) ([]domain.Notification, error) {
	if actor.ID == "" {
		return nil, domain.ErrUnauthenticated
	}
	return s.notifications.List(ctx, domain.OwnedBy(domain.OwnerUser, actor.ID))
}
