package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Mulandii/Clinic-cms/domain"
)

// ResourceHandlers serves the clinic resources behind the authorization gate.
// Each route is registered for every verb; unsupported verbs answer 405 only
// after the gate has admitted the caller.
type ResourceHandlers struct {
	users         domain.UserService
	appointments  domain.AppointmentService
	records       domain.RecordService
	inventory     domain.InventoryService
	notifications domain.InboxService
	logger        *zap.Logger
}

func NewResourceHandlers(
	users domain.UserService,
	appointments domain.AppointmentService,
	records domain.RecordService,
	inventory domain.InventoryService,
	notifications domain.InboxService,
	logger *zap.Logger,
) *ResourceHandlers {
	return &ResourceHandlers{
		users:         users,
		appointments:  appointments,
		records:       records,
		inventory:     inventory,
		notifications: notifications,
		logger:        logger,
	}
}

type createUserRequest struct {
	ID           string `json:"id"`
	Email        string `json:"email" binding:"required"`
	Phone        string `json:"phone"`
	Password     string `json:"password"`
	Role         string `json:"role" binding:"required"`
	TwoFAEnabled bool   `json:"two_fa_enabled"`
}

type updateUserRequest struct {
	Role         *string `json:"role"`
	Phone        *string `json:"phone"`
	TwoFAEnabled *bool   `json:"two_fa_enabled"`
}

type appointmentRequest struct {
	PatientID   string    `json:"patient_id"`
	DoctorID    string    `json:"doctor_id"`
	ScheduledAt time.Time `json:"scheduled_at"`
	Reason      string    `json:"reason"`
}

type recordRequest struct {
	PatientID  string `json:"patient_id" binding:"required"`
	Diagnosis  string `json:"diagnosis"`
	LabResults string `json:"lab_results"`
}

type inventoryRequest struct {
	Name     string `json:"name" binding:"required"`
	SKU      string `json:"sku"`
	Quantity int    `json:"quantity"`
	Unit     string `json:"unit"`
}

type quantityRequest struct {
	Quantity *int `json:"quantity" binding:"required"`
}

// Users serves /users
func (h *ResourceHandlers) Users(c *gin.Context) {
	actor, ok := principal(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()

	switch c.Request.Method {
	case http.MethodGet:
		users, err := h.users.List(ctx, actor)
		if err != nil {
			respondError(c, h.logger, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"data": users})

	case http.MethodPost:
		var req createUserRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err)
			return
		}
		identity, err := h.users.Create(ctx, actor, domain.NewUser{
			ID:           req.ID,
			Email:        req.Email,
			Phone:        req.Phone,
			Password:     req.Password,
			Role:         domain.Role(req.Role),
			TwoFAEnabled: req.TwoFAEnabled,
		}, c.ClientIP())
		if err != nil {
			respondError(c, h.logger, err)
			return
		}
		c.JSON(http.StatusCreated, gin.H{"data": identity})

	default:
		methodNotAllowed(c)
	}
}

// UserByID serves /users/:id
func (h *ResourceHandlers) UserByID(c *gin.Context) {
	actor, ok := principal(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()
	id := c.Param("id")

	switch c.Request.Method {
	case http.MethodPut:
		var req updateUserRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err)
			return
		}
		update := domain.UserUpdate{Phone: req.Phone, TwoFAEnabled: req.TwoFAEnabled}
		if req.Role != nil {
			role := domain.Role(*req.Role)
			update.Role = &role
		}
		identity, err := h.users.Update(ctx, actor, id, update, c.ClientIP())
		if err != nil {
			h.userError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"data": identity})

	case http.MethodDelete:
		if err := h.users.Delete(ctx, actor, id, c.ClientIP()); err != nil {
			h.userError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"data": gin.H{"message": "User deleted", "id": id}})

	default:
		methodNotAllowed(c)
	}
}

// userError treats an unknown target user as 404; elsewhere a missing
// identity is a server fault.
func (h *ResourceHandlers) userError(c *gin.Context, err error) {
	if errors.Is(err, domain.ErrIdentityNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}
	respondError(c, h.logger, err)
}

// Appointments serves /appointments
func (h *ResourceHandlers) Appointments(c *gin.Context) {
	actor, ok := principal(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()

	switch c.Request.Method {
	case http.MethodGet:
		appointments, err := h.appointments.List(ctx, actor)
		if err != nil {
			respondError(c, h.logger, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"data": nonNil(appointments)})

	case http.MethodPost:
		var req appointmentRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err)
			return
		}
		appointment, err := h.appointments.Book(ctx, actor, domain.Appointment{
			PatientID:   req.PatientID,
			DoctorID:    req.DoctorID,
			ScheduledAt: req.ScheduledAt,
			Reason:      req.Reason,
		})
		if err != nil {
			respondError(c, h.logger, err)
			return
		}
		c.JSON(http.StatusCreated, gin.H{"data": appointment})

	default:
		methodNotAllowed(c)
	}
}

// Records serves /records
func (h *ResourceHandlers) Records(c *gin.Context) {
	actor, ok := principal(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()

	switch c.Request.Method {
	case http.MethodGet:
		records, err := h.records.List(ctx, actor, c.ClientIP())
		if err != nil {
			respondError(c, h.logger, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"data": nonNil(records)})

	case http.MethodPost:
		// role is checked before the body so a patient gets 403 for any payload
		if actor.Role != domain.RoleDoctor {
			respondError(c, h.logger, domain.ErrForbidden)
			return
		}
		var req recordRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err)
			return
		}
		record, err := h.records.Create(ctx, actor, domain.MedicalRecord{
			PatientID:  req.PatientID,
			Diagnosis:  req.Diagnosis,
			LabResults: req.LabResults,
		}, c.ClientIP())
		if err != nil {
			respondError(c, h.logger, err)
			return
		}
		c.JSON(http.StatusCreated, gin.H{"data": record})

	default:
		methodNotAllowed(c)
	}
}

// Inventory serves /inventory
func (h *ResourceHandlers) Inventory(c *gin.Context) {
	actor, ok := principal(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()

	switch c.Request.Method {
	case http.MethodGet:
		items, err := h.inventory.List(ctx, actor)
		if err != nil {
			respondError(c, h.logger, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"data": nonNil(items)})

	case http.MethodPost:
		var req inventoryRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err)
			return
		}
		item, err := h.inventory.Create(ctx, actor, domain.InventoryItem{
			Name:     req.Name,
			SKU:      req.SKU,
			Quantity: req.Quantity,
			Unit:     req.Unit,
		})
		if err != nil {
			respondError(c, h.logger, err)
			return
		}
		c.JSON(http.StatusCreated, gin.H{"data": item})

	default:
		methodNotAllowed(c)
	}
}

// InventoryItem serves /inventory/:id
func (h *ResourceHandlers) InventoryItem(c *gin.Context) {
	actor, ok := principal(c)
	if !ok {
		return
	}
	if c.Request.Method != http.MethodPut {
		methodNotAllowed(c)
		return
	}

	var req quantityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	item, err := h.inventory.SetQuantity(c.Request.Context(), actor, c.Param("id"), *req.Quantity)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": item})
}

// Notifications serves /notifications
func (h *ResourceHandlers) Notifications(c *gin.Context) {
	actor, ok := principal(c)
	if !ok {
		return
	}
	if c.Request.Method != http.MethodGet {
		methodNotAllowed(c)
		return
	}

	notifications, err := h.notifications.List(c.Request.Context(), actor)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": nonNil(notifications)})
}

// nonNil renders empty results as [] rather than null
func nonNil[T any](rows []T) []T {
	if rows == nil {
		return []T{}
	}
	return rows
}
