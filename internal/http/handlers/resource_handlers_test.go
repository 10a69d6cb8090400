package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Mulandii/Clinic-cms/domain"
	"github.com/Mulandii/Clinic-cms/internal/mocks"
	"github.com/Mulandii/Clinic-cms/internal/services"
)

type resourceFixture struct {
	users         *mocks.MockIdentityRepository
	appointments  *mocks.MockAppointmentRepository
	records       *mocks.MockRecordRepository
	inventory     *mocks.MockInventoryRepository
	notifications *mocks.MockNotificationRepository
	audit         *mocks.MockAuditSink
	handlers      *ResourceHandlers
}

// passthroughCipher stores plaintext, enough for handler-level tests
type passthroughCipher struct{}

func (passthroughCipher) Seal(plaintext, aad []byte) ([]byte, []byte, string, error) {
	return plaintext, []byte("wrapped"), "test", nil
}

func (passthroughCipher) Open(ciphertext, wrappedKey []byte, keyID string, aad []byte) ([]byte, error) {
	return ciphertext, nil
}

func createResourceFixture(t *testing.T) *resourceFixture {
	t.Helper()

	f := &resourceFixture{
		users:         mocks.NewMockIdentityRepository(),
		appointments:  mocks.NewMockAppointmentRepository(),
		records:       mocks.NewMockRecordRepository(),
		inventory:     mocks.NewMockInventoryRepository(),
		notifications: mocks.NewMockNotificationRepository(),
		audit:         mocks.NewMockAuditSink(),
	}
	f.handlers = NewResourceHandlers(
		services.NewUserService(f.users, mocks.NewMockPasswordService(), mocks.NewMockRoleResolver(), f.audit),
		services.NewAppointmentService(f.appointments),
		services.NewRecordService(f.records, passthroughCipher{}, f.audit),
		services.NewInventoryService(f.inventory),
		services.NewInboxService(f.notifications),
		zap.NewNop(),
	)
	return f
}

func (f *resourceFixture) router(caller *domain.Identity) *gin.Engine {
	r := gin.New()
	r.Any("/users", asCaller(caller), f.handlers.Users)
	r.Any("/users/:id", asCaller(caller), f.handlers.UserByID)
	r.Any("/appointments", asCaller(caller), f.handlers.Appointments)
	r.Any("/records", asCaller(caller), f.handlers.Records)
	r.Any("/inventory", asCaller(caller), f.handlers.Inventory)
	r.Any("/inventory/:id", asCaller(caller), f.handlers.InventoryItem)
	r.Any("/notifications", asCaller(caller), f.handlers.Notifications)
	return r
}

func serve(t *testing.T, r *gin.Engine, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != nil {
		req = httptest.NewRequest(method, path, jsonBody(t, body))
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestResourceHandlers_UnsupportedVerbs(t *testing.T) {
	gin.SetMode(gin.TestMode)
	f := createResourceFixture(t)

	cases := []struct {
		caller *domain.Identity
		method string
		path   string
	}{
		{&domain.Identity{ID: "admin", Role: domain.RoleAdmin}, http.MethodPatch, "/users"},
		{&domain.Identity{ID: "admin", Role: domain.RoleAdmin}, http.MethodGet, "/users/u1"},
		{&domain.Identity{ID: "pat", Role: domain.RolePatient}, http.MethodDelete, "/appointments"},
		{&domain.Identity{ID: "doc", Role: domain.RoleDoctor}, http.MethodPut, "/records"},
		{&domain.Identity{ID: "ph", Role: domain.RolePharmacist}, http.MethodDelete, "/inventory/i1"},
		{&domain.Identity{ID: "ph", Role: domain.RolePharmacist}, http.MethodPost, "/notifications"},
	}
	for _, tc := range cases {
		w := serve(t, f.router(tc.caller), tc.method, tc.path, nil)
		assert.Equal(t, http.StatusMethodNotAllowed, w.Code, "%s %s", tc.method, tc.path)
	}
}

func TestResourceHandlers_Users(t *testing.T) {
	gin.SetMode(gin.TestMode)
	admin := &domain.Identity{ID: "admin", Role: domain.RoleAdmin}

	t.Run("create", func(t *testing.T) {
		f := createResourceFixture(t)
		var storedHash string
		f.users.CreateFunc = func(ctx context.Context, identity *domain.Identity, passwordHash string) error {
			storedHash = passwordHash
			identity.ID = "u-new"
			return nil
		}

		w := serve(t, f.router(admin), http.MethodPost, "/users", map[string]interface{}{
			"email": "nurse@clinic.test", "password": "long-enough", "role": "receptionist",
		})

		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
		assert.Equal(t, "hashed:long-enough", storedHash)
		data := decode(t, w)["data"].(map[string]interface{})
		assert.Equal(t, "u-new", data["id"])
		assert.NotContains(t, w.Body.String(), "long-enough")
	})

	t.Run("create with unknown role", func(t *testing.T) {
		f := createResourceFixture(t)
		w := serve(t, f.router(admin), http.MethodPost, "/users", map[string]interface{}{
			"email": "x@clinic.test", "password": "long-enough", "role": "superuser",
		})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("duplicate email", func(t *testing.T) {
		f := createResourceFixture(t)
		f.users.CreateFunc = func(ctx context.Context, identity *domain.Identity, passwordHash string) error {
			return domain.ErrIdentityExists
		}
		w := serve(t, f.router(admin), http.MethodPost, "/users", map[string]interface{}{
			"email": "x@clinic.test", "password": "long-enough", "role": "patient",
		})
		assert.Equal(t, http.StatusConflict, w.Code)
	})

	t.Run("update unknown user", func(t *testing.T) {
		f := createResourceFixture(t)
		w := serve(t, f.router(admin), http.MethodPut, "/users/ghost", map[string]interface{}{"role": "doctor"})
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("update", func(t *testing.T) {
		f := createResourceFixture(t)
		f.users.UpdateFunc = func(ctx context.Context, id string, update domain.UserUpdate) (*domain.Identity, error) {
			require.NotNil(t, update.TwoFAEnabled)
			return &domain.Identity{ID: id, Role: domain.RoleDoctor, TwoFAEnabled: *update.TwoFAEnabled}, nil
		}
		w := serve(t, f.router(admin), http.MethodPut, "/users/u1", map[string]interface{}{"two_fa_enabled": true})
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, true, decode(t, w)["data"].(map[string]interface{})["two_fa_enabled"])
	})

	t.Run("delete", func(t *testing.T) {
		f := createResourceFixture(t)
		w := serve(t, f.router(admin), http.MethodDelete, "/users/u1", nil)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, []domain.AuditAction{domain.ActionUserDelete}, f.audit.Actions())
	})
}

func TestResourceHandlers_Appointments(t *testing.T) {
	gin.SetMode(gin.TestMode)
	f := createResourceFixture(t)
	patient := &domain.Identity{ID: "pat-1", Role: domain.RolePatient}
	receptionist := &domain.Identity{ID: "rec-1", Role: domain.RoleReceptionist}
	when := time.Date(2024, 3, 4, 10, 30, 0, 0, time.UTC)

	w := serve(t, f.router(patient), http.MethodPost, "/appointments", map[string]interface{}{
		"patient_id": "pat-2", "scheduled_at": when, "reason": "follow-up",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Equal(t, "pat-1", decode(t, w)["data"].(map[string]interface{})["patient_id"])

	w = serve(t, f.router(receptionist), http.MethodPost, "/appointments", map[string]interface{}{"scheduled_at": when})
	assert.Equal(t, http.StatusBadRequest, w.Code, "receptionist must name a patient")

	w = serve(t, f.router(patient), http.MethodPost, "/appointments", map[string]interface{}{"reason": "no time"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = serve(t, f.router(patient), http.MethodGet, "/appointments", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode(t, w)["data"], 1)
}

func TestResourceHandlers_Records(t *testing.T) {
	gin.SetMode(gin.TestMode)
	f := createResourceFixture(t)
	doctor := &domain.Identity{ID: "doc-1", Role: domain.RoleDoctor}
	patient := &domain.Identity{ID: "pat-1", Role: domain.RolePatient}

	w := serve(t, f.router(patient), http.MethodPost, "/records", map[string]interface{}{"patient_id": "pat-1"})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = serve(t, f.router(patient), http.MethodPost, "/records", "not even an object")
	assert.Equal(t, http.StatusForbidden, w.Code, "role is checked before the payload")

	w = serve(t, f.router(doctor), http.MethodPost, "/records", map[string]interface{}{
		"patient_id": "pat-1", "diagnosis": "hypertension", "lab_results": "BP 150/95",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = serve(t, f.router(patient), http.MethodGet, "/records", nil)
	require.Equal(t, http.StatusOK, w.Code)
	rows := decode(t, w)["data"].([]interface{})
	require.Len(t, rows, 1)
	assert.Equal(t, "BP 150/95", rows[0].(map[string]interface{})["lab_results"])

	assert.Equal(t, []domain.AuditAction{domain.ActionRecordCreate, domain.ActionRecordAccess}, f.audit.Actions())
}

func TestResourceHandlers_RecordDecryptionFailure(t *testing.T) {
	gin.SetMode(gin.TestMode)
	f := createResourceFixture(t)
	f.records.ListFunc = func(ctx context.Context, scope domain.Scope) ([]domain.SealedRecord, error) {
		return []domain.SealedRecord{{ID: "r1", PatientID: "pat-1", EncryptedLabResults: []byte("x")}}, nil
	}
	f.handlers.records = services.NewRecordService(f.records, failingCipher{}, f.audit)

	w := serve(t, f.router(&domain.Identity{ID: "pat-1", Role: domain.RolePatient}), http.MethodGet, "/records", nil)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "decrypt")
}

type failingCipher struct{ passthroughCipher }

func (failingCipher) Open(ciphertext, wrappedKey []byte, keyID string, aad []byte) ([]byte, error) {
	return nil, domain.ErrDecryptionFailed
}

func TestResourceHandlers_Inventory(t *testing.T) {
	gin.SetMode(gin.TestMode)
	f := createResourceFixture(t)
	pharmacist := &domain.Identity{ID: "ph-1", Role: domain.RolePharmacist}
	r := f.router(pharmacist)

	w := serve(t, r, http.MethodPost, "/inventory", map[string]interface{}{"name": "Paracetamol", "sku": "PAR-500", "quantity": 100})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	id := decode(t, w)["data"].(map[string]interface{})["id"].(string)

	w = serve(t, r, http.MethodPut, "/inventory/"+id, map[string]interface{}{"quantity": 80})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(80), decode(t, w)["data"].(map[string]interface{})["quantity"])

	w = serve(t, r, http.MethodPut, "/inventory/"+id, map[string]interface{}{})
	assert.Equal(t, http.StatusBadRequest, w.Code, "quantity is required")

	w = serve(t, r, http.MethodPut, "/inventory/missing", map[string]interface{}{"quantity": 1})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = serve(t, r, http.MethodGet, "/inventory", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode(t, w)["data"], 1)
}

func TestResourceHandlers_Notifications(t *testing.T) {
	gin.SetMode(gin.TestMode)
	f := createResourceFixture(t)
	f.notifications.Rows = []domain.Notification{
		{ID: "n1", UserID: "u1", Message: "Lab results ready"},
		{ID: "n2", UserID: "u2", Message: "Appointment moved"},
	}
	r := f.router(&domain.Identity{ID: "u1", Role: domain.RoleReceptionist})

	first := serve(t, r, http.MethodGet, "/notifications", nil)
	second := serve(t, r, http.MethodGet, "/notifications", nil)

	require.Equal(t, http.StatusOK, first.Code)
	assert.Equal(t, first.Body.String(), second.Body.String())
	rows := decode(t, first)["data"].([]interface{})
	require.Len(t, rows, 1)
	assert.Equal(t, "n1", rows[0].(map[string]interface{})["id"])

	empty := serve(t, f.router(&domain.Identity{ID: "u3", Role: domain.RolePatient}), http.MethodGet, "/notifications", nil)
	assert.JSONEq(t, `{"data":[]}`, empty.Body.String())
}
