package domain

import (
	"context"
	"time"
)

// Principal is the authorized caller handed to resource services by the gate
type Principal struct {
	ID   string
	Role Role
}

// OwnerColumn names an ownership column usable for row-level filtering
type OwnerColumn string

const (
	OwnerPatient OwnerColumn = "patient_id"
	OwnerDoctor  OwnerColumn = "doctor_id"
	OwnerUser    OwnerColumn = "user_id"
)

// Scope restricts a query to rows owned by one identity. The zero value is unscoped.
type Scope struct {
	Column  OwnerColumn
	OwnerID string
}

// OwnedBy returns a scope filtering column by ownerID
func OwnedBy(column OwnerColumn, ownerID string) Scope {
	return Scope{Column: column, OwnerID: ownerID}
}

// Unscoped reports whether the scope returns every row
func (s Scope) Unscoped() bool {
	return s.Column == ""
}

// CredentialStore verifies email/password pairs against the identity provider
type CredentialStore interface {
	Authenticate(ctx context.Context, email, password string) (string, error)
	RequestPasswordReset(ctx context.Context, email string) error
}

// PasswordResetter is implemented by credential stores that complete resets locally
type PasswordResetter interface {
	ConfirmPasswordReset(ctx context.Context, token, newPassword string) error
}

// Credentials is the stored secret for a DB-backed identity
type Credentials struct {
	IdentityID   string
	Email        string
	PasswordHash string
}

// IdentityRepository defines user table access operations
type IdentityRepository interface {
	FindByID(ctx context.Context, id string) (*Identity, error)
	FindByEmail(ctx context.Context, email string) (*Identity, error)
	FindCredentials(ctx context.Context, email string) (*Credentials, error)
	List(ctx context.Context) ([]Identity, error)
	Create(ctx context.Context, identity *Identity, passwordHash string) error
	Update(ctx context.Context, id string, update UserUpdate) (*Identity, error)
	Delete(ctx context.Context, id string) error
	SetPasswordHash(ctx context.Context, id, passwordHash string) error
}

// RoleResolver loads role and feature flags for an authenticated identity
type RoleResolver interface {
	Resolve(ctx context.Context, identityID string) (*Identity, error)
	Invalidate(identityID string)
}

// CodeRepository persists hashed one-time codes
type CodeRepository interface {
	Save(ctx context.Context, code *OneTimeCode, retention time.Duration) error
	Find(ctx context.Context, identityID string) (*OneTimeCode, error)
	IncrementAttempts(ctx context.Context, identityID string) (int, error)
	Consume(ctx context.Context, identityID string) (bool, error)
	Delete(ctx context.Context, identityID string) error
}

// RevocationRepository tracks logged-out token ids until they expire
type RevocationRepository interface {
	Revoke(ctx context.Context, tokenID string, until time.Time) error
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}

// ResetTokenRepository stores digests of single-use password reset tokens
type ResetTokenRepository interface {
	Save(ctx context.Context, digest, identityID string, ttl time.Duration) error
	Take(ctx context.Context, digest string) (string, error)
}

// AuthService defines login, second factor, logout and reset flows
type AuthService interface {
	Login(ctx context.Context, email, password, ip string) (*LoginResult, error)
	VerifySecondFactor(ctx context.Context, pendingToken, code, ip string) (*LoginResult, error)
	Logout(ctx context.Context, claims *TokenClaims, ip string) error
	RequestPasswordReset(ctx context.Context, actorID, email, ip string) error
	ConfirmPasswordReset(ctx context.Context, token, newPassword, ip string) error
}

// OTPService defines one-time code issuance and verification
type OTPService interface {
	Issue(ctx context.Context, identity *Identity) (string, error)
	Verify(ctx context.Context, pendingToken, code string) (string, error)
}

// PasswordService defines password operations
type PasswordService interface {
	Hash(password string) (string, error)
	Verify(hashedPassword, password string) bool
}

// TokenService defines token operations
type TokenService interface {
	IssueFull(identityID string) (string, error)
	IssuePending(identityID string) (string, error)
	Validate(token string, kind TokenKind) (*TokenClaims, error)
	TTL(kind TokenKind) time.Duration
}

// NotificationService delivers out-of-band messages
type NotificationService interface {
	SendSMS(to, message string) error
	SendEmail(to, subject, body string) error
}

// PolicyService answers route allow-set questions
type PolicyService interface {
	Allowed(role Role, route string) (bool, error)
	GetPolicies() [][]string
}

// CasbinEnforcer interface defines the methods we need from Casbin enforcer
type CasbinEnforcer interface {
	Enforce(rvals ...interface{}) (bool, error)
	GetPolicy() ([][]string, error)
}

// RecordCipher envelope-encrypts sensitive record fields
type RecordCipher interface {
	Seal(plaintext, aad []byte) (ciphertext, wrappedKey []byte, keyID string, err error)
	Open(ciphertext, wrappedKey []byte, keyID string, aad []byte) ([]byte, error)
}

// AppointmentRepository defines appointments table access
type AppointmentRepository interface {
	List(ctx context.Context, scope Scope) ([]Appointment, error)
	Create(ctx context.Context, appointment *Appointment) error
}

// RecordRepository defines medical_records table access
type RecordRepository interface {
	List(ctx context.Context, scope Scope) ([]SealedRecord, error)
	Create(ctx context.Context, record *SealedRecord) error
}

// InventoryRepository defines inventory table access
type InventoryRepository interface {
	List(ctx context.Context) ([]InventoryItem, error)
	Create(ctx context.Context, item *InventoryItem) error
	SetQuantity(ctx context.Context, id string, quantity int) (*InventoryItem, error)
}

// NotificationRepository defines notifications table access
type NotificationRepository interface {
	List(ctx context.Context, scope Scope) ([]Notification, error)
}

// UserService is the admin-only user management use case
type UserService interface {
	List(ctx context.Context, actor Principal) ([]Identity, error)
	Create(ctx context.Context, actor Principal, user NewUser, ip string) (*Identity, error)
	Update(ctx context.Context, actor Principal, id string, update UserUpdate, ip string) (*Identity, error)
	Delete(ctx context.Context, actor Principal, id, ip string) error
}

// AppointmentService applies role scoping to appointment queries
type AppointmentService interface {
	List(ctx context.Context, actor Principal) ([]Appointment, error)
	Book(ctx context.Context, actor Principal, appointment Appointment) (*Appointment, error)
}

// RecordService applies role scoping and decryption to medical records
type RecordService interface {
	List(ctx context.Context, actor Principal, ip string) ([]MedicalRecord, error)
	Create(ctx context.Context, actor Principal, record MedicalRecord, ip string) (*MedicalRecord, error)
}

// InventoryService is the pharmacist stock use case
type InventoryService interface {
	List(ctx context.Context, actor Principal) ([]InventoryItem, error)
	Create(ctx context.Context, actor Principal, item InventoryItem) (*InventoryItem, error)
	SetQuantity(ctx context.Context, actor Principal, id string, quantity int) (*InventoryItem, error)
}

// InboxService lists the caller's own notifications
type InboxService interface {
	List(ctx context.Context, actor Principal) ([]Notification, error)
}
