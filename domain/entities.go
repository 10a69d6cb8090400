package domain

import "time"

// Identity represents an authenticated principal and its profile row
type Identity struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	Phone        string    `json:"phone,omitempty"`
	Role         Role      `json:"role"`
	TwoFAEnabled bool      `json:"two_fa_enabled"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// RequiresSecondFactor reports whether login must be completed with a one-time code
func (i *Identity) RequiresSecondFactor() bool {
	return i != nil && i.TwoFAEnabled
}

// NewUser carries the fields an administrator supplies when creating an account
type NewUser struct {
	// ID is the auth provider's user id; only set when the provider owns passwords
	ID           string
	Email        string
	Phone        string
	Password     string
	Role         Role
	TwoFAEnabled bool
}

// UserUpdate holds optional profile changes; nil fields are left untouched
type UserUpdate struct {
	Role         *Role
	Phone        *string
	TwoFAEnabled *bool
}

// LoginResult is the outcome of a password login. Exactly one of Token or
// PendingToken is set.
type LoginResult struct {
	Identity     *Identity
	Token        string
	PendingToken string
	ExpiresIn    int64
}

// IsPending reports whether the login still needs a second factor
func (r *LoginResult) IsPending() bool {
	return r.PendingToken != "" && r.Token == ""
}

// TokenKind distinguishes full session tokens from pending second-factor tokens
type TokenKind string

const (
	TokenKindFull    TokenKind = "full"
	TokenKindPending TokenKind = "pending_2fa"
)

// TokenClaims represents validated JWT claims
type TokenClaims struct {
	Subject   string    `json:"sub"`
	Kind      TokenKind `json:"kind"`
	TokenID   string    `json:"jti"`
	IssuedAt  time.Time `json:"iat"`
	ExpiresAt time.Time `json:"exp"`
}

// OneTimeCode is a stored second-factor challenge. Only the hash of the code is kept.
type OneTimeCode struct {
	IdentityID string
	CodeHash   string
	ExpiresAt  time.Time
	Consumed   bool
	Attempts   int
}

// Expired reports whether the code is past its validity window at now
func (c *OneTimeCode) Expired(now time.Time) bool {
	return !now.Before(c.ExpiresAt)
}

// Appointment is a booked visit between a patient and a doctor
type Appointment struct {
	ID          string    `json:"id"`
	PatientID   string    `json:"patient_id"`
	DoctorID    string    `json:"doctor_id,omitempty"`
	ScheduledAt time.Time `json:"scheduled_at"`
	Reason      string    `json:"reason,omitempty"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
}

// MedicalRecord is a clinical record. LabResults is only populated after decryption.
type MedicalRecord struct {
	ID         string    `json:"id"`
	PatientID  string    `json:"patient_id"`
	DoctorID   string    `json:"doctor_id"`
	Diagnosis  string    `json:"diagnosis,omitempty"`
	LabResults string    `json:"lab_results,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// SealedRecord is the stored form of a medical record with its envelope-encrypted field
type SealedRecord struct {
	ID                  string
	PatientID           string
	DoctorID            string
	Diagnosis           string
	EncryptedLabResults []byte
	WrappedKey          []byte
	KeyID               string
	CreatedAt           time.Time
}

// InventoryItem is a pharmacy stock line
type InventoryItem struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	SKU       string    `json:"sku"`
	Quantity  int       `json:"quantity"`
	Unit      string    `json:"unit,omitempty"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Notification is a message addressed to a single user
type Notification struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Message   string    `json:"message"`
	Read      bool      `json:"read"`
	CreatedAt time.Time `json:"created_at"`
}
