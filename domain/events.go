package domain

import (
	"context"
	"time"
)

// AuditAction is the closed set of security-relevant events
type AuditAction string

const (
	// Authentication events
	ActionLogin         AuditAction = "login"
	ActionFailedLogin   AuditAction = "failed_login"
	ActionLogout        AuditAction = "logout"
	ActionOTPIssued     AuditAction = "otp_issued"
	ActionOTPVerified   AuditAction = "otp_verified"
	ActionOTPFailed     AuditAction = "otp_failed"
	ActionResetRequest  AuditAction = "password_reset_request"
	ActionPasswordReset AuditAction = "password_reset"

	// Authorization events
	ActionAccessDenied AuditAction = "access_denied"

	// Resource events
	ActionRecordAccess AuditAction = "record_access"
	ActionRecordCreate AuditAction = "record_create"
	ActionUserCreate   AuditAction = "user_create"
	ActionUserUpdate   AuditAction = "user_update"
	ActionUserDelete   AuditAction = "user_delete"
)

// AuditEntry is an immutable audit row. IdentityID is empty when the actor is unknown.
type AuditEntry struct {
	ID         string      `json:"id"`
	IdentityID string      `json:"user_id,omitempty"`
	Action     AuditAction `json:"action"`
	IPAddress  string      `json:"ip_address"`
	CreatedAt  time.Time   `json:"created_at"`
}

// NewAuditEntry creates an audit entry stamped with the current UTC time
func NewAuditEntry(identityID string, action AuditAction, ip string) *AuditEntry {
	return &AuditEntry{
		IdentityID: identityID,
		Action:     action,
		IPAddress:  ip,
		CreatedAt:  time.Now().UTC(),
	}
}

// AuditRepository appends audit entries to the external store
type AuditRepository interface {
	Append(ctx context.Context, entry *AuditEntry) error
}

// AuditPublisher fans audit entries out to a message broker
type AuditPublisher interface {
	Publish(ctx context.Context, entry *AuditEntry) error
}

// AuditSink records security events without ever failing the caller
type AuditSink interface {
	Record(ctx context.Context, identityID string, action AuditAction, ip string)
	Wait()
}
