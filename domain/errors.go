package domain

import "errors"

// Authentication errors
var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUnauthenticated    = errors.New("unauthenticated")
	ErrIdentityNotFound   = errors.New("identity not found")
	ErrIdentityExists     = errors.New("identity already exists")
	ErrInvalidRole        = errors.New("invalid role")
	ErrProfileCorrupt     = errors.New("stored identity profile is unusable")
)

// One-time code errors
var (
	ErrCodeExpired     = errors.New("one-time code has expired")
	ErrCodeMismatch    = errors.New("one-time code does not match")
	ErrCodeAlreadyUsed = errors.New("one-time code already used")
	ErrCodeNotFound    = errors.New("one-time code not found")
	ErrCodeMaxAttempts = errors.New("maximum one-time code attempts exceeded")
	ErrDeliveryFailed  = errors.New("code delivery failed")
)

// Token errors
var (
	ErrTokenInvalid   = errors.New("invalid token")
	ErrTokenExpired   = errors.New("token has expired")
	ErrTokenWrongKind = errors.New("token kind not accepted here")
	ErrTokenRevoked   = errors.New("token has been revoked")
)

// Password reset errors
var (
	ErrResetTokenInvalid = errors.New("invalid or expired reset token")
	ErrResetUnsupported  = errors.New("password reset confirmation not supported by credential store")
)

// Authorization and resource errors
var (
	ErrForbidden          = errors.New("forbidden")
	ErrMethodNotAllowed   = errors.New("method not allowed")
	ErrResourceNotFound   = errors.New("resource not found")
	ErrInvalidInput       = errors.New("invalid input")
	ErrDecryptionFailed   = errors.New("record decryption failed")
	ErrEncryptionKeyUnset = errors.New("record encryption key not configured")
)

// Infrastructure errors
var (
	ErrExternalStoreUnavailable = errors.New("external store unavailable")
)
