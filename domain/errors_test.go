package domain

import (
	"errors"
	"fmt"
	"testing"
)

func TestErrorsAreDistinct(t *testing.T) {
	all := []error{
		ErrInvalidCredentials, ErrUnauthenticated, ErrIdentityNotFound, ErrIdentityExists, ErrInvalidRole,
		ErrCodeExpired, ErrCodeMismatch, ErrCodeAlreadyUsed, ErrCodeNotFound, ErrCodeMaxAttempts, ErrDeliveryFailed,
		ErrTokenInvalid, ErrTokenExpired, ErrTokenWrongKind, ErrTokenRevoked,
		ErrResetTokenInvalid, ErrResetUnsupported,
		ErrForbidden, ErrMethodNotAllowed, ErrResourceNotFound, ErrInvalidInput, ErrDecryptionFailed, ErrEncryptionKeyUnset,
		ErrExternalStoreUnavailable,
	}

	seen := make(map[string]bool, len(all))
	for _, err := range all {
		if err == nil {
			t.Fatal("error should not be nil")
		}
		if seen[err.Error()] {
			t.Errorf("duplicate error message %q", err.Error())
		}
		seen[err.Error()] = true

		for _, other := range all {
			if other != err && errors.Is(err, other) {
				t.Errorf("%q should not match %q", err, other)
			}
		}
	}
}

func TestErrorWrapping(t *testing.T) {
	tests := []struct {
		name    string
		wrapped error
		target  error
	}{
		{
			name:    "store failure keeps sentinel",
			wrapped: fmt.Errorf("%w: connection refused", ErrExternalStoreUnavailable),
			target:  ErrExternalStoreUnavailable,
		},
		{
			name:    "double wrapped code error",
			wrapped: fmt.Errorf("verify: %w", fmt.Errorf("lookup: %w", ErrCodeExpired)),
			target:  ErrCodeExpired,
		},
		{
			name:    "token error",
			wrapped: fmt.Errorf("gate: %w", ErrTokenWrongKind),
			target:  ErrTokenWrongKind,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if !errors.Is(tt.wrapped, tt.target) {
				t.Errorf("expected %v to wrap %v", tt.wrapped, tt.target)
			}
		})
	}
}

func TestParseRole(t *testing.T) {
	tests := []struct {
		input    string
		expected Role
		err      error
	}{
		{input: "admin", expected: RoleAdmin},
		{input: "Doctor", expected: RoleDoctor},
		{input: " pharmacist ", expected: RolePharmacist},
		{input: "receptionist", expected: RoleReceptionist},
		{input: "patient", expected: RolePatient},
		{input: "user", err: ErrInvalidRole},
		{input: "", err: ErrInvalidRole},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseRole(tt.input)
			if !errors.Is(err, tt.err) {
				t.Fatalf("expected error %v, got %v", tt.err, err)
			}
			if got != tt.expected {
				t.Errorf("expected %q, got %q", tt.expected, got)
			}
		})
	}
}

func TestRoleSet(t *testing.T) {
	set := NewRoleSet(RolePatient, RoleDoctor)

	if !set.Contains(RoleDoctor) || !set.Contains(RolePatient) {
		t.Error("set should contain its members")
	}
	if set.Contains(RoleAdmin) {
		t.Error("set should not contain admin")
	}

	roles := set.Roles()
	if len(roles) != 2 || roles[0] != RoleDoctor || roles[1] != RolePatient {
		t.Errorf("roles should follow declaration order, got %v", roles)
	}

	if len(AnyRole().Roles()) != len(AllRoles()) {
		t.Error("AnyRole should contain every role")
	}
	if RoleAdmin.Subject() != "role_admin" {
		t.Errorf("unexpected subject %q", RoleAdmin.Subject())
	}
	if Role("nurse").Valid() {
		t.Error("undeclared role should be invalid")
	}
}
