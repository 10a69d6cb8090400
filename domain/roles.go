package domain

import "strings"

// Role is the closed set of permission classes
type Role string

const (
	RoleAdmin        Role = "admin"
	RoleDoctor       Role = "doctor"
	RolePharmacist   Role = "pharmacist"
	RoleReceptionist Role = "receptionist"
	RolePatient      Role = "patient"
)

// AllRoles lists every role in declaration order
func AllRoles() []Role {
	return []Role{RoleAdmin, RoleDoctor, RolePharmacist, RoleReceptionist, RolePatient}
}

// ParseRole converts a stored role string into a Role
func ParseRole(s string) (Role, error) {
	switch r := Role(strings.ToLower(strings.TrimSpace(s))); r {
	case RoleAdmin, RoleDoctor, RolePharmacist, RoleReceptionist, RolePatient:
		return r, nil
	default:
		return "", ErrInvalidRole
	}
}

// Valid reports whether r is one of the declared roles
func (r Role) Valid() bool {
	_, err := ParseRole(string(r))
	return err == nil
}

// Subject is the casbin subject name for the role
func (r Role) Subject() string {
	return "role_" + string(r)
}

// RoleSet is an allow-set of roles for a route
type RoleSet map[Role]struct{}

// NewRoleSet builds an allow-set from the given roles
func NewRoleSet(roles ...Role) RoleSet {
	s := make(RoleSet, len(roles))
	for _, r := range roles {
		s[r] = struct{}{}
	}
	return s
}

// AnyRole is the allow-set for routes open to every authenticated identity
func AnyRole() RoleSet {
	return NewRoleSet(AllRoles()...)
}

// Contains reports whether r is allowed
func (s RoleSet) Contains(r Role) bool {
	_, ok := s[r]
	return ok
}

// Roles returns the members in declaration order
func (s RoleSet) Roles() []Role {
	out := make([]Role, 0, len(s))
	for _, r := range AllRoles() {
		if s.Contains(r) {
			out = append(out, r)
		}
	}
	return out
}
