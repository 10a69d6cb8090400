package config

import "github.com/Mulandii/Clinic-cms/domain"

// RouteRule binds a protected route pattern to the roles allowed to reach it
type RouteRule struct {
	Path  string
	Roles domain.RoleSet
}

// DefaultRouteRules is the allow-set table for every protected route. Paths use
// gin/keyMatch2 syntax.
func DefaultRouteRules() []RouteRule {
	scheduling := domain.NewRoleSet(domain.RoleAdmin, domain.RoleDoctor, domain.RoleReceptionist, domain.RolePatient)

	return []RouteRule{
		{Path: "/me", Roles: domain.AnyRole()},
		{Path: "/logout", Roles: domain.AnyRole()},
		{Path: "/reset-password", Roles: domain.NewRoleSet(domain.RoleAdmin)},
		{Path: "/users", Roles: domain.NewRoleSet(domain.RoleAdmin)},
		{Path: "/users/:id", Roles: domain.NewRoleSet(domain.RoleAdmin)},
		{Path: "/admin/policies", Roles: domain.NewRoleSet(domain.RoleAdmin)},
		{Path: "/appointments", Roles: scheduling},
		{Path: "/records", Roles: domain.NewRoleSet(domain.RoleDoctor, domain.RolePatient)},
		{Path: "/inventory", Roles: domain.NewRoleSet(domain.RolePharmacist)},
		{Path: "/inventory/:id", Roles: domain.NewRoleSet(domain.RolePharmacist)},
		{Path: "/notifications", Roles: domain.AnyRole()},
	}
}
