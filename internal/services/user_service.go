package services

import (
	"context"
	"fmt"
	"net/mail"
	"strings"

	"github.com/google/uuid"

	"github.com/Mulandii/Clinic-cms/domain"
)

const minPasswordLength = 8

// requireRole fails with ErrForbidden unless the actor holds one of roles
func requireRole(actor domain.Principal, roles ...domain.Role) error {
	if domain.NewRoleSet(roles...).Contains(actor.Role) {
		return nil
	}
	return domain.ErrForbidden
}

// UserServiceImpl implements domain.UserService for administrators
type UserServiceImpl struct {
	users     domain.IdentityRepository
	passwords domain.PasswordService
	roles     domain.RoleResolver
	audit     domain.AuditSink

	// providerAccounts is set when an external auth provider owns passwords
	// and user ids
	providerAccounts bool
}

func NewUserService(users domain.IdentityRepository, passwords domain.PasswordService, roles domain.RoleResolver, audit domain.AuditSink) *UserServiceImpl {
	return &UserServiceImpl{users: users, passwords: passwords, roles: roles, audit: audit}
}

func (s *UserServiceImpl) List(ctx context.Context, actor domain.Principal) ([]domain.Identity, error) {
	if err := requireRole(actor, domain.RoleAdmin); err != nil {
		return nil, err
	}
	return s.users.List(ctx)
}

// WithProviderAccounts makes Create register profiles for accounts that
// already exist at the auth provider. The caller supplies the provider's user
// id and no password.
func (s *UserServiceImpl) WithProviderAccounts() *UserServiceImpl {
	s.providerAccounts = true
	return s
}

// Create stores a new identity, with a bcrypt hash of the supplied password
// unless the auth provider owns credentials
func (s *UserServiceImpl) Create(ctx context.Context, actor domain.Principal, user domain.NewUser, ip string) (*domain.Identity, error) {
	if err := requireRole(actor, domain.RoleAdmin); err != nil {
		return nil, err
	}
	user.Email = strings.TrimSpace(user.Email)
	if addr, err := mail.ParseAddress(user.Email); err != nil || addr.Address != user.Email {
		return nil, fmt.Errorf("%w: invalid email", domain.ErrInvalidInput)
	}
	if !user.Role.Valid() {
		return nil, domain.ErrInvalidRole
	}

	hash, err := s.credentialHash(user)
	if err != nil {
		return nil, err
	}

	identity := &domain.Identity{
		ID:           user.ID,
		Email:        user.Email,
		Phone:        strings.TrimSpace(user.Phone),
		Role:         user.Role,
		TwoFAEnabled: user.TwoFAEnabled,
	}
	if err := s.users.Create(ctx, identity, hash); err != nil {
		return nil, err
	}

	s.audit.Record(ctx, actor.ID, domain.ActionUserCreate, ip)
	return identity, nil
}

// credentialHash returns the password hash to store. Provider-owned accounts
// keep no local secret and reuse the provider's id so logins resolve to the row.
func (s *UserServiceImpl) credentialHash(user domain.NewUser) (string, error) {
	if s.providerAccounts {
		if _, err := uuid.Parse(user.ID); err != nil {
			return "", fmt.Errorf("%w: id must be the auth provider's user id", domain.ErrInvalidInput)
		}
		if user.Password != "" {
			return "", fmt.Errorf("%w: passwords are managed by the auth provider", domain.ErrInvalidInput)
		}
		return "", nil
	}

	if user.ID != "" {
		return "", fmt.Errorf("%w: id is assigned by the server", domain.ErrInvalidInput)
	}
	if len(user.Password) < minPasswordLength {
		return "", fmt.Errorf("%w: password must be at least %d characters", domain.ErrInvalidInput, minPasswordLength)
	}
	hash, err := s.passwords.Hash(user.Password)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return hash, nil
}

func (s *UserServiceImpl) Update(ctx context.Context, actor domain.Principal, id string, update domain.UserUpdate, ip string) (*domain.Identity, error) {
	if err := requireRole(actor, domain.RoleAdmin); err != nil {
		return nil, err
	}
	if update.Role == nil && update.Phone == nil && update.TwoFAEnabled == nil {
		return nil, fmt.Errorf("%w: nothing to update", domain.ErrInvalidInput)
	}
	if update.Role != nil && !update.Role.Valid() {
		return nil, domain.ErrInvalidRole
	}

	identity, err := s.users.Update(ctx, id, update)
	if err != nil {
		return nil, err
	}
	s.roles.Invalidate(id)
	s.audit.Record(ctx, actor.ID, domain.ActionUserUpdate, ip)
	return identity, nil
}

func (s *UserServiceImpl) Delete(ctx context.Context, actor domain.Principal, id, ip string) error {
	if err := requireRole(actor, domain.RoleAdmin); err != nil {
		return err
	}
	if err := s.users.Delete(ctx, id); err != nil {
		return err
	}
	s.roles.Invalidate(id)
	s.audit.Record(ctx, actor.ID, domain.ActionUserDelete, ip)
	return nil
}
