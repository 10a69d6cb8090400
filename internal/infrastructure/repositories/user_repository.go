package repositories

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Mulandii/Clinic-cms/domain"
)

// UserRepositoryImpl implements domain.IdentityRepository using GORM
type UserRepositoryImpl struct {
	db *gorm.DB
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *gorm.DB) *UserRepositoryImpl {
	return &UserRepositoryImpl{db: db}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// FindByID implements domain.IdentityRepository
func (r *UserRepositoryImpl) FindByID(ctx context.Context, id string) (*domain.Identity, error) {
	var dbUser DBUser
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&dbUser).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrIdentityNotFound
		}
		return nil, unavailable("find user", err)
	}
	return dbToIdentity(&dbUser)
}

// FindByEmail implements domain.IdentityRepository
func (r *UserRepositoryImpl) FindByEmail(ctx context.Context, email string) (*domain.Identity, error) {
	var dbUser DBUser
	if err := r.db.WithContext(ctx).Where("email = ?", normalizeEmail(email)).First(&dbUser).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrIdentityNotFound
		}
		return nil, unavailable("find user by email", err)
	}
	return dbToIdentity(&dbUser)
}

// FindCredentials implements domain.IdentityRepository
func (r *UserRepositoryImpl) FindCredentials(ctx context.Context, email string) (*domain.Credentials, error) {
	var dbUser DBUser
	err := r.db.WithContext(ctx).
		Select("id", "email", "password_hash").
		Where("email = ?", normalizeEmail(email)).
		First(&dbUser).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrIdentityNotFound
		}
		return nil, unavailable("find credentials", err)
	}
	return &domain.Credentials{
		IdentityID:   dbUser.ID,
		Email:        dbUser.Email,
		PasswordHash: dbUser.PasswordHash,
	}, nil
}

// List implements domain.IdentityRepository
func (r *UserRepositoryImpl) List(ctx context.Context) ([]domain.Identity, error) {
	var rows []DBUser
	if err := r.db.WithContext(ctx).Order("created_at, id").Find(&rows).Error; err != nil {
		return nil, unavailable("list users", err)
	}

	identities := make([]domain.Identity, 0, len(rows))
	for i := range rows {
		identity, err := dbToIdentity(&rows[i])
		if err != nil {
			return nil, err
		}
		identities = append(identities, *identity)
	}
	return identities, nil
}

// Create implements domain.IdentityRepository. The identity's ID and
// timestamps are filled in on success.
func (r *UserRepositoryImpl) Create(ctx context.Context, identity *domain.Identity, passwordHash string) error {
	if !identity.Role.Valid() {
		return domain.ErrInvalidRole
	}
	email := normalizeEmail(identity.Email)

	var count int64
	if err := r.db.WithContext(ctx).Model(&DBUser{}).Where("email = ?", email).Count(&count).Error; err != nil {
		return unavailable("check user email", err)
	}
	if count > 0 {
		return domain.ErrIdentityExists
	}

	dbUser := &DBUser{
		ID:           identity.ID,
		Email:        email,
		Phone:        identity.Phone,
		PasswordHash: passwordHash,
		Role:         string(identity.Role),
		TwoFAEnabled: identity.TwoFAEnabled,
	}
	if dbUser.ID == "" {
		dbUser.ID = uuid.NewString()
	}
	if err := r.db.WithContext(ctx).Create(dbUser).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return domain.ErrIdentityExists
		}
		return unavailable("create user", err)
	}

	identity.ID = dbUser.ID
	identity.Email = dbUser.Email
	identity.CreatedAt = dbUser.CreatedAt
	identity.UpdatedAt = dbUser.UpdatedAt
	return nil
}

// Update implements domain.IdentityRepository
func (r *UserRepositoryImpl) Update(ctx context.Context, id string, update domain.UserUpdate) (*domain.Identity, error) {
	changes := map[string]interface{}{}
	if update.Role != nil {
		if !update.Role.Valid() {
			return nil, domain.ErrInvalidRole
		}
		changes["role"] = string(*update.Role)
	}
	if update.Phone != nil {
		changes["phone"] = strings.TrimSpace(*update.Phone)
	}
	if update.TwoFAEnabled != nil {
		changes["two_fa_enabled"] = *update.TwoFAEnabled
	}

	if len(changes) > 0 {
		res := r.db.WithContext(ctx).Model(&DBUser{}).Where("id = ?", id).Updates(changes)
		if res.Error != nil {
			return nil, unavailable("update user", res.Error)
		}
		if res.RowsAffected == 0 {
			return nil, domain.ErrIdentityNotFound
		}
	}

	return r.FindByID(ctx, id)
}

// Delete implements domain.IdentityRepository
func (r *UserRepositoryImpl) Delete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&DBUser{})
	if res.Error != nil {
		return unavailable("delete user", res.Error)
	}
	if res.RowsAffected == 0 {
		return domain.ErrIdentityNotFound
	}
	return nil
}

// SetPasswordHash implements domain.IdentityRepository
func (r *UserRepositoryImpl) SetPasswordHash(ctx context.Context, id, passwordHash string) error {
	res := r.db.WithContext(ctx).Model(&DBUser{}).Where("id = ?", id).Update("password_hash", passwordHash)
	if res.Error != nil {
		return unavailable("set password", res.Error)
	}
	if res.RowsAffected == 0 {
		return domain.ErrIdentityNotFound
	}
	return nil
}

// dbToIdentity converts a users row. A role outside the closed set is an
// error rather than a silently downgraded identity.
func dbToIdentity(dbUser *DBUser) (*domain.Identity, error) {
	role, err := domain.ParseRole(dbUser.Role)
	if err != nil {
		return nil, fmt.Errorf("user %s: %w", dbUser.ID, err)
	}
	return &domain.Identity{
		ID:           dbUser.ID,
		Email:        dbUser.Email,
		Phone:        dbUser.Phone,
		Role:         role,
		TwoFAEnabled: dbUser.TwoFAEnabled,
		CreatedAt:    dbUser.CreatedAt,
		UpdatedAt:    dbUser.UpdatedAt,
	}, nil
}
