package auth

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"net/url"
	"time"

	"go.uber.org/zap"

	"github.com/Mulandii/Clinic-cms/domain"
)

const (
	resetTokenBytes   = 32
	minPasswordLength = 8
)

// dummyHash is compared against when the email is unknown so both paths pay
// for one bcrypt comparison.
const dummyHash = "$2a$10$7EqJtq98hPqEX7fNZaFWoOhi5BWX4Z2b5h0sZ8.Sr6E8b5hC3jFhC"

// DBCredentialStore verifies credentials against bcrypt hashes in the users
// table and completes password resets locally.
type DBCredentialStore struct {
	users     domain.IdentityRepository
	passwords domain.PasswordService
	resets    domain.ResetTokenRepository
	notifier  domain.NotificationService
	resetURL  string
	resetTTL  time.Duration
	logger    *zap.Logger
}

// NewDBCredentialStore creates a credential store backed by the users table
func NewDBCredentialStore(
	users domain.IdentityRepository,
	passwords domain.PasswordService,
	resets domain.ResetTokenRepository,
	notifier domain.NotificationService,
	resetURL string,
	resetTTL time.Duration,
	logger *zap.Logger,
) *DBCredentialStore {
	return &DBCredentialStore{
		users:     users,
		passwords: passwords,
		resets:    resets,
		notifier:  notifier,
		resetURL:  resetURL,
		resetTTL:  resetTTL,
		logger:    logger,
	}
}

// Authenticate implements domain.CredentialStore. Unknown emails, wrong
// passwords and store failures are indistinguishable to the caller.
func (s *DBCredentialStore) Authenticate(ctx context.Context, email, password string) (string, error) {
	creds, err := s.users.FindCredentials(ctx, email)
	if err != nil {
		if !errors.Is(err, domain.ErrIdentityNotFound) {
			s.logger.Error("credential lookup failed", zap.Error(err))
		}
		s.passwords.Verify(dummyHash, password)
		return "", domain.ErrInvalidCredentials
	}

	if creds.PasswordHash == "" || !s.passwords.Verify(creds.PasswordHash, password) {
		return "", domain.ErrInvalidCredentials
	}
	return creds.IdentityID, nil
}

// RequestPasswordReset implements domain.CredentialStore. An unknown email is
// not an error.
func (s *DBCredentialStore) RequestPasswordReset(ctx context.Context, email string) error {
	identity, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrIdentityNotFound) {
			return nil
		}
		return err
	}

	raw := make([]byte, resetTokenBytes)
	if _, err := rand.Read(raw); err != nil {
		return fmt.Errorf("generate reset token: %w", err)
	}
	token := base64.RawURLEncoding.EncodeToString(raw)

	if err := s.resets.Save(ctx, digestResetToken(token), identity.ID, s.resetTTL); err != nil {
		return err
	}

	link := s.resetURL + "?token=" + url.QueryEscape(token)
	body := fmt.Sprintf("A password reset was requested for your clinic account.\n\n"+
		"Open this link within %s to choose a new password:\n%s\n", s.resetTTL, link)
	if err := s.notifier.SendEmail(identity.Email, "Password reset", body); err != nil {
		return fmt.Errorf("%w: %w", domain.ErrDeliveryFailed, err)
	}
	return nil
}

// ConfirmPasswordReset implements domain.PasswordResetter. The token is
// single use; a weak password is rejected before the token is spent.
func (s *DBCredentialStore) ConfirmPasswordReset(ctx context.Context, token, newPassword string) error {
	if len(newPassword) < minPasswordLength {
		return fmt.Errorf("%w: password must be at least %d characters", domain.ErrInvalidInput, minPasswordLength)
	}
	if token == "" {
		return domain.ErrResetTokenInvalid
	}

	identityID, err := s.resets.Take(ctx, digestResetToken(token))
	if err != nil {
		return err
	}

	hash, err := s.passwords.Hash(newPassword)
	if err != nil {
		return err
	}
	return s.users.SetPasswordHash(ctx, identityID, hash)
}

func digestResetToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
