package services

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"time"

	"go.uber.org/zap"

	"github.com/Mulandii/Clinic-cms/domain"
	"github.com/Mulandii/Clinic-cms/internal/config"
)

// OTPServiceImpl implements domain.OTPService. Codes are stored only as
// bcrypt hashes and every issuance replaces the previous code.
type OTPServiceImpl struct {
	codes           domain.CodeRepository
	hasher          domain.PasswordService
	tokenSvc        domain.TokenService
	notificationSvc domain.NotificationService
	config          OTPConfig
	now             func() time.Time
	logger          *zap.Logger
}

type OTPConfig struct {
	Length      int
	TTL         time.Duration
	MaxAttempts int
	Retention   time.Duration
	Channel     string
}

// NewOTPService creates a new one-time code service
func NewOTPService(
	codes domain.CodeRepository,
	hasher domain.PasswordService,
	tokenSvc domain.TokenService,
	notificationSvc domain.NotificationService,
	config OTPConfig,
	logger *zap.Logger,
) *OTPServiceImpl {
	return &OTPServiceImpl{
		codes:           codes,
		hasher:          hasher,
		tokenSvc:        tokenSvc,
		notificationSvc: notificationSvc,
		config:          config,
		now:             time.Now,
		logger:          logger,
	}
}

// WithClock replaces the time source, for tests
func (s *OTPServiceImpl) WithClock(now func() time.Time) *OTPServiceImpl {
	s.now = now
	return s
}

// Issue implements domain.OTPService. The returned pending token references
// the identity only; the code leaves the process solely through delivery.
func (s *OTPServiceImpl) Issue(ctx context.Context, identity *domain.Identity) (string, error) {
	pending, err := s.tokenSvc.IssuePending(identity.ID)
	if err != nil {
		return "", fmt.Errorf("failed to issue pending token: %w", err)
	}

	code, err := s.generateSecureCode()
	if err != nil {
		return "", fmt.Errorf("failed to generate one-time code: %w", err)
	}
	hash, err := s.hasher.Hash(code)
	if err != nil {
		return "", fmt.Errorf("failed to hash one-time code: %w", err)
	}

	record := &domain.OneTimeCode{
		IdentityID: identity.ID,
		CodeHash:   hash,
		ExpiresAt:  s.now().Add(s.config.TTL),
	}
	if err := s.codes.Save(ctx, record, s.config.Retention); err != nil {
		return "", err
	}

	if err := s.deliver(identity, code); err != nil {
		if delErr := s.codes.Delete(ctx, identity.ID); delErr != nil {
			s.logger.Warn("failed to discard undelivered code", zap.String("identity_id", identity.ID), zap.Error(delErr))
		}
		return "", fmt.Errorf("%w: %w", domain.ErrDeliveryFailed, err)
	}

	return pending, nil
}

func (s *OTPServiceImpl) deliver(identity *domain.Identity, code string) error {
	minutes := int(s.config.TTL.Minutes())
	if s.config.Channel == config.ChannelSMS && identity.Phone != "" {
		return s.notificationSvc.SendSMS(identity.Phone,
			fmt.Sprintf("Your clinic verification code is %s. It expires in %d minutes.", code, minutes))
	}
	return s.notificationSvc.SendEmail(identity.Email, "Your verification code",
		fmt.Sprintf("Your verification code is %s.\n\nIt expires in %d minutes. If you did not try to sign in, contact your administrator.\n", code, minutes))
}

// Verify implements domain.OTPService and returns the verified identity id.
// Checks run in a fixed order: presence, prior use, expiry, attempt budget,
// then the constant-time hash comparison.
//
// Each submission reserves an attempt before comparing, so concurrent guesses
// never get more than MaxAttempts comparisons. An exhausted record is left in
// place rather than deleted: a correct submission already inside its budget
// can still consume it, and later ones see ErrCodeMaxAttempts until it expires.
func (s *OTPServiceImpl) Verify(ctx context.Context, pendingToken, code string) (string, error) {
	claims, err := s.tokenSvc.Validate(pendingToken, domain.TokenKindPending)
	if err != nil {
		return "", err
	}
	identityID := claims.Subject

	record, err := s.codes.Find(ctx, identityID)
	if err != nil {
		return "", err
	}
	if record.Consumed {
		return "", domain.ErrCodeAlreadyUsed
	}
	if record.Expired(s.now()) {
		return "", domain.ErrCodeExpired
	}
	if record.Attempts >= s.config.MaxAttempts {
		return "", domain.ErrCodeMaxAttempts
	}

	attempts, err := s.codes.IncrementAttempts(ctx, identityID)
	if err != nil {
		return "", err
	}
	if attempts > s.config.MaxAttempts {
		return "", domain.ErrCodeMaxAttempts
	}

	if !s.hasher.Verify(record.CodeHash, code) {
		return "", domain.ErrCodeMismatch
	}

	consumed, err := s.codes.Consume(ctx, identityID)
	if err != nil {
		if errors.Is(err, domain.ErrCodeNotFound) {
			return "", domain.ErrCodeAlreadyUsed
		}
		return "", err
	}
	if !consumed {
		return "", domain.ErrCodeAlreadyUsed
	}
	return identityID, nil
}

// generateSecureCode generates a cryptographically secure numeric code
func (s *OTPServiceImpl) generateSecureCode() (string, error) {
	digits := make([]byte, s.config.Length)
	for i := range digits {
		num, err := rand.Int(rand.Reader, big.NewInt(10))
		if err != nil {
			return "", fmt.Errorf("failed to generate random digit: %w", err)
		}
		digits[i] = byte('0' + num.Int64())
	}
	return string(digits), nil
}
