package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/Mulandii/Clinic-cms/domain"
	"github.com/Mulandii/Clinic-cms/internal/metrics"
)

// AuthServiceImpl implements domain.AuthService
type AuthServiceImpl struct {
	credentials domain.CredentialStore
	roles       domain.RoleResolver
	otpSvc      domain.OTPService
	tokenSvc    domain.TokenService
	revocations domain.RevocationRepository
	audit       domain.AuditSink
	metrics     *metrics.Metrics
	logger      *zap.Logger
}

// NewAuthService creates a new auth service. m may be nil.
func NewAuthService(
	credentials domain.CredentialStore,
	roles domain.RoleResolver,
	otpSvc domain.OTPService,
	tokenSvc domain.TokenService,
	revocations domain.RevocationRepository,
	audit domain.AuditSink,
	m *metrics.Metrics,
	logger *zap.Logger,
) *AuthServiceImpl {
	return &AuthServiceImpl{
		credentials: credentials,
		roles:       roles,
		otpSvc:      otpSvc,
		tokenSvc:    tokenSvc,
		revocations: revocations,
		audit:       audit,
		metrics:     m,
		logger:      logger,
	}
}

// Login implements domain.AuthService. A full token is returned only when the
// identity has no second factor; otherwise a code is issued and the result
// carries a pending token.
func (s *AuthServiceImpl) Login(ctx context.Context, email, password, ip string) (*domain.LoginResult, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		s.failedLogin(ctx, ip)
		return nil, domain.ErrInvalidCredentials
	}

	identityID, err := s.credentials.Authenticate(ctx, email, password)
	if err != nil {
		s.failedLogin(ctx, ip)
		return nil, domain.ErrInvalidCredentials
	}

	identity, err := s.resolveProfile(ctx, identityID)
	if err != nil {
		return nil, err
	}

	if identity.RequiresSecondFactor() {
		pending, err := s.otpSvc.Issue(ctx, identity)
		if err != nil {
			s.logger.Error("failed to issue one-time code", zap.String("identity_id", identityID), zap.Error(err))
			return nil, err
		}
		s.audit.Record(ctx, identityID, domain.ActionOTPIssued, ip)
		s.metrics.AuthOutcome(metrics.OutcomeSecondFactor)
		return &domain.LoginResult{
			Identity:     identity,
			PendingToken: pending,
			ExpiresIn:    int64(s.tokenSvc.TTL(domain.TokenKindPending).Seconds()),
		}, nil
	}

	return s.completeLogin(ctx, identity, ip)
}

// VerifySecondFactor implements domain.AuthService
func (s *AuthServiceImpl) VerifySecondFactor(ctx context.Context, pendingToken, code, ip string) (*domain.LoginResult, error) {
	identityID, err := s.otpSvc.Verify(ctx, pendingToken, code)
	if err != nil {
		var actor string
		if claims, verr := s.tokenSvc.Validate(pendingToken, domain.TokenKindPending); verr == nil {
			actor = claims.Subject
		}
		s.audit.Record(ctx, actor, domain.ActionOTPFailed, ip)
		s.metrics.AuthOutcome(metrics.OutcomeOTPFailed)
		return nil, err
	}

	identity, err := s.resolveProfile(ctx, identityID)
	if err != nil {
		return nil, err
	}
	s.audit.Record(ctx, identityID, domain.ActionOTPVerified, ip)
	s.metrics.AuthOutcome(metrics.OutcomeOTPVerified)

	return s.completeLogin(ctx, identity, ip)
}

// resolveProfile loads the role of an authenticated identity. A stored role
// outside the closed set is a data fault, not a client error.
func (s *AuthServiceImpl) resolveProfile(ctx context.Context, identityID string) (*domain.Identity, error) {
	identity, err := s.roles.Resolve(ctx, identityID)
	if err == nil {
		return identity, nil
	}
	s.logger.Error("authenticated identity has no usable profile", zap.String("identity_id", identityID), zap.Error(err))
	if errors.Is(err, domain.ErrInvalidRole) {
		return nil, fmt.Errorf("%w: identity %s: %s", domain.ErrProfileCorrupt, identityID, err.Error())
	}
	return nil, err
}

func (s *AuthServiceImpl) completeLogin(ctx context.Context, identity *domain.Identity, ip string) (*domain.LoginResult, error) {
	token, err := s.tokenSvc.IssueFull(identity.ID)
	if err != nil {
		return nil, err
	}
	s.audit.Record(ctx, identity.ID, domain.ActionLogin, ip)
	s.metrics.AuthOutcome(metrics.OutcomeLogin)

	return &domain.LoginResult{
		Identity:  identity,
		Token:     token,
		ExpiresIn: int64(s.tokenSvc.TTL(domain.TokenKindFull).Seconds()),
	}, nil
}

func (s *AuthServiceImpl) failedLogin(ctx context.Context, ip string) {
	s.audit.Record(ctx, "", domain.ActionFailedLogin, ip)
	s.metrics.AuthOutcome(metrics.OutcomeFailedLogin)
}

// Logout implements domain.AuthService by denylisting the token id until the
// token would have expired anyway.
func (s *AuthServiceImpl) Logout(ctx context.Context, claims *domain.TokenClaims, ip string) error {
	if claims == nil || claims.TokenID == "" {
		return domain.ErrUnauthenticated
	}
	if err := s.revocations.Revoke(ctx, claims.TokenID, claims.ExpiresAt); err != nil {
		return err
	}
	s.audit.Record(ctx, claims.Subject, domain.ActionLogout, ip)
	return nil
}

// RequestPasswordReset implements domain.AuthService
func (s *AuthServiceImpl) RequestPasswordReset(ctx context.Context, actorID, email, ip string) error {
	email = strings.TrimSpace(email)
	if email == "" {
		return domain.ErrInvalidInput
	}
	if err := s.credentials.RequestPasswordReset(ctx, email); err != nil {
		return err
	}
	s.audit.Record(ctx, actorID, domain.ActionResetRequest, ip)
	return nil
}

// ConfirmPasswordReset implements domain.AuthService. Only credential stores
// that keep passwords locally can complete a reset.
func (s *AuthServiceImpl) ConfirmPasswordReset(ctx context.Context, token, newPassword, ip string) error {
	resetter, ok := s.credentials.(domain.PasswordResetter)
	if !ok {
		return domain.ErrResetUnsupported
	}
	if err := resetter.ConfirmPasswordReset(ctx, token, newPassword); err != nil {
		return err
	}
	s.audit.Record(ctx, "", domain.ActionPasswordReset, ip)
	return nil
}
