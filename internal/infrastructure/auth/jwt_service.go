package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/Mulandii/Clinic-cms/domain"
)

// sessionClaims is the signed payload of every token
type sessionClaims struct {
	Kind domain.TokenKind `json:"kind"`
	jwt.RegisteredClaims
}

// JWTServiceImpl implements domain.TokenService
type JWTServiceImpl struct {
	secretKey  []byte
	issuer     string
	accessTTL  time.Duration
	pendingTTL time.Duration
	now        func() time.Time
}

// NewJWTService creates a new JWT service
func NewJWTService(secretKey string, issuer string, accessTTL, pendingTTL time.Duration) *JWTServiceImpl {
	return &JWTServiceImpl{
		secretKey:  []byte(secretKey),
		issuer:     issuer,
		accessTTL:  accessTTL,
		pendingTTL: pendingTTL,
		now:        time.Now,
	}
}

// WithClock replaces the time source, for tests
func (j *JWTServiceImpl) WithClock(now func() time.Time) *JWTServiceImpl {
	j.now = now
	return j
}

// IssueFull implements domain.TokenService
func (j *JWTServiceImpl) IssueFull(identityID string) (string, error) {
	return j.issue(identityID, domain.TokenKindFull)
}

// IssuePending implements domain.TokenService
func (j *JWTServiceImpl) IssuePending(identityID string) (string, error) {
	return j.issue(identityID, domain.TokenKindPending)
}

// TTL implements domain.TokenService
func (j *JWTServiceImpl) TTL(kind domain.TokenKind) time.Duration {
	if kind == domain.TokenKindPending {
		return j.pendingTTL
	}
	return j.accessTTL
}

func (j *JWTServiceImpl) issue(identityID string, kind domain.TokenKind) (string, error) {
	if identityID == "" {
		return "", domain.ErrInvalidInput
	}
	now := j.now()
	claims := sessionClaims{
		Kind: kind,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   identityID,
			Issuer:    j.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(j.TTL(kind))),
			ID:        uuid.NewString(),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(j.secretKey)
}

// Validate implements domain.TokenService
func (j *JWTServiceImpl) Validate(tokenString string, kind domain.TokenKind) (*domain.TokenClaims, error) {
	var claims sessionClaims
	token, err := jwt.ParseWithClaims(tokenString, &claims, func(token *jwt.Token) (interface{}, error) {
		return j.secretKey, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(j.issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(j.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, domain.ErrTokenExpired
		}
		return nil, domain.ErrTokenInvalid
	}
	if !token.Valid || claims.Subject == "" || claims.ID == "" || claims.IssuedAt == nil {
		return nil, domain.ErrTokenInvalid
	}

	if claims.Kind != kind {
		return nil, domain.ErrTokenWrongKind
	}

	return &domain.TokenClaims{
		Subject:   claims.Subject,
		Kind:      claims.Kind,
		TokenID:   claims.ID,
		IssuedAt:  claims.IssuedAt.Time,
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}
