package repositories

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// RevocationRepositoryImpl implements domain.RevocationRepository as a Redis
// denylist of token ids. Entries expire with the token they revoke.
type RevocationRepositoryImpl struct {
	client *redis.Client
	prefix string
	now    func() time.Time
}

// NewRevocationRepository creates a new revocation repository
func NewRevocationRepository(client *redis.Client) *RevocationRepositoryImpl {
	return &RevocationRepositoryImpl{
		client: client,
		prefix: "revoked:",
		now:    time.Now,
	}
}

// Revoke implements domain.RevocationRepository
func (r *RevocationRepositoryImpl) Revoke(ctx context.Context, tokenID string, until time.Time) error {
	ttl := until.Sub(r.now())
	if ttl <= 0 {
		// already expired; validation rejects it anyway
		return nil
	}
	if err := r.client.Set(ctx, r.prefix+tokenID, 1, ttl).Err(); err != nil {
		return unavailable("revoke token", err)
	}
	return nil
}

// IsRevoked implements domain.RevocationRepository
func (r *RevocationRepositoryImpl) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	n, err := r.client.Exists(ctx, r.prefix+tokenID).Result()
	if err != nil {
		return false, unavailable("check revocation", err)
	}
	return n > 0, nil
}
