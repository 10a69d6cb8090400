package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Mulandii/Clinic-cms/domain"
)

// ResetTokenRepositoryImpl implements domain.ResetTokenRepository. Only the
// digest of a reset token is stored, mapped to the identity it resets.
type ResetTokenRepositoryImpl struct {
	client *redis.Client
	prefix string
}

func NewResetTokenRepository(client *redis.Client) *ResetTokenRepositoryImpl {
	return &ResetTokenRepositoryImpl{client: client, prefix: "pwreset:"}
}

func (r *ResetTokenRepositoryImpl) Save(ctx context.Context, digest, identityID string, ttl time.Duration) error {
	if err := r.client.Set(ctx, r.prefix+digest, identityID, ttl).Err(); err != nil {
		return unavailable("save reset token", err)
	}
	return nil
}

// Take returns the identity and deletes the token in one step
func (r *ResetTokenRepositoryImpl) Take(ctx context.Context, digest string) (string, error) {
	identityID, err := r.client.GetDel(ctx, r.prefix+digest).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", domain.ErrResetTokenInvalid
		}
		return "", unavailable("take reset token", err)
	}
	return identityID, nil
}
