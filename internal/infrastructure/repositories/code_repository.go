package repositories

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Mulandii/Clinic-cms/domain"
)

const (
	codeFieldHash      = "hash"
	codeFieldExpiresAt = "expires_at"
	codeFieldAttempts  = "attempts"
	codeFieldConsumed  = "consumed"
)

// Both scripts refuse to touch a missing key so a late call cannot recreate a
// code record without a TTL.
var (
	incrementAttemptsScript = redis.NewScript(`
if redis.call('EXISTS', KEYS[1]) == 0 then return -1 end
return redis.call('HINCRBY', KEYS[1], ARGV[1], 1)
`)
	consumeScript = redis.NewScript(`
if redis.call('EXISTS', KEYS[1]) == 0 then return -1 end
return redis.call('HSETNX', KEYS[1], ARGV[1], ARGV[2])
`)
)

// CodeRepositoryImpl implements domain.CodeRepository as one Redis hash per identity
type CodeRepositoryImpl struct {
	client *redis.Client
	prefix string
}

// NewCodeRepository creates a new one-time code repository
func NewCodeRepository(client *redis.Client) *CodeRepositoryImpl {
	return &CodeRepositoryImpl{
		client: client,
		prefix: "otp:code:",
	}
}

func (r *CodeRepositoryImpl) key(identityID string) string {
	return r.prefix + identityID
}

// Save implements domain.CodeRepository. Any previous code for the identity is
// replaced. The record outlives its expiry by the retention window so a late
// submission is reported as expired.
func (r *CodeRepositoryImpl) Save(ctx context.Context, code *domain.OneTimeCode, retention time.Duration) error {
	key := r.key(code.IdentityID)
	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, key)
		pipe.HSet(ctx, key,
			codeFieldHash, code.CodeHash,
			codeFieldExpiresAt, strconv.FormatInt(code.ExpiresAt.UnixNano(), 10),
			codeFieldAttempts, 0,
		)
		pipe.Expire(ctx, key, retention)
		return nil
	})
	if err != nil {
		return unavailable("save one-time code", err)
	}
	return nil
}

// Find implements domain.CodeRepository
func (r *CodeRepositoryImpl) Find(ctx context.Context, identityID string) (*domain.OneTimeCode, error) {
	fields, err := r.client.HGetAll(ctx, r.key(identityID)).Result()
	if err != nil {
		return nil, unavailable("load one-time code", err)
	}
	if len(fields) == 0 || fields[codeFieldHash] == "" {
		return nil, domain.ErrCodeNotFound
	}

	expiresAt, err := strconv.ParseInt(fields[codeFieldExpiresAt], 10, 64)
	if err != nil {
		return nil, unavailable("decode one-time code", err)
	}
	attempts, _ := strconv.Atoi(fields[codeFieldAttempts])
	_, consumed := fields[codeFieldConsumed]

	return &domain.OneTimeCode{
		IdentityID: identityID,
		CodeHash:   fields[codeFieldHash],
		ExpiresAt:  time.Unix(0, expiresAt).UTC(),
		Consumed:   consumed,
		Attempts:   attempts,
	}, nil
}

// IncrementAttempts implements domain.CodeRepository and returns the new count
func (r *CodeRepositoryImpl) IncrementAttempts(ctx context.Context, identityID string) (int, error) {
	n, err := incrementAttemptsScript.Run(ctx, r.client, []string{r.key(identityID)}, codeFieldAttempts).Int()
	if err != nil {
		return 0, unavailable("count one-time code attempt", err)
	}
	if n < 0 {
		return 0, domain.ErrCodeNotFound
	}
	return n, nil
}

// Consume implements domain.CodeRepository. It reports false when another
// request consumed the code first.
func (r *CodeRepositoryImpl) Consume(ctx context.Context, identityID string) (bool, error) {
	n, err := consumeScript.Run(ctx, r.client, []string{r.key(identityID)}, codeFieldConsumed, time.Now().UTC().Format(time.RFC3339Nano)).Int()
	if err != nil {
		return false, unavailable("consume one-time code", err)
	}
	switch n {
	case 1:
		return true, nil
	case 0:
		return false, nil
	default:
		return false, domain.ErrCodeNotFound
	}
}

// Delete implements domain.CodeRepository
func (r *CodeRepositoryImpl) Delete(ctx context.Context, identityID string) error {
	if err := r.client.Del(ctx, r.key(identityID)).Err(); err != nil && !errors.Is(err, redis.Nil) {
		return unavailable("delete one-time code", err)
	}
	return nil
}
