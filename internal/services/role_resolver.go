package services

import (
	"context"
	"sync"
	"time"

	"github.com/Mulandii/Clinic-cms/domain"
)

// sweepThreshold bounds the cache before expired entries are swept on write
const sweepThreshold = 1024

type cachedIdentity struct {
	identity  domain.Identity
	expiresAt time.Time
}

// RoleResolverImpl implements domain.RoleResolver with a short-lived
// in-memory cache in front of the users table.
type RoleResolverImpl struct {
	users domain.IdentityRepository
	ttl   time.Duration
	now   func() time.Time

	mu      sync.RWMutex
	entries map[string]cachedIdentity
}

// NewRoleResolver creates a resolver caching results for ttl. A zero ttl
// disables caching.
func NewRoleResolver(users domain.IdentityRepository, ttl time.Duration) *RoleResolverImpl {
	return &RoleResolverImpl{
		users:   users,
		ttl:     ttl,
		now:     time.Now,
		entries: make(map[string]cachedIdentity),
	}
}

// Resolve implements domain.RoleResolver. Callers receive their own copy.
func (r *RoleResolverImpl) Resolve(ctx context.Context, identityID string) (*domain.Identity, error) {
	now := r.now()

	r.mu.RLock()
	entry, ok := r.entries[identityID]
	r.mu.RUnlock()
	if ok && now.Before(entry.expiresAt) {
		identity := entry.identity
		return &identity, nil
	}

	identity, err := r.users.FindByID(ctx, identityID)
	if err != nil {
		return nil, err
	}
	if r.ttl <= 0 {
		return identity, nil
	}

	r.mu.Lock()
	if len(r.entries) >= sweepThreshold {
		for id, e := range r.entries {
			if !now.Before(e.expiresAt) {
				delete(r.entries, id)
			}
		}
	}
	r.entries[identityID] = cachedIdentity{identity: *identity, expiresAt: now.Add(r.ttl)}
	r.mu.Unlock()

	copied := *identity
	return &copied, nil
}

// Invalidate implements domain.RoleResolver
func (r *RoleResolverImpl) Invalidate(identityID string) {
	r.mu.Lock()
	delete(r.entries, identityID)
	r.mu.Unlock()
}
