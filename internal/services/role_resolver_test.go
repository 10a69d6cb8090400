package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Mulandii/Clinic-cms/domain"
	"github.com/Mulandii/Clinic-cms/internal/mocks"
)

func countingUsers(identity *domain.Identity) (*mocks.MockIdentityRepository, *int) {
	calls := 0
	repo := mocks.NewMockIdentityRepository()
	repo.FindByIDFunc = func(ctx context.Context, id string) (*domain.Identity, error) {
		calls++
		if id != identity.ID {
			return nil, domain.ErrIdentityNotFound
		}
		copied := *identity
		return &copied, nil
	}
	return repo, &calls
}

func TestRoleResolverImpl_CachesWithinTTL(t *testing.T) {
	identity := createIdentity(t, "doc", domain.RoleDoctor)
	repo, calls := countingUsers(identity)
	clock := newTestClock()
	resolver := NewRoleResolver(repo, time.Minute)
	resolver.now = clock.Now

	first, err := resolver.Resolve(context.Background(), "doc")
	require.NoError(t, err)
	second, err := resolver.Resolve(context.Background(), "doc")
	require.NoError(t, err)

	assert.Equal(t, 1, *calls)
	assert.Equal(t, domain.RoleDoctor, second.Role)

	// callers cannot poison the cache
	first.Role = domain.RoleAdmin
	third, err := resolver.Resolve(context.Background(), "doc")
	require.NoError(t, err)
	assert.Equal(t, domain.RoleDoctor, third.Role)

	clock.Advance(time.Minute)
	_, err = resolver.Resolve(context.Background(), "doc")
	require.NoError(t, err)
	assert.Equal(t, 2, *calls)
}

func TestRoleResolverImpl_Invalidate(t *testing.T) {
	identity := createIdentity(t, "doc", domain.RoleDoctor)
	repo, calls := countingUsers(identity)
	resolver := NewRoleResolver(repo, time.Hour)

	_, err := resolver.Resolve(context.Background(), "doc")
	require.NoError(t, err)

	identity.Role = domain.RolePharmacist
	resolver.Invalidate("doc")

	resolved, err := resolver.Resolve(context.Background(), "doc")
	require.NoError(t, err)
	assert.Equal(t, domain.RolePharmacist, resolved.Role)
	assert.Equal(t, 2, *calls)
}

func TestRoleResolverImpl_ZeroTTLDisablesCache(t *testing.T) {
	identity := createIdentity(t, "doc", domain.RoleDoctor)
	repo, calls := countingUsers(identity)
	resolver := NewRoleResolver(repo, 0)

	for i := 0; i < 3; i++ {
		_, err := resolver.Resolve(context.Background(), "doc")
		require.NoError(t, err)
	}
	assert.Equal(t, 3, *calls)
}

func TestRoleResolverImpl_ErrorsAreNotCached(t *testing.T) {
	identity := createIdentity(t, "doc", domain.RoleDoctor)
	repo, calls := countingUsers(identity)
	resolver := NewRoleResolver(repo, time.Hour)

	for i := 0; i < 2; i++ {
		_, err := resolver.Resolve(context.Background(), "ghost")
		assert.ErrorIs(t, err, domain.ErrIdentityNotFound)
	}
	assert.Equal(t, 2, *calls)
}

func TestRoleResolverImpl_SweepsExpiredEntries(t *testing.T) {
	repo := mocks.NewMockIdentityRepository()
	repo.FindByIDFunc = func(ctx context.Context, id string) (*domain.Identity, error) {
		return &domain.Identity{ID: id, Role: domain.RolePatient}, nil
	}
	clock := newTestClock()
	resolver := NewRoleResolver(repo, time.Second)
	resolver.now = clock.Now

	for i := 0; i < sweepThreshold; i++ {
		_, err := resolver.Resolve(context.Background(), time.Duration(i).String())
		require.NoError(t, err)
	}
	require.Len(t, resolver.entries, sweepThreshold)

	clock.Advance(time.Second)
	_, err := resolver.Resolve(context.Background(), "fresh")
	require.NoError(t, err)
	assert.Len(t, resolver.entries, 1)
}
