package auth

import (
	"context"
	"time"

	"github.com/google/uuid"

	"campuseats/internal/cache"
)

const identityKeyPrefix = "identity:"

// identityCacheTTL bounds how long a subject→user mapping is trusted before
// the next request re-syncs profile fields from the token.
const identityCacheTTL = 15 * time.Minute

// IdentityCacheInterface defines the subject-to-user mapping cache.
type IdentityCacheInterface interface {
	GetUserID(ctx context.Context, subject string) (uuid.UUID, bool)
	StoreUserID(ctx context.Context, subject string, userID uuid.UUID) error
	Invalidate(ctx context.Context, subject string) error
}

// IdentityCache maps identity-provider subjects to internal user ids in
// Redis, so the lazy-provisioning upsert runs once per TTL instead of on
// every authenticated request.
type IdentityCache struct {
	cache *cache.Client
}

// Ensure IdentityCache implements IdentityCacheInterface
var _ IdentityCacheInterface = (*IdentityCache)(nil)

// NewIdentityCache creates a new identity cache.
func NewIdentityCache(cache *cache.Client) *IdentityCache {
	return &IdentityCache{cache: cache}
}

// GetUserID returns the cached user id for a subject, if present.
func (s *IdentityCache) GetUserID(ctx context.Context, subject string) (uuid.UUID, bool) {
	raw, _ := s.cache.Get(ctx, identityKeyPrefix+subject)
	if raw == nil {
		return uuid.Nil, false
	}
	id, err := uuid.Parse(string(raw))
	if err != nil {
		_ = s.cache.Delete(ctx, identityKeyPrefix+subject)
		return uuid.Nil, false
	}
	return id, true
}

// StoreUserID caches the subject→user mapping.
func (s *IdentityCache) StoreUserID(ctx context.Context, subject string, userID uuid.UUID) error {
	return s.cache.Set(ctx, identityKeyPrefix+subject, []byte(userID.String()), identityCacheTTL)
}

// Invalidate drops the mapping, forcing a re-sync on the next request.
func (s *IdentityCache) Invalidate(ctx context.Context, subject string) error {
	return s.cache.Delete(ctx, identityKeyPrefix+subject)
}
