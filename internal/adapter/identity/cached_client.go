package identity

import (
	"context"
	"encoding/json"
	"time"

	"github.com/dkosiv/shardpay/internal/domain"
	"github.com/dkosiv/shardpay/internal/usecase"
)

// CachedClient decorates an identity client with a read-through cache.
// Cache failures are treated as misses; a stale hit never blocks an
// enrichment read.
type CachedClient struct {
	inner usecase.IdentityClient
	cache usecase.Cache
	ttl   time.Duration
}

// NewCachedClient creates a CachedClient.
func NewCachedClient(inner usecase.IdentityClient, cache usecase.Cache, ttl time.Duration) *CachedClient {
	return &CachedClient{
		inner: inner,
		cache: cache,
		ttl:   ttl,
	}
}

// GetByAccount returns a cached identity when present, otherwise fetches
// from the registry and caches the result.
func (c *CachedClient) GetByAccount(ctx context.Context, accountID string) (*domain.Identity, error) {
	if cached, err := c.cache.Get(ctx, accountID); err == nil {
		var identity domain.Identity
		if err := json.Unmarshal(cached, &identity); err == nil {
			return &identity, nil
		}
	}

	identity, err := c.inner.GetByAccount(ctx, accountID)
	if err != nil {
		return nil, err
	}

	if encoded, err := json.Marshal(identity); err == nil {
		_ = c.cache.Set(ctx, accountID, encoded, c.ttl)
	}

	return identity, nil
}
