package services

import (
	"context"
	"errors"
	"time"

	"github.com/custodia-labs/heisync/internal/core/domain"
	"github.com/custodia-labs/heisync/internal/core/ports/driven"
	"github.com/custodia-labs/heisync/internal/core/ports/driving"
	"github.com/custodia-labs/heisync/internal/logger"
)

// Ensure DocumentCache implements the interface.
var _ driving.DocumentCache = (*DocumentCache)(nil)

// DocumentCache keeps fetched documents per (scope, key).
// Concurrent refreshes of the same key are not coordinated; the last write wins.
type DocumentCache struct {
	store   driven.CacheStore
	fetcher driving.RemoteFetcher
	scope   string
	ttl     time.Duration
	now     func() time.Time
}

// NewDocumentCache creates a cache for one user or session scope.
func NewDocumentCache(store driven.CacheStore, fetcher driving.RemoteFetcher, scope string) *DocumentCache {
	return &DocumentCache{
		store:   store,
		fetcher: fetcher,
		scope:   scope,
		now:     time.Now,
	}
}

// SetTTL makes entries older than ttl refetch on Load. Zero disables expiry.
func (c *DocumentCache) SetTTL(ttl time.Duration) {
	c.ttl = ttl
}

// Scope returns the cache scope.
func (c *DocumentCache) Scope() string {
	return c.scope
}

// Load returns the cached document for key, fetching endpoint when the entry
// is absent, expired or refresh is set. Failed fetches are not stored.
func (c *DocumentCache) Load(ctx context.Context, key, endpoint string, refresh bool) string {
	if !refresh {
		cached, err := c.lookup(ctx, key)
		if err == nil && !cached.IsExpired(c.ttl, c.now()) {
			return cached.Raw
		}
	}

	logger.Debug("cache %q: fetching %s", key, endpoint)
	content := c.fetcher.Get(ctx, endpoint)
	if content == "" {
		return ""
	}

	doc := domain.CachedDocument{
		Scope:     c.scope,
		Key:       key,
		Raw:       content,
		UpdatedAt: c.now(),
	}
	if err := c.store.Put(ctx, doc); err != nil {
		logger.Error("cache %q: store: %v", key, err)
	}
	return content
}

// CheckUpdated returns the last write time for key.
func (c *DocumentCache) CheckUpdated(ctx context.Context, key string) (time.Time, bool) {
	cached, err := c.lookup(ctx, key)
	if err != nil {
		return time.Time{}, false
	}
	return cached.UpdatedAt, true
}

// GetUpdated loads key, forcing a refresh when the cached entry was written
// before the index was. The index key itself is loaded without comparison.
func (c *DocumentCache) GetUpdated(ctx context.Context, key, endpoint string) string {
	if key == domain.IndexKey {
		return c.Load(ctx, key, endpoint, false)
	}

	itemUpdated, ok := c.CheckUpdated(ctx, key)
	if !ok {
		return c.Load(ctx, key, endpoint, true)
	}
	indexUpdated, ok := c.CheckUpdated(ctx, domain.IndexKey)
	refresh := ok && itemUpdated.Before(indexUpdated)
	if refresh {
		logger.Debug("cache %q: older than index, refreshing", key)
	}
	return c.Load(ctx, key, endpoint, refresh)
}

// Invalidate drops the entry for key.
func (c *DocumentCache) Invalidate(ctx context.Context, key string) error {
	return c.store.Delete(ctx, c.scope, key)
}

func (c *DocumentCache) lookup(ctx context.Context, key string) (*domain.CachedDocument, error) {
	cached, err := c.store.Get(ctx, c.scope, key)
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			logger.Error("cache %q: read: %v", key, err)
		}
		return nil, err
	}
	return cached, nil
}
