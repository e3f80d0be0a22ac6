package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/heisync/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/heisync/internal/core/domain"
)

// testClock is a settable time source.
type testClock struct {
	t time.Time
}

func (c *testClock) now() time.Time { return c.t }

func (c *testClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestCache(store *memory.CacheStore, fetcher *stubFetcher, scope string) (*DocumentCache, *testClock) {
	clock := &testClock{t: time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)}
	cache := NewDocumentCache(store, fetcher, scope)
	cache.now = clock.now
	return cache, clock
}

func TestDocumentCache_Load_StoresAndReuses(t *testing.T) {
	fetcher := newStubFetcher()
	fetcher.set("http://remote/index", `{"data":[]}`)
	cache, _ := newTestCache(memory.NewCacheStore(), fetcher, "alice")
	ctx := context.Background()

	first := cache.Load(ctx, domain.IndexKey, "http://remote/index", false)
	second := cache.Load(ctx, domain.IndexKey, "http://remote/index", false)

	assert.Equal(t, `{"data":[]}`, first)
	assert.Equal(t, first, second)
	assert.Equal(t, 1, fetcher.count("http://remote/index"))
}

func TestDocumentCache_Load_Refresh(t *testing.T) {
	fetcher := newStubFetcher()
	fetcher.set("http://remote/index", `{"data":[]}`)
	cache, _ := newTestCache(memory.NewCacheStore(), fetcher, "alice")
	ctx := context.Background()

	cache.Load(ctx, domain.IndexKey, "http://remote/index", false)
	fetcher.set("http://remote/index", `{"data":[{"id":"1","type":"index"}]}`)
	got := cache.Load(ctx, domain.IndexKey, "http://remote/index", true)

	assert.Equal(t, `{"data":[{"id":"1","type":"index"}]}`, got)
	assert.Equal(t, 2, fetcher.count("http://remote/index"))
}

func TestDocumentCache_Load_FailedFetchNotStored(t *testing.T) {
	fetcher := newStubFetcher()
	cache, _ := newTestCache(memory.NewCacheStore(), fetcher, "alice")
	ctx := context.Background()

	assert.Equal(t, "", cache.Load(ctx, "idx1", "http://remote/idx1", false))

	_, ok := cache.CheckUpdated(ctx, "idx1")
	assert.False(t, ok)

	cache.Load(ctx, "idx1", "http://remote/idx1", false)
	assert.Equal(t, 2, fetcher.count("http://remote/idx1"))
}

func TestDocumentCache_Load_FailedRefreshKeepsPrevious(t *testing.T) {
	fetcher := newStubFetcher()
	fetcher.set("http://remote/idx1", `{"data":[]}`)
	cache, _ := newTestCache(memory.NewCacheStore(), fetcher, "alice")
	ctx := context.Background()

	cache.Load(ctx, "idx1", "http://remote/idx1", false)
	fetcher.set("http://remote/idx1", "")

	assert.Equal(t, "", cache.Load(ctx, "idx1", "http://remote/idx1", true))
	assert.Equal(t, `{"data":[]}`, cache.Load(ctx, "idx1", "http://remote/idx1", false))
}

func TestDocumentCache_TTL(t *testing.T) {
	fetcher := newStubFetcher()
	fetcher.set("http://remote/index", `{"data":[]}`)
	cache, clock := newTestCache(memory.NewCacheStore(), fetcher, "alice")
	cache.SetTTL(time.Hour)
	ctx := context.Background()

	cache.Load(ctx, domain.IndexKey, "http://remote/index", false)
	clock.advance(30 * time.Minute)
	cache.Load(ctx, domain.IndexKey, "http://remote/index", false)
	assert.Equal(t, 1, fetcher.count("http://remote/index"))

	clock.advance(time.Hour)
	cache.Load(ctx, domain.IndexKey, "http://remote/index", false)
	assert.Equal(t, 2, fetcher.count("http://remote/index"))
}

func TestDocumentCache_CheckUpdated(t *testing.T) {
	fetcher := newStubFetcher()
	fetcher.set("http://remote/index", `{"data":[]}`)
	cache, clock := newTestCache(memory.NewCacheStore(), fetcher, "alice")
	ctx := context.Background()

	_, ok := cache.CheckUpdated(ctx, domain.IndexKey)
	assert.False(t, ok)

	cache.Load(ctx, domain.IndexKey, "http://remote/index", false)
	updated, ok := cache.CheckUpdated(ctx, domain.IndexKey)
	require.True(t, ok)
	assert.True(t, updated.Equal(clock.t))
}

func TestDocumentCache_ScopesAreIsolated(t *testing.T) {
	store := memory.NewCacheStore()
	fetcher := newStubFetcher()
	fetcher.set("http://remote/index", `{"data":[]}`)
	alice, _ := newTestCache(store, fetcher, "alice")
	bob, _ := newTestCache(store, fetcher, "bob")
	ctx := context.Background()

	alice.Load(ctx, domain.IndexKey, "http://remote/index", false)
	_, ok := bob.CheckUpdated(ctx, domain.IndexKey)
	assert.False(t, ok)

	bob.Load(ctx, domain.IndexKey, "http://remote/index", false)
	assert.Equal(t, 2, fetcher.count("http://remote/index"))
	assert.Equal(t, "bob", bob.Scope())
}

func TestDocumentCache_GetUpdated(t *testing.T) {
	const (
		indexURL = "http://remote/index"
		itemURL  = "http://remote/idx1"
	)

	tests := []struct {
		name      string
		setup     func(ctx context.Context, c *DocumentCache, clock *testClock)
		wantFetch int
	}{
		{
			name:      "item never cached",
			setup:     func(context.Context, *DocumentCache, *testClock) {},
			wantFetch: 1,
		},
		{
			name: "item older than index",
			setup: func(ctx context.Context, c *DocumentCache, clock *testClock) {
				c.Load(ctx, "idx1", itemURL, false)
				clock.advance(time.Minute)
				c.Load(ctx, domain.IndexKey, indexURL, true)
			},
			wantFetch: 2,
		},
		{
			name: "item newer than index",
			setup: func(ctx context.Context, c *DocumentCache, clock *testClock) {
				c.Load(ctx, domain.IndexKey, indexURL, false)
				clock.advance(time.Minute)
				c.Load(ctx, "idx1", itemURL, false)
			},
			wantFetch: 1,
		},
		{
			name: "index never cached",
			setup: func(ctx context.Context, c *DocumentCache, _ *testClock) {
				c.Load(ctx, "idx1", itemURL, false)
			},
			wantFetch: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fetcher := newStubFetcher()
			fetcher.set(indexURL, `{"data":[]}`)
			fetcher.set(itemURL, `{"data":[{"id":"hei-ua","type":"hei"}]}`)
			cache, clock := newTestCache(memory.NewCacheStore(), fetcher, "alice")
			ctx := context.Background()
			tt.setup(ctx, cache, clock)

			got := cache.GetUpdated(ctx, "idx1", itemURL)

			assert.Equal(t, `{"data":[{"id":"hei-ua","type":"hei"}]}`, got)
			assert.Equal(t, tt.wantFetch, fetcher.count(itemURL))
		})
	}
}

func TestDocumentCache_GetUpdated_IndexKeyIsNotCompared(t *testing.T) {
	fetcher := newStubFetcher()
	fetcher.set("http://remote/index", `{"data":[]}`)
	cache, _ := newTestCache(memory.NewCacheStore(), fetcher, "alice")
	ctx := context.Background()

	cache.GetUpdated(ctx, domain.IndexKey, "http://remote/index")
	cache.GetUpdated(ctx, domain.IndexKey, "http://remote/index")

	assert.Equal(t, 1, fetcher.count("http://remote/index"))
}

func TestDocumentCache_Invalidate(t *testing.T) {
	fetcher := newStubFetcher()
	fetcher.set("http://remote/idx1", `{"data":[]}`)
	cache, _ := newTestCache(memory.NewCacheStore(), fetcher, "alice")
	ctx := context.Background()

	cache.Load(ctx, "idx1", "http://remote/idx1", false)
	require.NoError(t, cache.Invalidate(ctx, "idx1"))
	cache.Load(ctx, "idx1", "http://remote/idx1", false)

	assert.Equal(t, 2, fetcher.count("http://remote/idx1"))
}
