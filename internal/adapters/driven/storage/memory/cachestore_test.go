package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/heisync/internal/core/domain"
)

func TestCacheStore_PutGet(t *testing.T) {
	store := NewCacheStore()
	ctx := context.Background()
	now := time.Now()

	require.NoError(t, store.Put(ctx, domain.CachedDocument{Scope: "alice", Key: "index", Raw: `{"data":[]}`, UpdatedAt: now}))

	doc, err := store.Get(ctx, "alice", "index")
	require.NoError(t, err)
	assert.Equal(t, `{"data":[]}`, doc.Raw)
	assert.Equal(t, now, doc.UpdatedAt)
}

func TestCacheStore_ScopesAreIsolated(t *testing.T) {
	store := NewCacheStore()
	ctx := context.Background()
	require.NoError(t, store.Put(ctx, domain.CachedDocument{Scope: "alice", Key: "index", Raw: "a"}))

	_, err := store.Get(ctx, "bob", "index")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestCacheStore_LastWriterWins(t *testing.T) {
	store := NewCacheStore()
	ctx := context.Background()
	require.NoError(t, store.Put(ctx, domain.CachedDocument{Scope: "s", Key: "idx1", Raw: "first"}))
	require.NoError(t, store.Put(ctx, domain.CachedDocument{Scope: "s", Key: "idx1", Raw: "second"}))

	doc, err := store.Get(ctx, "s", "idx1")
	require.NoError(t, err)
	assert.Equal(t, "second", doc.Raw)
}

func TestCacheStore_DeleteAndList(t *testing.T) {
	store := NewCacheStore()
	ctx := context.Background()
	require.NoError(t, store.Put(ctx, domain.CachedDocument{Scope: "s", Key: "index"}))
	require.NoError(t, store.Put(ctx, domain.CachedDocument{Scope: "s", Key: "idx1"}))
	require.NoError(t, store.Put(ctx, domain.CachedDocument{Scope: "other", Key: "index"}))

	docs, err := store.List(ctx, "s")
	require.NoError(t, err)
	require.Len(t, docs, 2)
	assert.Equal(t, "idx1", docs[0].Key)

	require.NoError(t, store.Delete(ctx, "s", "idx1"))
	require.NoError(t, store.Delete(ctx, "s", "never-stored"))
	docs, err = store.List(ctx, "s")
	require.NoError(t, err)
	assert.Len(t, docs, 1)
}
