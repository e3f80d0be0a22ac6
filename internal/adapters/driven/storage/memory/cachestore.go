package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/custodia-labs/heisync/internal/core/domain"
	"github.com/custodia-labs/heisync/internal/core/ports/driven"
)

// Ensure CacheStore implements the interface.
var _ driven.CacheStore = (*CacheStore)(nil)

type cacheKey struct {
	scope string
	key   string
}

// CacheStore is an in-memory implementation of driven.CacheStore.
type CacheStore struct {
	mu   sync.RWMutex
	docs map[cacheKey]domain.CachedDocument
}

// NewCacheStore creates a new in-memory cache store.
func NewCacheStore() *CacheStore {
	return &CacheStore{
		docs: make(map[cacheKey]domain.CachedDocument),
	}
}

// Get retrieves a snapshot.
func (s *CacheStore) Get(_ context.Context, scope, key string) (*domain.CachedDocument, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	doc, ok := s.docs[cacheKey{scope, key}]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &doc, nil
}

// Put creates or overwrites a snapshot.
func (s *CacheStore) Put(_ context.Context, doc domain.CachedDocument) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.docs[cacheKey{doc.Scope, doc.Key}] = doc
	return nil
}

// Delete removes a snapshot.
func (s *CacheStore) Delete(_ context.Context, scope, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.docs, cacheKey{scope, key})
	return nil
}

// List returns every snapshot in a scope, ordered by key.
func (s *CacheStore) List(_ context.Context, scope string) ([]domain.CachedDocument, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var result []domain.CachedDocument
	for k, doc := range s.docs {
		if k.scope == scope {
			result = append(result, doc)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Key < result[j].Key })
	return result, nil
}
