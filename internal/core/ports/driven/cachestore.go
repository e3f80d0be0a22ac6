package driven

import (
	"context"

	"github.com/custodia-labs/heisync/internal/core/domain"
)

// CacheStore persists raw document snapshots keyed by (scope, key).
// Backed by SQLite in the CLI and by memory in tests.
type CacheStore interface {
	// Get retrieves a snapshot. Returns domain.ErrNotFound if absent.
	Get(ctx context.Context, scope, key string) (*domain.CachedDocument, error)

	// Put creates or overwrites a snapshot. The last writer wins.
	Put(ctx context.Context, doc domain.CachedDocument) error

	// Delete removes a snapshot. Deleting an absent key is not an error.
	Delete(ctx context.Context, scope, key string) error

	// List returns every snapshot in a scope.
	List(ctx context.Context, scope string) ([]domain.CachedDocument, error)
}
