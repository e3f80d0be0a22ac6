package driving

import (
	"context"
	"time"

	"github.com/custodia-labs/heisync/internal/core/domain"
)

// DocumentValidator checks that a payload has the minimal JSON:API shape.
type DocumentValidator interface {
	// Validate reports whether raw is a JSON:API document whose records
	// all carry a type and an id. The first violation is logged.
	Validate(raw []byte) bool

	// Check returns the first violation wrapped in domain.ErrInvalidDocument,
	// or nil if raw is valid.
	Check(raw []byte) error
}

// RemoteFetcher retrieves JSON:API documents over HTTP.
type RemoteFetcher interface {
	// Get performs a single GET and returns normalised JSON,
	// or an empty string if nothing valid came back.
	Get(ctx context.Context, endpoint string) string

	// Fetch is Get with the failure reason.
	Fetch(ctx context.Context, endpoint string) (string, error)
}

// DocumentCache keeps per-key snapshots of fetched documents.
type DocumentCache interface {
	// Load returns the cached document for key, fetching it from endpoint
	// when absent, expired, or when refresh is set.
	Load(ctx context.Context, key, endpoint string, refresh bool) string

	// CheckUpdated returns the last write time for key.
	CheckUpdated(ctx context.Context, key string) (time.Time, bool)

	// GetUpdated loads key, refreshing it when it is older than the index.
	GetUpdated(ctx context.Context, key, endpoint string) string

	// Invalidate drops the snapshot for key.
	Invalidate(ctx context.Context, key string) error
}

// DocumentProcessor decodes cached JSON:API documents.
type DocumentProcessor interface {
	// Decode parses a raw document into records.
	Decode(raw string) (*domain.Document, error)

	// IDLabel returns id/label pairs ordered by label, case-insensitively.
	IDLabel(raw string) []domain.IDLabel

	// IDLinks returns the URL of the named link for every record.
	IDLinks(raw, linkKey string) map[string]string

	// ToArray returns the records, with attributes expanded if asked.
	ToArray(raw string, expand bool) []domain.Record

	// Extract returns the expanded attributes of the record with the given id.
	Extract(raw, id string) domain.Attributes

	// RecordKeys returns every attribute name used by any record, sorted.
	RecordKeys(raw string) []string
}
