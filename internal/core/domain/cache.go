package domain

import "time"

// CachedDocument is a raw payload snapshot held by the document cache.
// There is one per (scope, key); a fetch or forced refresh overwrites it.
type CachedDocument struct {
	// Scope isolates entries per user or session.
	Scope string

	// Key is the logical cache key ("index" or an index item id).
	Key string

	// Raw is the normalised JSON text.
	Raw string

	// UpdatedAt is the time of the last write.
	UpdatedAt time.Time
}

// IsExpired reports whether the snapshot is older than ttl at now.
// A zero ttl never expires.
func (d *CachedDocument) IsExpired(ttl time.Duration, now time.Time) bool {
	if ttl <= 0 {
		return false
	}
	return now.Sub(d.UpdatedAt) > ttl
}
