package domain

import "time"

// RemoteSettings controls how the index and its items are fetched and cached.
type RemoteSettings struct {
	// Token is an optional bearer token sent with every request.
	Token string

	// RateLimit caps requests per second. Zero means unlimited.
	RateLimit float64

	// Timeout is the HTTP request timeout.
	Timeout time.Duration

	// CacheTTL expires cached documents. Zero means they never expire.
	CacheTTL time.Duration

	// CacheScope isolates cached documents per user or session.
	CacheScope string
}

// DefaultRemoteSettings returns the settings used when nothing is configured.
func DefaultRemoteSettings() RemoteSettings {
	return RemoteSettings{
		Timeout:    30 * time.Second,
		CacheScope: "default",
	}
}
