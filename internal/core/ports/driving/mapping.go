package driving

import "github.com/custodia-labs/heisync/internal/core/domain"

// FieldMappingService manages the remote endpoint and field mapping settings.
type FieldMappingService interface {
	// IndexEndpoint returns the configured index URL, or "".
	IndexEndpoint() string

	// SetIndexEndpoint stores the index URL. It must be an absolute http(s) URL.
	SetIndexEndpoint(endpoint string) error

	// FieldMap returns the remote to local mapping without empty targets.
	FieldMap() domain.FieldMap

	// SetFieldMap replaces the whole mapping.
	SetFieldMap(m domain.FieldMap) error

	// SetMapping maps one remote key to a local field.
	SetMapping(remote, local string) error

	// RemoveMapping drops the mapping of one remote key.
	RemoveMapping(remote string) error

	// Filters returns the include/exclude settings.
	Filters() domain.KeyFilterSettings

	// SetFilters replaces the include/exclude settings.
	SetFilters(f domain.KeyFilterSettings) error

	// LocalFields returns the local fields that accept a mapping.
	LocalFields() []string

	// RemoteKeys filters the available remote keys through the settings.
	RemoteKeys(available []string) []string

	// RemoteSettings returns fetch and cache settings, with defaults applied.
	RemoteSettings() domain.RemoteSettings

	// SetToken stores the bearer token sent to the remote. Empty clears it.
	SetToken(token string) error
}
