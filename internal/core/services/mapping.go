package services

import (
	"fmt"
	"net/url"
	"slices"
	"sort"
	"time"

	"github.com/custodia-labs/heisync/internal/core/domain"
	"github.com/custodia-labs/heisync/internal/core/ports/driven"
	"github.com/custodia-labs/heisync/internal/core/ports/driving"
)

// Ensure MappingService implements the interface.
var _ driving.FieldMappingService = (*MappingService)(nil)

// Config keys for mapping and remote settings storage.
//
//nolint:gosec // G101: These are config key names, not actual credentials.
const (
	KeyIndexEndpoint = "index_endpoint"
	KeyFieldMapping  = "field_mapping"
	KeyFieldExclude  = "field_exclude"
	KeyRemoteExclude = "remote_exclude"
	KeyRemoteInclude = "remote_include"

	KeyRemoteToken     = "remote.token"
	KeyRemoteRateLimit = "remote.rate_limit"
	KeyRemoteTimeout   = "remote.timeout"
	KeyCacheTTL        = "cache.ttl"
	KeyCacheScope      = "cache.scope"
)

// MappingService manages the index endpoint, the field map and the key
// filters through the config store.
type MappingService struct {
	configStore driven.ConfigStore
}

// NewMappingService creates a new mapping service.
func NewMappingService(configStore driven.ConfigStore) *MappingService {
	return &MappingService{configStore: configStore}
}

// IndexEndpoint returns the configured index URL, or "".
func (s *MappingService) IndexEndpoint() string {
	return s.configStore.GetString(KeyIndexEndpoint)
}

// SetIndexEndpoint stores the index URL.
func (s *MappingService) SetIndexEndpoint(endpoint string) error {
	u, err := url.Parse(endpoint)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("%w: index endpoint must be an absolute http(s) URL: %q", domain.ErrInvalidInput, endpoint)
	}
	if err := s.configStore.Set(KeyIndexEndpoint, endpoint); err != nil {
		return fmt.Errorf("save index endpoint: %w", err)
	}
	return nil
}

// FieldMap returns the remote to local mapping without empty targets.
func (s *MappingService) FieldMap() domain.FieldMap {
	return domain.FieldMap(s.configStore.GetStringMap(KeyFieldMapping)).Normalised()
}

// SetFieldMap replaces the whole mapping. Every target must be an offered
// local field; empty targets are dropped.
func (s *MappingService) SetFieldMap(m domain.FieldMap) error {
	offered := s.LocalFields()
	normalised := m.Normalised()
	for remote, local := range normalised {
		if !slices.Contains(offered, local) {
			return fmt.Errorf("%w: %q cannot be mapped to %q", domain.ErrInvalidInput, remote, local)
		}
	}

	value := make(map[string]any, len(normalised))
	for remote, local := range normalised {
		value[remote] = local
	}
	if err := s.configStore.Set(KeyFieldMapping, value); err != nil {
		return fmt.Errorf("save field mapping: %w", err)
	}
	return nil
}

// SetMapping maps one remote key to a local field.
func (s *MappingService) SetMapping(remote, local string) error {
	if remote == "" {
		return fmt.Errorf("%w: remote key is required", domain.ErrInvalidInput)
	}
	m := s.FieldMap()
	m[remote] = local
	return s.SetFieldMap(m)
}

// RemoveMapping drops the mapping of one remote key.
func (s *MappingService) RemoveMapping(remote string) error {
	m := s.FieldMap()
	if _, ok := m[remote]; !ok {
		return fmt.Errorf("%w: no mapping for %q", domain.ErrNotFound, remote)
	}
	delete(m, remote)
	return s.SetFieldMap(m)
}

// Filters returns the include/exclude settings.
func (s *MappingService) Filters() domain.KeyFilterSettings {
	return domain.KeyFilterSettings{
		ExcludedLocalFields: s.configStore.GetStringSlice(KeyFieldExclude),
		ExcludedRemoteKeys:  s.configStore.GetStringSlice(KeyRemoteExclude),
		IncludedRemoteKeys:  s.configStore.GetStringSlice(KeyRemoteInclude),
	}
}

// SetFilters replaces the include/exclude settings.
func (s *MappingService) SetFilters(f domain.KeyFilterSettings) error {
	if err := s.configStore.Set(KeyFieldExclude, nonNil(f.ExcludedLocalFields)); err != nil {
		return fmt.Errorf("save field exclude: %w", err)
	}
	if err := s.configStore.Set(KeyRemoteExclude, nonNil(f.ExcludedRemoteKeys)); err != nil {
		return fmt.Errorf("save remote exclude: %w", err)
	}
	if err := s.configStore.Set(KeyRemoteInclude, nonNil(f.IncludedRemoteKeys)); err != nil {
		return fmt.Errorf("save remote include: %w", err)
	}
	return nil
}

// LocalFields returns the institution fields that accept a mapping.
func (s *MappingService) LocalFields() []string {
	filters := s.Filters()
	out := make([]string, 0, len(domain.InstitutionFields))
	for _, field := range domain.InstitutionFields {
		if filters.LocalFieldAllowed(field) {
			out = append(out, field)
		}
	}
	return out
}

// RemoteKeys returns available minus the excluded keys plus the included
// ones, sorted and without duplicates.
func (s *MappingService) RemoteKeys(available []string) []string {
	filters := s.Filters()
	seen := make(map[string]struct{})
	for _, key := range available {
		if filters.RemoteKeyAllowed(key) {
			seen[key] = struct{}{}
		}
	}
	for _, key := range filters.IncludedRemoteKeys {
		seen[key] = struct{}{}
	}
	out := make([]string, 0, len(seen))
	for key := range seen {
		out = append(out, key)
	}
	sort.Strings(out)
	return out
}

// RemoteSettings returns fetch and cache settings, falling back to defaults.
func (s *MappingService) RemoteSettings() domain.RemoteSettings {
	settings := domain.DefaultRemoteSettings()
	settings.Token = s.configStore.GetString(KeyRemoteToken)
	if v, ok := s.configStore.Get(KeyRemoteRateLimit); ok {
		switch n := v.(type) {
		case float64:
			settings.RateLimit = n
		case int64:
			settings.RateLimit = float64(n)
		case int:
			settings.RateLimit = float64(n)
		}
	}
	if d, err := time.ParseDuration(s.configStore.GetString(KeyRemoteTimeout)); err == nil && d > 0 {
		settings.Timeout = d
	}
	if d, err := time.ParseDuration(s.configStore.GetString(KeyCacheTTL)); err == nil && d >= 0 {
		settings.CacheTTL = d
	}
	if scope := s.configStore.GetString(KeyCacheScope); scope != "" {
		settings.CacheScope = scope
	}
	return settings
}

// SetToken stores the bearer token. An empty token clears it.
func (s *MappingService) SetToken(token string) error {
	if err := s.configStore.Set(KeyRemoteToken, token); err != nil {
		return fmt.Errorf("save token: %w", err)
	}
	return nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
