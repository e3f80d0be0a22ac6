package domain

import "slices"

// FieldMap associates remote attribute names with local field names.
type FieldMap map[string]string

// Normalised returns a copy without entries whose target is empty.
func (m FieldMap) Normalised() FieldMap {
	out := make(FieldMap, len(m))
	for remote, local := range m {
		if local == "" {
			continue
		}
		out[remote] = local
	}
	return out
}

// KeyFilterSettings controls which remote keys are offered as mapping
// sources and which local fields accept a mapping.
type KeyFilterSettings struct {
	// ExcludedLocalFields are local fields hidden from mapping.
	ExcludedLocalFields []string

	// ExcludedRemoteKeys are remote keys hidden from mapping.
	ExcludedRemoteKeys []string

	// IncludedRemoteKeys are remote keys offered even if no record carries them.
	IncludedRemoteKeys []string
}

// LocalFieldAllowed reports whether a local field accepts a mapping.
func (s KeyFilterSettings) LocalFieldAllowed(field string) bool {
	return !slices.Contains(s.ExcludedLocalFields, field)
}

// RemoteKeyAllowed reports whether a remote key is offered.
func (s KeyFilterSettings) RemoteKeyAllowed(key string) bool {
	if slices.Contains(s.IncludedRemoteKeys, key) {
		return true
	}
	return !slices.Contains(s.ExcludedRemoteKeys, key)
}
