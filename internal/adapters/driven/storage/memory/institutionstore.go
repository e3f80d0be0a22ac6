package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/custodia-labs/heisync/internal/core/domain"
	"github.com/custodia-labs/heisync/internal/core/ports/driven"
)

// Ensure InstitutionStore implements the interface.
var _ driven.InstitutionStore = (*InstitutionStore)(nil)

// InstitutionStore is an in-memory implementation of driven.InstitutionStore.
type InstitutionStore struct {
	mu           sync.RWMutex
	institutions map[string]domain.Institution
}

// NewInstitutionStore creates a new in-memory institution store.
func NewInstitutionStore() *InstitutionStore {
	return &InstitutionStore{
		institutions: make(map[string]domain.Institution),
	}
}

// Save stores or updates an institution. The HEI ID must be unique.
func (s *InstitutionStore) Save(_ context.Context, inst *domain.Institution) error {
	if inst == nil || inst.ID == "" {
		return fmt.Errorf("%w: institution id is required", domain.ErrInvalidInput)
	}
	if inst.HEIID == "" {
		return fmt.Errorf("%w: hei_id is required", domain.ErrInvalidInput)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for id, other := range s.institutions {
		if id != inst.ID && other.HEIID == inst.HEIID {
			return fmt.Errorf("%w: institution with hei_id %q", domain.ErrAlreadyExists, inst.HEIID)
		}
	}

	now := time.Now().UTC()
	if existing, ok := s.institutions[inst.ID]; ok {
		inst.CreatedAt = existing.CreatedAt
	} else if inst.CreatedAt.IsZero() {
		inst.CreatedAt = now
	}
	inst.UpdatedAt = now
	s.institutions[inst.ID] = *inst
	return nil
}

// Get retrieves an institution by local ID.
func (s *InstitutionStore) Get(_ context.Context, id string) (*domain.Institution, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	inst, ok := s.institutions[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &inst, nil
}

// LoadByProperties returns every institution whose properties all match.
func (s *InstitutionStore) LoadByProperties(
	_ context.Context, props map[string]string,
) ([]domain.Institution, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var result []domain.Institution
	for id := range s.institutions {
		inst := s.institutions[id]
		if inst.Matches(props) {
			result = append(result, inst)
		}
	}
	sortByLabel(result)
	return result, nil
}

// List returns all institutions ordered by label.
func (s *InstitutionStore) List(_ context.Context) ([]domain.Institution, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result := make([]domain.Institution, 0, len(s.institutions))
	for id := range s.institutions {
		result = append(result, s.institutions[id])
	}
	sortByLabel(result)
	return result, nil
}

// Delete removes an institution.
func (s *InstitutionStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.institutions, id)
	return nil
}

func sortByLabel(insts []domain.Institution) {
	sort.Slice(insts, func(i, j int) bool {
		li, lj := strings.ToLower(insts[i].Label), strings.ToLower(insts[j].Label)
		if li != lj {
			return li < lj
		}
		return insts[i].ID < insts[j].ID
	})
}
