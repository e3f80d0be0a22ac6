package driving

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/custodia-labs/heisync/internal/core/domain"
)

// InstitutionManager looks up local institutions and creates them from the
// remote index on demand.
type InstitutionManager interface {
	// GetInstitution returns the institutions holding heiID. When none exist
	// and indexKey is set, the institution is created from that index item.
	GetInstitution(ctx context.Context, heiID, indexKey string) ([]domain.Institution, error)

	// CreateInstitution imports one institution from an index item.
	CreateInstitution(ctx context.Context, indexKey, heiID string) ([]domain.Institution, error)

	// CheckErrors runs the creation preconditions and returns the first failure.
	CheckErrors(ctx context.Context, indexKey, heiID string) error

	// PrepareData maps remote attributes to an entity payload for indexKey.
	PrepareData(attrs domain.Attributes, indexKey string) domain.EntityData

	// ListIndex returns the index items.
	ListIndex(ctx context.Context, refresh bool) ([]IndexEntry, error)

	// ListItems returns the institutions listed by an index item.
	ListItems(ctx context.Context, indexKey string) ([]domain.IDLabel, error)

	// Preview returns the expanded remote attributes of one institution.
	Preview(ctx context.Context, indexKey, heiID string) (domain.Attributes, error)

	// AvailableKeys returns the remote keys offered for mapping by an index item.
	AvailableKeys(ctx context.Context, indexKey string) ([]string, error)

	// ImportIndex looks up or creates every institution of an index item.
	ImportIndex(ctx context.Context, indexKey string) (*ImportResult, error)

	// ListLocal returns the locally stored institutions.
	ListLocal(ctx context.Context) ([]domain.Institution, error)
}

// IndexEntry is one item of the remote index.
type IndexEntry struct {
	// ID is the index key.
	ID string

	// Label is the display name.
	Label string

	// Endpoint is the URL of the item's institution list.
	Endpoint string
}

// ImportResult summarises an ImportIndex run.
type ImportResult struct {
	// IndexKey is the imported index item.
	IndexKey string

	// Created lists HEI IDs created by this run.
	Created []string

	// Existing lists HEI IDs that were already stored.
	Existing []string

	// Failed maps HEI IDs to the reason they could not be imported.
	Failed map[string]error
}

// Err joins the failures in HEI ID order, or returns nil.
func (r *ImportResult) Err() error {
	ids := make([]string, 0, len(r.Failed))
	for id := range r.Failed {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	errs := make([]error, 0, len(ids))
	for _, id := range ids {
		errs = append(errs, fmt.Errorf("%s: %w", id, r.Failed[id]))
	}
	return errors.Join(errs...)
}
