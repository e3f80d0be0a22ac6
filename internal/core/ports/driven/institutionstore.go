package driven

import (
	"context"

	"github.com/custodia-labs/heisync/internal/core/domain"
)

// InstitutionStore persists institutions.
type InstitutionStore interface {
	// Save stores or updates an institution.
	// Returns domain.ErrAlreadyExists if another institution holds the same HEI ID.
	Save(ctx context.Context, inst *domain.Institution) error

	// Get retrieves an institution by local ID.
	// Returns domain.ErrNotFound if absent.
	Get(ctx context.Context, id string) (*domain.Institution, error)

	// LoadByProperties returns every institution whose properties all match.
	// An empty result is not an error.
	LoadByProperties(ctx context.Context, props map[string]string) ([]domain.Institution, error)

	// List returns all institutions ordered by label.
	List(ctx context.Context) ([]domain.Institution, error)

	// Delete removes an institution.
	Delete(ctx context.Context, id string) error
}
