package interfaces

import (
	"context"

	"github.com/secmon-lab/argus/pkg/domain/model"
	"github.com/secmon-lab/argus/pkg/domain/types"
)

// CaseRepository defines the interface for Case data access
type CaseRepository interface {
	// Create stores a new case. The ID is assigned by the caller.
	Create(ctx context.Context, c *model.Case) (*model.Case, error)

	// Get retrieves a case by ID. Returns an error wrapping model.ErrNotFound
	// when the case does not exist.
	Get(ctx context.Context, id types.CaseID) (*model.Case, error)

	// List retrieves cases ordered by creation time, newest first
	List(ctx context.Context, opts ...ListCaseOption) ([]*model.Case, error)

	// Update replaces an existing case
	Update(ctx context.Context, c *model.Case) (*model.Case, error)

	// Delete deletes a case by ID
	Delete(ctx context.Context, id types.CaseID) error
}
