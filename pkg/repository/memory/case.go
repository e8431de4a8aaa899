package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/argus/pkg/domain/interfaces"
	"github.com/secmon-lab/argus/pkg/domain/model"
	"github.com/secmon-lab/argus/pkg/domain/types"
)

type caseRepository struct {
	mu    sync.RWMutex
	cases map[types.CaseID]*model.Case
}

func newCaseRepository() *caseRepository {
	return &caseRepository{
		cases: make(map[types.CaseID]*model.Case),
	}
}

// copyCase creates a deep copy of a case
func copyCase(c *model.Case) *model.Case {
	copied := *c

	copied.Timeline = append([]model.TimelineEntry{}, c.Timeline...)
	copied.Comments = append([]model.Comment{}, c.Comments...)
	copied.Evidence = append([]model.Evidence{}, c.Evidence...)
	if c.ClosedAt != nil {
		closedAt := *c.ClosedAt
		copied.ClosedAt = &closedAt
	}

	return &copied
}

func (r *caseRepository) Create(ctx context.Context, c *model.Case) (*model.Case, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.cases[c.ID]; exists {
		return nil, goerr.Wrap(model.ErrValidation, "case already exists", goerr.V(model.CaseIDKey, c.ID))
	}

	r.cases[c.ID] = copyCase(c)
	return copyCase(c), nil
}

func (r *caseRepository) Get(ctx context.Context, id types.CaseID) (*model.Case, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c, exists := r.cases[id]
	if !exists {
		return nil, goerr.Wrap(model.ErrNotFound, "case not found", goerr.V(model.CaseIDKey, id))
	}

	return copyCase(c), nil
}

func (r *caseRepository) List(ctx context.Context, opts ...interfaces.ListCaseOption) ([]*model.Case, error) {
	cfg := interfaces.BuildListCaseConfig(opts...)

	r.mu.RLock()
	defer r.mu.RUnlock()

	cases := make([]*model.Case, 0, len(r.cases))
	for _, c := range r.cases {
		if !cfg.Match(c.Status, c.AssignedTo) {
			continue
		}
		cases = append(cases, copyCase(c))
	}

	sort.Slice(cases, func(i, j int) bool {
		if cases[i].CreatedAt.Equal(cases[j].CreatedAt) {
			return cases[i].ID > cases[j].ID
		}
		return cases[i].CreatedAt.After(cases[j].CreatedAt)
	})

	return cases, nil
}

func (r *caseRepository) Update(ctx context.Context, c *model.Case) (*model.Case, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, exists := r.cases[c.ID]
	if !exists {
		return nil, goerr.Wrap(model.ErrNotFound, "case not found", goerr.V(model.CaseIDKey, c.ID))
	}

	updated := copyCase(c)
	updated.CreatedAt = existing.CreatedAt

	r.cases[updated.ID] = updated
	return copyCase(updated), nil
}

func (r *caseRepository) Delete(ctx context.Context, id types.CaseID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.cases[id]; !exists {
		return goerr.Wrap(model.ErrNotFound, "case not found", goerr.V(model.CaseIDKey, id))
	}

	delete(r.cases, id)
	return nil
}
