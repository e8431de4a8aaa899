package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/argus/pkg/domain/model"
	"github.com/secmon-lab/argus/pkg/domain/types"
)

type alertRepository struct {
	mu     sync.RWMutex
	alerts map[types.AlertID]*model.Alert
}

func newAlertRepository() *alertRepository {
	return &alertRepository{
		alerts: make(map[types.AlertID]*model.Alert),
	}
}

func copyAlert(a *model.Alert) *model.Alert {
	copied := *a
	if a.ResolvedAt != nil {
		resolvedAt := *a.ResolvedAt
		copied.ResolvedAt = &resolvedAt
	}
	return &copied
}

func (r *alertRepository) Create(ctx context.Context, alert *model.Alert) (*model.Alert, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.alerts[alert.ID]; exists {
		return nil, goerr.Wrap(model.ErrValidation, "alert already exists", goerr.V(model.AlertIDKey, alert.ID))
	}

	r.alerts[alert.ID] = copyAlert(alert)
	return copyAlert(alert), nil
}

func (r *alertRepository) Get(ctx context.Context, id types.AlertID) (*model.Alert, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	a, exists := r.alerts[id]
	if !exists {
		return nil, goerr.Wrap(model.ErrNotFound, "alert not found", goerr.V(model.AlertIDKey, id))
	}
	return copyAlert(a), nil
}

func (r *alertRepository) List(ctx context.Context, unresolvedOnly bool) ([]*model.Alert, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]*model.Alert, 0, len(r.alerts))
	for _, a := range r.alerts {
		if unresolvedOnly && a.Resolved {
			continue
		}
		result = append(result, copyAlert(a))
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	return result, nil
}

func (r *alertRepository) Resolve(ctx context.Context, id types.AlertID, at time.Time) (*model.Alert, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	a, exists := r.alerts[id]
	if !exists {
		return nil, goerr.Wrap(model.ErrNotFound, "alert not found", goerr.V(model.AlertIDKey, id))
	}

	if !a.Resolved {
		resolvedAt := at
		a.Resolved = true
		a.ResolvedAt = &resolvedAt
	}
	return copyAlert(a), nil
}
