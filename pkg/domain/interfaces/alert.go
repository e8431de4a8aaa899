package interfaces

import (
	"context"
	"time"

	"github.com/secmon-lab/argus/pkg/domain/model"
	"github.com/secmon-lab/argus/pkg/domain/types"
)

// AlertRepository defines the interface for Alert data access
type AlertRepository interface {
	Create(ctx context.Context, alert *model.Alert) (*model.Alert, error)
	Get(ctx context.Context, id types.AlertID) (*model.Alert, error)
	// List returns alerts newest first, optionally only the unresolved ones
	List(ctx context.Context, unresolvedOnly bool) ([]*model.Alert, error)

	// Resolve marks the alert resolved at the given time. Resolving an
	// already resolved alert keeps its first resolution time.
	Resolve(ctx context.Context, id types.AlertID, at time.Time) (*model.Alert, error)
}
