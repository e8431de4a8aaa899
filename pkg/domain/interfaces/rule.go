package interfaces

import (
	"context"

	"github.com/secmon-lab/argus/pkg/domain/model"
	"github.com/secmon-lab/argus/pkg/domain/types"
)

// RuleRepository stores the scoring rules
type RuleRepository interface {
	Create(ctx context.Context, rule *model.Rule) (*model.Rule, error)
	Get(ctx context.Context, id types.RuleID) (*model.Rule, error)
	// List returns every rule ordered by creation time
	List(ctx context.Context) ([]*model.Rule, error)
	Update(ctx context.Context, rule *model.Rule) (*model.Rule, error)
	Delete(ctx context.Context, id types.RuleID) error
}
