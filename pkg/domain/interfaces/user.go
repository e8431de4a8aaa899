package interfaces

import (
	"context"

	"github.com/secmon-lab/argus/pkg/domain/model"
	"github.com/secmon-lab/argus/pkg/domain/types"
)

// UserRepository is the principal directory used to resolve assignees
type UserRepository interface {
	Put(ctx context.Context, user *model.User) error
	Get(ctx context.Context, id types.PrincipalID) (*model.User, error)
	List(ctx context.Context) ([]*model.User, error)
}
