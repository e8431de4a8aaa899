package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/argus/pkg/domain/model"
	"github.com/secmon-lab/argus/pkg/domain/types"
)

type userRepository struct {
	mu    sync.RWMutex
	users map[types.PrincipalID]*model.User
}

func newUserRepository() *userRepository {
	return &userRepository{
		users: make(map[types.PrincipalID]*model.User),
	}
}

func (r *userRepository) Put(ctx context.Context, user *model.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	copied := *user
	r.users[user.ID] = &copied
	return nil
}

func (r *userRepository) Get(ctx context.Context, id types.PrincipalID) (*model.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, exists := r.users[id]
	if !exists {
		return nil, goerr.Wrap(model.ErrNotFound, "user not found", goerr.V(model.PrincipalIDKey, id))
	}
	copied := *u
	return &copied, nil
}

func (r *userRepository) List(ctx context.Context) ([]*model.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]*model.User, 0, len(r.users))
	for _, u := range r.users {
		copied := *u
		result = append(result, &copied)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].ID < result[j].ID
	})
	return result, nil
}
