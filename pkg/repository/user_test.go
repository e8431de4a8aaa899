package repository_test

import (
	"context"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/argus/pkg/domain/interfaces"
	"github.com/secmon-lab/argus/pkg/domain/model"
	"github.com/secmon-lab/argus/pkg/domain/types"
)

func runUserRepositoryTest(t *testing.T, newRepo func(t *testing.T) interfaces.Repository) {
	t.Helper()

	t.Run("Put overwrites and Get returns the latest entry", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		gt.NoError(t, repo.User().Put(ctx, &model.User{ID: "u1", Name: "Kim", Role: types.RoleCompliance})).Required()
		gt.NoError(t, repo.User().Put(ctx, &model.User{ID: "u1", Name: "Kim", Role: types.RoleInvestigator})).Required()
		gt.NoError(t, repo.User().Put(ctx, &model.User{ID: "u2", Name: "Lee", Role: types.RoleAuditor})).Required()

		u, err := repo.User().Get(ctx, "u1")
		gt.NoError(t, err).Required()
		gt.Value(t, u.Role).Equal(types.RoleInvestigator)

		users, err := repo.User().List(ctx)
		gt.NoError(t, err).Required()
		gt.Array(t, users).Length(2)
		gt.Value(t, users[0].ID).Equal(types.PrincipalID("u1"))
	})

	t.Run("Get returns NotFound for unknown principal", func(t *testing.T) {
		repo := newRepo(t)
		_, err := repo.User().Get(context.Background(), "ghost")
		gt.Error(t, err).Is(model.ErrNotFound)
	})
}
