package repository_test

import (
	"context"
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/argus/pkg/domain/interfaces"
	"github.com/secmon-lab/argus/pkg/domain/model"
	"github.com/secmon-lab/argus/pkg/domain/types"
)

func runRuleRepositoryTest(t *testing.T, newRepo func(t *testing.T) interfaces.Repository) {
	t.Helper()

	t.Run("Create, Get and List oldest first", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()
		now := time.Now().UTC().Truncate(time.Millisecond)

		second := &model.Rule{ID: types.NewRuleID(), Name: "second", Condition: "amount > 1", Score: 10, Enabled: true, CreatedAt: now.Add(time.Second)}
		first := &model.Rule{ID: types.NewRuleID(), Name: "first", Condition: "country in [NG]", Score: 80, CreatedAt: now}
		for _, r := range []*model.Rule{second, first} {
			_, err := repo.Rule().Create(ctx, r)
			gt.NoError(t, err).Required()
		}

		got, err := repo.Rule().Get(ctx, first.ID)
		gt.NoError(t, err).Required()
		gt.Value(t, got.Name).Equal("first")
		gt.Value(t, got.Condition).Equal("country in [NG]")
		gt.Value(t, got.Score).Equal(80)
		gt.Bool(t, got.Enabled).False()

		rules, err := repo.Rule().List(ctx)
		gt.NoError(t, err).Required()
		gt.Array(t, rules).Length(2)
		gt.Value(t, rules[0].ID).Equal(first.ID)
		gt.Value(t, rules[1].ID).Equal(second.ID)
	})

	t.Run("Update and Delete", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		rule := &model.Rule{ID: types.NewRuleID(), Name: "r", Condition: "amount > 1", Score: 10, CreatedAt: time.Now().UTC()}
		_, err := repo.Rule().Create(ctx, rule)
		gt.NoError(t, err).Required()

		rule.Score = 55
		rule.Enabled = true
		_, err = repo.Rule().Update(ctx, rule)
		gt.NoError(t, err).Required()

		got, err := repo.Rule().Get(ctx, rule.ID)
		gt.NoError(t, err).Required()
		gt.Value(t, got.Score).Equal(55)
		gt.Bool(t, got.Enabled).True()

		gt.NoError(t, repo.Rule().Delete(ctx, rule.ID)).Required()
		_, err = repo.Rule().Get(ctx, rule.ID)
		gt.Error(t, err).Is(model.ErrNotFound)
	})

	t.Run("missing rules are NotFound", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		_, err := repo.Rule().Get(ctx, types.NewRuleID())
		gt.Error(t, err).Is(model.ErrNotFound)
		_, err = repo.Rule().Update(ctx, &model.Rule{ID: types.NewRuleID(), Name: "ghost", Condition: "amount > 1"})
		gt.Error(t, err).Is(model.ErrNotFound)
		gt.Error(t, repo.Rule().Delete(ctx, types.NewRuleID())).Is(model.ErrNotFound)
	})
}
