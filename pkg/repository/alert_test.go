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

func runAlertRepositoryTest(t *testing.T, newRepo func(t *testing.T) interfaces.Repository) {
	t.Helper()

	t.Run("Resolve is idempotent and keeps first resolution time", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()
		now := time.Now().UTC().Truncate(time.Millisecond)

		alert := &model.Alert{
			ID:            types.NewAlertID(),
			TransactionID: types.NewTransactionID(),
			Reason:        "Amount exceeds threshold",
			RiskScore:     90,
			CreatedAt:     now,
		}
		_, err := repo.Alert().Create(ctx, alert)
		gt.NoError(t, err).Required()

		first, err := repo.Alert().Resolve(ctx, alert.ID, now.Add(time.Minute))
		gt.NoError(t, err).Required()
		gt.Bool(t, first.Resolved).True()
		gt.Bool(t, first.ResolvedAt.Equal(now.Add(time.Minute))).True()

		second, err := repo.Alert().Resolve(ctx, alert.ID, now.Add(time.Hour))
		gt.NoError(t, err).Required()
		gt.Bool(t, second.ResolvedAt.Equal(now.Add(time.Minute))).True()

		stored, err := repo.Alert().Get(ctx, alert.ID)
		gt.NoError(t, err).Required()
		gt.Bool(t, stored.Resolved).True()
	})

	t.Run("Resolve returns NotFound for missing alert", func(t *testing.T) {
		repo := newRepo(t)
		_, err := repo.Alert().Resolve(context.Background(), types.NewAlertID(), time.Now())
		gt.Error(t, err).Is(model.ErrNotFound)
	})

	t.Run("List can exclude resolved alerts", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()
		now := time.Now().UTC()

		open := &model.Alert{ID: types.NewAlertID(), TransactionID: types.NewTransactionID(), CreatedAt: now}
		done := &model.Alert{ID: types.NewAlertID(), TransactionID: types.NewTransactionID(), CreatedAt: now.Add(time.Second)}
		for _, a := range []*model.Alert{open, done} {
			_, err := repo.Alert().Create(ctx, a)
			gt.NoError(t, err).Required()
		}
		_, err := repo.Alert().Resolve(ctx, done.ID, now)
		gt.NoError(t, err).Required()

		all, err := repo.Alert().List(ctx, false)
		gt.NoError(t, err).Required()
		gt.Array(t, all).Length(2)

		unresolved, err := repo.Alert().List(ctx, true)
		gt.NoError(t, err).Required()
		gt.Array(t, unresolved).Length(1)
		gt.Value(t, unresolved[0].ID).Equal(open.ID)
	})
}
