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

func runTransactionRepositoryTest(t *testing.T, newRepo func(t *testing.T) interfaces.Repository) {
	t.Helper()

	t.Run("Create, Get, List and Delete", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()
		base := time.Now().UTC().Truncate(time.Millisecond)

		first := &model.Transaction{ID: types.NewTransactionID(), AccountID: "acc-1", Amount: 120, Currency: "USD", Country: "US", CreatedAt: base}
		second := &model.Transaction{ID: types.NewTransactionID(), AccountID: "acc-2", Amount: 25000, Currency: "EUR", Country: "DE", RiskScore: 90, Flagged: true, CreatedAt: base.Add(time.Second)}

		for _, txn := range []*model.Transaction{first, second} {
			_, err := repo.Transaction().Create(ctx, txn)
			gt.NoError(t, err).Required()
		}

		got, err := repo.Transaction().Get(ctx, second.ID)
		gt.NoError(t, err).Required()
		gt.Value(t, got.Amount).Equal(25000.0)
		gt.Bool(t, got.Flagged).True()

		list, err := repo.Transaction().List(ctx, 0)
		gt.NoError(t, err).Required()
		gt.Array(t, list).Length(2)
		gt.Value(t, list[0].ID).Equal(second.ID)

		limited, err := repo.Transaction().List(ctx, 1)
		gt.NoError(t, err).Required()
		gt.Array(t, limited).Length(1)

		gt.NoError(t, repo.Transaction().Delete(ctx, first.ID)).Required()
		_, err = repo.Transaction().Get(ctx, first.ID)
		gt.Error(t, err).Is(model.ErrNotFound)
		gt.Error(t, repo.Transaction().Delete(ctx, first.ID)).Is(model.ErrNotFound)
	})
}
