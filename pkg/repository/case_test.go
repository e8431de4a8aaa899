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

func newRepoTestCase(createdAt time.Time) *model.Case {
	return &model.Case{
		ID:            types.NewCaseID(),
		TransactionID: types.NewTransactionID(),
		CreatedBy:     "cmp-1",
		Title:         "Suspicious wire",
		Description:   "Large transfer to a new payee",
		RiskScore:     90,
		RiskReason:    "Amount exceeds threshold",
		Priority:      types.PriorityHigh,
		Status:        types.CaseStatusOpen,
		Timeline: []model.TimelineEntry{
			{Timestamp: createdAt, Action: model.ActionCreatedFromTransaction, Actor: "cmp-1", ActorRole: types.RoleCompliance},
		},
		CreatedAt: createdAt,
		UpdatedAt: createdAt,
	}
}

func runCaseRepositoryTest(t *testing.T, newRepo func(t *testing.T) interfaces.Repository) {
	t.Helper()

	t.Run("Create and Get round trip", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()
		now := time.Now().UTC().Truncate(time.Millisecond)

		c := newRepoTestCase(now)
		_, err := repo.Case().Create(ctx, c)
		gt.NoError(t, err).Required()

		got, err := repo.Case().Get(ctx, c.ID)
		gt.NoError(t, err).Required()
		gt.Value(t, got.ID).Equal(c.ID)
		gt.Value(t, got.TransactionID).Equal(c.TransactionID)
		gt.Value(t, got.Title).Equal(c.Title)
		gt.Value(t, got.RiskScore).Equal(90)
		gt.Value(t, got.Status).Equal(types.CaseStatusOpen)
		gt.Array(t, got.Timeline).Length(1)
		gt.Value(t, got.Timeline[0].Action).Equal(model.ActionCreatedFromTransaction)
		gt.Bool(t, got.CreatedAt.Equal(now)).True()
		gt.Value(t, got.ClosedAt == nil).Equal(true)
	})

	t.Run("Create rejects duplicate ID", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		c := newRepoTestCase(time.Now().UTC())
		_, err := repo.Case().Create(ctx, c)
		gt.NoError(t, err).Required()

		_, err = repo.Case().Create(ctx, c)
		gt.Error(t, err)
	})

	t.Run("Get returns NotFound for missing case", func(t *testing.T) {
		repo := newRepo(t)
		_, err := repo.Case().Get(context.Background(), types.NewCaseID())
		gt.Error(t, err).Is(model.ErrNotFound)
	})

	t.Run("returned case is isolated from the store", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		c := newRepoTestCase(time.Now().UTC())
		_, err := repo.Case().Create(ctx, c)
		gt.NoError(t, err).Required()

		got, err := repo.Case().Get(ctx, c.ID)
		gt.NoError(t, err).Required()
		got.Timeline = append(got.Timeline, model.TimelineEntry{Action: "tampered"})
		got.Title = "tampered"

		again, err := repo.Case().Get(ctx, c.ID)
		gt.NoError(t, err).Required()
		gt.Array(t, again.Timeline).Length(1)
		gt.Value(t, again.Title).Equal("Suspicious wire")
	})

	t.Run("Update persists mutation and keeps CreatedAt", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()
		created := time.Now().UTC().Truncate(time.Millisecond)

		c := newRepoTestCase(created)
		_, err := repo.Case().Create(ctx, c)
		gt.NoError(t, err).Required()

		closedAt := created.Add(time.Hour)
		c.Status = types.CaseStatusClosed
		c.ClosedAt = &closedAt
		c.ClosedBy = "cmp-1"
		c.Resolution = "fraud confirmed"
		c.CreatedAt = created.Add(time.Minute)
		_, err = repo.Case().Update(ctx, c)
		gt.NoError(t, err).Required()

		got, err := repo.Case().Get(ctx, c.ID)
		gt.NoError(t, err).Required()
		gt.Value(t, got.Status).Equal(types.CaseStatusClosed)
		gt.Value(t, got.ClosedAt).NotNil()
		gt.Bool(t, got.ClosedAt.Equal(closedAt)).True()
		gt.Value(t, got.Resolution).Equal("fraud confirmed")
		gt.Bool(t, got.CreatedAt.Equal(created)).True()
	})

	t.Run("Update returns NotFound for missing case", func(t *testing.T) {
		repo := newRepo(t)
		_, err := repo.Case().Update(context.Background(), newRepoTestCase(time.Now().UTC()))
		gt.Error(t, err).Is(model.ErrNotFound)
	})

	t.Run("List filters and orders newest first", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()
		base := time.Now().UTC().Truncate(time.Millisecond)

		older := newRepoTestCase(base)
		newer := newRepoTestCase(base.Add(time.Minute))
		newer.Status = types.CaseStatusAssigned
		newer.AssignedTo = "inv-1"

		for _, c := range []*model.Case{older, newer} {
			_, err := repo.Case().Create(ctx, c)
			gt.NoError(t, err).Required()
		}

		all, err := repo.Case().List(ctx)
		gt.NoError(t, err).Required()
		gt.Array(t, all).Length(2)
		gt.Value(t, all[0].ID).Equal(newer.ID)
		gt.Value(t, all[1].ID).Equal(older.ID)

		assigned, err := repo.Case().List(ctx, interfaces.WithAssignee("inv-1"))
		gt.NoError(t, err).Required()
		gt.Array(t, assigned).Length(1)
		gt.Value(t, assigned[0].ID).Equal(newer.ID)

		open, err := repo.Case().List(ctx, interfaces.WithStatus(types.CaseStatusOpen))
		gt.NoError(t, err).Required()
		gt.Array(t, open).Length(1)
		gt.Value(t, open[0].ID).Equal(older.ID)
	})

	t.Run("Delete removes case", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		c := newRepoTestCase(time.Now().UTC())
		_, err := repo.Case().Create(ctx, c)
		gt.NoError(t, err).Required()

		gt.NoError(t, repo.Case().Delete(ctx, c.ID)).Required()
		_, err = repo.Case().Get(ctx, c.ID)
		gt.Error(t, err).Is(model.ErrNotFound)

		gt.Error(t, repo.Case().Delete(ctx, c.ID)).Is(model.ErrNotFound)
	})
}
