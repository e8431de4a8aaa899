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

func runAuditLogRepositoryTest(t *testing.T, newRepo func(t *testing.T) interfaces.Repository) {
	t.Helper()

	t.Run("List filters newest first", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()
		base := time.Now().UTC().Truncate(time.Millisecond)

		entries := []*model.AuditLog{
			{ActorID: "alice", ActorRole: types.RoleAdmin, Action: model.AuditActionRuleCreated, TargetType: model.AuditTargetRule},
			{ActorID: "carol", ActorRole: types.RoleCompliance, Action: model.ActionCreatedFromAlert, TargetType: model.AuditTargetCase},
			{ActorID: "alice", ActorRole: types.RoleAdmin, Action: model.AuditActionCasePurged, TargetType: model.AuditTargetCase},
			{ActorID: "alice", ActorRole: types.RoleAdmin, Action: model.AuditActionRuleCreated, TargetType: model.AuditTargetRule},
		}
		for i, e := range entries {
			e.ID = types.NewAuditLogID()
			e.CreatedAt = base.Add(time.Duration(i) * time.Second)
			gt.NoError(t, repo.AuditLog().Create(ctx, e)).Required()
		}

		all, err := repo.AuditLog().List(ctx)
		gt.NoError(t, err).Required()
		gt.Array(t, all).Length(4)
		gt.Value(t, all[0].ID).Equal(entries[3].ID)
		gt.Value(t, all[3].ID).Equal(entries[0].ID)

		byActor, err := repo.AuditLog().List(ctx, interfaces.WithLogActor("alice"))
		gt.NoError(t, err).Required()
		gt.Array(t, byActor).Length(3)

		byBoth, err := repo.AuditLog().List(ctx,
			interfaces.WithLogActor("alice"),
			interfaces.WithLogAction(model.AuditActionRuleCreated),
			interfaces.WithLogLimit(1),
		)
		gt.NoError(t, err).Required()
		gt.Array(t, byBoth).Length(1)
		gt.Value(t, byBoth[0].ID).Equal(entries[3].ID)

		window, err := repo.AuditLog().List(ctx,
			interfaces.WithLogSince(entries[1].CreatedAt),
			interfaces.WithLogUntil(entries[3].CreatedAt),
		)
		gt.NoError(t, err).Required()
		gt.Array(t, window).Length(2)
		gt.Value(t, window[0].ID).Equal(entries[2].ID)
		gt.Value(t, window[1].ID).Equal(entries[1].ID)

		limited, err := repo.AuditLog().List(ctx, interfaces.WithLogLimit(2))
		gt.NoError(t, err).Required()
		gt.Array(t, limited).Length(2)
		gt.Value(t, limited[0].ID).Equal(entries[3].ID)
	})
}
