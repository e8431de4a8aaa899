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

func newTestAnnouncement(title string, createdAt time.Time) *model.Announcement {
	return &model.Announcement{
		ID:          types.NewAnnouncementID(),
		Title:       title,
		Content:     "content",
		Kind:        model.AnnouncementGeneral,
		Priority:    model.AnnouncementMedium,
		TargetRoles: []types.Role{types.RoleInvestigator},
		Active:      true,
		ReadBy:      []types.PrincipalID{},
		CreatedAt:   createdAt,
		UpdatedAt:   createdAt,
	}
}

func runAnnouncementRepositoryTest(t *testing.T, newRepo func(t *testing.T) interfaces.Repository) {
	t.Helper()

	t.Run("List newest first", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()
		now := time.Now().UTC().Truncate(time.Millisecond)

		older := newTestAnnouncement("older", now)
		newer := newTestAnnouncement("newer", now.Add(time.Minute))
		for _, a := range []*model.Announcement{older, newer} {
			_, err := repo.Announcement().Create(ctx, a)
			gt.NoError(t, err).Required()
		}

		got, err := repo.Announcement().List(ctx)
		gt.NoError(t, err).Required()
		gt.Array(t, got).Length(2)
		gt.Value(t, got[0].ID).Equal(newer.ID)
		gt.Value(t, got[1].ID).Equal(older.ID)
	})

	t.Run("MarkRead is idempotent and survives Update", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		a := newTestAnnouncement("read me", time.Now().UTC())
		_, err := repo.Announcement().Create(ctx, a)
		gt.NoError(t, err).Required()

		for range 2 {
			read, err := repo.Announcement().MarkRead(ctx, a.ID, "ivan")
			gt.NoError(t, err).Required()
			gt.Array(t, read.ReadBy).Equal([]types.PrincipalID{"ivan"})
		}

		a.Title = "renamed"
		a.ReadBy = nil
		_, err = repo.Announcement().Update(ctx, a)
		gt.NoError(t, err).Required()

		got, err := repo.Announcement().Get(ctx, a.ID)
		gt.NoError(t, err).Required()
		gt.Value(t, got.Title).Equal("renamed")
		gt.Array(t, got.ReadBy).Equal([]types.PrincipalID{"ivan"})
	})

	t.Run("missing announcements are NotFound", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		_, err := repo.Announcement().Get(ctx, types.NewAnnouncementID())
		gt.Error(t, err).Is(model.ErrNotFound)
		_, err = repo.Announcement().MarkRead(ctx, types.NewAnnouncementID(), "ivan")
		gt.Error(t, err).Is(model.ErrNotFound)
		gt.Error(t, repo.Announcement().Delete(ctx, types.NewAnnouncementID())).Is(model.ErrNotFound)
	})
}
