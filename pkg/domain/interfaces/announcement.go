package interfaces

import (
	"context"

	"github.com/secmon-lab/argus/pkg/domain/model"
	"github.com/secmon-lab/argus/pkg/domain/types"
)

// AnnouncementRepository stores operator announcements
type AnnouncementRepository interface {
	Create(ctx context.Context, a *model.Announcement) (*model.Announcement, error)
	Get(ctx context.Context, id types.AnnouncementID) (*model.Announcement, error)
	// List returns every announcement newest first
	List(ctx context.Context) ([]*model.Announcement, error)
	Update(ctx context.Context, a *model.Announcement) (*model.Announcement, error)
	Delete(ctx context.Context, id types.AnnouncementID) error

	// MarkRead adds the principal to the readers of the announcement. Marking
	// it again is not an error.
	MarkRead(ctx context.Context, id types.AnnouncementID, reader types.PrincipalID) (*model.Announcement, error)
}
