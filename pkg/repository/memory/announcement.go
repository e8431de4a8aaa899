package memory

import (
	"context"
	"slices"
	"sort"
	"sync"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/argus/pkg/domain/model"
	"github.com/secmon-lab/argus/pkg/domain/types"
)

type announcementRepository struct {
	mu            sync.RWMutex
	announcements map[types.AnnouncementID]*model.Announcement
}

func newAnnouncementRepository() *announcementRepository {
	return &announcementRepository{
		announcements: make(map[types.AnnouncementID]*model.Announcement),
	}
}

func copyAnnouncement(a *model.Announcement) *model.Announcement {
	copied := *a
	copied.TargetRoles = slices.Clone(a.TargetRoles)
	copied.ReadBy = slices.Clone(a.ReadBy)
	if a.ExpiresAt != nil {
		expiresAt := *a.ExpiresAt
		copied.ExpiresAt = &expiresAt
	}
	return &copied
}

func (r *announcementRepository) Create(ctx context.Context, a *model.Announcement) (*model.Announcement, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.announcements[a.ID]; exists {
		return nil, goerr.Wrap(model.ErrValidation, "announcement already exists", goerr.V(model.AnnouncementKey, a.ID))
	}

	r.announcements[a.ID] = copyAnnouncement(a)
	return copyAnnouncement(a), nil
}

func (r *announcementRepository) Get(ctx context.Context, id types.AnnouncementID) (*model.Announcement, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	a, exists := r.announcements[id]
	if !exists {
		return nil, goerr.Wrap(model.ErrNotFound, "announcement not found", goerr.V(model.AnnouncementKey, id))
	}
	return copyAnnouncement(a), nil
}

func (r *announcementRepository) List(ctx context.Context) ([]*model.Announcement, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]*model.Announcement, 0, len(r.announcements))
	for _, a := range r.announcements {
		result = append(result, copyAnnouncement(a))
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	return result, nil
}

func (r *announcementRepository) Update(ctx context.Context, a *model.Announcement) (*model.Announcement, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, exists := r.announcements[a.ID]
	if !exists {
		return nil, goerr.Wrap(model.ErrNotFound, "announcement not found", goerr.V(model.AnnouncementKey, a.ID))
	}

	// readers are only added through MarkRead
	stored := copyAnnouncement(a)
	stored.ReadBy = slices.Clone(existing.ReadBy)
	r.announcements[a.ID] = stored
	return copyAnnouncement(stored), nil
}

func (r *announcementRepository) Delete(ctx context.Context, id types.AnnouncementID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.announcements[id]; !exists {
		return goerr.Wrap(model.ErrNotFound, "announcement not found", goerr.V(model.AnnouncementKey, id))
	}
	delete(r.announcements, id)
	return nil
}

func (r *announcementRepository) MarkRead(ctx context.Context, id types.AnnouncementID, reader types.PrincipalID) (*model.Announcement, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	a, exists := r.announcements[id]
	if !exists {
		return nil, goerr.Wrap(model.ErrNotFound, "announcement not found", goerr.V(model.AnnouncementKey, id))
	}
	if !a.IsReadBy(reader) {
		a.ReadBy = append(a.ReadBy, reader)
	}
	return copyAnnouncement(a), nil
}
