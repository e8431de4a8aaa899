package usecase

import (
	"context"
	"slices"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/samber/lo"
	"github.com/secmon-lab/argus/pkg/domain/model"
	"github.com/secmon-lab/argus/pkg/domain/policy"
	"github.com/secmon-lab/argus/pkg/domain/types"
)

// AnnouncementUseCase publishes operator announcements to the principals of
// the targeted roles.
type AnnouncementUseCase struct {
	*env
}

// AnnouncementInput carries the fields of a new or replaced announcement.
// Kind defaults to general, Priority to medium and a nil Active to true.
type AnnouncementInput struct {
	Title       string
	Content     string
	Kind        model.AnnouncementKind
	Priority    model.AnnouncementPriority
	TargetRoles []types.Role
	ExpiresAt   *time.Time
	Active      *bool
}

func (in AnnouncementInput) apply(a *model.Announcement) error {
	a.Title = in.Title
	a.Content = in.Content
	a.Kind = lo.CoalesceOrEmpty(in.Kind, model.AnnouncementGeneral)
	a.Priority = lo.CoalesceOrEmpty(in.Priority, model.AnnouncementMedium)
	a.TargetRoles = lo.Uniq(in.TargetRoles)
	a.ExpiresAt = in.ExpiresAt
	a.Active = in.Active == nil || *in.Active
	return a.Validate()
}

// announcementTarget reaches the rooms of the targeted roles and the admin
// room. An announcement for every role goes to the general room.
func announcementTarget(a *model.Announcement) policy.Target {
	if len(a.TargetRoles) == 0 {
		return policy.ToRoom(policy.RoomGeneral)
	}

	rooms := []policy.Room{policy.RoomAdmin}
	for _, role := range a.TargetRoles {
		if room := policy.RoleRoom(role); room != "" && !slices.Contains(rooms, room) {
			rooms = append(rooms, room)
		}
	}
	return policy.ToRooms(rooms...)
}

func (uc *AnnouncementUseCase) authorize(actor model.Actor, op policy.Operation) error {
	if err := actor.Validate(); err != nil {
		return err
	}
	return policy.Require(actor.Role, op)
}

func (uc *AnnouncementUseCase) get(ctx context.Context, id types.AnnouncementID) (*model.Announcement, error) {
	var a *model.Announcement
	if err := uc.store(ctx, "failed to get announcement", func(ctx context.Context) (err error) {
		a, err = uc.repo.Announcement().Get(ctx, id)
		return err
	}, goerr.V(model.AnnouncementKey, id)); err != nil {
		return nil, err
	}
	return a, nil
}

func (uc *AnnouncementUseCase) lock(ctx context.Context, id types.AnnouncementID) (func(), error) {
	unlock, err := uc.locks.Lock(ctx, "announcement:"+id.String())
	if err != nil {
		return nil, goerr.Wrap(model.ErrStoreUnavailable, "timed out waiting for announcement",
			goerr.V(model.AnnouncementKey, id),
			goerr.V("cause", err.Error()))
	}
	return unlock, nil
}

// Create stores an announcement and pushes it together with a system
// message to the targeted rooms.
func (uc *AnnouncementUseCase) Create(ctx context.Context, actor model.Actor, in AnnouncementInput) (*model.Announcement, error) {
	if err := uc.authorize(actor, policy.OpManageAnnouncement); err != nil {
		return nil, err
	}

	now := uc.now()
	a := &model.Announcement{
		ID:        types.NewAnnouncementID(),
		ReadBy:    []types.PrincipalID{},
		CreatedBy: actor.ID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := in.apply(a); err != nil {
		return nil, err
	}

	var created *model.Announcement
	if err := uc.store(ctx, "failed to create announcement", func(ctx context.Context) (err error) {
		created, err = uc.repo.Announcement().Create(ctx, a)
		return err
	}, goerr.V(model.AnnouncementKey, a.ID)); err != nil {
		return nil, err
	}

	target := announcementTarget(created)
	uc.publish(ctx, model.NewAnnouncementEvent(model.EventNewAnnouncement, created, actor.ID), target)
	uc.publish(ctx, model.NewSystemMessageEvent("New announcement: "+created.Title, actor.ID), target)
	uc.audit(ctx, actor, model.AuditActionAnnouncementCreated, model.AuditTargetAnnouncement, created.ID.String(), created.Title)
	return created, nil
}

// Update replaces the fields of an announcement. Readers are kept.
func (uc *AnnouncementUseCase) Update(ctx context.Context, actor model.Actor, id types.AnnouncementID, in AnnouncementInput) (*model.Announcement, error) {
	if err := uc.authorize(actor, policy.OpManageAnnouncement); err != nil {
		return nil, err
	}

	unlock, err := uc.lock(ctx, id)
	if err != nil {
		return nil, err
	}
	defer unlock()

	a, err := uc.get(ctx, id)
	if err != nil {
		return nil, err
	}
	before := announcementTarget(a)

	if err := in.apply(a); err != nil {
		return nil, err
	}
	a.UpdatedAt = uc.now()

	var saved *model.Announcement
	if err := uc.store(ctx, "failed to update announcement", func(ctx context.Context) (err error) {
		saved, err = uc.repo.Announcement().Update(ctx, a)
		return err
	}, goerr.V(model.AnnouncementKey, id)); err != nil {
		return nil, err
	}

	// principals dropped from the targets learn about the change too
	target := announcementTarget(saved)
	target.Rooms = lo.Uniq(append(slices.Clone(before.Rooms), target.Rooms...))
	uc.publish(ctx, model.NewAnnouncementEvent(model.EventAnnouncementUpdated, saved, actor.ID), target)
	uc.audit(ctx, actor, model.AuditActionAnnouncementUpdated, model.AuditTargetAnnouncement, saved.ID.String(), saved.Title)
	return saved, nil
}

// Delete removes an announcement
func (uc *AnnouncementUseCase) Delete(ctx context.Context, actor model.Actor, id types.AnnouncementID) error {
	if err := uc.authorize(actor, policy.OpManageAnnouncement); err != nil {
		return err
	}

	unlock, err := uc.lock(ctx, id)
	if err != nil {
		return err
	}
	defer unlock()

	a, err := uc.get(ctx, id)
	if err != nil {
		return err
	}

	if err := uc.store(ctx, "failed to delete announcement", func(ctx context.Context) error {
		return uc.repo.Announcement().Delete(ctx, id)
	}, goerr.V(model.AnnouncementKey, id)); err != nil {
		return err
	}

	uc.publish(ctx, model.NewAnnouncementDeletedEvent(id, actor.ID), announcementTarget(a))
	uc.audit(ctx, actor, model.AuditActionAnnouncementDeleted, model.AuditTargetAnnouncement, id.String(), a.Title)
	return nil
}

// ListAll returns every announcement, including inactive and expired ones
func (uc *AnnouncementUseCase) ListAll(ctx context.Context, actor model.Actor) ([]*model.Announcement, error) {
	if err := uc.authorize(actor, policy.OpManageAnnouncement); err != nil {
		return nil, err
	}

	var all []*model.Announcement
	if err := uc.store(ctx, "failed to list announcements", func(ctx context.Context) (err error) {
		all, err = uc.repo.Announcement().List(ctx)
		return err
	}); err != nil {
		return nil, err
	}
	return all, nil
}

// ListForActor returns the active, unexpired announcements addressed to the
// role of the actor, newest first, and marks them read by the actor.
func (uc *AnnouncementUseCase) ListForActor(ctx context.Context, actor model.Actor) ([]*model.Announcement, error) {
	if err := uc.authorize(actor, policy.OpReadAnnouncements); err != nil {
		return nil, err
	}

	var all []*model.Announcement
	if err := uc.store(ctx, "failed to list announcements", func(ctx context.Context) (err error) {
		all, err = uc.repo.Announcement().List(ctx)
		return err
	}); err != nil {
		return nil, err
	}

	now := uc.now()
	visible := lo.Filter(all, func(a *model.Announcement, _ int) bool {
		return a.VisibleTo(actor.Role, now)
	})

	for i, a := range visible {
		if a.IsReadBy(actor.ID) {
			continue
		}
		read, err := uc.markRead(ctx, a.ID, actor.ID)
		if err != nil {
			return nil, err
		}
		visible[i] = read
	}
	return visible, nil
}

// MarkRead records that the actor has read an announcement visible to it
func (uc *AnnouncementUseCase) MarkRead(ctx context.Context, actor model.Actor, id types.AnnouncementID) (*model.Announcement, error) {
	if err := uc.authorize(actor, policy.OpReadAnnouncements); err != nil {
		return nil, err
	}

	a, err := uc.get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !a.VisibleTo(actor.Role, uc.now()) {
		return nil, goerr.Wrap(model.ErrNotFound, "announcement not found",
			goerr.V(model.AnnouncementKey, id),
			goerr.V(model.RoleKey, actor.Role))
	}

	return uc.markRead(ctx, id, actor.ID)
}

func (uc *AnnouncementUseCase) markRead(ctx context.Context, id types.AnnouncementID, reader types.PrincipalID) (*model.Announcement, error) {
	var a *model.Announcement
	if err := uc.store(ctx, "failed to mark announcement read", func(ctx context.Context) (err error) {
		a, err = uc.repo.Announcement().MarkRead(ctx, id, reader)
		return err
	}, goerr.V(model.AnnouncementKey, id), goerr.V(model.PrincipalIDKey, reader)); err != nil {
		return nil, err
	}
	return a, nil
}
