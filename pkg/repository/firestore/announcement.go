package firestore

import (
	"context"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/argus/pkg/domain/model"
	"github.com/secmon-lab/argus/pkg/domain/types"
	"google.golang.org/api/iterator"
)

type announcementRepository struct {
	client     *firestore.Client
	collection string
}

func (r *announcementRepository) doc(id types.AnnouncementID) *firestore.DocumentRef {
	return r.client.Collection(r.collection).Doc(id.String())
}

func (r *announcementRepository) Create(ctx context.Context, a *model.Announcement) (*model.Announcement, error) {
	if _, err := r.doc(a.ID).Create(ctx, a); err != nil {
		return nil, storeError(err, "failed to create announcement", goerr.V(model.AnnouncementKey, a.ID))
	}
	return a, nil
}

func (r *announcementRepository) Get(ctx context.Context, id types.AnnouncementID) (*model.Announcement, error) {
	snap, err := r.doc(id).Get(ctx)
	if err != nil {
		return nil, storeError(err, "failed to get announcement", goerr.V(model.AnnouncementKey, id))
	}
	return decodeAnnouncement(snap)
}

func decodeAnnouncement(snap *firestore.DocumentSnapshot) (*model.Announcement, error) {
	var a model.Announcement
	if err := snap.DataTo(&a); err != nil {
		return nil, goerr.Wrap(err, "failed to decode announcement", goerr.V("doc_id", snap.Ref.ID))
	}
	return &a, nil
}

func (r *announcementRepository) List(ctx context.Context) ([]*model.Announcement, error) {
	iter := r.client.Collection(r.collection).OrderBy("created_at", firestore.Desc).Documents(ctx)
	defer iter.Stop()

	var result []*model.Announcement
	for {
		snap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, storeError(err, "failed to iterate announcements")
		}

		a, err := decodeAnnouncement(snap)
		if err != nil {
			return nil, err
		}
		result = append(result, a)
	}
	return result, nil
}

func (r *announcementRepository) Update(ctx context.Context, a *model.Announcement) (*model.Announcement, error) {
	ref := r.doc(a.ID)

	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		snap, err := tx.Get(ref)
		if err != nil {
			return err
		}
		existing, err := decodeAnnouncement(snap)
		if err != nil {
			return err
		}
		// readers are only added through MarkRead
		a.ReadBy = existing.ReadBy
		return tx.Set(ref, a)
	})
	if err != nil {
		return nil, storeError(err, "failed to update announcement", goerr.V(model.AnnouncementKey, a.ID))
	}
	return a, nil
}

func (r *announcementRepository) Delete(ctx context.Context, id types.AnnouncementID) error {
	ref := r.doc(id)
	if _, err := ref.Get(ctx); err != nil {
		return storeError(err, "failed to get announcement", goerr.V(model.AnnouncementKey, id))
	}
	if _, err := ref.Delete(ctx); err != nil {
		return storeError(err, "failed to delete announcement", goerr.V(model.AnnouncementKey, id))
	}
	return nil
}

func (r *announcementRepository) MarkRead(ctx context.Context, id types.AnnouncementID, reader types.PrincipalID) (*model.Announcement, error) {
	ref := r.doc(id)
	if _, err := ref.Update(ctx, []firestore.Update{
		{Path: "read_by", Value: firestore.ArrayUnion(reader.String())},
	}); err != nil {
		return nil, storeError(err, "failed to mark announcement read", goerr.V(model.AnnouncementKey, id), goerr.V(model.PrincipalIDKey, reader))
	}
	return r.Get(ctx, id)
}
