package firestore

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/argus/pkg/domain/model"
	"github.com/secmon-lab/argus/pkg/domain/types"
	"google.golang.org/api/iterator"
)

type alertRepository struct {
	client     *firestore.Client
	collection string
}

func (r *alertRepository) doc(id types.AlertID) *firestore.DocumentRef {
	return r.client.Collection(r.collection).Doc(id.String())
}

func (r *alertRepository) Create(ctx context.Context, alert *model.Alert) (*model.Alert, error) {
	if _, err := r.doc(alert.ID).Create(ctx, alert); err != nil {
		return nil, storeError(err, "failed to create alert", goerr.V(model.AlertIDKey, alert.ID))
	}
	return alert, nil
}

func (r *alertRepository) Get(ctx context.Context, id types.AlertID) (*model.Alert, error) {
	snap, err := r.doc(id).Get(ctx)
	if err != nil {
		return nil, storeError(err, "failed to get alert", goerr.V(model.AlertIDKey, id))
	}

	var a model.Alert
	if err := snap.DataTo(&a); err != nil {
		return nil, goerr.Wrap(err, "failed to decode alert", goerr.V(model.AlertIDKey, id))
	}
	return &a, nil
}

func (r *alertRepository) List(ctx context.Context, unresolvedOnly bool) ([]*model.Alert, error) {
	q := r.client.Collection(r.collection).Query
	if unresolvedOnly {
		q = q.Where("resolved", "==", false)
	}
	iter := q.OrderBy("created_at", firestore.Desc).Documents(ctx)
	defer iter.Stop()

	var result []*model.Alert
	for {
		snap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, storeError(err, "failed to iterate alerts")
		}

		var a model.Alert
		if err := snap.DataTo(&a); err != nil {
			return nil, goerr.Wrap(err, "failed to decode alert", goerr.V("doc_id", snap.Ref.ID))
		}
		result = append(result, &a)
	}
	return result, nil
}

func (r *alertRepository) Resolve(ctx context.Context, id types.AlertID, at time.Time) (*model.Alert, error) {
	ref := r.doc(id)
	var resolved model.Alert

	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		snap, err := tx.Get(ref)
		if err != nil {
			return err
		}
		if err := snap.DataTo(&resolved); err != nil {
			return goerr.Wrap(err, "failed to decode alert")
		}
		if resolved.Resolved {
			return nil
		}

		resolvedAt := at
		resolved.Resolved = true
		resolved.ResolvedAt = &resolvedAt
		return tx.Update(ref, []firestore.Update{
			{Path: "resolved", Value: true},
			{Path: "resolved_at", Value: resolvedAt},
		})
	})
	if err != nil {
		return nil, storeError(err, "failed to resolve alert", goerr.V(model.AlertIDKey, id))
	}

	return &resolved, nil
}
