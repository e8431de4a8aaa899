package firestore

import (
	"context"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/argus/pkg/domain/interfaces"
	"github.com/secmon-lab/argus/pkg/domain/model"
	"github.com/secmon-lab/argus/pkg/domain/types"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

type caseRepository struct {
	client     *firestore.Client
	collection string
}

func (r *caseRepository) doc(id types.CaseID) *firestore.DocumentRef {
	return r.client.Collection(r.collection).Doc(id.String())
}

func (r *caseRepository) Create(ctx context.Context, c *model.Case) (*model.Case, error) {
	if _, err := r.doc(c.ID).Create(ctx, c); err != nil {
		return nil, storeError(err, "failed to create case", goerr.V(model.CaseIDKey, c.ID))
	}
	return c, nil
}

func (r *caseRepository) Get(ctx context.Context, id types.CaseID) (*model.Case, error) {
	docSnap, err := r.doc(id).Get(ctx)
	if err != nil {
		return nil, storeError(err, "failed to get case", goerr.V(model.CaseIDKey, id))
	}

	var c model.Case
	if err := docSnap.DataTo(&c); err != nil {
		return nil, goerr.Wrap(err, "failed to decode case", goerr.V(model.CaseIDKey, id))
	}
	return &c, nil
}

func (r *caseRepository) List(ctx context.Context, opts ...interfaces.ListCaseOption) ([]*model.Case, error) {
	cfg := interfaces.BuildListCaseConfig(opts...)

	q := r.client.Collection(r.collection).Query
	if s := cfg.Status(); s != nil {
		q = q.Where("status", "==", string(*s))
	}
	if a := cfg.Assignee(); a != nil {
		q = q.Where("assigned_to", "==", string(*a))
	}
	q = q.OrderBy("created_at", firestore.Desc)

	iter := q.Documents(ctx)
	defer iter.Stop()

	var cases []*model.Case
	for {
		docSnap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, storeError(err, "failed to iterate cases")
		}

		var c model.Case
		if err := docSnap.DataTo(&c); err != nil {
			return nil, goerr.Wrap(err, "failed to decode case", goerr.V("doc_id", docSnap.Ref.ID))
		}
		cases = append(cases, &c)
	}

	return cases, nil
}

// Update replaces the case in a transaction so that a concurrent delete is
// reported as not found instead of resurrecting the document.
func (r *caseRepository) Update(ctx context.Context, c *model.Case) (*model.Case, error) {
	ref := r.doc(c.ID)

	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		snap, err := tx.Get(ref)
		if err != nil {
			return err
		}

		var existing model.Case
		if err := snap.DataTo(&existing); err != nil {
			return goerr.Wrap(err, "failed to decode case")
		}
		c.CreatedAt = existing.CreatedAt

		return tx.Set(ref, c)
	})
	if err != nil {
		return nil, storeError(err, "failed to update case", goerr.V(model.CaseIDKey, c.ID))
	}

	return c, nil
}

func (r *caseRepository) Delete(ctx context.Context, id types.CaseID) error {
	ref := r.doc(id)

	if _, err := ref.Get(ctx); err != nil {
		return storeError(err, "failed to get case", goerr.V(model.CaseIDKey, id))
	}

	if _, err := ref.Delete(ctx); err != nil {
		if status.Code(err) == codes.NotFound {
			return goerr.Wrap(model.ErrNotFound, "case not found", goerr.V(model.CaseIDKey, id))
		}
		return storeError(err, "failed to delete case", goerr.V(model.CaseIDKey, id))
	}
	return nil
}
