package firestore

import (
	"context"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/argus/pkg/domain/model"
	"github.com/secmon-lab/argus/pkg/domain/types"
	"google.golang.org/api/iterator"
)

type transactionRepository struct {
	client     *firestore.Client
	collection string
}

func (r *transactionRepository) doc(id types.TransactionID) *firestore.DocumentRef {
	return r.client.Collection(r.collection).Doc(id.String())
}

func (r *transactionRepository) Create(ctx context.Context, txn *model.Transaction) (*model.Transaction, error) {
	if _, err := r.doc(txn.ID).Create(ctx, txn); err != nil {
		return nil, storeError(err, "failed to create transaction", goerr.V(model.TransactionIDKey, txn.ID))
	}
	return txn, nil
}

func (r *transactionRepository) Get(ctx context.Context, id types.TransactionID) (*model.Transaction, error) {
	snap, err := r.doc(id).Get(ctx)
	if err != nil {
		return nil, storeError(err, "failed to get transaction", goerr.V(model.TransactionIDKey, id))
	}

	var txn model.Transaction
	if err := snap.DataTo(&txn); err != nil {
		return nil, goerr.Wrap(err, "failed to decode transaction", goerr.V(model.TransactionIDKey, id))
	}
	return &txn, nil
}

func (r *transactionRepository) List(ctx context.Context, limit int) ([]*model.Transaction, error) {
	q := r.client.Collection(r.collection).OrderBy("created_at", firestore.Desc)
	if limit > 0 {
		q = q.Limit(limit)
	}

	iter := q.Documents(ctx)
	defer iter.Stop()

	var result []*model.Transaction
	for {
		snap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, storeError(err, "failed to iterate transactions")
		}

		var txn model.Transaction
		if err := snap.DataTo(&txn); err != nil {
			return nil, goerr.Wrap(err, "failed to decode transaction", goerr.V("doc_id", snap.Ref.ID))
		}
		result = append(result, &txn)
	}
	return result, nil
}

func (r *transactionRepository) Delete(ctx context.Context, id types.TransactionID) error {
	ref := r.doc(id)
	if _, err := ref.Get(ctx); err != nil {
		return storeError(err, "failed to get transaction", goerr.V(model.TransactionIDKey, id))
	}
	if _, err := ref.Delete(ctx); err != nil {
		return storeError(err, "failed to delete transaction", goerr.V(model.TransactionIDKey, id))
	}
	return nil
}
