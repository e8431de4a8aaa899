package firestore

import (
	"context"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/argus/pkg/domain/model"
	"github.com/secmon-lab/argus/pkg/domain/types"
	"google.golang.org/api/iterator"
)

type userRepository struct {
	client     *firestore.Client
	collection string
}

func (r *userRepository) Put(ctx context.Context, user *model.User) error {
	if _, err := r.client.Collection(r.collection).Doc(user.ID.String()).Set(ctx, user); err != nil {
		return storeError(err, "failed to put user", goerr.V(model.PrincipalIDKey, user.ID))
	}
	return nil
}

func (r *userRepository) Get(ctx context.Context, id types.PrincipalID) (*model.User, error) {
	snap, err := r.client.Collection(r.collection).Doc(id.String()).Get(ctx)
	if err != nil {
		return nil, storeError(err, "failed to get user", goerr.V(model.PrincipalIDKey, id))
	}

	var u model.User
	if err := snap.DataTo(&u); err != nil {
		return nil, goerr.Wrap(err, "failed to decode user", goerr.V(model.PrincipalIDKey, id))
	}
	return &u, nil
}

func (r *userRepository) List(ctx context.Context) ([]*model.User, error) {
	iter := r.client.Collection(r.collection).OrderBy(firestore.DocumentID, firestore.Asc).Documents(ctx)
	defer iter.Stop()

	var result []*model.User
	for {
		snap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, storeError(err, "failed to iterate users")
		}

		var u model.User
		if err := snap.DataTo(&u); err != nil {
			return nil, goerr.Wrap(err, "failed to decode user", goerr.V("doc_id", snap.Ref.ID))
		}
		result = append(result, &u)
	}
	return result, nil
}
