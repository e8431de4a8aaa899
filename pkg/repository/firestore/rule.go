package firestore

import (
	"context"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/argus/pkg/domain/model"
	"github.com/secmon-lab/argus/pkg/domain/types"
	"google.golang.org/api/iterator"
)

type ruleRepository struct {
	client     *firestore.Client
	collection string
}

func (r *ruleRepository) doc(id types.RuleID) *firestore.DocumentRef {
	return r.client.Collection(r.collection).Doc(id.String())
}

func (r *ruleRepository) Create(ctx context.Context, rule *model.Rule) (*model.Rule, error) {
	if _, err := r.doc(rule.ID).Create(ctx, rule); err != nil {
		return nil, storeError(err, "failed to create rule", goerr.V(model.RuleIDKey, rule.ID))
	}
	return rule, nil
}

func (r *ruleRepository) Get(ctx context.Context, id types.RuleID) (*model.Rule, error) {
	snap, err := r.doc(id).Get(ctx)
	if err != nil {
		return nil, storeError(err, "failed to get rule", goerr.V(model.RuleIDKey, id))
	}

	var rule model.Rule
	if err := snap.DataTo(&rule); err != nil {
		return nil, goerr.Wrap(err, "failed to decode rule", goerr.V(model.RuleIDKey, id))
	}
	return &rule, nil
}

func (r *ruleRepository) List(ctx context.Context) ([]*model.Rule, error) {
	iter := r.client.Collection(r.collection).OrderBy("created_at", firestore.Asc).Documents(ctx)
	defer iter.Stop()

	var result []*model.Rule
	for {
		snap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, storeError(err, "failed to iterate rules")
		}

		var rule model.Rule
		if err := snap.DataTo(&rule); err != nil {
			return nil, goerr.Wrap(err, "failed to decode rule", goerr.V("doc_id", snap.Ref.ID))
		}
		result = append(result, &rule)
	}
	return result, nil
}

func (r *ruleRepository) Update(ctx context.Context, rule *model.Rule) (*model.Rule, error) {
	ref := r.doc(rule.ID)

	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		if _, err := tx.Get(ref); err != nil {
			return err
		}
		return tx.Set(ref, rule)
	})
	if err != nil {
		return nil, storeError(err, "failed to update rule", goerr.V(model.RuleIDKey, rule.ID))
	}
	return rule, nil
}

func (r *ruleRepository) Delete(ctx context.Context, id types.RuleID) error {
	ref := r.doc(id)
	if _, err := ref.Get(ctx); err != nil {
		return storeError(err, "failed to get rule", goerr.V(model.RuleIDKey, id))
	}
	if _, err := ref.Delete(ctx); err != nil {
		return storeError(err, "failed to delete rule", goerr.V(model.RuleIDKey, id))
	}
	return nil
}
