package firestore

import (
	"context"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/argus/pkg/domain/interfaces"
	"github.com/secmon-lab/argus/pkg/domain/model"
	"google.golang.org/api/iterator"
)

type auditLogRepository struct {
	client     *firestore.Client
	collection string
}

func (r *auditLogRepository) Create(ctx context.Context, log *model.AuditLog) error {
	if _, err := r.client.Collection(r.collection).Doc(log.ID.String()).Create(ctx, log); err != nil {
		return storeError(err, "failed to create audit log", goerr.V("audit_log_id", log.ID))
	}
	return nil
}

// List pushes one equality filter and the time range down to the query, so
// the (actor_id, created_at) and (action, created_at) indexes created by the
// migrate command cover it. A combined actor and action filter is finished
// in memory.
func (r *auditLogRepository) List(ctx context.Context, opts ...interfaces.ListAuditLogOption) ([]*model.AuditLog, error) {
	cfg := interfaces.BuildListAuditLogConfig(opts...)

	q := r.client.Collection(r.collection).Query
	pushedAll := true
	switch {
	case cfg.Actor() != nil:
		q = q.Where("actor_id", "==", cfg.Actor().String())
		pushedAll = cfg.Action() == nil
	case cfg.Action() != nil:
		q = q.Where("action", "==", *cfg.Action())
	}
	if since := cfg.Since(); since != nil {
		q = q.Where("created_at", ">=", *since)
	}
	if until := cfg.Until(); until != nil {
		q = q.Where("created_at", "<", *until)
	}
	q = q.OrderBy("created_at", firestore.Desc)
	if cfg.Limit() > 0 && pushedAll {
		q = q.Limit(cfg.Limit())
	}

	iter := q.Documents(ctx)
	defer iter.Stop()

	var result []*model.AuditLog
	for {
		snap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, storeError(err, "failed to iterate audit logs")
		}

		var log model.AuditLog
		if err := snap.DataTo(&log); err != nil {
			return nil, goerr.Wrap(err, "failed to decode audit log", goerr.V("doc_id", snap.Ref.ID))
		}
		if !cfg.Match(&log) {
			continue
		}
		result = append(result, &log)
		if cfg.Limit() > 0 && len(result) == cfg.Limit() {
			break
		}
	}
	return result, nil
}
