package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/argus/pkg/domain/interfaces"
	"github.com/secmon-lab/argus/pkg/domain/model"
	"github.com/secmon-lab/argus/pkg/domain/policy"
	"github.com/secmon-lab/argus/pkg/domain/types"
	"github.com/secmon-lab/argus/pkg/utils/async"
	"github.com/secmon-lab/argus/pkg/utils/keylock"
	"github.com/secmon-lab/argus/pkg/utils/logging"
)

// env is the runtime shared by every use case
type env struct {
	repo         interfaces.Repository
	publisher    interfaces.EventPublisher
	notifier     interfaces.CaseNotifier
	locks        *keylock.Locker
	now          func() time.Time
	storeTimeout time.Duration
}

type nopPublisher struct{}

func (nopPublisher) Publish(context.Context, *model.Event, policy.Target) error { return nil }

// store runs a record store call, bounded by the configured timeout
func (e *env) store(ctx context.Context, msg string, fn func(ctx context.Context) error, values ...goerr.Option) error {
	if e.storeTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.storeTimeout)
		defer cancel()
	}

	if err := fn(ctx); err != nil {
		return storeFailure(err, msg, values...)
	}
	return nil
}

// storeFailure keeps taxonomy errors raised by the repository and classifies
// everything else as model.ErrStoreUnavailable.
func storeFailure(err error, msg string, values ...goerr.Option) error {
	for _, known := range []error{model.ErrNotFound, model.ErrStoreUnavailable, model.ErrValidation} {
		if errors.Is(err, known) {
			return goerr.Wrap(err, msg, values...)
		}
	}

	values = append(values, goerr.V("cause", err.Error()))
	return goerr.Wrap(model.ErrStoreUnavailable, msg, values...)
}

// publish hands an event to the broadcaster. Delivery failures never reach
// the caller of the mutation.
func (e *env) publish(ctx context.Context, event *model.Event, target policy.Target) {
	if err := e.publisher.Publish(ctx, event, target); err != nil {
		logging.From(ctx).Warn("failed to publish event",
			"type", event.Type,
			"case_id", event.CaseID,
			"error", err,
		)
	}
}

// audit appends an entry to the audit log and pushes it to the logs room.
// A failed write is logged and never fails the mutation it records.
func (e *env) audit(ctx context.Context, actor model.Actor, action, targetType, targetID, details string) {
	entry := &model.AuditLog{
		ID:         types.NewAuditLogID(),
		ActorID:    actor.ID,
		ActorRole:  actor.Role,
		Action:     action,
		TargetType: targetType,
		TargetID:   targetID,
		Details:    details,
		CreatedAt:  e.now(),
	}

	if err := e.store(ctx, "failed to write audit log", func(ctx context.Context) error {
		return e.repo.AuditLog().Create(ctx, entry)
	}); err != nil {
		logging.From(ctx).Error("failed to write audit log",
			"action", action,
			"target_type", targetType,
			"target_id", targetID,
			"error", err,
		)
		return
	}

	e.publish(ctx, model.NewLogEvent(entry), policy.ToRoom(policy.RoomLogs))
}

func (e *env) notify(ctx context.Context, event *model.Event) {
	if e.notifier == nil {
		return
	}
	async.Dispatch(ctx, "notify-case", func(ctx context.Context) error {
		return e.notifier.NotifyCase(ctx, event)
	})
}
