package usecase

import (
	"context"
	"time"

	"github.com/secmon-lab/argus/pkg/domain/interfaces"
	"github.com/secmon-lab/argus/pkg/domain/model"
	"github.com/secmon-lab/argus/pkg/domain/policy"
	"github.com/secmon-lab/argus/pkg/domain/types"
)

// AuditLogUseCase reads the audit log written by every other use case
type AuditLogUseCase struct {
	*env
}

// AuditLogFilter narrows a log listing. Zero fields do not filter.
type AuditLogFilter struct {
	ActorID types.PrincipalID
	Action  string
	Since   time.Time
	Until   time.Time
	Limit   int
}

func (f AuditLogFilter) options() []interfaces.ListAuditLogOption {
	var opts []interfaces.ListAuditLogOption
	if f.ActorID != "" {
		opts = append(opts, interfaces.WithLogActor(f.ActorID))
	}
	if f.Action != "" {
		opts = append(opts, interfaces.WithLogAction(f.Action))
	}
	if !f.Since.IsZero() {
		opts = append(opts, interfaces.WithLogSince(f.Since))
	}
	if !f.Until.IsZero() {
		opts = append(opts, interfaces.WithLogUntil(f.Until))
	}
	if f.Limit > 0 {
		opts = append(opts, interfaces.WithLogLimit(f.Limit))
	}
	return opts
}

// List returns audit entries newest first
func (uc *AuditLogUseCase) List(ctx context.Context, actor model.Actor, filter AuditLogFilter) ([]*model.AuditLog, error) {
	if err := actor.Validate(); err != nil {
		return nil, err
	}
	if err := policy.Require(actor.Role, policy.OpViewLogs); err != nil {
		return nil, err
	}

	var logs []*model.AuditLog
	if err := uc.store(ctx, "failed to list audit logs", func(ctx context.Context) (err error) {
		logs, err = uc.repo.AuditLog().List(ctx, filter.options()...)
		return err
	}); err != nil {
		return nil, err
	}
	return logs, nil
}
