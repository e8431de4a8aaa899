package usecase

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/argus/pkg/domain/model"
	"github.com/secmon-lab/argus/pkg/domain/policy"
	"github.com/secmon-lab/argus/pkg/domain/types"
)

type AlertUseCase struct {
	*env
}

// List returns alerts, newest first
func (uc *AlertUseCase) List(ctx context.Context, actor model.Actor, unresolvedOnly bool) ([]*model.Alert, error) {
	if err := actor.Validate(); err != nil {
		return nil, err
	}
	if err := policy.Require(actor.Role, policy.OpViewAlerts); err != nil {
		return nil, err
	}

	var alerts []*model.Alert
	if err := uc.store(ctx, "failed to list alerts", func(ctx context.Context) (err error) {
		alerts, err = uc.repo.Alert().List(ctx, unresolvedOnly)
		return err
	}); err != nil {
		return nil, err
	}
	return alerts, nil
}

// Resolve marks an alert resolved without opening a case
func (uc *AlertUseCase) Resolve(ctx context.Context, actor model.Actor, id types.AlertID) (*model.Alert, error) {
	if err := actor.Validate(); err != nil {
		return nil, err
	}
	if err := policy.Require(actor.Role, policy.OpResolveAlert); err != nil {
		return nil, err
	}

	var alert *model.Alert
	if err := uc.store(ctx, "failed to resolve alert", func(ctx context.Context) (err error) {
		alert, err = uc.repo.Alert().Resolve(ctx, id, uc.now())
		return err
	}, goerr.V(model.AlertIDKey, id)); err != nil {
		return nil, err
	}

	uc.audit(ctx, actor, model.AuditActionAlertResolved, model.AuditTargetAlert, id.String(), "")
	return alert, nil
}
