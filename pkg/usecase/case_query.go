package usecase

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/argus/pkg/domain/interfaces"
	"github.com/secmon-lab/argus/pkg/domain/model"
	"github.com/secmon-lab/argus/pkg/domain/policy"
	"github.com/secmon-lab/argus/pkg/domain/types"
)

// ListCases returns the cases visible to the actor, newest first.
// Investigators only see the cases assigned to them.
func (uc *CaseUseCase) ListCases(ctx context.Context, actor model.Actor) ([]*model.Case, error) {
	if err := uc.authorize(actor, policy.OpViewCases); err != nil {
		return nil, err
	}

	var opts []interfaces.ListCaseOption
	if actor.Role == types.RoleInvestigator {
		opts = append(opts, interfaces.WithAssignee(actor.ID))
	}

	var cases []*model.Case
	if err := uc.store(ctx, "failed to list cases", func(ctx context.Context) (err error) {
		cases, err = uc.repo.Case().List(ctx, opts...)
		return err
	}); err != nil {
		return nil, err
	}
	return cases, nil
}

// GetCase returns a single case
func (uc *CaseUseCase) GetCase(ctx context.Context, actor model.Actor, caseID types.CaseID) (*model.Case, error) {
	if err := uc.authorize(actor, policy.OpViewCases); err != nil {
		return nil, err
	}
	if err := caseID.Validate(); err != nil {
		return nil, goerr.Wrap(model.ErrNotFound, "case not found", goerr.V(model.CaseIDKey, caseID))
	}

	var c *model.Case
	if err := uc.store(ctx, "failed to get case", func(ctx context.Context) (err error) {
		c, err = uc.repo.Case().Get(ctx, caseID)
		return err
	}, goerr.V(model.CaseIDKey, caseID)); err != nil {
		return nil, err
	}
	return c, nil
}

// ListAvailable returns open cases nobody has picked up yet, the work queue
// of investigators.
func (uc *CaseUseCase) ListAvailable(ctx context.Context, actor model.Actor) ([]*model.Case, error) {
	if err := uc.authorize(actor, policy.OpAssignSelf); err != nil {
		return nil, err
	}

	var cases []*model.Case
	if err := uc.store(ctx, "failed to list cases", func(ctx context.Context) (err error) {
		cases, err = uc.repo.Case().List(ctx, interfaces.WithAssignee(""))
		return err
	}); err != nil {
		return nil, err
	}

	available := make([]*model.Case, 0, len(cases))
	for _, c := range cases {
		if c.IsClosed() {
			continue
		}
		available = append(available, c)
	}
	return available, nil
}

// Stats aggregates the cases visible to the actor
func (uc *CaseUseCase) Stats(ctx context.Context, actor model.Actor) (*model.CaseStats, error) {
	cases, err := uc.ListCases(ctx, actor)
	if err != nil {
		return nil, err
	}
	return model.NewCaseStats(cases), nil
}
