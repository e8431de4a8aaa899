package usecase

import (
	"context"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/argus/pkg/domain/model"
	"github.com/secmon-lab/argus/pkg/domain/policy"
	"github.com/secmon-lab/argus/pkg/domain/types"
	"github.com/secmon-lab/argus/pkg/service/scoring"
)

// rulesLockKey serializes rule writes so names stay unique
const rulesLockKey = "rules"

// RuleUseCase manages the scoring rules evaluated by the rule scorer.
// Changes are pushed to the rules room.
type RuleUseCase struct {
	*env
}

// RuleInput carries the fields of a new or replaced rule. A nil Enabled
// means enabled.
type RuleInput struct {
	Name        string
	Condition   string
	Score       int
	Description string
	Enabled     *bool
}

func (in RuleInput) apply(rule *model.Rule) error {
	if _, err := scoring.ParseCondition(in.Condition); err != nil {
		return err
	}

	rule.Name = strings.TrimSpace(in.Name)
	rule.Condition = strings.TrimSpace(in.Condition)
	rule.Score = in.Score
	rule.Description = in.Description
	rule.Enabled = in.Enabled == nil || *in.Enabled
	return rule.Validate()
}

// List returns every rule, oldest first
func (uc *RuleUseCase) List(ctx context.Context, actor model.Actor) ([]*model.Rule, error) {
	if err := actor.Validate(); err != nil {
		return nil, err
	}
	if err := policy.Require(actor.Role, policy.OpViewRules); err != nil {
		return nil, err
	}

	var rules []*model.Rule
	if err := uc.store(ctx, "failed to list rules", func(ctx context.Context) (err error) {
		rules, err = uc.repo.Rule().List(ctx)
		return err
	}); err != nil {
		return nil, err
	}
	return rules, nil
}

func (uc *RuleUseCase) lockRules(ctx context.Context, actor model.Actor) (func(), error) {
	if err := actor.Validate(); err != nil {
		return nil, err
	}
	if err := policy.Require(actor.Role, policy.OpManageRules); err != nil {
		return nil, err
	}

	unlock, err := uc.locks.Lock(ctx, rulesLockKey)
	if err != nil {
		return nil, goerr.Wrap(model.ErrStoreUnavailable, "timed out waiting for rules", goerr.V("cause", err.Error()))
	}
	return unlock, nil
}

// requireUniqueName fails when another rule already uses name, ignoring case
func (uc *RuleUseCase) requireUniqueName(ctx context.Context, name string, self types.RuleID) error {
	var rules []*model.Rule
	if err := uc.store(ctx, "failed to list rules", func(ctx context.Context) (err error) {
		rules, err = uc.repo.Rule().List(ctx)
		return err
	}); err != nil {
		return err
	}

	for _, r := range rules {
		if r.ID != self && strings.EqualFold(r.Name, name) {
			return goerr.Wrap(model.ErrValidation, "rule name already exists",
				goerr.V("name", name),
				goerr.V(model.RuleIDKey, r.ID))
		}
	}
	return nil
}

// Create adds a rule. Names are unique regardless of case.
func (uc *RuleUseCase) Create(ctx context.Context, actor model.Actor, in RuleInput) (*model.Rule, error) {
	unlock, err := uc.lockRules(ctx, actor)
	if err != nil {
		return nil, err
	}
	defer unlock()

	now := uc.now()
	rule := &model.Rule{
		ID:        types.NewRuleID(),
		CreatedBy: actor.ID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := in.apply(rule); err != nil {
		return nil, err
	}
	if err := uc.requireUniqueName(ctx, rule.Name, rule.ID); err != nil {
		return nil, err
	}

	var created *model.Rule
	if err := uc.store(ctx, "failed to create rule", func(ctx context.Context) (err error) {
		created, err = uc.repo.Rule().Create(ctx, rule)
		return err
	}, goerr.V(model.RuleIDKey, rule.ID)); err != nil {
		return nil, err
	}

	uc.publish(ctx, model.NewRuleEvent(model.EventRuleCreated, created, actor.ID), policy.ToRoom(policy.RoomRules))
	uc.audit(ctx, actor, model.AuditActionRuleCreated, model.AuditTargetRule, created.ID.String(), created.Name)
	return created, nil
}

// Update replaces the fields of a rule
func (uc *RuleUseCase) Update(ctx context.Context, actor model.Actor, id types.RuleID, in RuleInput) (*model.Rule, error) {
	unlock, err := uc.lockRules(ctx, actor)
	if err != nil {
		return nil, err
	}
	defer unlock()

	var rule *model.Rule
	if err := uc.store(ctx, "failed to get rule", func(ctx context.Context) (err error) {
		rule, err = uc.repo.Rule().Get(ctx, id)
		return err
	}, goerr.V(model.RuleIDKey, id)); err != nil {
		return nil, err
	}

	if err := in.apply(rule); err != nil {
		return nil, err
	}
	if err := uc.requireUniqueName(ctx, rule.Name, rule.ID); err != nil {
		return nil, err
	}
	rule.UpdatedAt = uc.now()

	var saved *model.Rule
	if err := uc.store(ctx, "failed to update rule", func(ctx context.Context) (err error) {
		saved, err = uc.repo.Rule().Update(ctx, rule)
		return err
	}, goerr.V(model.RuleIDKey, id)); err != nil {
		return nil, err
	}

	uc.publish(ctx, model.NewRuleEvent(model.EventRuleUpdated, saved, actor.ID), policy.ToRoom(policy.RoomRules))
	uc.audit(ctx, actor, model.AuditActionRuleUpdated, model.AuditTargetRule, saved.ID.String(), saved.Name)
	return saved, nil
}

// Delete removes a rule
func (uc *RuleUseCase) Delete(ctx context.Context, actor model.Actor, id types.RuleID) error {
	unlock, err := uc.lockRules(ctx, actor)
	if err != nil {
		return err
	}
	defer unlock()

	if err := uc.store(ctx, "failed to delete rule", func(ctx context.Context) error {
		return uc.repo.Rule().Delete(ctx, id)
	}, goerr.V(model.RuleIDKey, id)); err != nil {
		return err
	}

	uc.publish(ctx, model.NewRuleDeletedEvent(id, actor.ID), policy.ToRoom(policy.RoomRules))
	uc.audit(ctx, actor, model.AuditActionRuleDeleted, model.AuditTargetRule, id.String(), "")
	return nil
}
