package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/argus/pkg/domain/model"
	"github.com/secmon-lab/argus/pkg/domain/types"
)

type ruleRepository struct {
	mu    sync.RWMutex
	rules map[types.RuleID]*model.Rule
}

func newRuleRepository() *ruleRepository {
	return &ruleRepository{
		rules: make(map[types.RuleID]*model.Rule),
	}
}

func copyRule(rule *model.Rule) *model.Rule {
	copied := *rule
	return &copied
}

func (r *ruleRepository) Create(ctx context.Context, rule *model.Rule) (*model.Rule, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.rules[rule.ID]; exists {
		return nil, goerr.Wrap(model.ErrValidation, "rule already exists", goerr.V(model.RuleIDKey, rule.ID))
	}

	r.rules[rule.ID] = copyRule(rule)
	return copyRule(rule), nil
}

func (r *ruleRepository) Get(ctx context.Context, id types.RuleID) (*model.Rule, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rule, exists := r.rules[id]
	if !exists {
		return nil, goerr.Wrap(model.ErrNotFound, "rule not found", goerr.V(model.RuleIDKey, id))
	}
	return copyRule(rule), nil
}

func (r *ruleRepository) List(ctx context.Context) ([]*model.Rule, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]*model.Rule, 0, len(r.rules))
	for _, rule := range r.rules {
		result = append(result, copyRule(rule))
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.Before(result[j].CreatedAt)
	})
	return result, nil
}

func (r *ruleRepository) Update(ctx context.Context, rule *model.Rule) (*model.Rule, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.rules[rule.ID]; !exists {
		return nil, goerr.Wrap(model.ErrNotFound, "rule not found", goerr.V(model.RuleIDKey, rule.ID))
	}

	r.rules[rule.ID] = copyRule(rule)
	return copyRule(rule), nil
}

func (r *ruleRepository) Delete(ctx context.Context, id types.RuleID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.rules[id]; !exists {
		return goerr.Wrap(model.ErrNotFound, "rule not found", goerr.V(model.RuleIDKey, id))
	}
	delete(r.rules, id)
	return nil
}
