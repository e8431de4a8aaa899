package model

import (
	"strings"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/argus/pkg/domain/types"
)

// Rule is an operator managed scoring rule. A transaction matching the
// condition scores at least Score.
type Rule struct {
	ID          types.RuleID      `json:"id" firestore:"id"`
	Name        string            `json:"name" firestore:"name"`
	Condition   string            `json:"condition" firestore:"condition"`
	Score       int               `json:"score" firestore:"score"`
	Description string            `json:"description,omitempty" firestore:"description"`
	Enabled     bool              `json:"enabled" firestore:"enabled"`
	CreatedBy   types.PrincipalID `json:"createdBy" firestore:"created_by"`
	CreatedAt   time.Time         `json:"createdAt" firestore:"created_at"`
	UpdatedAt   time.Time         `json:"updatedAt" firestore:"updated_at"`
}

// Validate checks the fields of a rule. The condition syntax is checked by
// the scorer that evaluates it.
func (r *Rule) Validate() error {
	if strings.TrimSpace(r.Name) == "" {
		return goerr.Wrap(ErrValidation, "rule name is required", goerr.V(RuleIDKey, r.ID))
	}
	if strings.TrimSpace(r.Condition) == "" {
		return goerr.Wrap(ErrValidation, "rule condition is required", goerr.V(RuleIDKey, r.ID))
	}
	if r.Score < 0 || r.Score > 100 {
		return goerr.Wrap(ErrValidation, "rule score must be between 0 and 100",
			goerr.V(RuleIDKey, r.ID),
			goerr.V("score", r.Score))
	}
	return nil
}
