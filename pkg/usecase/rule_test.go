package usecase_test

import (
	"context"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/argus/pkg/domain/model"
	"github.com/secmon-lab/argus/pkg/domain/policy"
	"github.com/secmon-lab/argus/pkg/domain/types"
	"github.com/secmon-lab/argus/pkg/usecase"
)

func TestRuleCRUD(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	created, err := f.uc.Rule.Create(ctx, admin, usecase.RuleInput{
		Name:      "  High-risk country ",
		Condition: "country in [NG, RU]",
		Score:     95,
	})
	gt.NoError(t, err).Required()
	gt.Value(t, created.Name).Equal("High-risk country")
	gt.Value(t, created.Enabled).Equal(true)
	gt.Value(t, created.CreatedBy).Equal(admin.ID)

	t.Run("compliance can list rules", func(t *testing.T) {
		rules, err := f.uc.Rule.List(ctx, compliance)
		gt.NoError(t, err).Required()
		gt.Array(t, rules).Length(1)
		gt.Value(t, rules[0].ID).Equal(created.ID)
	})

	t.Run("names are unique ignoring case", func(t *testing.T) {
		_, err := f.uc.Rule.Create(ctx, admin, usecase.RuleInput{Name: "HIGH-RISK COUNTRY", Condition: "amount > 1", Score: 10})
		gt.Error(t, err).Is(model.ErrValidation)
	})

	t.Run("conditions are parsed", func(t *testing.T) {
		_, err := f.uc.Rule.Create(ctx, admin, usecase.RuleInput{Name: "bad", Condition: "velocity > 3", Score: 10})
		gt.Error(t, err).Is(model.ErrValidation)
	})

	t.Run("score must be in range", func(t *testing.T) {
		_, err := f.uc.Rule.Create(ctx, admin, usecase.RuleInput{Name: "too much", Condition: "amount > 1", Score: 101})
		gt.Error(t, err).Is(model.ErrValidation)
	})

	t.Run("only admins manage rules", func(t *testing.T) {
		_, err := f.uc.Rule.Create(ctx, compliance, usecase.RuleInput{Name: "x", Condition: "amount > 1", Score: 10})
		gt.Error(t, err).Is(model.ErrForbidden)
		_, err = f.uc.Rule.List(ctx, investigator)
		gt.Error(t, err).Is(model.ErrForbidden)
		gt.Error(t, f.uc.Rule.Delete(ctx, compliance, created.ID)).Is(model.ErrForbidden)
	})

	t.Run("update keeps its own name", func(t *testing.T) {
		disabled := false
		updated, err := f.uc.Rule.Update(ctx, admin, created.ID, usecase.RuleInput{
			Name:      "high-risk country",
			Condition: "country in [NG]",
			Score:     70,
			Enabled:   &disabled,
		})
		gt.NoError(t, err).Required()
		gt.Value(t, updated.Name).Equal("high-risk country")
		gt.Value(t, updated.Score).Equal(70)
		gt.Value(t, updated.Enabled).Equal(false)
		gt.Value(t, updated.CreatedAt).Equal(created.CreatedAt)
		gt.True(t, updated.UpdatedAt.After(created.UpdatedAt))
	})

	t.Run("missing rule", func(t *testing.T) {
		_, err := f.uc.Rule.Update(ctx, admin, types.NewRuleID(), usecase.RuleInput{Name: "x", Condition: "amount > 1"})
		gt.Error(t, err).Is(model.ErrNotFound)
		gt.Error(t, f.uc.Rule.Delete(ctx, admin, types.NewRuleID())).Is(model.ErrNotFound)
	})

	t.Run("delete", func(t *testing.T) {
		gt.NoError(t, f.uc.Rule.Delete(ctx, admin, created.ID)).Required()
		rules, err := f.uc.Rule.List(ctx, admin)
		gt.NoError(t, err).Required()
		gt.Array(t, rules).Length(0)
	})

	t.Run("changes are pushed to the rules room", func(t *testing.T) {
		for _, eventType := range []model.EventType{model.EventRuleCreated, model.EventRuleUpdated, model.EventRuleDeleted} {
			pushed := f.rec.ofType(eventType)
			gt.Array(t, pushed).Length(1)
			gt.Value(t, pushed[0].target).Equal(policy.ToRoom(policy.RoomRules))
			gt.Value(t, pushed[0].event.ActorID).Equal(admin.ID)
		}
		gt.Value(t, f.rec.ofType(model.EventRuleDeleted)[0].event.DeletedID).Equal(created.ID.String())
	})
}

func TestRulesDriveTransactionScoring(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	in := usecase.TransactionInput{AccountID: "acct-1", Amount: 120, Currency: "usd", Country: "ng"}

	before, err := f.uc.Transaction.Create(ctx, compliance, in)
	gt.NoError(t, err).Required()
	gt.Value(t, before.Transaction.Flagged).Equal(false)
	gt.Value(t, before.Alert).Nil()

	_, err = f.uc.Rule.Create(ctx, admin, usecase.RuleInput{Name: "Sanctioned country", Condition: "country in [NG]", Score: 95})
	gt.NoError(t, err).Required()

	after, err := f.uc.Transaction.Create(ctx, compliance, in)
	gt.NoError(t, err).Required()
	gt.Value(t, after.Transaction.RiskScore).Equal(95)
	gt.Value(t, after.Transaction.RiskReason).Equal("Sanctioned country")
	gt.Value(t, after.Transaction.Flagged).Equal(true)
	gt.Value(t, after.Alert).NotNil().Required()
	gt.Value(t, after.Alert.Reason).Equal("Sanctioned country")
}
