package model_test

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/argus/pkg/domain/model"
	"github.com/secmon-lab/argus/pkg/domain/types"
)

func newTestCase() *model.Case {
	return &model.Case{
		ID:            types.NewCaseID(),
		TransactionID: types.NewTransactionID(),
		Priority:      types.PriorityHigh,
		Status:        types.CaseStatusOpen,
	}
}

func TestCase_Validate(t *testing.T) {
	t.Run("valid open case", func(t *testing.T) {
		gt.NoError(t, newTestCase().Validate())
	})

	t.Run("both origins are rejected", func(t *testing.T) {
		c := newTestCase()
		c.AlertID = types.NewAlertID()
		gt.Error(t, c.Validate()).Is(model.ErrValidation)
	})

	t.Run("no origin is rejected", func(t *testing.T) {
		c := newTestCase()
		c.TransactionID = ""
		gt.Error(t, c.Validate()).Is(model.ErrValidation)
	})

	t.Run("closedAt without Closed status is rejected", func(t *testing.T) {
		c := newTestCase()
		now := time.Now()
		c.ClosedAt = &now
		gt.Error(t, c.Validate()).Is(model.ErrValidation)
	})

	t.Run("Closed status without closedAt is rejected", func(t *testing.T) {
		c := newTestCase()
		c.Status = types.CaseStatusClosed
		gt.Error(t, c.Validate()).Is(model.ErrValidation)
	})
}

func TestCase_SetStatus(t *testing.T) {
	actor := model.Actor{ID: "inv-1", Role: types.RoleInvestigator}
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	c := newTestCase()
	c.SetStatus(now, actor, types.CaseStatusConfirmedFraud)
	gt.Value(t, c.ClosedAt == nil).Equal(true)
	gt.NoError(t, c.Validate())

	c.SetStatus(now, actor, types.CaseStatusClosed)
	gt.Value(t, c.ClosedAt).NotNil()
	gt.Bool(t, c.ClosedAt.Equal(now)).True()
	gt.Value(t, c.ClosedBy).Equal(types.PrincipalID("inv-1"))
	gt.Bool(t, c.IsClosed()).True()
	gt.NoError(t, c.Validate())
}

func TestCase_AppendTimeline(t *testing.T) {
	actor := model.Actor{ID: "cmp-1", Role: types.RoleCompliance}
	c := newTestCase()
	now := time.Now().UTC()

	c.AppendTimeline(now, actor, model.ActionCreatedFromTransaction, "")
	c.AppendTimeline(now.Add(time.Second), actor, model.ActionCaseClosed, "done")

	gt.Array(t, c.Timeline).Length(2)
	gt.Value(t, c.Timeline[0].Action).Equal(model.ActionCreatedFromTransaction)
	gt.Value(t, c.Timeline[1].ActorRole).Equal(types.RoleCompliance)
	gt.Value(t, c.Timeline[1].Details).Equal("done")
	gt.Bool(t, c.UpdatedAt.Equal(now.Add(time.Second))).True()
}

func TestCommentPreview(t *testing.T) {
	gt.Value(t, model.CommentPreview("short")).Equal("short")

	exact := strings.Repeat("a", 50)
	gt.Value(t, model.CommentPreview(exact)).Equal(exact)

	long := strings.Repeat("b", 51)
	gt.Value(t, model.CommentPreview(long)).Equal(strings.Repeat("b", 50) + "...")

	multibyte := strings.Repeat("é", 60)
	gt.Value(t, model.CommentPreview(multibyte)).Equal(strings.Repeat("é", 50) + "...")
}

func TestErrorCode(t *testing.T) {
	tests := []struct {
		err  error
		code string
	}{
		{model.ErrNotFound, model.CodeNotFound},
		{model.ErrForbidden, model.CodeForbidden},
		{model.ErrInvalidAssignee, model.CodeInvalidAssignee},
		{model.ErrAuthRejected, model.CodeAuthRejected},
		{model.ErrInvalidTransition, model.CodeInvalidTransition},
		{model.ErrStoreUnavailable, model.CodeStoreUnavailable},
		{model.ErrValidation, model.CodeValidation},
		{errors.New("boom"), model.CodeInternal},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			gt.Value(t, model.ErrorCode(tt.err)).Equal(tt.code)
		})
	}
}
