package usecase_test

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/argus/pkg/domain/interfaces"
	"github.com/secmon-lab/argus/pkg/domain/model"
	"github.com/secmon-lab/argus/pkg/domain/policy"
	"github.com/secmon-lab/argus/pkg/domain/types"
	"github.com/secmon-lab/argus/pkg/repository/memory"
	"github.com/secmon-lab/argus/pkg/usecase"
)

func TestCaseLifecycleScenario(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	txn := f.seedTransaction(t, 85)

	c, err := f.uc.Case.CreateFromTransaction(ctx, compliance, txn.ID, usecase.CreateCaseInput{Title: "T1"})
	gt.NoError(t, err).Required()
	gt.Value(t, c.Status).Equal(types.CaseStatusOpen)
	gt.Array(t, c.Timeline).Length(1)
	gt.Value(t, c.Timeline[0].Action).Equal(model.ActionCreatedFromTransaction)
	gt.Value(t, c.RiskScore).Equal(85)
	gt.Value(t, c.Priority).Equal(types.PriorityMedium)

	c, err = f.uc.Case.AssignToSelf(ctx, investigator, c.ID)
	gt.NoError(t, err).Required()
	gt.Value(t, c.Status).Equal(types.CaseStatusAssigned)
	gt.Array(t, c.Timeline).Length(2)
	gt.Value(t, c.AssignedTo).Equal(investigator.ID)

	c, err = f.uc.Case.UpdateStatus(ctx, investigator, c.ID, types.CaseStatusConfirmedFraud, "verified with customer")
	gt.NoError(t, err).Required()
	gt.Value(t, c.Status).Equal(types.CaseStatusConfirmedFraud)
	gt.Value(t, c.ClosedAt).Nil()
	gt.Array(t, c.Timeline).Length(3)
	gt.Value(t, c.Timeline[2].Details).Equal("verified with customer")

	c, err = f.uc.Case.UpdateStatus(ctx, investigator, c.ID, types.CaseStatusClosed, "")
	gt.NoError(t, err).Required()
	gt.Value(t, c.Status).Equal(types.CaseStatusClosed)
	gt.Value(t, c.ClosedAt).NotNil()
	gt.Value(t, c.ClosedBy).Equal(investigator.ID)
	gt.Array(t, c.Timeline).Length(4)

	// no reopen
	_, err = f.uc.Case.UpdateStatus(ctx, investigator, c.ID, types.CaseStatusInReview, "")
	gt.Error(t, err).Is(model.ErrInvalidTransition)

	stored, err := f.repo.Case().Get(ctx, c.ID)
	gt.NoError(t, err).Required()
	gt.Array(t, stored.Timeline).Length(4)

	gt.Array(t, f.rec.ofType(model.EventNewCase)).Length(1)
	updates := f.rec.ofType(model.EventCaseUpdated)
	gt.Array(t, updates).Length(3)
	gt.Value(t, updates[2].event.ResultingStatus).Equal(types.CaseStatusClosed)
	gt.Value(t, updates[2].event.ActorID).Equal(investigator.ID)
	gt.Value(t, updates[2].event.CaseID).Equal(c.ID)
	gt.Array(t, updates[2].target.Rooms).Equal([]policy.Room{policy.RoomCaseStream, policy.RoomCases})
}

func TestCreateFromAlert(t *testing.T) {
	t.Run("resolves the alert", func(t *testing.T) {
		f := newFixture(t)
		ctx := context.Background()
		alert := f.seedAlert(t, 92)

		c, err := f.uc.Case.CreateFromAlert(ctx, compliance, alert.ID, usecase.CreateCaseInput{Title: "A1", Priority: types.PriorityCritical})
		gt.NoError(t, err).Required()
		gt.Value(t, c.AlertID).Equal(alert.ID)
		gt.Value(t, c.TransactionID).Equal(types.TransactionID(""))
		gt.Value(t, c.RiskScore).Equal(92)
		gt.Value(t, c.Priority).Equal(types.PriorityCritical)
		gt.Value(t, c.Timeline[0].Action).Equal(model.ActionCreatedFromAlert)

		got, err := f.repo.Alert().Get(ctx, alert.ID)
		gt.NoError(t, err).Required()
		gt.Bool(t, got.Resolved).True()
		gt.Value(t, got.ResolvedAt).NotNil()
	})

	t.Run("already resolved alert", func(t *testing.T) {
		f := newFixture(t)
		ctx := context.Background()
		alert := f.seedAlert(t, 75)

		first := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
		_, err := f.repo.Alert().Resolve(ctx, alert.ID, first)
		gt.NoError(t, err).Required()

		c, err := f.uc.Case.CreateFromAlert(ctx, compliance, alert.ID, usecase.CreateCaseInput{Title: "A2"})
		gt.NoError(t, err).Required()
		gt.Value(t, c.Status).Equal(types.CaseStatusOpen)

		got, err := f.repo.Alert().Get(ctx, alert.ID)
		gt.NoError(t, err).Required()
		gt.Bool(t, got.Resolved).True()
		gt.Bool(t, got.ResolvedAt.Equal(first)).True()

		unresolved, err := f.repo.Alert().List(ctx, true)
		gt.NoError(t, err).Required()
		gt.Array(t, unresolved).Length(0)
	})

	t.Run("missing alert", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.uc.Case.CreateFromAlert(context.Background(), compliance, types.NewAlertID(), usecase.CreateCaseInput{Title: "A3"})
		gt.Error(t, err).Is(model.ErrNotFound)
		gt.Number(t, f.rec.count()).Equal(0)
	})

	t.Run("failed case write leaves the alert unresolved", func(t *testing.T) {
		mem := memory.New()
		seedUsers(t, mem)
		repo := newFlakyRepo(mem)
		repo.cases.failCreate = true
		f := newFixtureWithRepo(t, mem, repo)
		ctx := context.Background()
		alert := f.seedAlert(t, 88)

		_, err := f.uc.Case.CreateFromAlert(ctx, compliance, alert.ID, usecase.CreateCaseInput{Title: "A4"})
		gt.Error(t, err).Is(model.ErrStoreUnavailable)

		got, err := mem.Alert().Get(ctx, alert.ID)
		gt.NoError(t, err).Required()
		gt.Bool(t, got.Resolved).False()
		gt.Value(t, got.ResolvedAt).Nil()

		cases, err := mem.Case().List(ctx)
		gt.NoError(t, err).Required()
		gt.Array(t, cases).Length(0)
		gt.Number(t, f.rec.count()).Equal(0)
	})

	t.Run("failed resolve removes the case again", func(t *testing.T) {
		mem := memory.New()
		seedUsers(t, mem)
		repo := newFlakyRepo(mem)
		repo.alerts.failResolve = true
		f := newFixtureWithRepo(t, mem, repo)
		ctx := context.Background()
		alert := f.seedAlert(t, 88)

		_, err := f.uc.Case.CreateFromAlert(ctx, compliance, alert.ID, usecase.CreateCaseInput{Title: "A5"})
		gt.Error(t, err).Is(model.ErrStoreUnavailable)

		got, err := mem.Alert().Get(ctx, alert.ID)
		gt.NoError(t, err).Required()
		gt.Bool(t, got.Resolved).False()

		cases, err := mem.Case().List(ctx)
		gt.NoError(t, err).Required()
		gt.Array(t, cases).Length(0)
		gt.Array(t, f.rec.ofType(model.EventNewCase)).Length(0)

		// a retry after recovery opens exactly one case
		repo.alerts.failResolve = false
		c, err := f.uc.Case.CreateFromAlert(ctx, compliance, alert.ID, usecase.CreateCaseInput{Title: "A5"})
		gt.NoError(t, err).Required()
		cases, err = mem.Case().List(ctx)
		gt.NoError(t, err).Required()
		gt.Array(t, cases).Length(1)
		gt.Value(t, cases[0].ID).Equal(c.ID)
	})
}

func TestCreateCase_Validation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	txn := f.seedTransaction(t, 10)

	_, err := f.uc.Case.CreateFromTransaction(ctx, compliance, txn.ID, usecase.CreateCaseInput{Title: "  "})
	gt.Error(t, err).Is(model.ErrValidation)

	_, err = f.uc.Case.CreateFromTransaction(ctx, compliance, txn.ID, usecase.CreateCaseInput{Title: "x", Priority: "Urgent"})
	gt.Error(t, err).Is(model.ErrValidation)

	_, err = f.uc.Case.CreateFromTransaction(ctx, compliance, types.NewTransactionID(), usecase.CreateCaseInput{Title: "x"})
	gt.Error(t, err).Is(model.ErrNotFound)
}

func TestCasePolicy(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	txn := f.seedTransaction(t, 50)
	c := f.newCase(t, "policy")

	testCases := map[string]func() error{
		"investigator creates a case": func() error {
			_, err := f.uc.Case.CreateFromTransaction(ctx, investigator, txn.ID, usecase.CreateCaseInput{Title: "x"})
			return err
		},
		"auditor comments": func() error {
			_, err := f.uc.Case.AddComment(ctx, auditor, c.ID, "hi")
			return err
		},
		"compliance uploads evidence": func() error {
			_, err := f.uc.Case.UploadEvidence(ctx, compliance, c.ID, usecase.EvidenceInput{Filename: "a", FileURL: "https://x/a"})
			return err
		},
		"investigator assigns someone else": func() error {
			_, err := f.uc.Case.AssignInvestigator(ctx, investigator, c.ID, colleague.ID)
			return err
		},
		"compliance self assigns": func() error {
			_, err := f.uc.Case.AssignToSelf(ctx, compliance, c.ID)
			return err
		},
		"investigator closes": func() error {
			_, err := f.uc.Case.CloseCase(ctx, investigator, c.ID, "")
			return err
		},
		"compliance purges": func() error {
			return f.uc.Case.PurgeCase(ctx, compliance, c.ID)
		},
		"auditor lists": func() error {
			_, err := f.uc.Case.ListCases(ctx, auditor)
			return err
		},
		"compliance lists available": func() error {
			_, err := f.uc.Case.ListAvailable(ctx, compliance)
			return err
		},
	}

	for name, fn := range testCases {
		t.Run(name, func(t *testing.T) {
			gt.Error(t, fn()).Is(model.ErrForbidden)
		})
	}

	t.Run("unknown role", func(t *testing.T) {
		_, err := f.uc.Case.AddComment(ctx, model.Actor{ID: "x", Role: "root"}, c.ID, "hi")
		gt.Error(t, err).Is(model.ErrAuthRejected)
	})

	stored, err := f.repo.Case().Get(ctx, c.ID)
	gt.NoError(t, err).Required()
	gt.Array(t, stored.Timeline).Length(1)
}

func TestAssignInvestigator(t *testing.T) {
	t.Run("assigns and notifies assignee and creator", func(t *testing.T) {
		f := newFixture(t)
		ctx := context.Background()
		c := f.newCase(t, "Card testing burst")

		got, err := f.uc.Case.AssignInvestigator(ctx, compliance, c.ID, investigator.ID)
		gt.NoError(t, err).Required()
		gt.Value(t, got.AssignedTo).Equal(investigator.ID)
		gt.Value(t, got.Status).Equal(types.CaseStatusAssigned)
		gt.Value(t, got.Timeline[1].Action).Equal(model.ActionInvestigatorAssigned)
		gt.Value(t, got.Timeline[1].Details).Equal("ivan")
		gt.Value(t, got.Timeline[1].ActorRole).Equal(types.RoleCompliance)

		msgs := f.rec.ofType(model.EventSystemMessage)
		gt.Array(t, msgs).Length(2)
		gt.Value(t, msgs[0].target.Principal).Equal(investigator.ID)
		gt.Value(t, msgs[0].event.Message).Equal("You have been assigned to case: Card testing burst")
		gt.Value(t, msgs[1].target.Principal).Equal(compliance.ID)
	})

	t.Run("admin can be assigned", func(t *testing.T) {
		f := newFixture(t)
		c := f.newCase(t, "x")
		_, err := f.uc.Case.AssignInvestigator(context.Background(), compliance, c.ID, admin.ID)
		gt.NoError(t, err)
	})

	t.Run("auditor cannot be assigned", func(t *testing.T) {
		f := newFixture(t)
		c := f.newCase(t, "x")
		_, err := f.uc.Case.AssignInvestigator(context.Background(), compliance, c.ID, auditor.ID)
		gt.Error(t, err).Is(model.ErrInvalidAssignee)
		gt.Array(t, f.rec.ofType(model.EventCaseUpdated)).Length(0)
	})

	t.Run("unknown user", func(t *testing.T) {
		f := newFixture(t)
		c := f.newCase(t, "x")
		_, err := f.uc.Case.AssignInvestigator(context.Background(), compliance, c.ID, "nobody")
		gt.Error(t, err).Is(model.ErrNotFound)
	})

	t.Run("unknown case", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.uc.Case.AssignInvestigator(context.Background(), compliance, types.NewCaseID(), investigator.ID)
		gt.Error(t, err).Is(model.ErrNotFound)

		_, err = f.uc.Case.AssignToSelf(context.Background(), investigator, "not-a-uuid")
		gt.Error(t, err).Is(model.ErrNotFound)
	})

	t.Run("reassignment names the current assignee", func(t *testing.T) {
		f := newFixture(t)
		ctx := context.Background()
		c := f.newCase(t, "Handover")

		_, err := f.uc.Case.AssignInvestigator(ctx, compliance, c.ID, investigator.ID)
		gt.NoError(t, err).Required()

		// without the expected assignee an assigned case is not taken over
		_, err = f.uc.Case.AssignInvestigator(ctx, compliance, c.ID, colleague.ID)
		gt.Error(t, err).Is(model.ErrInvalidTransition)

		got, err := f.uc.Case.AssignInvestigator(ctx, compliance, c.ID, colleague.ID, usecase.ExpectAssignee(investigator.ID))
		gt.NoError(t, err).Required()
		gt.Value(t, got.AssignedTo).Equal(colleague.ID)
		gt.Value(t, got.Status).Equal(types.CaseStatusAssigned)
		gt.Array(t, got.Timeline).Length(3)
		gt.Value(t, got.Timeline[2].Details).Equal("ida")

		var unassigned int
		for _, m := range f.rec.ofType(model.EventSystemMessage) {
			if m.target.Principal == investigator.ID && m.event.Message == "You have been unassigned from case: Handover" {
				unassigned++
			}
		}
		gt.Number(t, unassigned).Equal(1)
	})

	t.Run("stale expected assignee", func(t *testing.T) {
		f := newFixture(t)
		ctx := context.Background()
		c := f.newCase(t, "x")

		_, err := f.uc.Case.AssignToSelf(ctx, colleague, c.ID)
		gt.NoError(t, err).Required()
		before := len(f.rec.ofType(model.EventCaseUpdated))

		_, err = f.uc.Case.AssignInvestigator(ctx, compliance, c.ID, admin.ID, usecase.ExpectAssignee(investigator.ID))
		gt.Error(t, err).Is(model.ErrInvalidTransition)
		gt.Array(t, f.rec.ofType(model.EventCaseUpdated)).Length(before)

		stored, err := f.repo.Case().Get(ctx, c.ID)
		gt.NoError(t, err).Required()
		gt.Value(t, stored.AssignedTo).Equal(colleague.ID)
	})

	t.Run("closed case", func(t *testing.T) {
		f := newFixture(t)
		ctx := context.Background()
		c := f.newCase(t, "x")
		_, err := f.uc.Case.CloseCase(ctx, compliance, c.ID, "false positive")
		gt.NoError(t, err).Required()

		_, err = f.uc.Case.AssignToSelf(ctx, investigator, c.ID)
		gt.Error(t, err).Is(model.ErrInvalidTransition)
	})

	t.Run("self assignment by the creator sends no message", func(t *testing.T) {
		f := newFixture(t)
		ctx := context.Background()
		txn := f.seedTransaction(t, 80)
		c, err := f.uc.Case.CreateFromTransaction(ctx, admin, txn.ID, usecase.CreateCaseInput{Title: "mine"})
		gt.NoError(t, err).Required()

		_, err = f.uc.Case.AssignToSelf(ctx, admin, c.ID)
		gt.NoError(t, err).Required()
		gt.Array(t, f.rec.ofType(model.EventSystemMessage)).Length(0)
	})
}

func TestConcurrentAssignment(t *testing.T) {
	for i := 0; i < 20; i++ {
		f := newFixture(t)
		ctx := context.Background()
		c := f.newCase(t, "race")

		var (
			wg   sync.WaitGroup
			errs [2]error
		)
		wg.Add(2)
		go func() {
			defer wg.Done()
			_, errs[0] = f.uc.Case.AssignInvestigator(ctx, compliance, c.ID, investigator.ID)
		}()
		go func() {
			defer wg.Done()
			_, errs[1] = f.uc.Case.AssignToSelf(ctx, colleague, c.ID)
		}()
		wg.Wait()

		succeeded := 0
		for _, err := range errs {
			if err == nil {
				succeeded++
			} else {
				gt.Error(t, err).Is(model.ErrInvalidTransition)
			}
		}
		gt.Number(t, succeeded).Equal(1)

		stored, err := f.repo.Case().Get(ctx, c.ID)
		gt.NoError(t, err).Required()
		gt.Array(t, stored.Timeline).Length(2)

		winner := stored.Timeline[1]
		if errs[0] == nil {
			gt.Value(t, stored.AssignedTo).Equal(investigator.ID)
			gt.Value(t, winner.Action).Equal(model.ActionInvestigatorAssigned)
		} else {
			gt.Value(t, stored.AssignedTo).Equal(colleague.ID)
			gt.Value(t, winner.Action).Equal(model.ActionSelfAssigned)
		}
		gt.Array(t, f.rec.ofType(model.EventCaseUpdated)).Length(1)
	}
}

func TestUpdateStatus(t *testing.T) {
	t.Run("unrecognized status", func(t *testing.T) {
		f := newFixture(t)
		c := f.newCase(t, "x")
		_, err := f.uc.Case.UpdateStatus(context.Background(), admin, c.ID, "Sleeping", "")
		gt.Error(t, err).Is(model.ErrInvalidTransition)
	})

	t.Run("investigator must be the assignee", func(t *testing.T) {
		f := newFixture(t)
		ctx := context.Background()
		c := f.newCase(t, "x")
		_, err := f.uc.Case.AssignToSelf(ctx, investigator, c.ID)
		gt.NoError(t, err).Required()

		_, err = f.uc.Case.UpdateStatus(ctx, colleague, c.ID, types.CaseStatusEscalated, "")
		gt.Error(t, err).Is(model.ErrForbidden)

		got, err := f.uc.Case.UpdateStatus(ctx, admin, c.ID, types.CaseStatusEscalated, "escalating")
		gt.NoError(t, err).Required()
		gt.Value(t, got.Status).Equal(types.CaseStatusEscalated)
	})

	t.Run("permissive transitions", func(t *testing.T) {
		f := newFixture(t)
		ctx := context.Background()
		c := f.newCase(t, "x")

		for _, s := range []types.CaseStatus{types.CaseStatusDismissed, types.CaseStatusInReview, types.CaseStatusAccountFrozen, types.CaseStatusOpen} {
			got, err := f.uc.Case.UpdateStatus(ctx, admin, c.ID, s, "")
			gt.NoError(t, err).Required()
			gt.Value(t, got.Status).Equal(s)
			gt.Value(t, got.ClosedAt).Nil()
		}
	})
}

func TestAddComment_TimelinePreview(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	c := f.newCase(t, "comments")

	long := strings.Repeat("a", 60)
	got, err := f.uc.Case.AddComment(ctx, compliance, c.ID, long)
	gt.NoError(t, err).Required()
	last := got.Timeline[len(got.Timeline)-1]
	gt.Value(t, last.Action).Equal(model.ActionCommentAdded)
	gt.Value(t, last.Details).Equal(strings.Repeat("a", 50) + "...")
	gt.Value(t, got.Comments[0].Text).Equal(long)
	gt.Value(t, got.Comments[0].AuthorRole).Equal(types.RoleCompliance)

	exact := strings.Repeat("b", 50)
	got, err = f.uc.Case.AddComment(ctx, compliance, c.ID, exact)
	gt.NoError(t, err).Required()
	gt.Value(t, got.Timeline[len(got.Timeline)-1].Details).Equal(exact)

	wide := strings.Repeat("詐", 55)
	got, err = f.uc.Case.AddComment(ctx, compliance, c.ID, wide)
	gt.NoError(t, err).Required()
	gt.Value(t, got.Timeline[len(got.Timeline)-1].Details).Equal(strings.Repeat("詐", 50) + "...")

	_, err = f.uc.Case.AddComment(ctx, compliance, c.ID, "   ")
	gt.Error(t, err).Is(model.ErrValidation)
}

type stubVerifier struct {
	obj *interfaces.EvidenceObject
	err error
}

func (v *stubVerifier) Verify(context.Context, string) (*interfaces.EvidenceObject, error) {
	return v.obj, v.err
}

func TestUploadEvidence(t *testing.T) {
	t.Run("records verified metadata", func(t *testing.T) {
		f := newFixture(t, usecase.WithEvidenceVerifier(&stubVerifier{obj: &interfaces.EvidenceObject{ContentType: "image/png", Size: 4096}}))
		ctx := context.Background()
		c := f.newCase(t, "evidence")
		_, err := f.uc.Case.AssignToSelf(ctx, investigator, c.ID)
		gt.NoError(t, err).Required()

		got, err := f.uc.Case.UploadEvidence(ctx, investigator, c.ID, usecase.EvidenceInput{
			Filename: "receipt.png",
			FileURL:  "gs://evidence/receipt.png",
		})
		gt.NoError(t, err).Required()
		gt.Array(t, got.Evidence).Length(1)
		gt.Value(t, got.Evidence[0].ContentType).Equal("image/png")
		gt.Value(t, got.Evidence[0].Size).Equal(int64(4096))
		gt.Value(t, got.Evidence[0].UploadedBy).Equal(investigator.ID)
		gt.Value(t, got.Timeline[len(got.Timeline)-1].Details).Equal("receipt.png")
	})

	t.Run("verification failure changes nothing", func(t *testing.T) {
		f := newFixture(t, usecase.WithEvidenceVerifier(&stubVerifier{err: model.ErrValidation}))
		ctx := context.Background()
		c := f.newCase(t, "evidence")
		before := f.rec.count()

		_, err := f.uc.Case.UploadEvidence(ctx, investigator, c.ID, usecase.EvidenceInput{Filename: "a", FileURL: "gs://evidence/a"})
		gt.Error(t, err).Is(model.ErrValidation)
		gt.Number(t, f.rec.count()).Equal(before)
	})
}

func TestCloseCase(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	c := f.newCase(t, "close")

	got, err := f.uc.Case.CloseCase(ctx, compliance, c.ID, "refund issued")
	gt.NoError(t, err).Required()
	gt.Value(t, got.Status).Equal(types.CaseStatusClosed)
	gt.Value(t, got.Resolution).Equal("refund issued")
	gt.Value(t, got.ClosedBy).Equal(compliance.ID)
	gt.Value(t, got.ClosedAt).NotNil()
	gt.Value(t, got.Timeline[len(got.Timeline)-1].Action).Equal(model.ActionCaseClosed)

	_, err = f.uc.Case.CloseCase(ctx, compliance, c.ID, "again")
	gt.Error(t, err).Is(model.ErrInvalidTransition)

	stored, err := f.repo.Case().Get(ctx, c.ID)
	gt.NoError(t, err).Required()
	gt.Array(t, stored.Timeline).Length(2)
	gt.Value(t, stored.Resolution).Equal("refund issued")
}

func TestPurgeCase(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	c := f.newCase(t, "purge")

	gt.NoError(t, f.uc.Case.PurgeCase(ctx, admin, c.ID)).Required()
	_, err := f.uc.Case.GetCase(ctx, admin, c.ID)
	gt.Error(t, err).Is(model.ErrNotFound)

	deleted := f.rec.ofType(model.EventCaseDeleted)
	gt.Array(t, deleted).Length(1)
	gt.Value(t, deleted[0].event.CaseID).Equal(c.ID)
	gt.Value(t, deleted[0].event.DeletedID).Equal(c.ID.String())
	gt.Value(t, deleted[0].event.ActorID).Equal(admin.ID)
	gt.Array(t, deleted[0].target.Rooms).Equal([]policy.Room{policy.RoomCaseStream, policy.RoomCases})

	gt.Error(t, f.uc.Case.PurgeCase(ctx, admin, c.ID)).Is(model.ErrNotFound)
	gt.Array(t, f.rec.ofType(model.EventCaseDeleted)).Length(1)
}

func TestStoreUnavailable(t *testing.T) {
	t.Run("failed update is invisible", func(t *testing.T) {
		mem := memory.New()
		seedUsers(t, mem)
		repo := newFlakyRepo(mem)
		f := newFixtureWithRepo(t, mem, repo)
		ctx := context.Background()
		c := f.newCase(t, "flaky")
		before := f.rec.count()

		repo.cases.failUpdate = true
		_, err := f.uc.Case.AssignToSelf(ctx, investigator, c.ID)
		gt.Error(t, err).Is(model.ErrStoreUnavailable)
		gt.Number(t, f.rec.count()).Equal(before)

		stored, err := mem.Case().Get(ctx, c.ID)
		gt.NoError(t, err).Required()
		gt.Value(t, stored.AssignedTo).Equal(types.PrincipalID(""))
		gt.Array(t, stored.Timeline).Length(1)

		// the lock is released after a failure
		repo.cases.failUpdate = false
		_, err = f.uc.Case.AssignToSelf(ctx, investigator, c.ID)
		gt.NoError(t, err)
	})

	t.Run("failed create publishes nothing", func(t *testing.T) {
		mem := memory.New()
		seedUsers(t, mem)
		repo := newFlakyRepo(mem)
		repo.cases.failCreate = true
		f := newFixtureWithRepo(t, mem, repo)
		txn := f.seedTransaction(t, 90)

		_, err := f.uc.Case.CreateFromTransaction(context.Background(), compliance, txn.ID, usecase.CreateCaseInput{Title: "x"})
		gt.Error(t, err).Is(model.ErrStoreUnavailable)
		gt.Number(t, f.rec.count()).Equal(0)
	})
}

func TestCaseEventsFollowCommitOrder(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	c := f.newCase(t, "ordering")

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.uc.Case.AddComment(ctx, compliance, c.ID, "note")
			gt.NoError(t, err)
		}()
	}
	wg.Wait()

	updates := f.rec.ofType(model.EventCaseUpdated)
	gt.Array(t, updates).Length(20)
	for i, u := range updates {
		gt.Array(t, u.event.Case.Timeline).Length(i + 2)
	}
}

func TestCaseQueries(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	mine := f.newCase(t, "mine")
	theirs := f.newCase(t, "theirs")
	open := f.newCase(t, "open")
	closed := f.newCase(t, "closed")

	_, err := f.uc.Case.AssignToSelf(ctx, investigator, mine.ID)
	gt.NoError(t, err).Required()
	_, err = f.uc.Case.AssignToSelf(ctx, colleague, theirs.ID)
	gt.NoError(t, err).Required()
	_, err = f.uc.Case.CloseCase(ctx, compliance, closed.ID, "")
	gt.NoError(t, err).Required()

	t.Run("investigator sees assigned cases", func(t *testing.T) {
		cases, err := f.uc.Case.ListCases(ctx, investigator)
		gt.NoError(t, err).Required()
		gt.Array(t, cases).Length(1)
		gt.Value(t, cases[0].ID).Equal(mine.ID)
	})

	t.Run("compliance sees everything newest first", func(t *testing.T) {
		cases, err := f.uc.Case.ListCases(ctx, compliance)
		gt.NoError(t, err).Required()
		gt.Array(t, cases).Length(4)
		gt.Value(t, cases[0].ID).Equal(closed.ID)
	})

	t.Run("available cases", func(t *testing.T) {
		cases, err := f.uc.Case.ListAvailable(ctx, investigator)
		gt.NoError(t, err).Required()
		gt.Array(t, cases).Length(1)
		gt.Value(t, cases[0].ID).Equal(open.ID)
	})

	t.Run("investigator may read any case", func(t *testing.T) {
		got, err := f.uc.Case.GetCase(ctx, investigator, theirs.ID)
		gt.NoError(t, err).Required()
		gt.Value(t, got.Title).Equal("theirs")
	})

	t.Run("stats", func(t *testing.T) {
		stats, err := f.uc.Case.Stats(ctx, compliance)
		gt.NoError(t, err).Required()
		gt.Value(t, stats.Total).Equal(4)
		gt.Value(t, stats.Closed).Equal(1)
		gt.Value(t, stats.Open).Equal(3)
		gt.Value(t, stats.Unassigned).Equal(2)
		gt.Value(t, stats.ByStatus[types.CaseStatusAssigned]).Equal(2)
		gt.Value(t, stats.AverageRiskScore).Equal(85.0)
	})
}
