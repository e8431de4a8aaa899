package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/argus/pkg/domain/interfaces"
	"github.com/secmon-lab/argus/pkg/domain/model"
	"github.com/secmon-lab/argus/pkg/domain/policy"
	"github.com/secmon-lab/argus/pkg/domain/types"
	"github.com/secmon-lab/argus/pkg/utils/logging"
)

// CaseUseCase is the case lifecycle state machine. Every mutation of a case
// runs under a lock keyed by the case ID: load, mutate, persist, publish.
type CaseUseCase struct {
	*env
	verifier interfaces.EvidenceVerifier
}

// CreateCaseInput carries the caller supplied fields of a new case
type CreateCaseInput struct {
	Title       string
	Description string
	Priority    types.Priority
}

func (in CreateCaseInput) validate() error {
	if strings.TrimSpace(in.Title) == "" {
		return goerr.Wrap(model.ErrValidation, "case title is required")
	}
	if in.Priority != "" && !in.Priority.IsValid() {
		return goerr.Wrap(model.ErrValidation, "invalid priority", goerr.V("priority", in.Priority))
	}
	return nil
}

func (in CreateCaseInput) newCase(now time.Time, actor model.Actor) *model.Case {
	return &model.Case{
		ID:          types.NewCaseID(),
		CreatedBy:   actor.ID,
		Title:       in.Title,
		Description: in.Description,
		Priority:    in.Priority.Normalize(),
		Status:      types.CaseStatusOpen,
		Timeline:    []model.TimelineEntry{},
		Comments:    []model.Comment{},
		Evidence:    []model.Evidence{},
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

func caseRooms() policy.Target {
	return policy.ToRooms(policy.RoomCaseStream, policy.RoomCases)
}

func (uc *CaseUseCase) authorize(actor model.Actor, op policy.Operation) error {
	if err := actor.Validate(); err != nil {
		return err
	}
	return policy.Require(actor.Role, op)
}

// CreateFromTransaction opens a case for a monitored transaction and
// snapshots its risk score.
func (uc *CaseUseCase) CreateFromTransaction(ctx context.Context, actor model.Actor, transactionID types.TransactionID, in CreateCaseInput) (*model.Case, error) {
	if err := uc.authorize(actor, policy.OpCreateCase); err != nil {
		return nil, err
	}
	if err := in.validate(); err != nil {
		return nil, err
	}

	var txn *model.Transaction
	if err := uc.store(ctx, "failed to get transaction", func(ctx context.Context) (err error) {
		txn, err = uc.repo.Transaction().Get(ctx, transactionID)
		return err
	}, goerr.V(model.TransactionIDKey, transactionID)); err != nil {
		return nil, err
	}

	now := uc.now()
	c := in.newCase(now, actor)
	c.TransactionID = txn.ID
	c.RiskScore = txn.RiskScore
	c.RiskReason = txn.RiskReason
	c.AppendTimeline(now, actor, model.ActionCreatedFromTransaction, "")

	return uc.create(ctx, actor, c, nil)
}

// CreateFromAlert opens a case for an alert and marks the alert resolved.
// Resolving an already resolved alert is not an error. The alert is resolved
// only after the case is stored; when resolving fails the case is removed
// again and nothing is announced.
func (uc *CaseUseCase) CreateFromAlert(ctx context.Context, actor model.Actor, alertID types.AlertID, in CreateCaseInput) (*model.Case, error) {
	if err := uc.authorize(actor, policy.OpCreateCase); err != nil {
		return nil, err
	}
	if err := in.validate(); err != nil {
		return nil, err
	}

	var alert *model.Alert
	if err := uc.store(ctx, "failed to get alert", func(ctx context.Context) (err error) {
		alert, err = uc.repo.Alert().Get(ctx, alertID)
		return err
	}, goerr.V(model.AlertIDKey, alertID)); err != nil {
		return nil, err
	}

	now := uc.now()
	c := in.newCase(now, actor)
	c.AlertID = alert.ID
	c.RiskScore = alert.RiskScore
	c.RiskReason = alert.Reason
	c.AppendTimeline(now, actor, model.ActionCreatedFromAlert, "")

	// Resolve keeps the first ResolvedAt when called again.
	return uc.create(ctx, actor, c, func(ctx context.Context) error {
		return uc.store(ctx, "failed to resolve alert", func(ctx context.Context) error {
			_, err := uc.repo.Alert().Resolve(ctx, alert.ID, now)
			return err
		}, goerr.V(model.AlertIDKey, alertID), goerr.V(model.CaseIDKey, c.ID))
	})
}

// create stores a new case. commit, when set, runs after the case is stored
// and before anything is published; if it fails the case is deleted again.
func (uc *CaseUseCase) create(ctx context.Context, actor model.Actor, c *model.Case, commit func(ctx context.Context) error) (*model.Case, error) {
	if err := c.Validate(); err != nil {
		return nil, goerr.Wrap(err, "invalid new case")
	}

	unlock, err := uc.lock(ctx, c.ID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	var created *model.Case
	if err := uc.store(ctx, "failed to create case", func(ctx context.Context) (err error) {
		created, err = uc.repo.Case().Create(ctx, c)
		return err
	}, goerr.V(model.CaseIDKey, c.ID)); err != nil {
		return nil, err
	}

	if commit != nil {
		if err := commit(ctx); err != nil {
			uc.rollbackCreate(ctx, created.ID)
			return nil, err
		}
	}

	evt := model.NewCaseEvent(model.EventNewCase, created, actor.ID)
	uc.publish(ctx, evt, caseRooms())
	uc.auditCase(ctx, actor, created)
	uc.notify(ctx, model.NewCaseEvent(model.EventNewCase, created, actor.ID))

	return created, nil
}

func (uc *CaseUseCase) rollbackCreate(ctx context.Context, id types.CaseID) {
	ctx = context.WithoutCancel(ctx)
	if err := uc.store(ctx, "failed to roll back case", func(ctx context.Context) error {
		return uc.repo.Case().Delete(ctx, id)
	}, goerr.V(model.CaseIDKey, id)); err != nil {
		logging.From(ctx).Error("orphan case left after failed create", "case_id", id, "error", err)
	}
}

// auditCase records the latest timeline entry of a case
func (uc *CaseUseCase) auditCase(ctx context.Context, actor model.Actor, c *model.Case) {
	if len(c.Timeline) == 0 {
		return
	}
	last := c.Timeline[len(c.Timeline)-1]
	uc.audit(ctx, actor, last.Action, model.AuditTargetCase, c.ID.String(), last.Details)
}

func (uc *CaseUseCase) lock(ctx context.Context, id types.CaseID) (func(), error) {
	unlock, err := uc.locks.Lock(ctx, id.String())
	if err != nil {
		return nil, goerr.Wrap(model.ErrStoreUnavailable, "timed out waiting for case",
			goerr.V(model.CaseIDKey, id),
			goerr.V("cause", err.Error()))
	}
	return unlock, nil
}

// mutate serializes a read-modify-write of one case. apply works on a copy
// loaded from the store; nothing is persisted or published when it fails.
// announce runs after the write commits and before the lock is released so
// that events of one case leave in commit order.
func (uc *CaseUseCase) mutate(ctx context.Context, actor model.Actor, id types.CaseID, apply func(c *model.Case, now time.Time) error, announce func(ctx context.Context, c *model.Case)) (*model.Case, error) {
	if err := id.Validate(); err != nil {
		return nil, goerr.Wrap(model.ErrNotFound, "case not found", goerr.V(model.CaseIDKey, id))
	}

	unlock, err := uc.lock(ctx, id)
	if err != nil {
		return nil, err
	}
	defer unlock()

	var current *model.Case
	if err := uc.store(ctx, "failed to get case", func(ctx context.Context) (err error) {
		current, err = uc.repo.Case().Get(ctx, id)
		return err
	}, goerr.V(model.CaseIDKey, id)); err != nil {
		return nil, err
	}

	now := uc.now()
	if err := apply(current, now); err != nil {
		return nil, err
	}
	if err := current.Validate(); err != nil {
		return nil, goerr.Wrap(err, "case invariant violated")
	}

	var saved *model.Case
	if err := uc.store(ctx, "failed to update case", func(ctx context.Context) (err error) {
		saved, err = uc.repo.Case().Update(ctx, current)
		return err
	}, goerr.V(model.CaseIDKey, id)); err != nil {
		return nil, err
	}

	uc.publish(ctx, model.NewCaseEvent(model.EventCaseUpdated, saved, actor.ID), caseRooms())
	if announce != nil {
		announce(ctx, saved)
	}
	uc.auditCase(ctx, actor, saved)
	uc.notify(ctx, model.NewCaseEvent(model.EventCaseUpdated, saved, actor.ID))

	return saved, nil
}

func requireOpen(c *model.Case) error {
	if c.IsClosed() {
		return goerr.Wrap(model.ErrInvalidTransition, "case is closed", goerr.V(model.CaseIDKey, c.ID))
	}
	return nil
}

// assign applies the assignment transition as a compare-and-swap: the
// current assignee must be the expected one ("" for an unassigned case), so
// racing assignments from the same starting point leave exactly one winner.
func assign(c *model.Case, now time.Time, actor model.Actor, expected, assignee types.PrincipalID, action string) error {
	if err := requireOpen(c); err != nil {
		return err
	}
	if c.AssignedTo != expected {
		return goerr.Wrap(model.ErrInvalidTransition, "case assignee has changed",
			goerr.V(model.CaseIDKey, c.ID),
			goerr.V("assigned_to", c.AssignedTo),
			goerr.V("expected_assignee", expected))
	}

	c.AssignedTo = assignee
	c.AssignedGroup = ""
	c.SetStatus(now, actor, types.CaseStatusAssigned)
	c.AppendTimeline(now, actor, action, assignee.String())
	return nil
}

// AssignOption configures AssignInvestigator
type AssignOption func(*assignOptions)

type assignOptions struct {
	expected types.PrincipalID
}

// ExpectAssignee reassigns a case currently held by id. Without it only an
// unassigned case can be assigned.
func ExpectAssignee(id types.PrincipalID) AssignOption {
	return func(o *assignOptions) {
		o.expected = id
	}
}

// AssignInvestigator assigns the case to another principal, who must be
// allowed to own cases. The assignee and the creator are notified, and on
// reassignment so is the previous assignee.
func (uc *CaseUseCase) AssignInvestigator(ctx context.Context, actor model.Actor, caseID types.CaseID, investigatorID types.PrincipalID, opts ...AssignOption) (*model.Case, error) {
	if err := uc.authorize(actor, policy.OpAssignInvestigator); err != nil {
		return nil, err
	}

	var o assignOptions
	for _, opt := range opts {
		opt(&o)
	}

	var investigator *model.User
	if err := uc.store(ctx, "failed to get investigator", func(ctx context.Context) (err error) {
		investigator, err = uc.repo.User().Get(ctx, investigatorID)
		return err
	}, goerr.V(model.PrincipalIDKey, investigatorID)); err != nil {
		return nil, err
	}
	if !policy.CanBeAssignee(investigator.Role) {
		return nil, goerr.Wrap(model.ErrInvalidAssignee, "principal cannot be assigned to cases",
			goerr.V(model.PrincipalIDKey, investigatorID),
			goerr.V(model.RoleKey, investigator.Role))
	}

	var previous types.PrincipalID
	return uc.mutate(ctx, actor, caseID, func(c *model.Case, now time.Time) error {
		previous = c.AssignedTo
		return assign(c, now, actor, o.expected, investigator.ID, model.ActionInvestigatorAssigned)
	}, func(ctx context.Context, c *model.Case) {
		uc.publish(ctx,
			model.NewSystemMessageEvent("You have been assigned to case: "+c.Title, actor.ID),
			policy.ToPrincipal(c.AssignedTo))
		if previous != "" && previous != c.AssignedTo {
			uc.publish(ctx,
				model.NewSystemMessageEvent("You have been unassigned from case: "+c.Title, actor.ID),
				policy.ToPrincipal(previous))
		}
		uc.publish(ctx,
			model.NewSystemMessageEvent("Case \""+c.Title+"\" was assigned to "+c.AssignedTo.String(), actor.ID),
			policy.ToPrincipal(c.CreatedBy))
	})
}

// AssignToSelf makes the acting principal the assignee
func (uc *CaseUseCase) AssignToSelf(ctx context.Context, actor model.Actor, caseID types.CaseID) (*model.Case, error) {
	if err := uc.authorize(actor, policy.OpAssignSelf); err != nil {
		return nil, err
	}

	return uc.mutate(ctx, actor, caseID, func(c *model.Case, now time.Time) error {
		return assign(c, now, actor, "", actor.ID, model.ActionSelfAssigned)
	}, func(ctx context.Context, c *model.Case) {
		if c.CreatedBy == actor.ID {
			return
		}
		uc.publish(ctx,
			model.NewSystemMessageEvent("Case \""+c.Title+"\" was picked up by "+actor.ID.String(), actor.ID),
			policy.ToPrincipal(c.CreatedBy))
	})
}

// UpdateStatus records an investigator decision. Any recognized status may
// follow any other; only a closed case can no longer change. Investigators
// may only update cases assigned to them.
func (uc *CaseUseCase) UpdateStatus(ctx context.Context, actor model.Actor, caseID types.CaseID, status types.CaseStatus, notes string) (*model.Case, error) {
	if err := uc.authorize(actor, policy.OpUpdateStatus); err != nil {
		return nil, err
	}
	if !status.IsValid() {
		return nil, goerr.Wrap(model.ErrInvalidTransition, "unrecognized case status",
			goerr.V(model.CaseIDKey, caseID),
			goerr.V(model.StatusKey, status))
	}

	return uc.mutate(ctx, actor, caseID, func(c *model.Case, now time.Time) error {
		if actor.Role != types.RoleAdmin && c.AssignedTo != actor.ID {
			return goerr.Wrap(model.ErrForbidden, "case is not assigned to the actor",
				goerr.V(model.CaseIDKey, c.ID),
				goerr.V(model.PrincipalIDKey, actor.ID))
		}
		if err := requireOpen(c); err != nil {
			return err
		}

		c.SetStatus(now, actor, status)
		c.AppendTimeline(now, actor, model.ActionStatusChanged(status), notes)
		return nil
	}, nil)
}

// AddComment posts a comment and records a preview of it in the timeline
func (uc *CaseUseCase) AddComment(ctx context.Context, actor model.Actor, caseID types.CaseID, text string) (*model.Case, error) {
	if err := uc.authorize(actor, policy.OpAddComment); err != nil {
		return nil, err
	}
	if strings.TrimSpace(text) == "" {
		return nil, goerr.Wrap(model.ErrValidation, "comment text is required", goerr.V(model.CaseIDKey, caseID))
	}

	return uc.mutate(ctx, actor, caseID, func(c *model.Case, now time.Time) error {
		c.Comments = append(c.Comments, model.Comment{
			ID:         uuid.NewString(),
			Author:     actor.ID,
			AuthorRole: actor.Role,
			Text:       text,
			CreatedAt:  now,
		})
		c.AppendTimeline(now, actor, model.ActionCommentAdded, model.CommentPreview(text))
		return nil
	}, nil)
}

// EvidenceInput describes an uploaded evidence file
type EvidenceInput struct {
	Filename    string
	FileURL     string
	Description string
}

// UploadEvidence attaches an evidence reference. When a verifier is
// configured the referenced object must exist; its metadata is recorded.
func (uc *CaseUseCase) UploadEvidence(ctx context.Context, actor model.Actor, caseID types.CaseID, in EvidenceInput) (*model.Case, error) {
	if err := uc.authorize(actor, policy.OpUploadEvidence); err != nil {
		return nil, err
	}
	if in.Filename == "" || in.FileURL == "" {
		return nil, goerr.Wrap(model.ErrValidation, "filename and fileUrl are required", goerr.V(model.CaseIDKey, caseID))
	}

	var object *interfaces.EvidenceObject
	if uc.verifier != nil {
		obj, err := uc.verifier.Verify(ctx, in.FileURL)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to verify evidence", goerr.V(model.CaseIDKey, caseID), goerr.V("file_url", in.FileURL))
		}
		object = obj
	}

	return uc.mutate(ctx, actor, caseID, func(c *model.Case, now time.Time) error {
		evidence := model.Evidence{
			ID:          uuid.NewString(),
			Filename:    in.Filename,
			FileURL:     in.FileURL,
			Description: in.Description,
			UploadedBy:  actor.ID,
			UploadedAt:  now,
		}
		if object != nil {
			evidence.ContentType = object.ContentType
			evidence.Size = object.Size
		}

		c.Evidence = append(c.Evidence, evidence)
		c.AppendTimeline(now, actor, model.ActionEvidenceUploaded, in.Filename)
		return nil
	}, nil)
}

// CloseCase force-closes a case with a resolution
func (uc *CaseUseCase) CloseCase(ctx context.Context, actor model.Actor, caseID types.CaseID, resolution string) (*model.Case, error) {
	if err := uc.authorize(actor, policy.OpCloseCase); err != nil {
		return nil, err
	}

	return uc.mutate(ctx, actor, caseID, func(c *model.Case, now time.Time) error {
		if err := requireOpen(c); err != nil {
			return err
		}

		c.Resolution = resolution
		c.SetStatus(now, actor, types.CaseStatusClosed)
		c.AppendTimeline(now, actor, model.ActionCaseClosed, resolution)
		return nil
	}, nil)
}

// PurgeCase physically removes a case
func (uc *CaseUseCase) PurgeCase(ctx context.Context, actor model.Actor, caseID types.CaseID) error {
	if err := uc.authorize(actor, policy.OpPurgeCase); err != nil {
		return err
	}

	unlock, err := uc.lock(ctx, caseID)
	if err != nil {
		return err
	}
	defer unlock()

	if err := uc.store(ctx, "failed to delete case", func(ctx context.Context) error {
		return uc.repo.Case().Delete(ctx, caseID)
	}, goerr.V(model.CaseIDKey, caseID)); err != nil {
		return err
	}

	uc.publish(ctx, model.NewCaseDeletedEvent(caseID, actor.ID), caseRooms())
	uc.audit(ctx, actor, model.AuditActionCasePurged, model.AuditTargetCase, caseID.String(), "")
	return nil
}
