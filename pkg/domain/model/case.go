package model

import (
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/argus/pkg/domain/types"
)

// Case is a fraud investigation derived from exactly one transaction or alert
type Case struct {
	ID            types.CaseID        `json:"id" firestore:"id"`
	TransactionID types.TransactionID `json:"transactionId,omitempty" firestore:"transaction_id"`
	AlertID       types.AlertID       `json:"alertId,omitempty" firestore:"alert_id"`
	CreatedBy     types.PrincipalID   `json:"createdBy" firestore:"created_by"`
	AssignedTo    types.PrincipalID   `json:"assignedTo,omitempty" firestore:"assigned_to"`
	AssignedGroup string              `json:"assignedGroup,omitempty" firestore:"assigned_group"`
	Title         string              `json:"title" firestore:"title"`
	Description   string              `json:"description" firestore:"description"`
	RiskScore     int                 `json:"riskScore" firestore:"risk_score"`
	RiskReason    string              `json:"riskReason,omitempty" firestore:"risk_reason"`
	Priority      types.Priority      `json:"priority" firestore:"priority"`
	Status        types.CaseStatus    `json:"status" firestore:"status"`
	Timeline      []TimelineEntry     `json:"timeline" firestore:"timeline"`
	Comments      []Comment           `json:"comments" firestore:"comments"`
	Evidence      []Evidence          `json:"evidence" firestore:"evidence"`
	Resolution    string              `json:"resolution,omitempty" firestore:"resolution"`
	CreatedAt     time.Time           `json:"createdAt" firestore:"created_at"`
	UpdatedAt     time.Time           `json:"updatedAt" firestore:"updated_at"`
	ClosedAt      *time.Time          `json:"closedAt,omitempty" firestore:"closed_at"`
	ClosedBy      types.PrincipalID   `json:"closedBy,omitempty" firestore:"closed_by"`
}

// TimelineEntry is one immutable line of the case audit trail. ActorRole is
// the role at the time of the action.
type TimelineEntry struct {
	Timestamp time.Time         `json:"timestamp" firestore:"timestamp"`
	Action    string            `json:"action" firestore:"action"`
	Actor     types.PrincipalID `json:"actor" firestore:"actor"`
	ActorRole types.Role        `json:"actorRole" firestore:"actor_role"`
	Details   string            `json:"details" firestore:"details"`
}

// Comment posted on a case
type Comment struct {
	ID         string            `json:"id" firestore:"id"`
	Author     types.PrincipalID `json:"author" firestore:"author"`
	AuthorRole types.Role        `json:"authorRole" firestore:"author_role"`
	Text       string            `json:"text" firestore:"text"`
	CreatedAt  time.Time         `json:"createdAt" firestore:"created_at"`
}

// Evidence is a reference to a file attached to a case
type Evidence struct {
	ID          string            `json:"id" firestore:"id"`
	Filename    string            `json:"filename" firestore:"filename"`
	FileURL     string            `json:"fileUrl" firestore:"file_url"`
	Description string            `json:"description,omitempty" firestore:"description"`
	ContentType string            `json:"contentType,omitempty" firestore:"content_type"`
	Size        int64             `json:"size,omitempty" firestore:"size"`
	UploadedBy  types.PrincipalID `json:"uploadedBy" firestore:"uploaded_by"`
	UploadedAt  time.Time         `json:"uploadedAt" firestore:"uploaded_at"`
}

// Timeline actions
const (
	ActionCreatedFromTransaction = "Case created from transaction"
	ActionCreatedFromAlert       = "Case created from alert"
	ActionInvestigatorAssigned   = "Investigator assigned"
	ActionSelfAssigned           = "Case self-assigned"
	ActionCommentAdded           = "Comment added"
	ActionEvidenceUploaded       = "Evidence uploaded"
	ActionCaseClosed             = "Case closed"
)

// ActionStatusChanged builds the timeline action for a status update
func ActionStatusChanged(status types.CaseStatus) string {
	return "Status changed to " + status.String()
}

// commentPreviewLength is the number of characters of a comment copied into
// the timeline
const commentPreviewLength = 50

// CommentPreview shortens text for the timeline, marking truncation with "..."
func CommentPreview(text string) string {
	runes := []rune(text)
	if len(runes) <= commentPreviewLength {
		return text
	}
	return string(runes[:commentPreviewLength]) + "..."
}

// AppendTimeline adds an entry attributed to actor and bumps UpdatedAt.
func (c *Case) AppendTimeline(now time.Time, actor Actor, action, details string) {
	c.Timeline = append(c.Timeline, TimelineEntry{
		Timestamp: now,
		Action:    action,
		Actor:     actor.ID,
		ActorRole: actor.Role,
		Details:   details,
	})
	c.UpdatedAt = now
}

// SetStatus moves the case to status, maintaining the closure fields.
func (c *Case) SetStatus(now time.Time, actor Actor, status types.CaseStatus) {
	c.Status = status
	if status == types.CaseStatusClosed {
		closedAt := now
		c.ClosedAt = &closedAt
		c.ClosedBy = actor.ID
	} else {
		c.ClosedAt = nil
		c.ClosedBy = ""
	}
}

// IsClosed reports whether the case reached the terminal state
func (c *Case) IsClosed() bool {
	return c.Status.Normalize().IsTerminal()
}

// Validate checks the structural invariants of a case
func (c *Case) Validate() error {
	if c.ID == "" {
		return goerr.Wrap(ErrValidation, "case ID is required")
	}
	if (c.TransactionID == "") == (c.AlertID == "") {
		return goerr.Wrap(ErrValidation, "case must originate from exactly one transaction or alert",
			goerr.V(CaseIDKey, c.ID),
			goerr.V(TransactionIDKey, c.TransactionID),
			goerr.V(AlertIDKey, c.AlertID))
	}
	if !c.Status.IsValid() {
		return goerr.Wrap(ErrValidation, "invalid case status", goerr.V(CaseIDKey, c.ID), goerr.V(StatusKey, c.Status))
	}
	if !c.Priority.IsValid() {
		return goerr.Wrap(ErrValidation, "invalid case priority", goerr.V(CaseIDKey, c.ID), goerr.V("priority", c.Priority))
	}
	if (c.ClosedAt != nil) != (c.Status == types.CaseStatusClosed) {
		return goerr.Wrap(ErrValidation, "closedAt must be set if and only if the case is closed",
			goerr.V(CaseIDKey, c.ID), goerr.V(StatusKey, c.Status))
	}
	return nil
}
