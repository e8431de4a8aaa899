package model

import (
	"time"

	"github.com/secmon-lab/argus/pkg/domain/types"
)

// EventType names a domain push sent to live connections
type EventType string

const (
	EventNewCase            EventType = "new-case"
	EventCaseUpdated        EventType = "case-updated"
	EventCaseDeleted        EventType = "case-deleted"
	EventNewTransaction     EventType = "new-transaction"
	EventTransactionDeleted EventType = "transaction-deleted"
	EventNewAlert           EventType = "new-alert"
	EventSystemMessage      EventType = "system-message"

	EventRuleCreated         EventType = "rule-created"
	EventRuleUpdated         EventType = "rule-updated"
	EventRuleDeleted         EventType = "rule-deleted"
	EventNewLog              EventType = "new-log"
	EventNewAnnouncement     EventType = "new-announcement"
	EventAnnouncementUpdated EventType = "announcement-updated"
	EventAnnouncementDeleted EventType = "announcement-deleted"
)

// Event is a domain event handed to the broadcaster after a mutation
// commits. Timestamp and Seq are assigned by the broadcaster at publish time.
type Event struct {
	Type            EventType         `json:"-"`
	CaseID          types.CaseID      `json:"caseId,omitempty"`
	ActorID         types.PrincipalID `json:"actorId,omitempty"`
	ResultingStatus types.CaseStatus  `json:"resultingStatus,omitempty"`
	Timestamp       time.Time         `json:"timestamp"`
	Seq             uint64            `json:"seq"`

	Case           *Case        `json:"case,omitempty"`
	Transaction    *Transaction `json:"transaction,omitempty"`
	AlertGenerated *bool        `json:"alertGenerated,omitempty"`
	Alert          *Alert       `json:"alert,omitempty"`
	DeletedID      string       `json:"id,omitempty"`
	Message        string       `json:"message,omitempty"`

	Rule         *Rule         `json:"rule,omitempty"`
	Log          *AuditLog     `json:"log,omitempty"`
	Announcement *Announcement `json:"announcement,omitempty"`
}

// NewCaseEvent describes a committed case mutation
func NewCaseEvent(eventType EventType, c *Case, actor types.PrincipalID) *Event {
	return &Event{
		Type:            eventType,
		CaseID:          c.ID,
		ActorID:         actor,
		ResultingStatus: c.Status,
		Case:            c,
	}
}

// NewCaseDeletedEvent announces a purged case
func NewCaseDeletedEvent(id types.CaseID, actor types.PrincipalID) *Event {
	return &Event{
		Type:      EventCaseDeleted,
		CaseID:    id,
		ActorID:   actor,
		DeletedID: id.String(),
	}
}

// NewTransactionEvent announces an ingested transaction
func NewTransactionEvent(txn *Transaction, alertGenerated bool) *Event {
	return &Event{
		Type:           EventNewTransaction,
		ActorID:        txn.CreatedBy,
		Transaction:    txn,
		AlertGenerated: &alertGenerated,
	}
}

// NewTransactionDeletedEvent announces a removed transaction
func NewTransactionDeletedEvent(id types.TransactionID, actor types.PrincipalID) *Event {
	return &Event{
		Type:      EventTransactionDeleted,
		ActorID:   actor,
		DeletedID: id.String(),
	}
}

// NewAlertEvent announces a raised alert
func NewAlertEvent(alert *Alert) *Event {
	return &Event{
		Type:  EventNewAlert,
		Alert: alert,
	}
}

// NewSystemMessageEvent carries a free-text operator message
func NewSystemMessageEvent(message string, actor types.PrincipalID) *Event {
	return &Event{
		Type:    EventSystemMessage,
		ActorID: actor,
		Message: message,
	}
}

// NewRuleEvent announces a created or updated scoring rule
func NewRuleEvent(eventType EventType, rule *Rule, actor types.PrincipalID) *Event {
	return &Event{
		Type:    eventType,
		ActorID: actor,
		Rule:    rule,
	}
}

// NewRuleDeletedEvent announces a removed scoring rule
func NewRuleDeletedEvent(id types.RuleID, actor types.PrincipalID) *Event {
	return &Event{
		Type:      EventRuleDeleted,
		ActorID:   actor,
		DeletedID: id.String(),
	}
}

// NewLogEvent pushes an appended audit log entry
func NewLogEvent(log *AuditLog) *Event {
	return &Event{
		Type:    EventNewLog,
		ActorID: log.ActorID,
		Log:     log,
	}
}

// NewAnnouncementEvent announces a created or updated announcement
func NewAnnouncementEvent(eventType EventType, a *Announcement, actor types.PrincipalID) *Event {
	return &Event{
		Type:         eventType,
		ActorID:      actor,
		Announcement: a,
	}
}

// NewAnnouncementDeletedEvent announces a removed announcement
func NewAnnouncementDeletedEvent(id types.AnnouncementID, actor types.PrincipalID) *Event {
	return &Event{
		Type:      EventAnnouncementDeleted,
		ActorID:   actor,
		DeletedID: id.String(),
	}
}
