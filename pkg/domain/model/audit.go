package model

import (
	"time"

	"github.com/secmon-lab/argus/pkg/domain/types"
)

// Audit target types
const (
	AuditTargetCase          = "case"
	AuditTargetTransaction   = "transaction"
	AuditTargetAlert         = "alert"
	AuditTargetRule          = "rule"
	AuditTargetAnnouncement  = "announcement"
	AuditTargetSystemMessage = "system_message"
)

// Audit actions that are not case timeline entries
const (
	AuditActionCasePurged          = "Case purged"
	AuditActionTransactionCreated  = "Transaction created"
	AuditActionTransactionDeleted  = "Transaction deleted"
	AuditActionAlertResolved       = "Alert resolved"
	AuditActionRuleCreated         = "Rule created"
	AuditActionRuleUpdated         = "Rule updated"
	AuditActionRuleDeleted         = "Rule deleted"
	AuditActionAnnouncementCreated = "Announcement created"
	AuditActionAnnouncementUpdated = "Announcement updated"
	AuditActionAnnouncementDeleted = "Announcement deleted"
	AuditActionSystemMessageSent   = "System message sent"
)

// AuditLog is an append-only record of a committed mutation
type AuditLog struct {
	ID         types.AuditLogID  `json:"id" firestore:"id"`
	ActorID    types.PrincipalID `json:"actorId" firestore:"actor_id"`
	ActorRole  types.Role        `json:"actorRole" firestore:"actor_role"`
	Action     string            `json:"action" firestore:"action"`
	TargetType string            `json:"targetType" firestore:"target_type"`
	TargetID   string            `json:"targetId,omitempty" firestore:"target_id"`
	Details    string            `json:"details,omitempty" firestore:"details"`
	CreatedAt  time.Time         `json:"createdAt" firestore:"created_at"`
}
