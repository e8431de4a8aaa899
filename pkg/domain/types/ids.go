package types

import (
	"github.com/google/uuid"
	"github.com/m-mizutani/goerr/v2"
)

// CaseID identifies a case
type CaseID string

// NewCaseID generates a time-ordered case ID
func NewCaseID() CaseID {
	return CaseID(uuid.Must(uuid.NewV7()).String())
}

func (id CaseID) String() string { return string(id) }

// Validate checks the ID is a UUID
func (id CaseID) Validate() error {
	if _, err := uuid.Parse(string(id)); err != nil {
		return goerr.Wrap(err, "invalid case ID", goerr.V("case_id", string(id)))
	}
	return nil
}

// TransactionID identifies a monitored transaction
type TransactionID string

// NewTransactionID generates a new transaction ID
func NewTransactionID() TransactionID {
	return TransactionID(uuid.Must(uuid.NewV7()).String())
}

func (id TransactionID) String() string { return string(id) }

// AlertID identifies an alert raised from a transaction
type AlertID string

// NewAlertID generates a new alert ID
func NewAlertID() AlertID {
	return AlertID(uuid.Must(uuid.NewV7()).String())
}

func (id AlertID) String() string { return string(id) }

// PrincipalID identifies an authenticated actor
type PrincipalID string

func (id PrincipalID) String() string { return string(id) }

// ConnectionID is the opaque transport-session ID of a live connection
type ConnectionID string

// NewConnectionID generates a new connection ID
func NewConnectionID() ConnectionID {
	return ConnectionID(uuid.New().String())
}

func (id ConnectionID) String() string { return string(id) }

// RuleID identifies a scoring rule
type RuleID string

// NewRuleID generates a new rule ID
func NewRuleID() RuleID {
	return RuleID(uuid.Must(uuid.NewV7()).String())
}

func (id RuleID) String() string { return string(id) }

// AuditLogID identifies an audit log entry
type AuditLogID string

// NewAuditLogID generates a time-ordered audit log ID
func NewAuditLogID() AuditLogID {
	return AuditLogID(uuid.Must(uuid.NewV7()).String())
}

func (id AuditLogID) String() string { return string(id) }

// AnnouncementID identifies an announcement
type AnnouncementID string

// NewAnnouncementID generates a new announcement ID
func NewAnnouncementID() AnnouncementID {
	return AnnouncementID(uuid.Must(uuid.NewV7()).String())
}

func (id AnnouncementID) String() string { return string(id) }
