package types

import "fmt"

// CaseStatus represents the status of a fraud case
type CaseStatus string

const (
	CaseStatusOpen     CaseStatus = "Open"
	CaseStatusAssigned CaseStatus = "Assigned"
	CaseStatusInReview CaseStatus = "In Review"
	CaseStatusClosed   CaseStatus = "Closed"

	// Decision statuses. They record an investigator's decision and are not
	// terminal: the case still has to be closed explicitly.
	CaseStatusEscalated                     CaseStatus = "Escalated"
	CaseStatusConfirmedFraud                CaseStatus = "Confirmed Fraud"
	CaseStatusDismissed                     CaseStatus = "Dismissed"
	CaseStatusAccountFrozen                 CaseStatus = "Account Frozen"
	CaseStatusTransactionReversed           CaseStatus = "Transaction Reversed"
	CaseStatusReportedToCompliance          CaseStatus = "Reported to Compliance"
	CaseStatusAddedToWatchlist              CaseStatus = "Added to Watchlist"
	CaseStatusCustomerVerificationRequested CaseStatus = "Customer Verification Requested"
)

// AllCaseStatuses returns all valid case statuses
func AllCaseStatuses() []CaseStatus {
	return []CaseStatus{
		CaseStatusOpen,
		CaseStatusAssigned,
		CaseStatusInReview,
		CaseStatusClosed,
		CaseStatusEscalated,
		CaseStatusConfirmedFraud,
		CaseStatusDismissed,
		CaseStatusAccountFrozen,
		CaseStatusTransactionReversed,
		CaseStatusReportedToCompliance,
		CaseStatusAddedToWatchlist,
		CaseStatusCustomerVerificationRequested,
	}
}

// IsValid checks if the case status is valid
func (s CaseStatus) IsValid() bool {
	switch s {
	case CaseStatusOpen,
		CaseStatusAssigned,
		CaseStatusInReview,
		CaseStatusClosed,
		CaseStatusEscalated,
		CaseStatusConfirmedFraud,
		CaseStatusDismissed,
		CaseStatusAccountFrozen,
		CaseStatusTransactionReversed,
		CaseStatusReportedToCompliance,
		CaseStatusAddedToWatchlist,
		CaseStatusCustomerVerificationRequested:
		return true
	default:
		return false
	}
}

// IsTerminal reports whether no further transition is possible.
func (s CaseStatus) IsTerminal() bool {
	return s == CaseStatusClosed
}

// IsDecision reports whether the status records an investigation outcome.
func (s CaseStatus) IsDecision() bool {
	switch s {
	case CaseStatusEscalated,
		CaseStatusConfirmedFraud,
		CaseStatusDismissed,
		CaseStatusAccountFrozen,
		CaseStatusTransactionReversed,
		CaseStatusReportedToCompliance,
		CaseStatusAddedToWatchlist,
		CaseStatusCustomerVerificationRequested:
		return true
	default:
		return false
	}
}

// Normalize returns the status, treating empty as CaseStatusOpen for records
// written before the status field existed.
func (s CaseStatus) Normalize() CaseStatus {
	if s == "" {
		return CaseStatusOpen
	}
	return s
}

// String returns the string representation of the case status
func (s CaseStatus) String() string {
	return string(s)
}

// ParseCaseStatus parses a string into a CaseStatus
func ParseCaseStatus(s string) (CaseStatus, error) {
	status := CaseStatus(s)
	if !status.IsValid() {
		return "", fmt.Errorf("invalid case status: %s", s)
	}
	return status, nil
}
