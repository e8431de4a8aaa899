package model

import (
	"errors"

	"github.com/m-mizutani/goerr/v2"
)

// Error taxonomy shared by the use cases, the realtime fabric and the
// controllers. Callers wrap these with goerr and match them with errors.Is.
var (
	ErrNotFound          = goerr.New("not found")
	ErrForbidden         = goerr.New("forbidden")
	ErrInvalidAssignee   = goerr.New("invalid assignee")
	ErrAuthRejected      = goerr.New("authentication rejected")
	ErrInvalidTransition = goerr.New("invalid transition")
	ErrStoreUnavailable  = goerr.New("store unavailable")
	ErrValidation        = goerr.New("validation failed")
)

// Error codes returned to clients
const (
	CodeNotFound          = "NotFound"
	CodeForbidden         = "Forbidden"
	CodeInvalidAssignee   = "InvalidAssignee"
	CodeAuthRejected      = "AuthRejected"
	CodeInvalidTransition = "InvalidTransition"
	CodeStoreUnavailable  = "StoreUnavailable"
	CodeValidation        = "ValidationError"
	CodeInternal          = "InternalError"
)

// Context keys for error values
const (
	CaseIDKey        = "case_id"
	TransactionIDKey = "transaction_id"
	AlertIDKey       = "alert_id"
	PrincipalIDKey   = "principal_id"
	ConnectionIDKey  = "connection_id"
	RoleKey          = "role"
	StatusKey        = "status"
	StreamKey        = "stream"
	RuleIDKey        = "rule_id"
	AnnouncementKey  = "announcement_id"
)

var codeTable = []struct {
	err  error
	code string
}{
	{ErrNotFound, CodeNotFound},
	{ErrForbidden, CodeForbidden},
	{ErrInvalidAssignee, CodeInvalidAssignee},
	{ErrAuthRejected, CodeAuthRejected},
	{ErrInvalidTransition, CodeInvalidTransition},
	{ErrStoreUnavailable, CodeStoreUnavailable},
	{ErrValidation, CodeValidation},
}

// ErrorCode returns the taxonomy code of err, or CodeInternal when err does
// not wrap any sentinel.
func ErrorCode(err error) string {
	for _, entry := range codeTable {
		if errors.Is(err, entry.err) {
			return entry.code
		}
	}
	return CodeInternal
}
