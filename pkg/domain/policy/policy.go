// Package policy is the role policy of the service: which role may perform
// which operation, which rooms a principal joins on authentication and which
// live streams a role may subscribe to. Every authorization decision in the
// service is a lookup in the tables below.
package policy

import (
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/argus/pkg/domain/model"
	"github.com/secmon-lab/argus/pkg/domain/types"
)

// Operation is a guarded action of the service
type Operation string

const (
	OpCreateCase         Operation = "create_case"
	OpAssignInvestigator Operation = "assign_investigator"
	OpAssignSelf         Operation = "assign_self"
	OpUpdateStatus       Operation = "update_status"
	OpAddComment         Operation = "add_comment"
	OpUploadEvidence     Operation = "upload_evidence"
	OpCloseCase          Operation = "close_case"
	OpViewCases          Operation = "view_cases"
	OpPurgeCase          Operation = "purge_case"
	OpCreateTransaction  Operation = "create_transaction"
	OpDeleteTransaction  Operation = "delete_transaction"
	OpViewTransactions   Operation = "view_transactions"
	OpViewAlerts         Operation = "view_alerts"
	OpResolveAlert       Operation = "resolve_alert"
	OpSendSystemMessage  Operation = "send_system_message"
	OpManageRules        Operation = "manage_rules"
	OpViewRules          Operation = "view_rules"
	OpViewLogs           Operation = "view_logs"
	OpManageAnnouncement Operation = "manage_announcement"
	OpReadAnnouncements  Operation = "read_announcements"
)

func (op Operation) String() string {
	return string(op)
}

type roleSet map[types.Role]struct{}

func roles(r ...types.Role) roleSet {
	s := make(roleSet, len(r))
	for _, role := range r {
		s[role] = struct{}{}
	}
	return s
}

var (
	admin        = types.RoleAdmin
	compliance   = types.RoleCompliance
	investigator = types.RoleInvestigator
	auditor      = types.RoleAuditor
)

var operationTable = map[Operation]roleSet{
	OpCreateCase:         roles(admin, compliance),
	OpAssignInvestigator: roles(admin, compliance),
	OpAssignSelf:         roles(admin, investigator),
	OpUpdateStatus:       roles(admin, investigator),
	OpAddComment:         roles(admin, compliance, investigator),
	OpUploadEvidence:     roles(admin, investigator),
	OpCloseCase:          roles(admin, compliance),
	OpViewCases:          roles(admin, compliance, investigator),
	OpPurgeCase:          roles(admin),
	OpCreateTransaction:  roles(admin, compliance),
	OpDeleteTransaction:  roles(admin),
	OpViewTransactions:   roles(admin, compliance, investigator, auditor),
	OpViewAlerts:         roles(admin, compliance),
	OpResolveAlert:       roles(admin, compliance),
	OpSendSystemMessage:  roles(admin),
	OpManageRules:        roles(admin),
	OpViewRules:          roles(admin, compliance),
	OpViewLogs:           roles(admin, auditor),
	OpManageAnnouncement: roles(admin),
	OpReadAnnouncements:  roles(admin, compliance, investigator, auditor),
}

var assigneeRoles = roles(admin, investigator)

// Allowed reports whether role may perform op. Unknown roles and operations
// are denied.
func Allowed(role types.Role, op Operation) bool {
	set, ok := operationTable[op]
	if !ok {
		return false
	}
	_, ok = set[role]
	return ok
}

// Require returns an error wrapping model.ErrForbidden when role may not
// perform op.
func Require(role types.Role, op Operation) error {
	if !Allowed(role, op) {
		return goerr.Wrap(model.ErrForbidden, "operation not permitted for role",
			goerr.V(model.RoleKey, role),
			goerr.V("operation", op))
	}
	return nil
}

// CanBeAssignee reports whether a principal of role may own a case
func CanBeAssignee(role types.Role) bool {
	_, ok := assigneeRoles[role]
	return ok
}
