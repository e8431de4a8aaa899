package memory

import (
	"github.com/secmon-lab/argus/pkg/domain/interfaces"
)

// Repository is an alias for Memory to match the pattern
type Repository = Memory

// Memory is the in-process record store used for development and tests.
// Every read and write copies records so callers never share state with the
// store.
type Memory struct {
	cases         *caseRepository
	transactions  *transactionRepository
	alerts        *alertRepository
	users         *userRepository
	rules         *ruleRepository
	auditLogs     *auditLogRepository
	announcements *announcementRepository
}

var _ interfaces.Repository = &Memory{}

func New() *Memory {
	return &Memory{
		cases:         newCaseRepository(),
		transactions:  newTransactionRepository(),
		alerts:        newAlertRepository(),
		users:         newUserRepository(),
		rules:         newRuleRepository(),
		auditLogs:     newAuditLogRepository(),
		announcements: newAnnouncementRepository(),
	}
}

func (m *Memory) Case() interfaces.CaseRepository {
	return m.cases
}

func (m *Memory) Transaction() interfaces.TransactionRepository {
	return m.transactions
}

func (m *Memory) Alert() interfaces.AlertRepository {
	return m.alerts
}

func (m *Memory) User() interfaces.UserRepository {
	return m.users
}

func (m *Memory) Rule() interfaces.RuleRepository {
	return m.rules
}

func (m *Memory) AuditLog() interfaces.AuditLogRepository {
	return m.auditLogs
}

func (m *Memory) Announcement() interfaces.AnnouncementRepository {
	return m.announcements
}

func (m *Memory) Close() error {
	return nil
}
