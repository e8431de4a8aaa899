package interfaces

// Repository defines the interface for data persistence
type Repository interface {
	Case() CaseRepository
	Transaction() TransactionRepository
	Alert() AlertRepository
	User() UserRepository
	Rule() RuleRepository
	AuditLog() AuditLogRepository
	Announcement() AnnouncementRepository

	Close() error
}
