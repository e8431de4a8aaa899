package interfaces

import (
	"context"

	"github.com/secmon-lab/argus/pkg/domain/model"
)

// AuditLogRepository is the append-only store of audit entries
type AuditLogRepository interface {
	Create(ctx context.Context, log *model.AuditLog) error
	// List returns entries newest first
	List(ctx context.Context, opts ...ListAuditLogOption) ([]*model.AuditLog, error)
}
