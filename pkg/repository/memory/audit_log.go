package memory

import (
	"context"
	"sync"

	"github.com/secmon-lab/argus/pkg/domain/interfaces"
	"github.com/secmon-lab/argus/pkg/domain/model"
)

// auditLogRepository keeps entries in insertion order
type auditLogRepository struct {
	mu   sync.RWMutex
	logs []*model.AuditLog
}

func newAuditLogRepository() *auditLogRepository {
	return &auditLogRepository{}
}

func (r *auditLogRepository) Create(ctx context.Context, log *model.AuditLog) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	copied := *log
	r.logs = append(r.logs, &copied)
	return nil
}

func (r *auditLogRepository) List(ctx context.Context, opts ...interfaces.ListAuditLogOption) ([]*model.AuditLog, error) {
	cfg := interfaces.BuildListAuditLogConfig(opts...)

	r.mu.RLock()
	defer r.mu.RUnlock()

	var result []*model.AuditLog
	for i := len(r.logs) - 1; i >= 0; i-- {
		if !cfg.Match(r.logs[i]) {
			continue
		}
		copied := *r.logs[i]
		result = append(result, &copied)
		if cfg.Limit() > 0 && len(result) == cfg.Limit() {
			break
		}
	}
	return result, nil
}
