package interfaces

import (
	"time"

	"github.com/secmon-lab/argus/pkg/domain/model"
	"github.com/secmon-lab/argus/pkg/domain/types"
)

// ListAuditLogOption is a functional option for filtering audit entries
type ListAuditLogOption func(*listAuditLogConfig)

type listAuditLogConfig struct {
	actor  *types.PrincipalID
	action *string
	since  *time.Time
	until  *time.Time
	limit  int
}

// WithLogActor filters entries by the acting principal
func WithLogActor(id types.PrincipalID) ListAuditLogOption {
	return func(c *listAuditLogConfig) {
		c.actor = &id
	}
}

// WithLogAction filters entries by action
func WithLogAction(action string) ListAuditLogOption {
	return func(c *listAuditLogConfig) {
		c.action = &action
	}
}

// WithLogSince keeps entries created at or after t
func WithLogSince(t time.Time) ListAuditLogOption {
	return func(c *listAuditLogConfig) {
		c.since = &t
	}
}

// WithLogUntil keeps entries created before t
func WithLogUntil(t time.Time) ListAuditLogOption {
	return func(c *listAuditLogConfig) {
		c.until = &t
	}
}

// WithLogLimit caps the number of entries. Zero means no limit.
func WithLogLimit(n int) ListAuditLogOption {
	return func(c *listAuditLogConfig) {
		c.limit = n
	}
}

// BuildListAuditLogConfig builds a listAuditLogConfig from options
func BuildListAuditLogConfig(opts ...ListAuditLogOption) *listAuditLogConfig {
	cfg := &listAuditLogConfig{}
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// Actor returns the actor filter value, or nil if not set
func (c *listAuditLogConfig) Actor() *types.PrincipalID {
	return c.actor
}

// Action returns the action filter value, or nil if not set
func (c *listAuditLogConfig) Action() *string {
	return c.action
}

func (c *listAuditLogConfig) Since() *time.Time {
	return c.since
}

func (c *listAuditLogConfig) Until() *time.Time {
	return c.until
}

func (c *listAuditLogConfig) Limit() int {
	return c.limit
}

// Match reports whether an entry passes every configured filter
func (c *listAuditLogConfig) Match(log *model.AuditLog) bool {
	if c.actor != nil && *c.actor != log.ActorID {
		return false
	}
	if c.action != nil && *c.action != log.Action {
		return false
	}
	if c.since != nil && log.CreatedAt.Before(*c.since) {
		return false
	}
	if c.until != nil && !log.CreatedAt.Before(*c.until) {
		return false
	}
	return true
}
