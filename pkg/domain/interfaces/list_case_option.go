package interfaces

import "github.com/secmon-lab/argus/pkg/domain/types"

// ListCaseOption is a functional option for filtering cases in List
type ListCaseOption func(*listCaseConfig)

type listCaseConfig struct {
	status   *types.CaseStatus
	assignee *types.PrincipalID
}

// WithStatus filters cases by status
func WithStatus(status types.CaseStatus) ListCaseOption {
	return func(c *listCaseConfig) {
		c.status = &status
	}
}

// WithAssignee filters cases by the assigned principal
func WithAssignee(id types.PrincipalID) ListCaseOption {
	return func(c *listCaseConfig) {
		c.assignee = &id
	}
}

// BuildListCaseConfig builds a listCaseConfig from options
func BuildListCaseConfig(opts ...ListCaseOption) *listCaseConfig {
	cfg := &listCaseConfig{}
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// Status returns the status filter value, or nil if not set
func (c *listCaseConfig) Status() *types.CaseStatus {
	return c.status
}

// Assignee returns the assignee filter value, or nil if not set
func (c *listCaseConfig) Assignee() *types.PrincipalID {
	return c.assignee
}

// Match reports whether a case passes every configured filter
func (c *listCaseConfig) Match(status types.CaseStatus, assignee types.PrincipalID) bool {
	if c.status != nil && *c.status != status.Normalize() {
		return false
	}
	if c.assignee != nil && *c.assignee != assignee {
		return false
	}
	return true
}
