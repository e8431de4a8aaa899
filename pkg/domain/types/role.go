package types

import "fmt"

// Role is the resolved role of an authenticated principal
type Role string

const (
	RoleAdmin        Role = "admin"
	RoleCompliance   Role = "compliance"
	RoleInvestigator Role = "investigator"
	RoleAuditor      Role = "auditor"
)

// AllRoles returns all known roles
func AllRoles() []Role {
	return []Role{
		RoleAdmin,
		RoleCompliance,
		RoleInvestigator,
		RoleAuditor,
	}
}

// IsValid checks if the role is known
func (r Role) IsValid() bool {
	switch r {
	case RoleAdmin, RoleCompliance, RoleInvestigator, RoleAuditor:
		return true
	default:
		return false
	}
}

func (r Role) String() string {
	return string(r)
}

// ParseRole parses a string into a Role
func ParseRole(s string) (Role, error) {
	role := Role(s)
	if !role.IsValid() {
		return "", fmt.Errorf("invalid role: %s", s)
	}
	return role, nil
}
