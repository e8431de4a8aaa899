package model

import (
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/argus/pkg/domain/types"
)

// Actor is the authenticated principal performing an operation. The role is
// resolved by the caller and recorded as-is in timeline entries.
type Actor struct {
	ID   types.PrincipalID
	Role types.Role
}

// Validate checks that the actor carries an ID and a known role
func (a Actor) Validate() error {
	if a.ID == "" {
		return goerr.Wrap(ErrAuthRejected, "principal ID is required")
	}
	if !a.Role.IsValid() {
		return goerr.Wrap(ErrAuthRejected, "unknown role", goerr.V(RoleKey, a.Role))
	}
	return nil
}
