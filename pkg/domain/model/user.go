package model

import (
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/argus/pkg/domain/types"
)

// User is a principal directory entry
type User struct {
	ID    types.PrincipalID `json:"id" firestore:"id" toml:"id"`
	Name  string            `json:"name" firestore:"name" toml:"name"`
	Email string            `json:"email" firestore:"email" toml:"email"`
	Role  types.Role        `json:"role" firestore:"role" toml:"role"`
}

// Validate checks the user entry
func (u *User) Validate() error {
	if u.ID == "" {
		return goerr.Wrap(ErrValidation, "user ID is required")
	}
	if !u.Role.IsValid() {
		return goerr.Wrap(ErrValidation, "invalid user role", goerr.V(PrincipalIDKey, u.ID), goerr.V(RoleKey, u.Role))
	}
	return nil
}

// Actor returns the user as an acting principal
func (u *User) Actor() Actor {
	return Actor{ID: u.ID, Role: u.Role}
}
