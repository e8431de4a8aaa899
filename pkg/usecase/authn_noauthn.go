package usecase

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/argus/pkg/domain/interfaces"
	"github.com/secmon-lab/argus/pkg/domain/model"
	"github.com/secmon-lab/argus/pkg/domain/types"
)

// NoAuthnUseCase accepts every request as a fixed principal (for
// development/testing). Controllers may let the client pick the principal.
type NoAuthnUseCase struct {
	repo interfaces.Repository
	sub  types.PrincipalID
	role types.Role
}

// NewNoAuthnUseCase creates a new NoAuthnUseCase instance with specified user info
func NewNoAuthnUseCase(repo interfaces.Repository, sub types.PrincipalID, role types.Role) *NoAuthnUseCase {
	return &NoAuthnUseCase{
		repo: repo,
		sub:  sub,
		role: role,
	}
}

// Authenticate ignores the token and returns the configured principal
func (uc *NoAuthnUseCase) Authenticate(ctx context.Context, token string) (model.Actor, error) {
	if uc.sub == "" {
		return model.Actor{}, goerr.Wrap(model.ErrAuthRejected, "no default principal in no-auth mode")
	}

	return uc.Impersonate(ctx, uc.sub, uc.role)
}

// Impersonate returns the principal chosen by the client. Missing parts fall
// back to the configured principal and to the directory role.
func (uc *NoAuthnUseCase) Impersonate(ctx context.Context, id types.PrincipalID, role types.Role) (model.Actor, error) {
	if id == "" {
		id = uc.sub
		if role == "" {
			role = uc.role
		}
	}

	actor := model.Actor{ID: id, Role: role}
	if actor.Role == "" && actor.ID != "" && uc.repo != nil {
		if user, err := uc.repo.User().Get(ctx, actor.ID); err == nil {
			actor.Role = user.Role
		}
	}

	if err := actor.Validate(); err != nil {
		return model.Actor{}, err
	}
	return actor, nil
}

// IsNoAuthn returns true for NoAuthnUseCase
func (uc *NoAuthnUseCase) IsNoAuthn() bool {
	return true
}
