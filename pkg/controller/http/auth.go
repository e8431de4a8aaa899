package http

import (
	"context"
	"net/http"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/argus/pkg/domain/model"
	"github.com/secmon-lab/argus/pkg/domain/types"
	"github.com/secmon-lab/argus/pkg/usecase"
	"github.com/secmon-lab/argus/pkg/utils/logging"
)

type AuthUseCase = usecase.AuthUseCaseInterface

// In no-auth mode a client may pick its principal with these headers
const (
	HeaderPrincipalID   = "X-Principal-ID"
	HeaderPrincipalRole = "X-Principal-Role"
)

// impersonator is implemented by the no-auth use case
type impersonator interface {
	Impersonate(ctx context.Context, id types.PrincipalID, role types.Role) (model.Actor, error)
}

type ctxActorKey struct{}

func contextWithActor(ctx context.Context, actor model.Actor) context.Context {
	return context.WithValue(ctx, ctxActorKey{}, actor)
}

func actorFrom(ctx context.Context) (model.Actor, bool) {
	actor, ok := ctx.Value(ctxActorKey{}).(model.Actor)
	return actor, ok
}

// authMiddleware resolves the acting principal of a request
func authMiddleware(authUC AuthUseCase) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			actor, err := resolveActor(ctx, authUC, r)
			if err != nil {
				respondError(ctx, w, err)
				return
			}

			logger := logging.From(ctx).With(model.PrincipalIDKey, actor.ID, model.RoleKey, actor.Role)
			ctx = logging.With(contextWithActor(ctx, actor), logger)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func resolveActor(ctx context.Context, authUC AuthUseCase, r *http.Request) (model.Actor, error) {
	if authUC == nil {
		return model.Actor{}, goerr.Wrap(model.ErrAuthRejected, "authentication is not configured")
	}

	if authUC.IsNoAuthn() {
		id := types.PrincipalID(r.Header.Get(HeaderPrincipalID))
		role := types.Role(r.Header.Get(HeaderPrincipalRole))
		if imp, ok := authUC.(impersonator); ok && (id != "" || role != "") {
			return imp.Impersonate(ctx, id, role)
		}
		return authUC.Authenticate(ctx, "")
	}

	header := r.Header.Get("Authorization")
	token, ok := strings.CutPrefix(header, "Bearer ")
	if !ok || strings.TrimSpace(token) == "" {
		return model.Actor{}, goerr.Wrap(model.ErrAuthRejected, "Authentication required")
	}

	return authUC.Authenticate(ctx, strings.TrimSpace(token))
}
