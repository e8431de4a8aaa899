package realtime

import (
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/argus/pkg/domain/model"
	"github.com/secmon-lab/argus/pkg/domain/policy"
	"github.com/secmon-lab/argus/pkg/domain/types"
)

// ErrNotAuthenticated is returned for requests on a connection that has not
// completed the handshake. It is a kind of model.ErrForbidden.
var ErrNotAuthenticated = goerr.Wrap(model.ErrForbidden, "Not authenticated")

// Router joins connections to stream rooms on request, gated by role
type Router struct {
	registry *Registry
}

func NewRouter(registry *Registry) *Router {
	return &Router{registry: registry}
}

// Subscribe joins the connection to the room of stream. A denied request
// leaves the memberships untouched.
func (r *Router) Subscribe(connID types.ConnectionID, stream types.Stream) (policy.Room, error) {
	session, ok := r.registry.Session(connID)
	if !ok {
		return "", goerr.Wrap(ErrNotAuthenticated, "subscribe rejected", goerr.V(model.ConnectionIDKey, connID))
	}

	if !stream.IsValid() {
		return "", goerr.Wrap(model.ErrValidation, "unknown stream", goerr.V(model.StreamKey, stream))
	}

	if !policy.StreamAllowed(session.Role, stream) {
		return "", goerr.Wrap(model.ErrForbidden, "Insufficient permissions for "+stream.String()+" stream",
			goerr.V(model.ConnectionIDKey, connID),
			goerr.V(model.PrincipalIDKey, session.PrincipalID),
			goerr.V(model.RoleKey, session.Role),
			goerr.V(model.StreamKey, stream))
	}

	room := policy.StreamRoom(stream)
	if err := r.registry.Join(connID, room); err != nil {
		return "", err
	}
	return room, nil
}
