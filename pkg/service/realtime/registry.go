package realtime

import (
	"context"
	"sync"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/samber/lo"
	"github.com/secmon-lab/argus/pkg/domain/model"
	"github.com/secmon-lab/argus/pkg/domain/policy"
	"github.com/secmon-lab/argus/pkg/domain/types"
)

const (
	DefaultQueueSize   = 64
	DefaultSendTimeout = 5 * time.Second
)

// Session is the authenticated identity of a connection
type Session struct {
	PrincipalID types.PrincipalID
	Role        types.Role
}

// Registry owns every live connection and all room memberships. A single
// RWMutex guards the maps: publishers take snapshots under the read lock,
// joins and leaves take the write lock, so a publish never sees a partial
// membership set.
type Registry struct {
	mu          sync.RWMutex
	closed      bool
	conns       map[types.ConnectionID]*Connection
	sessions    map[types.ConnectionID]Session
	principals  map[types.PrincipalID]types.ConnectionID
	rooms       map[policy.Room]map[types.ConnectionID]struct{}
	memberships map[types.ConnectionID]map[policy.Room]struct{}

	queueSize   int
	sendTimeout time.Duration

	ctx     context.Context
	cancel  context.CancelFunc
	writers sync.WaitGroup
}

type RegistryOption func(*Registry)

// WithQueueSize sets the outbound queue length of each connection
func WithQueueSize(n int) RegistryOption {
	return func(r *Registry) {
		r.queueSize = n
	}
}

// WithSendTimeout bounds a single transport write
func WithSendTimeout(d time.Duration) RegistryOption {
	return func(r *Registry) {
		r.sendTimeout = d
	}
}

// NewRegistry creates a registry. Its writer goroutines inherit the logger
// of ctx and stop when Close is called.
func NewRegistry(ctx context.Context, opts ...RegistryOption) *Registry {
	r := &Registry{
		conns:       make(map[types.ConnectionID]*Connection),
		sessions:    make(map[types.ConnectionID]Session),
		principals:  make(map[types.PrincipalID]types.ConnectionID),
		rooms:       make(map[policy.Room]map[types.ConnectionID]struct{}),
		memberships: make(map[types.ConnectionID]map[policy.Room]struct{}),
		queueSize:   DefaultQueueSize,
		sendTimeout: DefaultSendTimeout,
	}
	for _, opt := range opts {
		opt(r)
	}

	r.ctx, r.cancel = context.WithCancel(context.WithoutCancel(ctx))
	return r
}

// Register adds an unauthenticated connection for a new transport session
func (r *Registry) Register(sender Sender) (*Connection, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return nil, goerr.New("registry is closed")
	}

	conn := newConnection(sender, r.queueSize, r.sendTimeout)
	r.conns[conn.id] = conn

	r.writers.Add(1)
	go func() {
		defer r.writers.Done()
		conn.run(r.ctx, r.Disconnect)
	}()

	return conn, nil
}

// Authenticate binds a principal to a connection and rebuilds its room
// memberships from the role. A principal re-authenticating on another
// connection takes over the principal mapping; the older connection stays
// open and keeps its rooms.
func (r *Registry) Authenticate(connID types.ConnectionID, principalID types.PrincipalID, role types.Role) error {
	if principalID == "" {
		return goerr.Wrap(model.ErrAuthRejected, "principal ID is required", goerr.V(model.ConnectionIDKey, connID))
	}
	if !role.IsValid() {
		return goerr.Wrap(model.ErrAuthRejected, "unknown role", goerr.V(model.ConnectionIDKey, connID), goerr.V(model.RoleKey, role))
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.conns[connID]; !ok {
		return goerr.Wrap(model.ErrNotFound, "connection not found", goerr.V(model.ConnectionIDKey, connID))
	}

	if prev, ok := r.sessions[connID]; ok && r.principals[prev.PrincipalID] == connID {
		delete(r.principals, prev.PrincipalID)
	}
	r.leaveAll(connID)

	r.sessions[connID] = Session{PrincipalID: principalID, Role: role}
	r.principals[principalID] = connID
	for _, room := range policy.StaticRooms(role, principalID) {
		r.join(connID, room)
	}

	return nil
}

// Disconnect removes the connection, its principal mapping and all its
// memberships, and stops delivery to it. It is safe to call repeatedly.
func (r *Registry) Disconnect(connID types.ConnectionID) {
	r.mu.Lock()
	conn, ok := r.conns[connID]
	if ok {
		if s, ok := r.sessions[connID]; ok && r.principals[s.PrincipalID] == connID {
			delete(r.principals, s.PrincipalID)
		}
		delete(r.sessions, connID)
		r.leaveAll(connID)
		delete(r.conns, connID)
	}
	r.mu.Unlock()

	if ok {
		conn.close()
	}
}

// Session returns the identity bound to a connection
func (r *Registry) Session(connID types.ConnectionID) (Session, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.sessions[connID]
	return s, ok
}

// Join adds an authenticated connection to a room
func (r *Registry) Join(connID types.ConnectionID, room policy.Room) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.sessions[connID]; !ok {
		return goerr.Wrap(ErrNotAuthenticated, "cannot join room", goerr.V(model.ConnectionIDKey, connID))
	}
	r.join(connID, room)
	return nil
}

// join and leaveAll require the write lock
func (r *Registry) join(connID types.ConnectionID, room policy.Room) {
	members, ok := r.rooms[room]
	if !ok {
		members = make(map[types.ConnectionID]struct{})
		r.rooms[room] = members
	}
	members[connID] = struct{}{}

	joined, ok := r.memberships[connID]
	if !ok {
		joined = make(map[policy.Room]struct{})
		r.memberships[connID] = joined
	}
	joined[room] = struct{}{}
}

func (r *Registry) leaveAll(connID types.ConnectionID) {
	for room := range r.memberships[connID] {
		members := r.rooms[room]
		delete(members, connID)
		if len(members) == 0 {
			delete(r.rooms, room)
		}
	}
	delete(r.memberships, connID)
}

// Rooms returns the rooms a connection belongs to
func (r *Registry) Rooms(connID types.ConnectionID) []policy.Room {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return lo.Keys(r.memberships[connID])
}

// resolve snapshots the connections addressed by target. Every connection
// appears once even when it is a member of several target rooms.
func (r *Registry) resolve(target policy.Target) []*Connection {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if target.IsPrincipal() {
		connID, ok := r.principals[target.Principal]
		if !ok {
			return nil
		}
		return []*Connection{r.conns[connID]}
	}

	var ids []types.ConnectionID
	for _, room := range target.Rooms {
		ids = append(ids, lo.Keys(r.rooms[room])...)
	}

	return lo.FilterMap(lo.Uniq(ids), func(id types.ConnectionID, _ int) (*Connection, bool) {
		conn, ok := r.conns[id]
		return conn, ok
	})
}

// ConnectedCount returns the number of live connections
func (r *Registry) ConnectedCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.conns)
}

// RoomSize returns the number of connections in a room
func (r *Registry) RoomSize(room policy.Room) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.rooms[room])
}

// Close disconnects every connection and waits for the writers to stop
func (r *Registry) Close() {
	r.mu.Lock()
	r.closed = true
	ids := lo.Keys(r.conns)
	r.mu.Unlock()

	for _, id := range ids {
		r.Disconnect(id)
	}
	r.cancel()
	r.writers.Wait()
}
