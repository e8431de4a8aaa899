package policy

import "github.com/secmon-lab/argus/pkg/domain/types"

// Target selects the live connections an event is delivered to. A target
// with several rooms delivers once per connection even when the connection
// is a member of more than one of them.
type Target struct {
	Rooms     []Room
	Principal types.PrincipalID
}

// ToRoom targets the members of a single room
func ToRoom(room Room) Target {
	return Target{Rooms: []Room{room}}
}

// ToRooms targets the union of the members of rooms
func ToRooms(rooms ...Room) Target {
	return Target{Rooms: rooms}
}

// ToPrincipal targets the live connection of a principal, if any
func ToPrincipal(id types.PrincipalID) Target {
	return Target{Principal: id}
}

// IsPrincipal reports whether the target is a single principal
func (t Target) IsPrincipal() bool {
	return t.Principal != ""
}
