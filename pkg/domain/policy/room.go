package policy

import (
	"github.com/secmon-lab/argus/pkg/domain/types"
)

// Room is a named broadcast group of live connections
type Room string

func (r Room) String() string {
	return string(r)
}

const (
	RoomGeneral      Room = "general"
	RoomAdmin        Room = "admin"
	RoomCompliance   Room = "compliance"
	RoomInvestigator Room = "investigator"
	RoomAuditor      Room = "auditor"
	RoomTransactions Room = "transactions"
	RoomAlerts       Room = "alerts"
	RoomCases        Room = "cases"
	RoomLogs         Room = "logs"
	RoomRules        Room = "rules"

	RoomTransactionStream Room = "transaction-stream"
	RoomAlertStream       Room = "alert-stream"
	RoomCaseStream        Room = "case-stream"
)

// UserRoom is the personal room of a principal
func UserRoom(id types.PrincipalID) Room {
	return Room("user-" + string(id))
}

var roleRooms = map[types.Role][]Room{
	types.RoleAdmin:        {RoomAdmin, RoomTransactions, RoomAlerts, RoomCases, RoomLogs, RoomRules},
	types.RoleCompliance:   {RoomCompliance, RoomAlerts, RoomCases},
	types.RoleInvestigator: {RoomInvestigator, RoomCases},
	types.RoleAuditor:      {RoomAuditor, RoomLogs},
}

// RoleRoom returns the room joined by every principal of role, or "" for
// unknown roles.
func RoleRoom(role types.Role) Room {
	rooms := roleRooms[role]
	if len(rooms) == 0 {
		return ""
	}
	return rooms[0]
}

// StaticRooms returns the rooms a principal joins on authentication: the
// general room, its personal room and the rooms of its role.
func StaticRooms(role types.Role, id types.PrincipalID) []Room {
	extra := roleRooms[role]
	rooms := make([]Room, 0, len(extra)+2)
	rooms = append(rooms, RoomGeneral, UserRoom(id))
	return append(rooms, extra...)
}

var streamTable = map[types.Stream]roleSet{
	types.StreamTransactions: roles(admin, compliance, investigator, auditor),
	types.StreamAlerts:       roles(admin, compliance),
	types.StreamCases:        roles(admin, compliance, investigator),
}

var streamRooms = map[types.Stream]Room{
	types.StreamTransactions: RoomTransactionStream,
	types.StreamAlerts:       RoomAlertStream,
	types.StreamCases:        RoomCaseStream,
}

// StreamAllowed reports whether role may subscribe to stream
func StreamAllowed(role types.Role, stream types.Stream) bool {
	set, ok := streamTable[stream]
	if !ok {
		return false
	}
	_, ok = set[role]
	return ok
}

// StreamRoom returns the room backing a stream, or "" for unknown streams
func StreamRoom(stream types.Stream) Room {
	return streamRooms[stream]
}
