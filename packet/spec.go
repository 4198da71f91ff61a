package packet

// Packet type tags. These are the wire values, shared by every peer.
const (
	TypeJoin       = "join"
	TypeMsg        = "msg"
	TypeQuit       = "quit"
	TypeCreateRoom = "create_room"
	TypeInvite     = "invite"
	TypeAcceptInv  = "accept_invite"
	TypeRoomMsg    = "room_msg"
	TypeSys        = "sys"
)

// requiredFields is the single source of truth for the packet schema: the
// field set a record must carry for its declared type. Unknown types have
// no entry and never validate.
var requiredFields = map[string][]string{
	TypeJoin:       {"type", "name"},
	TypeMsg:        {"type", "name", "text"},
	TypeQuit:       {"type", "name"},
	TypeCreateRoom: {"type", "name", "room"},
	TypeInvite:     {"type", "room", "from", "to"},
	TypeAcceptInv:  {"type", "name", "room"},
	TypeRoomMsg:    {"type", "room", "from", "text"},
	TypeSys:        {"type", "text"},
}

// Validate reports whether a decoded record carries every required field
// for its declared type, with string values. Records of unknown type are
// invalid.
func Validate(p Packet) bool {
	fields, ok := requiredFields[p.Type()]
	if !ok {
		return false
	}
	for _, field := range fields {
		if _, ok := p[field].(string); !ok {
			return false
		}
	}
	return true
}

// Constructors for each outbound packet shape. Using these (rather than
// building maps inline) keeps senders wire-compatible with the schema
// above by construction.

func Join(name string) Packet {
	return Packet{"type": TypeJoin, "name": name}
}

func Msg(name, text string) Packet {
	return Packet{"type": TypeMsg, "name": name, "text": text}
}

func Quit(name string) Packet {
	return Packet{"type": TypeQuit, "name": name}
}

func CreateRoom(name, room string) Packet {
	return Packet{"type": TypeCreateRoom, "name": name, "room": room}
}

func Invite(room, from, to string) Packet {
	return Packet{"type": TypeInvite, "room": room, "from": from, "to": to}
}

func AcceptInv(name, room string) Packet {
	return Packet{"type": TypeAcceptInv, "name": name, "room": room}
}

func RoomMsg(room, from, text string) Packet {
	return Packet{"type": TypeRoomMsg, "room": room, "from": from, "text": text}
}

func Sys(text string) Packet {
	return Packet{"type": TypeSys, "text": text}
}
