package chat

import (
	"errors"
	"net"

	"github.com/udpchat/udpchat/set"
)

// The error returned when a named room has never been created.
var ErrRoomNotFound = errors.New("no such room")

// The error returned when the acting endpoint is not a member of the room.
var ErrNotMember = errors.New("not a room member")

// The error returned when an accept has no matching pending invitation.
var ErrNoInvite = errors.New("no pending invitation")

// Sentinel used to abort set iteration early; never escapes this package.
var errStopIteration = errors.New("stop")

// Rooms is the room membership and pending-invitation table. Like the
// Registry, it is mutated only from the router goroutine. Rooms are never
// deleted: an empty room persists for the process lifetime, so an
// outstanding invitation naming it stays acceptable.
type Rooms struct {
	rooms   *set.Set // room name -> *set.Set of member addrs
	pending *set.Set // endpoint addr -> *set.Set of invited room names
}

func NewRooms() *Rooms {
	return &Rooms{
		rooms:   set.New(),
		pending: set.New(),
	}
}

// Create makes a room with the creator as sole member, or adds the creator
// to an existing room of that name. Idempotent by name; reports whether the
// room was newly created.
func (t *Rooms) Create(room string, creator *net.UDPAddr) bool {
	members, ok := t.members(room)
	created := !ok
	if created {
		members = set.New()
		t.rooms.Add(set.Itemize(room, members))
		logger.Printf("room %q created by %s", room, creator)
	}
	members.Add(set.Itemize(creator.String(), creator))
	return created
}

// Invite records a pending invitation for the target endpoint. The inviter
// must be a member of the room.
func (t *Rooms) Invite(room string, from, to *net.UDPAddr) error {
	if err := t.requireMember(room, from); err != nil {
		return err
	}

	invited, ok := t.pendingFor(to)
	if !ok {
		invited = set.New()
		t.pending.Add(set.Itemize(to.String(), invited))
	}
	invited.Add(set.StringItem(room))
	logger.Printf("%s invited %s to room %q", from, to, room)
	return nil
}

// Accept consumes a pending invitation, adding the endpoint to the room's
// members.
func (t *Rooms) Accept(room string, addr *net.UDPAddr) error {
	invited, ok := t.pendingFor(addr)
	if !ok || !invited.In(room) {
		return ErrNoInvite
	}

	members, ok := t.members(room)
	if !ok {
		// Rooms are never deleted, so a recorded invitation must name a
		// live room.
		return ErrRoomNotFound
	}

	invited.Remove(room)
	members.Add(set.Itemize(addr.String(), addr))
	logger.Printf("%s joined room %q", addr, room)
	return nil
}

// Post authorizes a room message from an endpoint and returns a snapshot of
// the other members to deliver it to.
func (t *Rooms) Post(room string, from *net.UDPAddr) ([]*net.UDPAddr, error) {
	if err := t.requireMember(room, from); err != nil {
		return nil, err
	}

	members, _ := t.members(room)
	others := make([]*net.UDPAddr, 0, members.Len())
	for _, item := range members.List() {
		if item.Key() == from.String() {
			continue
		}
		others = append(others, item.Value().(*net.UDPAddr))
	}
	return others, nil
}

// IsMember reports whether an endpoint is currently in a room.
func (t *Rooms) IsMember(room string, addr *net.UDPAddr) bool {
	members, ok := t.members(room)
	return ok && members.In(addr.String())
}

// Invited reports whether an endpoint holds a pending invitation to a room.
func (t *Rooms) Invited(room string, addr *net.UDPAddr) bool {
	invited, ok := t.pendingFor(addr)
	return ok && invited.In(room)
}

// Purge removes an endpoint from every room's member set. Used on
// disconnect. Pending invitations are left in place: the table is keyed by
// endpoint, and a reconnecting endpoint is the same identity.
func (t *Rooms) Purge(addr *net.UDPAddr) {
	key := addr.String()
	t.rooms.Each(func(room string, item set.Item) error {
		item.Value().(*set.Set).Remove(key)
		return nil
	})
}

// Len returns the number of rooms ever created.
func (t *Rooms) Len() int {
	return t.rooms.Len()
}

func (t *Rooms) members(room string) (*set.Set, bool) {
	item, err := t.rooms.Get(room)
	if err != nil {
		return nil, false
	}
	return item.Value().(*set.Set), true
}

func (t *Rooms) pendingFor(addr *net.UDPAddr) (*set.Set, bool) {
	item, err := t.pending.Get(addr.String())
	if err != nil {
		return nil, false
	}
	return item.Value().(*set.Set), true
}

func (t *Rooms) requireMember(room string, addr *net.UDPAddr) error {
	members, ok := t.members(room)
	if !ok {
		return ErrRoomNotFound
	}
	if !members.In(addr.String()) {
		return ErrNotMember
	}
	return nil
}
