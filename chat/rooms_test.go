package chat

import (
	"testing"
)

func TestRoomsCreateIdempotent(t *testing.T) {
	rooms := NewRooms()
	a, b := addr(6001), addr(6002)

	if created := rooms.Create("den", a); !created {
		t.Error("first create did not report a new room")
	}
	if created := rooms.Create("den", b); created {
		t.Error("second create reported a new room")
	}

	if rooms.Len() != 1 {
		t.Fatalf("got %d rooms, want 1", rooms.Len())
	}
	if !rooms.IsMember("den", a) || !rooms.IsMember("den", b) {
		t.Error("both creators should be members of the single room")
	}
}

func TestRoomsInviteAccept(t *testing.T) {
	rooms := NewRooms()
	a, b := addr(6001), addr(6002)
	rooms.Create("den", a)

	// Invite preconditions.
	if err := rooms.Invite("attic", a, b); err != ErrRoomNotFound {
		t.Errorf("invite to missing room: want ErrRoomNotFound, got %v", err)
	}
	if err := rooms.Invite("den", b, a); err != ErrNotMember {
		t.Errorf("invite from non-member: want ErrNotMember, got %v", err)
	}

	// Accept before any invite.
	if err := rooms.Accept("den", b); err != ErrNoInvite {
		t.Errorf("accept without invite: want ErrNoInvite, got %v", err)
	}

	if err := rooms.Invite("den", a, b); err != nil {
		t.Fatalf("invite failed: %s", err)
	}
	if !rooms.Invited("den", b) {
		t.Error("invitation not recorded")
	}
	if rooms.IsMember("den", b) {
		t.Error("invite alone must not grant membership")
	}

	if err := rooms.Accept("den", b); err != nil {
		t.Fatalf("accept failed: %s", err)
	}
	if !rooms.IsMember("den", b) {
		t.Error("accept did not grant membership")
	}
	if rooms.Invited("den", b) {
		t.Error("invitation not consumed by accept")
	}

	// An invitation is single-use.
	if err := rooms.Accept("den", b); err != ErrNoInvite {
		t.Errorf("second accept: want ErrNoInvite, got %v", err)
	}
}

func TestRoomsPost(t *testing.T) {
	rooms := NewRooms()
	a, b, c := addr(6001), addr(6002), addr(6003)
	rooms.Create("den", a)
	rooms.Create("den", b)

	if _, err := rooms.Post("den", c); err != ErrNotMember {
		t.Errorf("post from non-member: want ErrNotMember, got %v", err)
	}
	if _, err := rooms.Post("attic", a); err != ErrRoomNotFound {
		t.Errorf("post to missing room: want ErrRoomNotFound, got %v", err)
	}

	others, err := rooms.Post("den", a)
	if err != nil {
		t.Fatalf("post failed: %s", err)
	}
	if len(others) != 1 || others[0].String() != b.String() {
		t.Errorf("got recipients %v, want just %s", others, b)
	}
}

func TestRoomsPurge(t *testing.T) {
	rooms := NewRooms()
	a, b := addr(6001), addr(6002)
	rooms.Create("den", a)
	rooms.Create("attic", a)
	rooms.Create("den", b)
	rooms.Invite("den", b, a) // pending invite survives a purge

	rooms.Purge(a)

	if rooms.IsMember("den", a) || rooms.IsMember("attic", a) {
		t.Error("purged endpoint still a member somewhere")
	}
	if !rooms.IsMember("den", b) {
		t.Error("purge removed the wrong endpoint")
	}
	// Rooms persist even when emptied.
	if rooms.Len() != 2 {
		t.Errorf("got %d rooms after purge, want 2", rooms.Len())
	}
	if !rooms.Invited("den", a) {
		t.Error("purge must not consume pending invitations")
	}
}
