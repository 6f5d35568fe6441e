package core

import (
	"testing"
	"time"

	"github.com/dkeye/commcall/internal/domain"
)

type nopConn struct{ closed bool }

func (c *nopConn) TrySend(Frame) error { return nil }
func (c *nopConn) Close()              { c.closed = true }

func testRoom() *CallRoom {
	return NewCallRoom(&domain.Call{
		ID:          domain.NewCallID(time.Now()),
		AdminUserID: "admin-1",
		AdminName:   "Alice",
		StartedAt:   time.Now(),
	})
}

func session(id, name string, role domain.Role) MemberSession {
	return NewMemberSession(domain.User{ID: domain.UserID(id), Name: name, Role: role}, &nopConn{})
}

func TestCallRoomAddRemove(t *testing.T) {
	r := testRoom()
	if n, ok := r.AddMember("s1", session("u1", "Alice", domain.RoleAdmin)); !ok || n != 1 {
		t.Fatalf("expected count 1, got %d ok=%v", n, ok)
	}
	if n, ok := r.AddMember("s2", session("u2", "Bob", domain.RoleStudent)); !ok || n != 2 {
		t.Fatalf("expected count 2, got %d ok=%v", n, ok)
	}
	n, removed := r.RemoveMember("s2")
	if !removed || n != 1 {
		t.Fatalf("expected removal back to 1, got %d removed=%v", n, removed)
	}
}

func TestCallRoomRemoveAbsentIsNoop(t *testing.T) {
	r := testRoom()
	r.AddMember("s1", session("u1", "Alice", domain.RoleAdmin))
	n, removed := r.RemoveMember("ghost")
	if removed {
		t.Fatal("removing a non-member must be a no-op")
	}
	if n != 1 {
		t.Fatalf("count changed on no-op removal: %d", n)
	}
}

func TestCallRoomStaysActiveWhenEmpty(t *testing.T) {
	r := testRoom()
	r.AddMember("s1", session("u1", "Alice", domain.RoleAdmin))
	r.RemoveMember("s1")
	if !r.Active() {
		t.Fatal("empty room must remain active")
	}
}

func TestCallRoomSnapshotExcept(t *testing.T) {
	r := testRoom()
	r.AddMember("s1", session("u1", "Alice", domain.RoleAdmin))
	r.AddMember("s2", session("u2", "Bob", domain.RoleStudent))

	eps := r.SnapshotExcept("s1")
	if len(eps) != 1 || eps[0].SID != "s2" {
		t.Fatalf("expected only s2, got %+v", eps)
	}
}

func TestCallRoomParticipants(t *testing.T) {
	r := testRoom()
	r.AddMember("s1", session("u1", "Alice", domain.RoleAdmin))
	r.AddMember("s2", session("u2", "Bob", domain.RoleStudent))

	parts := r.Participants()
	if len(parts) != 2 {
		t.Fatalf("expected 2 participants, got %d", len(parts))
	}
	seen := map[string]bool{}
	for _, p := range parts {
		seen[p.SocketID] = true
		if p.SocketID == "s2" && (p.Username != "Bob" || p.Role != domain.RoleStudent) {
			t.Errorf("bad roster entry for s2: %+v", p)
		}
	}
	if !seen["s1"] || !seen["s2"] {
		t.Errorf("roster missing members: %v", seen)
	}
}

func TestAddMemberRefusedAfterEnd(t *testing.T) {
	r := testRoom()
	r.End()
	n, ok := r.AddMember("s1", session("u1", "Bob", domain.RoleStudent))
	if ok {
		t.Fatal("ended room must refuse new members")
	}
	if n != 0 || r.MemberCount() != 0 {
		t.Fatalf("ended room gained a member: count=%d", n)
	}
	if r.HasMember("s1") {
		t.Fatal("refused joiner must not be in the member set")
	}
}
