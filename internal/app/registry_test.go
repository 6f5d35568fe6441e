package app

import (
	"fmt"
	"sync"
	"testing"

	"github.com/dkeye/commcall/internal/core"
	"github.com/dkeye/commcall/internal/domain"
)

type nopConn struct{}

func (nopConn) TrySend(core.Frame) error { return nil }
func (nopConn) Close()                   {}

func newSession(id, name string, role domain.Role) core.MemberSession {
	return core.NewMemberSession(domain.User{ID: domain.UserID(id), Name: name, Role: role}, nopConn{})
}

func TestRegistryBindLookupRemove(t *testing.T) {
	r := NewRegistry()
	r.Bind("s1", newSession("u1", "Alice", domain.RoleAdmin))

	ms, ok := r.Lookup("s1")
	if !ok || ms.Meta().Name != "Alice" {
		t.Fatal("lookup after bind failed")
	}

	// Rebinding replaces in place.
	r.Bind("s1", newSession("u1", "Alice B.", domain.RoleAdmin))
	ms, _ = r.Lookup("s1")
	if ms.Meta().Name != "Alice B." {
		t.Error("bind must replace the existing session")
	}

	r.Remove("s1")
	if _, ok := r.Lookup("s1"); ok {
		t.Error("lookup after remove must fail")
	}
	// Removing again is a no-op.
	r.Remove("s1")
	if r.Len() != 0 {
		t.Errorf("expected empty registry, got %d", r.Len())
	}
}

func TestRegistrySnapshotExcept(t *testing.T) {
	r := NewRegistry()
	r.Bind("s1", newSession("u1", "Alice", domain.RoleAdmin))
	r.Bind("s2", newSession("u2", "Bob", domain.RoleStudent))
	r.Bind("s3", newSession("u3", "Carol", domain.RoleStudent))

	eps := r.SnapshotExcept("s2")
	if len(eps) != 2 {
		t.Fatalf("expected 2 endpoints, got %d", len(eps))
	}
	for _, ep := range eps {
		if ep.SID == "s2" {
			t.Fatal("excluded session present in snapshot")
		}
	}
}

func TestRegistryConcurrentAccess(t *testing.T) {
	r := NewRegistry()
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			sid := core.SessionID(fmt.Sprintf("s%d", i))
			r.Bind(sid, newSession(fmt.Sprintf("u%d", i), "user", domain.RoleStudent))
			r.Lookup(sid)
			r.Snapshot()
			if i%2 == 0 {
				r.Remove(sid)
			}
		}(i)
	}
	wg.Wait()
	if r.Len() != 8 {
		t.Fatalf("expected 8 remaining sessions, got %d", r.Len())
	}
}
