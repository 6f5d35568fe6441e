package app

import (
	"sync"

	"github.com/dkeye/commcall/internal/core"
	"github.com/dkeye/commcall/internal/domain"
	"github.com/rs/zerolog/log"
)

// Registry maps each live connection to the session that owns it.
// Everything else consults it; nothing else mutates it.
type Registry struct {
	mu       sync.RWMutex
	sessions map[core.SessionID]core.MemberSession
}

func NewRegistry() *Registry {
	return &Registry{sessions: make(map[core.SessionID]core.MemberSession)}
}

// Bind inserts or replaces the session for a connection. Idempotent.
func (r *Registry) Bind(sid core.SessionID, ms core.MemberSession) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[sid] = ms
	log.Info().Str("module", "app.registry").Str("sid", string(sid)).Msg("bound session")
}

func (r *Registry) Lookup(sid core.SessionID) (core.MemberSession, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ms, ok := r.sessions[sid]
	return ms, ok
}

// User is a convenience over Lookup for identity-only callers.
func (r *Registry) User(sid core.SessionID) (domain.User, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if ms, ok := r.sessions[sid]; ok {
		return ms.Meta(), true
	}
	return domain.User{}, false
}

// Remove is a no-op when the session is already gone.
func (r *Registry) Remove(sid core.SessionID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.sessions[sid]; !ok {
		return
	}
	delete(r.sessions, sid)
	log.Info().Str("module", "app.registry").Str("sid", string(sid)).Msg("unbound session")
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// Snapshot returns every live endpoint for system-wide fan-out.
func (r *Registry) Snapshot() []core.Endpoint {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]core.Endpoint, 0, len(r.sessions))
	for sid, ms := range r.sessions {
		out = append(out, core.Endpoint{SID: sid, Session: ms})
	}
	return out
}

// SnapshotExcept is Snapshot minus the originating connection, for
// presence-wide notices.
func (r *Registry) SnapshotExcept(except core.SessionID) []core.Endpoint {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]core.Endpoint, 0, len(r.sessions))
	for sid, ms := range r.sessions {
		if sid == except {
			continue
		}
		out = append(out, core.Endpoint{SID: sid, Session: ms})
	}
	return out
}
