package core

import (
	"sync"

	"github.com/dkeye/commcall/internal/domain"
	"github.com/rs/zerolog/log"
)

// CallRoom is a threadsafe membership set for one call. It never
// closes adapter-owned resources. A room with zero members stays
// active; only an explicit admin end flips the flag.
type CallRoom struct {
	call *domain.Call

	mu      sync.RWMutex
	active  bool
	members map[SessionID]MemberSession
}

func NewCallRoom(call *domain.Call) *CallRoom {
	return &CallRoom{
		call:    call,
		active:  true,
		members: make(map[SessionID]MemberSession),
	}
}

func (r *CallRoom) Call() *domain.Call { return r.call }

func (r *CallRoom) Active() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.active
}

// End marks the room dead. The store calls this while evicting; any
// AddMember that loses the race against it is refused.
func (r *CallRoom) End() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.active = false
}

func (r *CallRoom) MemberCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.members)
}

func (r *CallRoom) HasMember(sid SessionID) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.members[sid]
	return ok
}

// AddMember refuses once the room has been ended; the liveness check
// shares the membership lock so a concurrent End cannot slip a joiner
// into a dead room.
func (r *CallRoom) AddMember(sid SessionID, ms MemberSession) (int, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.active {
		return len(r.members), false
	}
	r.members[sid] = ms
	log.Info().Str("module", "core.room").Str("call", string(r.call.ID)).
		Str("sid", string(sid)).Str("user", string(ms.Meta().ID)).Msg("member added")
	return len(r.members), true
}

// RemoveMember is a no-op when the session was never a member.
func (r *CallRoom) RemoveMember(sid SessionID) (int, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.members[sid]; !ok {
		return len(r.members), false
	}
	delete(r.members, sid)
	log.Info().Str("module", "core.room").Str("call", string(r.call.ID)).
		Str("sid", string(sid)).Msg("member removed")
	return len(r.members), true
}

// Snapshot returns the current member set for fan-out. Delivery
// happens outside the lock.
func (r *CallRoom) Snapshot() []Endpoint {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Endpoint, 0, len(r.members))
	for sid, ms := range r.members {
		out = append(out, Endpoint{SID: sid, Session: ms})
	}
	return out
}

// SnapshotExcept is Snapshot minus one session, for events directed
// at everyone already in the room.
func (r *CallRoom) SnapshotExcept(except SessionID) []Endpoint {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Endpoint, 0, len(r.members))
	for sid, ms := range r.members {
		if sid == except {
			continue
		}
		out = append(out, Endpoint{SID: sid, Session: ms})
	}
	return out
}

func (r *CallRoom) Participants() []ParticipantDTO {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]ParticipantDTO, 0, len(r.members))
	for sid, ms := range r.members {
		u := ms.Meta()
		out = append(out, ParticipantDTO{
			SocketID: string(sid),
			UserID:   u.ID,
			Username: u.Name,
			Role:     u.Role,
		})
	}
	return out
}
