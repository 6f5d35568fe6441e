package app

import (
	"errors"
	"sync"
	"time"

	"github.com/dkeye/commcall/internal/core"
	"github.com/dkeye/commcall/internal/domain"
	"github.com/rs/zerolog/log"
)

var (
	ErrNotAuthorized = errors.New("not authorized")
	ErrCallNotFound  = errors.New("call not found")
)

// CallStore maps call ids to their rooms. Rooms are created only by
// admins and removed only by the owning admin's explicit end; an empty
// room stays in the store, active, waiting for participants to return.
type CallStore struct {
	mu    sync.RWMutex
	calls map[domain.CallID]*core.CallRoom
}

func NewCallStore() *CallStore {
	return &CallStore{calls: make(map[domain.CallID]*core.CallRoom)}
}

// Create starts a new call owned by admin, with the creating session
// as the first participant.
func (s *CallStore) Create(sid core.SessionID, ms core.MemberSession, withAudio bool) (*core.CallRoom, error) {
	admin := ms.Meta()
	if !admin.Role.IsAdmin() {
		return nil, ErrNotAuthorized
	}
	now := time.Now()
	call := &domain.Call{
		ID:          domain.NewCallID(now),
		AdminUserID: admin.ID,
		AdminName:   admin.Name,
		StartedAt:   now,
		WithAudio:   withAudio,
	}
	room := core.NewCallRoom(call)
	room.AddMember(sid, ms)

	s.mu.Lock()
	s.calls[call.ID] = room
	s.mu.Unlock()

	log.Info().Str("module", "app.calls").Str("call", string(call.ID)).
		Str("admin", string(admin.ID)).Msg("call created")
	return room, nil
}

func (s *CallStore) Get(id domain.CallID) (*core.CallRoom, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	room, ok := s.calls[id]
	return room, ok
}

// ListActive snapshots every live room, for replay to newcomers.
func (s *CallStore) ListActive() []*core.CallRoom {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*core.CallRoom, 0, len(s.calls))
	for _, room := range s.calls {
		if room.Active() {
			out = append(out, room)
		}
	}
	return out
}

// AddParticipant fails when the room is missing or no longer active.
// The final liveness check happens inside the room's own lock, so a
// join racing an End loses cleanly.
func (s *CallStore) AddParticipant(id domain.CallID, sid core.SessionID, ms core.MemberSession) (int, error) {
	room, ok := s.Get(id)
	if !ok {
		return 0, ErrCallNotFound
	}
	count, ok := room.AddMember(sid, ms)
	if !ok {
		return 0, ErrCallNotFound
	}
	return count, nil
}

// RemoveParticipant is a no-op when the session was never in the room
// or the room is gone.
func (s *CallStore) RemoveParticipant(id domain.CallID, sid core.SessionID) int {
	room, ok := s.Get(id)
	if !ok {
		return 0
	}
	count, _ := room.RemoveMember(sid)
	return count
}

// End verifies ownership, marks the room inactive and evicts it from
// the store. The id can never be rejoined; a new call needs Create.
// The evicted room is returned so the coordinator can notify its
// members.
func (s *CallStore) End(id domain.CallID, requester domain.User) (*core.CallRoom, error) {
	s.mu.Lock()
	room, ok := s.calls[id]
	if !ok {
		s.mu.Unlock()
		return nil, ErrCallNotFound
	}
	if !requester.Role.IsAdmin() || requester.ID != room.Call().AdminUserID {
		s.mu.Unlock()
		return nil, ErrNotAuthorized
	}
	// Flip the room dead before it leaves the store, so a join that
	// already holds the room pointer is refused.
	room.End()
	delete(s.calls, id)
	s.mu.Unlock()

	log.Info().Str("module", "app.calls").Str("call", string(id)).
		Str("admin", string(requester.ID)).Msg("call ended")
	return room, nil
}

// RoomsOf scans every room the session participates in. The minimal
// design keeps no per-connection room index; the scan is O(rooms) and
// rooms stay few.
func (s *CallStore) RoomsOf(sid core.SessionID) []*core.CallRoom {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*core.CallRoom, 0, 1)
	for _, room := range s.calls {
		if room.HasMember(sid) {
			out = append(out, room)
		}
	}
	return out
}

func (s *CallStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.calls)
}
