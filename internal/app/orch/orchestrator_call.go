package orch

import (
	"errors"

	"github.com/rs/zerolog/log"

	"github.com/dkeye/commcall/internal/app"
	"github.com/dkeye/commcall/internal/core"
	"github.com/dkeye/commcall/internal/domain"
	"github.com/dkeye/commcall/internal/metrics"
	"github.com/dkeye/commcall/internal/protocol"
)

// StartCall handles admin_start_call. The call_started event goes out
// globally: anyone connected may want to join.
func (o *Orchestrator) StartCall(sid core.SessionID, p *protocol.AdminStartCall) {
	ms, ok := o.Registry.Lookup(sid)
	if !ok {
		return
	}
	room, err := o.Calls.Create(sid, ms, p.WithAudio)
	if err != nil {
		o.sendError(ms, "only an admin can start a call")
		return
	}
	metrics.CallsActive.Set(float64(o.Calls.Len()))

	o.deliver(o.Registry.Snapshot(), protocol.NewCallStarted(room.Call()))
	o.deliver(room.Snapshot(), protocol.NewParticipantsUpdate(room.Call().ID, room.Participants()))
}

// JoinCall handles join_call. Join-time identity fields win over
// announce-time ones. The roster snapshot is taken after the join, so
// the joiner sees its own membership confirmed; the targeted
// webrtc_new_participant goes only to members that were already in
// the room, which keeps offer initiation one-directional.
func (o *Orchestrator) JoinCall(sid core.SessionID, p *protocol.JoinCall) {
	ms, ok := o.Registry.Lookup(sid)
	if !ok {
		return
	}
	callID := domain.CallID(p.CallID)
	room, ok := o.Calls.Get(callID)
	if !ok || !room.Active() {
		o.sendError(ms, "call not found")
		return
	}

	// Identity refinement only on a join that can succeed; a bad call
	// id must not rewrite who the caller is.
	var role *domain.Role
	if p.IsAdmin != nil {
		r := domain.RoleStudent
		if *p.IsAdmin {
			r = domain.RoleAdmin
		}
		role = &r
	}
	ms.Refine(p.UserID, p.UserName, role)

	existing := room.SnapshotExcept(sid)

	count, err := o.Calls.AddParticipant(callID, sid, ms)
	if err != nil {
		o.sendError(ms, "call not found")
		return
	}

	u := ms.Meta()
	log.Info().Str("module", "orch").Str("sid", string(sid)).
		Str("call", string(callID)).Str("user", string(u.ID)).Int("count", count).
		Msg("joined call")

	members := room.Snapshot()
	o.deliver(members, protocol.UserJoinedCall{
		Type:             protocol.EvtUserJoinedCall,
		UserName:         u.Name,
		UserID:           string(u.ID),
		Role:             u.Role,
		SocketID:         string(sid),
		ParticipantCount: count,
	})
	o.deliver(members, protocol.NewParticipantsUpdate(callID, room.Participants()))
	o.deliver(existing, protocol.NewParticipant{
		Type:     protocol.EvtNewParticipant,
		SocketID: string(sid),
		UserName: u.Name,
	})
}

// LeaveCall handles leave_call. Leaving a room one is not in is a
// no-op; referencing a room that no longer exists is an error to the
// caller only.
func (o *Orchestrator) LeaveCall(sid core.SessionID, p *protocol.LeaveCall) {
	ms, ok := o.Registry.Lookup(sid)
	if !ok {
		return
	}
	room, ok := o.Calls.Get(domain.CallID(p.CallID))
	if !ok {
		o.sendError(ms, "call not found")
		return
	}
	o.leaveRoom(room, sid, ms)
}

// leaveRoom is the shared leave/disconnect cleanup for one room. The
// room stays active even at zero participants; only admin_end_call
// removes it. When the room's admin walks away the call survives and
// everyone is told so.
func (o *Orchestrator) leaveRoom(room *core.CallRoom, sid core.SessionID, ms core.MemberSession) {
	count, removed := room.RemoveMember(sid)
	if !removed {
		return
	}
	u := ms.Meta()
	remaining := room.Snapshot()
	o.deliver(remaining, protocol.UserLeftCall{
		Type:             protocol.EvtUserLeftCall,
		UserName:         u.Name,
		SocketID:         string(sid),
		ParticipantCount: count,
	})
	o.deliver(remaining, protocol.NewParticipantsUpdate(room.Call().ID, room.Participants()))

	if u.ID == room.Call().AdminUserID {
		o.deliver(o.Registry.Snapshot(), protocol.AdminAway{
			Type:    protocol.EvtAdminAway,
			CallID:  string(room.Call().ID),
			Message: "admin is away, call remains active",
		})
	}
}

// EndCall handles admin_end_call. Authorization failures change
// nothing and broadcast nothing; ending an absent room is a no-op.
func (o *Orchestrator) EndCall(sid core.SessionID, p *protocol.AdminEndCall) {
	ms, ok := o.Registry.Lookup(sid)
	if !ok {
		return
	}
	room, err := o.Calls.End(domain.CallID(p.CallID), ms.Meta())
	if err != nil {
		if errors.Is(err, app.ErrNotAuthorized) {
			log.Debug().Str("module", "orch").Str("sid", string(sid)).
				Str("call", p.CallID).Msg("unauthorized end_call ignored")
		}
		return
	}
	metrics.CallsActive.Set(float64(o.Calls.Len()))

	// Evict remaining members from the dead room before announcing.
	for _, ep := range room.Snapshot() {
		room.RemoveMember(ep.SID)
	}
	o.deliver(o.Registry.Snapshot(), protocol.CallEnded{
		Type:    protocol.EvtCallEnded,
		CallID:  p.CallID,
		Message: "call ended by admin",
		EndedBy: ms.Meta().Name,
	})
}
