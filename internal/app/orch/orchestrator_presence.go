package orch

import (
	"github.com/rs/zerolog/log"

	"github.com/dkeye/commcall/internal/core"
	"github.com/dkeye/commcall/internal/domain"
	"github.com/dkeye/commcall/internal/protocol"
)

// Announce handles user_join: the connection claims an identity, gets
// the current world state replayed, and everyone else learns it is
// online. Presence is system-wide, not call-scoped.
func (o *Orchestrator) Announce(sid core.SessionID, p *protocol.UserJoin) {
	ms, ok := o.Registry.Lookup(sid)
	if !ok {
		return
	}
	role := domain.ParseRole(p.Role)
	ms.Refine(p.UserID, p.UserName, &role)
	log.Info().Str("module", "orch").Str("sid", string(sid)).
		Str("user", p.UserID).Str("name", p.UserName).Str("role", string(role)).
		Msg("identity announced")

	// Replay every active call to this connection only, so a late
	// joiner sees which calls it may enter.
	for _, room := range o.Calls.ListActive() {
		o.sendTo(ms, protocol.NewCallStarted(room.Call()))
	}

	// Replay recent chat history to this connection only. The buffer
	// is shared across calls; replay is deliberately not room-scoped.
	if msgs := o.History.Recent(o.ReplayLimit); len(msgs) > 0 {
		o.sendTo(ms, protocol.NewChatHistory(msgs))
	}

	u := ms.Meta()
	o.deliver(o.Registry.SnapshotExcept(sid), protocol.UserOnline{
		Type:     protocol.EvtUserOnline,
		UserID:   string(u.ID),
		UserName: u.Name,
		Role:     u.Role,
		SocketID: string(sid),
	})
}
