package orch

import (
	"github.com/rs/zerolog/log"

	"github.com/dkeye/commcall/internal/core"
	"github.com/dkeye/commcall/internal/domain"
	"github.com/dkeye/commcall/internal/metrics"
	"github.com/dkeye/commcall/internal/protocol"
)

// SendMessage validates, persists and fans out one chat message. The
// sender identity comes from the registry binding, never from the
// payload. A room with no live members falls back to a global
// broadcast so the message is not silently lost.
func (o *Orchestrator) SendMessage(sid core.SessionID, p *protocol.SendMessage) {
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

	msg, err := domain.NewChatMessage(callID, string(sid), ms.Meta(), p.Text)
	if err != nil {
		o.sendError(ms, "message text must not be empty")
		return
	}

	o.History.Append(msg)
	metrics.MessagesRelayed.Inc()

	targets := room.Snapshot()
	if len(targets) == 0 {
		// Possibly a stale call id on the client; keep the message
		// visible rather than dropping it.
		log.Warn().Str("module", "orch").Str("call", string(callID)).
			Msg("room has no members, falling back to global broadcast")
		targets = o.Registry.Snapshot()
	}
	o.deliver(targets, protocol.NewNewMessage(msg))
}
