// Package orch coordinates presence, call rooms and message fan-out.
// All shared state lives in the registry, the call store and the
// history buffer; the orchestrator is the only writer of room
// membership and identity bindings.
package orch

import (
	"github.com/rs/zerolog/log"

	"github.com/dkeye/commcall/internal/app"
	"github.com/dkeye/commcall/internal/core"
	"github.com/dkeye/commcall/internal/domain"
	"github.com/dkeye/commcall/internal/metrics"
	"github.com/dkeye/commcall/internal/protocol"
)

type Orchestrator struct {
	Registry *app.Registry
	Calls    *app.CallStore
	History  *core.History
	Policy   app.Policy

	// ReplayLimit caps how much history a newcomer gets.
	ReplayLimit int
}

// Connect binds a fresh connection with a guest identity. The client
// stays anonymous until it announces itself via user_join.
func (o *Orchestrator) Connect(sid core.SessionID, conn core.SignalConnection) core.MemberSession {
	ms := core.NewMemberSession(domain.NewGuest(), conn)
	o.Registry.Bind(sid, ms)
	metrics.SessionsConnected.Set(float64(o.Registry.Len()))
	return ms
}

// Disconnect applies leave cleanup for every room the connection is
// in, then drops the registry entry. Safe to call twice; the second
// call finds nothing to do.
func (o *Orchestrator) Disconnect(sid core.SessionID) {
	ms, ok := o.Registry.Lookup(sid)
	if !ok {
		return
	}
	for _, room := range o.Calls.RoomsOf(sid) {
		o.leaveRoom(room, sid, ms)
	}
	o.Registry.Remove(sid)
	metrics.SessionsConnected.Set(float64(o.Registry.Len()))
	log.Info().Str("module", "orch").Str("sid", string(sid)).Msg("session disconnected")
}

// kick is the backpressure path: same cleanup as a disconnect, plus
// closing the transport so the client observes the drop.
func (o *Orchestrator) kick(sid core.SessionID) {
	ms, ok := o.Registry.Lookup(sid)
	if !ok {
		return
	}
	o.Disconnect(sid)
	ms.Signal().Close()
	log.Warn().Str("module", "orch").Str("sid", string(sid)).Msg("kicked slow consumer")
}

// deliver encodes once and fans out to a pre-computed endpoint
// snapshot. Dropped sends go through the backpressure policy.
func (o *Orchestrator) deliver(targets []core.Endpoint, v any) {
	frame, err := protocol.Encode(v)
	if err != nil {
		log.Error().Err(err).Str("module", "orch").Msg("encode outbound event")
		return
	}
	var slow []core.SessionID
	for _, ep := range targets {
		if err := ep.Session.Signal().TrySend(frame); err != nil {
			metrics.SendsDropped.Inc()
			slow = append(slow, ep.SID)
		}
	}
	if o.Policy == nil {
		return
	}
	for _, sid := range slow {
		if o.Policy.OnBackPressure(sid) == app.KickMember {
			o.kick(sid)
		}
	}
}

// sendTo targets the originating connection only, for replies and
// error events.
func (o *Orchestrator) sendTo(ms core.MemberSession, v any) {
	frame, err := protocol.Encode(v)
	if err != nil {
		log.Error().Err(err).Str("module", "orch").Msg("encode outbound event")
		return
	}
	if err := ms.Signal().TrySend(frame); err != nil {
		metrics.SendsDropped.Inc()
	}
}

func (o *Orchestrator) sendError(ms core.MemberSession, msg string) {
	o.sendTo(ms, protocol.NewError(msg))
}
