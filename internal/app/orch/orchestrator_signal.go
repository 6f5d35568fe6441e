package orch

import (
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/dkeye/commcall/internal/core"
	"github.com/dkeye/commcall/internal/metrics"
	"github.com/dkeye/commcall/internal/protocol"
)

// RelaySignal forwards one offer/answer/candidate to exactly the
// target connection. An unknown target is an expected race with
// disconnects and is dropped without telling the sender.
func (o *Orchestrator) RelaySignal(sid core.SessionID, eventType string, targetSID string, payload any, senderName string) {
	kind := strings.TrimPrefix(eventType, "webrtc_")

	target, ok := o.Registry.Lookup(core.SessionID(targetSID))
	if !ok {
		metrics.SignalsRelayed.WithLabelValues(kind, "dropped").Inc()
		log.Debug().Str("module", "orch").Str("from", string(sid)).
			Str("to", targetSID).Str("kind", kind).Msg("signal target gone, dropped")
		return
	}

	o.sendTo(target, protocol.ForwardedSignal{
		Type:           eventType,
		Payload:        payload,
		SenderSocketID: string(sid),
		SenderName:     senderName,
	})
	metrics.SignalsRelayed.WithLabelValues(kind, "delivered").Inc()
}
