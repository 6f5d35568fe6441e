package signal

import (
	"context"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/dkeye/commcall/internal/core"
	"github.com/dkeye/commcall/internal/protocol"
)

func (ctl *Controller) writePump(ctx context.Context, sid core.SessionID, c *wsSignalConn) {
	ticker := time.NewTicker(ctl.PingPeriod)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case data, ok := <-c.send:
			if !ok {
				return
			}
			if err := c.conn.SetWriteDeadline(time.Now().Add(5 * time.Second)); err != nil {
				log.Error().Err(err).Str("module", "signal").Str("sid", string(sid)).Msg("writePump set deadline")
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				log.Error().Err(err).Str("module", "signal").Str("sid", string(sid)).Msg("writePump write error")
				return
			}
		}
	}
}

func (ctl *Controller) readPump(ctx context.Context, sid core.SessionID, c *wsSignalConn) {
	defer func() {
		log.Info().Str("module", "signal").Str("sid", string(sid)).Msg("readPump closing")
		c.Close()
	}()

	for {
		select {
		case <-ctx.Done():
			return
		default:
			_, data, err := c.conn.ReadMessage()
			if err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
					log.Error().Err(err).Str("module", "signal").Str("sid", string(sid)).Msg("readPump read error")
				}
				return
			}
			ctl.handleFrame(sid, c, data)
		}
	}
}

// handleFrame dispatches one inbound frame by its envelope type.
// Malformed or invalid payloads produce an error event to the sender
// only; nothing is broadcast.
func (ctl *Controller) handleFrame(sid core.SessionID, c *wsSignalConn, data []byte) {
	evt, err := protocol.Sniff(data)
	if err != nil {
		log.Error().Err(err).Str("module", "signal").Str("sid", string(sid)).Msg("bad frame")
		ctl.reply(c, protocol.NewError("bad payload"))
		return
	}

	switch evt {
	case protocol.EvtUserJoin:
		p, err := protocol.Parse[protocol.UserJoin](data)
		if err != nil {
			ctl.reply(c, protocol.NewError("invalid user_join payload"))
			return
		}
		ctl.Orch.Announce(sid, p)

	case protocol.EvtAdminStartCall:
		p, err := protocol.Parse[protocol.AdminStartCall](data)
		if err != nil {
			ctl.reply(c, protocol.NewError("invalid admin_start_call payload"))
			return
		}
		ctl.Orch.StartCall(sid, p)

	case protocol.EvtJoinCall:
		p, err := protocol.Parse[protocol.JoinCall](data)
		if err != nil {
			ctl.reply(c, protocol.NewError("invalid join_call payload"))
			return
		}
		ctl.Orch.JoinCall(sid, p)

	case protocol.EvtLeaveCall:
		p, err := protocol.Parse[protocol.LeaveCall](data)
		if err != nil {
			ctl.reply(c, protocol.NewError("invalid leave_call payload"))
			return
		}
		ctl.Orch.LeaveCall(sid, p)

	case protocol.EvtAdminEndCall:
		p, err := protocol.Parse[protocol.AdminEndCall](data)
		if err != nil {
			ctl.reply(c, protocol.NewError("invalid admin_end_call payload"))
			return
		}
		ctl.Orch.EndCall(sid, p)

	case protocol.EvtSendMessage:
		p, err := protocol.Parse[protocol.SendMessage](data)
		if err != nil {
			ctl.reply(c, protocol.NewError("invalid send_message payload"))
			return
		}
		if ctl.Limiter != nil && !ctl.Limiter.Allow(sid) {
			ctl.reply(c, protocol.NewError("sending too fast, slow down"))
			return
		}
		ctl.Orch.SendMessage(sid, p)

	case protocol.EvtWebRTCOffer, protocol.EvtWebRTCAnswer:
		p, err := protocol.Parse[protocol.WebRTCOffer](data)
		if err != nil {
			ctl.reply(c, protocol.NewError("invalid signaling payload"))
			return
		}
		ctl.Orch.RelaySignal(sid, evt, p.TargetSocketID, p.Payload, p.SenderName)

	case protocol.EvtWebRTCCandidate:
		p, err := protocol.Parse[protocol.WebRTCCandidate](data)
		if err != nil {
			ctl.reply(c, protocol.NewError("invalid signaling payload"))
			return
		}
		ctl.Orch.RelaySignal(sid, evt, p.TargetSocketID, p.Payload, p.SenderName)

	case protocol.EvtPing:
		ctl.reply(c, protocol.Pong{Type: protocol.EvtPong})

	default:
		log.Warn().Str("module", "signal").Str("type", evt).Msg("unknown event")
	}
}

func (ctl *Controller) reply(c *wsSignalConn, v any) {
	frame, err := protocol.Encode(v)
	if err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("reply encode")
		return
	}
	_ = c.TrySend(frame)
}
