// Package signal is the websocket adapter: it owns the transport
// connections and translates wire frames into orchestrator calls.
package signal

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/dkeye/commcall/internal/app/orch"
	"github.com/dkeye/commcall/internal/core"
)

var ErrBackpressure = errors.New("backpressure")

type Controller struct {
	Orch       *orch.Orchestrator
	Limiter    *SendRateLimiter
	ReadLimit  int64
	PingPeriod time.Duration
}

func NewController(o *orch.Orchestrator, limiter *SendRateLimiter, readLimit int64, pingPeriod time.Duration) *Controller {
	return &Controller{
		Orch:       o,
		Limiter:    limiter,
		ReadLimit:  readLimit,
		PingPeriod: pingPeriod,
	}
}

// wsSignalConn implements core.SignalConnection over one gorilla
// conn. Sends are non-blocking; a full buffer surfaces as
// ErrBackpressure and the policy decides the member's fate.
type wsSignalConn struct {
	conn *websocket.Conn
	send chan core.Frame

	mu     sync.RWMutex
	closed bool
}

func (c *wsSignalConn) TrySend(f core.Frame) error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return errors.New("connection closed")
	}
	select {
	case c.send <- f:
	default:
		return ErrBackpressure
	}
	return nil
}

func (c *wsSignalConn) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	close(c.send)
	_ = c.conn.Close()
	c.mu.Unlock()
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// HandleWS upgrades the request and services the connection until it
// closes. Each connection gets a fresh socket id; reconnects from the
// same client token are distinct connections.
func (ctl *Controller) HandleWS(ctx context.Context, c *gin.Context) {
	wsconn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("upgrade failed")
		return
	}
	if ctl.ReadLimit > 0 {
		wsconn.SetReadLimit(ctl.ReadLimit)
	}

	sid := core.SessionID(uuid.NewString())
	conn := &wsSignalConn{conn: wsconn, send: make(chan core.Frame, 256)}

	ctl.Orch.Connect(sid, conn)
	log.Info().Str("module", "signal").Str("sid", string(sid)).
		Str("client_token", c.GetString("client_token")).Msg("session connected")

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	go ctl.writePump(ctx, sid, conn)
	ctl.readPump(ctx, sid, conn)

	ctl.Orch.Disconnect(sid)
	if ctl.Limiter != nil {
		ctl.Limiter.Forget(sid)
	}
	conn.Close()
}
