// Package metrics holds the service's prometheus collectors.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// SessionsConnected tracks live websocket sessions.
	SessionsConnected = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "commcall_sessions_connected",
		Help: "Number of currently connected sessions",
	})

	// CallsActive tracks rooms currently in the call store.
	CallsActive = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "commcall_calls_active",
		Help: "Number of active call rooms",
	})

	// MessagesRelayed counts chat messages accepted and fanned out.
	MessagesRelayed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "commcall_messages_relayed_total",
		Help: "Total chat messages relayed",
	})

	// SignalsRelayed counts point-to-point signaling frames by kind.
	// Labels:
	//   - kind: "offer", "answer", "ice_candidate"
	//   - outcome: "delivered", "dropped"
	SignalsRelayed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "commcall_signals_relayed_total",
		Help: "Total WebRTC signaling frames relayed",
	}, []string{"kind", "outcome"})

	// SendsDropped counts frames lost to full send buffers.
	SendsDropped = promauto.NewCounter(prometheus.CounterOpts{
		Name: "commcall_sends_dropped_total",
		Help: "Total outbound frames dropped due to backpressure",
	})
)
