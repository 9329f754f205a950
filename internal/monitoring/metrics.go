// Package monitoring exposes Prometheus metrics for the room server.
package monitoring

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	sessionsConnected = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "encore_sessions_connected",
			Help: "Currently connected websocket sessions",
		},
	)

	relayMessages = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "encore_relay_messages_total",
			Help: "Messages published per channel kind and delivery outcome",
		},
		[]string{"kind", "outcome"},
	)

	tunnelRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "encore_janus_tunnel_requests_total",
			Help: "Requests proxied to the media gateway",
		},
		[]string{"method", "outcome"},
	)
)

func SessionOpened() { sessionsConnected.Inc() }
func SessionClosed() { sessionsConnected.Dec() }

func RelayPublished(kind string, delivered, dropped int) {
	if delivered > 0 {
		relayMessages.WithLabelValues(kind, "delivered").Add(float64(delivered))
	}
	if dropped > 0 {
		relayMessages.WithLabelValues(kind, "dropped").Add(float64(dropped))
	}
}

func TunnelRequest(method, outcome string) {
	tunnelRequests.WithLabelValues(method, outcome).Inc()
}

// Handler serves the /metrics endpoint.
func Handler() gin.HandlerFunc {
	return gin.WrapH(promhttp.Handler())
}
