package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// PrometheusCollector implements the Collector interface using
// Prometheus metrics. One instance is created per daemon process,
// tagged with its protocol ("smtp" or "pop3") as a constant label so
// both daemons can share a registry without colliding metric names.
type PrometheusCollector struct {
	// Connection metrics
	connectionsTotal   prometheus.Counter
	connectionsActive  prometheus.Gauge
	tlsConnectionTotal prometheus.Counter

	// Authentication metrics
	authAttemptsTotal *prometheus.CounterVec

	// Command metrics
	commandsTotal *prometheus.CounterVec
}

// NewPrometheusCollector creates a new PrometheusCollector with all
// metrics registered, labeled with the given protocol name.
func NewPrometheusCollector(reg prometheus.Registerer, protocol string) *PrometheusCollector {
	labels := prometheus.Labels{"protocol": protocol}

	c := &PrometheusCollector{
		connectionsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name:        "mailproto_connections_total",
			Help:        "Total number of connections opened.",
			ConstLabels: labels,
		}),
		connectionsActive: prometheus.NewGauge(prometheus.GaugeOpts{
			Name:        "mailproto_connections_active",
			Help:        "Number of currently active connections.",
			ConstLabels: labels,
		}),
		tlsConnectionTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name:        "mailproto_tls_connections_total",
			Help:        "Total number of TLS connections established.",
			ConstLabels: labels,
		}),

		authAttemptsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "mailproto_auth_attempts_total",
			Help:        "Total number of authentication attempts.",
			ConstLabels: labels,
		}, []string{"domain", "result"}),

		commandsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "mailproto_commands_total",
			Help:        "Total number of commands processed.",
			ConstLabels: labels,
		}, []string{"command"}),
	}

	reg.MustRegister(
		c.connectionsTotal,
		c.connectionsActive,
		c.tlsConnectionTotal,
		c.authAttemptsTotal,
		c.commandsTotal,
	)

	return c
}

// ConnectionOpened increments the connection counter and active gauge.
func (c *PrometheusCollector) ConnectionOpened() {
	c.connectionsTotal.Inc()
	c.connectionsActive.Inc()
}

// ConnectionClosed decrements the active connections gauge.
func (c *PrometheusCollector) ConnectionClosed() {
	c.connectionsActive.Dec()
}

// TLSConnectionEstablished increments the TLS connection counter.
func (c *PrometheusCollector) TLSConnectionEstablished() {
	c.tlsConnectionTotal.Inc()
}

// AuthAttempt increments the authentication attempts counter.
func (c *PrometheusCollector) AuthAttempt(authDomain string, success bool) {
	result := "failure"
	if success {
		result = "success"
	}
	c.authAttemptsTotal.WithLabelValues(authDomain, result).Inc()
}

// CommandProcessed increments the command counter.
func (c *PrometheusCollector) CommandProcessed(command string) {
	c.commandsTotal.WithLabelValues(command).Inc()
}
