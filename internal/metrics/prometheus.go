package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// PrometheusCollector implements the Collector interface using Prometheus metrics.
type PrometheusCollector struct {
	// Connection metrics
	connectionsTotal   prometheus.Counter
	connectionsActive  prometheus.Gauge
	tlsConnectionTotal prometheus.Counter

	// Login metrics
	loginAttemptsTotal *prometheus.CounterVec

	// Command metrics
	commandsTotal    *prometheus.CounterVec
	parseErrorsTotal prometheus.Counter

	// Routing metrics
	messagesRoutedTotal    prometheus.Counter
	messagesBufferedTotal  prometheus.Counter
	messagesDeliveredTotal prometheus.Counter
}

// NewPrometheusCollector creates a new PrometheusCollector with all metrics registered.
func NewPrometheusCollector(reg prometheus.Registerer) *PrometheusCollector {
	c := &PrometheusCollector{
		connectionsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "quipd_connections_total",
			Help: "Total number of client connections opened.",
		}),
		connectionsActive: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "quipd_connections_active",
			Help: "Number of currently active client connections.",
		}),
		tlsConnectionTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "quipd_tls_connections_total",
			Help: "Total number of TLS connections established.",
		}),

		loginAttemptsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "quipd_login_attempts_total",
			Help: "Total number of login attempts.",
		}, []string{"result"}),

		commandsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "quipd_commands_total",
			Help: "Total number of protocol commands processed.",
		}, []string{"command"}),
		parseErrorsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "quipd_parse_errors_total",
			Help: "Total number of lines rejected by the frame parser.",
		}),

		messagesRoutedTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "quipd_messages_routed_total",
			Help: "Total number of messages accepted for routing.",
		}),
		messagesBufferedTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "quipd_messages_buffered_total",
			Help: "Total number of messages buffered for offline receivers.",
		}),
		messagesDeliveredTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "quipd_messages_delivered_total",
			Help: "Total number of responses delivered to a connection.",
		}),
	}

	// Register all metrics
	reg.MustRegister(
		c.connectionsTotal,
		c.connectionsActive,
		c.tlsConnectionTotal,
		c.loginAttemptsTotal,
		c.commandsTotal,
		c.parseErrorsTotal,
		c.messagesRoutedTotal,
		c.messagesBufferedTotal,
		c.messagesDeliveredTotal,
	)

	return c
}

// ConnectionOpened increments the connection counters.
func (c *PrometheusCollector) ConnectionOpened() {
	c.connectionsTotal.Inc()
	c.connectionsActive.Inc()
}

// ConnectionClosed decrements the active connection gauge.
func (c *PrometheusCollector) ConnectionClosed() {
	c.connectionsActive.Dec()
}

// TLSConnectionEstablished increments the TLS connection counter.
func (c *PrometheusCollector) TLSConnectionEstablished() {
	c.tlsConnectionTotal.Inc()
}

// LoginAttempt records a login attempt by result.
func (c *PrometheusCollector) LoginAttempt(result string) {
	c.loginAttemptsTotal.WithLabelValues(result).Inc()
}

// CommandProcessed records a processed command by verb.
func (c *PrometheusCollector) CommandProcessed(command string) {
	c.commandsTotal.WithLabelValues(command).Inc()
}

// ParseError records a rejected line.
func (c *PrometheusCollector) ParseError() {
	c.parseErrorsTotal.Inc()
}

// MessageRouted records an accepted Send.
func (c *PrometheusCollector) MessageRouted() {
	c.messagesRoutedTotal.Inc()
}

// MessageBuffered records a message buffered in a cache mailbox.
func (c *PrometheusCollector) MessageBuffered() {
	c.messagesBufferedTotal.Inc()
}

// MessagesDelivered records count responses drained to a connection.
func (c *PrometheusCollector) MessagesDelivered(count int) {
	c.messagesDeliveredTotal.Add(float64(count))
}
