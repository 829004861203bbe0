package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func TestPrometheusCollectorImplementsInterface(t *testing.T) {
	reg := prometheus.NewRegistry()
	var _ Collector = NewPrometheusCollector(reg)
}

func TestPrometheusServerImplementsInterface(t *testing.T) {
	var _ Server = NewPrometheusServer(":0", "/metrics", nil)
}

func TestPrometheusCollectorMethods(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewPrometheusCollector(reg)

	// All methods should execute without panic
	c.ConnectionOpened()
	c.ConnectionClosed()
	c.TLSConnectionEstablished()
	c.LoginAttempt("success")
	c.LoginAttempt("unauthorized")
	c.CommandProcessed("Send")
	c.CommandProcessed("Nop")
	c.ParseError()
	c.MessageRouted()
	c.MessageBuffered()
	c.MessagesDelivered(2)

	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("failed to gather metrics: %v", err)
	}

	metricNames := make(map[string]bool)
	for _, mf := range mfs {
		metricNames[mf.GetName()] = true
	}

	expectedMetrics := []string{
		"quipd_connections_total",
		"quipd_connections_active",
		"quipd_tls_connections_total",
		"quipd_login_attempts_total",
		"quipd_commands_total",
		"quipd_parse_errors_total",
		"quipd_messages_routed_total",
		"quipd_messages_buffered_total",
		"quipd_messages_delivered_total",
	}

	for _, name := range expectedMetrics {
		if !metricNames[name] {
			t.Errorf("expected metric %q not found", name)
		}
	}
}

func TestPrometheusCollectorConnectionMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewPrometheusCollector(reg)

	c.ConnectionOpened()
	c.ConnectionOpened()
	c.ConnectionClosed()

	if got := gaugeValue(t, reg, "quipd_connections_active"); got != 1 {
		t.Errorf("quipd_connections_active = %v, want 1", got)
	}
	if got := counterValue(t, reg, "quipd_connections_total"); got != 2 {
		t.Errorf("quipd_connections_total = %v, want 2", got)
	}
}

func TestPrometheusCollectorDeliveredCount(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewPrometheusCollector(reg)

	c.MessagesDelivered(3)
	c.MessagesDelivered(2)

	if got := counterValue(t, reg, "quipd_messages_delivered_total"); got != 5 {
		t.Errorf("quipd_messages_delivered_total = %v, want 5", got)
	}
}

func findMetric(t *testing.T, reg *prometheus.Registry, name string) *dto.Metric {
	t.Helper()
	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	for _, mf := range mfs {
		if mf.GetName() == name {
			if len(mf.GetMetric()) == 0 {
				t.Fatalf("metric %q has no samples", name)
			}
			return mf.GetMetric()[0]
		}
	}
	t.Fatalf("metric %q not found", name)
	return nil
}

func counterValue(t *testing.T, reg *prometheus.Registry, name string) float64 {
	t.Helper()
	return findMetric(t, reg, name).GetCounter().GetValue()
}

func gaugeValue(t *testing.T, reg *prometheus.Registry, name string) float64 {
	t.Helper()
	return findMetric(t, reg, name).GetGauge().GetValue()
}
