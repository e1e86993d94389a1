package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
)

func TestIntakeMetricsObserve(t *testing.T) {
	m := NewIntakeMetrics(prometheus.NewRegistry())
	m.ObserveCallStarted()
	m.ObserveTurn("reason", "stored")
	m.ObserveTurn("reason", "reask")
	m.ObserveCallEnded("transferred")
	m.ObserveMatcherFallback()
	m.ObserveWebhookLatency("voice", 0.25)
}

func TestIntakeMetricsCustomRegistry(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewIntakeMetrics(reg)
	m.ObserveCallEnded("medicaid_recorded")
}

func TestIntakeMetricsNilSafe(t *testing.T) {
	var m *IntakeMetrics
	m.ObserveCallStarted()
	m.ObserveTurn("name", "stored")
	m.ObserveCallEnded("completed")
	m.ObserveMatcherFallback()
	m.ObserveWebhookLatency("voice", 0.1)
}
