package metrics

import "github.com/prometheus/client_golang/prometheus"

// IntakeMetrics exposes counters/histograms for the voice intake flow.
type IntakeMetrics struct {
	callsStarted    prometheus.Counter
	turnsTotal      *prometheus.CounterVec
	callsEnded      *prometheus.CounterVec
	matcherFallback prometheus.Counter
	webhookLatency  *prometheus.HistogramVec
}

func NewIntakeMetrics(reg prometheus.Registerer) *IntakeMetrics {
	m := &IntakeMetrics{
		callsStarted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "clinic",
			Subsystem: "intake",
			Name:      "calls_started_total",
			Help:      "Total intake calls answered",
		}),
		turnsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "clinic",
			Subsystem: "intake",
			Name:      "turns_total",
			Help:      "Total dialogue turns processed, by step and result",
		}, []string{"step", "result"}),
		callsEnded: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "clinic",
			Subsystem: "intake",
			Name:      "calls_ended_total",
			Help:      "Total intake calls ended, by outcome",
		}, []string{"outcome"}),
		matcherFallback: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "clinic",
			Subsystem: "intake",
			Name:      "matcher_fallback_total",
			Help:      "Times the LLM matcher was unavailable and local matching decided",
		}),
		webhookLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "clinic",
			Subsystem: "intake",
			Name:      "webhook_latency_seconds",
			Help:      "Latency of Twilio webhook processing",
			Buckets:   prometheus.DefBuckets,
		}, []string{"endpoint"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.callsStarted, m.turnsTotal, m.callsEnded, m.matcherFallback, m.webhookLatency)
	return m
}

func (m *IntakeMetrics) ObserveCallStarted() {
	if m == nil {
		return
	}
	m.callsStarted.Inc()
}

// ObserveTurn records one processed utterance. Result is "stored",
// "reask", or "terminal".
func (m *IntakeMetrics) ObserveTurn(step, result string) {
	if m == nil {
		return
	}
	m.turnsTotal.WithLabelValues(step, result).Inc()
}

func (m *IntakeMetrics) ObserveCallEnded(outcome string) {
	if m == nil {
		return
	}
	m.callsEnded.WithLabelValues(outcome).Inc()
}

func (m *IntakeMetrics) ObserveMatcherFallback() {
	if m == nil {
		return
	}
	m.matcherFallback.Inc()
}

func (m *IntakeMetrics) ObserveWebhookLatency(endpoint string, seconds float64) {
	if m == nil {
		return
	}
	m.webhookLatency.WithLabelValues(endpoint).Observe(seconds)
}
