package metrics

import "github.com/prometheus/client_golang/prometheus"

// TurnMetrics exposes counters/histograms for dialogue turns.
type TurnMetrics struct {
	turnsTotal      *prometheus.CounterVec
	clarifications  *prometheus.CounterVec
	turnLatency     *prometheus.HistogramVec
	archiveFailures prometheus.Counter
	activeSockets   prometheus.Gauge
}

func NewTurnMetrics(reg prometheus.Registerer) *TurnMetrics {
	m := &TurnMetrics{
		turnsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "scheduler",
			Subsystem: "dialogue",
			Name:      "turns_total",
			Help:      "Total dialogue turns by intent and outcome",
		}, []string{"intent", "status"}),
		clarifications: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "scheduler",
			Subsystem: "dialogue",
			Name:      "clarifications_total",
			Help:      "Turns that ended in a follow-up question",
		}, []string{"code", "field"}),
		turnLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "scheduler",
			Subsystem: "dialogue",
			Name:      "turn_latency_seconds",
			Help:      "Latency of a dialogue turn including session locking",
			Buckets:   prometheus.DefBuckets,
		}, []string{"intent"}),
		archiveFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "scheduler",
			Subsystem: "archive",
			Name:      "record_failures_total",
			Help:      "Confirmed meetings that could not be archived",
		}),
		activeSockets: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "scheduler",
			Subsystem: "voice",
			Name:      "active_connections",
			Help:      "Open voice websocket connections",
		}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.turnsTotal, m.clarifications, m.turnLatency, m.archiveFailures, m.activeSockets)
	return m
}

func (m *TurnMetrics) ObserveTurn(intent, status string, seconds float64) {
	if m == nil {
		return
	}
	m.turnsTotal.WithLabelValues(intent, status).Inc()
	m.turnLatency.WithLabelValues(intent).Observe(seconds)
}

func (m *TurnMetrics) ObserveClarification(code, field string) {
	if m == nil {
		return
	}
	m.clarifications.WithLabelValues(code, field).Inc()
}

func (m *TurnMetrics) ObserveArchiveFailure() {
	if m == nil {
		return
	}
	m.archiveFailures.Inc()
}

// SocketOpened and SocketClosed track live voice connections.
func (m *TurnMetrics) SocketOpened() {
	if m == nil {
		return
	}
	m.activeSockets.Inc()
}

func (m *TurnMetrics) SocketClosed() {
	if m == nil {
		return
	}
	m.activeSockets.Dec()
}
