package observability

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics groups all Prometheus instruments used by the service.
type Metrics struct {
	ActiveSessions     prometheus.Gauge
	MessagesRouted     *prometheus.CounterVec
	WorkflowEvents     *prometheus.CounterVec
	ResolverOutcomes   *prometheus.CounterVec
	CollaboratorErrors *prometheus.CounterVec
	TurnLatency        prometheus.Histogram
}

// NewMetrics registers instruments on reg, or the default registerer when
// reg is nil. Tests pass a fresh registry to avoid duplicate registration.
func NewMetrics(namespace string, reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	f := promauto.With(reg)
	return &Metrics{
		ActiveSessions: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "active_sessions",
			Help:      "Number of live workflow sessions.",
		}),
		MessagesRouted: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "messages_routed_total",
			Help:      "Inbound messages by routing decision.",
		}, []string{"decision"}),
		WorkflowEvents: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "workflow_events_total",
			Help:      "Workflow events by workflow and event.",
		}, []string{"workflow", "event"}),
		ResolverOutcomes: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "resolver_outcomes_total",
			Help:      "Entity resolver outcomes.",
		}, []string{"outcome"}),
		CollaboratorErrors: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "collaborator_errors_total",
			Help:      "External collaborator failures by collaborator.",
		}, []string{"collaborator"}),
		TurnLatency: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "turn_latency_ms",
			Help:      "Time to handle one inbound message in milliseconds.",
			Buckets:   []float64{5, 10, 25, 50, 100, 250, 500, 1000, 2500},
		}),
	}
}

func (m *Metrics) ObserveTurnLatency(d time.Duration) {
	m.TurnLatency.Observe(float64(d.Milliseconds()))
}

func MetricsHandler() http.Handler {
	return promhttp.Handler()
}
