package observability

import (
	"context"
	"strconv"

	"github.com/aretw0/chatflow/pkg/domain"
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus collectors fed by engine hooks.
type Metrics struct {
	Turns           *prometheus.CounterVec
	TurnSteps       *prometheus.HistogramVec
	NodeVisits      *prometheus.CounterVec
	WebhookCalls    *prometheus.CounterVec
	WebhookDuration *prometheus.HistogramVec
}

// NewMetrics creates the collectors and registers them with reg.
// A nil reg leaves them unregistered.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Turns: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "chatflow_turns_total",
				Help: "Total number of interpreter turns, by flow and resulting status",
			},
			[]string{"flow_id", "status"},
		),
		TurnSteps: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "chatflow_turn_steps",
				Help:    "Number of nodes executed per turn",
				Buckets: []float64{0, 1, 2, 4, 8, 16, 32, 64, 100},
			},
			[]string{"flow_id"},
		),
		NodeVisits: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "chatflow_node_visits_total",
				Help: "Total number of node visits",
			},
			[]string{"flow_id", "node_type"},
		),
		WebhookCalls: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "chatflow_webhook_calls_total",
				Help: "Total number of webhook calls, by outcome",
			},
			[]string{"flow_id", "method", "success"},
		),
		WebhookDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "chatflow_webhook_duration_seconds",
				Help:    "Duration of webhook calls",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"flow_id"},
		),
	}
	if reg != nil {
		reg.MustRegister(m.Turns, m.TurnSteps, m.NodeVisits, m.WebhookCalls, m.WebhookDuration)
	}
	return m
}

// Hooks returns lifecycle hooks recording into m.
func (m *Metrics) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnTurnEnd: func(_ context.Context, e *domain.TurnEvent) {
			m.Turns.WithLabelValues(e.FlowID, string(e.Status)).Inc()
			m.TurnSteps.WithLabelValues(e.FlowID).Observe(float64(e.Steps))
		},
		OnNodeEnter: func(_ context.Context, e *domain.NodeEvent) {
			m.NodeVisits.WithLabelValues(e.FlowID, string(e.NodeType)).Inc()
		},
		OnWebhookCall: func(_ context.Context, e *domain.WebhookEvent) {
			m.WebhookCalls.WithLabelValues(e.FlowID, e.Method, strconv.FormatBool(e.Success)).Inc()
			m.WebhookDuration.WithLabelValues(e.FlowID).Observe(e.Duration.Seconds())
		},
	}
}
