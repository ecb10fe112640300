package observability

import (
	"context"

	"github.com/aretw0/machi/pkg/domain"
	"github.com/aretw0/machi/pkg/ports"
	"github.com/prometheus/client_golang/prometheus"
)

// Outcome label values of machi_resolutions_total.
const (
	OutcomeEntry    = "entry"
	OutcomeResumed  = "resumed"
	OutcomeComplete = "complete"
	OutcomeError    = "error"
)

// Metrics holds the resolution collectors.
type Metrics struct {
	resolutions  *prometheus.CounterVec
	duration     *prometheus.HistogramVec
	currentEntry *prometheus.CounterVec
	forksEntered *prometheus.CounterVec
}

// NewMetrics creates the collectors and registers them with reg. With a nil
// reg the Metrics can be registered later, it is a prometheus.Collector.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		resolutions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "machi_resolutions_total",
				Help: "Flow resolutions by outcome.",
			},
			[]string{"flow", "outcome"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "machi_resolution_duration_seconds",
				Help:    "Time spent resolving a flow.",
				Buckets: prometheus.ExponentialBuckets(0.00001, 4, 10),
			},
			[]string{"flow"},
		),
		currentEntry: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "machi_current_entry_total",
				Help: "Times each entry was resolved as the current one.",
			},
			[]string{"flow", "entry"},
		),
		forksEntered: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "machi_forks_entered_total",
				Help: "Times each fork was entered.",
			},
			[]string{"flow", "fork"},
		),
	}

	if reg != nil {
		if err := reg.Register(m); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (m *Metrics) collectors() []prometheus.Collector {
	return []prometheus.Collector{m.resolutions, m.duration, m.currentEntry, m.forksEntered}
}

// Describe implements prometheus.Collector.
func (m *Metrics) Describe(ch chan<- *prometheus.Desc) {
	for _, c := range m.collectors() {
		c.Describe(ch)
	}
}

// Collect implements prometheus.Collector.
func (m *Metrics) Collect(ch chan<- prometheus.Metric) {
	for _, c := range m.collectors() {
		c.Collect(ch)
	}
}

// Hooks returns lifecycle hooks updating the collectors.
func (m *Metrics) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnResolve: func(_ context.Context, e *domain.ResolveEvent) {
			outcome := OutcomeEntry
			switch {
			case e.Done:
				outcome = OutcomeComplete
			case e.Resumed:
				outcome = OutcomeResumed
			}
			m.resolutions.WithLabelValues(e.Flow, outcome).Inc()
			m.duration.WithLabelValues(e.Flow).Observe(e.Duration.Seconds())
			if e.EntryID != "" {
				m.currentEntry.WithLabelValues(e.Flow, e.EntryID).Inc()
			}
		},
		OnForkEnter: func(_ context.Context, e *domain.NodeEvent) {
			m.forksEntered.WithLabelValues(e.Flow, e.NodeID).Inc()
		},
	}
}

// ObserveError counts a failed resolution of flow.
func (m *Metrics) ObserveError(flow string) {
	m.resolutions.WithLabelValues(flow, OutcomeError).Inc()
}

// Resolver wraps next so that its failures are counted for flow.
func (m *Metrics) Resolver(flow string, next ports.Resolver) ports.Resolver {
	return ports.ResolverFunc(func(ctx context.Context, data map[string]any, current string) (*domain.Outcome, error) {
		out, err := next.Resolve(ctx, data, current)
		if err != nil {
			m.ObserveError(flow)
		}
		return out, err
	})
}
