// Package metrics holds the Prometheus collectors of the inspection workflow.
// The registry is private to the service so tests can build isolated instances.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Outcome labels.
const (
	OutcomeOK       = "ok"
	OutcomeRejected = "rejected" // refused by the workflow (state, permission, input)
	OutcomeError    = "error"    // store failure
)

type Metrics struct {
	reg *prometheus.Registry

	submissions *prometheus.CounterVec // cta_inspections_submitted_total{category}
	transitions *prometheus.CounterVec // cta_inspection_transitions_total{to,outcome}
}

func New() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		reg: reg,
		submissions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "cta_inspections_submitted_total",
			Help: "Inspection records submitted, by vehicle category.",
		}, []string{"category"}),
		transitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "cta_inspection_transitions_total",
			Help: "Validation transitions attempted, by target state and outcome.",
		}, []string{"to", "outcome"}),
	}
	reg.MustRegister(
		m.submissions,
		m.transitions,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

func (m *Metrics) Submitted(category string) {
	if m == nil {
		return
	}
	m.submissions.WithLabelValues(category).Inc()
}

func (m *Metrics) Transition(to, outcome string) {
	if m == nil {
		return
	}
	m.transitions.WithLabelValues(to, outcome).Inc()
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.reg, promhttp.HandlerOpts{Registry: m.reg})
}
