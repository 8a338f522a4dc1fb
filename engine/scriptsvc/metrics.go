package scriptsvc

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics counts generated fragments and failures. A nil *Metrics records nothing.
type Metrics struct {
	fragments *prometheus.CounterVec
	failures  *prometheus.CounterVec
	duration  *prometheus.HistogramVec
}

// NewMetrics creates the collectors and registers them with reg when reg is non-nil.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		fragments: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "gremlin_script_fragments_total",
			Help: "Script fragments generated, by template and value kind.",
		}, []string{"template", "kind"}),
		failures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "gremlin_script_failures_total",
			Help: "Script generation requests that failed, by reason.",
		}, []string{"reason"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "gremlin_script_request_duration_seconds",
			Help:    "Time spent generating fragments per request.",
			Buckets: []float64{.0001, .0005, .001, .005, .01, .05, .1},
		}, []string{"op"}),
	}
	if reg != nil {
		reg.MustRegister(m.fragments, m.failures, m.duration)
	}
	return m
}

func (m *Metrics) fragment(template, kind string) {
	if m == nil {
		return
	}
	m.fragments.WithLabelValues(template, kind).Inc()
}

func (m *Metrics) failure(reason string) {
	if m == nil {
		return
	}
	m.failures.WithLabelValues(reason).Inc()
}

func (m *Metrics) observe(op string, start time.Time) {
	if m == nil {
		return
	}
	m.duration.WithLabelValues(op).Observe(time.Since(start).Seconds())
}
