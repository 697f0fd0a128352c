package obs

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics is the diagnostic side channel of the simulator. It owns its own
// registry so several simulators can coexist in one process.
//
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	registry        *prometheus.Registry
	impactFallbacks *prometheus.CounterVec
	steps           *prometheus.CounterVec
	episodeReturn   prometheus.Histogram
}

func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		impactFallbacks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "vrp",
			Name:      "impact_fallbacks_total",
			Help:      "Impact lookups that degraded to the neutral factor.",
		}, []string{"source", "reason"}),
		steps: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "vrp",
			Name:      "env_steps_total",
			Help:      "Environment steps by outcome.",
		}, []string{"outcome"}),
		episodeReturn: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "vrp",
			Name:      "episode_return",
			Help:      "Undiscounted return of finished episodes.",
			Buckets:   prometheus.LinearBuckets(-1000, 100, 25),
		}),
	}

	m.registry.MustRegister(m.impactFallbacks, m.steps, m.episodeReturn)
	return m
}

// ImpactFallback records a provider lookup that returned the neutral factor.
func (m *Metrics) ImpactFallback(source, reason string) {
	if m == nil {
		return
	}
	m.impactFallbacks.WithLabelValues(source, reason).Inc()
}

// Step records one environment transition.
func (m *Metrics) Step(outcome string) {
	if m == nil {
		return
	}
	m.steps.WithLabelValues(outcome).Inc()
}

// EpisodeFinished records the return of a finished episode.
func (m *Metrics) EpisodeFinished(ret float64) {
	if m == nil {
		return
	}
	m.episodeReturn.Observe(ret)
}

// Registry exposes the underlying registry for tests and custom exporters.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
