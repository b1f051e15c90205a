package renderer

import "github.com/prometheus/client_golang/prometheus"

// Metrics exposes the supervisor's health to a Prometheus scraper. A nil
// *Metrics is valid and every method on it is a no-op, so metrics remain
// optional.
type Metrics struct {
	status            *prometheus.GaugeVec
	errorStreak       prometheus.Gauge
	versionMismatches prometheus.Counter
}

// NewMetrics creates and registers the supervisor's collectors against reg.
// Pass prometheus.DefaultRegisterer for the global registry, or a
// prometheus.NewRegistry() in tests to avoid collisions.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		status: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "ime_renderer_status",
			Help: "Current renderer supervisor status (1 for the active one, 0 otherwise), labeled by status name.",
		}, []string{"status"}),
		errorStreak: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "ime_renderer_error_streak",
			Help: "Consecutive non-success launch outcomes.",
		}),
		versionMismatches: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "ime_renderer_version_mismatches_total",
			Help: "Protocol or product version mismatches observed since construction.",
		}),
	}
	reg.MustRegister(m.status, m.errorStreak, m.versionMismatches)
	return m
}

func (m *Metrics) observeStatus(s Status) {
	if m == nil {
		return
	}
	m.status.Reset()
	m.status.WithLabelValues(s.String()).Set(1)
}

func (m *Metrics) observeErrorStreak(n int) {
	if m == nil {
		return
	}
	m.errorStreak.Set(float64(n))
}

func (m *Metrics) incVersionMismatch() {
	if m == nil {
		return
	}
	m.versionMismatches.Inc()
}
