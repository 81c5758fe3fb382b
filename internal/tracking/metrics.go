package tracking

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics are the tracker's Prometheus collectors. A nil *Metrics
// records nothing.
type Metrics struct {
	tracked        prometheus.Gauge
	outcomes       *prometheus.CounterVec
	offsets        prometheus.Counter
	renameFailures prometheus.Counter
	refreshes      *prometheus.CounterVec
}

// NewMetrics registers the tracker collectors with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		tracked: f.NewGauge(prometheus.GaugeOpts{
			Namespace: "trackarr",
			Name:      "tracked_downloads",
			Help:      "Downloads currently held by the tracker.",
		}),
		outcomes: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "trackarr",
			Name:      "match_outcomes_total",
			Help:      "Results of matching a download to catalog episodes.",
		}, []string{"outcome"}),
		offsets: f.NewCounter(prometheus.CounterOpts{
			Namespace: "trackarr",
			Name:      "part_offsets_applied_total",
			Help:      "Split-season part offsets applied to episode numbering.",
		}),
		renameFailures: f.NewCounter(prometheus.CounterOpts{
			Namespace: "trackarr",
			Name:      "rename_failures_total",
			Help:      "File or folder renames skipped or failed during reconciliation.",
		}),
		refreshes: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "trackarr",
			Name:      "catalog_refreshes_total",
			Help:      "Tracked downloads re-matched after a catalog change.",
		}, []string{"event"}),
	}
}

func (m *Metrics) setTracked(n int) {
	if m != nil {
		m.tracked.Set(float64(n))
	}
}

func (m *Metrics) outcome(o string) {
	if m != nil {
		m.outcomes.WithLabelValues(o).Inc()
	}
}

func (m *Metrics) offsetApplied() {
	if m != nil {
		m.offsets.Inc()
	}
}

func (m *Metrics) renameFailed() {
	if m != nil {
		m.renameFailures.Inc()
	}
}

func (m *Metrics) refreshed(event string, n int) {
	if m != nil && n > 0 {
		m.refreshes.WithLabelValues(event).Add(float64(n))
	}
}
