package pipeline

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/katalvlaran/lineage/transport"
)

// Solve outcome label values.
const (
	StatusConverged    = "converged"
	StatusNotConverged = "not_converged"
	StatusFailed       = "failed"
)

// Metrics collects per-pair solver metrics. A nil *Metrics records nothing.
type Metrics struct {
	Solves   *prometheus.CounterVec // by status
	Duration prometheus.Histogram   // seconds per pair
	Epsilon  *prometheus.GaugeVec   // realized ε by pair
	Gap      *prometheus.GaugeVec   // final relative duality gap by pair
}

// NewMetrics builds the collectors and registers them with reg when reg is non-nil.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		Solves: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "lineage_pair_solves_total",
				Help: "Day-pair solves by outcome",
			},
			[]string{"status"},
		),
		Duration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "lineage_pair_solve_duration_seconds",
				Help:    "Wall time of one day-pair solve",
				Buckets: prometheus.ExponentialBuckets(0.001, 4, 10),
			},
		),
		Epsilon: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "lineage_pair_epsilon",
				Help: "Realized entropic regularization of the last solve",
			},
			[]string{"pair"},
		),
		Gap: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "lineage_pair_duality_gap",
				Help: "Final relative duality gap of the last solve",
			},
			[]string{"pair"},
		),
	}
	if reg == nil {
		return m, nil
	}
	for _, c := range []prometheus.Collector{m.Solves, m.Duration, m.Epsilon, m.Gap} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}

	return m, nil
}

// observe records one finished pair; tm is nil when the solve failed.
func (m *Metrics) observe(pair string, tm *transport.Map, elapsed time.Duration, err error) {
	if m == nil {
		return
	}
	m.Duration.Observe(elapsed.Seconds())
	if tm == nil {
		m.Solves.WithLabelValues(StatusFailed).Inc()
		return
	}
	d := tm.Diagnostics()
	if d.Converged && err == nil {
		m.Solves.WithLabelValues(StatusConverged).Inc()
	} else {
		m.Solves.WithLabelValues(StatusNotConverged).Inc()
	}
	m.Epsilon.WithLabelValues(pair).Set(d.Epsilon)
	m.Gap.WithLabelValues(pair).Set(d.DualityGap)
}
