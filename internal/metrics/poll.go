package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Poll outcome labels.
const (
	PollSuccess = "success"
	PollFailure = "failure"
)

// PollMetrics tracks status polling.
type PollMetrics struct {
	PollsTotal    *prometheus.CounterVec
	PollDuration  prometheus.Histogram
	StaleResults  prometheus.Counter
	PlayersOnline prometheus.Gauge
}

// NewPollMetrics creates and registers poll metrics on the given registry.
func NewPollMetrics(reg prometheus.Registerer) *PollMetrics {
	m := &PollMetrics{
		PollsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "status",
			Name:      "polls_total",
			Help:      "Status polls by outcome (success, failure).",
		}, []string{"result"}),
		PollDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "status",
			Name:      "poll_duration_seconds",
			Help:      "Latency of status API requests.",
			Buckets:   []float64{.05, .1, .25, .5, 1, 2.5, 5, 10, 30},
		}),
		StaleResults: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "status",
			Name:      "stale_results_total",
			Help:      "Poll results discarded because a newer poll had been issued.",
		}),
		PlayersOnline: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "status",
			Name:      "players_online",
			Help:      "Players online as of the latest successful poll.",
		}),
	}

	reg.MustRegister(m.PollsTotal, m.PollDuration, m.StaleResults, m.PlayersOnline)
	return m
}

// Observe records one poll outcome.
func (m *PollMetrics) Observe(result string, latency time.Duration) {
	if m == nil {
		return
	}
	m.PollsTotal.WithLabelValues(result).Inc()
	m.PollDuration.Observe(latency.Seconds())
}

// Stale counts one discarded out-of-order result.
func (m *PollMetrics) Stale() {
	if m == nil {
		return
	}
	m.StaleResults.Inc()
}

// SetPlayers records the player count of an applied status.
func (m *PollMetrics) SetPlayers(n int) {
	if m == nil {
		return
	}
	m.PlayersOnline.Set(float64(n))
}
