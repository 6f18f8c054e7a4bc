package metrics

import "github.com/prometheus/client_golang/prometheus"

// InteractionMetrics counts controller events.
type InteractionMetrics struct {
	ToastsTotal       prometheus.Counter
	SecretUnlocks     prometheus.Counter
	SecretResolutions *prometheus.CounterVec
	ClipboardCopies   *prometheus.CounterVec
	LinksOpened       *prometheus.CounterVec
}

// NewInteractionMetrics creates and registers controller metrics.
func NewInteractionMetrics(reg prometheus.Registerer) *InteractionMetrics {
	m := &InteractionMetrics{
		ToastsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ui",
			Name:      "toasts_total",
			Help:      "Toast notifications shown.",
		}),
		SecretUnlocks: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ui",
			Name:      "secret_unlocks_total",
			Help:      "Times the secret panel was opened by the key sequence.",
		}),
		SecretResolutions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ui",
			Name:      "secret_resolutions_total",
			Help:      "Secret panel inputs that matched a trigger.",
		}, []string{"trigger"}),
		ClipboardCopies: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ui",
			Name:      "clipboard_copies_total",
			Help:      "Clipboard copy attempts by outcome (primary, fallback, failed).",
		}, []string{"result"}),
		LinksOpened: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ui",
			Name:      "links_opened_total",
			Help:      "External links opened by outcome (ok, failed).",
		}, []string{"result"}),
	}

	reg.MustRegister(m.ToastsTotal, m.SecretUnlocks, m.SecretResolutions, m.ClipboardCopies, m.LinksOpened)
	return m
}

func (m *InteractionMetrics) Toast() {
	if m != nil {
		m.ToastsTotal.Inc()
	}
}

func (m *InteractionMetrics) SecretUnlocked() {
	if m != nil {
		m.SecretUnlocks.Inc()
	}
}

func (m *InteractionMetrics) SecretResolved(trigger string) {
	if m != nil {
		m.SecretResolutions.WithLabelValues(trigger).Inc()
	}
}

func (m *InteractionMetrics) ClipboardCopy(result string) {
	if m != nil {
		m.ClipboardCopies.WithLabelValues(result).Inc()
	}
}

func (m *InteractionMetrics) LinkOpened(ok bool) {
	if m == nil {
		return
	}
	result := "ok"
	if !ok {
		result = "failed"
	}
	m.LinksOpened.WithLabelValues(result).Inc()
}
