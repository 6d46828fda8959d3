package preview

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const metricsNamespace = "kctheme_preview"

type metrics struct {
	renders  *prometheus.CounterVec
	duration *prometheus.HistogramVec
	posts    *prometheus.CounterVec
	reloads  prometheus.Counter
	clients  prometheus.Gauge
}

func newMetrics(reg prometheus.Registerer) (*metrics, error) {
	m := &metrics{
		renders: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "renders_total",
			Help:      "Pages rendered, by page, renderer and outcome.",
		}, []string{"page", "renderer", "outcome"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Name:      "render_duration_seconds",
			Help:      "Time spent rendering a page.",
			Buckets:   prometheus.ExponentialBuckets(0.0005, 2, 12),
		}, []string{"renderer"}),
		posts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "form_posts_total",
			Help:      "Form submissions echoed, by path.",
		}, []string{"path"}),
		reloads: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "reloads_total",
			Help:      "Reload notifications broadcast to browsers.",
		}),
		clients: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Name:      "livereload_clients",
			Help:      "Browsers connected to the reload socket.",
		}),
	}
	for _, collector := range []prometheus.Collector{m.renders, m.duration, m.posts, m.reloads, m.clients} {
		if err := reg.Register(collector); err != nil {
			return nil, fmt.Errorf("preview: register metrics: %w", err)
		}
	}
	return m, nil
}

func (m *metrics) observeRender(page, renderer string, err error, elapsed time.Duration) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	m.renders.WithLabelValues(page, renderer, outcome).Inc()
	m.duration.WithLabelValues(renderer).Observe(elapsed.Seconds())
}
