package sserver

import (
	"errors"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type metrics struct {
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
	trees    prometheus.GaugeFunc
}

func newMetrics(reg prometheus.Registerer, trees *Registry) *metrics {
	m := &metrics{
		requests: register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "gsegtree",
			Name:      "requests_total",
			Help:      "HTTP requests handled, by operation and status code.",
		}, []string{"op", "code"})),

		duration: register(reg, prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "gsegtree",
			Name:      "request_duration_seconds",
			Help:      "Time spent handling HTTP requests, by operation.",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 4, 8),
		}, []string{"op"})),

		trees: register(reg, prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: "gsegtree",
			Name:      "trees",
			Help:      "Number of engines currently held.",
		}, func() float64 {
			return float64(trees.Len())
		})),
	}

	return m
}

// register adds c to reg, or returns the collector already registered
// under the same descriptor so handlers can share one registry.
func register[C prometheus.Collector](reg prometheus.Registerer, c C) C {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing
			}
		}
		panic(err)
	}
	return c
}

// instrument wraps h so that it is counted and timed under op.
func (m *metrics) instrument(op string, h http.HandlerFunc) http.Handler {
	labels := prometheus.Labels{"op": op}
	return promhttp.InstrumentHandlerDuration(
		m.duration.MustCurryWith(labels),
		promhttp.InstrumentHandlerCounter(m.requests.MustCurryWith(labels), h),
	)
}
