package middleware

import (
	"context"
	"errors"
	"strconv"
	"time"

	kwest "github.com/frankli0324/go-kwest"
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the collectors fed by [Metrics.Middleware].
type Metrics struct {
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
	inflight prometheus.Gauge
}

// NewMetrics creates the request collectors and registers them with reg.
// A nil reg leaves them unregistered.
func NewMetrics(reg prometheus.Registerer, namespace string) (*Metrics, error) {
	if namespace == "" {
		namespace = "kwest"
	}
	m := &Metrics{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "requests_total",
			Help:      "Outbound requests by method and outcome.",
		}, []string{"method", "outcome"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "request_duration_seconds",
			Help:      "Time until the response head arrived.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method"}),
		inflight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "requests_inflight",
			Help:      "Dispatches waiting for a response head.",
		}),
	}
	if reg == nil {
		return m, nil
	}
	for _, c := range []prometheus.Collector{m.requests, m.duration, m.inflight} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// outcome is the status class ("2xx", "4xx", ...) or one of "cancelled"
// and "error".
func outcome(resp *kwest.Response, err error) string {
	var cerr *kwest.CancellationError
	switch {
	case errors.As(err, &cerr):
		return "cancelled"
	case err != nil, resp == nil:
		return "error"
	}
	return strconv.Itoa(resp.StatusCode/100) + "xx"
}

func (m *Metrics) Middleware() kwest.Middleware {
	return func(ctx context.Context, r *kwest.Request, next kwest.Handler) (*kwest.Response, error) {
		m.inflight.Inc()
		start := time.Now()
		resp, err := next(ctx, r)
		m.inflight.Dec()
		m.duration.WithLabelValues(r.Method).Observe(time.Since(start).Seconds())
		m.requests.WithLabelValues(r.Method, outcome(resp, err)).Inc()
		return resp, err
	}
}
