// Package metrics records invocation outcomes and upstream latency for
// Prometheus.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "suggest_proxy"

// Recorder owns a private registry. A nil *Recorder is valid and records
// nothing, which is how metrics are disabled.
type Recorder struct {
	registry *prometheus.Registry

	requestsTotal    *prometheus.CounterVec
	upstreamDuration *prometheus.HistogramVec
	requestSize      *prometheus.HistogramVec
}

func New() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		requestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "requests_total",
				Help:      "Invocations by provider and outcome.",
			},
			[]string{"provider", "outcome"},
		),
		upstreamDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "upstream_duration_seconds",
				Help:      "Duration of provider calls, including failed ones.",
				// Covers the 290s streaming ceiling.
				Buckets: []float64{0.25, 0.5, 1, 2, 5, 10, 30, 60, 90, 120, 180, 290},
			},
			[]string{"provider"},
		),
		requestSize: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "upstream_request_size_bytes",
				Help:      "Size of translated provider request bodies.",
				Buckets:   prometheus.ExponentialBuckets(1024, 2, 14),
			},
			[]string{"provider"},
		),
	}

	r.registry.MustRegister(r.requestsTotal, r.upstreamDuration, r.requestSize)
	return r
}

// ObserveRequest counts one finished invocation.
func (r *Recorder) ObserveRequest(provider, outcome string) {
	if r == nil {
		return
	}
	r.requestsTotal.WithLabelValues(provider, outcome).Inc()
}

// ObserveUpstream records one provider call.
func (r *Recorder) ObserveUpstream(provider string, requestBytes int, elapsed time.Duration) {
	if r == nil {
		return
	}
	r.requestSize.WithLabelValues(provider).Observe(float64(requestBytes))
	r.upstreamDuration.WithLabelValues(provider).Observe(elapsed.Seconds())
}

func (r *Recorder) Registry() *prometheus.Registry {
	if r == nil {
		return nil
	}
	return r.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (r *Recorder) Handler() http.Handler {
	if r == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}
