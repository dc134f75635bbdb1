package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "studio_client"

// Requests instruments outbound API calls. A nil *Requests is valid and
// records nothing, so the adapter can run without a registry in tests.
type Requests struct {
	total    *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// NewRequests registers the outbound request collectors on reg.
func NewRequests(reg prometheus.Registerer) *Requests {
	r := &Requests{
		total: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "requests_total",
				Help:      "Total number of outbound API requests, labelled by method and status class.",
			},
			[]string{"method", "operation", "class"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "request_duration_seconds",
				Help:      "Latency of outbound API requests.",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "operation"},
		),
	}
	if reg != nil {
		reg.MustRegister(r.total, r.duration)
	}
	return r
}

// Observe records one settled request. status 0 means a transport failure.
func (r *Requests) Observe(method, operation string, status int, d time.Duration) {
	if r == nil {
		return
	}
	r.total.WithLabelValues(method, operation, statusClass(status)).Inc()
	r.duration.WithLabelValues(method, operation).Observe(d.Seconds())
}

func statusClass(status int) string {
	if status <= 0 {
		return "error"
	}
	return strconv.Itoa(status/100) + "xx"
}
