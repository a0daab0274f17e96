package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Outbound HTTP metrics, labelled by the calling client
var (
	// HTTPClientRequestsTotal counts outbound requests by client, method and status code
	HTTPClientRequestsTotal = promauto.With(Registry).NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_client_requests_total",
			Help:      "Total number of outbound HTTP requests",
		},
		[]string{"client", "code", "method"},
	)

	// HTTPClientRequestDuration records outbound request latency in seconds
	HTTPClientRequestDuration = promauto.With(Registry).NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_client_request_duration_seconds",
			Help:      "Outbound HTTP request latency in seconds",
			// Buckets: 10ms, 25ms, 50ms, 100ms, 250ms, 500ms, 1s, 2.5s, 5s, 10s, 30s
			Buckets: []float64{.01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10, 30},
		},
		[]string{"client", "method"},
	)

	// HTTPClientInFlight tracks the current number of outbound requests
	HTTPClientInFlight = promauto.With(Registry).NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "http_client_requests_in_flight",
			Help:      "Current number of outbound HTTP requests",
		},
		[]string{"client"},
	)
)

// InstrumentTransport wraps next (http.DefaultTransport when nil) so that
// requests are counted and timed under the given client label.
func InstrumentTransport(client string, next http.RoundTripper) http.RoundTripper {
	if next == nil {
		next = http.DefaultTransport
	}
	labels := prometheus.Labels{"client": client}

	return promhttp.InstrumentRoundTripperInFlight(
		HTTPClientInFlight.With(labels),
		promhttp.InstrumentRoundTripperCounter(
			HTTPClientRequestsTotal.MustCurryWith(labels),
			promhttp.InstrumentRoundTripperDuration(
				HTTPClientRequestDuration.MustCurryWith(labels),
				next,
			),
		),
	)
}
