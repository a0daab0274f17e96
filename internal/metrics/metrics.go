package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Namespace for all mapgen metrics
const namespace = "mapgen"

// Registry is the global Prometheus registry for all metrics
var Registry = prometheus.NewRegistry()

// AppInfo is a gauge that exposes application version information as labels
var AppInfo = promauto.With(Registry).NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "app_info",
		Help:      "Application version information (always set to 1, version info in labels)",
	},
	[]string{"version", "commit", "build_date"},
)

// Generation metrics

// GenerationsTotal counts Create invocations by provider and outcome
var GenerationsTotal = promauto.With(Registry).NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "generations_total",
		Help:      "Total number of map generation attempts",
	},
	[]string{"provider", "outcome"}, // outcome: filled|precondition|cancelled|invalid|geocode_failed|url_failed|fill_failed|host_error
)

// GenerationDuration tracks end-to-end Create latency
var GenerationDuration = promauto.With(Registry).NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "generation_duration_seconds",
		Help:      "Duration of map generation including dialog time",
		Buckets:   []float64{0.1, 0.5, 1, 2.5, 5, 10, 30, 60, 300},
	},
	[]string{"provider"},
)

// PreferenceWritesTotal counts persisted preference keys by provider
var PreferenceWritesTotal = promauto.With(Registry).NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "preference_writes_total",
		Help:      "Total number of preference keys written",
	},
	[]string{"provider", "status"}, // status: success|error
)

// Geocoding metrics

// GeocodingRequestsTotal tracks total geocoding requests by source
var GeocodingRequestsTotal = promauto.With(Registry).NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "geocoding_requests_total",
		Help:      "Total number of geocoding requests",
	},
	[]string{"source"}, // source: cache|nominatim
)

// GeocodingCacheHitsTotal tracks successful cache hits
var GeocodingCacheHitsTotal = promauto.With(Registry).NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "geocoding_cache_hits_total",
		Help:      "Total number of geocoding cache hits",
	},
)

// GeocodingCacheMissesTotal tracks cache misses requiring API calls
var GeocodingCacheMissesTotal = promauto.With(Registry).NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "geocoding_cache_misses_total",
		Help:      "Total number of geocoding cache misses",
	},
)

// GeocodingUpstreamLatency tracks geocoding API request latency
var GeocodingUpstreamLatency = promauto.With(Registry).NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "geocoding_upstream_latency_seconds",
		Help:      "Geocoding API request latency in seconds",
		Buckets:   []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10},
	},
	[]string{"status"}, // status: success|error
)

// GeocodingFailuresTotal tracks failed geocoding attempts by reason
var GeocodingFailuresTotal = promauto.With(Registry).NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "geocoding_failures_total",
		Help:      "Total number of failed geocoding attempts",
	},
	[]string{"reason"}, // reason: not_found|error|invalid_response
)

// Init registers runtime collectors and sets version information
func Init(version, commit, buildDate string) {
	// Register default Go metrics (memory, goroutines, GC, etc.)
	_ = Registry.Register(collectors.NewGoCollector())

	// Register process metrics (CPU, memory, file descriptors)
	_ = Registry.Register(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	AppInfo.WithLabelValues(version, commit, buildDate).Set(1)
}

// WriteTextfile writes the registry in the node_exporter textfile format.
// An empty path is a no-op.
func WriteTextfile(path string) error {
	if path == "" {
		return nil
	}
	if err := prometheus.WriteToTextfile(path, Registry); err != nil {
		return fmt.Errorf("write metrics textfile: %w", err)
	}
	return nil
}
