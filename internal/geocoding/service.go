package geocoding

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/Togather-Foundation/mapgen/internal/geo"
	"github.com/Togather-Foundation/mapgen/internal/geocoding/nominatim"
	"github.com/Togather-Foundation/mapgen/internal/metrics"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"golang.org/x/sync/singleflight"
)

const tracerName = "github.com/Togather-Foundation/mapgen/internal/geocoding"

// Geocoder turns a free-text address into a position.
type Geocoder interface {
	Geocode(ctx context.Context, address string) (geo.Position, error)
}

// Searcher is the upstream forward geocoding API.
type Searcher interface {
	Search(ctx context.Context, query string, opts nominatim.SearchOptions) ([]nominatim.SearchResult, error)
}

var (
	// ErrEmptyQuery is returned for blank addresses.
	ErrEmptyQuery = errors.New("query cannot be empty")
	// ErrGeocodingFailed is returned when the upstream call fails.
	ErrGeocodingFailed = errors.New("geocoding failed")
	// ErrNoResults is returned when the upstream cannot resolve the address.
	ErrNoResults = errors.New("no geocoding results found")
)

// GeocodingService orchestrates geocoding using a cache and Nominatim.
type GeocodingService struct {
	client       Searcher
	cache        Cache
	countryCodes string
	logger       zerolog.Logger

	// inflight collapses concurrent misses for the same normalized query.
	inflight singleflight.Group
}

// ServiceOption configures a GeocodingService.
type ServiceOption func(*GeocodingService)

// WithCountryCodes restricts searches to the given ISO country codes.
func WithCountryCodes(codes string) ServiceOption {
	return func(s *GeocodingService) {
		s.countryCodes = codes
	}
}

// NewGeocodingService creates a new geocoding service. A nil cache disables caching.
func NewGeocodingService(client Searcher, cache Cache, logger zerolog.Logger, opts ...ServiceOption) *GeocodingService {
	if cache == nil {
		cache = noCache{}
	}
	s := &GeocodingService{
		client: client,
		cache:  cache,
		logger: logger.With().Str("component", "geocoding").Logger(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Geocode implements Geocoder.
func (s *GeocodingService) Geocode(ctx context.Context, address string) (geo.Position, error) {
	ctx, span := otel.Tracer(tracerName).Start(ctx, "geocoding.Geocode")
	defer span.End()

	res, err := s.Lookup(ctx, address)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return geo.Position{}, err
	}
	span.SetAttributes(
		attribute.Float64("geo.lat", res.Position.Lat),
		attribute.Float64("geo.lon", res.Position.Lon),
		attribute.Bool("geocoding.cached", res.Cached),
	)
	return res.Position, nil
}

// GeocodeResult represents the result of a geocoding operation.
type GeocodeResult struct {
	Position    geo.Position
	DisplayName string
	Source      string // "cache" or "nominatim"
	Cached      bool
}

// Lookup performs forward geocoding, checking the cache first and caching
// successful upstream results.
func (s *GeocodingService) Lookup(ctx context.Context, query string) (*GeocodeResult, error) {
	normalized := NormalizeQuery(query)
	if normalized == "" {
		return nil, ErrEmptyQuery
	}

	cached, err := s.cache.Get(ctx, normalized)
	if err != nil {
		s.logger.Warn().Err(err).Str("query", query).Msg("failed to check geocoding cache")
	}
	if cached != nil {
		metrics.GeocodingCacheHitsTotal.Inc()
		metrics.GeocodingRequestsTotal.WithLabelValues("cache").Inc()

		s.logger.Debug().
			Str("query", query).
			Float64("lat", cached.Position.Lat).
			Float64("lon", cached.Position.Lon).
			Msg("geocoding cache hit")

		return &GeocodeResult{
			Position:    cached.Position,
			DisplayName: cached.DisplayName,
			Source:      "cache",
			Cached:      true,
		}, nil
	}

	metrics.GeocodingCacheMissesTotal.Inc()

	// The shared fetch outlives any single caller; each caller still stops
	// waiting when its own context ends.
	ch := s.inflight.DoChan(normalized, func() (any, error) {
		return s.fetch(context.WithoutCancel(ctx), query, normalized)
	})
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%w: %w", ErrGeocodingFailed, ctx.Err())
	case r := <-ch:
		if r.Err != nil {
			return nil, r.Err
		}
		if r.Shared {
			s.logger.Debug().Str("query", query).Msg("joined in-flight geocoding request")
		}
		res := *r.Val.(*GeocodeResult)
		return &res, nil
	}
}

// fetch queries Nominatim and caches a successful result.
func (s *GeocodingService) fetch(ctx context.Context, query, normalized string) (*GeocodeResult, error) {
	s.logger.Debug().
		Str("query", query).
		Str("country_codes", s.countryCodes).
		Msg("geocoding cache miss, calling Nominatim")

	startTime := time.Now()
	results, err := s.client.Search(ctx, strings.TrimSpace(query), nominatim.SearchOptions{
		CountryCodes: s.countryCodes,
		Limit:        1,
	})
	latency := time.Since(startTime)

	if err != nil {
		metrics.GeocodingUpstreamLatency.WithLabelValues("error").Observe(latency.Seconds())
		metrics.GeocodingFailuresTotal.WithLabelValues("error").Inc()

		s.logger.Error().
			Err(err).
			Str("query", query).
			Dur("latency", latency).
			Msg("nominatim search failed")

		return nil, fmt.Errorf("%w: %v", ErrGeocodingFailed, err)
	}
	metrics.GeocodingUpstreamLatency.WithLabelValues("success").Observe(latency.Seconds())

	if len(results) == 0 {
		metrics.GeocodingFailuresTotal.WithLabelValues("not_found").Inc()

		s.logger.Warn().
			Str("query", query).
			Str("country_codes", s.countryCodes).
			Msg("nominatim returned no results")

		return nil, fmt.Errorf("%w for query: %s", ErrNoResults, query)
	}

	metrics.GeocodingRequestsTotal.WithLabelValues("nominatim").Inc()

	result := results[0]
	pos, err := parsePosition(result)
	if err != nil {
		metrics.GeocodingFailuresTotal.WithLabelValues("invalid_response").Inc()
		return nil, fmt.Errorf("%w: %v", ErrGeocodingFailed, err)
	}

	s.logger.Info().
		Str("query", query).
		Float64("lat", pos.Lat).
		Float64("lon", pos.Lon).
		Str("display_name", result.DisplayName).
		Dur("latency", latency).
		Msg("geocoding successful")

	rawJSON, _ := json.Marshal(result)
	entry := CachedGeocode{
		QueryNormalized: normalized,
		Position:        pos,
		DisplayName:     result.DisplayName,
		PlaceType:       result.Type,
		RawResponse:     rawJSON,
		Source:          "nominatim",
		CreatedAt:       time.Now(),
	}
	if err := s.cache.Put(ctx, entry); err != nil {
		s.logger.Warn().Err(err).Str("query", query).Msg("failed to cache geocoding result")
	}

	return &GeocodeResult{
		Position:    pos,
		DisplayName: result.DisplayName,
		Source:      "nominatim",
		Cached:      false,
	}, nil
}

func parsePosition(r nominatim.SearchResult) (geo.Position, error) {
	lat, err := strconv.ParseFloat(r.Lat, 64)
	if err != nil {
		return geo.Position{}, fmt.Errorf("invalid latitude in nominatim result: %w", err)
	}
	lon, err := strconv.ParseFloat(r.Lon, 64)
	if err != nil {
		return geo.Position{}, fmt.Errorf("invalid longitude in nominatim result: %w", err)
	}
	pos := geo.Position{Lat: lat, Lon: lon}
	if err := pos.Validate(); err != nil {
		return geo.Position{}, err
	}
	return pos, nil
}

// NormalizeQuery normalizes a geocoding query for cache lookups.
// Converts to lowercase, trims whitespace, and collapses multiple spaces.
func NormalizeQuery(q string) string {
	return strings.Join(strings.Fields(strings.ToLower(q)), " ")
}
