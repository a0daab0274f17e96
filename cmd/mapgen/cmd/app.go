package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/Togather-Foundation/mapgen/internal/config"
	"github.com/Togather-Foundation/mapgen/internal/geocoding"
	"github.com/Togather-Foundation/mapgen/internal/geocoding/nominatim"
	"github.com/Togather-Foundation/mapgen/internal/metrics"
	"github.com/Togather-Foundation/mapgen/internal/prefs"
	"github.com/Togather-Foundation/mapgen/internal/staticmap"
	"github.com/Togather-Foundation/mapgen/internal/storage/postgres"
	"github.com/Togather-Foundation/mapgen/internal/storage/valkey"
	"github.com/rs/zerolog"
)

// stores bundles the preference store and the geocoding cache of the
// configured backend.
type stores struct {
	prefs  prefs.Store
	cache  geocoding.Cache
	closer func()
}

func (s stores) Close() {
	if s.closer != nil {
		s.closer()
	}
}

func openStores(ctx context.Context, cfg config.Config, logger zerolog.Logger) (stores, error) {
	switch cfg.Prefs.Backend {
	case config.PrefsBackendMemory:
		return stores{
			prefs: prefs.NewMemoryStore(),
			cache: geocoding.NewMemoryCache(cfg.Geocoding.CacheTTL),
		}, nil

	case config.PrefsBackendFile:
		path := cfg.Prefs.Path
		if path == "" {
			p, err := prefs.DefaultFilePath()
			if err != nil {
				return stores{}, err
			}
			path = p
		}
		logger.Debug().Str("path", path).Msg("using file preferences")
		return stores{
			prefs: prefs.NewFileStore(path),
			cache: geocoding.NewMemoryCache(cfg.Geocoding.CacheTTL),
		}, nil

	case config.PrefsBackendPostgres:
		pool, err := postgres.Open(ctx, cfg.Prefs.DatabaseURL)
		if err != nil {
			return stores{}, err
		}
		repo, err := postgres.NewRepository(pool)
		if err != nil {
			pool.Close()
			return stores{}, err
		}
		cache := repo.GeocodingCache(cfg.Geocoding.CountryCodes, cfg.Geocoding.CacheTTL)
		if n, err := cache.DeleteExpired(ctx); err != nil {
			logger.Warn().Err(err).Msg("failed to prune geocoding cache")
		} else if n > 0 {
			logger.Debug().Int64("deleted", n).Msg("pruned expired geocodes")
		}
		return stores{
			prefs:  repo.Preferences(),
			cache:  cache,
			closer: pool.Close,
		}, nil

	case config.PrefsBackendValkey:
		client, err := valkey.New(cfg.Prefs.ValkeyAddr)
		if err != nil {
			return stores{}, err
		}
		return stores{
			prefs:  client.Preferences(),
			cache:  client.GeocodingCache(cfg.Geocoding.CacheTTL),
			closer: client.Close,
		}, nil

	default:
		return stores{}, fmt.Errorf("unknown prefs backend %q", cfg.Prefs.Backend)
	}
}

func newGeocoder(cfg config.GeocodingConfig, cache geocoding.Cache, logger zerolog.Logger) *geocoding.GeocodingService {
	httpClient := &http.Client{
		Timeout:   cfg.Timeout,
		Transport: metrics.InstrumentTransport("nominatim", nil),
	}
	client := nominatim.NewClient(cfg.BaseURL, cfg.Email,
		nominatim.WithHTTPClient(httpClient),
		nominatim.WithRateLimit(cfg.RateLimit),
		nominatim.WithMaxRetries(cfg.MaxRetries),
	)
	return geocoding.NewGeocodingService(client, cache, logger, geocoding.WithCountryCodes(cfg.CountryCodes))
}

// errMapboxNotConfigured marks a registry built without Mapbox.
var errMapboxNotConfigured = errors.New("mapbox is not configured: set MAPGEN_MAPBOX_ACCESS_TOKEN")

// newRegistry builds every provider the configuration allows. Mapbox is
// skipped without an access token; the returned error explains why, and
// callers that need Mapbox treat it as fatal.
func newRegistry(cfg config.Config) (staticmap.Registry, error) {
	esri, err := staticmap.NewEsri(staticmap.EsriConfig{
		BaseURL:      cfg.Esri.BaseURL,
		DefaultScale: cfg.Esri.DefaultScale,
	})
	if err != nil {
		return nil, err
	}

	providers := []staticmap.Provider{esri}
	var skipped error
	if cfg.Mapbox.AccessToken == "" {
		skipped = errMapboxNotConfigured
	} else {
		mapbox, err := staticmap.NewMapbox(staticmap.MapboxConfig{
			AccessToken: cfg.Mapbox.AccessToken,
			BaseURL:     cfg.Mapbox.BaseURL,
			MinZoom:     cfg.Mapbox.MinZoom,
			MaxZoom:     cfg.Mapbox.MaxZoom,
			DefaultZoom: cfg.Mapbox.DefaultZoom,
		})
		if err != nil {
			return nil, err
		}
		providers = append(providers, mapbox)
	}

	registry, err := staticmap.NewRegistry(providers...)
	if err != nil {
		return nil, err
	}
	return registry, skipped
}

// knownProvider reports whether name is a provider id, configured or not.
func knownProvider(name string) bool {
	return name == staticmap.EsriName || name == staticmap.MapboxName
}
