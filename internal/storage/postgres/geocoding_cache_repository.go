package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Togather-Foundation/mapgen/internal/geocoding"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// GeocodingCacheRepository manages geocoding cache operations. Entries are
// scoped by the country codes the searches were restricted to.
type GeocodingCacheRepository struct {
	pool         *pgxpool.Pool
	tx           pgx.Tx
	countryCodes string
	ttl          time.Duration
}

// NewGeocodingCacheRepository creates a new geocoding cache repository.
func NewGeocodingCacheRepository(pool *pgxpool.Pool, countryCodes string, ttl time.Duration) *GeocodingCacheRepository {
	return &GeocodingCacheRepository{pool: pool, countryCodes: countryCodes, ttl: ttl}
}

// Get retrieves a cached forward geocoding result.
// Returns nil if not found or expired.
func (r *GeocodingCacheRepository) Get(ctx context.Context, queryNormalized string) (*geocoding.CachedGeocode, error) {
	const query = `
		SELECT id, query_normalized, latitude, longitude,
		       display_name, place_type, raw_response, source,
		       hit_count, created_at, expires_at
		FROM geocoding_cache
		WHERE query_normalized = $1
		  AND country_codes = $2
		  AND (expires_at IS NULL OR expires_at > NOW())
		LIMIT 1
	`

	var cached geocoding.CachedGeocode
	var expiresAt sql.NullTime

	err := r.queryer().QueryRow(ctx, query, queryNormalized, r.countryCodes).Scan(
		&cached.ID,
		&cached.QueryNormalized,
		&cached.Position.Lat,
		&cached.Position.Lon,
		&cached.DisplayName,
		&cached.PlaceType,
		&cached.RawResponse,
		&cached.Source,
		&cached.HitCount,
		&cached.CreatedAt,
		&expiresAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get cached geocode: %w", err)
	}

	if expiresAt.Valid {
		cached.ExpiresAt = &expiresAt.Time
	}

	if err := r.incrementHitCount(ctx, cached.ID); err != nil {
		return nil, err
	}
	cached.HitCount++
	return &cached, nil
}

// Put stores a forward geocoding result, replacing an existing entry for
// the same query.
func (r *GeocodingCacheRepository) Put(ctx context.Context, entry geocoding.CachedGeocode) error {
	const query = `
		INSERT INTO geocoding_cache (
			query_normalized, country_codes, latitude, longitude,
			display_name, place_type, raw_response, source,
			hit_count, created_at, expires_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11
		)
		ON CONFLICT (query_normalized, country_codes)
		DO UPDATE SET
			latitude = EXCLUDED.latitude,
			longitude = EXCLUDED.longitude,
			display_name = EXCLUDED.display_name,
			place_type = EXCLUDED.place_type,
			raw_response = EXCLUDED.raw_response,
			expires_at = EXCLUDED.expires_at
	`

	expiresAt := entry.ExpiresAt
	if expiresAt == nil {
		ttl := r.ttl
		if ttl <= 0 {
			ttl = geocoding.DefaultCacheTTL
		}
		defaultExpiry := time.Now().Add(ttl)
		expiresAt = &defaultExpiry
	}

	source := entry.Source
	if source == "" {
		source = "nominatim"
	}

	var raw []byte
	if len(entry.RawResponse) > 0 {
		raw = entry.RawResponse
	}

	_, err := r.queryer().Exec(ctx, query,
		entry.QueryNormalized,
		r.countryCodes,
		entry.Position.Lat,
		entry.Position.Lon,
		entry.DisplayName,
		entry.PlaceType,
		raw,
		source,
		entry.HitCount,
		time.Now(),
		expiresAt,
	)
	if err != nil {
		return fmt.Errorf("cache geocode: %w", err)
	}
	return nil
}

// DeleteExpired removes expired entries and returns how many were deleted.
func (r *GeocodingCacheRepository) DeleteExpired(ctx context.Context) (int64, error) {
	tag, err := r.queryer().Exec(ctx, `DELETE FROM geocoding_cache WHERE expires_at IS NOT NULL AND expires_at <= NOW()`)
	if err != nil {
		return 0, fmt.Errorf("delete expired geocodes: %w", err)
	}
	return tag.RowsAffected(), nil
}

func (r *GeocodingCacheRepository) incrementHitCount(ctx context.Context, id int64) error {
	if _, err := r.queryer().Exec(ctx, `UPDATE geocoding_cache SET hit_count = hit_count + 1 WHERE id = $1`, id); err != nil {
		return fmt.Errorf("increment hit count: %w", err)
	}
	return nil
}

func (r *GeocodingCacheRepository) queryer() queryer {
	if r.tx != nil {
		return r.tx
	}
	return r.pool
}
