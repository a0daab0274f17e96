// Package valkey keeps preferences and geocoding results in Valkey
// (Redis-compatible).
package valkey

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Togather-Foundation/mapgen/internal/geocoding"
	"github.com/Togather-Foundation/mapgen/internal/prefs"
	"github.com/valkey-io/valkey-go"
)

const keyPrefix = "mapgen:"

// Client wraps a Valkey connection.
type Client struct {
	client valkey.Client
}

// New creates a new Valkey client.
func New(addr string) (*Client, error) {
	client, err := valkey.NewClient(valkey.ClientOption{
		InitAddress: []string{addr},
	})
	if err != nil {
		return nil, fmt.Errorf("valkey connect: %w", err)
	}
	return &Client{client: client}, nil
}

// Close releases the client.
func (c *Client) Close() {
	c.client.Close()
}

// Preferences returns a prefs.Store keeping each namespace in one hash.
func (c *Client) Preferences() *PreferencesStore {
	return &PreferencesStore{client: c.client}
}

// GeocodingCache returns a geocoding.Cache with entries expiring after ttl.
func (c *Client) GeocodingCache(ttl time.Duration) *GeocodingCache {
	if ttl <= 0 {
		ttl = geocoding.DefaultCacheTTL
	}
	return &GeocodingCache{client: c.client, ttl: ttl}
}

var (
	_ prefs.Store     = (*PreferencesStore)(nil)
	_ geocoding.Cache = (*GeocodingCache)(nil)
)

// PreferencesStore implements prefs.Store on hashes named mapgen:prefs:<namespace>.
type PreferencesStore struct {
	client valkey.Client
}

func prefsKey(namespace string) string {
	return keyPrefix + "prefs:" + namespace
}

func (s *PreferencesStore) Get(ctx context.Context, namespace, key string) (string, bool, error) {
	v, err := s.client.Do(ctx, s.client.B().Hget().Key(prefsKey(namespace)).Field(key).Build()).ToString()
	if err != nil {
		if valkey.IsValkeyNil(err) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("get preference: %w", err)
	}
	return v, true, nil
}

func (s *PreferencesStore) Set(ctx context.Context, namespace, key, value string) error {
	cmd := s.client.B().Hset().Key(prefsKey(namespace)).FieldValue().FieldValue(key, value).Build()
	if err := s.client.Do(ctx, cmd).Error(); err != nil {
		return fmt.Errorf("set preference: %w", err)
	}
	return nil
}

func (s *PreferencesStore) All(ctx context.Context, namespace string) (map[string]string, error) {
	m, err := s.client.Do(ctx, s.client.B().Hgetall().Key(prefsKey(namespace)).Build()).AsStrMap()
	if err != nil {
		return nil, fmt.Errorf("list preferences: %w", err)
	}
	return m, nil
}

func (s *PreferencesStore) Clear(ctx context.Context, namespace string) error {
	if err := s.client.Do(ctx, s.client.B().Del().Key(prefsKey(namespace)).Build()).Error(); err != nil {
		return fmt.Errorf("clear preferences: %w", err)
	}
	return nil
}

// GeocodingCache implements geocoding.Cache with JSON values under
// mapgen:geocode:<query>.
type GeocodingCache struct {
	client valkey.Client
	ttl    time.Duration
}

func geocodeKey(queryNormalized string) string {
	return keyPrefix + "geocode:" + queryNormalized
}

func (c *GeocodingCache) Get(ctx context.Context, queryNormalized string) (*geocoding.CachedGeocode, error) {
	b, err := c.client.Do(ctx, c.client.B().Get().Key(geocodeKey(queryNormalized)).Build()).AsBytes()
	if err != nil {
		if valkey.IsValkeyNil(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get cached geocode: %w", err)
	}

	var entry geocoding.CachedGeocode
	if err := json.Unmarshal(b, &entry); err != nil {
		return nil, errors.Join(fmt.Errorf("decode cached geocode: %w", err), c.drop(ctx, queryNormalized))
	}
	return &entry, nil
}

func (c *GeocodingCache) Put(ctx context.Context, entry geocoding.CachedGeocode) error {
	now := time.Now()
	seconds, ok := expirySeconds(c.ttl, entry.ExpiresAt, now)
	if !ok {
		return nil
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = now
	}

	b, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("encode cached geocode: %w", err)
	}
	set := c.client.B().Set().Key(geocodeKey(entry.QueryNormalized)).Value(string(b))
	cmd := set.Build()
	if seconds > 0 {
		cmd = set.ExSeconds(seconds).Build()
	}
	if err := c.client.Do(ctx, cmd).Error(); err != nil {
		return fmt.Errorf("cache geocode: %w", err)
	}
	return nil
}

// expirySeconds returns the EX value for an entry, 0 meaning no expiry.
// Entries with less than a second left are not stored since EX takes whole
// seconds and rejects 0.
func expirySeconds(ttl time.Duration, expiresAt *time.Time, now time.Time) (int64, bool) {
	if expiresAt != nil {
		left := expiresAt.Sub(now)
		if left < time.Second {
			return 0, false
		}
		return int64(left / time.Second), true
	}
	if ttl <= 0 {
		return 0, true
	}
	return int64((ttl + time.Second - 1) / time.Second), true
}

func (c *GeocodingCache) drop(ctx context.Context, queryNormalized string) error {
	return c.client.Do(ctx, c.client.B().Del().Key(geocodeKey(queryNormalized)).Build()).Error()
}
