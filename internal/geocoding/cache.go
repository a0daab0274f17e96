package geocoding

import (
	"context"
	"sync"
	"time"

	"github.com/Togather-Foundation/mapgen/internal/geo"
)

// DefaultCacheTTL is how long a geocoded address stays cached.
const DefaultCacheTTL = 30 * 24 * time.Hour

// CachedGeocode is a cached forward geocoding result.
type CachedGeocode struct {
	ID              int64
	QueryNormalized string
	Position        geo.Position
	DisplayName     string
	PlaceType       string
	RawResponse     []byte
	Source          string
	HitCount        int
	CreatedAt       time.Time
	ExpiresAt       *time.Time
}

// Cache stores geocoding results keyed by normalized query.
// Get returns nil, nil on a miss.
type Cache interface {
	Get(ctx context.Context, queryNormalized string) (*CachedGeocode, error)
	Put(ctx context.Context, entry CachedGeocode) error
}

type noCache struct{}

func (noCache) Get(context.Context, string) (*CachedGeocode, error) { return nil, nil }
func (noCache) Put(context.Context, CachedGeocode) error            { return nil }

// MemoryCache is a process-local Cache with a fixed TTL.
type MemoryCache struct {
	mu      sync.Mutex
	ttl     time.Duration
	now     func() time.Time
	entries map[string]CachedGeocode
}

// NewMemoryCache returns a cache whose entries expire after ttl (DefaultCacheTTL when <= 0).
func NewMemoryCache(ttl time.Duration) *MemoryCache {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &MemoryCache{
		ttl:     ttl,
		now:     time.Now,
		entries: make(map[string]CachedGeocode),
	}
}

func (c *MemoryCache) Get(_ context.Context, queryNormalized string) (*CachedGeocode, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[queryNormalized]
	if !ok {
		return nil, nil
	}
	if entry.ExpiresAt != nil && !c.now().Before(*entry.ExpiresAt) {
		delete(c.entries, queryNormalized)
		return nil, nil
	}
	entry.HitCount++
	c.entries[queryNormalized] = entry
	return &entry, nil
}

func (c *MemoryCache) Put(_ context.Context, entry CachedGeocode) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	expires := c.now().Add(c.ttl)
	entry.ExpiresAt = &expires
	c.entries[entry.QueryNormalized] = entry
	return nil
}

// Len returns the number of cached entries, expired ones included.
func (c *MemoryCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
