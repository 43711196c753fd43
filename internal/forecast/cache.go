package forecast

import (
	"log"
	"sync"
	"time"

	"github.com/akoval/frostwatch/internal/geo"
)

// CachedEntry is one persisted cache row.
type CachedEntry struct {
	Coord     geo.Coordinate
	Series    Series
	ExpiresAt time.Time
}

// CachePersistence is the write-through backing for a GeoCache, letting
// cached forecasts survive restarts. Reads always come from memory.
type CachePersistence interface {
	UpsertForecast(coord geo.Coordinate, series Series, expiresAt time.Time) error
	UnexpiredForecasts(now time.Time) ([]CachedEntry, error)
	DeleteExpiredForecasts(now time.Time) (int64, error)
}

type cacheEntry struct {
	coord     geo.Coordinate
	series    Series
	expiresAt time.Time
}

// GeoCache maps exact coordinates to forecast series with TTL expiry, and
// additionally resolves nearby coordinates within a radius so that
// clustered locations can share one upstream fetch. Safe for concurrent
// use; readers never observe a half-written entry.
type GeoCache struct {
	mu      sync.RWMutex
	entries map[string]*cacheEntry
	order   []string // insertion order, the documented GetNearby scan order
	persist CachePersistence
}

// NewGeoCache builds an empty cache. persist may be nil for a purely
// in-memory cache; otherwise puts and sweeps are written through and
// Warm can reload unexpired entries at startup.
func NewGeoCache(persist CachePersistence) *GeoCache {
	return &GeoCache{
		entries: make(map[string]*cacheEntry),
		persist: persist,
	}
}

// Warm loads unexpired persisted entries into memory. Meant for startup,
// before any scheduler tick runs.
func (c *GeoCache) Warm() error {
	if c.persist == nil {
		return nil
	}
	rows, err := c.persist.UnexpiredForecasts(time.Now().UTC())
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, row := range rows {
		key := row.Coord.Key()
		if _, ok := c.entries[key]; !ok {
			c.order = append(c.order, key)
		}
		c.entries[key] = &cacheEntry{coord: row.Coord, series: row.Series, expiresAt: row.ExpiresAt}
	}
	return nil
}

// Get returns the series cached under exactly coord, or false when the
// key is missing or its entry has expired.
func (c *GeoCache) Get(coord geo.Coordinate) (Series, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	e, ok := c.entries[coord.Key()]
	if !ok || !e.expiresAt.After(time.Now()) {
		return nil, false
	}
	return e.series, true
}

// GetNearby scans all currently unexpired entries in insertion order and
// returns the first whose great-circle distance to coord is within
// radiusMeters. Exact hits are served by the same scan since their
// distance is zero.
func (c *GeoCache) GetNearby(coord geo.Coordinate, radiusMeters float64) (Series, bool) {
	now := time.Now()

	c.mu.RLock()
	defer c.mu.RUnlock()

	for _, key := range c.order {
		e, ok := c.entries[key]
		if !ok || !e.expiresAt.After(now) {
			continue
		}
		if geo.Distance(coord, e.coord) <= radiusMeters {
			return e.series, true
		}
	}
	return nil, false
}

// Put upserts the entry for exactly coord, overwriting any previous
// series and resetting the expiry to now+ttl. An upserted key keeps its
// original position in the scan order.
func (c *GeoCache) Put(coord geo.Coordinate, series Series, ttl time.Duration) {
	key := coord.Key()
	expiresAt := time.Now().Add(ttl)

	c.mu.Lock()
	if _, ok := c.entries[key]; !ok {
		c.order = append(c.order, key)
	}
	c.entries[key] = &cacheEntry{coord: coord, series: series, expiresAt: expiresAt}
	c.mu.Unlock()

	if c.persist != nil {
		// Persistence is best effort; the in-memory entry already serves reads.
		if err := c.persist.UpsertForecast(coord, series, expiresAt); err != nil {
			log.Printf("geocache: persist put for %s failed: %v", coord, err)
		}
	}
}

// Sweep removes every expired entry and returns how many were dropped.
// Safe to call concurrently with reads.
func (c *GeoCache) Sweep() int {
	now := time.Now()

	c.mu.Lock()
	removed := 0
	kept := c.order[:0]
	for _, key := range c.order {
		e, ok := c.entries[key]
		if ok && e.expiresAt.After(now) {
			kept = append(kept, key)
			continue
		}
		delete(c.entries, key)
		removed++
	}
	c.order = kept
	c.mu.Unlock()

	if c.persist != nil {
		if _, err := c.persist.DeleteExpiredForecasts(now.UTC()); err != nil {
			log.Printf("geocache: persist sweep failed: %v", err)
		}
	}
	return removed
}

// Len reports the number of entries currently held, expired or not.
func (c *GeoCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
