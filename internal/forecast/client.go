package forecast

import (
	"context"
	"time"

	"github.com/akoval/frostwatch/internal/geo"
)

// Client resolves forecasts cache-first: exact cache key, then any
// unexpired entry within the configured radius, and only then the
// upstream provider. Every provider fetch repopulates the cache.
type Client struct {
	cache        *GeoCache
	provider     Provider
	radiusMeters float64
	ttl          time.Duration
}

// NewClient wires a Client to its cache and provider. radiusMeters and
// ttl come from configuration, not constants.
func NewClient(cache *GeoCache, provider Provider, radiusMeters float64, ttl time.Duration) *Client {
	return &Client{
		cache:        cache,
		provider:     provider,
		radiusMeters: radiusMeters,
		ttl:          ttl,
	}
}

// Fetch returns the forecast series for coord, serving from cache when
// possible. A provider failure is returned unmodified; the caller decides
// whether stale data is acceptable.
func (c *Client) Fetch(ctx context.Context, coord geo.Coordinate) (Series, error) {
	if series, ok := c.cache.Get(coord); ok {
		return series, nil
	}
	if series, ok := c.cache.GetNearby(coord, c.radiusMeters); ok {
		return series, nil
	}
	return c.fetchUpstream(ctx, coord)
}

// Refresh bypasses the cache and always calls the provider.
func (c *Client) Refresh(ctx context.Context, coord geo.Coordinate) (Series, error) {
	return c.fetchUpstream(ctx, coord)
}

func (c *Client) fetchUpstream(ctx context.Context, coord geo.Coordinate) (Series, error) {
	series, err := c.provider.FetchSeries(ctx, coord)
	if err != nil {
		return nil, err
	}
	c.cache.Put(coord, series, c.ttl)
	return series, nil
}
