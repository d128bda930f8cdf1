package geocode

import (
	"context"

	"puzzled_pint_map/internal/logger"
)

// Cache stores resolved queries. Get returns ok=false on a miss.
type Cache interface {
	Get(ctx context.Context, query string) (Point, bool, error)
	Put(ctx context.Context, query string, p Point) error
}

// Cached answers repeated queries from a Cache and only calls the provider
// on a miss. Cache failures are logged and never fail the lookup.
type Cached struct {
	next  Geocoder
	cache Cache
	log   *logger.Logger
}

func NewCached(next Geocoder, cache Cache, log *logger.Logger) *Cached {
	return &Cached{next: next, cache: cache, log: log}
}

func (c *Cached) Geocode(ctx context.Context, query string) (Point, error) {
	p, ok, err := c.cache.Get(ctx, query)
	if err != nil && c.log != nil {
		c.log.Warnw("geocode_cache_read_failed", "query", query, "err", err)
	}
	if ok {
		if c.log != nil {
			c.log.Debugw("geocode_cache_hit", "query", query)
		}
		return p, nil
	}

	p, err = c.next.Geocode(ctx, query)
	if err != nil {
		return Point{}, err
	}
	if err := c.cache.Put(ctx, query, p); err != nil && c.log != nil {
		c.log.Warnw("geocode_cache_write_failed", "query", query, "err", err)
	}
	return p, nil
}
