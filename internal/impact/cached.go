package impact

import (
	"context"
	"errors"
	"fmt"

	"vrp-route-env/internal/domain"
	"vrp-route-env/internal/ports"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"
)

// Cached memoizes another provider per edge (travel) and per location
// (local). Concurrent misses for the same key share one upstream lookup.
// Cache failures are logged and bypassed; they never change the factor
// contract. When the inner provider is a *Guard, factors it fell back to
// are returned but not stored.
type Cached struct {
	inner ports.ImpactProvider
	cache ports.ImpactCache
	group singleflight.Group
}

// degradable is implemented by providers that can tell a real answer from a
// fallback.
type degradable interface {
	travelImpact(ctx context.Context, origin, destination domain.Location) (float64, bool)
	localImpact(ctx context.Context, loc domain.Location) (float64, bool)
}

func NewCached(inner ports.ImpactProvider, cache ports.ImpactCache) *Cached {
	return &Cached{inner: inner, cache: cache}
}

// TravelKey is the cache key of one directed edge. Coordinates are rounded to
// ~1 m so float noise does not fragment the cache.
func TravelKey(origin, destination domain.Location) string {
	return fmt.Sprintf("travel:%.5f,%.5f|%.5f,%.5f", origin.Lat, origin.Lon, destination.Lat, destination.Lon)
}

// LocalKey is the cache key of one location. Weather is coarse, so ~1 km
// cells share an entry.
func LocalKey(loc domain.Location) string {
	return fmt.Sprintf("local:%.2f,%.2f", loc.Lat, loc.Lon)
}

func (c *Cached) TravelImpact(ctx context.Context, origin, destination domain.Location) float64 {
	return c.lookup(ctx, TravelKey(origin, destination), func() (float64, bool) {
		if d, ok := c.inner.(degradable); ok {
			return d.travelImpact(ctx, origin, destination)
		}
		return c.inner.TravelImpact(ctx, origin, destination), true
	})
}

func (c *Cached) LocalImpact(ctx context.Context, loc domain.Location) float64 {
	return c.lookup(ctx, LocalKey(loc), func() (float64, bool) {
		if d, ok := c.inner.(degradable); ok {
			return d.localImpact(ctx, loc)
		}
		return c.inner.LocalImpact(ctx, loc), true
	})
}

func (c *Cached) lookup(ctx context.Context, key string, compute func() (float64, bool)) float64 {
	logger := zerolog.Ctx(ctx)

	if c.cache != nil {
		f, err := c.cache.Get(ctx, key)
		switch {
		case err == nil:
			return Sanitize(f)
		case errors.Is(err, ports.ErrCacheMiss):
		default:
			logger.Debug().Str("key", key).Err(err).Msg("impact cache read failed")
		}
	}

	v, _, _ := c.group.Do(key, func() (any, error) {
		raw, fresh := compute()
		f := Sanitize(raw)
		if c.cache != nil && fresh {
			if err := c.cache.Put(ctx, key, f); err != nil {
				logger.Debug().Str("key", key).Err(err).Msg("impact cache write failed")
			}
		}
		return f, nil
	})

	return v.(float64)
}
