package cache

import (
	"context"
	"log/slog"
	"time"

	"transitfare/internal/domain"
	"transitfare/internal/fare"
)

// CacheWarmer precomputes terminal-to-terminal fares for a new catalog
// version so the most common queries are served from Redis, and drops fares
// cached for the version it replaces.
type CacheWarmer struct {
	cache  *RedisCache
	ttl    time.Duration
	logger *slog.Logger
}

func NewCacheWarmer(cache *RedisCache, ttl time.Duration, logger *slog.Logger) *CacheWarmer {
	return &CacheWarmer{
		cache:  cache,
		ttl:    ttl,
		logger: logger.With("component", "cache_warmer"),
	}
}

func (w *CacheWarmer) Warm(ctx context.Context, c *domain.Catalog) error {
	start := time.Now()

	previous, err := w.cache.Get(ctx, KeyCatalogVersion)
	if err != nil {
		return err
	}
	if err := w.cache.Set(ctx, KeyCatalogVersion, []byte(c.Version), w.ttl); err != nil {
		return err
	}

	evicted := 0
	if len(previous) > 0 && string(previous) != c.Version {
		evicted, err = w.cache.DeletePattern(ctx, KeyFarePattern(string(previous)))
		if err != nil {
			w.logger.Warn("failed to evict stale fares", "version", string(previous), "error", err)
		}
	}

	results := TerminalFares(c)
	for key, res := range results {
		if err := w.cache.SetJSON(ctx, key, res, w.ttl); err != nil {
			return err
		}
	}

	w.logger.Info("warmed fares",
		"version", c.Version,
		"fares", len(results),
		"evicted", evicted,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return nil
}

// OnUpdate adapts Warm to the catalog update hook.
func (w *CacheWarmer) OnUpdate(ctx context.Context, c *domain.Catalog) {
	if err := w.Warm(ctx, c); err != nil {
		w.logger.Error("failed to warm fares", "version", c.Version, "error", err)
	}
}

// TerminalFares prices every route's first and last stop in both directions
// against the whole catalog, keyed the way fare lookups are. Pairs that fail
// to price are left for the request path to report.
func TerminalFares(c *domain.Catalog) map[string]*domain.FareResult {
	out := make(map[string]*domain.FareResult)
	for _, route := range c.Routes {
		if len(route.Stops) < 2 {
			continue
		}
		first, last := route.Stops[0].Name, route.Stops[len(route.Stops)-1].Name
		for _, pair := range [][2]string{{first, last}, {last, first}} {
			key := KeyFare(c.Version, pair[0], pair[1])
			if _, ok := out[key]; ok {
				continue
			}
			res, err := fare.Estimate(pair[0], pair[1], c.Routes)
			if err != nil {
				continue
			}
			out[key] = res
		}
	}
	return out
}
