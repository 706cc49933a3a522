package catalog

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/bluele/gcache"

	"transitfare/internal/cache"
	"transitfare/internal/domain"
	"transitfare/internal/store"
)

const entryKey = "catalog"

// SharedCache is a cross-process catalog cache such as cache.RedisCache.
type SharedCache interface {
	GetJSONCompressed(ctx context.Context, key string, dest interface{}) (bool, error)
	SetJSONCompressed(ctx context.Context, key string, value interface{}, ttl time.Duration) error
}

// Cached keeps a loaded catalog for a freshness window and publishes every
// new snapshot to the store. Peek reads the store, so it keeps serving the
// last good catalog after the window lapses or the source fails.
type Cached struct {
	source  Source
	store   *store.CatalogStore
	entries gcache.Cache
	ttl     time.Duration
	logger  *slog.Logger

	shared    SharedCache
	sharedTTL time.Duration

	loadMu   sync.Mutex
	onUpdate func(context.Context, *domain.Catalog)
}

func NewCached(source Source, s *store.CatalogStore, ttl time.Duration, logger *slog.Logger) *Cached {
	return &Cached{
		source:  source,
		store:   s,
		entries: gcache.New(1).LRU().Expiration(ttl).Build(),
		ttl:     ttl,
		logger:  logger.With("component", "catalog"),
	}
}

// WithSharedCache consults sc before the source and writes loads back to it.
func (c *Cached) WithSharedCache(sc SharedCache, ttl time.Duration) *Cached {
	c.shared = sc
	c.sharedTTL = ttl
	return c
}

// SetOnUpdate registers fn to run after a snapshot with a new version is
// published.
func (c *Cached) SetOnUpdate(fn func(context.Context, *domain.Catalog)) {
	c.onUpdate = fn
}

func (c *Cached) Peek() *domain.Catalog {
	return c.store.Snapshot()
}

func (c *Cached) Fetch(ctx context.Context) (*domain.Catalog, error) {
	if cat, ok := c.cached(); ok {
		return cat, nil
	}

	c.loadMu.Lock()
	defer c.loadMu.Unlock()

	if cat, ok := c.cached(); ok {
		return cat, nil
	}

	if cat, ok := c.fromShared(ctx); ok {
		c.publish(ctx, cat)
		return cat, nil
	}

	return c.load(ctx)
}

// Refresh reloads from the source regardless of the freshness window.
func (c *Cached) Refresh(ctx context.Context) (*domain.Catalog, error) {
	c.loadMu.Lock()
	defer c.loadMu.Unlock()
	return c.load(ctx)
}

// load must be called with loadMu held.
func (c *Cached) load(ctx context.Context) (*domain.Catalog, error) {
	start := time.Now()

	cat, err := c.source.Load(ctx)
	if err != nil {
		c.logger.Warn("catalog load failed", "error", err, "duration_ms", time.Since(start).Milliseconds())
		if errors.Is(err, domain.ErrDataUnavailable) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %w", domain.ErrDataUnavailable, err)
	}
	Seal(cat)

	c.logger.Debug("catalog loaded",
		"version", cat.Version,
		"routes", len(cat.Routes),
		"transfers", len(cat.Transfers),
		"duration_ms", time.Since(start).Milliseconds(),
	)

	if c.shared != nil {
		if err := c.shared.SetJSONCompressed(ctx, cache.KeyCatalogSnapshot, cat, c.sharedTTL); err != nil {
			c.logger.Warn("failed to share catalog", "error", err)
		}
	}

	c.publish(ctx, cat)
	return cat, nil
}

func (c *Cached) cached() (*domain.Catalog, bool) {
	v, err := c.entries.Get(entryKey)
	if err != nil {
		return nil, false
	}
	cat, ok := v.(*domain.Catalog)
	return cat, ok
}

func (c *Cached) fromShared(ctx context.Context) (*domain.Catalog, bool) {
	if c.shared == nil {
		return nil, false
	}

	var cat domain.Catalog
	found, err := c.shared.GetJSONCompressed(ctx, cache.KeyCatalogSnapshot, &cat)
	if err != nil {
		c.logger.Warn("shared catalog read failed", "error", err)
		return nil, false
	}
	if !found {
		return nil, false
	}
	c.logger.Debug("catalog from shared cache", "version", cat.Version)
	return Seal(&cat), true
}

func (c *Cached) publish(ctx context.Context, cat *domain.Catalog) {
	if err := c.entries.Set(entryKey, cat); err != nil {
		c.logger.Warn("failed to cache catalog", "error", err)
	}

	previous := c.store.Snapshot().Version
	c.store.Update(cat)

	if cat.Version != previous {
		c.logger.Info("catalog published",
			"version", cat.Version,
			"previous_version", previous,
			"routes", len(cat.Routes),
			"transfers", len(cat.Transfers),
		)
		if c.onUpdate != nil {
			c.onUpdate(ctx, cat)
		}
	}
}
