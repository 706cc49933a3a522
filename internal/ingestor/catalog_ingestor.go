package ingestor

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"transitfare/internal/domain"
)

// Refresher reloads the catalog from its source.
type Refresher interface {
	Refresh(ctx context.Context) (*domain.Catalog, error)
}

// CatalogIngestor keeps the catalog warm by reloading it on an interval,
// so rider requests rarely wait on the document store.
type CatalogIngestor struct {
	refresher      Refresher
	updateInterval time.Duration
	logger         *slog.Logger

	ready   bool
	readyMu sync.RWMutex
}

func NewCatalogIngestor(refresher Refresher, updateInterval time.Duration, logger *slog.Logger) *CatalogIngestor {
	return &CatalogIngestor{
		refresher:      refresher,
		updateInterval: updateInterval,
		logger:         logger.With("component", "catalog_ingestor"),
	}
}

func (i *CatalogIngestor) Start(ctx context.Context) {
	i.update(ctx)

	ticker := time.NewTicker(i.updateInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			i.update(ctx)
		}
	}
}

func (i *CatalogIngestor) update(ctx context.Context) {
	start := time.Now()

	cat, err := i.refresher.Refresh(ctx)
	if err != nil {
		i.logger.Error("catalog refresh failed",
			"error", err,
			"duration_ms", time.Since(start).Milliseconds(),
		)
		return
	}

	if !i.IsReady() {
		i.setReady(true)
		i.logger.Info("catalog ingestor ready")
	}

	i.logger.Info("catalog refresh completed",
		"version", cat.Version,
		"routes", len(cat.Routes),
		"transfers", len(cat.Transfers),
		"duration_ms", time.Since(start).Milliseconds(),
	)
}

func (i *CatalogIngestor) IsReady() bool {
	i.readyMu.RLock()
	defer i.readyMu.RUnlock()
	return i.ready
}

func (i *CatalogIngestor) setReady(ready bool) {
	i.readyMu.Lock()
	defer i.readyMu.Unlock()
	i.ready = ready
}
