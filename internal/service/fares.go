// Package service binds the fare and transfer core to a catalog provider.
package service

import (
	"context"
	"log/slog"
	"time"

	"transitfare/internal/cache"
	"transitfare/internal/catalog"
	"transitfare/internal/domain"
	"transitfare/internal/fare"
	"transitfare/internal/itinerary"
	"transitfare/internal/transfer"
)

// ResultCache stores fare results, e.g. cache.RedisCache.
type ResultCache interface {
	GetJSON(ctx context.Context, key string, dest interface{}) (bool, error)
	SetJSON(ctx context.Context, key string, value interface{}, ttl time.Duration) error
}

type TransferNotice struct {
	Transfer bool   `json:"transfer"`
	Message  string `json:"message,omitempty"`
}

type Fares struct {
	provider catalog.Provider
	results  ResultCache
	ttl      time.Duration
	logger   *slog.Logger
}

func NewFares(provider catalog.Provider, logger *slog.Logger) *Fares {
	return &Fares{
		provider: provider,
		logger:   logger.With("component", "fares"),
	}
}

// WithResultCache caches fare results per catalog version for ttl.
func (f *Fares) WithResultCache(rc ResultCache, ttl time.Duration) *Fares {
	f.results = rc
	f.ttl = ttl
	return f
}

// Catalog fetches the current catalog. When the provider fails but a
// previously loaded snapshot exists, that snapshot is used instead.
func (f *Fares) Catalog(ctx context.Context) (*domain.Catalog, error) {
	cat, err := f.provider.Fetch(ctx)
	if err == nil {
		return cat, nil
	}

	stale := f.provider.Peek()
	if stale.Empty() {
		return nil, err
	}
	f.logger.Warn("serving stale catalog", "version", stale.Version, "loaded_at", stale.LoadedAt, "error", err)
	return stale, nil
}

func (f *Fares) Estimate(ctx context.Context, start, end string) (*domain.FareResult, error) {
	cat, err := f.Catalog(ctx)
	if err != nil {
		return nil, err
	}

	key := cache.KeyFare(cat.Version, start, end)
	if f.results != nil {
		var cached domain.FareResult
		if found, err := f.results.GetJSON(ctx, key, &cached); err == nil && found {
			return &cached, nil
		}
	}

	res, err := fare.Estimate(start, end, cat.Routes)
	if err != nil {
		return nil, err
	}

	if f.results != nil {
		if err := f.results.SetJSON(ctx, key, res, f.ttl); err != nil {
			f.logger.Debug("failed to cache fare", "key", key, "error", err)
		}
	}
	return res, nil
}

func (f *Fares) DetectTransfer(ctx context.Context, stops []string) (TransferNotice, error) {
	cat, err := f.Catalog(ctx)
	if err != nil {
		return TransferNotice{}, err
	}

	msg, ok := transfer.Detect(stops, cat.Transfers)
	return TransferNotice{Transfer: ok, Message: msg}, nil
}

func (f *Fares) Quote(ctx context.Context, stops []string) (*itinerary.Quote, error) {
	cat, err := f.Catalog(ctx)
	if err != nil {
		return nil, err
	}
	return itinerary.Build(stops, cat.Routes, cat.Transfers)
}
