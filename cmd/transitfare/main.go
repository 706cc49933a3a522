package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"transitfare/internal/cache"
	"transitfare/internal/catalog"
	"transitfare/internal/config"
	"transitfare/internal/docstore"
	"transitfare/internal/domain"
	"transitfare/internal/handler"
	"transitfare/internal/hub"
	"transitfare/internal/ingestor"
	"transitfare/internal/middleware"
	"transitfare/internal/service"
	"transitfare/internal/store"
	"transitfare/pkg/catalogapi"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}))
	slog.SetDefault(logger)

	logger.Info("starting transitfare server",
		"log_level", cfg.LogLevel.String(),
		"http_addr", cfg.HTTPAddr,
		"catalog_source", cfg.CatalogSource,
		"redis_enabled", cfg.RedisEnabled,
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	source, closeSource, err := newSource(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to open catalog source", "source", cfg.CatalogSource, "error", err)
		os.Exit(1)
	}
	defer closeSource()

	catalogStore := store.NewCatalogStore()
	provider := catalog.NewCached(source, catalogStore, cfg.CatalogTTL, logger)
	fares := service.NewFares(provider, logger)
	wsHub := hub.NewHub(logger)

	hooks := []func(context.Context, *domain.Catalog){wsHub.BroadcastCatalog}

	if cfg.RedisEnabled {
		redisCache, err := cache.NewRedisCache(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, logger)
		if err != nil {
			logger.Warn("redis unavailable, continuing without shared cache", "error", err)
		} else {
			defer redisCache.Close()
			provider.WithSharedCache(redisCache, cfg.CacheTTL)
			fares.WithResultCache(redisCache, cfg.CacheTTL)
			warmer := cache.NewCacheWarmer(redisCache, cfg.CacheTTL, logger)
			hooks = append(hooks, warmer.OnUpdate)
		}
	}

	provider.SetOnUpdate(func(ctx context.Context, c *domain.Catalog) {
		for _, hook := range hooks {
			hook(ctx, c)
		}
	})

	catalogIng := ingestor.NewCatalogIngestor(provider, cfg.CatalogRefreshInterval, logger)
	limiter := middleware.NewRateLimiter(cfg.RateLimitPerWindow, cfg.RateLimitWindow, cfg.RateLimitWhitelist, logger)

	fareHandler := handler.NewFareHandler(fares, logger)
	catalogHandler := handler.NewCatalogHandler(catalogStore, logger)
	healthHandler := handler.NewHealthHandler(catalogIng, catalogStore)
	statsHandler := handler.NewStatsHandler(catalogStore, limiter)
	wsHandler := handler.NewWSHandler(wsHub, fares, provider, logger)

	api := http.NewServeMux()

	api.HandleFunc("POST /v1/fare", fareHandler.Estimate)
	api.HandleFunc("GET /v1/fare", fareHandler.EstimateQuery)
	api.HandleFunc("POST /v1/transfers/detect", fareHandler.DetectTransfer)
	api.HandleFunc("POST /v1/itinerary/quote", fareHandler.Quote)

	api.HandleFunc("GET /v1/routes", catalogHandler.ListRoutes)
	api.HandleFunc("GET /v1/routes/{id}", catalogHandler.GetRoute)
	api.HandleFunc("GET /v1/stops", catalogHandler.ListStops)
	api.HandleFunc("GET /v1/transfers", catalogHandler.ListTransfers)
	api.HandleFunc("GET /v1/stats", catalogHandler.GetStats)
	api.HandleFunc("GET /v1/stats/server", statsHandler.GetStats)

	api.HandleFunc("GET /healthz", healthHandler.Healthz)
	api.HandleFunc("GET /readyz", healthHandler.Readyz)

	// websocket upgrades must not pass through gzip
	root := http.NewServeMux()
	root.HandleFunc("/v1/ws", wsHandler.ServeWS)
	root.Handle("/", handler.GzipMiddleware(api))

	var h http.Handler = root
	h = limiter.Middleware(h)
	h = handler.CORSMiddleware(h)
	h = handler.RequestLogMiddleware(logger)(h)

	srv := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      h,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	go wsHub.Run(ctx)

	go catalogIng.Start(ctx)

	go func() {
		logger.Info("starting HTTP server", "addr", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("HTTP server error", "error", err)
			cancel()
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-sigChan:
		logger.Info("shutdown signal received")
	case <-ctx.Done():
	}

	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP server shutdown error", "error", err)
	}

	logger.Info("shutdown complete")
}

// newSource opens the configured catalog source. The returned close func is
// always safe to call.
func newSource(ctx context.Context, cfg *config.Config, logger *slog.Logger) (catalog.Source, func(), error) {
	switch cfg.CatalogSource {
	case config.SourceMongo:
		src, err := docstore.Connect(ctx, docstore.Options{
			URI:                 cfg.MongoURI,
			Database:            cfg.MongoDatabase,
			RoutesCollection:    cfg.MongoRoutesCollection,
			TransfersCollection: cfg.MongoTransfersCollection,
			Timeout:             cfg.MongoTimeout,
		}, logger)
		if err != nil {
			return nil, func() {}, err
		}
		return src, func() {
			closeCtx, cancel := context.WithTimeout(context.Background(), cfg.MongoTimeout)
			defer cancel()
			if err := src.Close(closeCtx); err != nil {
				logger.Error("mongo disconnect failed", "error", err)
			}
		}, nil

	case config.SourceHTTP:
		return catalogapi.New(cfg.CatalogURL), func() {}, nil

	case config.SourceFile:
		return catalog.NewFileSource(cfg.CatalogFile), func() {}, nil

	default:
		return nil, func() {}, fmt.Errorf("unknown catalog source %q", cfg.CatalogSource)
	}
}
