package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"math/rand"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/lursoto/wayfarer/internal/adapters/http"
	natsadapter "github.com/lursoto/wayfarer/internal/adapters/nats"
	"github.com/lursoto/wayfarer/internal/adapters/nominatim"
	"github.com/lursoto/wayfarer/internal/adapters/osrm"
	"github.com/lursoto/wayfarer/internal/adapters/overpass"
	"github.com/lursoto/wayfarer/internal/adapters/postgres"
	"github.com/lursoto/wayfarer/internal/adapters/valkey"
	"github.com/lursoto/wayfarer/internal/core/ports"
	"github.com/lursoto/wayfarer/internal/core/usecases"
	"github.com/lursoto/wayfarer/internal/pkg/config"
	"github.com/lursoto/wayfarer/internal/pkg/logging"
	"github.com/lursoto/wayfarer/internal/pkg/telemetry"
)

func main() {
	cfg, err := config.Load("wayfarer-api")
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	// Structured logging
	logLevel := os.Getenv("LOG_LEVEL")
	if logLevel == "" {
		logLevel = "info"
	}
	logging.Setup(logLevel, "json")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Telemetry
	if cfg.Telemetry.Enabled {
		shutdown, err := telemetry.InitTracer(ctx, cfg.Telemetry.ServiceName, cfg.Telemetry.TempoAddr)
		if err != nil {
			slog.Warn("telemetry init failed", "error", err)
		} else {
			defer shutdown()
		}
	}

	// Database (optional persistent place cache)
	var db *postgres.DB
	var store ports.PlaceStore
	if cfg.Database.Enabled {
		db, err = postgres.New(ctx, cfg.Database.DSN())
		if err != nil {
			log.Fatalf("database: %v", err)
		}
		defer db.Close()
		store = postgres.NewPlaceStore(db, 24*time.Hour)
	}

	// Cache
	var cacheSvc ports.CacheService
	cache, err := valkey.New(cfg.Valkey.Addr)
	if err != nil {
		slog.Warn("valkey unavailable", "error", err)
		cache = nil
	} else {
		defer cache.Close()
		cacheSvc = cache
	}

	// NATS
	var events ports.EventPublisher
	nc, err := natsadapter.NewPublisher(cfg.NATS.URL)
	if err != nil {
		slog.Warn("nats unavailable", "error", err)
	} else {
		defer nc.Close()
		events = nc
	}

	// Raw NATS connection for WebSocket relay
	natsConn, err := natsadapter.RawConn(cfg.NATS.URL)
	if err != nil {
		slog.Warn("nats ws conn unavailable", "error", err)
	}

	// External providers
	timeout := time.Duration(cfg.Providers.TimeoutSeconds) * time.Second
	overpassClient := overpass.New(cfg.Providers.OverpassURL, cfg.Providers.UserAgent, timeout)
	nominatimClient := nominatim.New(cfg.Providers.NominatimURL, cfg.Providers.UserAgent, timeout)
	osrmClient := osrm.New(cfg.Providers.OSRMURL, cfg.Providers.UserAgent, timeout)

	// Use cases
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	meta := usecases.RandomMeta(rng)
	sources := []ports.POISource{
		overpassClient,
		nominatim.NewAttractionSource(nominatimClient),
	}
	synthetic := usecases.NewSyntheticSource(rng, meta)

	locationSvc := usecases.NewLocationService()
	discoverySvc := usecases.NewDiscoveryService(sources, synthetic, meta,
		cacheSvc, store, cfg.Discovery.RadiusMeters, cfg.Discovery.MaxResults)
	geocodingSvc := usecases.NewGeocodingService(nominatimClient, cacheSvc, store)
	routeSvc := usecases.NewRouteService(osrmClient, cacheSvc)
	sessions := usecases.NewSessionManager(locationSvc, discoverySvc, routeSvc,
		events, time.Second)

	deps := &http.Dependencies{
		Geocoding: geocodingSvc,
		Discovery: discoverySvc,
		Routes:    routeSvc,
		Sessions:  sessions,
		NATS:      natsConn,
		DB:        db,
		Cache:     cache,
	}

	// Fiber
	app := fiber.New(fiber.Config{
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		BodyLimit:    1024 * 1024, // 1 MB max request body
		AppName:      "Wayfarer API",
	})
	app.Use(recover.New())
	app.Use(logger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins:     "http://localhost:3000, http://localhost:5173",
		AllowMethods:     "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowCredentials: false,
		MaxAge:           3600,
	}))

	http.SetupRoutes(app, deps)

	// Graceful shutdown
	go func() {
		addr := fmt.Sprintf(":%d", cfg.Server.Port)
		slog.Info("API server starting", "addr", addr)
		if err := app.Listen(addr); err != nil {
			log.Fatalf("listen: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	slog.Info("shutdown signal received, draining connections...", "signal", sig.String())

	// Give in-flight requests up to 10s to complete
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		slog.Error("forced shutdown", "error", err)
	}

	slog.Info("server stopped")
}
