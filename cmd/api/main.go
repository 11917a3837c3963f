package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/nmoreno/fiestero/internal/adapters/geocoding"
	"github.com/nmoreno/fiestero/internal/adapters/http"
	natsadapter "github.com/nmoreno/fiestero/internal/adapters/nats"
	"github.com/nmoreno/fiestero/internal/adapters/postgres"
	"github.com/nmoreno/fiestero/internal/adapters/valkey"
	"github.com/nmoreno/fiestero/internal/core/ports"
	"github.com/nmoreno/fiestero/internal/core/usecases"
	"github.com/nmoreno/fiestero/internal/pkg/config"
	"github.com/nmoreno/fiestero/internal/pkg/logging"
	"github.com/nmoreno/fiestero/internal/pkg/metrics"
	"github.com/nmoreno/fiestero/internal/pkg/telemetry"
)

func main() {
	cfg, err := config.Load("fiestero-api")
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
			defer shutdown(context.Background())
		}
	}

	// Database
	db, err := postgres.New(ctx, cfg.Database.DSN())
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	// Sample pool stats for Prometheus
	go func() {
		t := time.NewTicker(15 * time.Second)
		defer t.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-t.C:
				metrics.UpdateDBPoolMetrics(db.Pool.Stat())
			}
		}
	}()

	// Cache. A typed-nil pointer in an interface defeats the nil checks in
	// the services, so only assign on success.
	var cacheSvc ports.CacheService
	cache, err := valkey.New(cfg.Valkey.Addr)
	if err != nil {
		slog.Warn("valkey unavailable", "error", err)
		cache = nil
	} else {
		cacheSvc = cache
		defer cache.Close()
	}

	// NATS
	var publisher ports.EventPublisher
	nc, err := natsadapter.NewPublisher(cfg.NATS.URL)
	if err != nil {
		slog.Warn("nats unavailable", "error", err)
	} else {
		publisher = nc
		defer nc.Close()
	}

	// Raw NATS connection for WebSocket relay
	natsConn, err := natsadapter.RawConn(cfg.NATS.URL)
	if err != nil {
		slog.Warn("nats ws conn unavailable", "error", err)
	}

	// Geocoder
	geocoder := geocoding.NewNominatimGeocoder(
		cfg.Geocoder.BaseURL,
		cfg.Geocoder.DefaultCity,
		cfg.Geocoder.UserAgent,
		time.Duration(cfg.Geocoder.TimeoutSecs)*time.Second,
	)

	// Repos
	productRepo := postgres.NewProductRepo(db)
	zoneRepo := postgres.NewZoneRepo(db)
	cartRepo := postgres.NewCartRepo(db)
	reservationRepo := postgres.NewReservationRepo(db)
	auditRepo := postgres.NewAuditRepo(db)

	// Use cases
	catalogSvc := usecases.NewCatalogService(productRepo, cacheSvc)
	zoneSvc := usecases.NewZoneService(zoneRepo, cacheSvc)
	quoteSvc := usecases.NewQuoteService(geocoder, zoneSvc)
	cartSvc := usecases.NewCartService(cartRepo, productRepo)
	reservationSvc := usecases.NewReservationService(reservationRepo, cartRepo, auditRepo, quoteSvc, publisher)

	deps := &http.Dependencies{
		Catalog:      catalogSvc,
		Zones:        zoneSvc,
		Quotes:       quoteSvc,
		Carts:        cartSvc,
		Reservations: reservationSvc,
		NATS:         natsConn,
		DB:           db,
		Cache:        cache,
	}

	// Fiber
	app := fiber.New(fiber.Config{
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		BodyLimit:    1024 * 1024, // 1 MB max request body
		AppName:      "Fiestero API",
	})
	app.Use(recover.New())
	app.Use(logger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins:     "http://localhost:3000, http://localhost:5173, https://*.fiestero.es",
		AllowMethods:     "GET,POST,PUT,PATCH,DELETE,OPTIONS",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, X-User-ID",
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
