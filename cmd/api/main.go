package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/samirrijal/agrobot/internal/adapters/detection"
	"github.com/samirrijal/agrobot/internal/adapters/http"
	"github.com/samirrijal/agrobot/internal/adapters/memory"
	natsadapter "github.com/samirrijal/agrobot/internal/adapters/nats"
	"github.com/samirrijal/agrobot/internal/adapters/postgres"
	"github.com/samirrijal/agrobot/internal/adapters/sqlite"
	"github.com/samirrijal/agrobot/internal/adapters/valkey"
	"github.com/samirrijal/agrobot/internal/core/ports"
	"github.com/samirrijal/agrobot/internal/core/usecases"
	"github.com/samirrijal/agrobot/internal/pkg/config"
	"github.com/samirrijal/agrobot/internal/pkg/logging"
	"github.com/samirrijal/agrobot/internal/pkg/metrics"
	"github.com/samirrijal/agrobot/internal/pkg/telemetry"
)

// storage bundles the repositories of the configured backend.
type storage struct {
	markers  ports.MarkerRepository
	messages ports.MessageRepository
	pinger   http.Pinger
	pg       *postgres.DB
	close    func()
}

func openStorage(ctx context.Context, cfg *config.Config) (*storage, error) {
	switch cfg.Storage.Driver {
	case config.StorageSQLite:
		db, err := sqlite.Open(cfg.Storage.SQLitePath)
		if err != nil {
			return nil, err
		}
		return &storage{
			markers:  sqlite.NewMarkerRepo(db),
			messages: sqlite.NewMessageRepo(db),
			pinger:   sqlite.Pinger{DB: db},
			close: func() {
				if sqlDB, err := db.DB(); err == nil {
					_ = sqlDB.Close()
				}
			},
		}, nil

	case config.StorageMemory:
		markers := memory.NewMarkerRepo()
		return &storage{
			markers:  markers,
			messages: memory.NewMessageRepo(),
			pinger:   markers,
			close:    func() {},
		}, nil

	default:
		db, err := postgres.New(ctx, cfg.Database.DSN(), cfg.Database.MaxConns)
		if err != nil {
			return nil, err
		}
		return &storage{
			markers:  postgres.NewMarkerRepo(db),
			messages: postgres.NewMessageRepo(db),
			pinger:   db,
			pg:       db,
			close:    db.Close,
		}, nil
	}
}

func main() {
	cfg, err := config.Load("agrobot-api")
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	// Structured logging
	logging.Setup(cfg.Log.Level, cfg.Log.Format, "agrobot-api")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Telemetry
	if cfg.Telemetry.Enabled {
		shutdown, err := telemetry.InitTracer(ctx, cfg.Telemetry.ServiceName, cfg.Telemetry.OTLPEndpoint)
		if err != nil {
			slog.Warn("telemetry init failed", "error", err)
		} else {
			defer shutdown()
		}
	}

	// Storage
	store, err := openStorage(ctx, cfg)
	if err != nil {
		log.Fatalf("storage (%s): %v", cfg.Storage.Driver, err)
	}
	defer store.close()
	slog.Info("storage ready", "driver", cfg.Storage.Driver)

	if store.pg != nil {
		go reportPoolMetrics(ctx, store.pg)
	}

	// Cache
	var cache ports.CacheService
	var cachePinger http.Pinger
	if cfg.Valkey.Enabled {
		vc, err := valkey.New(cfg.Valkey.Addr, cfg.Valkey.Password)
		if err != nil {
			slog.Warn("valkey unavailable, serving without cache", "error", err)
		} else {
			defer vc.Close()
			cache = vc
			cachePinger = vc
		}
	}

	// Save events: NATS fans them out to every instance; without a broker
	// the hub relays them within this process.
	hub := http.NewSessionHub()
	var publisher ports.EventPublisher = hub
	var broker interface{ IsConnected() bool }
	if cfg.NATS.Enabled {
		pub, err := natsadapter.NewPublisher(cfg.NATS.URL)
		if err != nil {
			slog.Warn("nats unavailable, relaying save events locally", "error", err)
		} else {
			defer pub.Close()
			publisher = pub
			broker = pub.Conn()

			sub := natsadapter.NewSubscriber(pub.Conn())
			if err := sub.SubscribeMarkersSaved(ctx, hub.Relay); err != nil {
				slog.Warn("subscribe markers saved", "error", err)
			} else {
				defer sub.Close()
			}
		}
	}

	// Use cases
	markerSvc := usecases.NewMarkerService(store.markers, cache, publisher)
	detectionSvc := usecases.NewDetectionService(
		detection.NewClient(cfg.Detection.URL, time.Duration(cfg.Detection.Timeout)*time.Second),
		cfg.Detection.DemoFallback,
	)
	contactSvc := usecases.NewContactService(store.messages)

	deps := &http.Dependencies{
		Markers:          markerSvc,
		Detection:        detectionSvc,
		Contact:          contactSvc,
		Sessions:         hub,
		Storage:          store.pinger,
		Cache:            cachePinger,
		Broker:           broker,
		DocsPath:         "api/openapi.yaml",
		SessionOpTimeout: time.Duration(cfg.Session.OpTimeout) * time.Second,
		PingInterval:     time.Duration(cfg.Session.PingInterval) * time.Second,
		RateLimit:        cfg.Server.RateLimit,
	}

	// Fiber
	app := fiber.New(fiber.Config{
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		BodyLimit:    8 * 1024 * 1024, // camera frames for /v1/detections
		AppName:      "Agrobot API",
	})
	app.Use(recover.New())
	app.Use(logger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins:     strings.Join(cfg.Server.AllowedOrigins, ", "),
		AllowMethods:     "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, If-None-Match, " + http.HeaderUserID,
		ExposeHeaders:    "ETag, X-Request-Id",
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

func reportPoolMetrics(ctx context.Context, db *postgres.DB) {
	ticker := time.NewTicker(15 * time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			metrics.UpdateDBPoolMetrics(db.Pool.Stat())
		case <-ctx.Done():
			return
		}
	}
}
