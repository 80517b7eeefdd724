package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/stitts-dev/draft-payout-sim/internal/api"
	"github.com/stitts-dev/draft-payout-sim/internal/api/handlers"
	"github.com/stitts-dev/draft-payout-sim/internal/projections"
	"github.com/stitts-dev/draft-payout-sim/internal/services"
	"github.com/stitts-dev/draft-payout-sim/internal/websocket"
	"github.com/stitts-dev/draft-payout-sim/pkg/config"
	"github.com/stitts-dev/draft-payout-sim/pkg/database"
	"github.com/stitts-dev/draft-payout-sim/pkg/logger"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Setup logging
	log := logger.InitLogger(logger.Options{
		Level:       cfg.LogLevel,
		Format:      cfg.LogFormat,
		Development: cfg.IsDevelopment(),
	})
	log.WithField("env", cfg.Env).Info("Starting draft payout simulator")

	base := projections.Defaults()
	if cfg.ProjectionsFile != "" {
		base, err = projections.LoadFile(cfg.ProjectionsFile)
		if err != nil {
			log.Fatalf("Failed to load projections: %v", err)
		}
	}
	log.WithField("players", base.Len()).Info("Projection table loaded")

	checks := make(map[string]handlers.ReadinessCheck)

	// Run history is optional
	var store services.RunStore
	if cfg.DatabaseURL != "" {
		db, err := database.NewConnection(cfg.DatabaseURL, cfg.IsDevelopment())
		if err != nil {
			log.Fatalf("Failed to connect to database: %v", err)
		}
		defer db.Close()

		gormStore := services.NewGormRunStore(db.DB)
		if err := gormStore.Migrate(); err != nil {
			log.Fatalf("Failed to migrate run history: %v", err)
		}
		store = gormStore
		checks["database"] = func(context.Context) error { return db.HealthCheck() }

		if cfg.RunRetention > 0 {
			retention := services.NewRetentionService(gormStore, cfg.RunRetention, cfg.RetentionSchedule, log)
			if err := retention.Start(); err != nil {
				log.Fatalf("Failed to start run retention: %v", err)
			}
			defer retention.Stop()
		}
	} else {
		log.Warn("DATABASE_URL not set, run history disabled")
	}

	// Result cache is optional
	var cache *services.CacheService
	if cfg.RedisURL != "" {
		opt, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			log.Fatalf("Failed to parse Redis URL: %v", err)
		}
		redisClient := redis.NewClient(opt)
		defer redisClient.Close()

		cache = services.NewCacheService(redisClient)
		if err := cache.Ping(context.Background()); err != nil {
			log.Fatalf("Failed to connect to Redis: %v", err)
		}
		checks["redis"] = cache.Ping
	} else {
		log.Warn("REDIS_URL not set, result cache disabled")
	}

	hub := websocket.NewHub(cfg.CorsOrigins, log)
	go hub.Run()
	defer hub.Stop()

	simulationService := services.NewSimulationService(base, cache, store, hub, cfg, log)

	router := api.NewRouter(api.Dependencies{
		Simulations: simulationService,
		Export:      services.NewExportService(),
		Hub:         hub,
		Checks:      checks,
		Config:      cfg,
		Logger:      log,
	})

	for _, route := range router.Routes() {
		log.Debugf("%s %s", route.Method, route.Path)
	}

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Port),
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 5 * time.Minute,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Infof("Starting server on port %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Errorf("Server forced to shutdown: %v", err)
	}

	log.Info("Server exited")
}
