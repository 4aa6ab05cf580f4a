package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/jonboulle/clockwork"

	httpadapter "github.com/ticketstats/ticketstats/internal/adapter/http"
	"github.com/ticketstats/ticketstats/internal/adapter/ratelimit"
	"github.com/ticketstats/ticketstats/internal/adapter/render"
	"github.com/ticketstats/ticketstats/internal/adapter/store"
	"github.com/ticketstats/ticketstats/internal/adapter/upstream"
	"github.com/ticketstats/ticketstats/internal/analysis"
	"github.com/ticketstats/ticketstats/internal/cache"
	"github.com/ticketstats/ticketstats/internal/chart"
	"github.com/ticketstats/ticketstats/internal/config"
	"github.com/ticketstats/ticketstats/internal/logger"
	"github.com/ticketstats/ticketstats/internal/ports"
	"github.com/ticketstats/ticketstats/internal/usecase"
)

func main() {
	ctx := context.Background()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize structured logger
	appLogger, err := logger.New(logger.Config{
		Level:       cfg.Logging.Level,
		Format:      cfg.Logging.Format,
		Output:      cfg.Logging.Output,
		File:        cfg.Logging.File,
		MaxSizeMB:   cfg.Logging.MaxSizeMB,
		MaxBackups:  cfg.Logging.MaxBackups,
		MaxAgeDays:  cfg.Logging.MaxAgeDays,
		ServiceName: "ticketstats",
	})
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	appLogger.Info(ctx, "Application starting", map[string]interface{}{
		"env":      cfg.Server.Environment,
		"policy":   cfg.Stats.Policy,
		"store":    cfg.Cache.Store,
		"timezone": cfg.Stats.Timezone,
	})

	// Connect to Redis only when a component needs it
	var redisClient *redis.Client
	if cfg.NeedsRedis() {
		redisClient, err = store.Connect(ctx, cfg.Redis.URL)
		if err != nil {
			appLogger.Error(ctx, "Failed to connect to Redis", err, map[string]interface{}{})
			os.Exit(1)
		}
		defer redisClient.Close()
		appLogger.Info(ctx, "Redis connection established", map[string]interface{}{})
	}

	clock := clockwork.NewRealClock()
	loc := cfg.Location()

	// Snapshot store
	var snapshots ports.SnapshotStore
	switch cfg.Cache.Store {
	case "redis":
		// entries outlive the freshness interval so replicas see each other's fetches
		snapshots = store.NewRedis(redisClient, cfg.Redis.SnapshotKey, 10*cfg.Cache.Freshness)
	default:
		snapshots = store.NewMemory()
	}

	// Upstream client
	tokens, err := upstream.NewTokenProvider(cfg.Upstream)
	if err != nil {
		appLogger.Error(ctx, "Failed to initialize token provider", err, map[string]interface{}{
			"auth_mode": cfg.Upstream.AuthMode,
		})
		os.Exit(1)
	}
	fetcher := upstream.NewClient(cfg.Upstream.URL, cfg.Upstream.Timeout, tokens, appLogger.WithFields(map[string]interface{}{
		"component": "upstream",
	}))

	ticketCache := cache.New(fetcher, snapshots,
		cache.WithClock(clock),
		cache.WithFreshness(cfg.Cache.Freshness),
		cache.WithSingleFlight(cfg.Cache.SingleFlight),
		cache.WithLogger(appLogger.WithFields(map[string]interface{}{"component": "cache"})),
	)

	// Statistics
	policy, err := analysis.PolicyByName(cfg.Stats.Policy)
	if err != nil {
		appLogger.Error(ctx, "Invalid statistics policy", err, map[string]interface{}{})
		os.Exit(1)
	}

	chartBuilder := chart.NewBuilder(
		render.NewSVG(cfg.Chart.Width, cfg.Chart.Height),
		chart.WithClock(clock),
		chart.WithLocation(loc),
		chart.WithLabels(chart.LabelsFor(cfg.Chart.Locale)),
	)

	analyzer := analysis.New(
		analysis.WithPolicy(policy),
		analysis.WithClock(clock),
		analysis.WithLocation(loc),
		analysis.WithChartBuilder(chartBuilder),
		analysis.WithLogger(appLogger.WithFields(map[string]interface{}{"component": "analysis"})),
	)

	statisticsUseCase := usecase.NewStatisticsUseCase(ticketCache, analyzer, loc, appLogger)

	// Rate limiting
	var limiter ports.RateLimiter
	limiter, err = ratelimit.New(cfg.RateLimit, redisClient, appLogger)
	if err != nil {
		appLogger.Error(ctx, "Failed to initialize rate limiter", err, map[string]interface{}{})
		os.Exit(1)
	}

	server := httpadapter.NewServer(httpadapter.ServerConfig{
		Address:          cfg.Address(),
		ReadTimeout:      cfg.Server.ReadTimeout,
		WriteTimeout:     cfg.Server.WriteTimeout,
		IdleTimeout:      cfg.Server.IdleTimeout,
		AllowedOrigins:   cfg.CORS.AllowedOrigins,
		AllowCredentials: cfg.CORS.AllowCredentials,
		RateLimitWindow:  cfg.RateLimit.Window,
	}, statisticsUseCase, limiter, appLogger)

	// Start server in goroutine
	go func() {
		if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			appLogger.Error(ctx, "Server failed to start", err, map[string]interface{}{
				"address": cfg.Address(),
			})
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	shutdownCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		appLogger.Error(ctx, "Server forced to shutdown", err, map[string]interface{}{})
	}
	appLogger.Info(ctx, "Server exited", map[string]interface{}{})
}
