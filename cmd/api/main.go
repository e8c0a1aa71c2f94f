// Package main is the entry point for the trending-score-service API.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"trending-score-service/internal/app/service"
	"trending-score-service/internal/config"
	"trending-score-service/internal/domain"
	"trending-score-service/internal/infra/postgres"
	"trending-score-service/internal/infra/postgres/migrations"
	rediscache "trending-score-service/internal/infra/redis"
	"trending-score-service/internal/infra/verifier/registry"
	"trending-score-service/internal/job"
	"trending-score-service/internal/logger"
	"trending-score-service/internal/transport/httpserver"
	"trending-score-service/internal/validator"
	"trending-score-service/pkg/locker"
)

func main() {
	// Load configuration
	cfg, err := config.Load("")
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	// Initialize logger
	log, err := logger.New(
		logger.Config{
			Name:   cfg.App.Name,
			Level:  cfg.Logger.Level,
			Format: cfg.Logger.Format,
			Output: cfg.Logger.Output,
		},
		logger.SentryConfig{
			Enabled:     cfg.Sentry.Enabled,
			DSN:         cfg.Sentry.DSN,
			Environment: cfg.Sentry.Environment,
			SampleRate:  cfg.Sentry.SampleRate,
		},
	)
	if err != nil {
		panic("failed to initialize logger: " + err.Error())
	}
	defer func() { _ = log.Sync() }()

	log.Info("starting trending-score-service",
		zap.String("env", cfg.App.Env),
		zap.Int("port", cfg.App.Port),
	)

	// Connect to database
	db, err := postgres.NewConnection(
		postgres.Config{
			Host:         cfg.Database.Host,
			Port:         cfg.Database.Port,
			Name:         cfg.Database.Name,
			User:         cfg.Database.User,
			Password:     cfg.Database.Password,
			SSLMode:      cfg.Database.SSLMode,
			MaxOpenConns: cfg.Database.MaxOpenConns,
			MaxIdleConns: cfg.Database.MaxIdleConns,
			MaxLifetime:  cfg.Database.MaxLifetime,
			Debug:        cfg.App.Debug,
		},
		log.Logger,
	)
	if err != nil {
		log.Fatal("failed to connect to database", zap.Error(err))
	}
	defer func() { _ = postgres.Close(db) }()

	// Run migrations
	if err := migrations.Run(db); err != nil {
		log.Fatal("failed to run migrations", zap.Error(err))
	}
	log.Info("database migrations completed")

	// Create repositories
	listingRepo := postgres.NewListingRepository(db)
	engagementRepo := postgres.NewEngagementRepository(db)
	snapshotRepo := postgres.NewSnapshotRepository(db)

	// Create revenue verifier clients
	verifiers := registry.NewVerifiers(cfg.Verifier, log.Logger)

	// Connect to Redis
	redisClient := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Redis.Host, cfg.Redis.Port),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	ctx := context.Background()
	if err := redisClient.Ping(ctx).Err(); err != nil {
		log.Fatal("failed to connect to Redis", zap.Error(err))
	}
	defer func() { _ = redisClient.Close() }()
	log.Info("connected to Redis",
		zap.String("host", cfg.Redis.Host),
		zap.Int("port", cfg.Redis.Port),
	)

	// Create cache implementation (optional, based on config)
	var cache domain.Cache
	if cfg.Cache.Enabled {
		cache = rediscache.NewCache(redisClient, log.Logger, cfg.Cache.KeyPrefix)
		log.Info("cache enabled",
			zap.Duration("feed_ttl", cfg.Cache.FeedTTL),
			zap.String("key_prefix", cfg.Cache.KeyPrefix),
		)
	} else {
		log.Info("cache disabled")
	}

	// Create services
	scoringCfg := cfg.Scoring.ToDomain()
	windows := cfg.Scoring.Windows()

	feedSvc := service.NewFeedService(
		listingRepo, engagementRepo, engagementRepo, snapshotRepo,
		scoringCfg, windows, cfg.Scoring.SnapshotMaxAge,
		cache, cfg.Cache.FeedTTL, log.Logger,
	)
	recalcSvc := service.NewRecalcService(
		listingRepo, engagementRepo, engagementRepo, snapshotRepo,
		scoringCfg, windows, cfg.Recalc.Concurrency,
		cache, log.Logger,
	)
	verifySvc := service.NewVerificationService(listingRepo, verifiers, log.Logger)

	// Create distributed locker
	distLocker := locker.NewRedisLocker(redisClient, log.Logger)

	// Create validator
	v := validator.New()

	// Create HTTP server
	server := httpserver.NewServer(
		httpserver.ServerConfig{
			Port:       cfg.App.Port,
			BodyLimit:  1024 * 1024, // 1MB
			Debug:      cfg.App.Debug,
			AdminToken: cfg.App.AdminToken,

			Scoring:        scoringCfg,
			Windows:        windows,
			SnapshotMaxAge: cfg.Scoring.SnapshotMaxAge,
		},
		feedSvc,
		recalcSvc,
		verifySvc,
		db,
		v,
		log.Logger,
	)

	// Start recalculation scheduler with distributed locking
	scheduler := job.NewRecalcScheduler(
		recalcSvc,
		job.RecalcConfig{
			Interval:  cfg.Recalc.Interval,
			Timeout:   cfg.Recalc.Timeout,
			OnStartup: cfg.Recalc.OnStartup,
		},
		log.Logger,
		distLocker,
	)
	scheduler.Start(cfg.Recalc.OnStartup)

	// Graceful shutdown
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		log.Info("shutdown signal received")

		scheduler.Stop()

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := server.App.ShutdownWithContext(ctx); err != nil {
			log.Error("server shutdown error", zap.Error(err))
		}
	}()

	// Start server
	if err := server.Start(cfg.App.Port); err != nil {
		log.Fatal("server error", zap.Error(err))
	}
}
