package main

import (
	"context"
	"flag"
	"log"

	"go.uber.org/zap"

	"github.com/reyadahealth/doh-compliance-engine/internal/api/rest"
	"github.com/reyadahealth/doh-compliance-engine/internal/domain/standards"
	"github.com/reyadahealth/doh-compliance-engine/internal/infrastructure/cache"
	"github.com/reyadahealth/doh-compliance-engine/internal/infrastructure/config"
	"github.com/reyadahealth/doh-compliance-engine/internal/infrastructure/remote"
	"github.com/reyadahealth/doh-compliance-engine/internal/infrastructure/repository"
	"github.com/reyadahealth/doh-compliance-engine/internal/infrastructure/telemetry"
	"github.com/reyadahealth/doh-compliance-engine/internal/metrics"
	svc "github.com/reyadahealth/doh-compliance-engine/internal/service/validation"
)

func main() {
	configPath := flag.String("config", "", "Path to configuration file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	apiLogger := telemetry.SetupLogger(cfg.LogLevel)
	ctx := context.Background()

	catalog, err := standards.LoadDefault()
	if err != nil {
		logger.Fatal("failed to load DOH standards catalog", zap.Error(err))
	}
	logger.Info("standards catalog loaded",
		zap.String("standard_id", catalog.StandardID()),
		zap.String("version", catalog.Version()))

	registry, err := metrics.NewRegistry("doh-compliance-engine")
	if err != nil {
		logger.Fatal("failed to create metrics registry", zap.Error(err))
	}

	engineOpts := []svc.EngineOption{svc.WithMetrics(registry)}

	// The remote validation API is optional; every call through it may
	// fail and the engine then computes locally.
	if cfg.Validation.RemoteURL != "" {
		remoteClient := remote.NewClient(cfg.Validation.RemoteURL, cfg.Validation.RemoteTimeout, logger.Named("remote"))
		engineOpts = append(engineOpts, svc.WithRemoteValidator(remoteClient))
	}

	// Redis is optional: without it the engine runs uncached and the
	// API falls back to a local rate limiter.
	var rateLimiter cache.RateLimiter
	var resultCache *cache.ValidationCache
	if cfg.Redis.URL != "" {
		redisClient, err := cache.NewRedisClient(&cfg.Redis)
		if err != nil {
			logger.Warn("redis unavailable, running without result cache", zap.Error(err))
		} else {
			redisCache := cache.NewRedisCacheWithClient(redisClient, logger.Named("cache"))
			defer func() { _ = redisCache.Close() }()
			resultCache = cache.NewValidationCache(redisCache, logger.Named("cache"), cfg.Validation.CacheTTL)
			rateLimiter = cache.NewRedisRateLimiter(redisClient, logger.Named("ratelimit"))
			engineOpts = append(engineOpts, svc.WithCache(resultCache))
		}
	}

	// Postgres is optional: without it reports fall back to in-memory
	// history.
	var repo svc.ResultRepository
	if cfg.Database.URL != "" {
		pgRepo, err := repository.NewValidationRepository(ctx, &cfg.Database, logger.Named("repository"))
		if err != nil {
			logger.Warn("database unavailable, results will not be persisted", zap.Error(err))
		} else {
			defer pgRepo.Close()
			repo = pgRepo
			engineOpts = append(engineOpts, svc.WithRepository(pgRepo))
		}
	}

	engineCfg := svc.EngineConfig{
		ScoringMethod:      cfg.Validation.ScoringMethod,
		StrictUnknownRules: cfg.Validation.StrictUnknownRules,
		CacheEnabled:       cfg.Validation.CacheEnabled,
		HistorySize:        cfg.Validation.HistorySize,
		RemoteTimeout:      cfg.Validation.RemoteTimeout,
		RoutineInterval:    svc.DefaultEngineConfig().RoutineInterval,
		FollowUpInterval:   svc.DefaultEngineConfig().FollowUpInterval,
	}
	engine := svc.NewEngine(logger.Named("engine"), catalog, engineCfg, engineOpts...)

	batch := svc.NewBatchValidator(logger.Named("batch"), engine, registry, cfg.Validation.BatchConcurrency)
	queue := svc.NewBatchQueue(logger.Named("queue"), batch, registry, cfg.Validation.QueuePollInterval, cfg.Validation.QueueMaxWait)
	reporter := svc.NewReporter(logger.Named("reporter"), engine, repo)

	auth := rest.NewAuthMiddleware(rest.AuthConfig{
		JWTSecret:   []byte(cfg.Security.JWTSecret),
		TokenExpiry: cfg.Security.TokenExpiry,
	})

	handler := rest.NewHandler(engine, batch, queue, reporter, repo, resultCache)
	server := rest.NewServer(cfg, apiLogger, handler, auth, rateLimiter)

	if err := server.Start(); err != nil {
		logger.Fatal("server error", zap.Error(err))
	}
}
