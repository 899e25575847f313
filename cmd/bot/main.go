package main

import (
	"context"
	"errors"
	"log"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/mroshb/anonchat_bot/internal/cache"
	"github.com/mroshb/anonchat_bot/internal/config"
	"github.com/mroshb/anonchat_bot/internal/database"
	"github.com/mroshb/anonchat_bot/internal/handlers"
	"github.com/mroshb/anonchat_bot/internal/matchmaking"
	"github.com/mroshb/anonchat_bot/internal/middleware"
	"github.com/mroshb/anonchat_bot/internal/repositories"
	"github.com/mroshb/anonchat_bot/pkg/clock"
	"github.com/mroshb/anonchat_bot/pkg/logger"
	"github.com/mroshb/anonchat_bot/telegram"
	"golang.org/x/sync/errgroup"
)

const sessionLogTimeout = 5 * time.Second

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment")
	}

	// Initialize logger
	logger.Init()
	defer logger.Sync()

	logger.Info("Starting anonymous chat bot...")

	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Fatal("Failed to load config", err)
	}

	// Validate production security settings
	if cfg.AppEnv == "production" {
		if err := cfg.ValidateProductionSecurity(); err != nil {
			logger.Fatal("Production security validation failed", err)
		}
		logger.Info("Production security validation passed")
	}

	db, err := database.Connect(cfg)
	if err != nil {
		logger.Fatal("Failed to connect to database", err)
	}

	// Run GORM auto-migration
	if err := database.AutoMigrate(db); err != nil {
		logger.Fatal("Failed to run migrations", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	userRepo := repositories.NewUserRepository(db)
	reportRepo := repositories.NewReportRepository(db)
	sessionLogRepo := repositories.NewSessionLogRepository(db)

	var (
		store       matchmaking.UserStore = userRepo
		invalidator handlers.AttributeInvalidator
	)
	if cfg.RedisAddr != "" {
		redisCache := cache.NewRedisCache(cfg)
		defer redisCache.Close()

		if err := redisCache.Ping(ctx); err != nil {
			logger.Warn("Redis unavailable, reading attributes from the database", "addr", cfg.RedisAddr, "error", err)
		} else {
			attrCache := cache.NewAttributeCache(userRepo, redisCache, cfg.AttributeCacheTTL, logger.Named("cache"))
			store = attrCache
			invalidator = attrCache
			logger.Info("Attribute cache enabled", "addr", cfg.RedisAddr, "ttl", cfg.AttributeCacheTTL)
		}
	}

	clk := clock.Real()
	engine := matchmaking.NewEngine(store, matchmaking.Options{
		InactivityThreshold: cfg.InactivityThreshold,
		Clock:               clk,
		OnSessionEnded:      handlers.NewSessionRecorder(sessionLogRepo, sessionLogTimeout),
	})

	handlerMgr := handlers.NewHandlerManager(cfg, engine, store, userRepo, reportRepo, sessionLogRepo, invalidator, clk)
	limiter := middleware.NewRateLimiter(cfg.RateLimitPerUser, cfg.RateLimitWindow, clk)

	bot, err := telegram.InitBot(cfg, handlerMgr, limiter)
	if err != nil {
		logger.Fatal("Failed to initialize bot", err)
	}

	reaper := matchmaking.NewReaper(engine, cfg.ReaperInterval, func(pairs []matchmaking.Pair) {
		handlerMgr.NotifyExpired(pairs, bot)
	})

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return bot.Run(gctx) })
	g.Go(func() error { return reaper.Run(gctx) })
	g.Go(func() error { return handlerMgr.RunIdleNudger(gctx, bot) })
	g.Go(func() error { return limiter.Run(gctx) })

	logger.Info("Bot started successfully", "env", cfg.AppEnv, "workers", cfg.WorkerCount)

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Bot exited with error", "error", err)
	}

	logger.Info("Shutting down gracefully...")
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
	logger.Info("Bot stopped")
}
