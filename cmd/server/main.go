package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-telegram/bot"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/itscarlsmith/ClassCal-v2-sub001/internal/app"
	"github.com/itscarlsmith/ClassCal-v2-sub001/internal/config"
	"github.com/itscarlsmith/ClassCal-v2-sub001/internal/handler"
	"github.com/itscarlsmith/ClassCal-v2-sub001/internal/notify"
	"github.com/itscarlsmith/ClassCal-v2-sub001/internal/repository"
	"github.com/itscarlsmith/ClassCal-v2-sub001/internal/server"
	"github.com/itscarlsmith/ClassCal-v2-sub001/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger := app.NewLogger(cfg.Environment)
	defer logger.Sync()

	logger.Sugar().Infow("Starting scheduling service",
		"environment", cfg.Environment,
		"http_addr", cfg.HTTPAddr)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := pgxpool.New(ctx, cfg.DBDSN)
	if err != nil {
		logger.Sugar().Fatalw("Failed to create database pool", "error", err)
	}
	defer pool.Close()

	if err := pool.Ping(ctx); err != nil {
		logger.Sugar().Fatalw("Failed to ping database", "error", err)
	}

	migrator, err := app.NewMigrator(pool, cfg.MigrationsPath)
	if err != nil {
		logger.Sugar().Fatalw("Failed to init migrator", "error", err)
	}
	if err := migrator.Run(ctx); err != nil {
		logger.Sugar().Fatalw("Failed to apply migrations", "error", err)
	}

	userRepo := repository.NewUserRepository(pool)
	ruleRepo := repository.NewRuleRepository(pool)
	lessonRepo := repository.NewLessonRepository(pool)

	var rdb *redis.Client
	if cfg.RedisAddr != "" {
		rdb = redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
		})
		if err := rdb.Ping(ctx).Err(); err != nil {
			logger.Sugar().Warnw("Redis unavailable, slot caching disabled", "error", err)
			rdb = nil
		}
	}
	cache := service.NewSlotCache(rdb, 30*time.Second, logger)

	var sinks notify.Fanout
	if cfg.AMQPURL != "" {
		sinks = append(sinks, notify.NewAMQPPublisher(cfg.AMQPURL, logger))
	}
	if cfg.TelegramToken != "" {
		b, err := bot.New(cfg.TelegramToken)
		if err != nil {
			logger.Sugar().Warnw("Telegram bot init failed, notifications disabled", "error", err)
		} else {
			sinks = append(sinks, notify.NewTelegramNotifier(b, userRepo, logger))
		}
	}

	policy := service.DefaultBookingPolicy()
	policy.MinAdvanceHours = cfg.MinAdvanceHours
	policy.MaxBookingDays = cfg.MaxBookingDays

	availabilitySvc := service.NewAvailabilityService(ruleRepo, lessonRepo, userRepo, cache, policy, logger)
	bookingSvc := service.NewBookingService(lessonRepo, ruleRepo, userRepo, availabilitySvc, sinks, cache, policy, logger)

	sweeper := app.NewSweeper(lessonRepo, time.Minute, logger)
	sweeper.Start(ctx)
	defer sweeper.Stop()

	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())

	h := handler.New(availabilitySvc, bookingSvc, logger)
	h.RegisterRoutes(router, cfg.JWTSecret)

	if err := server.Run(ctx, router, cfg.HTTPAddr, logger); err != nil {
		logger.Sugar().Fatalw("HTTP server failed", "error", err)
	}

	logger.Sugar().Infow("Shutdown complete")
}
