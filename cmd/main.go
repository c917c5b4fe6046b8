/**
 * @description
 * This is the main entry point for the kudos-service. It is responsible for
 * initializing all components of the service, including configuration,
 * database connection, leaderboard cache, message broker, repository, the
 * core application service, the monthly reset scheduler, and the HTTP server.
 * It wires everything together and starts the service.
 *
 * @dependencies
 * - log/slog, net/http: Standard Go libraries for logging and HTTP server functionality.
 * - github.com/jackc/pgx/v5: PostgreSQL driver.
 * - github.com/redis/go-redis/v9: Leaderboard snapshot cache.
 * - internal/api, internal/app, internal/config, internal/store: Internal packages for the service.
 * - pkg/rabbitmq: Client for RabbitMQ.
 */

package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/kudoshq/kudos-service/internal/api"
	"github.com/kudoshq/kudos-service/internal/app"
	"github.com/kudoshq/kudos-service/internal/config"
	"github.com/kudoshq/kudos-service/internal/store"
	"github.com/kudoshq/kudos-service/pkg/rabbitmq"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	// Load application configuration from environment variables.
	cfg, err := config.LoadConfig(".")
	if err != nil {
		logger.Error("config load failed", "error", err)
		os.Exit(1)
	}
	if strings.TrimSpace(cfg.DatabaseURL) == "" {
		logger.Error("database url must be configured", "env", "DATABASE_URL")
		os.Exit(1)
	}

	logger.Info("starting kudos-service", "port", cfg.ServerPort)

	// Establish a connection pool to the PostgreSQL database.
	poolConfig, err := pgxpool.ParseConfig(cfg.DatabaseURL)
	if err != nil {
		logger.Error("database url parse failed", "error", err)
		os.Exit(1)
	}

	// Configure connection pool for high-traffic scenarios
	poolConfig.MaxConns = 100
	poolConfig.MinConns = 20
	poolConfig.MaxConnLifetime = 30 * time.Minute
	poolConfig.MaxConnIdleTime = 5 * time.Minute

	// Disable prepared statement caching to prevent conflicts
	poolConfig.ConnConfig.DefaultQueryExecMode = pgx.QueryExecModeSimpleProtocol

	dbpool, err := pgxpool.NewWithConfig(context.Background(), poolConfig)
	if err != nil {
		logger.Error("database connection failed", "error", err)
		os.Exit(1)
	}
	defer dbpool.Close()
	logger.Info("database connected")

	// Initialize the RabbitMQ producer to publish recognition and
	// redemption events. The broker being down must not prevent the
	// core ledger from serving requests.
	var producer rabbitmq.Publisher
	if strings.TrimSpace(cfg.RabbitMQURL) == "" {
		logger.Warn("rabbitmq url missing; event publishing disabled", "env", "RABBITMQ_URL")
		producer = &rabbitmq.EventProducerFallback{Logger: logger}
	} else {
		eventProducer, err := rabbitmq.NewEventProducer(cfg.RabbitMQURL, logger)
		if err != nil {
			logger.Warn("rabbitmq producer unavailable; using fallback", "error", err)
			producer = &rabbitmq.EventProducerFallback{Logger: logger}
		} else {
			defer eventProducer.Close()
			logger.Info("rabbitmq producer connected")
			producer = eventProducer
		}
	}

	// The leaderboard may be served from a cached snapshot. A missing or
	// unreachable Redis degrades to direct database reads.
	var leaderboardCache app.LeaderboardCache
	if cfg.RedisURL == "" {
		logger.Warn("redis url missing; leaderboard caching disabled", "env", "REDIS_URL")
	} else {
		redisOptions, parseErr := redis.ParseURL(cfg.RedisURL)
		if parseErr != nil {
			logger.Warn("redis url parse failed; leaderboard caching disabled", "error", parseErr)
		} else {
			redisClient := redis.NewClient(redisOptions)
			pingCtx, cancelPing := context.WithTimeout(context.Background(), 5*time.Second)
			pingErr := redisClient.Ping(pingCtx).Err()
			cancelPing()
			if pingErr != nil {
				logger.Warn("redis ping failed; leaderboard caching disabled", "error", pingErr)
				redisClient.Close()
			} else {
				defer redisClient.Close()
				logger.Info("redis connected")
				leaderboardCache = app.NewRedisLeaderboardCache(
					redisClient,
					cfg.RedisLeaderboardPrefix,
					time.Duration(cfg.LeaderboardCacheTTLSeconds)*time.Second,
				)
			}
		}
	}

	// Initialize the data access layer (repository).
	repository := store.NewPostgresRepository(dbpool)

	// Initialize the core application service with its dependencies.
	kudosService := app.NewService(repository, producer, leaderboardCache, logger)

	// Initialize the API handlers and router.
	handlers := api.NewHandlers(kudosService, logger)
	router := api.Routes(handlers)

	// Start the monthly reset scheduler in the background. Exactly one
	// instance of this process may run the scheduler; a duplicate run in
	// the same cycle re-applies the carry-over bonus.
	jobs := app.NewJobs(repository, logger)
	scheduler := app.NewScheduler(jobs, logger, cfg.ResetSchedule)
	scheduler.Start()

	serverAddr := fmt.Sprintf(":%s", cfg.ServerPort)
	server := &http.Server{
		Addr:    serverAddr,
		Handler: router,
	}

	go func() {
		logger.Info("server listening", "addr", serverAddr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server stopped unexpectedly", "error", err)
			os.Exit(1)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop
	logger.Info("shutdown started")

	stopCtx := scheduler.Stop()
	<-stopCtx.Done()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error("shutdown failed", "error", err)
	}

	logger.Info("shutdown complete")
}
