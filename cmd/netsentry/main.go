package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/redis/go-redis/v9"

	"github.com/netsentry-io/netsentry/common/logging"
	"github.com/netsentry-io/netsentry/common/messaging"
	natsclient "github.com/netsentry-io/netsentry/common/messaging/nats"
	"github.com/netsentry-io/netsentry/internal/aggregate"
	"github.com/netsentry-io/netsentry/internal/alert"
	"github.com/netsentry-io/netsentry/internal/config"
	"github.com/netsentry-io/netsentry/internal/events"
	"github.com/netsentry-io/netsentry/internal/handlers"
	"github.com/netsentry-io/netsentry/internal/ingest"
	"github.com/netsentry-io/netsentry/internal/keys"
	"github.com/netsentry-io/netsentry/internal/middleware"
	"github.com/netsentry-io/netsentry/internal/ratelimit"
	"github.com/netsentry-io/netsentry/internal/repository"
	"github.com/netsentry-io/netsentry/internal/server"
	"github.com/netsentry-io/netsentry/pkg/tokens"
)

func main() {
	// Parse command line flags
	configPath := flag.String("config", "", "path to config file")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize structured logging
	logger := logging.New(
		logging.ParseLevel(cfg.Logging.Level),
		cfg.Logging.Format,
	).With(logging.Service("netsentry"))
	logging.SetDefault(logger)

	slog.Info("Starting NetSentry",
		slog.Int("port", cfg.Server.Port),
		slog.String("database", cfg.Database.Type),
		slog.String("log_level", cfg.Logging.Level),
	)

	// Initialize repository
	var repo repository.Repository
	switch cfg.Database.Type {
	case "postgres":
		connString := cfg.Database.Postgres.DSN()

		// Run database migrations
		log.Println("Running database migrations...")
		m, err := migrate.New("file://migrations", connString)
		if err != nil {
			log.Fatalf("Failed to initialize migrations: %v", err)
		}
		if err := m.Up(); err != nil && err != migrate.ErrNoChange {
			log.Fatalf("Failed to run migrations: %v", err)
		}
		log.Println("Database migrations completed")

		pg, err := repository.NewPostgresRepository(context.Background(), connString)
		if err != nil {
			log.Fatalf("Failed to connect to PostgreSQL: %v", err)
		}
		repo = pg
	case "memory", "":
		log.Println("Using in-memory storage (data is not persisted)")
		repo = repository.NewInMemoryRepository()
	default:
		log.Fatalf("Unknown database type: %s (supported: postgres, memory)", cfg.Database.Type)
	}
	defer repo.Close()

	// Initialize Redis (rate limiting + rollup cache)
	var redisClient *redis.Client
	var limiter ratelimit.RateLimiter = &ratelimit.NoOpRateLimiter{}
	if cfg.Redis.Enabled {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := redisClient.Ping(context.Background()).Err(); err != nil {
			log.Printf("WARNING: Redis unavailable: %v", err)
			log.Println("Continuing without rate limiting and rollup caching")
			redisClient = nil
		} else {
			limiter = ratelimit.NewRedisRateLimiter(redisClient, cfg.Ingest.RateLimit, cfg.Ingest.RateBurst, time.Minute)
			log.Printf("Rate limiting enabled: %d requests per minute per credential (+%d burst)",
				cfg.Ingest.RateLimit, cfg.Ingest.RateBurst)
		}
	} else {
		log.Println("Redis disabled - rate limiting and rollup caching not available")
	}
	defer limiter.Close()

	// Initialize NATS event publishing
	var busClient messaging.Client
	if cfg.NATS.Enabled {
		natsCfg := natsclient.DefaultConfig()
		natsCfg.URL = cfg.NATS.URL
		nc, err := natsclient.NewClient(natsCfg)
		if err != nil {
			log.Printf("WARNING: Failed to connect to NATS: %v", err)
			log.Println("Continuing without event publishing")
		} else {
			busClient = nc
			defer nc.Drain()
			log.Printf("Event publishing enabled: %s", cfg.NATS.URL)
		}
	} else {
		log.Println("NATS disabled - event publishing not available")
	}
	publisher := events.NewPublisher(busClient, logger)

	// Initialize alert channel
	var channel alert.Channel
	if cfg.SMTP.Enabled {
		channel = alert.NewSMTPChannel(alert.SMTPConfig{
			Host:     cfg.SMTP.Host,
			Port:     cfg.SMTP.Port,
			Username: cfg.SMTP.Username,
			Password: cfg.SMTP.Password,
			From:     cfg.SMTP.From,
		})
		log.Printf("Email alerting enabled via %s:%d", cfg.SMTP.Host, cfg.SMTP.Port)
	} else {
		channel = alert.LogChannel{Logf: log.Printf}
		log.Println("SMTP disabled - alerts will be logged, not mailed")
	}

	// Wire services
	keySvc := keys.NewService(repo, cfg.Auth.KeySalt, logger)
	dispatcher := alert.NewDispatcher(repo, channel, logger)
	ingestSvc := ingest.NewService(repo, keySvc, dispatcher, publisher, limiter, cfg.Ingest.MaxBatchSize, logger)
	aggSvc := aggregate.NewService(repo, redisClient, logger)
	tokenGen := tokens.NewTokenGenerator(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTL)

	// Setup HTTP router
	router := server.NewRouter(server.Handlers{
		Ingest:      handlers.NewIngestHandler(ingestSvc, logger),
		Auth:        handlers.NewAuthHandler(keySvc, tokenGen, logger),
		Keys:        handlers.NewKeysHandler(keySvc, logger),
		Stats:       handlers.NewStatsHandler(aggSvc, keySvc, logger),
		Preferences: handlers.NewPreferencesHandler(dispatcher, repo, logger),
		Usage:       handlers.NewUsageHandler(aggSvc, logger),
		Health:      handlers.NewHealthHandler(repo),
	}, middleware.NewAuthMiddleware(tokenGen))

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Start server in goroutine
	go func() {
		log.Printf("NetSentry listening on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server stopped")
}
