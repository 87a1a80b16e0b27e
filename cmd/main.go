/**
 * @description
 * This is the main entry point for the bridge-service. Its primary role is to
 * start an HTTP server that listens for incoming webhooks from Bridge, apply
 * the resulting status changes to the database, and fan them out to other
 * services over RabbitMQ. A cron scheduler periodically reconciles pending
 * KYC links against the Bridge API in case webhook deliveries were lost.
 *
 * Key features:
 * - Loads application configuration from environment variables.
 * - Initializes PostgreSQL, Redis, and RabbitMQ connections.
 * - Sets up an HTTP router (`chi`) to direct webhook traffic to the handler.
 * - Implements graceful shutdown to ensure clean resource cleanup.
 *
 * @dependencies
 * - github.com/go-chi/chi/v5: HTTP router.
 * - github.com/jackc/pgx/v5/pgxpool: PostgreSQL connection pool.
 * - github.com/redis/go-redis/v9: Redis client for webhook deduplication.
 * - github.com/joho/godotenv: For loading .env files during local development.
 */
package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"github.com/sendapp/bridge-service/internal/api"
	"github.com/sendapp/bridge-service/internal/app"
	"github.com/sendapp/bridge-service/internal/config"
	"github.com/sendapp/bridge-service/internal/store"
	"github.com/sendapp/bridge-service/pkg/bridgeclient"
	"github.com/sendapp/bridge-service/pkg/rabbitmq"
)

func main() {
	// Load .env file for local development.
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("cannot load config: %v", err)
	}

	ctx := context.Background()

	// Database.
	dbPool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to create database pool: %v", err)
	}
	defer dbPool.Close()
	if err := dbPool.Ping(ctx); err != nil {
		log.Fatalf("Failed to ping database: %v", err)
	}
	log.Println("Database connected")

	// Redis, used to deduplicate webhook deliveries by event_id.
	redisOpts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		log.Fatalf("Invalid REDIS_URL: %v", err)
	}
	redisClient := redis.NewClient(redisOpts)
	defer redisClient.Close()
	if err := redisClient.Ping(ctx).Err(); err != nil {
		log.Fatalf("Failed to ping redis: %v", err)
	}
	log.Println("Redis connected")

	// RabbitMQ producer for internal events.
	producer, err := rabbitmq.NewEventProducer(cfg.RabbitMQURL)
	if err != nil {
		log.Fatalf("Failed to connect to RabbitMQ: %v", err)
	}
	defer producer.Close()
	log.Println("RabbitMQ producer connected")

	// Repositories and application service.
	customers := store.NewPostgresCustomerRepository(dbPool)
	deposits := store.NewPostgresDepositRepository(dbPool)
	accounts := store.NewPostgresVirtualAccountRepository(dbPool)
	dedup := store.NewRedisEventDedup(redisClient, "bridge:webhook_events", store.DefaultEventDedupTTL)
	eventService := app.NewEventService(customers, deposits, accounts, producer)

	// Bridge API client, shared by the reconciler (and any future outbound
	// flows this service grows).
	bridgeClient := bridgeclient.NewClient(cfg.BridgeAPIKey, cfg.BridgeSandbox)

	// KYC reconciliation cron job.
	slogger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	reconciler := app.NewReconciler(customers, bridgeClient, slogger, cfg.KycReconcileBatchSize)
	scheduler := app.NewScheduler(reconciler, slogger, cfg.KycReconcileSchedule)
	scheduler.Start()
	defer scheduler.Stop()

	// Router and handlers.
	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	webhookHandler := api.NewWebhookHandler(eventService, dedup, []byte(cfg.BridgeWebhookPublicKey))
	r.Post("/webhooks/bridge", webhookHandler.ServeHTTP)
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("Bridge service is healthy"))
	})

	server := &http.Server{
		Addr:    ":" + cfg.ServerPort,
		Handler: r,
	}

	go func() {
		log.Printf("Server starting on port %s", cfg.ServerPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Could not start server: %s\n", err)
		}
	}()

	// Graceful shutdown logic.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("Server shutdown failed: %v", err)
	}

	log.Println("Server gracefully stopped")
}
