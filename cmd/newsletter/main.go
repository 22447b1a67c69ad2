package main

import (
	"context"
	"database/sql"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq" // PostgreSQL driver
	"github.com/redis/go-redis/v9"

	"github.com/ignite/newsletter-dispatch/internal/api"
	"github.com/ignite/newsletter-dispatch/internal/catalog"
	"github.com/ignite/newsletter-dispatch/internal/config"
	"github.com/ignite/newsletter-dispatch/internal/delivery"
	"github.com/ignite/newsletter-dispatch/internal/dispatch"
	"github.com/ignite/newsletter-dispatch/internal/pkg/distlock"
	"github.com/ignite/newsletter-dispatch/internal/pkg/logger"
	"github.com/ignite/newsletter-dispatch/internal/render"
	"github.com/ignite/newsletter-dispatch/internal/repository/postgres"
	"github.com/ignite/newsletter-dispatch/internal/service/subscriber"
)

// connectDB opens the pool and pings it with exponential backoff. The
// process refuses to start without a reachable database.
func connectDB(cfg config.DatabaseConfig) (*sql.DB, error) {
	db, err := sql.Open("postgres", cfg.URL)
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(5 * time.Minute)

	delay := cfg.ConnectBaseDelay()
	var lastErr error
	for attempt := 1; attempt <= cfg.ConnectMaxAttempts; attempt++ {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		lastErr = db.PingContext(ctx)
		cancel()
		if lastErr == nil {
			return db, nil
		}
		log.Printf("Database not ready (attempt %d/%d): %v", attempt, cfg.ConnectMaxAttempts, lastErr)
		if attempt < cfg.ConnectMaxAttempts {
			time.Sleep(delay)
			delay *= 2
		}
	}

	db.Close()
	return nil, lastErr
}

func main() {
	log.Println("Starting IGNITE newsletter dispatch service")

	cfg, err := config.LoadFromEnv("config/config.yaml")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger.SetLevel(logger.ParseLevel(cfg.Logging.Level))
	if cfg.Logging.RedactPII != nil {
		logger.SetRedactPII(*cfg.Logging.RedactPII)
	}

	db, err := connectDB(cfg.Database)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	repo := postgres.NewSubscriberRepo(db)
	if err := repo.EnsureSchema(context.Background()); err != nil {
		log.Fatalf("Failed to ensure schema: %v", err)
	}

	var redisClient *redis.Client
	if cfg.Redis.Addr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := redisClient.Ping(context.Background()).Err(); err != nil {
			log.Printf("Redis unreachable, run lock falls back to Postgres: %v", err)
			redisClient = nil
		}
	}

	catalogClient, err := catalog.FromConfig(cfg.Catalog)
	if err != nil {
		log.Fatalf("Failed to build catalog client: %v", err)
	}
	log.Printf("Catalog source: %s", cfg.Catalog.Source)

	gateway, err := delivery.FromConfig(cfg.Delivery)
	if err != nil {
		log.Fatalf("Failed to build delivery gateway: %v", err)
	}
	log.Printf("Delivery gateway: %s", cfg.Delivery.Gateway)

	renderer := render.New(cfg.Dispatch.ShopBaseURL)

	svc := subscriber.NewService(repo)
	dispatcher := dispatch.NewDispatcher(repo, catalogClient, renderer, gateway, cfg.Dispatch)

	scheduler, err := dispatch.NewScheduler(dispatcher, cfg.Dispatch.Cadence)
	if err != nil {
		log.Fatalf("Invalid dispatch cadence: %v", err)
	}
	scheduler.SetRunLock(distlock.New(redisClient, db, "newsletter:dispatch-run", cfg.Dispatch.RunLockTTL()))

	if err := scheduler.Start(); err != nil {
		log.Fatalf("Failed to start scheduler: %v", err)
	}

	handlers := api.NewHandlers(svc, db)
	server := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      api.SetupRoutes(handlers),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	go func() {
		log.Printf("HTTP server listening on %s", cfg.Server.Addr())
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("HTTP server failed: %v", err)
		}
	}()

	// Graceful shutdown: stop ticking, drain the in-flight run, then
	// close the HTTP server.
	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)
	<-done

	log.Println("Shutting down...")
	scheduler.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("HTTP shutdown error: %v", err)
	}

	log.Println("Shutdown complete")
}
