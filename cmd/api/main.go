// cmd/api/main.go
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Anand95733/clothify-backend/internal/config"
	"github.com/Anand95733/clothify-backend/internal/infrastructure/database/postgres"
	"github.com/Anand95733/clothify-backend/internal/infrastructure/database/redis"
	"github.com/Anand95733/clothify-backend/internal/interfaces/http"
	"github.com/Anand95733/clothify-backend/internal/pkg/email"
	"github.com/Anand95733/clothify-backend/internal/pkg/logger"
	"github.com/Anand95733/clothify-backend/internal/pkg/notify"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	appLogger := logger.New(cfg)
	appLogger.Infof("Starting %s v%s in %s mode", cfg.App.Name, cfg.App.Version, cfg.App.Environment)

	// Connect to database
	db, err := postgres.NewConnection(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	// Connect to Redis
	redisClient, err := redis.NewConnection(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}
	defer redisClient.Close()

	if err := db.Health(); err != nil {
		log.Fatalf("Database health check failed: %v", err)
	}
	if err := redisClient.Health(); err != nil {
		log.Fatalf("Redis health check failed: %v", err)
	}

	// Run database migrations
	migration := postgres.NewMigration(db.GetDB())
	if err := migration.RunAutoMigrations(); err != nil {
		log.Fatalf("Database migration failed: %v", err)
	}
	if err := migration.CreateIndexes(); err != nil {
		appLogger.WithError(err).Warn("Index creation failed")
	}

	// Seed initial data in development
	if cfg.IsDevelopment() {
		if err := migration.SeedInitialData(); err != nil {
			appLogger.WithError(err).Warn("Data seeding failed")
		}
	}

	// Email delivery and background notification worker
	mailer, err := email.NewEmailService(cfg, appLogger)
	if err != nil {
		log.Fatalf("Failed to initialize email service: %v", err)
	}
	dispatcher := notify.NewDispatcher(appLogger, 64)

	// Create and start HTTP server
	server := http.NewServer(cfg, db.GetDB(), redisClient.GetClient(), appLogger, mailer, dispatcher)

	go func() {
		if err := server.Start(); err != nil {
			log.Fatalf("Failed to start HTTP server: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	appLogger.Info("Shutting down gracefully")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Stop(ctx); err != nil {
		appLogger.WithError(err).Error("Failed to shutdown HTTP server gracefully")
	}

	// Drain queued notifications before exit
	dispatcher.Close()

	appLogger.Info("Server shutdown completed")
}
