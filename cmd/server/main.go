package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	httpapi "toolshed-backend/internal/api/http"
	"toolshed-backend/internal/cache"
	"toolshed-backend/internal/config"
	"toolshed-backend/internal/logger"
	"toolshed-backend/internal/repository/postgres"
	"toolshed-backend/internal/security"
	"toolshed-backend/internal/service"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
)

func main() {
	// Parse command-line flags
	configPath := flag.String("config", "config/config.dev.yaml", "Path to configuration file")
	flag.Parse()

	// .env is optional; real deployments export variables directly
	_ = godotenv.Load()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize logger
	logger.Initialize(cfg.Log.Level, cfg.Log.Format)
	logger.Info("Starting Toolshed booking API...", "log_level", cfg.Log.Level, "log_format", cfg.Log.Format)
	logger.Info("Server configuration", "address", cfg.GetServerAddress())
	logger.Info("Database configuration", "host", cfg.Database.Host, "port", cfg.Database.Port, "database", cfg.Database.Database, "user", cfg.Database.User, "lock_timeout", cfg.GetLockTimeout())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Initialize Database
	logger.Debug("Connecting to database...", "connection_string", fmt.Sprintf("%s@%s:%d/%s", cfg.Database.User, cfg.Database.Host, cfg.Database.Port, cfg.Database.Database))
	db, err := sql.Open("postgres", cfg.GetDatabaseConnectionString())
	if err != nil {
		logger.Error("Failed to connect to database", "error", err)
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	// Test database connection
	if err := db.PingContext(ctx); err != nil {
		logger.Error("Failed to ping database", "error", err)
		log.Fatalf("Failed to ping database: %v", err)
	}
	logger.Info("Database connection established")

	// Initialize Repositories
	store := postgres.NewStore(db, cfg.GetLockTimeout())

	// Snapshot cache (optional)
	availabilityCache := cache.NewAvailabilityCache(ctx, cfg.Redis)
	defer availabilityCache.Close()

	// Initialize Security
	tokenManager := security.NewTokenManager(cfg.JWT.Secret)

	// Initialize Services
	emailSvc := service.NewEmailService(cfg.SendGrid.APIKey, cfg.SendGrid.FromEmail, cfg.SendGrid.FromName)
	notifier := service.NewNotifier(store.NotificationRepository, store.UserRepository, emailSvc)
	activity := service.NewActivityLogger(store.ActivityRepository)
	calendarSvc := service.NewCalendarService(store.CalendarRepository, cfg.Policy.OpenWhenUnconfigured)
	rulesSvc := service.NewAutoApprovalEvaluator(store.RuleRepository, store.ToolRepository)
	availabilitySvc := service.NewAvailabilityService(
		store.ToolRepository,
		store.ReservationRepository,
		store.AllocationRepository,
		availabilityCache,
		cfg.Policy.MaxCalendarDays,
	)
	engine := service.NewAllocationEngine(
		store,
		store.ReservationRepository,
		store.AllocationRepository,
		availabilitySvc,
		notifier,
		activity,
		availabilityCache,
	)
	reservationSvc := service.NewReservationService(
		store,
		store.ReservationRepository,
		store.AllocationRepository,
		availabilitySvc,
		engine,
		rulesSvc,
		calendarSvc,
		notifier,
		activity,
		availabilityCache,
	)

	// Initialize HTTP handlers
	handler := httpapi.NewHandler(httpapi.Services{
		Availability:  availabilitySvc,
		Engine:        engine,
		Reservations:  reservationSvc,
		Rules:         rulesSvc,
		Calendar:      calendarSvc,
		Notifications: notifier,
	}, store.UserRepository)
	router := httpapi.NewRouter(handler, httpapi.NewAuthMiddleware(tokenManager, store.UserRepository))

	srv := &http.Server{
		Addr:              cfg.GetServerAddress(),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("HTTP server listening", "address", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("HTTP server error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()

	// Graceful shutdown
	logger.Info("Shutting down HTTP server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP server shutdown failed", "error", err)
	}
	logger.Info("HTTP server stopped. Goodbye!")
}
