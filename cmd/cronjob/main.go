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

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"toolshed-backend/internal/cache"
	"toolshed-backend/internal/config"
	"toolshed-backend/internal/jobs"
	"toolshed-backend/internal/logger"
	"toolshed-backend/internal/repository/postgres"
	"toolshed-backend/internal/scheduler"
	"toolshed-backend/internal/service"
)

const jobPreviewUnclaimed = "cancel-unclaimed-pickups-preview"

func main() {
	// Parse command-line flags
	configPath := flag.String("config", "config/config.dev.yaml", "Path to configuration file")
	runOnce := flag.String("run-once", "", "Run a specific job once and exit (e.g., 'activate-due-reservations', 'all-daily')")
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
	logger.Info("Starting Toolshed Cronjob Runner...", "log_level", cfg.Log.Level)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Initialize Database
	logger.Info("Connecting to database...", "host", cfg.Database.Host, "port", cfg.Database.Port)
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

	availabilityCache := cache.NewAvailabilityCache(ctx, cfg.Redis)
	defer availabilityCache.Close()

	// Initialize Services
	emailService := service.NewEmailService(cfg.SendGrid.APIKey, cfg.SendGrid.FromEmail, cfg.SendGrid.FromName)
	notifier := service.NewNotifier(store.NotificationRepository, store.UserRepository, emailService)
	availabilityService := service.NewAvailabilityService(
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
		availabilityService,
		notifier,
		service.NewActivityLogger(store.ActivityRepository),
		availabilityCache,
	)

	// Initialize Job Runner
	jobRunner := jobs.NewJobRunner(&jobs.Repositories{
		Reservations: store.ReservationRepository,
		Allocations:  store.AllocationRepository,
		Schema:       store.SchemaInspector,
	}, &jobs.Services{
		Engine:   engine,
		Notifier: notifier,
	}, cfg)

	// Check if running a single job
	if *runOnce != "" {
		logger.Info("Running job once", "job", *runOnce)
		if err := runJobOnce(ctx, jobRunner, *runOnce); err != nil {
			logger.Error("Job execution failed", "job", *runOnce, "error", err)
			os.Exit(1)
		}
		logger.Info("Job execution completed", "job", *runOnce)
		return
	}

	// Initialize Scheduler
	cronScheduler, err := scheduler.NewScheduler(ctx, jobRunner)
	if err != nil {
		log.Fatalf("Failed to initialize scheduler: %v", err)
	}

	metricsServer := startMetricsServer(cfg.Metrics.Address)

	// Start scheduler
	cronScheduler.Start()
	logger.Info("Cronjob scheduler is running. Press Ctrl+C to stop.")

	// Wait for interrupt signal
	<-ctx.Done()

	// Graceful shutdown
	logger.Info("Shutting down cronjob scheduler...")
	cronScheduler.Stop()
	if metricsServer != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = metricsServer.Shutdown(shutdownCtx)
	}
	logger.Info("Cronjob scheduler stopped. Goodbye!")
}

// startMetricsServer exposes /metrics when addr is set.
func startMetricsServer(addr string) *http.Server {
	if addr == "" {
		return nil
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		logger.Info("Metrics server listening", "address", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Metrics server error", "error", err)
		}
	}()
	return srv
}

// runJobOnce runs a specific job once and prints its summary
func runJobOnce(ctx context.Context, jobRunner *jobs.JobRunner, jobName string) error {
	var (
		summaries []jobs.JobSummary
		summary   jobs.JobSummary
		err       error
	)

	switch jobName {
	case jobs.JobActivateDueReservations:
		summary, err = jobRunner.ActivateDueReservations(ctx)
		summaries = append(summaries, summary)
	case jobs.JobCancelUnclaimedPickups:
		summary, err = jobRunner.CancelUnclaimedPickups(ctx, false)
		summaries = append(summaries, summary)
	case jobPreviewUnclaimed:
		summary, err = jobRunner.CancelUnclaimedPickups(ctx, true)
		summaries = append(summaries, summary)
		for _, a := range summary.Preview {
			fmt.Printf("  would cancel allocation %d (tool %d, user %d, borrow date %s)\n",
				a.ID, a.ToolID, a.UserID, a.BorrowDate.Format("2006-01-02"))
		}
	case jobs.JobCheckOverdue:
		summary, err = jobRunner.CheckOverdueAllocations(ctx)
		summaries = append(summaries, summary)
	case "all-daily":
		summaries, err = jobRunner.RunAllDailyJobs(ctx)
	default:
		fmt.Printf("Available jobs:\n")
		fmt.Printf("  - %s\n", jobs.JobActivateDueReservations)
		fmt.Printf("  - %s\n", jobs.JobCancelUnclaimedPickups)
		fmt.Printf("  - %s\n", jobPreviewUnclaimed)
		fmt.Printf("  - %s\n", jobs.JobCheckOverdue)
		fmt.Printf("  - all-daily\n")
		return fmt.Errorf("unknown job name %q", jobName)
	}

	for _, s := range summaries {
		fmt.Println(s.String())
	}
	return err
}
