package jobs

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"toolshed-backend/internal/config"
	"toolshed-backend/internal/domain"
	"toolshed-backend/internal/logger"
	"toolshed-backend/internal/metrics"
	"toolshed-backend/internal/repository"
	"toolshed-backend/internal/service"

	"github.com/google/uuid"
)

// Job names, shared by the scheduler and the -run-once flag.
const (
	JobActivateDueReservations = "activate-due-reservations"
	JobCancelUnclaimedPickups  = "cancel-unclaimed-pickups"
	JobCheckOverdue            = "check-overdue"
)

// JobSummary is the result of one sweep run.
type JobSummary struct {
	Job       string              `json:"job"`
	RunID     string              `json:"run_id"`
	DryRun    bool                `json:"dry_run,omitempty"`
	Processed int                 `json:"processed"`
	Skipped   int                 `json:"skipped"`
	Errored   int                 `json:"errored"`
	Preview   []domain.Allocation `json:"preview,omitempty"`
	Duration  time.Duration       `json:"duration"`
}

func (s JobSummary) String() string {
	out := fmt.Sprintf("%s: processed=%d skipped=%d errored=%d", s.Job, s.Processed, s.Skipped, s.Errored)
	if s.DryRun {
		out += fmt.Sprintf(" (dry run, %d previewed)", len(s.Preview))
	}
	return out
}

// JobRunner coordinates all scheduled jobs
type JobRunner struct {
	repos    *Repositories
	services *Services
	config   *config.Config
	clock    func() time.Time
}

// Repositories holds the read side the sweeps page through
type Repositories struct {
	Reservations repository.ReservationRepository
	Allocations  repository.AllocationRepository
	Schema       repository.SchemaInspector
}

// Services holds all service dependencies needed by jobs
type Services struct {
	Engine   service.AllocationEngine
	Notifier service.Notifier
}

// NewJobRunner creates a new job runner with all dependencies
func NewJobRunner(repos *Repositories, services *Services, cfg *config.Config) *JobRunner {
	return &JobRunner{
		repos:    repos,
		services: services,
		config:   cfg,
		clock:    func() time.Time { return time.Now().UTC() },
	}
}

// Config exposes the runner's configuration to the scheduler.
func (jr *JobRunner) Config() *config.Config {
	return jr.config
}

// SetClock replaces the wall clock; tests pin "today" with it.
func (jr *JobRunner) SetClock(clock func() time.Time) {
	jr.clock = clock
}

// runWithRecovery wraps job execution with panic recovery, run-id tagging
// and metrics. A panic is logged and reported as an error.
func (jr *JobRunner) runWithRecovery(ctx context.Context, jobName string, jobFunc func(ctx context.Context, log *slog.Logger, summary *JobSummary) error) (summary JobSummary, err error) {
	summary = JobSummary{Job: jobName, RunID: uuid.NewString()}
	log := logger.WithJob(jobName, summary.RunID)
	start := time.Now()

	defer func() {
		if r := recover(); r != nil {
			log.Error("Job panicked", "panic", r)
			err = fmt.Errorf("job %s panicked: %v", jobName, r)
		}
		summary.Duration = time.Since(start)
		metrics.JobDuration.WithLabelValues(jobName).Observe(summary.Duration.Seconds())
		metrics.RecordJobItems(jobName, summary.Processed, summary.Skipped, summary.Errored)
		if err != nil {
			log.Error("Job failed", "error", err, "processed", summary.Processed, "skipped", summary.Skipped, "errored", summary.Errored)
			return
		}
		log.Info("Job completed", "processed", summary.Processed, "skipped", summary.Skipped, "errored", summary.Errored, "duration", summary.Duration)
	}()

	log.Info("Starting job")
	err = jobFunc(ctx, log, &summary)
	return summary, err
}

// RunAllDailyJobs runs every sweep once in schedule order (for manual execution).
func (jr *JobRunner) RunAllDailyJobs(ctx context.Context) ([]JobSummary, error) {
	var summaries []JobSummary

	s, err := jr.ActivateDueReservations(ctx)
	summaries = append(summaries, s)
	if err != nil {
		return summaries, err
	}

	s, err = jr.CancelUnclaimedPickups(ctx, false)
	summaries = append(summaries, s)
	if err != nil {
		return summaries, err
	}

	s, err = jr.CheckOverdueAllocations(ctx)
	summaries = append(summaries, s)
	return summaries, err
}

func (jr *JobRunner) batchSize() int {
	if jr.config.Policy.BatchSize > 0 {
		return jr.config.Policy.BatchSize
	}
	return 100
}
