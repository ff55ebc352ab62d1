package jobs

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"toolshed-backend/internal/domain"
	"toolshed-backend/internal/utils"
)

// ActivateDueReservations turns every PENDING reservation whose start date
// has arrived into an allocation. A capacity decline or a reservation that
// another caller already settled counts as skipped; the reservation stays
// PENDING for an admin.
func (jr *JobRunner) ActivateDueReservations(ctx context.Context) (JobSummary, error) {
	return jr.runWithRecovery(ctx, JobActivateDueReservations, func(ctx context.Context, log *slog.Logger, summary *JobSummary) error {
		now := jr.clock()
		today := utils.DateOnly(now)

		var afterID int32
		for {
			batch, err := jr.repos.Reservations.ListDuePending(ctx, today, afterID, jr.batchSize())
			if err != nil {
				return err
			}
			for _, res := range batch {
				if err := ctx.Err(); err != nil {
					return err
				}
				jr.activateOne(ctx, log, summary, res, now)
			}
			if len(batch) < jr.batchSize() {
				return nil
			}
			afterID = batch[len(batch)-1].ID
		}
	})
}

func (jr *JobRunner) activateOne(ctx context.Context, log *slog.Logger, summary *JobSummary, res domain.Reservation, now time.Time) {
	outcome, err := jr.services.Engine.ActivateReservation(ctx, res.ID, 0, now)
	switch {
	case errors.Is(err, domain.ErrReservationNotPending):
		summary.Skipped++
		log.Debug("Reservation already settled", "reservationID", res.ID)
	case err != nil:
		summary.Errored++
		log.Error("Failed to activate reservation", "reservationID", res.ID, "toolID", res.ToolID, "error", err)
	case !outcome.Activated:
		summary.Skipped++
		log.Info("Reservation not activated", "reservationID", res.ID, "toolID", res.ToolID, "reason", outcome.Reason)
	default:
		summary.Processed++
		log.Info("Reservation activated", "reservationID", res.ID, "allocationID", outcome.Allocation.ID, "status", outcome.Allocation.Status)
	}
}
