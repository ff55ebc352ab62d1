package jobs

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"toolshed-backend/internal/domain"
	"toolshed-backend/internal/utils"
)

var unclaimedColumns = []string{"unclaimed_at", "penalty_until"}

// CancelUnclaimedPickups cancels SCHEDULED allocations whose pickup date has
// passed, stamps the borrower's penalty window and tells them why. One admin
// digest goes out per run when anything was cancelled. With dryRun the
// candidates are listed (up to the preview limit) and nothing is written or
// sent.
func (jr *JobRunner) CancelUnclaimedPickups(ctx context.Context, dryRun bool) (JobSummary, error) {
	return jr.runWithRecovery(ctx, JobCancelUnclaimedPickups, func(ctx context.Context, log *slog.Logger, summary *JobSummary) error {
		summary.DryRun = dryRun

		missing, err := jr.repos.Schema.MissingColumns(ctx, "allocations", unclaimedColumns...)
		if err != nil {
			return err
		}
		if len(missing) > 0 {
			log.Warn("Unclaimed pickup sweep disabled, run migrations", "missing", missing)
			return fmt.Errorf("%w: allocations.%s", domain.ErrSchemaMismatch, strings.Join(missing, ", allocations."))
		}

		now := jr.clock()
		today := utils.DateOnly(now)

		if dryRun {
			preview, err := jr.repos.Allocations.ListUnclaimed(ctx, today, 0, jr.previewLimit())
			if err != nil {
				return err
			}
			summary.Preview = preview
			for _, a := range preview {
				log.Info("Would cancel unclaimed pickup", "allocationID", a.ID, "toolID", a.ToolID, "userID", a.UserID, "borrowDate", utils.FormatDate(a.BorrowDate))
			}
			return nil
		}

		penaltyDays := jr.config.Policy.PenaltyDays
		var afterID int32
		for {
			batch, err := jr.repos.Allocations.ListUnclaimed(ctx, today, afterID, jr.batchSize())
			if err != nil {
				return err
			}
			for _, a := range batch {
				if err := ctx.Err(); err != nil {
					return err
				}
				updated, changed, err := jr.services.Engine.CancelUnclaimedAllocation(ctx, a.ID, now, penaltyDays)
				switch {
				case err != nil:
					summary.Errored++
					log.Error("Failed to cancel unclaimed pickup", "allocationID", a.ID, "error", err)
				case !changed:
					summary.Skipped++
				default:
					summary.Processed++
					jr.services.Notifier.Notify(ctx, updated.UserID, domain.NotificationKindPickupUnclaimed,
						"Pickup not claimed",
						fmt.Sprintf("Your pickup of tool %d on %s was not claimed and has been cancelled. New borrows are paused until %s.",
							updated.ToolID, utils.FormatDate(updated.BorrowDate), utils.FormatDate(*updated.PenaltyUntil)),
						fmt.Sprintf("/allocations/%d", updated.ID))
				}
			}
			if len(batch) < jr.batchSize() {
				break
			}
			afterID = batch[len(batch)-1].ID
		}

		if summary.Processed > 0 {
			jr.services.Notifier.NotifyAdmins(ctx, domain.NotificationKindUnclaimedDigest,
				"Unclaimed pickups cancelled",
				fmt.Sprintf("%d scheduled pickup(s) before %s were not claimed and have been cancelled.", summary.Processed, utils.FormatDate(today)),
				"/allocations?status=CANCELLED")
		}
		return nil
	})
}

func (jr *JobRunner) previewLimit() int {
	if jr.config.Policy.PreviewLimit > 0 {
		return jr.config.Policy.PreviewLimit
	}
	return 20
}
