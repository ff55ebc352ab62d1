package jobs

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"toolshed-backend/internal/domain"
	"toolshed-backend/internal/utils"
)

// CheckOverdueAllocations reminds borrowers whose expected return date has
// passed and sends admins one digest. Nothing is mutated.
func (jr *JobRunner) CheckOverdueAllocations(ctx context.Context) (JobSummary, error) {
	return jr.runWithRecovery(ctx, JobCheckOverdue, func(ctx context.Context, log *slog.Logger, summary *JobSummary) error {
		today := utils.DateOnly(jr.clock())

		var afterID int32
		for {
			batch, err := jr.repos.Allocations.ListOverdue(ctx, today, afterID, jr.batchSize())
			if err != nil {
				return err
			}
			for _, a := range batch {
				if err := ctx.Err(); err != nil {
					return err
				}
				days := daysOverdue(a.ExpectedReturnDate, today)
				jr.services.Notifier.Notify(ctx, a.UserID, domain.NotificationKindOverdue,
					"Reminder: overdue tool return",
					fmt.Sprintf("Tool %d was due back on %s and is %d day(s) overdue. Please return it as soon as possible.",
						a.ToolID, utils.FormatDate(a.ExpectedReturnDate), days),
					fmt.Sprintf("/allocations/%d", a.ID))
				summary.Processed++
				log.Debug("Overdue reminder sent", "allocationID", a.ID, "userID", a.UserID, "daysOverdue", days)
			}
			if len(batch) < jr.batchSize() {
				break
			}
			afterID = batch[len(batch)-1].ID
		}

		if summary.Processed > 0 {
			jr.services.Notifier.NotifyAdmins(ctx, domain.NotificationKindOverdueDigest,
				"Overdue returns",
				fmt.Sprintf("%d borrowed tool(s) are past their expected return date as of %s.", summary.Processed, utils.FormatDate(today)),
				"/allocations?status=BORROWED&overdue=true")
		}
		return nil
	})
}

// daysOverdue counts whole days between the expected return and today.
func daysOverdue(expected, today time.Time) int {
	return int(utils.DateOnly(today).Sub(utils.DateOnly(expected)).Hours() / 24)
}
