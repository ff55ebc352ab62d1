package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"toolshed-backend/internal/domain"
	"toolshed-backend/internal/logger"
	"toolshed-backend/internal/repository"
)

// pgTx implements repository.Tx over one *sql.Tx. Callers lock the tool
// before any allocation or reservation row to keep a single lock order.
type pgTx struct {
	tx *sql.Tx
}

func (t *pgTx) CountConflictingAllocations(ctx context.Context, q repository.CommitmentQuery) (int, error) {
	return countConflictingAllocations(ctx, t.tx, q)
}

func (t *pgTx) CountConflictingReservations(ctx context.Context, q repository.CommitmentQuery) (int, error) {
	return countConflictingReservations(ctx, t.tx, q)
}

func (t *pgTx) LockTool(ctx context.Context, toolID int32) (*domain.Tool, error) {
	logger.DatabaseCall("SELECT FOR UPDATE", "tools", "toolID", toolID)
	return getTool(ctx, t.tx, toolID, true)
}

func (t *pgTx) UpdateToolInventory(ctx context.Context, tool *domain.Tool) error {
	query := `UPDATE tools SET available_quantity = $1, status = $2, updated_on = $3 WHERE id = $4`
	res, err := t.tx.ExecContext(ctx, query, tool.AvailableQuantity, tool.Status, tool.UpdatedOn, tool.ID)
	return expectOneRow(res, err, "tool", tool.ID)
}

func (t *pgTx) AppendToolStatusLog(ctx context.Context, entry *domain.ToolStatusLog) error {
	query := `INSERT INTO tool_status_logs (tool_id, old_status, new_status, changed_by, reason, changed_at)
	          VALUES ($1, $2, $3, $4, $5, $6) RETURNING id`
	return t.tx.QueryRowContext(ctx, query, entry.ToolID, entry.OldStatus, entry.NewStatus, entry.ChangedBy, entry.Reason, entry.ChangedAt).Scan(&entry.ID)
}

func (t *pgTx) LockReservation(ctx context.Context, id int32) (*domain.Reservation, error) {
	return getReservation(ctx, t.tx, id, true)
}

func (t *pgTx) CreateReservation(ctx context.Context, r *domain.Reservation) error {
	query := `INSERT INTO reservations (tool_id, user_id, start_date, end_date, status, is_recurring, notes, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9) RETURNING id`
	return t.tx.QueryRowContext(ctx, query, r.ToolID, r.UserID, r.StartDate, r.EndDate, r.Status, r.IsRecurring, r.Notes, r.CreatedAt, r.UpdatedAt).Scan(&r.ID)
}

func (t *pgTx) UpdateReservationStatus(ctx context.Context, id int32, status domain.ReservationStatus, at time.Time) error {
	res, err := t.tx.ExecContext(ctx, `UPDATE reservations SET status = $1, updated_at = $2 WHERE id = $3`, status, at, id)
	return expectOneRow(res, err, "reservation", id)
}

func (t *pgTx) LockAllocation(ctx context.Context, id int32) (*domain.Allocation, error) {
	return getAllocation(ctx, t.tx, id, true)
}

func (t *pgTx) CreateAllocation(ctx context.Context, a *domain.Allocation) error {
	query := `INSERT INTO allocations (tool_id, user_id, reservation_id, borrow_date, expected_return_date, status, claimed_at, claimed_by, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10) RETURNING id`
	return t.tx.QueryRowContext(ctx, query, a.ToolID, a.UserID, a.ReservationID, a.BorrowDate, a.ExpectedReturnDate, a.Status, a.ClaimedAt, a.ClaimedBy, a.CreatedAt, a.UpdatedAt).Scan(&a.ID)
}

func (t *pgTx) UpdateAllocation(ctx context.Context, a *domain.Allocation) error {
	query := `UPDATE allocations SET status = $1, claimed_at = $2, claimed_by = $3, actual_return_date = $4,
	          return_requested_at = $5, return_condition = $6, return_notes = $7, reviewed_by = $8,
	          cancelled_at = $9, cancellation_reason = $10, unclaimed_at = $11, penalty_until = $12, updated_at = $13
	          WHERE id = $14`
	res, err := t.tx.ExecContext(ctx, query, a.Status, a.ClaimedAt, a.ClaimedBy, a.ActualReturnDate,
		a.ReturnRequestedAt, a.ReturnCondition, a.ReturnNotes, a.ReviewedBy,
		a.CancelledAt, a.CancellationReason, a.UnclaimedAt, a.PenaltyUntil, a.UpdatedAt, a.ID)
	return expectOneRow(res, err, "allocation", a.ID)
}

func expectOneRow(res sql.Result, err error, entity string, id int32) error {
	if err != nil {
		return err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return fmt.Errorf("%s %d: %w", entity, id, domain.ErrNotFound)
	}
	return nil
}
