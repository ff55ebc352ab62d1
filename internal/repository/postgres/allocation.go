package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"toolshed-backend/internal/domain"
	"toolshed-backend/internal/repository"

	sq "github.com/Masterminds/squirrel"
)

const allocationColumns = `id, tool_id, user_id, reservation_id, borrow_date, expected_return_date, status,
	claimed_at, claimed_by, actual_return_date, return_requested_at,
	COALESCE(return_condition, ''), COALESCE(return_notes, ''), reviewed_by,
	cancelled_at, COALESCE(cancellation_reason, ''), unclaimed_at, penalty_until, created_at, updated_at`

type allocationRepository struct {
	db *sql.DB
}

func NewAllocationRepository(db *sql.DB) repository.AllocationRepository {
	return &allocationRepository{db: db}
}

func scanAllocation(row scanner) (*domain.Allocation, error) {
	a := &domain.Allocation{}
	err := row.Scan(&a.ID, &a.ToolID, &a.UserID, &a.ReservationID, &a.BorrowDate, &a.ExpectedReturnDate, &a.Status,
		&a.ClaimedAt, &a.ClaimedBy, &a.ActualReturnDate, &a.ReturnRequestedAt,
		&a.ReturnCondition, &a.ReturnNotes, &a.ReviewedBy,
		&a.CancelledAt, &a.CancellationReason, &a.UnclaimedAt, &a.PenaltyUntil, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return a, nil
}

func getAllocation(ctx context.Context, db querier, id int32, forUpdate bool) (*domain.Allocation, error) {
	query := `SELECT ` + allocationColumns + ` FROM allocations WHERE id = $1`
	if forUpdate {
		query += ` FOR UPDATE`
	}
	a, err := scanAllocation(db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("allocation %d: %w", id, domain.ErrNotFound)
	}
	return a, err
}

func listAllocations(ctx context.Context, db querier, b sq.SelectBuilder) ([]domain.Allocation, error) {
	query, args, err := b.ToSql()
	if err != nil {
		return nil, err
	}
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Allocation
	for rows.Next() {
		a, err := scanAllocation(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *a)
	}
	return out, rows.Err()
}

func (r *allocationRepository) GetByID(ctx context.Context, id int32) (*domain.Allocation, error) {
	return getAllocation(ctx, r.db, id, false)
}

func (r *allocationRepository) CountConflictingAllocations(ctx context.Context, q repository.CommitmentQuery) (int, error) {
	return countConflictingAllocations(ctx, r.db, q)
}

func (r *allocationRepository) CountConflictingReservations(ctx context.Context, q repository.CommitmentQuery) (int, error) {
	return countConflictingReservations(ctx, r.db, q)
}

func (r *allocationRepository) ListOverlapping(ctx context.Context, toolID int32, from, to time.Time) ([]domain.Allocation, error) {
	return listAllocations(ctx, r.db, psql.Select(allocationColumns).From("allocations").
		Where(sq.Eq{"tool_id": toolID}).
		Where(sq.Eq{"status": committingAllocationStatuses()}).
		Where(sq.LtOrEq{"borrow_date": to}).
		Where(sq.GtOrEq{"expected_return_date": from}).
		OrderBy("borrow_date", "id"))
}

func (r *allocationRepository) CountByStatus(ctx context.Context, toolID int32, statuses ...domain.AllocationStatus) (int, error) {
	values := make([]string, 0, len(statuses))
	for _, s := range statuses {
		values = append(values, string(s))
	}
	return count(ctx, r.db, "allocations", psql.Select("COUNT(*)").From("allocations").
		Where(sq.Eq{"tool_id": toolID}).
		Where(sq.Eq{"status": values}))
}

func (r *allocationRepository) ListUnclaimed(ctx context.Context, today time.Time, afterID int32, limit int) ([]domain.Allocation, error) {
	return listAllocations(ctx, r.db, psql.Select(allocationColumns).From("allocations").
		Where(sq.Eq{"status": string(domain.AllocationStatusScheduled)}).
		Where(sq.Lt{"borrow_date": today}).
		Where(sq.Gt{"id": afterID}).
		OrderBy("id").
		Limit(uint64(limit)))
}

func (r *allocationRepository) ListOverdue(ctx context.Context, today time.Time, afterID int32, limit int) ([]domain.Allocation, error) {
	return listAllocations(ctx, r.db, psql.Select(allocationColumns).From("allocations").
		Where(sq.Eq{"status": string(domain.AllocationStatusBorrowed)}).
		Where(sq.Lt{"expected_return_date": today}).
		Where(sq.Gt{"id": afterID}).
		OrderBy("id").
		Limit(uint64(limit)))
}

func (r *allocationRepository) LatestPenaltyUntil(ctx context.Context, userID int32) (*time.Time, error) {
	var until sql.NullTime
	err := r.db.QueryRowContext(ctx, `SELECT MAX(penalty_until) FROM allocations WHERE user_id = $1`, userID).Scan(&until)
	if err != nil {
		return nil, err
	}
	if !until.Valid {
		return nil, nil
	}
	return &until.Time, nil
}
