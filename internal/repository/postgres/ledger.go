package postgres

import (
	"context"

	"toolshed-backend/internal/domain"
	"toolshed-backend/internal/logger"
	"toolshed-backend/internal/repository"

	sq "github.com/Masterminds/squirrel"
)

// Capacity ledger queries. Every caller, locked or not, goes through these
// two functions so the overlap test is defined in exactly one place:
// a row conflicts when its start is on or before the window end and its end
// is on or after the window start.

func committingAllocationStatuses() []string {
	statuses := make([]string, 0, len(domain.CommittingAllocationStatuses))
	for _, s := range domain.CommittingAllocationStatuses {
		statuses = append(statuses, string(s))
	}
	return statuses
}

// Legacy rows that escaped the UPCOMING/ACTIVE migration still hold capacity.
var pendingReservationStatuses = []string{
	string(domain.ReservationStatusPending),
	"UPCOMING",
	"ACTIVE",
}

func countConflictingAllocations(ctx context.Context, db querier, q repository.CommitmentQuery) (int, error) {
	b := psql.Select("COUNT(*)").From("allocations").
		Where(sq.Eq{"tool_id": q.ToolID}).
		Where(sq.Eq{"status": committingAllocationStatuses()}).
		Where(sq.LtOrEq{"borrow_date": q.End}).
		Where(sq.GtOrEq{"expected_return_date": q.Start})
	if q.UserID != 0 {
		b = b.Where(sq.Eq{"user_id": q.UserID})
	}
	return count(ctx, db, "allocations", b)
}

func countConflictingReservations(ctx context.Context, db querier, q repository.CommitmentQuery) (int, error) {
	b := psql.Select("COUNT(*)").From("reservations").
		Where(sq.Eq{"tool_id": q.ToolID}).
		Where(sq.Eq{"status": pendingReservationStatuses}).
		Where(sq.LtOrEq{"start_date": q.End}).
		Where(sq.GtOrEq{"end_date": q.Start})
	if q.ExcludeReservationID != 0 {
		b = b.Where(sq.NotEq{"id": q.ExcludeReservationID})
	}
	if q.UserID != 0 {
		b = b.Where(sq.Eq{"user_id": q.UserID})
	}
	return count(ctx, db, "reservations", b)
}

func count(ctx context.Context, db querier, table string, b sq.SelectBuilder) (int, error) {
	query, args, err := b.ToSql()
	if err != nil {
		return 0, err
	}
	logger.DatabaseCall("COUNT", table, "args", args)

	var n int
	err = db.QueryRowContext(ctx, query, args...).Scan(&n)
	logger.DatabaseResult("COUNT", int64(n), err, "table", table)
	if err != nil {
		return 0, err
	}
	return n, nil
}
