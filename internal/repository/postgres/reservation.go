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

const reservationColumns = `id, tool_id, user_id, start_date, end_date, status, is_recurring, COALESCE(notes, ''), created_at, updated_at`

type reservationRepository struct {
	db *sql.DB
}

func NewReservationRepository(db *sql.DB) repository.ReservationRepository {
	return &reservationRepository{db: db}
}

func scanReservation(row scanner) (*domain.Reservation, error) {
	r := &domain.Reservation{}
	var status string
	err := row.Scan(&r.ID, &r.ToolID, &r.UserID, &r.StartDate, &r.EndDate, &status, &r.IsRecurring, &r.Notes, &r.CreatedAt, &r.UpdatedAt)
	if err != nil {
		return nil, err
	}
	r.Status = domain.NormalizeReservationStatus(status)
	return r, nil
}

func getReservation(ctx context.Context, db querier, id int32, forUpdate bool) (*domain.Reservation, error) {
	query := `SELECT ` + reservationColumns + ` FROM reservations WHERE id = $1`
	if forUpdate {
		query += ` FOR UPDATE`
	}
	r, err := scanReservation(db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("reservation %d: %w", id, domain.ErrNotFound)
	}
	return r, err
}

func listReservations(ctx context.Context, db querier, b sq.SelectBuilder) ([]domain.Reservation, error) {
	query, args, err := b.ToSql()
	if err != nil {
		return nil, err
	}
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Reservation
	for rows.Next() {
		r, err := scanReservation(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *r)
	}
	return out, rows.Err()
}

func (r *reservationRepository) GetByID(ctx context.Context, id int32) (*domain.Reservation, error) {
	return getReservation(ctx, r.db, id, false)
}

func (r *reservationRepository) CountConflictingAllocations(ctx context.Context, q repository.CommitmentQuery) (int, error) {
	return countConflictingAllocations(ctx, r.db, q)
}

func (r *reservationRepository) CountConflictingReservations(ctx context.Context, q repository.CommitmentQuery) (int, error) {
	return countConflictingReservations(ctx, r.db, q)
}

func (r *reservationRepository) ListOverlapping(ctx context.Context, toolID int32, from, to time.Time) ([]domain.Reservation, error) {
	return listReservations(ctx, r.db, psql.Select(reservationColumns).From("reservations").
		Where(sq.Eq{"tool_id": toolID}).
		Where(sq.Eq{"status": pendingReservationStatuses}).
		Where(sq.LtOrEq{"start_date": to}).
		Where(sq.GtOrEq{"end_date": from}).
		OrderBy("start_date", "id"))
}

func (r *reservationRepository) CountPending(ctx context.Context, toolID int32) (int, error) {
	return count(ctx, r.db, "reservations", psql.Select("COUNT(*)").From("reservations").
		Where(sq.Eq{"tool_id": toolID}).
		Where(sq.Eq{"status": pendingReservationStatuses}))
}

func (r *reservationRepository) ListDuePending(ctx context.Context, today time.Time, afterID int32, limit int) ([]domain.Reservation, error) {
	return listReservations(ctx, r.db, psql.Select(reservationColumns).From("reservations").
		Where(sq.Eq{"status": pendingReservationStatuses}).
		Where(sq.LtOrEq{"start_date": today}).
		Where(sq.Gt{"id": afterID}).
		OrderBy("id").
		Limit(uint64(limit)))
}
