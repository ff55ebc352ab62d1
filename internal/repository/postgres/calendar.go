package postgres

import (
	"context"
	"database/sql"
	"time"

	"toolshed-backend/internal/domain"
	"toolshed-backend/internal/repository"
)

type calendarRepository struct {
	db *sql.DB
}

func NewCalendarRepository(db *sql.DB) repository.CalendarRepository {
	return &calendarRepository{db: db}
}

func (r *calendarRepository) ListHolidays(ctx context.Context, from, to time.Time) ([]domain.Holiday, error) {
	query := `SELECT id, name, date FROM holidays WHERE date BETWEEN $1 AND $2 ORDER BY date`
	rows, err := r.db.QueryContext(ctx, query, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var holidays []domain.Holiday
	for rows.Next() {
		var h domain.Holiday
		if err := rows.Scan(&h.ID, &h.Name, &h.Date); err != nil {
			return nil, err
		}
		holidays = append(holidays, h)
	}
	return holidays, rows.Err()
}

func (r *calendarRepository) ListBusinessHours(ctx context.Context) ([]domain.BusinessHour, error) {
	query := `SELECT id, day_of_week, COALESCE(opens_at, ''), COALESCE(closes_at, ''), enabled FROM business_hours ORDER BY day_of_week`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var hours []domain.BusinessHour
	for rows.Next() {
		var h domain.BusinessHour
		var dow int
		if err := rows.Scan(&h.ID, &dow, &h.OpensAt, &h.ClosesAt, &h.Enabled); err != nil {
			return nil, err
		}
		h.DayOfWeek = time.Weekday(dow)
		hours = append(hours, h)
	}
	return hours, rows.Err()
}
