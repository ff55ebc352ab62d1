package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"toolshed-backend/internal/repository"

	sq "github.com/Masterminds/squirrel"
	_ "github.com/lib/pq"
)

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

// querier is satisfied by both *sql.DB and *sql.Tx so read queries are
// written once and reused under the tool lock.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type scanner interface {
	Scan(dest ...any) error
}

type Store struct {
	db          *sql.DB
	lockTimeout time.Duration
	repository.ToolRepository
	repository.ReservationRepository
	repository.AllocationRepository
	repository.RuleRepository
	repository.CalendarRepository
	repository.UserRepository
	repository.NotificationRepository
	repository.ActivityRepository
	repository.SchemaInspector
}

// NewStore wires every repository onto one pool. lockTimeout bounds how long
// a capacity transaction waits for a row lock; zero leaves the server default.
func NewStore(db *sql.DB, lockTimeout time.Duration) *Store {
	return &Store{
		db:                     db,
		lockTimeout:            lockTimeout,
		ToolRepository:         NewToolRepository(db),
		ReservationRepository:  NewReservationRepository(db),
		AllocationRepository:   NewAllocationRepository(db),
		RuleRepository:         NewRuleRepository(db),
		CalendarRepository:     NewCalendarRepository(db),
		UserRepository:         NewUserRepository(db),
		NotificationRepository: NewNotificationRepository(db),
		ActivityRepository:     NewActivityRepository(db),
		SchemaInspector:        NewSchemaInspector(db),
	}
}

// WithinTx implements repository.TxManager.
func (s *Store) WithinTx(ctx context.Context, fn func(ctx context.Context, tx repository.Tx) error) error {
	sqlTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer sqlTx.Rollback()

	if s.lockTimeout > 0 {
		// SET does not take bind parameters; the value is an integer in ms.
		if _, err := sqlTx.ExecContext(ctx, fmt.Sprintf("SET LOCAL lock_timeout = %d", s.lockTimeout.Milliseconds())); err != nil {
			return fmt.Errorf("set lock timeout: %w", err)
		}
	}

	if err := fn(ctx, &pgTx{tx: sqlTx}); err != nil {
		return err
	}

	if err := sqlTx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}
