package repository

import (
	"context"
	"time"

	"toolshed-backend/internal/domain"
)

// ToolRepository reads tools outside of capacity transactions. Writes to
// quantity counters and status only happen through Tx.
type ToolRepository interface {
	GetByID(ctx context.Context, id int32) (*domain.Tool, error)
	ListStatusLogs(ctx context.Context, toolID int32, limit int) ([]domain.ToolStatusLog, error)
}

// CommitmentQuery selects capacity-holding rows overlapping an inclusive window.
type CommitmentQuery struct {
	ToolID               int32
	Start                time.Time
	End                  time.Time
	ExcludeReservationID int32 // 0 means no exclusion
	UserID               int32 // 0 means any user
}

// CommitmentCounter is the capacity ledger's primitive. It is implemented
// both on the pool (lock-free reads) and inside a transaction (re-checks
// under the tool lock), so both paths apply the same overlap test.
type CommitmentCounter interface {
	CountConflictingAllocations(ctx context.Context, q CommitmentQuery) (int, error)
	CountConflictingReservations(ctx context.Context, q CommitmentQuery) (int, error)
}

type ReservationRepository interface {
	CommitmentCounter
	GetByID(ctx context.Context, id int32) (*domain.Reservation, error)
	ListOverlapping(ctx context.Context, toolID int32, from, to time.Time) ([]domain.Reservation, error)
	CountPending(ctx context.Context, toolID int32) (int, error)
	// ListDuePending pages PENDING reservations with start_date <= today, id > afterID.
	ListDuePending(ctx context.Context, today time.Time, afterID int32, limit int) ([]domain.Reservation, error)
}

type AllocationRepository interface {
	CommitmentCounter
	GetByID(ctx context.Context, id int32) (*domain.Allocation, error)
	ListOverlapping(ctx context.Context, toolID int32, from, to time.Time) ([]domain.Allocation, error)
	CountByStatus(ctx context.Context, toolID int32, statuses ...domain.AllocationStatus) (int, error)
	// ListUnclaimed pages SCHEDULED allocations with borrow_date < today, id > afterID.
	ListUnclaimed(ctx context.Context, today time.Time, afterID int32, limit int) ([]domain.Allocation, error)
	// ListOverdue pages BORROWED allocations with expected_return_date < today, id > afterID.
	ListOverdue(ctx context.Context, today time.Time, afterID int32, limit int) ([]domain.Allocation, error)
	// LatestPenaltyUntil returns the furthest penalty_until stamped on the user, if any.
	LatestPenaltyUntil(ctx context.Context, userID int32) (*time.Time, error)
}

// Tx is the set of writes a capacity-mutating transaction may perform.
// Lock methods take row locks that are held until commit or rollback.
type Tx interface {
	CommitmentCounter
	LockTool(ctx context.Context, toolID int32) (*domain.Tool, error)
	UpdateToolInventory(ctx context.Context, tool *domain.Tool) error
	AppendToolStatusLog(ctx context.Context, entry *domain.ToolStatusLog) error

	LockReservation(ctx context.Context, id int32) (*domain.Reservation, error)
	CreateReservation(ctx context.Context, r *domain.Reservation) error
	UpdateReservationStatus(ctx context.Context, id int32, status domain.ReservationStatus, at time.Time) error

	LockAllocation(ctx context.Context, id int32) (*domain.Allocation, error)
	CreateAllocation(ctx context.Context, a *domain.Allocation) error
	UpdateAllocation(ctx context.Context, a *domain.Allocation) error
}

// TxManager runs fn inside one transaction. fn's error rolls everything back.
type TxManager interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error
}

type RuleRepository interface {
	ListEnabled(ctx context.Context) ([]domain.AutoApprovalRule, error)
}

type CalendarRepository interface {
	ListHolidays(ctx context.Context, from, to time.Time) ([]domain.Holiday, error)
	ListBusinessHours(ctx context.Context) ([]domain.BusinessHour, error)
}

type UserRepository interface {
	GetByID(ctx context.Context, id int32) (*domain.User, error)
	ListByRole(ctx context.Context, role domain.UserRole) ([]domain.User, error)
}

type NotificationRepository interface {
	Create(ctx context.Context, note *domain.Notification) error
	List(ctx context.Context, userID int32, limit, offset int32) ([]domain.Notification, int32, error)
	MarkAsRead(ctx context.Context, id, userID int32) error
}

type ActivityRepository interface {
	Create(ctx context.Context, entry *domain.ActivityLog) error
}

// SchemaInspector lets jobs verify their columns exist before touching rows.
type SchemaInspector interface {
	MissingColumns(ctx context.Context, table string, columns ...string) ([]string, error)
}
