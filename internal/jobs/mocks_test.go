package jobs_test

import (
	"context"
	"time"

	"toolshed-backend/internal/domain"
	"toolshed-backend/internal/repository"

	"github.com/stretchr/testify/mock"
)

// MockReservationRepo
type MockReservationRepo struct {
	mock.Mock
}

func (m *MockReservationRepo) CountConflictingAllocations(ctx context.Context, q repository.CommitmentQuery) (int, error) {
	args := m.Called(ctx, q)
	return args.Int(0), args.Error(1)
}
func (m *MockReservationRepo) CountConflictingReservations(ctx context.Context, q repository.CommitmentQuery) (int, error) {
	args := m.Called(ctx, q)
	return args.Int(0), args.Error(1)
}
func (m *MockReservationRepo) GetByID(ctx context.Context, id int32) (*domain.Reservation, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Reservation), args.Error(1)
}
func (m *MockReservationRepo) ListOverlapping(ctx context.Context, toolID int32, from, to time.Time) ([]domain.Reservation, error) {
	args := m.Called(ctx, toolID, from, to)
	return args.Get(0).([]domain.Reservation), args.Error(1)
}
func (m *MockReservationRepo) CountPending(ctx context.Context, toolID int32) (int, error) {
	args := m.Called(ctx, toolID)
	return args.Int(0), args.Error(1)
}
func (m *MockReservationRepo) ListDuePending(ctx context.Context, today time.Time, afterID int32, limit int) ([]domain.Reservation, error) {
	args := m.Called(ctx, today, afterID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Reservation), args.Error(1)
}

// MockAllocationRepo
type MockAllocationRepo struct {
	mock.Mock
}

func (m *MockAllocationRepo) CountConflictingAllocations(ctx context.Context, q repository.CommitmentQuery) (int, error) {
	args := m.Called(ctx, q)
	return args.Int(0), args.Error(1)
}
func (m *MockAllocationRepo) CountConflictingReservations(ctx context.Context, q repository.CommitmentQuery) (int, error) {
	args := m.Called(ctx, q)
	return args.Int(0), args.Error(1)
}
func (m *MockAllocationRepo) GetByID(ctx context.Context, id int32) (*domain.Allocation, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Allocation), args.Error(1)
}
func (m *MockAllocationRepo) ListOverlapping(ctx context.Context, toolID int32, from, to time.Time) ([]domain.Allocation, error) {
	args := m.Called(ctx, toolID, from, to)
	return args.Get(0).([]domain.Allocation), args.Error(1)
}
func (m *MockAllocationRepo) CountByStatus(ctx context.Context, toolID int32, statuses ...domain.AllocationStatus) (int, error) {
	args := m.Called(ctx, toolID, statuses)
	return args.Int(0), args.Error(1)
}
func (m *MockAllocationRepo) ListUnclaimed(ctx context.Context, today time.Time, afterID int32, limit int) ([]domain.Allocation, error) {
	args := m.Called(ctx, today, afterID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Allocation), args.Error(1)
}
func (m *MockAllocationRepo) ListOverdue(ctx context.Context, today time.Time, afterID int32, limit int) ([]domain.Allocation, error) {
	args := m.Called(ctx, today, afterID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Allocation), args.Error(1)
}
func (m *MockAllocationRepo) LatestPenaltyUntil(ctx context.Context, userID int32) (*time.Time, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*time.Time), args.Error(1)
}

// MockSchemaInspector
type MockSchemaInspector struct {
	mock.Mock
}

func (m *MockSchemaInspector) MissingColumns(ctx context.Context, table string, columns ...string) ([]string, error) {
	args := m.Called(ctx, table, columns)
	return args.Get(0).([]string), args.Error(1)
}

// MockAllocationEngine
type MockAllocationEngine struct {
	mock.Mock
}

func (m *MockAllocationEngine) ActivateReservation(ctx context.Context, reservationID, actorUserID int32, now time.Time) (*domain.ActivationOutcome, error) {
	args := m.Called(ctx, reservationID, actorUserID, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ActivationOutcome), args.Error(1)
}
func (m *MockAllocationEngine) ApproveReservation(ctx context.Context, reservationID, actorUserID int32, now time.Time) (*domain.Allocation, error) {
	args := m.Called(ctx, reservationID, actorUserID, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Allocation), args.Error(1)
}
func (m *MockAllocationEngine) TransitionAllocation(ctx context.Context, allocationID int32, to domain.AllocationStatus, meta domain.TransitionMetadata) (*domain.Allocation, error) {
	args := m.Called(ctx, allocationID, to, meta)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Allocation), args.Error(1)
}
func (m *MockAllocationEngine) CancelUnclaimedAllocation(ctx context.Context, allocationID int32, now time.Time, penaltyDays int) (*domain.Allocation, bool, error) {
	args := m.Called(ctx, allocationID, now, penaltyDays)
	if args.Get(0) == nil {
		return nil, args.Bool(1), args.Error(2)
	}
	return args.Get(0).(*domain.Allocation), args.Bool(1), args.Error(2)
}

// MockNotifier
type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) Notify(ctx context.Context, userID int32, kind domain.NotificationKind, title, body, link string) {
	m.Called(ctx, userID, kind, title, body, link)
}
func (m *MockNotifier) NotifyAdmins(ctx context.Context, kind domain.NotificationKind, title, body, link string) {
	m.Called(ctx, kind, title, body, link)
}

func day(s string) time.Time {
	d, _ := time.Parse("2006-01-02", s)
	return d
}
