package http

import (
	"context"
	"time"

	"toolshed-backend/internal/domain"

	"github.com/stretchr/testify/mock"
)

type MockUserRepo struct {
	mock.Mock
}

func (m *MockUserRepo) GetByID(ctx context.Context, id int32) (*domain.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserRepo) ListByRole(ctx context.Context, role domain.UserRole) ([]domain.User, error) {
	args := m.Called(ctx, role)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.User), args.Error(1)
}

type MockAvailabilityService struct {
	mock.Mock
}

func (m *MockAvailabilityService) CheckAvailability(ctx context.Context, toolID int32, start, end time.Time, excludeReservationID int32) (*domain.AvailabilityResult, error) {
	args := m.Called(ctx, toolID, start, end, excludeReservationID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.AvailabilityResult), args.Error(1)
}

func (m *MockAvailabilityService) CalculateAvailability(ctx context.Context, toolID int32) (*domain.AvailabilitySummary, error) {
	args := m.Called(ctx, toolID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.AvailabilitySummary), args.Error(1)
}

func (m *MockAvailabilityService) AvailableForDates(ctx context.Context, toolID int32, from, to time.Time) ([]domain.DayAvailability, error) {
	args := m.Called(ctx, toolID, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.DayAvailability), args.Error(1)
}

func (m *MockAvailabilityService) HasUserOverlappingReservation(ctx context.Context, toolID, userID int32, start, end time.Time, excludeReservationID int32) (bool, error) {
	args := m.Called(ctx, toolID, userID, start, end, excludeReservationID)
	return args.Bool(0), args.Error(1)
}

func (m *MockAvailabilityService) ListCommitments(ctx context.Context, toolID int32, from, to time.Time) (*domain.Commitments, error) {
	args := m.Called(ctx, toolID, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Commitments), args.Error(1)
}

func (m *MockAvailabilityService) StatusHistory(ctx context.Context, toolID int32, limit int) ([]domain.ToolStatusLog, error) {
	args := m.Called(ctx, toolID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.ToolStatusLog), args.Error(1)
}

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

type MockReservationService struct {
	mock.Mock
}

func (m *MockReservationService) CreateReservation(ctx context.Context, actor *domain.User, toolID int32, start, end time.Time, notes string, now time.Time) (*domain.Reservation, *domain.Allocation, error) {
	args := m.Called(ctx, actor, toolID, start, end, notes, now)
	var res *domain.Reservation
	var alloc *domain.Allocation
	if v := args.Get(0); v != nil {
		res = v.(*domain.Reservation)
	}
	if v := args.Get(1); v != nil {
		alloc = v.(*domain.Allocation)
	}
	return res, alloc, args.Error(2)
}

func (m *MockReservationService) DeclineReservation(ctx context.Context, reservationID, actorUserID int32, reason string, now time.Time) (*domain.Reservation, error) {
	args := m.Called(ctx, reservationID, actorUserID, reason, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Reservation), args.Error(1)
}

func (m *MockReservationService) CancelReservation(ctx context.Context, reservationID int32, actor *domain.User, now time.Time) (*domain.Reservation, error) {
	args := m.Called(ctx, reservationID, actor, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Reservation), args.Error(1)
}

type MockAutoApproval struct {
	mock.Mock
}

func (m *MockAutoApproval) PassesAnyRule(ctx context.Context, user *domain.User, bc domain.BorrowContext) (bool, error) {
	args := m.Called(ctx, user, bc)
	return args.Bool(0), args.Error(1)
}

type MockCalendarService struct {
	mock.Mock
}

func (m *MockCalendarService) GetHolidaysInRange(ctx context.Context, from, to time.Time) ([]string, error) {
	args := m.Called(ctx, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockCalendarService) GetClosedDatesInRange(ctx context.Context, from, to time.Time) ([]time.Time, error) {
	args := m.Called(ctx, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]time.Time), args.Error(1)
}

func (m *MockCalendarService) ValidateRangeForBooking(ctx context.Context, from, to time.Time) ([]string, error) {
	args := m.Called(ctx, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

type MockNotificationService struct {
	mock.Mock
}

func (m *MockNotificationService) GetNotifications(ctx context.Context, userID int32, page, pageSize int32) ([]domain.Notification, int32, error) {
	args := m.Called(ctx, userID, page, pageSize)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]domain.Notification), args.Get(1).(int32), args.Error(2)
}

func (m *MockNotificationService) MarkAsRead(ctx context.Context, userID, notificationID int32) error {
	args := m.Called(ctx, userID, notificationID)
	return args.Error(0)
}

func day(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}
