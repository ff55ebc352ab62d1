package service_test

import (
	"context"
	"time"

	"toolshed-backend/internal/domain"
	"toolshed-backend/internal/repository"

	"github.com/stretchr/testify/mock"
)

// MockToolRepo
type MockToolRepo struct {
	mock.Mock
}

func (m *MockToolRepo) GetByID(ctx context.Context, id int32) (*domain.Tool, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Tool), args.Error(1)
}
func (m *MockToolRepo) ListStatusLogs(ctx context.Context, toolID int32, limit int) ([]domain.ToolStatusLog, error) {
	args := m.Called(ctx, toolID, limit)
	return args.Get(0).([]domain.ToolStatusLog), args.Error(1)
}

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
	return args.Get(0).([]domain.Allocation), args.Error(1)
}
func (m *MockAllocationRepo) ListOverdue(ctx context.Context, today time.Time, afterID int32, limit int) ([]domain.Allocation, error) {
	args := m.Called(ctx, today, afterID, limit)
	return args.Get(0).([]domain.Allocation), args.Error(1)
}
func (m *MockAllocationRepo) LatestPenaltyUntil(ctx context.Context, userID int32) (*time.Time, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*time.Time), args.Error(1)
}

// MockTx
type MockTx struct {
	mock.Mock
}

func (m *MockTx) CountConflictingAllocations(ctx context.Context, q repository.CommitmentQuery) (int, error) {
	args := m.Called(ctx, q)
	return args.Int(0), args.Error(1)
}
func (m *MockTx) CountConflictingReservations(ctx context.Context, q repository.CommitmentQuery) (int, error) {
	args := m.Called(ctx, q)
	return args.Int(0), args.Error(1)
}
func (m *MockTx) LockTool(ctx context.Context, toolID int32) (*domain.Tool, error) {
	args := m.Called(ctx, toolID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	// Hand out a copy so each transaction sees the row as stored.
	t := *args.Get(0).(*domain.Tool)
	return &t, args.Error(1)
}
func (m *MockTx) UpdateToolInventory(ctx context.Context, tool *domain.Tool) error {
	args := m.Called(ctx, tool)
	return args.Error(0)
}
func (m *MockTx) AppendToolStatusLog(ctx context.Context, entry *domain.ToolStatusLog) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}
func (m *MockTx) LockReservation(ctx context.Context, id int32) (*domain.Reservation, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	r := *args.Get(0).(*domain.Reservation)
	return &r, args.Error(1)
}
func (m *MockTx) CreateReservation(ctx context.Context, r *domain.Reservation) error {
	args := m.Called(ctx, r)
	return args.Error(0)
}
func (m *MockTx) UpdateReservationStatus(ctx context.Context, id int32, status domain.ReservationStatus, at time.Time) error {
	args := m.Called(ctx, id, status, at)
	return args.Error(0)
}
func (m *MockTx) LockAllocation(ctx context.Context, id int32) (*domain.Allocation, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	a := *args.Get(0).(*domain.Allocation)
	return &a, args.Error(1)
}
func (m *MockTx) CreateAllocation(ctx context.Context, a *domain.Allocation) error {
	args := m.Called(ctx, a)
	return args.Error(0)
}
func (m *MockTx) UpdateAllocation(ctx context.Context, a *domain.Allocation) error {
	args := m.Called(ctx, a)
	return args.Error(0)
}

// FakeTxManager runs fn against the mock transaction directly.
type FakeTxManager struct {
	Tx *MockTx
}

func (f *FakeTxManager) WithinTx(ctx context.Context, fn func(ctx context.Context, tx repository.Tx) error) error {
	return fn(ctx, f.Tx)
}

// MockRuleRepo
type MockRuleRepo struct {
	mock.Mock
}

func (m *MockRuleRepo) ListEnabled(ctx context.Context) ([]domain.AutoApprovalRule, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.AutoApprovalRule), args.Error(1)
}

// MockCalendarRepo
type MockCalendarRepo struct {
	mock.Mock
}

func (m *MockCalendarRepo) ListHolidays(ctx context.Context, from, to time.Time) ([]domain.Holiday, error) {
	args := m.Called(ctx, from, to)
	return args.Get(0).([]domain.Holiday), args.Error(1)
}
func (m *MockCalendarRepo) ListBusinessHours(ctx context.Context) ([]domain.BusinessHour, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.BusinessHour), args.Error(1)
}

// MockUserRepo
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
	return args.Get(0).([]domain.User), args.Error(1)
}

// MockNotificationRepo
type MockNotificationRepo struct {
	mock.Mock
}

func (m *MockNotificationRepo) Create(ctx context.Context, n *domain.Notification) error {
	args := m.Called(ctx, n)
	return args.Error(0)
}
func (m *MockNotificationRepo) List(ctx context.Context, userID int32, limit, offset int32) ([]domain.Notification, int32, error) {
	args := m.Called(ctx, userID, limit, offset)
	return args.Get(0).([]domain.Notification), args.Get(1).(int32), args.Error(2)
}
func (m *MockNotificationRepo) MarkAsRead(ctx context.Context, id, userID int32) error {
	args := m.Called(ctx, id, userID)
	return args.Error(0)
}

// MockActivityRepo
type MockActivityRepo struct {
	mock.Mock
}

func (m *MockActivityRepo) Create(ctx context.Context, e *domain.ActivityLog) error {
	args := m.Called(ctx, e)
	return args.Error(0)
}

// MockEmailService
type MockEmailService struct {
	mock.Mock
}

func (m *MockEmailService) Send(ctx context.Context, toEmail, toName, subject, body string) error {
	args := m.Called(ctx, toEmail, toName, subject, body)
	return args.Error(0)
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

// MockActivityLogger
type MockActivityLogger struct {
	mock.Mock
}

func (m *MockActivityLogger) LogActivity(ctx context.Context, action, subjectType string, subjectID int32, description string, properties map[string]any, userID *int32) {
	m.Called(ctx, action, subjectType, subjectID, description, properties, userID)
}

// MockCalendarService
type MockCalendarService struct {
	mock.Mock
}

func (m *MockCalendarService) GetHolidaysInRange(ctx context.Context, from, to time.Time) ([]string, error) {
	args := m.Called(ctx, from, to)
	return args.Get(0).([]string), args.Error(1)
}
func (m *MockCalendarService) GetClosedDatesInRange(ctx context.Context, from, to time.Time) ([]time.Time, error) {
	args := m.Called(ctx, from, to)
	return args.Get(0).([]time.Time), args.Error(1)
}
func (m *MockCalendarService) ValidateRangeForBooking(ctx context.Context, from, to time.Time) ([]string, error) {
	args := m.Called(ctx, from, to)
	return args.Get(0).([]string), args.Error(1)
}

// MockAutoApproval
type MockAutoApproval struct {
	mock.Mock
}

func (m *MockAutoApproval) PassesAnyRule(ctx context.Context, user *domain.User, bc domain.BorrowContext) (bool, error) {
	args := m.Called(ctx, user, bc)
	return args.Bool(0), args.Error(1)
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

func day(s string) time.Time {
	d, _ := time.Parse("2006-01-02", s)
	return d
}

// MockAvailabilityService
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

// MockSnapshotCache
type MockSnapshotCache struct {
	mock.Mock
}

func (m *MockSnapshotCache) GetSummary(ctx context.Context, toolID int32) (*domain.AvailabilitySummary, bool) {
	args := m.Called(ctx, toolID)
	if args.Get(0) == nil {
		return nil, args.Bool(1)
	}
	return args.Get(0).(*domain.AvailabilitySummary), args.Bool(1)
}
func (m *MockSnapshotCache) SetSummary(ctx context.Context, summary *domain.AvailabilitySummary) {
	m.Called(ctx, summary)
}
func (m *MockSnapshotCache) Invalidate(ctx context.Context, toolID int32) {
	m.Called(ctx, toolID)
}
