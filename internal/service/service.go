package service

import (
	"context"
	"time"

	"toolshed-backend/internal/domain"
)

// AvailabilityService answers capacity questions without taking locks.
// Results may be stale by the time a write happens; writers re-check under
// the tool lock.
type AvailabilityService interface {
	CheckAvailability(ctx context.Context, toolID int32, start, end time.Time, excludeReservationID int32) (*domain.AvailabilityResult, error)
	// CalculateAvailability is a date-agnostic display snapshot. It may
	// disagree with CheckAvailability for any concrete range.
	CalculateAvailability(ctx context.Context, toolID int32) (*domain.AvailabilitySummary, error)
	AvailableForDates(ctx context.Context, toolID int32, from, to time.Time) ([]domain.DayAvailability, error)
	HasUserOverlappingReservation(ctx context.Context, toolID, userID int32, start, end time.Time, excludeReservationID int32) (bool, error)
	ListCommitments(ctx context.Context, toolID int32, from, to time.Time) (*domain.Commitments, error)
	// StatusHistory lists the tool's cached-status changes, newest first.
	StatusHistory(ctx context.Context, toolID int32, limit int) ([]domain.ToolStatusLog, error)
}

// AllocationEngine is the only writer of allocation status and of the
// tool's on-hand counter.
type AllocationEngine interface {
	ActivateReservation(ctx context.Context, reservationID, actorUserID int32, now time.Time) (*domain.ActivationOutcome, error)
	ApproveReservation(ctx context.Context, reservationID, actorUserID int32, now time.Time) (*domain.Allocation, error)
	TransitionAllocation(ctx context.Context, allocationID int32, to domain.AllocationStatus, meta domain.TransitionMetadata) (*domain.Allocation, error)
	// CancelUnclaimedAllocation reports changed=false when the row no longer
	// qualifies (claimed, already cancelled, or not yet stale).
	CancelUnclaimedAllocation(ctx context.Context, allocationID int32, now time.Time, penaltyDays int) (alloc *domain.Allocation, changed bool, err error)
}

type ReservationService interface {
	CreateReservation(ctx context.Context, actor *domain.User, toolID int32, start, end time.Time, notes string, now time.Time) (*domain.Reservation, *domain.Allocation, error)
	DeclineReservation(ctx context.Context, reservationID, actorUserID int32, reason string, now time.Time) (*domain.Reservation, error)
	CancelReservation(ctx context.Context, reservationID int32, actor *domain.User, now time.Time) (*domain.Reservation, error)
}

type AutoApprovalEvaluator interface {
	PassesAnyRule(ctx context.Context, user *domain.User, bc domain.BorrowContext) (bool, error)
}

type CalendarService interface {
	GetHolidaysInRange(ctx context.Context, from, to time.Time) ([]string, error)
	GetClosedDatesInRange(ctx context.Context, from, to time.Time) ([]time.Time, error)
	ValidateRangeForBooking(ctx context.Context, from, to time.Time) ([]string, error)
}

// Notifier delivers in-app notifications and, when configured, email.
// Delivery failures are logged and never returned.
type Notifier interface {
	Notify(ctx context.Context, userID int32, kind domain.NotificationKind, title, body, link string)
	NotifyAdmins(ctx context.Context, kind domain.NotificationKind, title, body, link string)
}

type NotificationService interface {
	GetNotifications(ctx context.Context, userID int32, page, pageSize int32) ([]domain.Notification, int32, error)
	MarkAsRead(ctx context.Context, userID, notificationID int32) error
}

// NotificationCenter is the write side and the inbox read side together.
type NotificationCenter interface {
	Notifier
	NotificationService
}

// ActivityLogger records audit entries. Failures are logged and swallowed.
type ActivityLogger interface {
	LogActivity(ctx context.Context, action, subjectType string, subjectID int32, description string, properties map[string]any, userID *int32)
}

type EmailService interface {
	Send(ctx context.Context, toEmail, toName, subject, body string) error
}

// SnapshotCache stores CalculateAvailability results between capacity changes.
type SnapshotCache interface {
	GetSummary(ctx context.Context, toolID int32) (*domain.AvailabilitySummary, bool)
	SetSummary(ctx context.Context, summary *domain.AvailabilitySummary)
	Invalidate(ctx context.Context, toolID int32)
}

type noopCache struct{}

func (noopCache) GetSummary(context.Context, int32) (*domain.AvailabilitySummary, bool) {
	return nil, false
}

func (noopCache) SetSummary(context.Context, *domain.AvailabilitySummary) {}

func (noopCache) Invalidate(context.Context, int32) {}
