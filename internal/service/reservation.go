package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"toolshed-backend/internal/domain"
	"toolshed-backend/internal/logger"
	"toolshed-backend/internal/repository"
	"toolshed-backend/internal/utils"
)

type reservationService struct {
	txm          repository.TxManager
	resRepo      repository.ReservationRepository
	allocRepo    repository.AllocationRepository
	availability AvailabilityService
	engine       AllocationEngine
	rules        AutoApprovalEvaluator
	calendar     CalendarService
	notifier     Notifier
	activity     ActivityLogger
	cache        SnapshotCache
}

func NewReservationService(
	txm repository.TxManager,
	resRepo repository.ReservationRepository,
	allocRepo repository.AllocationRepository,
	availability AvailabilityService,
	engine AllocationEngine,
	rules AutoApprovalEvaluator,
	calendar CalendarService,
	notifier Notifier,
	activity ActivityLogger,
	cache SnapshotCache,
) ReservationService {
	if cache == nil {
		cache = noopCache{}
	}
	return &reservationService{
		txm:          txm,
		resRepo:      resRepo,
		allocRepo:    allocRepo,
		availability: availability,
		engine:       engine,
		rules:        rules,
		calendar:     calendar,
		notifier:     notifier,
		activity:     activity,
		cache:        cache,
	}
}

// CreateReservation submits a borrow request. The capacity check is repeated
// under the tool lock before the PENDING row is inserted. When an
// auto-approval rule passes, the reservation is activated immediately; an
// activation decline leaves it PENDING for an admin.
func (s *reservationService) CreateReservation(ctx context.Context, actor *domain.User, toolID int32, start, end time.Time, notes string, now time.Time) (*domain.Reservation, *domain.Allocation, error) {
	logger.EnterMethod("reservationService.CreateReservation", "userID", actor.ID, "toolID", toolID)

	start, end = utils.DateOnly(start), utils.DateOnly(end)
	today := utils.DateOnly(now)
	if end.Before(start) {
		return nil, nil, fmt.Errorf("%w: end date is before start date", domain.ErrInvalidDateRange)
	}
	if start.Before(today) {
		return nil, nil, fmt.Errorf("%w: start date is in the past", domain.ErrInvalidDateRange)
	}

	problems, err := s.calendar.ValidateRangeForBooking(ctx, start, end)
	if err != nil {
		return nil, nil, err
	}
	if len(problems) > 0 {
		return nil, nil, fmt.Errorf("%w: %s", domain.ErrInvalidDateRange, strings.Join(problems, "; "))
	}

	penaltyUntil, err := s.allocRepo.LatestPenaltyUntil(ctx, actor.ID)
	if err != nil {
		return nil, nil, err
	}
	if penaltyUntil != nil && penaltyUntil.After(now) {
		return nil, nil, fmt.Errorf("%w until %s", domain.ErrPenaltyActive, utils.FormatDate(*penaltyUntil))
	}

	overlapping, err := s.availability.HasUserOverlappingReservation(ctx, toolID, actor.ID, start, end, 0)
	if err != nil {
		return nil, nil, err
	}
	if overlapping {
		return nil, nil, domain.ErrUserOverlap
	}

	check, err := s.availability.CheckAvailability(ctx, toolID, start, end, 0)
	if err != nil {
		return nil, nil, err
	}
	if !check.Available {
		return nil, nil, &domain.CapacityConflictError{ToolID: toolID, Committed: check.Committed, Capacity: check.Capacity, Reason: check.Reason}
	}

	res := &domain.Reservation{
		ToolID:    toolID,
		UserID:    actor.ID,
		StartDate: start,
		EndDate:   end,
		Status:    domain.ReservationStatusPending,
		Notes:     notes,
		CreatedAt: now,
		UpdatedAt: now,
	}
	var category string
	err = s.txm.WithinTx(ctx, func(ctx context.Context, tx repository.Tx) error {
		tool, err := tx.LockTool(ctx, toolID)
		if err != nil {
			return err
		}
		if !tool.InCirculation() {
			return &domain.CapacityConflictError{ToolID: tool.ID, Capacity: tool.Quantity, Reason: fmt.Sprintf("Tool is %s", tool.Status)}
		}
		// The tool lock serializes the same user's concurrent submissions too.
		own, err := countCommitments(ctx, tx, repository.CommitmentQuery{ToolID: tool.ID, Start: start, End: end, UserID: actor.ID})
		if err != nil {
			return err
		}
		if own > 0 {
			return domain.ErrUserOverlap
		}
		committed, err := countCommitments(ctx, tx, repository.CommitmentQuery{ToolID: tool.ID, Start: start, End: end})
		if err != nil {
			return err
		}
		if committed >= int(tool.Quantity) {
			return domain.NewCapacityConflict(tool.ID, committed, tool.Quantity)
		}
		category = tool.Category
		return tx.CreateReservation(ctx, res)
	})
	if err != nil {
		logger.ExitMethodWithError("reservationService.CreateReservation", err, "userID", actor.ID, "toolID", toolID)
		return nil, nil, err
	}

	s.cache.Invalidate(ctx, toolID)
	s.activity.LogActivity(ctx, "reservation.created", "reservation", res.ID,
		fmt.Sprintf("Reservation %d requested for tool %d", res.ID, toolID),
		map[string]any{"tool_id": toolID, "start_date": utils.FormatDate(start), "end_date": utils.FormatDate(end), "category": category}, &actor.ID)

	passes, err := s.rules.PassesAnyRule(ctx, actor, domain.BorrowContext{
		UserID:             actor.ID,
		ToolID:             toolID,
		BorrowDate:         start,
		ExpectedReturnDate: end,
	})
	if err != nil {
		logger.Warn("Auto-approval evaluation failed, leaving reservation pending", "reservationID", res.ID, "error", err)
	}

	if passes {
		alloc, err := s.engine.ApproveReservation(ctx, res.ID, actor.ID, now)
		if err == nil {
			res.Status = domain.ReservationStatusCompleted
			res.UpdatedAt = now
			logger.ExitMethod("reservationService.CreateReservation", "reservationID", res.ID, "autoApproved", true)
			return res, alloc, nil
		}
		logger.Warn("Auto-approval could not activate reservation", "reservationID", res.ID, "error", err)
	}

	s.notifier.NotifyAdmins(ctx, domain.NotificationKindReservationRequested,
		"Reservation awaiting approval",
		fmt.Sprintf("User %d requested tool %d from %s to %s.", actor.ID, toolID, utils.FormatDate(start), utils.FormatDate(end)),
		fmt.Sprintf("/reservations/%d", res.ID))

	logger.ExitMethod("reservationService.CreateReservation", "reservationID", res.ID, "autoApproved", false)
	return res, nil, nil
}

func (s *reservationService) DeclineReservation(ctx context.Context, reservationID, actorUserID int32, reason string, now time.Time) (*domain.Reservation, error) {
	res, err := s.cancelPending(ctx, reservationID, now, nil)
	if err != nil {
		return nil, err
	}

	s.activity.LogActivity(ctx, "reservation.declined", "reservation", res.ID,
		fmt.Sprintf("Reservation %d declined", res.ID),
		map[string]any{"reason": reason, "tool_id": res.ToolID}, actorPtr(actorUserID))

	body := fmt.Sprintf("Your reservation from %s to %s was declined.", utils.FormatDate(res.StartDate), utils.FormatDate(res.EndDate))
	if reason != "" {
		body += " Reason: " + reason
	}
	s.notifier.Notify(ctx, res.UserID, domain.NotificationKindReservationDeclined, "Reservation declined", body, fmt.Sprintf("/reservations/%d", res.ID))
	return res, nil
}

func (s *reservationService) CancelReservation(ctx context.Context, reservationID int32, actor *domain.User, now time.Time) (*domain.Reservation, error) {
	res, err := s.cancelPending(ctx, reservationID, now, func(r *domain.Reservation) error {
		if r.UserID != actor.ID && !actor.IsAdmin() {
			return fmt.Errorf("reservation %d belongs to another user: %w", r.ID, domain.ErrUnauthorized)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.activity.LogActivity(ctx, "reservation.cancelled", "reservation", res.ID,
		fmt.Sprintf("Reservation %d cancelled", res.ID),
		map[string]any{"tool_id": res.ToolID}, &actor.ID)
	return res, nil
}

// cancelPending moves a PENDING reservation to CANCELLED under the tool lock.
func (s *reservationService) cancelPending(ctx context.Context, reservationID int32, now time.Time, allow func(*domain.Reservation) error) (*domain.Reservation, error) {
	current, err := s.resRepo.GetByID(ctx, reservationID)
	if err != nil {
		return nil, err
	}

	var updated *domain.Reservation
	err = s.txm.WithinTx(ctx, func(ctx context.Context, tx repository.Tx) error {
		if _, err := tx.LockTool(ctx, current.ToolID); err != nil {
			return err
		}
		r, err := tx.LockReservation(ctx, reservationID)
		if err != nil {
			return err
		}
		if allow != nil {
			if err := allow(r); err != nil {
				return err
			}
		}
		if r.Status != domain.ReservationStatusPending {
			return fmt.Errorf("reservation %d is %s: %w", r.ID, r.Status, domain.ErrReservationNotPending)
		}
		if err := tx.UpdateReservationStatus(ctx, r.ID, domain.ReservationStatusCancelled, now); err != nil {
			return err
		}
		r.Status = domain.ReservationStatusCancelled
		r.UpdatedAt = now
		updated = r
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.cache.Invalidate(ctx, updated.ToolID)
	return updated, nil
}
