package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"toolshed-backend/internal/domain"
	"toolshed-backend/internal/logger"
	"toolshed-backend/internal/metrics"
	"toolshed-backend/internal/repository"
	"toolshed-backend/internal/utils"
)

const unclaimedPickupReason = "Pickup not claimed"

type allocationEngine struct {
	txm          repository.TxManager
	resRepo      repository.ReservationRepository
	allocRepo    repository.AllocationRepository
	availability AvailabilityService
	notifier     Notifier
	activity     ActivityLogger
	cache        SnapshotCache
}

func NewAllocationEngine(
	txm repository.TxManager,
	resRepo repository.ReservationRepository,
	allocRepo repository.AllocationRepository,
	availability AvailabilityService,
	notifier Notifier,
	activity ActivityLogger,
	cache SnapshotCache,
) AllocationEngine {
	if cache == nil {
		cache = noopCache{}
	}
	return &allocationEngine{
		txm:          txm,
		resRepo:      resRepo,
		allocRepo:    allocRepo,
		availability: availability,
		notifier:     notifier,
		activity:     activity,
		cache:        cache,
	}
}

// ActivateReservation turns a PENDING reservation into an allocation.
// Capacity shortfalls are reported through the outcome, not as errors, so
// sweeps can count them as skipped and move on.
func (e *allocationEngine) ActivateReservation(ctx context.Context, reservationID, actorUserID int32, now time.Time) (*domain.ActivationOutcome, error) {
	logger.EnterMethod("allocationEngine.ActivateReservation", "reservationID", reservationID, "actor", actorUserID)

	res, err := e.resRepo.GetByID(ctx, reservationID)
	if err != nil {
		logger.ExitMethodWithError("allocationEngine.ActivateReservation", err, "reservationID", reservationID)
		return nil, err
	}
	if res.Status != domain.ReservationStatusPending {
		return nil, fmt.Errorf("reservation %d is %s: %w", res.ID, res.Status, domain.ErrReservationNotPending)
	}

	check, err := e.availability.CheckAvailability(ctx, res.ToolID, res.StartDate, res.EndDate, res.ID)
	if err != nil {
		metrics.ActivationsTotal.WithLabelValues("failed").Inc()
		logger.ExitMethodWithError("allocationEngine.ActivateReservation", err, "reservationID", reservationID)
		return nil, err
	}
	if !check.Available {
		metrics.ActivationsTotal.WithLabelValues("declined").Inc()
		conflict := &domain.CapacityConflictError{ToolID: res.ToolID, Committed: check.Committed, Capacity: check.Capacity, Reason: check.Reason}
		logger.Info("Reservation not activated", "reservationID", res.ID, "toolID", res.ToolID, "reason", check.Reason)
		return &domain.ActivationOutcome{Conflict: conflict, Reason: check.Reason}, nil
	}

	today := utils.DateOnly(now)
	var alloc *domain.Allocation
	err = e.txm.WithinTx(ctx, func(ctx context.Context, tx repository.Tx) error {
		tool, err := tx.LockTool(ctx, res.ToolID)
		if err != nil {
			return err
		}
		locked, err := tx.LockReservation(ctx, res.ID)
		if err != nil {
			return err
		}
		if locked.Status != domain.ReservationStatusPending {
			return fmt.Errorf("reservation %d is %s: %w", locked.ID, locked.Status, domain.ErrReservationNotPending)
		}
		if !tool.InCirculation() {
			return fmt.Errorf("tool %d is %s: %w", tool.ID, tool.Status, domain.ErrToolUnavailable)
		}
		if tool.Quantity < 1 {
			return fmt.Errorf("tool %d has no available quantity: %w", tool.ID, domain.ErrToolUnavailable)
		}

		committed, err := countCommitments(ctx, tx, repository.CommitmentQuery{
			ToolID:               tool.ID,
			Start:                locked.StartDate,
			End:                  locked.EndDate,
			ExcludeReservationID: locked.ID,
		})
		if err != nil {
			return err
		}
		if committed >= int(tool.Quantity) {
			return domain.NewCapacityConflict(tool.ID, committed, tool.Quantity)
		}

		status := domain.AllocationStatusScheduled
		if !utils.DateOnly(locked.StartDate).After(today) {
			status = domain.AllocationStatusBorrowed
			if tool.AvailableQuantity < 1 {
				return &domain.CapacityConflictError{
					ToolID:    tool.ID,
					Committed: committed,
					Capacity:  tool.Quantity,
					Reason:    "No unit of this tool is on hand to hand over",
				}
			}
		}

		alloc = &domain.Allocation{
			ToolID:             tool.ID,
			UserID:             locked.UserID,
			ReservationID:      &locked.ID,
			BorrowDate:         locked.StartDate,
			ExpectedReturnDate: locked.EndDate,
			Status:             status,
			CreatedAt:          now,
			UpdatedAt:          now,
		}
		if err := tx.CreateAllocation(ctx, alloc); err != nil {
			return err
		}
		if status == domain.AllocationStatusBorrowed {
			if err := adjustOnHand(ctx, tx, tool, -1, actorUserID, now, fmt.Sprintf("Reservation %d activated", locked.ID)); err != nil {
				return err
			}
		}
		return tx.UpdateReservationStatus(ctx, locked.ID, domain.ReservationStatusCompleted, now)
	})

	if err != nil {
		var conflict *domain.CapacityConflictError
		if errors.As(err, &conflict) {
			metrics.ActivationsTotal.WithLabelValues("declined").Inc()
			logger.Info("Reservation lost capacity under lock", "reservationID", res.ID, "reason", conflict.Reason)
			return &domain.ActivationOutcome{Conflict: conflict, Reason: conflict.Reason}, nil
		}
		metrics.ActivationsTotal.WithLabelValues("failed").Inc()
		logger.ExitMethodWithError("allocationEngine.ActivateReservation", err, "reservationID", reservationID)
		return nil, err
	}

	metrics.ActivationsTotal.WithLabelValues("activated").Inc()
	e.cache.Invalidate(ctx, res.ToolID)
	e.activity.LogActivity(ctx, "reservation.activated", "reservation", res.ID,
		fmt.Sprintf("Reservation %d activated as allocation %d (%s)", res.ID, alloc.ID, alloc.Status),
		map[string]any{"allocation_id": alloc.ID, "tool_id": res.ToolID, "status": string(alloc.Status)}, actorPtr(actorUserID))
	e.notifier.Notify(ctx, res.UserID, domain.NotificationKindReservationActivated,
		"Reservation approved",
		fmt.Sprintf("Your reservation from %s to %s is confirmed.", utils.FormatDate(res.StartDate), utils.FormatDate(res.EndDate)),
		fmt.Sprintf("/allocations/%d", alloc.ID))

	logger.ExitMethod("allocationEngine.ActivateReservation", "reservationID", reservationID, "allocationID", alloc.ID)
	return &domain.ActivationOutcome{Activated: true, Allocation: alloc}, nil
}

// ApproveReservation is activation on behalf of an admin request: a capacity
// decline is returned as *domain.CapacityConflictError, a deleted tool as
// domain.ErrNotFound.
func (e *allocationEngine) ApproveReservation(ctx context.Context, reservationID, actorUserID int32, now time.Time) (*domain.Allocation, error) {
	outcome, err := e.ActivateReservation(ctx, reservationID, actorUserID, now)
	if err != nil {
		return nil, err
	}
	if !outcome.Activated {
		if outcome.Reason == domain.ReasonToolNotFound {
			return nil, fmt.Errorf("reservation %d: tool %d: %w", reservationID, outcome.Conflict.ToolID, domain.ErrNotFound)
		}
		return nil, outcome.Conflict
	}
	return outcome.Allocation, nil
}

func (e *allocationEngine) TransitionAllocation(ctx context.Context, allocationID int32, to domain.AllocationStatus, meta domain.TransitionMetadata) (*domain.Allocation, error) {
	logger.EnterMethod("allocationEngine.TransitionAllocation", "allocationID", allocationID, "to", to, "actor", meta.ActorUserID)

	current, err := e.allocRepo.GetByID(ctx, allocationID)
	if err != nil {
		return nil, err
	}

	var updated *domain.Allocation
	var from domain.AllocationStatus
	err = e.txm.WithinTx(ctx, func(ctx context.Context, tx repository.Tx) error {
		tool, err := tx.LockTool(ctx, current.ToolID)
		if err != nil {
			return err
		}
		a, err := tx.LockAllocation(ctx, allocationID)
		if err != nil {
			return err
		}
		from = a.Status

		if !from.CanTransition(to) {
			return fmt.Errorf("allocation %d: %s -> %s: %w", a.ID, from, to, domain.ErrInvalidTransition)
		}
		if err := authorizeTransition(a, from, to, meta); err != nil {
			return err
		}

		now := meta.Now
		switch to {
		case domain.AllocationStatusBorrowed:
			if from == domain.AllocationStatusScheduled {
				if !tool.InCirculation() {
					return fmt.Errorf("tool %d is %s: %w", tool.ID, tool.Status, domain.ErrToolUnavailable)
				}
				if tool.AvailableQuantity < 1 {
					return &domain.CapacityConflictError{ToolID: tool.ID, Capacity: tool.Quantity, Reason: "No unit of this tool is on hand to hand over"}
				}
				a.ClaimedAt = &now
				a.ClaimedBy = &meta.ActorUserID
				if err := adjustOnHand(ctx, tx, tool, -1, meta.ActorUserID, now, fmt.Sprintf("Allocation %d claimed", a.ID)); err != nil {
					return err
				}
			} else {
				// Return declined: the unit stays with the borrower.
				a.ReturnRequestedAt = nil
				a.ReviewedBy = &meta.ActorUserID
				if meta.Notes != "" {
					a.ReturnNotes = meta.Notes
				}
			}
		case domain.AllocationStatusPendingReturn:
			a.ReturnRequestedAt = &now
			a.ReturnCondition = meta.Condition
			a.ReturnNotes = meta.Notes
		case domain.AllocationStatusReturned:
			a.ActualReturnDate = &now
			a.ReviewedBy = &meta.ActorUserID
			if meta.Condition != "" {
				a.ReturnCondition = meta.Condition
			}
			if meta.Notes != "" {
				a.ReturnNotes = meta.Notes
			}
			if err := adjustOnHand(ctx, tx, tool, 1, meta.ActorUserID, now, fmt.Sprintf("Allocation %d returned", a.ID)); err != nil {
				return err
			}
		case domain.AllocationStatusCancelled:
			a.CancelledAt = &now
			a.CancellationReason = meta.Reason
			if from.HoldsUnit() {
				if err := adjustOnHand(ctx, tx, tool, 1, meta.ActorUserID, now, fmt.Sprintf("Allocation %d cancelled", a.ID)); err != nil {
					return err
				}
			}
		}

		a.Status = to
		a.UpdatedAt = now
		if err := tx.UpdateAllocation(ctx, a); err != nil {
			return err
		}
		updated = a
		return nil
	})
	if err != nil {
		logger.ExitMethodWithError("allocationEngine.TransitionAllocation", err, "allocationID", allocationID)
		return nil, err
	}

	metrics.AllocationTransitionsTotal.WithLabelValues(string(from), string(to)).Inc()
	e.cache.Invalidate(ctx, updated.ToolID)
	e.activity.LogActivity(ctx, "allocation.transition", "allocation", updated.ID,
		fmt.Sprintf("Allocation %d moved from %s to %s", updated.ID, from, to),
		map[string]any{"from": string(from), "to": string(to), "tool_id": updated.ToolID, "reason": meta.Reason}, actorPtr(meta.ActorUserID))
	if meta.ActorUserID != updated.UserID {
		e.notifier.Notify(ctx, updated.UserID, domain.NotificationKindAllocationChanged,
			"Borrow status updated",
			fmt.Sprintf("Your borrow of tool %d is now %s.", updated.ToolID, to),
			fmt.Sprintf("/allocations/%d", updated.ID))
	}

	logger.ExitMethod("allocationEngine.TransitionAllocation", "allocationID", allocationID, "from", from, "to", to)
	return updated, nil
}

// CancelUnclaimedAllocation re-verifies under the lock that the allocation
// is still SCHEDULED with a lapsed pickup date, so repeated sweeps stamp each
// penalty once. A SCHEDULED allocation never took a unit off the shelf, so
// only the ledger entry is released.
func (e *allocationEngine) CancelUnclaimedAllocation(ctx context.Context, allocationID int32, now time.Time, penaltyDays int) (*domain.Allocation, bool, error) {
	current, err := e.allocRepo.GetByID(ctx, allocationID)
	if err != nil {
		return nil, false, err
	}

	today := utils.DateOnly(now)
	var updated *domain.Allocation
	err = e.txm.WithinTx(ctx, func(ctx context.Context, tx repository.Tx) error {
		if _, err := tx.LockTool(ctx, current.ToolID); err != nil {
			return err
		}
		a, err := tx.LockAllocation(ctx, allocationID)
		if err != nil {
			return err
		}
		if a.Status != domain.AllocationStatusScheduled || !utils.DateOnly(a.BorrowDate).Before(today) {
			return nil
		}

		penaltyUntil := now.AddDate(0, 0, penaltyDays)
		a.Status = domain.AllocationStatusCancelled
		a.CancelledAt = &now
		a.UnclaimedAt = &now
		a.PenaltyUntil = &penaltyUntil
		a.CancellationReason = unclaimedPickupReason
		a.UpdatedAt = now
		if err := tx.UpdateAllocation(ctx, a); err != nil {
			return err
		}
		updated = a
		return nil
	})
	if err != nil {
		return nil, false, err
	}
	if updated == nil {
		return current, false, nil
	}

	metrics.AllocationTransitionsTotal.WithLabelValues(string(domain.AllocationStatusScheduled), string(domain.AllocationStatusCancelled)).Inc()
	e.cache.Invalidate(ctx, updated.ToolID)
	e.activity.LogActivity(ctx, "allocation.unclaimed", "allocation", updated.ID,
		fmt.Sprintf("Allocation %d cancelled: pickup on %s not claimed", updated.ID, utils.FormatDate(updated.BorrowDate)),
		map[string]any{"tool_id": updated.ToolID, "penalty_until": updated.PenaltyUntil.Format(time.RFC3339)}, nil)
	return updated, true, nil
}

// authorizeTransition lets borrowers move their own allocation forward or
// cancel it and reserves return review for admins.
func authorizeTransition(a *domain.Allocation, from, to domain.AllocationStatus, meta domain.TransitionMetadata) error {
	if meta.ActorIsAdmin {
		return nil
	}
	if meta.ActorUserID != a.UserID {
		return fmt.Errorf("allocation %d belongs to another user: %w", a.ID, domain.ErrUnauthorized)
	}
	review := to == domain.AllocationStatusReturned ||
		(from == domain.AllocationStatusPendingReturn && to == domain.AllocationStatusBorrowed)
	if review {
		return fmt.Errorf("return review requires an admin: %w", domain.ErrUnauthorized)
	}
	return nil
}

// adjustOnHand moves the on-hand counter by delta, recomputes the cached
// status and appends a status log row when the status changed. It must run
// inside the transaction that holds the tool lock.
func adjustOnHand(ctx context.Context, tx repository.Tx, tool *domain.Tool, delta int32, actorUserID int32, now time.Time, reason string) error {
	oldStatus := tool.Status
	next := tool.AvailableQuantity + delta
	if next < 0 {
		return fmt.Errorf("tool %d on-hand count would go negative: %w", tool.ID, domain.ErrToolUnavailable)
	}
	if next > tool.Quantity {
		logger.WithTool(tool.ID).Warn("On-hand count exceeds quantity, clamping", "available", next, "quantity", tool.Quantity)
		next = tool.Quantity
	}

	tool.AvailableQuantity = next
	tool.Status = tool.DeriveStatus()
	tool.UpdatedOn = now
	if err := tx.UpdateToolInventory(ctx, tool); err != nil {
		return err
	}
	if tool.Status == oldStatus {
		return nil
	}
	return tx.AppendToolStatusLog(ctx, &domain.ToolStatusLog{
		ToolID:    tool.ID,
		OldStatus: oldStatus,
		NewStatus: tool.Status,
		ChangedBy: actorPtr(actorUserID),
		Reason:    reason,
		ChangedAt: now,
	})
}

// actorPtr maps the system actor (0) to a NULL user reference.
func actorPtr(id int32) *int32 {
	if id == 0 {
		return nil
	}
	return &id
}
