package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"toolshed-backend/internal/domain"
	"toolshed-backend/internal/logger"
	"toolshed-backend/internal/repository"
	"toolshed-backend/internal/utils"
)

type availabilityService struct {
	toolRepo  repository.ToolRepository
	resRepo   repository.ReservationRepository
	allocRepo repository.AllocationRepository
	cache     SnapshotCache
	maxDays   int
}

// NewAvailabilityService builds the lock-free checker. cache may be nil.
// maxDays caps the per-day horizon of AvailableForDates.
func NewAvailabilityService(
	toolRepo repository.ToolRepository,
	resRepo repository.ReservationRepository,
	allocRepo repository.AllocationRepository,
	cache SnapshotCache,
	maxDays int,
) AvailabilityService {
	if cache == nil {
		cache = noopCache{}
	}
	return &availabilityService{
		toolRepo:  toolRepo,
		resRepo:   resRepo,
		allocRepo: allocRepo,
		cache:     cache,
		maxDays:   maxDays,
	}
}

func (s *availabilityService) CheckAvailability(ctx context.Context, toolID int32, start, end time.Time, excludeReservationID int32) (*domain.AvailabilityResult, error) {
	logger.EnterMethod("availabilityService.CheckAvailability", "toolID", toolID, "start", utils.FormatDate(start), "end", utils.FormatDate(end))

	if utils.DateOnly(end).Before(utils.DateOnly(start)) {
		return nil, fmt.Errorf("%w: end date is before start date", domain.ErrInvalidDateRange)
	}

	tool, err := s.toolRepo.GetByID(ctx, toolID)
	if errors.Is(err, domain.ErrNotFound) {
		return &domain.AvailabilityResult{Reason: domain.ReasonToolNotFound}, nil
	}
	if err != nil {
		logger.ExitMethodWithError("availabilityService.CheckAvailability", err, "toolID", toolID)
		return nil, err
	}

	result := &domain.AvailabilityResult{Capacity: tool.Quantity}
	if !tool.InCirculation() {
		result.Reason = fmt.Sprintf("Tool is %s", tool.Status)
		return result, nil
	}
	if tool.Quantity < 1 {
		result.Reason = "no available quantity"
		return result, nil
	}

	committed, err := countCommitments(ctx, s.allocRepo, repository.CommitmentQuery{
		ToolID:               toolID,
		Start:                utils.DateOnly(start),
		End:                  utils.DateOnly(end),
		ExcludeReservationID: excludeReservationID,
	})
	if err != nil {
		logger.ExitMethodWithError("availabilityService.CheckAvailability", err, "toolID", toolID)
		return nil, err
	}

	result.Committed = committed
	if committed >= int(tool.Quantity) {
		result.Reason = domain.NewCapacityConflict(toolID, committed, tool.Quantity).Reason
	} else {
		result.Available = true
	}

	logger.ExitMethod("availabilityService.CheckAvailability", "toolID", toolID, "available", result.Available, "committed", committed)
	return result, nil
}

// CalculateAvailability counts unit-holding allocations as borrowed and
// SCHEDULED allocations plus pending reservations as reserved, with no date
// scoping. An activated reservation is COMPLETED and only its allocation is
// counted, so nothing is counted twice.
func (s *availabilityService) CalculateAvailability(ctx context.Context, toolID int32) (*domain.AvailabilitySummary, error) {
	if cached, ok := s.cache.GetSummary(ctx, toolID); ok {
		return cached, nil
	}

	tool, err := s.toolRepo.GetByID(ctx, toolID)
	if err != nil {
		return nil, err
	}

	borrowed, err := s.allocRepo.CountByStatus(ctx, toolID, domain.AllocationStatusBorrowed, domain.AllocationStatusPendingReturn)
	if err != nil {
		return nil, err
	}
	scheduled, err := s.allocRepo.CountByStatus(ctx, toolID, domain.AllocationStatusScheduled)
	if err != nil {
		return nil, err
	}
	pending, err := s.resRepo.CountPending(ctx, toolID)
	if err != nil {
		return nil, err
	}

	summary := &domain.AvailabilitySummary{
		ToolID:        toolID,
		TotalQuantity: tool.Quantity,
		BorrowedCount: borrowed,
		ReservedCount: scheduled + pending,
	}
	summary.AvailableCount = max(0, int(tool.Quantity)-summary.BorrowedCount-summary.ReservedCount)

	s.cache.SetSummary(ctx, summary)
	return summary, nil
}

// AvailableForDates evaluates every day of [from, to] on its own, so a range
// can be partly free. It loads the window's commitments once and applies the
// inclusive overlap test per day.
func (s *availabilityService) AvailableForDates(ctx context.Context, toolID int32, from, to time.Time) ([]domain.DayAvailability, error) {
	from, to = utils.DateOnly(from), utils.DateOnly(to)
	if to.Before(from) {
		return nil, fmt.Errorf("%w: end date is before start date", domain.ErrInvalidDateRange)
	}
	if s.maxDays > 0 && utils.InclusiveDays(from, to) > s.maxDays {
		return nil, fmt.Errorf("%w: at most %d days can be requested", domain.ErrInvalidDateRange, s.maxDays)
	}

	tool, err := s.toolRepo.GetByID(ctx, toolID)
	if err != nil {
		return nil, err
	}
	commitments, err := s.ListCommitments(ctx, toolID, from, to)
	if err != nil {
		return nil, err
	}

	capacity := int(tool.Quantity)
	if !tool.InCirculation() {
		capacity = 0
	}

	days := utils.EachDay(from, to)
	out := make([]domain.DayAvailability, 0, len(days))
	for _, day := range days {
		committed := 0
		for _, a := range commitments.Allocations {
			if utils.RangesOverlap(a.BorrowDate, a.ExpectedReturnDate, day, day) {
				committed++
			}
		}
		for _, r := range commitments.Reservations {
			if utils.RangesOverlap(r.StartDate, r.EndDate, day, day) {
				committed++
			}
		}
		out = append(out, domain.DayAvailability{
			Date:      day,
			Committed: committed,
			Available: max(0, capacity-committed),
		})
	}
	return out, nil
}

func (s *availabilityService) HasUserOverlappingReservation(ctx context.Context, toolID, userID int32, start, end time.Time, excludeReservationID int32) (bool, error) {
	committed, err := countCommitments(ctx, s.allocRepo, repository.CommitmentQuery{
		ToolID:               toolID,
		Start:                utils.DateOnly(start),
		End:                  utils.DateOnly(end),
		ExcludeReservationID: excludeReservationID,
		UserID:               userID,
	})
	if err != nil {
		return false, err
	}
	return committed > 0, nil
}

func (s *availabilityService) ListCommitments(ctx context.Context, toolID int32, from, to time.Time) (*domain.Commitments, error) {
	from, to = utils.DateOnly(from), utils.DateOnly(to)
	allocations, err := s.allocRepo.ListOverlapping(ctx, toolID, from, to)
	if err != nil {
		return nil, err
	}
	reservations, err := s.resRepo.ListOverlapping(ctx, toolID, from, to)
	if err != nil {
		return nil, err
	}
	return &domain.Commitments{Allocations: allocations, Reservations: reservations}, nil
}

const (
	defaultStatusHistoryLimit = 50
	maxStatusHistoryLimit     = 200
)

func (s *availabilityService) StatusHistory(ctx context.Context, toolID int32, limit int) ([]domain.ToolStatusLog, error) {
	if limit <= 0 {
		limit = defaultStatusHistoryLimit
	}
	if limit > maxStatusHistoryLimit {
		limit = maxStatusHistoryLimit
	}
	if _, err := s.toolRepo.GetByID(ctx, toolID); err != nil {
		return nil, err
	}
	logs, err := s.toolRepo.ListStatusLogs(ctx, toolID, limit)
	if err != nil {
		return nil, err
	}
	if logs == nil {
		logs = []domain.ToolStatusLog{}
	}
	return logs, nil
}
