package domain

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound              = errors.New("not found")
	ErrToolUnavailable       = errors.New("tool is not in circulation")
	ErrInvalidTransition     = errors.New("invalid status transition")
	ErrReservationNotPending = errors.New("reservation is not pending")
	ErrUserOverlap           = errors.New("you already have a booking for this tool in the selected dates")
	ErrPenaltyActive         = errors.New("borrowing is restricted after an unclaimed pickup")
	ErrInvalidDateRange      = errors.New("invalid date range")
	ErrSchemaMismatch        = errors.New("schema is missing required columns")
	ErrUnauthorized          = errors.New("unauthorized")
)

// CapacityConflictError is a decline, not a failure: the tool could not take
// another commitment for the requested window.
type CapacityConflictError struct {
	ToolID    int32
	Committed int
	Capacity  int32
	Reason    string
}

func (e *CapacityConflictError) Error() string {
	return e.Reason
}

func NewCapacityConflict(toolID int32, committed int, capacity int32) *CapacityConflictError {
	return &CapacityConflictError{
		ToolID:    toolID,
		Committed: committed,
		Capacity:  capacity,
		Reason: fmt.Sprintf("Tool is already fully allocated for the selected dates (%d commitments, %d available)",
			committed, capacity),
	}
}

// IsCapacityConflict reports whether err is (or wraps) a capacity decline.
func IsCapacityConflict(err error) bool {
	var conflict *CapacityConflictError
	return errors.As(err, &conflict)
}
