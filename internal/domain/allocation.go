package domain

import "time"

type AllocationStatus string

const (
	AllocationStatusScheduled     AllocationStatus = "SCHEDULED"
	AllocationStatusBorrowed      AllocationStatus = "BORROWED"
	AllocationStatusPendingReturn AllocationStatus = "PENDING_RETURN"
	AllocationStatusReturned      AllocationStatus = "RETURNED"
	AllocationStatusCancelled     AllocationStatus = "CANCELLED"
)

// CommittingAllocationStatuses hold capacity for their date range.
var CommittingAllocationStatuses = []AllocationStatus{
	AllocationStatusScheduled,
	AllocationStatusBorrowed,
	AllocationStatusPendingReturn,
}

// IsTerminal reports whether no further transition is possible.
func (s AllocationStatus) IsTerminal() bool {
	return s == AllocationStatusReturned || s == AllocationStatusCancelled
}

// HoldsUnit reports whether an allocation in this status has a physical unit out.
func (s AllocationStatus) HoldsUnit() bool {
	return s == AllocationStatusBorrowed || s == AllocationStatusPendingReturn
}

var allocationTransitions = map[AllocationStatus][]AllocationStatus{
	AllocationStatusScheduled:     {AllocationStatusBorrowed, AllocationStatusCancelled},
	AllocationStatusBorrowed:      {AllocationStatusPendingReturn, AllocationStatusCancelled},
	AllocationStatusPendingReturn: {AllocationStatusReturned, AllocationStatusBorrowed, AllocationStatusCancelled},
}

// CanTransition checks an edge of the allocation state machine.
func (s AllocationStatus) CanTransition(to AllocationStatus) bool {
	for _, next := range allocationTransitions[s] {
		if next == to {
			return true
		}
	}
	return false
}

// Allocation is one physical unit of a tool in (or promised to) a borrower's
// possession. BorrowDate and ExpectedReturnDate are inclusive calendar days.
type Allocation struct {
	ID                 int32            `json:"id"`
	ToolID             int32            `json:"tool_id"`
	UserID             int32            `json:"user_id"`
	ReservationID      *int32           `json:"reservation_id,omitempty"`
	BorrowDate         time.Time        `json:"borrow_date"`
	ExpectedReturnDate time.Time        `json:"expected_return_date"`
	Status             AllocationStatus `json:"status"`
	ClaimedAt          *time.Time       `json:"claimed_at,omitempty"`
	ClaimedBy          *int32           `json:"claimed_by,omitempty"`
	ActualReturnDate   *time.Time       `json:"actual_return_date,omitempty"`
	ReturnRequestedAt  *time.Time       `json:"return_requested_at,omitempty"`
	ReturnCondition    string           `json:"return_condition"`
	ReturnNotes        string           `json:"return_notes"`
	ReviewedBy         *int32           `json:"reviewed_by,omitempty"`
	CancelledAt        *time.Time       `json:"cancelled_at,omitempty"`
	CancellationReason string           `json:"cancellation_reason"`
	UnclaimedAt        *time.Time       `json:"unclaimed_at,omitempty"`
	PenaltyUntil       *time.Time       `json:"penalty_until,omitempty"`
	CreatedAt          time.Time        `json:"created_at"`
	UpdatedAt          time.Time        `json:"updated_at"`
}

// TransitionMetadata carries the actor and clock for a status change along
// with any fields the target status records.
type TransitionMetadata struct {
	ActorUserID  int32
	ActorIsAdmin bool
	Now          time.Time
	Reason       string
	Condition    string
	Notes        string
}

// ActivationOutcome reports what activating a reservation did. A declined
// activation leaves the reservation PENDING and carries the conflict.
type ActivationOutcome struct {
	Activated  bool                   `json:"activated"`
	Allocation *Allocation            `json:"allocation,omitempty"`
	Conflict   *CapacityConflictError `json:"-"`
	Reason     string                 `json:"reason,omitempty"`
}
