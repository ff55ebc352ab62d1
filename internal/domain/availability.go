package domain

import "time"

// ReasonToolNotFound is the availability reason for a tool that does not exist.
const ReasonToolNotFound = "Tool not found"

// AvailabilityResult answers whether a tool can take one more commitment
// across a whole inclusive date range.
type AvailabilityResult struct {
	Available bool   `json:"available"`
	Reason    string `json:"reason,omitempty"`
	Committed int    `json:"committed"`
	Capacity  int32  `json:"capacity"`
}

// AvailabilitySummary is a coarse, date-agnostic snapshot for display.
// It can disagree with a date-ranged check and is advisory only.
type AvailabilitySummary struct {
	ToolID         int32 `json:"tool_id"`
	TotalQuantity  int32 `json:"total_quantity"`
	BorrowedCount  int   `json:"borrowed_count"`
	ReservedCount  int   `json:"reserved_count"`
	AvailableCount int   `json:"available_count"`
}

// DayAvailability is the occupancy of a single calendar day.
type DayAvailability struct {
	Date      time.Time `json:"date"`
	Committed int       `json:"committed"`
	Available int       `json:"available"`
}

// Commitments lists everything holding capacity on a tool inside a window.
type Commitments struct {
	Allocations  []Allocation  `json:"allocations"`
	Reservations []Reservation `json:"reservations"`
}

// Total is the number of committed units in the window.
func (c *Commitments) Total() int {
	return len(c.Allocations) + len(c.Reservations)
}
