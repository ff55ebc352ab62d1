package domain

import "time"

type ToolStatus string

const (
	ToolStatusAvailable   ToolStatus = "AVAILABLE"
	ToolStatusBorrowed    ToolStatus = "BORROWED"
	ToolStatusMaintenance ToolStatus = "MAINTENANCE"
)

type ToolCondition string

const (
	ToolConditionExcellent  ToolCondition = "EXCELLENT"
	ToolConditionGood       ToolCondition = "GOOD"
	ToolConditionAcceptable ToolCondition = "ACCEPTABLE"
	ToolConditionDamaged    ToolCondition = "DAMAGED/NEEDS_REPAIR"
)

// Tool is a pooled item with Quantity interchangeable units.
//
// Quantity is the capacity ceiling used by date-ranged checks and never
// changes on borrow/return. AvailableQuantity counts units physically on
// hand. Status is a cached summary of AvailableQuantity and is only written
// inside the transaction that changes AvailableQuantity.
type Tool struct {
	ID                int32         `json:"id"`
	Name              string        `json:"name"`
	Description       string        `json:"description"`
	Category          string        `json:"category"`
	Quantity          int32         `json:"quantity"`
	AvailableQuantity int32         `json:"available_quantity"`
	Status            ToolStatus    `json:"status"`
	Condition         ToolCondition `json:"condition"`
	CreatedOn         time.Time     `json:"created_on"`
	UpdatedOn         time.Time     `json:"updated_on"`
}

// InCirculation reports whether the tool can take new commitments at all.
func (t *Tool) InCirculation() bool {
	return t.Status != ToolStatusMaintenance
}

// DeriveStatus recomputes the cached status from the on-hand counter.
// MAINTENANCE is set by admins and is never overridden here.
func (t *Tool) DeriveStatus() ToolStatus {
	if t.Status == ToolStatusMaintenance {
		return ToolStatusMaintenance
	}
	if t.AvailableQuantity <= 0 {
		return ToolStatusBorrowed
	}
	return ToolStatusAvailable
}

// ToolStatusLog is an append-only audit row written whenever Tool.Status changes.
type ToolStatusLog struct {
	ID        int64      `json:"id"`
	ToolID    int32      `json:"tool_id"`
	OldStatus ToolStatus `json:"old_status"`
	NewStatus ToolStatus `json:"new_status"`
	ChangedBy *int32     `json:"changed_by,omitempty"`
	Reason    string     `json:"reason"`
	ChangedAt time.Time  `json:"changed_at"`
}
