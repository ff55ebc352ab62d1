package domain

import (
	"strings"
	"time"
)

type ReservationStatus string

const (
	ReservationStatusPending   ReservationStatus = "PENDING"
	ReservationStatusCompleted ReservationStatus = "COMPLETED"
	ReservationStatusCancelled ReservationStatus = "CANCELLED"
)

// NormalizeReservationStatus maps stored values onto the three-state machine.
// Rows written before the UPCOMING/ACTIVE collapse come back as PENDING.
func NormalizeReservationStatus(raw string) ReservationStatus {
	switch ReservationStatus(strings.ToUpper(strings.TrimSpace(raw))) {
	case ReservationStatusCompleted:
		return ReservationStatusCompleted
	case ReservationStatusCancelled:
		return ReservationStatusCancelled
	default:
		return ReservationStatusPending
	}
}

// Reservation holds capacity for a future date range without consuming a
// physical unit. StartDate and EndDate are inclusive calendar days.
type Reservation struct {
	ID          int32             `json:"id"`
	ToolID      int32             `json:"tool_id"`
	UserID      int32             `json:"user_id"`
	StartDate   time.Time         `json:"start_date"`
	EndDate     time.Time         `json:"end_date"`
	Status      ReservationStatus `json:"status"`
	IsRecurring bool              `json:"is_recurring"`
	Notes       string            `json:"notes"`
	CreatedAt   time.Time         `json:"created_at"`
	UpdatedAt   time.Time         `json:"updated_at"`
}
