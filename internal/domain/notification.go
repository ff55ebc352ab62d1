package domain

type NotificationKind string

const (
	NotificationKindReservationRequested NotificationKind = "RESERVATION_REQUESTED"
	NotificationKindReservationActivated NotificationKind = "RESERVATION_ACTIVATED"
	NotificationKindReservationDeclined  NotificationKind = "RESERVATION_DECLINED"
	NotificationKindAllocationChanged    NotificationKind = "ALLOCATION_CHANGED"
	NotificationKindPickupUnclaimed      NotificationKind = "PICKUP_UNCLAIMED"
	NotificationKindUnclaimedDigest      NotificationKind = "UNCLAIMED_DIGEST"
	NotificationKindOverdue              NotificationKind = "OVERDUE"
	NotificationKindOverdueDigest        NotificationKind = "OVERDUE_DIGEST"
)

type Notification struct {
	ID         int32             `json:"id"`
	UserID     int32             `json:"user_id"`
	Kind       NotificationKind  `json:"kind"`
	Title      string            `json:"title"`
	Message    string            `json:"message"`
	Link       string            `json:"link,omitempty"`
	IsRead     bool              `json:"is_read"`
	Attributes map[string]string `json:"attributes"`
	CreatedOn  string            `json:"created_on"`
}
