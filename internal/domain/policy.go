package domain

import "time"

// AutoApprovalRule is an admin-authored policy row. Condition is free text
// matched against a small fixed vocabulary, not a grammar.
type AutoApprovalRule struct {
	ID        int32     `json:"id"`
	Name      string    `json:"name"`
	Condition string    `json:"condition"`
	Enabled   bool      `json:"enabled"`
	CreatedOn time.Time `json:"created_on"`
}

// BorrowContext is what a rule is evaluated against.
type BorrowContext struct {
	UserID             int32     `json:"user_id"`
	ToolID             int32     `json:"tool_id"`
	BorrowDate         time.Time `json:"borrow_date"`
	ExpectedReturnDate time.Time `json:"expected_return_date"`
}

// BusinessHour marks a weekday as open. A weekday without an enabled row is closed.
type BusinessHour struct {
	ID        int32        `json:"id"`
	DayOfWeek time.Weekday `json:"day_of_week"`
	OpensAt   string       `json:"opens_at"`
	ClosesAt  string       `json:"closes_at"`
	Enabled   bool         `json:"enabled"`
}

type Holiday struct {
	ID   int32     `json:"id"`
	Name string    `json:"name"`
	Date time.Time `json:"date"`
}
