package domain

import "time"

type ActivityLog struct {
	ID          int64          `json:"id"`
	Action      string         `json:"action"`
	SubjectType string         `json:"subject_type"`
	SubjectID   int32          `json:"subject_id"`
	Description string         `json:"description"`
	Properties  map[string]any `json:"properties"`
	UserID      *int32         `json:"user_id,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
}
