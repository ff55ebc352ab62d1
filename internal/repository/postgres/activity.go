package postgres

import (
	"context"
	"database/sql"
	"encoding/json"

	"toolshed-backend/internal/domain"
	"toolshed-backend/internal/repository"
)

type activityRepository struct {
	db *sql.DB
}

func NewActivityRepository(db *sql.DB) repository.ActivityRepository {
	return &activityRepository{db: db}
}

func (r *activityRepository) Create(ctx context.Context, e *domain.ActivityLog) error {
	props, err := json.Marshal(e.Properties)
	if err != nil {
		return err
	}
	query := `INSERT INTO activity_logs (action, subject_type, subject_id, description, properties, user_id, created_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING id`
	return r.db.QueryRowContext(ctx, query, e.Action, e.SubjectType, e.SubjectID, e.Description, props, e.UserID, e.CreatedAt).Scan(&e.ID)
}
