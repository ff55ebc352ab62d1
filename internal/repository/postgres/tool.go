package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"toolshed-backend/internal/domain"
	"toolshed-backend/internal/repository"
)

const toolColumns = `id, name, COALESCE(description, ''), COALESCE(category, ''), quantity, available_quantity, status, condition, created_on, updated_on`

type toolRepository struct {
	db *sql.DB
}

func NewToolRepository(db *sql.DB) repository.ToolRepository {
	return &toolRepository{db: db}
}

func scanTool(row scanner) (*domain.Tool, error) {
	t := &domain.Tool{}
	err := row.Scan(&t.ID, &t.Name, &t.Description, &t.Category, &t.Quantity, &t.AvailableQuantity, &t.Status, &t.Condition, &t.CreatedOn, &t.UpdatedOn)
	if err != nil {
		return nil, err
	}
	return t, nil
}

func getTool(ctx context.Context, db querier, id int32, forUpdate bool) (*domain.Tool, error) {
	query := `SELECT ` + toolColumns + ` FROM tools WHERE id = $1`
	if forUpdate {
		query += ` FOR UPDATE`
	}
	t, err := scanTool(db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("tool %d: %w", id, domain.ErrNotFound)
	}
	return t, err
}

func (r *toolRepository) GetByID(ctx context.Context, id int32) (*domain.Tool, error) {
	return getTool(ctx, r.db, id, false)
}

func (r *toolRepository) ListStatusLogs(ctx context.Context, toolID int32, limit int) ([]domain.ToolStatusLog, error) {
	query := `SELECT id, tool_id, old_status, new_status, changed_by, COALESCE(reason, ''), changed_at
	          FROM tool_status_logs WHERE tool_id = $1 ORDER BY changed_at DESC, id DESC LIMIT $2`
	rows, err := r.db.QueryContext(ctx, query, toolID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var logs []domain.ToolStatusLog
	for rows.Next() {
		var l domain.ToolStatusLog
		if err := rows.Scan(&l.ID, &l.ToolID, &l.OldStatus, &l.NewStatus, &l.ChangedBy, &l.Reason, &l.ChangedAt); err != nil {
			return nil, err
		}
		logs = append(logs, l)
	}
	return logs, rows.Err()
}
