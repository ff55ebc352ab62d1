package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"toolshed-backend/internal/domain"
	"toolshed-backend/internal/logger"
	"toolshed-backend/internal/repository"

	sq "github.com/Masterminds/squirrel"
)

const notificationColumns = "id, user_id, kind, title, message, COALESCE(link, ''), is_read, attributes, created_on"

type notificationRepository struct {
	db  *sql.DB
	now func() time.Time
}

func NewNotificationRepository(db *sql.DB) repository.NotificationRepository {
	return &notificationRepository{db: db, now: func() time.Time { return time.Now().UTC() }}
}

// Create stores an unread notification and fills in ID and CreatedOn.
func (r *notificationRepository) Create(ctx context.Context, n *domain.Notification) error {
	var attrs []byte
	if len(n.Attributes) > 0 {
		var err error
		if attrs, err = json.Marshal(n.Attributes); err != nil {
			return fmt.Errorf("marshal notification attributes: %w", err)
		}
	}

	createdOn := r.now()
	query, args, err := psql.Insert("notifications").
		Columns("user_id", "kind", "title", "message", "link", "is_read", "attributes", "created_on").
		Values(n.UserID, n.Kind, n.Title, n.Message, sql.NullString{String: n.Link, Valid: n.Link != ""}, false, attrs, createdOn).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return err
	}

	logger.DatabaseCall("INSERT", "notifications", "userID", n.UserID, "kind", n.Kind)
	err = r.db.QueryRowContext(ctx, query, args...).Scan(&n.ID)
	logger.DatabaseResult("INSERT", 1, err, "notificationID", n.ID)
	if err != nil {
		return err
	}
	n.IsRead = false
	n.CreatedOn = createdOn.Format(time.RFC3339)
	return nil
}

// List returns one page of the user's inbox, newest first, plus the total.
func (r *notificationRepository) List(ctx context.Context, userID int32, limit, offset int32) ([]domain.Notification, int32, error) {
	var total int32
	countQuery, countArgs, err := psql.Select("COUNT(*)").From("notifications").Where(sq.Eq{"user_id": userID}).ToSql()
	if err != nil {
		return nil, 0, err
	}
	if err := r.db.QueryRowContext(ctx, countQuery, countArgs...).Scan(&total); err != nil {
		return nil, 0, err
	}
	if total == 0 {
		return []domain.Notification{}, 0, nil
	}

	query, args, err := psql.Select(notificationColumns).From("notifications").
		Where(sq.Eq{"user_id": userID}).
		OrderBy("created_on DESC", "id DESC").
		Limit(uint64(limit)).
		Offset(uint64(offset)).
		ToSql()
	if err != nil {
		return nil, 0, err
	}
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	notes := make([]domain.Notification, 0, limit)
	for rows.Next() {
		var (
			n         domain.Notification
			attrs     []byte
			createdOn time.Time
		)
		if err := rows.Scan(&n.ID, &n.UserID, &n.Kind, &n.Title, &n.Message, &n.Link, &n.IsRead, &attrs, &createdOn); err != nil {
			return nil, 0, err
		}
		n.CreatedOn = createdOn.UTC().Format(time.RFC3339)
		if len(attrs) > 0 {
			if err := json.Unmarshal(attrs, &n.Attributes); err != nil {
				return nil, 0, fmt.Errorf("notification %d attributes: %w", n.ID, err)
			}
		}
		notes = append(notes, n)
	}
	return notes, total, rows.Err()
}

// MarkAsRead only touches the caller's own notifications; anything else is
// reported as not found.
func (r *notificationRepository) MarkAsRead(ctx context.Context, id, userID int32) error {
	query, args, err := psql.Update("notifications").
		Set("is_read", true).
		Where(sq.Eq{"id": id, "user_id": userID}).
		ToSql()
	if err != nil {
		return err
	}
	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return fmt.Errorf("notification %d: %w", id, domain.ErrNotFound)
	}
	return nil
}
