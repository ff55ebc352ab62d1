package postgres_test

import (
	"context"
	"testing"
	"time"

	"toolshed-backend/internal/domain"
	"toolshed-backend/internal/repository/postgres"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNotificationRepository_Create(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := postgres.NewNotificationRepository(db)
	n := &domain.Notification{
		UserID:     7,
		Kind:       domain.NotificationKindOverdue,
		Title:      "Tool overdue",
		Message:    "Return the drill",
		Link:       "/allocations/21",
		Attributes: map[string]string{"allocation_id": "21"},
	}

	mock.ExpectQuery(`INSERT INTO notifications \(user_id,kind,title,message,link,is_read,attributes,created_on\) VALUES (.+) RETURNING id`).
		WithArgs(int32(7), domain.NotificationKindOverdue, "Tool overdue", "Return the drill", sqlmock.AnyArg(), false, []byte(`{"allocation_id":"21"}`), sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(44))

	require.NoError(t, repo.Create(context.Background(), n))
	assert.Equal(t, int32(44), n.ID)
	assert.NotEmpty(t, n.CreatedOn)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestNotificationRepository_List(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := postgres.NewNotificationRepository(db)
	ctx := context.Background()
	created := time.Date(2025, 1, 9, 8, 0, 0, 0, time.UTC)

	t.Run("Page", func(t *testing.T) {
		mock.ExpectQuery(`SELECT COUNT\(\*\) FROM notifications WHERE user_id = \$1`).
			WithArgs(int32(7)).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))
		mock.ExpectQuery(`SELECT (.+) FROM notifications WHERE user_id = \$1 ORDER BY created_on DESC, id DESC LIMIT 2 OFFSET 0`).
			WithArgs(int32(7)).
			WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "kind", "title", "message", "link", "is_read", "attributes", "created_on"}).
				AddRow(3, 7, "OVERDUE", "Tool overdue", "1 day(s) overdue", "/allocations/21", false, []byte(`{"days":"1"}`), created).
				AddRow(2, 7, "RESERVATION_ACTIVATED", "Approved", "Ready for pickup", "", true, nil, created.Add(-time.Hour)))

		notes, total, err := repo.List(ctx, 7, 2, 0)
		require.NoError(t, err)
		assert.Equal(t, int32(3), total)
		require.Len(t, notes, 2)
		assert.Equal(t, "1", notes[0].Attributes["days"])
		assert.Equal(t, "2025-01-09T08:00:00Z", notes[0].CreatedOn)
		assert.True(t, notes[1].IsRead)
		assert.Nil(t, notes[1].Attributes)
	})

	t.Run("Empty", func(t *testing.T) {
		mock.ExpectQuery(`SELECT COUNT\(\*\) FROM notifications WHERE user_id = \$1`).
			WithArgs(int32(8)).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))

		notes, total, err := repo.List(ctx, 8, 20, 0)
		require.NoError(t, err)
		assert.Zero(t, total)
		assert.Empty(t, notes)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestNotificationRepository_MarkAsRead(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := postgres.NewNotificationRepository(db)
	ctx := context.Background()

	t.Run("Own", func(t *testing.T) {
		mock.ExpectExec(`UPDATE notifications SET is_read = \$1 WHERE id = \$2 AND user_id = \$3`).
			WithArgs(true, int32(5), int32(7)).
			WillReturnResult(sqlmock.NewResult(0, 1))
		assert.NoError(t, repo.MarkAsRead(ctx, 5, 7))
	})

	t.Run("SomeoneElses", func(t *testing.T) {
		mock.ExpectExec(`UPDATE notifications SET is_read = \$1 WHERE id = \$2 AND user_id = \$3`).
			WithArgs(true, int32(5), int32(8)).
			WillReturnResult(sqlmock.NewResult(0, 0))
		assert.ErrorIs(t, repo.MarkAsRead(ctx, 5, 8), domain.ErrNotFound)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}
