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

var allocationCols = []string{"id", "tool_id", "user_id", "reservation_id", "borrow_date", "expected_return_date", "status",
	"claimed_at", "claimed_by", "actual_return_date", "return_requested_at", "return_condition", "return_notes", "reviewed_by",
	"cancelled_at", "cancellation_reason", "unclaimed_at", "penalty_until", "created_at", "updated_at"}

func TestAllocationRepository_GetByID(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := postgres.NewAllocationRepository(db)
	ctx := context.Background()
	now := time.Now()

	t.Run("Success", func(t *testing.T) {
		rows := sqlmock.NewRows(allocationCols).
			AddRow(5, 1, 2, 9, day("2025-03-10"), day("2025-03-12"), "SCHEDULED",
				nil, nil, nil, nil, "", "", nil, nil, "", nil, nil, now, now)
		mock.ExpectQuery(`SELECT (.+) FROM allocations WHERE id = \$1$`).
			WithArgs(int32(5)).
			WillReturnRows(rows)

		a, err := repo.GetByID(ctx, 5)
		require.NoError(t, err)
		assert.Equal(t, domain.AllocationStatusScheduled, a.Status)
		require.NotNil(t, a.ReservationID)
		assert.Equal(t, int32(9), *a.ReservationID)
		assert.Nil(t, a.ClaimedAt)
	})

	t.Run("NotFound", func(t *testing.T) {
		mock.ExpectQuery(`SELECT (.+) FROM allocations WHERE id = \$1$`).
			WithArgs(int32(6)).
			WillReturnRows(sqlmock.NewRows(allocationCols))

		a, err := repo.GetByID(ctx, 6)
		assert.Nil(t, a)
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})
}

func TestAllocationRepository_ListUnclaimed(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := postgres.NewAllocationRepository(db)
	today := day("2025-03-15")
	now := time.Now()

	mock.ExpectQuery(`SELECT (.+) FROM allocations WHERE status = \$1 AND borrow_date < \$2 AND id > \$3 ORDER BY id LIMIT 50`).
		WithArgs("SCHEDULED", today, int32(10)).
		WillReturnRows(sqlmock.NewRows(allocationCols).
			AddRow(11, 1, 2, nil, day("2025-03-10"), day("2025-03-12"), "SCHEDULED",
				nil, nil, nil, nil, "", "", nil, nil, "", nil, nil, now, now))

	out, err := repo.ListUnclaimed(context.Background(), today, 10, 50)
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, int32(11), out[0].ID)
	assert.Nil(t, out[0].ReservationID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAllocationRepository_LatestPenaltyUntil(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := postgres.NewAllocationRepository(db)
	ctx := context.Background()

	t.Run("NoPenalty", func(t *testing.T) {
		mock.ExpectQuery(`SELECT MAX\(penalty_until\) FROM allocations WHERE user_id = \$1`).
			WithArgs(int32(2)).
			WillReturnRows(sqlmock.NewRows([]string{"max"}).AddRow(nil))

		until, err := repo.LatestPenaltyUntil(ctx, 2)
		assert.NoError(t, err)
		assert.Nil(t, until)
	})

	t.Run("Stamped", func(t *testing.T) {
		stamp := day("2025-03-22")
		mock.ExpectQuery(`SELECT MAX\(penalty_until\) FROM allocations WHERE user_id = \$1`).
			WithArgs(int32(2)).
			WillReturnRows(sqlmock.NewRows([]string{"max"}).AddRow(stamp))

		until, err := repo.LatestPenaltyUntil(ctx, 2)
		require.NoError(t, err)
		require.NotNil(t, until)
		assert.True(t, stamp.Equal(*until))
	})
}

func TestSchemaInspector_MissingColumns(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	inspector := postgres.NewSchemaInspector(db)
	mock.ExpectQuery(`SELECT column_name FROM information_schema.columns`).
		WithArgs("allocations", sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"column_name"}).AddRow("unclaimed_at"))

	missing, err := inspector.MissingColumns(context.Background(), "allocations", "unclaimed_at", "penalty_until")
	require.NoError(t, err)
	assert.Equal(t, []string{"penalty_until"}, missing)
}
