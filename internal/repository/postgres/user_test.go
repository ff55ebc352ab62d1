package postgres_test

import (
	"context"
	"testing"

	"toolshed-backend/internal/domain"
	"toolshed-backend/internal/repository/postgres"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserRepository(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := postgres.NewUserRepository(db)
	ctx := context.Background()
	cols := []string{"id", "email", "name", "role"}

	t.Run("GetByID", func(t *testing.T) {
		mock.ExpectQuery(`SELECT id, email, name, role FROM users WHERE id = \$1`).
			WithArgs(int32(7)).
			WillReturnRows(sqlmock.NewRows(cols).AddRow(7, "sam@example.com", "Sam", "MEMBER"))

		u, err := repo.GetByID(ctx, 7)
		require.NoError(t, err)
		assert.Equal(t, domain.UserRoleMember, u.Role)
		assert.False(t, u.IsAdmin())
	})

	t.Run("NotFound", func(t *testing.T) {
		mock.ExpectQuery(`SELECT id, email, name, role FROM users WHERE id = \$1`).
			WithArgs(int32(99)).
			WillReturnRows(sqlmock.NewRows(cols))

		_, err := repo.GetByID(ctx, 99)
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("ListByRole", func(t *testing.T) {
		mock.ExpectQuery(`SELECT id, email, name, role FROM users WHERE role = \$1 ORDER BY id`).
			WithArgs("ADMIN").
			WillReturnRows(sqlmock.NewRows(cols).
				AddRow(1, "desk@example.com", "Desk", "ADMIN").
				AddRow(2, "lead@example.com", "Lead", "ADMIN"))

		admins, err := repo.ListByRole(ctx, domain.UserRoleAdmin)
		require.NoError(t, err)
		assert.Len(t, admins, 2)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}
