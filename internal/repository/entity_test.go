package repository

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/templui/showcase/internal/entity"
)

func TestEntityRepositoryLockOrder(t *testing.T) {
	tests := []struct {
		name       string
		driver     string
		descriptor *entity.Descriptor
		expected   string
	}{
		{name: "PostgreSQL locks the table", driver: "pgx", descriptor: entity.Client, expected: `LOCK TABLE clients IN SHARE ROW EXCLUSIVE MODE`},
		{name: "SQLite takes the write lock", driver: "sqlite", descriptor: entity.Service, expected: `UPDATE services SET display_order = display_order WHERE 0 = 1`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockDB, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
			require.NoError(t, err)
			defer func() { _ = mockDB.Close() }()

			mock.ExpectExec(tt.expected).WillReturnResult(sqlmock.NewResult(0, 0))

			repo := NewEntityRepository(sqlx.NewDb(mockDB, tt.driver))
			require.NoError(t, repo.LockOrder(context.Background(), tt.descriptor))
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}

	t.Run("Unordered kinds need no lock", func(t *testing.T) {
		mockDB, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer func() { _ = mockDB.Close() }()

		repo := NewEntityRepository(sqlx.NewDb(mockDB, "pgx"))
		require.NoError(t, repo.LockOrder(context.Background(), entity.Product))
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
