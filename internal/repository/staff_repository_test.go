package repository

import (
	"context"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AmrAnter44/sys-body-sub000/internal/models"
)

func TestStaffRepositoryListActive(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewStaffRepository(db)

	active := true
	now := time.Now()
	mock.ExpectQuery("FROM staff WHERE 1=1 AND is_active = \\$1 ORDER BY staff_number ASC").
		WithArgs(true).
		WillReturnRows(sqlmock.NewRows([]string{"id", "staff_number", "name", "phone", "position", "salary", "is_active", "created_at", "updated_at"}).
			AddRow("staff-1", 7, "Karim", nil, "trainer", "6500", true, now, now))
	mock.ExpectQuery("SELECT COUNT\\(\\*\\) FROM staff").WithArgs(true).WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	staff, total, err := repo.List(context.Background(), models.StaffFilter{Active: &active})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, staff, 1)
	require.NotNil(t, staff[0].Salary)
	assert.Equal(t, "6500", staff[0].Salary.String())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStaffRepositoryExistsByNumberExcludesSelf(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewStaffRepository(db)

	mock.ExpectQuery("SELECT 1 FROM staff WHERE staff_number = \\$1 AND id <> \\$2 LIMIT 1").
		WithArgs(7, "staff-1").
		WillReturnRows(sqlmock.NewRows([]string{"?column?"}))

	exists, err := repo.ExistsByNumber(context.Background(), 7, "staff-1")
	require.NoError(t, err)
	assert.False(t, exists)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStaffRepositoryNextNumber(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewStaffRepository(db)

	mock.ExpectQuery("SELECT COALESCE\\(MAX\\(staff_number\\), 0\\) \\+ 1 FROM staff").
		WillReturnRows(sqlmock.NewRows([]string{"next"}).AddRow(12))

	next, err := repo.NextNumber(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 12, next)
	assert.NoError(t, mock.ExpectationsWereMet())
}
