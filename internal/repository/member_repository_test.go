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

var memberCols = []string{"id", "member_number", "name", "phone", "points", "created_at", "updated_at"}

func TestMemberRepositoryCreateAssignsNumber(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewMemberRepository(db)

	mock.ExpectQuery("INSERT INTO members").
		WithArgs(sqlmock.AnyArg(), 0, "Laila", "0111", 0, sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"member_number"}).AddRow(41))

	member := &models.Member{Name: "Laila", Phone: "0111"}
	require.NoError(t, repo.Create(context.Background(), member))
	assert.Equal(t, 41, member.MemberNumber)
	assert.NotEmpty(t, member.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMemberRepositoryAdjustPointsCredits(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewMemberRepository(db)

	now := time.Now()
	mock.ExpectBegin()
	mock.ExpectQuery("UPDATE members SET points = points \\+ \\$2").
		WithArgs("member-1", 120, sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows(memberCols).AddRow("member-1", 41, "Laila", "0111", 320, now, now))
	mock.ExpectExec("INSERT INTO points_history").
		WithArgs(sqlmock.AnyArg(), "member-1", 120, "earned", "renewal", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	member, err := repo.AdjustPoints(context.Background(), "member-1", models.PointsEntry{Points: 120, Action: models.PointsEarned, Description: "renewal"})
	require.NoError(t, err)
	assert.Equal(t, 320, member.Points)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMemberRepositoryAdjustPointsRejectsOverdraft(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewMemberRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery("UPDATE members SET points").WillReturnRows(sqlmock.NewRows(memberCols))
	mock.ExpectRollback()

	_, err := repo.AdjustPoints(context.Background(), "member-1", models.PointsEntry{Points: -1000, Action: models.PointsAdjusted})
	assert.ErrorIs(t, err, ErrInsufficientPoints)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMemberRepositoryHistoryClampsLimit(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewMemberRepository(db)

	mock.ExpectQuery("FROM points_history WHERE member_id = \\$1").
		WithArgs("member-1", 50).
		WillReturnRows(sqlmock.NewRows([]string{"id", "member_id", "points", "action", "description", "created_at"}).
			AddRow("h-1", "member-1", -50, "redeemed", "receipt 1002", time.Now()))

	entries, err := repo.History(context.Background(), "member-1", 0)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, models.PointsRedeemed, entries[0].Action)
	assert.NoError(t, mock.ExpectationsWereMet())
}
