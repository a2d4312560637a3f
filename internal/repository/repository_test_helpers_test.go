package repository

import (
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"
)

func newRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

type stubCodes struct {
	codes []string
	next  int
}

func (s *stubCodes) Next() (string, error) {
	code := s.codes[s.next%len(s.codes)]
	s.next++
	return code, nil
}

var subscriptionCols = []string{"id", "service_type", "subscription_number", "client_name", "phone", "provider_name", "member_number", "sessions_purchased", "sessions_remaining", "price_per_session", "remaining_amount", "start_date", "expiry_date", "code", "created_at", "updated_at"}

func subscriptionRows(id string, number, purchased, remaining int, price, balance string) *sqlmock.Rows {
	now := time.Now()
	return sqlmock.NewRows(subscriptionCols).
		AddRow(id, "pt", number, "Mona Adel", "01000000000", "Coach Omar", nil, purchased, remaining, price, balance, nil, nil, "CARDCODE", now, now)
}

func testDate(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
