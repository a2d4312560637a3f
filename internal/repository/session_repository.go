package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/AmrAnter44/sys-body-sub000/internal/models"
)

const sessionColumns = `id, subscription_id, service_type, subscription_number, client_name, provider_name, session_date, notes, attended, attended_at, attended_by, created_at`

// SessionRepository records consumed sessions against subscriptions.
type SessionRepository struct {
	db *sqlx.DB
}

// NewSessionRepository constructs a SessionRepository.
func NewSessionRepository(db *sqlx.DB) *SessionRepository {
	return &SessionRepository{db: db}
}

// ConsumeParams describes one session consumption.
type ConsumeParams struct {
	SubscriptionID string
	// Attendance carries the caller supplied fields; identity fields are copied from the
	// subscription inside the transaction.
	Attendance *models.SessionAttendance
	// Codes mints a spent session code for the receipt when set.
	Codes CodeSource
	// PresentedCode stamps used_at on the scanned card code when set.
	PresentedCode string
}

// ConsumeResult is the state after a successful consumption.
type ConsumeResult struct {
	Subscription models.Subscription
	Attendance   models.SessionAttendance
	Code         string
}

// Consume decrements sessions_remaining only while it is positive, records the
// attendance row and optionally mints the session code, all in one transaction.
// It fails with ErrNoSessionsRemaining when the counter is already zero.
func (r *SessionRepository) Consume(ctx context.Context, params ConsumeParams) (result *ConsumeResult, err error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin session transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	now := time.Now().UTC()
	query := `UPDATE subscriptions SET sessions_remaining = sessions_remaining - 1, updated_at = $2
		WHERE id = $1 AND sessions_remaining > 0 RETURNING ` + subscriptionColumns
	var sub models.Subscription
	if err = tx.GetContext(ctx, &sub, query, params.SubscriptionID, now); err != nil {
		if err != sql.ErrNoRows {
			return nil, fmt.Errorf("decrement sessions: %w", err)
		}
		var exists int
		if lookupErr := tx.GetContext(ctx, &exists, `SELECT 1 FROM subscriptions WHERE id = $1`, params.SubscriptionID); lookupErr != nil {
			if lookupErr == sql.ErrNoRows {
				return nil, sql.ErrNoRows
			}
			return nil, fmt.Errorf("check subscription: %w", lookupErr)
		}
		err = ErrNoSessionsRemaining
		return nil, err
	}

	entry := params.Attendance
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	entry.SubscriptionID = sub.ID
	entry.ServiceType = sub.ServiceType
	entry.SubscriptionNumber = sub.Number
	entry.ClientName = sub.ClientName
	if entry.ProviderName == "" {
		entry.ProviderName = sub.ProviderName
	}
	if entry.SessionDate.IsZero() {
		entry.SessionDate = now
	}
	entry.CreatedAt = now

	insertQuery := `INSERT INTO session_attendance (` + sessionColumns + `)
		VALUES (:id, :subscription_id, :service_type, :subscription_number, :client_name, :provider_name, :session_date, :notes, :attended, :attended_at, :attended_by, :created_at)`
	if _, err = tx.NamedExecContext(ctx, insertQuery, entry); err != nil {
		return nil, fmt.Errorf("insert session attendance: %w", err)
	}

	result = &ConsumeResult{Subscription: sub, Attendance: *entry}

	if params.PresentedCode != "" {
		if _, err = tx.ExecContext(ctx, `UPDATE access_codes SET used_at = $2 WHERE code = $1 AND kind = 'subscription'`, params.PresentedCode, now); err != nil {
			return nil, fmt.Errorf("stamp access code: %w", err)
		}
	}
	if params.Codes != nil {
		attendanceID := entry.ID
		result.Code, err = mintCode(ctx, tx, params.Codes, models.AccessCode{
			Kind:           models.CodeKindSession,
			ServiceType:    sub.ServiceType,
			SubscriptionID: sub.ID,
			AttendanceID:   &attendanceID,
			Used:           true,
			UsedAt:         &now,
			CreatedAt:      now,
		})
		if err != nil {
			return nil, err
		}
	}

	if err = tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit session: %w", err)
	}
	return result, nil
}

// List returns attendance rows matching filters along with total count.
func (r *SessionRepository) List(ctx context.Context, filter models.SessionAttendanceFilter) ([]models.SessionAttendance, int, error) {
	base := "FROM session_attendance WHERE service_type = $1"
	args := []interface{}{filter.ServiceType}
	var conditions []string
	if filter.SubscriptionID != "" {
		args = append(args, filter.SubscriptionID)
		conditions = append(conditions, fmt.Sprintf("subscription_id = $%d", len(args)))
	}
	if filter.Provider != "" {
		args = append(args, filter.Provider)
		conditions = append(conditions, fmt.Sprintf("LOWER(provider_name) = LOWER($%d)", len(args)))
	}
	if filter.From != nil {
		args = append(args, *filter.From)
		conditions = append(conditions, fmt.Sprintf("session_date >= $%d", len(args)))
	}
	if filter.To != nil {
		args = append(args, *filter.To)
		conditions = append(conditions, fmt.Sprintf("session_date < $%d", len(args)))
	}
	if len(conditions) > 0 {
		base += " AND " + strings.Join(conditions, " AND ")
	}
	_, size, offset := normalizePage(filter.Page, filter.PageSize)

	query := fmt.Sprintf("SELECT %s %s ORDER BY session_date DESC LIMIT %d OFFSET %d", sessionColumns, base, size, offset)
	var rows []models.SessionAttendance
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list session attendance: %w", err)
	}
	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) "+base, args...); err != nil {
		return nil, 0, fmt.Errorf("count session attendance: %w", err)
	}
	return rows, total, nil
}

// Delete removes a single attendance row. sessions_remaining is left untouched.
func (r *SessionRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM session_attendance WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete session attendance: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete session attendance rows affected: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}
