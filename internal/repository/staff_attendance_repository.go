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

const staffAttendanceColumns = `a.id, a.staff_id, s.name AS staff_name, s.staff_number, a.check_in, a.check_out, a.duration_minutes, a.auto_closed, a.created_at`

// ShiftRules bounds the clock-in/out toggle.
type ShiftRules struct {
	// MaxShift auto-closes an open shift older than this at check_in + MaxShift.
	MaxShift time.Duration
	// Cooldown is the minimum gap between a manual check-out and the next check-in.
	Cooldown time.Duration
}

// ToggleAction is the transition applied by Toggle.
type ToggleAction string

const (
	ToggleCheckIn  ToggleAction = "check_in"
	ToggleCheckOut ToggleAction = "check_out"
)

// ToggleResult reports the row written by Toggle. AutoClosed is set when a stale shift
// was closed before the new check-in.
type ToggleResult struct {
	Action     ToggleAction
	Shift      models.StaffAttendance
	AutoClosed *models.StaffAttendance
}

// StaffAttendanceRepository manages staff shifts.
type StaffAttendanceRepository struct {
	db *sqlx.DB
}

// NewStaffAttendanceRepository constructs a StaffAttendanceRepository.
func NewStaffAttendanceRepository(db *sqlx.DB) *StaffAttendanceRepository {
	return &StaffAttendanceRepository{db: db}
}

// Toggle checks an active staff member in when absent and out when present. The staff row
// is locked for the duration of the transaction so concurrent scans serialise, and the
// partial unique index on open shifts rejects a second open row regardless.
func (r *StaffAttendanceRepository) Toggle(ctx context.Context, staffID string, now time.Time, rules ShiftRules) (result *ToggleResult, err error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin staff attendance transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	var staff struct {
		Name   string `db:"name"`
		Number int    `db:"staff_number"`
	}
	if err = tx.GetContext(ctx, &staff, `SELECT name, staff_number FROM staff WHERE id = $1 AND is_active = TRUE FOR UPDATE`, staffID); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("lock staff: %w", err)
	}

	var open models.StaffAttendance
	const openQuery = `SELECT id, staff_id, check_in, check_out, duration_minutes, auto_closed, created_at
		FROM staff_attendance WHERE staff_id = $1 AND check_out IS NULL`
	hasOpen := true
	if err = tx.GetContext(ctx, &open, openQuery, staffID); err != nil {
		if err != sql.ErrNoRows {
			return nil, fmt.Errorf("load open shift: %w", err)
		}
		err = nil
		hasOpen = false
	}

	result = &ToggleResult{}
	const closeQuery = `UPDATE staff_attendance SET check_out = $2, duration_minutes = $3, auto_closed = $4 WHERE id = $1 AND check_out IS NULL`
	if hasOpen {
		open.StaffName, open.StaffNumber = staff.Name, staff.Number
		stale := rules.MaxShift > 0 && now.Sub(open.CheckIn) > rules.MaxShift
		checkOut := now
		if stale {
			checkOut = open.CheckIn.Add(rules.MaxShift)
		}
		minutes := int(checkOut.Sub(open.CheckIn).Minutes())
		if _, err = tx.ExecContext(ctx, closeQuery, open.ID, checkOut, minutes, stale); err != nil {
			return nil, fmt.Errorf("close shift: %w", err)
		}
		open.CheckOut = &checkOut
		open.DurationMinutes = &minutes
		open.AutoClosed = stale
		if !stale {
			if err = tx.Commit(); err != nil {
				return nil, fmt.Errorf("commit check-out: %w", err)
			}
			result.Action = ToggleCheckOut
			result.Shift = open
			return result, nil
		}
		closed := open
		result.AutoClosed = &closed
	}

	if rules.Cooldown > 0 {
		var lastOut sql.NullTime
		const lastQuery = `SELECT MAX(check_out) FROM staff_attendance WHERE staff_id = $1 AND auto_closed = FALSE`
		if err = tx.GetContext(ctx, &lastOut, lastQuery, staffID); err != nil {
			return nil, fmt.Errorf("load last check-out: %w", err)
		}
		if lastOut.Valid {
			if elapsed := now.Sub(lastOut.Time); elapsed < rules.Cooldown {
				err = &CooldownError{Remaining: rules.Cooldown - elapsed}
				return nil, err
			}
		}
	}

	shift := models.StaffAttendance{
		ID:          uuid.NewString(),
		StaffID:     staffID,
		StaffName:   staff.Name,
		StaffNumber: staff.Number,
		CheckIn:     now,
		CreatedAt:   now,
	}
	const insertQuery = `INSERT INTO staff_attendance (id, staff_id, check_in, check_out, duration_minutes, auto_closed, created_at)
		VALUES ($1, $2, $3, NULL, NULL, FALSE, $4)`
	if _, err = tx.ExecContext(ctx, insertQuery, shift.ID, shift.StaffID, shift.CheckIn, shift.CreatedAt); err != nil {
		if translated := translatePQ(err, "open shift"); isDuplicate(translated) {
			err = ErrStaffAlreadyPresent
			return nil, err
		}
		return nil, fmt.Errorf("open shift: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit check-in: %w", err)
	}
	result.Action = ToggleCheckIn
	result.Shift = shift
	return result, nil
}

// List returns shifts joined with staff names, newest first.
func (r *StaffAttendanceRepository) List(ctx context.Context, filter models.StaffAttendanceFilter) ([]models.StaffAttendance, int, error) {
	base := "FROM staff_attendance a JOIN staff s ON s.id = a.staff_id WHERE 1=1"
	var conditions []string
	var args []interface{}
	if filter.StaffID != "" {
		args = append(args, filter.StaffID)
		conditions = append(conditions, fmt.Sprintf("a.staff_id = $%d", len(args)))
	}
	if filter.From != nil {
		args = append(args, *filter.From)
		conditions = append(conditions, fmt.Sprintf("a.check_in >= $%d", len(args)))
	}
	if filter.To != nil {
		args = append(args, *filter.To)
		conditions = append(conditions, fmt.Sprintf("a.check_in < $%d", len(args)))
	}
	if filter.OpenOnly {
		conditions = append(conditions, "a.check_out IS NULL")
	}
	if len(conditions) > 0 {
		base += " AND " + strings.Join(conditions, " AND ")
	}
	_, size, offset := normalizePage(filter.Page, filter.PageSize)

	query := fmt.Sprintf("SELECT %s %s ORDER BY a.check_in DESC LIMIT %d OFFSET %d", staffAttendanceColumns, base, size, offset)
	var rows []models.StaffAttendance
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list staff attendance: %w", err)
	}
	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) "+base, args...); err != nil {
		return nil, 0, fmt.Errorf("count staff attendance: %w", err)
	}
	return rows, total, nil
}

// CloseStale auto-closes every open shift that started more than maxShift before now.
// Each closed shift ends at check_in + maxShift. It returns the number of shifts closed.
func (r *StaffAttendanceRepository) CloseStale(ctx context.Context, now time.Time, maxShift time.Duration) (int64, error) {
	if maxShift <= 0 {
		return 0, nil
	}
	const query = `UPDATE staff_attendance
		SET check_out = check_in + $2 * INTERVAL '1 second',
			duration_minutes = $3,
			auto_closed = TRUE
		WHERE check_out IS NULL AND check_in < $1`
	res, err := r.db.ExecContext(ctx, query, now.Add(-maxShift), int64(maxShift/time.Second), int(maxShift.Minutes()))
	if err != nil {
		return 0, fmt.Errorf("close stale shifts: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("close stale shifts rows affected: %w", err)
	}
	return affected, nil
}

// PresentStaffIDs returns the ids of staff with an open shift.
func (r *StaffAttendanceRepository) PresentStaffIDs(ctx context.Context) ([]string, error) {
	var ids []string
	if err := r.db.SelectContext(ctx, &ids, `SELECT staff_id FROM staff_attendance WHERE check_out IS NULL`); err != nil {
		return nil, fmt.Errorf("list present staff: %w", err)
	}
	return ids, nil
}

// Delete removes a shift.
func (r *StaffAttendanceRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM staff_attendance WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete staff attendance: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete staff attendance rows affected: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}
