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

const staffColumns = `id, staff_number, name, phone, position, salary, is_active, created_at, updated_at`

// StaffRepository manages persistence for the staff roster.
type StaffRepository struct {
	db *sqlx.DB
}

// NewStaffRepository constructs a StaffRepository.
func NewStaffRepository(db *sqlx.DB) *StaffRepository {
	return &StaffRepository{db: db}
}

// List returns staff matching filters along with total count.
func (r *StaffRepository) List(ctx context.Context, filter models.StaffFilter) ([]models.Staff, int, error) {
	base := "FROM staff WHERE 1=1"
	var conditions []string
	var args []interface{}

	if filter.Active != nil {
		conditions = append(conditions, fmt.Sprintf("is_active = $%d", len(args)+1))
		args = append(args, *filter.Active)
	}
	if filter.Position != "" {
		conditions = append(conditions, fmt.Sprintf("LOWER(position) = LOWER($%d)", len(args)+1))
		args = append(args, filter.Position)
	}
	if filter.Search != "" {
		search := "%" + strings.ToLower(filter.Search) + "%"
		conditions = append(conditions, fmt.Sprintf("(LOWER(name) LIKE $%d OR COALESCE(phone, '') LIKE $%d)", len(args)+1, len(args)+1))
		args = append(args, search)
	}
	if len(conditions) > 0 {
		base += " AND " + strings.Join(conditions, " AND ")
	}
	_, size, offset := normalizePage(filter.Page, filter.PageSize)

	query := fmt.Sprintf("SELECT %s %s ORDER BY staff_number ASC LIMIT %d OFFSET %d", staffColumns, base, size, offset)
	var staff []models.Staff
	if err := r.db.SelectContext(ctx, &staff, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list staff: %w", err)
	}

	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) "+base, args...); err != nil {
		return nil, 0, fmt.Errorf("count staff: %w", err)
	}
	return staff, total, nil
}

// FindByID fetches a staff member by id.
func (r *StaffRepository) FindByID(ctx context.Context, id string) (*models.Staff, error) {
	query := `SELECT ` + staffColumns + ` FROM staff WHERE id = $1`
	var staff models.Staff
	if err := r.db.GetContext(ctx, &staff, query, id); err != nil {
		return nil, err
	}
	return &staff, nil
}

// FindByNumber fetches a staff member by staff number.
func (r *StaffRepository) FindByNumber(ctx context.Context, number int) (*models.Staff, error) {
	query := `SELECT ` + staffColumns + ` FROM staff WHERE staff_number = $1`
	var staff models.Staff
	if err := r.db.GetContext(ctx, &staff, query, number); err != nil {
		return nil, err
	}
	return &staff, nil
}

// ExistsByNumber checks if another staff member uses the same number.
func (r *StaffRepository) ExistsByNumber(ctx context.Context, number int, excludeID string) (bool, error) {
	query := "SELECT 1 FROM staff WHERE staff_number = $1"
	args := []interface{}{number}
	if excludeID != "" {
		query += " AND id <> $2"
		args = append(args, excludeID)
	}
	var exists int
	if err := r.db.GetContext(ctx, &exists, query+" LIMIT 1", args...); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("check staff number: %w", err)
	}
	return true, nil
}

// NextNumber returns the next unused staff number.
func (r *StaffRepository) NextNumber(ctx context.Context) (int, error) {
	var next int
	if err := r.db.GetContext(ctx, &next, `SELECT COALESCE(MAX(staff_number), 0) + 1 FROM staff`); err != nil {
		return 0, fmt.Errorf("next staff number: %w", err)
	}
	return next, nil
}

// Create inserts a new staff record.
func (r *StaffRepository) Create(ctx context.Context, staff *models.Staff) error {
	if staff.ID == "" {
		staff.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if staff.CreatedAt.IsZero() {
		staff.CreatedAt = now
	}
	staff.UpdatedAt = now

	const query = `INSERT INTO staff (id, staff_number, name, phone, position, salary, is_active, created_at, updated_at)
		VALUES (:id, :staff_number, :name, :phone, :position, :salary, :is_active, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, staff); err != nil {
		return translatePQ(err, "create staff")
	}
	return nil
}

// Update modifies an existing staff record.
func (r *StaffRepository) Update(ctx context.Context, staff *models.Staff) error {
	staff.UpdatedAt = time.Now().UTC()
	const query = `UPDATE staff SET staff_number = :staff_number, name = :name, phone = :phone, position = :position, salary = :salary, is_active = :is_active, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, staff); err != nil {
		return translatePQ(err, "update staff")
	}
	return nil
}

// Deactivate sets a staff member's active flag to false.
func (r *StaffRepository) Deactivate(ctx context.Context, id string) error {
	const query = `UPDATE staff SET is_active = FALSE, updated_at = $2 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, time.Now().UTC()); err != nil {
		return fmt.Errorf("deactivate staff: %w", err)
	}
	return nil
}
