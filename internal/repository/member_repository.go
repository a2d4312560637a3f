package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/AmrAnter44/sys-body-sub000/internal/models"
)

const memberColumns = `id, member_number, name, phone, points, created_at, updated_at`

// MemberRepository manages loyalty accounts and their points history.
type MemberRepository struct {
	db *sqlx.DB
}

// NewMemberRepository constructs a MemberRepository.
func NewMemberRepository(db *sqlx.DB) *MemberRepository {
	return &MemberRepository{db: db}
}

// FindByNumber fetches a member by membership number.
func (r *MemberRepository) FindByNumber(ctx context.Context, number int) (*models.Member, error) {
	query := `SELECT ` + memberColumns + ` FROM members WHERE member_number = $1`
	var member models.Member
	if err := r.db.GetContext(ctx, &member, query, number); err != nil {
		return nil, err
	}
	return &member, nil
}

// FindByPhone returns the oldest member registered with phone.
func (r *MemberRepository) FindByPhone(ctx context.Context, phone string) (*models.Member, error) {
	query := `SELECT ` + memberColumns + ` FROM members WHERE phone = $1 ORDER BY created_at ASC LIMIT 1`
	var member models.Member
	if err := r.db.GetContext(ctx, &member, query, phone); err != nil {
		return nil, err
	}
	return &member, nil
}

// Create inserts a member. A zero member number is replaced with the next free one.
func (r *MemberRepository) Create(ctx context.Context, member *models.Member) error {
	if member.ID == "" {
		member.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	member.CreatedAt = now
	member.UpdatedAt = now

	query := `INSERT INTO members (id, member_number, name, phone, points, created_at, updated_at)
		VALUES ($1, CASE WHEN $2 > 0 THEN $2 ELSE (SELECT COALESCE(MAX(member_number), 0) + 1 FROM members) END, $3, $4, $5, $6, $7)
		RETURNING member_number`
	if err := r.db.GetContext(ctx, &member.MemberNumber, query, member.ID, member.MemberNumber, member.Name, member.Phone, member.Points, member.CreatedAt, member.UpdatedAt); err != nil {
		return translatePQ(err, "create member")
	}
	return nil
}

// AdjustPoints adds points (negative values debit) and writes the history entry. A debit
// larger than the balance fails with ErrInsufficientPoints.
func (r *MemberRepository) AdjustPoints(ctx context.Context, memberID string, entry models.PointsEntry) (member *models.Member, err error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin points transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	now := time.Now().UTC()
	query := `UPDATE members SET points = points + $2, updated_at = $3 WHERE id = $1 AND points + $2 >= 0 RETURNING ` + memberColumns
	var updated models.Member
	if err = tx.GetContext(ctx, &updated, query, memberID, entry.Points, now); err != nil {
		if err == sql.ErrNoRows {
			err = ErrInsufficientPoints
			return nil, err
		}
		return nil, fmt.Errorf("adjust points: %w", err)
	}

	entry.MemberID = memberID
	entry.CreatedAt = now
	if err = insertPointsEntry(ctx, tx, entry); err != nil {
		return nil, err
	}
	if err = tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit points: %w", err)
	}
	return &updated, nil
}

// History lists the latest points movements of a member.
func (r *MemberRepository) History(ctx context.Context, memberID string, limit int) ([]models.PointsEntry, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	const query = `SELECT id, member_id, points, action, description, created_at FROM points_history WHERE member_id = $1 ORDER BY created_at DESC LIMIT $2`
	var entries []models.PointsEntry
	if err := r.db.SelectContext(ctx, &entries, query, memberID, limit); err != nil {
		return nil, fmt.Errorf("list points history: %w", err)
	}
	return entries, nil
}

func insertPointsEntry(ctx context.Context, tx *sqlx.Tx, entry models.PointsEntry) error {
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	const query = `INSERT INTO points_history (id, member_id, points, action, description, created_at) VALUES ($1, $2, $3, $4, $5, $6)`
	if _, err := tx.ExecContext(ctx, query, entry.ID, entry.MemberID, entry.Points, entry.Action, entry.Description, entry.CreatedAt); err != nil {
		return fmt.Errorf("insert points history: %w", err)
	}
	return nil
}
