package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/AmrAnter44/sys-body-sub000/internal/models"
)

// maxMintAttempts bounds retries on code collisions.
const maxMintAttempts = 10

// CodeSource produces candidate access codes.
type CodeSource interface {
	Next() (string, error)
}

// AccessCodeRepository reads minted codes.
type AccessCodeRepository struct {
	db *sqlx.DB
}

// NewAccessCodeRepository constructs an AccessCodeRepository.
func NewAccessCodeRepository(db *sqlx.DB) *AccessCodeRepository {
	return &AccessCodeRepository{db: db}
}

const accessCodeColumns = `code, kind, service_type, subscription_id, attendance_id, used, used_at, created_at`

// FindByCode fetches a code exactly as minted.
func (r *AccessCodeRepository) FindByCode(ctx context.Context, code string) (*models.AccessCode, error) {
	query := `SELECT ` + accessCodeColumns + ` FROM access_codes WHERE code = $1`
	var ac models.AccessCode
	if err := r.db.GetContext(ctx, &ac, query, code); err != nil {
		return nil, err
	}
	return &ac, nil
}

// mintCode reserves a fresh code in access_codes. Collisions are skipped with
// ON CONFLICT so the surrounding transaction stays usable.
func mintCode(ctx context.Context, tx *sqlx.Tx, source CodeSource, tmpl models.AccessCode) (string, error) {
	if tmpl.CreatedAt.IsZero() {
		tmpl.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO access_codes (code, kind, service_type, subscription_id, attendance_id, used, used_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8) ON CONFLICT (code) DO NOTHING`
	for attempt := 0; attempt < maxMintAttempts; attempt++ {
		code, err := source.Next()
		if err != nil {
			return "", fmt.Errorf("generate code: %w", err)
		}
		res, err := tx.ExecContext(ctx, query, code, tmpl.Kind, tmpl.ServiceType, tmpl.SubscriptionID, tmpl.AttendanceID, tmpl.Used, tmpl.UsedAt, tmpl.CreatedAt)
		if err != nil {
			return "", fmt.Errorf("insert access code: %w", err)
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return "", fmt.Errorf("access code rows affected: %w", err)
		}
		if affected == 1 {
			return code, nil
		}
	}
	return "", ErrCodeSpaceExhausted
}
