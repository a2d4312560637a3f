package repository

import (
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"
)

// Sentinel errors returned by the conditional writes. Services translate them into
// typed application errors.
var (
	ErrNoSessionsRemaining = errors.New("no sessions remaining")
	ErrBalanceExceeded     = errors.New("payment exceeds remaining amount")
	ErrInsufficientPoints  = errors.New("insufficient points")
	ErrStaffCooldown       = errors.New("staff checkout cooldown active")
	ErrStaffAlreadyPresent = errors.New("staff member already has an open shift")
	ErrDuplicateNumber     = errors.New("number already in use")
	ErrConstraint          = errors.New("value violates a table constraint")
	ErrCodeSpaceExhausted  = errors.New("could not mint a unique code")
)

// CooldownError reports how long a staff member must wait before checking in again.
type CooldownError struct {
	Remaining time.Duration
}

func (e *CooldownError) Error() string {
	return fmt.Sprintf("%s: %s remaining", ErrStaffCooldown.Error(), e.Remaining.Round(time.Second))
}

// Is lets errors.Is match ErrStaffCooldown.
func (e *CooldownError) Is(target error) bool {
	return target == ErrStaffCooldown
}

const (
	pqUniqueViolation = "23505"
	pqCheckViolation  = "23514"
)

// translatePQ maps constraint violations onto repository sentinels. Other errors are
// wrapped with op.
func translatePQ(err error, op string) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch string(pqErr.Code) {
		case pqUniqueViolation:
			return fmt.Errorf("%s: %w (%s)", op, ErrDuplicateNumber, pqErr.Constraint)
		case pqCheckViolation:
			return fmt.Errorf("%s: %w (%s)", op, ErrConstraint, pqErr.Constraint)
		}
	}
	return fmt.Errorf("%s: %w", op, err)
}

func normalizePage(page, size int) (int, int, int) {
	if page < 1 {
		page = 1
	}
	if size <= 0 || size > 100 {
		size = 20
	}
	return page, size, (page - 1) * size
}

func isDuplicate(err error) bool {
	return errors.Is(err, ErrDuplicateNumber)
}
