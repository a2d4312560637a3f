package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/AmrAnter44/sys-body-sub000/internal/repository"
)

type staleShiftCloser interface {
	CloseStale(ctx context.Context, now time.Time, maxShift time.Duration) (int64, error)
}

// ShiftSweeper closes open shifts that outlived the maximum shift length so the
// presence board does not show forgotten check-outs as present.
type ShiftSweeper struct {
	shifts staleShiftCloser
	rules  repository.ShiftRules
	logger *zap.Logger
	now    func() time.Time
}

// NewShiftSweeper constructs a ShiftSweeper.
func NewShiftSweeper(shifts staleShiftCloser, rules repository.ShiftRules, logger *zap.Logger) *ShiftSweeper {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ShiftSweeper{shifts: shifts, rules: rules, logger: logger, now: time.Now}
}

// Sweep runs one pass. It is the task handed to the periodic job runner.
func (s *ShiftSweeper) Sweep(ctx context.Context) error {
	if s.rules.MaxShift <= 0 {
		return nil
	}
	closed, err := s.shifts.CloseStale(ctx, s.now().UTC(), s.rules.MaxShift)
	if err != nil {
		return internalError(err, "failed to close stale shifts")
	}
	if closed > 0 {
		s.logger.Info("auto-closed stale shifts", zap.Int64("count", closed), zap.Duration("max_shift", s.rules.MaxShift))
	}
	return nil
}
