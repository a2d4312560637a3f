package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/AmrAnter44/sys-body-sub000/internal/models"
	"github.com/AmrAnter44/sys-body-sub000/internal/repository"
	appErrors "github.com/AmrAnter44/sys-body-sub000/pkg/errors"
)

type memberRepository interface {
	FindByNumber(ctx context.Context, number int) (*models.Member, error)
	Create(ctx context.Context, member *models.Member) error
	AdjustPoints(ctx context.Context, memberID string, entry models.PointsEntry) (*models.Member, error)
	History(ctx context.Context, memberID string, limit int) ([]models.PointsEntry, error)
}

// CreateMemberRequest opens a loyalty account.
type CreateMemberRequest struct {
	MemberNumber *int   `json:"member_number" validate:"omitempty,min=1"`
	Name         string `json:"name" validate:"required,max=120"`
	Phone        string `json:"phone" validate:"required,max=30"`
	Points       int    `json:"points" validate:"gte=0"`
}

// AwardPointsRequest credits or corrects a balance. Negative points are only accepted as
// an adjustment.
type AwardPointsRequest struct {
	Points      int                 `json:"points" validate:"required,ne=0"`
	Action      models.PointsAction `json:"action" validate:"omitempty,oneof=earned adjusted"`
	Description string              `json:"description" validate:"max=255"`
}

// MemberPoints is a balance plus its recent history.
type MemberPoints struct {
	Member  models.Member        `json:"member"`
	History []models.PointsEntry `json:"history"`
}

// MemberService manages loyalty accounts.
type MemberService struct {
	repo      memberRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewMemberService constructs a MemberService.
func NewMemberService(repo memberRepository, validate *validator.Validate, logger *zap.Logger) *MemberService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MemberService{repo: repo, validator: validate, logger: logger}
}

// Create opens an account, assigning the next member number when none is given.
func (s *MemberService) Create(ctx context.Context, req CreateMemberRequest) (*models.Member, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid member payload")
	}
	member := &models.Member{
		Name:   strings.TrimSpace(req.Name),
		Phone:  strings.TrimSpace(req.Phone),
		Points: req.Points,
	}
	if req.MemberNumber != nil {
		member.MemberNumber = *req.MemberNumber
	}
	if err := s.repo.Create(ctx, member); err != nil {
		if errors.Is(err, repository.ErrDuplicateNumber) {
			return nil, appErrors.Clone(appErrors.ErrDuplicateNumber, "member number already used")
		}
		return nil, internalError(err, "failed to create member")
	}
	s.logger.Info("member created", zap.Int("member_number", member.MemberNumber))
	return member, nil
}

// Points returns the balance and latest history of a member.
func (s *MemberService) Points(ctx context.Context, number, limit int) (*MemberPoints, error) {
	member, err := s.load(ctx, number)
	if err != nil {
		return nil, err
	}
	history, err := s.repo.History(ctx, member.ID, limit)
	if err != nil {
		return nil, internalError(err, "failed to load points history")
	}
	if history == nil {
		history = []models.PointsEntry{}
	}
	return &MemberPoints{Member: *member, History: history}, nil
}

// Award applies a manual points movement.
func (s *MemberService) Award(ctx context.Context, number int, req AwardPointsRequest) (*models.Member, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid points payload")
	}
	action := req.Action
	if action == "" {
		action = models.PointsEarned
	}
	if req.Points < 0 && action != models.PointsAdjusted {
		return nil, appErrors.Clone(appErrors.ErrValidation, "only adjustments may remove points")
	}
	member, err := s.load(ctx, number)
	if err != nil {
		return nil, err
	}
	description := strings.TrimSpace(req.Description)
	if description == "" {
		description = string(action)
	}
	updated, err := s.repo.AdjustPoints(ctx, member.ID, models.PointsEntry{
		Points:      req.Points,
		Action:      action,
		Description: description,
	})
	if err != nil {
		if errors.Is(err, repository.ErrInsufficientPoints) {
			return nil, appErrors.Clone(appErrors.ErrInsufficientPoints, "adjustment exceeds the points balance")
		}
		return nil, internalError(err, "failed to adjust points")
	}
	s.logger.Info("points adjusted",
		zap.Int("member_number", number),
		zap.Int("points", req.Points),
		zap.Int("balance", updated.Points),
	)
	return updated, nil
}

func (s *MemberService) load(ctx context.Context, number int) (*models.Member, error) {
	member, err := s.repo.FindByNumber(ctx, number)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrMemberNotFound, "member not found")
		}
		return nil, internalError(err, "failed to load member")
	}
	return member, nil
}
