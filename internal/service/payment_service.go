package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/AmrAnter44/sys-body-sub000/internal/dto"
	"github.com/AmrAnter44/sys-body-sub000/internal/models"
	"github.com/AmrAnter44/sys-body-sub000/internal/repository"
	"github.com/AmrAnter44/sys-body-sub000/pkg/config"
	appErrors "github.com/AmrAnter44/sys-body-sub000/pkg/errors"
)

type paymentRepository interface {
	ApplyBalancePayment(ctx context.Context, subscriptionID string, payment *models.Payment, redemption *models.PointsRedemption) (*models.Subscription, error)
	List(ctx context.Context, filter repository.PaymentFilter) ([]models.Payment, int, error)
}

type memberFinder interface {
	FindByNumber(ctx context.Context, number int) (*models.Member, error)
	FindByPhone(ctx context.Context, phone string) (*models.Member, error)
}

// PaymentPartInput is one method's share of a payment. Points parts carry the number of
// points redeemed; their money value is derived from the configured rate.
type PaymentPartInput struct {
	Method string          `json:"method" validate:"required,payment_method"`
	Amount decimal.Decimal `json:"amount"`
	Points int             `json:"points" validate:"gte=0"`
}

// PaymentInput describes how an amount is settled: one method or a split.
type PaymentInput struct {
	Method    string             `json:"method" validate:"omitempty,payment_method"`
	Methods   []PaymentPartInput `json:"methods" validate:"omitempty,dive"`
	StaffName string             `json:"staff_name" validate:"omitempty,max=120"`
}

// PayRemainingRequest applies a payment against the outstanding balance.
type PayRemainingRequest struct {
	SubscriptionRef
	Amount decimal.Decimal `json:"amount"`
	PaymentInput
}

// PaymentServiceConfig carries the loyalty and status settings.
type PaymentServiceConfig struct {
	Points config.PointsConfig
	Rules  StatusRules
}

// PaymentService reconciles payments against subscription balances.
type PaymentService struct {
	repo      paymentRepository
	subs      subscriptionFinder
	members   memberFinder
	gate      *ServiceGate
	cache     *SummaryCache
	metrics   *MetricsService
	points    config.PointsConfig
	rules     StatusRules
	validator *validator.Validate
	logger    *zap.Logger
}

// NewPaymentService constructs a PaymentService.
func NewPaymentService(repo paymentRepository, subs subscriptionFinder, members memberFinder, gate *ServiceGate, cache *SummaryCache, metrics *MetricsService, cfg PaymentServiceConfig, validate *validator.Validate, logger *zap.Logger) *PaymentService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	registerValidations(validate)
	return &PaymentService{
		repo:      repo,
		subs:      subs,
		members:   members,
		gate:      gate,
		cache:     cache,
		metrics:   metrics,
		points:    cfg.Points,
		rules:     cfg.Rules,
		validator: validate,
		logger:    logger,
	}
}

// PayRemaining lowers the remaining amount. Overpayment is rejected and leaves the
// balance unchanged; each call is a new receipt, so callers must re-read the balance
// before retrying an ambiguous failure.
func (s *PaymentService) PayRemaining(ctx context.Context, serviceType models.ServiceType, req PayRemainingRequest) (*dto.PaymentApplied, error) {
	if err := s.gate.Check(serviceType); err != nil {
		return nil, err
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid payment payload")
	}
	if err := checkMoney(req.Amount, "amount", false); err != nil {
		return nil, err
	}
	sub, err := findSubscription(ctx, s.subs, serviceType, req.SubscriptionRef)
	if err != nil {
		return nil, err
	}
	if req.Amount.GreaterThan(sub.RemainingAmount) {
		return nil, appErrors.Clone(appErrors.ErrInvalidAmount, fmt.Sprintf("amount exceeds the remaining balance of %s", sub.RemainingAmount.StringFixed(2)))
	}

	payment, redemption, err := s.plan(ctx, sub, models.PaymentBalance, req.Amount, req.PaymentInput)
	if err != nil {
		return nil, err
	}

	updated, err := s.repo.ApplyBalancePayment(ctx, sub.ID, payment, redemption)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrBalanceExceeded):
			return nil, appErrors.Clone(appErrors.ErrInvalidAmount, "amount exceeds the remaining balance")
		case errors.Is(err, repository.ErrInsufficientPoints):
			return nil, appErrors.Clone(appErrors.ErrInsufficientPoints, "member does not have enough points")
		case errors.Is(err, sql.ErrNoRows):
			return nil, appErrors.Clone(appErrors.ErrSubscriptionNotFound, "subscription not found")
		default:
			return nil, internalError(err, "failed to apply payment")
		}
	}

	s.rules.derive(updated)
	s.metrics.RecordPayment(payment)
	s.cache.Invalidate(ctx, serviceType)
	s.logger.Info("balance payment applied",
		zap.String("service_type", string(serviceType)),
		zap.Int("subscription_number", updated.Number),
		zap.String("amount", payment.Amount.StringFixed(2)),
		zap.String("remaining", updated.RemainingAmount.StringFixed(2)),
		zap.Int64("receipt_number", payment.ReceiptNumber),
	)
	return &dto.PaymentApplied{Subscription: *updated, Receipt: *payment}, nil
}

// ListReceipts returns receipts of a service type, optionally for one subscription.
func (s *PaymentService) ListReceipts(ctx context.Context, filter repository.PaymentFilter) ([]models.Payment, *models.Pagination, error) {
	if err := s.gate.Check(filter.ServiceType); err != nil {
		return nil, nil, err
	}
	payments, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, internalError(err, "failed to list payments")
	}
	return payments, paginate(filter.Page, filter.PageSize, total), nil
}

// plan validates how amount is split across methods and resolves the member paying with
// points. Nothing is written.
func (s *PaymentService) plan(ctx context.Context, sub *models.Subscription, kind models.PaymentKind, amount decimal.Decimal, input PaymentInput) (*models.Payment, *models.PointsRedemption, error) {
	if err := checkMoney(amount, "amount", false); err != nil {
		return nil, nil, err
	}

	inputs := input.Methods
	if len(inputs) == 0 {
		method := strings.ToLower(input.Method)
		if method == "" {
			method = string(models.MethodCash)
		}
		inputs = []PaymentPartInput{{Method: method, Amount: amount}}
	}

	parts := make([]models.PaymentPart, 0, len(inputs))
	seen := make(map[models.PaymentMethod]struct{}, len(inputs))
	sum := decimal.Zero
	pointsUsed := 0
	for _, in := range inputs {
		method := models.PaymentMethod(strings.ToLower(in.Method))
		if !method.Valid() {
			return nil, nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unsupported payment method %q", in.Method))
		}
		if _, dup := seen[method]; dup {
			return nil, nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("payment method %s is repeated", method))
		}
		seen[method] = struct{}{}

		part := models.PaymentPart{Method: method, Amount: in.Amount}
		if method == models.MethodPoints {
			if !s.points.Enabled {
				return nil, nil, appErrors.Clone(appErrors.ErrValidation, "points redemption is disabled")
			}
			switch {
			case in.Points > 0:
				value := s.points.ValueInEGP.Mul(decimal.NewFromInt(int64(in.Points))).Round(2)
				if !in.Amount.IsZero() && !in.Amount.Equal(value) {
					return nil, nil, appErrors.Clone(appErrors.ErrSplitMismatch, fmt.Sprintf("%d points are worth %s", in.Points, value.StringFixed(2)))
				}
				part.Amount = value
				part.PointsUsed = in.Points
			case in.Amount.IsPositive():
				points, err := s.pointsFor(in.Amount)
				if err != nil {
					return nil, nil, err
				}
				part.PointsUsed = points
			default:
				return nil, nil, appErrors.Clone(appErrors.ErrInvalidAmount, "points part needs a positive amount or points")
			}
			pointsUsed += part.PointsUsed
		}
		if err := checkMoney(part.Amount, "payment part", false); err != nil {
			return nil, nil, err
		}
		sum = sum.Add(part.Amount)
		parts = append(parts, part)
	}
	if !sum.Equal(amount) {
		return nil, nil, appErrors.Clone(appErrors.ErrSplitMismatch, fmt.Sprintf("payment parts add up to %s, expected %s", sum.StringFixed(2), amount.StringFixed(2)))
	}

	payment := &models.Payment{Kind: kind, Amount: amount, Parts: parts, StaffName: input.StaffName}
	if pointsUsed == 0 {
		return payment, nil, nil
	}

	member, err := s.payingMember(ctx, sub)
	if err != nil {
		return nil, nil, err
	}
	if member.Points < pointsUsed {
		return nil, nil, appErrors.Clone(appErrors.ErrInsufficientPoints, fmt.Sprintf("member has %d points, %d requested", member.Points, pointsUsed))
	}
	redemption := &models.PointsRedemption{
		MemberID:    member.ID,
		Points:      pointsUsed,
		Description: fmt.Sprintf("%s payment for %s #%d", kind, sub.ServiceType.DisplayName(), sub.Number),
	}
	return payment, redemption, nil
}

// pointsFor prices an amount in points, rounding partial points up.
func (s *PaymentService) pointsFor(amount decimal.Decimal) (int, error) {
	if !s.points.ValueInEGP.IsPositive() {
		return 0, appErrors.Clone(appErrors.ErrValidation, "points value is not configured")
	}
	return int(amount.Div(s.points.ValueInEGP).Ceil().IntPart()), nil
}

// payingMember resolves the loyalty account by member number, then by phone.
func (s *PaymentService) payingMember(ctx context.Context, sub *models.Subscription) (*models.Member, error) {
	var (
		member *models.Member
		err    error
	)
	switch {
	case sub.MemberNumber != nil:
		member, err = s.members.FindByNumber(ctx, *sub.MemberNumber)
	case sub.Phone != "":
		member, err = s.members.FindByPhone(ctx, sub.Phone)
	default:
		return nil, appErrors.Clone(appErrors.ErrMemberNotFound, "subscription has no member to redeem points from")
	}
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrMemberNotFound, "member not found")
		}
		return nil, internalError(err, "failed to load member")
	}
	return member, nil
}
