package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/AmrAnter44/sys-body-sub000/internal/dto"
	"github.com/AmrAnter44/sys-body-sub000/internal/models"
	"github.com/AmrAnter44/sys-body-sub000/internal/repository"
	appErrors "github.com/AmrAnter44/sys-body-sub000/pkg/errors"
)

const dateLayout = "2006-01-02"

type subscriptionFinder interface {
	FindByID(ctx context.Context, id string) (*models.Subscription, error)
	FindByNumber(ctx context.Context, serviceType models.ServiceType, number int) (*models.Subscription, error)
}

type subscriptionRepository interface {
	subscriptionFinder
	List(ctx context.Context, filter models.SubscriptionFilter) ([]models.Subscription, int, error)
	Create(ctx context.Context, sub *models.Subscription, params repository.CreateSubscriptionParams) error
	Update(ctx context.Context, id string, patch models.SubscriptionPatch) (*models.Subscription, error)
	Delete(ctx context.Context, id string) error
	Renew(ctx context.Context, id string, renewal models.SubscriptionRenewal, payment *models.Payment, redemption *models.PointsRedemption) (*models.Subscription, error)
	Summary(ctx context.Context, serviceType models.ServiceType, today, soonUntil time.Time) (*models.SubscriptionSummary, error)
}

// StatusRules drives the derived subscription fields.
type StatusRules struct {
	Location           *time.Location
	ExpiringSoonWindow time.Duration
	Now                func() time.Time
}

func (r StatusRules) now() time.Time {
	if r.Now != nil {
		return r.Now()
	}
	return time.Now()
}

func (r StatusRules) window() time.Duration {
	if r.ExpiringSoonWindow <= 0 {
		return 7 * 24 * time.Hour
	}
	return r.ExpiringSoonWindow
}

func (r StatusRules) derive(sub *models.Subscription) {
	sub.Derive(r.now(), r.Location, r.window())
}

// bounds returns today and the last ExpiringSoon day as UTC calendar dates.
func (r StatusRules) bounds() (time.Time, time.Time) {
	today := models.CalendarDate(r.now(), r.Location)
	return today, today.Add(r.window())
}

// defaultExpiry fills a missing expiry as start plus months, starting today when no start
// date was given. An explicit expiry always wins.
func (r StatusRules) defaultExpiry(start, expiry *time.Time, months int) (*time.Time, *time.Time) {
	if expiry != nil || months <= 0 {
		return start, expiry
	}
	if start == nil {
		today, _ := r.bounds()
		start = &today
	}
	end := start.AddDate(0, months, 0)
	return start, &end
}

// SubscriptionRef addresses a subscription by number or, for Day-Use rows, by id.
type SubscriptionRef struct {
	ID     string `json:"id" form:"id" validate:"omitempty,uuid"`
	Number *int   `json:"number" form:"number"`
}

func findSubscription(ctx context.Context, finder subscriptionFinder, serviceType models.ServiceType, ref SubscriptionRef) (*models.Subscription, error) {
	var (
		sub *models.Subscription
		err error
	)
	switch {
	case ref.ID != "":
		sub, err = finder.FindByID(ctx, ref.ID)
		if err == nil && sub.ServiceType != serviceType {
			err = sql.ErrNoRows
		}
	case ref.Number != nil:
		if *ref.Number < 0 {
			return nil, appErrors.Clone(appErrors.ErrValidation, "Day-Use subscriptions must be addressed by id")
		}
		sub, err = finder.FindByNumber(ctx, serviceType, *ref.Number)
	default:
		return nil, appErrors.Clone(appErrors.ErrValidation, "subscription number or id is required")
	}
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrSubscriptionNotFound, "subscription not found")
		}
		return nil, internalError(err, "failed to load subscription")
	}
	return sub, nil
}

// CreateSubscriptionRequest is the purchase payload.
type CreateSubscriptionRequest struct {
	ClientName         string          `json:"client_name" validate:"required,max=120"`
	Phone              string          `json:"phone" validate:"omitempty,max=30"`
	ProviderName       string          `json:"provider_name" validate:"omitempty,max=120"`
	MemberNumber       *int            `json:"member_number" validate:"omitempty,gt=0"`
	SubscriptionNumber *int            `json:"subscription_number"`
	DayUse             bool            `json:"day_use"`
	SessionsPurchased  int             `json:"sessions_purchased" validate:"gte=0,lte=1000"`
	PricePerSession    decimal.Decimal `json:"price_per_session"`
	RemainingAmount    decimal.Decimal `json:"remaining_amount"`
	StartDate          string          `json:"start_date" validate:"omitempty,datetime=2006-01-02"`
	ExpiryDate         string          `json:"expiry_date" validate:"omitempty,datetime=2006-01-02"`
	DurationMonths     int             `json:"duration_months" validate:"gte=0,lte=60"`
	Payment            PaymentInput    `json:"payment"`
}

// UpdateSubscriptionRequest carries staff corrections. Nil fields are left unchanged.
type UpdateSubscriptionRequest struct {
	SubscriptionRef
	ClientName        *string          `json:"client_name" validate:"omitempty,min=1,max=120"`
	Phone             *string          `json:"phone" validate:"omitempty,max=30"`
	ProviderName      *string          `json:"provider_name" validate:"omitempty,max=120"`
	MemberNumber      *int             `json:"member_number" validate:"omitempty,gt=0"`
	SessionsRemaining *int             `json:"sessions_remaining" validate:"omitempty,gte=0"`
	RemainingAmount   *decimal.Decimal `json:"remaining_amount"`
	StartDate         *string          `json:"start_date" validate:"omitempty,datetime=2006-01-02"`
	ExpiryDate        *string          `json:"expiry_date" validate:"omitempty,datetime=2006-01-02"`
}

// RenewSubscriptionRequest adds a block of sessions to an existing subscription.
type RenewSubscriptionRequest struct {
	SubscriptionRef
	Sessions        int              `json:"sessions" validate:"required,gte=1,lte=1000"`
	PricePerSession *decimal.Decimal `json:"price_per_session"`
	RemainingAmount decimal.Decimal  `json:"remaining_amount"`
	ProviderName    *string          `json:"provider_name" validate:"omitempty,max=120"`
	StartDate       string           `json:"start_date" validate:"omitempty,datetime=2006-01-02"`
	ExpiryDate      string           `json:"expiry_date" validate:"omitempty,datetime=2006-01-02"`
	DurationMonths  int              `json:"duration_months" validate:"gte=0,lte=60"`
	Payment         PaymentInput     `json:"payment"`
}

// SubscriptionService is the ledger over session subscriptions of every service type.
type SubscriptionService struct {
	repo      subscriptionRepository
	payments  *PaymentService
	registry  *CodeRegistry
	gate      *ServiceGate
	cache     *SummaryCache
	metrics   *MetricsService
	rules     StatusRules
	validator *validator.Validate
	logger    *zap.Logger
}

// SubscriptionServiceConfig tunes the ledger.
type SubscriptionServiceConfig struct {
	Rules StatusRules
}

// NewSubscriptionService constructs a SubscriptionService.
func NewSubscriptionService(repo subscriptionRepository, payments *PaymentService, registry *CodeRegistry, gate *ServiceGate, cache *SummaryCache, metrics *MetricsService, cfg SubscriptionServiceConfig, validate *validator.Validate, logger *zap.Logger) *SubscriptionService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	registerValidations(validate)
	return &SubscriptionService{
		repo:      repo,
		payments:  payments,
		registry:  registry,
		gate:      gate,
		cache:     cache,
		metrics:   metrics,
		rules:     cfg.Rules,
		validator: validate,
		logger:    logger,
	}
}

// List returns derived subscriptions plus pagination data.
func (s *SubscriptionService) List(ctx context.Context, filter models.SubscriptionFilter) ([]models.Subscription, *models.Pagination, error) {
	if err := s.gate.Check(filter.ServiceType); err != nil {
		return nil, nil, err
	}
	if filter.Status != nil && !filter.Status.Valid() {
		return nil, nil, appErrors.Clone(appErrors.ErrValidation, "invalid status filter")
	}
	if filter.Band != nil && !filter.Band.Valid() {
		return nil, nil, appErrors.Clone(appErrors.ErrValidation, "invalid session band filter")
	}
	if filter.Kind != nil && !filter.Kind.Valid() {
		return nil, nil, appErrors.Clone(appErrors.ErrValidation, "invalid kind filter")
	}
	filter.Today, filter.SoonUntil = s.rules.bounds()

	subs, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, internalError(err, "failed to list subscriptions")
	}
	for i := range subs {
		s.rules.derive(&subs[i])
	}
	return subs, paginate(filter.Page, filter.PageSize, total), nil
}

// Get returns one derived subscription.
func (s *SubscriptionService) Get(ctx context.Context, serviceType models.ServiceType, ref SubscriptionRef) (*models.Subscription, error) {
	if err := s.gate.Check(serviceType); err != nil {
		return nil, err
	}
	sub, err := findSubscription(ctx, s.repo, serviceType, ref)
	if err != nil {
		return nil, err
	}
	s.rules.derive(sub)
	return sub, nil
}

// Create validates a purchase, reserves the card code and records the up-front payment.
func (s *SubscriptionService) Create(ctx context.Context, serviceType models.ServiceType, req CreateSubscriptionRequest) (*dto.SubscriptionCreated, error) {
	if err := s.gate.Check(serviceType); err != nil {
		return nil, err
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid subscription payload")
	}

	sub := &models.Subscription{
		ServiceType:     serviceType,
		ClientName:      req.ClientName,
		Phone:           req.Phone,
		ProviderName:    req.ProviderName,
		MemberNumber:    req.MemberNumber,
		PricePerSession: req.PricePerSession,
		RemainingAmount: req.RemainingAmount,
	}

	autoNumber := false
	dayUse := req.DayUse || (req.SubscriptionNumber != nil && *req.SubscriptionNumber < 0)
	switch {
	case dayUse:
		sub.Number = models.DayUseNumber
		sub.SessionsPurchased = 1
	case req.SubscriptionNumber != nil:
		if *req.SubscriptionNumber == 0 {
			return nil, appErrors.Clone(appErrors.ErrValidation, "subscription number must be positive")
		}
		sub.Number = *req.SubscriptionNumber
		sub.SessionsPurchased = req.SessionsPurchased
	default:
		autoNumber = true
		sub.SessionsPurchased = req.SessionsPurchased
	}
	if sub.SessionsPurchased < 1 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "sessions_purchased must be at least 1")
	}
	sub.SessionsRemaining = sub.SessionsPurchased

	if err := checkMoney(sub.PricePerSession, "price_per_session", true); err != nil {
		return nil, err
	}
	if err := checkMoney(sub.RemainingAmount, "remaining_amount", true); err != nil {
		return nil, err
	}
	total := sub.Total()
	if sub.RemainingAmount.GreaterThan(total) {
		return nil, appErrors.Clone(appErrors.ErrInvalidAmount, fmt.Sprintf("remaining_amount cannot exceed the total price %s", total.StringFixed(2)))
	}

	if !dayUse {
		start, expiry, err := parseDateRange(req.StartDate, req.ExpiryDate)
		if err != nil {
			return nil, err
		}
		start, expiry = s.rules.defaultExpiry(start, expiry, req.DurationMonths)
		sub.StartDate, sub.ExpiryDate = start, expiry
	}

	var (
		payment    *models.Payment
		redemption *models.PointsRedemption
	)
	if paid := total.Sub(sub.RemainingAmount); paid.IsPositive() {
		var err error
		payment, redemption, err = s.payments.plan(ctx, sub, models.PaymentPurchase, paid, req.Payment)
		if err != nil {
			return nil, err
		}
		payment.PreviousRemaining = total
		payment.NewRemaining = sub.RemainingAmount
	}

	err := s.repo.Create(ctx, sub, repository.CreateSubscriptionParams{
		AutoNumber: autoNumber,
		Codes:      s.registry,
		Payment:    payment,
		Redemption: redemption,
	})
	if err != nil {
		return nil, s.translateWriteError(err, sub.Number, "failed to create subscription")
	}

	s.rules.derive(sub)
	s.metrics.RecordPayment(payment)
	s.cache.Invalidate(ctx, serviceType)
	s.logger.Info("subscription created",
		zap.String("service_type", string(serviceType)),
		zap.Int("subscription_number", sub.Number),
		zap.Int("sessions", sub.SessionsPurchased),
	)

	display, image := s.registry.render(sub.Code)
	return &dto.SubscriptionCreated{Subscription: *sub, DisplayCode: display, CodeImage: image, Receipt: payment}, nil
}

// Update applies staff corrections, including raising sessions_remaining after a
// mistaken scan.
func (s *SubscriptionService) Update(ctx context.Context, serviceType models.ServiceType, req UpdateSubscriptionRequest) (*models.Subscription, error) {
	if err := s.gate.Check(serviceType); err != nil {
		return nil, err
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid subscription payload")
	}
	current, err := findSubscription(ctx, s.repo, serviceType, req.SubscriptionRef)
	if err != nil {
		return nil, err
	}

	patch := models.SubscriptionPatch{
		ClientName:        req.ClientName,
		Phone:             req.Phone,
		ProviderName:      req.ProviderName,
		MemberNumber:      req.MemberNumber,
		SessionsRemaining: req.SessionsRemaining,
		RemainingAmount:   req.RemainingAmount,
	}
	if req.SessionsRemaining != nil && *req.SessionsRemaining > current.SessionsPurchased {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("sessions_remaining cannot exceed sessions_purchased (%d)", current.SessionsPurchased))
	}
	if req.RemainingAmount != nil {
		if err := checkMoney(*req.RemainingAmount, "remaining_amount", true); err != nil {
			return nil, err
		}
		if req.RemainingAmount.GreaterThan(current.Total()) {
			return nil, appErrors.Clone(appErrors.ErrInvalidAmount, "remaining_amount cannot exceed the total price")
		}
	}
	if req.StartDate != nil || req.ExpiryDate != nil {
		start, expiry := current.StartDate, current.ExpiryDate
		if req.StartDate != nil {
			if start, err = parseDate(*req.StartDate); err != nil {
				return nil, err
			}
			patch.StartDate = start
		}
		if req.ExpiryDate != nil {
			if expiry, err = parseDate(*req.ExpiryDate); err != nil {
				return nil, err
			}
			patch.ExpiryDate = expiry
		}
		if start != nil && expiry != nil && !expiry.After(*start) {
			return nil, appErrors.Clone(appErrors.ErrValidation, "expiry_date must be after start_date")
		}
	}
	if patch.Empty() {
		s.rules.derive(current)
		return current, nil
	}

	updated, err := s.repo.Update(ctx, current.ID, patch)
	if err != nil {
		return nil, s.translateWriteError(err, current.Number, "failed to update subscription")
	}
	s.rules.derive(updated)
	s.cache.Invalidate(ctx, serviceType)
	s.logger.Info("subscription updated", zap.String("service_type", string(serviceType)), zap.String("subscription_id", updated.ID))
	return updated, nil
}

// Delete removes a subscription together with its attendance history, codes and receipts.
func (s *SubscriptionService) Delete(ctx context.Context, serviceType models.ServiceType, ref SubscriptionRef) error {
	if err := s.gate.Check(serviceType); err != nil {
		return err
	}
	sub, err := findSubscription(ctx, s.repo, serviceType, ref)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, sub.ID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrSubscriptionNotFound, "subscription not found")
		}
		return internalError(err, "failed to delete subscription")
	}
	s.cache.Invalidate(ctx, serviceType)
	s.logger.Info("subscription deleted",
		zap.String("service_type", string(serviceType)),
		zap.Int("subscription_number", sub.Number),
		zap.String("subscription_id", sub.ID),
	)
	return nil
}

// Renew adds sessions and outstanding balance and records the renewal receipt.
func (s *SubscriptionService) Renew(ctx context.Context, serviceType models.ServiceType, req RenewSubscriptionRequest) (*dto.SubscriptionRenewed, error) {
	if err := s.gate.Check(serviceType); err != nil {
		return nil, err
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid renewal payload")
	}
	current, err := findSubscription(ctx, s.repo, serviceType, req.SubscriptionRef)
	if err != nil {
		return nil, err
	}
	if current.IsDayUse() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "Day-Use subscriptions cannot be renewed")
	}

	price := current.PricePerSession
	if req.PricePerSession != nil {
		price = *req.PricePerSession
	}
	if err := checkMoney(price, "price_per_session", true); err != nil {
		return nil, err
	}
	if err := checkMoney(req.RemainingAmount, "remaining_amount", true); err != nil {
		return nil, err
	}
	renewalTotal := price.Mul(decimal.NewFromInt(int64(req.Sessions)))
	if req.RemainingAmount.GreaterThan(renewalTotal) {
		return nil, appErrors.Clone(appErrors.ErrInvalidAmount, "remaining_amount cannot exceed the renewal price")
	}

	renewal := models.SubscriptionRenewal{
		AddSessions:     req.Sessions,
		PricePerSession: price,
		AddRemaining:    req.RemainingAmount,
		ProviderName:    req.ProviderName,
	}
	if req.StartDate != "" || req.ExpiryDate != "" || req.DurationMonths > 0 {
		start, expiry, err := parseDateRange(req.StartDate, req.ExpiryDate)
		if err != nil {
			return nil, err
		}
		start, expiry = s.rules.defaultExpiry(start, expiry, req.DurationMonths)
		if start == nil {
			start = current.StartDate
		}
		if start != nil && expiry != nil && !expiry.After(*start) {
			return nil, appErrors.Clone(appErrors.ErrValidation, "expiry_date must be after start_date")
		}
		renewal.StartDate, renewal.ExpiryDate = start, expiry
	}

	paid := renewalTotal.Sub(req.RemainingAmount)
	payment := &models.Payment{Kind: models.PaymentRenewal, Amount: decimal.Zero, StaffName: req.Payment.StaffName}
	var redemption *models.PointsRedemption
	if paid.IsPositive() {
		payment, redemption, err = s.payments.plan(ctx, current, models.PaymentRenewal, paid, req.Payment)
		if err != nil {
			return nil, err
		}
	}

	updated, err := s.repo.Renew(ctx, current.ID, renewal, payment, redemption)
	if err != nil {
		return nil, s.translateWriteError(err, current.Number, "failed to renew subscription")
	}
	s.rules.derive(updated)
	s.metrics.RecordPayment(payment)
	s.cache.Invalidate(ctx, serviceType)
	s.logger.Info("subscription renewed",
		zap.String("service_type", string(serviceType)),
		zap.Int("subscription_number", updated.Number),
		zap.Int("added_sessions", req.Sessions),
		zap.Int64("receipt_number", payment.ReceiptNumber),
	)
	return &dto.SubscriptionRenewed{Subscription: *updated, Receipt: *payment}, nil
}

// Summary returns counts and balances for a service type, cached briefly.
func (s *SubscriptionService) Summary(ctx context.Context, serviceType models.ServiceType) (*models.SubscriptionSummary, error) {
	if err := s.gate.Check(serviceType); err != nil {
		return nil, err
	}
	var cached models.SubscriptionSummary
	if s.cache.Load(ctx, serviceType, &cached) {
		return &cached, nil
	}

	today, soonUntil := s.rules.bounds()
	summary, err := s.repo.Summary(ctx, serviceType, today, soonUntil)
	if err != nil {
		return nil, internalError(err, "failed to summarise subscriptions")
	}
	s.cache.Store(ctx, serviceType, summary)
	return summary, nil
}

func (s *SubscriptionService) translateWriteError(err error, number int, message string) error {
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return appErrors.Clone(appErrors.ErrSubscriptionNotFound, "subscription not found")
	case errors.Is(err, repository.ErrDuplicateNumber):
		return appErrors.Clone(appErrors.ErrDuplicateNumber, fmt.Sprintf("subscription number %d already exists", number))
	case errors.Is(err, repository.ErrConstraint):
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "subscription values out of range")
	case errors.Is(err, repository.ErrInsufficientPoints):
		return appErrors.Clone(appErrors.ErrInsufficientPoints, "member does not have enough points")
	case errors.Is(err, repository.ErrCodeSpaceExhausted):
		s.metrics.RecordCodeMintFailure()
		return internalError(err, "failed to reserve a unique code")
	default:
		return internalError(err, message)
	}
}

// checkMoney rejects negative amounts and sub-cent precision.
func checkMoney(amount decimal.Decimal, field string, allowZero bool) error {
	if amount.IsNegative() || (!allowZero && amount.IsZero()) {
		return appErrors.Clone(appErrors.ErrInvalidAmount, fmt.Sprintf("%s must be positive", field))
	}
	if !amount.Equal(amount.Round(2)) {
		return appErrors.Clone(appErrors.ErrInvalidAmount, fmt.Sprintf("%s has more than two decimals", field))
	}
	return nil
}

func parseDate(raw string) (*time.Time, error) {
	if raw == "" {
		return nil, nil
	}
	t, err := time.ParseInLocation(dateLayout, raw, time.UTC)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "dates must use YYYY-MM-DD")
	}
	return &t, nil
}

func parseDateRange(startRaw, expiryRaw string) (*time.Time, *time.Time, error) {
	start, err := parseDate(startRaw)
	if err != nil {
		return nil, nil, err
	}
	expiry, err := parseDate(expiryRaw)
	if err != nil {
		return nil, nil, err
	}
	if start != nil && expiry != nil && !expiry.After(*start) {
		return nil, nil, appErrors.Clone(appErrors.ErrValidation, "expiry_date must be after start_date")
	}
	return start, expiry, nil
}
