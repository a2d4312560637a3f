package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/AmrAnter44/sys-body-sub000/internal/dto"
	"github.com/AmrAnter44/sys-body-sub000/internal/models"
	"github.com/AmrAnter44/sys-body-sub000/internal/repository"
	"github.com/AmrAnter44/sys-body-sub000/pkg/codes"
	appErrors "github.com/AmrAnter44/sys-body-sub000/pkg/errors"
	applog "github.com/AmrAnter44/sys-body-sub000/pkg/logger"
)

type sessionRepository interface {
	Consume(ctx context.Context, params repository.ConsumeParams) (*repository.ConsumeResult, error)
	List(ctx context.Context, filter models.SessionAttendanceFilter) ([]models.SessionAttendance, int, error)
	Delete(ctx context.Context, id string) error
}

type staffFinder interface {
	FindByNumber(ctx context.Context, number int) (*models.Staff, error)
}

type shiftToggler interface {
	Toggle(ctx context.Context, staffID string, now time.Time, rules repository.ShiftRules) (*repository.ToggleResult, error)
}

// RegisterSessionRequest records a session directly against a subscription.
type RegisterSessionRequest struct {
	SubscriptionRef
	SessionDate *time.Time `json:"session_date"`
	Notes       *string    `json:"notes" validate:"omitempty,max=500"`
}

// CheckInConfig tunes the scanner paths.
type CheckInConfig struct {
	ScanTimeout  time.Duration
	DedupeWindow time.Duration
	Shift        repository.ShiftRules
	Rules        StatusRules
}

// CheckInService consumes client sessions and toggles staff shifts from scanner input.
type CheckInService struct {
	sessions  sessionRepository
	subs      subscriptionFinder
	staff     staffFinder
	shifts    shiftToggler
	registry  *CodeRegistry
	gate      *ServiceGate
	guard     ScanGuard
	cache     *SummaryCache
	metrics   *MetricsService
	cfg       CheckInConfig
	validator *validator.Validate
	logger    *zap.Logger
}

// NewCheckInService constructs a CheckInService. A nil guard falls back to the in-process one.
func NewCheckInService(sessions sessionRepository, subs subscriptionFinder, staff staffFinder, shifts shiftToggler, registry *CodeRegistry, gate *ServiceGate, guard ScanGuard, cache *SummaryCache, metrics *MetricsService, cfg CheckInConfig, validate *validator.Validate, logger *zap.Logger) *CheckInService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if guard == nil {
		guard = NewMemoryScanGuard()
	}
	registerValidations(validate)
	return &CheckInService{
		sessions:  sessions,
		subs:      subs,
		staff:     staff,
		shifts:    shifts,
		registry:  registry,
		gate:      gate,
		guard:     guard,
		cache:     cache,
		metrics:   metrics,
		cfg:       cfg,
		validator: validate,
		logger:    logger,
	}
}

// RegisterSession consumes one session, records the attendance row and mints the
// receipt code, all or nothing.
func (s *CheckInService) RegisterSession(ctx context.Context, serviceType models.ServiceType, req RegisterSessionRequest, operator string) (*dto.SessionRegistration, error) {
	if err := s.gate.Check(serviceType); err != nil {
		return nil, err
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid session payload")
	}
	sub, err := findSubscription(ctx, s.subs, serviceType, req.SubscriptionRef)
	if err != nil {
		return nil, err
	}

	now := s.cfg.Rules.now().UTC()
	entry := &models.SessionAttendance{Notes: req.Notes, Attended: true, AttendedAt: &now, AttendedBy: operatorName(operator)}
	if req.SessionDate != nil {
		entry.SessionDate = req.SessionDate.UTC()
	}
	result, err := s.sessions.Consume(ctx, repository.ConsumeParams{
		SubscriptionID: sub.ID,
		Attendance:     entry,
		Codes:          s.registry,
	})
	if err != nil {
		return nil, s.consumeError(ctx, err, sub)
	}

	s.rules().derive(&result.Subscription)
	s.metrics.RecordSessionCheckIn(serviceType, "ok")
	s.cache.Invalidate(ctx, serviceType)
	applog.WithContext(ctx, s.logger).Info("session registered",
		zap.String("service_type", string(serviceType)),
		zap.Int("subscription_number", result.Subscription.Number),
		zap.Int("sessions_remaining", result.Subscription.SessionsRemaining),
	)

	display, image := s.registry.render(result.Code)
	return &dto.SessionRegistration{
		Attendance:   result.Attendance,
		Subscription: result.Subscription,
		Code:         result.Code,
		DisplayCode:  display,
		CodeImage:    image,
	}, nil
}

// CheckIn applies a scanned value: a staff badge toggles the shift, anything else
// consumes a session of the subscription the code belongs to. operator is empty for
// anonymous self check-in.
func (s *CheckInService) CheckIn(ctx context.Context, req dto.CheckInRequest, operator string) (*dto.CheckInResult, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid check-in payload")
	}
	if s.cfg.ScanTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.ScanTimeout)
		defer cancel()
	}

	scan, err := s.registry.ResolveScan(req.Code)
	if err != nil {
		return nil, err
	}
	if scan.Kind == codes.ScanKindStaff {
		return s.toggleStaff(ctx, scan)
	}
	return s.consumeCode(ctx, scan.Key, req.ServiceType, operator)
}

// Preview reports whether a code would be accepted without consuming anything.
func (s *CheckInService) Preview(ctx context.Context, raw string, serviceType models.ServiceType) (*dto.CodePreview, error) {
	scan, err := s.registry.ResolveScan(raw)
	if err != nil {
		return nil, err
	}
	if scan.Kind == codes.ScanKindStaff {
		return nil, appErrors.Clone(appErrors.ErrValidation, "staff badges cannot be previewed")
	}
	target, err := s.resolveClientCode(ctx, scan.Key, serviceType)
	if err != nil {
		return nil, err
	}
	sub, err := findSubscription(ctx, s.subs, target.serviceType, SubscriptionRef{ID: target.subscriptionID})
	if err != nil {
		return nil, err
	}
	s.rules().derive(sub)

	preview := &dto.CodePreview{Code: scan.Key, Subscription: sub, CanCheckIn: true}
	switch {
	case target.spent:
		preview.CanCheckIn, preview.Reason = false, "code already used"
	case !s.gate.Enabled(sub.ServiceType):
		preview.CanCheckIn, preview.Reason = false, "service is disabled"
	case sub.SessionsRemaining <= 0:
		preview.CanCheckIn, preview.Reason = false, "no sessions remaining"
	}
	return preview, nil
}

// ListSessions returns attendance history.
func (s *CheckInService) ListSessions(ctx context.Context, filter models.SessionAttendanceFilter) ([]models.SessionAttendance, *models.Pagination, error) {
	if err := s.gate.Check(filter.ServiceType); err != nil {
		return nil, nil, err
	}
	rows, total, err := s.sessions.List(ctx, filter)
	if err != nil {
		return nil, nil, internalError(err, "failed to list sessions")
	}
	return rows, paginate(filter.Page, filter.PageSize, total), nil
}

// DeleteSession removes an attendance row. The consumed session is not given back.
func (s *CheckInService) DeleteSession(ctx context.Context, serviceType models.ServiceType, id string) error {
	if err := s.gate.Check(serviceType); err != nil {
		return err
	}
	if err := s.sessions.Delete(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "attendance record not found")
		}
		return internalError(err, "failed to delete session")
	}
	s.logger.Info("session attendance deleted", zap.String("service_type", string(serviceType)), zap.String("attendance_id", id))
	return nil
}

type clientTarget struct {
	subscriptionID string
	serviceType    models.ServiceType
	code           string
	spent          bool
}

// resolveClientCode maps a client code to its subscription. A short number typed at the
// desk is read as a subscription number of serviceType when no code matches.
func (s *CheckInService) resolveClientCode(ctx context.Context, key string, serviceType models.ServiceType) (*clientTarget, error) {
	ac, err := s.registry.Lookup(ctx, key)
	if err == nil {
		if serviceType != "" && ac.ServiceType != serviceType {
			return nil, appErrors.Clone(appErrors.ErrCodeNotFound, fmt.Sprintf("code does not belong to %s", serviceType.DisplayName()))
		}
		return &clientTarget{
			subscriptionID: ac.SubscriptionID,
			serviceType:    ac.ServiceType,
			code:           ac.Code,
			spent:          ac.Kind == models.CodeKindSession,
		}, nil
	}
	if appErrors.KindOf(err) != appErrors.KindNotFound || serviceType == "" {
		return nil, err
	}
	number, convErr := strconv.Atoi(key)
	if convErr != nil || number < 0 {
		return nil, err
	}
	if gateErr := s.gate.Check(serviceType); gateErr != nil {
		return nil, gateErr
	}
	sub, findErr := findSubscription(ctx, s.subs, serviceType, SubscriptionRef{Number: &number})
	if findErr != nil {
		if appErrors.KindOf(findErr) == appErrors.KindNotFound {
			return nil, err
		}
		return nil, findErr
	}
	return &clientTarget{subscriptionID: sub.ID, serviceType: sub.ServiceType}, nil
}

func (s *CheckInService) consumeCode(ctx context.Context, key string, serviceType models.ServiceType, operator string) (*dto.CheckInResult, error) {
	log := applog.WithContext(ctx, s.logger)
	target, err := s.resolveClientCode(ctx, key, serviceType)
	if err != nil {
		s.recordRejection(serviceType, err)
		return nil, err
	}
	if target.spent {
		err := appErrors.Clone(appErrors.ErrCodeAlreadyUsed, "this session code was already used")
		s.recordRejection(target.serviceType, err)
		return nil, err
	}
	if err := s.gate.Check(target.serviceType); err != nil {
		return nil, err
	}

	guardKey := string(target.serviceType) + ":" + key
	if s.cfg.DedupeWindow > 0 {
		acquired, guardErr := s.guard.Acquire(ctx, guardKey, s.cfg.DedupeWindow)
		switch {
		case guardErr != nil:
			log.Warn("scan guard unavailable", zap.Error(guardErr))
		case !acquired:
			err := appErrors.Clone(appErrors.ErrCodeAlreadyUsed, "code was scanned moments ago")
			s.recordRejection(target.serviceType, err)
			return nil, err
		}
	}

	now := s.cfg.Rules.now().UTC()
	result, err := s.sessions.Consume(ctx, repository.ConsumeParams{
		SubscriptionID: target.subscriptionID,
		Attendance: &models.SessionAttendance{
			SessionDate: now,
			Attended:    true,
			AttendedAt:  &now,
			AttendedBy:  operatorName(operator),
		},
		PresentedCode: target.code,
	})
	if err != nil {
		if s.cfg.DedupeWindow > 0 {
			if releaseErr := s.guard.Release(context.WithoutCancel(ctx), guardKey); releaseErr != nil {
				log.Warn("release scan guard", zap.Error(releaseErr))
			}
		}
		return nil, s.consumeError(ctx, err, &models.Subscription{ServiceType: target.serviceType})
	}

	sub := result.Subscription
	s.rules().derive(&sub)
	s.metrics.RecordSessionCheckIn(sub.ServiceType, "ok")
	s.cache.Invalidate(ctx, sub.ServiceType)
	log.Info("session checked in",
		zap.String("service_type", string(sub.ServiceType)),
		zap.Int("subscription_number", sub.Number),
		zap.Int("sessions_remaining", sub.SessionsRemaining),
	)
	attendance := result.Attendance
	return &dto.CheckInResult{
		Kind:         string(codes.ScanKindClientCode),
		Action:       dto.ActionSessionConsumed,
		Message:      fmt.Sprintf("Welcome %s, %d sessions left", sub.ClientName, sub.SessionsRemaining),
		Attendance:   &attendance,
		Subscription: &sub,
	}, nil
}

func (s *CheckInService) toggleStaff(ctx context.Context, scan codes.Scan) (*dto.CheckInResult, error) {
	log := applog.WithContext(ctx, s.logger)
	staff, err := s.staff.FindByNumber(ctx, scan.StaffNumber)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrUnknownStaff, fmt.Sprintf("no staff member for badge %s", scan.Key))
		}
		return nil, internalError(err, "failed to load staff")
	}
	if !staff.IsActive {
		return nil, appErrors.Clone(appErrors.ErrUnknownStaff, fmt.Sprintf("staff member %s is inactive", scan.Key))
	}

	now := s.cfg.Rules.now().UTC()
	result, err := s.shifts.Toggle(ctx, staff.ID, now, s.cfg.Shift)
	if err != nil {
		var cooldown *repository.CooldownError
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return nil, appErrors.Clone(appErrors.ErrUnknownStaff, fmt.Sprintf("staff member %s is inactive", scan.Key))
		case errors.As(err, &cooldown):
			return nil, appErrors.Clone(appErrors.ErrStaffCooldown, fmt.Sprintf("%s checked out recently, try again in %s", staff.Name, cooldown.Remaining.Round(time.Second)))
		case errors.Is(err, repository.ErrStaffAlreadyPresent):
			return nil, appErrors.Clone(appErrors.ErrConflict, fmt.Sprintf("%s is already checked in", staff.Name))
		default:
			return nil, internalError(err, "failed to record staff attendance")
		}
	}

	staff.Derive()
	staff.Present = result.Action == repository.ToggleCheckIn
	shift := dto.NewStaffShift(result.Shift, now)
	if result.AutoClosed != nil {
		log.Warn("stale shift auto-closed",
			zap.String("staff_code", staff.StaffCode),
			zap.Time("check_in", result.AutoClosed.CheckIn),
		)
	}
	s.metrics.RecordStaffToggle(string(result.Action))

	out := &dto.CheckInResult{Kind: string(codes.ScanKindStaff), Staff: staff, Shift: &shift}
	if result.Action == repository.ToggleCheckIn {
		out.Action = dto.ActionStaffCheckIn
		out.Message = fmt.Sprintf("Welcome %s, checked in at %s", staff.Name, now.In(s.location()).Format("15:04"))
		log.Info("staff checked in", zap.String("staff_code", staff.StaffCode))
	} else {
		out.Action = dto.ActionStaffCheckOut
		out.Message = fmt.Sprintf("Goodbye %s, shift lasted %s", staff.Name, time.Duration(shift.DurationMinutes)*time.Minute)
		log.Info("staff checked out", zap.String("staff_code", staff.StaffCode), zap.Int("duration_minutes", shift.DurationMinutes))
	}
	return out, nil
}

func (s *CheckInService) consumeError(ctx context.Context, err error, sub *models.Subscription) error {
	var out error
	switch {
	case errors.Is(err, repository.ErrNoSessionsRemaining):
		msg := "no sessions remaining"
		if sub.ClientName != "" {
			msg = fmt.Sprintf("%s has no sessions remaining", sub.ClientName)
		}
		out = appErrors.Clone(appErrors.ErrNoSessionsRemaining, msg)
	case errors.Is(err, sql.ErrNoRows):
		out = appErrors.Clone(appErrors.ErrSubscriptionNotFound, "subscription not found")
	case errors.Is(err, repository.ErrCodeSpaceExhausted):
		s.metrics.RecordCodeMintFailure()
		out = internalError(err, "failed to reserve a unique code")
	default:
		out = internalError(err, "failed to record session")
	}
	s.recordRejection(sub.ServiceType, out)
	if appErrors.IsScanRejection(out) {
		applog.WithContext(ctx, s.logger).Warn("session rejected", zap.String("service_type", string(sub.ServiceType)), zap.Error(out))
	} else {
		applog.WithContext(ctx, s.logger).Error("session failed", zap.String("service_type", string(sub.ServiceType)), zap.Error(err))
	}
	return out
}

func (s *CheckInService) recordRejection(serviceType models.ServiceType, err error) {
	code := appErrors.FromError(err).Code
	s.metrics.RecordSessionCheckIn(serviceType, code)
}

func (s *CheckInService) rules() StatusRules {
	return s.cfg.Rules
}

func (s *CheckInService) location() *time.Location {
	if s.cfg.Rules.Location == nil {
		return time.UTC
	}
	return s.cfg.Rules.Location
}

func operatorName(operator string) *string {
	if operator == "" {
		name := models.SelfCheckInOperator
		return &name
	}
	return &operator
}
