package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/AmrAnter44/sys-body-sub000/internal/dto"
	"github.com/AmrAnter44/sys-body-sub000/internal/models"
	"github.com/AmrAnter44/sys-body-sub000/internal/repository"
	appErrors "github.com/AmrAnter44/sys-body-sub000/pkg/errors"
)

type staffRepository interface {
	List(ctx context.Context, filter models.StaffFilter) ([]models.Staff, int, error)
	FindByID(ctx context.Context, id string) (*models.Staff, error)
	ExistsByNumber(ctx context.Context, number int, excludeID string) (bool, error)
	NextNumber(ctx context.Context) (int, error)
	Create(ctx context.Context, staff *models.Staff) error
	Update(ctx context.Context, staff *models.Staff) error
	Deactivate(ctx context.Context, id string) error
}

type shiftRepository interface {
	List(ctx context.Context, filter models.StaffAttendanceFilter) ([]models.StaffAttendance, int, error)
	PresentStaffIDs(ctx context.Context) ([]string, error)
	Delete(ctx context.Context, id string) error
}

// CreateStaffRequest represents payload for adding a staff member. StaffNumber is
// assigned when omitted.
type CreateStaffRequest struct {
	StaffNumber *int             `json:"staff_number" validate:"omitempty,min=1"`
	Name        string           `json:"name" validate:"required,max=120"`
	Phone       *string          `json:"phone" validate:"omitempty,max=30"`
	Position    string           `json:"position" validate:"required,max=60"`
	Salary      *decimal.Decimal `json:"salary"`
}

// UpdateStaffRequest represents payload for editing a staff member.
type UpdateStaffRequest struct {
	StaffNumber int              `json:"staff_number" validate:"required,min=1"`
	Name        string           `json:"name" validate:"required,max=120"`
	Phone       *string          `json:"phone" validate:"omitempty,max=30"`
	Position    string           `json:"position" validate:"required,max=60"`
	Salary      *decimal.Decimal `json:"salary"`
	Active      *bool            `json:"is_active"`
}

// StaffService manages the staff roster and its shift history.
type StaffService struct {
	repo      staffRepository
	shifts    shiftRepository
	validator *validator.Validate
	logger    *zap.Logger
	now       func() time.Time
}

// NewStaffService constructs a StaffService.
func NewStaffService(repo staffRepository, shifts shiftRepository, validate *validator.Validate, logger *zap.Logger) *StaffService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StaffService{repo: repo, shifts: shifts, validator: validate, logger: logger, now: time.Now}
}

// List returns staff with their badge numbers and presence.
func (s *StaffService) List(ctx context.Context, filter models.StaffFilter) ([]models.Staff, *models.Pagination, error) {
	staff, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, internalError(err, "failed to list staff")
	}
	present, err := s.presentSet(ctx)
	if err != nil {
		return nil, nil, err
	}
	for i := range staff {
		staff[i].Derive()
		staff[i].Present = present[staff[i].ID]
	}
	return staff, paginate(filter.Page, filter.PageSize, total), nil
}

// Get returns a staff member by id.
func (s *StaffService) Get(ctx context.Context, id string) (*models.Staff, error) {
	staff, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	present, err := s.presentSet(ctx)
	if err != nil {
		return nil, err
	}
	staff.Present = present[staff.ID]
	return staff, nil
}

// Create registers a staff member.
func (s *StaffService) Create(ctx context.Context, req CreateStaffRequest) (*models.Staff, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid staff payload")
	}
	if err := checkSalary(req.Salary); err != nil {
		return nil, err
	}

	number := 0
	if req.StaffNumber != nil {
		number = *req.StaffNumber
		if err := s.ensureUniqueNumber(ctx, number, ""); err != nil {
			return nil, err
		}
	} else {
		next, err := s.repo.NextNumber(ctx)
		if err != nil {
			return nil, internalError(err, "failed to assign staff number")
		}
		number = next
	}

	staff := &models.Staff{
		StaffNumber: number,
		Name:        strings.TrimSpace(req.Name),
		Phone:       optionalString(req.Phone),
		Position:    strings.TrimSpace(req.Position),
		Salary:      req.Salary,
		IsActive:    true,
	}
	if err := s.repo.Create(ctx, staff); err != nil {
		if errors.Is(err, repository.ErrDuplicateNumber) {
			return nil, appErrors.Clone(appErrors.ErrDuplicateNumber, "staff number already used")
		}
		return nil, internalError(err, "failed to create staff")
	}
	staff.Derive()
	s.logger.Info("staff created", zap.String("staff_code", staff.StaffCode), zap.String("position", staff.Position))
	return staff, nil
}

// Update modifies a staff member.
func (s *StaffService) Update(ctx context.Context, id string, req UpdateStaffRequest) (*models.Staff, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid staff payload")
	}
	if err := checkSalary(req.Salary); err != nil {
		return nil, err
	}
	staff, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.ensureUniqueNumber(ctx, req.StaffNumber, id); err != nil {
		return nil, err
	}

	staff.StaffNumber = req.StaffNumber
	staff.Name = strings.TrimSpace(req.Name)
	staff.Phone = optionalString(req.Phone)
	staff.Position = strings.TrimSpace(req.Position)
	staff.Salary = req.Salary
	if req.Active != nil {
		staff.IsActive = *req.Active
	}
	if err := s.repo.Update(ctx, staff); err != nil {
		if errors.Is(err, repository.ErrDuplicateNumber) {
			return nil, appErrors.Clone(appErrors.ErrDuplicateNumber, "staff number already used")
		}
		return nil, internalError(err, "failed to update staff")
	}
	staff.Derive()
	return staff, nil
}

// Deactivate marks a staff member inactive. Their badge stops resolving.
func (s *StaffService) Deactivate(ctx context.Context, id string) error {
	staff, err := s.load(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.Deactivate(ctx, id); err != nil {
		return internalError(err, "failed to deactivate staff")
	}
	s.logger.Info("staff deactivated", zap.String("staff_code", staff.StaffCode))
	return nil
}

// ListAttendance returns shifts with live durations for the open ones.
func (s *StaffService) ListAttendance(ctx context.Context, filter models.StaffAttendanceFilter) ([]dto.StaffShift, *models.Pagination, error) {
	if filter.From != nil && filter.To != nil && !filter.To.After(*filter.From) {
		return nil, nil, appErrors.Clone(appErrors.ErrValidation, "to must be after from")
	}
	rows, total, err := s.shifts.List(ctx, filter)
	if err != nil {
		return nil, nil, internalError(err, "failed to list staff attendance")
	}
	now := s.now().UTC()
	shifts := make([]dto.StaffShift, 0, len(rows))
	for _, row := range rows {
		shifts = append(shifts, dto.NewStaffShift(row, now))
	}
	return shifts, paginate(filter.Page, filter.PageSize, total), nil
}

// DeleteAttendance removes a shift row.
func (s *StaffService) DeleteAttendance(ctx context.Context, id string) error {
	if err := s.shifts.Delete(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "staff attendance not found")
		}
		return internalError(err, "failed to delete staff attendance")
	}
	s.logger.Info("staff attendance deleted", zap.String("attendance_id", id))
	return nil
}

func (s *StaffService) load(ctx context.Context, id string) (*models.Staff, error) {
	staff, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "staff member not found")
		}
		return nil, internalError(err, "failed to load staff")
	}
	staff.Derive()
	return staff, nil
}

func (s *StaffService) presentSet(ctx context.Context) (map[string]bool, error) {
	ids, err := s.shifts.PresentStaffIDs(ctx)
	if err != nil {
		return nil, internalError(err, "failed to load present staff")
	}
	present := make(map[string]bool, len(ids))
	for _, id := range ids {
		present[id] = true
	}
	return present, nil
}

func (s *StaffService) ensureUniqueNumber(ctx context.Context, number int, excludeID string) error {
	exists, err := s.repo.ExistsByNumber(ctx, number, excludeID)
	if err != nil {
		return internalError(err, "failed to check staff number")
	}
	if exists {
		return appErrors.Clone(appErrors.ErrDuplicateNumber, "staff number already used")
	}
	return nil
}

func checkSalary(salary *decimal.Decimal) error {
	if salary != nil && salary.IsNegative() {
		return appErrors.Clone(appErrors.ErrValidation, "salary cannot be negative")
	}
	return nil
}
