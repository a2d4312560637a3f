package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/AmrAnter44/sys-body-sub000/internal/models"
	appErrors "github.com/AmrAnter44/sys-body-sub000/pkg/errors"
)

type mockStaffRepo struct {
	items       map[string]*models.Staff
	deactivated []string
}

func (m *mockStaffRepo) List(ctx context.Context, filter models.StaffFilter) ([]models.Staff, int, error) {
	var out []models.Staff
	for _, s := range m.items {
		out = append(out, *s)
	}
	return out, len(out), nil
}

func (m *mockStaffRepo) FindByID(ctx context.Context, id string) (*models.Staff, error) {
	if s, ok := m.items[id]; ok {
		cp := *s
		return &cp, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockStaffRepo) ExistsByNumber(ctx context.Context, number int, excludeID string) (bool, error) {
	for id, s := range m.items {
		if s.StaffNumber == number && id != excludeID {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockStaffRepo) NextNumber(ctx context.Context) (int, error) {
	next := 1
	for _, s := range m.items {
		if s.StaffNumber >= next {
			next = s.StaffNumber + 1
		}
	}
	return next, nil
}

func (m *mockStaffRepo) Create(ctx context.Context, staff *models.Staff) error {
	if m.items == nil {
		m.items = make(map[string]*models.Staff)
	}
	staff.ID = "staff-" + staff.Name
	cp := *staff
	m.items[staff.ID] = &cp
	return nil
}

func (m *mockStaffRepo) Update(ctx context.Context, staff *models.Staff) error {
	cp := *staff
	m.items[staff.ID] = &cp
	return nil
}

func (m *mockStaffRepo) Deactivate(ctx context.Context, id string) error {
	m.deactivated = append(m.deactivated, id)
	m.items[id].IsActive = false
	return nil
}

type mockShiftRepo struct {
	rows    []models.StaffAttendance
	present []string
	deleted []string
}

func (m *mockShiftRepo) List(ctx context.Context, filter models.StaffAttendanceFilter) ([]models.StaffAttendance, int, error) {
	return m.rows, len(m.rows), nil
}

func (m *mockShiftRepo) PresentStaffIDs(ctx context.Context) ([]string, error) {
	return m.present, nil
}

func (m *mockShiftRepo) Delete(ctx context.Context, id string) error {
	for _, row := range m.rows {
		if row.ID == id {
			m.deleted = append(m.deleted, id)
			return nil
		}
	}
	return sql.ErrNoRows
}

func TestStaffServiceCreateAssignsNumber(t *testing.T) {
	repo := &mockStaffRepo{items: map[string]*models.Staff{
		"a": {ID: "a", StaffNumber: 4, Name: "Karim", Position: "Trainer", IsActive: true},
	}}
	svc := NewStaffService(repo, &mockShiftRepo{}, validator.New(), zap.NewNop())
	salary := money("6500")
	phone := "  "

	staff, err := svc.Create(context.Background(), CreateStaffRequest{Name: " Laila ", Position: "Reception", Salary: &salary, Phone: &phone})
	require.NoError(t, err)
	assert.Equal(t, 5, staff.StaffNumber)
	assert.Equal(t, "Laila", staff.Name)
	assert.Equal(t, "s005", staff.StaffCode)
	assert.Equal(t, int64(100000005), staff.BadgeNumber)
	assert.Nil(t, staff.Phone)
	assert.True(t, staff.IsActive)

	_, err = svc.Create(context.Background(), CreateStaffRequest{StaffNumber: intPtr(4), Name: "Dup", Position: "Trainer"})
	assertErrorCode(t, err, appErrors.ErrDuplicateNumber)

	negative := money("-1")
	_, err = svc.Create(context.Background(), CreateStaffRequest{Name: "Neg", Position: "Trainer", Salary: &negative})
	assertErrorCode(t, err, appErrors.ErrValidation)

	_, err = svc.Create(context.Background(), CreateStaffRequest{Position: "Trainer"})
	assertErrorCode(t, err, appErrors.ErrValidation)
}

func TestStaffServiceUpdateAndDeactivate(t *testing.T) {
	repo := &mockStaffRepo{items: map[string]*models.Staff{
		"a": {ID: "a", StaffNumber: 4, Name: "Karim", Position: "Trainer", IsActive: true},
		"b": {ID: "b", StaffNumber: 9, Name: "Salma", Position: "Trainer", IsActive: true},
	}}
	svc := NewStaffService(repo, &mockShiftRepo{}, nil, nil)

	_, err := svc.Update(context.Background(), "a", UpdateStaffRequest{StaffNumber: 9, Name: "Karim", Position: "Trainer"})
	assertErrorCode(t, err, appErrors.ErrDuplicateNumber)

	updated, err := svc.Update(context.Background(), "a", UpdateStaffRequest{StaffNumber: 4, Name: "Karim Adel", Position: "Head Coach"})
	require.NoError(t, err)
	assert.Equal(t, "Head Coach", updated.Position)
	assert.Equal(t, "s004", updated.StaffCode)

	require.NoError(t, svc.Deactivate(context.Background(), "b"))
	assert.Equal(t, []string{"b"}, repo.deactivated)

	err = svc.Deactivate(context.Background(), "missing")
	assertErrorCode(t, err, appErrors.ErrNotFound)
}

func TestStaffServiceListMarksPresence(t *testing.T) {
	repo := &mockStaffRepo{items: map[string]*models.Staff{
		"a": {ID: "a", StaffNumber: 4, Name: "Karim", IsActive: true},
		"b": {ID: "b", StaffNumber: 9, Name: "Salma", IsActive: true},
	}}
	svc := NewStaffService(repo, &mockShiftRepo{present: []string{"b"}}, nil, nil)

	staff, page, err := svc.List(context.Background(), models.StaffFilter{})
	require.NoError(t, err)
	require.Len(t, staff, 2)
	assert.Equal(t, 2, page.TotalCount)
	for _, s := range staff {
		assert.Equal(t, s.ID == "b", s.Present, s.Name)
		assert.NotEmpty(t, s.StaffCode)
	}

	one, err := svc.Get(context.Background(), "b")
	require.NoError(t, err)
	assert.True(t, one.Present)
}

func TestStaffServiceAttendanceDurations(t *testing.T) {
	checkIn := time.Date(2025, 6, 10, 8, 0, 0, 0, time.UTC)
	checkOut := checkIn.Add(7 * time.Hour)
	minutes := 420
	shifts := &mockShiftRepo{rows: []models.StaffAttendance{
		{ID: "closed", StaffID: "a", CheckIn: checkIn, CheckOut: &checkOut, DurationMinutes: &minutes},
		{ID: "open", StaffID: "b", CheckIn: checkIn.Add(2 * time.Hour)},
	}}
	svc := NewStaffService(&mockStaffRepo{}, shifts, nil, nil)
	svc.now = func() time.Time { return checkIn.Add(5 * time.Hour) }

	rows, _, err := svc.ListAttendance(context.Background(), models.StaffAttendanceFilter{})
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, 420, rows[0].DurationMinutes)
	assert.False(t, rows[0].InProgress)
	assert.Equal(t, 180, rows[1].DurationMinutes)
	assert.True(t, rows[1].InProgress)

	from, to := checkIn, checkIn.Add(-time.Hour)
	_, _, err = svc.ListAttendance(context.Background(), models.StaffAttendanceFilter{From: &from, To: &to})
	assertErrorCode(t, err, appErrors.ErrValidation)

	require.NoError(t, svc.DeleteAttendance(context.Background(), "open"))
	assertErrorCode(t, svc.DeleteAttendance(context.Background(), "nope"), appErrors.ErrNotFound)
}
