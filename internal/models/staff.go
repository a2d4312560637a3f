package models

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/AmrAnter44/sys-body-sub000/pkg/codes"
)

// Staff is a roster entry that can clock in with a badge.
type Staff struct {
	ID          string           `db:"id" json:"id"`
	StaffNumber int              `db:"staff_number" json:"staff_number"`
	Name        string           `db:"name" json:"name"`
	Phone       *string          `db:"phone" json:"phone,omitempty"`
	Position    string           `db:"position" json:"position"`
	Salary      *decimal.Decimal `db:"salary" json:"salary,omitempty"`
	IsActive    bool             `db:"is_active" json:"is_active"`
	CreatedAt   time.Time        `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time        `db:"updated_at" json:"updated_at"`

	StaffCode   string `db:"-" json:"staff_code"`
	BadgeNumber int64  `db:"-" json:"badge_number"`
	Present     bool   `db:"-" json:"present"`
}

// Derive fills the staff code and badge number from the staff number.
func (s *Staff) Derive() {
	s.StaffCode = codes.StaffCode(s.StaffNumber)
	s.BadgeNumber = codes.BadgeNumber(s.StaffNumber)
}

// StaffFilter captures filtering options for listing staff.
type StaffFilter struct {
	Search   string
	Position string
	Active   *bool
	Page     int
	PageSize int
}

// StaffAttendance is one shift. CheckOut is nil while the member is present.
type StaffAttendance struct {
	ID              string     `db:"id" json:"id"`
	StaffID         string     `db:"staff_id" json:"staff_id"`
	StaffName       string     `db:"staff_name" json:"staff_name,omitempty"`
	StaffNumber     int        `db:"staff_number" json:"staff_number,omitempty"`
	CheckIn         time.Time  `db:"check_in" json:"check_in"`
	CheckOut        *time.Time `db:"check_out" json:"check_out,omitempty"`
	DurationMinutes *int       `db:"duration_minutes" json:"duration_minutes,omitempty"`
	AutoClosed      bool       `db:"auto_closed" json:"auto_closed"`
	CreatedAt       time.Time  `db:"created_at" json:"created_at"`
}

// Open reports whether the shift has not been checked out.
func (a *StaffAttendance) Open() bool {
	return a.CheckOut == nil
}

// Duration returns the shift length, measured against now while it is still open.
func (a *StaffAttendance) Duration(now time.Time) time.Duration {
	end := now
	if a.CheckOut != nil {
		end = *a.CheckOut
	}
	if end.Before(a.CheckIn) {
		return 0
	}
	return end.Sub(a.CheckIn)
}

// StaffAttendanceFilter captures filtering options for shift listings.
type StaffAttendanceFilter struct {
	StaffID  string
	From     *time.Time
	To       *time.Time
	OpenOnly bool
	Page     int
	PageSize int
}
