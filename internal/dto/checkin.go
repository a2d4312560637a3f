package dto

import (
	"time"

	"github.com/AmrAnter44/sys-body-sub000/internal/models"
)

// CheckInAction names the transition a scan produced.
type CheckInAction string

const (
	ActionSessionConsumed CheckInAction = "session_consumed"
	ActionStaffCheckIn    CheckInAction = "check_in"
	ActionStaffCheckOut   CheckInAction = "check_out"
)

// CheckInRequest is the scanner payload. ServiceType is only needed for short numeric
// client codes typed at the desk.
type CheckInRequest struct {
	Code        string             `json:"code" validate:"required,max=128"`
	ServiceType models.ServiceType `json:"service_type" validate:"omitempty,service_type"`
}

// CheckInResult is returned for every accepted scan.
type CheckInResult struct {
	Kind         string                    `json:"kind"`
	Action       CheckInAction             `json:"action"`
	Message      string                    `json:"message"`
	Attendance   *models.SessionAttendance `json:"attendance,omitempty"`
	Subscription *models.Subscription      `json:"subscription,omitempty"`
	Staff        *models.Staff             `json:"staff,omitempty"`
	Shift        *StaffShift               `json:"shift,omitempty"`
}

// StaffShift decorates a staff attendance row with its live duration.
type StaffShift struct {
	models.StaffAttendance
	DurationMinutes int  `json:"duration_minutes"`
	InProgress      bool `json:"in_progress"`
}

// NewStaffShift computes the shift duration against now.
func NewStaffShift(row models.StaffAttendance, now time.Time) StaffShift {
	return StaffShift{
		StaffAttendance: row,
		DurationMinutes: int(row.Duration(now).Minutes()),
		InProgress:      row.Open(),
	}
}

// CodePreview answers GET /check-in without consuming a session.
type CodePreview struct {
	Code         string               `json:"code"`
	Subscription *models.Subscription `json:"subscription"`
	CanCheckIn   bool                 `json:"can_check_in"`
	Reason       string               `json:"reason,omitempty"`
}

// SessionRegistration is returned when a session is registered directly.
type SessionRegistration struct {
	Attendance   models.SessionAttendance `json:"attendance_record"`
	Subscription models.Subscription      `json:"subscription"`
	Code         string                   `json:"code"`
	DisplayCode  string                   `json:"display_code"`
	CodeImage    string                   `json:"code_image"`
}
