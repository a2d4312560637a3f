package models

import "time"

// SelfCheckInOperator is recorded as attended_by when a client scans their own code.
const SelfCheckInOperator = "Self Check-In"

// SessionAttendance is one consumed session of a subscription.
type SessionAttendance struct {
	ID                 string      `db:"id" json:"id"`
	SubscriptionID     string      `db:"subscription_id" json:"subscription_id"`
	ServiceType        ServiceType `db:"service_type" json:"service_type"`
	SubscriptionNumber int         `db:"subscription_number" json:"subscription_number"`
	ClientName         string      `db:"client_name" json:"client_name"`
	ProviderName       string      `db:"provider_name" json:"provider_name"`
	SessionDate        time.Time   `db:"session_date" json:"session_date"`
	Notes              *string     `db:"notes" json:"notes,omitempty"`
	Attended           bool        `db:"attended" json:"attended"`
	AttendedAt         *time.Time  `db:"attended_at" json:"attended_at,omitempty"`
	AttendedBy         *string     `db:"attended_by" json:"attended_by,omitempty"`
	CreatedAt          time.Time   `db:"created_at" json:"created_at"`
}

// SessionAttendanceFilter captures filtering options for session history.
type SessionAttendanceFilter struct {
	ServiceType    ServiceType
	SubscriptionID string
	Provider       string
	From           *time.Time
	To             *time.Time
	Page           int
	PageSize       int
}
