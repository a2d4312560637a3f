package models

import "time"

// AccessCodeKind distinguishes reusable subscription codes from per-session receipts.
type AccessCodeKind string

const (
	// CodeKindSubscription is printed on the membership card; each scan consumes a session.
	CodeKindSubscription AccessCodeKind = "subscription"
	// CodeKindSession is minted for one registered session and is spent at issuance.
	CodeKindSession AccessCodeKind = "session"
)

// AccessCode is a minted QR/barcode payload.
type AccessCode struct {
	Code           string         `db:"code" json:"code"`
	Kind           AccessCodeKind `db:"kind" json:"kind"`
	ServiceType    ServiceType    `db:"service_type" json:"service_type"`
	SubscriptionID string         `db:"subscription_id" json:"subscription_id"`
	AttendanceID   *string        `db:"attendance_id" json:"attendance_id,omitempty"`
	Used           bool           `db:"used" json:"used"`
	UsedAt         *time.Time     `db:"used_at" json:"used_at,omitempty"`
	CreatedAt      time.Time      `db:"created_at" json:"created_at"`
}
