package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// DayUseNumber is the shared subscription number of single visit subscriptions.
const DayUseNumber = -1

// SubscriptionStatus is derived from the expiry date.
type SubscriptionStatus string

const (
	StatusActive       SubscriptionStatus = "active"
	StatusExpiringSoon SubscriptionStatus = "expiring_soon"
	StatusExpired      SubscriptionStatus = "expired"
)

// Valid reports whether the status is known.
func (s SubscriptionStatus) Valid() bool {
	return s == StatusActive || s == StatusExpiringSoon || s == StatusExpired
}

// SessionBand buckets the remaining session count.
type SessionBand string

const (
	BandZero   SessionBand = "zero"
	BandLow    SessionBand = "low"
	BandNormal SessionBand = "normal"
)

// Valid reports whether the band is known.
func (b SessionBand) Valid() bool {
	return b == BandZero || b == BandLow || b == BandNormal
}

// BandFor classifies a remaining session count: zero, low (1-3) or normal.
func BandFor(remaining int) SessionBand {
	switch {
	case remaining <= 0:
		return BandZero
	case remaining <= 3:
		return BandLow
	default:
		return BandNormal
	}
}

// SubscriptionKind separates numbered subscriptions from Day-Use visits.
type SubscriptionKind string

const (
	KindRegular SubscriptionKind = "regular"
	KindDayUse  SubscriptionKind = "day_use"
)

// Valid reports whether the kind is known.
func (k SubscriptionKind) Valid() bool {
	return k == KindRegular || k == KindDayUse
}

// Subscription is a block of purchased sessions for one service type.
type Subscription struct {
	ID                string          `db:"id" json:"id"`
	ServiceType       ServiceType     `db:"service_type" json:"service_type"`
	Number            int             `db:"subscription_number" json:"subscription_number"`
	ClientName        string          `db:"client_name" json:"client_name"`
	Phone             string          `db:"phone" json:"phone"`
	ProviderName      string          `db:"provider_name" json:"provider_name"`
	MemberNumber      *int            `db:"member_number" json:"member_number,omitempty"`
	SessionsPurchased int             `db:"sessions_purchased" json:"sessions_purchased"`
	SessionsRemaining int             `db:"sessions_remaining" json:"sessions_remaining"`
	PricePerSession   decimal.Decimal `db:"price_per_session" json:"price_per_session"`
	RemainingAmount   decimal.Decimal `db:"remaining_amount" json:"remaining_amount"`
	StartDate         *time.Time      `db:"start_date" json:"start_date,omitempty"`
	ExpiryDate        *time.Time      `db:"expiry_date" json:"expiry_date,omitempty"`
	Code              string          `db:"code" json:"code"`
	CreatedAt         time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt         time.Time       `db:"updated_at" json:"updated_at"`

	TotalPrice    decimal.Decimal    `db:"-" json:"total_price"`
	PaidAmount    decimal.Decimal    `db:"-" json:"paid_amount"`
	Status        SubscriptionStatus `db:"-" json:"status"`
	Band          SessionBand        `db:"-" json:"session_band"`
	Kind          SubscriptionKind   `db:"-" json:"kind"`
	ProviderLabel string             `db:"-" json:"provider_label"`
}

// IsDayUse reports whether the subscription lives in the shared negative number space.
func (s *Subscription) IsDayUse() bool {
	return s.Number < 0
}

// Total returns sessions purchased times the session price.
func (s *Subscription) Total() decimal.Decimal {
	return s.PricePerSession.Mul(decimal.NewFromInt(int64(s.SessionsPurchased)))
}

// Derive fills the read-side fields for the given clock, calendar and ExpiringSoon window.
func (s *Subscription) Derive(now time.Time, loc *time.Location, soonWindow time.Duration) {
	s.TotalPrice = s.Total()
	s.PaidAmount = s.TotalPrice.Sub(s.RemainingAmount)
	s.Status = ComputeStatus(s.ExpiryDate, now, loc, soonWindow)
	s.Band = BandFor(s.SessionsRemaining)
	s.Kind = KindRegular
	if s.IsDayUse() {
		s.Kind = KindDayUse
	}
	s.ProviderLabel = s.ServiceType.ProviderLabel()
}

// ComputeStatus classifies an expiry date against the calendar day of now in loc.
// A missing expiry date is always active. A subscription is expired from the start of its
// expiry day.
func ComputeStatus(expiry *time.Time, now time.Time, loc *time.Location, soonWindow time.Duration) SubscriptionStatus {
	if expiry == nil {
		return StatusActive
	}
	today := CalendarDate(now, loc)
	end := CalendarDate(*expiry, time.UTC)
	if !end.After(today) {
		return StatusExpired
	}
	if end.Sub(today) <= soonWindow {
		return StatusExpiringSoon
	}
	return StatusActive
}

// CalendarDate truncates t to midnight UTC of its calendar day in loc.
func CalendarDate(t time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	y, m, d := t.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// SubscriptionPatch carries the staff-editable fields. Nil means unchanged.
type SubscriptionPatch struct {
	ClientName        *string
	Phone             *string
	ProviderName      *string
	MemberNumber      *int
	SessionsRemaining *int
	RemainingAmount   *decimal.Decimal
	StartDate         *time.Time
	ExpiryDate        *time.Time
}

// Empty reports whether the patch changes nothing.
func (p SubscriptionPatch) Empty() bool {
	return p.ClientName == nil && p.Phone == nil && p.ProviderName == nil && p.MemberNumber == nil &&
		p.SessionsRemaining == nil && p.RemainingAmount == nil && p.StartDate == nil && p.ExpiryDate == nil
}

// SubscriptionRenewal adds sessions to an existing subscription.
type SubscriptionRenewal struct {
	AddSessions     int
	PricePerSession decimal.Decimal
	AddRemaining    decimal.Decimal
	ProviderName    *string
	StartDate       *time.Time
	ExpiryDate      *time.Time
}

// SubscriptionFilter captures filtering options for listing subscriptions.
// Status filtering is translated into expiry date bounds by the ledger.
type SubscriptionFilter struct {
	ServiceType ServiceType
	Provider    string
	Search      string
	Band        *SessionBand
	Kind        *SubscriptionKind
	Status      *SubscriptionStatus
	Today       time.Time
	SoonUntil   time.Time
	Page        int
	PageSize    int
	SortBy      string
	SortOrder   string
}

// SubscriptionSummary aggregates a service type's subscriptions.
type SubscriptionSummary struct {
	ServiceType        ServiceType     `db:"-" json:"service_type"`
	Total              int             `db:"total" json:"total"`
	Active             int             `db:"active" json:"active"`
	ExpiringSoon       int             `db:"expiring_soon" json:"expiring_soon"`
	Expired            int             `db:"expired" json:"expired"`
	ZeroSessions       int             `db:"zero_sessions" json:"zero_sessions"`
	LowSessions        int             `db:"low_sessions" json:"low_sessions"`
	DayUse             int             `db:"day_use" json:"day_use"`
	SessionsRemaining  int             `db:"sessions_remaining" json:"sessions_remaining"`
	OutstandingBalance decimal.Decimal `db:"outstanding_balance" json:"outstanding_balance"`
	Revenue            decimal.Decimal `db:"revenue" json:"revenue"`
}
