package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// PaymentMethod names how a payment part was settled.
type PaymentMethod string

const (
	MethodCash     PaymentMethod = "cash"
	MethodVisa     PaymentMethod = "visa"
	MethodInstapay PaymentMethod = "instapay"
	MethodWallet   PaymentMethod = "wallet"
	MethodPoints   PaymentMethod = "points"
)

// Valid reports whether the method is supported.
func (m PaymentMethod) Valid() bool {
	switch m {
	case MethodCash, MethodVisa, MethodInstapay, MethodWallet, MethodPoints:
		return true
	default:
		return false
	}
}

// PaymentKind records what a payment settled.
type PaymentKind string

const (
	PaymentPurchase PaymentKind = "purchase"
	PaymentRenewal  PaymentKind = "renewal"
	PaymentBalance  PaymentKind = "balance"
)

// PaymentPart is one method's contribution to a payment.
type PaymentPart struct {
	PaymentID  string          `db:"payment_id" json:"-"`
	Method     PaymentMethod   `db:"method" json:"method"`
	Amount     decimal.Decimal `db:"amount" json:"amount"`
	PointsUsed int             `db:"points_used" json:"points_used,omitempty"`
}

// Payment is a numbered receipt against a subscription.
type Payment struct {
	ID                 string          `db:"id" json:"id"`
	ReceiptNumber      int64           `db:"receipt_number" json:"receipt_number"`
	SubscriptionID     string          `db:"subscription_id" json:"subscription_id"`
	ServiceType        ServiceType     `db:"service_type" json:"service_type"`
	SubscriptionNumber int             `db:"subscription_number" json:"subscription_number"`
	Kind               PaymentKind     `db:"kind" json:"kind"`
	Amount             decimal.Decimal `db:"amount" json:"amount"`
	PreviousRemaining  decimal.Decimal `db:"previous_remaining" json:"previous_remaining"`
	NewRemaining       decimal.Decimal `db:"new_remaining" json:"new_remaining"`
	StaffName          string          `db:"staff_name" json:"staff_name"`
	CreatedAt          time.Time       `db:"created_at" json:"created_at"`
	Parts              []PaymentPart   `db:"-" json:"parts"`
}

// PointsUsed sums the loyalty points spent across the payment's parts.
func (p *Payment) PointsUsed() int {
	total := 0
	for _, part := range p.Parts {
		total += part.PointsUsed
	}
	return total
}

// PointsRedemption asks the store to debit a member while recording a payment.
type PointsRedemption struct {
	MemberID    string
	Points      int
	Description string
}
