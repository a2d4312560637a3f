package dto

import "github.com/AmrAnter44/sys-body-sub000/internal/models"

// SubscriptionCreated returns the new subscription with its card code and purchase receipt.
type SubscriptionCreated struct {
	Subscription models.Subscription `json:"subscription"`
	DisplayCode  string              `json:"display_code"`
	CodeImage    string              `json:"code_image"`
	Receipt      *models.Payment     `json:"receipt,omitempty"`
}

// PaymentApplied returns the updated balance with the issued receipt.
type PaymentApplied struct {
	Subscription models.Subscription `json:"subscription"`
	Receipt      models.Payment      `json:"receipt"`
}

// SubscriptionRenewed returns the renewed subscription with its receipt.
type SubscriptionRenewed struct {
	Subscription models.Subscription `json:"subscription"`
	Receipt      models.Payment      `json:"receipt"`
}
