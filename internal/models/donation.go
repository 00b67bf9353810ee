package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type DonationStatus string

const (
	DonationPending DonationStatus = "PENDING"
	DonationSuccess DonationStatus = "SUCCESS"
	DonationFailed  DonationStatus = "FAILED"
)

// Terminal reports whether no transition leaves s.
func (s DonationStatus) Terminal() bool {
	return s == DonationSuccess || s == DonationFailed
}

type Donation struct {
	ID               string          `json:"id"`
	UserID           string          `json:"user_id"`
	Amount           decimal.Decimal `json:"amount"`
	AmountMinor      int64           `json:"amount_minor"`
	Currency         string          `json:"currency"`
	Status           DonationStatus  `json:"status"`
	GatewayOrderID   *string         `json:"gateway_order_id,omitempty"`
	GatewayPaymentID *string         `json:"gateway_payment_id,omitempty"`
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`
}

// Donor is the subset of the owning user shown next to a donation in admin
// listings.
type Donor struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

type DonationWithDonor struct {
	Donation
	Donor Donor `json:"user"`
}
