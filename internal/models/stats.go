package models

import "github.com/shopspring/decimal"

type DonationStats struct {
	TotalUsers     int64           `json:"totalUsers"`
	TotalDonations int64           `json:"totalDonations"`
	TotalAmount    decimal.Decimal `json:"totalAmount"`
}
