package models

import (
	"time"
)

type Wallet struct {
	ID             int64   `json:"id"`
	UserID         int64   `json:"-"`
	CurrentBalance float64 `json:"currentBalance"`
	TotalIncome    float64 `json:"totalIncome"`
	TotalExpense   float64 `json:"totalExpense"`
}

type WalletTransaction struct {
	ID            int64     `json:"id"`
	WalletID      int64     `json:"-"`
	TypeName      string    `json:"type"`
	ReferenceCode string    `json:"referenceCode"`
	Amount        float64   `json:"amount"`
	Status        string    `json:"status"`
	Date          time.Time `json:"date"`
}

// WalletHome is the wallet card shown on the home screen: balance plus the
// most recent payment, if any.
type WalletHome struct {
	WalletID          int64      `json:"walletId"`
	CurrentBalance    float64    `json:"currentBalance"`
	LastPaymentAmount *float64   `json:"lastPaymentAmount"`
	LastPaymentDate   *time.Time `json:"lastPaymentDate"`
}
