package models

import (
	"time"
)

type PaymentMethod struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"-"`
	Type      string    `json:"type"` // "pix", "bank", ...
	Key       string    `json:"key"`
	Label     string    `json:"label,omitempty"`
	IsDefault bool      `json:"isDefault"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"-"`
}
