package models

import (
	"time"
)

type Notification struct {
	ID        int64      `json:"id"`
	UserID    int64      `json:"-"`
	Title     string     `json:"title"`
	Message   string     `json:"message"`
	Type      string     `json:"type"`
	Read      bool       `json:"read"`
	CreatedAt time.Time  `json:"createdAt"`
	ReadAt    *time.Time `json:"readAt,omitempty"`
}

// DeviceToken is a push-delivery registration for one of the user's devices.
type DeviceToken struct {
	ID        int64
	UserID    int64
	Token     string
	CreatedAt time.Time
	UpdatedAt time.Time
}
