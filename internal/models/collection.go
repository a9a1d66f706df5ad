package models

import (
	"time"
)

// Collection statuses. Cancellation and rescheduling are only permitted while
// the pickup has not yet happened.
const (
	CollectionStatusScheduled = "scheduled"
	CollectionStatusPending   = "pending"
	CollectionStatusCompleted = "completed"
	CollectionStatusCancelled = "cancelled"
)

type Collection struct {
	ID            int64
	UserID        int64
	Date          time.Time
	TimeSlot      string
	PickupAddress string
	ItemCount     int
	WeightKg      float64
	Amount        float64
	Status        string
	Notes         string
	CancelReason  *string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// CanTransition reports whether the collection may still be cancelled or
// rescheduled.
func (c *Collection) CanTransition() bool {
	return c.Status == CollectionStatusScheduled || c.Status == CollectionStatusPending
}
