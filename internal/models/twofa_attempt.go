package models

import (
	"time"
)

// TwoFactorAttempt records one code-verification attempt, successful or not.
// Failed attempts within the throttling window gate further verification.
type TwoFactorAttempt struct {
	ID        int64
	UserID    int64
	Success   bool
	IPAddress string
	CreatedAt time.Time
}
