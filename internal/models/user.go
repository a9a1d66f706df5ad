package models

import (
	"time"
)

type User struct {
	ID           int64
	SubjectID    string // Stable id issued by the external identity provider
	Email        string
	Name         string
	NationalID   string
	Country      string
	Phone        string
	AvatarURL    string
	Language     string
	PasswordHash *string // NULL until the user sets a local password via reset

	// Preferences
	NotificationsEnabled bool
	DarkMode             bool

	// Two-factor state. TwoFASecret must be non-nil whenever TwoFAEnabled is
	// true; it is non-nil with the flag false only while enrollment is pending.
	TwoFAEnabled bool
	TwoFASecret  *string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// TwoFactorState is the subset of User the 2FA manager reads and writes.
type TwoFactorState struct {
	UserID  int64
	Enabled bool
	Secret  *string
}

// HasPendingEnrollment reports whether a secret is stored but not yet confirmed.
func (s *TwoFactorState) HasPendingEnrollment() bool {
	return !s.Enabled && s.Secret != nil && *s.Secret != ""
}
