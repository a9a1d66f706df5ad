package models

import "errors"

// Sentinel errors for common failure conditions
var (
	ErrNotFound       = errors.New("resource not found")
	ErrConflict       = errors.New("resource already exists")
	ErrUnauthorized   = errors.New("unauthorized")
	ErrForbidden      = errors.New("forbidden")
	ErrBadRequest     = errors.New("bad request")
	ErrInternalServer = errors.New("internal server error")

	// Credential verification errors
	ErrMissingCredential = errors.New("missing or malformed credential")
	ErrInvalidCredential = errors.New("credential verification failed")

	// Two-factor errors
	ErrTwoFactorNotInitiated = errors.New("two-factor enrollment not initiated")
	ErrInvalidCode           = errors.New("invalid two-factor code")
	ErrChallengeExpired      = errors.New("two-factor challenge expired")
	ErrWrongTokenType        = errors.New("wrong token type")
	ErrTooManyAttempts       = errors.New("too many failed verification attempts")
)
