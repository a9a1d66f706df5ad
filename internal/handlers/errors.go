package handlers

import (
	"errors"
	"net/http"

	"github.com/greengo-app/greengo-api/internal/models"
	pkghttp "github.com/greengo-app/greengo-api/pkg/http"
)

// writeServiceError maps service-layer sentinel errors onto the HTTP error
// envelope. Anything unrecognized becomes a generic 500 so internal failure
// detail never reaches the client.
func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, models.ErrMissingCredential):
		pkghttp.WriteError(w, http.StatusUnauthorized, "missing_credential", "Authorization header missing or malformed")
	case errors.Is(err, models.ErrInvalidCredential):
		pkghttp.WriteError(w, http.StatusUnauthorized, "invalid_credential", "Credential verification failed")
	case errors.Is(err, models.ErrChallengeExpired):
		pkghttp.WriteError(w, http.StatusUnauthorized, "challenge_expired", "Verification window expired, sign in again")
	case errors.Is(err, models.ErrWrongTokenType):
		pkghttp.WriteError(w, http.StatusUnauthorized, "wrong_token_type", "Token not valid for this operation")
	case errors.Is(err, models.ErrUnauthorized):
		pkghttp.WriteUnauthorized(w, "Authentication failed")
	case errors.Is(err, models.ErrTwoFactorNotInitiated):
		pkghttp.WriteError(w, http.StatusBadRequest, "twofa_not_initiated", "Two-factor setup has not been started")
	case errors.Is(err, models.ErrInvalidCode):
		pkghttp.WriteError(w, http.StatusBadRequest, "invalid_code", "Verification code is incorrect")
	case errors.Is(err, models.ErrTooManyAttempts):
		pkghttp.WriteTooManyRequests(w, "Too many failed attempts. Please try again later.")
	case errors.Is(err, models.ErrNotFound):
		pkghttp.WriteNotFound(w, "Resource not found")
	case errors.Is(err, models.ErrConflict):
		pkghttp.WriteConflict(w, "Request conflicts with current state")
	case errors.Is(err, models.ErrBadRequest):
		pkghttp.WriteBadRequest(w, "Invalid request")
	default:
		pkghttp.WriteInternalError(w, "Internal server error")
	}
}
