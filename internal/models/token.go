package models

import (
	"github.com/golang-jwt/jwt/v5"
)

// Session token type tags. A full-access token carries no type tag; the
// challenge and password-reset tokens are narrowly scoped by theirs.
const (
	TokenTypeChallenge     = "2fa"
	TokenTypePasswordReset = "password_reset"
)

// SessionClaims is the claim set of every token this service signs. Validity
// is entirely signature plus expiry; there is no server-side revocation list.
type SessionClaims struct {
	UserID int64  `json:"userId"`
	Type   string `json:"type,omitempty"`
	jwt.RegisteredClaims
}

// IsChallenge reports whether the token only proves first-factor success.
func (c *SessionClaims) IsChallenge() bool {
	return c.Type == TokenTypeChallenge
}

// IsFullAccess reports whether the token grants access to protected routes.
func (c *SessionClaims) IsFullAccess() bool {
	return c.Type == ""
}
