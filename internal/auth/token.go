package auth

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/greengo-app/greengo-api/internal/models"
)

var (
	// ErrTokenExpired is returned when a token's signature is valid but its
	// expiry has passed.
	ErrTokenExpired = errors.New("token expired")
	// ErrInvalidToken covers every other validation failure: bad signature,
	// malformed payload, wrong signing method.
	ErrInvalidToken = errors.New("invalid token")
)

// TokenManager issues and validates the signed session tokens used on every
// protected route, plus the short-lived challenge and password-reset variants.
type TokenManager struct {
	secret          []byte
	sessionExpiry   time.Duration
	extendedExpiry  time.Duration
	challengeExpiry time.Duration
	resetExpiry     time.Duration
}

func NewTokenManager(secret string, session, extended, challenge, reset time.Duration) *TokenManager {
	return &TokenManager{
		secret:          []byte(secret),
		sessionExpiry:   session,
		extendedExpiry:  extended,
		challengeExpiry: challenge,
		resetExpiry:     reset,
	}
}

// IssueSession mints a full-access session token. When extended is true the
// token uses the longer "remember me" lifetime.
func (tm *TokenManager) IssueSession(userID int64, extended bool) (string, error) {
	expiry := tm.sessionExpiry
	if extended {
		expiry = tm.extendedExpiry
	}
	return tm.issue(userID, "", expiry)
}

// IssueChallenge mints a short-lived token carrying the two-factor challenge
// type marker. It grants no API access; its only use is proving that the
// first authentication factor already succeeded.
func (tm *TokenManager) IssueChallenge(userID int64) (string, error) {
	return tm.issue(userID, models.TokenTypeChallenge, tm.challengeExpiry)
}

// IssueResetToken mints the single-purpose token embedded in password reset
// links.
func (tm *TokenManager) IssueResetToken(userID int64) (string, error) {
	return tm.issue(userID, models.TokenTypePasswordReset, tm.resetExpiry)
}

func (tm *TokenManager) issue(userID int64, tokenType string, expiry time.Duration) (string, error) {
	now := time.Now()
	claims := models.SessionClaims{
		UserID: userID,
		Type:   tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(userID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(expiry)),
			ID:        uuid.NewString(),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(tm.secret)
	if err != nil {
		return "", fmt.Errorf("signing token: %w", err)
	}
	return signed, nil
}

// Validate parses and verifies a token string, enforcing the signing method
// and expiry. Callers are responsible for checking the claims' type marker
// against the access level they require.
func (tm *TokenManager) Validate(tokenString string) (*models.SessionClaims, error) {
	claims := &models.SessionClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return tm.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrInvalidToken
	}
	if !token.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
