package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/greengo-app/greengo-api/internal/models"
)

const testSecret = "test-secret-key-at-least-32-chars-long!!"

func newTestTokenManager() *TokenManager {
	return NewTokenManager(testSecret, 2*time.Hour, 24*time.Hour, 5*time.Minute, time.Hour)
}

func TestIssueSession_RoundTrip(t *testing.T) {
	tm := newTestTokenManager()

	token, err := tm.IssueSession(42, false)
	require.NoError(t, err)

	claims, err := tm.Validate(token)
	require.NoError(t, err)
	assert.Equal(t, int64(42), claims.UserID)
	assert.True(t, claims.IsFullAccess())
	assert.False(t, claims.IsChallenge())
	assert.NotEmpty(t, claims.ID)
}

func TestIssueSession_ExtendedLifetime(t *testing.T) {
	tm := newTestTokenManager()

	short, err := tm.IssueSession(1, false)
	require.NoError(t, err)
	long, err := tm.IssueSession(1, true)
	require.NoError(t, err)

	shortClaims, err := tm.Validate(short)
	require.NoError(t, err)
	longClaims, err := tm.Validate(long)
	require.NoError(t, err)

	assert.True(t, longClaims.ExpiresAt.After(shortClaims.ExpiresAt.Time))
}

func TestIssueChallenge_NotFullAccess(t *testing.T) {
	tm := newTestTokenManager()

	token, err := tm.IssueChallenge(7)
	require.NoError(t, err)

	claims, err := tm.Validate(token)
	require.NoError(t, err)
	assert.True(t, claims.IsChallenge())
	assert.False(t, claims.IsFullAccess())
	assert.Equal(t, models.TokenTypeChallenge, claims.Type)
}

func TestValidate_Expired(t *testing.T) {
	tm := NewTokenManager(testSecret, -time.Minute, -time.Minute, -time.Minute, -time.Minute)

	token, err := tm.IssueSession(1, false)
	require.NoError(t, err)

	_, err = tm.Validate(token)
	assert.ErrorIs(t, err, ErrTokenExpired)
}

func TestValidate_WrongSecret(t *testing.T) {
	tm := newTestTokenManager()
	other := NewTokenManager("a-completely-different-signing-secret!!!", 2*time.Hour, 24*time.Hour, 5*time.Minute, time.Hour)

	token, err := tm.IssueSession(1, false)
	require.NoError(t, err)

	_, err = other.Validate(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidate_Garbage(t *testing.T) {
	tm := newTestTokenManager()

	_, err := tm.Validate("not.a.token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestIssueResetToken_Type(t *testing.T) {
	tm := newTestTokenManager()

	token, err := tm.IssueResetToken(9)
	require.NoError(t, err)

	claims, err := tm.Validate(token)
	require.NoError(t, err)
	assert.Equal(t, models.TokenTypePasswordReset, claims.Type)
	assert.False(t, claims.IsFullAccess())
}
