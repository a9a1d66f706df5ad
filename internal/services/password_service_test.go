package services

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/greengo-app/greengo-api/internal/auth"
	"github.com/greengo-app/greengo-api/internal/models"
	pkgauth "github.com/greengo-app/greengo-api/pkg/auth"
	pkglogger "github.com/greengo-app/greengo-api/pkg/logger"
)

func newTestPasswordService(users *MockUserRepository, email *MockEmailService) (*PasswordService, *auth.TokenManager) {
	logger := testLogger()
	tm := auth.NewTokenManager(testJWTSecret, 2*time.Hour, 24*time.Hour, 5*time.Minute, time.Hour)
	if email == nil {
		email = &MockEmailService{}
	}
	svc := NewPasswordService(users, email, tm, "https://app.example.com/reset", logger, pkglogger.NewAuditLogger(logger))
	return svc, tm
}

func TestRequestReset_SendsLink(t *testing.T) {
	users := &MockUserRepository{
		GetByEmailFunc: func(ctx context.Context, email string) (*models.User, error) {
			return &models.User{ID: 10, Email: email}, nil
		},
	}
	var sentLink string
	email := &MockEmailService{
		SendPasswordResetEmailFunc: func(ctx context.Context, to, resetLink string) error {
			sentLink = resetLink
			return nil
		},
	}
	svc, _ := newTestPasswordService(users, email)

	err := svc.RequestReset(context.Background(), "u@example.com")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(sentLink, "https://app.example.com/reset?token="))
}

func TestRequestReset_UnknownEmailLooksIdentical(t *testing.T) {
	email := &MockEmailService{
		SendPasswordResetEmailFunc: func(ctx context.Context, to, resetLink string) error {
			t.Fatal("no email should be sent for unknown addresses")
			return nil
		},
	}
	svc, _ := newTestPasswordService(&MockUserRepository{}, email)

	err := svc.RequestReset(context.Background(), "nobody@example.com")
	assert.NoError(t, err)
}

func TestConfirmReset_Success(t *testing.T) {
	var storedHash string
	users := &MockUserRepository{
		UpdatePasswordFunc: func(ctx context.Context, userID int64, passwordHash string) error {
			assert.Equal(t, int64(10), userID)
			storedHash = passwordHash
			return nil
		},
	}
	svc, tm := newTestPasswordService(users, nil)

	token, err := tm.IssueResetToken(10)
	require.NoError(t, err)

	err = svc.ConfirmReset(context.Background(), token, "new-Passw0rd")
	require.NoError(t, err)
	assert.NoError(t, pkgauth.ComparePassword(storedHash, "new-Passw0rd"))
}

func TestConfirmReset_RejectsSessionToken(t *testing.T) {
	svc, tm := newTestPasswordService(&MockUserRepository{}, nil)

	token, err := tm.IssueSession(10, false)
	require.NoError(t, err)

	err = svc.ConfirmReset(context.Background(), token, "new-Passw0rd")
	assert.ErrorIs(t, err, models.ErrWrongTokenType)
}

func TestConfirmReset_WeakPassword(t *testing.T) {
	svc, tm := newTestPasswordService(&MockUserRepository{}, nil)

	token, err := tm.IssueResetToken(10)
	require.NoError(t, err)

	err = svc.ConfirmReset(context.Background(), token, "short")
	assert.ErrorIs(t, err, models.ErrBadRequest)
}
