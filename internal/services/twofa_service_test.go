package services

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/pquerna/otp/totp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/greengo-app/greengo-api/internal/auth"
	"github.com/greengo-app/greengo-api/internal/models"
	pkglogger "github.com/greengo-app/greengo-api/pkg/logger"
)

func newTestTwoFactorService(users *MockUserRepository, attempts *MockAttemptRepository) *TwoFactorService {
	logger := testLogger()
	if attempts == nil {
		attempts = &MockAttemptRepository{}
	}
	return NewTwoFactorService(
		users, attempts,
		auth.NewTOTPManager("GreenGo"),
		auth.NewTimingDelay(auth.TimingConfig{}),
		logger, pkglogger.NewAuditLogger(logger),
		5, 5*time.Minute,
	)
}

func TestGenerate_FreshEnrollment(t *testing.T) {
	var storedSecret string
	users := &MockUserRepository{
		GetByIDFunc: func(ctx context.Context, id int64) (*models.User, error) {
			return &models.User{ID: id, Email: "u@example.com"}, nil
		},
		SetTwoFactorSecretIfAbsentFunc: func(ctx context.Context, userID int64, secret string) (string, error) {
			storedSecret = secret
			return secret, nil
		},
	}
	svc := newTestTwoFactorService(users, nil)

	resp, err := svc.Generate(context.Background(), 10)
	require.NoError(t, err)

	assert.Equal(t, storedSecret, resp.Secret)
	assert.True(t, strings.HasPrefix(resp.QRCode, "data:image/png;base64,"))
}

func TestGenerate_ReturnsPendingSecret(t *testing.T) {
	existing := "JBSWY3DPEHPK3PXPJBSWY3DPEHPK3PXP"
	users := &MockUserRepository{
		GetByIDFunc: func(ctx context.Context, id int64) (*models.User, error) {
			return &models.User{ID: id, Email: "u@example.com", TwoFASecret: &existing}, nil
		},
		SetTwoFactorSecretIfAbsentFunc: func(ctx context.Context, userID int64, secret string) (string, error) {
			// A secret is already on record; the fresh one is discarded.
			return existing, nil
		},
	}
	svc := newTestTwoFactorService(users, nil)

	resp, err := svc.Generate(context.Background(), 10)
	require.NoError(t, err)

	assert.Equal(t, existing, resp.Secret)
}

func TestGenerate_AlreadyEnabled(t *testing.T) {
	users := &MockUserRepository{
		GetByIDFunc: func(ctx context.Context, id int64) (*models.User, error) {
			return &models.User{ID: id, Email: "u@example.com", TwoFAEnabled: true}, nil
		},
	}
	svc := newTestTwoFactorService(users, nil)

	_, err := svc.Generate(context.Background(), 10)
	assert.ErrorIs(t, err, models.ErrConflict)
}

func TestConfirmEnrollment_Success(t *testing.T) {
	totpManager := auth.NewTOTPManager("GreenGo")
	secret, _, err := totpManager.Provision("u@example.com", "")
	require.NoError(t, err)

	enabled := false
	users := &MockUserRepository{
		GetTwoFactorStateFunc: func(ctx context.Context, userID int64) (*models.TwoFactorState, error) {
			return &models.TwoFactorState{UserID: userID, Enabled: false, Secret: &secret}, nil
		},
		EnableTwoFactorFunc: func(ctx context.Context, userID int64) error {
			enabled = true
			return nil
		},
	}
	svc := newTestTwoFactorService(users, nil)

	code, err := totp.GenerateCode(secret, time.Now())
	require.NoError(t, err)

	err = svc.ConfirmEnrollment(context.Background(), 10, code, "1.2.3.4")
	require.NoError(t, err)
	assert.True(t, enabled)
}

func TestConfirmEnrollment_NoPendingSecret(t *testing.T) {
	users := &MockUserRepository{
		GetTwoFactorStateFunc: func(ctx context.Context, userID int64) (*models.TwoFactorState, error) {
			return &models.TwoFactorState{UserID: userID}, nil
		},
	}
	svc := newTestTwoFactorService(users, nil)

	err := svc.ConfirmEnrollment(context.Background(), 10, "123456", "")
	assert.ErrorIs(t, err, models.ErrTwoFactorNotInitiated)
}

func TestConfirmEnrollment_WrongCodeLeavesDisabled(t *testing.T) {
	totpManager := auth.NewTOTPManager("GreenGo")
	secret, _, err := totpManager.Provision("u@example.com", "")
	require.NoError(t, err)

	users := &MockUserRepository{
		GetTwoFactorStateFunc: func(ctx context.Context, userID int64) (*models.TwoFactorState, error) {
			return &models.TwoFactorState{UserID: userID, Secret: &secret}, nil
		},
		EnableTwoFactorFunc: func(ctx context.Context, userID int64) error {
			t.Fatal("two-factor must not be enabled on a failed code")
			return nil
		},
	}
	svc := newTestTwoFactorService(users, nil)

	err = svc.ConfirmEnrollment(context.Background(), 10, "000000", "")
	assert.ErrorIs(t, err, models.ErrInvalidCode)
}

func TestVerifyLoginCode_RequiresEnabled(t *testing.T) {
	secret := "JBSWY3DPEHPK3PXPJBSWY3DPEHPK3PXP"
	users := &MockUserRepository{
		GetTwoFactorStateFunc: func(ctx context.Context, userID int64) (*models.TwoFactorState, error) {
			// Pending enrollment: secret stored, flag off.
			return &models.TwoFactorState{UserID: userID, Enabled: false, Secret: &secret}, nil
		},
	}
	svc := newTestTwoFactorService(users, nil)

	err := svc.VerifyLoginCode(context.Background(), 10, "123456", "")
	assert.ErrorIs(t, err, models.ErrTwoFactorNotInitiated)
}

func TestDisable_ClearsState(t *testing.T) {
	cleared := false
	users := &MockUserRepository{
		DisableTwoFactorFunc: func(ctx context.Context, userID int64) error {
			cleared = true
			return nil
		},
	}
	svc := newTestTwoFactorService(users, nil)

	err := svc.Disable(context.Background(), 10, "")
	require.NoError(t, err)
	assert.True(t, cleared)
}

func TestStatus(t *testing.T) {
	users := &MockUserRepository{
		GetTwoFactorStateFunc: func(ctx context.Context, userID int64) (*models.TwoFactorState, error) {
			return &models.TwoFactorState{UserID: userID, Enabled: true}, nil
		},
	}
	svc := newTestTwoFactorService(users, nil)

	enabled, err := svc.Status(context.Background(), 10)
	require.NoError(t, err)
	assert.True(t, enabled)
}
