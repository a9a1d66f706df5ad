package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/greengo-app/greengo-api/internal/auth"
	"github.com/greengo-app/greengo-api/internal/models"
	pkglogger "github.com/greengo-app/greengo-api/pkg/logger"
)

// TwoFactorUserRepository is the slice of user storage the 2FA manager needs.
type TwoFactorUserRepository interface {
	GetByID(ctx context.Context, id int64) (*models.User, error)
	GetTwoFactorState(ctx context.Context, userID int64) (*models.TwoFactorState, error)
	SetTwoFactorSecretIfAbsent(ctx context.Context, userID int64, secret string) (string, error)
	EnableTwoFactor(ctx context.Context, userID int64) error
	DisableTwoFactor(ctx context.Context, userID int64) error
}

// AttemptRepository records code-verification attempts for throttling.
type AttemptRepository interface {
	RecordAttempt(ctx context.Context, userID int64, success bool, ipAddress string) error
	CountFailedSince(ctx context.Context, userID int64, since time.Time) (int, error)
}

// TwoFactorService handles authenticator enrollment and code verification.
type TwoFactorService struct {
	users       TwoFactorUserRepository
	attempts    AttemptRepository
	totp        *auth.TOTPManager
	timing      *auth.TimingDelay
	logger      *slog.Logger
	auditLogger *pkglogger.AuditLogger

	maxAttempts   int
	attemptWindow time.Duration
}

func NewTwoFactorService(
	users TwoFactorUserRepository,
	attempts AttemptRepository,
	totp *auth.TOTPManager,
	timing *auth.TimingDelay,
	logger *slog.Logger,
	auditLogger *pkglogger.AuditLogger,
	maxAttempts int,
	attemptWindow time.Duration,
) *TwoFactorService {
	return &TwoFactorService{
		users:         users,
		attempts:      attempts,
		totp:          totp,
		timing:        timing,
		logger:        logger,
		auditLogger:   auditLogger,
		maxAttempts:   maxAttempts,
		attemptWindow: attemptWindow,
	}
}

// EnrollmentResponse carries the provisioning material the client renders
// during authenticator setup.
type EnrollmentResponse struct {
	Secret string `json:"secret"`
	QRCode string `json:"qrCode"`
}

// Generate provisions an authenticator secret for the user. Calling it again
// before the enrollment is confirmed returns the same secret, so a client
// that retries setup never invalidates the QR code it already displayed.
func (s *TwoFactorService) Generate(ctx context.Context, userID int64) (*EnrollmentResponse, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user.TwoFAEnabled {
		return nil, models.ErrConflict
	}

	fresh, _, err := s.totp.Provision(user.Email, "")
	if err != nil {
		s.logger.Error("failed to provision totp secret", "error", err)
		return nil, models.ErrInternalServer
	}

	// The conditional write makes concurrent setup requests converge on a
	// single stored secret; losers of the race get the winner's secret back.
	stored, err := s.users.SetTwoFactorSecretIfAbsent(ctx, userID, fresh)
	if err != nil {
		return nil, err
	}

	_, otpauthURL, err := s.totp.Provision(user.Email, stored)
	if err != nil {
		s.logger.Error("failed to rebuild provisioning url", "error", err)
		return nil, models.ErrInternalServer
	}

	qr, err := s.totp.QRCodeDataURL(otpauthURL)
	if err != nil {
		s.logger.Error("failed to render qr code", "error", err)
		return nil, models.ErrInternalServer
	}

	return &EnrollmentResponse{Secret: stored, QRCode: qr}, nil
}

// ConfirmEnrollment validates the first code against the pending secret and,
// on success, turns two-factor on. This is the only path that sets the
// enabled flag.
func (s *TwoFactorService) ConfirmEnrollment(ctx context.Context, userID int64, code, ipAddress string) error {
	state, err := s.users.GetTwoFactorState(ctx, userID)
	if err != nil {
		return err
	}
	if state.Secret == nil || *state.Secret == "" {
		return models.ErrTwoFactorNotInitiated
	}

	if err := s.checkCode(ctx, userID, *state.Secret, code, ipAddress, "twofa_enrollment"); err != nil {
		return err
	}

	if err := s.users.EnableTwoFactor(ctx, userID); err != nil {
		return err
	}

	s.auditLogger.LogAccountAction("twofa_enabled", userID, ipAddress, nil)
	return nil
}

// VerifyLoginCode validates a code during the second step of login. It
// requires two-factor to be fully enabled; pending enrollments do not count.
func (s *TwoFactorService) VerifyLoginCode(ctx context.Context, userID int64, code, ipAddress string) error {
	state, err := s.users.GetTwoFactorState(ctx, userID)
	if err != nil {
		return err
	}
	if !state.Enabled || state.Secret == nil {
		return models.ErrTwoFactorNotInitiated
	}

	return s.checkCode(ctx, userID, *state.Secret, code, ipAddress, "twofa_login")
}

// Disable turns two-factor off and discards the secret, whether enrollment
// was confirmed or still pending.
func (s *TwoFactorService) Disable(ctx context.Context, userID int64, ipAddress string) error {
	if err := s.users.DisableTwoFactor(ctx, userID); err != nil {
		return err
	}

	s.auditLogger.LogAccountAction("twofa_disabled", userID, ipAddress, nil)
	return nil
}

// Status reports whether two-factor is enabled for the user.
func (s *TwoFactorService) Status(ctx context.Context, userID int64) (bool, error) {
	state, err := s.users.GetTwoFactorState(ctx, userID)
	if err != nil {
		return false, err
	}
	return state.Enabled, nil
}

// checkCode enforces the failure throttle, validates the code, and records
// the attempt. Failed validations sleep through the timing delay so wrong
// codes cost the caller the same wall time regardless of failure cause.
func (s *TwoFactorService) checkCode(ctx context.Context, userID int64, secret, code, ipAddress, eventType string) error {
	failed, err := s.attempts.CountFailedSince(ctx, userID, time.Now().Add(-s.attemptWindow))
	if err != nil {
		return fmt.Errorf("counting failed attempts: %w", err)
	}
	if failed >= s.maxAttempts {
		s.auditLogger.LogAuthAttempt(pkglogger.AuditEvent{
			EventType:     eventType,
			UserID:        userID,
			IPAddress:     ipAddress,
			Success:       false,
			FailureReason: "throttled",
		})
		return models.ErrTooManyAttempts
	}

	valid := s.totp.ValidateCode(secret, code)

	if err := s.attempts.RecordAttempt(ctx, userID, valid, ipAddress); err != nil {
		s.logger.Error("failed to record verification attempt", "error", err)
	}

	s.auditLogger.LogAuthAttempt(pkglogger.AuditEvent{
		EventType: eventType,
		UserID:    userID,
		IPAddress: ipAddress,
		Success:   valid,
	})

	if !valid {
		s.timing.Wait(false)
		return models.ErrInvalidCode
	}
	return nil
}
