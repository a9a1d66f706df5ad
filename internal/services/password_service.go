package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"

	"github.com/greengo-app/greengo-api/internal/auth"
	"github.com/greengo-app/greengo-api/internal/models"
	pkgauth "github.com/greengo-app/greengo-api/pkg/auth"
	pkglogger "github.com/greengo-app/greengo-api/pkg/logger"
)

// PasswordUserRepository is the user storage surface for password resets.
type PasswordUserRepository interface {
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	UpdatePassword(ctx context.Context, userID int64, passwordHash string) error
}

// PasswordService drives the email-based password reset flow.
type PasswordService struct {
	users        PasswordUserRepository
	email        EmailService
	tm           *auth.TokenManager
	resetURLBase string
	logger       *slog.Logger
	auditLogger  *pkglogger.AuditLogger
}

func NewPasswordService(
	users PasswordUserRepository,
	email EmailService,
	tm *auth.TokenManager,
	resetURLBase string,
	logger *slog.Logger,
	auditLogger *pkglogger.AuditLogger,
) *PasswordService {
	return &PasswordService{
		users:        users,
		email:        email,
		tm:           tm,
		resetURLBase: resetURLBase,
		logger:       logger,
		auditLogger:  auditLogger,
	}
}

// RequestReset emails a reset link when the address belongs to an account.
// The response is identical either way so the endpoint cannot be used to
// probe which addresses are registered.
func (s *PasswordService) RequestReset(ctx context.Context, email string) error {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			s.logger.Info("password reset requested for unknown email",
				"email", pkglogger.SanitizedEmail(email))
			return nil
		}
		return err
	}

	token, err := s.tm.IssueResetToken(user.ID)
	if err != nil {
		s.logger.Error("failed to issue reset token", "error", err)
		return models.ErrInternalServer
	}

	resetLink := fmt.Sprintf("%s?token=%s", s.resetURLBase, url.QueryEscape(token))
	if err := s.email.SendPasswordResetEmail(ctx, user.Email, resetLink); err != nil {
		// Swallowed: a delivery failure must look the same as success.
		s.logger.Error("failed to send reset email", "userId", user.ID, "error", err)
		return nil
	}

	s.auditLogger.LogAccountAction("password_reset_requested", user.ID, "", nil)
	return nil
}

// ConfirmReset validates the emailed token and sets the new password. Only
// tokens minted by RequestReset are accepted; session and challenge tokens
// are refused.
func (s *PasswordService) ConfirmReset(ctx context.Context, token, newPassword string) error {
	claims, err := s.tm.Validate(token)
	if err != nil {
		if errors.Is(err, auth.ErrTokenExpired) {
			return models.ErrChallengeExpired
		}
		return models.ErrUnauthorized
	}
	if claims.Type != models.TokenTypePasswordReset {
		return models.ErrWrongTokenType
	}

	if err := pkgauth.ValidatePassword(newPassword); err != nil {
		return models.ErrBadRequest
	}

	hash, err := pkgauth.HashPassword(newPassword)
	if err != nil {
		s.logger.Error("failed to hash password", "error", err)
		return models.ErrInternalServer
	}

	if err := s.users.UpdatePassword(ctx, claims.UserID, hash); err != nil {
		return err
	}

	s.auditLogger.LogAccountAction("password_reset_completed", claims.UserID, "", nil)
	return nil
}
