package services

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/greengo-app/greengo-api/internal/auth"
	"github.com/greengo-app/greengo-api/internal/models"
	pkglogger "github.com/greengo-app/greengo-api/pkg/logger"
)

// UserRepository defines the interface for user data access
type UserRepository interface {
	GetByID(ctx context.Context, id int64) (*models.User, error)
	GetBySubject(ctx context.Context, subjectID string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	Create(ctx context.Context, user *models.User) (*models.User, error)
}

// CredentialVerifier resolves an inbound Authorization header to the
// identity-provider subject it asserts.
type CredentialVerifier interface {
	VerifyBearer(ctx context.Context, authorization string) (subject string, err error)
}

// WalletProvisioner creates the user's wallet at registration time.
type WalletProvisioner interface {
	EnsureWallet(ctx context.Context, userID int64) (*models.Wallet, error)
}

// AuthService handles login, registration, and the two-factor challenge step.
type AuthService struct {
	users       UserRepository
	verifier    CredentialVerifier
	wallets     WalletProvisioner
	twofa       *TwoFactorService
	tm          *auth.TokenManager
	logger      *slog.Logger
	auditLogger *pkglogger.AuditLogger
}

func NewAuthService(
	users UserRepository,
	verifier CredentialVerifier,
	wallets WalletProvisioner,
	twofa *TwoFactorService,
	tm *auth.TokenManager,
	logger *slog.Logger,
	auditLogger *pkglogger.AuditLogger,
) *AuthService {
	return &AuthService{
		users:       users,
		verifier:    verifier,
		wallets:     wallets,
		twofa:       twofa,
		tm:          tm,
		logger:      logger,
		auditLogger: auditLogger,
	}
}

// UserResponse represents a user in the HTTP response
type UserResponse struct {
	ID           int64  `json:"id"`
	Email        string `json:"email"`
	Name         string `json:"name"`
	Country      string `json:"country,omitempty"`
	Phone        string `json:"phone,omitempty"`
	AvatarURL    string `json:"avatarUrl,omitempty"`
	Language     string `json:"language"`
	TwoFAEnabled bool   `json:"twofaEnabled"`
}

func newUserResponse(user *models.User) *UserResponse {
	return &UserResponse{
		ID:           user.ID,
		Email:        user.Email,
		Name:         user.Name,
		Country:      user.Country,
		Phone:        user.Phone,
		AvatarURL:    user.AvatarURL,
		Language:     user.Language,
		TwoFAEnabled: user.TwoFAEnabled,
	}
}

// LoginResult is either a completed session or a two-factor challenge. When
// TwoFARequired is set, TempToken holds the short-lived challenge token and
// Token/User are empty.
type LoginResult struct {
	TwoFARequired bool
	TempToken     string
	Token         string
	User          *UserResponse
}

// Login verifies the identity-provider credential in the Authorization header
// and either completes the session or demands a two-factor code.
func (s *AuthService) Login(ctx context.Context, authorization string, rememberMe bool, ipAddress string) (*LoginResult, error) {
	subject, err := s.verifier.VerifyBearer(ctx, authorization)
	if err != nil {
		s.auditLogger.LogAuthAttempt(pkglogger.AuditEvent{
			EventType:     "login",
			IPAddress:     ipAddress,
			Success:       false,
			FailureReason: "credential_rejected",
		})
		return nil, err
	}

	user, err := s.users.GetBySubject(ctx, subject)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			s.logger.Info("login for unknown subject")
			return nil, models.ErrNotFound
		}
		return nil, err
	}

	if user.TwoFAEnabled {
		tempToken, err := s.tm.IssueChallenge(user.ID)
		if err != nil {
			s.logger.Error("failed to issue challenge token", "error", err)
			return nil, models.ErrInternalServer
		}

		s.auditLogger.LogAuthAttempt(pkglogger.AuditEvent{
			EventType: "login_challenge_issued",
			UserID:    user.ID,
			IPAddress: ipAddress,
			Success:   true,
		})
		return &LoginResult{TwoFARequired: true, TempToken: tempToken}, nil
	}

	token, err := s.tm.IssueSession(user.ID, rememberMe)
	if err != nil {
		s.logger.Error("failed to issue session token", "error", err)
		return nil, models.ErrInternalServer
	}

	s.auditLogger.LogAuthAttempt(pkglogger.AuditEvent{
		EventType: "login",
		UserID:    user.ID,
		IPAddress: ipAddress,
		Success:   true,
	})
	return &LoginResult{Token: token, User: newUserResponse(user)}, nil
}

// VerifyChallenge completes a two-factor login: it validates the challenge
// token and the authenticator code, then mints a fresh full-access session.
// A full-access token presented here is rejected outright.
func (s *AuthService) VerifyChallenge(ctx context.Context, tempToken, code, ipAddress string) (*LoginResult, error) {
	claims, err := s.tm.Validate(tempToken)
	if err != nil {
		if errors.Is(err, auth.ErrTokenExpired) {
			return nil, models.ErrChallengeExpired
		}
		return nil, models.ErrUnauthorized
	}
	if !claims.IsChallenge() {
		return nil, models.ErrWrongTokenType
	}

	if err := s.twofa.VerifyLoginCode(ctx, claims.UserID, code, ipAddress); err != nil {
		return nil, err
	}

	user, err := s.users.GetByID(ctx, claims.UserID)
	if err != nil {
		return nil, err
	}

	token, err := s.tm.IssueSession(user.ID, false)
	if err != nil {
		s.logger.Error("failed to issue session token", "error", err)
		return nil, models.ErrInternalServer
	}

	s.auditLogger.LogAuthAttempt(pkglogger.AuditEvent{
		EventType: "login_challenge_completed",
		UserID:    user.ID,
		IPAddress: ipAddress,
		Success:   true,
	})
	return &LoginResult{Token: token, User: newUserResponse(user)}, nil
}

// RegisterRequest is the profile supplied alongside the identity credential
// at signup.
type RegisterRequest struct {
	Email      string `json:"email" validate:"required,email"`
	Name       string `json:"name" validate:"required,min=1,max=100"`
	NationalID string `json:"nationalId" validate:"omitempty,max=32"`
	Country    string `json:"country" validate:"omitempty,max=56"`
	Phone      string `json:"phone" validate:"omitempty,max=32"`
	Language   string `json:"language" validate:"omitempty,max=10"`
}

// Register creates an account bound to the identity-provider subject in the
// Authorization header, provisions its wallet, and opens a session.
func (s *AuthService) Register(ctx context.Context, authorization string, req *RegisterRequest, ipAddress string) (*LoginResult, error) {
	subject, err := s.verifier.VerifyBearer(ctx, authorization)
	if err != nil {
		return nil, err
	}

	language := req.Language
	if language == "" {
		language = "en"
	}

	user, err := s.users.Create(ctx, &models.User{
		SubjectID:  subject,
		Email:      strings.ToLower(strings.TrimSpace(req.Email)),
		Name:       strings.TrimSpace(req.Name),
		NationalID: req.NationalID,
		Country:    req.Country,
		Phone:      req.Phone,
		Language:   language,
	})
	if err != nil {
		if errors.Is(err, models.ErrConflict) {
			return nil, models.ErrConflict
		}
		s.logger.Error("failed to create user", "error", err)
		return nil, models.ErrInternalServer
	}

	// Wallet provisioning failure is not fatal to signup; the wallet is
	// re-created lazily on first access.
	if _, err := s.wallets.EnsureWallet(ctx, user.ID); err != nil {
		s.logger.Error("failed to provision wallet", "userId", user.ID, "error", err)
	}

	token, err := s.tm.IssueSession(user.ID, false)
	if err != nil {
		s.logger.Error("failed to issue session token", "error", err)
		return nil, models.ErrInternalServer
	}

	s.auditLogger.LogAccountAction("register", user.ID, ipAddress, nil)
	return &LoginResult{Token: token, User: newUserResponse(user)}, nil
}
