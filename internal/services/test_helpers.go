package services

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/greengo-app/greengo-api/internal/models"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// MockUserRepository implements the user storage interfaces for testing
type MockUserRepository struct {
	GetByIDFunc                    func(ctx context.Context, id int64) (*models.User, error)
	GetBySubjectFunc               func(ctx context.Context, subjectID string) (*models.User, error)
	GetByEmailFunc                 func(ctx context.Context, email string) (*models.User, error)
	CreateFunc                     func(ctx context.Context, user *models.User) (*models.User, error)
	UpdateProfileFunc              func(ctx context.Context, user *models.User) (*models.User, error)
	UpdateAvatarFunc               func(ctx context.Context, userID int64, avatarURL string) error
	UpdateLanguageFunc             func(ctx context.Context, userID int64, language string) error
	UpdatePreferencesFunc          func(ctx context.Context, userID int64, notificationsEnabled, darkMode bool) error
	UpdatePasswordFunc             func(ctx context.Context, userID int64, passwordHash string) error
	GetTwoFactorStateFunc          func(ctx context.Context, userID int64) (*models.TwoFactorState, error)
	SetTwoFactorSecretIfAbsentFunc func(ctx context.Context, userID int64, secret string) (string, error)
	EnableTwoFactorFunc            func(ctx context.Context, userID int64) error
	DisableTwoFactorFunc           func(ctx context.Context, userID int64) error
}

func (m *MockUserRepository) GetByID(ctx context.Context, id int64) (*models.User, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	return nil, models.ErrNotFound
}

func (m *MockUserRepository) GetBySubject(ctx context.Context, subjectID string) (*models.User, error) {
	if m.GetBySubjectFunc != nil {
		return m.GetBySubjectFunc(ctx, subjectID)
	}
	return nil, models.ErrNotFound
}

func (m *MockUserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	if m.GetByEmailFunc != nil {
		return m.GetByEmailFunc(ctx, email)
	}
	return nil, models.ErrNotFound
}

func (m *MockUserRepository) Create(ctx context.Context, user *models.User) (*models.User, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, user)
	}
	return nil, models.ErrInternalServer
}

func (m *MockUserRepository) UpdateProfile(ctx context.Context, user *models.User) (*models.User, error) {
	if m.UpdateProfileFunc != nil {
		return m.UpdateProfileFunc(ctx, user)
	}
	return nil, models.ErrInternalServer
}

func (m *MockUserRepository) UpdateAvatar(ctx context.Context, userID int64, avatarURL string) error {
	if m.UpdateAvatarFunc != nil {
		return m.UpdateAvatarFunc(ctx, userID, avatarURL)
	}
	return nil
}

func (m *MockUserRepository) UpdateLanguage(ctx context.Context, userID int64, language string) error {
	if m.UpdateLanguageFunc != nil {
		return m.UpdateLanguageFunc(ctx, userID, language)
	}
	return nil
}

func (m *MockUserRepository) UpdatePreferences(ctx context.Context, userID int64, notificationsEnabled, darkMode bool) error {
	if m.UpdatePreferencesFunc != nil {
		return m.UpdatePreferencesFunc(ctx, userID, notificationsEnabled, darkMode)
	}
	return nil
}

func (m *MockUserRepository) UpdatePassword(ctx context.Context, userID int64, passwordHash string) error {
	if m.UpdatePasswordFunc != nil {
		return m.UpdatePasswordFunc(ctx, userID, passwordHash)
	}
	return nil
}

func (m *MockUserRepository) GetTwoFactorState(ctx context.Context, userID int64) (*models.TwoFactorState, error) {
	if m.GetTwoFactorStateFunc != nil {
		return m.GetTwoFactorStateFunc(ctx, userID)
	}
	return nil, models.ErrNotFound
}

func (m *MockUserRepository) SetTwoFactorSecretIfAbsent(ctx context.Context, userID int64, secret string) (string, error) {
	if m.SetTwoFactorSecretIfAbsentFunc != nil {
		return m.SetTwoFactorSecretIfAbsentFunc(ctx, userID, secret)
	}
	return secret, nil
}

func (m *MockUserRepository) EnableTwoFactor(ctx context.Context, userID int64) error {
	if m.EnableTwoFactorFunc != nil {
		return m.EnableTwoFactorFunc(ctx, userID)
	}
	return nil
}

func (m *MockUserRepository) DisableTwoFactor(ctx context.Context, userID int64) error {
	if m.DisableTwoFactorFunc != nil {
		return m.DisableTwoFactorFunc(ctx, userID)
	}
	return nil
}

// MockCredentialVerifier implements CredentialVerifier for testing
type MockCredentialVerifier struct {
	VerifyBearerFunc func(ctx context.Context, authorization string) (string, error)
}

func (m *MockCredentialVerifier) VerifyBearer(ctx context.Context, authorization string) (string, error) {
	if m.VerifyBearerFunc != nil {
		return m.VerifyBearerFunc(ctx, authorization)
	}
	return "", models.ErrInvalidCredential
}

// MockAttemptRepository implements AttemptRepository for testing
type MockAttemptRepository struct {
	RecordAttemptFunc    func(ctx context.Context, userID int64, success bool, ipAddress string) error
	CountFailedSinceFunc func(ctx context.Context, userID int64, since time.Time) (int, error)
}

func (m *MockAttemptRepository) RecordAttempt(ctx context.Context, userID int64, success bool, ipAddress string) error {
	if m.RecordAttemptFunc != nil {
		return m.RecordAttemptFunc(ctx, userID, success, ipAddress)
	}
	return nil
}

func (m *MockAttemptRepository) CountFailedSince(ctx context.Context, userID int64, since time.Time) (int, error) {
	if m.CountFailedSinceFunc != nil {
		return m.CountFailedSinceFunc(ctx, userID, since)
	}
	return 0, nil
}

// MockWalletRepository implements WalletRepository for testing
type MockWalletRepository struct {
	EnsureWalletFunc func(ctx context.Context, userID int64) (*models.Wallet, error)
	GetByUserFunc    func(ctx context.Context, userID int64) (*models.Wallet, error)
	StatementFunc    func(ctx context.Context, walletID int64, limit int) ([]*models.WalletTransaction, error)
	HomeFunc         func(ctx context.Context, userID int64) (*models.WalletHome, error)
}

func (m *MockWalletRepository) EnsureWallet(ctx context.Context, userID int64) (*models.Wallet, error) {
	if m.EnsureWalletFunc != nil {
		return m.EnsureWalletFunc(ctx, userID)
	}
	return &models.Wallet{ID: 1, UserID: userID}, nil
}

func (m *MockWalletRepository) GetByUser(ctx context.Context, userID int64) (*models.Wallet, error) {
	if m.GetByUserFunc != nil {
		return m.GetByUserFunc(ctx, userID)
	}
	return nil, models.ErrNotFound
}

func (m *MockWalletRepository) Statement(ctx context.Context, walletID int64, limit int) ([]*models.WalletTransaction, error) {
	if m.StatementFunc != nil {
		return m.StatementFunc(ctx, walletID, limit)
	}
	return []*models.WalletTransaction{}, nil
}

func (m *MockWalletRepository) Home(ctx context.Context, userID int64) (*models.WalletHome, error) {
	if m.HomeFunc != nil {
		return m.HomeFunc(ctx, userID)
	}
	return nil, models.ErrNotFound
}

// MockCollectionRepository implements CollectionRepository for testing
type MockCollectionRepository struct {
	ListByUserFunc      func(ctx context.Context, userID int64) ([]*models.Collection, error)
	GetByIDFunc         func(ctx context.Context, userID, collectionID int64) (*models.Collection, error)
	GetUpcomingFunc     func(ctx context.Context, userID int64) (*models.Collection, error)
	ReplaceUpcomingFunc func(ctx context.Context, c *models.Collection) (*models.Collection, error)
	RescheduleFunc      func(ctx context.Context, c *models.Collection) (*models.Collection, error)
	CancelFunc          func(ctx context.Context, userID, collectionID int64, reason string) error
}

func (m *MockCollectionRepository) ListByUser(ctx context.Context, userID int64) ([]*models.Collection, error) {
	if m.ListByUserFunc != nil {
		return m.ListByUserFunc(ctx, userID)
	}
	return []*models.Collection{}, nil
}

func (m *MockCollectionRepository) GetByID(ctx context.Context, userID, collectionID int64) (*models.Collection, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, userID, collectionID)
	}
	return nil, models.ErrNotFound
}

func (m *MockCollectionRepository) GetUpcoming(ctx context.Context, userID int64) (*models.Collection, error) {
	if m.GetUpcomingFunc != nil {
		return m.GetUpcomingFunc(ctx, userID)
	}
	return nil, models.ErrNotFound
}

func (m *MockCollectionRepository) ReplaceUpcoming(ctx context.Context, c *models.Collection) (*models.Collection, error) {
	if m.ReplaceUpcomingFunc != nil {
		return m.ReplaceUpcomingFunc(ctx, c)
	}
	return nil, models.ErrInternalServer
}

func (m *MockCollectionRepository) Reschedule(ctx context.Context, c *models.Collection) (*models.Collection, error) {
	if m.RescheduleFunc != nil {
		return m.RescheduleFunc(ctx, c)
	}
	return nil, models.ErrInternalServer
}

func (m *MockCollectionRepository) Cancel(ctx context.Context, userID, collectionID int64, reason string) error {
	if m.CancelFunc != nil {
		return m.CancelFunc(ctx, userID, collectionID, reason)
	}
	return nil
}

// MockEmailService implements EmailService for testing
type MockEmailService struct {
	SendPasswordResetEmailFunc func(ctx context.Context, email, resetLink string) error
}

func (m *MockEmailService) SendPasswordResetEmail(ctx context.Context, email, resetLink string) error {
	if m.SendPasswordResetEmailFunc != nil {
		return m.SendPasswordResetEmailFunc(ctx, email, resetLink)
	}
	return nil
}

// MockAvatarSink implements AvatarSink for testing
type MockAvatarSink struct {
	SaveFunc   func(userID int64, originalName string, r io.Reader) (string, error)
	RemoveFunc func(avatarURL string) error
}

func (m *MockAvatarSink) Save(userID int64, originalName string, r io.Reader) (string, error) {
	if m.SaveFunc != nil {
		return m.SaveFunc(userID, originalName, r)
	}
	return "/avatars/test.png", nil
}

func (m *MockAvatarSink) Remove(avatarURL string) error {
	if m.RemoveFunc != nil {
		return m.RemoveFunc(avatarURL)
	}
	return nil
}
