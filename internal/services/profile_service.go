package services

import (
	"context"
	"io"
	"log/slog"
	"strings"

	"github.com/greengo-app/greengo-api/internal/models"
)

// ProfileUserRepository is the user storage surface the profile service uses.
type ProfileUserRepository interface {
	GetByID(ctx context.Context, id int64) (*models.User, error)
	UpdateProfile(ctx context.Context, user *models.User) (*models.User, error)
	UpdateAvatar(ctx context.Context, userID int64, avatarURL string) error
	UpdateLanguage(ctx context.Context, userID int64, language string) error
	UpdatePreferences(ctx context.Context, userID int64, notificationsEnabled, darkMode bool) error
}

// AvatarSink persists uploaded avatar images and yields their public URL.
type AvatarSink interface {
	Save(userID int64, originalName string, r io.Reader) (string, error)
	Remove(avatarURL string) error
}

type ProfileService struct {
	users   ProfileUserRepository
	avatars AvatarSink
	logger  *slog.Logger
}

func NewProfileService(users ProfileUserRepository, avatars AvatarSink, logger *slog.Logger) *ProfileService {
	return &ProfileService{users: users, avatars: avatars, logger: logger}
}

// ProfileResponse is the full profile payload returned to the account owner.
type ProfileResponse struct {
	ID                   int64  `json:"id"`
	Email                string `json:"email"`
	Name                 string `json:"name"`
	NationalID           string `json:"nationalId,omitempty"`
	Country              string `json:"country,omitempty"`
	Phone                string `json:"phone,omitempty"`
	AvatarURL            string `json:"avatarUrl,omitempty"`
	Language             string `json:"language"`
	NotificationsEnabled bool   `json:"notificationsEnabled"`
	DarkMode             bool   `json:"darkMode"`
	TwoFAEnabled         bool   `json:"twofaEnabled"`
}

func newProfileResponse(user *models.User) *ProfileResponse {
	return &ProfileResponse{
		ID:                   user.ID,
		Email:                user.Email,
		Name:                 user.Name,
		NationalID:           user.NationalID,
		Country:              user.Country,
		Phone:                user.Phone,
		AvatarURL:            user.AvatarURL,
		Language:             user.Language,
		NotificationsEnabled: user.NotificationsEnabled,
		DarkMode:             user.DarkMode,
		TwoFAEnabled:         user.TwoFAEnabled,
	}
}

func (s *ProfileService) Get(ctx context.Context, userID int64) (*ProfileResponse, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return newProfileResponse(user), nil
}

// UpdateProfileRequest carries the editable profile fields.
type UpdateProfileRequest struct {
	Name       string `json:"name" validate:"required,min=1,max=100"`
	NationalID string `json:"nationalId" validate:"omitempty,max=32"`
	Country    string `json:"country" validate:"omitempty,max=56"`
	Phone      string `json:"phone" validate:"omitempty,max=32"`
}

func (s *ProfileService) Update(ctx context.Context, userID int64, req *UpdateProfileRequest) (*ProfileResponse, error) {
	updated, err := s.users.UpdateProfile(ctx, &models.User{
		ID:         userID,
		Name:       strings.TrimSpace(req.Name),
		NationalID: req.NationalID,
		Country:    req.Country,
		Phone:      req.Phone,
	})
	if err != nil {
		return nil, err
	}
	return newProfileResponse(updated), nil
}

// UpdateAvatar stores the uploaded image, points the profile at it, and
// removes the previous image if there was one.
func (s *ProfileService) UpdateAvatar(ctx context.Context, userID int64, originalName string, r io.Reader) (string, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return "", err
	}

	avatarURL, err := s.avatars.Save(userID, originalName, r)
	if err != nil {
		s.logger.Warn("avatar upload rejected", "userId", userID, "error", err)
		return "", models.ErrBadRequest
	}

	if err := s.users.UpdateAvatar(ctx, userID, avatarURL); err != nil {
		return "", err
	}

	if user.AvatarURL != "" {
		if err := s.avatars.Remove(user.AvatarURL); err != nil {
			s.logger.Warn("failed to remove old avatar", "userId", userID, "error", err)
		}
	}

	return avatarURL, nil
}

func (s *ProfileService) UpdateLanguage(ctx context.Context, userID int64, language string) error {
	return s.users.UpdateLanguage(ctx, userID, language)
}

// PreferencesRequest toggles the user's app preferences. Pointers distinguish
// "leave unchanged" from an explicit false.
type PreferencesRequest struct {
	NotificationsEnabled *bool `json:"notificationsEnabled"`
	DarkMode             *bool `json:"darkMode"`
}

func (s *ProfileService) UpdatePreferences(ctx context.Context, userID int64, req *PreferencesRequest) (*ProfileResponse, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	notifications := user.NotificationsEnabled
	if req.NotificationsEnabled != nil {
		notifications = *req.NotificationsEnabled
	}
	darkMode := user.DarkMode
	if req.DarkMode != nil {
		darkMode = *req.DarkMode
	}

	if err := s.users.UpdatePreferences(ctx, userID, notifications, darkMode); err != nil {
		return nil, err
	}

	user.NotificationsEnabled = notifications
	user.DarkMode = darkMode
	return newProfileResponse(user), nil
}
