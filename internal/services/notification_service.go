package services

import (
	"context"
	"log/slog"

	"github.com/greengo-app/greengo-api/internal/models"
)

// NotificationRepository is the storage surface for in-app notifications and
// push registrations.
type NotificationRepository interface {
	ListByUser(ctx context.Context, userID int64, limit int) ([]*models.Notification, error)
	Create(ctx context.Context, n *models.Notification) error
	MarkRead(ctx context.Context, userID, notificationID int64) error
	MarkAllRead(ctx context.Context, userID int64) error
	RegisterDeviceToken(ctx context.Context, userID int64, token string) error
	DeviceTokens(ctx context.Context, userID int64) ([]string, error)
}

// PushNotifier delivers a notification to a set of device tokens. Delivery
// is best effort; failures are logged, not surfaced.
type PushNotifier interface {
	Push(ctx context.Context, deviceTokens []string, title, message string) error
}

// LogPushNotifier is the default notifier: it records the push instead of
// delivering it. Swapped for a real provider client in deployments that
// have one configured.
type LogPushNotifier struct {
	Logger *slog.Logger
}

func (n *LogPushNotifier) Push(ctx context.Context, deviceTokens []string, title, message string) error {
	n.Logger.Info("push notification", "devices", len(deviceTokens), "title", title)
	return nil
}

type NotificationService struct {
	notifications NotificationRepository
	push          PushNotifier
	logger        *slog.Logger
}

func NewNotificationService(notifications NotificationRepository, push PushNotifier, logger *slog.Logger) *NotificationService {
	return &NotificationService{notifications: notifications, push: push, logger: logger}
}

const defaultNotificationLimit = 100

func (s *NotificationService) List(ctx context.Context, userID int64) ([]*models.Notification, error) {
	return s.notifications.ListByUser(ctx, userID, defaultNotificationLimit)
}

// Notify stores an in-app notification and fans it out to the user's
// registered devices.
func (s *NotificationService) Notify(ctx context.Context, userID int64, title, message, notificationType string) error {
	n := &models.Notification{
		UserID:  userID,
		Title:   title,
		Message: message,
		Type:    notificationType,
	}
	if err := s.notifications.Create(ctx, n); err != nil {
		return err
	}

	tokens, err := s.notifications.DeviceTokens(ctx, userID)
	if err != nil {
		s.logger.Error("failed to load device tokens", "userId", userID, "error", err)
		return nil
	}
	if len(tokens) == 0 {
		return nil
	}

	if err := s.push.Push(ctx, tokens, title, message); err != nil {
		s.logger.Error("push delivery failed", "userId", userID, "error", err)
	}
	return nil
}

func (s *NotificationService) MarkRead(ctx context.Context, userID, notificationID int64) error {
	return s.notifications.MarkRead(ctx, userID, notificationID)
}

func (s *NotificationService) MarkAllRead(ctx context.Context, userID int64) error {
	return s.notifications.MarkAllRead(ctx, userID)
}

func (s *NotificationService) RegisterDevice(ctx context.Context, userID int64, token string) error {
	return s.notifications.RegisterDeviceToken(ctx, userID, token)
}
