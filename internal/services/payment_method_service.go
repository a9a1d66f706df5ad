package services

import (
	"context"
	"log/slog"

	"github.com/greengo-app/greengo-api/internal/models"
)

// PaymentMethodRepository is the storage surface for payout destinations.
type PaymentMethodRepository interface {
	ListByUser(ctx context.Context, userID int64) ([]*models.PaymentMethod, error)
	Create(ctx context.Context, m *models.PaymentMethod, makeDefault bool) (*models.PaymentMethod, error)
	SetDefault(ctx context.Context, userID, methodID int64) error
	Delete(ctx context.Context, userID, methodID int64) error
}

type PaymentMethodService struct {
	methods PaymentMethodRepository
	logger  *slog.Logger
}

func NewPaymentMethodService(methods PaymentMethodRepository, logger *slog.Logger) *PaymentMethodService {
	return &PaymentMethodService{methods: methods, logger: logger}
}

func (s *PaymentMethodService) List(ctx context.Context, userID int64) ([]*models.PaymentMethod, error) {
	return s.methods.ListByUser(ctx, userID)
}

// AddPaymentMethodRequest registers a payout destination.
type AddPaymentMethodRequest struct {
	Type      string `json:"type" validate:"required,oneof=pix bank"`
	Key       string `json:"key" validate:"required,max=140"`
	Label     string `json:"label" validate:"omitempty,max=60"`
	IsDefault bool   `json:"isDefault"`
}

func (s *PaymentMethodService) Add(ctx context.Context, userID int64, req *AddPaymentMethodRequest) (*models.PaymentMethod, error) {
	existing, err := s.methods.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	// The first method a user adds is always their default.
	makeDefault := req.IsDefault || len(existing) == 0

	created, err := s.methods.Create(ctx, &models.PaymentMethod{
		UserID: userID,
		Type:   req.Type,
		Key:    req.Key,
		Label:  req.Label,
	}, makeDefault)
	if err != nil {
		return nil, err
	}

	s.logger.Info("payment method added", "userId", userID, "methodId", created.ID, "type", created.Type)
	return created, nil
}

func (s *PaymentMethodService) SetDefault(ctx context.Context, userID, methodID int64) error {
	return s.methods.SetDefault(ctx, userID, methodID)
}

// Remove deletes a payout destination. The default method cannot be removed
// while other methods remain; the user must promote another one first.
func (s *PaymentMethodService) Remove(ctx context.Context, userID, methodID int64) error {
	existing, err := s.methods.ListByUser(ctx, userID)
	if err != nil {
		return err
	}

	for _, m := range existing {
		if m.ID == methodID && m.IsDefault && len(existing) > 1 {
			return models.ErrConflict
		}
	}

	return s.methods.Delete(ctx, userID, methodID)
}
