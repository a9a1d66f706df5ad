package services

import (
	"context"
	"log/slog"
	"math"
	"time"

	"github.com/greengo-app/greengo-api/internal/models"
)

// CollectionRepository is the storage surface for pickup scheduling.
type CollectionRepository interface {
	ListByUser(ctx context.Context, userID int64) ([]*models.Collection, error)
	GetByID(ctx context.Context, userID, collectionID int64) (*models.Collection, error)
	GetUpcoming(ctx context.Context, userID int64) (*models.Collection, error)
	ReplaceUpcoming(ctx context.Context, c *models.Collection) (*models.Collection, error)
	Reschedule(ctx context.Context, c *models.Collection) (*models.Collection, error)
	Cancel(ctx context.Context, userID, collectionID int64, reason string) error
}

// Pricing converts a can count into collection weight and wallet credit.
type Pricing struct {
	ItemsPerKg int
	RatePerKg  float64
}

// WeightKg converts an item count to kilograms, rounded to two decimals.
func (p Pricing) WeightKg(itemCount int) float64 {
	if p.ItemsPerKg <= 0 {
		return 0
	}
	return math.Round(float64(itemCount)/float64(p.ItemsPerKg)*100) / 100
}

// Amount is the wallet credit for a given weight, rounded to two decimals.
func (p Pricing) Amount(weightKg float64) float64 {
	return math.Round(weightKg*p.RatePerKg*100) / 100
}

type CollectionService struct {
	collections CollectionRepository
	pricing     Pricing
	logger      *slog.Logger
}

func NewCollectionService(collections CollectionRepository, pricing Pricing, logger *slog.Logger) *CollectionService {
	return &CollectionService{collections: collections, pricing: pricing, logger: logger}
}

// ScheduleRequest books a pickup. ItemCount is the number of cans; weight and
// credit are derived server-side.
type ScheduleRequest struct {
	Date          string `json:"date" validate:"required,datetime=2006-01-02"`
	TimeSlot      string `json:"timeSlot" validate:"required,max=40"`
	PickupAddress string `json:"pickupAddress" validate:"required,max=200"`
	ItemCount     int    `json:"itemCount" validate:"required,gt=0"`
	Notes         string `json:"notes" validate:"omitempty,max=500"`
}

// Schedule replaces any still-pending pickup with the new booking.
func (s *CollectionService) Schedule(ctx context.Context, userID int64, req *ScheduleRequest) (*models.Collection, error) {
	date, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		return nil, models.ErrBadRequest
	}

	weight := s.pricing.WeightKg(req.ItemCount)

	created, err := s.collections.ReplaceUpcoming(ctx, &models.Collection{
		UserID:        userID,
		Date:          date,
		TimeSlot:      req.TimeSlot,
		PickupAddress: req.PickupAddress,
		ItemCount:     req.ItemCount,
		WeightKg:      weight,
		Amount:        s.pricing.Amount(weight),
		Notes:         req.Notes,
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("collection scheduled",
		"userId", userID, "collectionId", created.ID, "date", req.Date, "items", req.ItemCount)
	return created, nil
}

func (s *CollectionService) List(ctx context.Context, userID int64) ([]*models.Collection, error) {
	return s.collections.ListByUser(ctx, userID)
}

func (s *CollectionService) Get(ctx context.Context, userID, collectionID int64) (*models.Collection, error) {
	return s.collections.GetByID(ctx, userID, collectionID)
}

func (s *CollectionService) Upcoming(ctx context.Context, userID int64) (*models.Collection, error) {
	return s.collections.GetUpcoming(ctx, userID)
}

// RescheduleRequest moves an existing pickup without changing its contents.
type RescheduleRequest struct {
	Date          string `json:"date" validate:"required,datetime=2006-01-02"`
	TimeSlot      string `json:"timeSlot" validate:"required,max=40"`
	PickupAddress string `json:"pickupAddress" validate:"omitempty,max=200"`
}

func (s *CollectionService) Reschedule(ctx context.Context, userID, collectionID int64, req *RescheduleRequest) (*models.Collection, error) {
	date, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		return nil, models.ErrBadRequest
	}

	existing, err := s.collections.GetByID(ctx, userID, collectionID)
	if err != nil {
		return nil, err
	}
	if !existing.CanTransition() {
		return nil, models.ErrConflict
	}

	address := req.PickupAddress
	if address == "" {
		address = existing.PickupAddress
	}

	return s.collections.Reschedule(ctx, &models.Collection{
		ID:            collectionID,
		UserID:        userID,
		Date:          date,
		TimeSlot:      req.TimeSlot,
		PickupAddress: address,
	})
}

func (s *CollectionService) Cancel(ctx context.Context, userID, collectionID int64, reason string) error {
	existing, err := s.collections.GetByID(ctx, userID, collectionID)
	if err != nil {
		return err
	}
	if !existing.CanTransition() {
		return models.ErrConflict
	}

	if err := s.collections.Cancel(ctx, userID, collectionID, reason); err != nil {
		return err
	}

	s.logger.Info("collection cancelled", "userId", userID, "collectionId", collectionID)
	return nil
}
