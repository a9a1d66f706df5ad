package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/greengo-app/greengo-api/internal/models"
)

func testPricing() Pricing {
	return Pricing{ItemsPerKg: 60, RatePerKg: 1.50}
}

func TestPricing_WeightKg(t *testing.T) {
	tests := []struct {
		items  int
		weight float64
	}{
		{60, 1.0},
		{30, 0.5},
		{90, 1.5},
		{100, 1.67},
		{1, 0.02},
		{0, 0},
	}

	p := testPricing()
	for _, tt := range tests {
		assert.InDelta(t, tt.weight, p.WeightKg(tt.items), 0.001, "items=%d", tt.items)
	}
}

func TestPricing_Amount(t *testing.T) {
	p := testPricing()
	assert.InDelta(t, 1.50, p.Amount(1.0), 0.001)
	assert.InDelta(t, 2.51, p.Amount(1.67), 0.001)
}

func TestSchedule_DerivesWeightAndAmount(t *testing.T) {
	var saved *models.Collection
	repo := &MockCollectionRepository{
		ReplaceUpcomingFunc: func(ctx context.Context, c *models.Collection) (*models.Collection, error) {
			saved = c
			c.ID = 5
			return c, nil
		},
	}
	svc := NewCollectionService(repo, testPricing(), testLogger())

	created, err := svc.Schedule(context.Background(), 10, &ScheduleRequest{
		Date:          "2026-09-15",
		TimeSlot:      "morning",
		PickupAddress: "Rua Verde 123",
		ItemCount:     90,
	})
	require.NoError(t, err)

	assert.Equal(t, int64(5), created.ID)
	require.NotNil(t, saved)
	assert.InDelta(t, 1.5, saved.WeightKg, 0.001)
	assert.InDelta(t, 2.25, saved.Amount, 0.001)
	assert.Equal(t, int64(10), saved.UserID)
}

func TestSchedule_BadDate(t *testing.T) {
	svc := NewCollectionService(&MockCollectionRepository{}, testPricing(), testLogger())

	_, err := svc.Schedule(context.Background(), 10, &ScheduleRequest{
		Date:          "15/09/2026",
		TimeSlot:      "morning",
		PickupAddress: "x",
		ItemCount:     1,
	})
	assert.ErrorIs(t, err, models.ErrBadRequest)
}

func TestCancel_CompletedCollection(t *testing.T) {
	repo := &MockCollectionRepository{
		GetByIDFunc: func(ctx context.Context, userID, collectionID int64) (*models.Collection, error) {
			return &models.Collection{ID: collectionID, UserID: userID, Status: models.CollectionStatusCompleted}, nil
		},
		CancelFunc: func(ctx context.Context, userID, collectionID int64, reason string) error {
			t.Fatal("completed collections must not be cancelled")
			return nil
		},
	}
	svc := NewCollectionService(repo, testPricing(), testLogger())

	err := svc.Cancel(context.Background(), 10, 5, "changed my mind")
	assert.ErrorIs(t, err, models.ErrConflict)
}

func TestCancel_Scheduled(t *testing.T) {
	cancelled := false
	repo := &MockCollectionRepository{
		GetByIDFunc: func(ctx context.Context, userID, collectionID int64) (*models.Collection, error) {
			return &models.Collection{ID: collectionID, UserID: userID, Status: models.CollectionStatusScheduled}, nil
		},
		CancelFunc: func(ctx context.Context, userID, collectionID int64, reason string) error {
			cancelled = true
			assert.Equal(t, "changed my mind", reason)
			return nil
		},
	}
	svc := NewCollectionService(repo, testPricing(), testLogger())

	err := svc.Cancel(context.Background(), 10, 5, "changed my mind")
	require.NoError(t, err)
	assert.True(t, cancelled)
}

func TestReschedule_KeepsAddressWhenOmitted(t *testing.T) {
	repo := &MockCollectionRepository{
		GetByIDFunc: func(ctx context.Context, userID, collectionID int64) (*models.Collection, error) {
			return &models.Collection{
				ID: collectionID, UserID: userID,
				Status: models.CollectionStatusPending, PickupAddress: "Rua Verde 123",
			}, nil
		},
		RescheduleFunc: func(ctx context.Context, c *models.Collection) (*models.Collection, error) {
			assert.Equal(t, "Rua Verde 123", c.PickupAddress)
			return c, nil
		},
	}
	svc := NewCollectionService(repo, testPricing(), testLogger())

	_, err := svc.Reschedule(context.Background(), 10, 5, &RescheduleRequest{
		Date:     "2026-09-20",
		TimeSlot: "afternoon",
	})
	require.NoError(t, err)
}
