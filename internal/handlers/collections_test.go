package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"

	"github.com/greengo-app/greengo-api/internal/models"
	"github.com/greengo-app/greengo-api/internal/services"
)

func TestScheduleHandler_Success(t *testing.T) {
	svc := &MockCollectionService{
		ScheduleFunc: func(ctx context.Context, userID int64, req *services.ScheduleRequest) (*models.Collection, error) {
			assert.Equal(t, int64(10), userID)
			assert.Equal(t, 90, req.ItemCount)
			return &models.Collection{
				ID: 5, UserID: userID,
				Date:     time.Date(2026, 9, 15, 0, 0, 0, 0, time.UTC),
				TimeSlot: req.TimeSlot, PickupAddress: req.PickupAddress,
				ItemCount: req.ItemCount, WeightKg: 1.5, Amount: 2.25,
				Status: models.CollectionStatusScheduled,
			}, nil
		},
	}
	h := NewCollectionHandler(svc)

	req := WithAuthContext(NewTestRequest(t, http.MethodPost, "/collections", services.ScheduleRequest{
		Date:          "2026-09-15",
		TimeSlot:      "morning",
		PickupAddress: "Rua Verde 123",
		ItemCount:     90,
	}), 10)
	w := httptest.NewRecorder()

	h.Schedule(w, req)

	var resp struct {
		Success bool                `json:"success"`
		Result  *CollectionResponse `json:"result"`
	}
	AssertJSONResponse(t, w, http.StatusCreated, &resp)
	assert.Equal(t, "2026-09-15", resp.Result.Date)
	assert.InDelta(t, 1.5, resp.Result.WeightKg, 0.001)
}

func TestScheduleHandler_ZeroItems(t *testing.T) {
	h := NewCollectionHandler(&MockCollectionService{})

	req := WithAuthContext(NewTestRequest(t, http.MethodPost, "/collections", services.ScheduleRequest{
		Date:          "2026-09-15",
		TimeSlot:      "morning",
		PickupAddress: "Rua Verde 123",
		ItemCount:     0,
	}), 10)
	w := httptest.NewRecorder()

	h.Schedule(w, req)

	AssertErrorResponse(t, w, http.StatusBadRequest, "bad_request")
}

func withURLParam(req *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}

func TestCancelHandler_NotCancellable(t *testing.T) {
	svc := &MockCollectionService{
		CancelFunc: func(ctx context.Context, userID, collectionID int64, reason string) error {
			return models.ErrConflict
		},
	}
	h := NewCollectionHandler(svc)

	req := WithAuthContext(NewTestRequest(t, http.MethodPost, "/collections/5/cancel", CancelRequest{Reason: "done"}), 10)
	req = withURLParam(req, "id", "5")
	w := httptest.NewRecorder()

	h.Cancel(w, req)

	AssertErrorResponse(t, w, http.StatusConflict, "conflict")
}

func TestUpcomingHandler_NoneBooked(t *testing.T) {
	h := NewCollectionHandler(&MockCollectionService{})

	req := WithAuthContext(NewTestRequest(t, http.MethodGet, "/collections/upcoming", nil), 10)
	w := httptest.NewRecorder()

	h.Upcoming(w, req)

	var resp struct {
		Success bool                `json:"success"`
		Result  *CollectionResponse `json:"result"`
	}
	AssertJSONResponse(t, w, http.StatusOK, &resp)
	assert.True(t, resp.Success)
	assert.Nil(t, resp.Result)
}
