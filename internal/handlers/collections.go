package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/greengo-app/greengo-api/internal/auth"
	"github.com/greengo-app/greengo-api/internal/models"
	"github.com/greengo-app/greengo-api/internal/services"
	pkghttp "github.com/greengo-app/greengo-api/pkg/http"
)

// CollectionServiceInterface defines the interface for pickup scheduling
type CollectionServiceInterface interface {
	Schedule(ctx context.Context, userID int64, req *services.ScheduleRequest) (*models.Collection, error)
	List(ctx context.Context, userID int64) ([]*models.Collection, error)
	Get(ctx context.Context, userID, collectionID int64) (*models.Collection, error)
	Upcoming(ctx context.Context, userID int64) (*models.Collection, error)
	Reschedule(ctx context.Context, userID, collectionID int64, req *services.RescheduleRequest) (*models.Collection, error)
	Cancel(ctx context.Context, userID, collectionID int64, reason string) error
}

// CollectionHandler handles recycling pickup scheduling
type CollectionHandler struct {
	service CollectionServiceInterface
}

func NewCollectionHandler(service CollectionServiceInterface) *CollectionHandler {
	return &CollectionHandler{service: service}
}

// CollectionResponse is the wire form of a pickup.
type CollectionResponse struct {
	ID            int64   `json:"id"`
	Date          string  `json:"date"`
	TimeSlot      string  `json:"timeSlot"`
	PickupAddress string  `json:"pickupAddress"`
	ItemCount     int     `json:"itemCount"`
	WeightKg      float64 `json:"weightKg"`
	Amount        float64 `json:"amount"`
	Status        string  `json:"status"`
	Notes         string  `json:"notes,omitempty"`
	CancelReason  *string `json:"cancelReason,omitempty"`
}

func newCollectionResponse(c *models.Collection) *CollectionResponse {
	return &CollectionResponse{
		ID:            c.ID,
		Date:          c.Date.Format("2006-01-02"),
		TimeSlot:      c.TimeSlot,
		PickupAddress: c.PickupAddress,
		ItemCount:     c.ItemCount,
		WeightKg:      c.WeightKg,
		Amount:        c.Amount,
		Status:        c.Status,
		Notes:         c.Notes,
		CancelReason:  c.CancelReason,
	}
}

func collectionID(r *http.Request) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
}

func (h *CollectionHandler) Schedule(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.GetUserID(r.Context())
	if !ok {
		pkghttp.WriteUnauthorized(w, "authentication required")
		return
	}

	var req services.ScheduleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkghttp.WriteBadRequest(w, "Invalid request body")
		return
	}
	if err := ValidateRequest(req); err != nil {
		pkghttp.WriteBadRequest(w, err.Error())
		return
	}

	created, err := h.service.Schedule(r.Context(), userID, &req)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	pkghttp.WriteJSON(w, http.StatusCreated, map[string]interface{}{
		"success": true,
		"result":  newCollectionResponse(created),
	})
}

func (h *CollectionHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.GetUserID(r.Context())
	if !ok {
		pkghttp.WriteUnauthorized(w, "authentication required")
		return
	}

	collections, err := h.service.List(r.Context(), userID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	result := make([]*CollectionResponse, 0, len(collections))
	for _, c := range collections {
		result = append(result, newCollectionResponse(c))
	}

	pkghttp.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"result":  result,
	})
}

func (h *CollectionHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.GetUserID(r.Context())
	if !ok {
		pkghttp.WriteUnauthorized(w, "authentication required")
		return
	}

	id, err := collectionID(r)
	if err != nil {
		pkghttp.WriteBadRequest(w, "Invalid collection id")
		return
	}

	c, err := h.service.Get(r.Context(), userID, id)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"result":  newCollectionResponse(c),
	})
}

// Upcoming returns the next pending pickup, or a null result when none is
// booked.
func (h *CollectionHandler) Upcoming(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.GetUserID(r.Context())
	if !ok {
		pkghttp.WriteUnauthorized(w, "authentication required")
		return
	}

	c, err := h.service.Upcoming(r.Context(), userID)
	if err != nil {
		if err == models.ErrNotFound {
			pkghttp.WriteJSON(w, http.StatusOK, map[string]interface{}{
				"success": true,
				"result":  nil,
			})
			return
		}
		writeServiceError(w, err)
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"result":  newCollectionResponse(c),
	})
}

func (h *CollectionHandler) Reschedule(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.GetUserID(r.Context())
	if !ok {
		pkghttp.WriteUnauthorized(w, "authentication required")
		return
	}

	id, err := collectionID(r)
	if err != nil {
		pkghttp.WriteBadRequest(w, "Invalid collection id")
		return
	}

	var req services.RescheduleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkghttp.WriteBadRequest(w, "Invalid request body")
		return
	}
	if err := ValidateRequest(req); err != nil {
		pkghttp.WriteBadRequest(w, err.Error())
		return
	}

	updated, err := h.service.Reschedule(r.Context(), userID, id, &req)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"result":  newCollectionResponse(updated),
	})
}

// CancelRequest optionally records why the pickup was called off.
type CancelRequest struct {
	Reason string `json:"reason" validate:"omitempty,max=200"`
}

func (h *CollectionHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.GetUserID(r.Context())
	if !ok {
		pkghttp.WriteUnauthorized(w, "authentication required")
		return
	}

	id, err := collectionID(r)
	if err != nil {
		pkghttp.WriteBadRequest(w, "Invalid collection id")
		return
	}

	var req CancelRequest
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			pkghttp.WriteBadRequest(w, "Invalid request body")
			return
		}
	}

	if err := h.service.Cancel(r.Context(), userID, id, req.Reason); err != nil {
		writeServiceError(w, err)
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, actionResponse{Success: true, Message: "Collection cancelled"})
}
