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

// PaymentMethodServiceInterface defines the interface for payout destinations
type PaymentMethodServiceInterface interface {
	List(ctx context.Context, userID int64) ([]*models.PaymentMethod, error)
	Add(ctx context.Context, userID int64, req *services.AddPaymentMethodRequest) (*models.PaymentMethod, error)
	SetDefault(ctx context.Context, userID, methodID int64) error
	Remove(ctx context.Context, userID, methodID int64) error
}

// PaymentMethodHandler handles the user's payout destinations
type PaymentMethodHandler struct {
	service PaymentMethodServiceInterface
}

func NewPaymentMethodHandler(service PaymentMethodServiceInterface) *PaymentMethodHandler {
	return &PaymentMethodHandler{service: service}
}

func (h *PaymentMethodHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.GetUserID(r.Context())
	if !ok {
		pkghttp.WriteUnauthorized(w, "authentication required")
		return
	}

	methods, err := h.service.List(r.Context(), userID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"result":  methods,
	})
}

func (h *PaymentMethodHandler) Add(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.GetUserID(r.Context())
	if !ok {
		pkghttp.WriteUnauthorized(w, "authentication required")
		return
	}

	var req services.AddPaymentMethodRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkghttp.WriteBadRequest(w, "Invalid request body")
		return
	}
	if err := ValidateRequest(req); err != nil {
		pkghttp.WriteBadRequest(w, err.Error())
		return
	}

	created, err := h.service.Add(r.Context(), userID, &req)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	pkghttp.WriteJSON(w, http.StatusCreated, map[string]interface{}{
		"success": true,
		"result":  created,
	})
}

func methodID(r *http.Request) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
}

func (h *PaymentMethodHandler) SetDefault(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.GetUserID(r.Context())
	if !ok {
		pkghttp.WriteUnauthorized(w, "authentication required")
		return
	}

	id, err := methodID(r)
	if err != nil {
		pkghttp.WriteBadRequest(w, "Invalid payment method id")
		return
	}

	if err := h.service.SetDefault(r.Context(), userID, id); err != nil {
		writeServiceError(w, err)
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, actionResponse{Success: true, Message: "Default payment method updated"})
}

func (h *PaymentMethodHandler) Remove(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.GetUserID(r.Context())
	if !ok {
		pkghttp.WriteUnauthorized(w, "authentication required")
		return
	}

	id, err := methodID(r)
	if err != nil {
		pkghttp.WriteBadRequest(w, "Invalid payment method id")
		return
	}

	if err := h.service.Remove(r.Context(), userID, id); err != nil {
		writeServiceError(w, err)
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, actionResponse{Success: true, Message: "Payment method removed"})
}
