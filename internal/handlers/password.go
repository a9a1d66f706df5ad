package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/greengo-app/greengo-api/internal/models"
	pkghttp "github.com/greengo-app/greengo-api/pkg/http"
)

// PasswordServiceInterface defines the interface for the reset flow
type PasswordServiceInterface interface {
	RequestReset(ctx context.Context, email string) error
	ConfirmReset(ctx context.Context, token, newPassword string) error
}

// PasswordHandler handles the email-based password reset flow
type PasswordHandler struct {
	service PasswordServiceInterface
}

func NewPasswordHandler(service PasswordServiceInterface) *PasswordHandler {
	return &PasswordHandler{service: service}
}

// RequestResetRequest asks for a reset link by email.
type RequestResetRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// RequestReset always answers 200 with the same body, whether or not the
// address is registered.
func (h *PasswordHandler) RequestReset(w http.ResponseWriter, r *http.Request) {
	var req RequestResetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkghttp.WriteBadRequest(w, "Invalid request body")
		return
	}
	if err := ValidateRequest(req); err != nil {
		pkghttp.WriteBadRequest(w, err.Error())
		return
	}

	if err := h.service.RequestReset(r.Context(), req.Email); err != nil {
		pkghttp.WriteInternalError(w, "Internal server error")
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, actionResponse{
		Success: true,
		Message: "If the address is registered, a reset link has been sent",
	})
}

// ConfirmResetRequest carries the emailed token and the new password.
type ConfirmResetRequest struct {
	Token       string `json:"token" validate:"required"`
	NewPassword string `json:"newPassword" validate:"required"`
}

func (h *PasswordHandler) ConfirmReset(w http.ResponseWriter, r *http.Request) {
	var req ConfirmResetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkghttp.WriteBadRequest(w, "Invalid request body")
		return
	}
	if err := ValidateRequest(req); err != nil {
		pkghttp.WriteBadRequest(w, err.Error())
		return
	}

	if err := h.service.ConfirmReset(r.Context(), req.Token, req.NewPassword); err != nil {
		if errors.Is(err, models.ErrBadRequest) {
			pkghttp.WriteBadRequest(w, "Password does not meet requirements")
			return
		}
		writeServiceError(w, err)
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, actionResponse{Success: true, Message: "Password updated"})
}
