package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/greengo-app/greengo-api/internal/auth"
	"github.com/greengo-app/greengo-api/internal/services"
	pkghttp "github.com/greengo-app/greengo-api/pkg/http"
)

// TwoFactorServiceInterface defines the interface for 2FA management
type TwoFactorServiceInterface interface {
	Generate(ctx context.Context, userID int64) (*services.EnrollmentResponse, error)
	ConfirmEnrollment(ctx context.Context, userID int64, code, ipAddress string) error
	Disable(ctx context.Context, userID int64, ipAddress string) error
	Status(ctx context.Context, userID int64) (bool, error)
}

// TwoFactorHandler handles authenticator enrollment for the signed-in user
type TwoFactorHandler struct {
	service  TwoFactorServiceInterface
	ipConfig *pkghttp.IPConfig
}

func NewTwoFactorHandler(service TwoFactorServiceInterface, ipConfig *pkghttp.IPConfig) *TwoFactorHandler {
	return &TwoFactorHandler{service: service, ipConfig: ipConfig}
}

// ManageRequest is the single enrollment endpoint's body. Code is required
// only for the verify action.
type ManageRequest struct {
	Action string `json:"action" validate:"required,oneof=generate verify disable"`
	Code   string `json:"code" validate:"omitempty,len=6,numeric"`
}

// EnrollmentEnvelope wraps the provisioning material for the generate action.
type EnrollmentEnvelope struct {
	Success bool   `json:"success"`
	QRCode  string `json:"qrCode"`
	Secret  string `json:"secret"`
}

// StatusResponse reports whether two-factor is enabled.
type StatusResponse struct {
	Success bool `json:"success"`
	Enabled bool `json:"enabled"`
}

type actionResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// Manage dispatches the generate/verify/disable enrollment actions.
func (h *TwoFactorHandler) Manage(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.GetUserID(r.Context())
	if !ok {
		pkghttp.WriteUnauthorized(w, "authentication required")
		return
	}

	var req ManageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkghttp.WriteBadRequest(w, "Invalid request body")
		return
	}
	if err := ValidateRequest(req); err != nil {
		pkghttp.WriteBadRequest(w, err.Error())
		return
	}

	ipAddress := pkghttp.ExtractClientIP(r, h.ipConfig)

	switch req.Action {
	case "generate":
		enrollment, err := h.service.Generate(r.Context(), userID)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		pkghttp.WriteJSON(w, http.StatusOK, EnrollmentEnvelope{
			Success: true,
			QRCode:  enrollment.QRCode,
			Secret:  enrollment.Secret,
		})

	case "verify":
		if req.Code == "" {
			pkghttp.WriteBadRequest(w, "code is required for verify")
			return
		}
		if err := h.service.ConfirmEnrollment(r.Context(), userID, req.Code, ipAddress); err != nil {
			writeServiceError(w, err)
			return
		}
		pkghttp.WriteJSON(w, http.StatusOK, actionResponse{Success: true, Message: "Two-factor authentication enabled"})

	case "disable":
		if err := h.service.Disable(r.Context(), userID, ipAddress); err != nil {
			writeServiceError(w, err)
			return
		}
		pkghttp.WriteJSON(w, http.StatusOK, actionResponse{Success: true, Message: "Two-factor authentication disabled"})
	}
}

// Status reports the user's two-factor state.
func (h *TwoFactorHandler) Status(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.GetUserID(r.Context())
	if !ok {
		pkghttp.WriteUnauthorized(w, "authentication required")
		return
	}

	enabled, err := h.service.Status(r.Context(), userID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, StatusResponse{Success: true, Enabled: enabled})
}
