package handlers

import (
	"context"
	"encoding/json"
	"io"
	"net/http"

	"github.com/greengo-app/greengo-api/internal/auth"
	"github.com/greengo-app/greengo-api/internal/services"
	pkghttp "github.com/greengo-app/greengo-api/pkg/http"
)

// ProfileServiceInterface defines the interface for profile management
type ProfileServiceInterface interface {
	Get(ctx context.Context, userID int64) (*services.ProfileResponse, error)
	Update(ctx context.Context, userID int64, req *services.UpdateProfileRequest) (*services.ProfileResponse, error)
	UpdateAvatar(ctx context.Context, userID int64, originalName string, r io.Reader) (string, error)
	UpdateLanguage(ctx context.Context, userID int64, language string) error
	UpdatePreferences(ctx context.Context, userID int64, req *services.PreferencesRequest) (*services.ProfileResponse, error)
}

// ProfileHandler handles the signed-in user's profile
type ProfileHandler struct {
	service ProfileServiceInterface
}

func NewProfileHandler(service ProfileServiceInterface) *ProfileHandler {
	return &ProfileHandler{service: service}
}

type profileEnvelope struct {
	Success bool                      `json:"success"`
	Result  *services.ProfileResponse `json:"result"`
}

func (h *ProfileHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.GetUserID(r.Context())
	if !ok {
		pkghttp.WriteUnauthorized(w, "authentication required")
		return
	}

	profile, err := h.service.Get(r.Context(), userID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, profileEnvelope{Success: true, Result: profile})
}

func (h *ProfileHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.GetUserID(r.Context())
	if !ok {
		pkghttp.WriteUnauthorized(w, "authentication required")
		return
	}

	var req services.UpdateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkghttp.WriteBadRequest(w, "Invalid request body")
		return
	}
	if err := ValidateRequest(req); err != nil {
		pkghttp.WriteBadRequest(w, err.Error())
		return
	}

	profile, err := h.service.Update(r.Context(), userID, &req)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, profileEnvelope{Success: true, Result: profile})
}

const maxAvatarUploadBytes = 5 << 20 // 5 MiB

// UploadAvatar accepts a multipart form with a single "avatar" file field.
func (h *ProfileHandler) UploadAvatar(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.GetUserID(r.Context())
	if !ok {
		pkghttp.WriteUnauthorized(w, "authentication required")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxAvatarUploadBytes)
	if err := r.ParseMultipartForm(maxAvatarUploadBytes); err != nil {
		pkghttp.WriteBadRequest(w, "Invalid or oversized upload")
		return
	}

	file, header, err := r.FormFile("avatar")
	if err != nil {
		pkghttp.WriteBadRequest(w, "avatar file field is required")
		return
	}
	defer file.Close()

	avatarURL, err := h.service.UpdateAvatar(r.Context(), userID, header.Filename, file)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"success":   true,
		"avatarUrl": avatarURL,
	})
}

// LanguageRequest selects the UI language for the account.
type LanguageRequest struct {
	Language string `json:"language" validate:"required,min=2,max=10"`
}

func (h *ProfileHandler) UpdateLanguage(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.GetUserID(r.Context())
	if !ok {
		pkghttp.WriteUnauthorized(w, "authentication required")
		return
	}

	var req LanguageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkghttp.WriteBadRequest(w, "Invalid request body")
		return
	}
	if err := ValidateRequest(req); err != nil {
		pkghttp.WriteBadRequest(w, err.Error())
		return
	}

	if err := h.service.UpdateLanguage(r.Context(), userID, req.Language); err != nil {
		writeServiceError(w, err)
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, actionResponse{Success: true, Message: "Language updated"})
}

func (h *ProfileHandler) UpdatePreferences(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.GetUserID(r.Context())
	if !ok {
		pkghttp.WriteUnauthorized(w, "authentication required")
		return
	}

	var req services.PreferencesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkghttp.WriteBadRequest(w, "Invalid request body")
		return
	}

	profile, err := h.service.UpdatePreferences(r.Context(), userID, &req)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, profileEnvelope{Success: true, Result: profile})
}
