package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/greengo-app/greengo-api/internal/services"
	pkghttp "github.com/greengo-app/greengo-api/pkg/http"
)

// AuthServiceInterface defines the interface for auth business logic
type AuthServiceInterface interface {
	Login(ctx context.Context, authorization string, rememberMe bool, ipAddress string) (*services.LoginResult, error)
	VerifyChallenge(ctx context.Context, tempToken, code, ipAddress string) (*services.LoginResult, error)
	Register(ctx context.Context, authorization string, req *services.RegisterRequest, ipAddress string) (*services.LoginResult, error)
}

// AuthHandler handles login, registration, and the two-factor challenge step
type AuthHandler struct {
	service  AuthServiceInterface
	ipConfig *pkghttp.IPConfig
}

func NewAuthHandler(service AuthServiceInterface, ipConfig *pkghttp.IPConfig) *AuthHandler {
	return &AuthHandler{service: service, ipConfig: ipConfig}
}

// LoginRequest represents the request body for login. The identity credential
// itself travels in the Authorization header.
type LoginRequest struct {
	RememberMe bool `json:"rememberMe"`
}

// SessionResponse is the success envelope for a completed login.
type SessionResponse struct {
	Success bool           `json:"success"`
	Result  *SessionResult `json:"result"`
}

type SessionResult struct {
	Token string                 `json:"token"`
	User  *services.UserResponse `json:"user"`
}

// ChallengeResponse tells the client a second factor is required.
type ChallengeResponse struct {
	Success       bool   `json:"success"`
	TwoFARequired bool   `json:"twofa_required"`
	TempToken     string `json:"temp_token"`
}

func writeLoginResult(w http.ResponseWriter, result *services.LoginResult) {
	if result.TwoFARequired {
		pkghttp.WriteJSON(w, http.StatusOK, ChallengeResponse{
			Success:       true,
			TwoFARequired: true,
			TempToken:     result.TempToken,
		})
		return
	}
	pkghttp.WriteJSON(w, http.StatusOK, SessionResponse{
		Success: true,
		Result:  &SessionResult{Token: result.Token, User: result.User},
	})
}

// Login exchanges an identity-provider credential for a session token, or for
// a two-factor challenge when the account has 2FA enabled.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			pkghttp.WriteBadRequest(w, "Invalid request body")
			return
		}
	}

	ipAddress := pkghttp.ExtractClientIP(r, h.ipConfig)

	result, err := h.service.Login(r.Context(), r.Header.Get("Authorization"), req.RememberMe, ipAddress)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeLoginResult(w, result)
}

// VerifyChallengeRequest carries the challenge token and the authenticator code.
type VerifyChallengeRequest struct {
	TempToken string `json:"temp_token" validate:"required"`
	Code      string `json:"code" validate:"required,len=6,numeric"`
}

// VerifyChallenge completes a two-factor login.
func (h *AuthHandler) VerifyChallenge(w http.ResponseWriter, r *http.Request) {
	var req VerifyChallengeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkghttp.WriteBadRequest(w, "Invalid request body")
		return
	}
	if err := ValidateRequest(req); err != nil {
		pkghttp.WriteBadRequest(w, err.Error())
		return
	}

	ipAddress := pkghttp.ExtractClientIP(r, h.ipConfig)

	result, err := h.service.VerifyChallenge(r.Context(), req.TempToken, req.Code, ipAddress)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeLoginResult(w, result)
}

// Register creates an account for the identity-provider subject in the
// Authorization header.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req services.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkghttp.WriteBadRequest(w, "Invalid request body")
		return
	}
	if err := ValidateRequest(req); err != nil {
		pkghttp.WriteBadRequest(w, err.Error())
		return
	}

	ipAddress := pkghttp.ExtractClientIP(r, h.ipConfig)

	result, err := h.service.Register(r.Context(), r.Header.Get("Authorization"), &req, ipAddress)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	pkghttp.WriteJSON(w, http.StatusCreated, SessionResponse{
		Success: true,
		Result:  &SessionResult{Token: result.Token, User: result.User},
	})
}
