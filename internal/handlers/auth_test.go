package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/greengo-app/greengo-api/internal/models"
	"github.com/greengo-app/greengo-api/internal/services"
	pkghttp "github.com/greengo-app/greengo-api/pkg/http"
)

func newAuthHandler(svc *MockAuthService) *AuthHandler {
	return NewAuthHandler(svc, &pkghttp.IPConfig{})
}

func TestLoginHandler_Success(t *testing.T) {
	svc := &MockAuthService{
		LoginFunc: func(ctx context.Context, authorization string, rememberMe bool, ipAddress string) (*services.LoginResult, error) {
			assert.Equal(t, "Bearer provider-token", authorization)
			assert.True(t, rememberMe)
			return &services.LoginResult{
				Token: "session-token",
				User:  &services.UserResponse{ID: 10, Email: "u@example.com"},
			}, nil
		},
	}
	h := newAuthHandler(svc)

	req := NewTestRequest(t, http.MethodPost, "/auth/login", LoginRequest{RememberMe: true})
	req.Header.Set("Authorization", "Bearer provider-token")
	w := httptest.NewRecorder()

	h.Login(w, req)

	var resp SessionResponse
	AssertJSONResponse(t, w, http.StatusOK, &resp)
	assert.True(t, resp.Success)
	assert.Equal(t, "session-token", resp.Result.Token)
	assert.Equal(t, int64(10), resp.Result.User.ID)
}

func TestLoginHandler_TwoFactorRequired(t *testing.T) {
	svc := &MockAuthService{
		LoginFunc: func(ctx context.Context, authorization string, rememberMe bool, ipAddress string) (*services.LoginResult, error) {
			return &services.LoginResult{TwoFARequired: true, TempToken: "challenge-token"}, nil
		},
	}
	h := newAuthHandler(svc)

	req := NewTestRequest(t, http.MethodPost, "/auth/login", LoginRequest{})
	req.Header.Set("Authorization", "Bearer provider-token")
	w := httptest.NewRecorder()

	h.Login(w, req)

	var resp ChallengeResponse
	AssertJSONResponse(t, w, http.StatusOK, &resp)
	assert.True(t, resp.Success)
	assert.True(t, resp.TwoFARequired)
	assert.Equal(t, "challenge-token", resp.TempToken)
}

func TestLoginHandler_MissingCredential(t *testing.T) {
	svc := &MockAuthService{
		LoginFunc: func(ctx context.Context, authorization string, rememberMe bool, ipAddress string) (*services.LoginResult, error) {
			return nil, models.ErrMissingCredential
		},
	}
	h := newAuthHandler(svc)

	req := NewTestRequest(t, http.MethodPost, "/auth/login", nil)
	w := httptest.NewRecorder()

	h.Login(w, req)

	AssertErrorResponse(t, w, http.StatusUnauthorized, "missing_credential")
}

func TestLoginHandler_InvalidCredential(t *testing.T) {
	svc := &MockAuthService{
		LoginFunc: func(ctx context.Context, authorization string, rememberMe bool, ipAddress string) (*services.LoginResult, error) {
			return nil, models.ErrInvalidCredential
		},
	}
	h := newAuthHandler(svc)

	req := NewTestRequest(t, http.MethodPost, "/auth/login", LoginRequest{})
	req.Header.Set("Authorization", "Bearer forged")
	w := httptest.NewRecorder()

	h.Login(w, req)

	AssertErrorResponse(t, w, http.StatusUnauthorized, "invalid_credential")
}

func TestVerifyChallengeHandler_Success(t *testing.T) {
	svc := &MockAuthService{
		VerifyChallengeFunc: func(ctx context.Context, tempToken, code, ipAddress string) (*services.LoginResult, error) {
			assert.Equal(t, "challenge-token", tempToken)
			assert.Equal(t, "123456", code)
			return &services.LoginResult{
				Token: "fresh-session",
				User:  &services.UserResponse{ID: 10},
			}, nil
		},
	}
	h := newAuthHandler(svc)

	req := NewTestRequest(t, http.MethodPost, "/auth/2fa/verify", VerifyChallengeRequest{
		TempToken: "challenge-token",
		Code:      "123456",
	})
	w := httptest.NewRecorder()

	h.VerifyChallenge(w, req)

	var resp SessionResponse
	AssertJSONResponse(t, w, http.StatusOK, &resp)
	assert.Equal(t, "fresh-session", resp.Result.Token)
}

func TestVerifyChallengeHandler_BadCodeFormat(t *testing.T) {
	h := newAuthHandler(&MockAuthService{})

	req := NewTestRequest(t, http.MethodPost, "/auth/2fa/verify", VerifyChallengeRequest{
		TempToken: "challenge-token",
		Code:      "12345", // five digits
	})
	w := httptest.NewRecorder()

	h.VerifyChallenge(w, req)

	AssertErrorResponse(t, w, http.StatusBadRequest, "bad_request")
}

func TestVerifyChallengeHandler_Expired(t *testing.T) {
	svc := &MockAuthService{
		VerifyChallengeFunc: func(ctx context.Context, tempToken, code, ipAddress string) (*services.LoginResult, error) {
			return nil, models.ErrChallengeExpired
		},
	}
	h := newAuthHandler(svc)

	req := NewTestRequest(t, http.MethodPost, "/auth/2fa/verify", VerifyChallengeRequest{
		TempToken: "stale",
		Code:      "123456",
	})
	w := httptest.NewRecorder()

	h.VerifyChallenge(w, req)

	AssertErrorResponse(t, w, http.StatusUnauthorized, "challenge_expired")
}

func TestVerifyChallengeHandler_Throttled(t *testing.T) {
	svc := &MockAuthService{
		VerifyChallengeFunc: func(ctx context.Context, tempToken, code, ipAddress string) (*services.LoginResult, error) {
			return nil, models.ErrTooManyAttempts
		},
	}
	h := newAuthHandler(svc)

	req := NewTestRequest(t, http.MethodPost, "/auth/2fa/verify", VerifyChallengeRequest{
		TempToken: "challenge-token",
		Code:      "123456",
	})
	w := httptest.NewRecorder()

	h.VerifyChallenge(w, req)

	AssertErrorResponse(t, w, http.StatusTooManyRequests, "rate_limit_exceeded")
}

func TestRegisterHandler_Success(t *testing.T) {
	svc := &MockAuthService{
		RegisterFunc: func(ctx context.Context, authorization string, req *services.RegisterRequest, ipAddress string) (*services.LoginResult, error) {
			assert.Equal(t, "new@example.com", req.Email)
			return &services.LoginResult{
				Token: "session-token",
				User:  &services.UserResponse{ID: 33, Email: req.Email},
			}, nil
		},
	}
	h := newAuthHandler(svc)

	req := NewTestRequest(t, http.MethodPost, "/auth/register", services.RegisterRequest{
		Email: "new@example.com",
		Name:  "New User",
	})
	req.Header.Set("Authorization", "Bearer provider-token")
	w := httptest.NewRecorder()

	h.Register(w, req)

	var resp SessionResponse
	AssertJSONResponse(t, w, http.StatusCreated, &resp)
	assert.Equal(t, int64(33), resp.Result.User.ID)
}

func TestRegisterHandler_InvalidEmail(t *testing.T) {
	h := newAuthHandler(&MockAuthService{})

	req := NewTestRequest(t, http.MethodPost, "/auth/register", services.RegisterRequest{
		Email: "not-an-email",
		Name:  "New User",
	})
	w := httptest.NewRecorder()

	h.Register(w, req)

	AssertErrorResponse(t, w, http.StatusBadRequest, "bad_request")
}
