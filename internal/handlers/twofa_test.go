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

func newTwoFactorHandler(svc *MockTwoFactorService) *TwoFactorHandler {
	return NewTwoFactorHandler(svc, &pkghttp.IPConfig{})
}

func TestManage_Generate(t *testing.T) {
	svc := &MockTwoFactorService{
		GenerateFunc: func(ctx context.Context, userID int64) (*services.EnrollmentResponse, error) {
			assert.Equal(t, int64(10), userID)
			return &services.EnrollmentResponse{
				Secret: "JBSWY3DPEHPK3PXP",
				QRCode: "data:image/png;base64,abc",
			}, nil
		},
	}
	h := newTwoFactorHandler(svc)

	req := WithAuthContext(NewTestRequest(t, http.MethodPost, "/user/2fa", ManageRequest{Action: "generate"}), 10)
	w := httptest.NewRecorder()

	h.Manage(w, req)

	var resp EnrollmentEnvelope
	AssertJSONResponse(t, w, http.StatusOK, &resp)
	assert.True(t, resp.Success)
	assert.Equal(t, "JBSWY3DPEHPK3PXP", resp.Secret)
	assert.Equal(t, "data:image/png;base64,abc", resp.QRCode)
}

func TestManage_Verify(t *testing.T) {
	confirmed := false
	svc := &MockTwoFactorService{
		ConfirmEnrollmentFunc: func(ctx context.Context, userID int64, code, ipAddress string) error {
			confirmed = true
			assert.Equal(t, "123456", code)
			return nil
		},
	}
	h := newTwoFactorHandler(svc)

	req := WithAuthContext(NewTestRequest(t, http.MethodPost, "/user/2fa", ManageRequest{Action: "verify", Code: "123456"}), 10)
	w := httptest.NewRecorder()

	h.Manage(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, confirmed)
}

func TestManage_VerifyWithoutCode(t *testing.T) {
	h := newTwoFactorHandler(&MockTwoFactorService{})

	req := WithAuthContext(NewTestRequest(t, http.MethodPost, "/user/2fa", ManageRequest{Action: "verify"}), 10)
	w := httptest.NewRecorder()

	h.Manage(w, req)

	AssertErrorResponse(t, w, http.StatusBadRequest, "bad_request")
}

func TestManage_VerifyBeforeGenerate(t *testing.T) {
	svc := &MockTwoFactorService{
		ConfirmEnrollmentFunc: func(ctx context.Context, userID int64, code, ipAddress string) error {
			return models.ErrTwoFactorNotInitiated
		},
	}
	h := newTwoFactorHandler(svc)

	req := WithAuthContext(NewTestRequest(t, http.MethodPost, "/user/2fa", ManageRequest{Action: "verify", Code: "123456"}), 10)
	w := httptest.NewRecorder()

	h.Manage(w, req)

	AssertErrorResponse(t, w, http.StatusBadRequest, "twofa_not_initiated")
}

func TestManage_Disable(t *testing.T) {
	disabled := false
	svc := &MockTwoFactorService{
		DisableFunc: func(ctx context.Context, userID int64, ipAddress string) error {
			disabled = true
			return nil
		},
	}
	h := newTwoFactorHandler(svc)

	req := WithAuthContext(NewTestRequest(t, http.MethodPost, "/user/2fa", ManageRequest{Action: "disable"}), 10)
	w := httptest.NewRecorder()

	h.Manage(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, disabled)
}

func TestManage_UnknownAction(t *testing.T) {
	h := newTwoFactorHandler(&MockTwoFactorService{})

	req := WithAuthContext(NewTestRequest(t, http.MethodPost, "/user/2fa", ManageRequest{Action: "reset"}), 10)
	w := httptest.NewRecorder()

	h.Manage(w, req)

	AssertErrorResponse(t, w, http.StatusBadRequest, "bad_request")
}

func TestManage_NoSession(t *testing.T) {
	h := newTwoFactorHandler(&MockTwoFactorService{})

	req := NewTestRequest(t, http.MethodPost, "/user/2fa", ManageRequest{Action: "generate"})
	w := httptest.NewRecorder()

	h.Manage(w, req)

	AssertErrorResponse(t, w, http.StatusUnauthorized, "unauthorized")
}

func TestStatusHandler(t *testing.T) {
	svc := &MockTwoFactorService{
		StatusFunc: func(ctx context.Context, userID int64) (bool, error) {
			return true, nil
		},
	}
	h := newTwoFactorHandler(svc)

	req := WithAuthContext(NewTestRequest(t, http.MethodGet, "/user/2fa/status", nil), 10)
	w := httptest.NewRecorder()

	h.Status(w, req)

	var resp StatusResponse
	AssertJSONResponse(t, w, http.StatusOK, &resp)
	assert.True(t, resp.Enabled)
}
