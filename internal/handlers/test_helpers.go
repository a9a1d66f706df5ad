package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/greengo-app/greengo-api/internal/auth"
	"github.com/greengo-app/greengo-api/internal/models"
	"github.com/greengo-app/greengo-api/internal/services"
	pkghttp "github.com/greengo-app/greengo-api/pkg/http"
)

// NewTestRequest creates an HTTP request with JSON body for testing
func NewTestRequest(t *testing.T, method, url string, body interface{}) *http.Request {
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("failed to encode request body: %v", err)
		}
	}
	req := httptest.NewRequest(method, url, &buf)
	req.Header.Set("Content-Type", "application/json")
	return req
}

// WithAuthContext adds session claims to the request context, as the session
// middleware would for an authenticated request
func WithAuthContext(req *http.Request, userID int64) *http.Request {
	claims := &models.SessionClaims{UserID: userID}
	return req.WithContext(auth.ContextWithClaims(req.Context(), claims))
}

// AssertJSONResponse checks that response has correct status and decodes JSON body
func AssertJSONResponse(t *testing.T, w *httptest.ResponseRecorder, expectedStatus int, target interface{}) {
	assert.Equal(t, expectedStatus, w.Code, "Response status mismatch")

	contentType := w.Header().Get("Content-Type")
	assert.Equal(t, "application/json", contentType, "Content-Type should be application/json")

	if target != nil {
		err := json.Unmarshal(w.Body.Bytes(), target)
		assert.NoError(t, err, "Failed to decode response JSON")
	}
}

// AssertErrorResponse checks that response is a valid error envelope
func AssertErrorResponse(t *testing.T, w *httptest.ResponseRecorder, expectedStatus int, expectedError string) {
	assert.Equal(t, expectedStatus, w.Code, "Response status mismatch")

	var resp pkghttp.ErrorResponse
	err := json.Unmarshal(w.Body.Bytes(), &resp)
	assert.NoError(t, err, "Failed to decode error response")
	assert.False(t, resp.Success)
	assert.Equal(t, expectedError, resp.Error, "Error code mismatch")
	assert.NotEmpty(t, resp.Message, "Error message should not be empty")
}

// MockAuthService implements AuthServiceInterface for testing
type MockAuthService struct {
	LoginFunc           func(ctx context.Context, authorization string, rememberMe bool, ipAddress string) (*services.LoginResult, error)
	VerifyChallengeFunc func(ctx context.Context, tempToken, code, ipAddress string) (*services.LoginResult, error)
	RegisterFunc        func(ctx context.Context, authorization string, req *services.RegisterRequest, ipAddress string) (*services.LoginResult, error)
}

func (m *MockAuthService) Login(ctx context.Context, authorization string, rememberMe bool, ipAddress string) (*services.LoginResult, error) {
	if m.LoginFunc != nil {
		return m.LoginFunc(ctx, authorization, rememberMe, ipAddress)
	}
	return nil, models.ErrInvalidCredential
}

func (m *MockAuthService) VerifyChallenge(ctx context.Context, tempToken, code, ipAddress string) (*services.LoginResult, error) {
	if m.VerifyChallengeFunc != nil {
		return m.VerifyChallengeFunc(ctx, tempToken, code, ipAddress)
	}
	return nil, models.ErrUnauthorized
}

func (m *MockAuthService) Register(ctx context.Context, authorization string, req *services.RegisterRequest, ipAddress string) (*services.LoginResult, error) {
	if m.RegisterFunc != nil {
		return m.RegisterFunc(ctx, authorization, req, ipAddress)
	}
	return nil, models.ErrInternalServer
}

// MockTwoFactorService implements TwoFactorServiceInterface for testing
type MockTwoFactorService struct {
	GenerateFunc          func(ctx context.Context, userID int64) (*services.EnrollmentResponse, error)
	ConfirmEnrollmentFunc func(ctx context.Context, userID int64, code, ipAddress string) error
	DisableFunc           func(ctx context.Context, userID int64, ipAddress string) error
	StatusFunc            func(ctx context.Context, userID int64) (bool, error)
}

func (m *MockTwoFactorService) Generate(ctx context.Context, userID int64) (*services.EnrollmentResponse, error) {
	if m.GenerateFunc != nil {
		return m.GenerateFunc(ctx, userID)
	}
	return nil, models.ErrInternalServer
}

func (m *MockTwoFactorService) ConfirmEnrollment(ctx context.Context, userID int64, code, ipAddress string) error {
	if m.ConfirmEnrollmentFunc != nil {
		return m.ConfirmEnrollmentFunc(ctx, userID, code, ipAddress)
	}
	return models.ErrInvalidCode
}

func (m *MockTwoFactorService) Disable(ctx context.Context, userID int64, ipAddress string) error {
	if m.DisableFunc != nil {
		return m.DisableFunc(ctx, userID, ipAddress)
	}
	return nil
}

func (m *MockTwoFactorService) Status(ctx context.Context, userID int64) (bool, error) {
	if m.StatusFunc != nil {
		return m.StatusFunc(ctx, userID)
	}
	return false, nil
}

// MockCollectionService implements CollectionServiceInterface for testing
type MockCollectionService struct {
	ScheduleFunc   func(ctx context.Context, userID int64, req *services.ScheduleRequest) (*models.Collection, error)
	ListFunc       func(ctx context.Context, userID int64) ([]*models.Collection, error)
	GetFunc        func(ctx context.Context, userID, collectionID int64) (*models.Collection, error)
	UpcomingFunc   func(ctx context.Context, userID int64) (*models.Collection, error)
	RescheduleFunc func(ctx context.Context, userID, collectionID int64, req *services.RescheduleRequest) (*models.Collection, error)
	CancelFunc     func(ctx context.Context, userID, collectionID int64, reason string) error
}

func (m *MockCollectionService) Schedule(ctx context.Context, userID int64, req *services.ScheduleRequest) (*models.Collection, error) {
	if m.ScheduleFunc != nil {
		return m.ScheduleFunc(ctx, userID, req)
	}
	return nil, models.ErrInternalServer
}

func (m *MockCollectionService) List(ctx context.Context, userID int64) ([]*models.Collection, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, userID)
	}
	return []*models.Collection{}, nil
}

func (m *MockCollectionService) Get(ctx context.Context, userID, collectionID int64) (*models.Collection, error) {
	if m.GetFunc != nil {
		return m.GetFunc(ctx, userID, collectionID)
	}
	return nil, models.ErrNotFound
}

func (m *MockCollectionService) Upcoming(ctx context.Context, userID int64) (*models.Collection, error) {
	if m.UpcomingFunc != nil {
		return m.UpcomingFunc(ctx, userID)
	}
	return nil, models.ErrNotFound
}

func (m *MockCollectionService) Reschedule(ctx context.Context, userID, collectionID int64, req *services.RescheduleRequest) (*models.Collection, error) {
	if m.RescheduleFunc != nil {
		return m.RescheduleFunc(ctx, userID, collectionID, req)
	}
	return nil, models.ErrInternalServer
}

func (m *MockCollectionService) Cancel(ctx context.Context, userID, collectionID int64, reason string) error {
	if m.CancelFunc != nil {
		return m.CancelFunc(ctx, userID, collectionID, reason)
	}
	return nil
}
