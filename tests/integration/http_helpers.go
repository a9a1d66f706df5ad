package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/greengo-app/greengo-api/internal/auth"
	"github.com/greengo-app/greengo-api/internal/config"
	"github.com/greengo-app/greengo-api/internal/database"
	"github.com/greengo-app/greengo-api/internal/handlers"
	"github.com/greengo-app/greengo-api/internal/identity"
	middlewareCustom "github.com/greengo-app/greengo-api/internal/middleware"
	"github.com/greengo-app/greengo-api/internal/models"
	"github.com/greengo-app/greengo-api/internal/repositories"
	"github.com/greengo-app/greengo-api/internal/routes"
	"github.com/greengo-app/greengo-api/internal/services"
	pkghttp "github.com/greengo-app/greengo-api/pkg/http"
	pkglogger "github.com/greengo-app/greengo-api/pkg/logger"
)

// StaticAssertionVerifier resolves bearer tokens from a fixed map, standing in
// for the identity provider during tests
type StaticAssertionVerifier struct {
	Subjects map[string]string // raw token -> subject
}

func (v *StaticAssertionVerifier) Verify(ctx context.Context, rawToken string) (string, error) {
	subject, ok := v.Subjects[rawToken]
	if !ok {
		return "", fmt.Errorf("token not recognized")
	}
	return subject, nil
}

// SentEmail represents a captured email message
type SentEmail struct {
	To        string
	ResetLink string
}

// MockEmailService captures sent emails for test assertions
type MockEmailService struct {
	SentEmails []SentEmail
	mu         sync.Mutex
}

// SendPasswordResetEmail records the email
func (m *MockEmailService) SendPasswordResetEmail(ctx context.Context, email, resetLink string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.SentEmails = append(m.SentEmails, SentEmail{To: email, ResetLink: resetLink})
	return nil
}

// GetLastEmail returns the most recent email sent
func (m *MockEmailService) GetLastEmail() *SentEmail {
	m.mu.Lock()
	defer m.mu.Unlock()

	if len(m.SentEmails) == 0 {
		return nil
	}
	return &m.SentEmails[len(m.SentEmails)-1]
}

// memoryAvatarSink satisfies the profile service without touching disk
type memoryAvatarSink struct{}

func (memoryAvatarSink) Save(userID int64, filename string, r io.Reader) (string, error) {
	return fmt.Sprintf("/avatars/avatar-%d-test.png", userID), nil
}

func (memoryAvatarSink) Remove(url string) error { return nil }

// TestServer wraps httptest.Server with database and all dependencies
type TestServer struct {
	Server       *httptest.Server
	DB           *database.DB
	EmailService *MockEmailService
	Assertions   *StaticAssertionVerifier
	TokenManager *auth.TokenManager
	TOTPManager  *auth.TOTPManager
	Config       *config.Config
	logger       *slog.Logger
}

// NewTestServer initializes a complete HTTP server with real database, a
// static identity verifier, and a mocked email service
func NewTestServer(db *database.DB) *TestServer {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelWarn}))

	cfg := &config.Config{
		Auth: config.AuthConfig{
			JWTSecret:           "test-secret-32-characters-long-for-testing",
			SessionExpiry:       2 * time.Hour,
			ExtendedExpiry:      24 * time.Hour,
			ChallengeExpiry:     5 * time.Minute,
			ResetTokenExpiry:    1 * time.Hour,
			TOTPIssuer:          "GreenGoTest",
			MaxCodeAttempts:     5,
			CodeAttemptWindow:   5 * time.Minute,
			TimingDelayBaseMs:   0,
			TimingDelayRandomMs: 0,
		},
		Email: config.EmailConfig{
			FromAddress:  "no-reply@test.local",
			ResetURLBase: "http://localhost:3000/reset",
		},
		Pricing: config.PricingConfig{
			ItemsPerKg: 60,
			RatePerKg:  1.50,
		},
		Server: config.ServerConfig{
			Port:           "0",
			Env:            "test",
			AllowedOrigins: []string{},
			TrustedProxies: []string{},
		},
	}

	// Repositories
	userRepo := repositories.NewUserRepository(db)
	attemptRepo := repositories.NewTwoFactorAttemptRepository(db)
	collectionRepo := repositories.NewCollectionRepository(db)
	walletRepo := repositories.NewWalletRepository(db)
	paymentMethodRepo := repositories.NewPaymentMethodRepository(db)
	notificationRepo := repositories.NewNotificationRepository(db)

	tokenManager := auth.NewTokenManager(
		cfg.Auth.JWTSecret,
		cfg.Auth.SessionExpiry,
		cfg.Auth.ExtendedExpiry,
		cfg.Auth.ChallengeExpiry,
		cfg.Auth.ResetTokenExpiry,
	)

	auditLogger := pkglogger.NewAuditLogger(logger)

	timingDelay := auth.NewTimingDelay(auth.TimingConfig{
		BaseDelayMs:   cfg.Auth.TimingDelayBaseMs,
		RandomDelayMs: cfg.Auth.TimingDelayRandomMs,
	})

	totpManager := auth.NewTOTPManager(cfg.Auth.TOTPIssuer)

	assertions := &StaticAssertionVerifier{Subjects: map[string]string{}}
	credentialVerifier := identity.NewVerifier(assertions, logger)

	mockEmail := &MockEmailService{}

	// Services
	twoFactorService := services.NewTwoFactorService(
		userRepo,
		attemptRepo,
		totpManager,
		timingDelay,
		logger,
		auditLogger,
		cfg.Auth.MaxCodeAttempts,
		cfg.Auth.CodeAttemptWindow,
	)
	authService := services.NewAuthService(
		userRepo,
		credentialVerifier,
		walletRepo,
		twoFactorService,
		tokenManager,
		logger,
		auditLogger,
	)
	profileService := services.NewProfileService(userRepo, memoryAvatarSink{}, logger)
	walletService := services.NewWalletService(walletRepo, logger)
	collectionService := services.NewCollectionService(
		collectionRepo,
		services.Pricing{ItemsPerKg: cfg.Pricing.ItemsPerKg, RatePerKg: cfg.Pricing.RatePerKg},
		logger,
	)
	paymentMethodService := services.NewPaymentMethodService(paymentMethodRepo, logger)
	notificationService := services.NewNotificationService(
		notificationRepo,
		&services.LogPushNotifier{Logger: logger},
		logger,
	)
	passwordService := services.NewPasswordService(
		userRepo,
		mockEmail,
		tokenManager,
		cfg.Email.ResetURLBase,
		logger,
		auditLogger,
	)

	// Handlers and router
	ipConfig := &pkghttp.IPConfig{TrustedProxies: cfg.Server.TrustedProxies}
	handlerSet := &routes.Handlers{
		Auth:           handlers.NewAuthHandler(authService, ipConfig),
		TwoFactor:      handlers.NewTwoFactorHandler(twoFactorService, ipConfig),
		Profile:        handlers.NewProfileHandler(profileService),
		Wallet:         handlers.NewWalletHandler(walletService),
		Collections:    handlers.NewCollectionHandler(collectionService),
		PaymentMethods: handlers.NewPaymentMethodHandler(paymentMethodService),
		Notifications:  handlers.NewNotificationHandler(notificationService),
		Password:       handlers.NewPasswordHandler(passwordService),
	}

	r := chi.NewRouter()
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(middlewareCustom.SecurityHeaders(middlewareCustom.SecurityHeadersConfig{Env: cfg.Server.Env}))
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Timeout(60 * time.Second))

	routes.RegisterRoutes(r, handlerSet, tokenManager)

	server := httptest.NewServer(r)

	return &TestServer{
		Server:       server,
		DB:           db,
		EmailService: mockEmail,
		Assertions:   assertions,
		TokenManager: tokenManager,
		TOTPManager:  totpManager,
		Config:       cfg,
		logger:       logger,
	}
}

// Close shuts down the test server
func (ts *TestServer) Close() {
	if ts.Server != nil {
		ts.Server.Close()
	}
}

// GrantCredential registers a bearer token with the static identity verifier
func (ts *TestServer) GrantCredential(rawToken, subject string) {
	ts.Assertions.Subjects[rawToken] = subject
}

// SessionToken mints a full-access session token directly, bypassing login
func (ts *TestServer) SessionToken(user *models.User) (string, error) {
	return ts.TokenManager.IssueSession(user.ID, false)
}

// Request makes an HTTP request to the test server
func (ts *TestServer) Request(method, path string, body interface{}, headers map[string]string) (*http.Response, error) {
	url := ts.Server.URL + path

	var bodyReader io.Reader
	if body != nil {
		bodyBytes, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		bodyReader = bytes.NewReader(bodyBytes)
	}

	req, err := http.NewRequest(method, url, bodyReader)
	if err != nil {
		return nil, err
	}

	req.Header.Set("Content-Type", "application/json")
	for key, value := range headers {
		req.Header.Set(key, value)
	}

	return http.DefaultClient.Do(req)
}

// RequestWithAuth makes an authenticated HTTP request with a bearer token
func (ts *TestServer) RequestWithAuth(method, path, token string, body interface{}) (*http.Response, error) {
	headers := map[string]string{
		"Authorization": "Bearer " + token,
	}
	return ts.Request(method, path, body, headers)
}

// ParseJSONResponse parses JSON response body into target struct
func ParseJSONResponse(resp *http.Response, target interface{}) error {
	defer resp.Body.Close()
	return json.NewDecoder(resp.Body).Decode(target)
}

// ExtractLoginResponse pulls session or challenge tokens from a login response
func ExtractLoginResponse(resp *http.Response) (token, tempToken string, twofaRequired bool, err error) {
	defer resp.Body.Close()

	var loginResp map[string]interface{}
	if err := json.NewDecoder(resp.Body).Decode(&loginResp); err != nil {
		return "", "", false, fmt.Errorf("failed to parse response: %w", err)
	}

	if required, ok := loginResp["twofa_required"].(bool); ok {
		twofaRequired = required
	}
	if temp, ok := loginResp["temp_token"].(string); ok {
		tempToken = temp
	}
	if result, ok := loginResp["result"].(map[string]interface{}); ok {
		if t, ok := result["token"].(string); ok {
			token = t
		}
	}

	return
}

// GetErrorCode extracts the error code from an error response
func GetErrorCode(resp *http.Response) (string, error) {
	defer resp.Body.Close()
	var errResp map[string]interface{}
	if err := json.NewDecoder(resp.Body).Decode(&errResp); err != nil {
		return "", err
	}
	if code, ok := errResp["error"].(string); ok {
		return code, nil
	}
	return "", nil
}
