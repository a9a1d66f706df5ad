package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/stdlib"

	"github.com/greengo-app/greengo-api/internal/auth"
	"github.com/greengo-app/greengo-api/internal/background"
	"github.com/greengo-app/greengo-api/internal/config"
	"github.com/greengo-app/greengo-api/internal/database"
	"github.com/greengo-app/greengo-api/internal/handlers"
	"github.com/greengo-app/greengo-api/internal/identity"
	middlewareCustom "github.com/greengo-app/greengo-api/internal/middleware"
	"github.com/greengo-app/greengo-api/internal/repositories"
	"github.com/greengo-app/greengo-api/internal/routes"
	"github.com/greengo-app/greengo-api/internal/services"
	"github.com/greengo-app/greengo-api/internal/storage"
	"github.com/greengo-app/greengo-api/migrations"
	pkghttp "github.com/greengo-app/greengo-api/pkg/http"
	pkglogger "github.com/greengo-app/greengo-api/pkg/logger"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}

	logger.Info("configuration loaded", slog.String("env", cfg.Server.Env))

	// Initialize database
	db, err := database.NewConnection(&cfg.Database, logger)
	if err != nil {
		logger.Error("failed to connect to database", slog.Any("error", err))
		os.Exit(1)
	}
	defer db.Close()

	// Apply migrations through a database/sql adapter over the same pool
	sqlDB := stdlib.OpenDBFromPool(db.Pool)
	if err := migrations.Up(sqlDB); err != nil {
		logger.Error("failed to run migrations", slog.Any("error", err))
		os.Exit(1)
	}
	if err := sqlDB.Close(); err != nil {
		logger.Error("failed to close migration connection", slog.Any("error", err))
	}

	// Initialize repositories
	userRepo := repositories.NewUserRepository(db)
	attemptRepo := repositories.NewTwoFactorAttemptRepository(db)
	collectionRepo := repositories.NewCollectionRepository(db)
	walletRepo := repositories.NewWalletRepository(db)
	paymentMethodRepo := repositories.NewPaymentMethodRepository(db)
	notificationRepo := repositories.NewNotificationRepository(db)

	// Initialize cleanup manager
	cleanupManager := background.NewCleanupManager(attemptRepo, logger, cfg.Auth.CleanupInterval)

	// Initialize token manager
	tokenManager := auth.NewTokenManager(
		cfg.Auth.JWTSecret,
		cfg.Auth.SessionExpiry,
		cfg.Auth.ExtendedExpiry,
		cfg.Auth.ChallengeExpiry,
		cfg.Auth.ResetTokenExpiry,
	)

	auditLogger := pkglogger.NewAuditLogger(logger)

	// Timing delay for code verification
	timingDelay := auth.NewTimingDelay(auth.TimingConfig{
		BaseDelayMs:   cfg.Auth.TimingDelayBaseMs,
		RandomDelayMs: cfg.Auth.TimingDelayRandomMs,
	})

	totpManager := auth.NewTOTPManager(cfg.Auth.TOTPIssuer)

	// External identity-assertion verifier
	startupCtx, startupCancel := context.WithTimeout(context.Background(), 10*time.Second)
	oidcVerifier, err := identity.NewOIDCVerifier(startupCtx, cfg.Identity.Issuer, cfg.Identity.Audience)
	startupCancel()
	if err != nil {
		logger.Error("failed to initialize identity verifier", slog.Any("error", err))
		os.Exit(1)
	}
	credentialVerifier := identity.NewVerifier(oidcVerifier, logger)

	// AWS SES email service
	emailService, err := services.NewAWSSESEmailService(cfg.Email.AWSRegion, cfg.Email.FromAddress, logger)
	if err != nil {
		logger.Error("failed to initialize email service", slog.Any("error", err))
		os.Exit(1)
	}

	// Avatar storage
	avatarStore, err := storage.NewAvatarStore(cfg.Uploads.AvatarDir, cfg.Uploads.AvatarURLBase)
	if err != nil {
		logger.Error("failed to initialize avatar storage", slog.Any("error", err))
		os.Exit(1)
	}

	// Initialize services
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
	profileService := services.NewProfileService(userRepo, avatarStore, logger)
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
		emailService,
		tokenManager,
		cfg.Email.ResetURLBase,
		logger,
		auditLogger,
	)

	// Initialize handlers
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

	// Setup CORS middleware
	corsConfig := middlewareCustom.DefaultCORSConfig(cfg.Server.AllowedOrigins)

	// Setup router
	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middlewareCustom.SecurityHeaders(middlewareCustom.SecurityHeadersConfig{Env: cfg.Server.Env}))
	router.Use(middlewareCustom.CORS(corsConfig))
	router.Use(middlewareCustom.SecureLogger(logger))
	router.Use(middleware.Recoverer)
	router.Use(middleware.Timeout(60 * time.Second))

	// Register routes
	routes.RegisterRoutes(router, handlerSet, tokenManager)

	// Health check with database
	router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := db.HealthCheck(ctx); err != nil {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusServiceUnavailable)
			w.Write([]byte(`{"status":"unhealthy","database":"down"}`))
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"healthy","database":"up"}`))
	})

	// Serve stored avatars
	router.Handle(cfg.Uploads.AvatarURLBase+"/*", http.StripPrefix(cfg.Uploads.AvatarURLBase+"/",
		http.FileServer(http.Dir(cfg.Uploads.AvatarDir))))

	// Create server
	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start cleanup task
	cleanupCtx, cleanupCancel := context.WithCancel(context.Background())
	defer cleanupCancel()

	go cleanupManager.Start(cleanupCtx)

	// Start server
	go func() {
		logger.Info("starting server", slog.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", slog.Any("error", err))
			os.Exit(1)
		}
	}()

	// Graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	logger.Info("shutdown signal received")

	cleanupCancel()
	cleanupManager.Stop()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", slog.Any("error", err))
		os.Exit(1)
	}

	logger.Info("server stopped gracefully")
}
