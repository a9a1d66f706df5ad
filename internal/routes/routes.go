package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/greengo-app/greengo-api/internal/auth"
	"github.com/greengo-app/greengo-api/internal/handlers"
	"github.com/greengo-app/greengo-api/internal/middleware"
)

// Handlers bundles every HTTP handler the router mounts.
type Handlers struct {
	Auth           *handlers.AuthHandler
	TwoFactor      *handlers.TwoFactorHandler
	Profile        *handlers.ProfileHandler
	Wallet         *handlers.WalletHandler
	Collections    *handlers.CollectionHandler
	PaymentMethods *handlers.PaymentMethodHandler
	Notifications  *handlers.NotificationHandler
	Password       *handlers.PasswordHandler
}

// RegisterRoutes registers all application routes
func RegisterRoutes(router chi.Router, h *Handlers, tokenManager *auth.TokenManager) {
	rateLimitConfig := middleware.DefaultAuthRateLimit()

	// Public routes - credential-bearing and reset endpoints are rate limited
	router.Group(func(r chi.Router) {
		r.Use(middleware.RateLimitByIP(rateLimitConfig))

		r.Post("/auth/login", h.Auth.Login)
		r.Post("/auth/register", h.Auth.Register)
		r.Post("/auth/2fa/verify", h.Auth.VerifyChallenge)
		r.Post("/auth/password/reset", h.Password.RequestReset)
		r.Post("/auth/password/confirm", h.Password.ConfirmReset)
	})

	// Protected routes - full-access session token required
	router.Group(func(r chi.Router) {
		r.Use(auth.RequireSession(tokenManager))

		r.Get("/user/profile", h.Profile.Get)
		r.Put("/user/profile", h.Profile.Update)
		r.Post("/user/avatar", h.Profile.UploadAvatar)
		r.Put("/user/language", h.Profile.UpdateLanguage)
		r.Put("/user/preferences", h.Profile.UpdatePreferences)

		r.Post("/user/2fa", h.TwoFactor.Manage)
		r.Get("/user/2fa/status", h.TwoFactor.Status)

		r.Get("/wallet", h.Wallet.Statement)
		r.Get("/wallet/home", h.Wallet.Home)

		r.Get("/collections", h.Collections.List)
		r.Post("/collections", h.Collections.Schedule)
		r.Get("/collections/upcoming", h.Collections.Upcoming)
		r.Get("/collections/{id}", h.Collections.Get)
		r.Put("/collections/{id}", h.Collections.Reschedule)
		r.Post("/collections/{id}/cancel", h.Collections.Cancel)

		r.Get("/payment-methods", h.PaymentMethods.List)
		r.Post("/payment-methods", h.PaymentMethods.Add)
		r.Put("/payment-methods/{id}/default", h.PaymentMethods.SetDefault)
		r.Delete("/payment-methods/{id}", h.PaymentMethods.Remove)

		r.Get("/notifications", h.Notifications.List)
		r.Put("/notifications/read-all", h.Notifications.MarkAllRead)
		r.Put("/notifications/{id}/read", h.Notifications.MarkRead)
		r.Post("/notifications/devices", h.Notifications.RegisterDevice)
	})
}
