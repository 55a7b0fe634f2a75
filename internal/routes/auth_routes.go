package routes

import (
	"database/sql"
	"time"

	"github.com/go-chi/chi/v5"

	"networth/internal/config"
	"networth/internal/handlers"
	"networth/internal/middleware"
	"networth/internal/ratelimit"
	"networth/internal/services"
)

func RegisterAuthRoutes(router chi.Router, db *sql.DB, cfg *config.Config) {
	mailer := &services.SMTPSender{
		Host:   cfg.SMTPHost,
		Port:   cfg.SMTPPort,
		User:   cfg.SMTPUser,
		Pass:   cfg.SMTPPassword,
		From:   cfg.SMTPFrom,
		UseTLS: cfg.SMTPUseTLS,
	}
	authHandler := handlers.NewAuthHandler(db, cfg, mailer)

	// Per-endpoint windows: credential guessing gets a short window, account
	// and reset-mail creation a long one.
	loginLimiter := ratelimit.New(5, 15*time.Minute)
	registerLimiter := ratelimit.New(3, time.Hour)
	forgotLimiter := ratelimit.New(3, time.Hour)
	resetLimiter := ratelimit.New(5, 15*time.Minute)

	router.Route("/auth", func(r chi.Router) {
		r.With(middleware.RateLimit(registerLimiter)).Post("/register", authHandler.Register)
		r.With(middleware.RateLimit(loginLimiter)).Post("/login", authHandler.Login)
		r.With(middleware.RateLimit(forgotLimiter)).Post("/forgot-password", authHandler.ForgotPassword)
		r.With(middleware.RateLimit(resetLimiter)).Post("/reset-password", authHandler.ResetPassword)
	})
}
