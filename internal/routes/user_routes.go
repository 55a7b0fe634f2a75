package routes

import (
	"database/sql"

	"github.com/go-chi/chi/v5"

	"networth/internal/config"
	"networth/internal/handlers"
	"networth/internal/middleware"
)

func RegisterUserRoutes(router chi.Router, db *sql.DB, cfg *config.Config) {
	userHandler := handlers.NewUserHandler(db)

	router.Route("/user", func(r chi.Router) {
		r.Use(middleware.JWTAuth(cfg.JWTSecret))
		r.Get("/currency", userHandler.GetCurrency)
		r.Patch("/currency", userHandler.UpdateCurrency)
	})
}
