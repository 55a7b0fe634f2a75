package routes

import (
	"database/sql"

	"github.com/go-chi/chi/v5"

	"networth/internal/config"
	"networth/internal/handlers"
	"networth/internal/middleware"
	"networth/internal/services"
)

func RegisterDashboardRoutes(router chi.Router, db *sql.DB, cfg *config.Config, converter *services.Converter) {
	dashboardHandler := handlers.NewDashboardHandler(db, converter, cfg.HomeCurrency)

	router.Route("/dashboard", func(r chi.Router) {
		r.Use(middleware.JWTAuth(cfg.JWTSecret))
		r.Get("/", dashboardHandler.Summary)
	})
}
