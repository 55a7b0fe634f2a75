package routes

import (
	"database/sql"

	"github.com/go-chi/chi/v5"

	"networth/internal/config"
	"networth/internal/handlers"
	"networth/internal/middleware"
)

func RegisterCashFlowRoutes(router chi.Router, db *sql.DB, cfg *config.Config) {
	cashFlowHandler := handlers.NewCashFlowHandler(db)

	router.Route("/cashflow", func(r chi.Router) {
		r.Use(middleware.JWTAuth(cfg.JWTSecret))
		r.Get("/", cashFlowHandler.List)
		r.Post("/", cashFlowHandler.Save)
	})
}
