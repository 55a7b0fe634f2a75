package routes

import (
	"database/sql"

	"github.com/go-chi/chi/v5"

	"networth/internal/config"
	"networth/internal/handlers"
	"networth/internal/middleware"
)

func RegisterAssetRoutes(router chi.Router, db *sql.DB, cfg *config.Config) {
	assetHandler := handlers.NewAssetHandler(db)

	router.Route("/assets", func(r chi.Router) {
		r.Use(middleware.JWTAuth(cfg.JWTSecret))

		r.Route("/{kind}", func(r chi.Router) {
			r.Get("/", assetHandler.List)
			r.Post("/", assetHandler.Create)
			r.Put("/{id}", assetHandler.Update)
			r.Delete("/{id}", assetHandler.Delete)
		})
	})
}
