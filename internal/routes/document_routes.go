package routes

import (
	"github.com/go-chi/chi/v5"

	"networth/internal/config"
	"networth/internal/handlers"
	"networth/internal/middleware"
	"networth/internal/services"
)

func RegisterDocumentRoutes(router chi.Router, cfg *config.Config, s3Config *config.S3Config) {
	storage := services.NewDocumentStorage(s3Config.Client, s3Config.Bucket)
	uploadHandler := handlers.NewUploadHandler(storage)

	router.Route("/documents", func(r chi.Router) {
		r.Use(middleware.JWTAuth(cfg.JWTSecret))
		r.Post("/upload", uploadHandler.Upload)
	})
}
