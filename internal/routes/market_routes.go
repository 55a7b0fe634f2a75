package routes

import (
	"github.com/go-chi/chi/v5"

	"networth/internal/config"
	"networth/internal/handlers"
	"networth/internal/middleware"
	"networth/internal/services"
)

func RegisterMarketRoutes(router chi.Router, cfg *config.Config, converter *services.Converter, quotes services.PriceFetcher) {
	marketHandler := handlers.NewMarketHandler(converter, quotes)

	router.Group(func(r chi.Router) {
		r.Use(middleware.JWTAuth(cfg.JWTSecret))
		r.Get("/forex/rate", marketHandler.ForexRate)
		r.Get("/stocks/price", marketHandler.StockPrice)
	})
}
