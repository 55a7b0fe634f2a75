package routes

import (
	"database/sql"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"networth/internal/config"
	"networth/internal/services"
)

func SetupRoutes(db *sql.DB, cfg *config.Config, s3Config *config.S3Config) *chi.Mux {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{cfg.AppBaseURL},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	quotes := services.NewYahooQuoteClient()
	converter := services.NewConverter(quotes)

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]string{
			"message": "Net worth API",
		})
	})

	r.Get("/health", func(w http.ResponseWriter, req *http.Request) {
		type dbStatus struct {
			Status string `json:"status"`
			Error  string `json:"error,omitempty"`
		}
		resp := struct {
			Status string   `json:"status"`
			DB     dbStatus `json:"db"`
		}{Status: "ok", DB: dbStatus{Status: "ok"}}

		code := http.StatusOK
		if err := db.PingContext(req.Context()); err != nil {
			resp.Status = "degraded"
			resp.DB = dbStatus{Status: "down", Error: err.Error()}
			code = http.StatusServiceUnavailable
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(code)
		_ = json.NewEncoder(w).Encode(resp)
	})

	RegisterSwaggerRoutes(r)

	r.Route("/api/v1", func(r chi.Router) {
		RegisterAuthRoutes(r, db, cfg)
		RegisterAssetRoutes(r, db, cfg)
		RegisterDashboardRoutes(r, db, cfg, converter)
		RegisterCashFlowRoutes(r, db, cfg)
		RegisterUserRoutes(r, db, cfg)
		RegisterMarketRoutes(r, cfg, converter, quotes)
		RegisterDocumentRoutes(r, cfg, s3Config)
	})

	return r
}
