// internal/routes/routes.go
package routes

import (
	"database/sql"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"siscoca/internal/config"
	"siscoca/internal/middleware"
	"siscoca/internal/repository"
	"siscoca/internal/services"
)

func SetupRoutes(db *sql.DB, cfg *config.Config, s3Config *config.S3Config) *chi.Mux {
	r := chi.NewRouter()

	// Middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Get("/", func(w http.ResponseWriter, req *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{"message": "siscoca api"})
	})

	r.Get("/health", func(w http.ResponseWriter, req *http.Request) {
		resp := map[string]any{"status": "ok"}
		dbStatus := map[string]any{"status": "ok"}
		status := http.StatusOK
		if err := db.PingContext(req.Context()); err != nil {
			dbStatus["status"] = "down"
			dbStatus["error"] = err.Error()
			resp["status"] = "degraded"
			status = http.StatusServiceUnavailable
		}
		resp["db"] = dbStatus
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(resp)
	})

	RegisterSwaggerRoutes(r)

	audit := services.NewAuditLogger(repository.NewAuditRepository(db))

	// API v1 routes
	r.Route("/api/v1", func(r chi.Router) {
		RegisterAuthRoutes(r, db, cfg)

		r.Group(func(r chi.Router) {
			r.Use(middleware.JWTAuth(cfg.JWTSecret))

			RegisterCampaignRoutes(r, db, audit)
			RegisterHistoryRoutes(r, db, audit)
			RegisterChatRoutes(r, db, audit)
			RegisterCreativeRoutes(r, db, s3Config, audit)
			RegisterMetricsRoutes(r, db)
			RegisterUserRoutes(r, db, audit)
			RegisterAuditRoutes(r, db)
		})
	})

	return r
}
