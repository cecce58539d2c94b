// internal/routes/metrics_routes.go
package routes

import (
	"database/sql"

	"github.com/go-chi/chi/v5"

	"siscoca/internal/handlers"
	"siscoca/internal/repository"
)

func RegisterMetricsRoutes(router chi.Router, db *sql.DB) {
	campaignRepo := repository.NewCampaignRepository(db)
	recordRepo := repository.NewWeeklyRecordRepository(db)
	idealRepo := repository.NewIdealMetricRepository(db)

	metricsHandler := handlers.NewMetricsHandler(campaignRepo, recordRepo, idealRepo)
	idealHandler := handlers.NewIdealMetricHandler(idealRepo)

	router.Route("/metrics", func(r chi.Router) {
		r.Get("/global", metricsHandler.GetGlobalMetrics)
		r.Get("/campaigns/{id}", metricsHandler.GetCampaignMetrics)
	})

	router.Route("/ideal-metrics", func(r chi.Router) {
		r.Get("/", idealHandler.ListIdealMetrics)
		r.Post("/", idealHandler.CreateIdealMetric)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", idealHandler.GetIdealMetric)
			r.Patch("/", idealHandler.UpdateIdealMetric)
			r.Delete("/", idealHandler.DeleteIdealMetric)
		})
	})
}
