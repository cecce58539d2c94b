// internal/routes/campaign_routes.go
package routes

import (
	"database/sql"

	"github.com/go-chi/chi/v5"

	"siscoca/internal/handlers"
	"siscoca/internal/repository"
	"siscoca/internal/services"
)

func RegisterCampaignRoutes(router chi.Router, db *sql.DB, audit *services.AuditLogger) {
	campaignRepo := repository.NewCampaignRepository(db)
	recordRepo := repository.NewWeeklyRecordRepository(db)
	campaignHandler := handlers.NewCampaignHandler(campaignRepo, recordRepo, audit)

	router.Route("/campaigns", func(r chi.Router) {
		r.Get("/", campaignHandler.ListCampaigns)
		r.Post("/", campaignHandler.CreateCampaign)
		r.Get("/state/{state}", campaignHandler.ListCampaignsByState)
		r.Get("/owner/{name}", campaignHandler.ListCampaignsByOwner)
		r.Get("/weeks/previous", campaignHandler.GetPreviousWeek)

		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", campaignHandler.GetCampaign)
			r.Put("/", campaignHandler.UpdateCampaign)
			r.Delete("/", campaignHandler.DeleteCampaign)

			r.Put("/metrics/trafficker", campaignHandler.SubmitTraffickerMetrics)
			r.Put("/metrics/owner", campaignHandler.SubmitOwnerMetrics)
			r.Patch("/state", campaignHandler.ChangeState)
			r.Post("/archive", campaignHandler.ArchiveCampaign)
			r.Post("/reactivate", campaignHandler.ReactivateCampaign)
			r.Get("/weekly", campaignHandler.GetWeeklyRollup)
		})
	})
}
