// internal/routes/creative_routes.go
package routes

import (
	"database/sql"

	"github.com/go-chi/chi/v5"

	"siscoca/internal/config"
	"siscoca/internal/handlers"
	"siscoca/internal/repository"
	"siscoca/internal/services"
)

func RegisterCreativeRoutes(router chi.Router, db *sql.DB, s3Config *config.S3Config, audit *services.AuditLogger) {
	creativeRepo := repository.NewCreativeRepository(db)
	campaignRepo := repository.NewCampaignRepository(db)
	creativeHandler := handlers.NewCreativeHandler(creativeRepo, campaignRepo, s3Config, audit)

	router.Route("/campaigns/{id}/creatives", func(r chi.Router) {
		r.Get("/", creativeHandler.ListCreatives)
		r.Post("/", creativeHandler.CreateCreative)
		r.Post("/upload", creativeHandler.UploadCreatives)
		r.Post("/sync-state", creativeHandler.SyncCampaignState)
	})

	router.Route("/creatives/{id}", func(r chi.Router) {
		r.Patch("/", creativeHandler.UpdateCreative)
		r.Delete("/", creativeHandler.DeleteCreative)
		r.Post("/activate", creativeHandler.ActivateCreative)
		r.Post("/discard", creativeHandler.DiscardCreative)
		r.Patch("/order", creativeHandler.SetCreativeOrder)
		r.Get("/download", creativeHandler.DownloadCreative)
	})
}
