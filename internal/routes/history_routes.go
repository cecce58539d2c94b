// internal/routes/history_routes.go
package routes

import (
	"database/sql"

	"github.com/go-chi/chi/v5"

	"siscoca/internal/handlers"
	"siscoca/internal/repository"
	"siscoca/internal/services"
)

func RegisterHistoryRoutes(router chi.Router, db *sql.DB, audit *services.AuditLogger) {
	campaignRepo := repository.NewCampaignRepository(db)
	recordRepo := repository.NewWeeklyRecordRepository(db)
	importer := services.NewHistoryImporter(campaignRepo, recordRepo)
	historyHandler := handlers.NewHistoryHandler(recordRepo, importer, audit)

	router.Route("/history", func(r chi.Router) {
		r.Get("/", historyHandler.ListHistory)
		r.Post("/", historyHandler.UpsertRecord)
		r.Post("/import", historyHandler.ImportHistory)
		r.Get("/campaign/{campaignID}", historyHandler.ListByCampaign)
		r.Get("/week/{week}", historyHandler.ListByWeek)

		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", historyHandler.GetRecord)
			r.Put("/", historyHandler.UpdateRecord)
			r.Patch("/week", historyHandler.UpdateRecordWeek)
			r.Delete("/", historyHandler.DeleteRecord)
		})
	})
}
