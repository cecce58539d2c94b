// internal/routes/chat_routes.go
package routes

import (
	"database/sql"

	"github.com/go-chi/chi/v5"

	"siscoca/internal/handlers"
	"siscoca/internal/repository"
	"siscoca/internal/services"
)

func RegisterChatRoutes(router chi.Router, db *sql.DB, audit *services.AuditLogger) {
	chatHandler := handlers.NewChatHandler(
		repository.NewChatMessageRepository(db),
		repository.NewCampaignRepository(db),
		audit,
	)

	router.Route("/chat", func(r chi.Router) {
		r.Post("/send", chatHandler.SendMessage)
		r.Get("/unread", chatHandler.GetUnreadCount)
		r.Get("/unread/messages", chatHandler.ListUnreadMessages)
		r.Get("/unread/by-campaign", chatHandler.GetUnreadCountsByCampaign)
		r.Put("/messages/{id}/read", chatHandler.MarkMessageRead)

		r.Route("/campaign/{campaignID}", func(r chi.Router) {
			r.Get("/", chatHandler.ListByCampaign)
			r.Get("/unread", chatHandler.GetCampaignUnreadCount)
			r.Put("/read-all", chatHandler.MarkCampaignRead)
		})
	})
}
